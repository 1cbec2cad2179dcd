// Package simulate generates random limit orders for stress tests and
// benchmarks.
package simulate

import (
	"math/rand"

	"github.com/quantfabric/matchbook/pkg/lob"
)

// Config bounds the generated order stream. Prices and quantities are drawn
// uniformly from the inclusive tick ranges.
type Config struct {
	Symbol   string
	MinPrice lob.Price
	MaxPrice lob.Price
	MinQty   lob.Quantity
	MaxQty   lob.Quantity
	Seed     int64
}

// Generator produces a deterministic stream of random limit orders for a
// given seed. Ids are assigned sequentially starting at 1.
type Generator struct {
	cfg    Config
	rng    *rand.Rand
	nextID uint64
}

// New creates a generator. Zero-value price and quantity bounds default to
// the 90.0000-110.0000 price band and 0.0001-1000.0000 quantities used by
// the stress scenarios.
func New(cfg Config) *Generator {
	if cfg.MaxPrice <= 0 {
		cfg.MinPrice, cfg.MaxPrice = 900000, 1100000
	}
	if cfg.MaxQty <= 0 {
		cfg.MinQty, cfg.MaxQty = 1, 10000000
	}
	if cfg.MinPrice <= 0 {
		cfg.MinPrice = 1
	}
	if cfg.MinQty <= 0 {
		cfg.MinQty = 1
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// Next returns one random limit order.
func (g *Generator) Next() *lob.Order {
	g.nextID++
	side := lob.Buy
	if g.rng.Intn(2) == 1 {
		side = lob.Sell
	}
	price := g.cfg.MinPrice + lob.Price(g.rng.Int63n(int64(g.cfg.MaxPrice-g.cfg.MinPrice)+1))
	qty := g.cfg.MinQty + lob.Quantity(g.rng.Int63n(int64(g.cfg.MaxQty-g.cfg.MinQty)+1))
	return &lob.Order{
		ID:       g.nextID,
		Symbol:   g.cfg.Symbol,
		Side:     side,
		Price:    price,
		Quantity: qty,
	}
}

// Batch returns n random limit orders.
func (g *Generator) Batch(n int) []*lob.Order {
	orders := make([]*lob.Order, n)
	for i := range orders {
		orders[i] = g.Next()
	}
	return orders
}
