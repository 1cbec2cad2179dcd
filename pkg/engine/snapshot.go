package engine

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/quantfabric/matchbook/pkg/lob"
)

// DefaultDepth is the number of levels per side in a snapshot.
const DefaultDepth = 10

// DepthEntry is one aggregated level in a snapshot document.
type DepthEntry struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// BookStats carries the book's counters.
type BookStats struct {
	TotalOrders  uint64 `json:"totalOrders"`
	BidCount     int    `json:"bidCount"`
	AskCount     int    `json:"askCount"`
	ActiveOrders int    `json:"activeOrders"`
}

// Snapshot is the market-data document for one symbol. BestBid and BestAsk
// are null when the side is empty.
type Snapshot struct {
	Symbol  string           `json:"symbol"`
	BestBid *decimal.Decimal `json:"bestBid"`
	BestAsk *decimal.Decimal `json:"bestAsk"`
	Bids    []DepthEntry     `json:"bids"`
	Asks    []DepthEntry     `json:"asks"`
	Stats   BookStats        `json:"stats"`
}

// Snapshot builds the market-data document for symbol with up to depth
// levels per side.
func (e *Engine) Snapshot(symbol string, depth int) (*Snapshot, error) {
	book, ok := e.books[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSymbol, symbol)
	}
	if depth <= 0 {
		depth = DefaultDepth
	}

	snap := &Snapshot{
		Symbol: symbol,
		Bids:   depthEntries(book.BidLevels(depth)),
		Asks:   depthEntries(book.AskLevels(depth)),
		Stats: BookStats{
			TotalOrders:  book.TotalOrders(),
			BidCount:     book.BidCount(),
			AskCount:     book.AskCount(),
			ActiveOrders: book.ActiveOrders(),
		},
	}
	if bid, ok := book.BestBid(); ok {
		d := bid.Decimal()
		snap.BestBid = &d
	}
	if ask, ok := book.BestAsk(); ok {
		d := ask.Decimal()
		snap.BestAsk = &d
	}
	return snap, nil
}

// SnapshotJSON renders the snapshot document as JSON.
func (e *Engine) SnapshotJSON(symbol string, depth int) ([]byte, error) {
	snap, err := e.Snapshot(symbol, depth)
	if err != nil {
		return nil, err
	}
	return json.Marshal(snap)
}

func depthEntries(levels []lob.Level) []DepthEntry {
	entries := make([]DepthEntry, len(levels))
	for i, lvl := range levels {
		entries[i] = DepthEntry{Price: lvl.Price.Decimal(), Quantity: lvl.Quantity.Decimal()}
	}
	return entries
}
