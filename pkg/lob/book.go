package lob

import (
	"fmt"
	"time"
)

// Book is the per-symbol order book: a bid tree and an ask tree of price
// levels, an order index for constant-time cancellation lookup, and the
// book's counters. All mutating operations run on one goroutine; the hot
// path takes no locks.
type Book struct {
	symbol string
	bids   *btree
	asks   *btree

	// index maps a resting order's id to the side and price it rests at.
	index map[uint64]orderRef

	bidCount    int
	askCount    int
	totalOrders uint64 // cumulative accepted
	totalTrades uint64
	lastTradeID uint64
}

type orderRef struct {
	side  Side
	price Price
}

// NewBook creates an empty book for symbol with the default tree degree.
func NewBook(symbol string) *Book {
	return NewBookWithDegree(symbol, DefaultDegree)
}

// NewBookWithDegree creates an empty book with a specific B+-tree minimum
// degree. Degrees below 2 are raised to 2.
func NewBookWithDegree(symbol string, degree int) *Book {
	return &Book{
		symbol: symbol,
		bids:   newBTree(degree),
		asks:   newBTree(degree),
		index:  make(map[uint64]orderRef),
	}
}

// Submit validates the order and rests it on its side of the book. A
// rejected order leaves the book untouched. Submit does not match; call
// Match to drain crossed prices.
func (b *Book) Submit(o *Order) error {
	if o == nil {
		return ErrNilOrder
	}
	if o.Price <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPrice, o.Price)
	}
	if o.Quantity <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidQuantity, o.Quantity)
	}
	if o.Side != Buy && o.Side != Sell {
		return fmt.Errorf("%w: %d", ErrInvalidSide, o.Side)
	}
	if o.Symbol != b.symbol {
		return fmt.Errorf("%w: order %q, book %q", ErrSymbolMismatch, o.Symbol, b.symbol)
	}
	if _, ok := b.index[o.ID]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateOrderID, o.ID)
	}

	o.Remaining = o.Quantity
	o.Status = StatusNew
	o.Timestamp = time.Now()

	b.sideTree(o.Side).upsertLevel(o.Price).append(o)
	b.index[o.ID] = orderRef{side: o.Side, price: o.Price}
	if o.Side == Buy {
		b.bidCount++
	} else {
		b.askCount++
	}
	b.totalOrders++
	return nil
}

// Cancel removes the resting order with the given id. Cancelling an id that
// never rested, already filled, or was already cancelled returns
// ErrOrderNotFound and changes nothing.
func (b *Book) Cancel(id uint64) error {
	ref, ok := b.index[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrOrderNotFound, id)
	}
	tree := b.sideTree(ref.side)
	lvl := tree.findLevel(ref.price)
	if lvl == nil {
		return fmt.Errorf("%w: no level at %s for order %d", ErrInvariantViolation, ref.price, id)
	}
	o := lvl.removeByID(id)
	if o == nil {
		return fmt.Errorf("%w: order %d missing from level %s", ErrInvariantViolation, id, ref.price)
	}
	o.Status = StatusCancelled
	delete(b.index, id)
	if ref.side == Buy {
		b.bidCount--
	} else {
		b.askCount--
	}
	if lvl.isEmpty() {
		tree.deleteLevel(ref.price)
	}
	return nil
}

// Match repeatedly pairs the best bid and best ask until the book is
// uncrossed, emitting one trade per pairing at the resting ask price. The
// front orders of the two extremal levels trade first (price-time
// priority). On an invariant violation the trades already produced are
// returned alongside the error.
func (b *Book) Match() ([]Trade, error) {
	var trades []Trade
	for {
		bid := b.bids.maxLevel()
		ask := b.asks.minLevel()
		if bid == nil || ask == nil || bid.price < ask.price {
			return trades, nil
		}
		buy, sell := bid.front(), ask.front()
		if buy == nil || sell == nil {
			return trades, fmt.Errorf("%w: empty level reachable at bid %s / ask %s",
				ErrInvariantViolation, bid.price, ask.price)
		}
		qty := min(buy.Remaining, sell.Remaining)
		if qty <= 0 {
			return trades, fmt.Errorf("%w: non-positive fill between orders %d and %d",
				ErrInvariantViolation, buy.ID, sell.ID)
		}

		b.lastTradeID++
		trades = append(trades, Trade{
			ID:          b.lastTradeID,
			BuyOrderID:  buy.ID,
			SellOrderID: sell.ID,
			Price:       ask.price,
			Quantity:    qty,
			Symbol:      b.symbol,
			Timestamp:   time.Now(),
		})

		buy.fill(qty)
		sell.fill(qty)

		if buy.Remaining == 0 {
			bid.popFront()
			delete(b.index, buy.ID)
			b.bidCount--
			if bid.isEmpty() {
				b.bids.deleteLevel(bid.price)
			}
		}
		if sell.Remaining == 0 {
			ask.popFront()
			delete(b.index, sell.ID)
			b.askCount--
			if ask.isEmpty() {
				b.asks.deleteLevel(ask.price)
			}
		}
		b.totalTrades++
	}
}

// BestBid returns the highest resting bid price. The second result is false
// when no bids rest.
func (b *Book) BestBid() (Price, bool) {
	if lvl := b.bids.maxLevel(); lvl != nil {
		return lvl.price, true
	}
	return 0, false
}

// BestAsk returns the lowest resting ask price. The second result is false
// when no asks rest.
func (b *Book) BestAsk() (Price, bool) {
	if lvl := b.asks.minLevel(); lvl != nil {
		return lvl.price, true
	}
	return 0, false
}

// Spread returns best ask minus best bid, or false if either side is empty.
func (b *Book) Spread() (Price, bool) {
	bid, okBid := b.BestBid()
	ask, okAsk := b.BestAsk()
	if !okBid || !okAsk {
		return 0, false
	}
	return ask - bid, true
}

// BidLevels returns up to max depth entries in descending price order.
func (b *Book) BidLevels(max int) []Level {
	if max <= 0 {
		return nil
	}
	levels := make([]Level, 0, max)
	b.bids.descend(func(lvl *priceLevel) bool {
		qty, n := lvl.aggregate()
		levels = append(levels, Level{Price: lvl.price, Quantity: qty, OrderCount: n})
		return len(levels) < max
	})
	return levels
}

// AskLevels returns up to max depth entries in ascending price order.
func (b *Book) AskLevels(max int) []Level {
	if max <= 0 {
		return nil
	}
	levels := make([]Level, 0, max)
	b.asks.ascend(func(lvl *priceLevel) bool {
		qty, n := lvl.aggregate()
		levels = append(levels, Level{Price: lvl.price, Quantity: qty, OrderCount: n})
		return len(levels) < max
	})
	return levels
}

// Symbol returns the symbol this book trades.
func (b *Book) Symbol() string { return b.symbol }

// BidCount returns the number of resting buy orders.
func (b *Book) BidCount() int { return b.bidCount }

// AskCount returns the number of resting sell orders.
func (b *Book) AskCount() int { return b.askCount }

// ActiveOrders returns the number of orders currently resting on either side.
func (b *Book) ActiveOrders() int { return len(b.index) }

// TotalOrders returns the cumulative count of accepted orders.
func (b *Book) TotalOrders() uint64 { return b.totalOrders }

// TotalTrades returns the cumulative count of executed trades.
func (b *Book) TotalTrades() uint64 { return b.totalTrades }

func (b *Book) sideTree(s Side) *btree {
	if s == Buy {
		return b.bids
	}
	return b.asks
}
