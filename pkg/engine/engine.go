// Package engine routes orders across per-symbol books and exposes
// market-data snapshots. It is the thin multi-symbol layer above pkg/lob;
// the books themselves stay single-writer, so callers shard or serialize
// per symbol.
package engine

import (
	"fmt"

	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/quantfabric/matchbook/pkg/lob"
)

// ErrUnknownSymbol is returned when no book exists for an order's symbol.
var ErrUnknownSymbol = fmt.Errorf("unknown symbol")

// Engine owns one lob.Book per symbol and forwards submits, cancels,
// matches, and queries to the right one.
type Engine struct {
	books   map[string]*lob.Book
	logger  log.Logger
	metrics metrics.Metrics

	ordersAccepted  metrics.Counter
	ordersRejected  metrics.Counter
	ordersCancelled metrics.Counter
	tradesMatched   metrics.Counter
}

// New creates an engine with no books.
func New() *Engine {
	m := metrics.NewWithRegistry("matchbook", prometheus.NewRegistry())
	return &Engine{
		books:           make(map[string]*lob.Book),
		logger:          log.NewLogger("matchbook"),
		metrics:         m,
		ordersAccepted:  m.NewCounter("orders_accepted", "orders accepted"),
		ordersRejected:  m.NewCounter("orders_rejected", "orders rejected"),
		ordersCancelled: m.NewCounter("orders_cancelled", "orders cancelled"),
		tradesMatched:   m.NewCounter("trades_matched", "trades matched"),
	}
}

// CreateBook creates the book for symbol if it does not exist and returns
// it. Creating an existing symbol returns the existing book unchanged.
func (e *Engine) CreateBook(symbol string) *lob.Book {
	return e.CreateBookWithDegree(symbol, lob.DefaultDegree)
}

// CreateBookWithDegree is CreateBook with an explicit B+-tree degree.
func (e *Engine) CreateBookWithDegree(symbol string, degree int) *lob.Book {
	if book, ok := e.books[symbol]; ok {
		return book
	}
	book := lob.NewBookWithDegree(symbol, degree)
	e.books[symbol] = book
	e.logger.Info("order book created", "symbol", symbol, "degree", degree)
	return book
}

// Book returns the book for symbol.
func (e *Engine) Book(symbol string) (*lob.Book, bool) {
	book, ok := e.books[symbol]
	return book, ok
}

// Symbols returns the symbols with a live book.
func (e *Engine) Symbols() []string {
	symbols := make([]string, 0, len(e.books))
	for s := range e.books {
		symbols = append(symbols, s)
	}
	return symbols
}

// Submit routes the order to its symbol's book.
func (e *Engine) Submit(o *lob.Order) error {
	if o == nil {
		return lob.ErrNilOrder
	}
	book, ok := e.books[o.Symbol]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSymbol, o.Symbol)
	}
	if err := book.Submit(o); err != nil {
		e.ordersRejected.Inc()
		return err
	}
	e.ordersAccepted.Inc()
	return nil
}

// Cancel removes a resting order from the symbol's book.
func (e *Engine) Cancel(symbol string, id uint64) error {
	book, ok := e.books[symbol]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSymbol, symbol)
	}
	if err := book.Cancel(id); err != nil {
		return err
	}
	e.ordersCancelled.Inc()
	return nil
}

// Match drains crossed prices on the symbol's book and returns the trades.
func (e *Engine) Match(symbol string) ([]lob.Trade, error) {
	book, ok := e.books[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSymbol, symbol)
	}
	trades, err := book.Match()
	if len(trades) > 0 {
		e.tradesMatched.Add(float64(len(trades)))
	}
	if err != nil {
		e.logger.Error("matching aborted", "symbol", symbol, "trades", len(trades), "error", err)
	}
	return trades, err
}

// BestBid returns the symbol's best bid price, if any.
func (e *Engine) BestBid(symbol string) (lob.Price, bool) {
	book, ok := e.books[symbol]
	if !ok {
		return 0, false
	}
	return book.BestBid()
}

// BestAsk returns the symbol's best ask price, if any.
func (e *Engine) BestAsk(symbol string) (lob.Price, bool) {
	book, ok := e.books[symbol]
	if !ok {
		return 0, false
	}
	return book.BestAsk()
}
