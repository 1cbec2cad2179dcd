// Package lob implements an in-memory limit-order book for continuous-auction
// trading. Each Book holds one symbol's resting orders on a pair of B+-trees
// of price levels, matches crossed prices with price-time priority, and
// answers best-price and depth queries. A Book is single-writer: all mutating
// calls must come from one goroutine, and reads must not race with them.
package lob

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// tickExponent is the fixed-point scale for prices and quantities: one tick
// is 1e-4 of a unit. Tree keys and crossing tests compare integer ticks,
// never floats.
const tickExponent = 4

// Price is a price in integer ticks.
type Price int64

// Quantity is a quantity in integer ticks.
type Quantity int64

// PriceFromDecimal converts d to ticks, rounding half away from zero to the
// nearest tick.
func PriceFromDecimal(d decimal.Decimal) Price {
	return Price(d.Shift(tickExponent).Round(0).IntPart())
}

// PriceFromString parses a decimal price string such as "100.25".
func PriceFromString(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	return PriceFromDecimal(d), nil
}

// Decimal returns the price as a decimal number of units.
func (p Price) Decimal() decimal.Decimal { return decimal.New(int64(p), -tickExponent) }

func (p Price) String() string { return p.Decimal().String() }

// QuantityFromDecimal converts d to ticks, rounding half away from zero.
func QuantityFromDecimal(d decimal.Decimal) Quantity {
	return Quantity(d.Shift(tickExponent).Round(0).IntPart())
}

// QuantityFromString parses a decimal quantity string such as "0.5".
func QuantityFromString(s string) (Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}
	return QuantityFromDecimal(d), nil
}

// Decimal returns the quantity as a decimal number of units.
func (q Quantity) Decimal() decimal.Decimal { return decimal.New(int64(q), -tickExponent) }

func (q Quantity) String() string { return q.Decimal().String() }

// Side is the side of the book an order rests on.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// OrderStatus is the lifecycle state of an order. FILLED and CANCELLED are
// terminal: an order in either state is absent from the book and its index.
type OrderStatus int

const (
	StatusNew OrderStatus = iota
	StatusPartiallyFilled
	StatusFilled
	StatusCancelled
)

func (s OrderStatus) String() string {
	switch s {
	case StatusNew:
		return "NEW"
	case StatusPartiallyFilled:
		return "PARTIALLY_FILLED"
	case StatusFilled:
		return "FILLED"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// Order is a limit order. The caller chooses the ID (unique per Book) and
// fills in Symbol, Side, Price, and Quantity; the Book owns every other
// field after Submit accepts the order. Callers may keep a read reference,
// but only the Book mutates Remaining and Status.
type Order struct {
	ID        uint64
	Symbol    string
	Side      Side
	Price     Price
	Quantity  Quantity
	Remaining Quantity
	Status    OrderStatus
	Timestamp time.Time
}

// fill consumes qty from the order's remaining quantity and advances its
// status.
func (o *Order) fill(qty Quantity) {
	o.Remaining -= qty
	if o.Remaining <= 0 {
		o.Remaining = 0
		o.Status = StatusFilled
	} else {
		o.Status = StatusPartiallyFilled
	}
}

// Trade is one execution produced by Match. Trades are immutable and their
// ids strictly increase in emission order within a Book.
type Trade struct {
	ID          uint64
	BuyOrderID  uint64
	SellOrderID uint64
	Price       Price
	Quantity    Quantity
	Symbol      string
	Timestamp   time.Time
}

// Level is one aggregated depth entry: the total remaining quantity and
// order count resting at a price.
type Level struct {
	Price      Price
	Quantity   Quantity
	OrderCount int
}

// Errors returned by Book operations.
var (
	ErrNilOrder           = fmt.Errorf("nil order")
	ErrInvalidPrice       = fmt.Errorf("invalid price")
	ErrInvalidQuantity    = fmt.Errorf("invalid quantity")
	ErrInvalidSide        = fmt.Errorf("invalid side")
	ErrSymbolMismatch     = fmt.Errorf("symbol mismatch")
	ErrDuplicateOrderID   = fmt.Errorf("duplicate order id")
	ErrOrderNotFound      = fmt.Errorf("order not found")
	ErrInvariantViolation = fmt.Errorf("order book invariant violated")
)
