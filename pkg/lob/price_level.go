package lob

// priceLevel is the FIFO queue of resting orders at one price. Orders are
// appended at the back and matched from the front; removal by id is a linear
// scan, which is acceptable because per-level depth is bounded in practice
// and cancels are rarer than inserts.
type priceLevel struct {
	price  Price
	orders []*Order
}

func (l *priceLevel) append(o *Order) {
	l.orders = append(l.orders, o)
}

// front returns the oldest resting order, or nil if the level is empty.
func (l *priceLevel) front() *Order {
	if len(l.orders) == 0 {
		return nil
	}
	return l.orders[0]
}

func (l *priceLevel) popFront() *Order {
	if len(l.orders) == 0 {
		return nil
	}
	o := l.orders[0]
	l.orders[0] = nil
	l.orders = l.orders[1:]
	return o
}

// removeByID unlinks the order with the given id and returns it, or nil if
// no such order rests here.
func (l *priceLevel) removeByID(id uint64) *Order {
	for i, o := range l.orders {
		if o.ID == id {
			copy(l.orders[i:], l.orders[i+1:])
			l.orders[len(l.orders)-1] = nil
			l.orders = l.orders[:len(l.orders)-1]
			return o
		}
	}
	return nil
}

func (l *priceLevel) isEmpty() bool { return len(l.orders) == 0 }

// aggregate sums the remaining quantity across the queue. Computed on demand
// for snapshots rather than cached through every fill.
func (l *priceLevel) aggregate() (Quantity, int) {
	var qty Quantity
	for _, o := range l.orders {
		qty += o.Remaining
	}
	return qty, len(l.orders)
}
