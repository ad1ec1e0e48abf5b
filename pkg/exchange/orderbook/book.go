package orderbook

import "sort"

// OrderBook holds the two resting sequences in strict price-time
// priority: bids by descending price, asks by ascending price, ties by
// arrival order. The book is exclusively owned by its Engine; there is
// no locking because a run is single-threaded.
type OrderBook struct {
	bids []Order
	asks []Order
}

func NewOrderBook() *OrderBook {
	return &OrderBook{}
}

// insert places a limit order at its price-time position. A new order
// always queues behind resting orders at the same price.
func (b *OrderBook) insert(o Order) {
	switch o.Side {
	case Buy:
		i := sort.Search(len(b.bids), func(i int) bool {
			return b.bids[i].Price < o.Price
		})
		b.bids = append(b.bids, Order{})
		copy(b.bids[i+1:], b.bids[i:])
		b.bids[i] = o
	case Sell:
		i := sort.Search(len(b.asks), func(i int) bool {
			return b.asks[i].Price > o.Price
		})
		b.asks = append(b.asks, Order{})
		copy(b.asks[i+1:], b.asks[i:])
		b.asks[i] = o
	}
}

func (b *OrderBook) side(s Side) []Order {
	if s == Buy {
		return b.bids
	}
	return b.asks
}

// remove deletes the order with the given id from the declared side,
// preserving the priority order of the remaining orders.
func (b *OrderBook) remove(s Side, id string) (Order, bool) {
	lob := b.side(s)
	for i := range lob {
		if lob[i].ID == id {
			o := lob[i]
			lob = append(lob[:i], lob[i+1:]...)
			if s == Buy {
				b.bids = lob
			} else {
				b.asks = lob
			}
			return o, true
		}
	}
	return Order{}, false
}

// volume returns the resting volume of an order id on one side, or 0
// when the order is not present.
func (b *OrderBook) volume(s Side, id string) int64 {
	for _, o := range b.side(s) {
		if o.ID == id {
			return o.Vol
		}
	}
	return 0
}

func (b *OrderBook) BestBid() (Order, bool) {
	if len(b.bids) == 0 {
		return Order{}, false
	}
	return b.bids[0], true
}

func (b *OrderBook) BestAsk() (Order, bool) {
	if len(b.asks) == 0 {
		return Order{}, false
	}
	return b.asks[0], true
}

// Depth returns the number of resting orders on one side.
func (b *OrderBook) Depth(s Side) int {
	return len(b.side(s))
}

// TotalVolume sums the remaining volume resting on one side.
func (b *OrderBook) TotalVolume(s Side) int64 {
	var total int64
	for _, o := range b.side(s) {
		total += o.Vol
	}
	return total
}

// Orders returns a copy of one side in priority order.
func (b *OrderBook) Orders(s Side) []Order {
	lob := b.side(s)
	out := make([]Order, len(lob))
	copy(out, lob)
	return out
}
