package orderbook

// L1Row is the per-side best-level row the engine hands to sinks when an
// L1 snapshot is persisted. Price/Vol/Num are zero when the side is
// empty.
type L1Row struct {
	Side     Side
	Price    int64
	Vol      int64
	Num      int
	Depth    int
	TotalVol int64
}

// EventSink receives structured engine events. Implementations must not
// touch the book; all calls happen on the run's goroutine, off the
// matching critical path only through their own buffering.
type EventSink interface {
	// Order is called for every order fed to the engine.
	Order(o Order)
	// Cancelled is called when an explicit cancel removes a resting order.
	Cancelled(o Order)
	// Expired is called for every order removed by expiry.
	Expired(o Order)
	// Trade is called for every matched transaction.
	Trade(t Transaction)

	L1(step int64, now string, rows [2]L1Row)
	L2(step int64, now string, bids, asks []L2Level)
	L3(step int64, now string, bids, asks []Order)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Order(Order)                              {}
func (NopSink) Cancelled(Order)                          {}
func (NopSink) Expired(Order)                            {}
func (NopSink) Trade(Transaction)                        {}
func (NopSink) L1(int64, string, [2]L1Row)               {}
func (NopSink) L2(int64, string, []L2Level, []L2Level)   {}
func (NopSink) L3(int64, string, []Order, []Order)       {}

// MultiSink fans one event stream out to several sinks.
type MultiSink []EventSink

func (m MultiSink) Order(o Order) {
	for _, s := range m {
		s.Order(o)
	}
}

func (m MultiSink) Cancelled(o Order) {
	for _, s := range m {
		s.Cancelled(o)
	}
}

func (m MultiSink) Expired(o Order) {
	for _, s := range m {
		s.Expired(o)
	}
}

func (m MultiSink) Trade(t Transaction) {
	for _, s := range m {
		s.Trade(t)
	}
}

func (m MultiSink) L1(step int64, now string, rows [2]L1Row) {
	for _, s := range m {
		s.L1(step, now, rows)
	}
}

func (m MultiSink) L2(step int64, now string, bids, asks []L2Level) {
	for _, s := range m {
		s.L2(step, now, bids, asks)
	}
}

func (m MultiSink) L3(step int64, now string, bids, asks []Order) {
	for _, s := range m {
		s.L3(step, now, bids, asks)
	}
}
