package orderbook

import "fmt"

// Side of the book an order targets.
type Side int8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "B"
	case Sell:
		return "S"
	default:
		return "?"
	}
}

// Opposite returns the side an incoming order matches against.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrdType is the protocol-level order kind.
type OrdType int8

const (
	Limit OrdType = iota
	Market
	Cancel
	Amend
)

func (t OrdType) String() string {
	switch t {
	case Limit:
		return "L"
	case Market:
		return "M"
	case Cancel:
		return "C"
	case Amend:
		return "A"
	default:
		return "?"
	}
}

// ReportType is the execution-report kind emitted by the engine.
type ReportType int8

const (
	ReportNew ReportType = iota
	ReportCancel
	ReportRejected
	ReportFill
	ReportPartialFill
	ReportExpired
	ReportAmend
)

func (t ReportType) String() string {
	switch t {
	case ReportNew:
		return "L"
	case ReportCancel:
		return "C"
	case ReportRejected:
		return "R"
	case ReportFill:
		return "F"
	case ReportPartialFill:
		return "P"
	case ReportExpired:
		return "E"
	case ReportAmend:
		return "A"
	default:
		return "?"
	}
}

// Price bounds in ticks. Market orders are priced at the extreme for
// their side before matching so they cross unconditionally.
const (
	MinPrice int64 = 1
	MaxPrice int64 = 1_000_000
)

// Order is a queued entry on the limit order book. Price is an integer
// tick count; conversion to currency happens only at output boundaries.
// Vol is the remaining volume and is mutated while the order rests.
type Order struct {
	Price      int64
	Vol        int64
	ID         string
	AgentID    string
	AgentIndex int
	Step       int64 // submission step
	Expiry     int64 // step at which the order lapses
	Side       Side
	Type       OrdType
	Time       string
	TraderType string
	Message    string
}

// InvariantViolation signals a caller contract breach (an order routed
// against the wrong side, or a non-fill reaching the position-update
// path). It aborts the affected simulation run.
type InvariantViolation struct {
	Msg string
}

func (v InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation: %s", v.Msg)
}

// ExecutionReport notifies an agent of one order-state transition. It is
// consumed by the simulation loop immediately and never stored as engine
// state.
type ExecutionReport struct {
	Type          ReportType
	ExecutedVol   int64
	AmendedVol    int64 // delta versus the pre-amend resting volume
	ExecutedPrice int64
	Reason        string
	Step          int64
	Time          string
	AgentID       string
	AgentIndex    int
	Side          Side
	Price         int64
	Vol           int64
	OrderID       string
	OrdType       OrdType
	TraderType    string
}

// Transaction is one matched trade: the resting (maker) order trades at
// its own price against the incoming (taker) order.
type Transaction struct {
	Price    int64
	Vol      int64
	BidID    string
	AskID    string
	BuyerID  string
	SellerID string
	Step     int64
	Time     string
}

// Trade is the volume-weighted trade report the loop broadcasts to every
// agent at the end of a step. VWAP is in currency units, not ticks.
type Trade struct {
	VWAP float64
	Vol  int64
	Step int64
	Time string
}
