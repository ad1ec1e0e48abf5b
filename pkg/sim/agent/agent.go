package agent

import (
	"fmt"

	"github.com/Ferrari1996gk/exchange-lob/pkg/exchange/orderbook"
)

// CLOSE is the expiry step stamped on resting limit orders: the end of
// the continuous trading session.
const CLOSE int64 = 30_600_000

// Trader category indices, used for per-category position aggregation.
const (
	CategoryZI = iota
	CategoryFT
	CategoryMT
	CategoryHMT
	CategoryMM
	CategoryST
	CategoryINS
	NumCategories
)

// Agent is one trading strategy instance. All methods run on the
// simulation goroutine; agents own no shared state.
type Agent interface {
	// GetOrders is the agent's action for one step: given the pre-step
	// top-of-book snapshot, return the orders to feed to the engine.
	GetOrders(l1 *orderbook.L1) []orderbook.Order

	// HandleExecutionReport delivers one order-state transition for an
	// order this agent owns.
	HandleExecutionReport(r *orderbook.ExecutionReport)
	// HandleL1Report delivers a changed post-step top-of-book snapshot.
	HandleL1Report(l1 *orderbook.L1)
	// HandleTradeReport delivers the step's volume-weighted trade.
	HandleTradeReport(t *orderbook.Trade)

	// UpdateFundamentalValue pushes the current fundamental value to
	// agents that track it.
	UpdateFundamentalValue(v float64)
	// RequireFundamentalValue reports whether the agent consumes the
	// fundamental-value process.
	RequireFundamentalValue() bool
	// Momentum is the agent's momentum signal, 0 for non-momentum
	// strategies.
	Momentum() float64

	TraderType() string
	CategoryIndex() int
	Position() int64
	SetPosition(p int64)
	AgentID() string
	Index() int
	SetIndex(i int)
}

// Gateway is the base of every strategy: it keeps the agent's identity,
// signed position and the set of orders it believes are resting on the
// book, updated from execution reports.
type Gateway struct {
	id         string
	traderType string
	category   int
	index      int
	position   int64
	sequence   uint64
	queued     []orderbook.Order
	rng        *RNG
}

func NewGateway(seed int64, id, traderType string, category int) Gateway {
	return Gateway{
		id:         id,
		traderType: traderType,
		category:   category,
		rng:        NewRNG(seed),
	}
}

func (g *Gateway) AgentID() string    { return g.id }
func (g *Gateway) TraderType() string { return g.traderType }
func (g *Gateway) CategoryIndex() int { return g.category }
func (g *Gateway) Index() int         { return g.index }
func (g *Gateway) SetIndex(i int)     { g.index = i }
func (g *Gateway) Position() int64    { return g.position }
func (g *Gateway) SetPosition(p int64) {
	g.position = p
}

func (g *Gateway) Momentum() float64              { return 0 }
func (g *Gateway) UpdateFundamentalValue(float64) {}
func (g *Gateway) RequireFundamentalValue() bool  { return false }

func (g *Gateway) HandleL1Report(*orderbook.L1)      {}
func (g *Gateway) HandleTradeReport(*orderbook.Trade) {}

// HandleExecutionReport keeps the queued-order bookkeeping in sync with
// the engine. Fills and partial fills also move the position.
func (g *Gateway) HandleExecutionReport(r *orderbook.ExecutionReport) {
	switch r.Type {
	case orderbook.ReportNew, orderbook.ReportAmend:
		// A partially filled entry with the same ID is replaced.
		g.removeQueued(r.OrderID)
		g.queued = append(g.queued, orderbook.Order{
			Price: r.Price,
			Vol:   r.Vol,
			ID:    r.OrderID,
			Step:  r.Step,
			Side:  r.Side,
			Type:  r.OrdType,
		})
	case orderbook.ReportCancel, orderbook.ReportExpired:
		g.removeQueued(r.OrderID)
	case orderbook.ReportFill:
		g.updatePosition(r)
		g.removeQueued(r.OrderID)
	case orderbook.ReportPartialFill:
		g.updatePosition(r)
		if r.OrdType == orderbook.Market {
			return
		}
		g.removeQueued(r.OrderID)
		g.queued = append(g.queued, orderbook.Order{
			Price: r.Price,
			Vol:   r.Vol,
			ID:    r.OrderID,
			Step:  r.Step,
			Side:  r.Side,
			Type:  r.OrdType,
		})
	case orderbook.ReportRejected:
		// A cancel can lose the race against a fill.
	}
}

func (g *Gateway) updatePosition(r *orderbook.ExecutionReport) {
	if r.Type != orderbook.ReportFill && r.Type != orderbook.ReportPartialFill {
		panic(orderbook.InvariantViolation{
			Msg: fmt.Sprintf("position update from %s report for order %s", r.Type, r.OrderID),
		})
	}
	if r.Side == orderbook.Buy {
		g.position += r.ExecutedVol
	} else {
		g.position -= r.ExecutedVol
	}
}

func (g *Gateway) removeQueued(orderID string) {
	kept := g.queued[:0]
	for _, o := range g.queued {
		if o.ID != orderID {
			kept = append(kept, o)
		}
	}
	g.queued = kept
}

// QueuedOrders exposes the resting-order view for strategies that walk
// it when cancelling.
func (g *Gateway) QueuedOrders() []orderbook.Order {
	return g.queued
}

func (g *Gateway) limitOrderID() string {
	id := fmt.Sprintf("%s-l-%s-%d", g.id, g.traderType, g.sequence)
	g.sequence++
	return id
}

func (g *Gateway) marketOrderID() string {
	id := fmt.Sprintf("%s-m-%d", g.id, g.sequence)
	g.sequence++
	return id
}

func (g *Gateway) cancelOrder(queued orderbook.Order, step int64, now string) orderbook.Order {
	return orderbook.Order{
		Price:      queued.Price,
		Vol:        queued.Vol,
		ID:         queued.ID,
		AgentID:    g.id,
		AgentIndex: g.index,
		Step:       step,
		Side:       queued.Side,
		Type:       orderbook.Cancel,
		Time:       now,
		TraderType: g.traderType,
	}
}

func (g *Gateway) limitOrder(prc, vol int64, step int64, now string, side orderbook.Side, msg string) orderbook.Order {
	return orderbook.Order{
		Price:      prc,
		Vol:        vol,
		ID:         g.limitOrderID(),
		AgentID:    g.id,
		AgentIndex: g.index,
		Step:       step,
		Expiry:     CLOSE,
		Side:       side,
		Type:       orderbook.Limit,
		Time:       now,
		TraderType: g.traderType,
		Message:    msg,
	}
}

func (g *Gateway) marketOrder(vol int64, step int64, now string, side orderbook.Side, msg string) orderbook.Order {
	return orderbook.Order{
		Vol:        vol,
		ID:         g.marketOrderID(),
		AgentID:    g.id,
		AgentIndex: g.index,
		Step:       step,
		Expiry:     step,
		Side:       side,
		Type:       orderbook.Market,
		Time:       now,
		TraderType: g.traderType,
		Message:    msg,
	}
}

func (g *Gateway) amendOrder(prc, vol int64, orderID string, step int64, now string, side orderbook.Side, msg string) orderbook.Order {
	return orderbook.Order{
		Price:      prc,
		Vol:        vol,
		ID:         orderID,
		AgentID:    g.id,
		AgentIndex: g.index,
		Step:       step,
		Expiry:     CLOSE,
		Side:       side,
		Type:       orderbook.Amend,
		Time:       now,
		TraderType: g.traderType,
		Message:    msg,
	}
}
