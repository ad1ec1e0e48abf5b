package orderbook

import "fmt"

// Engine implements exchange semantics over one OrderBook: price-time
// priority matching, partial fills, atomic cancel/amend, expiry and
// reference-price bookkeeping. All prices are integer ticks.
//
// A rejected cancel or amend is recovered locally and surfaced as a
// REJECTED report; it never mutates book state. A side-routing breach
// panics with InvariantViolation and aborts the run.
type Engine struct {
	symbol   string
	tickSize float64

	book *OrderBook
	sink EventSink

	// reference[0] is the bid anchor, reference[1] the ask anchor.
	reference [2]int64
	minPrice  int64
	maxPrice  int64

	sequence        uint64
	numTransactions uint64
}

// NewEngine bootstraps an engine from the previous session's closing
// bid/ask, which seed both the reference prices and the historical
// min/max envelope used by the 2%-drift rule.
func NewEngine(symbol string, referenceBid, referenceAsk int64, tickSize float64, sink EventSink) *Engine {
	if sink == nil {
		sink = NopSink{}
	}
	return &Engine{
		symbol:    symbol,
		tickSize:  tickSize,
		book:      NewOrderBook(),
		sink:      sink,
		reference: [2]int64{referenceBid, referenceAsk},
		minPrice:  referenceBid,
		maxPrice:  referenceAsk,
	}
}

func (e *Engine) Symbol() string   { return e.symbol }
func (e *Engine) TickSize() float64 { return e.tickSize }

// Sequence is the number of orders processed so far.
func (e *Engine) Sequence() uint64 { return e.sequence }

// NumTransactions is the number of trades matched so far.
func (e *Engine) NumTransactions() uint64 { return e.numTransactions }

// ReferencePrice returns the current (bid, ask) anchors.
func (e *Engine) ReferencePrice() (int64, int64) {
	return e.reference[0], e.reference[1]
}

// Book exposes the underlying order book for read-only queries.
func (e *Engine) Book() *OrderBook { return e.book }

// ProcessOrder runs one incoming order through the book and returns the
// resulting execution reports and transactions. The order is consumed:
// its remaining volume is mutated during matching.
func (e *Engine) ProcessOrder(o *Order) ([]ExecutionReport, []Transaction) {
	e.sink.Order(*o)

	var reports []ExecutionReport
	var txs []Transaction

	switch o.Type {
	case Limit:
		reports, txs = e.clear(o, false)
	case Amend:
		reports, txs = e.clear(o, true)
	case Market:
		// A market order crosses unconditionally and never rests: it
		// is priced at the extreme tick for its side and expires at
		// its own submission step.
		o.Expiry = o.Step
		if o.Side == Buy {
			o.Price = MaxPrice
		} else {
			o.Price = MinPrice
		}
		reports, txs = e.clear(o, false)
	case Cancel:
		var rejected bool
		reports = e.cancel(o, false, &rejected)
		if !rejected {
			e.sink.Cancelled(*o)
		}
	}

	e.updateReferencePrice()
	e.sequence++
	return reports, txs
}

// clear matches an incoming LIMIT, MARKET or AMEND order. An amend is
// cancel-then-reinsert: the prior resting volume is captured first so
// the AMEND report can carry the delta, and a failed cancel aborts the
// whole amend with the REJECTED report alone.
func (e *Engine) clear(o *Order, isAmend bool) ([]ExecutionReport, []Transaction) {
	var prior int64
	if isAmend {
		prior = e.book.volume(o.Side, o.ID)
		var rejected bool
		reports := e.cancel(o, true, &rejected)
		if rejected {
			return reports, nil
		}
	}
	return e.match(o, isAmend, prior)
}

// match walks the opposite side while the incoming order crosses,
// trading at the resting order's price, then rests any remainder when
// the order kind permits. MARKET remainders are dropped without a
// report.
func (e *Engine) match(o *Order, isAmend bool, priorVol int64) ([]ExecutionReport, []Transaction) {
	if o.Side != Buy && o.Side != Sell {
		panic(InvariantViolation{Msg: fmt.Sprintf("order %s has invalid side %d", o.ID, o.Side)})
	}

	var reports []ExecutionReport
	var txs []Transaction

	opp := o.Side.Opposite()
	lob := e.book.side(opp)

	i := 0
	for i < len(lob) {
		rest := &lob[i]

		crosses := (o.Side == Buy && rest.Price <= o.Price) ||
			(o.Side == Sell && rest.Price >= o.Price)
		if !crosses {
			break
		}

		vol := min(o.Vol, rest.Vol)
		tr := Transaction{
			Price: rest.Price,
			Vol:   vol,
			Step:  o.Step,
			Time:  o.Time,
		}
		if o.Side == Buy {
			tr.BidID, tr.AskID = o.ID, rest.ID
			tr.BuyerID, tr.SellerID = o.AgentID, rest.AgentID
		} else {
			tr.BidID, tr.AskID = rest.ID, o.ID
			tr.BuyerID, tr.SellerID = rest.AgentID, o.AgentID
		}
		txs = append(txs, tr)
		e.numTransactions++
		e.sink.Trade(tr)

		o.Vol -= vol
		rest.Vol -= vol

		if rest.Vol == 0 {
			reports = append(reports, fillReport(*rest, tr))
			lob = append(lob[:i], lob[i+1:]...)
		} else {
			reports = append(reports, partialFillReport(*rest, tr))
			i++
		}

		if o.Vol == 0 {
			reports = append(reports, fillReport(*o, tr))
			break
		}
		reports = append(reports, partialFillReport(*o, tr))
	}

	if opp == Buy {
		e.book.bids = lob
	} else {
		e.book.asks = lob
	}

	if o.Vol > 0 && (o.Type == Limit || o.Type == Amend) {
		e.book.insert(*o)

		rep := ExecutionReport{
			Type:       ReportNew,
			Step:       o.Step,
			Time:       o.Time,
			AgentID:    o.AgentID,
			AgentIndex: o.AgentIndex,
			Side:       o.Side,
			Price:      o.Price,
			Vol:        o.Vol,
			OrderID:    o.ID,
			OrdType:    o.Type,
			TraderType: o.TraderType,
		}
		if isAmend {
			rep.Type = ReportAmend
			rep.AmendedVol = o.Vol - priorVol
		}
		reports = append(reports, rep)
	}

	return reports, txs
}

// cancel removes the order with o.ID from o.Side. When the order is not
// found a REJECTED report is emitted and *rejected is set; book state is
// untouched. During an amend the successful cancel stays silent.
func (e *Engine) cancel(o *Order, isAmend bool, rejected *bool) []ExecutionReport {
	var reports []ExecutionReport

	if _, ok := e.book.remove(o.Side, o.ID); !ok {
		side := "Buy"
		if o.Side == Sell {
			side = "Sell"
		}
		reports = append(reports, ExecutionReport{
			Type:       ReportRejected,
			Reason:     fmt.Sprintf("%s order does not exist on LOB", side),
			Step:       o.Step,
			Time:       o.Time,
			AgentID:    o.AgentID,
			AgentIndex: o.AgentIndex,
			Side:       o.Side,
			Price:      o.Price,
			Vol:        o.Vol,
			OrderID:    o.ID,
			OrdType:    o.Type,
			TraderType: o.TraderType,
		})
		*rejected = true
		return reports
	}

	if !isAmend {
		reports = append(reports, ExecutionReport{
			Type:       ReportCancel,
			Step:       o.Step,
			Time:       o.Time,
			AgentID:    o.AgentID,
			AgentIndex: o.AgentIndex,
			Side:       o.Side,
			Price:      o.Price,
			Vol:        o.Vol,
			OrderID:    o.ID,
			OrdType:    o.Type,
			TraderType: o.TraderType,
		})
	}

	*rejected = false
	e.updateReferencePrice()
	return reports
}

// Expire removes every resting order whose expiry step has been reached
// and reports each one EXPIRED. Removal preserves the price-time order
// of the remaining orders.
func (e *Engine) Expire(step int64) []ExecutionReport {
	var reports []ExecutionReport

	for _, s := range []Side{Buy, Sell} {
		lob := e.book.side(s)
		kept := lob[:0]
		for _, o := range lob {
			if o.Expiry <= step {
				reports = append(reports, ExecutionReport{
					Type:       ReportExpired,
					Step:       o.Step,
					Time:       o.Time,
					AgentID:    o.AgentID,
					AgentIndex: o.AgentIndex,
					Side:       o.Side,
					Price:      o.Price,
					Vol:        o.Vol,
					OrderID:    o.ID,
					OrdType:    o.Type,
					TraderType: o.TraderType,
				})
				e.sink.Expired(o)
				continue
			}
			kept = append(kept, o)
		}
		if s == Buy {
			e.book.bids = kept
		} else {
			e.book.asks = kept
		}
	}

	e.updateReferencePrice()
	return reports
}

// updateReferencePrice recomputes the (bid, ask) anchors. When a side is
// empty its anchor drifts 2% beyond the historical min/max envelope so a
// meaningful midpoint always exists.
func (e *Engine) updateReferencePrice() {
	bid, hasBid := e.book.BestBid()
	ask, hasAsk := e.book.BestAsk()

	switch {
	case hasBid && hasAsk:
		e.reference[0] = bid.Price
		e.reference[1] = ask.Price
		e.minPrice = min(e.minPrice, e.reference[0])
		e.maxPrice = max(e.maxPrice, e.reference[1])

	case hasBid && !hasAsk:
		e.reference[0] = bid.Price
		if e.reference[1] == 0 {
			e.reference[1] = max(e.reference[0]+1, int64(float64(e.maxPrice)*1.02))
		}
		e.minPrice = min(e.minPrice, e.reference[0])

	case !hasBid && hasAsk:
		e.reference[1] = ask.Price
		if e.reference[0] == 0 {
			e.reference[0] = min(int64(float64(e.minPrice)*0.98), e.reference[1]-1)
		}
		e.maxPrice = max(e.maxPrice, e.reference[1])

	default:
		if e.reference[0] == 0 {
			e.reference[0] = int64(float64(e.minPrice) * 0.98)
		}
		if e.reference[1] == 0 {
			e.reference[1] = max(e.reference[0]+1, int64(float64(e.maxPrice)*1.02))
		}
	}
}

func fillReport(o Order, tr Transaction) ExecutionReport {
	return ExecutionReport{
		Type:          ReportFill,
		ExecutedVol:   tr.Vol,
		ExecutedPrice: tr.Price,
		Step:          tr.Step,
		Time:          tr.Time,
		AgentID:       o.AgentID,
		AgentIndex:    o.AgentIndex,
		Side:          o.Side,
		Price:         o.Price,
		Vol:           0,
		OrderID:       o.ID,
		OrdType:       o.Type,
		TraderType:    o.TraderType,
	}
}

func partialFillReport(o Order, tr Transaction) ExecutionReport {
	return ExecutionReport{
		Type:          ReportPartialFill,
		ExecutedVol:   tr.Vol,
		ExecutedPrice: tr.Price,
		Step:          tr.Step,
		Time:          tr.Time,
		AgentID:       o.AgentID,
		AgentIndex:    o.AgentIndex,
		Side:          o.Side,
		Price:         o.Price,
		Vol:           o.Vol,
		OrderID:       o.ID,
		OrdType:       o.Type,
		TraderType:    o.TraderType,
	}
}
