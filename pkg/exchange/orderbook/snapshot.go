package orderbook

// L1 is the top-of-book snapshot. The best prices are the reference
// anchors, so a usable midpoint exists even when a side is empty; the
// volumes come from the actual book (0 for an empty side).
type L1 struct {
	Symbol       string
	Step         int64
	Time         string
	BestBidPrice int64
	BestAskPrice int64
	BestBidVol   int64
	BestAskVol   int64
	TotalBidVol  int64
	TotalAskVol  int64
}

// MidPrice is the midpoint in ticks.
func (l L1) MidPrice() float64 {
	return 0.5*float64(l.BestBidPrice) + 0.5*float64(l.BestAskPrice)
}

// Spread is best ask minus best bid, in ticks.
func (l L1) Spread() int64 {
	return l.BestAskPrice - l.BestBidPrice
}

// Equal compares the four best price/volume fields.
func (l L1) Equal(rhs L1) bool {
	return l.BestBidPrice == rhs.BestBidPrice &&
		l.BestAskPrice == rhs.BestAskPrice &&
		l.BestBidVol == rhs.BestBidVol &&
		l.BestAskVol == rhs.BestAskVol
}

// L2Level is one price-aggregated depth level.
type L2Level struct {
	Price int64
	Vol   int64
	Num   int
	Side  Side
}

// L1 builds the top-of-book snapshot for the given step.
func (e *Engine) L1(step int64, now string) L1 {
	l1 := L1{
		Symbol:       e.symbol,
		Step:         step,
		Time:         now,
		BestBidPrice: e.reference[0],
		BestAskPrice: e.reference[1],
		TotalBidVol:  e.book.TotalVolume(Buy),
		TotalAskVol:  e.book.TotalVolume(Sell),
	}
	if bid, ok := e.book.BestBid(); ok {
		l1.BestBidVol = bid.Vol
	}
	if ask, ok := e.book.BestAsk(); ok {
		l1.BestAskVol = ask.Vol
	}
	return l1
}

// L2 walks one side in priority order, grouping consecutive orders that
// share a price into levels, up to depth levels.
func (e *Engine) L2(s Side, depth int) []L2Level {
	var levels []L2Level
	cur := L2Level{Side: s}
	for _, o := range e.book.side(s) {
		if cur.Num == 0 {
			cur.Price, cur.Vol, cur.Num = o.Price, o.Vol, 1
			continue
		}
		if o.Price != cur.Price {
			levels = append(levels, cur)
			if len(levels) >= depth {
				return levels
			}
			cur = L2Level{Side: s, Price: o.Price, Vol: o.Vol, Num: 1}
			continue
		}
		cur.Vol += o.Vol
		cur.Num++
	}
	if cur.Vol > 0 {
		levels = append(levels, cur)
	}
	return levels
}

// L3 returns the full unaggregated listing of one side, best first.
func (e *Engine) L3(s Side) []Order {
	return e.book.Orders(s)
}

// SaveL1 pushes one best-level row per side to the sink.
func (e *Engine) SaveL1(step int64, now string) {
	var rows [2]L1Row
	for i, s := range []Side{Buy, Sell} {
		row := L1Row{
			Side:     s,
			Depth:    e.book.Depth(s),
			TotalVol: e.book.TotalVolume(s),
		}
		if best := e.L2(s, 1); len(best) > 0 {
			row.Price, row.Vol, row.Num = best[0].Price, best[0].Vol, best[0].Num
		}
		rows[i] = row
	}
	e.sink.L1(step, now, rows)
}

// SaveL2 pushes the price-aggregated depth of both sides to the sink.
func (e *Engine) SaveL2(step int64, now string, depth int) {
	e.sink.L2(step, now, e.L2(Buy, depth), e.L2(Sell, depth))
}

// SaveL3 pushes the raw per-order book to the sink.
func (e *Engine) SaveL3(step int64, now string) {
	e.sink.L3(step, now, e.book.Orders(Buy), e.book.Orders(Sell))
}
