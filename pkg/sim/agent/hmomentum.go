package agent

import (
	"math"
	"strconv"

	"github.com/Ferrari1996gk/exchange-lob/params"
	"github.com/Ferrari1996gk/exchange-lob/pkg/exchange/orderbook"
)

// HighFreqMomentumTrader is the fast momentum variant: same signal as
// MomentumTrader with its own parameter set, and it is excluded from
// the aggregate momentum statistic the simulation records.
type HighFreqMomentumTrader struct {
	ZIBase
	params   params.HMTParams
	tickSize float64
	signal   momentumSignal
}

func NewHighFreqMomentumTrader(seed int64, id string, p params.HMTParams, tickSize float64) *HighFreqMomentumTrader {
	t := &HighFreqMomentumTrader{
		ZIBase:   newZIBase(seed, id, "HMT", CategoryHMT, p.Base),
		params:   p,
		tickSize: tickSize,
		signal:   momentumSignal{smoothing: p.Alpha},
	}
	t.strat = t
	return t
}

func (t *HighFreqMomentumTrader) Momentum() float64 { return t.signal.momentum }

func (t *HighFreqMomentumTrader) HandleTradeReport(trade *orderbook.Trade) {
	t.signal.update(trade.VWAP)
}

func (t *HighFreqMomentumTrader) HandleL1Report(l1 *orderbook.L1) {
	t.signal.update(l1.MidPrice() * t.tickSize)
}

func (t *HighFreqMomentumTrader) pickSide() orderbook.Side {
	if t.signal.momentum > 0 {
		return orderbook.Buy
	}
	return orderbook.Sell
}

func (t *HighFreqMomentumTrader) demand() float64 {
	return math.Tanh(math.Abs(t.signal.momentum) * t.params.Gamma)
}

func (t *HighFreqMomentumTrader) alpha() float64 { return t.params.BetaLO * t.demand() }
func (t *HighFreqMomentumTrader) mu() float64    { return t.params.BetaMO * t.demand() }

func (t *HighFreqMomentumTrader) message() string {
	return strconv.FormatFloat(t.signal.momentum, 'f', 6, 64)
}
