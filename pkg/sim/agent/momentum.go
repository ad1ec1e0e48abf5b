package agent

import (
	"math"
	"strconv"

	"github.com/Ferrari1996gk/exchange-lob/params"
	"github.com/Ferrari1996gk/exchange-lob/pkg/exchange/orderbook"
)

// momentumSignal is an EWMA of market-price changes, fed from trade
// VWAPs and mid-price moves in currency units.
type momentumSignal struct {
	smoothing float64
	momentum  float64
	lastPrice float64
}

func (m *momentumSignal) update(price float64) {
	if m.lastPrice != 0 {
		m.momentum = m.smoothing*(price-m.lastPrice) + (1-m.smoothing)*m.momentum
	}
	m.lastPrice = price
}

// MomentumTrader chases the trend: its order probabilities scale with
// tanh of the smoothed price-change signal, buying on positive momentum
// and selling on negative.
type MomentumTrader struct {
	ZIBase
	params   params.MTParams
	tickSize float64
	signal   momentumSignal
}

func NewMomentumTrader(seed int64, id string, p params.MTParams, tickSize float64) *MomentumTrader {
	t := &MomentumTrader{
		ZIBase:   newZIBase(seed, id, "MT", CategoryMT, p.Base),
		params:   p,
		tickSize: tickSize,
		signal:   momentumSignal{smoothing: p.Alpha},
	}
	t.strat = t
	return t
}

func (t *MomentumTrader) Momentum() float64 { return t.signal.momentum }

func (t *MomentumTrader) HandleTradeReport(trade *orderbook.Trade) {
	t.signal.update(trade.VWAP)
}

func (t *MomentumTrader) HandleL1Report(l1 *orderbook.L1) {
	t.signal.update(l1.MidPrice() * t.tickSize)
}

func (t *MomentumTrader) pickSide() orderbook.Side {
	if t.signal.momentum > 0 {
		return orderbook.Buy
	}
	return orderbook.Sell
}

func (t *MomentumTrader) demand() float64 {
	return math.Tanh(math.Abs(t.signal.momentum) * t.params.Gamma)
}

func (t *MomentumTrader) alpha() float64 { return t.params.BetaLO * t.demand() }
func (t *MomentumTrader) mu() float64    { return t.params.BetaMO * t.demand() }

func (t *MomentumTrader) message() string {
	return strconv.FormatFloat(t.signal.momentum, 'f', 6, 64)
}
