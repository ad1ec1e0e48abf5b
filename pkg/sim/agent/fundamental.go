package agent

import (
	"math"
	"strconv"

	"github.com/Ferrari1996gk/exchange-lob/params"
	"github.com/Ferrari1996gk/exchange-lob/pkg/exchange/orderbook"
)

// FundamentalTrader trades towards the fundamental value: its order
// probabilities grow polynomially with the distortion between the
// fundamental value and the observed market price. It acts with market
// orders only, once every Freq steps.
type FundamentalTrader struct {
	ZIBase
	params     params.FTParams
	tickSize   float64
	value      float64
	distortion float64
}

func NewFundamentalTrader(seed int64, id string, p params.FTParams, tickSize float64) *FundamentalTrader {
	t := &FundamentalTrader{
		ZIBase:   newZIBase(seed, id, "FT", CategoryFT, p.Base),
		params:   p,
		tickSize: tickSize,
	}
	t.strat = t
	return t
}

func (t *FundamentalTrader) GetOrders(l1 *orderbook.L1) []orderbook.Order {
	if l1.Step%t.params.Freq != 0 {
		return nil
	}
	var orders []orderbook.Order
	orders = t.cancelOrders(orders, l1)
	orders = t.submitMarketOrders(orders, l1)
	return orders
}

func (t *FundamentalTrader) UpdateFundamentalValue(v float64) { t.value = v }
func (t *FundamentalTrader) RequireFundamentalValue() bool    { return true }

// HandleTradeReport re-anchors the distortion on the step's VWAP.
func (t *FundamentalTrader) HandleTradeReport(trade *orderbook.Trade) {
	if t.value == 0 {
		t.distortion = 0
		return
	}
	t.distortion = t.value - trade.VWAP
}

// HandleL1Report measures the distortion against the touch: zero while
// the fundamental value sits inside the spread.
func (t *FundamentalTrader) HandleL1Report(l1 *orderbook.L1) {
	if t.value == 0 {
		t.distortion = 0
		return
	}
	ask := float64(l1.BestAskPrice) * t.tickSize
	bid := float64(l1.BestBidPrice) * t.tickSize
	switch {
	case t.value > ask:
		t.distortion = t.value - ask
	case t.value < bid:
		t.distortion = t.value - bid
	default:
		t.distortion = 0
	}
}

func (t *FundamentalTrader) pickSide() orderbook.Side {
	if t.distortion > 0 {
		return orderbook.Buy
	}
	return orderbook.Sell
}

func (t *FundamentalTrader) alpha() float64 {
	p := t.relDistortion()
	return t.params.KappaLO*p + t.params.KappaLO3*math.Pow(p, 3)
}

func (t *FundamentalTrader) mu() float64 {
	p := t.relDistortion()
	return t.params.KappaMO*p + t.params.KappaMO3*math.Pow(p, 3)
}

// relDistortion is the distortion as a percentage of the fundamental
// value.
func (t *FundamentalTrader) relDistortion() float64 {
	return math.Abs(t.distortion/t.value) * 100
}

func (t *FundamentalTrader) message() string {
	return strconv.FormatFloat(t.distortion, 'f', 6, 64)
}
