package agent

import (
	"github.com/Ferrari1996gk/exchange-lob/params"
	"github.com/Ferrari1996gk/exchange-lob/pkg/exchange/orderbook"
)

// ZITrader is the plain zero-intelligence trader: fixed order
// probabilities and a coin-flip side.
type ZITrader struct {
	ZIBase
	params params.ZIParams
}

func NewZITrader(seed int64, id string, p params.ZIParams) *ZITrader {
	t := &ZITrader{
		ZIBase: newZIBase(seed, id, "ZI", CategoryZI, p.Base),
		params: p,
	}
	t.strat = t
	return t
}

func (t *ZITrader) alpha() float64 { return t.params.Alpha }
func (t *ZITrader) mu() float64    { return t.params.Mu }
func (t *ZITrader) message() string { return " " }

func (t *ZITrader) pickSide() orderbook.Side {
	if t.rng.Stream("primary").Float64() < 0.5 {
		return orderbook.Buy
	}
	return orderbook.Sell
}
