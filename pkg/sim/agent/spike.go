package agent

import (
	"github.com/Ferrari1996gk/exchange-lob/params"
	"github.com/Ferrari1996gk/exchange-lob/pkg/exchange/orderbook"
)

// SpikeTrader produces bursts of one-sided flow: with probability
// MarketRate per step it arms a spike, then fires one market order on
// the chosen side for Interval consecutive steps.
type SpikeTrader struct {
	Gateway
	params    params.STParams
	remaining int64
	side      orderbook.Side
}

func NewSpikeTrader(seed int64, id string, p params.STParams) *SpikeTrader {
	return &SpikeTrader{
		Gateway: NewGateway(seed, id, "ST", CategoryST),
		params:  p,
	}
}

func (t *SpikeTrader) GetOrders(l1 *orderbook.L1) []orderbook.Order {
	if t.remaining > 0 {
		t.remaining--
		return []orderbook.Order{
			t.marketOrder(t.params.Vol, l1.Step, l1.Time, t.side, " "),
		}
	}
	if t.rng.Stream("mu").Float64() < t.params.MarketRate {
		t.remaining = t.params.Interval
		t.side = orderbook.Sell
		if t.rng.Stream("side").Float64() < 0.5 {
			t.side = orderbook.Buy
		}
	}
	return nil
}
