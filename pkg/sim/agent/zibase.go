package agent

import (
	"math"

	"github.com/Ferrari1996gk/exchange-lob/params"
	"github.com/Ferrari1996gk/exchange-lob/pkg/exchange/orderbook"
)

// ziStrategy is the hook set a zero-intelligence style strategy plugs
// into the shared cancel/limit/market machinery.
type ziStrategy interface {
	alpha() float64
	mu() float64
	pickSide() orderbook.Side
	message() string
}

// ZIBase implements the shared behaviour of the zero-intelligence
// family: indiscriminate per-order cancellation with probability delta,
// a limit order with probability alpha priced a lognormal distance from
// the mid, and a market order with probability mu.
type ZIBase struct {
	Gateway
	base  params.ZIBaseParams
	strat ziStrategy
}

func newZIBase(seed int64, id, traderType string, category int, base params.ZIBaseParams) ZIBase {
	return ZIBase{
		Gateway: NewGateway(seed, id, traderType, category),
		base:    base,
	}
}

func (z *ZIBase) GetOrders(l1 *orderbook.L1) []orderbook.Order {
	var orders []orderbook.Order
	orders = z.cancelOrders(orders, l1)
	orders = z.submitLimitOrders(orders, l1)
	orders = z.submitMarketOrders(orders, l1)
	return orders
}

func (z *ZIBase) cancelOrders(orders []orderbook.Order, l1 *orderbook.L1) []orderbook.Order {
	rng := z.rng.Stream("delta")
	for _, o := range z.QueuedOrders() {
		if rng.Float64() < z.base.Delta {
			orders = append(orders, z.cancelOrder(o, l1.Step, l1.Time))
		}
	}
	return orders
}

func (z *ZIBase) submitLimitOrders(orders []orderbook.Order, l1 *orderbook.L1) []orderbook.Order {
	if z.rng.Stream("alpha").Float64() < z.strat.alpha() {
		side := z.strat.pickSide()
		prc := z.price(side, l1)
		orders = append(orders, z.limitOrder(prc, z.base.LimitVol, l1.Step, l1.Time, side, z.strat.message()))
	}
	return orders
}

func (z *ZIBase) submitMarketOrders(orders []orderbook.Order, l1 *orderbook.L1) []orderbook.Order {
	if z.rng.Stream("mu").Float64() < z.strat.mu() {
		side := z.strat.pickSide()
		orders = append(orders, z.marketOrder(z.base.MarketVol, l1.Step, l1.Time, side, z.strat.message()))
	}
	return orders
}

// price places a limit order a lognormal distance from the mid-price,
// on the passive side of it.
func (z *ZIBase) price(side orderbook.Side, l1 *orderbook.L1) int64 {
	dp := LogNormal(z.rng.Stream("dp"), z.base.Mean, z.base.SD)
	mid := l1.MidPrice()
	if side == orderbook.Buy {
		return int64(math.Round(mid - dp))
	}
	return int64(math.Round(mid + dp))
}
