package agent

import (
	"math"

	"github.com/Ferrari1996gk/exchange-lob/params"
	"github.com/Ferrari1996gk/exchange-lob/pkg/exchange/orderbook"
)

// MarketMaker quotes both sides of the book at a random distance inside
// its edge. When its inventory reaches the position limit it pulls all
// quotes and unloads with market orders until it is back inside the
// safe band, then rests before quoting again.
type MarketMaker struct {
	Gateway
	params    params.MMParams
	unloading bool
	restUntil int64
}

func NewMarketMaker(seed int64, id string, p params.MMParams) *MarketMaker {
	return &MarketMaker{
		Gateway: NewGateway(seed, id, "MM", CategoryMM),
		params:  p,
	}
}

func (m *MarketMaker) GetOrders(l1 *orderbook.L1) []orderbook.Order {
	if m.position >= m.params.PosLimit || m.position <= -m.params.PosLimit {
		m.unloading = true
		m.restUntil = l1.Step + m.params.Rest
	}
	if m.unloading && m.position < m.params.PosSafe && m.position > -m.params.PosSafe {
		m.unloading = false
	}

	var orders []orderbook.Order
	if m.unloading {
		for _, o := range m.QueuedOrders() {
			orders = append(orders, m.cancelOrder(o, l1.Step, l1.Time))
		}
		orders = append(orders, m.unloadOrder(l1))
		return orders
	}
	if l1.Step > m.restUntil {
		orders = m.cancelSome(orders, l1)
		orders = m.quote(orders, l1)
	}
	return orders
}

func (m *MarketMaker) cancelSome(orders []orderbook.Order, l1 *orderbook.L1) []orderbook.Order {
	rng := m.rng.Stream("cancel")
	for _, o := range m.QueuedOrders() {
		if rng.Float64() < m.params.Delta {
			orders = append(orders, m.cancelOrder(o, l1.Step, l1.Time))
		}
	}
	return orders
}

// quote places a bid and an ask around the mid with probability
// LimitRate, each side gated by the position limit.
func (m *MarketMaker) quote(orders []orderbook.Order, l1 *orderbook.L1) []orderbook.Order {
	if m.rng.Stream("limit").Float64() >= m.params.LimitRate {
		return orders
	}
	if m.position < m.params.PosLimit {
		orders = append(orders, m.limitOrder(m.bidPrice(l1), m.params.Vol, l1.Step, l1.Time, orderbook.Buy, " "))
	}
	if m.position > -m.params.PosLimit {
		orders = append(orders, m.limitOrder(m.askPrice(l1), m.params.Vol, l1.Step, l1.Time, orderbook.Sell, " "))
	}
	return orders
}

func (m *MarketMaker) unloadOrder(l1 *orderbook.L1) orderbook.Order {
	side := orderbook.Buy
	if m.position > 0 {
		side = orderbook.Sell
	}
	return m.marketOrder(m.params.MarketVol, l1.Step, l1.Time, side, " ")
}

func (m *MarketMaker) bidPrice(l1 *orderbook.L1) int64 {
	dp := m.rng.Stream("bid_dp").Float64() * float64(m.params.Edge)
	return int64(math.Round(l1.MidPrice() - dp))
}

func (m *MarketMaker) askPrice(l1 *orderbook.L1) int64 {
	dp := m.rng.Stream("ask_dp").Float64() * float64(m.params.Edge)
	return int64(math.Round(l1.MidPrice() + dp))
}
