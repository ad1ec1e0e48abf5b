package agent

import (
	"github.com/Ferrari1996gk/exchange-lob/params"
	"github.com/Ferrari1996gk/exchange-lob/pkg/exchange/orderbook"
)

// InstitutionalTrader unwinds a block of inventory with child market
// sells, one every Interval steps from StartStep until the inventory is
// gone. In fixed mode every child has the same volume; in
// percent-of-volume mode the child volume tracks the traded volume
// observed over a sliding window.
type InstitutionalTrader struct {
	Gateway
	params        params.INSParams
	active        bool
	childVol      int64
	intervalRatio float64
	window        []int64
	windowNext    int
	windowLen     int
}

func NewInstitutionalTrader(seed int64, id string, p params.INSParams) *InstitutionalTrader {
	t := &InstitutionalTrader{
		Gateway: NewGateway(seed, id, "INS", CategoryINS),
		params:  p,
	}
	t.SetPosition(p.TotalVol)
	if p.Mode == 0 {
		t.childVol = p.Vol
	} else {
		t.intervalRatio = float64(p.Interval) / float64(p.ObsInterval)
		t.window = make([]int64, p.ObsInterval)
	}
	return t
}

func (t *InstitutionalTrader) GetOrders(l1 *orderbook.L1) []orderbook.Order {
	if !t.active {
		return nil
	}
	return []orderbook.Order{
		t.marketOrder(t.childVol, l1.Step, l1.Time, orderbook.Sell, " "),
	}
}

func (t *InstitutionalTrader) HandleL1Report(l1 *orderbook.L1) {
	t.active = l1.Step >= t.params.StartStep &&
		t.position >= 0 &&
		l1.Step%t.params.Interval == 0
}

// HandleTradeReport maintains the POV child volume from the observed
// traded volume.
func (t *InstitutionalTrader) HandleTradeReport(trade *orderbook.Trade) {
	if t.params.Mode == 0 {
		return
	}
	t.window[t.windowNext] = trade.Vol
	t.windowNext = (t.windowNext + 1) % len(t.window)
	if t.windowLen < len(t.window) {
		t.windowLen++
	}
	var sum int64
	for _, v := range t.window {
		sum += v
	}
	vol := int64(float64(sum) * t.params.POV * t.intervalRatio)
	if vol < 1 {
		vol = 1
	}
	t.childVol = vol
}
