package sink

import (
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Ferrari1996gk/exchange-lob/pkg/exchange/orderbook"
)

// Verbosity thresholds for the per-run CSV artifacts. Each file is only
// created (and its events recorded) at or above its level.
const (
	VerboseL1        = 0
	VerboseTrades    = 1
	VerboseOrders    = 2
	VerboseCancelled = 3
	VerboseL2        = 4
	VerboseL3        = 5
)

// CSVSink persists engine events as flat CSV files in a run directory.
// Prices arrive in ticks and are rendered in currency units here, at the
// output boundary, using exact decimal arithmetic.
type CSVSink struct {
	symbol string
	tick   decimal.Decimal

	l1        *TableWriter
	trades    *TableWriter
	orders    *TableWriter
	cancelled *TableWriter
	l2        *TableWriter
	l3        *TableWriter
}

// NewCSVSink opens the artifact files the verbosity level calls for
// under dir. Close must be called to flush them.
func NewCSVSink(dir, symbol string, tickSize float64, verbose int) (*CSVSink, error) {
	s := &CSVSink{
		symbol: symbol,
		tick:   decimal.NewFromFloat(tickSize),
	}

	open := func(dst **TableWriter, name string, header []string) error {
		w, err := NewTableWriter(filepath.Join(dir, name), header)
		if err != nil {
			s.Close()
			return err
		}
		*dst = w
		return nil
	}

	if verbose >= VerboseL1 {
		if err := open(&s.l1, "lob_l1.csv",
			[]string{"sym", "step", "prc", "vol", "depth", "total_vol", "side", "time", "num"}); err != nil {
			return nil, err
		}
	}
	if verbose >= VerboseTrades {
		if err := open(&s.trades, "trades.csv",
			[]string{"sym", "prc", "vol", "bid_id", "ask_id", "buyer_id", "seller_id", "step", "time"}); err != nil {
			return nil, err
		}
	}
	if verbose >= VerboseOrders {
		if err := open(&s.orders, "orders.csv",
			[]string{"sym", "prc", "vol", "order_id", "agent_id", "t", "expiry", "side", "OrdType", "time", "TraderType", "message"}); err != nil {
			return nil, err
		}
	}
	if verbose >= VerboseCancelled {
		if err := open(&s.cancelled, "orders_cancelled.csv",
			[]string{"sym", "prc", "vol", "order_id", "agent_id", "t", "expiry", "side", "OrdType", "time", "TraderType"}); err != nil {
			return nil, err
		}
	}
	if verbose >= VerboseL2 {
		if err := open(&s.l2, "lob_l2.csv",
			[]string{"sym", "step", "level", "prc", "vol", "num", "side", "time"}); err != nil {
			return nil, err
		}
	}
	if verbose >= VerboseL3 {
		if err := open(&s.l3, "lob.csv",
			[]string{"sym", "step", "level", "prc", "vol", "order_id", "agent_id", "t", "expiry", "side", "time"}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *CSVSink) price(ticks int64) string {
	return decimal.NewFromInt(ticks).Mul(s.tick).String()
}

func (s *CSVSink) Order(o orderbook.Order) {
	if s.orders == nil {
		return
	}
	s.orders.Write([]string{
		s.symbol,
		s.price(o.Price),
		strconv.FormatInt(o.Vol, 10),
		o.ID,
		o.AgentID,
		strconv.FormatInt(o.Step, 10),
		strconv.FormatInt(o.Expiry, 10),
		o.Side.String(),
		o.Type.String(),
		o.Time,
		o.TraderType,
		o.Message,
	})
}

func (s *CSVSink) Cancelled(o orderbook.Order) {
	s.writeCancelled(o, o.Type.String())
}

func (s *CSVSink) Expired(o orderbook.Order) {
	s.writeCancelled(o, "E")
}

func (s *CSVSink) writeCancelled(o orderbook.Order, ordType string) {
	if s.cancelled == nil {
		return
	}
	s.cancelled.Write([]string{
		s.symbol,
		s.price(o.Price),
		strconv.FormatInt(o.Vol, 10),
		o.ID,
		o.AgentID,
		strconv.FormatInt(o.Step, 10),
		strconv.FormatInt(o.Expiry, 10),
		o.Side.String(),
		ordType,
		o.Time,
		o.TraderType,
	})
}

func (s *CSVSink) Trade(t orderbook.Transaction) {
	if s.trades == nil {
		return
	}
	s.trades.Write([]string{
		s.symbol,
		s.price(t.Price),
		strconv.FormatInt(t.Vol, 10),
		t.BidID,
		t.AskID,
		t.BuyerID,
		t.SellerID,
		strconv.FormatInt(t.Step, 10),
		t.Time,
	})
}

func (s *CSVSink) L1(step int64, now string, rows [2]orderbook.L1Row) {
	if s.l1 == nil {
		return
	}
	for _, r := range rows {
		s.l1.Write([]string{
			s.symbol,
			strconv.FormatInt(step, 10),
			s.price(r.Price),
			strconv.FormatInt(r.Vol, 10),
			strconv.Itoa(r.Depth),
			strconv.FormatInt(r.TotalVol, 10),
			r.Side.String(),
			now,
			strconv.Itoa(r.Num),
		})
	}
}

func (s *CSVSink) L2(step int64, now string, bids, asks []orderbook.L2Level) {
	if s.l2 == nil {
		return
	}
	for _, side := range [][]orderbook.L2Level{bids, asks} {
		for level, l := range side {
			s.l2.Write([]string{
				s.symbol,
				strconv.FormatInt(step, 10),
				strconv.Itoa(level),
				s.price(l.Price),
				strconv.FormatInt(l.Vol, 10),
				strconv.Itoa(l.Num),
				l.Side.String(),
				now,
			})
		}
	}
}

func (s *CSVSink) L3(step int64, now string, bids, asks []orderbook.Order) {
	if s.l3 == nil {
		return
	}
	for _, side := range [][]orderbook.Order{bids, asks} {
		for level, o := range side {
			s.l3.Write([]string{
				s.symbol,
				strconv.FormatInt(step, 10),
				strconv.Itoa(level),
				s.price(o.Price),
				strconv.FormatInt(o.Vol, 10),
				o.ID,
				o.AgentID,
				strconv.FormatInt(o.Step, 10),
				strconv.FormatInt(o.Expiry, 10),
				o.Side.String(),
				now,
			})
		}
	}
}

// Close flushes and closes every open artifact file, returning the
// first error seen across them.
func (s *CSVSink) Close() error {
	var first error
	for _, w := range []*TableWriter{s.l1, s.trades, s.orders, s.cancelled, s.l2, s.l3} {
		if w == nil {
			continue
		}
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
