package sim

import (
	"fmt"
	"math"
	"math/rand"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/Ferrari1996gk/exchange-lob/params"
	"github.com/Ferrari1996gk/exchange-lob/pkg/exchange/orderbook"
	"github.com/Ferrari1996gk/exchange-lob/pkg/exchange/sink"
	"github.com/Ferrari1996gk/exchange-lob/pkg/sim/agent"
	"github.com/Ferrari1996gk/exchange-lob/pkg/sim/process"
)

// Feed receives live market data from a running simulation, for
// streaming to API subscribers. Implementations must not call back into
// the simulation.
type Feed interface {
	BroadcastL1(l1 orderbook.L1)
	BroadcastTrade(t orderbook.Trade)
}

// Summary are the headline counters of one completed run.
type Summary struct {
	RunID           int    `json:"run_id"`
	Symbol          string `json:"symbol"`
	Steps           int64  `json:"steps"`
	NumOrders       uint64 `json:"num_orders"`
	NumTransactions uint64 `json:"num_transactions"`
}

// Simulator is one independent market simulation: an engine, an agent
// pool and the exogenous processes, all deterministic in the run seed.
// Everything runs on the caller's goroutine.
type Simulator struct {
	sim params.SimParams
	run params.RunParams
	log *zap.SugaredLogger

	engine     *orderbook.Engine
	events     *sink.CSVSink
	agentPool  []agent.Agent
	fv         *process.FundamentalValue
	mv         *process.MomentumRecorder
	clock      *StepClock
	totalSteps int64
	positions  *sink.TableWriter
	feed       Feed
}

// New builds a fully wired simulation. The seed chain is fixed: the
// fundamental-value seed is drawn first, then one seed per agent in
// pool order, so a run is reproducible from its seed alone.
func New(simParams params.SimParams, run params.RunParams, logger *zap.SugaredLogger, feed Feed) (*Simulator, error) {
	s := &Simulator{
		sim:  simParams,
		run:  run,
		log:  logger,
		feed: feed,
	}

	events, err := sink.NewCSVSink(run.ResultsPath, simParams.Symbol, simParams.TickSize, simParams.Verbose)
	if err != nil {
		return nil, err
	}
	s.events = events

	runLabel := fmt.Sprintf("run_%05d", run.RunID)
	s.engine = orderbook.NewEngine(
		simParams.Symbol,
		int64(math.Round(simParams.ClosingBidPrc/simParams.TickSize)),
		int64(math.Round(simParams.ClosingAskPrc/simParams.TickSize)),
		simParams.TickSize,
		orderbook.MultiSink{events, sink.NewMetricsSink(runLabel, simParams.Symbol)},
	)

	seeds := rand.New(rand.NewSource(run.Seed))

	s.fv, err = process.NewFundamentalValue(seeds.Int63(), run.FV, run.ResultsPath)
	if err != nil {
		events.Close()
		return nil, err
	}
	s.totalSteps = simParams.NSteps
	if s.fv.Ready() && int64(s.fv.SourceLength()) < s.totalSteps {
		s.totalSteps = int64(s.fv.SourceLength())
	}

	s.mv, err = process.NewMomentumRecorder(run.ResultsPath)
	if err != nil {
		s.closeOutputs()
		return nil, err
	}

	s.loadAgents(seeds)

	s.clock, err = NewStepClock(run.Date, simParams.StepSize, simParams.DateFormat)
	if err != nil {
		s.closeOutputs()
		return nil, err
	}

	if simParams.Verbose >= 2 {
		s.positions, err = sink.NewTableWriter(
			filepath.Join(run.ResultsPath, "agentPosition.csv"),
			[]string{"ZIpos", "FTpos", "MTpos", "HMTpos", "MMpos", "STpos", "INSpos", "step", "time"})
		if err != nil {
			s.closeOutputs()
			return nil, err
		}
	}
	return s, nil
}

func (s *Simulator) loadAgents(seeds *rand.Rand) {
	for i := 0; i < s.sim.NZITraders; i++ {
		s.agentPool = append(s.agentPool,
			agent.NewZITrader(seeds.Int63(), "ZI|"+strconv.Itoa(i), s.run.ZI))
	}
	for i := 0; i < s.sim.NFTTraders; i++ {
		s.agentPool = append(s.agentPool,
			agent.NewFundamentalTrader(seeds.Int63(), "FT|"+strconv.Itoa(i), s.run.FT, s.sim.TickSize))
	}
	for i := 0; i < s.sim.NMTTraders; i++ {
		s.agentPool = append(s.agentPool,
			agent.NewMomentumTrader(seeds.Int63(), "MT|"+strconv.Itoa(i), s.run.MT, s.sim.TickSize))
	}
	for i := 0; i < s.sim.NHMTTraders; i++ {
		s.agentPool = append(s.agentPool,
			agent.NewHighFreqMomentumTrader(seeds.Int63(), "HMT|"+strconv.Itoa(i), s.run.HMT, s.sim.TickSize))
	}
	for i := 0; i < s.sim.NMMTraders; i++ {
		s.agentPool = append(s.agentPool,
			agent.NewMarketMaker(seeds.Int63(), "MM|"+strconv.Itoa(i), s.run.MM))
	}
	for i := 0; i < s.sim.NINSTraders; i++ {
		s.agentPool = append(s.agentPool,
			agent.NewInstitutionalTrader(seeds.Int63(), "INS|"+strconv.Itoa(i), s.run.INS))
	}
	for i := 0; i < s.sim.NSTTraders; i++ {
		s.agentPool = append(s.agentPool,
			agent.NewSpikeTrader(seeds.Int63(), "ST|"+strconv.Itoa(i), s.run.ST))
	}
	for i, a := range s.agentPool {
		a.SetIndex(i)
	}
}

// Run executes the full session and returns the run summary. Output
// files are flushed and closed before it returns.
func (s *Simulator) Run() (Summary, error) {
	s.log.Infow("run_started",
		"run_id", s.run.RunID,
		"symbol", s.sim.Symbol,
		"seed", s.run.Seed,
		"steps", s.totalSteps,
		"agents", len(s.agentPool),
	)

	for step := int64(0); step < s.totalSteps; step++ {
		s.step(step)
	}

	summary := Summary{
		RunID:           s.run.RunID,
		Symbol:          s.sim.Symbol,
		Steps:           s.totalSteps,
		NumOrders:       s.engine.Sequence(),
		NumTransactions: s.engine.NumTransactions(),
	}
	err := s.closeOutputs()

	s.log.Infow("run_complete",
		"run_id", s.run.RunID,
		"symbol", s.sim.Symbol,
		"num_orders", summary.NumOrders,
		"num_transactions", summary.NumTransactions,
	)
	return summary, err
}

func (s *Simulator) step(step int64) {
	now := s.clock.Stamp(step)

	s.fv.Update(step, now)
	for _, a := range s.agentPool {
		if a.RequireFundamentalValue() {
			a.UpdateFundamentalValue(s.fv.Value())
		}
	}
	s.mv.Record(step, now, s.totalMomentum())

	l1 := s.engine.L1(step, now)

	var orders []orderbook.Order
	for _, a := range s.agentPool {
		orders = append(orders, a.GetOrders(&l1)...)
	}

	var transactions []orderbook.Transaction
	for i := range orders {
		reports, txs := s.engine.ProcessOrder(&orders[i])
		transactions = append(transactions, txs...)
		s.routeReports(reports)
	}

	if trade, ok := stepTrade(transactions, s.sim.TickSize, step, now); ok {
		for _, a := range s.agentPool {
			a.HandleTradeReport(&trade)
		}
		if s.feed != nil {
			s.feed.BroadcastTrade(trade)
		}
	}

	expired := s.engine.Expire(step)
	s.routeReports(expired)

	if len(orders) > 0 || len(expired) > 0 {
		after := s.engine.L1(step, now)
		if !after.Equal(l1) {
			for _, a := range s.agentPool {
				a.HandleL1Report(&after)
			}
			if s.feed != nil {
				s.feed.BroadcastL1(after)
			}
		}

		if s.sim.Verbose >= sink.VerboseL1 {
			s.engine.SaveL1(step, now)
		}
		if s.sim.Verbose >= sink.VerboseL2 {
			s.engine.SaveL2(step, now, s.sim.L2Depth)
		}
		if s.sim.Verbose >= sink.VerboseL3 {
			s.engine.SaveL3(step, now)
		}
	}

	if s.positions != nil {
		s.writePositions(step, now)
	}
}

func (s *Simulator) routeReports(reports []orderbook.ExecutionReport) {
	for i := range reports {
		s.agentPool[reports[i].AgentIndex].HandleExecutionReport(&reports[i])
	}
}

// stepTrade folds a step's transactions into one volume-weighted trade
// in currency units.
func stepTrade(txs []orderbook.Transaction, tickSize float64, step int64, now string) (orderbook.Trade, bool) {
	var sumPrc float64
	var totalVol int64
	for _, tx := range txs {
		sumPrc += float64(tx.Price) * float64(tx.Vol)
		totalVol += tx.Vol
	}
	if totalVol == 0 {
		return orderbook.Trade{}, false
	}
	return orderbook.Trade{
		VWAP: tickSize * sumPrc / float64(totalVol),
		Vol:  totalVol,
		Step: step,
		Time: now,
	}, true
}

// totalMomentum sums the signal across the slow momentum traders only;
// the high-frequency variant is excluded from the recorded statistic.
func (s *Simulator) totalMomentum() float64 {
	var total float64
	for _, a := range s.agentPool {
		if a.CategoryIndex() == agent.CategoryMT {
			total += a.Momentum()
		}
	}
	return total
}

func (s *Simulator) writePositions(step int64, now string) {
	var positions [agent.NumCategories]int64
	for _, a := range s.agentPool {
		positions[a.CategoryIndex()] += a.Position()
	}
	row := make([]string, 0, agent.NumCategories+2)
	for _, p := range positions {
		row = append(row, strconv.FormatInt(p, 10))
	}
	row = append(row, strconv.FormatInt(step, 10), now)
	s.positions.Write(row)
}

func (s *Simulator) closeOutputs() error {
	var first error
	if s.fv != nil {
		if err := s.fv.Close(); err != nil {
			first = err
		}
	}
	if s.mv != nil {
		if err := s.mv.Close(); err != nil && first == nil {
			first = err
		}
	}
	if s.positions != nil {
		if err := s.positions.Close(); err != nil && first == nil {
			first = err
		}
	}
	if s.events != nil {
		if err := s.events.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
