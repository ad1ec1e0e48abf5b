package params

import "math/rand"

// ZIBaseParams are the parameters shared by every zero-intelligence
// style strategy: cancel probability, lognormal price-offset shape and
// standing order volumes.
type ZIBaseParams struct {
	Delta     float64
	Mean      float64
	SD        float64
	LimitVol  int64
	MarketVol int64
}

// ZIParams configure the plain zero-intelligence trader.
type ZIParams struct {
	Alpha float64 // limit-order probability per step
	Mu    float64 // market-order probability per step
	Base  ZIBaseParams
}

// FTParams configure the fundamental-value follower. Alpha/mu are
// polynomial in the relative price distortion.
type FTParams struct {
	KappaLO  float64
	KappaMO  float64
	KappaLO3 float64
	KappaMO3 float64
	Freq     int64 // acts once every Freq steps
	Base     ZIBaseParams
}

// MTParams configure the momentum trader.
type MTParams struct {
	Alpha  float64 // EWMA smoothing factor
	BetaLO float64
	BetaMO float64
	Gamma  float64
	Base   ZIBaseParams
}

// HMTParams configure the high-frequency momentum trader.
type HMTParams struct {
	Alpha  float64
	BetaLO float64
	BetaMO float64
	Gamma  float64
	Base   ZIBaseParams
}

// MMParams configure the market maker.
type MMParams struct {
	Delta      float64 // per-order cancel probability
	LimitRate  float64 // probability of quoting both sides in a step
	MarketRate float64
	Vol        int64 // quote volume
	Edge       int64 // max quote distance from mid, in ticks
	PosLimit   int64
	PosSafe    int64
	MarketVol  int64 // unload volume once the position limit is hit
	Rest       int64 // steps to stay out of the market after unloading
}

// INSParams configure the execution (participation) trader.
type INSParams struct {
	Mode        int     // 0: fixed volume, otherwise percent-of-volume
	POV         float64 // participation rate in POV mode
	StartStep   int64
	TotalVol    int64 // inventory to unwind, becomes the initial position
	Vol         int64 // fixed per-order volume in mode 0
	Interval    int64 // steps between child orders
	ObsInterval int64 // traded-volume observation window in POV mode
}

// STParams configure the spike trader.
type STParams struct {
	MarketRate float64 // probability of arming a spike
	Vol        int64
	Interval   int64 // consecutive market orders per spike
}

// FVParams configure the fundamental-value process: either a geometric
// random walk from S0 or a replay of the series at SourcePath.
type FVParams struct {
	S0         float64
	Mu         float64
	Sigma      float64
	StepSize   int64
	Seed       int64
	DumpFreq   int64
	IsReady    bool
	SourcePath string
}

// SimParams hold the batch-wide simulation settings read from
// sim_params.json.
type SimParams struct {
	Symbol        string
	ClosingBidPrc float64
	ClosingAskPrc float64
	TickSize      float64
	NMins         int64
	StepSize      int64 // microseconds of simulated time per step
	NSteps        int64
	NThreads      int
	Verbose       int
	L2Depth       int
	DateFormat    string // Go reference layout
	Date          string // trading date, YYYY-MM-DD
	NRuns         int
	Seed          int64

	NZITraders  int
	NFTTraders  int
	NMTTraders  int
	NHMTTraders int
	NMMTraders  int
	NINSTraders int
	NSTTraders  int

	APIEnabled bool
	APIAddr    string
}

// Range is a calibration interval sampled once per Monte-Carlo run.
// Min == Max pins the parameter.
type Range struct {
	Min float64
	Max float64
}

func (r Range) Sample(rng *rand.Rand) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// ModelParams hold the strategy parameter space read from
// model_params.json. Ranged entries are sampled per run; the rest apply
// to every run unchanged.
type ModelParams struct {
	ZIBase struct {
		Delta     float64
		Mean      Range
		SD        Range
		LimitVol  int64
		MarketVol int64
	}
	ZI struct {
		Alpha   float64
		MORatio float64
	}
	FT struct {
		KappaLO      Range
		KappaLO3     Range
		KappaMORatio float64
		Freq         int64
	}
	MT struct {
		Alpha       Range
		BetaLO      Range
		BetaMORatio float64
		Gamma       float64
	}
	HMT struct {
		Alpha       Range
		BetaLO      Range
		BetaMORatio float64
		Gamma       float64
	}
	MM  MMParams
	INS INSParams
	ST  STParams
}

// RunParams are the fully calibrated parameters of one independent
// Monte-Carlo run. Runs share no mutable state; everything an agent or
// process needs is copied in here.
type RunParams struct {
	RunID       int
	BatchID     string
	Seed        int64
	Date        string
	ResultsPath string

	ZI  ZIParams
	FT  FTParams
	MT  MTParams
	HMT HMTParams
	MM  MMParams
	INS INSParams
	ST  STParams
	FV  FVParams
}
