package params

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads the workflow configuration triple (sim_params.json,
// model_params.json, fundamental_value_params.json) from workflowDir.
// Malformed or missing required parameters surface here, before any run
// starts.
func Load(workflowDir string) (SimParams, ModelParams, FVParams, error) {
	var sim SimParams
	var model ModelParams
	var fv FVParams

	vs, err := readJSON(filepath.Join(workflowDir, "sim_params.json"))
	if err != nil {
		return sim, model, fv, err
	}
	vm, err := readJSON(filepath.Join(workflowDir, "model_params.json"))
	if err != nil {
		return sim, model, fv, err
	}
	vf, err := readJSON(filepath.Join(workflowDir, "fundamental_value_params.json"))
	if err != nil {
		return sim, model, fv, err
	}

	vs.SetDefault("n_threads", 6)
	vs.SetDefault("n_mins", 510)
	vs.SetDefault("l2_depth", 10)
	vs.SetDefault("date_format", "02-Jan-2006 15:04:05")
	vs.SetDefault("n_runs", 1)
	vs.SetDefault("n_zi_traders", 100)
	vs.SetDefault("api_addr", ":8080")

	sim = SimParams{
		Symbol:        vs.GetString("symbol"),
		ClosingBidPrc: vs.GetFloat64("closing_bid_prc"),
		ClosingAskPrc: vs.GetFloat64("closing_ask_prc"),
		TickSize:      vs.GetFloat64("tick_size"),
		NMins:         vs.GetInt64("n_mins"),
		StepSize:      vs.GetInt64("step_size"),
		NThreads:      vs.GetInt("n_threads"),
		Verbose:       vs.GetInt("verbose"),
		L2Depth:       vs.GetInt("l2_depth"),
		DateFormat:    vs.GetString("date_format"),
		Date:          vs.GetString("date"),
		NRuns:         vs.GetInt("n_runs"),
		Seed:          vs.GetInt64("seed"),
		NZITraders:    vs.GetInt("n_zi_traders"),
		NFTTraders:    vs.GetInt("n_ft_traders"),
		NMTTraders:    vs.GetInt("n_mt_traders"),
		NHMTTraders:   vs.GetInt("n_hmt_traders"),
		NMMTraders:    vs.GetInt("n_mm_traders"),
		NINSTraders:   vs.GetInt("n_ins_traders"),
		NSTTraders:    vs.GetInt("n_st_traders"),
		APIEnabled:    vs.GetBool("api_enabled"),
		APIAddr:       vs.GetString("api_addr"),
	}
	sim.NSteps = sim.NMins * 60_000_000 / sim.StepSize

	if err := sim.validate(); err != nil {
		return sim, model, fv, err
	}

	model.ZIBase.Delta = vm.GetFloat64("ZI_base_params.delta")
	model.ZIBase.Mean = rangeOf(vm, "ZI_base_params", "mean")
	model.ZIBase.SD = rangeOf(vm, "ZI_base_params", "sd")
	model.ZIBase.LimitVol = defInt64(vm, "ZI_base_params.limit_vol", 1)
	model.ZIBase.MarketVol = defInt64(vm, "ZI_base_params.market_vol", 1)

	model.ZI.Alpha = vm.GetFloat64("ZI_params.alpha")
	model.ZI.MORatio = vm.GetFloat64("ZI_params.zi_mo_ratio")

	if sim.NFTTraders > 0 {
		model.FT.KappaLO = rangeOf(vm, "FT_params", "kappa_lo")
		model.FT.KappaLO3 = rangeOf(vm, "FT_params", "kappa_lo_3")
		model.FT.KappaMORatio = vm.GetFloat64("FT_params.kappa_mo_ratio")
		model.FT.Freq = vm.GetInt64("FT_params.ft_freq")
	}
	if sim.NMTTraders > 0 {
		model.MT.Alpha = rangeOf(vm, "MT_params", "alpha")
		model.MT.BetaLO = rangeOf(vm, "MT_params", "beta_lo")
		model.MT.BetaMORatio = vm.GetFloat64("MT_params.beta_mo_ratio")
		model.MT.Gamma = vm.GetFloat64("MT_params.gamma")
	}
	if sim.NHMTTraders > 0 {
		model.HMT.Alpha = rangeOf(vm, "HMT_params", "halpha")
		model.HMT.BetaLO = rangeOf(vm, "HMT_params", "hbeta_lo")
		model.HMT.BetaMORatio = vm.GetFloat64("HMT_params.hbeta_mo_ratio")
		model.HMT.Gamma = vm.GetFloat64("HMT_params.hgamma")
	}
	if sim.NMMTraders > 0 {
		model.MM = MMParams{
			Delta:      vm.GetFloat64("MM_params.mm_delta"),
			LimitRate:  vm.GetFloat64("MM_params.mm_lo"),
			MarketRate: vm.GetFloat64("MM_params.mm_mo"),
			Vol:        vm.GetInt64("MM_params.mm_vol"),
			Edge:       vm.GetInt64("MM_params.mm_edge"),
			PosLimit:   vm.GetInt64("MM_params.mm_pos_limit"),
			PosSafe:    vm.GetInt64("MM_params.mm_pos_safe"),
			MarketVol:  vm.GetInt64("MM_params.mm_mkvol"),
			Rest:       vm.GetInt64("MM_params.mm_rest"),
		}
	}
	if sim.NINSTraders > 0 {
		model.INS = INSParams{
			Mode:        vm.GetInt("INS_params.ins_mode"),
			POV:         vm.GetFloat64("INS_params.ins_pov"),
			StartStep:   vm.GetInt64("INS_params.start_step"),
			TotalVol:    vm.GetInt64("INS_params.total_vol"),
			Vol:         vm.GetInt64("INS_params.ins_vol"),
			Interval:    vm.GetInt64("INS_params.ins_interval"),
			ObsInterval: vm.GetInt64("INS_params.obs_interval"),
		}
	}
	if sim.NSTTraders > 0 {
		model.ST = STParams{
			MarketRate: vm.GetFloat64("ST_params.st_mo"),
			Vol:        vm.GetInt64("ST_params.st_vol"),
			Interval:   vm.GetInt64("ST_params.st_interval"),
		}
	}

	fv = FVParams{
		Mu:       vf.GetFloat64("mu"),
		Sigma:    vf.GetFloat64("sigma"),
		StepSize: sim.StepSize,
		DumpFreq: defInt64(vf, "dump_freq", 1),
		IsReady:  vf.GetInt("is_ready") != 0,
	}
	if fv.DumpFreq <= 0 {
		return sim, model, fv, fmt.Errorf(
			"fundamental_value_params: dump_freq must be positive, got %d", fv.DumpFreq)
	}

	return sim, model, fv, nil
}

func (p SimParams) validate() error {
	switch {
	case p.Symbol == "":
		return fmt.Errorf("sim_params: symbol is required")
	case p.TickSize <= 0:
		return fmt.Errorf("sim_params: tick_size must be positive, got %v", p.TickSize)
	case p.ClosingBidPrc <= 0 || p.ClosingAskPrc <= 0:
		return fmt.Errorf("sim_params: closing bid/ask prices must be positive")
	case p.ClosingAskPrc <= p.ClosingBidPrc:
		return fmt.Errorf("sim_params: closing ask %v must exceed closing bid %v",
			p.ClosingAskPrc, p.ClosingBidPrc)
	case p.StepSize <= 0:
		return fmt.Errorf("sim_params: step_size must be positive")
	case p.Date == "":
		return fmt.Errorf("sim_params: date is required")
	case p.NRuns <= 0:
		return fmt.Errorf("sim_params: n_runs must be positive")
	}
	return nil
}

// ApplyEnv loads .env (if present) and overrides selected settings from
// the environment. Priority: ENV > .env file > JSON.
func (p *SimParams) ApplyEnv(envPath string) {
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("SIM_N_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.NThreads = n
		}
	}
	if v := os.Getenv("SIM_N_RUNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.NRuns = n
		}
	}
	if v := os.Getenv("SIM_VERBOSE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.Verbose = n
		}
	}
	if v := os.Getenv("SIM_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			p.Seed = n
		}
	}
	if v := os.Getenv("API_ENABLED"); v != "" {
		p.APIEnabled = v == "true"
	}
	if v := os.Getenv("API_ADDR"); v != "" {
		p.APIAddr = v
	}
}

func readJSON(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return v, nil
}

// rangeOf reads either a pinned value at section.key or the interval at
// section.key_min / section.key_max.
func rangeOf(v *viper.Viper, section, key string) Range {
	if v.IsSet(section + "." + key) {
		x := v.GetFloat64(section + "." + key)
		return Range{Min: x, Max: x}
	}
	return Range{
		Min: v.GetFloat64(section + "." + key + "_min"),
		Max: v.GetFloat64(section + "." + key + "_max"),
	}
}

func defInt64(v *viper.Viper, key string, def int64) int64 {
	if v.IsSet(key) {
		return v.GetInt64(key)
	}
	return def
}
