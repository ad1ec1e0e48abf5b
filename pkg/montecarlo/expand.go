package montecarlo

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/Ferrari1996gk/exchange-lob/params"
)

// Expand materialises a Monte-Carlo batch: it derives one seed per run
// from the batch seed, samples the calibration ranges from a separate
// stream, scales per-capita rates by the population sizes, creates the
// run directories and records the sampled values in run_params.json.
//
// Two independent streams keep calibration sampling from disturbing the
// run seeds: changing a calibration range never changes which seeds the
// runs get.
func Expand(workflowDir, resultsPath string, sim params.SimParams, model params.ModelParams, fv params.FVParams) ([]params.RunParams, error) {
	batchID := uuid.NewString()
	seeds := rand.New(rand.NewSource(sim.Seed))
	calib := rand.New(rand.NewSource(seeds.Int63()))

	fv0 := 0.5*sim.ClosingBidPrc + 0.5*sim.ClosingAskPrc

	runs := make([]params.RunParams, 0, sim.NRuns)
	for runID := 0; runID < sim.NRuns; runID++ {
		runSeed := seeds.Int63()

		base := params.ZIBaseParams{
			Delta:     model.ZIBase.Delta,
			Mean:      model.ZIBase.Mean.Sample(calib),
			SD:        model.ZIBase.SD.Sample(calib),
			LimitVol:  model.ZIBase.LimitVol,
			MarketVol: model.ZIBase.MarketVol,
		}

		ziAlpha := model.ZI.Alpha
		ziMu := ziAlpha * model.ZI.MORatio

		run := params.RunParams{
			RunID:       runID,
			BatchID:     batchID,
			Seed:        runSeed,
			Date:        sim.Date,
			ResultsPath: filepath.Join(resultsPath, fmt.Sprintf("run_%05d", runID)),
			ZI: params.ZIParams{
				Alpha: ziAlpha / float64(sim.NZITraders),
				Mu:    ziMu / float64(sim.NZITraders),
				Base:  base,
			},
			FV: params.FVParams{
				S0:         fv0,
				Mu:         fv.Mu,
				Sigma:      fv.Sigma,
				StepSize:   sim.StepSize,
				Seed:       runSeed,
				DumpFreq:   fv.DumpFreq,
				IsReady:    fv.IsReady,
				SourcePath: workflowDir,
			},
		}

		record := map[string]any{
			"sim_params": map[string]any{"seed": runSeed, "batch_id": batchID},
			"ZI_base_params": map[string]any{
				"delta": base.Delta, "mean": base.Mean, "sd": base.SD,
				"limit_vol": base.LimitVol, "market_vol": base.MarketVol,
			},
			"ZI_params": map[string]any{"alpha": ziAlpha, "mu": ziMu},
		}

		if sim.NFTTraders > 0 {
			kappaLO := model.FT.KappaLO.Sample(calib)
			kappaLO3 := model.FT.KappaLO3.Sample(calib)
			kappaMO := kappaLO * model.FT.KappaMORatio
			kappaMO3 := kappaLO3 * model.FT.KappaMORatio

			n := float64(sim.NFTTraders)
			run.FT = params.FTParams{
				KappaLO:  kappaLO / n,
				KappaMO:  kappaMO / n,
				KappaLO3: kappaLO3 / n,
				KappaMO3: kappaMO3 / n,
				Freq:     model.FT.Freq,
				Base:     base,
			}
			record["FT_params"] = map[string]any{
				"kappa_lo": kappaLO, "kappa_mo": kappaMO,
				"kappa_lo_3": kappaLO3, "kappa_mo_3": kappaMO3,
				"ft_freq": model.FT.Freq,
			}
		}

		if sim.NMTTraders > 0 {
			betaLO := model.MT.BetaLO.Sample(calib)
			betaMO := betaLO * model.MT.BetaMORatio
			alpha := model.MT.Alpha.Sample(calib)

			n := float64(sim.NMTTraders)
			run.MT = params.MTParams{
				Alpha:  alpha,
				BetaLO: betaLO / n,
				BetaMO: betaMO / n,
				Gamma:  model.MT.Gamma,
				Base:   base,
			}
			record["MT_params"] = map[string]any{
				"alpha": alpha, "beta_lo": betaLO, "beta_mo": betaMO,
				"gamma": model.MT.Gamma,
			}
		}

		if sim.NHMTTraders > 0 {
			betaLO := model.HMT.BetaLO.Sample(calib)
			betaMO := betaLO * model.HMT.BetaMORatio
			alpha := model.HMT.Alpha.Sample(calib)

			n := float64(sim.NHMTTraders)
			run.HMT = params.HMTParams{
				Alpha:  alpha,
				BetaLO: betaLO / n,
				BetaMO: betaMO / n,
				Gamma:  model.HMT.Gamma,
				Base:   base,
			}
			record["HMT_params"] = map[string]any{
				"halpha": alpha, "hbeta_lo": betaLO, "hbeta_mo": betaMO,
				"hgamma": model.HMT.Gamma,
			}
		}

		if sim.NMMTraders > 0 {
			n := float64(sim.NMMTraders)
			run.MM = model.MM
			run.MM.LimitRate = model.MM.LimitRate / n
			run.MM.MarketRate = model.MM.MarketRate / n
			record["MM_params"] = map[string]any{
				"mm_delta": model.MM.Delta, "mm_lo": model.MM.LimitRate,
				"mm_mo": model.MM.MarketRate, "mm_vol": model.MM.Vol,
				"mm_edge": model.MM.Edge, "mm_pos_limit": model.MM.PosLimit,
				"mm_pos_safe": model.MM.PosSafe, "mm_mkvol": model.MM.MarketVol,
				"mm_rest": model.MM.Rest,
			}
		}

		if sim.NINSTraders > 0 {
			run.INS = model.INS
			record["INS_params"] = map[string]any{
				"ins_mode": model.INS.Mode, "ins_pov": model.INS.POV,
				"start_step": model.INS.StartStep, "total_vol": model.INS.TotalVol,
				"ins_vol": model.INS.Vol, "ins_interval": model.INS.Interval,
				"obs_interval": model.INS.ObsInterval,
			}
		}

		if sim.NSTTraders > 0 {
			run.ST = model.ST
			record["ST_params"] = map[string]any{
				"st_mo": model.ST.MarketRate, "st_vol": model.ST.Vol,
				"st_interval": model.ST.Interval,
			}
		}

		if err := os.MkdirAll(run.ResultsPath, 0o755); err != nil {
			return nil, fmt.Errorf("create run dir: %w", err)
		}
		if err := writeRunRecord(run.ResultsPath, record); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func writeRunRecord(dir string, record map[string]any) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run record: %w", err)
	}
	path := filepath.Join(dir, "run_params.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
