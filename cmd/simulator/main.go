package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Ferrari1996gk/exchange-lob/params"
	"github.com/Ferrari1996gk/exchange-lob/pkg/api"
	"github.com/Ferrari1996gk/exchange-lob/pkg/montecarlo"
	"github.com/Ferrari1996gk/exchange-lob/pkg/sim"
	"github.com/Ferrari1996gk/exchange-lob/pkg/storage"
	"github.com/Ferrari1996gk/exchange-lob/pkg/util"
)

func main() {
	workflow := flag.String("workflow", "workflow", "directory holding sim_params.json, model_params.json and fundamental_value_params.json")
	results := flag.String("results", "", "results directory (default: <workflow>/results)")
	force := flag.Bool("force", false, "discard existing results and run state before starting")
	debug := flag.Bool("debug", false, "enable debug logging")
	envFile := flag.String("env", "", "path to a .env file with overrides")
	flag.Parse()

	simParams, model, fv, err := params.Load(*workflow)
	if err != nil {
		log.Fatalf("load params: %v", err)
	}
	simParams.ApplyEnv(*envFile)

	resultsPath := *results
	if resultsPath == "" {
		resultsPath = filepath.Join(*workflow, "results")
	}
	if *force {
		if err := os.RemoveAll(resultsPath); err != nil {
			log.Fatalf("clear results: %v", err)
		}
	}
	if err := os.MkdirAll(resultsPath, 0755); err != nil {
		log.Fatalf("create results dir: %v", err)
	}

	logger, err := util.NewLoggerWithFile(filepath.Join(resultsPath, "simulator.log"), *debug)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	sugar.Infow("params_loaded",
		"workflow", *workflow,
		"symbol", simParams.Symbol,
		"date", simParams.Date,
		"n_runs", simParams.NRuns,
		"n_steps", simParams.NSteps,
		"n_threads", simParams.NThreads,
		"verbose", simParams.Verbose,
		"seed", simParams.Seed,
	)

	store, err := storage.NewRunStore(filepath.Join(resultsPath, "runstore"))
	if err != nil {
		sugar.Fatalw("run_store_open_failed", "err", err)
	}
	defer store.Close()

	runs, err := montecarlo.Expand(*workflow, resultsPath, simParams, model, fv)
	if err != nil {
		sugar.Fatalw("batch_expand_failed", "err", err)
	}
	sugar.Infow("batch_expanded", "batch_id", runs[0].BatchID, "runs", len(runs))

	// Live market data surface, fed by run 0
	var feed sim.Feed
	if simParams.APIEnabled {
		server := api.NewServer(sugar)
		go func() {
			if err := server.Start(simParams.APIAddr); err != nil {
				sugar.Errorw("api_server_failed", "err", err)
			}
		}()
		feed = server
	}

	runner := montecarlo.NewRunner(simParams, store, sugar, feed)

	start := time.Now()
	result := runner.RunBatch(runs)

	sugar.Infow("simulator_done",
		"completed", result.Completed,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"elapsed", time.Since(start).String(),
		"results", resultsPath,
	)

	if result.Failed > 0 {
		os.Exit(1)
	}
}
