package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/signalsfoundry/uowc-simulator/core"
	"github.com/signalsfoundry/uowc-simulator/internal/logging"
	"github.com/signalsfoundry/uowc-simulator/internal/observability"
)

func main() {
	scenarioPath := flag.String("scenario", "configs/link_scenario.json", "path to the link scenario JSON")
	seed := flag.Uint64("seed", 1, "base seed for turbulence sampling")
	workers := flag.Int("workers", 0, "sweep worker pool size (0 = GOMAXPROCS)")
	trials := flag.Int("trials", 0, "Monte-Carlo trials at the reference distance (0 = skip)")
	refDistance := flag.Float64("ref-distance", 10.0, "reference distance for Monte-Carlo stats [m]")
	waterName := flag.String("water", "", "restrict to a single water preset (default: all four)")
	metricsListen := flag.String("metrics-listen", "", "address to serve Prometheus /metrics on (empty = disabled)")

	flag.Parse()

	log := logging.NewFromEnv()
	ctx, log := logging.WithRunLogger(context.Background(), log)

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "tracing init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown, log)

	// Load transmitters, receivers and link setups from the JSON scenario.
	reg := core.NewRegistry()
	f, err := os.Open(*scenarioPath)
	if err != nil {
		log.Error(ctx, "failed to open scenario", logging.String("path", *scenarioPath), logging.String("error", err.Error()))
		os.Exit(1)
	}
	scenario, err := core.LoadLinkScenario(reg, f)
	f.Close()
	if err != nil {
		log.Error(ctx, "failed to load scenario", logging.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info(ctx, "scenario loaded",
		logging.Int("transmitters", len(scenario.TransmitterNames)),
		logging.Int("receivers", len(scenario.ReceiverNames)),
		logging.Int("setups", len(scenario.SetupNames)),
	)

	media := core.AllWaterMedia()
	if *waterName != "" {
		w, err := core.WaterMediumByName(*waterName)
		if err != nil {
			log.Error(ctx, "unknown water preset", logging.String("water", *waterName))
			os.Exit(1)
		}
		media = []core.WaterMedium{w}
	}

	engine := core.NewSweepEngine(reg)
	engine.Log = log
	engine.BaseSeed = *seed
	engine.Workers = *workers

	if *metricsListen != "" {
		collector, err := observability.NewSweepCollector(nil)
		if err != nil {
			log.Error(ctx, "metrics init failed", logging.String("error", err.Error()))
			os.Exit(1)
		}
		collector.SetScenarioCounts(len(scenario.SetupNames), len(media))
		engine.Metrics = collector

		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsListen, mux); err != nil {
				log.Warn(ctx, "metrics server stopped", logging.String("error", err.Error()))
			}
		}()
		log.Info(ctx, "serving metrics", logging.String("addr", *metricsListen))
	}

	for _, setupName := range scenario.SetupNames {
		points, err := engine.Run(ctx, setupName, media)
		if err != nil {
			log.Error(ctx, "sweep failed", logging.String("setup", setupName), logging.String("error", err.Error()))
			os.Exit(1)
		}

		fmt.Printf("Setup %s:\n", setupName)
		for _, p := range points {
			fmt.Printf("↳ %-14s d=%5.2f m  Pr=%8.2f dBm  SNR=%6.2f dB  BER=%.3e  quality=%-9s rate=%5.0f Mbps\n",
				p.WaterName, p.DistanceM, p.ReceivedPowerDBm, p.SNRdB, p.BEROOK, p.Quality, p.NominalRateMbps)
		}

		rows, err := engine.RangeReport(ctx, setupName, media)
		if err != nil {
			log.Error(ctx, "range report failed", logging.String("setup", setupName), logging.String("error", err.Error()))
			os.Exit(1)
		}
		setup, _ := reg.Setup(setupName)
		fmt.Printf("Max range [m] for Pr>=%.1f dBm / BER<=%.0e / SNR>=%.0f dB:\n",
			setup.Thresholds.SensitivityDBm, setup.Thresholds.BERTargetMax, setup.Thresholds.SNRTargetDB)
		for _, row := range rows {
			fmt.Printf("↳ %-14s power=%5.1f  ber=%5.1f  snr=%5.1f\n",
				row.WaterName, row.PowerRangeM, row.BERRangeM, row.SNRRangeM)
		}

		if *trials > 0 {
			for _, w := range media {
				stats, err := engine.MonteCarlo(ctx, setupName, w, *refDistance, *trials)
				if err != nil {
					log.Error(ctx, "monte carlo failed", logging.String("setup", setupName), logging.String("error", err.Error()))
					os.Exit(1)
				}
				fmt.Printf("↳ %-14s Monte-Carlo @ %.1f m: mean=%.3e W std=%.3e W scint=%.4f (n=%d)\n",
					w.Name, *refDistance, stats.MeanW, stats.StdW, stats.ScintillationIndex, stats.Trials)
			}
		}
	}

	log.Info(ctx, "done")
}
