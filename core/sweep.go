package core

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/signalsfoundry/uowc-simulator/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gonum.org/v1/gonum/stat"
)

const tracerName = "uowc-simulator/core"

// rangeSearchStepM is the forward-search granularity for RangeReport.
const rangeSearchStepM = 0.1

// SweepMetricsRecorder receives evaluation counts and timings from the sweep
// engine. internal/observability provides the Prometheus-backed
// implementation; a nil recorder disables recording.
type SweepMetricsRecorder interface {
	RecordEvaluation(water, mode string)
	AddFadingDraws(n int)
	ObserveSweepDuration(setup string, seconds float64)
}

// SweepPoint is one evaluated (water, distance) tuple.
type SweepPoint struct {
	WaterName        string
	DistanceM        float64
	ReceivedPowerW   float64
	ReceivedPowerDBm float64
	SNRdB            float64
	BEROOK           float64
	Quality          LinkQuality
	NominalRateMbps  float64
}

// RangeRow reports, for one water medium, the maximum distance satisfying
// each acceptance threshold of a setup (0 when never satisfied).
type RangeRow struct {
	WaterName   string
	PowerRangeM float64
	BERRangeM   float64
	SNRRangeM   float64
}

// SampleStats summarises a Monte-Carlo received-power batch.
type SampleStats struct {
	Trials int
	MeanW  float64
	StdW   float64
	// ScintillationIndex is the empirical normalized intensity variance
	// (sigma/mean)^2 of the batch.
	ScintillationIndex float64
}

// SweepEngine evaluates link setups over distance grids and water media.
// Every evaluation is an independent pure computation, so points fan out
// across a bounded worker pool; each worker owns an independently seeded
// turbulence sampler, which keeps Monte-Carlo trials uncorrelated across
// workers and runs reproducible for a fixed BaseSeed.
type SweepEngine struct {
	Registry *Registry
	Log      logging.Logger
	Metrics  SweepMetricsRecorder

	// Workers bounds the evaluation pool; <= 0 means GOMAXPROCS.
	Workers int
	// BaseSeed derives per-worker turbulence seeds.
	BaseSeed uint64
}

// NewSweepEngine builds an engine with a noop logger and default pool size.
// Callers tweak the exported fields before the first Run.
func NewSweepEngine(reg *Registry) *SweepEngine {
	return &SweepEngine{
		Registry: reg,
		Log:      logging.Noop(),
		Workers:  0,
		BaseSeed: 1,
	}
}

func (e *SweepEngine) workerCount() int {
	if e.Workers > 0 {
		return e.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Run evaluates the named setup deterministically over its distance grid for
// each provided water medium. Results are ordered by medium, then distance.
func (e *SweepEngine) Run(ctx context.Context, setupName string, media []WaterMedium) ([]SweepPoint, error) {
	setup, err := e.Registry.Setup(setupName)
	if err != nil {
		return nil, err
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "sweep.run")
	span.SetAttributes(
		attribute.String("setup", setupName),
		attribute.Int("media", len(media)),
	)
	defer span.End()
	start := time.Now()

	distances := distanceGrid(setup.Sweep)
	points := make([]SweepPoint, len(media)*len(distances))

	type task struct {
		idx   int
		water WaterMedium
		dist  float64
	}
	tasks := make(chan task)

	var wg sync.WaitGroup
	var firstErr error
	var errOnce sync.Once

	for w := 0; w < e.workerCount(); w++ {
		wg.Add(1)
		seed := e.BaseSeed + uint64(w)
		go func(seed uint64) {
			defer wg.Done()
			for t := range tasks {
				link, err := e.Registry.BuildLink(setupName, t.water, t.dist, seed)
				if err != nil {
					errOnce.Do(func() { firstErr = err })
					continue
				}
				points[t.idx] = e.evaluate(link, setup.Noise)
				if e.Metrics != nil {
					e.Metrics.RecordEvaluation(t.water.Name, "deterministic")
				}
			}
		}(seed)
	}

	idx := 0
	for _, water := range media {
		for _, d := range distances {
			tasks <- task{idx: idx, water: water, dist: d}
			idx++
		}
	}
	close(tasks)
	wg.Wait()

	if firstErr != nil {
		return nil, fmt.Errorf("sweep %q: %w", setupName, firstErr)
	}

	elapsed := time.Since(start)
	if e.Metrics != nil {
		e.Metrics.ObserveSweepDuration(setupName, elapsed.Seconds())
	}
	e.Log.Debug(ctx, "sweep complete",
		logging.String("setup", setupName),
		logging.Int("points", len(points)),
		logging.Any("elapsed", elapsed),
	)
	return points, nil
}

func (e *SweepEngine) evaluate(link *Link, noise NoiseParams) SweepPoint {
	pr := link.ReceivedPower(false)
	snr := link.SNRdB(noise)
	quality, rate := ClassifySNR(snr)
	return SweepPoint{
		WaterName:        link.Water.Name,
		DistanceM:        link.Geom.DistanceM,
		ReceivedPowerW:   pr,
		ReceivedPowerDBm: PowerDBm(pr),
		SNRdB:            snr,
		BEROOK:           BEROOKFromSNRdB(snr),
		Quality:          quality,
		NominalRateMbps:  rate,
	}
}

// MonteCarlo draws `trials` stochastic received-power samples for a setup at
// a fixed distance, splitting the batch across the worker pool. Each worker
// builds its own link (and therefore its own fading sampler) from a distinct
// seed.
func (e *SweepEngine) MonteCarlo(ctx context.Context, setupName string, water WaterMedium, distanceM float64, trials int) (SampleStats, error) {
	if trials <= 0 {
		return SampleStats{}, fmt.Errorf("monte carlo: trials %d must be positive", trials)
	}
	if _, err := e.Registry.Setup(setupName); err != nil {
		return SampleStats{}, err
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "sweep.montecarlo")
	span.SetAttributes(
		attribute.String("setup", setupName),
		attribute.String("water", water.Name),
		attribute.Int("trials", trials),
	)
	defer span.End()

	workers := e.workerCount()
	if workers > trials {
		workers = trials
	}
	per := trials / workers
	extra := trials % workers

	samples := make([]float64, 0, trials)
	var mu sync.Mutex
	var wg sync.WaitGroup
	var firstErr error
	var errOnce sync.Once

	for w := 0; w < workers; w++ {
		n := per
		if w < extra {
			n++
		}
		if n == 0 {
			continue
		}
		wg.Add(1)
		seed := e.BaseSeed + uint64(w)
		go func(seed uint64, n int) {
			defer wg.Done()
			link, err := e.Registry.BuildLink(setupName, water, distanceM, seed)
			if err != nil {
				errOnce.Do(func() { firstErr = err })
				return
			}
			batch := link.ReceivedPowerSamples(n)
			mu.Lock()
			samples = append(samples, batch...)
			mu.Unlock()
		}(seed, n)
	}
	wg.Wait()

	if firstErr != nil {
		return SampleStats{}, fmt.Errorf("monte carlo %q: %w", setupName, firstErr)
	}
	if e.Metrics != nil {
		e.Metrics.AddFadingDraws(trials)
		e.Metrics.RecordEvaluation(water.Name, "stochastic")
	}

	mean := stat.Mean(samples, nil)
	std := stat.StdDev(samples, nil)
	scint := 0.0
	if mean > 0 {
		scint = (std / mean) * (std / mean)
	}
	e.Log.Debug(ctx, "monte carlo complete",
		logging.String("setup", setupName),
		logging.String("water", water.Name),
		logging.Int("trials", trials),
	)
	return SampleStats{
		Trials:             trials,
		MeanW:              mean,
		StdW:               std,
		ScintillationIndex: scint,
	}, nil
}

// RangeReport finds, for each water medium, the maximum distance at which
// the setup still meets each of its three acceptance thresholds (received
// power sensitivity, OOK BER target, SNR target) via a stepped forward
// search over the sweep bounds.
func (e *SweepEngine) RangeReport(ctx context.Context, setupName string, media []WaterMedium) ([]RangeRow, error) {
	setup, err := e.Registry.Setup(setupName)
	if err != nil {
		return nil, err
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "sweep.rangereport")
	span.SetAttributes(attribute.String("setup", setupName))
	defer span.End()

	th := setup.Thresholds
	rows := make([]RangeRow, 0, len(media))
	for _, water := range media {
		rows = append(rows, RangeRow{
			WaterName: water.Name,
			PowerRangeM: e.maxRange(setupName, setup, water, func(l *Link) bool {
				return PowerDBm(l.ReceivedPower(false)) >= th.SensitivityDBm
			}),
			BERRangeM: e.maxRange(setupName, setup, water, func(l *Link) bool {
				return BEROOKFromSNRdB(l.SNRdB(setup.Noise)) <= th.BERTargetMax
			}),
			SNRRangeM: e.maxRange(setupName, setup, water, func(l *Link) bool {
				return l.SNRdB(setup.Noise) >= th.SNRTargetDB
			}),
		})
	}
	e.Log.Debug(ctx, "range report complete",
		logging.String("setup", setupName),
		logging.Int("media", len(rows)),
	)
	return rows, nil
}

// maxRange walks the sweep interval in fixed steps and returns the last
// distance where pred held, or 0 if it never did. The predicate is assumed
// monotone in practice but the search does not rely on it.
func (e *SweepEngine) maxRange(setupName string, setup LinkSetup, water WaterMedium, pred func(*Link) bool) float64 {
	bounds := normalizedBounds(setup.Sweep)
	last := 0.0
	for d := bounds.MinDistanceM; d <= bounds.MaxDistanceM; d += rangeSearchStepM {
		link, err := e.Registry.BuildLink(setupName, water, d, e.BaseSeed)
		if err != nil {
			break
		}
		if pred(link) {
			last = d
		}
	}
	return last
}

// PowerDBm converts a power in watts to dBm, flooring the argument so a
// zero-power link reports a very low level instead of -Inf.
func PowerDBm(w float64) float64 {
	return 10 * math.Log10(math.Max(w, 1e-30)/1e-3)
}

func distanceGrid(b SweepBounds) []float64 {
	b = normalizedBounds(b)
	if b.Points == 1 {
		return []float64{b.MinDistanceM}
	}
	out := make([]float64, b.Points)
	step := (b.MaxDistanceM - b.MinDistanceM) / float64(b.Points-1)
	for i := range out {
		out[i] = b.MinDistanceM + float64(i)*step
	}
	return out
}

func normalizedBounds(b SweepBounds) SweepBounds {
	if b.MinDistanceM <= 0 {
		b.MinDistanceM = 1.0
	}
	if b.MaxDistanceM <= b.MinDistanceM {
		b.MaxDistanceM = b.MinDistanceM + 19.0
	}
	if b.Points <= 0 {
		b.Points = 39
	}
	return b
}
