package core

import (
	"context"
	"math"
	"reflect"
	"sync"
	"testing"
)

type countingRecorder struct {
	mu          sync.Mutex
	evaluations int
	fadingDraws int
	durations   int
}

func (c *countingRecorder) RecordEvaluation(water, mode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evaluations++
}

func (c *countingRecorder) AddFadingDraws(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fadingDraws += n
}

func (c *countingRecorder) ObserveSweepDuration(setup string, seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.durations++
}

func TestSweepRunOrderedAndRepeatable(t *testing.T) {
	engine := NewSweepEngine(seedRegistry(t))
	rec := &countingRecorder{}
	engine.Metrics = rec
	media := []WaterMedium{PureSea(), TurbidHarbor()}

	first, err := engine.Run(context.Background(), "led-ps", media)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(first) != 2*39 {
		t.Fatalf("len(points) = %d, want %d", len(first), 2*39)
	}

	// Points are grouped by medium, then ascending by distance.
	for i, p := range first {
		wantWater := media[i/39].Name
		if p.WaterName != wantWater {
			t.Fatalf("point %d: water = %q, want %q", i, p.WaterName, wantWater)
		}
		if i%39 > 0 && p.DistanceM <= first[i-1].DistanceM {
			t.Fatalf("point %d: distance %v not above previous %v", i, p.DistanceM, first[i-1].DistanceM)
		}
	}

	second, err := engine.Run(context.Background(), "led-ps", media)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two deterministic runs over the same grid differ")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.evaluations != 2*2*39 {
		t.Errorf("recorded evaluations = %d, want %d", rec.evaluations, 2*2*39)
	}
	if rec.durations != 2 {
		t.Errorf("recorded sweep durations = %d, want 2", rec.durations)
	}
}

func TestSweepRunUnknownSetup(t *testing.T) {
	engine := NewSweepEngine(NewRegistry())
	if _, err := engine.Run(context.Background(), "ghost", nil); err == nil {
		t.Fatal("expected error for unknown setup")
	}
}

func TestSweepTurbidWaterDegradesSNR(t *testing.T) {
	engine := NewSweepEngine(seedRegistry(t))
	points, err := engine.Run(context.Background(), "led-ps", []WaterMedium{PureSea(), TurbidHarbor()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	pure, turbid := points[:39], points[39:]
	for i := range pure {
		if turbid[i].SNRdB >= pure[i].SNRdB {
			t.Fatalf("d=%v: turbid SNR %v not below pure-sea SNR %v",
				pure[i].DistanceM, turbid[i].SNRdB, pure[i].SNRdB)
		}
	}

	// Short range in clean water is a strong link.
	if pure[0].Quality != LinkQualityExcellent {
		t.Errorf("pure sea at %vm: quality %v, want excellent", pure[0].DistanceM, pure[0].Quality)
	}
}

func TestMonteCarloMeanMatchesDeterministic(t *testing.T) {
	reg := NewRegistry()
	if err := reg.AddTransmitter("led", fixtureTx()); err != nil {
		t.Fatalf("AddTransmitter: %v", err)
	}
	if err := reg.AddReceiver("pd", fixtureRx()); err != nil {
		t.Fatalf("AddReceiver: %v", err)
	}
	if err := reg.AddSetup(LinkSetup{
		Name:        "faded",
		Transmitter: "led",
		Receiver:    "pd",
		Geom:        fixtureGeom(1),
		Turb:        TurbulenceSpec{Model: TurbulenceLognormal, ScintillationIndex: 0.2},
		Noise:       fixtureNoise(),
	}); err != nil {
		t.Fatalf("AddSetup: %v", err)
	}

	engine := NewSweepEngine(reg)
	rec := &countingRecorder{}
	engine.Metrics = rec

	stats, err := engine.MonteCarlo(context.Background(), "faded", ClearOcean(), 10, 50000)
	if err != nil {
		t.Fatalf("MonteCarlo: %v", err)
	}
	if stats.Trials != 50000 {
		t.Errorf("Trials = %d, want 50000", stats.Trials)
	}

	link, err := reg.BuildLink("faded", ClearOcean(), 10, 1)
	if err != nil {
		t.Fatalf("BuildLink: %v", err)
	}
	det := link.ReceivedPower(false)
	if math.Abs(stats.MeanW-det)/det > 0.03 {
		t.Errorf("Monte-Carlo mean %v deviates from deterministic Pr %v by more than 3%%", stats.MeanW, det)
	}
	// Empirical scintillation should land near the configured index.
	if stats.ScintillationIndex < 0.1 || stats.ScintillationIndex > 0.3 {
		t.Errorf("empirical scintillation index = %v, want near 0.2", stats.ScintillationIndex)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.fadingDraws != 50000 {
		t.Errorf("recorded fading draws = %d, want 50000", rec.fadingDraws)
	}

	if _, err := engine.MonteCarlo(context.Background(), "faded", ClearOcean(), 10, 0); err == nil {
		t.Error("expected error for zero trials")
	}
}

func TestRangeReportOrdersMediaByClarity(t *testing.T) {
	engine := NewSweepEngine(seedRegistry(t))
	rows, err := engine.RangeReport(context.Background(), "led-ps", []WaterMedium{PureSea(), TurbidHarbor()})
	if err != nil {
		t.Fatalf("RangeReport: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	pure, turbid := rows[0], rows[1]

	// Pure sea stays above the -53.4 dBm sensitivity across the whole
	// 1..20 m sweep; turbid harbor drops out around 4 m.
	if pure.PowerRangeM < 19 {
		t.Errorf("pure sea power range = %v m, want the full sweep (>= 19)", pure.PowerRangeM)
	}
	if turbid.PowerRangeM < 3 || turbid.PowerRangeM > 5 {
		t.Errorf("turbid harbor power range = %v m, want within (3, 5)", turbid.PowerRangeM)
	}
	if turbid.PowerRangeM >= pure.PowerRangeM {
		t.Errorf("turbid power range %v should trail pure sea %v", turbid.PowerRangeM, pure.PowerRangeM)
	}

	// The 50 dB SNR target is the strictest criterion, the BER target next,
	// sensitivity the loosest.
	if !(pure.SNRRangeM <= pure.BERRangeM && pure.BERRangeM <= pure.PowerRangeM) {
		t.Errorf("pure sea ranges not ordered strictest-first: snr=%v ber=%v power=%v",
			pure.SNRRangeM, pure.BERRangeM, pure.PowerRangeM)
	}
	if pure.SNRRangeM <= 0 {
		t.Errorf("pure sea SNR range = %v, want positive", pure.SNRRangeM)
	}
}

func TestPowerDBm(t *testing.T) {
	if got := PowerDBm(1e-3); math.Abs(got) > 1e-12 {
		t.Errorf("PowerDBm(1 mW) = %v, want 0", got)
	}
	if got := PowerDBm(0); math.IsInf(got, -1) {
		t.Errorf("PowerDBm(0) = %v, want finite floor", got)
	}
}

func TestDistanceGridDefaults(t *testing.T) {
	grid := distanceGrid(SweepBounds{})
	if len(grid) != 39 {
		t.Fatalf("default grid size = %d, want 39", len(grid))
	}
	if grid[0] != 1 || math.Abs(grid[len(grid)-1]-20) > 1e-9 {
		t.Errorf("default grid spans [%v, %v], want [1, 20]", grid[0], grid[len(grid)-1])
	}

	single := distanceGrid(SweepBounds{MinDistanceM: 5, MaxDistanceM: 9, Points: 1})
	if len(single) != 1 || single[0] != 5 {
		t.Errorf("single-point grid = %v, want [5]", single)
	}
}
