package fastpath

import (
	"math"
	"testing"
)

func TestExtractTelemetry_SpanAndVelocity(t *testing.T) {
	tests := []struct {
		name     string
		window   []uint64
		wantSpan float64
	}{
		{"ascending run", []uint64{100, 101, 102, 105, 110}, 10},
		{"descending run", []uint64{110, 105, 102, 101, 100}, -10},
		{"flat window", []uint64{7, 7, 7, 7}, 0},
		{"wrapped difference", []uint64{5, math.MaxUint64}, -6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tel := ExtractTelemetry(tt.window)
			if tel.SpatialSpan != tt.wantSpan {
				t.Errorf("SpatialSpan = %.1f, want %.1f", tel.SpatialSpan, tt.wantSpan)
			}
			if want := velocityScale * tt.wantSpan; tel.Velocity != want {
				t.Errorf("Velocity = %.1f, want %.1f", tel.Velocity, want)
			}
			t.Logf("✓ span %.1f, velocity %.1f", tel.SpatialSpan, tel.Velocity)
		})
	}
}

func TestExtractTelemetry_SingleAddress(t *testing.T) {
	tel := ExtractTelemetry([]uint64{42})

	if tel.SpatialSpan != 0 || tel.Velocity != 0 {
		t.Errorf("span/velocity = %.1f/%.1f, want 0/0", tel.SpatialSpan, tel.Velocity)
	}
	if tel.Variance != 0 {
		t.Errorf("Variance = %g, want exactly 0 for a single address", tel.Variance)
	}
	if tel.Spectral != 0 {
		t.Errorf("Spectral = %g, want 0 for a single address", tel.Spectral)
	}
	if tel.TemporalWeight <= 0 || tel.TemporalWeight >= 1 {
		t.Errorf("TemporalWeight = %g, want inside (0,1)", tel.TemporalWeight)
	}
	for i, v := range []float64{
		tel.SpatialSpan, tel.Velocity, tel.Variance,
		tel.Spectral, tel.TemporalWeight, tel.ContextID,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("feature %d is non-finite: %g", i, v)
		}
	}
	t.Logf("✓ degenerate [42] window fully defined: %+v", tel)
}

func TestExtractTelemetry_Empty(t *testing.T) {
	if got := ExtractTelemetry(nil); got != (Telemetry{}) {
		t.Errorf("empty window = %+v, want zero Telemetry", got)
	}
	if got := ExtractTelemetry([]uint64{}); got != (Telemetry{}) {
		t.Errorf("zero-length window = %+v, want zero Telemetry", got)
	}
}

func TestExtractTelemetry_Variance(t *testing.T) {
	tests := []struct {
		name   string
		window []uint64
		want   float64
	}{
		// offsets 0,2,5,10,18: mean 7, E[x^2] = 453/5 => 90.6 - 49 = 41.6
		{"scenario window", []uint64{100, 102, 105, 110, 118}, 41.6},
		// offsets 0..15: variance of a stride-1 ramp is (16^2 - 1)/12
		{"unit-stride ramp", seqWindow(1000, 16), 255.0 / 12.0},
		{"constant addresses", []uint64{9, 9, 9, 9, 9}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tel := ExtractTelemetry(tt.window)
			if math.Abs(tel.Variance-tt.want) > 1e-9 {
				t.Errorf("Variance = %.9f, want %.9f", tel.Variance, tt.want)
			}
			t.Logf("✓ variance %.4f", tel.Variance)
		})
	}
}

func TestExtractTelemetry_Spectral(t *testing.T) {
	// Constant stride: every normalized stride is identical, and the first
	// harmonic sums to zero over a full period.
	ramp := ExtractTelemetry(seqWindow(5000, 17))
	if math.Abs(ramp.Spectral) > 1e-9 {
		t.Errorf("constant-stride Spectral = %g, want ~0", ramp.Spectral)
	}

	// Out-and-back sweep: strides follow one cosine period, so the first
	// harmonic correlation is strong.
	strides := []int64{1000, 707, 0, -707, -1000, -707, 0, 707}
	window := make([]uint64, 0, len(strides)+1)
	pos := uint64(100000)
	window = append(window, pos)
	for _, d := range strides {
		pos = uint64(int64(pos) + d)
		window = append(window, pos)
	}
	sweep := ExtractTelemetry(window)
	if sweep.Spectral < 0.3 {
		t.Errorf("out-and-back Spectral = %.4f, want > 0.3", sweep.Spectral)
	}
	if sweep.Spectral < -1 || sweep.Spectral > 1 {
		t.Errorf("Spectral = %g escapes [-1, 1]", sweep.Spectral)
	}
	t.Logf("✓ spectral separates rhythm: ramp %.2e vs sweep %.4f",
		ramp.Spectral, sweep.Spectral)
}

func TestExtractTelemetry_SuffixCap(t *testing.T) {
	long := seqWindow(0, 200)
	capped := ExtractTelemetry(long)
	suffix := ExtractTelemetry(long[len(long)-MaxWindow:])
	if capped != suffix {
		t.Errorf("long-window telemetry differs from its %d-suffix:\n got %+v\nwant %+v",
			MaxWindow, capped, suffix)
	}

	// Addresses before the suffix must be invisible.
	noisy := make([]uint64, 200)
	for i := range noisy[:136] {
		noisy[i] = uint64(i) * 7919 % 100000
	}
	copy(noisy[136:], seqWindow(0, MaxWindow))
	if got := ExtractTelemetry(noisy); got != suffix {
		t.Errorf("prefix noise leaked into telemetry:\n got %+v\nwant %+v", got, suffix)
	}
	t.Logf("✓ extraction reads only the most recent %d addresses", MaxWindow)
}

func TestExtractTelemetry_ContextBands(t *testing.T) {
	tests := []struct {
		name     string
		last     uint64
		wantBand float64
	}{
		{"small volume", 42, 0},
		{"megablock range", 1 << 20, 1},
		{"terablock range", 1 << 40, 2},
		{"exablock range", 1 << 60, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window := []uint64{tt.last, tt.last, tt.last, tt.last}
			tel := ExtractTelemetry(window)
			want := tt.wantBand + float64(len(window))/float64(MaxWindow)
			if math.Abs(tel.ContextID-want) > 1e-12 {
				t.Errorf("ContextID = %.6f, want %.6f", tel.ContextID, want)
			}
			t.Logf("✓ last address %d lands in band %.0f", tt.last, tt.wantBand)
		})
	}
}

func TestExtractTelemetry_TemporalWeight(t *testing.T) {
	for _, n := range []int{1, 16, 64, 200} {
		capped := n
		if capped > MaxWindow {
			capped = MaxWindow
		}
		tel := ExtractTelemetry(seqWindow(10, n))
		want := math.Exp(-float64(capped) / float64(MaxWindow))
		if math.Abs(tel.TemporalWeight-want) > 1e-12 {
			t.Errorf("n=%d: TemporalWeight = %.12f, want %.12f", n, tel.TemporalWeight, want)
		}
	}
	t.Logf("✓ temporal weight decays with capped window length")
}

func TestExtractTelemetry_NoAlloc(t *testing.T) {
	window := seqWindow(4096, MaxWindow)
	allocs := testing.AllocsPerRun(1000, func() {
		telSink = ExtractTelemetry(window)
	})
	if allocs != 0 {
		t.Errorf("ExtractTelemetry allocates %.1f times per call, want 0", allocs)
	}
	t.Logf("✓ zero allocations per extraction")
}

func TestEncodeState_Bounds(t *testing.T) {
	extreme := Telemetry{
		SpatialSpan:    1e300,
		Velocity:       -1e300,
		Variance:       math.MaxFloat64,
		Spectral:       -1,
		TemporalWeight: 1,
		ContextID:      4.5,
	}
	angles := EncodeState(extreme)
	for i, a := range angles {
		if math.IsNaN(a) || a < -math.Pi || a > math.Pi {
			t.Errorf("angle[%d] = %.12f escapes [-pi, pi]", i, a)
		}
	}

	// Features this size keep the saturation correction above one ulp of
	// pi/2, so here the interval is strictly open.
	moderate := EncodeState(Telemetry{
		SpatialSpan:    1e9,
		Velocity:       -1e9,
		Variance:       1e12,
		Spectral:       0.99,
		TemporalWeight: 0.5,
		ContextID:      3.2,
	})
	for i, a := range moderate {
		if !(a > -math.Pi && a < math.Pi) {
			t.Errorf("moderate angle[%d] = %.12f should sit strictly inside (-pi, pi)", i, a)
		}
	}

	if got := EncodeState(Telemetry{}); got != [6]float64{} {
		t.Errorf("zero telemetry encodes to %v, want all-zero angles", got)
	}

	one := EncodeState(Telemetry{SpatialSpan: 1})
	if want := 2 * FastAtan(1); one[0] != want {
		t.Errorf("angle[0] = %.12f, want 2*FastAtan(1) = %.12f", one[0], want)
	}
	for i := 1; i < 6; i++ {
		if one[i] != 0 {
			t.Errorf("angle[%d] = %g, want 0 (feature untouched)", i, one[i])
		}
	}
	t.Logf("✓ angles bounded in (-pi, pi), one angle per feature")
}

// seqWindow builds base, base+1, ... base+n-1.
func seqWindow(base uint64, n int) []uint64 {
	w := make([]uint64, n)
	for i := range w {
		w[i] = base + uint64(i)
	}
	return w
}

var telSink Telemetry

func BenchmarkExtractTelemetry(b *testing.B) {
	window := []uint64{100, 101, 102, 105, 110, 200, 205}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		telSink = ExtractTelemetry(window)
	}
}

func BenchmarkEncodeState(b *testing.B) {
	tel := ExtractTelemetry([]uint64{100, 101, 102, 105, 110, 200, 205})
	var angles [6]float64
	for i := 0; i < b.N; i++ {
		angles = EncodeState(tel)
	}
	mathSink = angles[0]
}
