package fastpath

import (
	"math"
	"testing"
)

// TestFastAtan_Accuracy re-validates the documented error bound against
// math.Atan instead of trusting the polynomial's derivation.
func TestFastAtan_Accuracy(t *testing.T) {
	sweeps := []struct {
		name  string
		lo    float64
		hi    float64
		step  float64
		bound float64
	}{
		{"wide range", -1000, 1000, 0.25, 2.5e-5},
		{"contract range", -100, 100, 0.01, 1e-3},
		{"dense core", -2, 2, 0.001, 2.5e-5},
	}

	for _, sw := range sweeps {
		t.Run(sw.name, func(t *testing.T) {
			AssertAtanAccuracy(t, sw.lo, sw.hi, sw.step, sw.bound)
		})
	}
}

func TestFastAtan_Odd(t *testing.T) {
	for _, x := range []float64{0, 1e-9, 0.1, 0.5, 1, 1.886, 2, 10, 100, 1e6, 1e15} {
		pos := FastAtan(x)
		neg := FastAtan(-x)
		if neg != -pos {
			t.Errorf("FastAtan(%g) = %.17g but FastAtan(%g) = %.17g: not exactly odd",
				x, pos, -x, neg)
		}
	}
	t.Logf("✓ FastAtan(-x) == -FastAtan(x) exactly across 11 magnitudes")
}

// TestFastAtan_Monotonic is the property the original Pade form failed: it
// peaked near |x| = 1.886 and decayed afterwards. The polynomial form must
// never decrease as x grows.
func TestFastAtan_Monotonic(t *testing.T) {
	prev := math.Inf(-1)
	samples := 0
	for x := -1000.0; x <= 1000.0; x += 0.125 {
		y := FastAtan(x)
		if y < prev {
			t.Fatalf("FastAtan not monotonic: f(%.4f) = %.12f < previous %.12f",
				x, y, prev)
		}
		prev = y
		samples++
	}

	// Around the |x| = 1 seam the slope is ~0.5, so consecutive samples a
	// millistep apart must strictly increase.
	prev = FastAtan(0.5)
	for x := 0.501; x <= 1.5; x += 0.001 {
		y := FastAtan(x)
		if y <= prev {
			t.Fatalf("seam region not strictly increasing at x=%.4f: %.12f <= %.12f",
				x, y, prev)
		}
		prev = y
	}
	t.Logf("✓ monotonic over %d wide-range samples, strictly increasing across the seam", samples)
}

func TestFastAtan_Saturation(t *testing.T) {
	halfPi := math.Pi / 2
	cases := []struct {
		x    float64
		want float64
	}{
		{math.Inf(1), halfPi},
		{math.Inf(-1), -halfPi},
		{1e308, halfPi},
		{-1e308, -halfPi},
	}
	for _, c := range cases {
		got := FastAtan(c.x)
		if math.Abs(got-c.want) > 1e-12 {
			t.Errorf("FastAtan(%g) = %.12f, want ~%.12f", c.x, got, c.want)
		}
	}
	if FastAtan(0) != 0 {
		t.Errorf("FastAtan(0) = %g, want exactly 0", FastAtan(0))
	}
	t.Logf("✓ saturates to +-pi/2 at extreme magnitudes, exact zero at origin")
}

func TestFastSigmoid_OpenInterval(t *testing.T) {
	inputs := []float64{
		0, 1, -1, 20, -20, 36, -36, 37, -37, 100, -100,
		1e6, -1e6, 1e308, -1e308, math.MaxFloat64, -math.MaxFloat64,
	}
	for _, x := range inputs {
		s := FastSigmoid(x)
		if !(s > 0 && s < 1) {
			t.Errorf("FastSigmoid(%g) = %.17g escapes the open interval (0,1)", x, s)
		}
		if math.IsNaN(s) || math.IsInf(s, 0) {
			t.Errorf("FastSigmoid(%g) = %g is non-finite", x, s)
		}
	}
	if got := FastSigmoid(0); got != 0.5 {
		t.Errorf("FastSigmoid(0) = %.17g, want exactly 0.5", got)
	}
	t.Logf("✓ strictly inside (0,1) for %d inputs including float64 extremes", len(inputs))
}

func TestFastSigmoid_Saturation(t *testing.T) {
	AssertSigmoidSaturation(t)
}

func TestFastSigmoid_Accuracy(t *testing.T) {
	maxErr := 0.0
	for x := -30.0; x <= 30.0; x += 0.01 {
		exact := 1.0 / (1.0 + math.Exp(-x))
		if err := math.Abs(FastSigmoid(x) - exact); err > maxErr {
			maxErr = err
		}
	}
	if maxErr > 1e-12 {
		t.Errorf("max deviation from exact logistic %.3e, want <= 1e-12", maxErr)
	}
	t.Logf("✓ matches the exact logistic to %.1e inside the unclamped band", maxErr)
}

func TestFastExp_Identities(t *testing.T) {
	if got := FastExp(0); got != 1.0 {
		t.Errorf("FastExp(0) = %.17g, want exactly 1", got)
	}
	if err := math.Abs(FastExp(1) - math.E); err > 1e-15 {
		t.Errorf("FastExp(1) off math.E by %.3e", err)
	}
}

func TestFastInvSqrt_Accuracy(t *testing.T) {
	maxRel := 0.0
	for _, x := range []float64{0.01, 0.1, 0.5, 1, 2, 5, 42, 100, 1e4, 1e6, 1e9} {
		exact := 1.0 / math.Sqrt(x)
		rel := math.Abs(FastInvSqrt(x)-exact) / exact
		if rel > maxRel {
			maxRel = rel
		}
	}
	if maxRel >= 0.002 {
		t.Errorf("FastInvSqrt relative error %.5f exceeds 0.2%%", maxRel)
	}
	t.Logf("✓ FastInvSqrt within %.4f%% of 1/sqrt(x)", maxRel*100)
}

func TestFastSqrt_Domain(t *testing.T) {
	if got := FastSqrt(0); got != 0 {
		t.Errorf("FastSqrt(0) = %g, want 0", got)
	}
	if got := FastSqrt(-4); got != 0 {
		t.Errorf("FastSqrt(-4) = %g, want 0", got)
	}
	if rel := math.Abs(FastSqrt(4)-2) / 2; rel >= 0.002 {
		t.Errorf("FastSqrt(4) relative error %.5f exceeds 0.2%%", rel)
	}
}

var mathSink float64

func BenchmarkFastAtan(b *testing.B) {
	var r float64
	for i := 0; i < b.N; i++ {
		r = FastAtan(1.5)
	}
	mathSink = r
}

func BenchmarkFastExp(b *testing.B) {
	var r float64
	for i := 0; i < b.N; i++ {
		r = FastExp(-0.5)
	}
	mathSink = r
}

func BenchmarkFastSigmoid(b *testing.B) {
	var r float64
	for i := 0; i < b.N; i++ {
		r = FastSigmoid(0.3)
	}
	mathSink = r
}
