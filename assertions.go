package fastpath

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

// AssertKernelInvariants fails the test if a kernel's adaptive state has
// left its contract ranges. It stays silent on success so it can run after
// every cycle of a long soak without drowning the log.
//
// Checked properties:
//
//	0.1 ≤ ε ≤ 0.9
//	0 ≤ φ < 2π
//	prefetches ≤ cycles
func AssertKernelInvariants(t *testing.T, k *Kernel) {
	t.Helper()

	eps, phi := k.Epsilon(), k.Phi()
	if math.IsNaN(eps) || eps < EpsilonMin || eps > EpsilonMax {
		t.Fatalf("Threshold escaped its band: ε = %v (contract: [%.1f, %.1f])",
			eps, EpsilonMin, EpsilonMax)
	}
	if math.IsNaN(phi) || phi < 0 || phi >= twoPi {
		t.Fatalf("Phase escaped its wrap range: φ = %v (contract: [0, 2π))", phi)
	}
	if k.Prefetches() > k.Cycles() {
		t.Fatalf("Counter corruption: %d prefetches out of %d cycles",
			k.Prefetches(), k.Cycles())
	}
}

// AssertInvariantsThroughout soaks a kernel over a window sequence, checking
// the state contract after every single cycle, not just at the end. Like
// AssertKernelInvariants it stays silent on success, so callers can run it
// in rounds.
func AssertInvariantsThroughout(t *testing.T, k *Kernel, windows [][]uint64) {
	t.Helper()

	for i, window := range windows {
		if _, err := k.ProcessIOCycle(window); err != nil {
			t.Fatalf("Cycle %d failed: %v", i, err)
		}
		AssertKernelInvariants(t, k)
	}
}

// AssertDeterministicReplay verifies the kernel has no hidden entropy: two
// kernels built from the same configuration and fed the same windows must
// agree on every decision and finish in bit-identical state.
func AssertDeterministicReplay(t *testing.T, cfg KernelConfig, windows [][]uint64) {
	t.Helper()

	a, err := NewKernel(cfg)
	if err != nil {
		t.Fatalf("Failed to build kernel: %v", err)
	}
	b, err := NewKernel(cfg)
	if err != nil {
		t.Fatalf("Failed to build replay kernel: %v", err)
	}

	for i, window := range windows {
		da, err := a.ProcessIOCycle(window)
		if err != nil {
			t.Fatalf("Cycle %d failed: %v", i, err)
		}
		db, err := b.ProcessIOCycle(window)
		if err != nil {
			t.Fatalf("Replay cycle %d failed: %v", i, err)
		}
		if da != db {
			t.Fatalf("Replay diverged at cycle %d: %v vs %v\n"+
				"  Identical configuration and inputs must produce identical decisions.",
				i, da, db)
		}
	}

	if a.Snapshot() != b.Snapshot() {
		t.Fatalf("Replay finished in a different state:\n  first:  %+v\n  replay: %+v",
			a.Snapshot(), b.Snapshot())
	}

	t.Logf("✓ Deterministic replay: %d cycles, bit-identical final state (ε=%.6f, φ=%.6f)",
		len(windows), a.Epsilon(), a.Phi())
}

// AssertDecisionRateOrdering runs both kernels over the same windows and
// verifies the eager one takes the fast path at least as often as the
// cautious one. Both kernels are mutated in place.
func AssertDecisionRateOrdering(t *testing.T, eager, cautious *Kernel, windows [][]uint64) {
	t.Helper()

	for i, window := range windows {
		if _, err := eager.ProcessIOCycle(window); err != nil {
			t.Fatalf("Eager kernel failed at cycle %d: %v", i, err)
		}
		if _, err := cautious.ProcessIOCycle(window); err != nil {
			t.Fatalf("Cautious kernel failed at cycle %d: %v", i, err)
		}
	}

	eagerRatio := eager.PrefetchRatio()
	cautiousRatio := cautious.PrefetchRatio()
	if eagerRatio < cautiousRatio {
		t.Errorf("Decision rates inverted over %d windows:\n"+
			"  eager:    %.4f (ε=%.3f)\n"+
			"  cautious: %.4f (ε=%.3f)\n"+
			"  The lower-threshold kernel should prefetch at least as often.",
			len(windows), eagerRatio, eager.Epsilon(), cautiousRatio, cautious.Epsilon())
		return
	}

	t.Logf("✓ Decision rate ordering: eager %.4f ≥ cautious %.4f over %d windows",
		eagerRatio, cautiousRatio, len(windows))
}

// AssertAtanAccuracy sweeps [lo, hi] at the given step and fails if FastAtan
// deviates from math.Atan by bound or more anywhere in the range.
func AssertAtanAccuracy(t *testing.T, lo, hi, step, bound float64) {
	t.Helper()

	maxErr := 0.0
	worstX := lo
	for x := lo; x <= hi; x += step {
		if err := math.Abs(FastAtan(x) - math.Atan(x)); err > maxErr {
			maxErr = err
			worstX = x
		}
	}
	if maxErr >= bound {
		t.Errorf("FastAtan error %.3e at x=%.4f exceeds bound %.1e",
			maxErr, worstX, bound)
		return
	}
	t.Logf("✓ FastAtan within %.3e of math.Atan over [%.0f, %.0f] (bound %.1e, worst at x=%.4f)",
		maxErr, lo, hi, bound, worstX)
}

// AssertSigmoidSaturation verifies FastSigmoid's two boundary promises: the
// result stays strictly inside (0, 1) for every finite input, and for
// |x| > 20 it sits within 1e-8 of full saturation.
func AssertSigmoidSaturation(t *testing.T) {
	t.Helper()

	extremes := []float64{
		0, 20, -20, 36, -36, 37, -37, 1e6, -1e6,
		1e308, -1e308, math.MaxFloat64, -math.MaxFloat64,
	}
	for _, x := range extremes {
		s := FastSigmoid(x)
		if !(s > 0 && s < 1) || math.IsNaN(s) {
			t.Errorf("FastSigmoid(%g) = %v escapes the open interval (0, 1)", x, s)
		}
	}

	for _, x := range []float64{20.001, 25, 50, 1e9} {
		if s := FastSigmoid(x); s < 1-1e-8 {
			t.Errorf("FastSigmoid(%g) = %.12f, want within 1e-8 of 1", x, s)
		}
		if s := FastSigmoid(-x); s > 1e-8 {
			t.Errorf("FastSigmoid(%g) = %.3e, want within 1e-8 of 0", -x, s)
		}
	}

	t.Logf("✓ FastSigmoid strictly inside (0,1), saturated to within 1e-8 beyond |x| > 20")
}

// AssertionConfig contains thresholds for lane-scaling properties.
type AssertionConfig struct {
	// Contention threshold (α < this value passes)
	MaxContention float64

	// Coordination threshold (β < this value passes)
	MaxCoordination float64

	// Minimum R² for model fit quality
	MinRSquared float64

	// Linear scaling tolerance (1.0 = perfect)
	MinEfficiency float64

	// Highest lane count held to the thresholds
	MaxLanes int
}

// DefaultAssertionConfig returns thresholds sized for the lane sweep. Lanes
// share no kernel state, so the sweep should look embarrassingly parallel;
// the slack below absorbs scheduler and allocator noise on busy machines.
func DefaultAssertionConfig() AssertionConfig {
	return AssertionConfig{
		MaxContention:   0.05, // 5% contention
		MaxCoordination: 0.05, // 5% coordination overhead
		MinRSquared:     0.90, // 90% model fit
		MinEfficiency:   0.80, // 80% of ideal throughput
		MaxLanes:        16,   // Hold up to 16 lanes to the thresholds
	}
}

// AssertLinearScaling verifies per-lane throughput holds up as lanes are
// added: low contention, low coordination, efficiency above the floor.
//
// Mathematical property:
//
//	C(N) / (λN) ≥ MinEfficiency for all N ≤ MaxLanes
func AssertLinearScaling(t *testing.T, results []LaneResult, cfg AssertionConfig) {
	t.Helper()

	coeffs, err := FitUSL(results)
	if err != nil {
		t.Fatalf("Failed to fit USL model: %v", err)
	}

	if coeffs.Alpha > cfg.MaxContention {
		t.Errorf("Contention too high: α = %.6f (max: %.6f)\n"+
			"Lanes share no kernel state. Look for allocator or scheduler pressure.",
			coeffs.Alpha, cfg.MaxContention)
	}
	if coeffs.Beta > cfg.MaxCoordination {
		t.Errorf("Coordination overhead too high: β = %.6f (max: %.6f)",
			coeffs.Beta, cfg.MaxCoordination)
	}
	if coeffs.RSquared < cfg.MinRSquared {
		t.Errorf("Poor model fit: R² = %.4f (min: %.4f)\n"+
			"USL model doesn't explain the data. Check for measurement noise.",
			coeffs.RSquared, cfg.MinRSquared)
	}

	var failures []string
	for _, r := range results {
		if r.Lanes > cfg.MaxLanes {
			continue
		}
		efficiency := coeffs.Efficiency(r.Lanes)
		if efficiency < cfg.MinEfficiency {
			failures = append(failures, fmt.Sprintf(
				"  lanes=%d: efficiency=%.1f%% (min: %.1f%%)",
				r.Lanes, efficiency*100, cfg.MinEfficiency*100))
		}
	}
	if len(failures) > 0 {
		t.Errorf("Scaling not linear:\n%s\nα=%.6f, β=%.6f",
			strings.Join(failures, "\n"), coeffs.Alpha, coeffs.Beta)
		return
	}

	t.Logf("✓ Linear scaling: efficiency ≥ %.0f%% through %d lanes",
		cfg.MinEfficiency*100, cfg.MaxLanes)
	t.Logf("  α=%.6f, β=%.6f, R²=%.4f", coeffs.Alpha, coeffs.Beta, coeffs.RSquared)
}

// AssertNoRetrograde verifies modeled throughput never falls as lanes are
// added, up to MaxLanes. Retrograde scaling on shared-nothing kernels means
// the harness itself is the bottleneck.
func AssertNoRetrograde(t *testing.T, results []LaneResult, cfg AssertionConfig) {
	t.Helper()

	coeffs, err := FitUSL(results)
	if err != nil {
		t.Fatalf("Failed to fit USL model: %v", err)
	}

	var failures []string
	for i := 1; i < len(results); i++ {
		if results[i].Lanes > cfg.MaxLanes {
			break
		}
		prev := coeffs.PredictThroughput(results[i-1].Lanes)
		curr := coeffs.PredictThroughput(results[i].Lanes)
		if curr < prev {
			failures = append(failures, fmt.Sprintf(
				"  lanes %d→%d: %.0f → %.0f cycles/sec",
				results[i-1].Lanes, results[i].Lanes, prev, curr))
		}
	}
	if len(failures) > 0 {
		t.Errorf("Retrograde scaling detected:\n%s\nα=%.6f, β=%.6f",
			strings.Join(failures, "\n"), coeffs.Alpha, coeffs.Beta)
		return
	}

	t.Logf("✓ No retrograde: modeled throughput rises monotonically through %d lanes",
		cfg.MaxLanes)
}

// PrintScalingAnalysis dumps the fitted USL model, the measured-vs-predicted
// table, and a coefficient interpretation to the test log.
func PrintScalingAnalysis(t *testing.T, results []LaneResult) {
	t.Helper()

	coeffs, err := FitUSL(results)
	if err != nil {
		t.Fatalf("Failed to fit USL model: %v", err)
	}

	t.Logf("\n=== Lane Scaling Analysis ===")
	t.Logf("Coefficients:")
	t.Logf("  λ (lambda)  = %.0f cycles/sec (single-lane rate)", coeffs.Lambda)
	t.Logf("  α (alpha)   = %.6f (contention)", coeffs.Alpha)
	t.Logf("  β (beta)    = %.6f (coordination)", coeffs.Beta)
	t.Logf("  R²          = %.4f (goodness of fit)", coeffs.RSquared)

	t.Logf("\nMeasured vs Predicted:")
	t.Logf("  Lanes  Measured       Predicted      Efficiency")
	t.Logf("  -----  -------------  -------------  ----------")
	for _, r := range results {
		predicted := coeffs.PredictThroughput(r.Lanes)
		efficiency := coeffs.Efficiency(r.Lanes)
		t.Logf("  %-5d  %13.0f  %13.0f  %8.1f%%",
			r.Lanes, r.Throughput, predicted, efficiency*100)
	}

	if peak := coeffs.PeakLanes(); peak > 0 {
		t.Logf("\nModeled peak: %d lanes (%.0f cycles/sec)",
			peak, coeffs.PredictThroughput(peak))
	}

	t.Logf("\nInterpretation:")
	if coeffs.Alpha < 0.01 {
		t.Logf("  ✓ Negligible contention (α < 0.01) - lanes stay independent")
	} else if coeffs.Alpha < 0.05 {
		t.Logf("  ⚠ Moderate contention (α < 0.05) - something serializes the lanes")
	} else {
		t.Logf("  ✗ High contention (α ≥ 0.05) - lanes fight over a shared resource")
	}

	if coeffs.Beta < 0 {
		t.Logf("  ✓ Superlinear scaling (β < 0) - cache-friendly batching")
	} else if coeffs.Beta < 0.01 {
		t.Logf("  ✓ Negligible coordination (β < 0.01)")
	} else {
		t.Logf("  ⚠ Coordination overhead (β ≥ 0.01) - cross-lane traffic showing up")
	}

	if coeffs.RSquared > 0.95 {
		t.Logf("  ✓ Good model fit (R² > 0.95)")
	} else {
		t.Logf("  ⚠ Fair model fit (R² ≤ 0.95) - rerun with more cycles per lane")
	}
}
