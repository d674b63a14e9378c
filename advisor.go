package fastpath

import (
	"fmt"
	"time"
)

// TuningDecision represents the advisor's verdict on a kernel's behavior.
type TuningDecision string

const (
	TuningStable   TuningDecision = "STABLE"            // Ratio inside the healthy band, no action
	TuningThrottle TuningDecision = "THROTTLE_FASTPATH" // Gate approves nearly everything, adds no information
	TuningPromote  TuningDecision = "PROMOTE_FASTPATH"  // Gate never fires, decision cost is pure overhead
	TuningRetune   TuningDecision = "RETUNE_RATES"      // Threshold pinned on a band rail, adaptation railed
)

// AdvisorConfig contains watermarks and hysteresis for tuning advice.
type AdvisorConfig struct {
	// Prefetch ratio at or above this advises throttling the fast path
	HighWatermark float64

	// Prefetch ratio at or below this advises promoting the fast path
	LowWatermark float64

	// Cycles a kernel must accumulate before advice is meaningful
	MinCycles uint64

	// Cycles to hold a non-stable verdict before re-evaluating
	HoldCycles uint64
}

// DefaultAdvisorConfig returns watermarks sized for mixed workloads: a gate
// approving more than 85% or fewer than 5% of cycles is not discriminating.
func DefaultAdvisorConfig() AdvisorConfig {
	return AdvisorConfig{
		HighWatermark: 0.85,
		LowWatermark:  0.05,
		MinCycles:     256,
		HoldCycles:    512,
	}
}

// Validate rejects watermarks that cannot partition the ratio range.
func (cfg AdvisorConfig) Validate() error {
	if cfg.HighWatermark <= 0 || cfg.HighWatermark > 1 {
		return fmt.Errorf(
			"high watermark %.4f outside (0, 1]\n"+
				"  The watermark is a prefetch ratio and must be a meaningful fraction\n"+
				"  Action: pick a value like 0.85",
			cfg.HighWatermark)
	}
	if cfg.LowWatermark < 0 || cfg.LowWatermark >= 1 {
		return fmt.Errorf(
			"low watermark %.4f outside [0, 1)\n"+
				"  Action: pick a value like 0.05",
			cfg.LowWatermark)
	}
	if cfg.LowWatermark >= cfg.HighWatermark {
		return fmt.Errorf(
			"watermarks inverted: low %.4f ≥ high %.4f\n"+
				"  Risk: every ratio triggers advice, none of it trustworthy\n"+
				"  Action: keep a healthy band between the watermarks",
			cfg.LowWatermark, cfg.HighWatermark)
	}
	if cfg.MinCycles < 1 {
		return fmt.Errorf(
			"minimum cycle count %d invalid\n"+
				"  A ratio over zero cycles is undefined\n"+
				"  Action: require at least 1 warm-up cycle",
			cfg.MinCycles)
	}
	return nil
}

// Advice is the advisor's verdict with reasoning attached.
type Advice struct {
	Decision   TuningDecision
	Reason     string
	Mitigation string
	Ratio      float64
	Snapshot   KernelSnapshot
	Timestamp  time.Time
}

// TuningAdvisor turns kernel snapshots into operational advice. It watches
// the prefetch ratio and the threshold rails, with hysteresis so one noisy
// window cannot flap the verdict.
//
// The advisor never touches the kernel. It reads snapshots and talks to the
// operator; acting on the advice (swapping presets, retuning rates) stays a
// human or orchestrator decision.
//
// Control loop: Snapshot → Advise → (operator acts) → Snapshot.
//
// An advisor follows one kernel. It is single-goroutine by design, same as
// the kernel it watches.
type TuningAdvisor struct {
	cfg AdvisorConfig

	// Hysteresis state
	lastDecision TuningDecision
	lastAdviceAt uint64 // Kernel cycle count when the last non-stable verdict fired

	// Advice history
	throttles int
	promotes  int
	retunes   int
	holds     int
}

// NewTuningAdvisor creates an advisor, rejecting unusable watermarks.
func NewTuningAdvisor(cfg AdvisorConfig) (*TuningAdvisor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &TuningAdvisor{cfg: cfg, lastDecision: TuningStable}, nil
}

// Advise evaluates one snapshot and returns a verdict.
//
// The decision tree runs worst case first:
//
//	warm-up → hysteresis hold → saturated gate → dormant gate → pinned rail → stable
func (a *TuningAdvisor) Advise(snap KernelSnapshot) Advice {
	now := time.Now()
	ratio := snap.PrefetchRatio

	// A counter reset (or a fresh kernel) invalidates any held verdict.
	if snap.Cycles < a.lastAdviceAt {
		a.lastDecision = TuningStable
		a.lastAdviceAt = 0
	}

	if snap.Cycles < a.cfg.MinCycles {
		return Advice{
			Decision: TuningStable,
			Reason: fmt.Sprintf(
				"WARMING UP: %d cycles observed (need %d)\n"+
					"  Prefetch ratio %.4f is not yet statistically meaningful",
				snap.Cycles, a.cfg.MinCycles, ratio),
			Mitigation: "No action required. Keep feeding cycles.",
			Ratio:      ratio,
			Snapshot:   snap,
			Timestamp:  now,
		}
	}

	// Hysteresis: a non-stable verdict stands until the kernel has run
	// HoldCycles more cycles. Prevents advice flapping on noisy windows.
	if a.lastDecision != TuningStable && snap.Cycles-a.lastAdviceAt < a.cfg.HoldCycles {
		a.holds++
		elapsed := snap.Cycles - a.lastAdviceAt
		return Advice{
			Decision: a.lastDecision,
			Reason: fmt.Sprintf(
				"%s (Hysteresis): %d cycles since last verdict\n"+
					"  Need %d more cycles before re-evaluating\n"+
					"  Hysteresis prevents verdict flapping",
				a.lastDecision, elapsed, a.cfg.HoldCycles-elapsed),
			Mitigation: "ONGOING:\n" +
				"  Apply the previous advice and let the ratio settle",
			Ratio:     ratio,
			Snapshot:  snap,
			Timestamp: now,
		}
	}

	// SATURATED GATE: ratio ≥ high watermark
	if ratio >= a.cfg.HighWatermark {
		a.lastDecision = TuningThrottle
		a.lastAdviceAt = snap.Cycles
		a.throttles++
		return Advice{
			Decision: TuningThrottle,
			Reason: fmt.Sprintf(
				"FAST PATH SATURATED: prefetch ratio %.4f ≥ %.2f high watermark\n"+
					"  The gate is approving nearly every cycle\n"+
					"  A gate that always fires adds latency without adding information\n"+
					"  ε=%.4f, φ=%.4f after %d cycles",
				ratio, a.cfg.HighWatermark, snap.Epsilon, snap.Phi, snap.Cycles),
			Mitigation: "OPTIONS:\n" +
				"  1. Raise ε (conservative preset starts at 0.65)\n" +
				"  2. Reduce λ[2] so the observable drives the sigmoid less hard\n" +
				"  3. Verify the workload is genuinely sequential (a pure ramp earns its prefetches)",
			Ratio:     ratio,
			Snapshot:  snap,
			Timestamp: now,
		}
	}

	// DORMANT GATE: ratio ≤ low watermark
	if ratio <= a.cfg.LowWatermark {
		a.lastDecision = TuningPromote
		a.lastAdviceAt = snap.Cycles
		a.promotes++
		return Advice{
			Decision: TuningPromote,
			Reason: fmt.Sprintf(
				"FAST PATH DORMANT: prefetch ratio %.4f ≤ %.2f low watermark\n"+
					"  Every cycle pays the decision cost and never takes the fast path\n"+
					"  ε=%.4f leaves the gate effectively closed",
				ratio, a.cfg.LowWatermark, snap.Epsilon),
			Mitigation: "OPTIONS:\n" +
				"  1. Lower ε (aggressive preset starts at 0.40)\n" +
				"  2. Raise bias to shift the sigmoid midpoint\n" +
				"  3. Drop the kernel for this stream if the workload is truly random",
			Ratio:     ratio,
			Snapshot:  snap,
			Timestamp: now,
		}
	}

	// PINNED RAIL: ε clamped against a band edge
	const railMargin = 1e-6
	if snap.Epsilon <= EpsilonMin+railMargin || snap.Epsilon >= EpsilonMax-railMargin {
		rail := "floor"
		if snap.Epsilon >= EpsilonMax-railMargin {
			rail = "ceiling"
		}
		a.lastDecision = TuningRetune
		a.lastAdviceAt = snap.Cycles
		a.retunes++
		return Advice{
			Decision: TuningRetune,
			Reason: fmt.Sprintf(
				"THRESHOLD PINNED: ε=%.4f sits on the %s of [%.1f, %.1f]\n"+
					"  λ[0] keeps pushing the threshold into the clamp\n"+
					"  The adaptation has no room left to learn",
				snap.Epsilon, rail, EpsilonMin, EpsilonMax),
			Mitigation: "OPTIONS:\n" +
				"  1. Reduce λ[0] (threshold learning rate)\n" +
				"  2. Re-seed ε at 0.5 and let it settle\n" +
				"  3. Review the bias sign (persistent one-way drift)",
			Ratio:     ratio,
			Snapshot:  snap,
			Timestamp: now,
		}
	}

	// STABLE: ratio inside the band, threshold off the rails
	a.lastDecision = TuningStable
	return Advice{
		Decision: TuningStable,
		Reason: fmt.Sprintf(
			"STABLE: prefetch ratio %.4f inside (%.2f, %.2f)\n"+
				"  ε=%.4f adapting freely inside its band",
			ratio, a.cfg.LowWatermark, a.cfg.HighWatermark, snap.Epsilon),
		Mitigation: "No action required. Continue monitoring.",
		Ratio:      ratio,
		Snapshot:   snap,
		Timestamp:  now,
	}
}

// GetStatistics returns advisor operational stats.
func (a *TuningAdvisor) GetStatistics() map[string]interface{} {
	return map[string]interface{}{
		"throttles_advised": a.throttles,
		"promotes_advised":  a.promotes,
		"retunes_advised":   a.retunes,
		"verdicts_held":     a.holds,
		"last_decision":     string(a.lastDecision),
	}
}
