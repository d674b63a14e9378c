package fastpath

import (
	"fmt"
	"math"
)

const twoPi = 2 * math.Pi

// Kernel is the adaptive fast-path decision state for one I/O stream.
//
// Every ProcessIOCycle call is a complete read-modify-write: it reads the
// current threshold and phase, decides, then mutates both in place before
// returning. Nothing inside synchronizes, so a kernel must be owned by a
// single goroutine. Streams that need concurrent decisions get one kernel
// each (a Dispatcher manages exactly that).
//
// State evolves continuously from the very first cycle. There is no training
// phase, no reset on workload change, and no implicit re-initialization; the
// threshold and phase simply keep following the observable feedback.
type Kernel struct {
	// Adaptive state, mutated once per completed cycle.
	epsilon float64 // decision threshold, always in [0.1, 0.9]
	phi     float64 // measurement phase, always in [0, 2π)

	// Frozen at construction.
	lambda [3]float64 // adaptation rates: threshold, phase, probability
	bias   float64    // sigmoid offset

	// Counters, reset only by ResetStats.
	cycles     uint64 // completed decision cycles
	prefetches uint64 // cycles that chose the fast path
}

// NewKernel constructs a kernel from explicit parameters. Construction is
// the package's only rejection point: an invalid parameter set fails here,
// and a constructed kernel never fails on a well-formed cycle.
func NewKernel(cfg KernelConfig) (*Kernel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Kernel{
		epsilon: cfg.Epsilon,
		phi:     cfg.Phi,
		lambda:  cfg.Lambda,
		bias:    cfg.Bias,
	}, nil
}

// NewConservativeKernel returns a kernel that minimizes false fast-path
// decisions: high initial threshold, small adaptation rates. Use it where
// jitter from a wrong bypass costs more than a missed one.
func NewConservativeKernel() *Kernel {
	return mustKernel(ConservativeKernelConfig())
}

// NewAggressiveKernel returns a kernel that maximizes fast-path usage: low
// initial threshold, large adaptation rates. Use it where throughput
// dominates and a wrong bypass is cheap.
func NewAggressiveKernel() *Kernel {
	return mustKernel(AggressiveKernelConfig())
}

func mustKernel(cfg KernelConfig) *Kernel {
	k, err := NewKernel(cfg)
	if err != nil {
		panic("fastpath: built-in preset failed validation: " + err.Error())
	}
	return k
}

// ProcessIOCycle runs one complete decision cycle over the window of
// recently observed addresses and reports whether the next request should
// take the accelerated fast path (true) or the standard path (false).
//
// The cycle, in order:
//
//	θ      = EncodeState(ExtractTelemetry(window))
//	s      = θ0 + θ1
//	O1     = cos(s + φ)
//	O2     = sin(0.5·s − φ)
//	O3     = cos(θ2·φ)
//	P      = FastSigmoid(λ2·O3 + bias)
//	decide = P > ε              (tie P == ε resolves to false)
//	φ      ← (φ + λ1·O2) mod 2π
//	ε      ← clamp(ε + λ0·O1, 0.1, 0.9)
//
// The decision is taken against the pre-update ε and φ; the adaptive update
// always follows, win or lose, so a cycle's outcome never depends on its own
// update. Each observable is bounded in [−1, 1] and λ and bias are validated
// finite, so no update can write a non-finite value into state.
//
// An empty window is a caller contract violation: it returns an error and
// leaves state and counters untouched. The call performs no allocation and
// no I/O.
func (k *Kernel) ProcessIOCycle(window []uint64) (bool, error) {
	if len(window) == 0 {
		return false, fmt.Errorf(
			"empty LBA window: a decision cycle needs at least one address\n" +
				"  Action: buffer observed addresses (see WindowBuffer) and request decisions only after the first observation")
	}

	angles := EncodeState(ExtractTelemetry(window))
	s := angles[0] + angles[1]
	o1 := math.Cos(s + k.phi)
	o2 := math.Sin(0.5*s - k.phi)
	o3 := math.Cos(angles[2] * k.phi)

	p := FastSigmoid(k.lambda[2]*o3 + k.bias)
	decision := p > k.epsilon

	k.phi = wrapPhase(k.phi + k.lambda[1]*o2)
	k.epsilon = clampThreshold(k.epsilon + k.lambda[0]*o1)

	k.cycles++
	if decision {
		k.prefetches++
	}
	return decision, nil
}

// wrapPhase normalizes an angle into [0, 2π). math.Mod keeps the dividend's
// sign, so negative remainders shift up; the final guard catches the
// rounding case where the shift lands exactly on 2π.
func wrapPhase(x float64) float64 {
	m := math.Mod(x, twoPi)
	if m < 0 {
		m += twoPi
	}
	if m >= twoPi {
		m -= twoPi
	}
	return m
}

func clampThreshold(v float64) float64 {
	if v < EpsilonMin {
		return EpsilonMin
	}
	if v > EpsilonMax {
		return EpsilonMax
	}
	return v
}

// Epsilon returns the current adaptive threshold.
func (k *Kernel) Epsilon() float64 { return k.epsilon }

// Phi returns the current phase in [0, 2π).
func (k *Kernel) Phi() float64 { return k.phi }

// Lambda returns the rate coefficients fixed at construction.
func (k *Kernel) Lambda() [3]float64 { return k.lambda }

// Bias returns the sigmoid offset fixed at construction.
func (k *Kernel) Bias() float64 { return k.bias }

// Cycles returns the number of completed decision cycles.
func (k *Kernel) Cycles() uint64 { return k.cycles }

// Prefetches returns the number of cycles that chose the fast path.
func (k *Kernel) Prefetches() uint64 { return k.prefetches }

// PrefetchRatio returns prefetches/cycles, or 0 before the first cycle.
func (k *Kernel) PrefetchRatio() float64 {
	if k.cycles == 0 {
		return 0
	}
	return float64(k.prefetches) / float64(k.cycles)
}

// ResetStats zeroes both counters without disturbing the adaptive state, so
// a long-lived kernel can report per-interval ratios.
func (k *Kernel) ResetStats() {
	k.cycles = 0
	k.prefetches = 0
}

// KernelSnapshot is a value copy of a kernel's state and counters. It is
// safe to hand across goroutines, feed to a TuningAdvisor, or persist
// (epsilon, phi, lambda and bias round-trip a kernel exactly).
type KernelSnapshot struct {
	Epsilon       float64    `yaml:"epsilon"`
	Phi           float64    `yaml:"phi"`
	Lambda        [3]float64 `yaml:"lambda,flow"`
	Bias          float64    `yaml:"bias"`
	Cycles        uint64     `yaml:"cycles"`
	Prefetches    uint64     `yaml:"prefetches"`
	PrefetchRatio float64    `yaml:"prefetch_ratio"`
}

// Snapshot captures the kernel's current state and counters.
func (k *Kernel) Snapshot() KernelSnapshot {
	return KernelSnapshot{
		Epsilon:       k.epsilon,
		Phi:           k.phi,
		Lambda:        k.lambda,
		Bias:          k.bias,
		Cycles:        k.cycles,
		Prefetches:    k.prefetches,
		PrefetchRatio: k.PrefetchRatio(),
	}
}
