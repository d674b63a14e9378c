package fastpath

import (
	"fmt"
	"math"
)

// TrajectoryPoint is one cycle's worth of adaptive state, recorded after
// the update step.
type TrajectoryPoint struct {
	Cycle    int     // Cycle index within the run
	Decision bool    // Fast-path verdict for this cycle
	Epsilon  float64 // Threshold after the update
	Phi      float64 // Phase after the update
}

// RunTrajectory replays windows through the kernel and records the state
// orbit. The kernel is mutated; pass a fresh one to study a configuration
// from cold.
//
// The orbit is the kernel's observable dynamical behavior. Under constant
// telemetry the (ε, φ) pair settles onto an attractor: φ is pulled to the
// fixed point of its circle map, and ε either finds a balance or pins on a
// band rail. The trajectory makes that attractor visible.
func RunTrajectory(k *Kernel, windows [][]uint64) ([]TrajectoryPoint, error) {
	points := make([]TrajectoryPoint, 0, len(windows))
	for i, window := range windows {
		decision, err := k.ProcessIOCycle(window)
		if err != nil {
			return points, fmt.Errorf("trajectory stopped at cycle %d: %w", i, err)
		}
		points = append(points, TrajectoryPoint{
			Cycle:    i,
			Decision: decision,
			Epsilon:  k.Epsilon(),
			Phi:      k.Phi(),
		})
	}
	return points, nil
}

// EpsilonSeries extracts the threshold orbit from a trajectory.
func EpsilonSeries(points []TrajectoryPoint) []float64 {
	series := make([]float64, len(points))
	for i, p := range points {
		series[i] = p.Epsilon
	}
	return series
}

// PhiSeries extracts the phase orbit from a trajectory.
func PhiSeries(points []TrajectoryPoint) []float64 {
	series := make([]float64, len(points))
	for i, p := range points {
		series[i] = p.Phi
	}
	return series
}

// DetectStatePeriod finds the shortest period at which the series repeats
// within tolerance. Period-1 means the state converged to a fixed point,
// period-k a limit cycle, -1 no periodicity at or below maxPeriod (or not
// enough data).
//
// Feed it the tail of a series, after the transient has decayed, or the
// approach will mask the attractor.
func DetectStatePeriod(series []float64, tolerance float64, maxPeriod int) int {
	if maxPeriod < 1 || len(series) < 2*maxPeriod {
		return -1
	}

	for period := 1; period <= maxPeriod; period++ {
		periodic := true
		for i := period; i < len(series)-period; i++ {
			if math.Abs(series[i]-series[i+period]) > tolerance {
				periodic = false
				break
			}
		}
		if periodic {
			return period
		}
	}
	return -1
}

// SeriesAmplitude returns max - min of a state series. Zero means the
// state froze; the full band width (0.8 for ε) means the state is railing
// between its clamps.
func SeriesAmplitude(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	lo, hi := series[0], series[0]
	for _, x := range series {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return hi - lo
}
