package fastpath

import (
	"math"
	"math/bits"
)

// MaxWindow is the fixed cap on the number of addresses a cycle inspects.
// Longer inputs are reduced to their most recent MaxWindow addresses, which
// keeps extraction cost constant regardless of how much history the caller
// accumulated.
const MaxWindow = 64

const (
	// Velocity is the spatial span scaled by this factor.
	velocityScale = 0.5

	// Temporal weight decay constant: exp(-n/temporalDecay) for a window of
	// n addresses.
	temporalDecay = float64(MaxWindow)
)

// Telemetry is the six-value feature summary of one LBA window, computed
// once per cycle. Field order matches the encoded angle order theta0..theta5.
type Telemetry struct {
	// Spatial locality.
	SpatialSpan float64 // signed last-minus-first address distance
	Velocity    float64 // stride proxy: velocityScale * SpatialSpan

	// Dispersion and rhythm.
	Variance float64 // population variance of addresses within the window
	Spectral float64 // first-harmonic cosine correlation of normalized strides

	// Workload regime.
	TemporalWeight float64 // exp(-n/MaxWindow), decays as the window fills
	ContextID      float64 // coarse address-magnitude band plus fill fraction
}

// ExtractTelemetry reduces an ordered window of logical block addresses to a
// Telemetry vector. It is deterministic, allocation-free, and runs in time
// bounded by MaxWindow no matter how long the input is (only the most recent
// MaxWindow addresses are read).
//
// Feature definitions over the capped window a[0..n-1]:
//
//	SpatialSpan    = float64(int64(a[n-1] - a[0]))
//	Velocity       = 0.5 * SpatialSpan
//	Variance       = E[off^2] - E[off]^2          off[i] = int64(a[i] - a[0])
//	Spectral       = mean_i cos(2*pi*i/(n-1)) * norm(d[i])
//	TemporalWeight = exp(-n / MaxWindow)
//	ContextID      = (bits.Len64(a[n-1]) >> 4) + n/MaxWindow
//
// Where:
//   - d[i] = int64(a[i+1] - a[i]) is the i-th stride and norm(d) =
//     d / sqrt(1 + d^2) bounds it into (-1, 1), so Spectral measures how
//     strongly the stride sequence oscillates at the window's base frequency:
//     constant-stride windows score ~0, out-and-back sweeps score high.
//   - Address differences use the two's-complement reading, so descending
//     runs produce negative span and velocity instead of wrapping to huge
//     positive values.
//
// Degenerate inputs stay defined: a single-address window yields span 0,
// velocity 0, variance 0, spectral 0. An empty window yields the zero
// Telemetry; the decision path rejects empty windows before extraction.
func ExtractTelemetry(window []uint64) Telemetry {
	if n := len(window); n > MaxWindow {
		window = window[n-MaxWindow:]
	}
	n := len(window)
	if n == 0 {
		return Telemetry{}
	}

	first := window[0]
	last := window[n-1]
	span := float64(int64(last - first))

	// One pass over signed offsets from the first address. Offsets are small
	// relative to raw 64-bit LBAs, which keeps the moment sums well inside
	// float64's exact-integer range for realistic windows.
	var sum, sumSq, spectral float64
	if n >= 2 {
		omega := 2 * math.Pi / float64(n-1)
		prev := first
		for i := 1; i < n; i++ {
			off := float64(int64(window[i] - first))
			sum += off
			sumSq += off * off

			d := float64(int64(window[i] - prev))
			spectral += math.Cos(omega*float64(i-1)) * (d * FastInvSqrt(1.0+d*d))
			prev = window[i]
		}
		spectral /= float64(n - 1)
	}
	mean := sum / float64(n)
	variance := math.Abs(sumSq/float64(n) - mean*mean)

	return Telemetry{
		SpatialSpan:    span,
		Velocity:       velocityScale * span,
		Variance:       variance,
		Spectral:       spectral,
		TemporalWeight: FastExp(-float64(n) / temporalDecay),
		ContextID:      float64(bits.Len64(last)>>4) + float64(n)/float64(MaxWindow),
	}
}

// EncodeState maps each telemetry value into a bounded angle:
//
//	angle_i = 2 * FastAtan(feature_i)
//
// FastAtan is odd and monotonic and saturates toward +-pi/2, so arbitrarily
// large features compress toward +-pi instead of overflowing. Angles never
// exceed that bound; features beyond ~1e16 round exactly onto it, everything
// smaller stays strictly inside.
func EncodeState(t Telemetry) [6]float64 {
	return [6]float64{
		2 * FastAtan(t.SpatialSpan),
		2 * FastAtan(t.Velocity),
		2 * FastAtan(t.Variance),
		2 * FastAtan(t.Spectral),
		2 * FastAtan(t.TemporalWeight),
		2 * FastAtan(t.ContextID),
	}
}
