package fastpath

import "math"

// Approximation error bounds, validated by tests against the math package:
//
//	| Function    | Max Error          | Valid Range |
//	|-------------|--------------------|-------------|
//	| FastAtan    | < 2.5e-5 absolute  | all reals   |
//	| FastSigmoid | < 3e-16 vs exact   | all reals   |
//	| FastInvSqrt | < 0.2% relative    | x > 0       |
const (
	// Odd minimax coefficients for atan on [-1, 1] (Abramowitz & Stegun
	// 4.4.49). The x^9 coefficient is lowered from the published 0.0208351
	// so the polynomial hits pi/4 exactly at x = 1 and the reciprocal seam
	// stays continuous and monotonic.
	atanA1 = 0.9998660
	atanA3 = -0.3302995
	atanA5 = 0.1801410
	atanA7 = -0.0851330
	atanA9 = 0.0208236633974483

	// FastSigmoid clamps its argument to +-sigmoidCutoff. At the cutoff the
	// exact sigmoid is within one ulp of the clamped value, and the clamp
	// keeps results strictly inside (0, 1) in float64.
	sigmoidCutoff = 36.0
)

// FastAtan is a bounded, odd, monotonic arctangent approximation.
//
// For |x| <= 1 it evaluates an odd polynomial in Horner form:
//
//	atan(x) ~ x * (a1 + a3*x^2 + a5*x^4 + a7*x^6 + a9*x^8)
//
// and for |x| > 1 it folds through the reciprocal identity:
//
//	atan(x) = sign(x) * (pi/2 - atan(1/|x|))
//
// Properties, all re-validated by tests against math.Atan:
//   - exactly odd: FastAtan(-x) == -FastAtan(x)
//   - monotonic over the full input range
//   - saturates toward +-pi/2 as |x| grows
//   - max absolute error below 2.5e-5
func FastAtan(x float64) float64 {
	ax := math.Abs(x)
	var r float64
	if ax <= 1.0 {
		r = atanPoly(ax)
	} else {
		r = math.Pi/2 - atanPoly(1.0/ax)
	}
	return math.Copysign(r, x)
}

func atanPoly(x float64) float64 {
	x2 := x * x
	return x * (atanA1 + x2*(atanA3+x2*(atanA5+x2*(atanA7+x2*atanA9))))
}

// FastExp is the exponential used by the decision path. math.Exp already
// lowers to an optimized platform routine, so this is a thin alias that keeps
// call sites uniform with the other approximations.
func FastExp(x float64) float64 {
	return math.Exp(x)
}

// FastSigmoid computes the logistic function:
//
//	sigma(x) = 1 / (1 + exp(-x))
//
// The argument is clamped to +-36 before exponentiation, so the result is
// strictly inside (0, 1) for every finite input and never produces Inf or
// NaN. For |x| > 20 the output is within 1e-8 of full saturation.
func FastSigmoid(x float64) float64 {
	if x > sigmoidCutoff {
		x = sigmoidCutoff
	} else if x < -sigmoidCutoff {
		x = -sigmoidCutoff
	}
	return 1.0 / (1.0 + FastExp(-x))
}

// FastInvSqrt approximates 1/sqrt(x) with the float64 bit trick followed by
// one Newton-Raphson refinement. Callers must pass x > 0; the spectral
// feature only ever feeds it 1 + d^2 >= 1.
func FastInvSqrt(x float64) float64 {
	i := math.Float64bits(x)
	i = 0x5FE6EB50C7B537A9 - (i >> 1)
	y := math.Float64frombits(i)
	return y * (1.5 - 0.5*x*y*y)
}

// FastSqrt approximates sqrt(x) via FastInvSqrt. Non-positive inputs return 0.
func FastSqrt(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return x * FastInvSqrt(x)
}
