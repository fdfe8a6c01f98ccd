// Package gaussian turns per-channel ranks into Gaussian-distributed
// values and builds the base lookup table that inverts the mapping.
//
// The error function and its inverse are deliberately fast closed-form
// approximations rather than the slowly convergent exact series; the
// bounded error they introduce is absorbed by the small correction
// factors in CDF and InvCDF, keeping the round trip within 1e-3.
package gaussian

import "math"

// Target distribution of a gaussianized channel. σ = 1/6 puts ≈99.7% of
// the mass inside [0, 1].
const (
	Mean  = 0.5
	Sigma = 1.0 / 6.0
)

const (
	// Vedder's 1987 hyperbolic inverse-error-function approximation:
	// erf⁻¹(x) ≈ invErfGamma · sinh(asinh(invErfEps · atanh(x)) / 3).
	invErfGamma = 3.8261
	invErfEps   = 0.69488

	// Companion forward approximation:
	// erf(x) ≈ erfAlpha·sign(x)·√(1−e^{−x²})·(1/erfAlpha + c1·e^{−x²} + c2·e^{−2x²})
	// with erfAlpha = 2/√π. c1 and c2 are fitted against the inverse
	// approximation above so CDF(InvCDF(u)) stays within 1e-3 of u.
	erfAlpha = 1.12838
	erfC1    = 0.1747
	erfC2    = -0.0705

	// Correction factors pairing the two approximations: cdfK stretches
	// the forward CDF, invCDFC shrinks the inverse argument away from the
	// ±1 singularities so extreme quantiles don't clip.
	cdfK    = 1.0026
	invCDFC = 0.9977
)

// Quantile maps rank i of n to a continuous position strictly inside
// (0, 1), away from the inverse-CDF singularities at the extremes.
func Quantile(i, n int) float64 {
	return (float64(i) + 0.5) / float64(n)
}

// Erf approximates the error function on the whole real line.
func Erf(x float64) float64 {
	sign := 1.0
	if x < 0 {
		sign = -1
	}
	e1 := math.Exp(-x * x)
	e2 := e1 * e1
	return sign * erfAlpha * math.Sqrt(1-e1) * (1/erfAlpha + erfC1*e1 + erfC2*e2)
}

// InverseErf approximates erf⁻¹ on (−1, 1).
func InverseErf(x float64) float64 {
	return invErfGamma * math.Sinh(math.Asinh(invErfEps*math.Atanh(x))/3)
}

// CDF evaluates the Gaussian cumulative distribution at x.
func CDF(x, mu, sigma float64) float64 {
	return 0.5 * (1 + cdfK*Erf((x-mu)/(sigma*math.Sqrt2)))
}

// InvCDF evaluates the Gaussian quantile function at u in (0, 1).
func InvCDF(u, mu, sigma float64) float64 {
	return mu + sigma*math.Sqrt2*InverseErf(invCDFC*(2*u-1))
}
