package gp

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// GaussianLikelihood is the observation model for regression:
// y = f(x) + ε with ε ~ N(0, σ²). The noise variance is a trainable
// hyperparameter stored in log space.
type GaussianLikelihood struct {
	logNoise float64
}

// NewGaussianLikelihood creates a Gaussian likelihood with the given
// initial noise variance.
func NewGaussianLikelihood(noise float64) *GaussianLikelihood {
	mustPositive("noise", noise)
	return &GaussianLikelihood{logNoise: math.Log(noise)}
}

// Noise returns the current noise variance σ².
func (l *GaussianLikelihood) Noise() float64 { return math.Exp(l.logNoise) }

// Params returns a copy of the log-hyperparameters.
func (l *GaussianLikelihood) Params() []float64 { return []float64{l.logNoise} }

// SetParams overwrites the log-hyperparameters.
func (l *GaussianLikelihood) SetParams(p []float64) { l.logNoise = p[0] }

// NParams returns the number of hyperparameters.
func (l *GaussianLikelihood) NParams() int { return 1 }

// BernoulliLikelihood is the probit observation model for binary
// classification: p(y=1|f) = Φ(f) with y ∈ {-1, +1}, so that
// p(y|f) = Φ(y·f).
type BernoulliLikelihood struct{}

// Probability integrates the likelihood against a Gaussian latent
// distribution N(mean, variance). For the probit link this is analytic:
//
//	p(y=1|x) = Φ(mean / sqrt(1 + variance))
func (BernoulliLikelihood) Probability(mean, variance float64) float64 {
	return distuv.UnitNormal.CDF(mean / math.Sqrt(1+variance))
}

// LogProb returns log p(y|f) = log Φ(y·f).
func (BernoulliLikelihood) LogProb(f, y float64) float64 {
	return logPhi(y * f)
}

// GradLogProb returns d log p(y|f) / df.
func (BernoulliLikelihood) GradLogProb(f, y float64) float64 {
	return y * phiOverPhi(y*f)
}

// HessLogProb returns d² log p(y|f) / df². It is always negative, which
// keeps the Newton iteration in the Laplace approximation well defined.
func (BernoulliLikelihood) HessLogProb(f, y float64) float64 {
	z := y * f
	r := phiOverPhi(z)
	return -r*r - z*r
}

// logPhi computes log Φ(z) with an asymptotic fallback for large negative z
// where the CDF underflows.
func logPhi(z float64) float64 {
	if z > -6 {
		return math.Log(distuv.UnitNormal.CDF(z))
	}
	// Φ(z) ~ φ(z)/(-z) · (1 - 1/z² + 3/z⁴) for z → -∞.
	z2 := z * z
	return -0.5*z2 - 0.5*math.Log(2*math.Pi) - math.Log(-z) +
		math.Log1p(-1/z2+3/(z2*z2))
}

// phiOverPhi computes the ratio φ(z)/Φ(z), switching to the inverse Mills
// ratio asymptotic for large negative z.
func phiOverPhi(z float64) float64 {
	if z > -6 {
		return distuv.UnitNormal.Prob(z) / distuv.UnitNormal.CDF(z)
	}
	z2 := z * z
	return -z / (1 - 1/z2 + 3/(z2*z2))
}
