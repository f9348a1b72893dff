package gp

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Normal is a univariate Gaussian predictive distribution for a single
// test point.
type Normal struct {
	Mean     float64
	Variance float64
}

// StdDev returns the standard deviation.
func (n Normal) StdDev() float64 {
	return math.Sqrt(n.Variance)
}

// ConfidenceRegion returns the centered interval mean ± z·stddev. With
// z = 2 this is the usual 95% credible band.
func (n Normal) ConfidenceRegion(z float64) (lower, upper float64) {
	half := z * n.StdDev()
	return n.Mean - half, n.Mean + half
}

// Bernoulli is a predictive class distribution for a single test point of a
// binary classifier. P is the probability of the positive class.
type Bernoulli struct {
	P float64
}

// PosteriorGaussian is the joint Gaussian posterior over a set of test
// inputs, as returned by ExactGP.Posterior.
type PosteriorGaussian struct {
	mean []float64
	cov  *mat.SymDense
}

// Mean returns a copy of the posterior mean vector.
func (p *PosteriorGaussian) Mean() []float64 {
	out := make([]float64, len(p.mean))
	copy(out, p.mean)
	return out
}

// Variance returns the pointwise posterior variances (the covariance
// diagonal), clamped at zero.
func (p *PosteriorGaussian) Variance() []float64 {
	n := len(p.mean)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = math.Max(0, p.cov.At(i, i))
	}
	return out
}

// Covariance returns a copy of the full posterior covariance matrix.
func (p *PosteriorGaussian) Covariance() *mat.SymDense {
	n := len(p.mean)
	out := mat.NewSymDense(n, nil)
	out.CopySym(p.cov)
	return out
}

// Normals returns the marginal distribution of each test point.
func (p *PosteriorGaussian) Normals() []Normal {
	n := len(p.mean)
	out := make([]Normal, n)
	vars := p.Variance()
	for i := 0; i < n; i++ {
		out[i] = Normal{Mean: p.mean[i], Variance: vars[i]}
	}
	return out
}

// Sample draws one function sample from the joint posterior. The covariance
// is factorized with escalating jitter; a covariance that cannot be
// factorized returns an error.
func (p *PosteriorGaussian) Sample(rng *rand.Rand) ([]float64, error) {
	n := len(p.mean)
	chol, _, err := factorizeWithJitter(p.cov)
	if err != nil {
		return nil, err
	}

	var l mat.TriDense
	chol.LTo(&l)

	z := make([]float64, n)
	for i := range z {
		z[i] = rng.NormFloat64()
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		s := p.mean[i]
		for j := 0; j <= i; j++ {
			s += l.At(i, j) * z[j]
		}
		out[i] = s
	}
	return out, nil
}
