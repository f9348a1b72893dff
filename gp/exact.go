package gp

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/gpleiss/gpwrapper/pkg/errors"
)

// jitterLadder lists the diagonal jitter values tried, in order, when a
// covariance matrix fails to factorize.
var jitterLadder = []float64{0, 1e-8, 1e-6, 1e-4}

// factorizeWithJitter Cholesky-factorizes a symmetric matrix, escalating
// the diagonal jitter until the factorization succeeds. It returns the
// factorization and the jitter that was used.
func factorizeWithJitter(k *mat.SymDense) (*mat.Cholesky, float64, error) {
	n := k.SymmetricDim()
	work := mat.NewSymDense(n, nil)
	for _, jitter := range jitterLadder {
		work.CopySym(k)
		if jitter > 0 {
			for i := 0; i < n; i++ {
				work.SetSym(i, i, work.At(i, i)+jitter)
			}
		}
		var chol mat.Cholesky
		if chol.Factorize(work) {
			return &chol, jitter, nil
		}
	}
	return nil, 0, errors.Wrap(errors.ErrNotPositiveDefinite,
		"covariance factorization failed after jitter escalation")
}

// ExactGP performs exact Gaussian-process regression: conditioning on
// observed data via a Cholesky factorization of K + σ²I, posterior
// prediction, and the exact log marginal likelihood with analytic
// gradients. All hard numerical work is delegated to gonum.
type ExactGP struct {
	kernel Kernel
	mean   Mean
	lik    *GaussianLikelihood

	x     [][]float64
	resid *mat.VecDense // y - m(X)
	chol  *mat.Cholesky
	alpha *mat.VecDense // (K + σ²I)⁻¹ (y - m(X))

	conditioned bool
}

// NewExactGP creates an exact GP with the given kernel, prior mean and
// Gaussian likelihood.
func NewExactGP(kernel Kernel, mean Mean, lik *GaussianLikelihood) *ExactGP {
	return &ExactGP{kernel: kernel, mean: mean, lik: lik}
}

// Kernel returns the GP's kernel.
func (g *ExactGP) Kernel() Kernel { return g.kernel }

// Likelihood returns the GP's Gaussian likelihood.
func (g *ExactGP) Likelihood() *GaussianLikelihood { return g.lik }

// Params returns the concatenated log-hyperparameters: kernel parameters
// followed by the likelihood noise.
func (g *ExactGP) Params() []float64 {
	return append(g.kernel.Params(), g.lik.Params()...)
}

// SetParams overwrites all log-hyperparameters. Conditioning state is
// invalidated.
func (g *ExactGP) SetParams(p []float64) {
	nk := g.kernel.NParams()
	g.kernel.SetParams(p[:nk])
	g.lik.SetParams(p[nk : nk+g.lik.NParams()])
	g.conditioned = false
}

// NParams returns the total number of trainable hyperparameters.
func (g *ExactGP) NParams() int { return g.kernel.NParams() + g.lik.NParams() }

// Condition factorizes K(X, X) + σ²I and precomputes the weights used by
// Posterior and LogMarginalLikelihood.
func (g *ExactGP) Condition(X [][]float64, y []float64) error {
	n := len(X)
	if n == 0 {
		return errors.NewModelError("ExactGP.Condition", "empty data", errors.ErrEmptyData)
	}
	if len(y) != n {
		return errors.NewDimensionError("ExactGP.Condition", n, len(y), 0)
	}

	gram := GramMatrix(g.kernel, X)
	noise := g.lik.Noise()
	for i := 0; i < n; i++ {
		gram.SetSym(i, i, gram.At(i, i)+noise)
	}

	chol, _, err := factorizeWithJitter(gram)
	if err != nil {
		return err
	}

	m := meanVector(g.mean, X)
	resid := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		resid.SetVec(i, y[i]-m[i])
	}

	alpha := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(alpha, resid); err != nil {
		return errors.Wrap(err, "solving for posterior weights")
	}

	g.x = X
	g.resid = resid
	g.chol = chol
	g.alpha = alpha
	g.conditioned = true
	return nil
}

// LogMarginalLikelihood returns log p(y|X, θ) for the conditioned data:
//
//	-½ (y-m)ᵀ α - ½ log|K + σ²I| - n/2 log 2π
func (g *ExactGP) LogMarginalLikelihood() (float64, error) {
	if !g.conditioned {
		return 0, errors.New("ExactGP: LogMarginalLikelihood called before Condition")
	}
	n := float64(g.resid.Len())
	fit := mat.Dot(g.resid, g.alpha)
	return -0.5*fit - 0.5*g.chol.LogDet() - 0.5*n*math.Log(2*math.Pi), nil
}

// LogMarginalLikelihoodGrad returns the log marginal likelihood and its
// gradient with respect to all log-hyperparameters, using the trace
// identity ∂L/∂θ = ½ tr((ααᵀ - K⁻¹) ∂K/∂θ).
func (g *ExactGP) LogMarginalLikelihoodGrad() (float64, []float64, error) {
	lml, err := g.LogMarginalLikelihood()
	if err != nil {
		return 0, nil, err
	}

	n := len(g.x)
	nk := g.kernel.NParams()
	grad := make([]float64, g.NParams())

	kinv := mat.NewSymDense(n, nil)
	if err := g.chol.InverseTo(kinv); err != nil {
		return 0, nil, errors.Wrap(err, "inverting covariance for gradient")
	}

	pair := make([]float64, nk)
	for i := 0; i < n; i++ {
		ai := g.alpha.AtVec(i)
		for j := 0; j < n; j++ {
			g.kernel.EvalGrad(g.x[i], g.x[j], pair)
			w := ai*g.alpha.AtVec(j) - kinv.At(i, j)
			for p := 0; p < nk; p++ {
				grad[p] += 0.5 * w * pair[p]
			}
		}
	}

	// Noise term: ∂K/∂log σ² = σ² I.
	noise := g.lik.Noise()
	var diag float64
	for i := 0; i < n; i++ {
		ai := g.alpha.AtVec(i)
		diag += ai*ai - kinv.At(i, i)
	}
	grad[nk] = 0.5 * noise * diag

	return lml, grad, nil
}

// Posterior returns the joint Gaussian posterior over the test inputs.
// When includeNoise is true the observation noise σ² is added to the
// predictive variances, giving the distribution of y* rather than f*.
func (g *ExactGP) Posterior(Xstar [][]float64, includeNoise bool) (*PosteriorGaussian, error) {
	if !g.conditioned {
		return nil, errors.New("ExactGP: Posterior called before Condition")
	}
	m := len(Xstar)
	if m == 0 {
		return nil, errors.NewModelError("ExactGP.Posterior", "empty data", errors.ErrEmptyData)
	}

	// kxs is n_train × n_test.
	kxs := CrossGram(g.kernel, g.x, Xstar)

	mean := make([]float64, m)
	for j := 0; j < m; j++ {
		s := g.mean.Value(Xstar[j])
		for i := 0; i < len(g.x); i++ {
			s += kxs.At(i, j) * g.alpha.AtVec(i)
		}
		mean[j] = s
	}

	var kinvKxs mat.Dense
	if err := g.chol.SolveTo(&kinvKxs, kxs); err != nil {
		return nil, errors.Wrap(err, "solving for posterior covariance")
	}

	var explained mat.Dense
	explained.Mul(kxs.T(), &kinvKxs)

	prior := GramMatrix(g.kernel, Xstar)
	cov := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			// Symmetrize against round-off in the solve.
			v := prior.At(i, j) - 0.5*(explained.At(i, j)+explained.At(j, i))
			cov.SetSym(i, j, v)
		}
	}
	if includeNoise {
		noise := g.lik.Noise()
		for i := 0; i < m; i++ {
			cov.SetSym(i, i, cov.At(i, i)+noise)
		}
	}

	return &PosteriorGaussian{mean: mean, cov: cov}, nil
}
