package gp

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/gpleiss/gpwrapper/pkg/errors"
)

const (
	laplaceMaxNewton = 50
	laplaceNewtonTol = 1e-8
)

// LaplaceGP approximates the latent posterior of a probit-likelihood GP
// classifier with a Gaussian centered at the posterior mode. Mode finding
// uses the standard Newton iteration; predictions integrate the probit
// likelihood against the approximate latent Gaussian analytically.
type LaplaceGP struct {
	kernel Kernel
	lik    BernoulliLikelihood

	x [][]float64
	y []float64 // labels in {-1, +1}

	fhat     []float64 // posterior mode
	gradLog  []float64 // ∇ log p(y|f) at the mode
	wsqrt    []float64 // W^{1/2} diagonal at the mode
	bchol    *mat.Cholesky
	evidence float64

	fitted bool
}

// NewLaplaceGP creates a Laplace-approximated probit GP with the given
// kernel.
func NewLaplaceGP(kernel Kernel) *LaplaceGP {
	return &LaplaceGP{kernel: kernel}
}

// Kernel returns the GP's kernel.
func (g *LaplaceGP) Kernel() Kernel { return g.kernel }

// Params returns a copy of the kernel log-hyperparameters.
func (g *LaplaceGP) Params() []float64 { return g.kernel.Params() }

// SetParams overwrites the kernel log-hyperparameters and invalidates the
// current mode.
func (g *LaplaceGP) SetParams(p []float64) {
	g.kernel.SetParams(p)
	g.fitted = false
}

// NParams returns the number of trainable hyperparameters.
func (g *LaplaceGP) NParams() int { return g.kernel.NParams() }

// Condition finds the mode of the latent posterior for labels y ∈ {-1, +1}
// and caches the quantities needed for prediction and the approximate
// evidence.
func (g *LaplaceGP) Condition(X [][]float64, y []float64) error {
	n := len(X)
	if n == 0 {
		return errors.NewModelError("LaplaceGP.Condition", "empty data", errors.ErrEmptyData)
	}
	if len(y) != n {
		return errors.NewDimensionError("LaplaceGP.Condition", n, len(y), 0)
	}
	for _, v := range y {
		if v != -1 && v != 1 {
			return errors.NewValueError("LaplaceGP.Condition", "labels must be -1 or +1")
		}
	}

	gram := GramMatrix(g.kernel, X)

	f := make([]float64, n)
	gradLog := make([]float64, n)
	wsqrt := make([]float64, n)
	a := mat.NewVecDense(n, nil)

	var bchol *mat.Cholesky
	objective := math.Inf(-1)

	for iter := 0; iter < laplaceMaxNewton; iter++ {
		for i := 0; i < n; i++ {
			gradLog[i] = g.lik.GradLogProb(f[i], y[i])
			w := -g.lik.HessLogProb(f[i], y[i])
			if w < 1e-12 {
				w = 1e-12
			}
			wsqrt[i] = math.Sqrt(w)
		}

		// B = I + W^{1/2} K W^{1/2}
		b := mat.NewSymDense(n, nil)
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				v := wsqrt[i] * gram.At(i, j) * wsqrt[j]
				if i == j {
					v++
				}
				b.SetSym(i, j, v)
			}
		}
		chol, _, err := factorizeWithJitter(b)
		if err != nil {
			return err
		}
		bchol = chol

		// Newton step in the numerically stable parameterization:
		// a = c - W^{1/2} B⁻¹ W^{1/2} K c with c = W f + ∇log p(y|f).
		c := mat.NewVecDense(n, nil)
		for i := 0; i < n; i++ {
			c.SetVec(i, wsqrt[i]*wsqrt[i]*f[i]+gradLog[i])
		}

		kc := mat.NewVecDense(n, nil)
		kc.MulVec(gram, c)

		scaled := mat.NewVecDense(n, nil)
		for i := 0; i < n; i++ {
			scaled.SetVec(i, wsqrt[i]*kc.AtVec(i))
		}
		solved := mat.NewVecDense(n, nil)
		if err := bchol.SolveVecTo(solved, scaled); err != nil {
			return errors.Wrap(err, "Newton step solve")
		}
		for i := 0; i < n; i++ {
			a.SetVec(i, c.AtVec(i)-wsqrt[i]*solved.AtVec(i))
		}

		fNew := mat.NewVecDense(n, nil)
		fNew.MulVec(gram, a)

		// Objective -½ aᵀf + Σ log p(yᵢ|fᵢ), monitored for convergence.
		obj := 0.0
		for i := 0; i < n; i++ {
			f[i] = fNew.AtVec(i)
			obj += g.lik.LogProb(f[i], y[i])
		}
		obj -= 0.5 * mat.Dot(a, fNew)

		if math.Abs(obj-objective) < laplaceNewtonTol {
			objective = obj
			break
		}
		objective = obj
	}

	// Recompute mode-dependent quantities at the final f.
	for i := 0; i < n; i++ {
		gradLog[i] = g.lik.GradLogProb(f[i], y[i])
		w := -g.lik.HessLogProb(f[i], y[i])
		if w < 1e-12 {
			w = 1e-12
		}
		wsqrt[i] = math.Sqrt(w)
	}
	b := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := wsqrt[i] * gram.At(i, j) * wsqrt[j]
			if i == j {
				v++
			}
			b.SetSym(i, j, v)
		}
	}
	chol, _, err := factorizeWithJitter(b)
	if err != nil {
		return err
	}

	// log q(y|X, θ) = objective - ½ log|B|.
	g.evidence = objective - 0.5*chol.LogDet()

	g.x = X
	g.y = y
	g.fhat = f
	g.gradLog = gradLog
	g.wsqrt = wsqrt
	g.bchol = chol
	g.fitted = true
	return nil
}

// LogEvidence returns the Laplace approximation of log p(y|X, θ) computed
// by the last Condition call.
func (g *LaplaceGP) LogEvidence() (float64, error) {
	if !g.fitted {
		return 0, errors.New("LaplaceGP: LogEvidence called before Condition")
	}
	return g.evidence, nil
}

// LatentPosterior returns the approximate latent mean and variance at each
// test input.
func (g *LaplaceGP) LatentPosterior(Xstar [][]float64) (mean, variance []float64, err error) {
	if !g.fitted {
		return nil, nil, errors.New("LaplaceGP: LatentPosterior called before Condition")
	}
	m := len(Xstar)
	if m == 0 {
		return nil, nil, errors.NewModelError("LaplaceGP.LatentPosterior", "empty data", errors.ErrEmptyData)
	}

	n := len(g.x)
	kxs := CrossGram(g.kernel, g.x, Xstar)

	mean = make([]float64, m)
	variance = make([]float64, m)
	scaled := mat.NewVecDense(n, nil)
	solved := mat.NewVecDense(n, nil)

	for j := 0; j < m; j++ {
		var mu float64
		for i := 0; i < n; i++ {
			kij := kxs.At(i, j)
			mu += kij * g.gradLog[i]
			scaled.SetVec(i, g.wsqrt[i]*kij)
		}
		mean[j] = mu

		// v* = k** - (W^{1/2}k*)ᵀ B⁻¹ (W^{1/2}k*)
		if err := g.bchol.SolveVecTo(solved, scaled); err != nil {
			return nil, nil, errors.Wrap(err, "predictive variance solve")
		}
		v := g.kernel.Eval(Xstar[j], Xstar[j]) - mat.Dot(scaled, solved)
		variance[j] = math.Max(0, v)
	}
	return mean, variance, nil
}

// PredictProba returns p(y=+1|x) for each test input, integrating the
// probit likelihood against the approximate latent Gaussian.
func (g *LaplaceGP) PredictProba(Xstar [][]float64) ([]float64, error) {
	mean, variance, err := g.LatentPosterior(Xstar)
	if err != nil {
		return nil, err
	}
	probs := make([]float64, len(mean))
	for i := range mean {
		probs[i] = g.lik.Probability(mean[i], variance[i])
	}
	return probs, nil
}
