// Package gp implements the Gaussian-process machinery the estimator layer
// is built on: covariance kernels with analytic gradients, exact GP
// regression via Cholesky factorization, a Laplace approximation for probit
// classification, likelihoods, and the marginal-log-likelihood objectives
// consumed by the training loop.
package gp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/gpleiss/gpwrapper/core/parallel"
)

// Kernel is a positive-definite covariance function. Hyperparameters are
// stored and differentiated in log space so an optimizer can step them
// freely without violating positivity.
type Kernel interface {
	// Eval returns k(x, z).
	Eval(x, z []float64) float64

	// EvalGrad returns k(x, z) and writes the partial derivatives with
	// respect to each log-hyperparameter into grad, which must have
	// length NParams.
	EvalGrad(x, z []float64, grad []float64) float64

	// Params returns a copy of the log-hyperparameters.
	Params() []float64

	// SetParams overwrites the log-hyperparameters.
	SetParams(p []float64)

	// NParams returns the number of hyperparameters.
	NParams() int

	// Name identifies the kernel in logs and error messages.
	Name() string
}

func mustPositive(name string, v float64) {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		panic(fmt.Sprintf("gp: %s must be positive and finite, got %v", name, v))
	}
}

func sqDist(x, z []float64) float64 {
	var s float64
	for i := range x {
		d := x[i] - z[i]
		s += d * d
	}
	return s
}

// RBF is the squared-exponential kernel
// k(x, z) = σ² exp(-‖x-z‖² / (2ℓ²)).
type RBF struct {
	logVariance    float64
	logLengthscale float64
}

// NewRBF creates an RBF kernel with the given variance σ² and lengthscale ℓ.
func NewRBF(variance, lengthscale float64) *RBF {
	mustPositive("variance", variance)
	mustPositive("lengthscale", lengthscale)
	return &RBF{
		logVariance:    math.Log(variance),
		logLengthscale: math.Log(lengthscale),
	}
}

func (k *RBF) Eval(x, z []float64) float64 {
	ell := math.Exp(k.logLengthscale)
	return math.Exp(k.logVariance) * math.Exp(-sqDist(x, z)/(2*ell*ell))
}

func (k *RBF) EvalGrad(x, z []float64, grad []float64) float64 {
	ell := math.Exp(k.logLengthscale)
	r2 := sqDist(x, z)
	v := math.Exp(k.logVariance) * math.Exp(-r2/(2*ell*ell))
	grad[0] = v                    // ∂k/∂log σ²
	grad[1] = v * r2 / (ell * ell) // ∂k/∂log ℓ
	return v
}

func (k *RBF) Params() []float64 { return []float64{k.logVariance, k.logLengthscale} }

func (k *RBF) SetParams(p []float64) {
	k.logVariance = p[0]
	k.logLengthscale = p[1]
}

func (k *RBF) NParams() int { return 2 }
func (k *RBF) Name() string { return "RBF" }

// Matern32 is the Matérn kernel with ν = 3/2.
type Matern32 struct {
	logVariance    float64
	logLengthscale float64
}

// NewMatern32 creates a Matérn-3/2 kernel.
func NewMatern32(variance, lengthscale float64) *Matern32 {
	mustPositive("variance", variance)
	mustPositive("lengthscale", lengthscale)
	return &Matern32{
		logVariance:    math.Log(variance),
		logLengthscale: math.Log(lengthscale),
	}
}

const sqrt3 = 1.7320508075688772935274463415059

func (k *Matern32) Eval(x, z []float64) float64 {
	a := sqrt3 * math.Sqrt(sqDist(x, z)) / math.Exp(k.logLengthscale)
	return math.Exp(k.logVariance) * (1 + a) * math.Exp(-a)
}

func (k *Matern32) EvalGrad(x, z []float64, grad []float64) float64 {
	sigma2 := math.Exp(k.logVariance)
	a := sqrt3 * math.Sqrt(sqDist(x, z)) / math.Exp(k.logLengthscale)
	v := sigma2 * (1 + a) * math.Exp(-a)
	grad[0] = v
	grad[1] = sigma2 * a * a * math.Exp(-a)
	return v
}

func (k *Matern32) Params() []float64 { return []float64{k.logVariance, k.logLengthscale} }

func (k *Matern32) SetParams(p []float64) {
	k.logVariance = p[0]
	k.logLengthscale = p[1]
}

func (k *Matern32) NParams() int { return 2 }
func (k *Matern32) Name() string { return "Matern32" }

// Matern52 is the Matérn kernel with ν = 5/2.
type Matern52 struct {
	logVariance    float64
	logLengthscale float64
}

// NewMatern52 creates a Matérn-5/2 kernel.
func NewMatern52(variance, lengthscale float64) *Matern52 {
	mustPositive("variance", variance)
	mustPositive("lengthscale", lengthscale)
	return &Matern52{
		logVariance:    math.Log(variance),
		logLengthscale: math.Log(lengthscale),
	}
}

const sqrt5 = 2.2360679774997896964091736687747

func (k *Matern52) Eval(x, z []float64) float64 {
	a := sqrt5 * math.Sqrt(sqDist(x, z)) / math.Exp(k.logLengthscale)
	return math.Exp(k.logVariance) * (1 + a + a*a/3) * math.Exp(-a)
}

func (k *Matern52) EvalGrad(x, z []float64, grad []float64) float64 {
	sigma2 := math.Exp(k.logVariance)
	a := sqrt5 * math.Sqrt(sqDist(x, z)) / math.Exp(k.logLengthscale)
	v := sigma2 * (1 + a + a*a/3) * math.Exp(-a)
	grad[0] = v
	grad[1] = sigma2 * a * a * (1 + a) / 3 * math.Exp(-a)
	return v
}

func (k *Matern52) Params() []float64 { return []float64{k.logVariance, k.logLengthscale} }

func (k *Matern52) SetParams(p []float64) {
	k.logVariance = p[0]
	k.logLengthscale = p[1]
}

func (k *Matern52) NParams() int { return 2 }
func (k *Matern52) Name() string { return "Matern52" }

// Periodic is the exp-sine-squared kernel
// k(x, z) = σ² exp(-2 sin²(π‖x-z‖/p) / ℓ²).
type Periodic struct {
	logVariance    float64
	logLengthscale float64
	logPeriod      float64
}

// NewPeriodic creates a periodic kernel with the given variance,
// lengthscale and period.
func NewPeriodic(variance, lengthscale, period float64) *Periodic {
	mustPositive("variance", variance)
	mustPositive("lengthscale", lengthscale)
	mustPositive("period", period)
	return &Periodic{
		logVariance:    math.Log(variance),
		logLengthscale: math.Log(lengthscale),
		logPeriod:      math.Log(period),
	}
}

func (k *Periodic) Eval(x, z []float64) float64 {
	ell := math.Exp(k.logLengthscale)
	s := math.Pi * math.Sqrt(sqDist(x, z)) / math.Exp(k.logPeriod)
	sin := math.Sin(s)
	return math.Exp(k.logVariance) * math.Exp(-2*sin*sin/(ell*ell))
}

func (k *Periodic) EvalGrad(x, z []float64, grad []float64) float64 {
	ell := math.Exp(k.logLengthscale)
	s := math.Pi * math.Sqrt(sqDist(x, z)) / math.Exp(k.logPeriod)
	sin := math.Sin(s)
	v := math.Exp(k.logVariance) * math.Exp(-2*sin*sin/(ell*ell))
	grad[0] = v
	grad[1] = v * 4 * sin * sin / (ell * ell)
	grad[2] = v * 2 * s * math.Sin(2*s) / (ell * ell)
	return v
}

func (k *Periodic) Params() []float64 {
	return []float64{k.logVariance, k.logLengthscale, k.logPeriod}
}

func (k *Periodic) SetParams(p []float64) {
	k.logVariance = p[0]
	k.logLengthscale = p[1]
	k.logPeriod = p[2]
}

func (k *Periodic) NParams() int { return 3 }
func (k *Periodic) Name() string { return "Periodic" }

// Linear is the dot-product kernel k(x, z) = σ² x·z.
type Linear struct {
	logVariance float64
}

// NewLinear creates a linear kernel with the given variance.
func NewLinear(variance float64) *Linear {
	mustPositive("variance", variance)
	return &Linear{logVariance: math.Log(variance)}
}

func (k *Linear) Eval(x, z []float64) float64 {
	return math.Exp(k.logVariance) * floats.Dot(x, z)
}

func (k *Linear) EvalGrad(x, z []float64, grad []float64) float64 {
	v := math.Exp(k.logVariance) * floats.Dot(x, z)
	grad[0] = v
	return v
}

func (k *Linear) Params() []float64     { return []float64{k.logVariance} }
func (k *Linear) SetParams(p []float64) { k.logVariance = p[0] }
func (k *Linear) NParams() int          { return 1 }
func (k *Linear) Name() string          { return "Linear" }

// White is the white-noise kernel k(x, z) = σ² when x == z, else 0.
// Point identity is decided by value equality.
type White struct {
	logVariance float64
}

// NewWhite creates a white-noise kernel with the given variance.
func NewWhite(variance float64) *White {
	mustPositive("variance", variance)
	return &White{logVariance: math.Log(variance)}
}

func (k *White) Eval(x, z []float64) float64 {
	if floats.Equal(x, z) {
		return math.Exp(k.logVariance)
	}
	return 0
}

func (k *White) EvalGrad(x, z []float64, grad []float64) float64 {
	v := k.Eval(x, z)
	grad[0] = v
	return v
}

func (k *White) Params() []float64     { return []float64{k.logVariance} }
func (k *White) SetParams(p []float64) { k.logVariance = p[0] }
func (k *White) NParams() int          { return 1 }
func (k *White) Name() string          { return "White" }

// Sum is the pointwise sum of two kernels. Its parameter vector is the
// concatenation of the operands' parameter vectors.
type Sum struct {
	A, B Kernel
}

// NewSum creates the kernel a + b.
func NewSum(a, b Kernel) *Sum { return &Sum{A: a, B: b} }

func (k *Sum) Eval(x, z []float64) float64 {
	return k.A.Eval(x, z) + k.B.Eval(x, z)
}

func (k *Sum) EvalGrad(x, z []float64, grad []float64) float64 {
	na := k.A.NParams()
	va := k.A.EvalGrad(x, z, grad[:na])
	vb := k.B.EvalGrad(x, z, grad[na:])
	return va + vb
}

func (k *Sum) Params() []float64 {
	return append(k.A.Params(), k.B.Params()...)
}

func (k *Sum) SetParams(p []float64) {
	na := k.A.NParams()
	k.A.SetParams(p[:na])
	k.B.SetParams(p[na : na+k.B.NParams()])
}

func (k *Sum) NParams() int { return k.A.NParams() + k.B.NParams() }
func (k *Sum) Name() string { return fmt.Sprintf("Sum(%s, %s)", k.A.Name(), k.B.Name()) }

// Product is the pointwise product of two kernels.
type Product struct {
	A, B Kernel
}

// NewProduct creates the kernel a * b.
func NewProduct(a, b Kernel) *Product { return &Product{A: a, B: b} }

func (k *Product) Eval(x, z []float64) float64 {
	return k.A.Eval(x, z) * k.B.Eval(x, z)
}

func (k *Product) EvalGrad(x, z []float64, grad []float64) float64 {
	na := k.A.NParams()
	va := k.A.EvalGrad(x, z, grad[:na])
	vb := k.B.EvalGrad(x, z, grad[na:])
	for i := 0; i < na; i++ {
		grad[i] *= vb
	}
	for i := na; i < len(grad); i++ {
		grad[i] *= va
	}
	return va * vb
}

func (k *Product) Params() []float64 {
	return append(k.A.Params(), k.B.Params()...)
}

func (k *Product) SetParams(p []float64) {
	na := k.A.NParams()
	k.A.SetParams(p[:na])
	k.B.SetParams(p[na : na+k.B.NParams()])
}

func (k *Product) NParams() int { return k.A.NParams() + k.B.NParams() }
func (k *Product) Name() string {
	return fmt.Sprintf("Product(%s, %s)", k.A.Name(), k.B.Name())
}

// gramParallelThreshold is the row count above which Gram-matrix
// construction is spread across CPU cores.
const gramParallelThreshold = 128

// GramMatrix computes the symmetric matrix K with K[i][j] = k(X[i], X[j]).
// Rows are interleaved across workers because only the upper triangle is
// evaluated, so early rows carry most of the work.
func GramMatrix(k Kernel, X [][]float64) *mat.SymDense {
	n := len(X)
	gram := mat.NewSymDense(n, nil)
	parallel.RowsWithThreshold(n, gramParallelThreshold, func(offset, stride int) {
		for i := offset; i < n; i += stride {
			for j := i; j < n; j++ {
				gram.SetSym(i, j, k.Eval(X[i], X[j]))
			}
		}
	})
	return gram
}

// CrossGram computes the rectangular matrix K with K[i][j] = k(X[i], Z[j]).
func CrossGram(k Kernel, X, Z [][]float64) *mat.Dense {
	n, m := len(X), len(Z)
	gram := mat.NewDense(n, m, nil)
	parallel.RowsWithThreshold(n, gramParallelThreshold, func(offset, stride int) {
		for i := offset; i < n; i += stride {
			for j := 0; j < m; j++ {
				gram.Set(i, j, k.Eval(X[i], Z[j]))
			}
		}
	})
	return gram
}
