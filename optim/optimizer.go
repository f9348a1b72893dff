// Package optim provides the first-order optimizers and learning-rate
// schedulers used by the training loop to fit GP hyperparameters.
package optim

import "math"

// Optimizer updates a parameter vector in place from its gradient.
type Optimizer interface {
	// Step applies one update to params using grads.
	Step(params, grads []float64)

	// LearningRate returns the current step size.
	LearningRate() float64

	// SetLearningRate changes the step size, e.g. from a scheduler.
	SetLearningRate(lr float64)
}

// SGD is plain gradient descent with optional momentum.
type SGD struct {
	lr       float64
	momentum float64
	velocity []float64
}

// NewSGD creates an SGD optimizer with the given learning rate.
func NewSGD(lr float64) *SGD {
	return &SGD{lr: lr}
}

// NewSGDWithMomentum creates an SGD optimizer with classical momentum.
func NewSGDWithMomentum(lr, momentum float64) *SGD {
	return &SGD{lr: lr, momentum: momentum}
}

func (o *SGD) Step(params, grads []float64) {
	if o.momentum == 0 {
		for i := range params {
			params[i] -= o.lr * grads[i]
		}
		return
	}

	if len(o.velocity) != len(params) {
		o.velocity = make([]float64, len(params))
	}
	for i := range params {
		o.velocity[i] = o.momentum*o.velocity[i] - o.lr*grads[i]
		params[i] += o.velocity[i]
	}
}

func (o *SGD) LearningRate() float64      { return o.lr }
func (o *SGD) SetLearningRate(lr float64) { o.lr = lr }

// Adam is the Adam optimizer with bias-corrected moment estimates.
type Adam struct {
	lr    float64
	beta1 float64
	beta2 float64
	eps   float64

	m []float64
	v []float64
	t int
}

// NewAdam creates an Adam optimizer with the usual defaults
// (β₁=0.9, β₂=0.999, ε=1e-8).
func NewAdam(lr float64) *Adam {
	return &Adam{lr: lr, beta1: 0.9, beta2: 0.999, eps: 1e-8}
}

func (o *Adam) Step(params, grads []float64) {
	if len(o.m) != len(params) {
		o.m = make([]float64, len(params))
		o.v = make([]float64, len(params))
		o.t = 0
	}
	o.t++

	c1 := 1 - math.Pow(o.beta1, float64(o.t))
	c2 := 1 - math.Pow(o.beta2, float64(o.t))
	for i := range params {
		o.m[i] = o.beta1*o.m[i] + (1-o.beta1)*grads[i]
		o.v[i] = o.beta2*o.v[i] + (1-o.beta2)*grads[i]*grads[i]
		mhat := o.m[i] / c1
		vhat := o.v[i] / c2
		params[i] -= o.lr * mhat / (math.Sqrt(vhat) + o.eps)
	}
}

func (o *Adam) LearningRate() float64      { return o.lr }
func (o *Adam) SetLearningRate(lr float64) { o.lr = lr }
