package optim

import (
	"math"
	"testing"
)

// quadratic is f(p) = Σ (pᵢ - cᵢ)², gradient 2(p - c).
func quadraticGrad(params, center []float64) []float64 {
	g := make([]float64, len(params))
	for i := range params {
		g[i] = 2 * (params[i] - center[i])
	}
	return g
}

func converges(t *testing.T, opt Optimizer, steps int) {
	t.Helper()
	center := []float64{1.5, -2.0}
	params := []float64{0, 0}

	for i := 0; i < steps; i++ {
		opt.Step(params, quadraticGrad(params, center))
	}

	for i := range params {
		if math.Abs(params[i]-center[i]) > 0.05 {
			t.Errorf("param %d = %g, want %g", i, params[i], center[i])
		}
	}
}

func TestSGDConverges(t *testing.T) {
	converges(t, NewSGD(0.1), 100)
}

func TestSGDWithMomentumConverges(t *testing.T) {
	converges(t, NewSGDWithMomentum(0.05, 0.9), 200)
}

func TestAdamConverges(t *testing.T) {
	converges(t, NewAdam(0.1), 500)
}

func TestSetLearningRate(t *testing.T) {
	opt := NewAdam(0.1)
	opt.SetLearningRate(0.01)
	if got := opt.LearningRate(); got != 0.01 {
		t.Errorf("LearningRate() = %g, want 0.01", got)
	}
}

func TestStepLR(t *testing.T) {
	s := StepLR{StepSize: 10, Gamma: 0.5}
	cases := []struct {
		epoch int
		want  float64
	}{
		{1, 1.0},
		{10, 1.0},
		{11, 0.5},
		{21, 0.25},
	}
	for _, c := range cases {
		if got := s.LR(c.epoch, 1.0); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("LR(%d) = %g, want %g", c.epoch, got, c.want)
		}
	}
}

func TestExponentialLR(t *testing.T) {
	s := ExponentialLR{Gamma: 0.9}
	if got := s.LR(1, 1.0); math.Abs(got-1.0) > 1e-12 {
		t.Errorf("LR(1) = %g, want 1", got)
	}
	if got := s.LR(3, 1.0); math.Abs(got-0.81) > 1e-12 {
		t.Errorf("LR(3) = %g, want 0.81", got)
	}
}
