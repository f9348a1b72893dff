package gp

import (
	"math"
	"testing"
)

func TestGaussianLikelihoodNoiseRoundTrip(t *testing.T) {
	lik := NewGaussianLikelihood(0.04)
	if got := lik.Noise(); !almostEqual(got, 0.04, 1e-12) {
		t.Errorf("Noise() = %g, want 0.04", got)
	}

	params := lik.Params()
	params[0] = math.Log(0.09)
	lik.SetParams(params)
	if got := lik.Noise(); !almostEqual(got, 0.09, 1e-12) {
		t.Errorf("Noise() after SetParams = %g, want 0.09", got)
	}
}

func TestBernoulliProbability(t *testing.T) {
	var lik BernoulliLikelihood

	// Zero latent mean is maximal uncertainty regardless of variance.
	if got := lik.Probability(0, 1.0); !almostEqual(got, 0.5, 1e-12) {
		t.Errorf("Probability(0, 1) = %g, want 0.5", got)
	}

	// Larger latent variance shrinks the probability toward 0.5.
	confident := lik.Probability(1.5, 0.01)
	vague := lik.Probability(1.5, 4.0)
	if confident <= vague {
		t.Errorf("variance should moderate the probability: %g <= %g", confident, vague)
	}
	if vague <= 0.5 {
		t.Errorf("positive mean should stay above 0.5, got %g", vague)
	}
}

func TestBernoulliLogProbDerivatives(t *testing.T) {
	var lik BernoulliLikelihood
	const h = 1e-6

	for _, y := range []float64{-1, 1} {
		for _, f := range []float64{-2.5, -0.3, 0, 0.7, 3.1} {
			numericGrad := (lik.LogProb(f+h, y) - lik.LogProb(f-h, y)) / (2 * h)
			if got := lik.GradLogProb(f, y); !almostEqual(got, numericGrad, 1e-4) {
				t.Errorf("GradLogProb(%g, %g) = %g, finite difference %g", f, y, got, numericGrad)
			}

			numericHess := (lik.GradLogProb(f+h, y) - lik.GradLogProb(f-h, y)) / (2 * h)
			if got := lik.HessLogProb(f, y); !almostEqual(got, numericHess, 1e-4) {
				t.Errorf("HessLogProb(%g, %g) = %g, finite difference %g", f, y, got, numericHess)
			}

			if lik.HessLogProb(f, y) >= 0 {
				t.Errorf("HessLogProb(%g, %g) should be negative", f, y)
			}
		}
	}
}

func TestLogPhiAsymptoticContinuity(t *testing.T) {
	// The direct and asymptotic branches should agree near the switch.
	for _, z := range []float64{-5.9, -6.1} {
		direct := -0.5*z*z - 0.5*math.Log(2*math.Pi) - math.Log(-z) +
			math.Log1p(-1/(z*z)+3/(z*z*z*z))
		if !almostEqual(logPhi(z), direct, 1e-3) {
			t.Errorf("logPhi(%g) = %g, asymptotic %g", z, logPhi(z), direct)
		}
	}

	// Extreme values must stay finite.
	if v := logPhi(-40); math.IsInf(v, 0) || math.IsNaN(v) {
		t.Errorf("logPhi(-40) = %v, want finite", v)
	}
	if r := phiOverPhi(-40); math.IsInf(r, 0) || math.IsNaN(r) || r <= 0 {
		t.Errorf("phiOverPhi(-40) = %v, want finite positive", r)
	}
}
