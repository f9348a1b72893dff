package gp

import (
	"testing"
)

func TestExactMarginalLogLikelihoodDescentDirection(t *testing.T) {
	X, y := sineData(15, 0.1, 6)
	g := NewExactGP(NewRBF(0.5, 2.0), ZeroMean{}, NewGaussianLikelihood(0.5))
	obj := NewExactMarginalLogLikelihood(g, X, y)

	params := obj.Params()
	loss, grad, err := obj.LossGrad(params)
	if err != nil {
		t.Fatalf("LossGrad: %v", err)
	}

	// Stepping against the gradient must reduce the loss for a small step.
	const lr = 1e-3
	stepped := make([]float64, len(params))
	for i := range params {
		stepped[i] = params[i] - lr*grad[i]
	}
	newLoss, _, err := obj.LossGrad(stepped)
	if err != nil {
		t.Fatalf("LossGrad(stepped): %v", err)
	}
	if newLoss >= loss {
		t.Errorf("gradient step increased the loss: %g -> %g", loss, newLoss)
	}
}

func TestLaplaceEvidenceRestoresParamsOnError(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}}
	y := []float64{-1, 0, 1} // 0 is not a valid label

	g := NewLaplaceGP(NewRBF(1.0, 1.0))
	obj := NewLaplaceEvidence(g, X, y)

	requested := []float64{0.3, -0.7}
	if _, _, err := obj.LossGrad(requested); err == nil {
		t.Fatal("LossGrad with an invalid label should fail")
	}

	// A failed gradient sweep must not leave the GP at one of the
	// finite-difference perturbations.
	got := g.Params()
	for i := range requested {
		if got[i] != requested[i] {
			t.Errorf("param %d = %v after failed LossGrad, want %v", i, got[i], requested[i])
		}
	}
}

func TestObjectiveLeavesGPConditioned(t *testing.T) {
	X, y := sineData(10, 0.1, 7)
	g := NewExactGP(NewRBF(1.0, 1.0), ZeroMean{}, NewGaussianLikelihood(0.1))
	obj := NewExactMarginalLogLikelihood(g, X, y)

	if _, _, err := obj.LossGrad(obj.Params()); err != nil {
		t.Fatalf("LossGrad: %v", err)
	}

	// The GP must be usable for prediction right after an objective
	// evaluation, without another Condition call.
	if _, err := g.Posterior([][]float64{{1.0}}, false); err != nil {
		t.Errorf("Posterior after LossGrad: %v", err)
	}
}
