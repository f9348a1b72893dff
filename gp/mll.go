package gp

// ExactMarginalLogLikelihood is the training objective for exact GP
// regression: the negative exact log marginal likelihood with analytic
// gradients, evaluated at a given hyperparameter vector.
type ExactMarginalLogLikelihood struct {
	gp *ExactGP
	x  [][]float64
	y  []float64
}

// NewExactMarginalLogLikelihood creates the objective for the given GP and
// training data.
func NewExactMarginalLogLikelihood(g *ExactGP, X [][]float64, y []float64) *ExactMarginalLogLikelihood {
	return &ExactMarginalLogLikelihood{gp: g, x: X, y: y}
}

// Params returns the current hyperparameter vector.
func (m *ExactMarginalLogLikelihood) Params() []float64 { return m.gp.Params() }

// LossGrad evaluates the negative log marginal likelihood and its gradient
// at the given hyperparameters. The GP is left conditioned at those
// hyperparameters.
func (m *ExactMarginalLogLikelihood) LossGrad(params []float64) (float64, []float64, error) {
	m.gp.SetParams(params)
	if err := m.gp.Condition(m.x, m.y); err != nil {
		return 0, nil, err
	}
	lml, grad, err := m.gp.LogMarginalLikelihoodGrad()
	if err != nil {
		return 0, nil, err
	}
	for i := range grad {
		grad[i] = -grad[i]
	}
	return -lml, grad, nil
}

// laplaceGradStep is the central-difference step used for the evidence
// gradient. The evidence is smooth in the log-hyperparameters, so a modest
// step is accurate enough for optimization.
const laplaceGradStep = 1e-4

// LaplaceEvidence is the training objective for probit GP classification:
// the negative Laplace-approximated log evidence. The mode-finding
// iteration makes implicit derivatives awkward, so the gradient is
// computed by central finite differences over the log-hyperparameters.
type LaplaceEvidence struct {
	gp *LaplaceGP
	x  [][]float64
	y  []float64
}

// NewLaplaceEvidence creates the objective for the given GP and training
// data with labels in {-1, +1}.
func NewLaplaceEvidence(g *LaplaceGP, X [][]float64, y []float64) *LaplaceEvidence {
	return &LaplaceEvidence{gp: g, x: X, y: y}
}

// Params returns the current hyperparameter vector.
func (m *LaplaceEvidence) Params() []float64 { return m.gp.Params() }

func (m *LaplaceEvidence) evidenceAt(params []float64) (float64, error) {
	m.gp.SetParams(params)
	if err := m.gp.Condition(m.x, m.y); err != nil {
		return 0, err
	}
	return m.gp.LogEvidence()
}

// LossGrad evaluates the negative approximate evidence and its numeric
// gradient at the given hyperparameters. The GP is left conditioned at
// those hyperparameters.
func (m *LaplaceEvidence) LossGrad(params []float64) (float64, []float64, error) {
	grad := make([]float64, len(params))
	work := make([]float64, len(params))
	copy(work, params)

	for i := range params {
		work[i] = params[i] + laplaceGradStep
		up, err := m.evidenceAt(work)
		if err != nil {
			// Do not leave the GP at a perturbed point on failure.
			m.gp.SetParams(params)
			return 0, nil, err
		}
		work[i] = params[i] - laplaceGradStep
		down, err := m.evidenceAt(work)
		if err != nil {
			m.gp.SetParams(params)
			return 0, nil, err
		}
		work[i] = params[i]
		grad[i] = -(up - down) / (2 * laplaceGradStep)
	}

	// Final evaluation leaves the GP conditioned at the requested point.
	ev, err := m.evidenceAt(params)
	if err != nil {
		return 0, nil, err
	}
	return -ev, grad, nil
}
