package estimator

import (
	"math"
	"testing"

	"github.com/gpleiss/gpwrapper/optim"
	"github.com/gpleiss/gpwrapper/pkg/errors"
)

// quadraticObjective minimizes (p0-3)^2 + (p1+1)^2. A cheap stand-in for a
// marginal-likelihood objective in training-loop tests.
type quadraticObjective struct {
	params []float64
}

func newQuadraticObjective() *quadraticObjective {
	return &quadraticObjective{params: []float64{0, 0}}
}

func (q *quadraticObjective) Params() []float64 {
	out := make([]float64, len(q.params))
	copy(out, q.params)
	return out
}

func (q *quadraticObjective) LossGrad(params []float64) (float64, []float64, error) {
	copy(q.params, params)
	d0 := params[0] - 3
	d1 := params[1] + 1
	return d0*d0 + d1*d1, []float64{2 * d0, 2 * d1}, nil
}

func TestRunTrainingLoopConverges(t *testing.T) {
	obj := newQuadraticObjective()
	s := defaultSettings()
	s.epochs = 200
	s.lr = 0.1
	s.logEvery = 0

	res, err := runTrainingLoop("test", obj, &s)
	if err != nil {
		t.Fatalf("runTrainingLoop returned error: %v", err)
	}
	if res.History.Len() != 200 {
		t.Errorf("history length = %d, want 200", res.History.Len())
	}
	if res.BestLoss > 1e-3 {
		t.Errorf("best loss = %v, want near 0", res.BestLoss)
	}
	if math.Abs(res.BestParams[0]-3) > 0.1 || math.Abs(res.BestParams[1]+1) > 0.1 {
		t.Errorf("best params = %v, want near [3, -1]", res.BestParams)
	}
}

func TestRunTrainingLoopTolerance(t *testing.T) {
	obj := newQuadraticObjective()
	s := defaultSettings()
	s.epochs = 1000
	s.lr = 0.1
	s.tol = 1e-8
	s.logEvery = 0

	res, err := runTrainingLoop("test", obj, &s)
	if err != nil {
		t.Fatalf("runTrainingLoop returned error: %v", err)
	}
	if !res.Converged {
		t.Error("Converged = false, want true with a reachable tolerance")
	}
	if res.History.Len() == 1000 {
		t.Error("training ran the full budget despite converging")
	}
}

func TestRunTrainingLoopConvergenceWarning(t *testing.T) {
	var warned error
	errors.SetWarningHandler(func(w error) { warned = w })
	defer errors.SetWarningHandler(nil)

	obj := newQuadraticObjective()
	s := defaultSettings()
	s.epochs = 3
	s.lr = 0.1
	s.tol = 1e-12
	s.logEvery = 0

	if _, err := runTrainingLoop("test", obj, &s); err != nil {
		t.Fatalf("runTrainingLoop returned error: %v", err)
	}
	var cw *errors.ConvergenceWarning
	if !errors.As(warned, &cw) {
		t.Errorf("warning = %v, want ConvergenceWarning", warned)
	}
}

func TestEarlyStoppingCallback(t *testing.T) {
	obj := newQuadraticObjective()
	s := defaultSettings()
	s.epochs = 500
	// A huge learning rate makes the quadratic diverge, so the loss stops
	// improving almost immediately.
	s.lr = 5
	s.optimizer = optim.NewSGD(5)
	s.logEvery = 0
	s.callbacks = []Callback{EarlyStopping(3)}

	res, err := runTrainingLoop("test", obj, &s)
	if err != nil {
		t.Fatalf("runTrainingLoop returned error: %v", err)
	}
	if !res.Stopped {
		t.Error("Stopped = false, want true with early stopping on a diverging run")
	}
	if res.History.Len() >= 500 {
		t.Errorf("history length = %d, want well below the epoch budget", res.History.Len())
	}
}

func TestRecordEvaluationCallback(t *testing.T) {
	var losses []float64
	obj := newQuadraticObjective()
	s := defaultSettings()
	s.epochs = 10
	s.lr = 0.1
	s.logEvery = 0
	s.callbacks = []Callback{RecordEvaluation(&losses)}

	res, err := runTrainingLoop("test", obj, &s)
	if err != nil {
		t.Fatalf("runTrainingLoop returned error: %v", err)
	}
	if len(losses) != res.History.Len() {
		t.Fatalf("recorded %d losses, history has %d", len(losses), res.History.Len())
	}
	for i, rec := range res.History {
		if losses[i] != rec.Loss {
			t.Errorf("recorded loss[%d] = %v, history says %v", i, losses[i], rec.Loss)
		}
	}
}

func TestLRSchedulerCallback(t *testing.T) {
	obj := newQuadraticObjective()
	s := defaultSettings()
	s.epochs = 10
	s.lr = 0.1
	s.optimizer = optim.NewSGD(0.1)
	s.logEvery = 0
	s.callbacks = []Callback{LRScheduler(optim.StepLR{StepSize: 5, Gamma: 0.5})}

	res, err := runTrainingLoop("test", obj, &s)
	if err != nil {
		t.Fatalf("runTrainingLoop returned error: %v", err)
	}
	// Epoch 1 steps at the base rate; by epoch 10 the rate has halved.
	if res.History[0].LearningRate != 0.1 {
		t.Errorf("epoch 1 learning rate = %v, want 0.1", res.History[0].LearningRate)
	}
	last := res.History[len(res.History)-1]
	if math.Abs(last.LearningRate-0.05) > 1e-12 {
		t.Errorf("epoch 10 learning rate = %v, want 0.05", last.LearningRate)
	}
}

// nanObjective returns NaN on the second evaluation.
type nanObjective struct {
	calls int
}

func (n *nanObjective) Params() []float64 { return []float64{0} }

func (n *nanObjective) LossGrad(params []float64) (float64, []float64, error) {
	n.calls++
	if n.calls >= 2 {
		return math.NaN(), []float64{0}, nil
	}
	return 1, []float64{0}, nil
}

func TestRunTrainingLoopAbortsOnNaN(t *testing.T) {
	s := defaultSettings()
	s.epochs = 10
	s.lr = 0.1
	s.logEvery = 0

	res, err := runTrainingLoop("test", &nanObjective{}, &s)
	if err == nil {
		t.Fatal("runTrainingLoop should abort on a NaN loss")
	}
	var numErr *errors.NumericalInstabilityError
	if !errors.As(err, &numErr) {
		t.Errorf("got %v, want NumericalInstabilityError", err)
	}

	// The partial result carries the best finite state so callers can
	// restore it.
	if res == nil {
		t.Fatal("partial result is nil on abort")
	}
	if res.BestLoss != 1 {
		t.Errorf("partial BestLoss = %v, want 1 (the only finite epoch)", res.BestLoss)
	}
	if len(res.BestParams) != 1 || math.IsNaN(res.BestParams[0]) {
		t.Errorf("partial BestParams = %v, want finite", res.BestParams)
	}
	if res.History.Len() != 1 {
		t.Errorf("partial history length = %d, want 1", res.History.Len())
	}
}

func TestSettingsValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*settings)
	}{
		{"zero epochs", func(s *settings) { s.epochs = 0 }},
		{"negative lr", func(s *settings) { s.lr = -1 }},
		{"negative tol", func(s *settings) { s.tol = -1e-3 }},
		{"zero noise", func(s *settings) { s.noise = 0 }},
	}
	for _, tc := range cases {
		s := defaultSettings()
		tc.mutate(&s)
		err := s.validate("test")
		var valErr *errors.ValidationError
		if !errors.As(err, &valErr) {
			t.Errorf("%s: got %v, want ValidationError", tc.name, err)
		}
	}
}
