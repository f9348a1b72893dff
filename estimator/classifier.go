package estimator

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/gpleiss/gpwrapper/core/model"
	"github.com/gpleiss/gpwrapper/gp"
	"github.com/gpleiss/gpwrapper/pkg/errors"
	"github.com/gpleiss/gpwrapper/pkg/log"
)

// GPClassifier is a binary Gaussian-process classifier with a probit
// likelihood and Laplace-approximated inference. Fit maximizes the
// approximate log evidence over the kernel hyperparameters; PredictProba
// integrates the likelihood against the latent posterior analytically.
type GPClassifier struct {
	state *model.StateManager
	settings

	gp      *gp.LaplaceGP
	classes []int
	history History
	result  *TrainResult
}

// NewGPClassifier creates a GPClassifier. Without options it uses an
// RBF(1, 1) kernel and 100 epochs of Adam.
func NewGPClassifier(opts ...Option) *GPClassifier {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	if s.kernel == nil {
		s.kernel = gp.NewRBF(1.0, 1.0)
	}
	return &GPClassifier{
		state:    model.NewStateManager(),
		settings: s,
	}
}

// classLabels extracts the two class labels from y, sorted ascending.
func classLabels(op string, targets []float64) ([]int, error) {
	seen := map[float64]struct{}{}
	for _, v := range targets {
		if v != math.Trunc(v) || math.IsNaN(v) {
			return nil, errors.NewValueError(op, "class labels must be integers")
		}
		seen[v] = struct{}{}
	}
	if len(seen) != 2 {
		return nil, errors.NewValueError(op, "exactly two classes are required for binary classification")
	}
	labels := make([]int, 0, 2)
	for v := range seen {
		labels = append(labels, int(v))
	}
	sort.Ints(labels)
	return labels, nil
}

// Fit trains the hyperparameters on (X, y). y must be an n×1 matrix with
// exactly two integer class labels.
func (c *GPClassifier) Fit(X, y mat.Matrix) error {
	if err := c.settings.validate("GPClassifier"); err != nil {
		return err
	}
	n, features, err := validateFitInputs("GPClassifier.Fit", X, y)
	if err != nil {
		return err
	}
	targets, err := columnVector("GPClassifier.Fit", y)
	if err != nil {
		return err
	}
	labels, err := classLabels("GPClassifier.Fit", targets)
	if err != nil {
		return err
	}
	c.state.Reset()

	// Internally the probit likelihood works with labels in {-1, +1};
	// the smaller class label maps to -1.
	signs := make([]float64, n)
	for i, v := range targets {
		if int(v) == labels[0] {
			signs[i] = -1
		} else {
			signs[i] = 1
		}
	}

	rows := matrixRows(X)
	process := gp.NewLaplaceGP(c.kernel)
	objective := gp.NewLaplaceEvidence(process, rows, signs)

	start := time.Now()
	result, err := runTrainingLoop("GPClassifier", objective, &c.settings)
	if err != nil {
		// Leave the kernel at the best finite hyperparameters rather than
		// the diverged point.
		if result != nil {
			process.SetParams(result.BestParams)
		}
		return err
	}

	process.SetParams(result.BestParams)
	if err := process.Condition(rows, signs); err != nil {
		return err
	}

	c.gp = process
	c.classes = labels
	c.history = result.History
	c.result = result
	c.state.SetDimensions(features, n)
	c.state.SetFitted()

	logger := c.logger
	if logger == nil {
		logger = log.GetLoggerWithName("estimator.GPClassifier")
	}
	logger.Info("fit complete",
		log.ModelNameKey, "GPClassifier",
		log.OperationKey, "fit",
		log.SamplesKey, n,
		log.FeaturesKey, features,
		log.BestLossKey, result.BestLoss,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// PredictProba returns an n×2 matrix of class probabilities, one column
// per class in Classes() order.
func (c *GPClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !c.state.IsFitted() {
		return nil, errors.NewNotFittedError("GPClassifier", "PredictProba")
	}
	features, _ := c.state.GetDimensions()
	_, cols := X.Dims()
	if cols != features {
		return nil, errors.NewDimensionError("GPClassifier.PredictProba", features, cols, 1)
	}

	probs, err := c.gp.PredictProba(matrixRows(X))
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(len(probs), 2, nil)
	for i, p := range probs {
		out.Set(i, 0, 1-p)
		out.Set(i, 1, p)
	}
	return out, nil
}

// PredictDist returns the predictive Bernoulli distribution of the
// positive class for each row of X.
func (c *GPClassifier) PredictDist(X mat.Matrix) ([]gp.Bernoulli, error) {
	proba, err := c.PredictProba(X)
	if err != nil {
		return nil, err
	}
	r, _ := proba.Dims()
	out := make([]gp.Bernoulli, r)
	for i := 0; i < r; i++ {
		out[i] = gp.Bernoulli{P: proba.At(i, 1)}
	}
	return out, nil
}

// Predict returns the most probable class label for each row of X as an
// n×1 matrix.
func (c *GPClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := c.PredictProba(X)
	if err != nil {
		return nil, err
	}
	r, _ := proba.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		if proba.At(i, 1) >= 0.5 {
			out.Set(i, 0, float64(c.classes[1]))
		} else {
			out.Set(i, 0, float64(c.classes[0]))
		}
	}
	return out, nil
}

// Score returns the accuracy on (X, y).
func (c *GPClassifier) Score(X, y mat.Matrix) (float64, error) {
	if !c.state.IsFitted() {
		return 0, errors.NewNotFittedError("GPClassifier", "Score")
	}
	pred, err := c.Predict(X)
	if err != nil {
		return 0, err
	}

	r, _ := y.Dims()
	if r == 0 {
		return 0, errors.NewModelError("GPClassifier.Score", "empty data", errors.ErrEmptyData)
	}
	correct := 0
	for i := 0; i < r; i++ {
		if y.At(i, 0) == pred.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(r), nil
}

// Classes returns the class labels seen during fitting, sorted ascending.
func (c *GPClassifier) Classes() []int {
	out := make([]int, len(c.classes))
	copy(out, c.classes)
	return out
}

// IsFitted reports whether Fit has completed successfully.
func (c *GPClassifier) IsFitted() bool { return c.state.IsFitted() }

// Kernel returns the kernel, with the hyperparameters found by Fit once
// the estimator is fitted.
func (c *GPClassifier) Kernel() gp.Kernel { return c.kernel }

// History returns the per-epoch training history of the last fit.
func (c *GPClassifier) History() History { return c.history }

// GetParams returns the estimator's hyperparameters.
func (c *GPClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"kernel":        c.kernel.Name(),
		"epochs":        c.epochs,
		"learning_rate": c.lr,
		"tol":           c.tol,
	}
}
