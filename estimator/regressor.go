package estimator

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/gpleiss/gpwrapper/core/model"
	"github.com/gpleiss/gpwrapper/gp"
	"github.com/gpleiss/gpwrapper/metrics"
	"github.com/gpleiss/gpwrapper/pkg/errors"
	"github.com/gpleiss/gpwrapper/pkg/log"
)

// GPRegressor is an exact Gaussian-process regressor with a scikit-learn
// style API. Fit maximizes the exact log marginal likelihood over the
// kernel and noise hyperparameters; Predict returns the posterior mean and
// PredictDist the full posterior distribution.
type GPRegressor struct {
	state *model.StateManager
	settings

	gp      *gp.ExactGP
	history History
	result  *TrainResult
}

// NewGPRegressor creates a GPRegressor. Without options it uses an
// RBF(1, 1) kernel, a zero prior mean, noise 0.1 and 100 epochs of Adam.
func NewGPRegressor(opts ...Option) *GPRegressor {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	if s.kernel == nil {
		s.kernel = gp.NewRBF(1.0, 1.0)
	}
	return &GPRegressor{
		state:    model.NewStateManager(),
		settings: s,
	}
}

// Fit trains the hyperparameters on (X, y) and conditions the GP on the
// training data. y must be an n×1 matrix.
func (r *GPRegressor) Fit(X, y mat.Matrix) error {
	if err := r.settings.validate("GPRegressor"); err != nil {
		return err
	}
	n, features, err := validateFitInputs("GPRegressor.Fit", X, y)
	if err != nil {
		return err
	}
	targets, err := columnVector("GPRegressor.Fit", y)
	if err != nil {
		return err
	}
	r.state.Reset()

	rows := matrixRows(X)
	likelihood := gp.NewGaussianLikelihood(r.noise)
	process := gp.NewExactGP(r.kernel, r.mean, likelihood)
	objective := gp.NewExactMarginalLogLikelihood(process, rows, targets)

	start := time.Now()
	result, err := runTrainingLoop("GPRegressor", objective, &r.settings)
	if err != nil {
		// Leave the kernel and likelihood at the best finite
		// hyperparameters rather than the diverged point.
		if result != nil {
			process.SetParams(result.BestParams)
		}
		return err
	}

	process.SetParams(result.BestParams)
	if err := process.Condition(rows, targets); err != nil {
		return err
	}

	r.gp = process
	r.history = result.History
	r.result = result
	r.state.SetDimensions(features, n)
	r.state.SetFitted()

	logger := r.logger
	if logger == nil {
		logger = log.GetLoggerWithName("estimator.GPRegressor")
	}
	logger.Info("fit complete",
		log.ModelNameKey, "GPRegressor",
		log.OperationKey, "fit",
		log.SamplesKey, n,
		log.FeaturesKey, features,
		log.BestLossKey, result.BestLoss,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict returns the posterior mean for each row of X as an n×1 matrix.
func (r *GPRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	post, err := r.PredictDist(X)
	if err != nil {
		return nil, err
	}
	mean := post.Mean()
	out := mat.NewDense(len(mean), 1, nil)
	for i, v := range mean {
		out.Set(i, 0, v)
	}
	return out, nil
}

// PredictDist returns the joint posterior distribution of the latent
// function over the rows of X.
func (r *GPRegressor) PredictDist(X mat.Matrix) (*gp.PosteriorGaussian, error) {
	if !r.state.IsFitted() {
		return nil, errors.NewNotFittedError("GPRegressor", "PredictDist")
	}
	features, _ := r.state.GetDimensions()
	_, c := X.Dims()
	if c != features {
		return nil, errors.NewDimensionError("GPRegressor.PredictDist", features, c, 1)
	}
	return r.gp.Posterior(matrixRows(X), false)
}

// Score returns the coefficient of determination R² on (X, y).
func (r *GPRegressor) Score(X, y mat.Matrix) (float64, error) {
	if !r.state.IsFitted() {
		return 0, errors.NewNotFittedError("GPRegressor", "Score")
	}
	pred, err := r.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, pred)
}

// IsFitted reports whether Fit has completed successfully.
func (r *GPRegressor) IsFitted() bool { return r.state.IsFitted() }

// Kernel returns the kernel, with the hyperparameters found by Fit once
// the estimator is fitted.
func (r *GPRegressor) Kernel() gp.Kernel { return r.kernel }

// Noise returns the fitted observation-noise variance.
func (r *GPRegressor) Noise() (float64, error) {
	if !r.state.IsFitted() {
		return 0, errors.NewNotFittedError("GPRegressor", "Noise")
	}
	return r.gp.Likelihood().Noise(), nil
}

// History returns the per-epoch training history of the last fit.
func (r *GPRegressor) History() History { return r.history }

// BestLoss returns the lowest training loss of the last fit.
func (r *GPRegressor) BestLoss() (float64, error) {
	if r.result == nil {
		return 0, errors.NewNotFittedError("GPRegressor", "BestLoss")
	}
	return r.result.BestLoss, nil
}

// GetParams returns the estimator's hyperparameters.
func (r *GPRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"kernel":        r.kernel.Name(),
		"noise":         r.noise,
		"epochs":        r.epochs,
		"learning_rate": r.lr,
		"tol":           r.tol,
	}
}
