package estimator

import (
	"math"
	"time"

	"github.com/gpleiss/gpwrapper/gp"
	"github.com/gpleiss/gpwrapper/optim"
	"github.com/gpleiss/gpwrapper/pkg/errors"
	"github.com/gpleiss/gpwrapper/pkg/log"
)

// Objective is a training objective evaluated at a hyperparameter vector.
// Both GP objectives in package gp satisfy it.
type Objective interface {
	// Params returns the current hyperparameter vector.
	Params() []float64

	// LossGrad evaluates the loss and its gradient at params.
	LossGrad(params []float64) (loss float64, grad []float64, err error)
}

// settings collects the shared estimator configuration set through the
// functional options.
type settings struct {
	kernel    gp.Kernel
	mean      gp.Mean
	noise     float64
	epochs    int
	lr        float64
	optimizer optim.Optimizer
	tol       float64
	logEvery  int
	callbacks []Callback
	logger    log.Logger
}

func defaultSettings() settings {
	return settings{
		mean:     gp.ZeroMean{},
		noise:    0.1,
		epochs:   100,
		lr:       0.1,
		tol:      0,
		logEvery: 10,
	}
}

// Option configures a GP estimator.
type Option func(*settings)

// WithKernel sets the covariance kernel. The default is RBF(1, 1).
func WithKernel(k gp.Kernel) Option {
	return func(s *settings) { s.kernel = k }
}

// WithMean sets the prior mean function. The default is the zero mean.
func WithMean(m gp.Mean) Option {
	return func(s *settings) { s.mean = m }
}

// WithNoise sets the initial observation-noise variance for regression.
func WithNoise(noise float64) Option {
	return func(s *settings) { s.noise = noise }
}

// WithEpochs sets the number of training epochs.
func WithEpochs(epochs int) Option {
	return func(s *settings) { s.epochs = epochs }
}

// WithLearningRate sets the optimizer step size.
func WithLearningRate(lr float64) Option {
	return func(s *settings) { s.lr = lr }
}

// WithOptimizer sets the optimizer. The default is Adam at the configured
// learning rate, created fresh for each fit.
func WithOptimizer(o optim.Optimizer) Option {
	return func(s *settings) { s.optimizer = o }
}

// WithTol enables convergence stopping: training ends once the loss
// changes by less than tol between consecutive epochs. A ConvergenceWarning
// is emitted when the epoch budget runs out first.
func WithTol(tol float64) Option {
	return func(s *settings) { s.tol = tol }
}

// WithLogEvery sets the epoch-logging period. Zero disables progress logs.
func WithLogEvery(period int) Option {
	return func(s *settings) { s.logEvery = period }
}

// WithCallbacks appends training callbacks.
func WithCallbacks(cbs ...Callback) Option {
	return func(s *settings) { s.callbacks = append(s.callbacks, cbs...) }
}

// WithEarlyStopping stops training after rounds epochs without
// improvement. Shorthand for WithCallbacks(EarlyStopping(rounds)).
func WithEarlyStopping(rounds int) Option {
	return WithCallbacks(EarlyStopping(rounds))
}

// WithScheduler applies a learning-rate schedule during training.
// Shorthand for WithCallbacks(LRScheduler(sched)).
func WithScheduler(sched optim.Scheduler) Option {
	return WithCallbacks(LRScheduler(sched))
}

// WithLogger overrides the logger used for training progress.
func WithLogger(l log.Logger) Option {
	return func(s *settings) { s.logger = l }
}

func (s *settings) validate(name string) error {
	if s.epochs <= 0 {
		return errors.NewValidationError("epochs", "must be positive", s.epochs)
	}
	if s.lr <= 0 {
		return errors.NewValidationError("learning_rate", "must be positive", s.lr)
	}
	if s.tol < 0 {
		return errors.NewValidationError("tol", "must be non-negative", s.tol)
	}
	if s.noise <= 0 {
		return errors.NewValidationError("noise", "must be positive", s.noise)
	}
	return nil
}

// TrainResult summarizes a completed training run.
type TrainResult struct {
	History    History
	BestLoss   float64
	BestEpoch  int
	BestParams []float64
	Converged  bool
	Stopped    bool // ended by a callback
}

// runTrainingLoop fits the objective's hyperparameters: each epoch it
// evaluates the loss and gradient, steps the optimizer, tracks the best
// loss seen and dispatches callbacks. The estimator is finalized with the
// best hyperparameters, so a bad final step cannot degrade the model.
// On a mid-training failure the partial result is returned alongside the
// error so callers can restore the best finite hyperparameters seen.
func runTrainingLoop(name string, obj Objective, s *settings) (*TrainResult, error) {
	logger := s.logger
	if logger == nil {
		logger = log.GetLoggerWithName("estimator." + name)
	}

	opt := s.optimizer
	if opt == nil {
		opt = optim.NewAdam(s.lr)
	}

	params := obj.Params()
	bestParams := make([]float64, len(params))
	copy(bestParams, params)

	res := &TrainResult{
		BestLoss:   math.Inf(1),
		BestParams: bestParams,
	}

	prev := math.NaN()
	for epoch := 1; epoch <= s.epochs; epoch++ {
		start := time.Now()

		loss, grad, err := obj.LossGrad(params)
		if err != nil {
			return res, err
		}
		if err := errors.CheckScalar("training loss", loss, epoch); err != nil {
			return res, err
		}

		improved := loss < res.BestLoss
		if improved {
			res.BestLoss = loss
			res.BestEpoch = epoch
			copy(res.BestParams, params)
		}

		opt.Step(params, grad)

		res.History = append(res.History, EpochRecord{
			Epoch:        epoch,
			Loss:         loss,
			Improved:     improved,
			LearningRate: opt.LearningRate(),
			Duration:     time.Since(start),
		})

		if s.logEvery > 0 && epoch%s.logEvery == 0 {
			logger.Info("training progress",
				log.ModelNameKey, name,
				log.EpochKey, epoch,
				log.LossKey, loss,
				log.BestLossKey, res.BestLoss,
				log.LearningRateKey, opt.LearningRate(),
			)
		}

		env := &CallbackEnv{
			Epoch:     epoch,
			Loss:      loss,
			BestLoss:  res.BestLoss,
			History:   res.History,
			Optimizer: opt,
		}
		for _, cb := range s.callbacks {
			if err := cb(env); err != nil {
				return res, errors.Wrapf(err, "callback failed at epoch %d", epoch)
			}
		}
		if env.StopTraining {
			res.Stopped = true
			logger.Info("training stopped by callback",
				log.ModelNameKey, name,
				log.EpochKey, epoch,
				log.BestLossKey, res.BestLoss,
			)
			break
		}

		if s.tol > 0 && !math.IsNaN(prev) && math.Abs(prev-loss) < s.tol {
			res.Converged = true
			break
		}
		prev = loss
	}

	if s.tol > 0 && !res.Converged && !res.Stopped {
		errors.Warn(errors.NewConvergenceWarning(name, s.epochs, ""))
	}
	return res, nil
}
