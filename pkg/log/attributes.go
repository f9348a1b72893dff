// Package log defines standard attribute keys for Gaussian-process
// training and prediction operations. Using these keys keeps log output
// consistent and filterable across the library.
package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type.
	// Examples: "GPRegressor", "GPClassifier"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "predict_proba", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies the package performing the operation.
	// Examples: "estimator", "gp", "preprocessing"
	ComponentKey = "ml.component"
)

// Data shape.
const (
	// SamplesKey is the number of samples (rows) being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of features (columns) being processed.
	FeaturesKey = "data.features"

	// OutputsKey is the number of output columns for multi-output models.
	OutputsKey = "data.outputs"
)

// Training progress.
const (
	// EpochKey is the current epoch of the training loop.
	EpochKey = "training.epoch"

	// LossKey is the objective value (negative marginal log likelihood).
	LossKey = "training.loss"

	// BestLossKey is the best objective value seen so far in this fit.
	BestLossKey = "training.best_loss"

	// LearningRateKey is the optimizer step size in effect.
	LearningRateKey = "training.learning_rate"

	// DurationMsKey is the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)
