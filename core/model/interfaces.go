package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter is the interface for trainable estimators.
type Fitter interface {
	// Fit trains the estimator on the given data.
	Fit(X, y mat.Matrix) error
}

// Predictor is the interface for estimators that produce point predictions.
type Predictor interface {
	// Predict returns predictions for the given inputs as an n×1 matrix
	// (or n×k for multi-output models).
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer is the interface for estimators that can score themselves on data.
type Scorer interface {
	// Score returns R² for regressors and accuracy for classifiers.
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}

// Regressor combines the interfaces a regression estimator satisfies.
type Regressor interface {
	Fitter
	Predictor
	Scorer
}

// Classifier combines the interfaces a classification estimator satisfies.
type Classifier interface {
	Fitter
	Predictor
	Scorer

	// PredictProba returns probability estimates for each class, one column
	// per class in the order reported by Classes.
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the unique class labels seen during fitting.
	Classes() []int
}

// ParameterGetter is the interface for estimators that expose their
// hyperparameters.
type ParameterGetter interface {
	// GetParams returns the estimator's hyperparameters.
	GetParams() map[string]interface{}
}
