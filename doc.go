// Package gpwrapper provides Gaussian-process regression and
// classification for Go with a scikit-learn-like API.
//
// The estimators hide the pieces of a Gaussian-process model (kernel,
// likelihood, marginal-likelihood objective, optimizer) behind a plain
// Fit/Predict interface while still exposing them for users who want
// control.
//
// # Quick Start
//
// Fit a GP to noisy observations and predict with uncertainty:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "gonum.org/v1/gonum/mat"
//
//	    "github.com/gpleiss/gpwrapper/estimator"
//	    "github.com/gpleiss/gpwrapper/gp"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
//	    y := mat.NewDense(4, 1, []float64{0, 0.8, 0.9, 0.1})
//
//	    reg := estimator.NewGPRegressor(
//	        estimator.WithKernel(gp.NewRBF(1.0, 1.0)),
//	        estimator.WithEpochs(100),
//	    )
//	    if err := reg.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    post, err := reg.PredictDist(mat.NewDense(1, 1, []float64{1.5}))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("mean:", post.Mean()[0], "variance:", post.Variance()[0])
//	}
//
// # Packages
//
//   - estimator: GPRegressor, GPClassifier, MultiOutputGPRegressor and
//     the training loop with callbacks
//   - gp: kernels, means, likelihoods, exact and Laplace inference
//   - optim: SGD and Adam optimizers plus learning-rate schedulers
//   - metrics: regression and classification metrics
//   - preprocessing: input standardization
//   - dataset: synthetic data generators and train/test splitting
//   - core/model: shared fitted-state management and interfaces
//   - core/parallel: parallel loop helpers
package gpwrapper
