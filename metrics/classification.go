package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/gpleiss/gpwrapper/pkg/errors"
)

// Accuracy computes the fraction of exactly matching labels.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkVectors("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// logLossEps keeps the log argument away from 0 and 1.
const logLossEps = 1e-15

// LogLoss computes the negative mean log likelihood of binary targets in
// {0, 1} under predicted positive-class probabilities.
func LogLoss(yTrue, proba *mat.VecDense) (float64, error) {
	n, err := checkVectors("LogLoss", yTrue, proba)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i := 0; i < n; i++ {
		t := yTrue.AtVec(i)
		if t != 0 && t != 1 {
			return 0, errors.NewValueError("LogLoss", "targets must be 0 or 1")
		}
		p := math.Min(math.Max(proba.AtVec(i), logLossEps), 1-logLossEps)
		sum += t*math.Log(p) + (1-t)*math.Log(1-p)
	}
	return -sum / float64(n), nil
}

// BrierScore computes the mean squared difference between binary targets
// in {0, 1} and predicted positive-class probabilities.
func BrierScore(yTrue, proba *mat.VecDense) (float64, error) {
	n, err := checkVectors("BrierScore", yTrue, proba)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i := 0; i < n; i++ {
		t := yTrue.AtVec(i)
		if t != 0 && t != 1 {
			return 0, errors.NewValueError("BrierScore", "targets must be 0 or 1")
		}
		diff := t - proba.AtVec(i)
		sum += diff * diff
	}
	return sum / float64(n), nil
}
