// Package estimator provides scikit-learn-style Gaussian-process
// estimators: GPRegressor for exact GP regression, GPClassifier for probit
// classification, and a shared epoch training loop that fits kernel and
// likelihood hyperparameters by stepping an optimizer over a marginal-
// log-likelihood objective.
package estimator

import (
	"math"
	"time"
)

// EpochRecord captures one epoch of a training run.
type EpochRecord struct {
	Epoch        int
	Loss         float64
	Improved     bool // whether this epoch's loss was the best so far
	LearningRate float64
	Duration     time.Duration
}

// History is the per-epoch record of a fit, in epoch order.
type History []EpochRecord

// Len returns the number of recorded epochs.
func (h History) Len() int { return len(h) }

// Losses returns the loss of each epoch in order.
func (h History) Losses() []float64 {
	out := make([]float64, len(h))
	for i, rec := range h {
		out[i] = rec.Loss
	}
	return out
}

// Best returns the record with the lowest loss. ok is false for an empty
// history.
func (h History) Best() (rec EpochRecord, ok bool) {
	best := math.Inf(1)
	for _, r := range h {
		if r.Loss < best {
			best = r.Loss
			rec = r
			ok = true
		}
	}
	return rec, ok
}

// Last returns the most recent record. ok is false for an empty history.
func (h History) Last() (rec EpochRecord, ok bool) {
	if len(h) == 0 {
		return EpochRecord{}, false
	}
	return h[len(h)-1], true
}
