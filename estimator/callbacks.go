package estimator

import (
	"fmt"
	"math"

	"github.com/gpleiss/gpwrapper/optim"
)

// CallbackEnv is the view of the training loop passed to callbacks after
// each epoch. Setting StopTraining ends the run; the estimator is then
// finalized with the best hyperparameters seen.
type CallbackEnv struct {
	Epoch        int
	Loss         float64
	BestLoss     float64
	History      History
	Optimizer    optim.Optimizer
	StopTraining bool
}

// Callback is invoked after every epoch of a training run.
type Callback func(env *CallbackEnv) error

// PrintEvaluation prints the loss every period epochs.
func PrintEvaluation(period int) Callback {
	return func(env *CallbackEnv) error {
		if period > 0 && env.Epoch%period == 0 {
			fmt.Printf("[%d] loss: %.6f (best: %.6f)\n", env.Epoch, env.Loss, env.BestLoss)
		}
		return nil
	}
}

// RecordEvaluation appends each epoch's loss to dst.
func RecordEvaluation(dst *[]float64) Callback {
	return func(env *CallbackEnv) error {
		*dst = append(*dst, env.Loss)
		return nil
	}
}

// EarlyStopping stops training after rounds consecutive epochs without
// improvement of the loss.
func EarlyStopping(rounds int) Callback {
	best := math.Inf(1)
	noImprove := 0
	return func(env *CallbackEnv) error {
		if env.Loss < best {
			best = env.Loss
			noImprove = 0
			return nil
		}
		noImprove++
		if rounds > 0 && noImprove >= rounds {
			env.StopTraining = true
		}
		return nil
	}
}

// LRScheduler adjusts the optimizer's learning rate each epoch according
// to the scheduler policy. The base rate is captured on the first epoch.
func LRScheduler(sched optim.Scheduler) Callback {
	base := math.NaN()
	return func(env *CallbackEnv) error {
		if math.IsNaN(base) {
			base = env.Optimizer.LearningRate()
		}
		// The new rate takes effect from the next epoch's step.
		env.Optimizer.SetLearningRate(sched.LR(env.Epoch+1, base))
		return nil
	}
}
