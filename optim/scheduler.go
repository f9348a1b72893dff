package optim

import "math"

// Scheduler maps an epoch index to a learning rate, given the base rate
// the optimizer started with. Epochs are 1-based.
type Scheduler interface {
	LR(epoch int, base float64) float64
}

// StepLR decays the learning rate by Gamma every StepSize epochs.
type StepLR struct {
	StepSize int
	Gamma    float64
}

func (s StepLR) LR(epoch int, base float64) float64 {
	if s.StepSize <= 0 {
		return base
	}
	return base * math.Pow(s.Gamma, float64((epoch-1)/s.StepSize))
}

// ExponentialLR decays the learning rate by Gamma every epoch.
type ExponentialLR struct {
	Gamma float64
}

func (s ExponentialLR) LR(epoch int, base float64) float64 {
	return base * math.Pow(s.Gamma, float64(epoch-1))
}
