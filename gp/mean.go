package gp

// Mean is a prior mean function.
type Mean interface {
	// Value returns m(x).
	Value(x []float64) float64
}

// ZeroMean is the zero prior mean, the usual default for standardized data.
type ZeroMean struct{}

func (ZeroMean) Value(_ []float64) float64 { return 0 }

// ConstantMean is a fixed constant prior mean.
type ConstantMean struct {
	C float64
}

func (m ConstantMean) Value(_ []float64) float64 { return m.C }

func meanVector(m Mean, X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		out[i] = m.Value(x)
	}
	return out
}
