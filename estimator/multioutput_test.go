package estimator

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/gpleiss/gpwrapper/gp"
	"github.com/gpleiss/gpwrapper/pkg/errors"
)

func TestMultiOutputGPRegressorFitPredict(t *testing.T) {
	n := 15
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)
		X.Set(i, 0, x)
		y.Set(i, 0, math.Sin(2*math.Pi*x))
		y.Set(i, 1, math.Cos(2*math.Pi*x))
	}

	m := NewMultiOutputGPRegressor(
		func() gp.Kernel { return gp.NewRBF(1.0, 0.3) },
		WithEpochs(40),
		WithNoise(0.05),
	)
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}
	if !m.IsFitted() {
		t.Fatal("IsFitted() = false after successful Fit")
	}
	if m.Outputs() != 2 {
		t.Fatalf("Outputs() = %d, want 2", m.Outputs())
	}

	pred, err := m.Predict(X)
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}
	r, c := pred.Dims()
	if r != n || c != 2 {
		t.Fatalf("Predict dims = (%d, %d), want (%d, 2)", r, c, n)
	}

	// Each output column should track its target reasonably well.
	for j := 0; j < 2; j++ {
		var sse, sst, mean float64
		for i := 0; i < n; i++ {
			mean += y.At(i, j)
		}
		mean /= float64(n)
		for i := 0; i < n; i++ {
			d := y.At(i, j) - pred.At(i, j)
			sse += d * d
			e := y.At(i, j) - mean
			sst += e * e
		}
		if r2 := 1 - sse/sst; r2 < 0.8 {
			t.Errorf("output %d R2 = %v, want >= 0.8", j, r2)
		}
	}
}

func TestMultiOutputGPRegressorPerOutputKernels(t *testing.T) {
	n := 10
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)
		X.Set(i, 0, x)
		y.Set(i, 0, x)
		y.Set(i, 1, 3*x)
	}

	m := NewMultiOutputGPRegressor(
		func() gp.Kernel { return gp.NewRBF(1.0, 1.0) },
		WithEpochs(15),
	)
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}

	// Each output trains its own kernel instance.
	if m.Regressor(0).Kernel() == m.Regressor(1).Kernel() {
		t.Error("per-output regressors share a kernel instance")
	}
}

func TestMultiOutputGPRegressorRejectsSharedKernel(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	y := mat.NewDense(4, 2, nil)

	m := NewMultiOutputGPRegressor(nil,
		WithKernel(gp.NewRBF(1.0, 1.0)),
		WithEpochs(5),
	)
	err := m.Fit(X, y)
	var valErr *errors.ValueError
	if !errors.As(err, &valErr) {
		t.Errorf("Fit with WithKernel: got %v, want ValueError", err)
	}
}

func TestMultiOutputGPRegressorNilFactoryIndependentOutputs(t *testing.T) {
	// Two very differently scaled outputs: the hyperparameters fit for one
	// must not leak into the other's conditioned model.
	n := 15
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)
		X.Set(i, 0, x)
		y.Set(i, 0, math.Sin(2*math.Pi*x))
		y.Set(i, 1, 50*x)
	}

	m := NewMultiOutputGPRegressor(nil, WithEpochs(40), WithNoise(0.05))
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}
	if m.Regressor(0).Kernel() == m.Regressor(1).Kernel() {
		t.Fatal("nil-factory outputs share a kernel instance")
	}

	pred, err := m.Predict(X)
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}
	var sse float64
	for i := 0; i < n; i++ {
		d := y.At(i, 0) - pred.At(i, 0)
		sse += d * d
	}
	if sse > 1.0 {
		t.Errorf("output 0 training SSE = %v, want near 0", sse)
	}
}

func TestMultiOutputGPRegressorErrors(t *testing.T) {
	m := NewMultiOutputGPRegressor(nil)

	if _, err := m.Predict(mat.NewDense(2, 1, nil)); err == nil {
		t.Error("Predict before Fit should return an error")
	}

	if err := m.Fit(emptyMatrix{}, emptyMatrix{}); !errors.Is(err, errors.ErrEmptyData) {
		t.Errorf("Fit on empty data: got %v, want ErrEmptyData in chain", err)
	}

	X := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	yShort := mat.NewDense(3, 1, []float64{0, 1, 2})
	var dimErr *errors.DimensionError
	if err := m.Fit(X, yShort); !errors.As(err, &dimErr) {
		t.Errorf("Fit with mismatched rows: got %v, want DimensionError", err)
	}
}
