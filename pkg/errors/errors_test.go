package errors

import (
	"strings"
	"testing"
)

func TestNotFittedError(t *testing.T) {
	err := NewNotFittedError("GPRegressor", "Predict")
	if err == nil {
		t.Fatal("expected an error")
	}

	var nf *NotFittedError
	if !As(err, &nf) {
		t.Fatalf("expected NotFittedError in chain, got %T", err)
	}
	if nf.ModelName != "GPRegressor" || nf.Method != "Predict" {
		t.Errorf("unexpected fields: %+v", nf)
	}
	if !strings.Contains(err.Error(), "not fitted") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestDimensionError(t *testing.T) {
	err := NewDimensionError("GPRegressor.Fit", 10, 7, 0)

	var de *DimensionError
	if !As(err, &de) {
		t.Fatalf("expected DimensionError in chain, got %T", err)
	}
	if de.Expected != 10 || de.Got != 7 {
		t.Errorf("unexpected fields: %+v", de)
	}
	if !strings.Contains(err.Error(), "rows") {
		t.Errorf("axis 0 should report rows: %v", err)
	}

	err = NewDimensionError("GPRegressor.Predict", 3, 2, 1)
	if !strings.Contains(err.Error(), "features") {
		t.Errorf("axis 1 should report features: %v", err)
	}
}

func TestModelErrorUnwrap(t *testing.T) {
	err := NewModelError("GPRegressor.Fit", "empty data", ErrEmptyData)
	if !Is(err, ErrEmptyData) {
		t.Errorf("expected ErrEmptyData in chain: %v", err)
	}
}

func TestConvergenceWarningMessage(t *testing.T) {
	w := NewConvergenceWarning("Adam", 100, "")
	if !strings.Contains(w.Error(), "100 iterations") {
		t.Errorf("unexpected message: %v", w)
	}

	w = NewConvergenceWarning("Adam", 50, "loss still decreasing")
	if !strings.Contains(w.Error(), "loss still decreasing") {
		t.Errorf("custom message lost: %v", w)
	}
}

func TestWarnHandler(t *testing.T) {
	var captured error
	SetWarningHandler(func(w error) { captured = w })
	defer SetWarningHandler(nil)

	warning := NewConvergenceWarning("SGD", 10, "")
	Warn(warning)

	if captured != warning {
		t.Errorf("handler not invoked: got %v", captured)
	}
}

func TestCheckNumericalStability(t *testing.T) {
	if err := CheckNumericalStability("loss", []float64{1.0, -2.5, 0.0}, 3); err != nil {
		t.Errorf("finite values should pass: %v", err)
	}

	nan := 0.0
	nan /= nan
	err := CheckNumericalStability("loss", []float64{1.0, nan}, 7)
	if err == nil {
		t.Fatal("expected instability error for NaN")
	}

	var ne *NumericalInstabilityError
	if !As(err, &ne) {
		t.Fatalf("expected NumericalInstabilityError, got %T", err)
	}
	if ne.Iteration != 7 {
		t.Errorf("iteration = %d, want 7", ne.Iteration)
	}
}
