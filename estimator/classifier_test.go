package estimator

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/gpleiss/gpwrapper/gp"
	"github.com/gpleiss/gpwrapper/pkg/errors"
)

// clusterData builds two well-separated 1-D clusters labeled 0 and 1.
func clusterData(perClass int) (X, y *mat.Dense) {
	n := 2 * perClass
	X = mat.NewDense(n, 1, nil)
	y = mat.NewDense(n, 1, nil)
	for i := 0; i < perClass; i++ {
		X.Set(i, 0, -2-0.1*float64(i))
		y.Set(i, 0, 0)
		X.Set(perClass+i, 0, 2+0.1*float64(i))
		y.Set(perClass+i, 0, 1)
	}
	return X, y
}

func TestGPClassifierFitPredict(t *testing.T) {
	X, y := clusterData(8)

	clf := NewGPClassifier(
		WithKernel(gp.NewRBF(1.0, 1.0)),
		WithEpochs(30),
		WithLearningRate(0.05),
	)
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}
	if !clf.IsFitted() {
		t.Fatal("IsFitted() = false after successful Fit")
	}

	classes := clf.Classes()
	if len(classes) != 2 || classes[0] != 0 || classes[1] != 1 {
		t.Fatalf("Classes() = %v, want [0 1]", classes)
	}

	acc, err := clf.Score(X, y)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if acc < 0.9 {
		t.Errorf("training accuracy = %v, want >= 0.9", acc)
	}
}

func TestGPClassifierPredictProba(t *testing.T) {
	X, y := clusterData(8)

	clf := NewGPClassifier(WithEpochs(20))
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}

	Xtest := mat.NewDense(3, 1, []float64{-2.0, 0.0, 2.0})
	proba, err := clf.PredictProba(Xtest)
	if err != nil {
		t.Fatalf("PredictProba returned error: %v", err)
	}
	r, c := proba.Dims()
	if r != 3 || c != 2 {
		t.Fatalf("PredictProba dims = (%d, %d), want (3, 2)", r, c)
	}
	for i := 0; i < r; i++ {
		sum := proba.At(i, 0) + proba.At(i, 1)
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("row %d probabilities sum to %v, want 1", i, sum)
		}
		for j := 0; j < 2; j++ {
			p := proba.At(i, j)
			if p < 0 || p > 1 {
				t.Errorf("proba[%d][%d] = %v, want in [0, 1]", i, j, p)
			}
		}
	}

	// Deep inside each cluster the model should be confident; at the
	// decision boundary it should be close to even odds.
	if proba.At(0, 0) < 0.7 {
		t.Errorf("P(class 0 | x=-2) = %v, want > 0.7", proba.At(0, 0))
	}
	if proba.At(2, 1) < 0.7 {
		t.Errorf("P(class 1 | x=+2) = %v, want > 0.7", proba.At(2, 1))
	}
	if math.Abs(proba.At(1, 1)-0.5) > 0.25 {
		t.Errorf("P(class 1 | x=0) = %v, want near 0.5", proba.At(1, 1))
	}
}

func TestGPClassifierPredictLabels(t *testing.T) {
	// Labels other than {0, 1} must round-trip through Predict.
	perClass := 6
	X, y := clusterData(perClass)
	for i := 0; i < 2*perClass; i++ {
		if y.At(i, 0) == 0 {
			y.Set(i, 0, -3)
		} else {
			y.Set(i, 0, 7)
		}
	}

	clf := NewGPClassifier(WithEpochs(15))
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}
	classes := clf.Classes()
	if classes[0] != -3 || classes[1] != 7 {
		t.Fatalf("Classes() = %v, want [-3 7]", classes)
	}

	pred, err := clf.Predict(X)
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}
	r, _ := pred.Dims()
	for i := 0; i < r; i++ {
		v := pred.At(i, 0)
		if v != -3 && v != 7 {
			t.Fatalf("Predict[%d] = %v, want -3 or 7", i, v)
		}
	}
}

func TestGPClassifierRejectsBadLabels(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{0, 1, 2, 3})

	var valErr *errors.ValueError

	oneClass := mat.NewDense(4, 1, []float64{1, 1, 1, 1})
	clf := NewGPClassifier(WithEpochs(5))
	if err := clf.Fit(X, oneClass); !errors.As(err, &valErr) {
		t.Errorf("Fit with one class: got %v, want ValueError", err)
	}

	threeClasses := mat.NewDense(4, 1, []float64{0, 1, 2, 0})
	if err := clf.Fit(X, threeClasses); !errors.As(err, &valErr) {
		t.Errorf("Fit with three classes: got %v, want ValueError", err)
	}

	fractional := mat.NewDense(4, 1, []float64{0, 0.5, 0.5, 0})
	if err := clf.Fit(X, fractional); !errors.As(err, &valErr) {
		t.Errorf("Fit with fractional labels: got %v, want ValueError", err)
	}
}

func TestGPClassifierNotFitted(t *testing.T) {
	clf := NewGPClassifier()
	X := mat.NewDense(2, 1, []float64{0, 1})

	var nfe *errors.NotFittedError
	if _, err := clf.Predict(X); !errors.As(err, &nfe) {
		t.Errorf("Predict before Fit: got %v, want NotFittedError", err)
	}
	if _, err := clf.PredictProba(X); !errors.As(err, &nfe) {
		t.Errorf("PredictProba before Fit: got %v, want NotFittedError", err)
	}
	if _, err := clf.Score(X, X); !errors.As(err, &nfe) {
		t.Errorf("Score before Fit: got %v, want NotFittedError", err)
	}
}

func TestGPClassifierDimensionMismatch(t *testing.T) {
	X, y := clusterData(6)
	clf := NewGPClassifier(WithEpochs(5))
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}

	Xwide := mat.NewDense(2, 4, nil)
	var dimErr *errors.DimensionError
	if _, err := clf.PredictProba(Xwide); !errors.As(err, &dimErr) {
		t.Errorf("PredictProba with wrong feature count: got %v, want DimensionError", err)
	}
}
