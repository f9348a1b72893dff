package dataset

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/gpleiss/gpwrapper/pkg/errors"
)

// TrainTestSplit shuffles the rows of X and y together and splits them
// into train and test partitions. testFraction must be in (0, 1); both
// partitions are guaranteed at least one row.
func TrainTestSplit(X, y mat.Matrix, testFraction float64, seed int64) (XTrain, XTest, yTrain, yTest *mat.Dense, err error) {
	r, c := X.Dims()
	ry, cy := y.Dims()
	if r == 0 || c == 0 {
		return nil, nil, nil, nil, errors.NewModelError("TrainTestSplit", "empty data", errors.ErrEmptyData)
	}
	if r < 2 {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "at least two rows are required to split")
	}
	if ry != r {
		return nil, nil, nil, nil, errors.NewDimensionError("TrainTestSplit", r, ry, 0)
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "testFraction must be in (0, 1)")
	}

	nTest := int(float64(r) * testFraction)
	if nTest == 0 {
		nTest = 1
	}
	if nTest >= r {
		nTest = r - 1
	}
	nTrain := r - nTest

	perm := rand.New(rand.NewSource(seed)).Perm(r)

	XTrain = mat.NewDense(nTrain, c, nil)
	XTest = mat.NewDense(nTest, c, nil)
	yTrain = mat.NewDense(nTrain, cy, nil)
	yTest = mat.NewDense(nTest, cy, nil)

	copyRow := func(dstX, dstY *mat.Dense, dst, src int) {
		for j := 0; j < c; j++ {
			dstX.Set(dst, j, X.At(src, j))
		}
		for j := 0; j < cy; j++ {
			dstY.Set(dst, j, y.At(src, j))
		}
	}
	for i := 0; i < nTrain; i++ {
		copyRow(XTrain, yTrain, i, perm[i])
	}
	for i := 0; i < nTest; i++ {
		copyRow(XTest, yTest, i, perm[nTrain+i])
	}
	return XTrain, XTest, yTrain, yTest, nil
}
