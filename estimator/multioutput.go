package estimator

import (
	"gonum.org/v1/gonum/mat"

	"github.com/gpleiss/gpwrapper/core/model"
	"github.com/gpleiss/gpwrapper/gp"
	"github.com/gpleiss/gpwrapper/pkg/errors"
)

// MultiOutputGPRegressor fits one independent GPRegressor per output
// column. Each regressor gets its own kernel from the factory so the
// hyperparameters are optimized per output.
type MultiOutputGPRegressor struct {
	state     *model.StateManager
	newKernel func() gp.Kernel
	opts      []Option

	regressors []*GPRegressor
	outputs    int
}

// NewMultiOutputGPRegressor creates a multi-output regressor. newKernel is
// called once per output column; pass nil to use an RBF(1, 1) kernel for
// every output. The options are applied to every per-output regressor.
// WithKernel is rejected at Fit time: a single kernel object shared across
// outputs would have its hyperparameters overwritten by each fit in turn,
// corrupting the earlier outputs' conditioned state.
func NewMultiOutputGPRegressor(newKernel func() gp.Kernel, opts ...Option) *MultiOutputGPRegressor {
	return &MultiOutputGPRegressor{
		state:     model.NewStateManager(),
		newKernel: newKernel,
		opts:      opts,
	}
}

// Fit trains one GPRegressor per column of y on the shared inputs X.
func (m *MultiOutputGPRegressor) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("MultiOutputGPRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	ry, outputs := y.Dims()
	if ry != r {
		return errors.NewDimensionError("MultiOutputGPRegressor.Fit", r, ry, 0)
	}
	if outputs == 0 {
		return errors.NewModelError("MultiOutputGPRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	var given settings
	for _, opt := range m.opts {
		opt(&given)
	}
	if given.kernel != nil {
		return errors.NewValueError("MultiOutputGPRegressor.Fit",
			"WithKernel would share one kernel object across all outputs; pass a kernel factory instead")
	}
	m.state.Reset()

	newKernel := m.newKernel
	if newKernel == nil {
		newKernel = func() gp.Kernel { return gp.NewRBF(1.0, 1.0) }
	}

	regressors := make([]*GPRegressor, outputs)
	column := mat.NewDense(r, 1, nil)
	for j := 0; j < outputs; j++ {
		opts := append(append([]Option{}, m.opts...), WithKernel(newKernel()))
		reg := NewGPRegressor(opts...)
		for i := 0; i < r; i++ {
			column.Set(i, 0, y.At(i, j))
		}
		if err := reg.Fit(X, column); err != nil {
			return errors.Wrapf(err, "output %d", j)
		}
		regressors[j] = reg
	}

	m.regressors = regressors
	m.outputs = outputs
	m.state.SetDimensions(c, r)
	m.state.SetFitted()
	return nil
}

// Predict returns an n×k matrix of posterior means, one column per output.
func (m *MultiOutputGPRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !m.state.IsFitted() {
		return nil, errors.NewNotFittedError("MultiOutputGPRegressor", "Predict")
	}
	r, _ := X.Dims()
	out := mat.NewDense(r, m.outputs, nil)
	for j, reg := range m.regressors {
		pred, err := reg.Predict(X)
		if err != nil {
			return nil, errors.Wrapf(err, "output %d", j)
		}
		for i := 0; i < r; i++ {
			out.Set(i, j, pred.At(i, 0))
		}
	}
	return out, nil
}

// Regressor returns the fitted per-output regressor for output j.
func (m *MultiOutputGPRegressor) Regressor(j int) *GPRegressor {
	return m.regressors[j]
}

// Outputs returns the number of output columns seen during fitting.
func (m *MultiOutputGPRegressor) Outputs() int { return m.outputs }

// IsFitted reports whether Fit has completed successfully.
func (m *MultiOutputGPRegressor) IsFitted() bool { return m.state.IsFitted() }
