// Package preprocessing provides fit/transform primitives for real valued
// and categorical columns, plus a dataframe preprocessor step that prepares
// raw grouped time series for windowing.
package preprocessing

import (
	"errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrNotFitted is returned when Transform or InverseTransform is called on
// a transformer that has not been fitted.
var ErrNotFitted = errors.New("preprocessing: transformer is not fitted")

// Transformer is a reversible column transformation (fit on train,
// transform everywhere).
type Transformer interface {
	Fit(x []float64) error
	Transform(x []float64) ([]float64, error)
	InverseTransform(x []float64) ([]float64, error)
	Fitted() bool
}

// Identity passes values through unchanged. It is the default scaler for
// every real feature except targets.
type Identity struct {
	fitted bool
}

func NewIdentity() *Identity { return &Identity{} }

func (t *Identity) Fit(x []float64) error { t.fitted = true; return nil }

func (t *Identity) Transform(x []float64) ([]float64, error) {
	out := make([]float64, len(x))
	copy(out, x)
	return out, nil
}

func (t *Identity) InverseTransform(x []float64) ([]float64, error) {
	out := make([]float64, len(x))
	copy(out, x)
	return out, nil
}

func (t *Identity) Fitted() bool { return t.fitted }

// StandardScaler standardizes a column to zero mean and unit variance.
type StandardScaler struct {
	Mean   float64
	Std    float64
	fitted bool
}

func NewStandardScaler() *StandardScaler { return &StandardScaler{} }

func (s *StandardScaler) Fit(x []float64) error {
	if len(x) == 0 {
		return errors.New("preprocessing: cannot fit scaler on empty column")
	}
	mean, std := stat.MeanStdDev(x, nil)
	s.Mean = mean
	s.Std = std
	if s.Std == 0 || len(x) < 2 {
		s.Std = 1
	}
	s.fitted = true
	return nil
}

func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if !s.fitted {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - s.Mean) / s.Std
	}
	return out, nil
}

func (s *StandardScaler) InverseTransform(x []float64) ([]float64, error) {
	if !s.fitted {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v*s.Std + s.Mean
	}
	return out, nil
}

func (s *StandardScaler) Fitted() bool { return s.fitted }

// MinMaxScaler scales a column to [0, 1]. Constant columns map to 0.
type MinMaxScaler struct {
	Min    float64
	Max    float64
	fitted bool
}

func NewMinMaxScaler() *MinMaxScaler { return &MinMaxScaler{} }

func (s *MinMaxScaler) Fit(x []float64) error {
	if len(x) == 0 {
		return errors.New("preprocessing: cannot fit scaler on empty column")
	}
	s.Min, s.Max = floats.Min(x), floats.Max(x)
	s.fitted = true
	return nil
}

func (s *MinMaxScaler) Transform(x []float64) ([]float64, error) {
	if !s.fitted {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(x))
	span := s.Max - s.Min
	if span == 0 {
		return out, nil
	}
	for i, v := range x {
		out[i] = (v - s.Min) / span
	}
	return out, nil
}

func (s *MinMaxScaler) InverseTransform(x []float64) ([]float64, error) {
	if !s.fitted {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(x))
	span := s.Max - s.Min
	for i, v := range x {
		out[i] = v*span + s.Min
	}
	return out, nil
}

func (s *MinMaxScaler) Fitted() bool { return s.fitted }
