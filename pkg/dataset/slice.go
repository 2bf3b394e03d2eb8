package dataset

import (
	"fmt"

	"github.com/ramonamezquita/deepts/pkg/timeseries"
)

// Transform post-processes a materialized sample. The default is identity.
type Transform func(timeseries.Sample) timeseries.Sample

// SliceDataset makes any Dataset sliceable for model-selection tooling.
//
// It owns a reference to the wrapped dataset plus an index list. Slicing
// operations (Slice, Select, Mask) return a new view over a subset of the
// indices without touching the underlying data, so splitting a large
// dataset never materializes samples. Only integer Get loads a sample.
type SliceDataset struct {
	dataset   Dataset
	indices   []int
	transform Transform
}

// SliceOption configures a SliceDataset.
type SliceOption func(*SliceDataset)

// WithIndices restricts the view to the given positions of the wrapped
// dataset. The slice is copied.
func WithIndices(indices []int) SliceOption {
	return func(s *SliceDataset) {
		s.indices = make([]int, len(indices))
		copy(s.indices, indices)
	}
}

// WithTransform overrides the identity transform applied by Get.
func WithTransform(t Transform) SliceOption {
	return func(s *SliceDataset) { s.transform = t }
}

// NewSlice wraps ds. Without options the view covers every index.
func NewSlice(ds Dataset, opts ...SliceOption) *SliceDataset {
	s := &SliceDataset{dataset: ds}
	for _, opt := range opts {
		opt(s)
	}
	if s.indices == nil {
		s.indices = make([]int, ds.Len())
		for i := range s.indices {
			s.indices[i] = i
		}
	}
	return s
}

// Len returns the count of selected indices.
func (s *SliceDataset) Len() int { return len(s.indices) }

// Get materializes the single sample at position i of the view. The
// returned sample is exactly what the wrapped dataset returns at the
// mapped index, passed through the transform when one is set.
func (s *SliceDataset) Get(i int) (timeseries.Sample, error) {
	if i < 0 || i >= len(s.indices) {
		return timeseries.Sample{}, fmt.Errorf("dataset: index %d out of range [0, %d)", i, len(s.indices))
	}
	sample, err := s.dataset.Get(s.indices[i])
	if err != nil {
		return timeseries.Sample{}, err
	}
	if s.transform != nil {
		sample = s.transform(sample)
	}
	return sample, nil
}

// Slice returns a lazy view over positions [lo, hi) of this view.
func (s *SliceDataset) Slice(lo, hi int) (*SliceDataset, error) {
	if lo < 0 || hi > len(s.indices) || lo > hi {
		return nil, fmt.Errorf("dataset: slice bounds [%d, %d) out of range [0, %d)", lo, hi, len(s.indices))
	}
	return s.view(s.indices[lo:hi]), nil
}

// Select returns a lazy view over the given positions of this view.
func (s *SliceDataset) Select(positions []int) (*SliceDataset, error) {
	sub := make([]int, len(positions))
	for i, p := range positions {
		if p < 0 || p >= len(s.indices) {
			return nil, fmt.Errorf("dataset: position %d out of range [0, %d)", p, len(s.indices))
		}
		sub[i] = s.indices[p]
	}
	return s.view(sub), nil
}

// Mask returns a lazy view over the positions where mask is true. The mask
// length must match the view length.
func (s *SliceDataset) Mask(mask []bool) (*SliceDataset, error) {
	if len(mask) != len(s.indices) {
		return nil, fmt.Errorf("dataset: mask length %d does not match dataset length %d", len(mask), len(s.indices))
	}
	sub := []int{}
	for i, keep := range mask {
		if keep {
			sub = append(sub, s.indices[i])
		}
	}
	return s.view(sub), nil
}

// Indices returns a copy of the selected indices into the wrapped dataset.
func (s *SliceDataset) Indices() []int {
	out := make([]int, len(s.indices))
	copy(out, s.indices)
	return out
}

// Underlying returns the wrapped dataset, for access to its metadata.
func (s *SliceDataset) Underlying() Dataset { return s.dataset }

func (s *SliceDataset) view(indices []int) *SliceDataset {
	sub := make([]int, len(indices))
	copy(sub, indices)
	return &SliceDataset{dataset: s.dataset, indices: sub, transform: s.transform}
}
