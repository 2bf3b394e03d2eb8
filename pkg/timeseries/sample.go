// Package timeseries converts a dataframe of grouped time series into
// windowed tensor samples. It owns the window index, applies the fitted
// scalers and encoders handed in by the caller, and materializes one
// sample per window on demand.
package timeseries

import "gorgonia.org/tensor"

// Names of the tensors a Sample carries. Tensors for roles with no
// configured columns are omitted from the map.
const (
	EncoderCont   = "encoder_cont"
	EncoderCat    = "encoder_cat"
	DecoderCont   = "decoder_cont"
	DecoderCat    = "decoder_cat"
	EncoderLength = "encoder_length"
	DecoderLength = "decoder_length"
)

// Sample is a single windowed example: a dict of named input tensors plus
// the target tensor of shape (decoder length, number of targets).
type Sample struct {
	X map[string]*tensor.Dense
	Y *tensor.Dense
}

// EncoderLen returns the encoder length recorded in the sample.
func (s Sample) EncoderLen() int {
	t, ok := s.X[EncoderLength]
	if !ok {
		return 0
	}
	return t.Data().([]int)[0]
}

// DecoderLen returns the decoder length recorded in the sample.
func (s Sample) DecoderLen() int {
	t, ok := s.X[DecoderLength]
	if !ok {
		return 0
	}
	return t.Data().([]int)[0]
}
