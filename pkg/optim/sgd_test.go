package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSGDStep(t *testing.T) {
	opt := NewSGD(0.1)
	w := []float64{1, 1}
	opt.Step(w, []float64{1, -1})
	assert.InDelta(t, 0.9, w[0], 1e-12)
	assert.InDelta(t, 1.1, w[1], 1e-12)
}

func TestSGDMomentumAccumulates(t *testing.T) {
	opt := NewSGDMomentum(0.1, 0.9)
	w := []float64{0}
	opt.Step(w, []float64{1})
	first := w[0]
	opt.Step(w, []float64{1})
	second := w[0] - first
	// With momentum the second step moves further than the first.
	assert.Less(t, second, first)
	assert.InDelta(t, -0.1, first, 1e-12)
	assert.InDelta(t, -0.19, second, 1e-12)
}
