package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMSE(t *testing.T) {
	loss, grad := MSE([]float64{1, 2}, []float64{1, 4})
	assert.InDelta(t, 2.0, loss, 1e-12)
	assert.InDelta(t, 0.0, grad[0], 1e-12)
	assert.InDelta(t, 2.0, grad[1], 1e-12)
}

func TestMAE(t *testing.T) {
	loss, grad := MAE([]float64{0, 0}, []float64{3, -1})
	assert.InDelta(t, 2.0, loss, 1e-12)
	assert.InDelta(t, 0.5, grad[0], 1e-12)
	assert.InDelta(t, -0.5, grad[1], 1e-12)
}

func TestQuantile(t *testing.T) {
	// Median pinball loss is half the absolute error.
	loss, _ := Quantile([]float64{0, 0}, []float64{2, -2}, 0.5)
	assert.InDelta(t, 1.0, loss, 1e-12)

	over, _ := Quantile([]float64{0}, []float64{1}, 0.9)
	under, _ := Quantile([]float64{1}, []float64{0}, 0.9)
	// High quantiles penalize under-prediction more.
	assert.Greater(t, under, over)
}

func TestSoftmax(t *testing.T) {
	out := Softmax([]float64{1, 1, 1})
	for _, v := range out {
		assert.InDelta(t, 1.0/3, v, 1e-12)
	}

	sum := 0.0
	for _, v := range Softmax([]float64{-100, 0, 100}) {
		assert.False(t, math.IsNaN(v))
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestActivations(t *testing.T) {
	assert.InDelta(t, 0.5, Sigmoid(0), 1e-12)
	assert.InDelta(t, 0.25, SigmoidPrime(0), 1e-12)
	assert.InDelta(t, 0.0, Tanh(0), 1e-12)
	assert.InDelta(t, 1.0, TanhPrime(0), 1e-12)
	assert.Equal(t, 0.0, ReLU(-1))
	assert.Equal(t, 2.0, ReLU(2))
	assert.Equal(t, 0.0, ReLUPrime(-1))
	assert.Equal(t, 1.0, ReLUPrime(2))
}
