package nn

import "math"

// MSE returns the mean squared error and its gradient with respect to the
// predictions. Use for continuous targets.
func MSE(yTrue, yPred []float64) (float64, []float64) {
	n := len(yTrue)
	s := 0.0
	grad := make([]float64, n)
	for i := range yTrue {
		e := yPred[i] - yTrue[i]
		s += e * e
		grad[i] = 2 * e / float64(n)
	}
	return s / float64(n), grad
}

// MAE returns the mean absolute error and its gradient with respect to the
// predictions.
func MAE(yTrue, yPred []float64) (float64, []float64) {
	n := len(yTrue)
	s := 0.0
	grad := make([]float64, n)
	for i := range yTrue {
		e := yPred[i] - yTrue[i]
		s += math.Abs(e)
		switch {
		case e > 0:
			grad[i] = 1 / float64(n)
		case e < 0:
			grad[i] = -1 / float64(n)
		}
	}
	return s / float64(n), grad
}

// Quantile returns the pinball loss at quantile q and its gradient with
// respect to the predictions.
func Quantile(yTrue, yPred []float64, q float64) (float64, []float64) {
	n := len(yTrue)
	s := 0.0
	grad := make([]float64, n)
	for i := range yTrue {
		e := yTrue[i] - yPred[i]
		if e >= 0 {
			s += q * e
			grad[i] = -q / float64(n)
		} else {
			s += (q - 1) * e
			grad[i] = (1 - q) / float64(n)
		}
	}
	return s / float64(n), grad
}
