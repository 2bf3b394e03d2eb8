// Package models provides the forecasting models exposed to the pipeline:
// a sequence-to-sequence recurrent network and a temporal fusion
// transformer. Both delegate windowing to the dataset package and train a
// linear readout over their network features by mini-batch SGD.
package models

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"

	"github.com/ramonamezquita/deepts/pkg/dataset"
	"github.com/ramonamezquita/deepts/pkg/nn"
	"github.com/ramonamezquita/deepts/pkg/optim"
	"github.com/ramonamezquita/deepts/pkg/timeseries"
)

// Forecast dataframe column names.
const (
	GroupColumn = "group"
	StepColumn  = "step"
)

// Config configures a forecasting model. Data carries the dataset
// construction parameters; the rest are training knobs.
type Config struct {
	Data dataset.Params

	HiddenSize   int
	Epochs       int
	BatchSize    int
	LearningRate float64
	Momentum     float64
	Seed         int64

	Logger *zap.Logger
}

func (c *Config) defaults() {
	if c.HiddenSize <= 0 {
		c.HiddenSize = 32
	}
	if c.Epochs <= 0 {
		c.Epochs = 10
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 32
	}
	if c.LearningRate <= 0 {
		c.LearningRate = 0.05
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}

// network maps a windowed sample to one feature vector per decoder step.
type network interface {
	Features(s timeseries.Sample) ([][]float64, error)
}

// TimeseriesNeuralNet is the shared training and prediction machinery of
// the forecasting models. It owns the readout weights; the embedded
// network supplies the per-step features.
type TimeseriesNeuralNet struct {
	cfg Config
	net network
	log *zap.Logger

	weights  []float64
	featDim  int
	nTargets int

	lossHistory  []float64
	fittedParams dataset.Params
	fitted       bool
}

func newBase(cfg Config, net network) *TimeseriesNeuralNet {
	cfg.defaults()
	return &TimeseriesNeuralNet{cfg: cfg, net: net, log: cfg.Logger}
}

// Fit windows the dataframe into a training dataset and trains the
// readout by mini-batch SGD. After every epoch the readout is evaluated
// on the full dataset; an epoch that fails to improve is rolled back to
// the best weights so far and the learning rate is halved, so the fitted
// loss never ends worse than it started.
func (m *TimeseriesNeuralNet) Fit(df dataframe.DataFrame) error {
	p := m.cfg.Data
	p.PredictMode = false
	if p.Logger == nil {
		p.Logger = m.log
	}
	ds, err := dataset.New(df, p)
	if err != nil {
		return err
	}
	if ds.Len() == 0 {
		return fmt.Errorf("models: no training windows produced")
	}
	m.fittedParams = ds.Parameters()
	m.nTargets = len(ds.Features().TargetNames())
	m.lossHistory = nil

	opt := optim.NewSGDMomentum(m.cfg.LearningRate, m.cfg.Momentum)
	var best []float64
	bestLoss := math.Inf(1)
	for epoch := 0; epoch < m.cfg.Epochs; epoch++ {
		batches, errCh, done := dataset.Stream(ds, dataset.LoaderOptions{
			BatchSize: m.cfg.BatchSize,
			Shuffle:   true,
			Seed:      m.cfg.Seed + int64(epoch),
		})
		epochLoss, nBatches := 0.0, 0
		for batch := range batches {
			loss, err := m.trainBatch(batch, opt)
			if err != nil {
				close(done)
				return err
			}
			epochLoss += loss
			nBatches++
		}
		if err, ok := <-errCh; ok && err != nil {
			return err
		}

		evalLoss, err := m.evaluate(ds)
		if err != nil {
			return err
		}
		if best == nil || evalLoss <= bestLoss {
			bestLoss = evalLoss
			best = append(best[:0], m.weights...)
		} else {
			copy(m.weights, best)
			opt.LearningRate *= 0.5
		}
		m.lossHistory = append(m.lossHistory, bestLoss)

		if nBatches > 0 {
			m.log.Info("epoch finished",
				zap.Int("epoch", epoch+1),
				zap.Float64("loss", epochLoss/float64(nBatches)),
				zap.Float64("eval_loss", bestLoss),
			)
		}
	}
	m.fitted = true
	return nil
}

// evaluate computes the readout loss over the whole dataset without
// touching the weights.
func (m *TimeseriesNeuralNet) evaluate(ds dataset.Dataset) (float64, error) {
	var yTrue, yPred []float64
	for i := 0; i < ds.Len(); i++ {
		sample, err := ds.Get(i)
		if err != nil {
			return 0, err
		}
		feats, err := m.net.Features(sample)
		if err != nil {
			return 0, err
		}
		target := sample.Y.Data().([]float64)
		for step, phi := range feats {
			for k := 0; k < m.nTargets; k++ {
				yTrue = append(yTrue, target[step*m.nTargets+k])
				yPred = append(yPred, m.readout(phi, k))
			}
		}
	}
	loss, _ := nn.MSE(yTrue, yPred)
	return loss, nil
}

// LossHistory returns the evaluation loss accepted after each training
// epoch. Rolled-back epochs repeat the previous value, so the sequence
// never increases.
func (m *TimeseriesNeuralNet) LossHistory() []float64 {
	out := make([]float64, len(m.lossHistory))
	copy(out, m.lossHistory)
	return out
}

func (m *TimeseriesNeuralNet) trainBatch(batch dataset.Batch, opt *optim.SGD) (float64, error) {
	var (
		yTrue, yPred []float64
		phis         [][]float64
		targetIdx    []int
	)
	for _, sample := range batch.Samples {
		feats, err := m.net.Features(sample)
		if err != nil {
			return 0, err
		}
		if m.weights == nil {
			m.featDim = len(feats[0])
			m.weights = make([]float64, m.nTargets*(m.featDim+1))
		}
		target := sample.Y.Data().([]float64)
		for step, phi := range feats {
			for k := 0; k < m.nTargets; k++ {
				yTrue = append(yTrue, target[step*m.nTargets+k])
				yPred = append(yPred, m.readout(phi, k))
				phis = append(phis, phi)
				targetIdx = append(targetIdx, k)
			}
		}
	}
	loss, grad := nn.MSE(yTrue, yPred)
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return 0, fmt.Errorf("models: loss diverged")
	}
	grads := make([]float64, len(m.weights))
	for i, g := range grad {
		off := targetIdx[i] * (m.featDim + 1)
		for j, f := range phis[i] {
			grads[off+j] += g * f
		}
		grads[off+m.featDim] += g
	}
	opt.Step(m.weights, grads)
	return loss, nil
}

func (m *TimeseriesNeuralNet) readout(phi []float64, target int) float64 {
	off := target * (m.featDim + 1)
	sum := m.weights[off+m.featDim]
	for j, f := range phi {
		sum += m.weights[off+j] * f
	}
	return sum
}

// Predict windows df in predict mode (last window per group) with the
// fitted encoders and scalers, and returns one forecast row per group and
// decoder step. The result has a group column, a step column and one
// column per target.
func (m *TimeseriesNeuralNet) Predict(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if !m.fitted {
		return dataframe.DataFrame{}, fmt.Errorf("models: model is not fitted")
	}
	p := m.fittedParams
	p.PredictMode = true
	ds, err := dataset.FromParameters(p, df)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	var (
		groups []string
		steps  []int
		preds  = make([][]float64, m.nTargets)
	)
	for i := 0; i < ds.Len(); i++ {
		sample, err := ds.Get(i)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		feats, err := m.net.Features(sample)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		key, err := ds.Windowing().GroupOf(i)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		for step, phi := range feats {
			groups = append(groups, key)
			steps = append(steps, step+1)
			for k := 0; k < m.nTargets; k++ {
				preds[k] = append(preds[k], m.readout(phi, k))
			}
		}
	}

	cols := []series.Series{
		series.New(groups, series.String, GroupColumn),
		series.New(steps, series.Int, StepColumn),
	}
	for k, name := range ds.Features().TargetNames() {
		cols = append(cols, series.New(preds[k], series.Float, name))
	}
	out := dataframe.New(cols...)
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("models: build forecast frame: %w", out.Err)
	}
	return out, nil
}

// Parameters returns the fitted dataset parameters, including encoders
// and scalers.
func (m *TimeseriesNeuralNet) Parameters() dataset.Params { return m.fittedParams }

// sampleFloats flattens the named tensor into per-row float vectors.
// Returns nil when the tensor is absent (role with no columns).
func sampleFloats(s timeseries.Sample, name string) [][]float64 {
	t, ok := s.X[name]
	if !ok {
		return nil
	}
	shape := t.Shape()
	rows, cols := shape[0], shape[1]
	out := make([][]float64, rows)
	switch data := t.Data().(type) {
	case []float64:
		for r := 0; r < rows; r++ {
			out[r] = data[r*cols : (r+1)*cols]
		}
	case []int:
		for r := 0; r < rows; r++ {
			row := make([]float64, cols)
			for c := 0; c < cols; c++ {
				row[c] = float64(data[r*cols+c])
			}
			out[r] = row
		}
	}
	return out
}
