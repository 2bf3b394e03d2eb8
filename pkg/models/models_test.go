package models

import (
	"math"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonamezquita/deepts/pkg/dataset"
	"github.com/ramonamezquita/deepts/pkg/pipeline"
)

var (
	_ pipeline.Estimator = (*Seq2Seq)(nil)
	_ pipeline.Estimator = (*TemporalFusionTransformer)(nil)
)

// sineFrame builds two smooth series the readout can learn.
func sineFrame(length int) dataframe.DataFrame {
	var (
		ids   []string
		times []int
		y     []float64
		price []float64
	)
	for g, id := range []string{"a", "b"} {
		phase := float64(g)
		for t := 0; t < length; t++ {
			ids = append(ids, id)
			times = append(times, t)
			y = append(y, math.Sin(float64(t)/3+phase))
			price = append(price, math.Cos(float64(t)/3))
		}
	}
	return dataframe.New(
		series.New(ids, series.String, "id"),
		series.New(times, series.Int, "time_idx"),
		series.New(y, series.Float, "y"),
		series.New(price, series.Float, "price"),
	)
}

func testConfig() Config {
	return Config{
		Data: dataset.Params{
			TimeIdx:                 "time_idx",
			Target:                  []string{"y"},
			GroupIDs:                []string{"id"},
			MaxEncoderLength:        8,
			MaxPredictionLength:     4,
			StaticCategoricals:      []string{"id"},
			TimeVaryingKnownReals:   []string{"price"},
			TimeVaryingUnknownReals: []string{"y"},
			AddEncoderLength:        true,
		},
		HiddenSize:   16,
		Epochs:       15,
		BatchSize:    8,
		LearningRate: 0.05,
		Seed:         42,
	}
}

func checkForecast(t *testing.T, fc dataframe.DataFrame) {
	t.Helper()
	// Predict mode yields one window per group, so 2 groups x 4 steps.
	require.Equal(t, 8, fc.Nrow())
	assert.ElementsMatch(t, []string{GroupColumn, StepColumn, "y"}, fc.Names())

	for _, v := range fc.Col("y").Float() {
		assert.False(t, math.IsNaN(v))
		assert.False(t, math.IsInf(v, 0))
	}
	steps, err := fc.Col(StepColumn).Int()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 1, 2, 3, 4}, steps)
}

func TestSeq2SeqFitPredict(t *testing.T) {
	df := sineFrame(40)
	m := NewSeq2Seq(testConfig())

	require.NoError(t, m.Fit(df))
	fc, err := m.Predict(df)
	require.NoError(t, err)
	checkForecast(t, fc)
}

func TestTemporalFusionTransformerFitPredict(t *testing.T) {
	df := sineFrame(40)
	m := NewTemporalFusionTransformer(testConfig())

	require.NoError(t, m.Fit(df))
	fc, err := m.Predict(df)
	require.NoError(t, err)
	checkForecast(t, fc)
}

func TestFitLossNeverWorsens(t *testing.T) {
	df := sineFrame(40)
	m := NewSeq2Seq(testConfig())
	require.NoError(t, m.Fit(df))

	history := m.LossHistory()
	require.Len(t, history, testConfig().Epochs)
	for i, l := range history {
		require.False(t, math.IsNaN(l) || math.IsInf(l, 0), "epoch %d loss not finite", i)
		if i > 0 {
			assert.LessOrEqual(t, l, history[i-1], "epoch %d loss worsened", i)
		}
	}
	assert.LessOrEqual(t, history[len(history)-1], history[0])
}

func TestPredictBeforeFit(t *testing.T) {
	m := NewSeq2Seq(testConfig())
	_, err := m.Predict(sineFrame(40))
	require.Error(t, err)
}

func TestFitDeterministicBySeed(t *testing.T) {
	df := sineFrame(40)

	m1 := NewSeq2Seq(testConfig())
	require.NoError(t, m1.Fit(df))
	fc1, err := m1.Predict(df)
	require.NoError(t, err)

	m2 := NewSeq2Seq(testConfig())
	require.NoError(t, m2.Fit(df))
	fc2, err := m2.Predict(df)
	require.NoError(t, err)

	assert.Equal(t, fc1.Col("y").Float(), fc2.Col("y").Float())
}

func TestFitReusesEncodersInPredict(t *testing.T) {
	df := sineFrame(40)
	m := NewSeq2Seq(testConfig())
	require.NoError(t, m.Fit(df))

	enc := m.Parameters().CategoricalEncoders["id"]
	require.NotNil(t, enc)
	require.True(t, enc.Fitted())

	// Predicting keeps using the same fitted encoder instance.
	_, err := m.Predict(df)
	require.NoError(t, err)
	assert.True(t, m.Parameters().CategoricalEncoders["id"] == enc)
}

func TestFitTooShortSeries(t *testing.T) {
	m := NewSeq2Seq(testConfig())
	// Shorter than encoder+decoder: no windows.
	err := m.Fit(sineFrame(5))
	require.Error(t, err)
}
