package pipeline

import (
	"errors"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStep struct {
	name   string
	calls  *[]string
	addCol string
	err    error
}

func (s *recordingStep) Fit(df dataframe.DataFrame) error {
	*s.calls = append(*s.calls, "fit:"+s.name)
	return s.err
}

func (s *recordingStep) Transform(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	*s.calls = append(*s.calls, "transform:"+s.name)
	col := make([]float64, df.Nrow())
	return df.Mutate(series.New(col, series.Float, s.addCol)), nil
}

type recordingEstimator struct {
	calls   *[]string
	sawCols []string
}

func (e *recordingEstimator) Fit(df dataframe.DataFrame) error {
	*e.calls = append(*e.calls, "fit:estimator")
	e.sawCols = df.Names()
	return nil
}

func (e *recordingEstimator) Predict(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	*e.calls = append(*e.calls, "predict:estimator")
	return df, nil
}

func inputFrame() dataframe.DataFrame {
	return dataframe.New(series.New([]float64{1, 2}, series.Float, "x"))
}

func TestPipelineFitOrder(t *testing.T) {
	var calls []string
	est := &recordingEstimator{calls: &calls}
	p := New([]NamedStep{
		{Name: "one", Step: &recordingStep{name: "one", calls: &calls, addCol: "a"}},
		{Name: "two", Step: &recordingStep{name: "two", calls: &calls, addCol: "b"}},
	}, est)

	require.NoError(t, p.Fit(inputFrame()))
	assert.Equal(t, []string{"fit:one", "transform:one", "fit:two", "transform:two", "fit:estimator"}, calls)
	// The estimator sees the fully transformed frame.
	assert.ElementsMatch(t, []string{"x", "a", "b"}, est.sawCols)
}

func TestPipelinePredictTransformsFirst(t *testing.T) {
	var calls []string
	p := New([]NamedStep{
		{Name: "one", Step: &recordingStep{name: "one", calls: &calls, addCol: "a"}},
	}, &recordingEstimator{calls: &calls})

	require.NoError(t, p.Fit(inputFrame()))
	calls = nil

	out, err := p.Predict(inputFrame())
	require.NoError(t, err)
	assert.Equal(t, []string{"transform:one", "predict:estimator"}, calls)
	assert.ElementsMatch(t, []string{"x", "a"}, out.Names())
}

func TestPipelineNotFitted(t *testing.T) {
	p := New(nil, nil)
	_, err := p.Transform(inputFrame())
	require.Error(t, err)
}

func TestPipelineStepError(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	p := New([]NamedStep{
		{Name: "bad", Step: &recordingStep{name: "bad", calls: &calls, addCol: "a", err: boom}},
	}, nil)

	err := p.Fit(inputFrame())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"bad"`)
}

func TestPipelineSchemaValidation(t *testing.T) {
	var calls []string
	p := New(nil, &recordingEstimator{calls: &calls},
		WithSchema(Schema{Required: []string{"x", "missing"}}))

	err := p.Fit(inputFrame())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"missing"`)
	assert.Empty(t, calls)
}

func TestPipelineStepLookup(t *testing.T) {
	var calls []string
	step := &recordingStep{name: "one", calls: &calls, addCol: "a"}
	p := New([]NamedStep{{Name: "one", Step: step}}, nil)

	assert.Equal(t, Step(step), p.Step("one"))
	assert.Nil(t, p.Step("nope"))
}
