// Package dataset wraps windowed time series data behind indexable
// dataset types that model-selection tooling can split, slice and batch.
package dataset

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"go.uber.org/zap"

	"github.com/ramonamezquita/deepts/pkg/features"
	"github.com/ramonamezquita/deepts/pkg/preprocessing"
	"github.com/ramonamezquita/deepts/pkg/timeseries"
)

// Dataset is anything indexable by position that yields samples.
type Dataset interface {
	Len() int
	Get(i int) (timeseries.Sample, error)
}

// Params holds every TimeseriesDataset constructor argument except the
// dataframe itself, so a dataset can be rebuilt against new data while
// reusing the fitted encoders and scalers.
type Params struct {
	TimeIdx  string
	Target   []string
	GroupIDs []string

	MaxEncoderLength    int
	MinEncoderLength    int
	MaxPredictionLength int
	MinPredictionLength int

	StaticCategoricals             []string
	StaticReals                    []string
	TimeVaryingKnownCategoricals   []string
	TimeVaryingKnownReals          []string
	TimeVaryingUnknownCategoricals []string
	TimeVaryingUnknownReals        []string

	// AddEncoderLength appends the synthetic encoder_length feature to the
	// static reals. Recommended when MinEncoderLength != MaxEncoderLength.
	AddEncoderLength bool

	PredictMode bool

	CategoricalEncoders map[string]*preprocessing.LabelEncoder
	Scalers             map[string]preprocessing.Transformer

	Logger *zap.Logger
}

// TimeseriesDataset wraps a dataframe plus windowing configuration into
// indexable tensor samples. Windowing, scaling and encoding are delegated
// to the timeseries package; this type owns the configuration and the
// encoder/scaler defaults.
type TimeseriesDataset struct {
	params    Params
	feats     features.Features
	windowing *timeseries.Windowing
}

// New builds a TimeseriesDataset from a dataframe and windowing
// configuration. Missing encoders default to a label encoder with an
// unseen-category warning; missing scalers default to identity for every
// real feature except targets. When AddEncoderLength is set, the
// encoder_length feature is appended to the static reals.
func New(df dataframe.DataFrame, p Params) (*TimeseriesDataset, error) {
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}

	feats := features.New(features.Features{
		Target:                         p.Target,
		StaticCategoricals:             p.StaticCategoricals,
		StaticReals:                    p.StaticReals,
		TimeVaryingKnownCategoricals:   p.TimeVaryingKnownCategoricals,
		TimeVaryingKnownReals:          p.TimeVaryingKnownReals,
		TimeVaryingUnknownCategoricals: p.TimeVaryingUnknownCategoricals,
		TimeVaryingUnknownReals:        p.TimeVaryingUnknownReals,
	})
	if p.AddEncoderLength && !contains(feats.Reals(), timeseries.EncoderLengthColumn) {
		feats.StaticReals = append(feats.StaticReals, timeseries.EncoderLengthColumn)
		p.StaticReals = feats.StaticReals
	}

	if p.Scalers == nil {
		p.Scalers = defaultScalers(feats)
	}
	if p.CategoricalEncoders == nil {
		p.CategoricalEncoders = defaultEncoders(feats, log)
	}

	w, err := timeseries.New(df, timeseries.Spec{
		TimeIdx:             p.TimeIdx,
		GroupIDs:            p.GroupIDs,
		Features:            feats,
		MaxEncoderLength:    p.MaxEncoderLength,
		MinEncoderLength:    p.MinEncoderLength,
		MaxPredictionLength: p.MaxPredictionLength,
		MinPredictionLength: p.MinPredictionLength,
		PredictMode:         p.PredictMode,
		Scalers:             p.Scalers,
		Encoders:            p.CategoricalEncoders,
	})
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	return &TimeseriesDataset{params: p, feats: feats, windowing: w}, nil
}

// FromParameters rebuilds an equivalent dataset against new data. The
// fitted encoders and scalers referenced by params are reused as is.
func FromParameters(p Params, df dataframe.DataFrame) (*TimeseriesDataset, error) {
	return New(df, p)
}

// Parameters returns the constructor arguments (excluding the dataframe),
// including the fitted encoders and scalers.
func (d *TimeseriesDataset) Parameters() Params { return d.params }

// Features returns the role-grouped feature columns, including any
// synthetic columns appended during construction.
func (d *TimeseriesDataset) Features() features.Features { return d.feats }

// Windowing exposes the underlying windowing engine.
func (d *TimeseriesDataset) Windowing() *timeseries.Windowing { return d.windowing }

// Len returns the number of windowed samples.
func (d *TimeseriesDataset) Len() int { return d.windowing.Len() }

// Get returns the windowed sample at position i.
func (d *TimeseriesDataset) Get(i int) (timeseries.Sample, error) {
	return d.windowing.Get(i)
}

// defaultScalers returns an identity transform for every real feature
// except targets. Targets stay unscaled unless the caller supplies a
// scaler explicitly.
func defaultScalers(f features.Features) map[string]preprocessing.Transformer {
	out := map[string]preprocessing.Transformer{}
	for _, r := range f.Reals() {
		if f.IsTarget(r) || r == timeseries.EncoderLengthColumn {
			continue
		}
		out[r] = preprocessing.NewIdentity()
	}
	return out
}

// defaultEncoders returns a label encoder with unseen-category warnings for
// every categorical feature.
func defaultEncoders(f features.Features, log *zap.Logger) map[string]*preprocessing.LabelEncoder {
	out := map[string]*preprocessing.LabelEncoder{}
	for _, c := range f.Categoricals() {
		out[c] = preprocessing.NewLabelEncoder(
			preprocessing.WithColumn(c),
			preprocessing.WithLogger(log),
		)
	}
	return out
}

func contains(ls []string, s string) bool {
	for _, v := range ls {
		if v == s {
			return true
		}
	}
	return false
}
