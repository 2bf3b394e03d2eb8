package preprocessing

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"
)

// TimeIdxColumn is the integer time index column added by the Preprocessor.
const TimeIdxColumn = "time_idx"

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Preprocessor prepares a raw grouped time series dataframe for windowing.
// It derives an integer time index from the datetime column at a calendar
// frequency, sorts rows by group and time, and optionally standardizes the
// target per group.
type Preprocessor struct {
	GroupIDs    []string
	Timestamp   string
	Target      string
	Freq        string // one of "H", "D", "W", "M"
	ScaleTarget bool

	origin  time.Time
	scalers map[string]*StandardScaler
	log     *zap.Logger
	fitted  bool
}

// PreprocessorOption configures a Preprocessor.
type PreprocessorOption func(*Preprocessor)

// WithTargetScaling toggles per-group target standardization.
func WithTargetScaling(on bool) PreprocessorOption {
	return func(p *Preprocessor) { p.ScaleTarget = on }
}

// WithPreprocessorLogger sets the logger.
func WithPreprocessorLogger(log *zap.Logger) PreprocessorOption {
	return func(p *Preprocessor) { p.log = log }
}

// NewPreprocessor builds a preprocessing step for the given group columns,
// datetime column, target column and calendar frequency.
func NewPreprocessor(groupIDs []string, timestamp, target, freq string, opts ...PreprocessorOption) *Preprocessor {
	p := &Preprocessor{
		GroupIDs:    groupIDs,
		Timestamp:   timestamp,
		Target:      target,
		Freq:        freq,
		ScaleTarget: true,
		scalers:     make(map[string]*StandardScaler),
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fit learns the time origin and the per-group target scalers.
func (p *Preprocessor) Fit(df dataframe.DataFrame) error {
	if df.Err != nil {
		return fmt.Errorf("preprocessing: %w", df.Err)
	}
	for _, col := range append(append([]string{}, p.GroupIDs...), p.Timestamp, p.Target) {
		if !hasColumn(df, col) {
			return fmt.Errorf("preprocessing: missing column %q", col)
		}
	}
	if df.Nrow() == 0 {
		return fmt.Errorf("preprocessing: empty dataframe")
	}
	stamps, err := parseTimestamps(df.Col(p.Timestamp).Records())
	if err != nil {
		return err
	}
	p.origin = stamps[0]
	for _, ts := range stamps[1:] {
		if ts.Before(p.origin) {
			p.origin = ts
		}
	}

	p.scalers = make(map[string]*StandardScaler)
	if p.ScaleTarget {
		keys := groupKeys(df, p.GroupIDs)
		target := df.Col(p.Target).Float()
		grouped := map[string][]float64{}
		for i, k := range keys {
			grouped[k] = append(grouped[k], target[i])
		}
		for k, vals := range grouped {
			sc := NewStandardScaler()
			if err := sc.Fit(vals); err != nil {
				return fmt.Errorf("preprocessing: fit target scaler for group %q: %w", k, err)
			}
			p.scalers[k] = sc
		}
	}
	p.fitted = true
	p.log.Info("preprocessor fitted",
		zap.Time("origin", p.origin),
		zap.Int("groups", len(p.scalers)),
	)
	return nil
}

// Transform adds the time_idx column, sorts rows by group and time index,
// and applies the fitted per-group target scalers.
func (p *Preprocessor) Transform(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if !p.fitted {
		return dataframe.DataFrame{}, ErrNotFitted
	}
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("preprocessing: %w", df.Err)
	}
	stamps, err := parseTimestamps(df.Col(p.Timestamp).Records())
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	idx := make([]int, len(stamps))
	for i, ts := range stamps {
		idx[i] = p.timeIndex(ts)
	}
	out := df.Mutate(series.New(idx, series.Int, TimeIdxColumn))
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("preprocessing: %w", out.Err)
	}

	if p.ScaleTarget {
		keys := groupKeys(out, p.GroupIDs)
		target := out.Col(p.Target).Float()
		scaled := make([]float64, len(target))
		for i, k := range keys {
			sc, ok := p.scalers[k]
			if !ok {
				// Unseen group: pass the raw value through.
				scaled[i] = target[i]
				continue
			}
			v, err := sc.Transform(target[i : i+1])
			if err != nil {
				return dataframe.DataFrame{}, err
			}
			scaled[i] = v[0]
		}
		out = out.Mutate(series.New(scaled, series.Float, p.Target))
		if out.Err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("preprocessing: %w", out.Err)
		}
	}

	order := make([]dataframe.Order, 0, len(p.GroupIDs)+1)
	for _, g := range p.GroupIDs {
		order = append(order, dataframe.Sort(g))
	}
	order = append(order, dataframe.Sort(TimeIdxColumn))
	out = out.Arrange(order...)
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("preprocessing: %w", out.Err)
	}
	return out, nil
}

// InverseTransformTarget maps scaled target values for one group back to
// the original scale. The group key joins the group column values with "|".
func (p *Preprocessor) InverseTransformTarget(group string, values []float64) ([]float64, error) {
	if !p.fitted {
		return nil, ErrNotFitted
	}
	sc, ok := p.scalers[group]
	if !ok {
		out := make([]float64, len(values))
		copy(out, values)
		return out, nil
	}
	return sc.InverseTransform(values)
}

// timeIndex converts a timestamp into integer periods since the origin.
func (p *Preprocessor) timeIndex(ts time.Time) int {
	switch p.Freq {
	case "H":
		return int(ts.Sub(p.origin) / time.Hour)
	case "W":
		return int(ts.Sub(p.origin)/(24*time.Hour)) / 7
	case "M":
		return (ts.Year()-p.origin.Year())*12 + int(ts.Month()) - int(p.origin.Month())
	default: // "D"
		return int(ts.Sub(p.origin) / (24 * time.Hour))
	}
}

func parseTimestamps(records []string) ([]time.Time, error) {
	out := make([]time.Time, len(records))
	for i, r := range records {
		var (
			ts  time.Time
			err error
		)
		for _, layout := range timestampLayouts {
			ts, err = time.Parse(layout, r)
			if err == nil {
				break
			}
		}
		if err != nil {
			return nil, fmt.Errorf("preprocessing: parse timestamp %q: %w", r, err)
		}
		out[i] = ts
	}
	return out, nil
}

// groupKeys returns the per-row group key, joining group columns with "|".
func groupKeys(df dataframe.DataFrame, groupIDs []string) []string {
	cols := make([][]string, len(groupIDs))
	for i, g := range groupIDs {
		cols[i] = df.Col(g).Records()
	}
	keys := make([]string, df.Nrow())
	parts := make([]string, len(groupIDs))
	for r := range keys {
		for c := range cols {
			parts[c] = cols[c][r]
		}
		keys[r] = strings.Join(parts, "|")
	}
	return keys
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}
