package timeseries

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"gorgonia.org/tensor"

	"github.com/ramonamezquita/deepts/pkg/features"
	"github.com/ramonamezquita/deepts/pkg/preprocessing"
)

// EncoderLengthColumn is the synthetic static real carrying each window's
// own encoder length.
const EncoderLengthColumn = "encoder_length"

// Spec configures the windowing of a grouped time series dataframe.
//
// Zero Min bounds default to the corresponding Max bound. Scalers and
// Encoders may come in already fitted, in which case their fitted state is
// reused; unfitted ones are fitted on the full column.
type Spec struct {
	TimeIdx  string
	GroupIDs []string
	Features features.Features

	MaxEncoderLength    int
	MinEncoderLength    int
	MaxPredictionLength int
	MinPredictionLength int

	// PredictMode keeps only the last window of each group.
	PredictMode bool

	Scalers  map[string]preprocessing.Transformer
	Encoders map[string]*preprocessing.LabelEncoder
}

type group struct {
	key     string
	length  int
	reals   map[string][]float64
	cats    map[string][]int
	targets map[string][]float64
}

type windowRef struct {
	group    int
	decStart int
	encLen   int
	decLen   int
}

// Windowing is an indexable set of windowed samples over grouped series.
type Windowing struct {
	spec         Spec
	reals        []string
	cats         []string
	decoderReals []string
	decoderCats  []string
	targets      []string
	groups       []group
	index        []windowRef
}

// New validates the given Spec against the dataframe, fits any unfitted scalers
// and encoders, groups and transforms the data, and builds the window
// index. The dataframe's TimeIdx column must be contiguous within each
// group.
func New(df dataframe.DataFrame, spec Spec) (*Windowing, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("timeseries: %w", df.Err)
	}
	if err := normalizeBounds(&spec); err != nil {
		return nil, err
	}
	spec.Features = features.New(spec.Features)
	if spec.Scalers == nil {
		spec.Scalers = map[string]preprocessing.Transformer{}
	}
	if spec.Encoders == nil {
		spec.Encoders = map[string]*preprocessing.LabelEncoder{}
	}

	w := &Windowing{
		spec:    spec,
		reals:   spec.Features.Reals(),
		cats:    spec.Features.Categoricals(),
		targets: spec.Features.TargetNames(),
	}
	w.decoderReals = concat(spec.Features.StaticReals, spec.Features.TimeVaryingKnownReals)
	w.decoderCats = concat(spec.Features.StaticCategoricals, spec.Features.TimeVaryingKnownCategoricals)

	if err := w.checkColumns(df); err != nil {
		return nil, err
	}
	if err := w.fitTransformers(df); err != nil {
		return nil, err
	}
	if err := w.buildGroups(df); err != nil {
		return nil, err
	}
	w.buildIndex()
	return w, nil
}

func normalizeBounds(spec *Spec) error {
	if spec.MaxEncoderLength <= 0 {
		return fmt.Errorf("timeseries: max encoder length must be positive, got %d", spec.MaxEncoderLength)
	}
	if spec.MaxPredictionLength <= 0 {
		return fmt.Errorf("timeseries: max prediction length must be positive, got %d", spec.MaxPredictionLength)
	}
	if spec.MinEncoderLength == 0 {
		spec.MinEncoderLength = spec.MaxEncoderLength
	}
	if spec.MinPredictionLength == 0 {
		spec.MinPredictionLength = spec.MaxPredictionLength
	}
	if spec.MinEncoderLength < 0 || spec.MinEncoderLength > spec.MaxEncoderLength {
		return fmt.Errorf("timeseries: min encoder length %d out of range", spec.MinEncoderLength)
	}
	if spec.MinPredictionLength < 0 || spec.MinPredictionLength > spec.MaxPredictionLength {
		return fmt.Errorf("timeseries: min prediction length %d out of range", spec.MinPredictionLength)
	}
	if len(spec.GroupIDs) == 0 {
		return fmt.Errorf("timeseries: at least one group id column is required")
	}
	if spec.TimeIdx == "" {
		return fmt.Errorf("timeseries: time index column is required")
	}
	return nil
}

func (w *Windowing) checkColumns(df dataframe.DataFrame) error {
	names := map[string]struct{}{}
	for _, n := range df.Names() {
		names[n] = struct{}{}
	}
	required := []string{w.spec.TimeIdx}
	required = append(required, w.spec.GroupIDs...)
	required = append(required, w.targets...)
	required = append(required, w.cats...)
	for _, r := range w.reals {
		if r == EncoderLengthColumn {
			continue // synthetic, filled per window
		}
		required = append(required, r)
	}
	for _, col := range required {
		if _, ok := names[col]; !ok {
			return fmt.Errorf("timeseries: missing column %q", col)
		}
	}
	return nil
}

// fitTransformers fits every unfitted scaler and encoder on the full
// column. Already fitted transformers are left untouched so that datasets
// rebuilt from parameters reuse the original fitted state.
func (w *Windowing) fitTransformers(df dataframe.DataFrame) error {
	for _, col := range w.reals {
		if col == EncoderLengthColumn {
			continue
		}
		sc, ok := w.spec.Scalers[col]
		if !ok || sc == nil {
			if w.spec.Features.IsTarget(col) {
				// Targets stay unscaled unless a scaler was supplied.
				continue
			}
			sc = preprocessing.NewIdentity()
			w.spec.Scalers[col] = sc
		}
		if !sc.Fitted() {
			if err := sc.Fit(df.Col(col).Float()); err != nil {
				return fmt.Errorf("timeseries: fit scaler for %q: %w", col, err)
			}
		}
	}
	for _, col := range w.targets {
		sc, ok := w.spec.Scalers[col]
		if !ok || sc == nil {
			continue // targets are unscaled unless a scaler was supplied
		}
		if !sc.Fitted() {
			if err := sc.Fit(df.Col(col).Float()); err != nil {
				return fmt.Errorf("timeseries: fit scaler for target %q: %w", col, err)
			}
		}
	}
	for _, col := range w.cats {
		enc, ok := w.spec.Encoders[col]
		if !ok || enc == nil {
			enc = preprocessing.NewLabelEncoder(preprocessing.WithColumn(col))
			w.spec.Encoders[col] = enc
		}
		if !enc.Fitted() {
			if err := enc.Fit(df.Col(col).Records()); err != nil {
				return fmt.Errorf("timeseries: fit encoder for %q: %w", col, err)
			}
		}
	}
	return nil
}

func (w *Windowing) buildGroups(df dataframe.DataFrame) error {
	keys := rowKeys(df, w.spec.GroupIDs)
	times := df.Col(w.spec.TimeIdx).Float()

	byKey := map[string][]int{}
	order := []string{}
	for i, k := range keys {
		if _, ok := byKey[k]; !ok {
			order = append(order, k)
		}
		byKey[k] = append(byKey[k], i)
	}
	sort.Strings(order)

	realCols := map[string][]float64{}
	for _, col := range w.reals {
		if col == EncoderLengthColumn {
			continue
		}
		vals := df.Col(col).Float()
		if sc, ok := w.spec.Scalers[col]; ok && sc != nil {
			scaled, err := sc.Transform(vals)
			if err != nil {
				return fmt.Errorf("timeseries: transform %q: %w", col, err)
			}
			vals = scaled
		}
		realCols[col] = vals
	}
	catCols := map[string][]int{}
	for _, col := range w.cats {
		codes, err := w.spec.Encoders[col].Transform(df.Col(col).Records())
		if err != nil {
			return fmt.Errorf("timeseries: encode %q: %w", col, err)
		}
		catCols[col] = codes
	}
	targetCols := map[string][]float64{}
	for _, col := range w.targets {
		vals := df.Col(col).Float()
		if sc, ok := w.spec.Scalers[col]; ok && sc != nil {
			scaled, err := sc.Transform(vals)
			if err != nil {
				return fmt.Errorf("timeseries: transform target %q: %w", col, err)
			}
			vals = scaled
		}
		targetCols[col] = vals
	}

	w.groups = make([]group, 0, len(order))
	for _, key := range order {
		rows := byKey[key]
		sort.Slice(rows, func(a, b int) bool { return times[rows[a]] < times[rows[b]] })
		for i := 1; i < len(rows); i++ {
			prev, cur := times[rows[i-1]], times[rows[i]]
			if cur != prev+1 {
				return fmt.Errorf("timeseries: group %q has non-contiguous time index at %v", key, cur)
			}
		}
		g := group{
			key:     key,
			length:  len(rows),
			reals:   map[string][]float64{},
			cats:    map[string][]int{},
			targets: map[string][]float64{},
		}
		for col, vals := range realCols {
			g.reals[col] = take(vals, rows)
		}
		for col, codes := range catCols {
			g.cats[col] = takeInts(codes, rows)
		}
		for col, vals := range targetCols {
			g.targets[col] = take(vals, rows)
		}
		w.groups = append(w.groups, g)
	}
	return nil
}

func (w *Windowing) buildIndex() {
	spec := w.spec
	for gi, g := range w.groups {
		if spec.PredictMode {
			decLen := g.length - spec.MinEncoderLength
			if decLen > spec.MaxPredictionLength {
				decLen = spec.MaxPredictionLength
			}
			if decLen < spec.MinPredictionLength {
				continue
			}
			t := g.length - decLen
			encLen := t
			if encLen > spec.MaxEncoderLength {
				encLen = spec.MaxEncoderLength
			}
			w.index = append(w.index, windowRef{group: gi, decStart: t, encLen: encLen, decLen: decLen})
			continue
		}
		for t := spec.MinEncoderLength; t <= g.length-spec.MinPredictionLength; t++ {
			encLen := t
			if encLen > spec.MaxEncoderLength {
				encLen = spec.MaxEncoderLength
			}
			decLen := g.length - t
			if decLen > spec.MaxPredictionLength {
				decLen = spec.MaxPredictionLength
			}
			w.index = append(w.index, windowRef{group: gi, decStart: t, encLen: encLen, decLen: decLen})
		}
	}
}

// Len returns the number of windows.
func (w *Windowing) Len() int { return len(w.index) }

// Get materializes the window at position i as a Sample.
func (w *Windowing) Get(i int) (Sample, error) {
	if i < 0 || i >= len(w.index) {
		return Sample{}, fmt.Errorf("timeseries: index %d out of range [0, %d)", i, len(w.index))
	}
	ref := w.index[i]
	g := w.groups[ref.group]
	encStart := ref.decStart - ref.encLen

	x := map[string]*tensor.Dense{
		EncoderLength: scalarInt(ref.encLen),
		DecoderLength: scalarInt(ref.decLen),
	}
	if len(w.reals) > 0 {
		x[EncoderCont] = w.contTensor(g, w.reals, encStart, ref.encLen, ref.encLen)
	}
	if len(w.cats) > 0 {
		x[EncoderCat] = w.catTensor(g, w.cats, encStart, ref.encLen)
	}
	if len(w.decoderReals) > 0 {
		x[DecoderCont] = w.contTensor(g, w.decoderReals, ref.decStart, ref.decLen, ref.encLen)
	}
	if len(w.decoderCats) > 0 {
		x[DecoderCat] = w.catTensor(g, w.decoderCats, ref.decStart, ref.decLen)
	}

	y := make([]float64, 0, ref.decLen*len(w.targets))
	for r := ref.decStart; r < ref.decStart+ref.decLen; r++ {
		for _, col := range w.targets {
			y = append(y, g.targets[col][r])
		}
	}
	return Sample{
		X: x,
		Y: tensor.New(tensor.WithShape(ref.decLen, len(w.targets)), tensor.WithBacking(y)),
	}, nil
}

// GroupOf returns the group key of the window at position i.
func (w *Windowing) GroupOf(i int) (string, error) {
	if i < 0 || i >= len(w.index) {
		return "", fmt.Errorf("timeseries: index %d out of range [0, %d)", i, len(w.index))
	}
	return w.groups[w.index[i].group].key, nil
}

// GroupKeys returns the group keys in window-index order, deduplicated.
func (w *Windowing) GroupKeys() []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, ref := range w.index {
		key := w.groups[ref.group].key
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// TargetNames returns the target columns in tensor column order.
func (w *Windowing) TargetNames() []string { return concat(w.targets, nil) }

// RealNames returns the encoder continuous columns in tensor column order.
func (w *Windowing) RealNames() []string { return concat(w.reals, nil) }

// CategoricalNames returns the encoder categorical columns in tensor
// column order.
func (w *Windowing) CategoricalNames() []string { return concat(w.cats, nil) }

func (w *Windowing) contTensor(g group, cols []string, start, length, encLen int) *tensor.Dense {
	data := make([]float64, 0, length*len(cols))
	for r := start; r < start+length; r++ {
		for _, col := range cols {
			if col == EncoderLengthColumn {
				data = append(data, float64(encLen))
				continue
			}
			data = append(data, g.reals[col][r])
		}
	}
	return tensor.New(tensor.WithShape(length, len(cols)), tensor.WithBacking(data))
}

func (w *Windowing) catTensor(g group, cols []string, start, length int) *tensor.Dense {
	data := make([]int, 0, length*len(cols))
	for r := start; r < start+length; r++ {
		for _, col := range cols {
			data = append(data, g.cats[col][r])
		}
	}
	return tensor.New(tensor.WithShape(length, len(cols)), tensor.WithBacking(data))
}

func scalarInt(v int) *tensor.Dense {
	return tensor.New(tensor.WithShape(1), tensor.WithBacking([]int{v}))
}

func rowKeys(df dataframe.DataFrame, groupIDs []string) []string {
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

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

func take(vals []float64, rows []int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = vals[r]
	}
	return out
}

func takeInts(vals []int, rows []int) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = vals[r]
	}
	return out
}
