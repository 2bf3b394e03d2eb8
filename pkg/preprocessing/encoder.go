package preprocessing

import (
	"errors"
	"sort"

	"go.uber.org/zap"
)

// UnknownClass is the label reserved for categories never seen during Fit.
const UnknownClass = "__unknown__"

// LabelEncoder encodes string categories as integer codes. Class 0 is
// always reserved for unknown categories so that transforming data with
// unseen values never fails; a warning is logged instead, once per value.
type LabelEncoder struct {
	classes map[string]int
	names   []string
	warned  map[string]struct{}
	log     *zap.Logger
	column  string
}

// LabelEncoderOption configures a LabelEncoder.
type LabelEncoderOption func(*LabelEncoder)

// WithLogger sets the logger used for unseen-category warnings.
func WithLogger(log *zap.Logger) LabelEncoderOption {
	return func(e *LabelEncoder) { e.log = log }
}

// WithColumn names the column the encoder belongs to, for log context.
func WithColumn(name string) LabelEncoderOption {
	return func(e *LabelEncoder) { e.column = name }
}

func NewLabelEncoder(opts ...LabelEncoderOption) *LabelEncoder {
	e := &LabelEncoder{
		warned: make(map[string]struct{}),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fit learns the category set from values. Codes are assigned in sorted
// order starting at 1; code 0 stays reserved for unknowns.
func (e *LabelEncoder) Fit(values []string) error {
	if len(values) == 0 {
		return errors.New("preprocessing: cannot fit encoder on empty column")
	}
	seen := map[string]struct{}{}
	uniq := []string{}
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			uniq = append(uniq, v)
		}
	}
	sort.Strings(uniq)

	e.classes = make(map[string]int, len(uniq)+1)
	e.names = make([]string, 0, len(uniq)+1)
	e.names = append(e.names, UnknownClass)
	e.classes[UnknownClass] = 0
	for _, v := range uniq {
		e.classes[v] = len(e.names)
		e.names = append(e.names, v)
	}
	return nil
}

// Transform maps values to their integer codes. Unseen categories map to
// the unknown class and are reported through the logger.
func (e *LabelEncoder) Transform(values []string) ([]int, error) {
	if !e.Fitted() {
		return nil, ErrNotFitted
	}
	out := make([]int, len(values))
	for i, v := range values {
		code, ok := e.classes[v]
		if !ok {
			if _, done := e.warned[v]; !done {
				e.warned[v] = struct{}{}
				e.log.Warn("unseen category mapped to unknown class",
					zap.String("column", e.column),
					zap.String("value", v),
				)
			}
			code = 0
		}
		out[i] = code
	}
	return out, nil
}

// InverseTransform maps codes back to category labels.
func (e *LabelEncoder) InverseTransform(codes []int) ([]string, error) {
	if !e.Fitted() {
		return nil, ErrNotFitted
	}
	out := make([]string, len(codes))
	for i, c := range codes {
		if c < 0 || c >= len(e.names) {
			out[i] = UnknownClass
			continue
		}
		out[i] = e.names[c]
	}
	return out, nil
}

// Classes returns the known labels in code order, unknown class first.
func (e *LabelEncoder) Classes() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

func (e *LabelEncoder) Fitted() bool { return e.classes != nil }
