package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLabelEncoderFitTransform(t *testing.T) {
	e := NewLabelEncoder()
	require.NoError(t, e.Fit([]string{"b", "a", "b", "c"}))

	// Codes are sorted labels starting at 1; 0 is the unknown class.
	assert.Equal(t, []string{UnknownClass, "a", "b", "c"}, e.Classes())

	codes, err := e.Transform([]string{"a", "b", "c", "a"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 1}, codes)

	labels, err := e.InverseTransform(codes)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "a"}, labels)
}

func TestLabelEncoderUnseenWarnsOnce(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	e := NewLabelEncoder(
		WithLogger(zap.New(core)),
		WithColumn("sku"),
	)
	require.NoError(t, e.Fit([]string{"a", "b"}))

	codes, err := e.Transform([]string{"a", "zzz", "zzz", "b"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 0, 2}, codes)

	// One warning per distinct unseen value.
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "unseen category mapped to unknown class", entries[0].Message)
}

func TestLabelEncoderNotFitted(t *testing.T) {
	e := NewLabelEncoder()
	_, err := e.Transform([]string{"a"})
	require.ErrorIs(t, err, ErrNotFitted)
	_, err = e.InverseTransform([]int{1})
	require.ErrorIs(t, err, ErrNotFitted)
}

func TestLabelEncoderInverseOutOfRange(t *testing.T) {
	e := NewLabelEncoder()
	require.NoError(t, e.Fit([]string{"a"}))
	labels, err := e.InverseTransform([]int{-1, 99})
	require.NoError(t, err)
	assert.Equal(t, []string{UnknownClass, UnknownClass}, labels)
}
