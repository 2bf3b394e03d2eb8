package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNormalizesNilRoles(t *testing.T) {
	f := New(Features{Target: []string{"y"}})

	require.NotNil(t, f.StaticCategoricals)
	require.NotNil(t, f.StaticReals)
	require.NotNil(t, f.TimeVaryingKnownCategoricals)
	require.NotNil(t, f.TimeVaryingKnownReals)
	require.NotNil(t, f.TimeVaryingUnknownCategoricals)
	require.NotNil(t, f.TimeVaryingUnknownReals)

	assert.NotNil(t, f.Reals())
	assert.NotNil(t, f.Categoricals())
	assert.Empty(t, f.Reals())
	assert.Empty(t, f.Categoricals())
}

func TestRoleOrder(t *testing.T) {
	f := New(Features{
		Target:                         []string{"y"},
		StaticReals:                    []string{"s1"},
		TimeVaryingKnownReals:          []string{"k1", "k2"},
		TimeVaryingUnknownReals:        []string{"u1"},
		StaticCategoricals:             []string{"sc"},
		TimeVaryingKnownCategoricals:   []string{"kc"},
		TimeVaryingUnknownCategoricals: []string{"uc"},
	})

	assert.Equal(t, []string{"s1", "k1", "k2", "u1"}, f.Reals())
	assert.Equal(t, []string{"sc", "kc", "uc"}, f.Categoricals())
}

func TestTargetNames(t *testing.T) {
	single := New(Features{Target: []string{"y"}})
	assert.Equal(t, []string{"y"}, single.TargetNames())

	multi := New(Features{Target: []string{"y1", "y2"}})
	assert.Equal(t, []string{"y1", "y2"}, multi.TargetNames())

	none := New(Features{})
	assert.NotNil(t, none.TargetNames())
	assert.Empty(t, none.TargetNames())
}

func TestIsTarget(t *testing.T) {
	f := New(Features{Target: []string{"y"}})
	assert.True(t, f.IsTarget("y"))
	assert.False(t, f.IsTarget("x"))
}
