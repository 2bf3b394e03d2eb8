package dataset

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainTestSplit(t *testing.T) {
	ds := newStub(20)
	train, test := TrainTestSplit(ds, 0.25, 3)

	assert.Equal(t, 5, test.Len())
	assert.Equal(t, 15, train.Len())

	// Disjoint cover of all indices.
	all := append(train.Indices(), test.Indices()...)
	sort.Ints(all)
	for i, idx := range all {
		assert.Equal(t, i, idx)
	}
}

func TestTrainTestSplitDeterministic(t *testing.T) {
	ds := newStub(20)
	train1, _ := TrainTestSplit(ds, 0.25, 3)
	train2, _ := TrainTestSplit(ds, 0.25, 3)
	assert.Equal(t, train1.Indices(), train2.Indices())
}

func TestTrainTestSplitRatioClamped(t *testing.T) {
	ds := newStub(6)

	train, test := TrainTestSplit(ds, 1.5, 3)
	assert.Equal(t, 0, train.Len())
	assert.Equal(t, 6, test.Len())

	train, test = TrainTestSplit(ds, -0.5, 3)
	assert.Equal(t, 6, train.Len())
	assert.Equal(t, 0, test.Len())
}

func TestKFoldMinimumFolds(t *testing.T) {
	ds := newStub(4)
	folds := KFold(ds, 0, 3)
	require.Len(t, folds, 1)
	assert.Equal(t, 0, folds[0].Train.Len())
	assert.Equal(t, 4, folds[0].Test.Len())
}

func TestKFoldPartitions(t *testing.T) {
	ds := newStub(10)
	folds := KFold(ds, 3, 5)
	require.Len(t, folds, 3)

	var testIndices []int
	for _, f := range folds {
		assert.Equal(t, 10, f.Train.Len()+f.Test.Len())
		testIndices = append(testIndices, f.Test.Indices()...)

		// Train and test are disjoint within a fold.
		inTest := map[int]bool{}
		for _, idx := range f.Test.Indices() {
			inTest[idx] = true
		}
		for _, idx := range f.Train.Indices() {
			assert.False(t, inTest[idx])
		}
	}

	// The test folds cover every index exactly once.
	sort.Ints(testIndices)
	require.Len(t, testIndices, 10)
	for i, idx := range testIndices {
		assert.Equal(t, i, idx)
	}
}
