package dataset

import "math/rand"

// TrainTestSplit splits ds into shuffled train and test views by ratio.
// Both results are lazy SliceDataset views over the same underlying data.
// The ratio is clamped to [0, 1].
func TrainTestSplit(ds Dataset, testRatio float64, seed int64) (train, test *SliceDataset) {
	if testRatio < 0 {
		testRatio = 0
	}
	if testRatio > 1 {
		testRatio = 1
	}
	n := ds.Len()
	rng := rand.New(rand.NewSource(seed))
	indices := rng.Perm(n)
	nTest := int(float64(n) * testRatio)
	test = NewSlice(ds, WithIndices(indices[:nTest]))
	train = NewSlice(ds, WithIndices(indices[nTest:]))
	return train, test
}

// Fold is one cross-validation fold of lazy views.
type Fold struct {
	Train *SliceDataset
	Test  *SliceDataset
}

// KFold splits ds into k shuffled cross-validation folds. k is clamped
// to at least 1.
func KFold(ds Dataset, k int, seed int64) []Fold {
	if k < 1 {
		k = 1
	}
	n := ds.Len()
	rng := rand.New(rand.NewSource(seed))
	indices := rng.Perm(n)

	buckets := make([][]int, k)
	for i, idx := range indices {
		buckets[i%k] = append(buckets[i%k], idx)
	}

	folds := make([]Fold, k)
	for f := range folds {
		var train []int
		for b := range buckets {
			if b != f {
				train = append(train, buckets[b]...)
			}
		}
		folds[f] = Fold{
			Train: NewSlice(ds, WithIndices(train)),
			Test:  NewSlice(ds, WithIndices(buckets[f])),
		}
	}
	return folds
}
