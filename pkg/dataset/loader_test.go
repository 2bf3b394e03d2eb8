package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, ds Dataset, opts LoaderOptions) [][]float64 {
	t.Helper()
	batches, errCh, _ := Stream(ds, opts)
	var out [][]float64
	for batch := range batches {
		var ys []float64
		for _, s := range batch.Samples {
			ys = append(ys, s.Y.Data().([]float64)[0])
		}
		out = append(out, ys)
	}
	if err, ok := <-errCh; ok && err != nil {
		t.Fatal(err)
	}
	return out
}

func TestStreamCoversDataset(t *testing.T) {
	ds := newStub(10)
	batches := collect(t, ds, LoaderOptions{BatchSize: 3})

	require.Len(t, batches, 4) // 3+3+3+1
	assert.Len(t, batches[3], 1)

	seen := map[float64]bool{}
	for _, b := range batches {
		for _, y := range b {
			seen[y] = true
		}
	}
	assert.Len(t, seen, 10)
}

func TestStreamShuffleDeterministic(t *testing.T) {
	ds := newStub(16)
	a := collect(t, ds, LoaderOptions{BatchSize: 4, Shuffle: true, Seed: 9})
	b := collect(t, ds, LoaderOptions{BatchSize: 4, Shuffle: true, Seed: 9})
	assert.Equal(t, a, b)

	c := collect(t, ds, LoaderOptions{BatchSize: 4, Shuffle: true, Seed: 10})
	assert.NotEqual(t, a, c)
}

func TestStreamEarlyStop(t *testing.T) {
	ds := newStub(100)
	batches, _, done := Stream(ds, LoaderOptions{BatchSize: 1})
	<-batches
	close(done)
	// The producer must terminate without sending everything.
	n := 1
	for range batches {
		n++
	}
	assert.Less(t, n, 100)
}
