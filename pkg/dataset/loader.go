package dataset

import (
	"math/rand"

	"github.com/ramonamezquita/deepts/pkg/timeseries"
)

// Batch is a mini-batch of materialized samples.
type Batch struct {
	Samples []timeseries.Sample
}

// LoaderOptions configures Stream.
type LoaderOptions struct {
	BatchSize int
	Shuffle   bool
	Seed      int64
}

// Stream sends mini-batches of samples through the returned channel and
// closes it when the dataset is exhausted. Close the done channel to stop
// early. Samples that fail to materialize are skipped and reported on the
// error channel.
func Stream(ds Dataset, opts LoaderOptions) (<-chan Batch, <-chan error, chan struct{}) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 32
	}
	out := make(chan Batch)
	errCh := make(chan error, 1)
	done := make(chan struct{})

	order := make([]int, ds.Len())
	for i := range order {
		order[i] = i
	}
	if opts.Shuffle {
		rng := rand.New(rand.NewSource(opts.Seed))
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	go func() {
		defer close(out)
		defer close(errCh)

		var samples []timeseries.Sample
		for _, idx := range order {
			sample, err := ds.Get(idx)
			if err != nil {
				select {
				case errCh <- err:
				default:
				}
				continue
			}
			samples = append(samples, sample)
			if len(samples) == opts.BatchSize {
				select {
				case <-done:
					return
				case out <- Batch{Samples: samples}:
					samples = nil
				}
			}
		}
		if len(samples) > 0 {
			select {
			case <-done:
			case out <- Batch{Samples: samples}:
			}
		}
	}()
	return out, errCh, done
}
