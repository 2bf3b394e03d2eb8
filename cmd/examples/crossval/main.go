// Demo: window the stallion dataset, split it into lazy cross-validation
// views and stream mini-batches from one fold. Splitting never
// materializes samples; only batching does.
package main

import (
	"flag"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/ramonamezquita/deepts/pkg/dataset"
	"github.com/ramonamezquita/deepts/pkg/datasets"
	"github.com/ramonamezquita/deepts/pkg/preprocessing"
	"github.com/ramonamezquita/deepts/pkg/timeseries"
)

func main() {
	folds := flag.Int("folds", 5, "number of cross-validation folds")
	batchSize := flag.Int("batch", 16, "mini-batch size")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ts := datasets.LoadStallion()
	preprocessor := preprocessing.NewPreprocessor(ts.GroupCols, ts.Datetime, ts.Target, ts.Freq)
	if err := preprocessor.Fit(ts.X); err != nil {
		log.Fatal(err)
	}
	df, err := preprocessor.Transform(ts.X)
	if err != nil {
		log.Fatal(err)
	}

	ds, err := dataset.New(df, dataset.Params{
		TimeIdx:                 preprocessing.TimeIdxColumn,
		Target:                  []string{ts.Target},
		GroupIDs:                ts.GroupCols,
		MaxEncoderLength:        24,
		MinEncoderLength:        12,
		MaxPredictionLength:     6,
		MinPredictionLength:     1,
		StaticCategoricals:      ts.GroupCols,
		TimeVaryingKnownReals:   []string{"discount"},
		TimeVaryingUnknownReals: []string{ts.Target, "industry_volume"},
		AddEncoderLength:        true,
		Logger:                  logger,
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("windowed samples: %d\n", ds.Len())

	for i, fold := range dataset.KFold(ds, *folds, 7) {
		fmt.Printf("fold %d: train=%d test=%d\n", i, fold.Train.Len(), fold.Test.Len())
	}

	train, test := dataset.TrainTestSplit(ds, 0.25, 7)
	fmt.Printf("holdout: train=%d test=%d\n", train.Len(), test.Len())

	batches, errCh, _ := dataset.Stream(train, dataset.LoaderOptions{
		BatchSize: *batchSize,
		Shuffle:   true,
		Seed:      7,
	})
	n := 0
	for batch := range batches {
		n++
		if n == 1 {
			s := batch.Samples[0]
			enc := s.X[timeseries.EncoderCont].Shape()
			fmt.Printf("first batch: %d samples, encoder_cont shape %v, y shape %v\n",
				len(batch.Samples), enc, s.Y.Shape())
		}
	}
	if err, ok := <-errCh; ok && err != nil {
		log.Fatal(err)
	}
	fmt.Printf("streamed %d batches\n", n)
}
