// Demo: fit a full preprocessing + Seq2Seq pipeline on the bundled
// stallion dataset, forecast the last six months of one series and plot
// the result.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"

	"github.com/go-gota/gota/dataframe"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ramonamezquita/deepts/pkg/dataset"
	"github.com/ramonamezquita/deepts/pkg/datasets"
	"github.com/ramonamezquita/deepts/pkg/models"
	"github.com/ramonamezquita/deepts/pkg/pipeline"
	"github.com/ramonamezquita/deepts/pkg/preprocessing"
)

func main() {
	epochs := flag.Int("epochs", 30, "training epochs")
	out := flag.String("out", "forecast.png", "output plot path")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ts := datasets.LoadStallion()

	preprocessor := preprocessing.NewPreprocessor(
		ts.GroupCols, ts.Datetime, ts.Target, ts.Freq,
		preprocessing.WithPreprocessorLogger(logger),
	)

	maxEncoderLength := 24
	model := models.NewSeq2Seq(models.Config{
		Data: dataset.Params{
			TimeIdx:             preprocessing.TimeIdxColumn,
			Target:              []string{ts.Target},
			GroupIDs:            ts.GroupCols,
			MaxEncoderLength:    maxEncoderLength,
			MinEncoderLength:    maxEncoderLength / 2,
			MaxPredictionLength: 6,
			MinPredictionLength: 1,
			StaticCategoricals:  ts.GroupCols,
			TimeVaryingKnownReals: []string{
				"discount",
			},
			TimeVaryingUnknownReals: []string{
				ts.Target,
				"industry_volume",
			},
			AddEncoderLength: true,
		},
		Epochs: *epochs,
		Logger: logger,
	})

	pipe := pipeline.New(
		[]pipeline.NamedStep{{Name: "preprocessor", Step: preprocessor}},
		model,
		pipeline.WithSchema(pipeline.Schema{
			Required: append(append([]string{}, ts.GroupCols...), ts.Datetime, ts.Target),
		}),
	)

	if err := pipe.Fit(ts.X); err != nil {
		log.Fatal(err)
	}
	forecast, err := pipe.Predict(ts.X)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(forecast)

	// The model predicts the preprocessed (per-group standardized) target,
	// so map the forecast back to the original scale before plotting.
	group := "agency_01|sku_01"
	preds, err := preprocessor.InverseTransformTarget(group, groupForecast(forecast, group, ts.Target))
	if err != nil {
		log.Fatal(err)
	}
	actual := groupActual(ts, "agency_01", "sku_01")

	if err := plotForecast(actual, preds, *out); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("wrote %s\n", *out)
}

// groupForecast extracts one group's forecast values in step order.
func groupForecast(fc dataframe.DataFrame, group, target string) []float64 {
	groups := fc.Col(models.GroupColumn).Records()
	vals := fc.Col(target).Float()
	var out []float64
	for i, g := range groups {
		if g == group {
			out = append(out, vals[i])
		}
	}
	return out
}

// groupActual extracts one series' observed target values.
func groupActual(ts datasets.Stallion, agency, sku string) []float64 {
	agencies := ts.X.Col("agency").Records()
	skus := ts.X.Col("sku").Records()
	vols := ts.X.Col(ts.Target).Float()
	var out []float64
	for i := range vols {
		if agencies[i] == agency && skus[i] == sku {
			out = append(out, vols[i])
		}
	}
	return out
}

func plotForecast(actual, preds []float64, path string) error {
	p := plot.New()
	p.Title.Text = "Stallion volume forecast"
	p.X.Label.Text = "Month"
	p.Y.Label.Text = "Volume"

	actPts := make(plotter.XYs, len(actual))
	for i, v := range actual {
		actPts[i].X = float64(i)
		actPts[i].Y = v
	}
	actLine, err := plotter.NewLine(actPts)
	if err != nil {
		return err
	}
	actLine.Color = color.RGBA{B: 255, A: 255}

	start := len(actual) - len(preds)
	fcPts := make(plotter.XYs, len(preds))
	for i, v := range preds {
		fcPts[i].X = float64(start + i)
		fcPts[i].Y = v
	}
	fcLine, err := plotter.NewLine(fcPts)
	if err != nil {
		return err
	}
	fcLine.Color = color.RGBA{R: 255, A: 255}

	p.Add(actLine, fcLine)
	p.Legend.Add("actual", actLine)
	p.Legend.Add("forecast", fcLine)
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
