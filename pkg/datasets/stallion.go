// Package datasets bundles demo datasets for the examples and tests.
package datasets

import (
	"math"
	"math/rand"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Stallion is a synthetic beverage-sales dataset: monthly volume per
// agency and SKU, with a known discount covariate and an industry volume
// covariate that is only observed historically.
type Stallion struct {
	X         dataframe.DataFrame
	GroupCols []string
	Datetime  string
	Target    string
	Freq      string
}

// LoadStallion generates the demo dataset deterministically.
func LoadStallion() Stallion {
	agencies := []string{"agency_01", "agency_02", "agency_03"}
	skus := []string{"sku_01", "sku_02"}
	months := 48
	start := time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(99))

	var (
		agencyCol, skuCol, dateCol []string
		volumeCol, discountCol     []float64
		industryCol                []float64
	)
	for ai, agency := range agencies {
		for si, sku := range skus {
			base := 100 + 40*float64(ai) + 25*float64(si)
			for m := 0; m < months; m++ {
				date := start.AddDate(0, m, 0)
				season := 20 * math.Sin(2*math.Pi*float64(m)/12)
				trend := 0.8 * float64(m)
				discount := 0.0
				if m%6 == 0 {
					discount = 0.15
				}
				volume := base + season + trend + base*discount + rng.NormFloat64()*3
				industry := 1000 + 50*math.Sin(2*math.Pi*float64(m)/12) + rng.NormFloat64()*10

				agencyCol = append(agencyCol, agency)
				skuCol = append(skuCol, sku)
				dateCol = append(dateCol, date.Format("2006-01-02"))
				volumeCol = append(volumeCol, volume)
				discountCol = append(discountCol, discount)
				industryCol = append(industryCol, industry)
			}
		}
	}

	df := dataframe.New(
		series.New(agencyCol, series.String, "agency"),
		series.New(skuCol, series.String, "sku"),
		series.New(dateCol, series.String, "date"),
		series.New(volumeCol, series.Float, "volume"),
		series.New(discountCol, series.Float, "discount"),
		series.New(industryCol, series.Float, "industry_volume"),
	)
	return Stallion{
		X:         df,
		GroupCols: []string{"agency", "sku"},
		Datetime:  "date",
		Target:    "volume",
		Freq:      "M",
	}
}
