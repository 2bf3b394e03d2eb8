package pipeline

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
)

// Schema describes the columns a pipeline expects on its input dataframe.
type Schema struct {
	Required []string
}

// Validate checks that every required column is present.
func (s Schema) Validate(df dataframe.DataFrame) error {
	present := map[string]struct{}{}
	for _, n := range df.Names() {
		present[n] = struct{}{}
	}
	for _, col := range s.Required {
		if _, ok := present[col]; !ok {
			return fmt.Errorf("pipeline: input is missing column %q", col)
		}
	}
	return nil
}
