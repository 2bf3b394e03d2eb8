// Package pipeline composes preprocessing steps and a final estimator
// into a single fit/predict object over dataframes.
package pipeline

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
)

// Step is a preprocessing stage: fit on training data, transform any data.
type Step interface {
	Fit(df dataframe.DataFrame) error
	Transform(df dataframe.DataFrame) (dataframe.DataFrame, error)
}

// Estimator is the final stage. Predict returns a dataframe of forecasts.
type Estimator interface {
	Fit(df dataframe.DataFrame) error
	Predict(df dataframe.DataFrame) (dataframe.DataFrame, error)
}

// NamedStep pairs a step with the name it is looked up by.
type NamedStep struct {
	Name string
	Step Step
}

// Pipeline chains named preprocessing steps with a final estimator.
type Pipeline struct {
	steps     []NamedStep
	estimator Estimator
	schema    *Schema
	fitted    bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSchema validates input dataframes against schema before fitting.
func WithSchema(schema Schema) Option {
	return func(p *Pipeline) { p.schema = &schema }
}

// New builds a pipeline from preprocessing steps and a final estimator.
func New(steps []NamedStep, estimator Estimator, opts ...Option) *Pipeline {
	p := &Pipeline{steps: steps, estimator: estimator}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fit runs fit-then-transform through every step in order, then fits the
// estimator on the fully transformed dataframe.
func (p *Pipeline) Fit(df dataframe.DataFrame) error {
	if p.schema != nil {
		if err := p.schema.Validate(df); err != nil {
			return err
		}
	}
	for _, s := range p.steps {
		if err := s.Step.Fit(df); err != nil {
			return fmt.Errorf("pipeline: fit step %q: %w", s.Name, err)
		}
		out, err := s.Step.Transform(df)
		if err != nil {
			return fmt.Errorf("pipeline: transform step %q: %w", s.Name, err)
		}
		df = out
	}
	if p.estimator != nil {
		if err := p.estimator.Fit(df); err != nil {
			return fmt.Errorf("pipeline: fit estimator: %w", err)
		}
	}
	p.fitted = true
	return nil
}

// Transform applies every fitted step in order without touching the
// estimator.
func (p *Pipeline) Transform(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if !p.fitted {
		return dataframe.DataFrame{}, fmt.Errorf("pipeline: not fitted")
	}
	for _, s := range p.steps {
		out, err := s.Step.Transform(df)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("pipeline: transform step %q: %w", s.Name, err)
		}
		df = out
	}
	return df, nil
}

// Predict transforms df through every step and forwards it to the
// estimator.
func (p *Pipeline) Predict(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if p.estimator == nil {
		return dataframe.DataFrame{}, fmt.Errorf("pipeline: no estimator configured")
	}
	out, err := p.Transform(df)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	return p.estimator.Predict(out)
}

// Step returns the step registered under name, or nil.
func (p *Pipeline) Step(name string) Step {
	for _, s := range p.steps {
		if s.Name == name {
			return s.Step
		}
	}
	return nil
}
