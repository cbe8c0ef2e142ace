package pipeline

import (
	"fmt"

	"github.com/DebasishMaji/ecommerce-personalization/pkg/data"
	"github.com/DebasishMaji/ecommerce-personalization/pkg/dataprep"
)

// Step transforms a table in place.
type Step interface {
	Name() string
	Apply(t *data.Table) error
}

// Pipeline chains multiple steps.
type Pipeline struct {
	steps []Step
}

func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Run applies every step in order to a copy of t and returns the copy.
func (p *Pipeline) Run(t *data.Table) (*data.Table, error) {
	out := t.Clone()
	for _, step := range p.steps {
		if err := step.Apply(out); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}
	return out, nil
}

// StepFunc adapts a function to a Step.
type StepFunc struct {
	Label string
	Fn    func(t *data.Table) error
}

func (s StepFunc) Name() string              { return s.Label }
func (s StepFunc) Apply(t *data.Table) error { return s.Fn(t) }

// ForwardFill carries the previous row's value into missing cells.
func ForwardFill() Step {
	return StepFunc{Label: "forward fill", Fn: func(t *data.Table) error {
		dataprep.ForwardFill(t)
		return nil
	}}
}

// OneHot encodes the named categorical columns.
func OneHot(columns ...string) Step {
	return StepFunc{Label: "one-hot encode", Fn: func(t *data.Table) error {
		dataprep.OneHot(t, columns...)
		return nil
	}}
}

// RequireColumns fails when any named column is absent from the header.
func RequireColumns(columns ...string) Step {
	return StepFunc{Label: "check columns", Fn: func(t *data.Table) error {
		for _, c := range columns {
			if t.ColumnIndex(c) < 0 {
				return fmt.Errorf("column %q not found", c)
			}
		}
		return nil
	}}
}
