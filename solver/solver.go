package solver

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyExpression is returned for blank input.
var ErrEmptyExpression = errors.New("empty expression")

const (
	DefaultVariable = "x"
	DefaultMaxDepth = 6
)

// Solution is the outcome of a successful integration.
type Solution struct {
	Input          string
	Result         string
	Method         string
	Steps          []string
	InputLaTeX     string
	ResultLaTeX    string
	Technique      Technique
	Antiderivative Expr
}

type Solver struct {
	maxDepth int
}

type Option func(*Solver)

// WithMaxDepth bounds the nesting of integration by parts and expansion.
func WithMaxDepth(depth int) Option {
	return func(s *Solver) {
		if depth > 0 {
			s.maxDepth = depth
		}
	}
}

func New(opts ...Option) *Solver {
	s := &Solver{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Integrate computes the indefinite integral of expression with respect to
// variable (x when empty).
func (s *Solver) Integrate(expression, variable string) (*Solution, error) {
	return s.IntegrateContext(context.Background(), expression, variable)
}

// IntegrateContext is Integrate bounded by ctx; the rule search stops with
// ctx's error once it is canceled or its deadline passes.
func (s *Solver) IntegrateContext(ctx context.Context, expression, variable string) (*Solution, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, ErrEmptyExpression
	}
	if variable == "" {
		variable = DefaultVariable
	}
	e, err := Parse(expression)
	if err != nil {
		return nil, err
	}

	in := &integrator{ctx: ctx, v: variable, maxDepth: s.maxDepth}
	input := fmt.Sprintf("∫ %s d%s", e, variable)
	r, err := in.integrate(e, 0)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("integration stopped: %w", ctxErr)
		}
		return nil, fmt.Errorf("%w: %s", err, input)
	}
	result := r.String() + " + C"
	in.note(TechniqueBasic, "Add the constant of integration: %s", result)

	return &Solution{
		Input:          input,
		Result:         result,
		Method:         in.top.String(),
		Steps:          in.steps,
		InputLaTeX:     fmt.Sprintf("\\int %s \\, d%s", e.LaTeX(), variable),
		ResultLaTeX:    r.LaTeX() + " + C",
		Technique:      in.top,
		Antiderivative: r,
	}, nil
}
