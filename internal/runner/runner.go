// Package runner evaluates parsed test cases against a loaded solution
// unit. Each case is driven through the sandbox independently: argument
// and expected expressions are validated against the restricted literal
// grammar in-process, only vetted literals are rendered into the driver
// program, and the actual value comes back as a repr that is parsed with
// the same grammar and compared by Python value equality.
package runner

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/stellarlinkco/code-solver/internal/extract"
	"github.com/stellarlinkco/code-solver/internal/literal"
	"github.com/stellarlinkco/code-solver/internal/sandbox"
	"github.com/stellarlinkco/code-solver/internal/solution"
)

// Runner executes test cases one-shot, best-effort, in sequence order.
type Runner struct {
	sandbox sandbox.Runner
	log     *zap.Logger
}

// New creates a Runner over the given sandbox.
func New(sb sandbox.Runner, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{sandbox: sb, log: log}
}

// Run evaluates every case against the unit's entry point. Per-case
// failures are recorded as ERROR and never abort the batch; the returned
// report always covers exactly len(cases) outcomes.
func (r *Runner) Run(ctx context.Context, unit *solution.Unit, cases []extract.TestCase) (*Report, error) {
	if r == nil || r.sandbox == nil {
		return nil, errors.New("runner: nil runner")
	}
	if ctx == nil {
		return nil, errors.New("runner: nil context")
	}
	if unit == nil {
		return nil, errors.New("runner: nil solution unit")
	}

	report := &Report{
		Results: make([]CaseResult, 0, len(cases)),
		Total:   len(cases),
	}

	for i, tc := range cases {
		cr := r.runCase(ctx, unit, i+1, tc)
		if cr.Status == StatusPassed {
			report.Passed++
		}
		report.Results = append(report.Results, cr)
	}

	r.log.Info("test run finished",
		zap.String("entry", unit.Entry),
		zap.Int("passed", report.Passed),
		zap.Int("total", report.Total),
	)
	return report, nil
}

func (r *Runner) runCase(ctx context.Context, unit *solution.Unit, index int, tc extract.TestCase) CaseResult {
	cr := CaseResult{
		Index:    index,
		Input:    strings.TrimSpace(tc.Input),
		Expected: strings.TrimSpace(tc.Expected),
	}

	args, err := parseArgs(cr.Input)
	if err != nil {
		return r.caseError(cr, err)
	}

	out, err := r.sandbox.RunProgram(ctx, unit.DriverProgram(args))
	if err != nil {
		return r.caseError(cr, err)
	}
	actualRepr, err := solution.ParseDriverOutput(out)
	if err != nil {
		return r.caseError(cr, err)
	}

	expected, err := literal.Parse(cr.Expected)
	if err != nil {
		return r.caseError(cr, err)
	}

	actual, err := literal.Parse(actualRepr)
	if err != nil {
		// The call returned a value outside the literal grammar; it cannot
		// equal a literal expectation.
		cr.Actual = actualRepr
		cr.Status = StatusFailed
		return cr
	}

	cr.Actual = actual.Render()
	if actual.Equal(expected) {
		cr.Status = StatusPassed
	} else {
		cr.Status = StatusFailed
		r.log.Debug("test case failed",
			zap.Int("case", index),
			zap.String("expected", cr.Expected),
			zap.String("actual", cr.Actual),
		)
	}
	return cr
}

func (r *Runner) caseError(cr CaseResult, err error) CaseResult {
	cr.Actual = err.Error()
	cr.Status = StatusError
	r.log.Warn("test case error", zap.Int("case", cr.Index), zap.Error(err))
	return cr
}

// parseArgs turns an input expression into positional arguments. A
// parenthesized expression is stripped and split at top-level commas into
// individual arguments (a single sub-expression is a single argument);
// anything else is one argument.
func parseArgs(input string) ([]literal.Value, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errors.New("runner: empty input expression")
	}

	if strings.HasPrefix(input, "(") && strings.HasSuffix(input, ")") {
		inner := strings.TrimSpace(input[1 : len(input)-1])
		if inner == "" {
			return nil, nil
		}
		parts := literal.SplitTop(inner)
		args := make([]literal.Value, 0, len(parts))
		for _, part := range parts {
			v, err := literal.Parse(part)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		return args, nil
	}

	v, err := literal.Parse(input)
	if err != nil {
		return nil, err
	}
	return []literal.Value{v}, nil
}
