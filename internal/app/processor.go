// Package app orchestrates a full solve: run the agent pipeline, extract the
// solution and test cases, execute the tests in the sandbox, write the
// results artifact and persist the run record.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stellarlinkco/code-solver/internal/agent"
	"github.com/stellarlinkco/code-solver/internal/extract"
	"github.com/stellarlinkco/code-solver/internal/problem"
	"github.com/stellarlinkco/code-solver/internal/results"
	"github.com/stellarlinkco/code-solver/internal/runner"
	"github.com/stellarlinkco/code-solver/internal/sandbox"
	"github.com/stellarlinkco/code-solver/internal/solution"
	"github.com/stellarlinkco/code-solver/internal/store"
)

// noTestableOutput matches the message the transcript carries when there is
// nothing to execute.
const noTestableOutput = "No solution code or test cases found."

// Solver produces the three stage outputs for a problem. *agent.Pipeline
// implements it.
type Solver interface {
	Solve(ctx context.Context, sections problem.Sections) (*agent.StageOutputs, error)
}

// Processor runs one problem end to end.
type Processor struct {
	solver   Solver
	sandbox  sandbox.Runner
	tests    *runner.Runner
	writer   *results.Writer
	records  store.RunWriter // optional
	provider string
	log      *zap.Logger
	newID    func() string
	now      func() time.Time
}

// NewProcessor wires a processor. records may be nil when persistence is
// disabled.
func NewProcessor(solver Solver, sb sandbox.Runner, writer *results.Writer, records store.RunWriter, provider string, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{
		solver:   solver,
		sandbox:  sb,
		tests:    runner.New(sb, log),
		writer:   writer,
		records:  records,
		provider: provider,
		log:      log,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// ProcessProblem solves one problem and returns its run record. A solution
// that cannot be extracted or loaded is a recorded outcome, not an error.
func (p *Processor) ProcessProblem(ctx context.Context, prob problem.Problem) (*store.SolveRecord, error) {
	if p == nil || p.solver == nil || p.writer == nil {
		return nil, errors.New("app: nil processor")
	}
	if ctx == nil {
		return nil, errors.New("app: nil context")
	}

	p.log.Info("processing problem", zap.String("problem", prob.Name))

	definition, err := prob.Definition()
	if err != nil {
		return nil, fmt.Errorf("app: process %q: %w", prob.Name, err)
	}

	rec := &store.SolveRecord{
		ID:          p.newID(),
		ProblemName: prob.Name,
		Provider:    p.provider,
		StartedAt:   p.now().UTC(),
	}

	outputs, err := p.solver.Solve(ctx, problem.ParseSections(definition))
	if err != nil {
		return nil, fmt.Errorf("app: process %q: %w", prob.Name, err)
	}

	source := extract.Solution(outputs.Solution)
	cases := extract.TestCases(outputs.TestCases)
	if source == "" {
		p.log.Warn("no solution code found in response", zap.String("problem", prob.Name))
	}
	if len(cases) == 0 {
		p.log.Warn("no test cases found in response", zap.String("problem", prob.Name))
	}

	rec.Report = noTestableOutput
	if source != "" && len(cases) > 0 {
		report, loadMsg, runErr := p.runTests(ctx, source, cases)
		switch {
		case runErr != nil:
			return nil, fmt.Errorf("app: process %q: %w", prob.Name, runErr)
		case report != nil:
			rec.Report = report.Text()
			rec.TotalCases = report.Total
			rec.PassedCases = report.Passed
			rec.Solved = true
			rec.CaseResults = caseRecords(report)
		default:
			rec.Report = loadMsg
		}
	}

	artifactPath, err := p.writer.Save(results.Artifact{
		ProblemName: prob.Name,
		ProblemText: definition,
		Solution:    source,
		TestCases:   cases,
		TestResults: rec.Report,
	})
	if err != nil {
		return nil, fmt.Errorf("app: process %q: %w", prob.Name, err)
	}
	rec.ArtifactPath = artifactPath
	rec.FinishedAt = p.now().UTC()

	if p.records != nil {
		if err := p.records.SaveRun(ctx, rec); err != nil {
			return nil, fmt.Errorf("app: process %q: %w", prob.Name, err)
		}
	}

	p.log.Info("problem processed",
		zap.String("problem", prob.Name),
		zap.Bool("solved", rec.Solved),
		zap.Int("passed", rec.PassedCases),
		zap.Int("total", rec.TotalCases),
		zap.String("artifact", artifactPath))
	return rec, nil
}

// runTests loads the solution and drives the cases. Load failures become
// transcript text rather than processing errors: the artifact records what
// the interpreter said.
func (p *Processor) runTests(ctx context.Context, source string, cases []extract.TestCase) (*runner.Report, string, error) {
	unit, err := solution.Load(ctx, p.sandbox, source)
	if err != nil {
		var loadErr *solution.LoadError
		if errors.As(err, &loadErr) {
			p.log.Warn("solution failed to load", zap.Error(err))
			return nil, fmt.Sprintf("Error running tests: %v", err), nil
		}
		return nil, "", err
	}
	report, err := p.tests.Run(ctx, unit, cases)
	if err != nil {
		return nil, "", err
	}
	return report, "", nil
}

// ProcessAll runs every unsolved problem. One problem's failure is logged
// and the batch moves on.
func (p *Processor) ProcessAll(ctx context.Context, mgr *problem.Manager) error {
	if p == nil {
		return errors.New("app: nil processor")
	}
	if mgr == nil {
		return errors.New("app: nil problem manager")
	}

	problems, err := mgr.ListUnsolved()
	if err != nil {
		return fmt.Errorf("app: list problems: %w", err)
	}
	if len(problems) == 0 {
		p.log.Info("no unsolved problems found")
		return nil
	}
	p.log.Info("found unsolved problems", zap.Int("count", len(problems)))

	for _, prob := range problems {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := p.ProcessProblem(ctx, prob)
		if err != nil {
			p.log.Error("failed to process problem", zap.String("problem", prob.Name), zap.Error(err))
			continue
		}
		if err := mgr.MarkSolved(prob); err != nil {
			p.log.Error("failed to move solved problem", zap.String("problem", prob.Name), zap.Error(err))
			continue
		}
		p.log.Info("moved problem to solved directory",
			zap.String("problem", prob.Name),
			zap.String("run_id", rec.ID))
	}
	return nil
}

func caseRecords(report *runner.Report) []store.CaseRecord {
	if report == nil || len(report.Results) == 0 {
		return nil
	}
	out := make([]store.CaseRecord, 0, len(report.Results))
	for _, cr := range report.Results {
		out = append(out, store.CaseRecord{
			Index:    cr.Index,
			Input:    cr.Input,
			Expected: cr.Expected,
			Actual:   cr.Actual,
			Status:   string(cr.Status),
		})
	}
	return out
}
