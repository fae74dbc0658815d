package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stellarlinkco/code-solver/internal/agent"
	"github.com/stellarlinkco/code-solver/internal/problem"
	"github.com/stellarlinkco/code-solver/internal/results"
	"github.com/stellarlinkco/code-solver/internal/solution"
	"github.com/stellarlinkco/code-solver/internal/store"
)

type fakeSolver struct {
	outputs *agent.StageOutputs
	err     error
}

func (f *fakeSolver) Solve(context.Context, problem.Sections) (*agent.StageOutputs, error) {
	return f.outputs, f.err
}

// addInterpreter pretends to be the sandbox for a working add(a, b)
// solution: it answers the probe with the entry point and each driver
// invocation from a fixed table.
type addInterpreter struct {
	table map[string]string
}

func (f *addInterpreter) RunProgram(_ context.Context, program string) (string, error) {
	if strings.Contains(program, "json.dumps") {
		return "\n" + solution.ProbeMarker() + `{"entry": "add", "kind": "function"}` + "\n", nil
	}
	for call, result := range f.table {
		if strings.Contains(program, call) {
			return "\n" + solution.ResultMarker() + result, nil
		}
	}
	return "", errors.New("unexpected program")
}

// brokenInterpreter answers every probe with a syntax error report.
type brokenInterpreter struct{}

func (brokenInterpreter) RunProgram(context.Context, string) (string, error) {
	return "\n" + solution.ProbeMarker() + `{"error": "syntax", "message": "invalid syntax"}` + "\n", nil
}

func solverOutputs() *agent.StageOutputs {
	return &agent.StageOutputs{
		Breakdown: "1. add the numbers",
		Solution:  "```python\ndef add(a, b):\n    return a + b\n```",
		TestCases: "```python\ntest_cases = [\n    (2, 3, 5),\n    (0, 0, 0),\n]\n```",
	}
}

func writeProblem(t *testing.T, dir, name, body string) problem.Problem {
	t.Helper()
	path := filepath.Join(dir, name+".txt")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return problem.Problem{Name: name, Path: path}
}

func newWriter(t *testing.T) *results.Writer {
	t.Helper()
	w, err := results.NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	return w
}

func newMemStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestProcessProblem_Solved(t *testing.T) {
	t.Parallel()

	sb := &addInterpreter{table: map[string]string{
		"_fn(*(2, 3))": "5",
		"_fn(*(0, 0))": "0",
	}}
	st := newMemStore(t)
	p := NewProcessor(&fakeSolver{outputs: solverOutputs()}, sb, newWriter(t), st, "claude", nil)

	prob := writeProblem(t, t.TempDir(), "add_numbers", "Question: Add two numbers.")
	rec, err := p.ProcessProblem(context.Background(), prob)
	if err != nil {
		t.Fatalf("ProcessProblem: %v", err)
	}

	if !rec.Solved || rec.PassedCases != 2 || rec.TotalCases != 2 {
		t.Fatalf("record: got %#v", rec)
	}
	if !strings.HasSuffix(strings.TrimSpace(rec.Report), "2/2 tests passed") {
		t.Fatalf("Report: got %q", rec.Report)
	}
	if len(rec.CaseResults) != 2 || rec.CaseResults[0].Status != "PASSED" {
		t.Fatalf("CaseResults: got %#v", rec.CaseResults)
	}

	b, err := os.ReadFile(rec.ArtifactPath)
	if err != nil {
		t.Fatalf("ReadFile(artifact): %v", err)
	}
	artifact := string(b)
	for _, want := range []string{"=== Problem ===", "def add(a, b):", "Test Case 1:", "2/2 tests passed"} {
		if !strings.Contains(artifact, want) {
			t.Fatalf("artifact missing %q:\n%s", want, artifact)
		}
	}

	stored, err := st.GetRun(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if stored.ProblemName != "add_numbers" || !stored.Solved {
		t.Fatalf("stored record: got %#v", stored)
	}
}

func TestProcessProblem_NoSolution(t *testing.T) {
	t.Parallel()

	outputs := solverOutputs()
	outputs.Solution = "I could not produce code for this problem."
	p := NewProcessor(&fakeSolver{outputs: outputs}, &addInterpreter{}, newWriter(t), nil, "claude", nil)

	prob := writeProblem(t, t.TempDir(), "p", "q")
	rec, err := p.ProcessProblem(context.Background(), prob)
	if err != nil {
		t.Fatalf("ProcessProblem: %v", err)
	}
	if rec.Solved || rec.TotalCases != 0 {
		t.Fatalf("record: got %#v", rec)
	}
	if rec.Report != noTestableOutput {
		t.Fatalf("Report: got %q", rec.Report)
	}

	b, err := os.ReadFile(rec.ArtifactPath)
	if err != nil {
		t.Fatalf("ReadFile(artifact): %v", err)
	}
	if !strings.Contains(string(b), results.NoSolutionMarker) {
		t.Fatalf("artifact missing no-solution marker:\n%s", string(b))
	}
}

func TestProcessProblem_LoadFailure(t *testing.T) {
	t.Parallel()

	p := NewProcessor(&fakeSolver{outputs: solverOutputs()}, brokenInterpreter{}, newWriter(t), nil, "claude", nil)

	prob := writeProblem(t, t.TempDir(), "p", "q")
	rec, err := p.ProcessProblem(context.Background(), prob)
	if err != nil {
		t.Fatalf("ProcessProblem: %v", err)
	}
	if rec.Solved {
		t.Fatalf("record: unexpectedly solved")
	}
	if !strings.Contains(rec.Report, "Error running tests:") {
		t.Fatalf("Report: got %q", rec.Report)
	}
	if !strings.Contains(rec.Report, "invalid syntax") {
		t.Fatalf("Report missing interpreter detail: got %q", rec.Report)
	}
}

func TestProcessProblem_SolverError(t *testing.T) {
	t.Parallel()

	p := NewProcessor(&fakeSolver{err: errors.New("boom")}, &addInterpreter{}, newWriter(t), nil, "claude", nil)

	prob := writeProblem(t, t.TempDir(), "p", "q")
	if _, err := p.ProcessProblem(context.Background(), prob); err == nil {
		t.Fatalf("ProcessProblem: expected error")
	}
}

func TestProcessAll(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mgr, err := problem.NewManager(filepath.Join(dir, "unsolved"), filepath.Join(dir, "solved"))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	writeProblem(t, filepath.Join(dir, "unsolved"), "a", "Question: Add.")
	writeProblem(t, filepath.Join(dir, "unsolved"), "b", "Question: Add again.")

	sb := &addInterpreter{table: map[string]string{
		"_fn(*(2, 3))": "5",
		"_fn(*(0, 0))": "0",
	}}
	p := NewProcessor(&fakeSolver{outputs: solverOutputs()}, sb, newWriter(t), nil, "claude", nil)

	if err := p.ProcessAll(context.Background(), mgr); err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}

	left, err := mgr.ListUnsolved()
	if err != nil {
		t.Fatalf("ListUnsolved: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("unsolved left: got %d", len(left))
	}
	for _, name := range []string{"a.txt", "b.txt"} {
		if _, err := os.Stat(filepath.Join(dir, "solved", name)); err != nil {
			t.Fatalf("solved/%s: %v", name, err)
		}
	}
}

func TestProcessAll_IsolatesFailures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mgr, err := problem.NewManager(filepath.Join(dir, "unsolved"), filepath.Join(dir, "solved"))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	writeProblem(t, filepath.Join(dir, "unsolved"), "a", "q")
	writeProblem(t, filepath.Join(dir, "unsolved"), "b", "q")

	p := NewProcessor(&fakeSolver{err: errors.New("boom")}, &addInterpreter{}, newWriter(t), nil, "claude", nil)

	if err := p.ProcessAll(context.Background(), mgr); err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}

	left, err := mgr.ListUnsolved()
	if err != nil {
		t.Fatalf("ListUnsolved: %v", err)
	}
	if len(left) != 2 {
		t.Fatalf("unsolved left: got %d want %d", len(left), 2)
	}
}

func TestProcessor_NilGuards(t *testing.T) {
	t.Parallel()

	var p *Processor
	if _, err := p.ProcessProblem(context.Background(), problem.Problem{}); err == nil {
		t.Fatalf("ProcessProblem(nil processor): expected error")
	}
	if err := p.ProcessAll(context.Background(), nil); err == nil {
		t.Fatalf("ProcessAll(nil processor): expected error")
	}

	ok := NewProcessor(&fakeSolver{}, &addInterpreter{}, newWriter(t), nil, "claude", nil)
	if _, err := ok.ProcessProblem(nil, problem.Problem{}); err == nil {
		t.Fatalf("ProcessProblem(nil ctx): expected error")
	}
	if err := ok.ProcessAll(context.Background(), nil); err == nil {
		t.Fatalf("ProcessAll(nil manager): expected error")
	}
}
