package runner

import (
	"context"
	"strings"
	"testing"

	"github.com/stellarlinkco/code-solver/internal/extract"
	"github.com/stellarlinkco/code-solver/internal/sandbox"
	"github.com/stellarlinkco/code-solver/internal/solution"
)

type fakeSandbox struct {
	fn func(program string) (string, error)
}

func (f *fakeSandbox) RunProgram(_ context.Context, program string) (string, error) {
	return f.fn(program)
}

// addSandbox pretends to be a python interpreter running the driver for
// an add(a, b) solution, answering from a fixed invocation table.
func addSandbox(t *testing.T) sandbox.Runner {
	t.Helper()
	table := map[string]string{
		"_fn(*(2, 3))": "5",
		"_fn(*(0, 0))": "0",
		"_fn(*(2, 2))": "4",
	}
	return &fakeSandbox{fn: func(program string) (string, error) {
		for call, result := range table {
			if strings.Contains(program, call) {
				return "\n" + solution.ResultMarker() + result, nil
			}
		}
		return "", &sandbox.ExitError{Output: "TypeError: unsupported operand"}
	}}
}

func addUnit() *solution.Unit {
	return &solution.Unit{Source: "def add(a, b):\n    return a + b", Entry: "add"}
}

func TestRun_AllPassed(t *testing.T) {
	t.Parallel()

	r := New(addSandbox(t), nil)
	cases := []extract.TestCase{
		{Input: "(2, 3)", Expected: "5"},
		{Input: "(0, 0)", Expected: "0"},
	}
	report, err := r.Run(context.Background(), addUnit(), cases)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Passed != 2 || report.Total != 2 {
		t.Fatalf("report: got %d/%d want 2/2", report.Passed, report.Total)
	}
	for i, cr := range report.Results {
		if cr.Status != StatusPassed {
			t.Fatalf("Results[%d].Status: got %s want %s", i, cr.Status, StatusPassed)
		}
	}
	if !strings.HasSuffix(report.Text(), "2/2 tests passed") {
		t.Fatalf("Text: got %q want suffix %q", report.Text(), "2/2 tests passed")
	}
}

func TestRun_Failed(t *testing.T) {
	t.Parallel()

	r := New(addSandbox(t), nil)
	report, err := r.Run(context.Background(), addUnit(), []extract.TestCase{
		{Input: "(2, 2)", Expected: "5"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	cr := report.Results[0]
	if cr.Status != StatusFailed {
		t.Fatalf("Status: got %s want %s", cr.Status, StatusFailed)
	}
	if cr.Actual != "4" {
		t.Fatalf("Actual: got %q want %q", cr.Actual, "4")
	}
	if report.Passed != 0 {
		t.Fatalf("Passed: got %d want 0", report.Passed)
	}
}

func TestRun_MalformedInputIsErrorNotAbort(t *testing.T) {
	t.Parallel()

	r := New(addSandbox(t), nil)
	cases := []extract.TestCase{
		{Input: "(2, 3", Expected: "5"},              // unbalanced
		{Input: "[2, 7], target = 9", Expected: "1"}, // not a literal
		{Input: "(2, 3)", Expected: "5"},             // still runs
	}
	report, err := r.Run(context.Background(), addUnit(), cases)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Total != 3 {
		t.Fatalf("Total: got %d want 3", report.Total)
	}
	if got := report.Results[0].Status; got != StatusError {
		t.Fatalf("Results[0].Status: got %s want %s", got, StatusError)
	}
	if got := report.Results[1].Status; got != StatusError {
		t.Fatalf("Results[1].Status: got %s want %s", got, StatusError)
	}
	if got := report.Results[2].Status; got != StatusPassed {
		t.Fatalf("Results[2].Status: got %s want %s", got, StatusPassed)
	}
	if report.Passed != 1 {
		t.Fatalf("Passed: got %d want 1", report.Passed)
	}
}

func TestRun_RuntimeErrorRecorded(t *testing.T) {
	t.Parallel()

	sb := &fakeSandbox{fn: func(string) (string, error) {
		return "", &sandbox.ExitError{Output: "ZeroDivisionError: division by zero"}
	}}
	r := New(sb, nil)
	report, err := r.Run(context.Background(), addUnit(), []extract.TestCase{
		{Input: "(1, 0)", Expected: "0"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	cr := report.Results[0]
	if cr.Status != StatusError {
		t.Fatalf("Status: got %s want %s", cr.Status, StatusError)
	}
	if !strings.Contains(cr.Actual, "ZeroDivisionError") {
		t.Fatalf("Actual: got %q want the exception message", cr.Actual)
	}
}

func TestRun_NonLiteralResultFails(t *testing.T) {
	t.Parallel()

	sb := &fakeSandbox{fn: func(string) (string, error) {
		return solution.ResultMarker() + "<object object at 0x7f>", nil
	}}
	r := New(sb, nil)
	report, err := r.Run(context.Background(), addUnit(), []extract.TestCase{
		{Input: "(1, 2)", Expected: "3"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	cr := report.Results[0]
	if cr.Status != StatusFailed {
		t.Fatalf("Status: got %s want %s", cr.Status, StatusFailed)
	}
	if cr.Actual != "<object object at 0x7f>" {
		t.Fatalf("Actual: got %q want raw repr", cr.Actual)
	}
}

func TestRun_SingleUnparenthesizedArg(t *testing.T) {
	t.Parallel()

	var program string
	sb := &fakeSandbox{fn: func(p string) (string, error) {
		program = p
		return solution.ResultMarker() + "[15, 11, 7, 2]", nil
	}}
	r := New(sb, nil)
	unit := &solution.Unit{Source: "def rev(xs):\n    return xs[::-1]", Entry: "rev"}
	report, err := r.Run(context.Background(), unit, []extract.TestCase{
		{Input: "[2, 7, 11, 15]", Expected: "[15, 11, 7, 2]"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(program, "_fn(*([2, 7, 11, 15],))") {
		t.Fatalf("driver args: got %q", program)
	}
	if report.Results[0].Status != StatusPassed {
		t.Fatalf("Status: got %s want %s", report.Results[0].Status, StatusPassed)
	}
}

func TestRun_TupleVsListNotEqual(t *testing.T) {
	t.Parallel()

	sb := &fakeSandbox{fn: func(string) (string, error) {
		return solution.ResultMarker() + "(0, 1)", nil
	}}
	r := New(sb, nil)
	report, err := r.Run(context.Background(), addUnit(), []extract.TestCase{
		{Input: "(1, 2)", Expected: "[0, 1]"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Results[0].Status != StatusFailed {
		t.Fatalf("Status: got %s want %s", report.Results[0].Status, StatusFailed)
	}
}

func TestReportText_Transcript(t *testing.T) {
	t.Parallel()

	report := &Report{
		Results: []CaseResult{
			{Index: 1, Input: "(2, 3)", Expected: "5", Actual: "5", Status: StatusPassed},
			{Index: 2, Input: "(2, 2)", Expected: "5", Actual: "4", Status: StatusFailed},
		},
		Passed: 1,
		Total:  2,
	}
	text := report.Text()
	for _, want := range []string{
		"Test Case 1:",
		"Input: (2, 3)",
		"Expected: 5",
		"Actual: 5",
		"Status: PASSED",
		"Test Case 2:",
		"Status: FAILED",
		"Test Summary: 1/2 tests passed",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("Text missing %q in:\n%s", want, text)
		}
	}
}

func TestRun_NilGuards(t *testing.T) {
	t.Parallel()

	var r *Runner
	if _, err := r.Run(context.Background(), addUnit(), nil); err == nil {
		t.Fatal("Run on nil runner: want error")
	}
	if _, err := New(addSandbox(t), nil).Run(context.Background(), nil, nil); err == nil {
		t.Fatal("Run with nil unit: want error")
	}
	if _, err := New(nil, nil).Run(context.Background(), addUnit(), nil); err == nil {
		t.Fatal("Run with nil sandbox: want error")
	}
}
