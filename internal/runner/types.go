package runner

import (
	"fmt"
	"strings"
)

// Status is the outcome of a single test case.
type Status string

const (
	StatusPassed Status = "PASSED"
	StatusFailed Status = "FAILED"
	// StatusError marks a case whose expressions could not be evaluated or
	// whose invocation raised; it never aborts the remaining cases.
	StatusError Status = "ERROR"
)

// CaseResult is the immutable outcome of one test case.
type CaseResult struct {
	Index    int    // 1-based presentation order
	Input    string // raw input expression
	Expected string // raw expected expression
	Actual   string // rendered actual value, or the failure message for ERROR
	Status   Status
}

// Report is an ordered transcript of a run. Built once, never mutated.
type Report struct {
	Results []CaseResult
	Passed  int // PASSED only; FAILED and ERROR both count as not-passed
	Total   int
}

// Text renders the human-readable transcript: one block per case in
// presentation order, then a summary line.
func (r *Report) Text() string {
	if r == nil {
		return ""
	}

	var sb strings.Builder
	for _, cr := range r.Results {
		fmt.Fprintf(&sb, "Test Case %d:\n", cr.Index)
		fmt.Fprintf(&sb, "Input: %s\n", cr.Input)
		fmt.Fprintf(&sb, "Expected: %s\n", cr.Expected)
		fmt.Fprintf(&sb, "Actual: %s\n", cr.Actual)
		fmt.Fprintf(&sb, "Status: %s\n", cr.Status)
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Test Summary: %d/%d tests passed", r.Passed, r.Total)
	return sb.String()
}
