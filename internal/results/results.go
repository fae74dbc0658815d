// Package results writes per-problem solve artifacts: the problem text, the
// extracted solution, the presented test cases and the test transcript, in
// one timestamped file next to the solved problems.
package results

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/stellarlinkco/code-solver/internal/extract"
)

// NoSolutionMarker is written in place of the solution section when no code
// could be extracted from the pipeline output.
const NoSolutionMarker = "No solution code was found in the response."

// Writer saves solve artifacts to a directory.
type Writer struct {
	dir string
	now func() time.Time
}

func NewWriter(dir string) (*Writer, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("results: empty directory path")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("results: create %q: %w", dir, err)
	}
	return &Writer{dir: dir, now: time.Now}, nil
}

// Artifact is everything that goes into one results file.
type Artifact struct {
	ProblemName string
	ProblemText string
	Solution    string // empty means no solution was extracted
	TestCases   []extract.TestCase
	TestResults string
}

// Save writes the artifact and returns the file path.
func (w *Writer) Save(a Artifact) (string, error) {
	if w == nil {
		return "", fmt.Errorf("results: nil writer")
	}
	name := strings.TrimSpace(a.ProblemName)
	if name == "" {
		return "", fmt.Errorf("results: empty problem name")
	}

	timestamp := w.now().Format("20060102_150405")
	path := filepath.Join(w.dir, fmt.Sprintf("%s_results_%s.txt", name, timestamp))

	var sb strings.Builder
	sb.WriteString("=== Problem ===\n")
	sb.WriteString(a.ProblemText)
	sb.WriteString("\n\n=== Solution ===\n")
	if strings.TrimSpace(a.Solution) == "" {
		sb.WriteString(NoSolutionMarker)
	} else {
		sb.WriteString(a.Solution)
	}
	sb.WriteString("\n\n=== Test Cases ===\n")
	for i, tc := range a.TestCases {
		fmt.Fprintf(&sb, "\nTest Case %d:\n", i+1)
		fmt.Fprintf(&sb, "Input: %s\n", tc.Input)
		fmt.Fprintf(&sb, "Expected: %s\n", tc.Expected)
	}
	sb.WriteString("\n=== Test Results ===\n")
	sb.WriteString(a.TestResults)

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("results: write %q: %w", path, err)
	}
	return path, nil
}
