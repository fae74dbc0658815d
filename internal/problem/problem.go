// Package problem manages coding-problem files on disk. Unsolved problems
// are plain-text files in one directory; processed ones are moved to another.
package problem

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Problem is a single problem file awaiting a solution.
type Problem struct {
	Name string // file name without the .txt extension
	Path string
}

// Sections is the structured view of a problem definition.
type Sections struct {
	Question    string
	Example     string
	Constraints string
}

// Manager lists unsolved problems and moves them to the solved directory
// once processed.
type Manager struct {
	unsolvedDir string
	solvedDir   string
}

// NewManager creates both directories if needed.
func NewManager(unsolvedDir, solvedDir string) (*Manager, error) {
	unsolvedDir = strings.TrimSpace(unsolvedDir)
	solvedDir = strings.TrimSpace(solvedDir)
	if unsolvedDir == "" || solvedDir == "" {
		return nil, fmt.Errorf("problem: empty directory path")
	}
	if err := os.MkdirAll(unsolvedDir, 0o755); err != nil {
		return nil, fmt.Errorf("problem: create %q: %w", unsolvedDir, err)
	}
	if err := os.MkdirAll(solvedDir, 0o755); err != nil {
		return nil, fmt.Errorf("problem: create %q: %w", solvedDir, err)
	}
	return &Manager{unsolvedDir: unsolvedDir, solvedDir: solvedDir}, nil
}

// SolvedDir returns the directory processed problems are moved to.
func (m *Manager) SolvedDir() string {
	if m == nil {
		return ""
	}
	return m.solvedDir
}

// ListUnsolved returns the .txt problem files in the unsolved directory,
// sorted by name.
func (m *Manager) ListUnsolved() ([]Problem, error) {
	if m == nil {
		return nil, fmt.Errorf("problem: nil manager")
	}

	entries, err := os.ReadDir(m.unsolvedDir)
	if err != nil {
		return nil, fmt.Errorf("problem: read %q: %w", m.unsolvedDir, err)
	}

	var out []Problem
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		out = append(out, Problem{
			Name: strings.TrimSuffix(e.Name(), ".txt"),
			Path: filepath.Join(m.unsolvedDir, e.Name()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// MarkSolved moves the problem file into the solved directory.
func (m *Manager) MarkSolved(p Problem) error {
	if m == nil {
		return fmt.Errorf("problem: nil manager")
	}
	dst := filepath.Join(m.solvedDir, filepath.Base(p.Path))
	if err := os.Rename(p.Path, dst); err != nil {
		return fmt.Errorf("problem: mark solved %q: %w", p.Name, err)
	}
	return nil
}

// Definition reads the full problem text.
func (p Problem) Definition() (string, error) {
	b, err := os.ReadFile(p.Path)
	if err != nil {
		return "", fmt.Errorf("problem: read %q: %w", p.Name, err)
	}
	return string(b), nil
}

// ParseSections splits a problem definition at its header tags. Definitions
// without headers fall back to blank-line-separated paragraphs in
// question/example/constraints order.
func ParseSections(definition string) Sections {
	var s Sections

	if hasHeaders(definition) {
		var current *string
		var buf []string
		flush := func() {
			if current != nil {
				*current = strings.TrimSpace(strings.Join(buf, "\n"))
			}
			buf = buf[:0]
		}
		for _, line := range strings.Split(definition, "\n") {
			switch header := strings.ToLower(strings.TrimSpace(line)); {
			case strings.HasPrefix(header, "question:"):
				flush()
				current = &s.Question
				buf = append(buf, strings.TrimSpace(afterColon(line)))
			case strings.HasPrefix(header, "example:"):
				flush()
				current = &s.Example
				buf = append(buf, strings.TrimSpace(afterColon(line)))
			case strings.HasPrefix(header, "constraints:"):
				flush()
				current = &s.Constraints
				buf = append(buf, strings.TrimSpace(afterColon(line)))
			default:
				if current != nil {
					buf = append(buf, line)
				} else {
					buf = append(buf, line)
					current = &s.Question
				}
			}
		}
		flush()
		return s
	}

	parts := splitParagraphs(definition)
	if len(parts) > 0 {
		s.Question = parts[0]
	}
	if len(parts) > 1 {
		s.Example = parts[1]
	}
	if len(parts) > 2 {
		s.Constraints = strings.Join(parts[2:], "\n\n")
	}
	return s
}

func hasHeaders(definition string) bool {
	for _, line := range strings.Split(definition, "\n") {
		l := strings.ToLower(strings.TrimSpace(line))
		if strings.HasPrefix(l, "question:") || strings.HasPrefix(l, "example:") || strings.HasPrefix(l, "constraints:") {
			return true
		}
	}
	return false
}

func afterColon(line string) string {
	if i := strings.Index(line, ":"); i >= 0 {
		return line[i+1:]
	}
	return line
}

func splitParagraphs(s string) []string {
	var out []string
	for _, part := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
