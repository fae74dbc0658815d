package store

import (
	"context"
	"time"
)

// RunWriter defines persistence for solve runs.
type RunWriter interface {
	SaveRun(ctx context.Context, run *SolveRecord) error
}

// RunReader defines read access to solve-run history.
type RunReader interface {
	GetRun(ctx context.Context, id string) (*SolveRecord, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]*SolveRecord, error)
}

// Store defines persistence for solve runs.
type Store interface {
	RunWriter
	RunReader
	Close() error
}

// SolveRecord stores one attempt at solving a problem.
type SolveRecord struct {
	ID           string
	ProblemName  string
	Provider     string
	StartedAt    time.Time
	FinishedAt   time.Time
	TotalCases   int
	PassedCases  int
	Solved       bool   // a solution was extracted and the tests ran
	Report       string // test transcript
	ArtifactPath string
	CaseResults  []CaseRecord // JSON serialized
}

// CaseRecord stores a single test case outcome.
type CaseRecord struct {
	Index    int    `json:"index"`
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Status   string `json:"status"`
}

// RunFilter filters run listings.
type RunFilter struct {
	ProblemName string
	Since       time.Time
	Until       time.Time
	Limit       int
}
