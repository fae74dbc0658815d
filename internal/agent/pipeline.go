package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stellarlinkco/code-solver/internal/config"
	"github.com/stellarlinkco/code-solver/internal/llm"
	"github.com/stellarlinkco/code-solver/internal/problem"
)

// StageOutputs carries the raw text each stage produced.
type StageOutputs struct {
	Breakdown string
	Solution  string
	TestCases string
}

// Pipeline runs the fixed researcher, developer, tester sequence against a
// single LLM provider.
type Pipeline struct {
	provider     llm.Provider
	log          *zap.Logger
	maxTokens    int
	temperature  float64
	stageTimeout time.Duration
}

func NewPipeline(provider llm.Provider, cfg config.PipelineConfig, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &Pipeline{
		provider:     provider,
		log:          log,
		maxTokens:    maxTokens,
		temperature:  cfg.Temperature,
		stageTimeout: cfg.StageTimeout,
	}
}

// Solve runs the three stages in order, feeding each stage the outputs of
// the stages before it.
func (p *Pipeline) Solve(ctx context.Context, sections problem.Sections) (*StageOutputs, error) {
	if p == nil || p.provider == nil {
		return nil, errors.New("agent: nil pipeline")
	}
	if ctx == nil {
		return nil, errors.New("agent: nil context")
	}

	out := &StageOutputs{}

	breakdown, err := p.completeStage(ctx, "breakdown", researcher,
		breakdownPrompt(sections.Question, sections.Example, sections.Constraints))
	if err != nil {
		return nil, fmt.Errorf("agent: breakdown stage: %w", err)
	}
	out.Breakdown = breakdown

	solution, err := p.completeStage(ctx, "solution", developer, solutionPrompt(breakdown))
	if err != nil {
		return nil, fmt.Errorf("agent: solution stage: %w", err)
	}
	out.Solution = solution

	testCases, err := p.completeStage(ctx, "test_cases", tester,
		testCasesPrompt(sections.Question, sections.Example, sections.Constraints, solution))
	if err != nil {
		return nil, fmt.Errorf("agent: test cases stage: %w", err)
	}
	out.TestCases = testCases

	return out, nil
}

func (p *Pipeline) completeStage(ctx context.Context, stage string, persona Persona, prompt string) (string, error) {
	if p.stageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.stageTimeout)
		defer cancel()
	}

	p.log.Info("running stage",
		zap.String("stage", stage),
		zap.String("role", persona.Role),
		zap.String("provider", p.provider.Name()))

	start := time.Now()
	resp, err := p.provider.Complete(ctx, &llm.Request{
		System:      persona.System(),
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	text := llm.Text(resp)
	p.log.Info("stage complete",
		zap.String("stage", stage),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("output_len", len(text)))

	if text == "" {
		return "", fmt.Errorf("empty %s output", stage)
	}
	return text, nil
}
