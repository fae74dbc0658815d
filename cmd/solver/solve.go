package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stellarlinkco/code-solver/internal/agent"
	"github.com/stellarlinkco/code-solver/internal/app"
	"github.com/stellarlinkco/code-solver/internal/config"
	"github.com/stellarlinkco/code-solver/internal/llm"
	"github.com/stellarlinkco/code-solver/internal/logging"
	"github.com/stellarlinkco/code-solver/internal/problem"
	"github.com/stellarlinkco/code-solver/internal/results"
	"github.com/stellarlinkco/code-solver/internal/sandbox"
	"github.com/stellarlinkco/code-solver/internal/store"
)

type solveOptions struct {
	problemName string
	provider    string
	sandboxMode string
}

func newSolveCmd(st *cliState) *cobra.Command {
	var opts solveOptions

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve unsolved problems",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(st.configPath)
			if err != nil {
				return err
			}
			st.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, st, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.problemName, "problem", "", "solve a single problem by name")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "LLM provider to use (overrides config)")
	cmd.Flags().StringVar(&opts.sandboxMode, "sandbox", "", "sandbox mode: docker|host|disabled (overrides config)")

	return cmd
}

func runSolve(cmd *cobra.Command, st *cliState, opts *solveOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("solve: missing config (internal error)")
	}
	if opts == nil {
		return fmt.Errorf("solve: nil options")
	}
	cfg := st.cfg

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	provider, err := resolveProvider(cfg, opts.provider)
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}

	mode := strings.TrimSpace(opts.sandboxMode)
	if mode == "" {
		mode = cfg.Sandbox.Mode
	}
	sb := sandbox.NewPythonRunner(sandbox.Mode(mode),
		sandbox.WithTimeout(cfg.Sandbox.Timeout),
		sandbox.WithImage(cfg.Sandbox.Image),
		sandbox.WithLogger(log),
	)

	mgr, err := problem.NewManager(cfg.Problems.UnsolvedDir, cfg.Problems.SolvedDir)
	if err != nil {
		return err
	}

	writer, err := results.NewWriter(cfg.Problems.ResultsDir)
	if err != nil {
		return err
	}

	stor, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = stor.Close() }()

	pipeline := agent.NewPipeline(provider, cfg.Pipeline, log)
	proc := app.NewProcessor(pipeline, sb, writer, stor, provider.Name(), log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if name := strings.TrimSpace(opts.problemName); name != "" {
		return solveOne(ctx, cmd, proc, mgr, name)
	}
	return proc.ProcessAll(ctx, mgr)
}

func solveOne(ctx context.Context, cmd *cobra.Command, proc *app.Processor, mgr *problem.Manager, name string) error {
	problems, err := mgr.ListUnsolved()
	if err != nil {
		return err
	}

	for _, prob := range problems {
		if prob.Name != name {
			continue
		}
		rec, err := proc.ProcessProblem(ctx, prob)
		if err != nil {
			return err
		}
		if err := mgr.MarkSolved(prob); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "Run: %s\n", rec.ID)
		_, _ = fmt.Fprintf(out, "Results: %s\n\n", rec.ArtifactPath)
		_, _ = fmt.Fprintln(out, rec.Report)
		return nil
	}
	return fmt.Errorf("solve: unknown problem %q", name)
}

func resolveProvider(cfg *config.Config, override string) (llm.Provider, error) {
	override = strings.TrimSpace(override)
	if override == "" {
		return llm.DefaultProviderFromConfig(cfg)
	}

	reg, err := llm.NewRegistryFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	p, ok := reg.Get(override)
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", override)
	}
	return p, nil
}
