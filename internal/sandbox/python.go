// Package sandbox executes generated Python programs in an isolated
// subprocess. Loading and invoking an extracted solution runs code that
// came straight out of a model response: treat every program handed to
// this package as hostile. The docker mode is the only configuration with
// real isolation; host mode exists for environments without a container
// runtime and is deliberately noisy about the risk.
package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Mode selects the isolation strategy.
type Mode string

const (
	ModeDocker   Mode = "docker"
	ModeHost     Mode = "host"
	ModeDisabled Mode = "disabled"

	defaultImage   = "python:3.11-slim"
	defaultTimeout = 10 * time.Second
)

// ErrDisabled is returned when code execution is switched off.
var ErrDisabled = errors.New("sandbox: code execution disabled")

// ExitError reports a program that started but exited non-zero. Output
// holds the truncated interpreter output, usually a traceback.
type ExitError struct {
	Output string
}

func (e *ExitError) Error() string {
	if e == nil {
		return "sandbox: program failed"
	}
	return fmt.Sprintf("sandbox: program failed: %s", e.Output)
}

// Runner executes one Python program and returns its stdout.
type Runner interface {
	RunProgram(ctx context.Context, program string) (string, error)
}

// PythonRunner runs programs with python3, either directly on the host
// with a scrubbed environment or inside a locked-down docker container.
type PythonRunner struct {
	mode    Mode
	timeout time.Duration
	image   string
	log     *zap.Logger

	dockerOnce sync.Once
	dockerBin  string
	dockerErr  error

	hostWarnOnce sync.Once
}

// Option configures a PythonRunner.
type Option func(*PythonRunner)

// WithTimeout sets the per-program wall clock limit.
func WithTimeout(d time.Duration) Option {
	return func(r *PythonRunner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithImage sets the docker image used in docker mode.
func WithImage(image string) Option {
	return func(r *PythonRunner) {
		if v := strings.TrimSpace(image); v != "" {
			r.image = v
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *PythonRunner) {
		if log != nil {
			r.log = log
		}
	}
}

// NewPythonRunner constructs a runner for the given mode.
func NewPythonRunner(mode Mode, opts ...Option) *PythonRunner {
	r := &PythonRunner{
		mode:    mode,
		timeout: defaultTimeout,
		image:   defaultImage,
		log:     zap.NewNop(),
	}
	if r.mode == "" {
		r.mode = ModeDocker
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// RunProgram writes program to a temp file, executes it, and returns its
// stdout. A non-zero exit becomes an *ExitError carrying the interpreter
// output; everything else (timeout, missing runtime) is an ordinary error.
func (r *PythonRunner) RunProgram(ctx context.Context, program string) (string, error) {
	if r == nil {
		return "", errors.New("sandbox: nil runner")
	}
	if ctx == nil {
		return "", errors.New("sandbox: nil context")
	}

	switch r.mode {
	case ModeDisabled:
		return "", ErrDisabled
	case ModeHost:
		r.hostWarnOnce.Do(func() {
			r.log.Warn("executing untrusted code on the host; use docker mode for isolation")
		})
		return r.runHost(ctx, program)
	case ModeDocker:
		return r.runDocker(ctx, program)
	default:
		return "", fmt.Errorf("sandbox: unknown mode %q (expected %s|%s|%s)", r.mode, ModeDocker, ModeHost, ModeDisabled)
	}
}

func writeProgram(program string) (path string, cleanup func(), _ error) {
	dir, err := os.MkdirTemp("", "code-solver-py-*")
	if err != nil {
		return "", nil, fmt.Errorf("sandbox: create temp dir: %w", err)
	}
	cleanup = func() { _ = os.RemoveAll(dir) }

	path = filepath.Join(dir, "main.py")
	if err := os.WriteFile(path, []byte(program), 0o644); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("sandbox: write program: %w", err)
	}
	return path, cleanup, nil
}

func (r *PythonRunner) runHost(ctx context.Context, program string) (string, error) {
	python, err := exec.LookPath("python3")
	if err != nil {
		return "", fmt.Errorf("sandbox: python3 not found: %w", err)
	}

	path, cleanup, err := writeProgram(program)
	if err != nil {
		return "", err
	}
	defer cleanup()

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	dir := filepath.Dir(path)
	cmd := exec.CommandContext(runCtx, python, "-I", "-B", path)
	cmd.Dir = dir
	cmd.Env = []string{
		"PYTHONPATH=",
		"PYTHONSAFEPATH=1",
		"HOME=" + dir,
		"PATH=" + os.Getenv("PATH"),
	}

	return r.capture(runCtx, cmd)
}

func (r *PythonRunner) runDocker(ctx context.Context, program string) (string, error) {
	docker, err := r.dockerReady()
	if err != nil {
		return "", err
	}

	path, cleanup, err := writeProgram(program)
	if err != nil {
		return "", err
	}
	defer cleanup()

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	name := fmt.Sprintf("code-solver-%d-%d", os.Getpid(), time.Now().UnixNano())
	args := []string{
		"run",
		"--rm",
		"--name", name,
		"--network=none",
		"--read-only",
		"--cap-drop=ALL",
		"--memory=128m",
		"--cpus=0.5",
		"--tmpfs", "/tmp:rw,noexec,nosuid,nodev,size=64m",
		"--security-opt", "no-new-privileges",
		"--user", "65534:65534",
		"--env", "PYTHONPATH=",
		"--env", "PYTHONSAFEPATH=1",
		"--env", "HOME=/tmp",
		"--mount", fmt.Sprintf("type=bind,source=%s,target=/tmp/main.py,readonly", path),
		r.image,
		"python", "-I", "-B", "/tmp/main.py",
	}

	cmd := exec.CommandContext(runCtx, docker, args...)
	out, err := r.capture(runCtx, cmd)
	if runCtx.Err() != nil {
		killCtx, killCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer killCancel()
		_ = exec.CommandContext(killCtx, docker, "rm", "-f", name).Run()
	}
	return out, err
}

func (r *PythonRunner) capture(ctx context.Context, cmd *exec.Cmd) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return "", fmt.Errorf("sandbox: program timeout: %w", ctx.Err())
	}
	if err != nil {
		combined := strings.TrimSpace(stderr.String())
		if combined == "" {
			combined = strings.TrimSpace(stdout.String())
		}
		return "", &ExitError{Output: truncate(combined, 4096)}
	}
	return stdout.String(), nil
}

func (r *PythonRunner) dockerReady() (string, error) {
	r.dockerOnce.Do(func() {
		docker, err := exec.LookPath("docker")
		if err != nil {
			r.dockerErr = fmt.Errorf("sandbox: docker not found (install docker, or set sandbox mode to %q; UNSAFE): %w", ModeHost, err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if out, err := exec.CommandContext(ctx, docker, "version", "--format", "{{.Server.Version}}").CombinedOutput(); err != nil {
			r.dockerErr = fmt.Errorf("sandbox: docker daemon not reachable: %s", truncate(strings.TrimSpace(string(out)), 512))
			return
		}

		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if out, err := exec.CommandContext(ctx, docker, "image", "inspect", "-f", "{{.Id}}", r.image).CombinedOutput(); err != nil {
			r.dockerErr = fmt.Errorf("sandbox: missing image %q (run: docker pull %s): %s", r.image, r.image, truncate(strings.TrimSpace(string(out)), 256))
			return
		}

		r.dockerBin = docker
	})

	if r.dockerErr != nil {
		return "", r.dockerErr
	}
	return r.dockerBin, nil
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max]) + "..."
}
