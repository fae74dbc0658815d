// Package solution loads extracted source text as an executable unit and
// locates its entry point. The source never touches this process: a probe
// program compiles it inside the sandbox and reports the entry point (or
// the failure) as a JSON line behind a sentinel marker, so stray prints in
// the solution cannot corrupt the result.
package solution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stellarlinkco/code-solver/internal/literal"
	"github.com/stellarlinkco/code-solver/internal/sandbox"
)

// Entry point resolution failures, matchable with errors.Is.
var (
	ErrSyntaxInvalid      = errors.New("solution: source does not compile")
	ErrConstructionFailed = errors.New("solution: Solution class construction failed")
	ErrNoEntryPoint       = errors.New("solution: no entry point found")
)

// methodPreference is the fixed probe order for methods on a Solution
// class; the first one present wins.
var methodPreference = []string{"isMatch", "twoSum", "reverseList", "search", "sortArray"}

const (
	probeMarker  = "__CODE_SOLVER_PROBE__"
	resultMarker = "__CODE_SOLVER_RESULT__"
)

// LoadError wraps a load failure with the interpreter's message.
type LoadError struct {
	Reason error
	Detail string
}

func (e *LoadError) Error() string {
	if e == nil {
		return "solution: load error <nil>"
	}
	if strings.TrimSpace(e.Detail) == "" {
		return e.Reason.Error()
	}
	return fmt.Sprintf("%s: %s", e.Reason.Error(), e.Detail)
}

func (e *LoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Reason
}

// Unit is a loaded solution: validated source plus a resolved entry point.
type Unit struct {
	Source string
	Entry  string
	Method bool // Entry is a method on a no-arg Solution instance
}

type probeReport struct {
	Entry   string `json:"entry,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Load compiles source in an isolated namespace and resolves its entry
// point: a Solution class method from the fixed preference list, or the
// first top-level callable in definition order (test_cases and
// underscore-prefixed names excluded). Definition order makes the choice
// deterministic for a given source. Returns a *LoadError wrapping
// ErrSyntaxInvalid, ErrConstructionFailed, or ErrNoEntryPoint when the
// source cannot yield a callable.
func Load(ctx context.Context, runner sandbox.Runner, source string) (*Unit, error) {
	if runner == nil {
		return nil, errors.New("solution: nil sandbox runner")
	}
	if ctx == nil {
		return nil, errors.New("solution: nil context")
	}
	if strings.TrimSpace(source) == "" {
		return nil, errors.New("solution: empty source")
	}

	out, err := runner.RunProgram(ctx, probeProgram(source))
	if err != nil {
		var exit *sandbox.ExitError
		if errors.As(err, &exit) {
			// The probe itself never exits non-zero; this is the
			// interpreter dying underneath it.
			return nil, fmt.Errorf("solution: probe failed: %w", err)
		}
		return nil, err
	}

	payload, ok := afterMarker(out, probeMarker)
	if !ok {
		return nil, errors.New("solution: probe produced no report")
	}

	var report probeReport
	if err := json.Unmarshal([]byte(firstLine(payload)), &report); err != nil {
		return nil, fmt.Errorf("solution: parse probe report: %w", err)
	}

	switch report.Error {
	case "":
	case "syntax", "load":
		return nil, &LoadError{Reason: ErrSyntaxInvalid, Detail: report.Message}
	case "construction":
		return nil, &LoadError{Reason: ErrConstructionFailed, Detail: report.Message}
	case "no_entry":
		return nil, &LoadError{Reason: ErrNoEntryPoint, Detail: report.Message}
	default:
		return nil, fmt.Errorf("solution: unknown probe error %q: %s", report.Error, report.Message)
	}

	if strings.TrimSpace(report.Entry) == "" {
		return nil, errors.New("solution: probe report missing entry")
	}

	return &Unit{
		Source: source,
		Entry:  report.Entry,
		Method: report.Kind == "method",
	}, nil
}

// DriverProgram builds the per-case program that invokes the entry point
// with the given (already validated) literal arguments and prints the
// result's repr behind the result marker.
func (u *Unit) DriverProgram(args []literal.Value) string {
	rendered := make([]string, 0, len(args))
	for _, a := range args {
		rendered = append(rendered, a.Render())
	}
	argTuple := "(" + strings.Join(rendered, ", ")
	if len(args) == 1 {
		argTuple += ","
	}
	argTuple += ")"

	var sb strings.Builder
	sb.WriteString("import sys\n")
	sb.WriteString("_ns = {}\n")
	fmt.Fprintf(&sb, "exec(compile(%s, \"<solution>\", \"exec\"), _ns)\n", literal.Quote(u.Source))
	if u.Method {
		fmt.Fprintf(&sb, "_fn = getattr(_ns[\"Solution\"](), %s)\n", literal.Quote(u.Entry))
	} else {
		fmt.Fprintf(&sb, "_fn = _ns[%s]\n", literal.Quote(u.Entry))
	}
	fmt.Fprintf(&sb, "_result = _fn(*%s)\n", argTuple)
	fmt.Fprintf(&sb, "sys.stdout.write(\"\\n%s\" + repr(_result))\n", resultMarker)
	return sb.String()
}

// probeProgram compiles the source, instantiates a Solution class when one
// exists, and prints a single JSON report. All failure paths exit 0 so the
// caller can tell load diagnostics apart from sandbox faults.
func probeProgram(source string) string {
	var sb strings.Builder
	sb.WriteString("import json\nimport sys\n\n")
	fmt.Fprintf(&sb, "_src = %s\n", literal.Quote(source))
	sb.WriteString(`
def _report(payload):
    sys.stdout.write("\n` + probeMarker + `" + json.dumps(payload) + "\n")
    sys.exit(0)

try:
    _code = compile(_src, "<solution>", "exec")
except SyntaxError as e:
    _report({"error": "syntax", "message": str(e)})

_ns = {}
try:
    exec(_code, _ns)
except Exception as e:
    _report({"error": "load", "message": str(e)})

_cls = _ns.get("Solution")
if isinstance(_cls, type):
    try:
        _inst = _cls()
    except Exception as e:
        _report({"error": "construction", "message": str(e)})
    for _name in ` + pyStringList(methodPreference) + `:
        if callable(getattr(_inst, _name, None)):
            _report({"entry": _name, "kind": "method"})
    _report({"error": "no_entry", "message": "no suitable method found in Solution class"})

for _name, _obj in _ns.items():
    if _name.startswith("_") or _name == "test_cases":
        continue
    if callable(_obj):
        _report({"entry": _name, "kind": "function"})

_report({"error": "no_entry", "message": "no solution function or class found"})
`)
	return sb.String()
}

func pyStringList(names []string) string {
	quoted := make([]string, 0, len(names))
	for _, n := range names {
		quoted = append(quoted, literal.Quote(n))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// afterMarker returns the text following the last occurrence of marker.
func afterMarker(out, marker string) (string, bool) {
	idx := strings.LastIndex(out, marker)
	if idx < 0 {
		return "", false
	}
	return strings.TrimSpace(out[idx+len(marker):]), true
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// ResultMarker exposes the sentinel used by DriverProgram output.
func ResultMarker() string { return resultMarker }

// ProbeMarker exposes the sentinel used by the probe report.
func ProbeMarker() string { return probeMarker }

// ParseDriverOutput extracts the repr text from driver stdout.
func ParseDriverOutput(out string) (string, error) {
	payload, ok := afterMarker(out, resultMarker)
	if !ok {
		return "", errors.New("solution: driver produced no result")
	}
	return payload, nil
}
