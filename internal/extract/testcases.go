package extract

import (
	"regexp"
	"strings"

	"github.com/stellarlinkco/code-solver/internal/literal"
)

// TestCase pairs two unevaluated source expressions. Both are validated
// against the literal grammar only when the case is run.
type TestCase struct {
	Input    string // positional arguments, usually tuple-shaped
	Expected string // expected return value
}

var (
	testCasesAssignRe = regexp.MustCompile(`test_cases\s*=\s*\[`)
	inputCommentRe    = regexp.MustCompile(`^\s*#\s*Input:\s*(.+?)\s*$`)
	expectedCommentRe = regexp.MustCompile(`^\s*#\s*Expected Output:\s*(.+?)\s*$`)
	printCallRe       = regexp.MustCompile(`^\s*print\s*\(`)
	assertHeadRe      = regexp.MustCompile(`^\s*assert\s+(\w+)\s*\(`)
)

// TestCases extracts ordered test cases from a model response using three
// fallback strategies: a test_cases list literal inside a fenced block,
// Input/Expected Output comment pairs annotating print calls, and assert
// statements. The first strategy that yields anything wins; results are
// never merged across strategies. No match yields an empty slice.
func TestCases(response string) []TestCase {
	if cases := fromListLiteral(response); len(cases) > 0 {
		return cases
	}
	if cases := fromAnnotatedPrints(response); len(cases) > 0 {
		return cases
	}
	return fromAsserts(response)
}

// fromListLiteral scans fenced code blocks for a test_cases list of tuples.
// Each tuple (a, b, ..., expected) becomes one case with all but the last
// element as the argument tuple. Elements are split with a depth-aware
// tokenizer so nested composite literals survive.
func fromListLiteral(response string) []TestCase {
	var out []TestCase
	for _, m := range fencedBlockRe.FindAllStringSubmatch(response, -1) {
		block := m[1]
		loc := testCasesAssignRe.FindStringIndex(block)
		if loc == nil {
			continue
		}
		body, ok := bracketBody(block[loc[1]-1:])
		if !ok {
			continue
		}
		for _, elem := range literal.SplitTop(body) {
			elem = strings.TrimSpace(elem)
			if !strings.HasPrefix(elem, "(") || !strings.HasSuffix(elem, ")") {
				continue
			}
			parts := literal.SplitTop(elem[1 : len(elem)-1])
			if len(parts) < 2 {
				continue
			}
			out = append(out, TestCase{
				Input:    "(" + strings.Join(parts[:len(parts)-1], ", ") + ")",
				Expected: parts[len(parts)-1],
			})
		}
	}
	return out
}

// bracketBody returns the contents of the bracket pair opening at src[0].
func bracketBody(src string) (string, bool) {
	depth := 0
	var quote byte
	for i := 0; i < len(src); i++ {
		c := src[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
			if depth == 0 {
				return src[1:i], true
			}
		}
	}
	return "", false
}

// fromAnnotatedPrints matches the conventional annotation form:
//
//	# Input: [2, 7, 11, 15], 9
//	# Expected Output: [0, 1]
//	print(twoSum([2, 7, 11, 15], 9))
func fromAnnotatedPrints(response string) []TestCase {
	lines := strings.Split(response, "\n")
	var out []TestCase
	for i := 0; i+1 < len(lines); i++ {
		in := inputCommentRe.FindStringSubmatch(lines[i])
		if in == nil {
			continue
		}
		exp := expectedCommentRe.FindStringSubmatch(lines[i+1])
		if exp == nil {
			continue
		}
		if !followedByPrint(lines, i+2) {
			continue
		}
		out = append(out, TestCase{Input: in[1], Expected: exp[1]})
	}
	return out
}

func followedByPrint(lines []string, from int) bool {
	for i := from; i < len(lines); i++ {
		s := strings.TrimSpace(lines[i])
		if s == "" {
			continue
		}
		return printCallRe.MatchString(lines[i])
	}
	return false
}

// fromAsserts matches assert statements of the shape
// `assert name(args) == expected[, "message"]`, one case per statement.
// The message suffix is discarded.
func fromAsserts(response string) []TestCase {
	var out []TestCase
	for _, line := range strings.Split(response, "\n") {
		head := assertHeadRe.FindStringIndex(line)
		if head == nil {
			continue
		}
		args, rest, ok := callArgs(line[head[1]-1:])
		if !ok {
			continue
		}
		rest = strings.TrimSpace(rest)
		if !strings.HasPrefix(rest, "==") {
			continue
		}
		expected := stripAssertMessage(strings.TrimSpace(rest[2:]))
		if expected == "" {
			continue
		}

		input := strings.TrimSpace(args)
		if !(strings.HasPrefix(input, "(") && strings.HasSuffix(input, ")")) {
			input = "(" + input + ")"
		}
		out = append(out, TestCase{Input: input, Expected: expected})
	}
	return out
}

// callArgs returns the argument text of the call whose opening paren is at
// src[0], plus the remainder of the line after the closing paren.
func callArgs(src string) (args string, rest string, ok bool) {
	body, found := bracketBody(src)
	if !found {
		return "", "", false
	}
	return body, src[len(body)+2:], true
}

// stripAssertMessage removes a trailing string message from the right-hand
// side of an assert comparison.
func stripAssertMessage(rhs string) string {
	parts := literal.SplitTop(rhs)
	if len(parts) < 2 {
		return strings.TrimSpace(rhs)
	}
	last := strings.TrimSpace(parts[len(parts)-1])
	if strings.HasPrefix(last, `"`) || strings.HasPrefix(last, `'`) {
		return strings.TrimSpace(strings.Join(parts[:len(parts)-1], ", "))
	}
	return strings.TrimSpace(rhs)
}
