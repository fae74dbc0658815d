package extract

import "testing"

func TestTestCases_ListLiteral(t *testing.T) {
	t.Parallel()

	in := "```python\ntest_cases = [(2, 3, 5), (0, 0, 0)]\n```"
	got := TestCases(in)
	want := []TestCase{
		{Input: "(2, 3)", Expected: "5"},
		{Input: "(0, 0)", Expected: "0"},
	}
	assertCases(t, got, want)
}

func TestTestCases_ListLiteralNested(t *testing.T) {
	t.Parallel()

	// Nested composite literals must survive the split.
	in := "```python\ntest_cases = [\n    ([2, 7, 11, 15], 9, [0, 1]),\n    ([3, 3], 6, [0, 1]),\n]\n```"
	got := TestCases(in)
	want := []TestCase{
		{Input: "([2, 7, 11, 15], 9)", Expected: "[0, 1]"},
		{Input: "([3, 3], 6)", Expected: "[0, 1]"},
	}
	assertCases(t, got, want)
}

func TestTestCases_AnnotatedPrints(t *testing.T) {
	t.Parallel()

	in := "Test it like this:\n```python\n# Input: [2, 7, 11, 15], 9\n# Expected Output: [0, 1]\nprint(twoSum([2, 7, 11, 15], 9))\n\n# Input: [3, 3], 6\n# Expected Output: [0, 1]\nprint(twoSum([3, 3], 6))\n```"
	got := TestCases(in)
	want := []TestCase{
		{Input: "[2, 7, 11, 15], 9", Expected: "[0, 1]"},
		{Input: "[3, 3], 6", Expected: "[0, 1]"},
	}
	assertCases(t, got, want)
}

func TestTestCases_Asserts(t *testing.T) {
	t.Parallel()

	in := "assert add(2, 2) == 5\nassert add(0, 0) == 0, \"zero case\"\nassert nested(([1, 2], 3)) == [1, 2, 3]"
	got := TestCases(in)
	want := []TestCase{
		{Input: "(2, 2)", Expected: "5"},
		{Input: "(0, 0)", Expected: "0"},
		{Input: "([1, 2], 3)", Expected: "[1, 2, 3]"},
	}
	assertCases(t, got, want)
}

func TestTestCases_StrategyPrecedence(t *testing.T) {
	t.Parallel()

	// A list literal shadows asserts in the same response; strategies are
	// never merged.
	in := "```python\ntest_cases = [(1, 2, 3)]\n```\nassert add(9, 9) == 18"
	got := TestCases(in)
	want := []TestCase{{Input: "(1, 2)", Expected: "3"}}
	assertCases(t, got, want)
}

func TestTestCases_Nothing(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "no cases here", "```python\nx = 1\n```"} {
		if got := TestCases(in); len(got) != 0 {
			t.Fatalf("TestCases(%q): got %#v want empty", in, got)
		}
	}
}

func TestTestCases_DuplicatesPreserved(t *testing.T) {
	t.Parallel()

	in := "```python\ntest_cases = [(1, 1, 2), (1, 1, 2)]\n```"
	got := TestCases(in)
	want := []TestCase{
		{Input: "(1, 1)", Expected: "2"},
		{Input: "(1, 1)", Expected: "2"},
	}
	assertCases(t, got, want)
}

func assertCases(t *testing.T, got, want []TestCase) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("cases: got %#v want %#v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cases[%d]: got %+v want %+v", i, got[i], want[i])
		}
	}
}
