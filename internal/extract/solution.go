// Package extract recovers a code solution and test cases from free-form
// model output. Model text is untrusted and only loosely structured, so
// every extractor is a best-effort pass with layered fallbacks; a miss
// produces an empty result, never an error.
package extract

import (
	"regexp"
	"strings"
)

var (
	fencedBlockRe = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*[ \t]*\r?\n(.*?)```")
	mainGuardRe   = regexp.MustCompile(`(?m)^[ \t]*if\s+__name__\s*==\s*['"]__main__['"]\s*:`)
	defSigRe      = regexp.MustCompile(`(?m)^[ \t]*def\s+\w+\s*\(`)
)

// Solution extracts solution source from a model response.
//
// Priority: the first fenced code block, truncated before a __main__ guard;
// else everything from the first function signature to the end of the text;
// else the empty string. Empty is a valid terminal result, not a failure;
// callers must check before loading.
func Solution(response string) string {
	if m := fencedBlockRe.FindStringSubmatch(response); m != nil {
		return stripMainGuard(m[1])
	}
	if loc := defSigRe.FindStringIndex(response); loc != nil {
		return stripMainGuard(response[loc[0]:])
	}
	return ""
}

// stripMainGuard drops the script entry point and everything after it,
// keeping only the library-usable portion.
func stripMainGuard(src string) string {
	if loc := mainGuardRe.FindStringIndex(src); loc != nil {
		src = src[:loc[0]]
	}
	return strings.TrimSpace(src)
}
