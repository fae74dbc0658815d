package literal

import "strings"

// SplitTop splits src at commas that sit outside every bracket pair and
// string literal. Unlike a plain strings.Split, nested composite literals
// such as ([1, 2], 3) survive intact. Unbalanced input is split
// best-effort; the parser rejects it later if it matters.
func SplitTop(src string) []string {
	var (
		parts []string
		depth int
		quote byte
		start int
	)

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
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(src[start:i]))
				start = i + 1
			}
		}
	}

	if tail := strings.TrimSpace(src[start:]); tail != "" {
		parts = append(parts, tail)
	}
	return parts
}
