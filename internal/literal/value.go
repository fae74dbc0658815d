// Package literal parses and compares values from a restricted Python
// literal grammar: numbers, strings, booleans, None, lists, tuples, and
// dicts. Test-case input and expected expressions are validated against
// this grammar before anything is handed to an interpreter, so arbitrary
// expressions never reach evaluation.
package literal

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the type of a parsed literal value.
type Kind int

const (
	None Kind = iota
	Bool
	Int
	Float
	String
	List
	Tuple
	Dict
)

func (k Kind) String() string {
	switch k {
	case None:
		return "None"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "str"
	case List:
		return "list"
	case Tuple:
		return "tuple"
	case Dict:
		return "dict"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Entry is a single dict key/value pair. Entries keep source order but
// compare order-insensitively.
type Entry struct {
	Key Value
	Val Value
}

// Value is a parsed literal. Exactly one payload field is meaningful,
// selected by Kind.
type Value struct {
	Kind    Kind
	Bool    bool
	Int     int64
	Float   float64
	Str     string
	Items   []Value // List and Tuple
	Entries []Entry // Dict
}

// Equal reports Python value equality: numeric kinds (bool, int, float)
// compare numerically, tuples never equal lists, dicts compare
// order-insensitively.
func (v Value) Equal(o Value) bool {
	if vn, ok := v.number(); ok {
		on, ok := o.number()
		return ok && vn == on
	}

	switch v.Kind {
	case None:
		return o.Kind == None
	case String:
		return o.Kind == String && v.Str == o.Str
	case List, Tuple:
		if o.Kind != v.Kind || len(o.Items) != len(v.Items) {
			return false
		}
		for i := range v.Items {
			if !v.Items[i].Equal(o.Items[i]) {
				return false
			}
		}
		return true
	case Dict:
		if o.Kind != Dict || len(o.Entries) != len(v.Entries) {
			return false
		}
		for _, e := range v.Entries {
			found := false
			for _, oe := range o.Entries {
				if e.Key.Equal(oe.Key) {
					found = e.Val.Equal(oe.Val)
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// number maps bool/int/float onto a common numeric axis, as Python does
// (True == 1, 5 == 5.0).
func (v Value) number() (float64, bool) {
	switch v.Kind {
	case Bool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	case Int:
		return float64(v.Int), true
	case Float:
		return v.Float, true
	default:
		return 0, false
	}
}

// Render writes the value back as canonical Python source. Only values
// that came through Parse are ever rendered, so the output is guaranteed
// to stay inside the literal grammar.
func (v Value) Render() string {
	var sb strings.Builder
	v.render(&sb)
	return sb.String()
}

// String returns the rendered form, for report transcripts.
func (v Value) String() string { return v.Render() }

func (v Value) render(sb *strings.Builder) {
	switch v.Kind {
	case None:
		sb.WriteString("None")
	case Bool:
		if v.Bool {
			sb.WriteString("True")
		} else {
			sb.WriteString("False")
		}
	case Int:
		sb.WriteString(strconv.FormatInt(v.Int, 10))
	case Float:
		s := strconv.FormatFloat(v.Float, 'g', -1, 64)
		// Keep float-ness visible so round-tripping preserves the type.
		if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "inf") && !strings.Contains(s, "NaN") {
			s += ".0"
		}
		sb.WriteString(s)
	case String:
		sb.WriteString(Quote(v.Str))
	case List:
		sb.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				sb.WriteString(", ")
			}
			item.render(sb)
		}
		sb.WriteByte(']')
	case Tuple:
		sb.WriteByte('(')
		for i, item := range v.Items {
			if i > 0 {
				sb.WriteString(", ")
			}
			item.render(sb)
		}
		if len(v.Items) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	case Dict:
		sb.WriteByte('{')
		for i, e := range v.Entries {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.Key.render(sb)
			sb.WriteString(": ")
			e.Val.render(sb)
		}
		sb.WriteByte('}')
	}
}

// Quote double-quotes s with escapes valid in both Go and Python. The
// solution loader uses it to embed untrusted source as an inert Python
// string literal.
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&sb, `\x%02x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
