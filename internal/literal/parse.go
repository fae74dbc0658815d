package literal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrEmpty is returned for blank input.
var ErrEmpty = errors.New("literal: empty expression")

// Parse evaluates src against the restricted Python literal grammar and
// returns the resulting value. Anything outside the grammar (names, calls,
// operators other than a numeric sign) is an error.
func Parse(src string) (Value, error) {
	p := &parser{src: src}
	p.skipSpace()
	if p.pos >= len(p.src) {
		return Value{}, ErrEmpty
	}
	v, err := p.value()
	if err != nil {
		return Value{}, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return Value{}, fmt.Errorf("literal: trailing input at offset %d: %q", p.pos, rest(p.src, p.pos))
	}
	return v, nil
}

func rest(s string, pos int) string {
	r := s[pos:]
	if len(r) > 20 {
		r = r[:20] + "..."
	}
	return r
}

type parser struct {
	src string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) value() (Value, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return Value{}, fmt.Errorf("literal: unexpected end of input")
	}

	switch c := p.src[p.pos]; {
	case c == '[':
		return p.sequence(']', List)
	case c == '(':
		return p.tuple()
	case c == '{':
		return p.dict()
	case c == '\'' || c == '"':
		return p.string()
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	default:
		return p.word()
	}
}

func (p *parser) word() (Value, error) {
	start := p.pos
	for p.pos < len(p.src) && isWordByte(p.src[p.pos]) {
		p.pos++
	}
	switch w := p.src[start:p.pos]; w {
	case "None":
		return Value{Kind: None}, nil
	case "True":
		return Value{Kind: Bool, Bool: true}, nil
	case "False":
		return Value{Kind: Bool, Bool: false}, nil
	case "":
		return Value{}, fmt.Errorf("literal: unexpected character %q at offset %d", p.src[p.pos], p.pos)
	default:
		return Value{}, fmt.Errorf("literal: name %q is not a literal", w)
	}
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *parser) number() (Value, error) {
	start := p.pos
	if c := p.src[p.pos]; c == '-' || c == '+' {
		p.pos++
	}
	seenDot, seenExp := false, false
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c >= '0' && c <= '9' || c == '_':
			p.pos++
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
			p.pos++
		case (c == 'e' || c == 'E') && !seenExp:
			seenExp = true
			p.pos++
			if p.pos < len(p.src) && (p.src[p.pos] == '-' || p.src[p.pos] == '+') {
				p.pos++
			}
		default:
			goto done
		}
	}
done:
	tok := strings.ReplaceAll(p.src[start:p.pos], "_", "")
	if tok == "" || tok == "-" || tok == "+" {
		return Value{}, fmt.Errorf("literal: malformed number at offset %d", start)
	}
	if !seenDot && !seenExp {
		if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
			return Value{Kind: Int, Int: n}, nil
		}
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return Value{}, fmt.Errorf("literal: malformed number %q", tok)
	}
	return Value{Kind: Float, Float: f}, nil
}

func (p *parser) string() (Value, error) {
	quote := p.src[p.pos]
	p.pos++
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case quote:
			p.pos++
			return Value{Kind: String, Str: sb.String()}, nil
		case '\\':
			p.pos++
			if err := p.escape(&sb); err != nil {
				return Value{}, err
			}
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			sb.WriteRune(r)
			p.pos += size
		}
	}
	return Value{}, errors.New("literal: unterminated string")
}

func (p *parser) escape(sb *strings.Builder) error {
	if p.pos >= len(p.src) {
		return errors.New("literal: unterminated escape")
	}
	c := p.src[p.pos]
	p.pos++
	switch c {
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case '0':
		sb.WriteByte(0)
	case '\\', '\'', '"':
		sb.WriteByte(c)
	case 'x':
		return p.hexEscape(sb, 2)
	case 'u':
		return p.hexEscape(sb, 4)
	case 'U':
		return p.hexEscape(sb, 8)
	default:
		// Python leaves unknown escapes intact.
		sb.WriteByte('\\')
		sb.WriteByte(c)
	}
	return nil
}

func (p *parser) hexEscape(sb *strings.Builder, width int) error {
	if p.pos+width > len(p.src) {
		return errors.New("literal: truncated hex escape")
	}
	n, err := strconv.ParseUint(p.src[p.pos:p.pos+width], 16, 32)
	if err != nil {
		return fmt.Errorf("literal: bad hex escape: %w", err)
	}
	p.pos += width
	sb.WriteRune(rune(n))
	return nil
}

func (p *parser) sequence(close byte, kind Kind) (Value, error) {
	p.pos++ // opening bracket
	out := Value{Kind: kind}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return Value{}, fmt.Errorf("literal: missing %q", string(close))
		}
		if p.src[p.pos] == close {
			p.pos++
			return out, nil
		}
		item, err := p.value()
		if err != nil {
			return Value{}, err
		}
		out.Items = append(out.Items, item)
		if err := p.listSep(close); err != nil {
			return Value{}, err
		}
	}
}

// listSep consumes an optional comma. A missing comma is only legal right
// before the closing bracket.
func (p *parser) listSep(close byte) error {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return fmt.Errorf("literal: missing %q", string(close))
	}
	switch p.src[p.pos] {
	case ',':
		p.pos++
		return nil
	case close:
		return nil
	default:
		return fmt.Errorf("literal: expected ',' or %q at offset %d", string(close), p.pos)
	}
}

func (p *parser) tuple() (Value, error) {
	p.pos++ // '('
	out := Value{Kind: Tuple}
	sawComma := false
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return Value{}, errors.New("literal: missing ')'")
		}
		if p.src[p.pos] == ')' {
			p.pos++
			// One element without a trailing comma is plain grouping.
			if len(out.Items) == 1 && !sawComma {
				return out.Items[0], nil
			}
			return out, nil
		}
		item, err := p.value()
		if err != nil {
			return Value{}, err
		}
		out.Items = append(out.Items, item)
		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == ',' {
			sawComma = true
			p.pos++
			continue
		}
		if p.pos < len(p.src) && p.src[p.pos] == ')' {
			continue
		}
		return Value{}, fmt.Errorf("literal: expected ',' or ')' at offset %d", p.pos)
	}
}

func (p *parser) dict() (Value, error) {
	p.pos++ // '{'
	out := Value{Kind: Dict}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return Value{}, errors.New("literal: missing '}'")
		}
		if p.src[p.pos] == '}' {
			p.pos++
			return out, nil
		}
		key, err := p.value()
		if err != nil {
			return Value{}, err
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != ':' {
			return Value{}, fmt.Errorf("literal: expected ':' at offset %d", p.pos)
		}
		p.pos++
		val, err := p.value()
		if err != nil {
			return Value{}, err
		}
		out.Entries = append(out.Entries, Entry{Key: key, Val: val})
		if err := p.listSep('}'); err != nil {
			return Value{}, err
		}
	}
}
