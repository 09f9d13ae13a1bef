package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/go-json-experiment/json/jsontext"
)

var errUnterminated = errors.New("unterminated object literal")

// jsObjectToJSON rewrites the JavaScript object literal at the start of src
// into JSON. Besides JSON it accepts identifier and numeric keys, single
// quoted strings, trailing commas, comments, undefined, hex numbers and
// numbers with a bare leading or trailing dot. Scanning stops at the brace
// closing the literal; whatever follows is ignored.
func jsObjectToJSON(src string) (jsontext.Value, error) {
	s := &jsScanner{src: src}
	s.skipSpace()
	if s.pos >= len(s.src) || s.src[s.pos] != '{' {
		return nil, errors.New("value is not an object literal")
	}

	var (
		out       bytes.Buffer
		stack     []byte
		expectKey bool
	)
	for {
		s.skipSpace()
		if s.pos >= len(s.src) {
			return nil, errUnterminated
		}
		c := s.src[s.pos]
		switch {
		case c == '{' || c == '[':
			out.WriteByte(c)
			stack = append(stack, c)
			expectKey = c == '{'
			s.pos++
		case c == '}' || c == ']':
			open := byte('{')
			if c == ']' {
				open = '['
			}
			if len(stack) == 0 || stack[len(stack)-1] != open {
				return nil, fmt.Errorf("unexpected %q at offset %d", c, s.pos)
			}
			if b := out.Bytes(); len(b) > 0 && b[len(b)-1] == ',' {
				out.Truncate(len(b) - 1)
			}
			out.WriteByte(c)
			stack = stack[:len(stack)-1]
			s.pos++
			if len(stack) == 0 {
				return jsontext.Value(out.Bytes()), nil
			}
			expectKey = false
		case c == ',':
			out.WriteByte(c)
			expectKey = stack[len(stack)-1] == '{'
			s.pos++
		case c == ':':
			out.WriteByte(c)
			expectKey = false
			s.pos++
		case c == '"' || c == '\'':
			str, err := s.readString()
			if err != nil {
				return nil, err
			}
			// Invalid UTF-8 comes back replaced alongside an error.
			quoted, _ := jsontext.AppendQuote(nil, str)
			out.Write(quoted)
		case isIdentStart(c):
			word := s.readWhile(isIdentPart)
			switch {
			case expectKey:
				out.WriteString(strconv.Quote(word))
			case word == "true" || word == "false" || word == "null":
				out.WriteString(word)
			case word == "undefined":
				out.WriteString("null")
			default:
				return nil, fmt.Errorf("unsupported value %q at offset %d", word, s.pos-len(word))
			}
		case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
			num, err := jsNumber(s.readWhile(isNumberPart))
			if err != nil {
				return nil, err
			}
			if expectKey {
				num = strconv.Quote(num)
			}
			out.WriteString(num)
		default:
			return nil, fmt.Errorf("unexpected %q at offset %d", c, s.pos)
		}
	}
}

type jsScanner struct {
	src string
	pos int
}

// skipSpace skips whitespace and comments.
func (s *jsScanner) skipSpace() {
	for s.pos < len(s.src) {
		switch {
		case strings.ContainsRune(" \t\r\n\f\v", rune(s.src[s.pos])):
			s.pos++
		case strings.HasPrefix(s.src[s.pos:], "//"):
			end := strings.IndexByte(s.src[s.pos:], '\n')
			if end < 0 {
				s.pos = len(s.src)
				return
			}
			s.pos += end + 1
		case strings.HasPrefix(s.src[s.pos:], "/*"):
			end := strings.Index(s.src[s.pos+2:], "*/")
			if end < 0 {
				s.pos = len(s.src)
				return
			}
			s.pos += end + 4
		default:
			return
		}
	}
}

func (s *jsScanner) readWhile(ok func(byte) bool) string {
	start := s.pos
	for s.pos < len(s.src) && ok(s.src[s.pos]) {
		s.pos++
	}
	return s.src[start:s.pos]
}

// readString reads a single or double quoted string and resolves its escapes.
func (s *jsScanner) readString() (string, error) {
	quote := s.src[s.pos]
	s.pos++
	var b strings.Builder
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == quote:
			s.pos++
			return b.String(), nil
		case c == '\n':
			return "", fmt.Errorf("newline in string at offset %d", s.pos)
		case c == '\\':
			if err := s.readEscape(&b); err != nil {
				return "", err
			}
		default:
			b.WriteByte(c)
			s.pos++
		}
	}
	return "", errors.New("unterminated string")
}

func (s *jsScanner) readEscape(b *strings.Builder) error {
	s.pos++ // backslash
	if s.pos >= len(s.src) {
		return errors.New("unterminated string")
	}
	c := s.src[s.pos]
	s.pos++
	switch c {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case '0':
		b.WriteByte(0)
	case '\n':
		// line continuation
	case 'x':
		r, err := s.readHex(2)
		if err != nil {
			return err
		}
		b.WriteRune(r)
	case 'u':
		r, err := s.readHex(4)
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) && strings.HasPrefix(s.src[s.pos:], `\u`) {
			save := s.pos
			s.pos += 2
			low, err := s.readHex(4)
			if err == nil {
				if pair := utf16.DecodeRune(r, low); pair != utf8.RuneError {
					b.WriteRune(pair)
					return nil
				}
			}
			s.pos = save
		}
		b.WriteRune(r)
	default:
		b.WriteByte(c)
	}
	return nil
}

func (s *jsScanner) readHex(n int) (rune, error) {
	if s.pos+n > len(s.src) {
		return 0, errors.New("short escape sequence")
	}
	v, err := strconv.ParseUint(s.src[s.pos:s.pos+n], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("bad escape sequence at offset %d", s.pos)
	}
	s.pos += n
	return rune(v), nil
}

// jsNumber converts a JavaScript numeric literal to JSON number text.
func jsNumber(raw string) (string, error) {
	text := strings.TrimPrefix(raw, "+")
	neg := strings.HasPrefix(text, "-")
	digits := strings.TrimPrefix(text, "-")
	lower := strings.ToLower(digits)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0o") || strings.HasPrefix(lower, "0b") {
		v, err := strconv.ParseInt(digits, 0, 64)
		if err != nil {
			return "", fmt.Errorf("bad number %q", raw)
		}
		if neg {
			v = -v
		}
		return strconv.FormatInt(v, 10), nil
	}
	if _, err := strconv.ParseFloat(text, 64); err != nil {
		return "", fmt.Errorf("bad number %q", raw)
	}
	if strings.HasPrefix(digits, ".") {
		digits = "0" + digits
	}
	digits = strings.Replace(digits, ".e", ".0e", 1)
	digits = strings.Replace(digits, ".E", ".0E", 1)
	if strings.HasSuffix(digits, ".") {
		digits += "0"
	}
	if neg {
		return "-" + digits, nil
	}
	return digits, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isNumberPart(c byte) bool {
	return isIdentPart(c) || c == '.' || c == '+' || c == '-'
}
