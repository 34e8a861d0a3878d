package extract

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// TJ adjustments beyond this many thousandths of an em are rendered as a word gap.
const wordGapThreshold = -200

// PDF reads the document with pdfcpu and collects the text shown by each
// page's content stream. Glyphs in fonts with custom encodings may not map
// back to readable text.
func PDF(data []byte) (*Result, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: pdf read: %w", ErrMalformed, err)
	}

	var sb strings.Builder
	for page := 1; page <= ctx.PageCount; page++ {
		text := pageText(ctx, page)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	}

	return &Result{Text: sb.String(), Pages: ctx.PageCount}, nil
}

func pageText(ctx *model.Context, page int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, page)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return normalizeSpace(contentText(data))
}

// operand is a pending text-showing operand: a string or, inside a TJ array, a kerning number.
type operand struct {
	text  string
	num   float64
	isNum bool
}

// contentText interprets the text operators of a content stream:
// Tj, TJ, ' and " show text; Td, TD, T* and ET break words or lines.
func contentText(data []byte) string {
	var (
		sb       strings.Builder
		operands []operand
		depth    int
	)

	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case c == '%':
			for i < len(data) && data[i] != '\n' && data[i] != '\r' {
				i++
			}
		case c == '(':
			s, n := readLiteral(data[i:])
			operands = append(operands, operand{text: s})
			i += n
		case c == '<' && i+1 < len(data) && data[i+1] == '<':
			i += 2
		case c == '>' && i+1 < len(data) && data[i+1] == '>':
			i += 2
		case c == '<':
			s, n := readHex(data[i:])
			operands = append(operands, operand{text: s})
			i += n
		case c == '[':
			depth++
			i++
		case c == ']':
			depth = max(depth-1, 0)
			i++
		case isPDFSpace(c) || isPDFDelimiter(c):
			i++
		default:
			start := i
			for i < len(data) && !isPDFSpace(data[i]) && !isPDFDelimiter(data[i]) {
				i++
			}
			tok := string(data[start:i])

			if n, err := strconv.ParseFloat(tok, 64); err == nil {
				if depth > 0 {
					operands = append(operands, operand{num: n, isNum: true})
				}
				continue
			}
			if strings.HasPrefix(tok, "/") {
				continue
			}

			applyOperator(&sb, tok, operands)
			operands = operands[:0]
		}
	}

	return sb.String()
}

func applyOperator(sb *strings.Builder, op string, operands []operand) {
	switch op {
	case "Tj", "TJ":
		for _, o := range operands {
			if o.isNum {
				if o.num < wordGapThreshold {
					sb.WriteByte(' ')
				}
				continue
			}
			sb.WriteString(o.text)
		}
	case "'", "\"":
		sb.WriteByte('\n')
		for _, o := range operands {
			if !o.isNum {
				sb.WriteString(o.text)
			}
		}
	case "Td", "TD", "T*", "ET":
		sb.WriteByte(' ')
	}
}

// readLiteral decodes a balanced (...) string starting at data[0]
// and returns the text and the number of bytes consumed.
func readLiteral(data []byte) (string, int) {
	var out []byte
	depth := 0
	i := 0

	for i < len(data) {
		c := data[i]
		switch c {
		case '(':
			if depth > 0 {
				out = append(out, c)
			}
			depth++
			i++
		case ')':
			depth--
			i++
			if depth == 0 {
				return decodePDFBytes(out), i
			}
			out = append(out, c)
		case '\\':
			b, n := readEscape(data[i+1:])
			if n > 0 && b >= 0 {
				out = append(out, byte(b))
			}
			i += 1 + n
		default:
			out = append(out, c)
			i++
		}
	}

	return decodePDFBytes(out), i
}

// readEscape decodes the escape sequence following a backslash.
// It returns -1 for a line continuation.
func readEscape(data []byte) (int, int) {
	if len(data) == 0 {
		return -1, 0
	}

	switch c := data[0]; c {
	case 'n':
		return '\n', 1
	case 'r':
		return '\r', 1
	case 't':
		return '\t', 1
	case 'b':
		return '\b', 1
	case 'f':
		return '\f', 1
	case '\r':
		if len(data) > 1 && data[1] == '\n' {
			return -1, 2
		}
		return -1, 1
	case '\n':
		return -1, 1
	default:
		if c < '0' || c > '7' {
			return int(c), 1
		}
		val, n := 0, 0
		for n < 3 && n < len(data) && data[n] >= '0' && data[n] <= '7' {
			val = val*8 + int(data[n]-'0')
			n++
		}
		return val & 0xff, n
	}
}

// readHex decodes a <...> hex string starting at data[0].
func readHex(data []byte) (string, int) {
	end := bytes.IndexByte(data, '>')
	if end < 0 {
		return "", len(data)
	}

	digits := make([]byte, 0, end)
	for _, c := range data[1:end] {
		if !isPDFSpace(c) {
			digits = append(digits, c)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	raw := make([]byte, len(digits)/2)
	if _, err := hex.Decode(raw, digits); err != nil {
		return "", end + 1
	}
	return decodePDFBytes(raw), end + 1
}

// decodePDFBytes treats strings with a UTF-16BE byte order mark as UTF-16
// and everything else as single-byte text.
func decodePDFBytes(b []byte) string {
	if len(b) >= 2 && b[0] == 0xfe && b[1] == 0xff {
		units := make([]uint16, 0, (len(b)-2)/2)
		for i := 2; i+1 < len(b); i += 2 {
			units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
		}
		return string(utf16.Decode(units))
	}

	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

// normalizeSpace collapses whitespace runs to single spaces, keeps line breaks,
// and drops non-printable runes.
func normalizeSpace(text string) string {
	var sb strings.Builder
	pending := rune(0)

	for _, r := range text {
		switch {
		case r == '\n':
			pending = '\n'
		case unicode.IsSpace(r):
			if pending == 0 {
				pending = ' '
			}
		case unicode.IsPrint(r):
			if pending != 0 && sb.Len() > 0 {
				sb.WriteRune(pending)
			}
			pending = 0
			sb.WriteRune(r)
		}
	}

	return sb.String()
}

func isPDFSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', 0:
		return true
	}
	return false
}

func isPDFDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}
