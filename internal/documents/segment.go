package documents

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxSectionLength bounds the rune length of a section built from several sentences.
// A single sentence longer than the limit becomes its own section.
const MaxSectionLength = 1000

// Span is a section of extracted text. Start and End are rune offsets into the
// source text, End exclusive.
type Span struct {
	Text  string
	Start int
	End   int
}

type sentence struct {
	text       string
	start, end int
}

// Segment splits text on runs of '.', '!' and '?' and greedily packs the
// trimmed sentences, joined by ". ", into sections of at most maxLen runes.
// Offsets come from the scan position, so repeated sentences are located correctly.
func Segment(text string, maxLen int) []Span {
	var (
		spans      []Span
		parts      []string
		length     int
		start, end int
	)

	for _, s := range sentences(text) {
		n := utf8.RuneCountInString(s.text)

		if length > 0 && length+n > maxLen {
			spans = append(spans, Span{Text: strings.Join(parts, ". "), Start: start, End: end})
			parts, length = nil, 0
		}

		if length == 0 {
			start = s.start
		} else {
			length += 2
		}
		parts = append(parts, s.text)
		length += n
		end = s.end
	}

	if length > 0 {
		spans = append(spans, Span{Text: strings.Join(parts, ". "), Start: start, End: end})
	}
	return spans
}

func sentences(text string) []sentence {
	runes := []rune(text)

	var out []sentence
	begin := 0
	flush := func(stop int) {
		s, e := begin, stop
		for s < e && unicode.IsSpace(runes[s]) {
			s++
		}
		for e > s && unicode.IsSpace(runes[e-1]) {
			e--
		}
		if s < e {
			out = append(out, sentence{text: string(runes[s:e]), start: s, end: e})
		}
	}

	for i, r := range runes {
		if r == '.' || r == '!' || r == '?' {
			flush(i)
			begin = i + 1
		}
	}
	flush(len(runes))

	return out
}
