package brace

import (
	"sort"
	"strings"

	"github.com/duelmod/cardtext/part"
	"github.com/duelmod/cardtext/util"
)

// Effect spans are imported into description text as brace markers so they
// survive hand editing: an inclusive byte span [lo, hi] becomes '{' before
// byte lo and '}' after byte hi. Plain text never contains braces, which
// makes the markers recoverable later.

type insertion struct {
	open  int
	close int
}

// Annotate renders spans of one record as braces. Spans with lo >= hi are
// dropped the way the legacy tables are read: such slots exist in shipped
// data and mark nothing. Span ends are clamped to the text, the result is
// decoded with replacement so a span cutting a multibyte rune in half still
// yields printable text.
func Annotate(text string, ranges []part.Range) string {
	points := make(map[int]*insertion, 2*len(ranges))
	total := 0
	for _, r := range ranges {
		lo, hi := int(r.Lo), int(r.Hi)
		if lo >= hi {
			continue
		}
		if p := points[lo]; p != nil {
			p.open++
		} else {
			points[lo] = &insertion{open: 1}
		}
		if p := points[hi+1]; p != nil {
			p.close++
		} else {
			points[hi+1] = &insertion{close: 1}
		}
		total += 2
	}
	if total == 0 {
		return text
	}

	positions := make([]int, 0, len(points))
	for pos := range points {
		positions = append(positions, pos)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(positions)))

	// inserting back to front keeps earlier positions valid
	buf := []byte(text)
	for _, pos := range positions {
		ins := points[pos]
		if pos > len(buf) {
			pos = len(buf)
		}

		next := make([]byte, 0, len(buf)+ins.open+ins.close)
		next = append(next, buf[:pos]...)
		for i := 0; i < ins.close; i++ {
			next = append(next, '}')
		}
		for i := 0; i < ins.open; i++ {
			next = append(next, '{')
		}
		next = append(next, buf[pos:]...)
		buf = next
	}
	return util.DecodeUTF8Replace(buf)
}

// Strip removes every brace byte, restoring plain storable text.
func Strip(text string) string {
	if !strings.ContainsAny(text, "{}") {
		return text
	}
	b := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		if text[i] != '{' && text[i] != '}' {
			b = append(b, text[i])
		}
	}
	return string(b)
}

// CountTopLevel counts depth-0 opening braces. Unbalanced closers never
// drive the depth negative, so text mangled by an editor still counts
// deterministically.
func CountTopLevel(text string) int {
	depth, count := 0, 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{':
			if depth == 0 {
				count++
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		}
	}
	return count
}

// ExtractSegments splits an annotated description into the flavor text
// before the first top-level brace and the body of every top-level pair.
// Nested braces inside a segment are kept verbatim. A segment left open at
// the end of text is dropped.
func ExtractSegments(text string) (string, []string) {
	var segments []string

	depth := 0
	segStart := -1
	firstOpen := -1
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{':
			if depth == 0 {
				if firstOpen < 0 {
					firstOpen = i
				}
				segStart = i + 1
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				segments = append(segments, text[segStart:i])
				segStart = -1
			}
		}
	}

	material := text
	if firstOpen >= 0 {
		material = text[:firstOpen]
	}
	return strings.TrimSpace(material), segments
}
