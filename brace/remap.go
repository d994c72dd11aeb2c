package brace

import (
	"github.com/duelmod/cardtext/part"
)

// unbracedIndices maps every byte of annotated text to the index that byte
// has once braces are stripped. Brace bytes borrow a neighbor's index: '}'
// takes the previous plain byte, '{' the next one, so a marker points at
// the span edge it guards.
func unbracedIndices(text string) []int {
	idx := make([]int, 0, len(text))
	plain := -1
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{':
			idx = append(idx, -1)
		case '}':
			idx = append(idx, plain)
		default:
			plain++
			idx = append(idx, plain)
			for k := len(idx) - 2; k >= 0 && idx[k] == -1; k-- {
				idx[k] = plain
			}
		}
	}
	return idx
}

func braceSlots(text string, idx []int) []int {
	slots := make([]int, 0, 8)
	for i := 0; i < len(text); i++ {
		if text[i] == '{' || text[i] == '}' {
			slots = append(slots, idx[i])
		}
	}
	return slots
}

// RemapRanges projects spans of the original text onto an edited annotated
// version of it. Both texts are reduced to the plain-byte positions of
// their brace markers; pairing the k-th markers gives a shift for every
// span edge the markers stand on. Edges without a marker keep their old
// value, and the output always has exactly as many spans as the input, so
// the per-record counts in the pidx table stay valid.
func RemapRanges(old []part.Range, oldAnnotated, newAnnotated string) []part.Range {
	if len(old) == 0 {
		return nil
	}

	oldSlots := braceSlots(oldAnnotated, unbracedIndices(oldAnnotated))
	newSlots := braceSlots(newAnnotated, unbracedIndices(newAnnotated))

	n := len(oldSlots)
	if len(newSlots) < n {
		n = len(newSlots)
	}
	shift := make(map[int]int, n)
	for k := 0; k < n; k++ {
		if oldSlots[k] < 0 || newSlots[k] < 0 {
			continue
		}
		shift[oldSlots[k]] = newSlots[k] - oldSlots[k]
	}

	out := make([]part.Range, len(old))
	for i, r := range old {
		lo, hi := int(r.Lo), int(r.Hi)
		if d, ok := shift[lo]; ok {
			lo += d
		}
		if d, ok := shift[hi]; ok {
			hi += d
		}
		out[i] = part.Range{Lo: uint16(lo), Hi: uint16(hi)}
	}
	return out
}
