package reassemble

import (
	"strings"
	"unicode"
)

// DefaultMaxOverlap bounds the seam search. Chunk overlaps are short by
// construction, so 80 characters is ample.
const DefaultMaxOverlap = 80

// FindOverlap returns the length of the longest suffix of prevText that
// exactly equals a prefix of newText, checking lengths from
// min(maxOverlap, len(prevText), len(newText)) down to 1. Returns 0 when no
// overlap exists. Greedy longest exact match, not an LCS.
func FindOverlap(prevText, newText string, maxOverlap int) int {
	if prevText == "" || newText == "" {
		return 0
	}

	checkLen := maxOverlap
	if len(prevText) < checkLen {
		checkLen = len(prevText)
	}
	if len(newText) < checkLen {
		checkLen = len(newText)
	}

	for overlapLen := checkLen; overlapLen > 0; overlapLen-- {
		if prevText[len(prevText)-overlapLen:] == newText[:overlapLen] {
			return overlapLen
		}
	}
	return 0
}

// Dedup removes from newText the run of characters already present at the
// end of prevText, stripping any leading whitespace left behind. Used at
// chunk seams when timestamps are unavailable or imprecise.
func Dedup(prevText, newText string, maxOverlap int) string {
	trimLen := FindOverlap(prevText, newText, maxOverlap)
	if trimLen > 0 {
		return strings.TrimLeftFunc(newText[trimLen:], unicode.IsSpace)
	}
	return newText
}
