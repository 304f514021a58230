package reassemble

// DefaultEpsilonSec absorbs sub-frame timing jitter at chunk boundaries so a
// token that should belong to the new chunk is not dropped for landing a few
// milliseconds early.
const DefaultEpsilonSec = 0.01

// TrimWords drops words that start before boundarySec (minus epsilon).
// The previous chunk owns every timestamp strictly before the boundary, so
// anything the new chunk emitted inside the shared overlap is a duplicate.
// Words must already be offset to global time.
func TrimWords(words []WordToken, boundarySec, epsilonSec float64) []WordToken {
	cutoff := boundarySec - epsilonSec
	kept := words[:0:0]
	for _, w := range words {
		if w.Start >= cutoff {
			kept = append(kept, w)
		}
	}
	return kept
}

// TrimSegments applies the same ownership rule to segment start times.
func TrimSegments(segments []Segment, boundarySec, epsilonSec float64) []Segment {
	cutoff := boundarySec - epsilonSec
	kept := segments[:0:0]
	for _, s := range segments {
		if s.Start >= cutoff {
			kept = append(kept, s)
		}
	}
	return kept
}
