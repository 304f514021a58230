package reassemble

import (
	"strings"

	"github.com/snarg/scribe-engine/internal/transcribe"
)

// minInferredWordSec is the floor on word duration when inferring word timing
// from segments (40ms).
const minInferredWordSec = 0.04

// ParseResponse normalises a provider response for one chunk into a
// ChunkResult with global timestamps. Chunk-local times are offset by the
// chunk's actual start; units whose offset start would precede the actual
// window are implausible and dropped. The returned count says how many were.
//
// When the provider returns no segments but non-empty text, one segment
// covering the whole actual window is synthesised. When it returns segments
// but no words, word timing is inferred from the segments.
func ParseResponse(resp *transcribe.Response, w ChunkWindow) (ChunkResult, int) {
	offsetSec := float64(w.ActualStartMs) / 1000.0
	result := ChunkResult{
		Index:    w.Index,
		Text:     strings.TrimSpace(resp.Text),
		Language: resp.Language,
	}

	dropped := 0

	for _, seg := range resp.Segments {
		if seg.Start < 0 {
			dropped++
			continue
		}
		result.Segments = append(result.Segments, Segment{
			Start:   offsetSec + seg.Start,
			End:     offsetSec + seg.End,
			Text:    strings.TrimSpace(seg.Text),
			Speaker: seg.Speaker,
		})
	}

	if len(result.Segments) == 0 && result.Text != "" {
		result.Segments = append(result.Segments, Segment{
			Start: float64(w.ActualStartMs) / 1000.0,
			End:   float64(w.ActualEndMs) / 1000.0,
			Text:  result.Text,
		})
	}

	for _, wd := range resp.Words {
		if wd.Start < 0 {
			dropped++
			continue
		}
		result.Words = append(result.Words, WordToken{
			Text:    strings.TrimSpace(wd.Word),
			Start:   offsetSec + wd.Start,
			End:     offsetSec + wd.End,
			Speaker: wd.Speaker,
		})
	}

	if len(result.Words) == 0 && len(resp.Words) == 0 {
		result.Words = InferWordTokens(result.Segments, minInferredWordSec)
	}

	return result, dropped
}

// InferWordTokens distributes each segment's duration across its words
// proportionally by character length, for providers that return only
// segment-level timing. Each word lasts at least minDurationSec; the last
// word of a segment is pinned to the segment end to avoid rounding drift.
func InferWordTokens(segments []Segment, minDurationSec float64) []WordToken {
	var words []WordToken

	for _, seg := range segments {
		tokens := strings.Fields(seg.Text)
		if len(tokens) == 0 {
			continue
		}

		totalChars := 0
		for _, t := range tokens {
			totalChars += len(t)
		}

		duration := seg.End - seg.Start
		current := seg.Start

		for i, token := range tokens {
			var wordEnd float64
			if i == len(tokens)-1 {
				wordEnd = seg.End
			} else {
				wordDur := duration * float64(len(token)) / float64(totalChars)
				if wordDur < minDurationSec {
					wordDur = minDurationSec
				}
				wordEnd = current + wordDur
				if wordEnd > seg.End {
					wordEnd = seg.End
				}
			}
			words = append(words, WordToken{
				Text:    token,
				Start:   current,
				End:     wordEnd,
				Speaker: seg.Speaker,
			})
			current = wordEnd
		}
	}

	return words
}
