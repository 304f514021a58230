package reassemble

import (
	"fmt"
	"strings"
)

// ResegmentOptions controls word-first resegmentation.
type ResegmentOptions struct {
	PauseThresholdSec  float64 // split when the gap between words reaches this
	MaxSegmentSec      float64 // force a split when a segment runs this long
	SplitOnPunctuation bool    // split after ., ? and !
}

// DefaultResegmentOptions matches the tuning used for diarized output:
// 250ms pause, 1.5s max segment, punctuation splits on.
func DefaultResegmentOptions() ResegmentOptions {
	return ResegmentOptions{
		PauseThresholdSec:  0.25,
		MaxSegmentSec:      1.5,
		SplitOnPunctuation: true,
	}
}

// Resegment rebuilds segments from word tokens, splitting on speaker
// changes, pauses, maximum duration, and strong punctuation. The word stream
// is the source of truth; provider segments are ignored. Each segment's
// speaker is decided by majority vote over its words.
func Resegment(words []WordToken, opts ResegmentOptions) []Segment {
	if len(words) == 0 {
		return nil
	}

	var segments []Segment
	var current []WordToken

	flush := func() {
		if len(current) == 0 {
			return
		}
		texts := make([]string, len(current))
		votes := make(map[string]int)
		for i, w := range current {
			texts[i] = w.Text
			if w.Speaker != "" {
				votes[w.Speaker]++
			}
		}
		speaker := ""
		best := 0
		for s, n := range votes {
			if n > best || (n == best && s < speaker) {
				speaker = s
				best = n
			}
		}
		segments = append(segments, Segment{
			Start:   current[0].Start,
			End:     current[len(current)-1].End,
			Text:    strings.TrimSpace(strings.Join(texts, " ")),
			Speaker: speaker,
		})
		current = nil
	}

	for _, word := range words {
		if len(current) > 0 {
			prev := current[len(current)-1]
			split := false

			// Speaker change splits only when at least one side is
			// labelled, so a labelled speaker doesn't smear across
			// subsequent unlabelled words.
			if word.Speaker != prev.Speaker && (word.Speaker != "" || prev.Speaker != "") {
				split = true
			}
			if word.Start-prev.End >= opts.PauseThresholdSec {
				split = true
			}
			if word.End-current[0].Start >= opts.MaxSegmentSec {
				split = true
			}
			if opts.SplitOnPunctuation && endsInStrongPunctuation(prev.Text) {
				split = true
			}

			if split {
				flush()
			}
		}
		current = append(current, word)
	}
	flush()

	return segments
}

func endsInStrongPunctuation(text string) bool {
	trimmed := strings.TrimRight(text, " \t\n")
	return strings.HasSuffix(trimmed, ".") ||
		strings.HasSuffix(trimmed, "?") ||
		strings.HasSuffix(trimmed, "!")
}

// NormalizeSpeakers rewrites provider speaker labels (A, B, ...) as
// "Speaker 1", "Speaker 2", ... numbered in first-seen order. Unlabelled
// segments are left alone.
func NormalizeSpeakers(segments []Segment) []Segment {
	mapping := make(map[string]string)
	out := make([]Segment, len(segments))
	for i, seg := range segments {
		out[i] = seg
		if seg.Speaker == "" {
			continue
		}
		label, ok := mapping[seg.Speaker]
		if !ok {
			label = fmt.Sprintf("Speaker %d", len(mapping)+1)
			mapping[seg.Speaker] = label
		}
		out[i].Speaker = label
	}
	return out
}

// FormatDiarized renders segments as "Speaker N: text" lines, merging
// adjacent segments from the same speaker onto one line.
func FormatDiarized(segments []Segment) string {
	var lines []string
	currentSpeaker := ""
	var currentTexts []string

	emit := func() {
		if currentSpeaker != "" && len(currentTexts) > 0 {
			lines = append(lines, currentSpeaker+": "+strings.Join(currentTexts, " "))
		}
	}

	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		speaker := seg.Speaker
		if speaker == "" {
			speaker = "Unknown"
		}
		if speaker != currentSpeaker {
			emit()
			currentSpeaker = speaker
			currentTexts = []string{text}
		} else {
			currentTexts = append(currentTexts, text)
		}
	}
	emit()

	return strings.Join(lines, "\n")
}
