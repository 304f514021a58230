package reassemble

import "strings"

// WordToken is a single word with global timing. The word stream is the
// source of truth for timing in the final transcript.
type WordToken struct {
	Text    string  `json:"text"`
	Start   float64 `json:"start"` // seconds, global time
	End     float64 `json:"end"`
	Speaker string  `json:"speaker,omitempty"`
}

// Segment is a coarser timestamped unit with global timing.
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}

// ChunkResult is one chunk's normalised transcription output, keyed by
// Index for fold ordering. Timestamps are already global.
type ChunkResult struct {
	Index    int
	Words    []WordToken
	Segments []Segment
	Text     string
	Language string
}

// Gap records a chunk whose transcription exhausted its retry budget.
// The logical range it owned is missing from the transcript.
type Gap struct {
	ChunkIndex     int   `json:"chunk_index"`
	LogicalStartMs int64 `json:"logical_start_ms"`
	LogicalEndMs   int64 `json:"logical_end_ms"`
}

// Transcript is the final merged output: global-time word tokens and
// segments with no duplicates, plus the joined text.
type Transcript struct {
	Words    []WordToken `json:"words"`
	Segments []Segment   `json:"segments"`
	Text     string      `json:"text"`
	Language string      `json:"language,omitempty"`
	Gaps     []Gap       `json:"gaps,omitempty"`
}

// Complete reports whether every chunk folded successfully.
func (t *Transcript) Complete() bool { return len(t.Gaps) == 0 }

// WordCount returns the number of word tokens, falling back to counting
// whitespace-separated fields of the text when no tokens are present.
func (t *Transcript) WordCount() int {
	if len(t.Words) > 0 {
		return len(t.Words)
	}
	return len(strings.Fields(t.Text))
}

// Diarized reports whether any unit carries a speaker label.
func (t *Transcript) Diarized() bool {
	for _, w := range t.Words {
		if w.Speaker != "" {
			return true
		}
	}
	for _, s := range t.Segments {
		if s.Speaker != "" {
			return true
		}
	}
	return false
}
