package reassemble

import (
	"math"
	"testing"

	"github.com/snarg/scribe-engine/internal/transcribe"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestParseResponse_OffsetsToGlobalTime(t *testing.T) {
	w := ChunkWindow{Index: 1, LogicalStartMs: 60_000, LogicalEndMs: 120_000, ActualStartMs: 58_500, ActualEndMs: 120_000}
	resp := &transcribe.Response{
		Text:     " chunk text ",
		Language: "en",
		Words: []transcribe.Word{
			{Word: "hello", Start: 0.0, End: 0.4},
			{Word: "there", Start: 2.0, End: 2.5},
		},
		Segments: []transcribe.Segment{
			{Start: 0.0, End: 2.5, Text: " hello there "},
		},
	}

	res, dropped := ParseResponse(resp, w)

	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	if res.Index != 1 {
		t.Errorf("Index = %d, want 1", res.Index)
	}
	if res.Text != "chunk text" {
		t.Errorf("Text = %q, want trimmed", res.Text)
	}
	if res.Language != "en" {
		t.Errorf("Language = %q, want en", res.Language)
	}
	if !almostEqual(res.Words[0].Start, 58.5) {
		t.Errorf("word 0 start = %f, want 58.5", res.Words[0].Start)
	}
	if !almostEqual(res.Words[1].Start, 60.5) {
		t.Errorf("word 1 start = %f, want 60.5", res.Words[1].Start)
	}
	if !almostEqual(res.Segments[0].Start, 58.5) || !almostEqual(res.Segments[0].End, 61.0) {
		t.Errorf("segment = [%f, %f], want [58.5, 61.0]", res.Segments[0].Start, res.Segments[0].End)
	}
	if res.Segments[0].Text != "hello there" {
		t.Errorf("segment text = %q, want trimmed", res.Segments[0].Text)
	}
}

func TestParseResponse_DropsImplausibleTimestamps(t *testing.T) {
	w := ChunkWindow{Index: 2, LogicalStartMs: 120_000, LogicalEndMs: 150_000, ActualStartMs: 118_500, ActualEndMs: 150_000}
	resp := &transcribe.Response{
		Text: "some text",
		Words: []transcribe.Word{
			{Word: "bogus", Start: -3.0, End: -2.5}, // before the chunk even started
			{Word: "fine", Start: 0.5, End: 0.9},
		},
	}

	res, dropped := ParseResponse(resp, w)

	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	if len(res.Words) != 1 || res.Words[0].Text != "fine" {
		t.Fatalf("words = %+v, want only 'fine'", res.Words)
	}
}

func TestParseResponse_SynthesizesSegmentFromText(t *testing.T) {
	w := ChunkWindow{Index: 0, LogicalStartMs: 0, LogicalEndMs: 30_000, ActualStartMs: 0, ActualEndMs: 30_000}
	resp := &transcribe.Response{Text: "plain text only"}

	res, _ := ParseResponse(resp, w)

	if len(res.Segments) != 1 {
		t.Fatalf("segments = %d, want 1", len(res.Segments))
	}
	seg := res.Segments[0]
	if !almostEqual(seg.Start, 0) || !almostEqual(seg.End, 30.0) {
		t.Errorf("segment = [%f, %f], want [0, 30]", seg.Start, seg.End)
	}
	if seg.Text != "plain text only" {
		t.Errorf("segment text = %q", seg.Text)
	}
}

func TestParseResponse_EmptyResponse(t *testing.T) {
	w := ChunkWindow{Index: 0, LogicalEndMs: 30_000, ActualEndMs: 30_000}
	res, dropped := ParseResponse(&transcribe.Response{}, w)

	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	if res.Text != "" || len(res.Words) != 0 || len(res.Segments) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestInferWordTokens(t *testing.T) {
	t.Run("proportional_by_char_length", func(t *testing.T) {
		segments := []Segment{
			{Start: 10.0, End: 12.0, Text: "hi elephants", Speaker: "A"},
		}
		words := InferWordTokens(segments, 0.04)

		if len(words) != 2 {
			t.Fatalf("words = %d, want 2", len(words))
		}
		// "hi" is 2 of 11 chars → 2/11 of 2s.
		if !almostEqual(words[0].Start, 10.0) {
			t.Errorf("word 0 start = %f, want 10.0", words[0].Start)
		}
		wantEnd := 10.0 + 2.0*2.0/11.0
		if !almostEqual(words[0].End, wantEnd) {
			t.Errorf("word 0 end = %f, want %f", words[0].End, wantEnd)
		}
		// Last word pinned to segment end.
		if !almostEqual(words[1].End, 12.0) {
			t.Errorf("word 1 end = %f, want 12.0", words[1].End)
		}
		if words[0].Speaker != "A" || words[1].Speaker != "A" {
			t.Error("speaker label not propagated")
		}
	})

	t.Run("minimum_duration_enforced", func(t *testing.T) {
		// 10 words in 100ms: proportional share is 10ms, below the 40ms floor.
		segments := []Segment{
			{Start: 0.0, End: 0.1, Text: "a b c d e f g h i j"},
		}
		words := InferWordTokens(segments, 0.04)
		if len(words) != 10 {
			t.Fatalf("words = %d, want 10", len(words))
		}
		if !almostEqual(words[0].End-words[0].Start, 0.04) {
			t.Errorf("word 0 duration = %f, want 0.04", words[0].End-words[0].Start)
		}
		// All ends are clamped to the segment end.
		for i, w := range words {
			if w.End > 0.1+1e-9 {
				t.Errorf("word %d end = %f exceeds segment end", i, w.End)
			}
		}
	})

	t.Run("empty_segment_skipped", func(t *testing.T) {
		segments := []Segment{{Start: 0, End: 1, Text: "   "}}
		if words := InferWordTokens(segments, 0.04); len(words) != 0 {
			t.Errorf("words = %d, want 0", len(words))
		}
	})
}
