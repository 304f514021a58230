package reassemble

import "testing"

func TestResegment_SplitsOnSpeakerChange(t *testing.T) {
	words := []WordToken{
		{Text: "hello", Start: 0.0, End: 0.3, Speaker: "A"},
		{Text: "there", Start: 0.35, End: 0.6, Speaker: "A"},
		{Text: "hi", Start: 0.65, End: 0.8, Speaker: "B"},
	}

	segments := Resegment(words, DefaultResegmentOptions())

	if len(segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(segments))
	}
	if segments[0].Text != "hello there" || segments[0].Speaker != "A" {
		t.Errorf("segment 0 = %+v", segments[0])
	}
	if segments[1].Text != "hi" || segments[1].Speaker != "B" {
		t.Errorf("segment 1 = %+v", segments[1])
	}
}

func TestResegment_NoSplitLabelledToUnlabelled(t *testing.T) {
	// A labelled word followed by unlabelled words should still split —
	// but two unlabelled words never split on speaker alone.
	words := []WordToken{
		{Text: "one", Start: 0.0, End: 0.2},
		{Text: "two", Start: 0.25, End: 0.45},
	}
	segments := Resegment(words, ResegmentOptions{PauseThresholdSec: 10, MaxSegmentSec: 100})
	if len(segments) != 1 {
		t.Fatalf("segments = %d, want 1", len(segments))
	}
}

func TestResegment_SplitsOnPause(t *testing.T) {
	words := []WordToken{
		{Text: "before", Start: 0.0, End: 0.3},
		{Text: "after", Start: 0.8, End: 1.1}, // 500ms pause
	}

	segments := Resegment(words, DefaultResegmentOptions())

	if len(segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(segments))
	}
}

func TestResegment_SplitsOnMaxDuration(t *testing.T) {
	words := []WordToken{
		{Text: "a", Start: 0.0, End: 0.9},
		{Text: "b", Start: 0.95, End: 1.8}, // would push the segment past the 1.5s cap
		{Text: "c", Start: 1.85, End: 2.0},
	}

	segments := Resegment(words, DefaultResegmentOptions())

	if len(segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(segments))
	}
	if segments[0].Text != "a" {
		t.Errorf("segment 0 text = %q, want %q", segments[0].Text, "a")
	}
	if segments[1].Text != "b c" {
		t.Errorf("segment 1 text = %q, want %q", segments[1].Text, "b c")
	}
}

func TestResegment_SplitsOnPunctuation(t *testing.T) {
	words := []WordToken{
		{Text: "done.", Start: 0.0, End: 0.3},
		{Text: "next", Start: 0.35, End: 0.6},
	}

	segments := Resegment(words, DefaultResegmentOptions())

	if len(segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(segments))
	}

	noSplit := Resegment(words, ResegmentOptions{PauseThresholdSec: 10, MaxSegmentSec: 100, SplitOnPunctuation: false})
	if len(noSplit) != 1 {
		t.Errorf("with punctuation splits off: segments = %d, want 1", len(noSplit))
	}
}

func TestResegment_MajorityVoteSpeaker(t *testing.T) {
	// Two A words, one unlabelled — the segment belongs to A.
	words := []WordToken{
		{Text: "we", Start: 0.0, End: 0.1, Speaker: "A"},
		{Text: "are", Start: 0.1, End: 0.2, Speaker: "A"},
	}
	segments := Resegment(words, DefaultResegmentOptions())
	if len(segments) != 1 {
		t.Fatalf("segments = %d, want 1", len(segments))
	}
	if segments[0].Speaker != "A" {
		t.Errorf("speaker = %q, want A", segments[0].Speaker)
	}
}

func TestResegment_Empty(t *testing.T) {
	if segments := Resegment(nil, DefaultResegmentOptions()); segments != nil {
		t.Errorf("expected nil, got %+v", segments)
	}
}

func TestNormalizeSpeakers(t *testing.T) {
	segments := []Segment{
		{Text: "one", Speaker: "B"},
		{Text: "two", Speaker: "A"},
		{Text: "three", Speaker: "B"},
		{Text: "four"},
	}

	out := NormalizeSpeakers(segments)

	if out[0].Speaker != "Speaker 1" {
		t.Errorf("segment 0 speaker = %q, want Speaker 1", out[0].Speaker)
	}
	if out[1].Speaker != "Speaker 2" {
		t.Errorf("segment 1 speaker = %q, want Speaker 2", out[1].Speaker)
	}
	if out[2].Speaker != "Speaker 1" {
		t.Errorf("segment 2 speaker = %q, want Speaker 1 (same as segment 0)", out[2].Speaker)
	}
	if out[3].Speaker != "" {
		t.Errorf("segment 3 speaker = %q, want unlabelled", out[3].Speaker)
	}
	// Input untouched.
	if segments[0].Speaker != "B" {
		t.Error("NormalizeSpeakers mutated its input")
	}
}

func TestFormatDiarized(t *testing.T) {
	segments := []Segment{
		{Text: "hello there", Speaker: "Speaker 1"},
		{Text: "how are you", Speaker: "Speaker 1"},
		{Text: "fine thanks", Speaker: "Speaker 2"},
		{Text: "", Speaker: "Speaker 2"},
		{Text: "good", Speaker: "Speaker 1"},
	}

	got := FormatDiarized(segments)
	want := "Speaker 1: hello there how are you\nSpeaker 2: fine thanks\nSpeaker 1: good"
	if got != want {
		t.Errorf("FormatDiarized =\n%q\nwant\n%q", got, want)
	}
}

func TestFormatDiarized_Empty(t *testing.T) {
	if got := FormatDiarized(nil); got != "" {
		t.Errorf("FormatDiarized(nil) = %q, want empty", got)
	}
}
