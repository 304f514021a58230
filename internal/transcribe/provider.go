package transcribe

import "context"

// Provider is the interface for speech-to-text backends.
type Provider interface {
	Transcribe(ctx context.Context, clip Clip, opts TranscribeOpts) (*Response, error)
	Name() string  // "whisper"
	Model() string // model identifier for DB/logs
}

// Clip is one unit of audio handed to a provider. Data is a complete encoded
// file (WAV), not a raw sample stream, so it can go straight into a multipart
// upload.
type Clip struct {
	Name string // filename hint for the provider, e.g. "meeting_chunk_3.wav"
	Data []byte
	MIME string // "audio/wav"
}

// Response is the common transcription result from any provider.
// Timestamps are chunk-local seconds; callers offset them to global time.
type Response struct {
	Text     string
	Language string
	Duration float64 // audio duration in seconds
	Words    []Word  // nil if provider doesn't support word timestamps
	Segments []Segment
}

// Word is a timestamped word from any STT provider.
type Word struct {
	Word    string
	Start   float64 // seconds
	End     float64 // seconds
	Speaker string  // empty if the provider doesn't diarize
}

// Segment is a coarser timestamped unit from the provider.
type Segment struct {
	Start   float64
	End     float64
	Text    string
	Speaker string
}
