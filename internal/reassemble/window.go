// Package reassemble splits long audio into overlapping chunks, fans them out
// to a speech-to-text provider, and folds the per-chunk results back into one
// continuous, deduplicated transcript.
package reassemble

import "fmt"

// ChunkWindow is one planned chunk. Logical windows tile the audio without
// gaps; the actual window reaches back by the overlap so the model has
// context across the boundary. All times are milliseconds from the start of
// the recording.
type ChunkWindow struct {
	Index          int
	LogicalStartMs int64
	LogicalEndMs   int64
	ActualStartMs  int64
	ActualEndMs    int64
}

// Plan tiles audioLengthMs into gap-free logical windows of at most
// chunkDurationMs, each with a leading overlap of overlapMs on its actual
// window (clamped to 0 for the first chunk). The last window's logical end is
// always exactly audioLengthMs. A zero-length recording plans to nothing.
func Plan(audioLengthMs, chunkDurationMs, overlapMs int64) ([]ChunkWindow, error) {
	if chunkDurationMs <= 0 {
		return nil, fmt.Errorf("invalid chunk plan: chunk duration %dms must be positive", chunkDurationMs)
	}
	if overlapMs < 0 {
		return nil, fmt.Errorf("invalid chunk plan: overlap %dms must not be negative", overlapMs)
	}
	if audioLengthMs < 0 {
		return nil, fmt.Errorf("invalid chunk plan: audio length %dms must not be negative", audioLengthMs)
	}

	var windows []ChunkWindow
	var logicalStart int64

	for logicalStart < audioLengthMs {
		logicalEnd := logicalStart + chunkDurationMs
		if logicalEnd > audioLengthMs {
			logicalEnd = audioLengthMs
		}
		actualStart := logicalStart - overlapMs
		if actualStart < 0 {
			actualStart = 0
		}

		windows = append(windows, ChunkWindow{
			Index:          len(windows),
			LogicalStartMs: logicalStart,
			LogicalEndMs:   logicalEnd,
			ActualStartMs:  actualStart,
			ActualEndMs:    logicalEnd, // no trailing overlap needed
		})

		// next chunk starts exactly where this one ends
		logicalStart = logicalEnd
	}

	return windows, nil
}
