package reassemble

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/snarg/scribe-engine/internal/audio"
	"github.com/snarg/scribe-engine/internal/metrics"
	"github.com/snarg/scribe-engine/internal/transcribe"
)

// Invoker transcribes one chunk's audio slice. It is treated as untrusted:
// it may fail, hang until the context expires, or return garbage timing.
type Invoker func(ctx context.Context, chunkIndex int, clip *audio.Buffer) (*transcribe.Response, error)

// Options configures a Reassembler. OverlapMs and ChunkRetries are taken
// as given: 0 means no overlap and no retries, not "use a default" — their
// defaults live in the config layer, where unset is distinguishable from
// zero. The remaining fields fall back to the defaults noted when zero,
// since zero is not a usable value for any of them.
type Options struct {
	ChunkDurationMs int64         // default 60000
	OverlapMs       int64         // 0 = chunks share no audio
	MaxOverlapChars int           // seam search bound, default 80
	EpsilonSec      float64       // boundary jitter tolerance, default 0.01
	MaxConcurrency  int           // in-flight chunk transcriptions, default 4
	ChunkRetries    int           // retries after the first attempt; 0 = single attempt
	ChunkTimeout    time.Duration // per-chunk, not global; default 5m
	RetryBackoff    time.Duration // base backoff between attempts, default 2s
	Log             zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.ChunkDurationMs == 0 {
		o.ChunkDurationMs = 60_000
	}
	if o.MaxOverlapChars == 0 {
		o.MaxOverlapChars = DefaultMaxOverlap
	}
	if o.EpsilonSec == 0 {
		o.EpsilonSec = DefaultEpsilonSec
	}
	if o.MaxConcurrency == 0 {
		o.MaxConcurrency = 4
	}
	if o.ChunkTimeout == 0 {
		o.ChunkTimeout = 5 * time.Minute
	}
	if o.RetryBackoff == 0 {
		o.RetryBackoff = 2 * time.Second
	}
	return o
}

// Reassembler drives the plan → dispatch → fold pipeline for one recording
// at a time. It is safe to reuse across recordings but not concurrently.
type Reassembler struct {
	invoke Invoker
	opts   Options
	log    zerolog.Logger
}

// New creates a Reassembler around the given invoker.
func New(invoke Invoker, opts Options) *Reassembler {
	opts = opts.withDefaults()
	return &Reassembler{
		invoke: invoke,
		opts:   opts,
		log:    opts.Log.With().Str("component", "reassembler").Logger(),
	}
}

// slot carries one chunk's outcome from its dispatch goroutine to the fold.
// done is closed exactly once, after res/err are set.
type slot struct {
	res  ChunkResult
	err  error
	done chan struct{}
}

// Run transcribes the recording and returns the merged transcript.
//
// Chunks are dispatched concurrently, bounded by MaxConcurrency, and folded
// strictly in ascending chunk order no matter when they complete. A chunk
// that exhausts its retry budget becomes a recorded Gap rather than an
// error; only an invalid plan or context cancellation fails the whole run.
func (ra *Reassembler) Run(ctx context.Context, buf *audio.Buffer) (*Transcript, error) {
	windows, err := Plan(buf.DurationMs(), ra.opts.ChunkDurationMs, ra.opts.OverlapMs)
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return &Transcript{}, nil
	}

	ra.log.Info().
		Int64("duration_ms", buf.DurationMs()).
		Int("chunks", len(windows)).
		Int64("overlap_ms", ra.opts.OverlapMs).
		Msg("chunk plan ready")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	slots := make([]*slot, len(windows))
	for i := range slots {
		slots[i] = &slot{done: make(chan struct{})}
	}

	// Dispatch: one goroutine per chunk, gated by a semaphore. Each chunk
	// is independent; a slow chunk delays only its own position in the fold.
	sem := make(chan struct{}, ra.opts.MaxConcurrency)
	for i, w := range windows {
		go func(i int, w ChunkWindow) {
			defer close(slots[i].done)
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				slots[i].err = ctx.Err()
				return
			}
			slots[i].res, slots[i].err = ra.transcribeChunk(ctx, w, buf)
		}(i, w)
	}

	// Fold: strictly ascending chunk index. This goroutine is the only
	// writer of the accumulating transcript.
	var tr Transcript
	for i, w := range windows {
		select {
		case <-slots[i].done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		s := slots[i]
		if s.err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			ra.log.Warn().Err(s.err).Int("chunk", i).Msg("chunk failed all attempts, recording gap")
			metrics.GapsRecorded.Inc()
			tr.Gaps = append(tr.Gaps, Gap{
				ChunkIndex:     w.Index,
				LogicalStartMs: w.LogicalStartMs,
				LogicalEndMs:   w.LogicalEndMs,
			})
			continue
		}

		ra.fold(&tr, s.res, w)
	}

	tr.Text = strings.TrimSpace(tr.Text)

	ra.log.Info().
		Int("chars", len(tr.Text)).
		Int("words", len(tr.Words)).
		Int("segments", len(tr.Segments)).
		Int("gaps", len(tr.Gaps)).
		Msg("reassembly complete")

	return &tr, nil
}

// fold merges one chunk's result into the accumulating transcript. Chunk 0
// is taken as-is; later chunks are trimmed to the range they own and then
// seam-deduplicated against the text accepted so far.
func (ra *Reassembler) fold(tr *Transcript, res ChunkResult, w ChunkWindow) {
	if tr.Language == "" {
		tr.Language = res.Language
	}
	words, segments, text := res.Words, res.Segments, res.Text

	if w.Index > 0 && ra.opts.OverlapMs > 0 {
		boundarySec := float64(w.LogicalStartMs) / 1000.0
		words = TrimWords(words, boundarySec, ra.opts.EpsilonSec)
		segments = TrimSegments(segments, boundarySec, ra.opts.EpsilonSec)

		// If trimming removed everything the model returned for this
		// chunk, blank the text to avoid phantom duplicates from coarse
		// timing.
		if len(words) == 0 && len(segments) == 0 {
			ra.log.Debug().Int("chunk", w.Index).Msg("all units fell in overlap, dropping chunk text")
			text = ""
		}
	}

	if w.Index > 0 {
		before := len(text)
		text = Dedup(tr.Text, text, ra.opts.MaxOverlapChars)
		if trimmed := before - len(text); trimmed > 0 {
			metrics.SeamCharsTrimmed.Add(float64(trimmed))
		}

		// The first surviving segment often repeats the tail of the
		// previous chunk's last segment; dedup its text too.
		if len(segments) > 0 && len(tr.Segments) > 0 {
			prev := tr.Segments[len(tr.Segments)-1].Text
			segments[0].Text = Dedup(prev, segments[0].Text, ra.opts.MaxOverlapChars)
		}
	}

	tr.Words = append(tr.Words, words...)
	tr.Segments = append(tr.Segments, segments...)
	if text != "" {
		if tr.Text == "" {
			tr.Text = text
		} else {
			tr.Text += " " + text
		}
	}
}

// transcribeChunk slices the chunk's actual window out of the recording and
// calls the invoker with retries. Timestamps in the returned result are
// global.
func (ra *Reassembler) transcribeChunk(ctx context.Context, w ChunkWindow, buf *audio.Buffer) (ChunkResult, error) {
	clip := buf.SliceMs(w.ActualStartMs, w.ActualEndMs)

	var lastErr error
	attempts := ra.opts.ChunkRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			metrics.ChunkRetries.Inc()
			select {
			case <-time.After(ra.opts.RetryBackoff * time.Duration(attempt)):
			case <-ctx.Done():
				return ChunkResult{}, ctx.Err()
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, ra.opts.ChunkTimeout)
		start := time.Now()
		resp, err := ra.invoke(attemptCtx, w.Index, clip)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return ChunkResult{}, ctx.Err()
			}
			lastErr = err
			ra.log.Warn().Err(err).
				Int("chunk", w.Index).
				Int("attempt", attempt+1).
				Msg("chunk transcription attempt failed")
			metrics.ChunksFailed.Inc()
			continue
		}

		metrics.ChunksTranscribed.Inc()
		metrics.ChunkDuration.Observe(time.Since(start).Seconds())

		res, dropped := ParseResponse(resp, w)
		if dropped > 0 {
			ra.log.Warn().
				Int("chunk", w.Index).
				Int("dropped", dropped).
				Msg("dropped units with implausible timestamps")
		}
		ra.log.Debug().
			Int("chunk", w.Index).
			Int("words", len(res.Words)).
			Int("segments", len(res.Segments)).
			Dur("took", time.Since(start)).
			Msg("chunk transcribed")
		return res, nil
	}

	return ChunkResult{}, fmt.Errorf("chunk %d: %d attempts failed: %w", w.Index, attempts, lastErr)
}
