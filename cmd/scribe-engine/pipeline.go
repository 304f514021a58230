package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/snarg/scribe-engine/internal/audio"
	"github.com/snarg/scribe-engine/internal/config"
	"github.com/snarg/scribe-engine/internal/database"
	"github.com/snarg/scribe-engine/internal/metrics"
	"github.com/snarg/scribe-engine/internal/reassemble"
	"github.com/snarg/scribe-engine/internal/store"
	"github.com/snarg/scribe-engine/internal/transcribe"
)

// pipeline ties the provider, engine, and sinks together. One recording
// is processed at a time; chunk-level concurrency lives in the engine.
type pipeline struct {
	cfg      *config.Config
	provider *transcribe.WhisperClient
	engine   *reassemble.Reassembler
	db       *database.DB
	sink     *store.S3Sink
	log      zerolog.Logger
}

func newPipeline(cfg *config.Config, db *database.DB, sink *store.S3Sink, log zerolog.Logger) *pipeline {
	provider := transcribe.NewWhisperClient(cfg.WhisperURL, cfg.WhisperModel, cfg.WhisperTimeout)

	conditionOff := false
	invoke := func(ctx context.Context, chunkIndex int, clip *audio.Buffer) (*transcribe.Response, error) {
		return provider.Transcribe(ctx, transcribe.Clip{
			Name: fmt.Sprintf("chunk-%04d.wav", chunkIndex),
			Data: clip.WAV(),
			MIME: "audio/wav",
		}, transcribe.TranscribeOpts{
			Temperature:             cfg.Temperature,
			Language:                cfg.Language,
			ConditionOnPreviousText: &conditionOff,
		})
	}

	engine := reassemble.New(invoke, reassemble.Options{
		ChunkDurationMs: cfg.ChunkDurationMs,
		OverlapMs:       cfg.ChunkOverlapMs,
		MaxOverlapChars: cfg.SeamMaxOverlap,
		EpsilonSec:      cfg.BoundaryEpsilonSec,
		MaxConcurrency:  cfg.MaxConcurrency,
		ChunkRetries:    cfg.ChunkRetries,
		ChunkTimeout:    cfg.WhisperTimeout,
		Log:             log,
	})

	return &pipeline{
		cfg:      cfg,
		provider: provider,
		engine:   engine,
		db:       db,
		sink:     sink,
		log:      log.With().Str("component", "pipeline").Logger(),
	}
}

// processFile transcribes one recording end to end and persists the
// result to whichever sinks are configured.
func (p *pipeline) processFile(ctx context.Context, path string) (*reassemble.Transcript, error) {
	start := time.Now()

	buf, err := decodeRecording(path)
	if err != nil {
		metrics.TranscriptsFailed.Inc()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	p.log.Info().
		Str("file", path).
		Int64("duration_ms", buf.DurationMs()).
		Msg("transcribing recording")

	tr, err := p.engine.Run(ctx, buf)
	if err != nil {
		metrics.TranscriptsFailed.Inc()
		return nil, err
	}

	outcome := "complete"
	if !tr.Complete() {
		outcome = "partial"
	}
	metrics.TranscriptsCompleted.WithLabelValues(outcome).Inc()

	elapsed := time.Since(start)
	p.log.Info().
		Str("file", path).
		Str("outcome", outcome).
		Int("words", tr.WordCount()).
		Dur("took", elapsed).
		Msg("recording transcribed")

	p.persist(ctx, path, buf, tr, elapsed)

	return tr, nil
}

// persist writes the transcript to the database and the S3 sink. Sink
// failures are logged, not returned; the transcript itself succeeded.
func (p *pipeline) persist(ctx context.Context, path string, buf *audio.Buffer, tr *reassemble.Transcript, elapsed time.Duration) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if p.db != nil {
		words, _ := json.Marshal(tr.Words)
		segments, _ := json.Marshal(tr.Segments)
		var gaps json.RawMessage
		if len(tr.Gaps) > 0 {
			gaps, _ = json.Marshal(tr.Gaps)
		}

		id, err := p.db.InsertTranscript(ctx, &database.TranscriptRow{
			Filename:     filepath.Base(path),
			Text:         tr.Text,
			Language:     tr.Language,
			Model:        p.provider.Model(),
			Provider:     p.provider.Name(),
			WordCount:    tr.WordCount(),
			AudioMs:      buf.DurationMs(),
			ProcessingMs: elapsed.Milliseconds(),
			ChunkCount:   chunkCount(buf.DurationMs(), p.cfg.ChunkDurationMs),
			Complete:     tr.Complete(),
			Words:        words,
			Segments:     segments,
			Gaps:         gaps,
		})
		if err != nil {
			p.log.Error().Err(err).Str("file", path).Msg("failed to store transcript")
		} else {
			p.log.Debug().Int64("id", id).Msg("transcript stored")
		}
	}

	if p.sink != nil {
		doc, err := json.Marshal(tr)
		if err == nil {
			err = p.sink.Save(ctx, name, doc)
		}
		if err != nil {
			p.log.Error().Err(err).Str("file", path).Msg("failed to upload transcript")
		}
	}
}

func chunkCount(audioMs, chunkMs int64) int {
	if audioMs <= 0 || chunkMs <= 0 {
		return 0
	}
	return int((audioMs + chunkMs - 1) / chunkMs)
}
