package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scribe_engine"

// Chunk pipeline counters (incremented by the reassembler).
var (
	ChunksTranscribed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chunks_transcribed_total",
		Help:      "Chunk transcriptions that returned a usable result.",
	})

	ChunksFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chunk_attempts_failed_total",
		Help:      "Individual chunk transcription attempts that failed.",
	})

	ChunkRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chunk_retries_total",
		Help:      "Chunk transcription retries after a failed attempt.",
	})

	GapsRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gaps_recorded_total",
		Help:      "Chunks downgraded to transcript gaps after exhausting retries.",
	})

	SeamCharsTrimmed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "seam_chars_trimmed_total",
		Help:      "Characters removed by seam deduplication at chunk boundaries.",
	})

	ChunkDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "chunk_transcribe_duration_seconds",
		Help:      "Wall time per successful chunk transcription.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s → ~4m
	})
)

// Transcript-level counters (incremented by the engine front-end).
var (
	TranscriptsCompleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transcripts_completed_total",
		Help:      "Finished transcripts by outcome (complete or partial).",
	}, []string{"outcome"})

	TranscriptsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transcripts_failed_total",
		Help:      "Recordings that produced no transcript at all.",
	})
)

func init() {
	prometheus.MustRegister(
		ChunksTranscribed,
		ChunksFailed,
		ChunkRetries,
		GapsRecorded,
		SeamCharsTrimmed,
		ChunkDuration,
		TranscriptsCompleted,
		TranscriptsFailed,
	)
}

// Handler returns the prometheus scrape handler for mounting on the API router.
func Handler() http.Handler {
	return promhttp.Handler()
}
