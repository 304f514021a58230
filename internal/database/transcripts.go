package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// TranscriptRow is the input for inserting a finished transcript.
type TranscriptRow struct {
	Filename     string
	Text         string
	Language     string
	Model        string
	Provider     string
	WordCount    int
	AudioMs      int64
	ProcessingMs int64
	ChunkCount   int
	Complete     bool
	Words        json.RawMessage // word tokens with global timestamps
	Segments     json.RawMessage
	Gaps         json.RawMessage // nil when the transcript is complete
}

// TranscriptAPI is the transcript representation for API responses.
type TranscriptAPI struct {
	ID           int64           `json:"id"`
	Filename     string          `json:"filename"`
	Text         string          `json:"text"`
	Language     string          `json:"language,omitempty"`
	Model        string          `json:"model,omitempty"`
	Provider     string          `json:"provider,omitempty"`
	WordCount    int             `json:"word_count"`
	AudioMs      int64           `json:"audio_ms"`
	ProcessingMs int64           `json:"processing_ms"`
	ChunkCount   int             `json:"chunk_count"`
	Complete     bool            `json:"complete"`
	Gaps         json.RawMessage `json:"gaps,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// InsertTranscript stores a finished transcript and returns its id.
func (db *DB) InsertTranscript(ctx context.Context, row *TranscriptRow) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO transcripts (
			filename, text, language, model, provider,
			word_count, audio_ms, processing_ms, chunk_count, complete,
			words, segments, gaps
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`,
		row.Filename, row.Text, row.Language, row.Model, row.Provider,
		row.WordCount, row.AudioMs, row.ProcessingMs, row.ChunkCount, row.Complete,
		row.Words, row.Segments, row.Gaps,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert transcript: %w", err)
	}
	return id, nil
}

// RecentTranscripts returns the newest transcripts, most recent first.
func (db *DB) RecentTranscripts(ctx context.Context, limit int) ([]TranscriptAPI, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT id, filename, text, language, model, provider,
		       word_count, audio_ms, processing_ms, chunk_count, complete,
		       gaps, created_at
		FROM transcripts
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query transcripts: %w", err)
	}
	defer rows.Close()

	var out []TranscriptAPI
	for rows.Next() {
		var t TranscriptAPI
		if err := rows.Scan(
			&t.ID, &t.Filename, &t.Text, &t.Language, &t.Model, &t.Provider,
			&t.WordCount, &t.AudioMs, &t.ProcessingMs, &t.ChunkCount, &t.Complete,
			&t.Gaps, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
