package database

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS transcripts (
    id            BIGSERIAL PRIMARY KEY,
    filename      TEXT NOT NULL,
    text          TEXT NOT NULL,
    language      TEXT NOT NULL DEFAULT '',
    model         TEXT NOT NULL DEFAULT '',
    provider      TEXT NOT NULL DEFAULT '',
    word_count    INTEGER NOT NULL DEFAULT 0,
    audio_ms      BIGINT NOT NULL DEFAULT 0,
    processing_ms BIGINT NOT NULL DEFAULT 0,
    chunk_count   INTEGER NOT NULL DEFAULT 0,
    complete      BOOLEAN NOT NULL DEFAULT true,
    words         JSONB,
    segments      JSONB,
    gaps          JSONB,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_transcripts_created_at ON transcripts (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_transcripts_filename ON transcripts (filename);
`

// InitSchema creates the transcripts table on a fresh database.
// Idempotent; safe to run at every startup.
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schemaSQL); err != nil {
		return err
	}
	db.log.Debug().Msg("schema ensured")
	return nil
}
