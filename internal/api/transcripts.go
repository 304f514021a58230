package api

import (
	"net/http"

	"github.com/snarg/scribe-engine/internal/database"
)

// TranscriptsHandler serves the transcript history.
type TranscriptsHandler struct {
	db *database.DB
}

// List returns recent transcripts, newest first. Supports ?limit=.
func (h *TranscriptsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := QueryLimit(r, 50)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.db.RecentTranscripts(r.Context(), limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if rows == nil {
		rows = []database.TranscriptAPI{}
	}

	WriteJSONStatus(w, http.StatusOK, map[string]any{
		"transcripts": rows,
		"count":       len(rows),
	})
}
