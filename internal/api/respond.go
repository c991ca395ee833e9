package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rustyeddy/candlewaker/images"
	"github.com/rustyeddy/candlewaker/journal"
	"github.com/rustyeddy/candlewaker/tasks"
)

var errBadBody = errors.New("bad request body")

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError maps service errors to HTTP statuses: coded reference
// conflicts are 409, unknown ids 404, bad input 400, anything else 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	if code := journal.ErrorCode(err); code != "" {
		s.writeJSON(w, http.StatusConflict, errorBody{Error: code, Code: code})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, journal.ErrNotFound), errors.Is(err, tasks.ErrNotFound), errors.Is(err, images.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, journal.ErrInvalidInput), errors.Is(err, tasks.ErrInvalid),
		errors.Is(err, images.ErrInvalid), errors.Is(err, errBadBody):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("request failed")
	}
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 32<<20))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}

type countBody struct {
	Count int64 `json:"count"`
}
