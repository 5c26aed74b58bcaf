package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	"github.com/secmon-lab/weeklydigest/pkg/utils/apperr"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode response", "error", err)
	}
}

// statusOf maps error tags to HTTP status codes
func statusOf(err error) int {
	switch {
	case goerr.HasTag(err, model.ErrTagUnauthorized):
		return http.StatusUnauthorized
	case goerr.HasTag(err, model.ErrTagInvalidRequest),
		goerr.HasTag(err, model.ErrTagMalformedInput),
		goerr.HasTag(err, model.ErrTagInvalidSubmission):
		return http.StatusBadRequest
	case goerr.HasTag(err, model.ErrTagNotFound):
		return http.StatusNotFound
	case goerr.HasTag(err, model.ErrTagSummarizeFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes {ok:false, error} with a status derived from the error.
// Server errors are logged and their details hidden.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		apperr.Handle(r.Context(), err)
		if status != http.StatusBadGateway {
			msg = http.StatusText(status)
		}
	}

	writeJSON(w, r, status, map[string]any{
		"ok":    false,
		"error": msg,
	})
}
