package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	"github.com/secmon-lab/weeklydigest/pkg/usecase"
)

type ingestHandler struct {
	uc       usecase.IngestUseCase
	passcode string
}

func (h *ingestHandler) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"ok":   true,
		"info": "POST JSON to create/update a weekly file.",
	})
}

func (h *ingestHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req model.IngestRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, r, goerr.Wrap(err, "invalid JSON body", goerr.T(model.ErrTagInvalidRequest)))
		return
	}

	// Passcode is checked before anything else is looked at
	passcode := req.Passcode
	if passcode == "" {
		passcode = r.Header.Get(PasscodeHeader)
	}
	if err := checkPasscode(h.passcode, passcode); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.uc.Submit(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"ok":         true,
		"info":       "Saved " + result.Path,
		"receipt_id": result.ReceiptID,
		"submission": result.Submission,
		"dispatched": result.Dispatched,
	})
}
