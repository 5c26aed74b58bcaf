package http

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
	"github.com/secmon-lab/weeklydigest/pkg/usecase"
)

type digestHandler struct {
	uc      usecase.DigestUseCase
	baseURL string
}

func (h *digestHandler) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"ok":   true,
		"info": "POST { run_metadata: { week_ending }, submissions: [...] } to build the weekly reports.",
	})
}

// handleAggregate renders a report from the posted payload without touching the store
func (h *digestHandler) handleAggregate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, r, goerr.Wrap(err, "failed to read body", goerr.T(model.ErrTagMalformedInput)))
		return
	}

	input, err := model.ParseAggregateInput(body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rep, err := h.uc.Aggregate(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"ok":                   true,
		"week_ending":          rep.WeekEnding,
		"executive_summary_md": rep.ExecutiveSummaryMD,
		"combined_update_md":   rep.CombinedUpdateMD,
	})
}

func (h *digestHandler) handleCombineWeek(w http.ResponseWriter, r *http.Request) {
	week := types.WeekEnding(chi.URLParam(r, "week"))

	opts := usecase.CombineOptions{HardGate: true, Mode: "server"}
	if v := r.URL.Query().Get("hard_gate"); v != "" {
		gate, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, goerr.Wrap(err, "hard_gate must be a boolean", goerr.T(model.ErrTagInvalidRequest)))
			return
		}
		opts.HardGate = gate
	}

	result, err := h.uc.CombineWeek(r.Context(), week, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := map[string]any{
		"ok":          true,
		"week_ending": week,
		"waiting":     result.Waiting,
		"present":     result.Completeness.Present,
		"missing":     result.Completeness.Missing,
		"published":   result.Published,
		"unchanged":   result.Unchanged,
	}
	if result.Waiting {
		resp["info"] = "Waiting for all submissions for " + week.String()
	} else {
		resp["info"] = "Combined summary written for " + week.String()
		resp["report_url"] = reportURL(r, h.baseURL, week.String())
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (h *digestHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	week := types.WeekEnding(chi.URLParam(r, "week"))

	c, err := h.uc.WeekStatus(r.Context(), week)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"ok":          true,
		"week_ending": week,
		"complete":    c.IsComplete(),
		"have":        len(c.Present),
		"total":       c.Total(),
		"present":     c.Present,
		"missing":     c.Missing,
	})
}

func (h *digestHandler) handleReport(w http.ResponseWriter, r *http.Request) {
	week := types.WeekEnding(chi.URLParam(r, "week"))

	rep, err := h.uc.GetReport(r.Context(), week)
	if err != nil {
		writeError(w, r, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, r, http.StatusOK, map[string]any{
			"ok":     true,
			"report": rep,
		})

	case "md", "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, rep.Markdown())

	case "html":
		page, err := renderReportHTML(rep.WeekEnding, rep.ExecutiveSummaryMD, rep.CombinedUpdateMD)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(page)

	default:
		writeError(w, r, goerr.New("format must be one of json, md, html",
			goerr.V("format", format), goerr.T(model.ErrTagInvalidRequest)))
	}
}
