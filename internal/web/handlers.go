package web

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hpungsan/tally/internal/calc"
	"github.com/hpungsan/tally/internal/config"
	"github.com/hpungsan/tally/internal/errors"
	"github.com/hpungsan/tally/internal/ops"
	"github.com/hpungsan/tally/internal/session"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// Handlers contains HTTP route handlers for the web UI and JSON API.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	session  *session.Session
	renderer *Renderer
	metrics  *Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// InputRequest is the body of POST /api/input. Token is one key; Keys is a
// run of keys, each applied as its own edit.
type InputRequest struct {
	Token string `json:"token,omitempty"`
	Keys  string `json:"keys,omitempty"`
}

// UndoResponse is returned by the undo and redo endpoints.
type UndoResponse struct {
	Changed bool          `json:"changed"`
	State   session.State `json:"state"`
}

// HandleKeypad handles GET /, the calculator page.
func (h *Handlers) HandleKeypad(w http.ResponseWriter, r *http.Request) {
	settings, err := ops.GetSettings(r.Context(), h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	history, err := ops.ListHistory(r.Context(), h.db, ops.ListHistoryInput{Limit: parseIntParam(r, "limit", ops.DefaultListLimit)})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	state := h.session.State()
	h.renderer.renderPage(w, "keypad", KeypadPageData{
		PageData: PageData{
			Title:    "Tally",
			Version:  h.renderer.version,
			Nav:      "keypad",
			Settings: *settings,
		},
		State:     state,
		Formatted: calc.FormatCurrency(state.Preview, settings.Currency),
		History:   history.Items,
	})
}

// HandleReport handles GET /report, the sales report rendered from markdown.
func (h *Handlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	settings, err := ops.GetSettings(r.Context(), h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	report, err := ops.Report(r.Context(), h.db, h.cfg, *settings, h.now())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "report", ReportPageData{
		PageData: PageData{
			Title:    "Sales Report",
			Version:  h.renderer.version,
			Nav:      "report",
			Settings: *settings,
		},
		Report:       report,
		RenderedHTML: renderMarkdown(report.Markdown),
	})
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleState handles GET /api/state.
func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, h.session.State())
}

// HandleInput handles POST /api/input.
func (h *Handlers) HandleInput(w http.ResponseWriter, r *http.Request) {
	var req InputRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	var tokens []calc.Token
	switch {
	case req.Token != "":
		tok, err := calc.ParseToken(req.Token)
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		tokens = []calc.Token{tok}
	case req.Keys != "":
		var err error
		if tokens, err = calc.ParseTokens(req.Keys); err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
	default:
		h.renderer.renderError(w, r, errors.NewInvalidRequest("token is required"))
		return
	}

	state := h.session.InputAll(tokens)
	for _, tok := range tokens {
		h.metrics.inputs.WithLabelValues(tok.Kind.String()).Inc()
	}
	renderJSON(w, http.StatusOK, state)
}

// HandleDelete handles POST /api/delete.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.metrics.inputs.WithLabelValues("delete").Inc()
	renderJSON(w, http.StatusOK, h.session.DeleteLast())
}

// HandleClear handles POST /api/clear.
func (h *Handlers) HandleClear(w http.ResponseWriter, r *http.Request) {
	h.metrics.inputs.WithLabelValues("clear").Inc()
	renderJSON(w, http.StatusOK, h.session.Clear())
}

// HandleToggleSign handles POST /api/sign.
func (h *Handlers) HandleToggleSign(w http.ResponseWriter, r *http.Request) {
	h.metrics.inputs.WithLabelValues("sign").Inc()
	renderJSON(w, http.StatusOK, h.session.ToggleSign())
}

// HandleCommit handles POST /api/commit: evaluate, then persist the record
// and its sale.
func (h *Handlers) HandleCommit(w http.ResponseWriter, r *http.Request) {
	committed := h.session.Commit()
	h.metrics.commits.Inc()

	stored, err := ops.AppendHistory(r.Context(), h.db, h.cfg, committed.Record)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]any{
		"result":   committed.ResultText,
		"record":   stored.Record,
		"purchase": stored.Purchase,
		"state":    committed.State,
	})
}

// HandleUndo handles POST /api/undo.
func (h *Handlers) HandleUndo(w http.ResponseWriter, r *http.Request) {
	changed, state := h.session.UndoState()
	if changed {
		h.metrics.undo.WithLabelValues("undo").Inc()
	}
	renderJSON(w, http.StatusOK, UndoResponse{Changed: changed, State: state})
}

// HandleRedo handles POST /api/redo.
func (h *Handlers) HandleRedo(w http.ResponseWriter, r *http.Request) {
	changed, state := h.session.RedoState()
	if changed {
		h.metrics.undo.WithLabelValues("redo").Inc()
	}
	renderJSON(w, http.StatusOK, UndoResponse{Changed: changed, State: state})
}

// HandleHistoryList handles GET /api/history.
func (h *Handlers) HandleHistoryList(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ListHistory(r.Context(), h.db, ops.ListHistoryInput{
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleHistoryClear handles DELETE /api/history.
func (h *Handlers) HandleHistoryClear(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ClearHistory(r.Context(), h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleHistoryReuse handles POST /api/history/{id}/reuse.
func (h *Handlers) HandleHistoryReuse(w http.ResponseWriter, r *http.Request) {
	rec, err := ops.FetchHistory(r.Context(), h.db, chi.URLParam(r, "id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, h.session.LoadFromRecord(*rec))
}

// HandleStats handles GET /api/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Stats(r.Context(), h.db, h.now())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandlePurchases handles GET /api/purchases.
func (h *Handlers) HandlePurchases(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ListPurchases(r.Context(), h.db, h.cfg, ops.ListPurchasesInput{
		Limit: parseIntParam(r, "limit", ops.DefaultListLimit),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleSettingsGet handles GET /api/settings.
func (h *Handlers) HandleSettingsGet(w http.ResponseWriter, r *http.Request) {
	result, err := ops.GetSettings(r.Context(), h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleSettingsUpdate handles PUT /api/settings.
func (h *Handlers) HandleSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var patch ops.SettingsPatch
	if err := decodeBody(w, r, &patch); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	result, err := ops.UpdateSettings(r.Context(), h.db, patch)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// decodeBody reads a JSON request body into dst. An empty body leaves dst zero.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && err != io.EOF {
		return errors.NewInvalidRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
