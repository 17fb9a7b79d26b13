package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/hpungsan/tally/internal/calc"
	"github.com/hpungsan/tally/internal/config"
	"github.com/hpungsan/tally/internal/errors"
	"github.com/hpungsan/tally/internal/ops"
	"github.com/hpungsan/tally/internal/record"
	"github.com/hpungsan/tally/internal/session"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db      *sql.DB
	cfg     *config.Config
	session *session.Session
	logger  *zap.Logger
	now     func() time.Time
}

// NewHandlers creates a new Handlers instance. A nil logger discards output.
func NewHandlers(db *sql.DB, cfg *config.Config, sess *session.Session, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{db: db, cfg: cfg, session: sess, logger: logger, now: time.Now}
}

// Request types for each tool

// EvalRequest represents the arguments for calc_eval.
type EvalRequest struct {
	Expression string `json:"expression"`
}

// InputRequest represents the arguments for calc_input.
type InputRequest struct {
	Keys string `json:"keys"`
}

// HistoryListRequest represents the arguments for history_list.
type HistoryListRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// HistoryReuseRequest represents the arguments for history_reuse.
type HistoryReuseRequest struct {
	ID string `json:"id"`
}

// PurchasesRequest represents the arguments for pos_purchases.
type PurchasesRequest struct {
	Limit int `json:"limit,omitempty"`
}

// Response types

// EvalResponse is returned by calc_eval.
type EvalResponse struct {
	Expression string        `json:"expression"`
	Result     string        `json:"result"`
	Formatted  string        `json:"formatted"`
	Currency   calc.Currency `json:"currency"`
}

// UndoResponse is returned by calc_undo and calc_redo.
type UndoResponse struct {
	Changed bool          `json:"changed"`
	State   session.State `json:"state"`
}

// CommitResponse is returned by calc_commit.
type CommitResponse struct {
	Result   string           `json:"result"`
	Record   record.Record    `json:"record"`
	Purchase *record.Purchase `json:"purchase,omitempty"`
	State    session.State    `json:"state"`
}

// HandleEval handles the calc_eval tool call.
func (h *Handlers) HandleEval(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[EvalRequest](req)
	if err != nil {
		return h.fail("calc_eval", err), nil
	}
	if strings.TrimSpace(input.Expression) == "" {
		return h.fail("calc_eval", errors.NewInvalidRequest("expression is required")), nil
	}

	settings, err := ops.GetSettings(ctx, h.db)
	if err != nil {
		return h.fail("calc_eval", err), nil
	}

	expr := calc.Normalize(input.Expression)
	result := calc.Evaluate(expr)
	return successResult(EvalResponse{
		Expression: expr,
		Result:     result,
		Formatted:  calc.FormatCurrency(result, settings.Currency),
		Currency:   settings.Currency,
	})
}

// HandleInput handles the calc_input tool call.
func (h *Handlers) HandleInput(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[InputRequest](req)
	if err != nil {
		return h.fail("calc_input", err), nil
	}

	tokens, err := calc.ParseTokens(input.Keys)
	if err != nil {
		return h.fail("calc_input", err), nil
	}
	return successResult(h.session.InputAll(tokens))
}

// HandleDelete handles the calc_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.session.DeleteLast())
}

// HandleClear handles the calc_clear tool call.
func (h *Handlers) HandleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.session.Clear())
}

// HandleToggleSign handles the calc_toggle_sign tool call.
func (h *Handlers) HandleToggleSign(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.session.ToggleSign())
}

// HandleCommit handles the calc_commit tool call. The session enters result
// mode even when persisting the record fails; the error is still reported.
func (h *Handlers) HandleCommit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	committed := h.session.Commit()

	stored, err := ops.AppendHistory(ctx, h.db, h.cfg, committed.Record)
	if err != nil {
		return h.fail("calc_commit", err), nil
	}

	return successResult(CommitResponse{
		Result:   committed.ResultText,
		Record:   stored.Record,
		Purchase: stored.Purchase,
		State:    committed.State,
	})
}

// HandleUndo handles the calc_undo tool call.
func (h *Handlers) HandleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	changed, state := h.session.UndoState()
	return successResult(UndoResponse{Changed: changed, State: state})
}

// HandleRedo handles the calc_redo tool call.
func (h *Handlers) HandleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	changed, state := h.session.RedoState()
	return successResult(UndoResponse{Changed: changed, State: state})
}

// HandleState handles the calc_state tool call.
func (h *Handlers) HandleState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.session.State())
}

// HandleHistoryList handles the history_list tool call.
func (h *Handlers) HandleHistoryList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryListRequest](req)
	if err != nil {
		return h.fail("history_list", err), nil
	}

	result, err := ops.ListHistory(ctx, h.db, ops.ListHistoryInput{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return h.fail("history_list", err), nil
	}
	return successResult(result)
}

// HandleHistoryReuse handles the history_reuse tool call.
func (h *Handlers) HandleHistoryReuse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryReuseRequest](req)
	if err != nil {
		return h.fail("history_reuse", err), nil
	}

	rec, err := ops.FetchHistory(ctx, h.db, input.ID)
	if err != nil {
		return h.fail("history_reuse", err), nil
	}
	return successResult(h.session.LoadFromRecord(*rec))
}

// HandleHistoryClear handles the history_clear tool call.
func (h *Handlers) HandleHistoryClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ClearHistory(ctx, h.db)
	if err != nil {
		return h.fail("history_clear", err), nil
	}
	return successResult(result)
}

// HandleStats handles the pos_stats tool call.
func (h *Handlers) HandleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Stats(ctx, h.db, h.now())
	if err != nil {
		return h.fail("pos_stats", err), nil
	}
	return successResult(result)
}

// HandlePurchases handles the pos_purchases tool call.
func (h *Handlers) HandlePurchases(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PurchasesRequest](req)
	if err != nil {
		return h.fail("pos_purchases", err), nil
	}

	result, err := ops.ListPurchases(ctx, h.db, h.cfg, ops.ListPurchasesInput{Limit: input.Limit})
	if err != nil {
		return h.fail("pos_purchases", err), nil
	}
	return successResult(result)
}

// HandleSettingsGet handles the settings_get tool call.
func (h *Handlers) HandleSettingsGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.GetSettings(ctx, h.db)
	if err != nil {
		return h.fail("settings_get", err), nil
	}
	return successResult(result)
}

// HandleSettingsUpdate handles the settings_update tool call.
func (h *Handlers) HandleSettingsUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	patch, err := decode[ops.SettingsPatch](req)
	if err != nil {
		return h.fail("settings_update", err), nil
	}

	result, err := ops.UpdateSettings(ctx, h.db, patch)
	if err != nil {
		return h.fail("settings_update", err), nil
	}
	return successResult(result)
}

// fail logs a failed tool call and converts err to an error result.
func (h *Handlers) fail(tool string, err error) *mcp.CallToolResult {
	fields := []zap.Field{zap.String("tool", tool), zap.Error(err)}
	if errors.Is(err, errors.ErrInternal) {
		h.logger.Error("tool call failed", fields...)
	} else {
		h.logger.Debug("tool call rejected", fields...)
	}
	return errorResult(err)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var tErr *errors.TallyError
	if stderrors.As(err, &tErr) {
		// Keep wrapper context such as "tokens[3]: " ahead of the message.
		msg := tErr.Message
		if prefix := strings.TrimSuffix(err.Error(), tErr.Error()); prefix != err.Error() {
			msg = prefix + msg
		}
		errorObj := map[string]any{
			"code":    tErr.Code,
			"message": msg,
			"status":  tErr.Status,
		}
		if tErr.Code != errors.ErrInternal && tErr.Details != nil {
			errorObj["details"] = tErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result with JSON content.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
