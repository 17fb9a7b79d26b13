package mcp

import "github.com/mark3labs/mcp-go/mcp"

var evalToolDef = mcp.NewTool("calc_eval",
	mcp.WithDescription("Evaluate an expression without touching the session. Returns the two-decimal result and the amount in the configured currency."),
	mcp.WithString("expression", mcp.Required(), mcp.Description("Expression using digits, '.', '%', and + - × ÷ (or * / x).")),
)

var inputToolDef = mcp.NewTool("calc_input",
	mcp.WithDescription("Press keypad keys on the shared session. Each key is one undoable edit."),
	mcp.WithString("keys", mcp.Required(), mcp.Description("Keys to press in order, e.g. \"12×3+4\". Spaces are ignored.")),
)

var deleteToolDef = mcp.NewTool("calc_delete",
	mcp.WithDescription("Remove the last character of the expression."),
)

var clearToolDef = mcp.NewTool("calc_clear",
	mcp.WithDescription("Reset the expression to 0."),
)

var toggleSignToolDef = mcp.NewTool("calc_toggle_sign",
	mcp.WithDescription("Add or remove a leading minus on the expression."),
)

var commitToolDef = mcp.NewTool("calc_commit",
	mcp.WithDescription("Evaluate the expression (=), store it in history, and record the sale."),
)

var undoToolDef = mcp.NewTool("calc_undo",
	mcp.WithDescription("Step back one edit. Reports changed=false when there is nothing to undo."),
)

var redoToolDef = mcp.NewTool("calc_redo",
	mcp.WithDescription("Re-apply one undone edit. Reports changed=false when there is nothing to redo."),
)

var stateToolDef = mcp.NewTool("calc_state",
	mcp.WithDescription("Show the expression, live preview, and undo/redo availability."),
)

var historyListToolDef = mcp.NewTool("history_list",
	mcp.WithDescription("List committed calculations, newest first."),
	mcp.WithNumber("limit", mcp.Description("Max items (default 20, max 100).")),
	mcp.WithNumber("offset", mcp.Description("Items to skip.")),
)

var historyReuseToolDef = mcp.NewTool("history_reuse",
	mcp.WithDescription("Load a past result into the session as the current expression."),
	mcp.WithString("id", mcp.Required(), mcp.Description("History record ID.")),
)

var historyClearToolDef = mcp.NewTool("history_clear",
	mcp.WithDescription("Delete every history record. Purchases are kept."),
)

var posStatsToolDef = mcp.NewTool("pos_stats",
	mcp.WithDescription("Sales totals: overall, this month, today, invoices today, and average per customer."),
)

var posPurchasesToolDef = mcp.NewTool("pos_purchases",
	mcp.WithDescription("List recorded sales, newest first."),
	mcp.WithNumber("limit", mcp.Description("Max items (default 20, max 100).")),
)

var settingsGetToolDef = mcp.NewTool("settings_get",
	mcp.WithDescription("Show app settings."),
)

var settingsUpdateToolDef = mcp.NewTool("settings_update",
	mcp.WithDescription("Change app settings. Omitted fields are left as they are."),
	mcp.WithString("currency", mcp.Description("GHS, USD, EUR, GBP, JPY, or NGN.")),
	mcp.WithString("theme_mode", mcp.Description("light or dark.")),
	mcp.WithString("accent_color", mcp.Description("Hex colour, #rrggbb.")),
	mcp.WithBoolean("haptic_feedback", mcp.Description("Keypad vibration on or off.")),
	mcp.WithString("haptic_intensity", mcp.Description("soft, medium, or intense.")),
)
