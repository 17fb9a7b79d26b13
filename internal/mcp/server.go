package mcp

import (
	"database/sql"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/hpungsan/tally/internal/config"
	"github.com/hpungsan/tally/internal/session"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"calc", "history", "pos", "settings"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"calc_eval": {
		def:     evalToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleEval },
	},
	"calc_input": {
		def:     inputToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleInput },
	},
	"calc_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"calc_clear": {
		def:     clearToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleClear },
	},
	"calc_toggle_sign": {
		def:     toggleSignToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleToggleSign },
	},
	"calc_commit": {
		def:     commitToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCommit },
	},
	"calc_undo": {
		def:     undoToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUndo },
	},
	"calc_redo": {
		def:     redoToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRedo },
	},
	"calc_state": {
		def:     stateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleState },
	},
	"history_list": {
		def:     historyListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHistoryList },
	},
	"history_reuse": {
		def:     historyReuseToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHistoryReuse },
	},
	"history_clear": {
		def:     historyClearToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHistoryClear },
	},
	"pos_stats": {
		def:     posStatsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStats },
	},
	"pos_purchases": {
		def:     posPurchasesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePurchases },
	},
	"settings_get": {
		def:     settingsGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSettingsGet },
	},
	"settings_update": {
		def:     settingsUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSettingsUpdate },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "calc_commit" → "calc").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates an MCP server with Tally tools registered against one
// shared calculator session. Tools listed in cfg.DisabledTools or belonging
// to cfg.DisabledTypes are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, version string, logger *zap.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"tally",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, session.New(cfg.UndoDepth), logger)

	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, version string, logger *zap.Logger) error {
	s := NewServer(db, cfg, version, logger)
	logger.Info("mcp server starting", zap.String("transport", "stdio"), zap.String("version", version))
	return server.ServeStdio(s)
}
