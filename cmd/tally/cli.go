package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/tally/internal/calc"
	"github.com/hpungsan/tally/internal/config"
	"github.com/hpungsan/tally/internal/db"
	"github.com/hpungsan/tally/internal/errors"
	"github.com/hpungsan/tally/internal/ops"
	"github.com/hpungsan/tally/internal/session"
	"github.com/hpungsan/tally/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(database *sql.DB, cfg *config.Config, baseDir string, logger *zap.Logger) *cli.App {
	app := &cli.App{
		Name:    "tally",
		Usage:   "Point-of-sale calculator",
		Version: Version,
		Commands: []*cli.Command{
			evalCmd(database),
			calcCmd(database, cfg),
			historyCmd(database, cfg, baseDir),
			posCmd(database, cfg),
			settingsCmd(database),
			serveCmd(database, cfg, logger),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// EvalOutput is printed by the eval command.
type EvalOutput struct {
	Expression string        `json:"expression"`
	Result     string        `json:"result"`
	Formatted  string        `json:"formatted"`
	Currency   calc.Currency `json:"currency"`
}

// evalCmd creates the eval command.
func evalCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "eval",
		Usage:     "Evaluate an expression without storing it",
		ArgsUsage: "<expression>",
		Action: func(c *cli.Context) error {
			expr := strings.Join(c.Args().Slice(), "")
			if strings.TrimSpace(expr) == "" {
				return outputError(errors.NewInvalidRequest("expression is required"))
			}

			settings, err := ops.GetSettings(c.Context, database)
			if err != nil {
				return outputError(err)
			}

			expr = calc.Normalize(expr)
			result := calc.Evaluate(expr)
			return outputJSON(EvalOutput{
				Expression: expr,
				Result:     result,
				Formatted:  calc.FormatCurrency(result, settings.Currency),
				Currency:   settings.Currency,
			})
		},
	}
}

// calcCmd creates the interactive calc command.
func calcCmd(database *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "calc",
		Usage: "Interactive keypad: type keys, then u(ndo) r(edo) =(commit) c(lear) d(elete) n(egate) q(uit)",
		Action: func(c *cli.Context) error {
			return runKeypad(c.Context, database, cfg, os.Stdin, os.Stdout)
		},
	}
}

// runKeypad reads one command or run of keys per line and prints the
// resulting expression and preview. A line ending in "=" commits after
// applying its keys.
func runKeypad(ctx context.Context, database *sql.DB, cfg *config.Config, in io.Reader, out io.Writer) error {
	sess := session.New(cfg.UndoDepth)
	show := func(state session.State) {
		fmt.Fprintf(out, "%s  [%s]\n", state.Text, state.Preview)
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "q":
			return nil
		case "u":
			sess.Undo()
			show(sess.State())
			continue
		case "r":
			sess.Redo()
			show(sess.State())
			continue
		case "c":
			show(sess.Clear())
			continue
		case "d":
			show(sess.DeleteLast())
			continue
		case "n":
			show(sess.ToggleSign())
			continue
		}

		keys, commit := strings.CutSuffix(line, "=")
		if keys != "" {
			tokens, err := calc.ParseTokens(keys)
			if err != nil {
				fmt.Fprintln(out, formatError(err))
				continue
			}
			sess.InputAll(tokens)
		}
		if !commit {
			show(sess.State())
			continue
		}

		committed := sess.Commit()
		if _, err := ops.AppendHistory(ctx, database, cfg, committed.Record); err != nil {
			fmt.Fprintln(out, formatError(err))
		}
		fmt.Fprintf(out, "= %s\n", committed.ResultText)
	}
	return scanner.Err()
}

// historyCmd creates the history command group.
func historyCmd(database *sql.DB, cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect committed calculations",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List calculations, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Max items"},
					&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.ListHistory(c.Context, database, ops.ListHistoryInput{
						Limit:  c.Int("limit"),
						Offset: c.Int("offset"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "show",
				Usage:     "Show one calculation",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					output, err := ops.FetchHistory(c.Context, database, c.Args().First())
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "clear",
				Usage: "Delete every calculation (sales are kept)",
				Action: func(c *cli.Context) error {
					output, err := ops.ClearHistory(c.Context, database)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "export",
				Usage: "Export calculations to JSONL",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output path (default: <base>/exports/history-<time>.jsonl)"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.ExportHistory(c.Context, database, cfg, ops.ExportInput{
						Path:       c.String("path"),
						ExportsDir: db.ExportsDir(baseDir),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// posCmd creates the pos command group.
func posCmd(database *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "pos",
		Usage: "Sales ledger and totals",
		Subcommands: []*cli.Command{
			{
				Name:  "stats",
				Usage: "Revenue totals for all time, this month, and today",
				Action: func(c *cli.Context) error {
					output, err := ops.Stats(c.Context, database, time.Now())
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "purchases",
				Usage: "List recorded sales, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Max items"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.ListPurchases(c.Context, database, cfg, ops.ListPurchasesInput{Limit: c.Int("limit")})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "report",
				Usage: "Print the markdown sales report",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Print the report with its data as JSON"},
				},
				Action: func(c *cli.Context) error {
					settings, err := ops.GetSettings(c.Context, database)
					if err != nil {
						return outputError(err)
					}
					output, err := ops.Report(c.Context, database, cfg, *settings, time.Now())
					if err != nil {
						return outputError(err)
					}
					if c.Bool("json") {
						return outputJSON(output)
					}
					_, err = io.WriteString(os.Stdout, output.Markdown)
					return err
				},
			},
		},
	}
}

// settingsCmd creates the settings command group.
func settingsCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change app settings",
		Subcommands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Show settings",
				Action: func(c *cli.Context) error {
					output, err := ops.GetSettings(c.Context, database)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "set",
				Usage: "Change settings; omitted flags keep their value",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "currency", Usage: "GHS|USD|EUR|GBP|JPY|NGN"},
					&cli.StringFlag{Name: "theme", Usage: "light|dark"},
					&cli.StringFlag{Name: "accent", Usage: "Accent colour #rrggbb"},
					&cli.BoolFlag{Name: "haptic", Usage: "Keypad vibration"},
					&cli.StringFlag{Name: "intensity", Usage: "soft|medium|intense"},
				},
				Action: func(c *cli.Context) error {
					var patch ops.SettingsPatch
					if c.IsSet("currency") {
						v := c.String("currency")
						patch.Currency = &v
					}
					if c.IsSet("theme") {
						v := c.String("theme")
						patch.ThemeMode = &v
					}
					if c.IsSet("accent") {
						v := c.String("accent")
						patch.AccentColor = &v
					}
					if c.IsSet("haptic") {
						v := c.Bool("haptic")
						patch.HapticFeedback = &v
					}
					if c.IsSet("intensity") {
						v := c.String("intensity")
						patch.HapticIntensity = &v
					}

					output, err := ops.UpdateSettings(c.Context, database, patch)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(database *sql.DB, cfg *config.Config, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web keypad",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Address to bind (default from config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Port to listen on (default from config)"},
		},
		Action: func(c *cli.Context) error {
			bind := cfg.WebBind
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			port := cfg.WebPort
			if c.IsSet("port") {
				port = c.Int("port")
			}
			if port < 1 || port > 65535 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("port out of range: %d", port)))
			}

			srv, err := web.NewServer(database, cfg, Version, bind, port, logger)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(srv, logger)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	return cli.Exit(formatError(err), 1)
}

// formatError renders err as "[CODE] message".
func formatError(err error) string {
	var tErr *errors.TallyError
	if stderrors.As(err, &tErr) {
		return fmt.Sprintf("[%s] %s", tErr.Code, tErr.Message)
	}
	return err.Error()
}
