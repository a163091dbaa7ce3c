package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/studio/internal/config"
	"github.com/hpungsan/studio/internal/errors"
	"github.com/hpungsan/studio/internal/ops"
	"github.com/hpungsan/studio/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "studio",
		Usage:   "Stage-gated product ideation sessions",
		Version: Version,
		Commands: []*cli.Command{
			createCmd(db),
			showCmd(db),
			listCmd(db),
			deleteCmd(db),
			stageCmd(db),
			approveCmd(db),
			awaitingCmd(db),
			visualCmd(db),
			briefCmd(db),
			specCmd(db),
			decisionCmd(db),
			ingredientsCmd(db),
			manufacturersCmd(db),
			serveCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// createCmd creates the create command.
func createCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create a new ideation session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Session title (optional)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.CreateSessionInput{}
			if title := c.String("title"); title != "" {
				input.Title = &title
			}

			output, err := ops.CreateSession(db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show the full record of a session",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Snapshot(db, ops.SnapshotInput{
				SessionID: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List sessions, most recently updated first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(db, ops.ListInput{
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a session",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(db, ops.DeleteInput{
				SessionID: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// stageCmd creates the stage command.
func stageCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "stage",
		Usage:     "Move a session to a pipeline stage (forward moves are gated)",
		ArgsUsage: "<id> <stage>",
		Action: func(c *cli.Context) error {
			output, err := ops.SetStage(db, ops.SetStageInput{
				SessionID: c.Args().Get(0),
				Stage:     c.Args().Get(1),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// approveCmd creates the approve command.
func approveCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "approve",
		Usage:     "Mark an approval gate (viability, visuals, or spec)",
		ArgsUsage: "<id> <gate>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "revoke", Usage: "Clear the gate instead of setting it"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.MarkApproval(db, ops.MarkApprovalInput{
				SessionID: c.Args().Get(0),
				Gate:      c.Args().Get(1),
				Value:     !c.Bool("revoke"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// awaitingCmd creates the awaiting command.
func awaitingCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "awaiting",
		Usage:     "Flag whether the session is blocked on user approval",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "clear", Usage: "Clear the flag instead of setting it"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.SetAwaiting(db, ops.SetAwaitingInput{
				SessionID: c.Args().First(),
				Awaiting:  !c.Bool("clear"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// visualCmd creates the visual command.
func visualCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "visual",
		Usage:     "Record the chosen visual direction",
		ArgsUsage: "<id> <option-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "notes", Usage: "Notes on the choice (optional)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.RecordVisualChoice(db, ops.RecordVisualChoiceInput{
				SessionID: c.Args().Get(0),
				OptionID:  c.Args().Get(1),
				Notes:     c.String("notes"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// briefCmd creates the brief command.
func briefCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "brief",
		Usage:     "Record one intake brief fact",
		ArgsUsage: "<id> <key> <value>",
		Action: func(c *cli.Context) error {
			output, err := ops.RecordBrief(db, ops.RecordBriefInput{
				SessionID: c.Args().Get(0),
				Key:       c.Args().Get(1),
				Value:     c.Args().Get(2),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// specCmd creates the spec command.
func specCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "spec",
		Usage:     "Record the product spec (reads summary from stdin)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bom", Usage: "Bill of materials, one entry per line"},
			&cli.StringFlag{Name: "open-items", Usage: "Open questions, one per line"},
		},
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("spec summary must be piped via stdin"))
			}

			summary, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			output, err := ops.RecordSpec(db, ops.RecordSpecInput{
				SessionID: c.Args().First(),
				Summary:   summary,
				BOM:       c.String("bom"),
				OpenItems: c.String("open-items"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// decisionCmd creates the decision command.
func decisionCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "decision",
		Usage:     "Record the viability decision",
		ArgsUsage: "<id> <status>",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "confidence", Usage: "Confidence between 0 and 1"},
			&cli.StringFlag{Name: "reasons", Usage: "Reasons, one per line"},
			&cli.StringFlag{Name: "assumptions", Usage: "Assumptions, one per line"},
		},
		Action: func(c *cli.Context) error {
			input := ops.RecordDecisionInput{
				SessionID:   c.Args().Get(0),
				Status:      c.Args().Get(1),
				Reasons:     c.String("reasons"),
				Assumptions: c.String("assumptions"),
			}
			if c.IsSet("confidence") {
				confidence := c.Float64("confidence")
				input.Confidence = &confidence
			}

			output, err := ops.RecordDecision(db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// ingredientsCmd creates the ingredients command.
func ingredientsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "ingredients",
		Usage:     "Record the ingredient list (reads one ingredient per line from stdin)",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("ingredients must be piped via stdin"))
			}

			block, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			output, err := ops.RecordIngredients(db, ops.RecordIngredientsInput{
				SessionID:   c.Args().First(),
				Ingredients: block,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// manufacturersCmd creates the manufacturers command.
func manufacturersCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "manufacturers",
		Usage:     "Record manufacturer leads (reads one lead per line from stdin)",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("manufacturer leads must be piped via stdin"))
			}

			block, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			output, err := ops.RecordManufacturers(db, ops.RecordManufacturersInput{
				SessionID:     c.Args().First(),
				Manufacturers: block,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the read-only session viewer",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind to"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8487, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, cfg, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
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
	if studioErr, ok := err.(*errors.StudioError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", studioErr.Code, studioErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
