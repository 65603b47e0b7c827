package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/starford/receitas/internal"
	"github.com/starford/receitas/internal/collection"
	"github.com/starford/receitas/internal/draftfile"
)

var fileFlag = &cli.StringFlag{
	Name:     "file",
	Aliases:  []string{"f"},
	Usage:    "Draft file (.yaml, .yml or Markdown with frontmatter)",
	Required: true,
}

// session loads the config and the remote collection for a one-shot command.
func session(ctx context.Context, cmd *cli.Command) (*collection.Controller, error) {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, _ := internal.NewLogger(os.Stderr, cfg.App.LogLevel)

	ctrl := internal.NewController(cfg, logger)
	if err := ctrl.Refresh(ctx); err != nil {
		return nil, commandError(ctrl, err)
	}
	return ctrl, nil
}

// commandError prefers the message the controller recorded for the user.
func commandError(ctrl *collection.Controller, err error) error {
	if msg := ctrl.PendingError(); msg != "" {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return err
}

func idArg(cmd *cli.Command) (int, error) {
	raw := cmd.Args().First()
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid recipe id %q", raw)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Print every recipe as JSON",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctrl, err := session(ctx, cmd)
			if err != nil {
				return err
			}
			return printJSON(os.Stdout, ctrl.Recipes())
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print one recipe as JSON",
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := idArg(cmd)
			if err != nil {
				return err
			}
			ctrl, err := session(ctx, cmd)
			if err != nil {
				return err
			}
			rec, ok := ctrl.Get(id)
			if !ok {
				return fmt.Errorf("recipe %d not found", id)
			}
			return printJSON(os.Stdout, rec)
		},
	}
}

func createCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create a recipe from a draft file",
		Flags: []cli.Flag{fileFlag},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			d, err := draftfile.Load(cmd.String("file"))
			if err != nil {
				return err
			}
			ctrl, err := session(ctx, cmd)
			if err != nil {
				return err
			}
			rec, err := ctrl.Create(ctx, d)
			if err != nil {
				return commandError(ctrl, err)
			}
			return printJSON(os.Stdout, rec)
		},
	}
}

func updateCommand() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Replace a recipe with the contents of a draft file",
		ArgsUsage: "<id>",
		Flags:     []cli.Flag{fileFlag},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := idArg(cmd)
			if err != nil {
				return err
			}
			d, err := draftfile.Load(cmd.String("file"))
			if err != nil {
				return err
			}
			ctrl, err := session(ctx, cmd)
			if err != nil {
				return err
			}
			rec, err := ctrl.Update(ctx, id, d)
			if err != nil {
				return commandError(ctrl, err)
			}
			return printJSON(os.Stdout, rec)
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a recipe",
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := idArg(cmd)
			if err != nil {
				return err
			}
			ctrl, err := session(ctx, cmd)
			if err != nil {
				return err
			}
			if err := ctrl.Delete(ctx, id); err != nil {
				return commandError(ctrl, err)
			}
			_, err = fmt.Fprintf(os.Stdout, "deleted %d\n", id)
			return err
		},
	}
}
