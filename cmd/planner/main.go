// Package main is the planner command-line front end.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/kimhsiao/creatorplanner/internal/config"
	"github.com/kimhsiao/creatorplanner/internal/db"
	apperrors "github.com/kimhsiao/creatorplanner/internal/errors"
	"github.com/kimhsiao/creatorplanner/internal/logging"
)

// Version is set at build time
var Version = "0.1.0"

const usage = `usage: planner [-config file] [-no-color] <command> [args]

commands:
  seed                         seed the settings catalog when empty and print it
  settings                     print the settings groups
  setting-add -category c -value v
  setting-delete <id>
  ideas [-search s] [-tag t] [-fav]
  idea-add -title t -duration M:SS -type t -audience a [-desc d] [-outline o] [-tags a,b] [-fav]
  idea-update <id> [-title t] [-duration M:SS] [-fav=true|false] [-tags a,b]
  idea-show <id>
  suggest-tags <id> [-n 5] [-apply]
  idea-delete <id>
  convert <id> -deadline YYYY-MM-DD -priority p
  videos [-search s] [-status s]
  video-status <id> <status>
  video-delete <id>
  tags                         list every tag name
  stats
  trends
  version`

// opener returns the migrated store for cfg.
type opener func(cfg *config.Config) (*db.DB, error)

func openDefault(cfg *config.Config) (*db.DB, error) {
	return db.Default(cfg.Database.DataDir, cfg.Database.File)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, openDefault); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "planner: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps error codes to process exit codes.
func exitCode(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrValidation, apperrors.ErrNotFound, apperrors.ErrDomainRule,
		apperrors.ErrProtectedSetting, apperrors.ErrCategoryMissing:
		return 3
	default:
		return 1
	}
}

func run(ctx context.Context, args []string, stdout io.Writer, open opener) error {
	fs := flag.NewFlagSet("planner", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", "", "path to a YAML config file")
	noColor := fs.Bool("no-color", false, "disable colored output")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, usage)
		return err
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stdout, usage)
		return nil
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if cmd == "version" {
		fmt.Fprintf(stdout, "planner v%s\n", Version)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logging.Init(logging.Options{Out: os.Stderr, Level: cfg.Log.Level, JSON: cfg.Log.JSON})

	a, err := newApp(ctx, cfg, open, stdout, !*noColor)
	if err != nil {
		return err
	}
	defer a.close()

	handler, ok := commands[cmd]
	if !ok {
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
	if err := handler(ctx, a, rest); err != nil {
		a.logger.Error("command failed", err, map[string]interface{}{"command": cmd})
		return err
	}
	return nil
}
