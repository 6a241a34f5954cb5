// queuesmart is the operator command line for a QueueSmart desk. It talks to
// the store directly, using the same configuration as the API server.
//
//	queuesmart migrate
//	queuesmart bootstrap
//	queuesmart dashboard [--status Open,Waiting] [--category Housing] [--include-closed]
//	queuesmart schedule --staff 3
//	queuesmart report weekly|close-times|busiest [--limit 5] [--csv]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/spec-kit/queuesmart/internal/app"
	"github.com/spec-kit/queuesmart/internal/config"
	"github.com/spec-kit/queuesmart/internal/observability"
)

// command is one subcommand. run receives the arguments after its name.
type command struct {
	summary string
	run     func(ctx context.Context, c *app.Container, args []string, out io.Writer) error
}

var commands = map[string]command{
	"migrate":   {summary: "apply the schema to the configured store", run: runMigrate},
	"bootstrap": {summary: "create the first Manager account when no staff exist", run: runBootstrap},
	"dashboard": {summary: "print the prioritised ticket dashboard", run: runDashboard},
	"schedule":  {summary: "print one staff member's appointments", run: runSchedule},
	"report":    {summary: "print a management report (weekly, close-times, busiest)", run: runReport},
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printUsage(out)
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		printUsage(os.Stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// stdout carries command output.
	cfg.Logger.Output = "stderr"
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer container.Close()

	return cmd.run(ctx, container, args[1:], out)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: queuesmart <command> [flags]")
	fmt.Fprintln(w)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].summary)
	}
}
