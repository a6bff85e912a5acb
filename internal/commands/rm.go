package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/service"
	"todoctl/internal/todo"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete todo items" }
func (c *RmCmd) Usage() string      { return "todoctl rm <id>..." }
func (c *RmCmd) NeedsBackend() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

// Run deletes each id in order and stops at the first failure.
func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: item id required")
		return exitcode.UserError
	}
	for _, id := range args {
		if strings.TrimSpace(id) == "" {
			fmt.Fprintln(errOut, "error: item id required")
			return exitcode.UserError
		}
	}

	client := todo.New(svc)
	for _, id := range args {
		if _, err := client.DeleteItem(ctx, strings.TrimSpace(id)); err != nil {
			return reportError(errOut, err)
		}
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
