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
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "todoctl help" }
func (c *HelpCmd) NeedsBackend() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, HelpText(DefaultRegistry))
	return exitcode.Success
}

// HelpText renders usage for every command in r.
func HelpText(r *Registry) string {
	var b strings.Builder
	b.WriteString("Usage:\n")
	b.WriteString("  todoctl                      List this week's items in group 0\n")
	for _, cmd := range r.All() {
		fmt.Fprintf(&b, "  %s\n", cmd.Usage())
		line := "      " + cmd.Synopsis()
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			line += " (aliases: " + strings.Join(aliases, ", ") + ")"
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(commonFlags)
	return b.String()
}

const commonFlags = `
Common flags:
  --config <dir>     Override config directory
  --base-url <url>   Override the backend URL (TODOCTL_BASE_URL)
  --json             Print raw backend JSON
  --quiet            Suppress informational output
  --debug            Print debug logs to stderr

Exit codes: 0 ok, 1 usage or rejected request, 2 auth, 3 backend.
`
