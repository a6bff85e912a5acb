package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/output"
	"todoctl/internal/service"
	"todoctl/internal/todo"
)

func init() {
	Register(&UpdateCmd{})
}

// UpdateCmd implements the update command.
// Only the given fields are sent; the backend keeps the rest.
type UpdateCmd struct {
	start  string
	end    string
	fields pairList
}

func (c *UpdateCmd) Name() string      { return "update" }
func (c *UpdateCmd) Aliases() []string { return []string{"edit"} }
func (c *UpdateCmd) Synopsis() string  { return "Change fields of a todo item" }
func (c *UpdateCmd) Usage() string {
	return "todoctl update [--start <time>] [--end <time>] [--field k=v]... <id> [content...]"
}
func (c *UpdateCmd) NeedsBackend() bool { return true }

func (c *UpdateCmd) RegisterFlags(fs *flag.FlagSet) {
	c.fields.reset()
	fs.StringVar(&c.start, "start", "", "")
	fs.StringVar(&c.end, "end", "", "")
	fs.Var(&c.fields, "field", "")
}

func (c *UpdateCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(errOut, "error: item id required")
		return exitcode.UserError
	}

	data := todo.Payload{"id": parseID(strings.TrimSpace(args[0]))}
	if content := strings.Join(args[1:], " "); strings.TrimSpace(content) != "" {
		data["content"] = content
	}
	times := []struct{ key, raw string }{{"start_time", c.start}, {"end_time", c.end}}
	for _, tm := range times {
		if tm.raw == "" {
			continue
		}
		v, err := parseWhen(tm.raw)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		data[tm.key] = v
	}
	c.fields.applyTo(data)

	if len(data) == 1 {
		fmt.Fprintln(errOut, "error: nothing to update")
		return exitcode.UserError
	}

	resp, err := todo.New(svc).UpdateItem(ctx, data)
	if err != nil {
		return reportError(errOut, err)
	}

	if cfg.JSON {
		output.FormatJSON(out, resp.Body)
		return exitcode.Success
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
