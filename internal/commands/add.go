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
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	group        string
	start        string
	end          string
	allDay       bool
	undetermined bool
	fields       pairList
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a todo item" }
func (c *AddCmd) Usage() string {
	return "todoctl add [--group <id>] [--start <time>] [--end <time>] [--all-day] [--undetermined] [--field k=v]... <content...>"
}
func (c *AddCmd) NeedsBackend() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	c.fields.reset()
	fs.StringVar(&c.group, "group", DefaultGroup, "")
	fs.StringVar(&c.group, "g", DefaultGroup, "")
	fs.StringVar(&c.start, "start", "", "")
	fs.StringVar(&c.end, "end", "", "")
	fs.BoolVar(&c.allDay, "all-day", false, "")
	fs.BoolVar(&c.undetermined, "undetermined", false, "")
	fs.Var(&c.fields, "field", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	content := strings.Join(args, " ")
	if strings.TrimSpace(content) == "" {
		fmt.Fprintln(errOut, "error: content required")
		return exitcode.UserError
	}

	data, err := c.payload(content)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	resp, err := todo.New(svc).CreateItem(ctx, data)
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

func (c *AddCmd) payload(content string) (todo.Payload, error) {
	group := c.group
	if group == "" {
		group = DefaultGroup
	}
	data := todo.Payload{
		"group_id":        parseID(group),
		"content":         content,
		"is_all_day":      c.allDay,
		"is_undetermined": c.undetermined,
	}

	switch {
	case c.undetermined:
		if c.start != "" || c.end != "" {
			return nil, fmt.Errorf("--undetermined cannot be combined with --start or --end")
		}
	case c.start == "":
		return nil, fmt.Errorf("start time required (use --start or --undetermined)")
	default:
		start, err := parseWhen(c.start)
		if err != nil {
			return nil, err
		}
		end := start
		if c.end != "" {
			if end, err = parseWhen(c.end); err != nil {
				return nil, err
			}
		}
		if end < start {
			return nil, fmt.Errorf("--end is before --start")
		}
		data["start_time"] = start
		data["end_time"] = end
	}

	c.fields.applyTo(data)
	return data, nil
}
