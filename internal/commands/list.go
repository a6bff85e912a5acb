package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/output"
	"todoctl/internal/service"
	"todoctl/internal/todo"
)

// DefaultGroup is the personal group listed when none is given.
const DefaultGroup = "0"

// defaultSpan is how many days after --from the listing covers by default.
const defaultSpan = 6

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `todoctl` (no args) and `todoctl list <group>`.
type ListCmd struct {
	from   string
	to     string
	params pairList
	now    func() time.Time
}

// SetNow sets the clock used for default dates (for testing).
func (c *ListCmd) SetNow(now func() time.Time) {
	c.now = now
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List todo items by day" }
func (c *ListCmd) Usage() string {
	return "todoctl list [--from <date>] [--to <date>] [--param k=v]... [group]"
}
func (c *ListCmd) NeedsBackend() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	c.params.reset()
	fs.StringVar(&c.from, "from", "", "")
	fs.StringVar(&c.to, "to", "", "")
	fs.Var(&c.params, "param", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}
	group := DefaultGroup
	if len(args) == 1 {
		group = strings.TrimSpace(args[0])
	}
	if group == "" {
		fmt.Fprintln(errOut, "error: group required")
		return exitcode.UserError
	}

	params, err := c.query()
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	resp, err := todo.New(svc).ListItems(ctx, group, params)
	if err != nil {
		return reportError(errOut, err)
	}

	if cfg.JSON {
		output.FormatJSON(out, resp.Body)
		return exitcode.Success
	}

	groups, err := todo.DecodeDayGroups(resp)
	if err != nil {
		return decodeFailed(errOut, err)
	}

	empty := true
	for _, g := range groups {
		if len(g.Value) > 0 {
			empty = false
			break
		}
	}
	if empty {
		if !cfg.Quiet {
			fmt.Fprintln(out, output.EmptyMessage)
		}
		return exitcode.Success
	}

	output.FormatDayGroups(out, groups)
	return exitcode.Success
}

// query builds from_date/to_date plus any --param pairs.
// --from defaults to today, --to to six days after --from.
func (c *ListCmd) query() (url.Values, error) {
	now := time.Now
	if c.now != nil {
		now = c.now
	}

	today := now()
	from := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if c.from != "" {
		d, err := todo.ParseDate(c.from)
		if err != nil {
			return nil, err
		}
		from = d
	}

	to := from.AddDate(0, 0, defaultSpan)
	if c.to != "" {
		d, err := todo.ParseDate(c.to)
		if err != nil {
			return nil, err
		}
		to = d
	}
	if to.Before(from) {
		return nil, fmt.Errorf("--to %s is before --from %s", to.Format(todo.DateLayout), from.Format(todo.DateLayout))
	}

	params := url.Values{}
	params.Set("from_date", from.Format(todo.DateLayout))
	params.Set("to_date", to.Format(todo.DateLayout))
	for i, k := range c.params.keys {
		params.Set(k, c.params.values[i])
	}
	return params, nil
}
