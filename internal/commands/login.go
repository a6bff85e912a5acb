package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2"

	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/service"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	token string
}

func (c *LoginCmd) Name() string       { return "login" }
func (c *LoginCmd) Aliases() []string  { return nil }
func (c *LoginCmd) Synopsis() string   { return "Store a bearer token" }
func (c *LoginCmd) Usage() string      { return "todoctl login --token <token>" }
func (c *LoginCmd) NeedsBackend() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.token, "token", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	token := strings.TrimSpace(c.token)
	if token == "" {
		fmt.Fprintln(errOut, "error: token required (use --token)")
		return exitcode.UserError
	}

	if existing, err := cfg.LoadToken(); err == nil && existing.AccessToken == token && cfg.Token == "" {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	if err := cfg.SaveToken(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "token saved to %s\n", cfg.TokenPath())
	}
	return exitcode.Success
}
