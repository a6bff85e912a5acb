package commands_test

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"net/http"
	"net/url"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"todoctl/internal/commands"
	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/service"
	"todoctl/internal/testutil"
	"todoctl/internal/todo"
)

// runCommand parses args against the command's flags and runs it with FakeService.
func runCommand(t *testing.T, cmd commands.Command, svc *testutil.FakeService, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()
	return runWithConfig(t, cmd, svc, &config.Config{Dir: t.TempDir(), Quiet: quiet}, args)
}

func runWithConfig(t *testing.T, cmd commands.Command, svc *testutil.FakeService, cfg *config.Config, args []string) (stdout, stderr string, code int) {
	t.Helper()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	var s service.Service
	if svc != nil {
		s = svc
	}

	var outBuf, errBuf bytes.Buffer
	code = cmd.Run(context.Background(), cfg, s, fs.Args(), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func fixedNow() time.Time {
	return time.Date(2024, 5, 1, 15, 4, 5, 0, time.Local)
}

func lastCall(t *testing.T, svc *testutil.FakeService) service.Config {
	t.Helper()
	cfg, ok := svc.LastCall()
	if !ok {
		t.Fatal("expected a backend request, got none")
	}
	return cfg
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "todoctl 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	for _, want := range []string{"Usage:", "todoctl list", "todoctl add", "aliases: create", "--base-url"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

// Tests for list command
func TestListCommand_DefaultQuery(t *testing.T) {
	svc := testutil.NewFakeService()
	cmd := &commands.ListCmd{}
	cmd.SetNow(fixedNow)

	_, _, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	got := lastCall(t, svc)
	want := service.Config{
		URL:    "/todo/0",
		Method: "get",
		Params: url.Values{"from_date": {"2024-05-01"}, "to_date": {"2024-05-07"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected request %+v, got %+v", want, got)
	}
}

func TestListCommand_FlagsAndGroup(t *testing.T) {
	svc := testutil.NewFakeService()
	cmd := &commands.ListCmd{}
	cmd.SetNow(fixedNow)

	_, stderr, code := runCommand(t, cmd, svc, []string{"--from", "2024-05-10", "--param", "is_done=false", "7"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	got := lastCall(t, svc)
	if got.URL != "/todo/7" {
		t.Errorf("expected URL /todo/7, got %s", got.URL)
	}
	want := url.Values{"from_date": {"2024-05-10"}, "to_date": {"2024-05-16"}, "is_done": {"false"}}
	if !reflect.DeepEqual(got.Params, want) {
		t.Errorf("expected params %v, got %v", want, got.Params)
	}
}

func TestListCommand_ToBeforeFrom(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.ListCmd{}, svc, []string{"--from", "2024-05-10", "--to", "2024-05-01"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: --to 2024-05-01 is before --from 2024-05-10") {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if len(svc.Calls()) != 0 {
		t.Error("expected no backend request")
	}
}

func TestListCommand_InvalidDate(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.ListCmd{}, svc, []string{"--from", "05/10/2024"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid date: 05/10/2024\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestListCommand_Empty(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "no todo items\n" {
		t.Errorf("expected %q, got %q", "no todo items\n", stdout)
	}
}

func TestListCommand_EmptyQuiet(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.RespondWith([]map[string]any{{"key": "2024-05-01", "value": []any{}}})

	stdout, _, code := runCommand(t, &commands.ListCmd{}, svc, nil, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
}

func TestListCommand_DayGroups(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.RespondWith([]map[string]any{
		{"key": "2024-05-02", "value": []map[string]any{
			{"id": 8, "group_id": 0, "content": "stand-up", "start_time": "2024-05-02T09:30:00", "is_done": true},
			{"id": 5, "group_id": 0, "content": "offsite", "start_time": "2024-05-02T00:00:00", "is_all_day": true},
		}},
		{"key": "2024-05-03", "value": []map[string]any{
			{"id": 12, "group_id": 0, "content": "call\nmom", "start_time": "2024-05-03T18:05:00"},
			{"id": 101234, "group_id": 0, "is_undetermined": true},
		}},
	})

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	testutil.GoldenString(t, "list_days", stdout)
}

func TestListCommand_JSON(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.RespondWith(map[string]any{"id": 3, "content": "x"})

	cfg := &config.Config{Dir: t.TempDir(), JSON: true}
	stdout, _, code := runWithConfig(t, &commands.ListCmd{}, svc, cfg, nil)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "{\n  \"content\": \"x\",\n  \"id\": 3\n}\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_BadBody(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.RespondWith(map[string]any{"unexpected": true})

	_, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.HasPrefix(stderr, "error: backend error: ") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestListCommand_Forbidden(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.FailWith(http.StatusForbidden, "not a member of this group")

	_, stderr, code := runCommand(t, &commands.ListCmd{}, svc, []string{"9"}, false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	expected := "error: auth error: not a member of this group (run: todoctl login)\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

// Tests for add command
func TestAddCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"--start", "2024-05-02T09:30", "buy", "milk"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}

	got := lastCall(t, svc)
	if got.URL != "/todo/item/" || got.Method != "post" {
		t.Errorf("unexpected request %s %s", got.Method, got.URL)
	}
	want := todo.Payload{
		"group_id":        int64(0),
		"content":         "buy milk",
		"is_all_day":      false,
		"is_undetermined": false,
		"start_time":      "2024-05-02T09:30:00",
		"end_time":        "2024-05-02T09:30:00",
	}
	if !reflect.DeepEqual(got.Data, want) {
		t.Errorf("expected payload %v, got %v", want, got.Data)
	}
}

func TestAddCommand_GroupAllDayAndFields(t *testing.T) {
	svc := testutil.NewFakeService()

	args := []string{
		"--group", "3", "--all-day", "--start", "2024-05-02", "--end", "2024-05-03",
		"--field", "priority=2", "--field", "note=null", "--field", "urgent=true", "--field", "tag=home",
		"offsite",
	}
	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, args, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	want := todo.Payload{
		"group_id":        int64(3),
		"content":         "offsite",
		"is_all_day":      true,
		"is_undetermined": false,
		"start_time":      "2024-05-02T00:00:00",
		"end_time":        "2024-05-03T00:00:00",
		"priority":        int64(2),
		"note":            nil,
		"urgent":          true,
		"tag":             "home",
	}
	if got := lastCall(t, svc); !reflect.DeepEqual(got.Data, want) {
		t.Errorf("expected payload %v, got %v", want, got.Data)
	}
}

func TestAddCommand_Undetermined(t *testing.T) {
	svc := testutil.NewFakeService()

	_, _, code := runCommand(t, &commands.AddCmd{}, svc, []string{"--undetermined", "someday"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	data := lastCall(t, svc).Data.(todo.Payload)
	if _, ok := data["start_time"]; ok {
		t.Error("undetermined item should not carry start_time")
	}
	if data["is_undetermined"] != true {
		t.Errorf("expected is_undetermined true, got %v", data["is_undetermined"])
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, _, code := runCommand(t, &commands.AddCmd{}, svc, []string{"--undetermined", "quiet", "item"}, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout in quiet mode, got %q", stdout)
	}
}

func TestAddCommand_NoContent(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"--undetermined"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: content required\n" {
		t.Errorf("expected 'error: content required\\n', got %q", stderr)
	}
	if len(svc.Calls()) != 0 {
		t.Error("expected no backend request")
	}
}

func TestAddCommand_NoStart(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"buy", "milk"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: start time required (use --start or --undetermined)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestAddCommand_EndBeforeStart(t *testing.T) {
	svc := testutil.NewFakeService()

	_, _, code := runCommand(t, &commands.AddCmd{}, svc, []string{"--start", "2024-05-02T10:00", "--end", "2024-05-02T09:00", "x"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if len(svc.Calls()) != 0 {
		t.Error("expected no backend request")
	}
}

func TestAddCommand_Rejected(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.FailWith(http.StatusUnprocessableEntity, "start_time: field required")

	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"--undetermined", "x"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: start_time: field required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestAddCommand_Unauthorized(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.FailWith(http.StatusUnauthorized, "Not authenticated")

	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"--undetermined", "x"}, false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	expected := "error: auth error: Not authenticated (run: todoctl login)\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestAddCommand_TransportFailure(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Err = errors.New("connection refused")

	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"--undetermined", "x"}, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: connection refused\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestAddCommand_JSON(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.RespondWith(map[string]any{"id": 77})

	cfg := &config.Config{Dir: t.TempDir(), JSON: true}
	stdout, _, code := runWithConfig(t, &commands.AddCmd{}, svc, cfg, []string{"--undetermined", "x"})

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "{\n  \"id\": 77\n}\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

// Tests for update command
func TestUpdateCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, stderr, code := runCommand(t, &commands.UpdateCmd{}, svc, []string{"--field", "is_done=true", "--start", "2024-05-04T08:00", "9", "new", "text"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	got := lastCall(t, svc)
	if got.URL != "/todo/item/" || got.Method != "put" {
		t.Errorf("unexpected request %s %s", got.Method, got.URL)
	}
	want := todo.Payload{"id": int64(9), "is_done": true, "content": "new text", "start_time": "2024-05-04T08:00:00"}
	if !reflect.DeepEqual(got.Data, want) {
		t.Errorf("expected payload %v, got %v", want, got.Data)
	}
}

func TestUpdateCommand_NoID(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.UpdateCmd{}, svc, nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: item id required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestUpdateCommand_NothingToUpdate(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.UpdateCmd{}, svc, []string{"9"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: nothing to update\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if len(svc.Calls()) != 0 {
		t.Error("expected no backend request")
	}
}

func TestUpdateCommand_NotFound(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.FailWith(http.StatusNotFound, "item does not exist")

	_, stderr, code := runCommand(t, &commands.UpdateCmd{}, svc, []string{"--field", "is_done=true", "9"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: not found: item does not exist\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for rm command
func TestRmCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, svc, []string{"42"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	want := service.Config{URL: "/todo/item/42", Method: "delete"}
	if got := lastCall(t, svc); !reflect.DeepEqual(got, want) {
		t.Errorf("expected request %+v, got %+v", want, got)
	}
}

func TestRmCommand_Several(t *testing.T) {
	svc := testutil.NewFakeService()

	_, _, code := runCommand(t, &commands.RmCmd{}, svc, []string{"1", "2", "3"}, true)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if n := len(svc.Calls()); n != 3 {
		t.Errorf("expected 3 requests, got %d", n)
	}
}

func TestRmCommand_StopsAtFirstFailure(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.FailWith(http.StatusNotFound, "item does not exist")

	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, svc, []string{"1", "2"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: not found: item does not exist\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if n := len(svc.Calls()); n != 1 {
		t.Errorf("expected 1 request, got %d", n)
	}
}

func TestRmCommand_NoID(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.RmCmd{}, svc, nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: item id required\n" {
		t.Errorf("expected 'error: item id required\\n', got %q", stderr)
	}
}

// Tests for login and logout
func TestLoginCommand_SavesToken(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}

	stdout, stderr, code := runWithConfig(t, &commands.LoginCmd{}, nil, cfg, []string{"--token", "abc"})

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "token saved to "+cfg.TokenPath()+"\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	tok, err := cfg.LoadToken()
	if err != nil {
		t.Fatalf("load token: %v", err)
	}
	if tok.AccessToken != "abc" || tok.TokenType != "Bearer" {
		t.Errorf("unexpected token %+v", tok)
	}

	stdout, _, code = runWithConfig(t, &commands.LoginCmd{}, nil, cfg, []string{"--token", "abc"})
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "already logged in\n" {
		t.Errorf("expected 'already logged in\\n', got %q", stdout)
	}
}

func TestLoginCommand_NoToken(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}

	_, stderr, code := runWithConfig(t, &commands.LoginCmd{}, nil, cfg, nil)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: token required (use --token)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if cfg.HasToken() {
		t.Error("no token should have been written")
	}
}

func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.LogoutCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "not logged in\n" {
		t.Errorf("expected 'not logged in\\n', got %q", stdout)
	}
}

func TestLogoutCommand_RemovesToken(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}
	if _, _, code := runWithConfig(t, &commands.LoginCmd{}, nil, cfg, []string{"--token", "abc"}); code != exitcode.Success {
		t.Fatalf("login failed with %d", code)
	}

	stdout, _, code := runWithConfig(t, &commands.LogoutCmd{}, nil, cfg, nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	if _, err := os.Stat(cfg.TokenPath()); !os.IsNotExist(err) {
		t.Errorf("expected token file to be gone, got %v", err)
	}
}
