package commands

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"todoctl/internal/exitcode"
	"todoctl/internal/service"
)

// reportError prints a backend failure to errOut and returns its exit code.
func reportError(errOut io.Writer, err error) int {
	switch {
	case service.IsAuth(err):
		fmt.Fprintf(errOut, "error: auth error: %s (run: todoctl login)\n", detail(err))
	case service.IsNotFound(err):
		fmt.Fprintf(errOut, "error: not found: %s\n", detail(err))
	case service.IsClient(err):
		fmt.Fprintf(errOut, "error: %s\n", detail(err))
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	}
	return exitcode.ForError(err)
}

func detail(err error) string {
	var apiErr *service.Error
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	if apiErr.Detail != "" {
		return apiErr.Detail
	}
	return http.StatusText(apiErr.StatusCode)
}

// decodeFailed reports a response body that doesn't match the expected shape.
func decodeFailed(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}
