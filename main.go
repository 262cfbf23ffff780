package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tonimelisma/personium-go/internal/auth"
	"github.com/tonimelisma/personium-go/internal/location"
)

func main() {
	ctx := shutdownContext(context.Background(), bootstrapLogger())

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		exitOnError(err)
	}
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	if hint := errorHint(err); hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}

	os.Exit(1)
}

// errorHint suggests a next step for the failures users can fix themselves.
func errorHint(err error) string {
	switch {
	case errors.Is(err, auth.ErrNetwork):
		return "check network connectivity and the cell URL"
	case errors.Is(err, auth.ErrLoginFailed):
		return "check cell.username and PERSONIUM_GO_PASSWORD, or the intermediary URL in delegated mode"
	case errors.Is(err, location.ErrBusy):
		return "another change to this file is still running"
	case errors.Is(err, location.ErrForbidden):
		return "the signed-in account may not have access to this box"
	default:
		return ""
	}
}
