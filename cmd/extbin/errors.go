// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/extbin/extbin/internal/issue"
	"github.com/extbin/extbin/internal/naming"
	"github.com/extbin/extbin/internal/releaseasset"
	"github.com/extbin/extbin/pkg/platform"
	"github.com/extbin/extbin/pkg/types"
)

// errInvalidInput marks command line input the user has to correct.
var errInvalidInput = errors.New("invalid input")

// exitErrorFor wraps err with the exit code of its class.
func exitErrorFor(err error) *ExitError {
	code, _ := classifyError(err)
	return &ExitError{Code: code, Err: err}
}

// classifyError maps an error to its process exit code and the catalog entry
// that explains it. Tag and asset misses exit with 1 because building from
// source is the remedy; integration failures exit with 2.
func classifyError(err error) (types.ExitCode, issue.Id) {
	var transportErr *releaseasset.TransportError

	switch {
	case err == nil:
		return types.ExitOK, 0
	case errors.Is(err, releaseasset.ErrReleaseTagNotFound):
		return types.ExitUserError, issue.ReleaseTagNotFoundId
	case errors.Is(err, releaseasset.ErrNoMatchingAsset):
		return types.ExitUserError, issue.NoMatchingAssetId
	case errors.Is(err, releaseasset.ErrMalformedResponse):
		return types.ExitIntegrationError, issue.MalformedResponseId
	case errors.As(err, &transportErr):
		switch {
		case transportErr.RateLimit != nil:
			return types.ExitIntegrationError, issue.RateLimitedId
		case transportErr.StatusCode == http.StatusUnauthorized, transportErr.StatusCode == http.StatusForbidden:
			return types.ExitIntegrationError, issue.AuthenticationFailedId
		default:
			return types.ExitIntegrationError, issue.TransportFailureId
		}
	case errors.Is(err, platform.ErrInvalidTargetPlatform),
		errors.Is(err, platform.ErrInvalidPHPVersion),
		errors.Is(err, platform.ErrInvalidArchitecture),
		errors.Is(err, platform.ErrInvalidThreadSafety),
		errors.Is(err, platform.ErrInvalidWindowsCompiler),
		errors.Is(err, naming.ErrNotWindowsTarget):
		return types.ExitUserError, issue.InvalidTargetId
	case errors.Is(err, errInvalidInput),
		errors.Is(err, releaseasset.ErrInvalidPackage),
		errors.Is(err, releaseasset.ErrMissingDownloadURL),
		errors.Is(err, context.Canceled):
		return types.ExitUserError, 0
	}

	if entry := issue.IssueOf(err); entry != nil {
		return types.ExitUserError, entry.Id()
	}
	return types.ExitIntegrationError, 0
}

// formatErrorForDisplay formats an error for user display.
// ActionableErrors list their suggestions; verbose mode adds the error chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// renderError prints err followed by the catalog guidance of its class.
func renderError(w io.Writer, err error, verbose bool, style string) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))

	_, id := classifyError(err)
	if id == 0 {
		return
	}
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	rendered, renderErr := entry.Render(style)
	if renderErr != nil {
		slog.Warn("failed to render issue catalog entry", "issueID", id, "error", renderErr)
		return
	}
	fmt.Fprint(w, rendered)
}
