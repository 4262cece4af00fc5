// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/extbin/extbin/pkg/types"
)

// ExitError carries the process exit status of a failed command back to
// Execute. Code is ExitUserError when the lookup itself answered (no release
// for the tag, no asset for the target, bad flags) and ExitIntegrationError
// when GitHub could not be queried or answered with an unexpected shape.
type ExitError struct {
	Code types.ExitCode
	// Err is the classified error. Execute renders it with its issue guidance.
	Err error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("extbin exited with %s", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}
