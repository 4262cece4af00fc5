// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// suggestions; the issue catalog holds Markdown guidance for each class of
// resolution failure, rendered with glamour.
package issue
