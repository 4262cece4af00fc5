// SPDX-License-Identifier: MPL-2.0

// Package transport implements releaseasset.HTTPClient on top of net/http.
//
// The client adds the GitHub REST API headers to every request, turns non-2xx
// responses into *releaseasset.TransportError (carrying rate limit details
// when the quota is exhausted), retries server errors and network failures
// with exponential backoff, and can refresh credentials once after a 401
// when the caller opts in with RequestOptions.RetryAuthFailure.
package transport
