// SPDX-License-Identifier: MPL-2.0

// Package auth computes GitHub API authentication headers.
//
// TokenProvider implements releaseasset.AuthHeaderProvider. A token is only
// attached when the package's reference download URL points at a host the
// API base trusts, so credentials never reach third-party hosts.
package auth
