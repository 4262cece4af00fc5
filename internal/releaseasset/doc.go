// SPDX-License-Identifier: MPL-2.0

// Package releaseasset resolves the download URL of a prebuilt extension
// binary attached to a GitHub release.
//
// The package is organized into four concerns:
//   - fetcher.go: looks up a release by tag and validates the asset listing
//   - matcher.go: picks the first asset whose name is an acceptable variant
//   - resolver.go: composes naming, fetching and matching into one lookup
//   - errors.go: the failure taxonomy (tag not found, malformed response,
//     no matching asset, transport failure)
//
// HTTP transport, authentication headers and asset naming conventions are
// injected through the HTTPClient, AuthHeaderProvider and NameGenerator
// interfaces. Nothing is cached between calls, and no retries happen here;
// retry policy belongs to the injected HTTPClient.
package releaseasset
