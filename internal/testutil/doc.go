// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by tests: file and environment
// setup that fails the test on error, and ReleaseServer, a fake GitHub
// Releases API.
package testutil
