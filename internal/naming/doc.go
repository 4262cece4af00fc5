// SPDX-License-Identifier: MPL-2.0

// Package naming generates the release asset file names under which
// prebuilt Windows PHP extension binaries are published.
package naming
