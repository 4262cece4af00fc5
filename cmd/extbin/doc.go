// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the extbin command line interface.
//
// The CLI is a thin layer over internal/releaseasset: it builds the target
// platform from flags, configuration and host detection, wires the HTTP
// transport and token provider from configuration, and maps lookup errors to
// exit codes and issue catalog guidance.
package cmd
