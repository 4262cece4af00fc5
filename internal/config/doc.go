// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/extbin/config.cue (or the XDG equivalent on
// Linux, ~/Library/Application Support/extbin/config.cue on macOS and
// %APPDATA%\extbin\config.cue on Windows), validated against the embedded
// config_schema.cue and merged over the defaults. EXTBIN_* environment variables
// override file values, e.g. EXTBIN_GITHUB_API_BASE_URL or EXTBIN_HTTP_RETRIES.
package config
