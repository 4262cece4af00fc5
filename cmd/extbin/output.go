// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	outputText outputFormat = "text"
	outputJSON outputFormat = "json"
	outputTOML outputFormat = "toml"
)

// outputFormat selects how command results are written to stdout.
type outputFormat string

func parseOutputFormat(raw string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(strings.TrimSpace(raw))); f {
	case outputText, outputJSON, outputTOML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown output format %q (valid: text, json, toml)", errInvalidInput, raw)
	}
}

// writeStructured encodes v as JSON or TOML.
func writeStructured(w io.Writer, format outputFormat, v any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputTOML:
		return toml.NewEncoder(w).Encode(v)
	case outputText:
	}
	return fmt.Errorf("%w: %s is not a structured output format", errInvalidInput, format)
}
