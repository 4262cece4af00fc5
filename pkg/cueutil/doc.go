// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates user-supplied CUE files against embedded schemas.
//
// Both the configuration file and target platform files go through the same
// flow: compile the schema, unify the user file with a root definition,
// validate, then decode. Errors carry the file name and a JSON-style path to
// the offending field, e.g. "config.cue: http.retries: invalid value 99".
//
//	//go:embed target_schema.cue
//	var targetSchema []byte
//
//	result, err := cueutil.ParseAndDecode[TargetPlatform](
//	    targetSchema, data, "#Target",
//	    cueutil.WithFilename("target.cue"),
//	)
package cueutil
