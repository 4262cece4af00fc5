// SPDX-License-Identifier: MPL-2.0

package platform

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/extbin/extbin/pkg/cueutil"
)

//go:embed target_schema.cue
var targetSchema []byte

// ParseTargetFile decodes a CUE target platform description. A Windows
// target without a compiler gets the default compiler of its PHP version.
func ParseTargetFile(data []byte, filename string) (TargetPlatform, error) {
	result, err := cueutil.ParseAndDecode[TargetPlatform](targetSchema, data, "#Target", cueutil.WithFilename(filename))
	if err != nil {
		return TargetPlatform{}, err
	}

	target := *result.Value
	if target.IsWindows() && target.Compiler == "" {
		compiler, err := DefaultCompilerFor(target.PHPVersion)
		if err != nil {
			return TargetPlatform{}, fmt.Errorf("%s: %w", filename, err)
		}
		target.Compiler = compiler
	}
	if valid, errs := target.IsValid(); !valid {
		return TargetPlatform{}, fmt.Errorf("%s: %w", filename, errs[0])
	}
	return target, nil
}

// LoadTargetFile reads and decodes the target platform file at path.
func LoadTargetFile(path string) (TargetPlatform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TargetPlatform{}, fmt.Errorf("failed to read target file: %w", err)
	}
	return ParseTargetFile(data, path)
}
