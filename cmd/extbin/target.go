// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/extbin/extbin/internal/config"
	"github.com/extbin/extbin/internal/releaseasset"
	"github.com/extbin/extbin/pkg/platform"
)

type (
	// targetFlags are the target platform flags shared by resolve and names.
	targetFlags struct {
		os         string
		php        string
		compiler   string
		arch       string
		targetFile string
		ts         bool
		nts        bool
	}

	// packageFlags identify the extension inside the release.
	packageFlags struct {
		ext         string
		downloadURL string
	}
)

func addTargetFlags(cmd *cobra.Command, f *targetFlags) {
	cmd.Flags().StringVar(&f.os, "os", "", "target operating system (default windows)")
	cmd.Flags().StringVar(&f.php, "php", "", "PHP version of the runtime, e.g. 8.3 or 8.3.12")
	cmd.Flags().BoolVar(&f.ts, "ts", false, "thread-safe (ZTS) PHP build")
	cmd.Flags().BoolVar(&f.nts, "nts", false, "non-thread-safe PHP build (default)")
	cmd.Flags().StringVar(&f.compiler, "compiler", "", "MSVC toolchain: vc14, vc15, vs16 or vs17 (default derived from --php)")
	cmd.Flags().StringVar(&f.arch, "arch", "", "CPU architecture: x86_64, x86 or arm64 (default host)")
	cmd.Flags().StringVar(&f.targetFile, "target-file", "", "CUE file describing the target platform")
	cmd.MarkFlagsMutuallyExclusive("ts", "nts")
}

func addPackageFlags(cmd *cobra.Command, f *packageFlags) {
	cmd.Flags().StringVar(&f.ext, "ext", "", "extension name used in asset names (default derived from the repository)")
	cmd.Flags().StringVar(&f.downloadURL, "download-url", "", "package download URL used to scope authentication (default the API zipball URL)")
}

// buildTarget assembles the target platform. A target file is the base when
// given; otherwise configuration defaults and host detection are. Flags
// override either. The compiler defaults to the one official builds of the
// PHP version use.
func buildTarget(ctx context.Context, f targetFlags, defaults config.TargetConfig, detect HostDetector) (platform.TargetPlatform, error) {
	var target platform.TargetPlatform

	if f.targetFile != "" {
		fromFile, err := platform.LoadTargetFile(f.targetFile)
		if err != nil {
			return platform.TargetPlatform{}, fmt.Errorf("%w: %w", errInvalidInput, err)
		}
		target = fromFile
	} else {
		target = platform.TargetPlatform{
			OS:           platform.Windows,
			Architecture: defaults.Arch,
			PHPVersion:   defaults.PHPVersion,
			ThreadSafety: defaults.ThreadSafety,
			Compiler:     defaults.Compiler,
		}
		if target.Architecture == "" && f.arch == "" {
			host, err := detect(ctx)
			if err != nil {
				return platform.TargetPlatform{}, err
			}
			target.Architecture = host.Architecture
		}
	}

	if f.os != "" {
		target.OS = strings.ToLower(strings.TrimSpace(f.os))
	}
	if f.php != "" {
		version, err := platform.ParsePHPVersion(f.php)
		if err != nil {
			return platform.TargetPlatform{}, err
		}
		target.PHPVersion = version
	}
	switch {
	case f.ts:
		target.ThreadSafety = platform.ThreadSafe
	case f.nts:
		target.ThreadSafety = platform.NonThreadSafe
	case target.ThreadSafety == "":
		target.ThreadSafety = platform.NonThreadSafe
	}
	if f.compiler != "" {
		target.Compiler = platform.WindowsCompiler(strings.ToLower(strings.TrimSpace(f.compiler)))
	}
	if f.arch != "" {
		target.Architecture = platform.NormalizeArchitecture(f.arch)
	}

	if target.PHPVersion == "" {
		return platform.TargetPlatform{}, fmt.Errorf("%w: PHP version is required (use --php or set target.php_version)", errInvalidInput)
	}
	if target.IsWindows() && target.Compiler == "" {
		compiler, err := platform.DefaultCompilerFor(target.PHPVersion)
		if err != nil {
			return platform.TargetPlatform{}, fmt.Errorf("%w: %w (use --compiler)", errInvalidInput, err)
		}
		target.Compiler = compiler
	}
	if valid, errs := target.IsValid(); !valid {
		return platform.TargetPlatform{}, errs[0]
	}
	return target, nil
}

// buildPackage parses the "org/repo" and version arguments. Without
// --download-url the package is scoped to its zipball URL on the API host.
func buildPackage(repoArg, version string, f packageFlags, apiBaseURL string) (releaseasset.Package, error) {
	org, repo, err := releaseasset.ParseOrgAndRepository(repoArg)
	if err != nil {
		return releaseasset.Package{}, fmt.Errorf("%w: %w", errInvalidInput, err)
	}

	pkg := releaseasset.Package{
		Organization:         org,
		Repository:           repo,
		Version:              strings.TrimSpace(version),
		ExtensionName:        strings.TrimSpace(f.ext),
		ReferenceDownloadURL: strings.TrimSpace(f.downloadURL),
	}
	if pkg.ExtensionName == "" {
		pkg.ExtensionName = defaultExtensionName(repo)
	}
	if pkg.ReferenceDownloadURL == "" {
		pkg.ReferenceDownloadURL = strings.TrimRight(apiBaseURL, "/") +
			"/repos/" + org + "/" + repo + "/zipball/" + url.PathEscape(pkg.Version)
	}
	if valid, errs := pkg.IsValid(); !valid {
		return releaseasset.Package{}, errs[0]
	}
	return pkg, nil
}

// defaultExtensionName guesses the extension name from a repository name:
// "pecl-xdiff" becomes "xdiff", "example-pie-extension" becomes
// "example_pie_extension".
func defaultExtensionName(repo string) string {
	name := strings.ToLower(repo)
	for _, prefix := range []string{"pecl-", "php-ext-", "php-", "ext-"} {
		if trimmed, ok := strings.CutPrefix(name, prefix); ok && trimmed != "" {
			name = trimmed
			break
		}
	}
	return strings.ReplaceAll(name, "-", "_")
}
