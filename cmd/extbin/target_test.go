// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/extbin/extbin/internal/config"
	"github.com/extbin/extbin/internal/releaseasset"
	"github.com/extbin/extbin/internal/testutil"
	"github.com/extbin/extbin/pkg/platform"
)

func TestBuildTarget(t *testing.T) {
	t.Parallel()

	targetFile := testutil.MustWriteFile(t, t.TempDir(), "target.cue", `
arch: "x86"
php_version: "8.1"
thread_safety: "ts"
`)

	tests := []struct {
		name     string
		flags    targetFlags
		defaults config.TargetConfig
		want     platform.TargetPlatform
		wantErr  error
	}{
		{
			name:  "flags with detected arch",
			flags: targetFlags{php: "8.3.4", nts: true},
			want:  platform.TargetPlatform{OS: platform.Windows, Architecture: platform.ArchX8664, PHPVersion: "8.3", ThreadSafety: platform.NonThreadSafe, Compiler: platform.CompilerVS16},
		},
		{
			name:     "config defaults",
			defaults: config.TargetConfig{PHPVersion: "8.4", ThreadSafety: platform.ThreadSafe, Arch: platform.ArchARM64},
			want:     platform.TargetPlatform{OS: platform.Windows, Architecture: platform.ArchARM64, PHPVersion: "8.4", ThreadSafety: platform.ThreadSafe, Compiler: platform.CompilerVS17},
		},
		{
			name:     "flags override config",
			flags:    targetFlags{php: "7.2", nts: true, compiler: "VC15", arch: "aarch64"},
			defaults: config.TargetConfig{PHPVersion: "8.4", ThreadSafety: platform.ThreadSafe, Compiler: platform.CompilerVS17},
			want:     platform.TargetPlatform{OS: platform.Windows, Architecture: platform.ArchARM64, PHPVersion: "7.2", ThreadSafety: platform.NonThreadSafe, Compiler: platform.CompilerVC15},
		},
		{
			name:  "target file",
			flags: targetFlags{targetFile: targetFile},
			want:  platform.TargetPlatform{OS: platform.Windows, Architecture: platform.ArchX86, PHPVersion: "8.1", ThreadSafety: platform.ThreadSafe, Compiler: platform.CompilerVS16},
		},
		{
			name:  "flags override target file",
			flags: targetFlags{targetFile: targetFile, nts: true, php: "8.2"},
			want:  platform.TargetPlatform{OS: platform.Windows, Architecture: platform.ArchX86, PHPVersion: "8.2", ThreadSafety: platform.NonThreadSafe, Compiler: platform.CompilerVS16},
		},
		{
			name:    "missing php version",
			flags:   targetFlags{nts: true},
			wantErr: errInvalidInput,
		},
		{
			name:    "unparsable php version",
			flags:   targetFlags{php: "eight"},
			wantErr: platform.ErrInvalidPHPVersion,
		},
		{
			name:    "php too old for a windows compiler",
			flags:   targetFlags{php: "5.6"},
			wantErr: errInvalidInput,
		},
		{
			name:    "invalid compiler",
			flags:   targetFlags{php: "8.3", compiler: "gcc"},
			wantErr: platform.ErrInvalidTargetPlatform,
		},
		{
			name:    "missing target file",
			flags:   targetFlags{targetFile: "does-not-exist.cue"},
			wantErr: errInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := buildTarget(context.Background(), tt.flags, tt.defaults, detectX8664)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("buildTarget() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBuildTarget_DetectionFailure(t *testing.T) {
	t.Parallel()

	detectErr := errors.New("no kernel")
	detect := func(context.Context) (platform.TargetPlatform, error) {
		return platform.TargetPlatform{}, detectErr
	}

	if _, err := buildTarget(context.Background(), targetFlags{php: "8.3"}, config.TargetConfig{}, detect); !errors.Is(err, detectErr) {
		t.Errorf("error = %v, want detection error", err)
	}
	if _, err := buildTarget(context.Background(), targetFlags{php: "8.3", arch: "x86"}, config.TargetConfig{}, detect); err != nil {
		t.Errorf("--arch should skip detection, got %v", err)
	}
}

func TestBuildPackage(t *testing.T) {
	t.Parallel()

	pkg, err := buildPackage("php/pecl-text-xdiff", " 2.1.1 ", packageFlags{ext: "xdiff"}, "https://api.github.com/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := releaseasset.Package{
		Organization:         "php",
		Repository:           "pecl-text-xdiff",
		Version:              "2.1.1",
		ExtensionName:        "xdiff",
		ReferenceDownloadURL: "https://api.github.com/repos/php/pecl-text-xdiff/zipball/2.1.1",
	}
	if pkg != want {
		t.Errorf("buildPackage() = %+v, want %+v", pkg, want)
	}

	pkg, err = buildPackage("acme/ext", "1.0.0", packageFlags{downloadURL: "https://github.com/acme/ext/archive/1.0.0.zip"}, "https://api.github.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pkg.ReferenceDownloadURL != "https://github.com/acme/ext/archive/1.0.0.zip" {
		t.Errorf("ReferenceDownloadURL = %q", pkg.ReferenceDownloadURL)
	}

	if _, err := buildPackage("acme/ext", "", packageFlags{}, "https://api.github.com"); !errors.Is(err, releaseasset.ErrInvalidPackage) {
		t.Errorf("empty version error = %v, want ErrInvalidPackage", err)
	}
}

func TestDefaultExtensionName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"pecl-xdiff":            "xdiff",
		"example-pie-extension": "example_pie_extension",
		"php-ext-Redis":         "redis",
		"ext-":                  "ext_",
		"php-memcached":         "memcached",
	}
	for repo, want := range tests {
		if got := defaultExtensionName(repo); got != want {
			t.Errorf("defaultExtensionName(%q) = %q, want %q", repo, got, want)
		}
	}
}
