// SPDX-License-Identifier: MPL-2.0

package naming

import (
	"errors"
	"reflect"
	"testing"

	"github.com/extbin/extbin/internal/releaseasset"
	"github.com/extbin/extbin/pkg/platform"
)

func windowsTarget() platform.TargetPlatform {
	return platform.TargetPlatform{
		OS:           platform.Windows,
		Architecture: platform.ArchX8664,
		PHPVersion:   "8.3",
		ThreadSafety: platform.ThreadSafe,
		Compiler:     platform.CompilerVS16,
	}
}

func testPackage() releaseasset.Package {
	return releaseasset.Package{
		Organization:  "asgrim",
		Repository:    "example-pie-extension",
		Version:       "1.2.3",
		ExtensionName: "example_pie_extension",
	}
}

func TestWindowsExtensionAssetNames_AcceptableNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*platform.TargetPlatform, *releaseasset.Package)
		want   []string
	}{
		{
			name:   "thread safe x86_64",
			mutate: func(*platform.TargetPlatform, *releaseasset.Package) {},
			want: []string{
				"php_example_pie_extension-1.2.3-8.3-ts-vs16-x86_64.zip",
				"php_example_pie_extension-1.2.3-8.3-vs16-ts-x86_64.zip",
			},
		},
		{
			name: "non thread safe x86 vs17",
			mutate: func(p *platform.TargetPlatform, _ *releaseasset.Package) {
				p.ThreadSafety = platform.NonThreadSafe
				p.Architecture = platform.ArchX86
				p.PHPVersion = "8.4"
				p.Compiler = platform.CompilerVS17
			},
			want: []string{
				"php_example_pie_extension-1.2.3-8.4-nts-vs17-x86.zip",
				"php_example_pie_extension-1.2.3-8.4-vs17-nts-x86.zip",
			},
		},
		{
			name: "mixed case version is lowercased",
			mutate: func(_ *platform.TargetPlatform, pkg *releaseasset.Package) {
				pkg.Version = "2.0.0-RC1"
			},
			want: []string{
				"php_example_pie_extension-2.0.0-rc1-8.3-ts-vs16-x86_64.zip",
				"php_example_pie_extension-2.0.0-rc1-8.3-vs16-ts-x86_64.zip",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			target, pkg := windowsTarget(), testPackage()
			tt.mutate(&target, &pkg)

			set, err := WindowsExtensionAssetNames{}.AcceptableNames(target, pkg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := set.Names(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AcceptableNames() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWindowsExtensionAssetNames_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*platform.TargetPlatform, *releaseasset.Package)
		wantErr error
	}{
		{
			name:    "linux target",
			mutate:  func(p *platform.TargetPlatform, _ *releaseasset.Package) { p.OS = platform.Linux },
			wantErr: ErrNotWindowsTarget,
		},
		{
			name:    "missing compiler",
			mutate:  func(p *platform.TargetPlatform, _ *releaseasset.Package) { p.Compiler = "" },
			wantErr: platform.ErrInvalidTargetPlatform,
		},
		{
			name:    "bad thread safety",
			mutate:  func(p *platform.TargetPlatform, _ *releaseasset.Package) { p.ThreadSafety = "zts" },
			wantErr: platform.ErrInvalidTargetPlatform,
		},
		{
			name:    "missing extension name",
			mutate:  func(_ *platform.TargetPlatform, pkg *releaseasset.Package) { pkg.ExtensionName = "" },
			wantErr: releaseasset.ErrInvalidPackage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			target, pkg := windowsTarget(), testPackage()
			tt.mutate(&target, &pkg)

			_, err := WindowsExtensionAssetNames{}.AcceptableNames(target, pkg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDLLNames(t *testing.T) {
	t.Parallel()

	got, err := DLLNames(windowsTarget(), testPackage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"php_example_pie_extension-1.2.3-8.3-ts-vs16-x86_64.dll",
		"php_example_pie_extension-1.2.3-8.3-vs16-ts-x86_64.dll",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DLLNames() = %v, want %v", got, want)
	}
}
