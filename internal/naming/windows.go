// SPDX-License-Identifier: MPL-2.0

package naming

import (
	"errors"
	"fmt"
	"strings"

	"github.com/extbin/extbin/internal/releaseasset"
	"github.com/extbin/extbin/pkg/platform"
)

const (
	zipExtension = "zip"
	dllExtension = "dll"
)

// ErrNotWindowsTarget is returned when asset names are requested for a
// platform other than Windows.
var ErrNotWindowsTarget = errors.New("prebuilt extension assets are only published for Windows targets")

// WindowsExtensionAssetNames is the naming convention of prebuilt Windows
// extension zips:
//
//	php_{ext}-{version}-{php}-{ts|nts}-{compiler}-{arch}.zip
//	php_{ext}-{version}-{php}-{compiler}-{ts|nts}-{arch}.zip
//
// Both orderings are in use by extension maintainers, so both are accepted.
type WindowsExtensionAssetNames struct{}

var _ releaseasset.NameGenerator = WindowsExtensionAssetNames{}

// AcceptableNames returns the zip names for pkg built for target.
func (WindowsExtensionAssetNames) AcceptableNames(target platform.TargetPlatform, pkg releaseasset.Package) (releaseasset.AcceptableNameSet, error) {
	names, err := assetNames(target, pkg, zipExtension)
	if err != nil {
		return releaseasset.AcceptableNameSet{}, err
	}
	return releaseasset.NewAcceptableNameSet(names...), nil
}

// DLLNames returns the names the extension DLL may carry inside the zip.
func DLLNames(target platform.TargetPlatform, pkg releaseasset.Package) ([]string, error) {
	return assetNames(target, pkg, dllExtension)
}

func assetNames(target platform.TargetPlatform, pkg releaseasset.Package, fileExtension string) ([]string, error) {
	if !target.IsWindows() {
		return nil, fmt.Errorf("%w (got %s)", ErrNotWindowsTarget, target.OS)
	}
	if valid, errs := target.IsValid(); !valid {
		return nil, errs[0]
	}
	if valid, errs := pkg.IsValid(); !valid {
		return nil, errs[0]
	}

	ext := pkg.ExtensionName
	ts := target.ThreadSafety.String()
	compiler := target.Compiler.String()
	return []string{
		strings.ToLower(fmt.Sprintf("php_%s-%s-%s-%s-%s-%s.%s",
			ext, pkg.Version, target.PHPVersion, ts, compiler, target.Architecture, fileExtension)),
		strings.ToLower(fmt.Sprintf("php_%s-%s-%s-%s-%s-%s.%s",
			ext, pkg.Version, target.PHPVersion, compiler, ts, target.Architecture, fileExtension)),
	}, nil
}
