// SPDX-License-Identifier: MPL-2.0

package releaseasset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPackage is the sentinel error wrapped by InvalidPackageError.
var ErrInvalidPackage = errors.New("invalid package")

type (
	// Package identifies one version of an extension hosted on GitHub.
	Package struct {
		// Organization is the GitHub owner, e.g. "php".
		Organization string `json:"organization"`
		// Repository is the GitHub repository name, e.g. "pecl-text-xdiff".
		Repository string `json:"repository"`
		// Version is the release tag to look up, used verbatim.
		Version string `json:"version"`
		// ExtensionName is the PHP extension name used in asset file names.
		ExtensionName string `json:"extension_name"`
		// ReferenceDownloadURL is the package's source download URL. It is only
		// used to scope API authentication and must be set before a lookup.
		ReferenceDownloadURL string `json:"reference_download_url"`
	}

	// InvalidPackageError collects the field errors of a Package.
	// It wraps ErrInvalidPackage for errors.Is() compatibility.
	InvalidPackageError struct {
		FieldErrors []error
	}
)

// GitHubOrgAndRepository returns the "org/repo" path segment of the package.
func (p Package) GitHubOrgAndRepository() string {
	return p.Organization + "/" + p.Repository
}

// String returns "org/repo@version".
func (p Package) String() string {
	return p.GitHubOrgAndRepository() + "@" + p.Version
}

// IsValid returns whether the package identifies a release precisely enough
// to be looked up. The reference download URL is checked separately by the
// fetcher, since naming does not need it.
func (p Package) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(p.Organization) == "" {
		errs = append(errs, errors.New("organization must not be empty"))
	}
	if strings.TrimSpace(p.Repository) == "" {
		errs = append(errs, errors.New("repository must not be empty"))
	}
	if strings.ContainsAny(p.Organization+p.Repository, "/ ") {
		errs = append(errs, fmt.Errorf("organization and repository must not contain '/' or spaces: %q", p.GitHubOrgAndRepository()))
	}
	if strings.TrimSpace(p.Version) == "" {
		errs = append(errs, errors.New("version must not be empty"))
	}
	if strings.TrimSpace(p.ExtensionName) == "" {
		errs = append(errs, errors.New("extension name must not be empty"))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidPackageError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidPackageError.
func (e *InvalidPackageError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return "invalid package: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidPackage for errors.Is() compatibility.
func (e *InvalidPackageError) Unwrap() error { return ErrInvalidPackage }

// ParseOrgAndRepository splits an "org/repo" string. Surrounding slashes and a
// leading "github:" prefix are tolerated.
func ParseOrgAndRepository(spec string) (org, repo string, err error) {
	s := strings.Trim(strings.TrimSpace(spec), "/")
	s = strings.TrimPrefix(s, "github:")
	org, repo, ok := strings.Cut(strings.Trim(s, "/"), "/")
	if !ok || org == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("invalid repository %q (expected org/repo)", spec)
	}
	return org, repo, nil
}
