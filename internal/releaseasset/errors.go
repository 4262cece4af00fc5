// SPDX-License-Identifier: MPL-2.0

package releaseasset

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

const (
	// KindUnknown is any error outside the lookup taxonomy.
	KindUnknown ErrorKind = iota
	// KindReleaseTagNotFound means the version tag has no release.
	KindReleaseTagNotFound
	// KindMalformedResponse means the API answered with an unexpected shape.
	KindMalformedResponse
	// KindNoMatchingAsset means the release has no asset with an acceptable name.
	KindNoMatchingAsset
	// KindTransportFailure means the request itself failed.
	KindTransportFailure
)

var (
	// ErrReleaseTagNotFound is returned when the requested tag has no release
	// on the remote host. Callers typically suggest building from source.
	ErrReleaseTagNotFound = errors.New("release tag not found")

	// ErrMalformedResponse is returned when the release JSON does not have
	// the expected shape. It is an integration fault and is not retryable.
	ErrMalformedResponse = errors.New("malformed release response")

	// ErrNoMatchingAsset is returned when the release exists but none of its
	// assets carries an acceptable name.
	ErrNoMatchingAsset = errors.New("no matching release asset")

	// ErrTransportFailure is the sentinel wrapped by every TransportError.
	ErrTransportFailure = errors.New("transport failure")

	// ErrMissingDownloadURL is returned when a lookup is attempted for a
	// package without a reference download URL.
	ErrMissingDownloadURL = errors.New("package has no reference download URL")
)

type (
	// ErrorKind classifies an error returned by this package.
	ErrorKind int

	// ReleaseTagNotFoundError reports that Package.Version is not a release tag.
	ReleaseTagNotFoundError struct {
		Package Package
	}

	// MalformedResponseError reports the first field of the release JSON that
	// violates the expected shape.
	MalformedResponseError struct {
		// Field is the JSON path of the offending value, e.g.
		// "assets[2].browser_download_url". Empty for the document root.
		Field string
		// AssetIndex is the position of the offending asset, or -1 when the
		// violation is not inside an asset.
		AssetIndex int
		// Reason describes the violation ("missing", "must be a list", ...).
		Reason string
		// Cause is the decoding error, if any.
		Cause error
	}

	// NoMatchingAssetError reports that no asset name was acceptable. It
	// carries the searched-for names so naming-convention drift is visible.
	NoMatchingAssetError struct {
		Package         Package
		AcceptableNames AcceptableNameSet
	}

	// RateLimit holds the GitHub rate limit headers of an exhausted quota.
	RateLimit struct {
		Limit     int
		Remaining int
		ResetAt   time.Time
	}

	// TransportError is returned by an HTTPClient when a request fails,
	// either with a non-2xx status or without any response at all.
	TransportError struct {
		// StatusCode is the HTTP status, or 0 when no response was received.
		StatusCode int
		// URL is the requested URL.
		URL string
		// RateLimit is set when the failure was caused by an exhausted quota.
		RateLimit *RateLimit
		// Err is the underlying network error, if any.
		Err error
	}
)

// String returns a short name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindReleaseTagNotFound:
		return "release-tag-not-found"
	case KindMalformedResponse:
		return "malformed-response"
	case KindNoMatchingAsset:
		return "no-matching-asset"
	case KindTransportFailure:
		return "transport-failure"
	case KindUnknown:
		return "unknown"
	}
	return "unknown"
}

// Kind classifies err against the lookup taxonomy.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrReleaseTagNotFound):
		return KindReleaseTagNotFound
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformedResponse
	case errors.Is(err, ErrNoMatchingAsset):
		return KindNoMatchingAsset
	case errors.Is(err, ErrTransportFailure):
		return KindTransportFailure
	default:
		return KindUnknown
	}
}

// Error implements the error interface for ReleaseTagNotFoundError.
func (e *ReleaseTagNotFoundError) Error() string {
	return fmt.Sprintf("could not find release by tag name %q for %s", e.Package.Version, e.Package.GitHubOrgAndRepository())
}

// Unwrap returns ErrReleaseTagNotFound for errors.Is() compatibility.
func (e *ReleaseTagNotFoundError) Unwrap() error { return ErrReleaseTagNotFound }

// Error implements the error interface for MalformedResponseError.
func (e *MalformedResponseError) Error() string {
	field := e.Field
	if field == "" {
		field = "response"
	}
	msg := fmt.Sprintf("malformed release response: %s: %s", field, e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns ErrMalformedResponse and the decoding cause.
func (e *MalformedResponseError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrMalformedResponse, e.Cause}
	}
	return []error{ErrMalformedResponse}
}

// Error implements the error interface for NoMatchingAssetError.
func (e *NoMatchingAssetError) Error() string {
	if e.Package.Repository == "" {
		return fmt.Sprintf("could not find release asset named one of %s", e.AcceptableNames)
	}
	return fmt.Sprintf("could not find release asset for %s named one of %s", e.Package, e.AcceptableNames)
}

// Unwrap returns ErrNoMatchingAsset for errors.Is() compatibility.
func (e *NoMatchingAssetError) Unwrap() error { return ErrNoMatchingAsset }

// Error formats the transport failure with a redacted URL.
func (e *TransportError) Error() string {
	target := RedactURL(e.URL)
	switch {
	case e.RateLimit != nil:
		return fmt.Sprintf("GitHub API rate limit exceeded for %s (%d remaining, resets at %s)",
			target, e.RateLimit.Remaining, e.RateLimit.ResetAt.UTC().Format("15:04 UTC"))
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("request to %s failed with status %d: %v", target, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("request to %s failed with status %d", target, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("request to %s failed: %v", target, e.Err)
	default:
		return fmt.Sprintf("request to %s failed", target)
	}
}

// Unwrap returns ErrTransportFailure and the underlying network error.
func (e *TransportError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrTransportFailure, e.Err}
	}
	return []error{ErrTransportFailure}
}

// RedactURL strips query parameters, fragments and user info from a URL for
// safe inclusion in error messages.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
