// SPDX-License-Identifier: MPL-2.0

package releaseasset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// DefaultAPIBaseURL is the public GitHub REST API.
const DefaultAPIBaseURL = "https://api.github.com"

// Fetcher looks up the assets of a release by tag.
type Fetcher struct {
	apiBaseURL string
	client     HTTPClient
	auth       AuthHeaderProvider
}

// NewFetcher creates a Fetcher for the API at apiBaseURL. auth may be nil,
// in which case requests are sent unauthenticated.
func NewFetcher(apiBaseURL string, client HTTPClient, auth AuthHeaderProvider) *Fetcher {
	if apiBaseURL == "" {
		apiBaseURL = DefaultAPIBaseURL
	}
	return &Fetcher{
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
		client:     client,
		auth:       auth,
	}
}

// APIBaseURL returns the API base URL without a trailing slash.
func (f *Fetcher) APIBaseURL() string { return f.apiBaseURL }

// ReleaseURL returns the release-by-tag endpoint for pkg. The tag is path
// escaped so that "#", "%" and "?" stay part of it.
//
// See https://docs.github.com/en/rest/releases/releases#get-a-release-by-tag-name
func (f *Fetcher) ReleaseURL(pkg Package) string {
	return f.apiBaseURL + "/repos/" + pkg.GitHubOrgAndRepository() + "/releases/tags/" + url.PathEscape(pkg.Version)
}

// FetchReleaseAssets returns the assets of pkg's release in API order.
//
// A 404 from the API becomes a *ReleaseTagNotFoundError; every other
// transport failure is returned unchanged. A response that does not match
// the expected shape yields a *MalformedResponseError and no assets.
func (f *Fetcher) FetchReleaseAssets(ctx context.Context, pkg Package) ([]ReleaseAsset, error) {
	if strings.TrimSpace(pkg.ReferenceDownloadURL) == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingDownloadURL, pkg)
	}

	header := http.Header{}
	if f.auth != nil {
		h, err := f.auth.AddAuthenticationHeader(header, f.apiBaseURL, pkg.ReferenceDownloadURL)
		if err != nil {
			return nil, fmt.Errorf("building authentication headers: %w", err)
		}
		header = h
	}

	releaseURL := f.ReleaseURL(pkg)
	slog.Debug("fetching release assets", "url", releaseURL, "authenticated", header.Get("Authorization") != "")

	resp, err := f.client.Get(ctx, releaseURL, RequestOptions{
		Header:           header,
		RetryAuthFailure: false,
	})
	if err != nil {
		var transportErr *TransportError
		if errors.As(err, &transportErr) && transportErr.StatusCode == http.StatusNotFound {
			return nil, &ReleaseTagNotFoundError{Package: pkg}
		}
		return nil, err
	}

	assets, err := ParseReleaseAssets(resp.Body)
	if err != nil {
		return nil, err
	}
	slog.Debug("found release assets", "package", pkg.String(), "count", len(assets))
	return assets, nil
}
