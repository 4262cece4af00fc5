// SPDX-License-Identifier: MPL-2.0

package releaseasset

import (
	"context"
	"net/http"

	"github.com/extbin/extbin/pkg/platform"
)

type (
	// RequestOptions configures a single HTTPClient request.
	RequestOptions struct {
		// Header is sent with the request in addition to the client's defaults.
		Header http.Header
		// RetryAuthFailure allows the client to refresh credentials and retry
		// once after a 401. Release lookups disable it: an auth failure there
		// is a diagnostic, not a transient condition.
		RetryAuthFailure bool
	}

	// Response is a successful (2xx) HTTP response with its body fully read.
	Response struct {
		StatusCode int
		Header     http.Header
		Body       []byte
	}

	// HTTPClient performs GET requests. Non-2xx responses and network
	// failures are returned as *TransportError. Timeouts, cancellation and
	// retries are the implementation's concern.
	HTTPClient interface {
		Get(ctx context.Context, url string, opts RequestOptions) (*Response, error)
	}

	// AuthHeaderProvider computes authentication headers for an API request.
	// scopeURL decides which credentials apply; implementations must return
	// a new header map rather than mutate headers.
	AuthHeaderProvider interface {
		AddAuthenticationHeader(headers http.Header, apiBaseURL, scopeURL string) (http.Header, error)
	}

	// NameGenerator produces the acceptable asset names for a package built
	// for a platform. The returned set is non-empty on success.
	NameGenerator interface {
		AcceptableNames(target platform.TargetPlatform, pkg Package) (AcceptableNameSet, error)
	}

	// AssetsFetcher lists the assets of a package's release.
	AssetsFetcher interface {
		FetchReleaseAssets(ctx context.Context, pkg Package) ([]ReleaseAsset, error)
	}
)
