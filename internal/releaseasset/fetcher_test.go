// SPDX-License-Identifier: MPL-2.0

package releaseasset

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

type (
	stubHTTPClient struct {
		gotURL  string
		gotOpts RequestOptions
		calls   int
		resp    *Response
		err     error
	}

	stubAuth struct {
		gotAPIBase string
		gotScope   string
		token      string
		err        error
	}
)

func (c *stubHTTPClient) Get(_ context.Context, url string, opts RequestOptions) (*Response, error) {
	c.calls++
	c.gotURL = url
	c.gotOpts = opts
	if c.err != nil {
		return nil, c.err
	}
	return c.resp, nil
}

func (a *stubAuth) AddAuthenticationHeader(headers http.Header, apiBaseURL, scopeURL string) (http.Header, error) {
	a.gotAPIBase = apiBaseURL
	a.gotScope = scopeURL
	if a.err != nil {
		return nil, a.err
	}
	out := headers.Clone()
	if a.token != "" {
		out.Set("Authorization", "Bearer "+a.token)
	}
	return out, nil
}

func testPackage() Package {
	return Package{
		Organization:         "asgrim",
		Repository:           "example-pie-extension",
		Version:              "1.2.3",
		ExtensionName:        "example_pie_extension",
		ReferenceDownloadURL: "https://github.com/asgrim/example-pie-extension/archive/1.2.3.zip",
	}
}

func okResponse(body string) *Response {
	return &Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: []byte(body)}
}

func TestFetcher_FetchReleaseAssets_RequestShape(t *testing.T) {
	t.Parallel()

	client := &stubHTTPClient{resp: okResponse(`{"assets": []}`)}
	auth := &stubAuth{token: "secret"}
	f := NewFetcher("https://ghe.example.com/api/v3/", client, auth)

	pkg := testPackage()
	if _, err := f.FetchReleaseAssets(context.Background(), pkg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantURL := "https://ghe.example.com/api/v3/repos/asgrim/example-pie-extension/releases/tags/1.2.3"
	if client.gotURL != wantURL {
		t.Errorf("url = %q, want %q", client.gotURL, wantURL)
	}
	if client.gotOpts.RetryAuthFailure {
		t.Error("RetryAuthFailure must be false for release lookups")
	}
	if got := client.gotOpts.Header.Get("Authorization"); got != "Bearer secret" {
		t.Errorf("Authorization header = %q, want %q", got, "Bearer secret")
	}
	if auth.gotAPIBase != "https://ghe.example.com/api/v3" {
		t.Errorf("auth api base = %q", auth.gotAPIBase)
	}
	if auth.gotScope != pkg.ReferenceDownloadURL {
		t.Errorf("auth scope = %q, want reference download URL", auth.gotScope)
	}
}

func TestFetcher_ReleaseURL_EscapesTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		version string
		want    string
	}{
		{"plain", "1.2.3", "/tags/1.2.3"},
		{"hash", "1.0#rc", "/tags/1.0%23rc"},
		{"percent", "1%2", "/tags/1%252"},
		{"question mark", "1.0?beta", "/tags/1.0%3Fbeta"},
		{"slash", "release/1.0", "/tags/release%2F1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := &stubHTTPClient{resp: okResponse(`{"assets": []}`)}
			pkg := testPackage()
			pkg.Version = tt.version

			if _, err := NewFetcher("https://api.example.test", client, nil).FetchReleaseAssets(context.Background(), pkg); err != nil {
				t.Fatalf("FetchReleaseAssets() failed: %v", err)
			}
			want := "https://api.example.test/repos/asgrim/example-pie-extension/releases" + tt.want
			if client.gotURL != want {
				t.Errorf("url = %q, want %q", client.gotURL, want)
			}
		})
	}
}

func TestFetcher_FetchReleaseAssets_DefaultBaseAndNilAuth(t *testing.T) {
	t.Parallel()

	client := &stubHTTPClient{resp: okResponse(`{"assets": [{"name": "a.zip", "browser_download_url": "https://h/a"}]}`)}
	f := NewFetcher("", client, nil)

	assets, err := f.FetchReleaseAssets(context.Background(), testPackage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assets) != 1 || assets[0].DownloadURL != "https://h/a" {
		t.Errorf("assets = %+v", assets)
	}
	if client.gotURL != DefaultAPIBaseURL+"/repos/asgrim/example-pie-extension/releases/tags/1.2.3" {
		t.Errorf("url = %q", client.gotURL)
	}
	if client.gotOpts.Header.Get("Authorization") != "" {
		t.Error("no Authorization header expected without an auth provider")
	}
}

func TestFetcher_FetchReleaseAssets_Errors(t *testing.T) {
	t.Parallel()

	serverErr := &TransportError{StatusCode: http.StatusInternalServerError, URL: "https://api.github.com/x"}
	netErr := &TransportError{URL: "https://api.github.com/x", Err: errors.New("connection reset")}
	unauthorized := &TransportError{StatusCode: http.StatusUnauthorized, URL: "https://api.github.com/x"}

	tests := []struct {
		name     string
		client   *stubHTTPClient
		wantKind ErrorKind
		wantSame error
	}{
		{
			name:     "not found becomes tag not found",
			client:   &stubHTTPClient{err: &TransportError{StatusCode: http.StatusNotFound, URL: "https://api.github.com/x"}},
			wantKind: KindReleaseTagNotFound,
		},
		{
			name:     "server error passes through",
			client:   &stubHTTPClient{err: serverErr},
			wantKind: KindTransportFailure,
			wantSame: serverErr,
		},
		{
			name:     "network error passes through",
			client:   &stubHTTPClient{err: netErr},
			wantKind: KindTransportFailure,
			wantSame: netErr,
		},
		{
			name:     "unauthorized passes through",
			client:   &stubHTTPClient{err: unauthorized},
			wantKind: KindTransportFailure,
			wantSame: unauthorized,
		},
		{
			name:     "assets keyed structure is malformed",
			client:   &stubHTTPClient{resp: okResponse(`{"assets": {"a": 1}}`)},
			wantKind: KindMalformedResponse,
		},
		{
			name:     "missing download url is malformed",
			client:   &stubHTTPClient{resp: okResponse(`{"assets": [{"name": "a.zip"}]}`)},
			wantKind: KindMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := NewFetcher(DefaultAPIBaseURL, tt.client, nil)
			assets, err := f.FetchReleaseAssets(context.Background(), testPackage())
			if assets != nil {
				t.Errorf("expected no assets, got %+v", assets)
			}
			if got := Kind(err); got != tt.wantKind {
				t.Fatalf("Kind(%v) = %s, want %s", err, got, tt.wantKind)
			}
			if tt.wantSame != nil && err != tt.wantSame { //nolint:errorlint // identity is the property under test
				t.Errorf("error = %v, want the client error unchanged", err)
			}
		})
	}
}

func TestFetcher_FetchReleaseAssets_TagNotFoundCarriesPackage(t *testing.T) {
	t.Parallel()

	client := &stubHTTPClient{err: &TransportError{StatusCode: http.StatusNotFound}}
	f := NewFetcher(DefaultAPIBaseURL, client, nil)

	_, err := f.FetchReleaseAssets(context.Background(), testPackage())

	var notFound *ReleaseTagNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *ReleaseTagNotFoundError", err)
	}
	if notFound.Package != testPackage() {
		t.Errorf("Package = %+v", notFound.Package)
	}
	want := `could not find release by tag name "1.2.3" for asgrim/example-pie-extension`
	if notFound.Error() != want {
		t.Errorf("Error() = %q, want %q", notFound.Error(), want)
	}
}

func TestFetcher_FetchReleaseAssets_MissingDownloadURL(t *testing.T) {
	t.Parallel()

	client := &stubHTTPClient{resp: okResponse(`{"assets": []}`)}
	f := NewFetcher(DefaultAPIBaseURL, client, nil)

	pkg := testPackage()
	pkg.ReferenceDownloadURL = ""

	_, err := f.FetchReleaseAssets(context.Background(), pkg)
	if !errors.Is(err, ErrMissingDownloadURL) {
		t.Fatalf("error = %v, want ErrMissingDownloadURL", err)
	}
	if client.calls != 0 {
		t.Errorf("expected no request, got %d", client.calls)
	}
}

func TestFetcher_FetchReleaseAssets_AuthError(t *testing.T) {
	t.Parallel()

	authErr := errors.New("keychain locked")
	client := &stubHTTPClient{resp: okResponse(`{"assets": []}`)}
	f := NewFetcher(DefaultAPIBaseURL, client, &stubAuth{err: authErr})

	_, err := f.FetchReleaseAssets(context.Background(), testPackage())
	if !errors.Is(err, authErr) {
		t.Fatalf("error = %v, want wrapped auth error", err)
	}
	if client.calls != 0 {
		t.Errorf("expected no request, got %d", client.calls)
	}
}
