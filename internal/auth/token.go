// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/extbin/extbin/internal/releaseasset"
)

const (
	// SourceConfig marks a token taken from the configuration file.
	SourceConfig TokenSource = "config"
	// SourceGitHubToken marks a token taken from GITHUB_TOKEN.
	SourceGitHubToken TokenSource = "GITHUB_TOKEN"
	// SourceGHToken marks a token taken from GH_TOKEN.
	SourceGHToken TokenSource = "GH_TOKEN"
	// SourceNone means no token is available.
	SourceNone TokenSource = ""
)

// ErrNoFreshCredentials is returned by Reauthenticate when no token other
// than the rejected one is available.
var ErrNoFreshCredentials = errors.New("no fresh credentials available")

type (
	// TokenSource names where a token came from.
	TokenSource string

	// TokenProvider resolves a GitHub token and scopes it to trusted hosts.
	TokenProvider struct {
		token        string
		trustedHosts []string
		getenv       func(string) string
	}

	// Option configures a TokenProvider during construction.
	Option func(*TokenProvider)
)

var _ releaseasset.AuthHeaderProvider = (*TokenProvider)(nil)

// WithToken sets an explicit token, taking precedence over the environment.
func WithToken(token string) Option {
	return func(p *TokenProvider) {
		p.token = strings.TrimSpace(token)
	}
}

// WithTrustedHosts adds hosts the token may be sent for, in addition to the
// API host itself.
func WithTrustedHosts(hosts ...string) Option {
	return func(p *TokenProvider) {
		for _, h := range hosts {
			if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
				p.trustedHosts = append(p.trustedHosts, h)
			}
		}
	}
}

// WithEnvLookup overrides how environment variables are read.
func WithEnvLookup(getenv func(string) string) Option {
	return func(p *TokenProvider) {
		p.getenv = getenv
	}
}

// NewTokenProvider creates a TokenProvider.
func NewTokenProvider(opts ...Option) *TokenProvider {
	p := &TokenProvider{getenv: os.Getenv}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Token returns the token to use and where it came from: the explicit token,
// then GITHUB_TOKEN, then GH_TOKEN.
func (p *TokenProvider) Token() (string, TokenSource) {
	if p.token != "" {
		return p.token, SourceConfig
	}
	if tok := strings.TrimSpace(p.getenv("GITHUB_TOKEN")); tok != "" {
		return tok, SourceGitHubToken
	}
	if tok := strings.TrimSpace(p.getenv("GH_TOKEN")); tok != "" {
		return tok, SourceGHToken
	}
	return "", SourceNone
}

// AddAuthenticationHeader returns a copy of headers with an Authorization
// header added when a token is available and scopeURL is trusted for
// apiBaseURL. headers itself is never modified.
func (p *TokenProvider) AddAuthenticationHeader(headers http.Header, apiBaseURL, scopeURL string) (http.Header, error) {
	out := headers.Clone()
	if out == nil {
		out = http.Header{}
	}

	scope, err := url.Parse(scopeURL)
	if err != nil {
		return nil, fmt.Errorf("parsing scope URL %s: %w", releaseasset.RedactURL(scopeURL), err)
	}

	token, source := p.Token()
	if token == "" {
		return out, nil
	}
	if !p.IsTrustedHost(scope, apiBaseURL) {
		slog.Debug("not sending GitHub token to untrusted host", "host", scope.Host, "source", string(source))
		return out, nil
	}

	out.Set("Authorization", "Bearer "+token)
	return out, nil
}

// Reauthenticate returns failed with a different token when the environment
// now provides one. It fits transport.WithReauthenticator.
func (p *TokenProvider) Reauthenticate(_ context.Context, _ string, failed http.Header) (http.Header, error) {
	token, _ := p.Token()
	if token == "" || failed.Get("Authorization") == "Bearer "+token {
		return nil, ErrNoFreshCredentials
	}
	out := failed.Clone()
	if out == nil {
		out = http.Header{}
	}
	out.Set("Authorization", "Bearer "+token)
	return out, nil
}

// IsTrustedHost reports whether a token for apiBaseURL may be used for
// scope. The API host is trusted, github.com is trusted when the API is
// api.github.com, and so is every host passed to WithTrustedHosts.
func (p *TokenProvider) IsTrustedHost(scope *url.URL, apiBaseURL string) bool {
	base, err := url.Parse(apiBaseURL)
	if err != nil || scope.Host == "" {
		return false
	}
	host := strings.ToLower(scope.Hostname())
	if strings.EqualFold(scope.Host, base.Host) {
		return true
	}
	if strings.EqualFold(base.Host, "api.github.com") && host == "github.com" {
		return true
	}
	return slices.Contains(p.trustedHosts, host)
}
