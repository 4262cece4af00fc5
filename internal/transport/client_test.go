// SPDX-License-Identifier: MPL-2.0

package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/extbin/extbin/internal/releaseasset"
)

func newTestClient(opts ...Option) *Client {
	return NewClient(append([]Option{WithBackoff(0)}, opts...)...)
}

func TestGet_SetsGitHubHeaders(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/vnd.github+json" {
			t.Errorf("Accept = %q", got)
		}
		if got := r.Header.Get("X-GitHub-Api-Version"); got != "2022-11-28" {
			t.Errorf("X-GitHub-Api-Version = %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "extbin/test" {
			t.Errorf("User-Agent = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"assets": []}`))
	}))
	defer srv.Close()

	client := newTestClient(WithUserAgent("extbin/test"))
	resp, err := client.Get(context.Background(), srv.URL+"/repos/a/b/releases/tags/1.0.0", releaseasset.RequestOptions{
		Header: http.Header{"Authorization": {"Bearer tok"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d", resp.StatusCode)
	}
	if string(resp.Body) != `{"assets": []}` {
		t.Errorf("Body = %q", resp.Body)
	}
	if resp.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}
}

func TestGet_NotFoundIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := newTestClient(WithRetries(3)).Get(context.Background(), srv.URL, releaseasset.RequestOptions{})

	var transportErr *releaseasset.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
	if transportErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", transportErr.StatusCode)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestGet_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(WithRetries(2)).Get(context.Background(), srv.URL, releaseasset.RequestOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Body) != `{}` {
		t.Errorf("Body = %q", resp.Body)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestGet_RetriesExhausted(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(WithRetries(1)).Get(context.Background(), srv.URL, releaseasset.RequestOptions{})
	if releaseasset.Kind(err) != releaseasset.KindTransportFailure {
		t.Fatalf("Kind(%v) = %s, want transport-failure", err, releaseasset.Kind(err))
	}

	var transportErr *releaseasset.TransportError
	if errors.As(err, &transportErr) && transportErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", transportErr.StatusCode)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestGet_RateLimited(t *testing.T) {
	t.Parallel()

	resetAt := time.Now().Add(time.Hour).Truncate(time.Second)
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient().Get(context.Background(), srv.URL, releaseasset.RequestOptions{})

	var transportErr *releaseasset.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
	if transportErr.RateLimit == nil {
		t.Fatal("expected rate limit details")
	}
	if transportErr.RateLimit.Limit != 60 || !transportErr.RateLimit.ResetAt.Equal(resetAt) {
		t.Errorf("RateLimit = %+v", transportErr.RateLimit)
	}
	if !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Errorf("error message = %q", err.Error())
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestGet_Unauthorized(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		retryAuthFailure bool
		wantErr          bool
		wantCalls        int32
		wantReauth       int32
	}{
		{name: "auth failure not retried when disabled", retryAuthFailure: false, wantErr: true, wantCalls: 1, wantReauth: 0},
		{name: "auth failure retried once with fresh headers", retryAuthFailure: true, wantErr: false, wantCalls: 2, wantReauth: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls, reauths atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				if r.Header.Get("Authorization") != "Bearer fresh" {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				_, _ = w.Write([]byte(`{}`))
			}))
			defer srv.Close()

			reauth := func(_ context.Context, _ string, failed http.Header) (http.Header, error) {
				reauths.Add(1)
				h := failed.Clone()
				h.Set("Authorization", "Bearer fresh")
				return h, nil
			}

			client := newTestClient(WithReauthenticator(reauth))
			_, err := client.Get(context.Background(), srv.URL, releaseasset.RequestOptions{
				Header:           http.Header{"Authorization": {"Bearer stale"}},
				RetryAuthFailure: tt.retryAuthFailure,
			})

			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var transportErr *releaseasset.TransportError
				if !errors.As(err, &transportErr) || transportErr.StatusCode != http.StatusUnauthorized {
					t.Errorf("error = %v, want 401 TransportError", err)
				}
			}
			if calls.Load() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls.Load(), tt.wantCalls)
			}
			if reauths.Load() != tt.wantReauth {
				t.Errorf("reauths = %d, want %d", reauths.Load(), tt.wantReauth)
			}
		})
	}
}

func TestGet_ReauthenticationFailureReturnsOriginalError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	reauth := func(context.Context, string, http.Header) (http.Header, error) {
		return nil, errors.New("no credentials")
	}

	_, err := newTestClient(WithReauthenticator(reauth)).Get(context.Background(), srv.URL, releaseasset.RequestOptions{RetryAuthFailure: true})

	var transportErr *releaseasset.TransportError
	if !errors.As(err, &transportErr) || transportErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("error = %v, want 401 TransportError", err)
	}
}

func TestGet_NetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(WithRetries(1)).Get(context.Background(), url, releaseasset.RequestOptions{})

	var transportErr *releaseasset.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
	if transportErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", transportErr.StatusCode)
	}
	if transportErr.Err == nil {
		t.Error("expected underlying network error")
	}
}

func TestGet_ContextCanceled(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(WithRetries(5), WithBackoff(time.Hour)).Get(ctx, srv.URL, releaseasset.RequestOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if releaseasset.Kind(err) != releaseasset.KindTransportFailure {
		t.Errorf("Kind = %s, want transport-failure", releaseasset.Kind(err))
	}
	if calls.Load() != 0 {
		t.Errorf("calls = %d, want 0", calls.Load())
	}
}

func TestGet_ResponseTooLarge(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", maxResponseBytes+1)))
	}))
	defer srv.Close()

	_, err := newTestClient().Get(context.Background(), srv.URL, releaseasset.RequestOptions{})
	if !errors.Is(err, ErrResponseTooLarge) {
		t.Fatalf("error = %v, want ErrResponseTooLarge", err)
	}
}

func TestCheckRateLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		remaining string
		wantNil   bool
	}{
		{name: "no header", remaining: "", wantNil: true},
		{name: "quota left", remaining: "12", wantNil: true},
		{name: "malformed", remaining: "lots", wantNil: true},
		{name: "exhausted", remaining: "0", wantNil: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := http.Header{}
			if tt.remaining != "" {
				h.Set("X-RateLimit-Remaining", tt.remaining)
			}
			if got := checkRateLimit(h); (got == nil) != tt.wantNil {
				t.Errorf("checkRateLimit() = %+v, wantNil %v", got, tt.wantNil)
			}
		})
	}
}
