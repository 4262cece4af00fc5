// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type (
	// Asset is a release asset served by ReleaseServer.
	Asset struct {
		Name        string `json:"name"`
		DownloadURL string `json:"browser_download_url"`
	}

	// ReleaseServer is a fake GitHub Releases API serving
	// GET /repos/{org}/{repo}/releases/tags/{tag}.
	ReleaseServer struct {
		*httptest.Server

		mu       sync.Mutex
		releases map[string][]Asset
		requests []*http.Request
	}
)

// NewReleaseServer starts a ReleaseServer and closes it on test cleanup.
func NewReleaseServer(t testing.TB) *ReleaseServer {
	t.Helper()
	s := &ReleaseServer{releases: map[string][]Asset{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// AddRelease registers the assets of orgRepo ("org/repo") at tag.
func (s *ReleaseServer) AddRelease(orgRepo, tag string, assets ...Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if assets == nil {
		assets = []Asset{}
	}
	s.releases[orgRepo+"@"+tag] = assets
}

// Requests returns the requests received so far.
func (s *ReleaseServer) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.requests...)
}

func (s *ReleaseServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.Clone(r.Context()))
	s.mu.Unlock()

	rest, ok := strings.CutPrefix(r.URL.Path, "/repos/")
	if !ok || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	orgRepo, tag, ok := strings.Cut(rest, "/releases/tags/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	assets, found := s.releases[orgRepo+"@"+tag]
	s.mu.Unlock()
	if !found {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Not Found"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"tag_name": tag,
		"assets":   assets,
	})
}
