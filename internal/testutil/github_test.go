// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestReleaseServer(t *testing.T) {
	t.Parallel()

	srv := NewReleaseServer(t)
	srv.AddRelease("php/xdiff", "2.1.1", Asset{Name: "a.zip", DownloadURL: "https://h/a"})
	srv.AddRelease("php/xdiff", "2.2.0")

	tests := []struct {
		path       string
		wantStatus int
		wantAssets int
	}{
		{path: "/repos/php/xdiff/releases/tags/2.1.1", wantStatus: http.StatusOK, wantAssets: 1},
		{path: "/repos/php/xdiff/releases/tags/2.2.0", wantStatus: http.StatusOK, wantAssets: 0},
		{path: "/repos/php/xdiff/releases/tags/9.9.9", wantStatus: http.StatusNotFound},
		{path: "/other", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		resp, err := http.Get(srv.URL + tt.path) //nolint:noctx // test server
		if err != nil {
			t.Fatalf("GET %s: %v", tt.path, err)
		}
		if resp.StatusCode != tt.wantStatus {
			t.Errorf("GET %s status = %d, want %d", tt.path, resp.StatusCode, tt.wantStatus)
		}
		if tt.wantStatus == http.StatusOK {
			var body struct {
				Assets []Asset `json:"assets"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Errorf("decoding %s: %v", tt.path, err)
			}
			if len(body.Assets) != tt.wantAssets {
				t.Errorf("GET %s assets = %d, want %d", tt.path, len(body.Assets), tt.wantAssets)
			}
		}
		_ = resp.Body.Close()
	}

	if got := len(srv.Requests()); got != len(tests) {
		t.Errorf("Requests() = %d, want %d", got, len(tests))
	}
}
