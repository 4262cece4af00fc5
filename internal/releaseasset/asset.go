// SPDX-License-Identifier: MPL-2.0

package releaseasset

import (
	"slices"
	"strings"
)

type (
	// ReleaseAsset is a downloadable file attached to a release. Values only
	// come out of the validated response parser; both fields are non-empty.
	ReleaseAsset struct {
		Name        string `json:"name" toml:"name"`
		DownloadURL string `json:"download_url" toml:"download_url"`
	}

	// AcceptableNameSet is the ordered set of asset file names that are all
	// valid matches for one package and platform. Names are stored lowercased
	// and without duplicates; the first occurrence keeps its position.
	AcceptableNameSet struct {
		names []string
	}
)

// NewAcceptableNameSet builds a set from names, lowercasing them and dropping
// blanks and duplicates.
func NewAcceptableNameSet(names ...string) AcceptableNameSet {
	set := AcceptableNameSet{names: make([]string, 0, len(names))}
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" || slices.Contains(set.names, n) {
			continue
		}
		set.names = append(set.names, n)
	}
	return set
}

// Contains reports whether name is in the set. name must already be lowercase.
func (s AcceptableNameSet) Contains(name string) bool {
	return slices.Contains(s.names, name)
}

// Names returns a copy of the names in order.
func (s AcceptableNameSet) Names() []string {
	return slices.Clone(s.names)
}

// Len returns the number of names in the set.
func (s AcceptableNameSet) Len() int { return len(s.names) }

// String renders the set as a quoted, comma separated list.
func (s AcceptableNameSet) String() string {
	quoted := make([]string, len(s.names))
	for i, n := range s.names {
		quoted[i] = `"` + n + `"`
	}
	return strings.Join(quoted, ", ")
}
