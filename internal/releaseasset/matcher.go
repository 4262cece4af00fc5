// SPDX-License-Identifier: MPL-2.0

package releaseasset

import "strings"

// MatchAsset returns the first asset, in the given order, whose lowercased
// name is in names. The API's ordering is the only tie-break: when several
// assets match, the earliest wins.
func MatchAsset(names AcceptableNameSet, assets []ReleaseAsset) (ReleaseAsset, error) {
	for _, asset := range assets {
		if names.Contains(strings.ToLower(asset.Name)) {
			return asset, nil
		}
	}
	return ReleaseAsset{}, &NoMatchingAssetError{AcceptableNames: names}
}
