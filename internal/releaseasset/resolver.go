// SPDX-License-Identifier: MPL-2.0

package releaseasset

import (
	"context"
	"errors"
	"log/slog"

	"github.com/extbin/extbin/pkg/platform"
)

// Resolver answers "what is the download URL of this package's prebuilt
// binary for this platform?" by composing a NameGenerator, an AssetsFetcher
// and MatchAsset.
type Resolver struct {
	names   NameGenerator
	fetcher AssetsFetcher
}

// NewResolver creates a Resolver.
func NewResolver(names NameGenerator, fetcher AssetsFetcher) *Resolver {
	return &Resolver{names: names, fetcher: fetcher}
}

// FindDownloadURL returns the download URL of the asset matching target.
// Errors from naming, fetching and matching are returned unchanged.
func (r *Resolver) FindDownloadURL(ctx context.Context, target platform.TargetPlatform, pkg Package) (string, error) {
	asset, err := r.FindAsset(ctx, target, pkg)
	if err != nil {
		return "", err
	}
	return asset.DownloadURL, nil
}

// FindAsset is FindDownloadURL returning the whole matched asset.
func (r *Resolver) FindAsset(ctx context.Context, target platform.TargetPlatform, pkg Package) (ReleaseAsset, error) {
	names, err := r.names.AcceptableNames(target, pkg)
	if err != nil {
		return ReleaseAsset{}, err
	}

	assets, err := r.fetcher.FetchReleaseAssets(ctx, pkg)
	if err != nil {
		return ReleaseAsset{}, err
	}

	asset, err := MatchAsset(names, assets)
	if err != nil {
		var noMatch *NoMatchingAssetError
		if errors.As(err, &noMatch) {
			noMatch.Package = pkg
		}
		return ReleaseAsset{}, err
	}

	slog.Debug("matched release asset", "package", pkg.String(), "platform", target.String(), "asset", asset.Name)
	return asset, nil
}
