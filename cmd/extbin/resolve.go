// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/extbin/extbin/internal/releaseasset"
	"github.com/extbin/extbin/pkg/platform"
)

type (
	// resolveParams bundles the inputs of runResolve so the lookup can be
	// tested without a Cobra command or the live GitHub API.
	resolveParams struct {
		stdout   io.Writer
		stderr   io.Writer
		logger   *slog.Logger
		resolver AssetResolver
		pkg      releaseasset.Package
		target   platform.TargetPlatform
		output   outputFormat
	}

	// resolveResult is the structured output of the resolve command.
	resolveResult struct {
		Repository  string                  `json:"repository" toml:"repository"`
		Version     string                  `json:"version" toml:"version"`
		Extension   string                  `json:"extension" toml:"extension"`
		Target      platform.TargetPlatform `json:"target" toml:"target"`
		Asset       string                  `json:"asset" toml:"asset"`
		DownloadURL string                  `json:"download_url" toml:"download_url"`
	}
)

// newResolveCommand creates the `extbin resolve` command.
func newResolveCommand(app *App) *cobra.Command {
	var (
		tf     targetFlags
		pf     packageFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "resolve <org/repo> <version>",
		Short: "Print the download URL of the prebuilt asset for a PHP runtime",
		Long: `Print the download URL of the prebuilt asset for a PHP runtime.

resolve fetches the GitHub release tagged <version> and looks for an asset
named after the extension, its version and the target PHP runtime, e.g.

  php_xdiff-2.1.1-8.3-nts-vs16-x86_64.zip

Exit status is 1 when the release or a matching asset does not exist
(build the extension from source instead) and 2 when GitHub could not be
queried.`,
		Example: `  # Thread-safe PHP 8.3 on the host architecture
  extbin resolve php/pecl-text-xdiff 2.1.1 --ext xdiff --php 8.3 --ts

  # Target described in a file, JSON output
  extbin resolve asgrim/example-pie-extension 1.2.3 --target-file target.cue --output json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			format, err := parseOutputFormat(output)
			if err != nil {
				return exitErrorFor(err)
			}
			loaded, err := app.loadConfig(ctx)
			if err != nil {
				return exitErrorFor(err)
			}
			cfg := loaded.Config

			pkg, err := buildPackage(args[0], args[1], pf, cfg.GitHub.APIBaseURL)
			if err != nil {
				return exitErrorFor(err)
			}
			target, err := buildTarget(ctx, tf, cfg.Target, app.Detect)
			if err != nil {
				return exitErrorFor(err)
			}

			p := resolveParams{
				stdout:   cmd.OutOrStdout(),
				stderr:   cmd.ErrOrStderr(),
				logger:   app.logger,
				resolver: app.Resolvers(cfg),
				pkg:      pkg,
				target:   target,
				output:   format,
			}
			if err := runResolve(ctx, p); err != nil {
				return exitErrorFor(err)
			}
			return nil
		},
	}

	addPackageFlags(cmd, &pf)
	addTargetFlags(cmd, &tf)
	cmd.Flags().StringVarP(&output, "output", "o", string(outputText), "output format: text, json or toml")

	return cmd
}

// runResolve looks up the asset and writes the result. Text output is the
// bare URL on stdout so it can be captured by scripts.
func runResolve(ctx context.Context, p resolveParams) error {
	p.logger.Debug("resolving release asset", "package", p.pkg.String(), "target", p.target.String())

	asset, err := p.resolver.FindAsset(ctx, p.target, p.pkg)
	if err != nil {
		return err
	}

	if p.output == outputText {
		fmt.Fprintf(p.stderr, "%s %s for %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(asset.Name), p.target)
		_, err := fmt.Fprintln(p.stdout, asset.DownloadURL)
		return err
	}

	return writeStructured(p.stdout, p.output, resolveResult{
		Repository:  p.pkg.GitHubOrgAndRepository(),
		Version:     p.pkg.Version,
		Extension:   p.pkg.ExtensionName,
		Target:      p.target,
		Asset:       asset.Name,
		DownloadURL: asset.DownloadURL,
	})
}
