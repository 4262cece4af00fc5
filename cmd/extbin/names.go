// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/extbin/extbin/internal/naming"
	"github.com/extbin/extbin/internal/releaseasset"
	"github.com/extbin/extbin/pkg/platform"
)

// namesResult is the structured output of the names command.
type namesResult struct {
	Target platform.TargetPlatform `json:"target" toml:"target"`
	Assets []string                `json:"assets" toml:"assets"`
	DLLs   []string                `json:"dlls" toml:"dlls"`
}

// newNamesCommand creates the `extbin names` command.
func newNamesCommand(app *App) *cobra.Command {
	var (
		tf     targetFlags
		pf     packageFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "names <org/repo> <version>",
		Short: "Print the asset names accepted for a PHP runtime",
		Long: `Print the asset names accepted for a PHP runtime, and the names the
extension DLL may have inside the asset. No request is made.

Use it to check how a release asset must be named to be found by resolve.`,
		Example: `  extbin names php/pecl-text-xdiff 2.1.1 --ext xdiff --php 8.3 --nts --arch x86_64`,
		Args:    cobra.ExactArgs(2),
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

			pkg, err := buildPackage(args[0], args[1], pf, loaded.Config.GitHub.APIBaseURL)
			if err != nil {
				return exitErrorFor(err)
			}
			target, err := buildTarget(ctx, tf, loaded.Config.Target, app.Detect)
			if err != nil {
				return exitErrorFor(err)
			}

			if err := runNames(cmd.OutOrStdout(), target, pkg, format); err != nil {
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

func runNames(w io.Writer, target platform.TargetPlatform, pkg releaseasset.Package, format outputFormat) error {
	assets, err := naming.WindowsExtensionAssetNames{}.AcceptableNames(target, pkg)
	if err != nil {
		return err
	}
	dlls, err := naming.DLLNames(target, pkg)
	if err != nil {
		return err
	}

	if format != outputText {
		return writeStructured(w, format, namesResult{Target: target, Assets: assets.Names(), DLLs: dlls})
	}

	fmt.Fprintln(w, TitleStyle.Render("Release asset names")+SubtitleStyle.Render(" ("+target.String()+")"))
	for _, name := range assets.Names() {
		fmt.Fprintf(w, "  %s\n", CmdStyle.Render(name))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Extension DLL names"))
	for _, name := range dlls {
		fmt.Fprintf(w, "  %s\n", CmdStyle.Render(name))
	}
	return nil
}
