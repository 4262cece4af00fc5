// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/extbin/extbin/internal/config"
)

// newConfigCommand creates the `extbin config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage extbin configuration",
		Long: `Manage extbin configuration.

Configuration is stored in:
  - Linux: ~/.config/extbin/config.cue
  - macOS: ~/Library/Application Support/extbin/config.cue
  - Windows: %APPDATA%\extbin\config.cue

Every value can be overridden with an EXTBIN_* environment variable,
e.g. EXTBIN_GITHUB_API_BASE_URL or EXTBIN_HTTP_RETRIES.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := showConfig(cmd.Context(), app, cmd.OutOrStdout()); err != nil {
				return exitErrorFor(err)
			}
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cmd.OutOrStdout()); err != nil {
				return exitErrorFor(err)
			}
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := showConfigPath(cmd.OutOrStdout(), app.flags.configPath); err != nil {
				return exitErrorFor(err)
			}
			return nil
		},
	})

	return cfgCmd
}

// showConfig prints the effective configuration as CUE with the token redacted.
func showConfig(ctx context.Context, app *App, w io.Writer) error {
	loaded, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if loaded.Path != "" {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Config file"), loaded.Path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	redacted := loaded.Config.Redacted()
	fmt.Fprint(w, config.GenerateCUE(&redacted))
	return nil
}

func initConfig(w io.Writer) error {
	cfgPath, created, err := config.CreateDefaultConfig()
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if !created {
		fmt.Fprintf(w, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), cfgPath)
		return nil
	}
	fmt.Fprintf(w, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), cfgPath)
	return nil
}

func showConfigPath(w io.Writer, override string) error {
	if override != "" {
		fmt.Fprintf(w, "Config file: %s\n", override)
		return nil
	}
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	cfgPath, err := config.ConfigFilePath()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(w, "Config file: %s\n", cfgPath)
	return nil
}
