// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/extbin/extbin/internal/auth"
	"github.com/extbin/extbin/internal/config"
	"github.com/extbin/extbin/internal/naming"
	"github.com/extbin/extbin/internal/releaseasset"
	"github.com/extbin/extbin/internal/transport"
	"github.com/extbin/extbin/pkg/platform"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every Cobra handler receives an App and
	// delegates through its service interfaces.
	App struct {
		Config    ConfigProvider
		Resolvers ResolverFactory
		Detect    HostDetector
		stdout    io.Writer
		stderr    io.Writer

		// logger writes to stderr. Execute installs it as the slog default;
		// configureLogging only adjusts its level.
		logger  *slog.Logger
		handler *log.Logger

		flags  rootFlags
		loaded *config.Loaded
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config    ConfigProvider
		Resolvers ResolverFactory
		Detect    HostDetector
		Stdout    io.Writer
		Stderr    io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Loaded, error)
	}

	// AssetResolver finds the release asset of a package built for a target.
	AssetResolver interface {
		FindAsset(ctx context.Context, target platform.TargetPlatform, pkg releaseasset.Package) (releaseasset.ReleaseAsset, error)
	}

	// ResolverFactory builds an AssetResolver from the effective configuration.
	ResolverFactory func(cfg *config.Config) AssetResolver

	// HostDetector reports the operating system and architecture of the host.
	HostDetector func(ctx context.Context) (platform.TargetPlatform, error)

	rootFlags struct {
		verbose    bool
		configPath string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Resolvers == nil {
		deps.Resolvers = newResolver
	}
	if deps.Detect == nil {
		deps.Detect = platform.DetectHost
	}

	handler := log.NewWithOptions(deps.Stderr, log.Options{
		Prefix: config.AppName,
		Level:  logLevel(false, nil),
	})

	return &App{
		Config:    deps.Config,
		Resolvers: deps.Resolvers,
		Detect:    deps.Detect,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
		logger:    slog.New(handler),
		handler:   handler,
	}, nil
}

// newResolver wires the GitHub transport, token provider and Windows naming
// convention into a releaseasset.Resolver.
func newResolver(cfg *config.Config) AssetResolver {
	tokens := auth.NewTokenProvider(
		auth.WithToken(cfg.GitHub.Token),
		auth.WithTrustedHosts(cfg.GitHub.TrustedHosts...),
	)

	userAgent := cfg.HTTP.UserAgent
	if userAgent == "" {
		userAgent = config.AppName + "/" + Version
	}
	client := transport.NewClient(
		transport.WithTimeout(cfg.HTTP.Timeout),
		transport.WithRetries(cfg.HTTP.Retries),
		transport.WithUserAgent(userAgent),
		transport.WithReauthenticator(tokens.Reauthenticate),
	)

	fetcher := releaseasset.NewFetcher(cfg.GitHub.APIBaseURL, client, tokens)
	return releaseasset.NewResolver(naming.WindowsExtensionAssetNames{}, fetcher)
}

// loadConfig loads the configuration once per invocation and applies its
// logging settings.
func (a *App) loadConfig(ctx context.Context) (*config.Loaded, error) {
	if a.loaded != nil {
		return a.loaded, nil
	}
	loaded, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.flags.configPath})
	if err != nil {
		return nil, err
	}
	a.loaded = loaded
	a.configureLogging(loaded.Config)
	return loaded, nil
}

// configureLogging sets the level of the App's logger from --verbose and
// cfg. cfg may be nil before configuration is loaded.
func (a *App) configureLogging(cfg *config.Config) {
	a.handler.SetLevel(logLevel(a.flags.verbose, cfg))
}

// Logger returns the App's structured logger.
func (a *App) Logger() *slog.Logger { return a.logger }

func logLevel(verbose bool, cfg *config.Config) log.Level {
	if verbose || (cfg != nil && cfg.UI.Verbose) {
		return log.DebugLevel
	}
	if cfg == nil {
		return log.WarnLevel
	}
	level, err := log.ParseLevel(cfg.Log.Level.String())
	if err != nil {
		return log.WarnLevel
	}
	return level
}

// verbose reports whether --verbose or ui.verbose is set.
func (a *App) verbose() bool {
	return a.flags.verbose || (a.loaded != nil && a.loaded.Config.UI.Verbose)
}

// issueStyle returns the glamour style matching ui.color_scheme.
func (a *App) issueStyle() string {
	scheme := config.ColorSchemeAuto
	if a.loaded != nil {
		scheme = a.loaded.Config.UI.ColorScheme
	}
	switch scheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	case config.ColorSchemeAuto:
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
