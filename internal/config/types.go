// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/extbin/extbin/internal/releaseasset"
	"github.com/extbin/extbin/pkg/platform"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// LogLevelDebug logs every request and match decision.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs progress messages.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs only warnings and errors.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs only errors.
	LogLevelError LogLevel = "error"

	// DefaultAPIBaseURL is the public GitHub REST API.
	DefaultAPIBaseURL = releaseasset.DefaultAPIBaseURL
	// DefaultTimeout is the default per-request timeout.
	DefaultTimeout = 30 * time.Second
	// DefaultRetries is the default number of retries after a transient failure.
	DefaultRetries = 2
	// maxRetries mirrors the bound in config_schema.cue.
	maxRetries = 10
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidGitHubConfig is the sentinel error wrapped by InvalidGitHubConfigError.
	ErrInvalidGitHubConfig = errors.New("invalid GitHub config")
	// ErrInvalidHTTPConfig is the sentinel error wrapped by InvalidHTTPConfigError.
	ErrInvalidHTTPConfig = errors.New("invalid HTTP config")
	// ErrInvalidTargetConfig is the sentinel error wrapped by InvalidTargetConfigError.
	ErrInvalidTargetConfig = errors.New("invalid target config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme selects the terminal color palette.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// LogLevel is the minimum level of log messages written to stderr.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidGitHubConfigError collects the field errors of a GitHubConfig.
	InvalidGitHubConfigError struct {
		FieldErrors []error
	}

	// InvalidHTTPConfigError collects the field errors of an HTTPConfig.
	InvalidHTTPConfigError struct {
		FieldErrors []error
	}

	// InvalidTargetConfigError collects the field errors of a TargetConfig.
	InvalidTargetConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError collects the errors of every invalid section.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// GitHub configures the release API.
		GitHub GitHubConfig `json:"github" toml:"github" mapstructure:"github"`
		// HTTP configures the API client.
		HTTP HTTPConfig `json:"http" toml:"http" mapstructure:"http"`
		// Target holds defaults for the target platform flags.
		Target TargetConfig `json:"target" toml:"target" mapstructure:"target"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" toml:"ui" mapstructure:"ui"`
		// Log configures diagnostic logging.
		Log LogConfig `json:"log" toml:"log" mapstructure:"log"`
	}

	// GitHubConfig configures the GitHub Releases API.
	GitHubConfig struct {
		// APIBaseURL is the REST API root, e.g. https://ghe.example.com/api/v3.
		APIBaseURL string `json:"api_base_url" toml:"api_base_url" mapstructure:"api_base_url"`
		// Token authenticates API requests. Empty falls back to GITHUB_TOKEN / GH_TOKEN.
		Token string `json:"token,omitempty" toml:"token,omitempty" mapstructure:"token"`
		// TrustedHosts are extra hosts the token may be sent for.
		TrustedHosts []string `json:"trusted_hosts" toml:"trusted_hosts" mapstructure:"trusted_hosts"`
	}

	// HTTPConfig configures the API client.
	HTTPConfig struct {
		Timeout   time.Duration `json:"timeout" toml:"timeout" mapstructure:"timeout"`
		Retries   int           `json:"retries" toml:"retries" mapstructure:"retries"`
		UserAgent string        `json:"user_agent,omitempty" toml:"user_agent,omitempty" mapstructure:"user_agent"`
	}

	// TargetConfig holds target platform defaults used when the matching
	// flag is not given. Empty fields are detected or required on the command line.
	TargetConfig struct {
		PHPVersion   platform.PHPVersion      `json:"php_version,omitempty" toml:"php_version,omitempty" mapstructure:"php_version"`
		ThreadSafety platform.ThreadSafety    `json:"thread_safety,omitempty" toml:"thread_safety,omitempty" mapstructure:"thread_safety"`
		Compiler     platform.WindowsCompiler `json:"compiler,omitempty" toml:"compiler,omitempty" mapstructure:"compiler"`
		Arch         platform.Architecture    `json:"arch,omitempty" toml:"arch,omitempty" mapstructure:"arch"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" toml:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" toml:"verbose" mapstructure:"verbose"`
	}

	// LogConfig configures diagnostic logging.
	LogConfig struct {
		Level LogLevel `json:"level" toml:"level" mapstructure:"level"`
	}
)

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// IsValid returns whether the API base URL is an absolute http(s) URL and
// no trusted host is blank.
func (c GitHubConfig) IsValid() (bool, []error) {
	var errs []error
	u, err := url.Parse(c.APIBaseURL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("api_base_url: %w", err))
	case (u.Scheme != "http" && u.Scheme != "https") || u.Host == "":
		errs = append(errs, fmt.Errorf("api_base_url %q must be an absolute http(s) URL", c.APIBaseURL))
	}
	for i, h := range c.TrustedHosts {
		if strings.TrimSpace(h) == "" {
			errs = append(errs, fmt.Errorf("trusted_hosts[%d] must not be empty", i))
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidGitHubConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidGitHubConfigError.
func (e *InvalidGitHubConfigError) Error() string {
	return fmt.Sprintf("invalid GitHub config: %s", joinErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidGitHubConfig for errors.Is() compatibility.
func (e *InvalidGitHubConfigError) Unwrap() error { return ErrInvalidGitHubConfig }

// IsValid returns whether the timeout and retry count are in range.
func (c HTTPConfig) IsValid() (bool, []error) {
	var errs []error
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	if c.Retries < 0 || c.Retries > maxRetries {
		errs = append(errs, fmt.Errorf("retries must be between 0 and %d, got %d", maxRetries, c.Retries))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidHTTPConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidHTTPConfigError.
func (e *InvalidHTTPConfigError) Error() string {
	return fmt.Sprintf("invalid HTTP config: %s", joinErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidHTTPConfig for errors.Is() compatibility.
func (e *InvalidHTTPConfigError) Unwrap() error { return ErrInvalidHTTPConfig }

// IsValid validates every non-empty field; empty fields mean "not configured".
func (c TargetConfig) IsValid() (bool, []error) {
	var errs []error
	if c.PHPVersion != "" {
		if valid, fieldErrs := c.PHPVersion.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if c.ThreadSafety != "" {
		if valid, fieldErrs := c.ThreadSafety.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if c.Compiler != "" {
		if valid, fieldErrs := c.Compiler.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if c.Arch != "" {
		if valid, fieldErrs := c.Arch.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidTargetConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidTargetConfigError.
func (e *InvalidTargetConfigError) Error() string {
	return fmt.Sprintf("invalid target config: %s", joinErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidTargetConfig for errors.Is() compatibility.
func (e *InvalidTargetConfigError) Unwrap() error { return ErrInvalidTargetConfig }

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.GitHub.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.HTTP.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Target.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Log.Level.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s", joinErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Redacted returns a copy of the configuration that is safe to print.
func (c Config) Redacted() Config {
	if c.GitHub.Token != "" {
		c.GitHub.Token = "********"
	}
	c.GitHub.TrustedHosts = append([]string(nil), c.GitHub.TrustedHosts...)
	return c
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			APIBaseURL:   DefaultAPIBaseURL,
			TrustedHosts: []string{},
		},
		HTTP: HTTPConfig{
			Timeout: DefaultTimeout,
			Retries: DefaultRetries,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
		Log: LogConfig{
			Level: LogLevelWarn,
		},
	}
}

func joinErrors(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}
