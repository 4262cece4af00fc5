// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/extbin/extbin/internal/config"
	"github.com/extbin/extbin/pkg/platform"
)

const (
	testRepo    = "asgrim/example-pie-extension"
	testVersion = "1.2.3"
	// testAsset is the asset name for PHP 8.3 NTS x86_64 with the default compiler.
	testAsset = "php_example_pie_extension-1.2.3-8.3-nts-vs16-x86_64.zip"
)

type (
	stubConfig struct {
		cfg  *config.Config
		path string
		err  error
	}

	testCLI struct {
		app    *App
		stdout *bytes.Buffer
		stderr *bytes.Buffer
	}
)

func (s stubConfig) Load(context.Context, config.LoadOptions) (*config.Loaded, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &config.Loaded{Config: s.cfg, Path: s.path}, nil
}

// testConfig returns the default configuration pointed at apiBaseURL with
// retries disabled.
func testConfig(apiBaseURL string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.GitHub.APIBaseURL = apiBaseURL
	cfg.HTTP.Retries = 0
	return cfg
}

func detectX8664(context.Context) (platform.TargetPlatform, error) {
	return platform.TargetPlatform{OS: platform.Linux, Architecture: platform.ArchX8664}, nil
}

func newTestCLI(t *testing.T, provider ConfigProvider) *testCLI {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	app, err := NewApp(Dependencies{
		Config: provider,
		Detect: detectX8664,
		Stdout: stdout,
		Stderr: stderr,
	})
	if err != nil {
		t.Fatalf("NewApp() failed: %v", err)
	}
	return &testCLI{app: app, stdout: stdout, stderr: stderr}
}

func (c *testCLI) run(args ...string) error {
	rootCmd := NewRootCommand(c.app)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}
