// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

//nolint:gochecknoglobals // Test seams for host detection.
var (
	kernelArch = host.KernelArchWithContext
	hostOS     = func() string { return runtime.GOOS }
	hostArch   = func() string { return runtime.GOARCH }
)

// DetectHost returns a TargetPlatform pre-filled with the operating system and
// architecture of the running machine. PHP runtime fields are left empty; the
// caller fills them from flags or configuration.
//
// The kernel architecture is preferred over GOARCH so that a 32-bit build of
// this tool running on a 64-bit Windows still reports x86_64. If the kernel
// query fails, GOARCH is used.
func DetectHost(ctx context.Context) (TargetPlatform, error) {
	target := TargetPlatform{OS: hostOS()}

	raw, err := kernelArch(ctx)
	if err != nil || raw == "" {
		if ctx.Err() != nil {
			return TargetPlatform{}, fmt.Errorf("host detection canceled: %w", ctx.Err())
		}
		slog.Debug("kernel architecture unavailable, falling back to GOARCH", "error", err)
		raw = hostArch()
	}

	target.Architecture = NormalizeArchitecture(raw)
	if valid, errs := target.Architecture.IsValid(); !valid {
		return TargetPlatform{}, fmt.Errorf("host detection failed: %w", errs[0])
	}
	return target, nil
}
