// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// ArchX8664 is 64-bit x86 (amd64).
	ArchX8664 Architecture = "x86_64"
	// ArchX86 is 32-bit x86.
	ArchX86 Architecture = "x86"
	// ArchARM64 is 64-bit ARM.
	ArchARM64 Architecture = "arm64"

	// ThreadSafe is a ZTS (thread-safe) PHP build.
	ThreadSafe ThreadSafety = "ts"
	// NonThreadSafe is an NTS PHP build.
	NonThreadSafe ThreadSafety = "nts"

	// CompilerVC14 is Visual C++ 2015 (PHP 7.0 - 7.1).
	CompilerVC14 WindowsCompiler = "vc14"
	// CompilerVC15 is Visual C++ 2017 (PHP 7.2 - 7.4).
	CompilerVC15 WindowsCompiler = "vc15"
	// CompilerVS16 is Visual Studio 2019 (PHP 8.0 - 8.3).
	CompilerVS16 WindowsCompiler = "vs16"
	// CompilerVS17 is Visual Studio 2022 (PHP 8.4+).
	CompilerVS17 WindowsCompiler = "vs17"
)

var (
	// ErrInvalidArchitecture is the sentinel error wrapped by InvalidArchitectureError.
	ErrInvalidArchitecture = errors.New("invalid architecture")
	// ErrInvalidThreadSafety is the sentinel error wrapped by InvalidThreadSafetyError.
	ErrInvalidThreadSafety = errors.New("invalid thread safety")
	// ErrInvalidWindowsCompiler is the sentinel error wrapped by InvalidWindowsCompilerError.
	ErrInvalidWindowsCompiler = errors.New("invalid windows compiler")
	// ErrInvalidPHPVersion is the sentinel error wrapped by InvalidPHPVersionError.
	ErrInvalidPHPVersion = errors.New("invalid PHP version")
	// ErrInvalidTargetPlatform is the sentinel error wrapped by InvalidTargetPlatformError.
	ErrInvalidTargetPlatform = errors.New("invalid target platform")
)

type (
	// Architecture is a CPU architecture name as it appears in release asset names.
	Architecture string

	// InvalidArchitectureError is returned when an Architecture value is not recognized.
	InvalidArchitectureError struct {
		Value Architecture
	}

	// ThreadSafety is the thread-safety mode of a PHP build ("ts" or "nts").
	ThreadSafety string

	// InvalidThreadSafetyError is returned when a ThreadSafety value is not recognized.
	InvalidThreadSafetyError struct {
		Value ThreadSafety
	}

	// WindowsCompiler is the MSVC toolchain a Windows PHP build was compiled with.
	WindowsCompiler string

	// InvalidWindowsCompilerError is returned when a WindowsCompiler value is not recognized.
	InvalidWindowsCompilerError struct {
		Value WindowsCompiler
	}

	// PHPVersion is a "major.minor" PHP version, e.g. "8.3".
	PHPVersion string

	// InvalidPHPVersionError is returned when a PHPVersion is not "major.minor".
	InvalidPHPVersionError struct {
		Value PHPVersion
	}

	// InvalidTargetPlatformError collects the field errors of a TargetPlatform.
	// It wraps ErrInvalidTargetPlatform for errors.Is() compatibility.
	InvalidTargetPlatformError struct {
		FieldErrors []error
	}

	// TargetPlatform describes the OS, architecture and PHP runtime variant a
	// binary is sought for. It is supplied by the caller and never mutated.
	TargetPlatform struct {
		// OS is a GOOS-style operating system name (see Windows, Darwin, Linux).
		OS string `json:"os" toml:"os" mapstructure:"os"`
		// Architecture is the CPU architecture of the PHP runtime.
		Architecture Architecture `json:"arch" toml:"arch" mapstructure:"arch"`
		// PHPVersion is the "major.minor" version of the PHP runtime.
		PHPVersion PHPVersion `json:"php_version" toml:"php_version" mapstructure:"php_version"`
		// ThreadSafety is the ZTS mode of the PHP runtime.
		ThreadSafety ThreadSafety `json:"thread_safety" toml:"thread_safety" mapstructure:"thread_safety"`
		// Compiler is the MSVC toolchain of the PHP runtime (Windows only).
		Compiler WindowsCompiler `json:"compiler,omitempty" toml:"compiler,omitempty" mapstructure:"compiler"`
	}
)

// String returns the string representation of the Architecture.
func (a Architecture) String() string { return string(a) }

// IsValid returns whether the Architecture is one of the supported values.
func (a Architecture) IsValid() (bool, []error) {
	switch a {
	case ArchX8664, ArchX86, ArchARM64:
		return true, nil
	default:
		return false, []error{&InvalidArchitectureError{Value: a}}
	}
}

// Error implements the error interface for InvalidArchitectureError.
func (e *InvalidArchitectureError) Error() string {
	return fmt.Sprintf("invalid architecture %q (valid: x86_64, x86, arm64)", e.Value)
}

// Unwrap returns ErrInvalidArchitecture for errors.Is() compatibility.
func (e *InvalidArchitectureError) Unwrap() error { return ErrInvalidArchitecture }

// NormalizeArchitecture maps GOARCH and kernel architecture spellings onto
// the names used in release assets. Unknown values are returned lowercased
// so that IsValid can report them.
func NormalizeArchitecture(raw string) Architecture {
	switch v := strings.ToLower(strings.TrimSpace(raw)); v {
	case "amd64", "x86_64", "x64":
		return ArchX8664
	case "386", "i386", "i686", "x86":
		return ArchX86
	case "arm64", "aarch64":
		return ArchARM64
	default:
		return Architecture(v)
	}
}

// String returns the string representation of the ThreadSafety.
func (ts ThreadSafety) String() string { return string(ts) }

// IsValid returns whether the ThreadSafety is "ts" or "nts".
func (ts ThreadSafety) IsValid() (bool, []error) {
	switch ts {
	case ThreadSafe, NonThreadSafe:
		return true, nil
	default:
		return false, []error{&InvalidThreadSafetyError{Value: ts}}
	}
}

// Error implements the error interface for InvalidThreadSafetyError.
func (e *InvalidThreadSafetyError) Error() string {
	return fmt.Sprintf("invalid thread safety %q (valid: ts, nts)", e.Value)
}

// Unwrap returns ErrInvalidThreadSafety for errors.Is() compatibility.
func (e *InvalidThreadSafetyError) Unwrap() error { return ErrInvalidThreadSafety }

// String returns the string representation of the WindowsCompiler.
func (c WindowsCompiler) String() string { return string(c) }

// IsValid returns whether the WindowsCompiler is a known MSVC toolchain.
func (c WindowsCompiler) IsValid() (bool, []error) {
	switch c {
	case CompilerVC14, CompilerVC15, CompilerVS16, CompilerVS17:
		return true, nil
	default:
		return false, []error{&InvalidWindowsCompilerError{Value: c}}
	}
}

// Error implements the error interface for InvalidWindowsCompilerError.
func (e *InvalidWindowsCompilerError) Error() string {
	return fmt.Sprintf("invalid windows compiler %q (valid: vc14, vc15, vs16, vs17)", e.Value)
}

// Unwrap returns ErrInvalidWindowsCompiler for errors.Is() compatibility.
func (e *InvalidWindowsCompilerError) Unwrap() error { return ErrInvalidWindowsCompiler }

// ParsePHPVersion reduces a full PHP version ("8.3.12", "8.3.0RC1") to its
// "major.minor" form.
func ParsePHPVersion(raw string) (PHPVersion, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ".", 3)
	if len(parts) < 2 {
		return "", &InvalidPHPVersionError{Value: PHPVersion(raw)}
	}
	minor := parts[1]
	if i := strings.IndexFunc(minor, func(r rune) bool { return r < '0' || r > '9' }); i >= 0 {
		minor = minor[:i]
	}
	v := PHPVersion(parts[0] + "." + minor)
	if valid, _ := v.IsValid(); !valid {
		return "", &InvalidPHPVersionError{Value: PHPVersion(raw)}
	}
	return v, nil
}

// String returns the string representation of the PHPVersion.
func (v PHPVersion) String() string { return string(v) }

// IsValid returns whether the PHPVersion is of the form "major.minor".
func (v PHPVersion) IsValid() (bool, []error) {
	major, minor, ok := strings.Cut(string(v), ".")
	if !ok {
		return false, []error{&InvalidPHPVersionError{Value: v}}
	}
	if _, err := strconv.ParseUint(major, 10, 8); err != nil {
		return false, []error{&InvalidPHPVersionError{Value: v}}
	}
	if _, err := strconv.ParseUint(minor, 10, 8); err != nil {
		return false, []error{&InvalidPHPVersionError{Value: v}}
	}
	return true, nil
}

// Error implements the error interface for InvalidPHPVersionError.
func (e *InvalidPHPVersionError) Error() string {
	return fmt.Sprintf("invalid PHP version %q (expected major.minor, e.g. 8.3)", e.Value)
}

// Unwrap returns ErrInvalidPHPVersion for errors.Is() compatibility.
func (e *InvalidPHPVersionError) Unwrap() error { return ErrInvalidPHPVersion }

// IsWindows reports whether the target operating system is Windows.
func (p TargetPlatform) IsWindows() bool { return IsWindows(p.OS) }

// IsValid returns whether every field of the TargetPlatform is valid.
// The compiler is only checked for Windows targets; it is meaningless elsewhere.
func (p TargetPlatform) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(p.OS) == "" {
		errs = append(errs, fmt.Errorf("operating system must not be empty"))
	}
	if valid, fieldErrs := p.Architecture.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := p.PHPVersion.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := p.ThreadSafety.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if p.IsWindows() {
		if valid, fieldErrs := p.Compiler.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidTargetPlatformError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidTargetPlatformError.
func (e *InvalidTargetPlatformError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid target platform: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidTargetPlatform for errors.Is() compatibility.
func (e *InvalidTargetPlatformError) Unwrap() error { return ErrInvalidTargetPlatform }

// String renders the platform the way it is shown to users,
// e.g. "windows/x86_64 php-8.3 nts vs16".
func (p TargetPlatform) String() string {
	s := fmt.Sprintf("%s/%s php-%s %s", p.OS, p.Architecture, p.PHPVersion, p.ThreadSafety)
	if p.IsWindows() && p.Compiler != "" {
		s += " " + string(p.Compiler)
	}
	return s
}

// DefaultCompilerFor returns the MSVC toolchain official Windows builds of the
// given PHP version are compiled with.
func DefaultCompilerFor(v PHPVersion) (WindowsCompiler, error) {
	if valid, errs := v.IsValid(); !valid {
		return "", errs[0]
	}
	major, minor, _ := strings.Cut(string(v), ".")
	ma, _ := strconv.Atoi(major)
	mi, _ := strconv.Atoi(minor)

	switch {
	case ma > 8 || (ma == 8 && mi >= 4):
		return CompilerVS17, nil
	case ma == 8:
		return CompilerVS16, nil
	case ma == 7 && mi >= 2:
		return CompilerVC15, nil
	case ma == 7:
		return CompilerVC14, nil
	default:
		return "", fmt.Errorf("no known Windows compiler for PHP %s", v)
	}
}
