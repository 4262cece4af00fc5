// SPDX-License-Identifier: MPL-2.0

// Package platform describes the platform a prebuilt extension binary is
// sought for.
//
// A TargetPlatform combines the operating system and CPU architecture with the
// PHP runtime variant (minor version, thread safety, and the Windows compiler
// toolchain the runtime was built with). Every field is a small validated
// string type; callers validate once at the boundary with IsValid and then
// pass the value around immutably.
package platform
