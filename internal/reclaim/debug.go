// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build !ebr_debug

package reclaim

// debugAssert is a no-op in release builds. Build with the ebr_debug tag to
// turn it into a panic; see debug_assert.go. The engine has no recoverable
// failure modes on the hot path, so these checks never run outside of
// debug builds.
func debugAssert(cond bool, msg string) {}
