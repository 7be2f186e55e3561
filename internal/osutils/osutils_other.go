//go:build !unix

// Package osutils holds small OS policy checks.
package osutils

import "fmt"

// IsRoot is a stub for platforms without UIDs
func IsRoot() bool {
	return false
}

// RequireRoot always fails; input devices need a Unix kernel
func RequireRoot(reason string) error {
	return fmt.Errorf("cannot %s on this platform", reason)
}
