//go:build unix

// Package osutils holds small OS policy checks.
package osutils

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// IsRoot checks if the current process runs with an effective UID of 0
func IsRoot() bool {
	return unix.Geteuid() == 0
}

// RequireRoot returns an error naming what root is needed for
func RequireRoot(reason string) error {
	if IsRoot() {
		return nil
	}
	return fmt.Errorf("this program needs to be run as root to %s", reason)
}
