// Package parse provides parsing, validation, and normalization utilities for sharekeeper CLI.
package parse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValidateAgeKey validates the --encrypt-age flag value.
// Returns whether the value is set and any validation error.
// Set is true only if non-empty and starts with "age1".
func ValidateAgeKey(s string) (set bool, err error) {
	if s == "" {
		return false, nil
	}
	if !strings.HasPrefix(s, "age1") {
		return false, fmt.Errorf("invalid --encrypt-age: must start with age1")
	}
	return true, nil
}

// ValidateModuleTimeout rejects non-positive timeouts.
func ValidateModuleTimeout(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("invalid --module-timeout: must be positive")
	}
	return nil
}

// ParseAddress accepts a decimal or 0x-prefixed hex address.
func ParseAddress(s string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return v, nil
}

// ValidatePointerSize accepts 4 or 8.
func ValidatePointerSize(n int) error {
	if n != 4 && n != 8 {
		return fmt.Errorf("invalid --ptr-size: must be 4 or 8")
	}
	return nil
}
