//go:build !windows

package win_fileshares

import "context"

func netShareOutput(context.Context, string) ([]byte, error) {
	return nil, errNoFallback
}
