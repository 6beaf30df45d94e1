//go:build windows

package win_fileshares

import (
	"context"
	"strings"

	"sharekeeper/internal/winutil"
)

// netShareOutput captures "net share" for the local host, or
// "net view \\server /all" for a remote one.
func netShareOutput(ctx context.Context, server string) ([]byte, error) {
	if server == "" {
		return winutil.RunCommandWithOutput(ctx, "cmd", []string{"/C", "net share"})
	}
	target := `\\` + strings.TrimLeft(server, `\`)
	return winutil.RunCommandWithOutput(ctx, "cmd", []string{"/C", "net view " + target + " /all"})
}
