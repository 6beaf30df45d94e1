package winutil

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ExecWithContext executes a command with context support, returning stdout, stderr, and error.
func ExecWithContext(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()
	return stdoutBuf.Bytes(), stderrBuf.Bytes(), err
}

// RunCommandWithOutput runs name with args and returns stdout. A failing
// command's stderr is folded into the error.
func RunCommandWithOutput(ctx context.Context, name string, args []string) ([]byte, error) {
	stdout, stderr, err := ExecWithContext(ctx, name, args...)
	if err != nil {
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return stdout, fmt.Errorf("%s failed: %w (stderr: %s)", name, err, msg)
		}
		return stdout, fmt.Errorf("%s failed: %w", name, err)
	}
	return stdout, nil
}
