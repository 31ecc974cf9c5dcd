package engine

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
)

// runCommands executes the expanded shell commands sequentially in
// runDir. Execution stops at the first command that fails; the returned
// messages hold its stderr output (and the spawn error when the shell
// could not be started). A nil return means every command succeeded.
func runCommands(ctx context.Context, runDir string, commands []string, logger *slog.Logger) []string {
	for _, command := range commands {
		logger.Debug("exec", "cmd", command)

		cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
		cmd.Dir = runDir

		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		err := cmd.Run()
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			// Cancellation is reported through the context, not as an
			// error message.
			return nil
		}

		messages := splitLines(stderr.String())
		if _, ok := err.(*exec.ExitError); !ok {
			messages = append(messages, err.Error())
		}
		if len(messages) == 0 {
			messages = []string{err.Error()}
		}
		logger.Debug("command failed", "cmd", command, "messages", len(messages))
		return messages
	}
	return nil
}

// splitLines splits command output into trimmed, non-empty lines.
func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimRight(line, "\r"); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
