package capture

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// CommandRestart returns a restart hook that runs command through sh -c.
// An empty command returns nil, so no hook is installed.
func CommandRestart(command string) RestartFunc {
	if strings.TrimSpace(command) == "" {
		return nil
	}
	return func(ctx context.Context) error {
		out, err := exec.CommandContext(ctx, "sh", "-c", command).CombinedOutput()
		slog.Debug("restart command finished",
			slog.String("command", command),
			slog.String("output", strings.TrimSpace(string(out))),
		)
		if err != nil {
			return fmt.Errorf("running %q: %w", command, err)
		}
		return nil
	}
}
