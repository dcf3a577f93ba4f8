package executor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/keyrun-app/keyrun/internal/types"
)

// Handle describes a started process. Done receives the child's Wait result
// exactly once; the reaper goroutine behind it is what keeps fire-and-forget
// launches from leaving zombies.
type Handle struct {
	PID  int
	Done <-chan error
}

// ProcessLauncher starts the OS process for a resolved launch spec. The
// exec-backed implementation below does the real spawning; tests substitute
// a fake so resolution and classification are checked without side effects.
type ProcessLauncher interface {
	Start(ctx context.Context, spec types.LaunchSpec) (*Handle, error)
}

// ExecLauncher launches real processes. URLs and paths are handed to the
// platform's shell-open handler; bare executables run directly with PATH
// resolution.
type ExecLauncher struct{}

// NewExecLauncher returns the real process launcher.
func NewExecLauncher() *ExecLauncher {
	return &ExecLauncher{}
}

// Start spawns the process for spec and returns once it is running. The
// returned Handle carries the PID and a channel yielding the eventual Wait
// result.
func (l *ExecLauncher) Start(ctx context.Context, spec types.LaunchSpec) (*Handle, error) {
	name, args, err := commandLine(spec)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	return &Handle{PID: cmd.Process.Pid, Done: done}, nil
}

// commandLine maps a launch spec onto an executable invocation. Shell-style
// opens route through the platform handler; extra arguments ride along for
// handlers that accept them.
func commandLine(spec types.LaunchSpec) (string, []string, error) {
	switch spec.Kind {
	case types.TargetURL:
		return openerFor(runtime.GOOS, spec.Target, spec.Args)
	case types.TargetPath:
		return openerFor(runtime.GOOS, expandHome(spec.Target), spec.Args)
	default:
		return spec.Target, spec.Args, nil
	}
}

// expandHome resolves a leading ~ against the user's home directory. Targets
// read from a commands document never pass through a shell, so the expansion
// happens at launch time.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func openerFor(goos, target string, args []string) (string, []string, error) {
	switch goos {
	case "linux":
		return "xdg-open", append([]string{target}, args...), nil
	case "windows":
		return "rundll32", append([]string{"url.dll,FileProtocolHandler", target}, args...), nil
	case "darwin":
		return "open", append([]string{target}, args...), nil
	default:
		return "", nil, fmt.Errorf("no shell-open handler for platform %s", goos)
	}
}
