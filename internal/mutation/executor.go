package mutation

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"
)

// Executor runs test commands against the working tree.
type Executor struct {
	// WorkDir is the directory commands execute in
	WorkDir string
}

// NewExecutor creates an executor rooted at the given directory.
func NewExecutor(workDir string) *Executor {
	return &Executor{WorkDir: workDir}
}

// Run executes a test command under "sh -c" with a hard timeout. A
// failing suite is a normal result, not an error: the error return is
// reserved for spawn failures. On timeout the process is killed and
// the result carries TimedOut with exit code -1.
func (e *Executor) Run(ctx context.Context, testCommand string, timeout time.Duration) (RunResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", testCommand)
	cmd.Dir = e.WorkDir

	start := time.Now()
	output, err := cmd.CombinedOutput()

	result := RunResult{CombinedOutput: string(output)}

	if runCtx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		result.ExitCode = -1
		log.Debug().
			Str("command", testCommand).
			Dur("elapsed", time.Since(start)).
			Msg("test command timed out")
		return result, nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return RunResult{}, fmt.Errorf("failed to spawn test command: %w", err)
	}

	result.ExitCode = 0
	return result, nil
}
