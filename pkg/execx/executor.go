package execx

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Result holds the captured output of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Runner executes external tools with a hard timeout. A zero timeout
// means the command runs until the context is done.
type Runner struct {
	Timeout time.Duration
}

func NewRunner(timeout time.Duration) *Runner {
	return &Runner{Timeout: timeout}
}

func (r *Runner) Run(ctx context.Context, bin string, args ...string) (*Result, error) {
	return r.run(ctx, "", bin, args...)
}

// RunInput is Run with the given string piped to the command's stdin.
func (r *Runner) RunInput(ctx context.Context, stdin, bin string, args ...string) (*Result, error) {
	return r.run(ctx, stdin, bin, args...)
}

func (r *Runner) run(ctx context.Context, stdin, bin string, args ...string) (*Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	start := time.Now()
	err := cmd.Run()
	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return res, fmt.Errorf("%s timed out after %s", bin, r.Timeout)
		}
		return res, fmt.Errorf("%s failed: %v, stderr: %s", bin, err, tail(res.Stderr, 2000))
	}
	return res, nil
}

// tail keeps the last n bytes of s, which is where ffmpeg and friends
// put the useful part of their error output.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
