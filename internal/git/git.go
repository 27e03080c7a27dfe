// Package git shells out to the git binary for repository introspection.
//
// All operations go through the Runner interface so tests can inject a
// fake backend; the default runner invokes git with -C pinned to the
// configured repository path.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes one git subcommand and returns its stdout.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// execRunner shells out to the git binary.
type execRunner struct {
	repoPath string
}

func (r execRunner) Run(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"-C", r.repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &BackendError{
			Op:     args[0],
			Detail: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return stdout.String(), nil
}

// BackendError reports a failed git invocation with the stderr text the
// binary produced, so "not a repository" and "unknown revision" stay
// distinguishable for the caller.
type BackendError struct {
	Op     string
	Detail string
	Err    error
}

func (e *BackendError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("git %s: %s", e.Op, e.Detail)
	}
	return fmt.Sprintf("git %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
