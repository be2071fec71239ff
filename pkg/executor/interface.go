package executor

import "context"

// Executor defines the interface for executing external commands
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	// ExecuteStderr runs a command and returns its stderr output even on
	// a non-zero exit. ffmpeg writes analysis data (showinfo, duration)
	// to stderr, and some invocations exit non-zero by design.
	ExecuteStderr(ctx context.Context, name string, args ...string) (string, error)
}
