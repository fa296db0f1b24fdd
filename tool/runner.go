package tool

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Runner runs an external command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, command string) (stdout []byte, err error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, command string) ([]byte, error)

func (f RunnerFunc) Run(ctx context.Context, command string) ([]byte, error) {
	return f(ctx, command)
}

type options struct {
	shell   string
	env     []string
	timeout time.Duration
	limiter *rate.Limiter
}

type Option func(*options)

// WithShell overrides the shell the command line is passed to.
func WithShell(value string) Option {
	return func(o *options) {
		o.shell = value
	}
}

// WithEnv appends variables, in "KEY=value" form, to the subprocess
// environment.
func WithEnv(value ...string) Option {
	return func(o *options) {
		o.env = append(o.env, value...)
	}
}

// WithTimeout bounds each invocation. A hung tool would otherwise hang
// the caller forever.
func WithTimeout(value time.Duration) Option {
	return func(o *options) {
		o.timeout = value
	}
}

// WithRateLimit throttles invocations on our side, so that a burst of
// callers does not fork a burst of subprocesses.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(o *options) {
		o.limiter = rate.NewLimiter(limit, burst)
	}
}

// ShellRunner runs command lines through a shell, capturing standard
// output and standard error separately.
type ShellRunner struct {
	opts options
}

func NewShellRunner(opts ...Option) *ShellRunner {
	r := &ShellRunner{}
	r.opts.shell = "/bin/sh"
	r.opts.timeout = 30 * time.Second
	r.opts.limiter = rate.NewLimiter(rate.Inf, 0)
	for _, o := range opts {
		o(&r.opts)
	}
	return r
}

func (r *ShellRunner) Run(ctx context.Context, command string) ([]byte, error) {
	if err := r.opts.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, r.opts.timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, r.opts.shell, "-c", command)
	cmd.Env = append(os.Environ(), r.opts.env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%.60q: timed out after %v", command, r.opts.timeout)
	}
	if err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			log.WithFields(log.Fields{
				"command": command,
				"stderr":  string(msg),
			}).Error("External tool failed")
			return nil, fmt.Errorf("%.60q: %v: %s", command, err, msg)
		}
		return nil, fmt.Errorf("%.60q: %w", command, err)
	}
	return stdout.Bytes(), nil
}
