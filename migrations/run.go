package migrations

import (
	"context"
	"os"
	"time"

	"github.com/evergreen-ci/docmigrate/db"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/mongodb/grip/recovery"
	"github.com/pkg/errors"
)

// Outcome is the terminal state of a migration run.
type Outcome int

const (
	// Completed means every step of the chain finished.
	Completed Outcome = iota
	// CompletedWithError means the chain finished early because a step
	// failed.
	CompletedWithError
	// TimedOut means the configured timeout elapsed first and the chain was
	// abandoned.
	TimedOut
	// Cancelled means a shutdown signal arrived, or the parent context was
	// cancelled, and the chain was abandoned.
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case CompletedWithError:
		return "completed-with-error"
	case TimedOut:
		return "timed-out"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ExitCode maps the outcome to a process exit status.
func (o Outcome) ExitCode() int {
	switch o {
	case Completed:
		return 0
	case CompletedWithError:
		return 1
	case TimedOut:
		return 2
	case Cancelled:
		return 3
	default:
		return 1
	}
}

// RunOptions configures a single migration run.
type RunOptions struct {
	Chain Chain
	Store db.Store
	// Timeout bounds the run when positive. Zero or negative means no
	// bound.
	Timeout time.Duration
	// Signals delivers operator shutdown requests. A nil channel never
	// fires.
	Signals <-chan os.Signal
}

// Validate checks that the options describe a runnable migration.
func (opts *RunOptions) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(opts.Store == nil, "must specify a store")
	catcher.Wrap(opts.Chain.Validate(), "invalid migration chain")
	return catcher.Resolve()
}

// RunResult describes how a run ended.
type RunResult struct {
	Outcome Outcome
	// Err is the chain's error when Outcome is CompletedWithError.
	Err error
	// Signal is the signal that cancelled the run, if any.
	Signal  os.Signal
	Elapsed time.Duration
}

// Run executes the chain while waiting on the timeout and on shutdown
// signals. Whichever finishes first decides the outcome. When the timeout or
// a signal wins, the chain's context is cancelled and Run returns without
// waiting for it: a record insert already in flight may still land, but no
// new record is started. Exactly one terminal outcome is logged.
func Run(ctx context.Context, opts RunOptions) RunResult {
	start := time.Now()

	if err := opts.Validate(); err != nil {
		res := RunResult{Outcome: CompletedWithError, Err: err, Elapsed: time.Since(start)}
		logOutcome(res, opts)
		return res
	}

	chainCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// buffered so an abandoned chain can always deliver its result and exit
	done := make(chan error, 1)
	go func() {
		var err error
		defer func() {
			if p := recover(); p != nil {
				err = recovery.HandlePanicWithError(p, err, "running migration chain")
			}
			done <- err
		}()
		err = Migrate(chainCtx, opts.Store, opts.Chain)
	}()

	var timeout <-chan time.Time
	if opts.Timeout > 0 {
		timer := time.NewTimer(opts.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	var res RunResult
	select {
	case err := <-done:
		switch {
		case err == nil:
			res.Outcome = Completed
		case ctx.Err() != nil:
			// the chain stopped because the parent context ended
			res.Outcome = Cancelled
			res.Err = errors.WithStack(ctx.Err())
		default:
			res.Outcome = CompletedWithError
			res.Err = err
		}
	case <-timeout:
		res.Outcome = TimedOut
	case sig := <-opts.Signals:
		res.Outcome = Cancelled
		res.Signal = sig
	case <-ctx.Done():
		res.Outcome = Cancelled
		res.Err = errors.WithStack(ctx.Err())
	}
	res.Elapsed = time.Since(start)

	logOutcome(res, opts)
	return res
}

func logOutcome(res RunResult, opts RunOptions) {
	fields := message.Fields{
		"outcome":    res.Outcome.String(),
		"elapsed_ms": res.Elapsed.Milliseconds(),
	}

	switch res.Outcome {
	case Completed:
		fields["message"] = "migration completed - exiting"
		grip.Info(fields)
	case CompletedWithError:
		fields["message"] = "migration completed with error - exiting"
		grip.Error(message.WrapError(res.Err, fields))
	case TimedOut:
		fields["message"] = "migration timed out"
		fields["timeout_secs"] = opts.Timeout.Seconds()
		grip.Error(fields)
	case Cancelled:
		fields["message"] = "migration cancelled, shutting down"
		if res.Signal != nil {
			fields["signal"] = res.Signal.String()
		}
		if res.Err != nil {
			fields["cause"] = res.Err.Error()
		}
		grip.Warning(fields)
	}
}
