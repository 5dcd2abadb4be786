package batch

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/presspatch/pkg/remote"
)

// 🔧 Options contains the collaborators the coordinator needs.
type Options struct {
	// Dialer opens gateway sessions for sequential runs and is handed
	// to the parallel backend for worker sessions.
	Dialer remote.Dialer
	// Backend is the parallel execution capability. Optional; when nil
	// a goroutine pool over Dialer is used.
	Backend Backend
}

// 🏃 Runner is the execution coordinator: it plans a strategy for a
// batch, executes it, and aggregates the outcomes. A batch moves
// through planning, one of the two run strategies, and reporting,
// exactly once; there is no retry back into planning.
type Runner struct {
	dialer  remote.Dialer
	backend Backend
}

// 🏭 NewRunner creates a coordinator with the given options.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Dialer == nil {
		return nil, errors.New("dialer is required")
	}
	backend := opts.Backend
	if backend == nil {
		backend = &PoolBackend{Dialer: opts.Dialer}
	}
	return &Runner{dialer: opts.Dialer, backend: backend}, nil
}

// RunBatch executes the operations under the given policy and always
// returns a complete report: every operation id maps to exactly one
// outcome, whatever strategy ran and however it failed.
func (r *Runner) RunBatch(ctx context.Context, ops []Operation, policy Policy) *Report {
	policy = policy.Normalized()
	logger := zerolog.Ctx(ctx)
	rep := newReport(ops)

	if policy.GlobalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, policy.GlobalTimeout)
		defer cancel()
	}

	strategy := StrategySequential
	if len(ops) >= policy.ParallelThreshold {
		strategy = r.runParallel(ctx, ops, policy, rep)
	} else {
		logger.Debug().
			Int("operations", len(ops)).
			Int("threshold", policy.ParallelThreshold).
			Msg("batch below parallel threshold, running sequentially")
	}

	if strategy == StrategySequential {
		r.runSequential(ctx, ops, policy, rep)
	}

	return rep.freeze(strategy, missingOutcome(ctx))
}

// runParallel acquires the backend and dispatches the batch. It
// returns the strategy that actually applied: acquisition failure
// before anything is dispatched falls back to a fully sequential run,
// while a hard backend failure mid-run finishes only the unattempted
// remainder sequentially, keeping every already-recorded outcome.
func (r *Runner) runParallel(ctx context.Context, ops []Operation, policy Policy, rep *report) Strategy {
	logger := zerolog.Ctx(ctx)

	workers := policy.WorkerCount
	if workers > len(ops) {
		workers = len(ops)
	}

	handle, err := r.backend.Acquire(ctx, workers)
	if err != nil {
		logger.Warn().Err(err).Msg("parallel backend unavailable, falling back to sequential")
		return StrategySequential
	}
	defer handle.Release()

	assignments := make([]Assignment, len(ops))
	for i, op := range ops {
		assignments[i] = Assignment{Index: i, Op: op}
	}

	if err := handle.Dispatch(ctx, assignments, policy.PerOperationTimeout, record(rep)); err != nil {
		logger.Warn().Err(err).Msg("parallel backend failed mid-run, finishing remainder sequentially")
		r.runSequential(ctx, ops, policy, rep)
	}
	return StrategyParallel
}

// runSequential executes, in input order, every operation that does not
// yet have a recorded outcome. One session serves the whole run; a
// connectivity fault fails the remainder of the batch rather than
// hammering a dead transport item by item.
func (r *Runner) runSequential(ctx context.Context, ops []Operation, policy Policy, rep *report) {
	logger := zerolog.Ctx(ctx)

	session, err := r.dialer.Dial(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("dialing session for sequential run")
		reason := "connectivity: " + err.Error()
		for i := range ops {
			rep.record(i, Outcome{Reason: reason})
		}
		return
	}
	defer session.Close()

	for i, op := range ops {
		if rep.isRecorded(i) {
			continue
		}
		if ctx.Err() != nil {
			rep.record(i, Outcome{Reason: "batch timed out before operation ran", TimedOut: true})
			continue
		}

		out, execErr := executeOne(ctx, session, op, policy.PerOperationTimeout)
		rep.record(i, out)

		if remote.IsConnectivity(execErr) {
			logger.Error().Err(execErr).Str("op", op.ID).Msg("connectivity fault, aborting batch remainder")
			reason := "connectivity: " + execErr.Error()
			for j := i + 1; j < len(ops); j++ {
				rep.record(j, Outcome{Reason: reason})
			}
			return
		}
	}
}

// executeOne runs a single operation with its own timeout and converts
// the result into an outcome. The error is also returned so callers can
// classify connectivity faults.
func executeOne(ctx context.Context, gw remote.Gateway, op Operation, timeout time.Duration) (Outcome, error) {
	opCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		opCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	detail, err := op.Execute(opCtx, gw)
	if err == nil {
		return Outcome{OK: true, Detail: detail}, nil
	}
	timedOut := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	return Outcome{Reason: err.Error(), TimedOut: timedOut}, err
}

// record adapts the report's slot writer to the backend's RecordFunc.
func record(rep *report) RecordFunc {
	return func(index int, out Outcome) {
		rep.record(index, out)
	}
}

// missingOutcome is recorded for any slot still empty when the report
// freezes; with a cancelled context that means the operation was
// abandoned by the global timeout.
func missingOutcome(ctx context.Context) Outcome {
	if ctx.Err() != nil {
		return Outcome{Reason: "batch timed out before operation ran", TimedOut: true}
	}
	return Outcome{Reason: "operation was never executed"}
}
