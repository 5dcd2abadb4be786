package batch

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/presspatch/pkg/remote"
)

// ErrBackendUnavailable is returned by Acquire when no parallel backend
// can be initialized. The coordinator reacts by running the entire
// batch sequentially; acquisition always happens before any operation
// is dispatched, so fallback can never duplicate work.
var ErrBackendUnavailable = errors.New("parallel backend unavailable")

// Assignment pairs an operation with its report slot index.
type Assignment struct {
	Index int
	Op    Operation
}

// RecordFunc writes one outcome into the report. Distinct indices may
// be written concurrently; the same index is never written twice.
type RecordFunc func(index int, out Outcome)

// Backend is the polymorphic parallel-execution capability. "Parallel"
// may be goroutines, threads, or an external process pool; the
// coordinator only sees acquire and dispatch.
type Backend interface {
	// Acquire reserves a backend handle for up to workers concurrent
	// sessions, or fails with ErrBackendUnavailable.
	Acquire(ctx context.Context, workers int) (Handle, error)
}

// Handle is an acquired backend. Dispatch returns an error only on a
// hard backend failure; per-operation failures are recorded, not
// returned. Operations left unrecorded after a failed Dispatch have
// not been attempted and are safe to rerun.
type Handle interface {
	Dispatch(ctx context.Context, assignments []Assignment, perOpTimeout time.Duration, record RecordFunc) error
	Release()
}

// 🏊 PoolBackend runs operations on a bounded pool of goroutines, one
// exclusively-owned gateway session per worker.
type PoolBackend struct {
	Dialer remote.Dialer
}

// Acquire implements Backend. The goroutine pool has no external
// resource to reserve, so acquisition only validates the dialer.
func (b *PoolBackend) Acquire(ctx context.Context, workers int) (Handle, error) {
	if b.Dialer == nil {
		return nil, errors.Errorf("%w: no dialer configured", ErrBackendUnavailable)
	}
	if workers < 1 {
		return nil, errors.Errorf("%w: worker count %d", ErrBackendUnavailable, workers)
	}
	return &poolHandle{dialer: b.Dialer, workers: workers}, nil
}

type poolHandle struct {
	dialer  remote.Dialer
	workers int
}

// Dispatch partitions the assignments into one contiguous chunk per
// worker. Each worker dials its own session, processes its chunk to
// completion, and records only into its own slots. Cancellation is
// checked between operations, never mid-call.
func (h *poolHandle) Dispatch(ctx context.Context, assignments []Assignment, perOpTimeout time.Duration, record RecordFunc) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().
		Int("operations", len(assignments)).
		Int("workers", h.workers).
		Msg("dispatching to worker pool")

	group, gctx := errgroup.WithContext(ctx)
	for _, chunk := range partition(assignments, h.workers) {
		chunk := chunk
		group.Go(func() error {
			return h.runWorker(ctx, gctx, chunk, perOpTimeout, record)
		})
	}
	if err := group.Wait(); err != nil {
		return errors.Errorf("worker pool failed: %w", err)
	}
	return nil
}

// runWorker processes one chunk. ctx is the batch context (its
// cancellation means global timeout: remaining operations get a timeout
// outcome); gctx is the group context (its cancellation means a sibling
// worker failed hard: remaining operations stay unrecorded so the
// coordinator can rerun them sequentially).
func (h *poolHandle) runWorker(ctx context.Context, gctx context.Context, chunk []Assignment, perOpTimeout time.Duration, record RecordFunc) error {
	session, err := h.dialer.Dial(gctx)
	if err != nil {
		return errors.Errorf("dialing worker session: %w", err)
	}
	defer session.Close()

	for _, a := range chunk {
		if ctx.Err() != nil {
			record(a.Index, Outcome{Reason: "batch timed out before operation ran", TimedOut: true})
			continue
		}
		if gctx.Err() != nil {
			// Backend is going down. Leave the rest unrecorded.
			return nil
		}
		out, execErr := executeOne(gctx, session, a.Op, perOpTimeout)
		record(a.Index, out)
		if remote.IsConnectivity(execErr) {
			return errors.Errorf("worker lost connectivity: %w", execErr)
		}
	}
	return nil
}

func (h *poolHandle) Release() {}

// UnavailableBackend is the absent variant of the capability: every
// acquisition fails, forcing sequential execution.
type UnavailableBackend struct{}

func (UnavailableBackend) Acquire(ctx context.Context, workers int) (Handle, error) {
	return nil, ErrBackendUnavailable
}

// partition splits assignments into at most n contiguous chunks of
// near-equal size.
func partition(assignments []Assignment, n int) [][]Assignment {
	if len(assignments) == 0 {
		return nil
	}
	if n > len(assignments) {
		n = len(assignments)
	}
	chunks := make([][]Assignment, 0, n)
	size := (len(assignments) + n - 1) / n
	for start := 0; start < len(assignments); start += size {
		end := start + size
		if end > len(assignments) {
			end = len(assignments)
		}
		chunks = append(chunks, assignments[start:end])
	}
	return chunks
}
