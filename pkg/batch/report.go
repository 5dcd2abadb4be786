package batch

import "time"

// Strategy names the execution path a batch took.
type Strategy string

const (
	StrategySequential Strategy = "sequential"
	StrategyParallel   Strategy = "parallel"
)

// Outcome is the recorded result of one operation.
type Outcome struct {
	// OK is true when the operation fully applied.
	OK bool
	// Detail carries the success detail (created id, replacement count).
	Detail string
	// Reason carries the failure reason when OK is false.
	Reason string
	// TimedOut is set when the operation was abandoned by a timeout or
	// cancellation rather than rejected.
	TimedOut bool
}

// Report is the aggregated, immutable result of one batch run. Every
// operation id in the batch has exactly one entry in Results.
type Report struct {
	Strategy  Strategy
	Results   map[string]Outcome
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

// report accumulates outcomes while a batch runs. Slots are partitioned
// by operation index: each worker writes only the indices assigned to
// it, exactly once, so no lock is needed beyond that discipline.
type report struct {
	ids      []string
	slots    []Outcome
	recorded []bool
	started  time.Time
}

func newReport(ops []Operation) *report {
	ids := make([]string, len(ops))
	for i, op := range ops {
		ids[i] = op.ID
	}
	return &report{
		ids:      ids,
		slots:    make([]Outcome, len(ops)),
		recorded: make([]bool, len(ops)),
		started:  time.Now(),
	}
}

// record writes slot i. The first write wins; a second write to the
// same slot is ignored, preserving the write-once-per-id guarantee
// across fallback paths.
func (r *report) record(i int, out Outcome) {
	if r.recorded[i] {
		return
	}
	r.slots[i] = out
	r.recorded[i] = true
}

func (r *report) isRecorded(i int) bool {
	return r.recorded[i]
}

// freeze fills any still-empty slots with the given outcome and builds
// the immutable Report.
func (r *report) freeze(strategy Strategy, missing Outcome) *Report {
	out := &Report{
		Strategy: strategy,
		Results:  make(map[string]Outcome, len(r.ids)),
		Elapsed:  time.Since(r.started),
	}
	for i, id := range r.ids {
		if !r.recorded[i] {
			r.record(i, missing)
		}
		out.Results[id] = r.slots[i]
		if r.slots[i].OK {
			out.Succeeded++
		} else {
			out.Failed++
		}
	}
	return out
}
