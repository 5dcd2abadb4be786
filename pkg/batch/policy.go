package batch

import "time"

const (
	defaultParallelThreshold = 10
	defaultWorkerCount       = 5
)

// Policy controls how a batch is executed. The coordinator never
// hardcodes these values; callers derive them from configuration.
type Policy struct {
	// ParallelThreshold is the operation count at or above which the
	// parallel backend is attempted.
	ParallelThreshold int
	// WorkerCount caps concurrent remote sessions.
	WorkerCount int
	// PerOperationTimeout bounds each operation; zero means unbounded.
	PerOperationTimeout time.Duration
	// GlobalTimeout bounds the whole batch; zero means unbounded.
	GlobalTimeout time.Duration
}

// Normalized returns the policy with unset values replaced by the
// defaults the original tool shipped with.
func (p Policy) Normalized() Policy {
	if p.ParallelThreshold <= 0 {
		p.ParallelThreshold = defaultParallelThreshold
	}
	if p.WorkerCount <= 0 {
		p.WorkerCount = defaultWorkerCount
	}
	return p
}
