package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/presspatch/pkg/remote"
)

func TestReport_WriteOncePerSlot(t *testing.T) {
	rep := newReport(createOps(3))

	rep.record(1, Outcome{OK: true, Detail: "first write"})
	rep.record(1, Outcome{OK: false, Reason: "second write must lose"})

	assert.True(t, rep.isRecorded(1))
	assert.False(t, rep.isRecorded(0))

	out := rep.freeze(StrategySequential, Outcome{Reason: "never ran"})
	assert.Equal(t, "first write", out.Results["op-02"].Detail)
	assert.True(t, out.Results["op-02"].OK)
}

func TestReport_FreezeFillsMissingSlots(t *testing.T) {
	rep := newReport(createOps(3))
	rep.record(0, Outcome{OK: true})

	out := rep.freeze(StrategyParallel, Outcome{Reason: "abandoned", TimedOut: true})

	require.Len(t, out.Results, 3)
	assert.Equal(t, StrategyParallel, out.Strategy)
	assert.Equal(t, 1, out.Succeeded)
	assert.Equal(t, 2, out.Failed)
	assert.True(t, out.Results["op-02"].TimedOut)
	assert.True(t, out.Results["op-03"].TimedOut)
}

func TestOperation_KindString(t *testing.T) {
	assert.Equal(t, "create", KindCreate.String())
	assert.Equal(t, "edit", KindEdit.String())
	assert.Equal(t, "create", NewCreate("a", remote.Fields{}).Kind.String())
}

func TestPolicy_Normalized(t *testing.T) {
	p := Policy{}.Normalized()
	assert.Equal(t, defaultParallelThreshold, p.ParallelThreshold)
	assert.Equal(t, defaultWorkerCount, p.WorkerCount)

	p = Policy{ParallelThreshold: 3, WorkerCount: 2}.Normalized()
	assert.Equal(t, 3, p.ParallelThreshold)
	assert.Equal(t, 2, p.WorkerCount)
}
