package audiocore

import (
	"sync"
	"sync/atomic"

	"github.com/fenwick-audio/adrian/internal/observability/metrics"
)

// metricsHandle wraps *metrics.AudioCoreMetrics so every call site in this
// package can unconditionally call through it; when metrics are disabled
// (config.CoreConfig.MetricsEnabled == false) the handle holds nil and
// every method becomes a no-op, rather than forcing every caller to nil-
// check a *metrics.AudioCoreMetrics directly.
type metricsHandle struct {
	m *metrics.AudioCoreMetrics
}

var (
	globalMetrics     atomic.Pointer[metricsHandle]
	globalMetricsOnce sync.Once
)

// InitMetrics installs the process-wide metrics handle. Passing nil
// disables instrumentation entirely. Safe to call at most meaningfully
// once; later calls are ignored, matching the teacher's sync.Once-guarded
// global metrics init pattern.
func InitMetrics(m *metrics.AudioCoreMetrics) {
	globalMetricsOnce.Do(func() {
		globalMetrics.Store(&metricsHandle{m: m})
	})
}

func currentMetrics() *metricsHandle {
	h := globalMetrics.Load()
	if h == nil {
		return &metricsHandle{}
	}
	return h
}

func (h *metricsHandle) SetBuffersInUse(channels, count int) {
	if h.m == nil {
		return
	}
	h.m.SetBuffersInUse(channels, count)
}

func (h *metricsHandle) RecordBufferReused(channels int) {
	if h.m == nil {
		return
	}
	h.m.RecordBufferReused(channels)
}

func (h *metricsHandle) RecordBufferCreated(channels int) {
	if h.m == nil {
		return
	}
	h.m.RecordBufferCreated(channels)
}

func (h *metricsHandle) SetChainsActive(n int) {
	if h.m == nil {
		return
	}
	h.m.SetChainsActive(n)
}

func (h *metricsHandle) SetChainsLoading(n int) {
	if h.m == nil {
		return
	}
	h.m.SetChainsLoading(n)
}

func (h *metricsHandle) RecordAllocationStep() {
	if h.m == nil {
		return
	}
	h.m.RecordAllocationStep()
}

func (h *metricsHandle) RecordAllocationCancel() {
	if h.m == nil {
		return
	}
	h.m.RecordAllocationCancel()
}

func (h *metricsHandle) RecordRecordingStarted() {
	if h.m == nil {
		return
	}
	h.m.RecordRecordingStarted()
}

func (h *metricsHandle) RecordRecordingFinished() {
	if h.m == nil {
		return
	}
	h.m.RecordRecordingFinished()
}

func (h *metricsHandle) RecordPlaybackStarted() {
	if h.m == nil {
		return
	}
	h.m.RecordPlaybackStarted()
}

func (h *metricsHandle) RecordPlaybackFinished() {
	if h.m == nil {
		return
	}
	h.m.RecordPlaybackFinished()
}

func (h *metricsHandle) RecordQuantumProcessed(seconds float64) {
	if h.m == nil {
		return
	}
	h.m.RecordQuantumProcessed(seconds)
}

func (h *metricsHandle) SetQueueDepth(direction string, depth int) {
	if h.m == nil {
		return
	}
	h.m.SetQueueDepth(direction, depth)
}

func (h *metricsHandle) RecordQueueOverflow(direction string) {
	if h.m == nil {
		return
	}
	h.m.RecordQueueOverflow(direction)
}

func (h *metricsHandle) RecordMipmapUIUpdate() {
	if h.m == nil {
		return
	}
	h.m.RecordMipmapUIUpdate()
}
