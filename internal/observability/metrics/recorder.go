// Package metrics provides the Prometheus instrumentation for the audio
// core: sub-buffer pool occupancy, chain lifecycle, catch buffer record/
// playback activity, allocator throughput and message queue health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AudioCoreMetrics is the Prometheus-backed instrumentation surface consumed
// by internal/audiocore. All metrics are registered against the supplied
// registry so multiple instances never collide on re-registration in tests.
type AudioCoreMetrics struct {
	buffersInUse      *prometheus.GaugeVec
	bufferAllocations *prometheus.CounterVec
	poolSlotsTotal    *prometheus.GaugeVec

	chainsActive     prometheus.Gauge
	chainsLoading    prometheus.Gauge
	chainLoadSteps   prometheus.Counter
	chainLoadCancels prometheus.Counter

	catchBuffersActive  prometheus.Gauge
	recordingsStarted   prometheus.Counter
	recordingsFinished  prometheus.Counter
	playbacksStarted    prometheus.Counter
	playbacksFinished   prometheus.Counter
	quantumProcessed    prometheus.Counter
	quantumDuration     prometheus.Histogram

	queueDepth    *prometheus.GaugeVec
	queueOverflow *prometheus.CounterVec

	mipmapUpdates prometheus.Counter
}

// NewAudioCoreMetrics creates and registers the audio core metric family
// against reg. Passing a fresh prometheus.NewRegistry() per test avoids the
// "duplicate metrics collector registration" panic against the default
// global registry.
func NewAudioCoreMetrics(reg prometheus.Registerer) *AudioCoreMetrics {
	m := &AudioCoreMetrics{
		buffersInUse: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "adrian",
			Subsystem: "pool",
			Name:      "buffers_in_use",
			Help:      "Sub-buffer slots currently marked in_use, by channel count.",
		}, []string{"channels"}),
		bufferAllocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adrian",
			Subsystem: "pool",
			Name:      "buffer_allocations_total",
			Help:      "Sub-buffer allocations, split by reused vs newly created.",
		}, []string{"channels", "source"}),
		poolSlotsTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "adrian",
			Subsystem: "pool",
			Name:      "slots_total",
			Help:      "Total sub-buffer slots ever created, by channel count.",
		}, []string{"channels"}),

		chainsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "adrian",
			Subsystem: "chain",
			Name:      "active",
			Help:      "Chains currently present in the model.",
		}),
		chainsLoading: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "adrian",
			Subsystem: "chain",
			Name:      "loading",
			Help:      "Chains currently in the loading state.",
		}),
		chainLoadSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "adrian",
			Subsystem: "allocator",
			Name:      "steps_total",
			Help:      "Single sub-buffer allocation steps performed by the allocator thread.",
		}),
		chainLoadCancels: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "adrian",
			Subsystem: "allocator",
			Name:      "cancels_total",
			Help:      "Loading-chain cancellations reconciled because the owning chain was erased.",
		}),

		catchBuffersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "adrian",
			Subsystem: "catchbuffer",
			Name:      "active",
			Help:      "Catch buffers currently present in the model.",
		}),
		recordingsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "adrian",
			Subsystem: "catchbuffer",
			Name:      "recordings_started_total",
			Help:      "recording_started events emitted.",
		}),
		recordingsFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "adrian",
			Subsystem: "catchbuffer",
			Name:      "recordings_finished_total",
			Help:      "recording_finished events emitted.",
		}),
		playbacksStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "adrian",
			Subsystem: "catchbuffer",
			Name:      "playbacks_started_total",
			Help:      "playback_start commands dispatched to the audio thread.",
		}),
		playbacksFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "adrian",
			Subsystem: "catchbuffer",
			Name:      "playbacks_finished_total",
			Help:      "playback_finished events emitted.",
		}),
		quantumProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "adrian",
			Subsystem: "catchbuffer",
			Name:      "quanta_processed_total",
			Help:      "DSP quanta processed across all catch buffers.",
		}),
		quantumDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "adrian",
			Subsystem: "catchbuffer",
			Name:      "quantum_duration_seconds",
			Help:      "Wall time spent in a single catch buffer Process call.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 10),
		}),

		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "adrian",
			Subsystem: "messages",
			Name:      "queue_depth",
			Help:      "Approximate depth of a message queue.",
		}, []string{"direction"}),
		queueOverflow: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adrian",
			Subsystem: "messages",
			Name:      "queue_overflow_total",
			Help:      "warn_queue_full events raised, by direction.",
		}, []string{"direction"}),

		mipmapUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "adrian",
			Subsystem: "mipmap",
			Name:      "ui_updates_total",
			Help:      "UI-side mipmap consumptions that observed a non-empty dirty region.",
		}),
	}

	reg.MustRegister(
		m.buffersInUse, m.bufferAllocations, m.poolSlotsTotal,
		m.chainsActive, m.chainsLoading, m.chainLoadSteps, m.chainLoadCancels,
		m.catchBuffersActive, m.recordingsStarted, m.recordingsFinished,
		m.playbacksStarted, m.playbacksFinished, m.quantumProcessed, m.quantumDuration,
		m.queueDepth, m.queueOverflow, m.mipmapUpdates,
	)
	return m
}

func channelsLabel(channels int) string {
	switch channels {
	case 1:
		return "1"
	case 2:
		return "2"
	default:
		return "other"
	}
}

// --- Pool (C1) ---

func (m *AudioCoreMetrics) SetBuffersInUse(channels, count int) {
	m.buffersInUse.WithLabelValues(channelsLabel(channels)).Set(float64(count))
}

func (m *AudioCoreMetrics) RecordBufferReused(channels int) {
	m.bufferAllocations.WithLabelValues(channelsLabel(channels), "reused").Inc()
}

func (m *AudioCoreMetrics) RecordBufferCreated(channels int) {
	m.bufferAllocations.WithLabelValues(channelsLabel(channels), "created").Inc()
	m.poolSlotsTotal.WithLabelValues(channelsLabel(channels)).Inc()
}

// --- Chain / allocator (C3, C4, C8) ---

func (m *AudioCoreMetrics) SetChainsActive(n int)  { m.chainsActive.Set(float64(n)) }
func (m *AudioCoreMetrics) SetChainsLoading(n int) { m.chainsLoading.Set(float64(n)) }
func (m *AudioCoreMetrics) RecordAllocationStep()  { m.chainLoadSteps.Inc() }
func (m *AudioCoreMetrics) RecordAllocationCancel() {
	m.chainLoadCancels.Inc()
}

// --- Catch buffer (C5) ---

func (m *AudioCoreMetrics) SetCatchBuffersActive(n int) { m.catchBuffersActive.Set(float64(n)) }
func (m *AudioCoreMetrics) RecordRecordingStarted()     { m.recordingsStarted.Inc() }
func (m *AudioCoreMetrics) RecordRecordingFinished()    { m.recordingsFinished.Inc() }
func (m *AudioCoreMetrics) RecordPlaybackStarted()      { m.playbacksStarted.Inc() }
func (m *AudioCoreMetrics) RecordPlaybackFinished()     { m.playbacksFinished.Inc() }
func (m *AudioCoreMetrics) RecordQuantumProcessed(seconds float64) {
	m.quantumProcessed.Inc()
	m.quantumDuration.Observe(seconds)
}

// --- Message channels (C7) ---

func (m *AudioCoreMetrics) SetQueueDepth(direction string, depth int) {
	m.queueDepth.WithLabelValues(direction).Set(float64(depth))
}

func (m *AudioCoreMetrics) RecordQueueOverflow(direction string) {
	m.queueOverflow.WithLabelValues(direction).Inc()
}

// --- Mipmap (C2) ---

func (m *AudioCoreMetrics) RecordMipmapUIUpdate() { m.mipmapUpdates.Inc() }
