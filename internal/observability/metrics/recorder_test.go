package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestAudioCoreMetricsRegistersWithoutPanicking(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAudioCoreMetrics(reg)
	require.NotNil(t, m)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}

func TestAudioCoreMetricsChainGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAudioCoreMetrics(reg)

	m.SetChainsActive(3)
	m.SetChainsLoading(1)
	require.InDelta(t, 3, gaugeValue(t, m.chainsActive), 0)
	require.InDelta(t, 1, gaugeValue(t, m.chainsLoading), 0)

	m.RecordAllocationStep()
	m.RecordAllocationStep()
	m.RecordAllocationCancel()
	require.InDelta(t, 2, counterValue(t, m.chainLoadSteps), 0)
	require.InDelta(t, 1, counterValue(t, m.chainLoadCancels), 0)
}

func TestAudioCoreMetricsCatchBufferCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAudioCoreMetrics(reg)

	m.RecordRecordingStarted()
	m.RecordRecordingFinished()
	m.RecordPlaybackStarted()
	m.RecordPlaybackFinished()
	m.RecordQuantumProcessed(0.0001)

	require.InDelta(t, 1, counterValue(t, m.recordingsStarted), 0)
	require.InDelta(t, 1, counterValue(t, m.recordingsFinished), 0)
	require.InDelta(t, 1, counterValue(t, m.playbacksStarted), 0)
	require.InDelta(t, 1, counterValue(t, m.playbacksFinished), 0)
	require.InDelta(t, 1, counterValue(t, m.quantumProcessed), 0)
}

func TestAudioCoreMetricsQueueOverflowIsPerDirection(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAudioCoreMetrics(reg)

	m.RecordQueueOverflow("audio_to_ui")
	m.SetQueueDepth("ui_to_audio", 7)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
	require.InDelta(t, 1, counterValue(t, m.queueOverflow.WithLabelValues("audio_to_ui")), 0)
	require.InDelta(t, 0, counterValue(t, m.queueOverflow.WithLabelValues("ui_to_audio")), 0)
}
