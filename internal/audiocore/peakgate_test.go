package audiocore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinearGlideSetValueSnapsWithNoRamp(t *testing.T) {
	g := newLinearGlide(4)
	g.setValue(0.8)

	assert.InDelta(t, 0.8, g.advance(), 1e-9)
	assert.InDelta(t, 0.8, g.advance(), 1e-9, "setValue leaves step at 0, so advance never moves off target")
}

func TestLinearGlideRetargetRampsLinearlyThenClampsAtTarget(t *testing.T) {
	g := newLinearGlide(4)
	g.retarget(8) // from current==0

	assert.InDelta(t, 2, g.advance(), 1e-9)
	assert.InDelta(t, 4, g.advance(), 1e-9)
	assert.InDelta(t, 6, g.advance(), 1e-9)
	assert.InDelta(t, 8, g.advance(), 1e-9)
	assert.InDelta(t, 8, g.advance(), 1e-9, "advance must clamp at target rather than overshoot")
}

func TestLinearGlideRetargetDownwardRampsThenClamps(t *testing.T) {
	g := newLinearGlide(4)
	g.setValue(8)
	g.retarget(0)

	assert.InDelta(t, 6, g.advance(), 1e-9)
	assert.InDelta(t, 4, g.advance(), 1e-9)
	assert.InDelta(t, 2, g.advance(), 1e-9)
	assert.InDelta(t, 0, g.advance(), 1e-9)
	assert.InDelta(t, 0, g.advance(), 1e-9, "must not undershoot below target")
}

func TestNewLinearGlideRejectsNonPositiveTime(t *testing.T) {
	g := newLinearGlide(0)
	assert.Equal(t, 1.0, g.timeInSamples)
}

func TestPeakGateRisingBlockSnapsInstantlyAboveThreshold(t *testing.T) {
	g := NewPeakGate(1, 4)
	in := []float32{0.8, 0.8, 0.8, 0.8}

	triggered := g.processChannel(0, in, 0.5)
	assert.True(t, triggered)
	assert.InDelta(t, 0.8, g.channels[0].peak, 1e-6, "a rising block peak snaps every sample in the block to the new peak")
}

func TestPeakGateFallingBlockReportsMaxOfGlideNotLastSample(t *testing.T) {
	g := NewPeakGate(1, 4)
	loud := []float32{0.8, 0.8, 0.8, 0.8}
	g.processChannel(0, loud, 0.5)

	quiet := []float32{0.1, 0.1, 0.1, 0.1}
	triggered := g.processChannel(0, quiet, 0.5)

	// Glide steps from 0.8 toward 0.1 over 4 samples: 0.625, 0.45, 0.275,
	// 0.1. The block's maximum (0.625, the first sample) is what must be
	// reported, not the last sample's 0.1 - that is the whole point of the
	// release character this gate is meant to have.
	assert.InDelta(t, 0.625, g.channels[0].peak, 1e-6)
	assert.True(t, triggered, "0.625 still exceeds the 0.5 threshold")
}

func TestPeakGateReleaseEventuallyDropsBelowThreshold(t *testing.T) {
	g := NewPeakGate(1, 4)
	loud := []float32{0.8, 0.8, 0.8, 0.8}
	silence := make([]float32, 4)

	g.processChannel(0, loud, 0.5)
	firstSilent := g.processChannel(0, silence, 0.5)
	assert.True(t, firstSilent, "first silent block after a loud one stays above threshold (slow release)")

	secondSilent := g.processChannel(0, silence, 0.5)
	assert.False(t, secondSilent, "release completes by the second silent block")
	assert.Zero(t, g.channels[0].peak)
}

func TestPeakGateBelowEpsilonReportsZeroPeak(t *testing.T) {
	g := NewPeakGate(1, 4)
	silence := make([]float32, 4)

	g.processChannel(0, silence, 0.1)
	assert.Equal(t, 0.0, g.channels[0].peak)
}

func TestBlockAbsPeakTakesLargestMagnitudeRegardlessOfSign(t *testing.T) {
	assert.InDelta(t, 0.9, blockAbsPeak([]float32{0.1, -0.9, 0.3}), 1e-6)
	assert.Zero(t, blockAbsPeak(nil))
}

func TestPeakGateProcessReportsTriggeredIfAnyChannelCrosses(t *testing.T) {
	g := NewPeakGate(2, 4)
	// Channel-major storage: stride 8, channel 0 occupies [0,4), channel 1
	// occupies [8,12).
	storage := make([]float32, 16)
	storage[8], storage[9], storage[10], storage[11] = 0.9, 0.9, 0.9, 0.9

	triggered := g.Process(storage, 8, 0, 4, 0.5)
	assert.True(t, triggered, "channel 1 alone crossing the threshold must trigger Process")
}
