package audiocore

import "math"

// peakgate.go implements the per-channel peak gate primitive the catch
// buffer's record-trigger logic depends on, grounded on
// original_source/include/adrian-peak-gate.hpp. The source computes, per
// DSP quantum, the absolute peak of the block, glides a running estimate
// toward it with a linear ramp, zeroes the estimate below an epsilon, and
// reports whether it exceeds a caller-supplied threshold. This port walks
// the quantum sample-by-sample (rather than the source's whole-vector
// min/max) since Go has no SIMD vector-min/max primitive in the corpus;
// the result is numerically equivalent because the source's own "peak"
// value is itself a scalar derived from the block's extremes.
const peakGateEpsilon = 0.000001

// linearGlide ramps a scalar toward a target over a fixed number of
// samples - mirroring ml::LinearGlide, which this package only has a
// signature-less header for (MLDSPGens.h is not in the retrieval pack), so
// its two operations are reconstructed from how adrian-peak-gate.hpp calls
// them: setValue jumps immediately with no ramp (used as a fast-attack
// bypass), while retarget re-aims the existing ramp at a new value from
// wherever it currently sits (used every block, providing the continuous,
// glide-time-limited release as the value falls).
type linearGlide struct {
	timeInSamples float64
	current       float64
	target        float64
	step          float64
}

func newLinearGlide(timeInSamples float64) linearGlide {
	if timeInSamples < 1 {
		timeInSamples = 1
	}
	return linearGlide{timeInSamples: timeInSamples}
}

// setValue snaps the glide directly to v with no ramp.
func (g *linearGlide) setValue(v float64) {
	g.current = v
	g.target = v
	g.step = 0
}

// retarget re-aims the ramp at v; the step is sized so that, absent another
// retarget, current reaches target after timeInSamples advances.
func (g *linearGlide) retarget(v float64) {
	g.target = v
	g.step = (g.target - g.current) / g.timeInSamples
}

// advance moves current one sample toward target, clamping at arrival.
func (g *linearGlide) advance() float64 {
	if g.step > 0 {
		g.current += g.step
		if g.current > g.target {
			g.current = g.target
		}
	} else if g.step < 0 {
		g.current += g.step
		if g.current < g.target {
			g.current = g.target
		}
	}
	return g.current
}

// peakGateChannel is one channel's glide state plus its last reported peak.
type peakGateChannel struct {
	glide linearGlide
	peak  float64
}

// PeakGate is the multi-channel peak-detecting gate: per quantum, per
// channel, it reports whether the glided peak estimate crosses a threshold.
type PeakGate struct {
	channels []peakGateChannel
}

// NewPeakGate allocates a gate for channelCount channels, each gliding over
// glideTimeInSamples.
func NewPeakGate(channelCount int, glideTimeInSamples float64) *PeakGate {
	g := &PeakGate{channels: make([]peakGateChannel, channelCount)}
	for i := range g.channels {
		g.channels[i].glide = newLinearGlide(glideTimeInSamples)
	}
	return g
}

func blockAbsPeak(in []float32) float64 {
	peak := 0.0
	for _, s := range in {
		a := math.Abs(float64(s))
		if a > peak {
			peak = a
		}
	}
	return peak
}

// processChannel advances one channel's glide over the quantum in and
// reports whether its resulting peak estimate exceeds threshold, mirroring
// adrian-peak-gate.hpp's `if (peak > c->peak) glide.setValue(peak)` followed
// by the unconditional `c->glide(peak)` / `c->peak = ml::max(glide)`: a
// rising block peak snaps the glide up instantly (fast attack), every block
// also re-aims the ramp at its own peak (so a falling peak glides back down
// over glideTimeInSamples - the release), and the reported peak is the
// maximum the glide reaches anywhere across the block, not just its value
// at the last sample, since a block can start high and decay partway
// through the ramp.
func (g *PeakGate) processChannel(ch int, in []float32, threshold float64) bool {
	c := &g.channels[ch]
	blockPeak := blockAbsPeak(in)
	if blockPeak > c.peak {
		c.glide.setValue(blockPeak)
	}
	c.glide.retarget(blockPeak)

	maxGlide := 0.0
	for range in {
		v := c.glide.advance()
		if v > maxGlide {
			maxGlide = v
		}
	}
	c.peak = maxGlide
	if c.peak < peakGateEpsilon {
		c.peak = 0
	}
	return c.peak > threshold
}

// Process reports whether any channel's quantum, laid out channel-major
// over a stride-wide row (storage[ch*stride+start:ch*stride+start+quantum]), crosses
// threshold. Channel-major storage, quantum length, and stride are the
// caller's responsibility to align; see catchbuffer.go's only caller.
func (g *PeakGate) Process(storage []float32, stride, start, quantum int, threshold float64) bool {
	triggered := false
	for ch := range g.channels {
		base := ch*stride + start
		if g.processChannel(ch, storage[base:base+quantum], threshold) {
			triggered = true
		}
	}
	return triggered
}
