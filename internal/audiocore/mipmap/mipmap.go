// Package mipmap implements the dense, one-byte-per-frame downsampled peak
// view that the audio core's specification lists as an assumed-provided
// external collaborator. No library in the surrounding ecosystem offers this
// exact "sample to one-byte approximation" encoding, so it is implemented
// here directly on top of math/bits-free float math; callers needing richer
// multi-level mipmaps can layer on top of ReadBin's binning.
package mipmap

import "math"

// Dense holds one downsample-ready byte per frame, per channel, for a single
// sub-buffer's worth of audio (BufferSize frames).
type Dense struct {
	channels int
	size     int
	data     [][]byte // data[channel][frame]
}

// New allocates a cleared Dense for the given channel count and frame size
// (BufferSize in production, smaller in tests).
func New(channels, size int) *Dense {
	d := &Dense{channels: channels, size: size, data: make([][]byte, channels)}
	for ch := range d.data {
		d.data[ch] = make([]byte, size)
	}
	return d
}

// Clear zeroes every byte.
func (d *Dense) Clear() {
	for ch := range d.data {
		clear(d.data[ch])
	}
}

// Fill sets every byte to v.
func (d *Dense) Fill(v byte) {
	for ch := range d.data {
		for i := range d.data[ch] {
			d.data[ch][i] = v
		}
	}
}

// At returns the encoded byte at (channel, frame).
func (d *Dense) At(channel, frame int) byte {
	if channel < 0 || channel >= d.channels || frame < 0 || frame >= d.size {
		return 0
	}
	return d.data[channel][frame]
}

// Encode maps a float sample to a one-byte peak approximation: the absolute
// value, clamped to [0,1], scaled to [0,255].
func Encode(sample float32) byte {
	v := math.Abs(float64(sample))
	if v >= 1 {
		return 255
	}
	return byte(v * 255)
}

// Write re-encodes samples (length frames*channels, interleaved by channel
// the same way SubBufferService.Storage is laid out: channel-major, i.e.
// samples[ch*size+frame]) for the half-open frame range [start,end) into the
// dense array.
func (d *Dense) Write(channel, start, end int, samples []float32) {
	if channel < 0 || channel >= d.channels {
		return
	}
	if start < 0 {
		start = 0
	}
	if end > d.size {
		end = d.size
	}
	for frame := start; frame < end; frame++ {
		d.data[channel][frame] = Encode(samples[frame])
	}
}

// Update consumes src's bytes for [start,end) on the given channel directly,
// used by the UI side to pull the audio-encoded staging bytes without
// re-deriving them from raw samples.
func (d *Dense) Update(channel, start, end int, src []byte) {
	if channel < 0 || channel >= d.channels {
		return
	}
	if start < 0 {
		start = 0
	}
	if end > d.size {
		end = d.size
	}
	copy(d.data[channel][start:end], src[start:end])
}

// ReadBin downsamples by taking the maximum encoded byte across
// [frame*binSize, (frame+1)*binSize) on the given channel - the peak-hold
// mipmap read used by the UI's waveform overview.
func (d *Dense) ReadBin(channel, binSize, frame int) byte {
	if binSize <= 0 {
		binSize = 1
	}
	start := frame * binSize
	end := start + binSize
	if start < 0 {
		start = 0
	}
	if end > d.size {
		end = d.size
	}
	var peak byte
	if channel < 0 || channel >= d.channels {
		return 0
	}
	for i := start; i < end; i++ {
		if b := d.data[channel][i]; b > peak {
			peak = b
		}
	}
	return peak
}

// Channels returns the channel count this Dense was constructed with.
func (d *Dense) Channels() int { return d.channels }

// Size returns the frame count this Dense was constructed with.
func (d *Dense) Size() int { return d.size }
