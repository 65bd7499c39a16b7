package audiocore

// chain.go implements C3: chain creation/resize/destruction, the
// "scary" single-region and random-frame read/write family of §4.3.1, and
// the chain-level mipmap operations of §6.

// allocateBufferSequence acquires and marks in_use `count` fresh sub-buffer
// slots for the given channel count, in order, returning the updated model
// and the resulting index list. Used by allocate_now chain creation and by
// each allocator step (one at a time there, via the same two primitives).
func allocateBufferSequence(m Model, channels, count int) (Model, []BufferIdx) {
	out := make([]BufferIdx, 0, count)
	for i := 0; i < count; i++ {
		var idx BufferIdx
		m, idx, _ = findUnusedOrCreateNewBuffer(m, channels)
		m = setInUse(m, channels, idx)
		out = append(out, idx)
	}
	return m, out
}

// CreateChain implements chain creation (§4.3): allocate_now==true performs
// synchronous full allocation within this one publish; otherwise the chain
// is inserted loading and a LoadingChain is pushed onto the queue.
func CreateChain(m Model, channels, frameCount int, opts ChainOptions, clientData any) (Model, ChainID) {
	id := m.takeChainID()
	chain := Chain{
		ID:         id,
		Channels:   channels,
		FrameCount: frameCount,
		ClientData: clientData,
		Options:    opts,
		Flags:      opts.flags(),
	}

	if opts.AllocateNow {
		var buffers []BufferIdx
		m, buffers = allocateBufferSequence(m, channels, requiredBufferCount(frameCount))
		chain.Buffers = buffers
		chain.LoadProgress = 1
	} else {
		chain.Flags = chain.Flags.with(ChainFlagLoading)
		m.loadingChains = append(m.loadingChains, LoadingChain{User: id, Channels: channels})
	}

	m.chains[id] = chain
	return m, id
}

// ResizeChain implements §4.3's resize: equal required-buffer-count mutates
// only FrameCount; shrink releases trailing slots; grow discards existing
// data, re-enters loading, and enqueues a fresh LoadingChain.
func ResizeChain(m Model, id ChainID, newFrameCount int) Model {
	chain, ok := m.chains[id]
	if !ok {
		return m
	}

	oldCount := requiredBufferCount(chain.FrameCount)
	newCount := requiredBufferCount(newFrameCount)

	switch {
	case newCount == oldCount:
		chain.FrameCount = newFrameCount
		m.chains[id] = chain

	case newCount < oldCount:
		for _, idx := range chain.Buffers[newCount:] {
			m = release(m, chain.Channels, idx)
		}
		chain.Buffers = append([]BufferIdx(nil), chain.Buffers[:newCount]...)
		chain.FrameCount = newFrameCount
		m.chains[id] = chain

	default: // grow
		chain.Buffers = nil
		chain.FrameCount = newFrameCount
		chain.LoadProgress = 0
		chain.Flags = chain.Flags.with(ChainFlagLoading)
		m.chains[id] = chain
		m.loadingChains = append(m.loadingChains, LoadingChain{User: id, Channels: chain.Channels})
	}

	return m
}

// EraseChain releases every sub-buffer slot the chain holds and removes it
// from the table. If the chain was still loading, its LoadingChain entry is
// left in the queue; the allocator's cancel path reconciles it the next
// time it is popped (§4.4).
func EraseChain(m Model, id ChainID) Model {
	chain, ok := m.chains[id]
	if !ok {
		return m
	}
	for _, idx := range chain.Buffers {
		m = release(m, chain.Channels, idx)
	}
	delete(m.chains, id)
	return m
}

// isSingleSubBufferRegion reports whether [start, start+n) lies within one
// sub-buffer, the precondition for every "scary" single-region accessor.
func isSingleSubBufferRegion(start, n int) bool {
	if n <= 0 {
		return false
	}
	return start/BufferSize == (start+n-1)/BufferSize
}

// ScaryReadRegion reads [start, start+n) - which must lie within one
// sub-buffer - for the given channel, invoking fn with a direct slice into
// storage for zero-copy access. Unsynchronized: the caller must ensure no
// concurrent writer touches these frames.
func ScaryReadRegion(m Model, c Chain, channel, start, n int, fn func(frames []float32)) error {
	if !isSingleSubBufferRegion(start, n) {
		return ErrRegionCrossesSubBuffer
	}
	if channel < 0 || channel >= c.Channels || !c.IsReady() {
		return nil
	}
	bufIdx := c.Buffers[start/BufferSize]
	svc := subBufferService(m, c.Channels, bufIdx)
	if svc == nil {
		return nil
	}
	offset := start % BufferSize
	base := channel * BufferSize
	fn(svc.Storage[base+offset : base+offset+n])
	return nil
}

// ScaryWriteRegion writes [start, start+n) - single sub-buffer only - for
// the given channel via fn, then grows that sub-buffer's audio-side mipmap
// dirty region to cover the write.
func ScaryWriteRegion(m Model, c Chain, channel, start, n int, fn func(frames []float32)) error {
	if !isSingleSubBufferRegion(start, n) {
		return ErrRegionCrossesSubBuffer
	}
	if channel < 0 || channel >= c.Channels || !c.IsReady() {
		return nil
	}
	bufIdx := c.Buffers[start/BufferSize]
	svc := subBufferService(m, c.Channels, bufIdx)
	if svc == nil {
		return nil
	}
	offset := start % BufferSize
	base := channel * BufferSize
	fn(svc.Storage[base+offset : base+offset+n])
	svc.growAudioDirty(offset, offset+n)
	return nil
}

// frameValue resolves a single absolute frame index to its sub-buffer
// storage slot, or ok==false if idx is out of [0, FrameCount).
func frameValue(m Model, c Chain, channel, idx int) (svc *SubBufferService, offset int, ok bool) {
	if idx < 0 || idx >= c.FrameCount || !c.IsReady() {
		return nil, 0, false
	}
	bufIdx := c.Buffers[idx/BufferSize]
	svc = subBufferService(m, c.Channels, bufIdx)
	if svc == nil {
		return nil, 0, false
	}
	return svc, idx % BufferSize, true
}

// ReadChainMipmap resolves a chain-relative bin to its owning sub-buffer and
// reads it - the mipmap counterpart to frameValue: a whole-chain waveform
// view may span several sub-buffers, so the bin index must first be mapped
// to (bufferIdx, localBin) the same way frameValue maps a frame index,
// before delegating to SubBufferService.ReadMipmap within that one buffer.
// Returns 0 for a bin outside the chain or a chain that is not ready.
func ReadChainMipmap(m Model, c Chain, binSize, channel, bin int) byte {
	if binSize <= 0 {
		binSize = 1
	}
	svc, offset, ok := frameValue(m, c, channel, bin*binSize)
	if !ok {
		return 0
	}
	return svc.ReadMipmap(binSize, channel, offset/binSize)
}

// ClearChainMipmap clears the UI-visible mipmap view of every sub-buffer the
// chain currently references. Raw storage and the audio-side staging bytes
// are untouched; a subsequent advanceMipmaps pass will not repopulate
// frames that are not re-dirtied.
func ClearChainMipmap(m Model, c Chain) {
	for _, idx := range c.Buffers {
		if svc := subBufferService(m, c.Channels, idx); svc != nil {
			svc.ClearMipmap()
		}
	}
}

// SetChainMipmapsEnabled toggles ChainFlagGenerateMipmaps on an existing
// chain. Unlike ChainOptions.EnableMipmaps, which only takes effect at
// CreateChain time, this lets a host turn mipmap bookkeeping on or off
// after the chain already exists, per §6's set_mipmaps_enabled.
func SetChainMipmapsEnabled(m Model, id ChainID, enabled bool) Model {
	chain, ok := m.chains[id]
	if !ok {
		return m
	}
	if enabled {
		chain.Flags = chain.Flags.with(ChainFlagGenerateMipmaps)
	} else {
		chain.Flags = chain.Flags.without(ChainFlagGenerateMipmaps)
	}
	m.chains[id] = chain
	return m
}

// ScaryReadRandom reads len(indices) arbitrary (possibly out-of-range)
// absolute frame indices for one channel. Out-of-range indices yield 0.
// Passing frame_count correctly (len(indices)) for every channel avoids the
// source bug noted in the design notes, where a multi-channel wrapper
// silently dropped the caller-supplied frame count.
func ScaryReadRandom(m Model, c Chain, channel int, indices []int, out []float32) {
	for i, idx := range indices {
		svc, off, ok := frameValue(m, c, channel, idx)
		if !ok {
			out[i] = 0
			continue
		}
		out[i] = svc.Storage[channel*BufferSize+off]
	}
}

// ScaryWriteRandom writes len(indices) arbitrary frame indices for one
// channel; out-of-range indices are silently skipped.
func ScaryWriteRandom(m Model, c Chain, channel int, indices []int, values []float32) {
	for i, idx := range indices {
		svc, off, ok := frameValue(m, c, channel, idx)
		if !ok {
			continue
		}
		svc.Storage[channel*BufferSize+off] = values[i]
		svc.growAudioDirty(off, off+1)
	}
}

// ScaryReadChunked and ScaryWriteChunked expose the generic pump (§4.3.2)
// over an arbitrary [start, start+n) span for one channel, breaking at
// sub-buffer boundaries automatically via InputRegionAlignment set to
// BufferSize, applied to the absolute chain position through
// InputStartXform.
func ScaryReadChunked(m Model, c Chain, channel, start, n, chunkSize int, out []float32) int {
	cfg := ProcessorConfig{
		InputRegionAlignment:  BufferSize,
		OutputRegionAlignment: 0,
		ChunkSize:             chunkSize,
		InputStartXform:       func(pos int) int { return start + pos },
	}
	return Process(cfg, n, func(abs, want int) int {
		pos := abs - start
		got := 0
		_ = ScaryReadRegion(m, c, channel, abs, want, func(frames []float32) {
			copy(out[pos:pos+want], frames)
			got = want
		})
		return got
	}, func(pos, n int) bool { return true })
}

func ScaryWriteChunked(m Model, c Chain, channel, start, n, chunkSize int, in []float32) int {
	cfg := ProcessorConfig{
		InputRegionAlignment:  BufferSize,
		OutputRegionAlignment: 0,
		ChunkSize:             chunkSize,
		InputStartXform:       func(pos int) int { return start + pos },
	}
	return Process(cfg, n, func(abs, want int) int {
		pos := abs - start
		if pos+want > len(in) {
			want = len(in) - pos
		}
		return want
	}, func(pos, want int) bool {
		return ScaryWriteRegion(m, c, channel, start+pos, want, func(frames []float32) {
			copy(frames, in[pos:pos+want])
		}) == nil
	})
}
