package audiocore

// catchbuffer.go implements C5, grounded on
// original_source/include/adrian-catch-buffer.hpp: a gated recorder and
// partitioned one-shot player layered over a chain of double logical
// capacity. The underlying chain's "scary" single-region accessors
// (chain.go) back every read/write here; this file owns only the marker
// arithmetic, the partition transform, and start/stop/event plumbing.

// partitionTransform implements §4.5's partitioned-read transform: given a
// linear read offset r in [0,P) and the current write_marker in [0,2P),
// returns the absolute offset into the 2P-frame chain to actually read.
func partitionTransform(r int, writeMarker uint64, p int) int {
	wm := int(writeMarker)
	writePart := 0
	if wm >= p {
		writePart = 1
	}
	otherPart := 1 - writePart
	readPart := otherPart
	if r < wm%p {
		readPart = writePart
	}
	return r + p*readPart
}

// MakeCatchBuffer creates a catch buffer of logical capacity p (chain
// capacity 2p) backed by a fresh chain, per §4.5's header invariant that p
// be a multiple of BufferSize. Returns ErrCatchBufferCapacityMisaligned,
// leaving m unmodified, if that invariant is violated.
func MakeCatchBuffer(m Model, channels, p int, opts ChainOptions, glideTimeInSamples float64, clientData any) (Model, CatchBufferID, error) {
	if p <= 0 || p%BufferSize != 0 {
		return m, 0, ErrCatchBufferCapacityMisaligned
	}

	m, chainID := CreateChain(m, channels, 2*p, opts, clientData)

	id := m.takeCatchBufferID()
	svc := &CatchBufferService{
		Channels: channels,
		Capacity: p,
		Gate:     NewPeakGate(channels, glideTimeInSamples),
	}
	m.catchBuffers[id] = CatchBuffer{
		ID:         id,
		ChainID:    chainID,
		Options:    opts,
		ClientData: clientData,
		Service:    svc,
	}
	return m, id, nil
}

// ReconfigureCatchBuffer resizes the underlying chain to a new capacity and
// resets record/playback state, mirroring resize's "grow discards data"
// semantics applied to the doubled-capacity chain. Returns
// ErrUnknownCatchBuffer for an unrecognized id or
// ErrCatchBufferCapacityMisaligned if newP is not a multiple of BufferSize,
// leaving m unmodified in both cases.
func ReconfigureCatchBuffer(m Model, id CatchBufferID, newChannels, newP int) (Model, error) {
	cb, ok := m.catchBuffers[id]
	if !ok {
		return m, ErrUnknownCatchBuffer
	}
	if newP <= 0 || newP%BufferSize != 0 {
		return m, ErrCatchBufferCapacityMisaligned
	}
	m = ResizeChain(m, cb.ChainID, 2*newP)
	cb.Service.Channels = newChannels
	cb.Service.Capacity = newP
	cb.Service.WriteMarker.Store(0)
	cb.Service.PlaybackMarker.Store(0)
	cb.Service.RecordActive.Store(false)
	cb.Service.Gate = NewPeakGate(newChannels, cb.Service.Gate.glideTimeInSamples())
	cb.PlaybackRegion = Region{}
	m.catchBuffers[id] = cb
	return m, nil
}

func (g *PeakGate) glideTimeInSamples() float64 {
	if len(g.channels) == 0 {
		return 1
	}
	return g.channels[0].glide.timeInSamples
}

// EraseCatchBuffer releases the underlying chain and removes the catch
// buffer record.
func EraseCatchBuffer(m Model, id CatchBufferID) Model {
	cb, ok := m.catchBuffers[id]
	if !ok {
		return m
	}
	m = EraseChain(m, cb.ChainID)
	delete(m.catchBuffers, id)
	return m
}

// CatchBufferProcess implements §4.5's per-quantum record step. input is
// channel-major, quantum frames per channel. Returns the two-row (stereo)
// output vector for playback, mono chains broadcast to both rows.
func CatchBufferProcess(m Model, cb CatchBuffer, queues *MessageQueues, input []float32, quantum int, gain, threshold float32, disableRecording bool) [2][]float32 {
	svc := cb.Service
	chain, _ := m.Chain(cb.ChainID)

	recordGate := svc.Gate.Process(input, quantum, 0, quantum, float64(threshold))
	if disableRecording {
		recordGate = false
	}

	if recordGate {
		wm := svc.WriteMarker.Load()
		_ = ScaryWriteRegion(m, chain, 0, int(wm), quantum, func(frames []float32) {
			for i := 0; i < quantum && i < len(frames); i++ {
				frames[i] = input[i] * gain
			}
		})
		if svc.Channels > 1 {
			_ = ScaryWriteRegion(m, chain, 1, int(wm), quantum, func(frames []float32) {
				for i := 0; i < quantum && i < len(frames); i++ {
					frames[i] = input[quantum+i] * gain
				}
			})
		}

		if !svc.RecordActive.Load() {
			svc.RecordStart = wm
			queues.SendEvent(Event{Kind: EventRecordingStarted, CatchBufferID: cb.ID, Beg: wm})
			svc.RecordActive.Store(true)
		}

		next := (wm + uint64(quantum)) % uint64(2*svc.Capacity)
		svc.WriteMarker.Store(next)
	} else if svc.RecordActive.Load() {
		wm := svc.WriteMarker.Load()
		p := uint64(svc.Capacity)
		region := Region{Start: int(svc.RecordStart % p), End: int(wm % p)}
		queues.SendEvent(Event{Kind: EventRecordingFinished, CatchBufferID: cb.ID, Region: region})
		svc.RecordActive.Store(false)
	}

	return catchBufferPlayback(m, cb, chain, queues, quantum)
}

func catchBufferPlayback(m Model, cb CatchBuffer, chain Chain, queues *MessageQueues, quantum int) [2][]float32 {
	out := [2][]float32{make([]float32, quantum), make([]float32, quantum)}

	svc := cb.Service
	if !svc.AudioPlaybackActive {
		return out
	}

	readMarker := svc.PlaybackMarker.Load()
	p := svc.Capacity
	wm := svc.WriteMarker.Load()

	readChannels := []int{0, 0}
	if svc.Channels > 1 {
		readChannels[1] = 1
	}
	for row, ch := range readChannels {
		absolute := partitionTransform(int(readMarker)%p, wm, p)
		_ = ScaryReadRegion(m, chain, ch, absolute, quantum, func(frames []float32) {
			copy(out[row], frames)
		})
	}

	next := (readMarker + uint64(quantum)) % uint64(2*p)
	svc.PlaybackMarker.Store(next)

	if int(next) >= cb.PlaybackRegion.End {
		svc.AudioPlaybackActive = false
		queues.SendEvent(Event{Kind: EventPlaybackFinished, CatchBufferID: cb.ID})
	}

	return out
}

// PlaybackStart is the UI-side half of start: publishes the playback
// region, flips the UI-visible active flag, seeds playback_marker so it is
// visible to UI immediately, and enqueues the dispatch command.
func PlaybackStart(m Model, id CatchBufferID, region Region, queues *MessageQueues) Model {
	cb, ok := m.catchBuffers[id]
	if !ok {
		return m
	}
	cb.PlaybackRegion = region
	cb.Service.UIPlaybackActive = true
	cb.Service.PlaybackMarker.Store(uint64(region.Start))
	m.catchBuffers[id] = cb
	queues.SendCommand(Command{Kind: CommandPlaybackStart, CatchBufferID: id, Region: region})
	return m
}

// PlaybackStop is the UI-side half of stop.
func PlaybackStop(m Model, id CatchBufferID, queues *MessageQueues) Model {
	cb, ok := m.catchBuffers[id]
	if !ok {
		return m
	}
	cb.Service.UIPlaybackActive = false
	m.catchBuffers[id] = cb
	queues.SendCommand(Command{Kind: CommandPlaybackStop, CatchBufferID: id})
	return m
}

// DispatchCommand applies one UI->audio command to audio-side state. Called
// from the audio thread after draining queues.commands each quantum.
func DispatchCommand(m Model, cmd Command) {
	cb, ok := m.catchBuffers[cmd.CatchBufferID]
	if !ok {
		return
	}
	switch cmd.Kind {
	case CommandPlaybackStart:
		cb.Service.AudioPlaybackActive = true
		cb.Service.PlaybackMarker.Store(uint64(cb.PlaybackRegion.Start))
	case CommandPlaybackStop:
		cb.Service.AudioPlaybackActive = false
	}
}
