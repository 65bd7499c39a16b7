package audiocore

import "github.com/fenwick-audio/adrian/internal/audiocore/mipmap"

// diff.go implements C9: per-UI-tick queue drain, chain-table diffing, and
// mipmap advance, per §4.7. HostEvent is the user-facing payload type (the
// public surface's push_event_callback argument); HostEvent unifies both the
// translated audio->UI messages and the diff-derived chain lifecycle
// events so callers have a single stream to push to the host.
type HostEventKind int

const (
	HostChainLoadBegin HostEventKind = iota
	HostChainLoadEnd
	HostChainLoadProgress
	HostChainMipmapChanged
	HostRecordingStarted
	HostRecordingFinished
	HostPlaybackFinished
	HostWarnQueueFull
)

// HostEvent is emitted to the host via the push_event_callback supplied to
// the UI Update entry point.
type HostEvent struct {
	Kind          HostEventKind
	ChainID       ChainID
	CatchBufferID CatchBufferID
	ClientData    any
	Progress      float64
	Region        Region
	Beg           uint64
	SizeApprox    int
}

// drainEvents implements §4.7 step 1: drain the audio->UI queue, translating
// each Event into a HostEvent carrying the owning entity's client_data.
func drainEvents(m Model, queues *MessageQueues, push func(HostEvent)) {
	for {
		e, ok := queues.RecvEvent()
		if !ok {
			return
		}
		switch e.Kind {
		case EventWarnQueueFull:
			push(HostEvent{Kind: HostWarnQueueFull, SizeApprox: e.SizeApprox})
		case EventRecordingStarted:
			cb, _ := m.CatchBuffer(e.CatchBufferID)
			push(HostEvent{Kind: HostRecordingStarted, CatchBufferID: e.CatchBufferID, ClientData: cb.ClientData, Beg: e.Beg})
		case EventRecordingFinished:
			cb, _ := m.CatchBuffer(e.CatchBufferID)
			push(HostEvent{Kind: HostRecordingFinished, CatchBufferID: e.CatchBufferID, ClientData: cb.ClientData, Region: e.Region})
		case EventPlaybackFinished:
			cb, _ := m.CatchBuffer(e.CatchBufferID)
			push(HostEvent{Kind: HostPlaybackFinished, CatchBufferID: e.CatchBufferID, ClientData: cb.ClientData})
		}
	}
}

// diffChains implements §4.7 step 2: compares the previous and current
// chain tables and emits load lifecycle events, skipping entries with the
// silent flag set.
func diffChains(prev, curr map[ChainID]Chain, push func(HostEvent)) {
	for id, next := range curr {
		if next.Flags.has(ChainFlagSilent) {
			continue
		}
		old, existed := prev[id]
		wasLoading := existed && old.Flags.has(ChainFlagLoading)
		isLoading := next.Flags.has(ChainFlagLoading)

		switch {
		case !existed && isLoading:
			push(HostEvent{Kind: HostChainLoadBegin, ChainID: id, ClientData: next.ClientData})
		case wasLoading && !isLoading:
			push(HostEvent{Kind: HostChainLoadEnd, ChainID: id, ClientData: next.ClientData})
		case !wasLoading && isLoading:
			push(HostEvent{Kind: HostChainLoadBegin, ChainID: id, ClientData: next.ClientData})
		case existed && isLoading && old.LoadProgress != next.LoadProgress:
			push(HostEvent{Kind: HostChainLoadProgress, ChainID: id, ClientData: next.ClientData, Progress: next.LoadProgress})
		}
	}
	for id, old := range prev {
		if old.Flags.has(ChainFlagSilent) {
			continue
		}
		if _, stillExists := curr[id]; !stillExists && old.Flags.has(ChainFlagLoading) {
			push(HostEvent{Kind: HostChainLoadEnd, ChainID: id, ClientData: old.ClientData})
		}
	}
}

// advanceMipmaps implements §4.7 step 3: for each ready chain with mipmaps
// enabled, consume every referenced sub-buffer's handed-off dirty region
// (the beach-ball-mediated critical dirty region) into the UI-side view.
func advanceMipmaps(m Model, push func(HostEvent)) {
	for id, chain := range m.chains {
		if !chain.Flags.has(ChainFlagGenerateMipmaps) || !chain.IsReady() {
			continue
		}
		changed := false
		for _, idx := range chain.Buffers {
			svc := subBufferService(m, chain.Channels, idx)
			if svc == nil {
				continue
			}
			if consumeCriticalDirty(svc) {
				changed = true
			}
		}
		if changed {
			currentMetrics().RecordMipmapUIUpdate()
			push(HostEvent{Kind: HostChainMipmapChanged, ChainID: id, ClientData: chain.ClientData})
		}
	}
}

// consumeCriticalDirty is the UI side of the beach-ball handoff: only reads
// and clears the critical dirty region while it can claim the ball from
// audio as target-catcher, so it never reads staging mid-write.
func consumeCriticalDirty(svc *SubBufferService) bool {
	packed := svc.criticalDirty.Load()
	if packed == 0 {
		return false
	}
	if !svc.ball.tryUITurn() {
		return false
	}
	region := unpackRegion(packed)
	if region.Empty() {
		return false
	}
	for ch := 0; ch < svc.Channels; ch++ {
		base := ch * BufferSize
		svc.uiView.Update(ch, region.Start, region.End, svc.staging[base:base+BufferSize])
	}
	svc.criticalDirty.Store(0)
	return true
}

// stageCriticalDirty is the audio side of the same handoff, run once per
// quantum in the audio participant's Update (the per-quantum §4.5 "mipmap
// bookkeeping" step): re-encode the audio-local dirty region into staging,
// publish it as the critical dirty region, and clear the local copy.
// Skips the quantum entirely if it cannot claim the ball - the UI is free
// to catch up on the next quantum, and audio never blocks waiting for it.
func stageCriticalDirty(svc *SubBufferService) {
	if svc.audioDirty.Empty() {
		return
	}
	if !svc.ball.tryAudioTurn() {
		return
	}
	for ch := 0; ch < svc.Channels; ch++ {
		base := ch * BufferSize
		for frame := svc.audioDirty.Start; frame < svc.audioDirty.End; frame++ {
			svc.staging[base+frame] = mipmap.Encode(svc.Storage[base+frame])
		}
	}
	svc.criticalDirty.Store(packRegion(svc.audioDirty))
	svc.audioDirty = Region{}
}
