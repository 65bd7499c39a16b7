package audiocore

import (
	"sync/atomic"

	"github.com/fenwick-audio/adrian/internal/audiocore/mipmap"
)

// Region is a half-open frame range [Start, End). The zero value is empty.
type Region struct {
	Start int
	End   int
}

// Empty reports whether the region contains no frames.
func (r Region) Empty() bool { return r.End <= r.Start }

// Union returns the smallest region covering both r and other, treating an
// empty operand as absorbing (the non-empty side wins outright).
func (r Region) Union(other Region) Region {
	if r.Empty() {
		return other
	}
	if other.Empty() {
		return r
	}
	out := r
	if other.Start < out.Start {
		out.Start = other.Start
	}
	if other.End > out.End {
		out.End = other.End
	}
	return out
}

func packRegion(r Region) uint64 {
	return uint64(uint32(r.Start))<<32 | uint64(uint32(r.End))
}

func unpackRegion(v uint64) Region {
	return Region{Start: int(int32(v >> 32)), End: int(int32(v))}
}

// BufferInfo is the per-slot bookkeeping record in a BufferTable.
type BufferInfo struct {
	InUse bool
}

// SubBufferService is the shared, reference-counted-by-reachability record
// backing one pool slot: fixed storage, mipmap staging, and the UI-side
// downsampled view. It is shared by every chain whose buffer list includes
// it and by every snapshot that still references it.
type SubBufferService struct {
	Channels int

	// Storage is channel-major: Storage[ch*BufferSize+frame]. It is
	// "scary" - unsynchronized - per §4.3.1; callers establish mutual
	// exclusion externally.
	Storage []float32

	// staging holds the mipmap encoding audio has produced but UI has not
	// yet consumed, one byte per frame per channel, channel-major.
	staging []byte
	uiView  *mipmap.Dense

	// audioDirty is the audio-local accumulator of frames written since the
	// last staging pass. Touched only by the audio goroutine.
	audioDirty Region

	// criticalDirty is the handed-off dirty region, packed as two int32s.
	// Exchanged lock-free under the beach-ball's turn discipline.
	criticalDirty atomic.Uint64

	// ball gates staging-buffer access between audio and UI: each side
	// only touches staging while it holds the token oriented toward the
	// other as target-catcher (§4.5).
	ball beachBall
}

func newSubBufferService(channels int) *SubBufferService {
	s := &SubBufferService{
		Channels: channels,
		Storage:  make([]float32, channels*BufferSize),
		staging:  make([]byte, channels*BufferSize),
		uiView:   mipmap.New(channels, BufferSize),
	}
	return s
}

// clear zeroes storage and the UI-visible mipmap. Called on (re)acquisition,
// never on release, per §4.2's "fresh acquisitions zero out storage".
func (s *SubBufferService) clear() {
	clear(s.Storage)
	clear(s.staging)
	s.uiView.Clear()
	s.audioDirty = Region{}
	s.criticalDirty.Store(0)
}

// growAudioDirty extends the audio-side dirty accumulator to cover
// [start,end). Called by the audio participant after every "scary" write.
func (s *SubBufferService) growAudioDirty(start, end int) {
	s.audioDirty = s.audioDirty.Union(Region{Start: start, End: end})
}

// ReadMipmap returns the downsampled peak byte for the given bin size,
// channel, and bin-aligned frame, reading the UI-side view only.
func (s *SubBufferService) ReadMipmap(binSize, channel, frame int) byte {
	return s.uiView.ReadBin(channel, binSize, frame)
}

// ClearMipmap zeroes the UI-visible downsampled view only; raw storage and
// the audio-side dirty accumulator are untouched.
func (s *SubBufferService) ClearMipmap() {
	s.uiView.Clear()
}

// BufferTable holds one pool per channel count: a parallel Info/Service
// sequence indexed by BufferIdx.
type BufferTable struct {
	Infos    []BufferInfo
	Services []*SubBufferService
}

func (t BufferTable) clone() BufferTable {
	out := BufferTable{
		Infos:    make([]BufferInfo, len(t.Infos)),
		Services: make([]*SubBufferService, len(t.Services)),
	}
	copy(out.Infos, t.Infos)
	copy(out.Services, t.Services) // services are shared handles, not deep-copied
	return out
}

// Chain is a logical F-frame, C-channel buffer realized as an ordered list
// of sub-buffer indices.
type Chain struct {
	ID           ChainID
	Flags        ChainFlags
	LoadProgress float64
	Channels     int
	FrameCount   int
	// Buffers is nil iff the chain is loading (not ready to be read/written).
	Buffers    []BufferIdx
	ClientData any
	Options    ChainOptions
}

// IsReady reports whether the chain's buffer list is assembled.
func (c Chain) IsReady() bool { return c.Buffers != nil }

func (c Chain) clone() Chain {
	out := c
	if c.Buffers != nil {
		out.Buffers = append([]BufferIdx(nil), c.Buffers...)
	}
	return out
}

// LoadingChain is the allocator's descriptor for a chain that has not yet
// acquired all of its required sub-buffers.
type LoadingChain struct {
	User     ChainID
	Channels int
	Buffers  []BufferIdx
}

func (lc LoadingChain) clone() LoadingChain {
	out := lc
	out.Buffers = append([]BufferIdx(nil), lc.Buffers...)
	return out
}

// CatchBufferService holds the catch buffer's real-time state: atomics
// shared across audio/UI, plus audio-only and UI-only sections.
type CatchBufferService struct {
	Channels int
	Capacity int // P: logical frame capacity (underlying chain has 2P frames)

	// Critical (atomics).
	WriteMarker    atomic.Uint64 // release-stored, acquire-loaded for reads
	PlaybackMarker atomic.Uint64
	RecordActive   atomic.Bool

	// Audio-only.
	Gate                *PeakGate
	RecordStart         uint64
	AudioPlaybackActive bool

	// UI-only.
	UIPlaybackActive bool
}

// CatchBuffer layers gated record / partitioned playback on top of a chain
// of double its logical capacity.
type CatchBuffer struct {
	ID             CatchBufferID
	ChainID        ChainID
	Options        ChainOptions // options used to (re)create the underlying chain
	ClientData     any
	Service        *CatchBufferService
	PlaybackRegion Region
}

func (cb CatchBuffer) clone() CatchBuffer { return cb } // Service is a shared handle

// Model is the immutable root snapshot observed by all three participants.
// Per the design notes, true persistent (HAMT/RRB) containers are not
// available anywhere in the dependency surface this module draws from, so
// mutation uses the sanctioned RCU-style alternative: every UpdatePublish
// builds a new Model whose top-level collections are freshly copied, while
// SubBufferService/CatchBufferService payloads remain shared handles
// (their lifetime equals the longest-lived referencing snapshot or chain).
type Model struct {
	bufferPool        map[int]BufferTable
	chains            map[ChainID]Chain
	catchBuffers      map[CatchBufferID]CatchBuffer
	loadingChains      []LoadingChain
	nextChainID       int32
	nextCatchBufferID int32
}

// NewModel returns an empty root model.
func NewModel() Model {
	return Model{
		bufferPool:   make(map[int]BufferTable),
		chains:       make(map[ChainID]Chain),
		catchBuffers: make(map[CatchBufferID]CatchBuffer),
	}
}

// Chains returns the chain table of the current snapshot. The returned map
// must not be mutated by the caller.
func (m Model) Chains() map[ChainID]Chain { return m.chains }

// CatchBuffers returns the catch buffer table of the current snapshot. The
// returned map must not be mutated by the caller.
func (m Model) CatchBuffers() map[CatchBufferID]CatchBuffer { return m.catchBuffers }

// LoadingChains returns the pending loading-chain queue, back-to-front
// order matching the source's "pop back" discipline (index len-1 is next).
func (m Model) LoadingChains() []LoadingChain { return m.loadingChains }

// Chain looks up a chain by id.
func (m Model) Chain(id ChainID) (Chain, bool) {
	c, ok := m.chains[id]
	return c, ok
}

// CatchBuffer looks up a catch buffer by id.
func (m Model) CatchBuffer(id CatchBufferID) (CatchBuffer, bool) {
	cb, ok := m.catchBuffers[id]
	return cb, ok
}

// BufferTable returns the pool table for a channel count, or the zero value
// and false if none has been created yet.
func (m Model) BufferTable(channels int) (BufferTable, bool) {
	t, ok := m.bufferPool[channels]
	return t, ok
}

// clone returns a shallow copy of m with fresh top-level collections,
// suitable as the starting point for a transformer inside UpdatePublish.
func (m Model) clone() Model {
	out := Model{
		bufferPool:        make(map[int]BufferTable, len(m.bufferPool)),
		chains:            make(map[ChainID]Chain, len(m.chains)),
		catchBuffers:      make(map[CatchBufferID]CatchBuffer, len(m.catchBuffers)),
		loadingChains:     append([]LoadingChain(nil), m.loadingChains...),
		nextChainID:       m.nextChainID,
		nextCatchBufferID: m.nextCatchBufferID,
	}
	for ch, t := range m.bufferPool {
		out.bufferPool[ch] = t.clone()
	}
	for id, c := range m.chains {
		out.chains[id] = c.clone()
	}
	for id, cb := range m.catchBuffers {
		out.catchBuffers[id] = cb.clone()
	}
	return out
}

func (m *Model) takeChainID() ChainID {
	id := ChainID(m.nextChainID)
	m.nextChainID++
	return id
}

func (m *Model) takeCatchBufferID() CatchBufferID {
	id := CatchBufferID(m.nextCatchBufferID)
	m.nextCatchBufferID++
	return id
}
