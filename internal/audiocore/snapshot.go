package audiocore

import (
	"sync"
	"sync/atomic"
)

// snapshot.go implements C6: the Publisher, the single point of contention
// between the UI and allocator participants and the wait-free read path the
// audio participant uses every quantum. Grounded on the teacher's
// atomic.Pointer-based config/snapshot swap idiom (see internal/conf in the
// retrieval pack, which republishes a full settings snapshot under a mutex
// on writers and reads it lock-free), generalized here from a single config
// struct to the full audiocore Model.
type Publisher struct {
	current atomic.Pointer[Model]

	// publishMu serializes UpdatePublish across UI and allocator: per §6,
	// those two participants may call it concurrently, and the transformer
	// must see a consistent prior snapshot to fold its edit onto.
	publishMu sync.Mutex
}

// NewPublisher returns a Publisher seeded with an empty Model.
func NewPublisher() *Publisher {
	p := &Publisher{}
	m := NewModel()
	p.current.Store(&m)
	return p
}

// Read returns the current snapshot. Wait-free: a single atomic load, safe
// to call from the audio participant every quantum.
func (p *Publisher) Read() Model {
	return *p.current.Load()
}

// UpdatePublish applies f to a clone of the current snapshot and publishes
// the result. Only ParticipantUI and ParticipantAllocator may call this;
// ParticipantAudio never mutates the model, so calling from it is a
// programmer error caught immediately rather than silently corrupting
// state shared with a thread that must never block.
//
// Serialized via publishMu: the two non-real-time participants may race to
// publish, but the model's invariants (e.g. "total in_use count only
// changes via pool.go's primitives") depend on transformers seeing a
// mutually consistent base, not on interleaving arbitrarily with a
// half-applied edit.
func (p *Publisher) UpdatePublish(participant Participant, f func(Model) Model) Model {
	if participant == ParticipantAudio {
		panic("audiocore: ParticipantAudio must never call UpdatePublish")
	}

	p.publishMu.Lock()
	defer p.publishMu.Unlock()

	base := p.Read().clone()
	next := f(base)
	p.current.Store(&next)
	return next
}
