package audiocore

// Participant is the thread-tag witness of §6: every public operation is
// annotated by which participant may invoke it. C++ encodes this as
// distinct tag types selecting overloads at compile time; Go has no
// zero-cost equivalent, so this package uses a runtime marker instead. The
// tradeoff is documented in the design ledger: calling UpdatePublish with
// ParticipantAudio is a programmer error caught immediately (it panics)
// rather than rejected at compile time.
type Participant int

const (
	// ParticipantUI is the interactive participant: owns all model mutation.
	ParticipantUI Participant = iota
	// ParticipantAllocator is the background buffer-allocation thread.
	ParticipantAllocator
	// ParticipantAudio is the hard-real-time participant. Never mutates the
	// published model; only reads snapshots and touches per-entity atomics.
	ParticipantAudio
)

func (p Participant) String() string {
	switch p {
	case ParticipantUI:
		return "ui"
	case ParticipantAllocator:
		return "allocator"
	case ParticipantAudio:
		return "audio"
	default:
		return "unknown"
	}
}
