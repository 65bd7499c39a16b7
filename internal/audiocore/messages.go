package audiocore

import "sync/atomic"

// messages.go implements C7: the two single-producer-single-consumer
// channels connecting the audio and UI participants. No typed lock-free
// SPSC queue library appears anywhere in the dependency surface this
// module draws from (the one byte-stream ring buffer found in the pack,
// smallnest/ringbuffer, is unsuitable for typed variant messages - see the
// design ledger), so this uses a buffered Go channel per direction: a
// single buffered channel is itself a valid bounded SPSC queue, and a
// non-blocking send via select+default gives the audio side the
// never-blocks guarantee §5 requires.

// Command is a UI-to-audio message.
type Command struct {
	Kind          CommandKind
	CatchBufferID CatchBufferID
	Region        Region
}

// CommandKind enumerates UI-to-audio command variants.
type CommandKind int

const (
	CommandPlaybackStart CommandKind = iota
	CommandPlaybackStop
)

// Event is an audio-to-UI message.
type Event struct {
	Kind          EventKind
	CatchBufferID CatchBufferID
	Region        Region
	Beg           uint64
	SizeApprox    int
}

// EventKind enumerates audio-to-UI event variants.
type EventKind int

const (
	EventRecordingStarted EventKind = iota
	EventRecordingFinished
	EventPlaybackFinished
	EventWarnQueueFull
)

// MessageQueues holds the pair of bounded channel-backed SPSC queues
// connecting audio and UI, plus the one-shot latch guarding the
// warn_queue_full notice.
type MessageQueues struct {
	commands chan Command
	events   chan Event

	warnedOverflow atomic.Bool
}

// NewMessageQueues allocates both queues with the given capacity.
func NewMessageQueues(capacity int) *MessageQueues {
	if capacity <= 0 {
		capacity = 1
	}
	return &MessageQueues{
		commands: make(chan Command, capacity),
		events:   make(chan Event, capacity),
	}
}

// SendCommand is the UI-side enqueue. UI may block briefly per §5; a
// buffered channel send that blocks only when genuinely full is acceptable
// here, but UI operations in this module never let the queue fill under
// normal operation, so a non-blocking attempt keeps UI itself non-blocking
// too: a full queue drops the command and returns false, without logging.
func (q *MessageQueues) SendCommand(c Command) bool {
	select {
	case q.commands <- c:
		return true
	default:
		return false
	}
}

// RecvCommand is the audio-side non-blocking dequeue, called once per
// quantum before processing.
func (q *MessageQueues) RecvCommand() (Command, bool) {
	select {
	case c := <-q.commands:
		return c, true
	default:
		return Command{}, false
	}
}

// SendEvent is the audio-side enqueue: never blocks. On overflow it enqueues
// a single warn_queue_full notice (once per MessageQueues value, latched by
// warnedOverflow; each Service has its own queues and so its own latch),
// best-effort, then still attempts to enqueue the original event.
func (q *MessageQueues) SendEvent(e Event) {
	select {
	case q.events <- e:
		return
	default:
	}

	if q.warnedOverflow.CompareAndSwap(false, true) {
		select {
		case q.events <- Event{Kind: EventWarnQueueFull, SizeApprox: len(q.events)}:
		default:
		}
	}

	select {
	case q.events <- e:
	default:
	}
}

// RecvEvent is the UI-side non-blocking dequeue, drained to exhaustion once
// per UI tick per §4.7 step 1.
func (q *MessageQueues) RecvEvent() (Event, bool) {
	select {
	case e := <-q.events:
		return e, true
	default:
		return Event{}, false
	}
}
