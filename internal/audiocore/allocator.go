package audiocore

import (
	"context"
	"log/slog"
)

// allocator.go implements C8: the background thread that drains the
// loading queue one sub-buffer at a time per wake, grounded on §4.4's
// pop-back/cancel/progress/complete state machine. Modeled on the
// teacher's worker-loop idiom (a select over a context and a buffered
// wake channel standing in for a condition variable - see the retrieval
// pack's diskmanager/processing_pipeline goroutine loops, which use the
// same shape: block on ctx.Done() or a signal channel, otherwise keep
// draining work until none remains).
type Allocator struct {
	publisher *Publisher
	queues    *MessageQueues

	// wake is a capacity-1 channel: a non-blocking send coalesces multiple
	// notifications between wakeups, the Go idiom for a condition variable
	// with no waitable predicate state of its own.
	wake chan struct{}

	logger *slog.Logger
}

// NewAllocator constructs an allocator bound to the given publisher.
func NewAllocator(publisher *Publisher, queues *MessageQueues) *Allocator {
	return &Allocator{
		publisher: publisher,
		queues:    queues,
		wake:      make(chan struct{}, 1),
		logger:    loggerFor("allocator"),
	}
}

// Notify wakes the allocator loop if it is currently blocked. Called by UI
// Update (§4.7 step 4) whenever a publish changes the loading queue, and by
// CreateChain/ResizeChain callers who enqueue work without allocate_now.
func (a *Allocator) Notify() {
	select {
	case a.wake <- struct{}{}:
	default:
	}
}

// Run drains the loading queue until ctx is cancelled. One call to
// doOneAllocation per iteration, re-checking the queue after each step so a
// newly arrived LoadingChain is picked up without waiting for another wake.
func (a *Allocator) Run(ctx context.Context) {
	for {
		if len(a.publisher.Read().LoadingChains()) == 0 {
			select {
			case <-ctx.Done():
				return
			case <-a.wake:
				continue
			}
		}

		select {
		case <-ctx.Done():
			return
		default:
		}

		a.doOneAllocation()
	}
}

// doOneAllocation implements §4.4: pop the back of the loading queue
// (LIFO, matching the source's "pop_back" discipline), reconcile a
// cancelled chain by releasing what it had acquired, otherwise allocate one
// more sub-buffer and either requeue with updated progress or complete the
// chain.
func (a *Allocator) doOneAllocation() {
	a.publisher.UpdatePublish(ParticipantAllocator, func(m Model) Model {
		n := len(m.loadingChains)
		if n == 0 {
			return m
		}
		lc := m.loadingChains[n-1]
		m.loadingChains = m.loadingChains[:n-1]

		chain, exists := m.chains[lc.User]
		if !exists {
			for _, idx := range lc.Buffers {
				m = release(m, lc.Channels, idx)
			}
			currentMetrics().RecordAllocationCancel()
			return m
		}

		var idx BufferIdx
		m, idx, _ = findUnusedOrCreateNewBuffer(m, lc.Channels)
		m = setInUse(m, lc.Channels, idx)
		lc.Buffers = append(lc.Buffers, idx)

		required := requiredBufferCount(chain.FrameCount)
		if len(lc.Buffers) < required {
			chain.LoadProgress = float64(len(lc.Buffers)) / float64(required)
			m.chains[lc.User] = chain
			m.loadingChains = append(m.loadingChains, lc)
		} else {
			chain.Buffers = lc.Buffers
			chain.LoadProgress = 1
			chain.Flags = chain.Flags.without(ChainFlagLoading)
			m.chains[lc.User] = chain
		}
		currentMetrics().RecordAllocationStep()
		return m
	})
}
