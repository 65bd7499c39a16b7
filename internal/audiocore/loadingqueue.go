package audiocore

// loadingqueue.go implements C4: the ordered pending-chain descriptor queue
// the allocator thread drains, plus the small comparison helper UI Update
// uses to decide whether to wake the allocator (§4.7 step 4: "if the
// loading-queue changed in the new snapshot, notify the allocator's
// condition variable").

// loadingQueueChanged reports whether the loading queue differs between two
// snapshots. The design notes accept either "notify iff changed" (what this
// implements) or "notify unconditionally on every mutating publish" as
// correct, as long as notifications are never lost after a producer-visible
// append; this implementation chooses the more selective comparison to
// avoid waking the allocator thread on unrelated UI mutations.
func loadingQueueChanged(prev, next []LoadingChain) bool {
	if len(prev) != len(next) {
		return true
	}
	for i := range prev {
		if prev[i].User != next[i].User || len(prev[i].Buffers) != len(next[i].Buffers) {
			return true
		}
	}
	return false
}
