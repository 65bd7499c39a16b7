package audiocore

// pool.go implements C1, the sub-buffer pool: fixed-size contiguous storage
// arrays grouped by channel count, with a per-slot in_use flag. All
// operations here are pure transformers over Model, applied inside
// Publisher.UpdatePublish - the style is adapted from the teacher's tiered
// sync.Pool buffer pool (internal/audiocore/buffer.go in the retrieval
// pack), generalized from three fixed byte-size tiers to an open set of
// tiers keyed by channel count, and specialized to index-based reuse
// instead of sync.Pool (a chain needs a stable, snapshot-shared BufferIdx
// into a growable table, not a borrow-and-return byte slice).

// findUnusedOrCreateNewBuffer implements §4.2's
// find_unused_or_create_new_buffer: reuse the smallest-indexed unused slot
// in BufferTable(channels) if one exists, zeroing it; otherwise append a
// fresh slot (creating the table if this is the first buffer for this
// channel count). Returns the updated model, the slot index, and whether a
// new slot was created (for metrics only - callers must not branch core
// behavior on it).
func findUnusedOrCreateNewBuffer(m Model, channels int) (Model, BufferIdx, bool) {
	table := m.bufferPool[channels]

	for i, info := range table.Infos {
		if !info.InUse {
			table.Services[i].clear()
			m.bufferPool[channels] = table
			return m, BufferIdx(i), false
		}
	}

	svc := newSubBufferService(channels)
	table.Infos = append(table.Infos, BufferInfo{InUse: false})
	table.Services = append(table.Services, svc)
	m.bufferPool[channels] = table
	return m, BufferIdx(len(table.Infos) - 1), true
}

// setInUse implements §4.2's set_in_use.
func setInUse(m Model, channels int, idx BufferIdx) Model {
	table := m.bufferPool[channels]
	table.Infos[idx].InUse = true
	m.bufferPool[channels] = table
	return m
}

// release implements §4.2's release: marks the slot unused without
// zeroing storage. Reuse zeroes it at the next acquisition.
func release(m Model, channels int, idx BufferIdx) Model {
	table := m.bufferPool[channels]
	if int(idx) < 0 || int(idx) >= len(table.Infos) {
		return m
	}
	table.Infos[idx].InUse = false
	m.bufferPool[channels] = table
	return m
}

// subBufferService looks up the shared service handle for a slot.
func subBufferService(m Model, channels int, idx BufferIdx) *SubBufferService {
	table, ok := m.bufferPool[channels]
	if !ok || int(idx) < 0 || int(idx) >= len(table.Services) {
		return nil
	}
	return table.Services[idx]
}

// poolInUseCount reports the number of in_use slots for a channel count,
// used by tests asserting the "total in_use count unchanged" invariant.
func poolInUseCount(m Model, channels int) int {
	table := m.bufferPool[channels]
	n := 0
	for _, info := range table.Infos {
		if info.InUse {
			n++
		}
	}
	return n
}
