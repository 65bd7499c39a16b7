package audiocore

// ChainID identifies a Chain within the model. A negative value (NoChainID)
// means "unset" - the zero value of ChainID is a valid id (0), so callers
// must compare against NoChainID rather than the zero value.
type ChainID int32

// NoChainID is the sentinel for "unset".
const NoChainID ChainID = -1

// CatchBufferID identifies a CatchBuffer within the model.
type CatchBufferID int32

// NoCatchBufferID is the sentinel for "unset".
const NoCatchBufferID CatchBufferID = -1

// BufferIdx is a slot index within a channel count's BufferTable.
type BufferIdx int32

// NoBufferIdx is the sentinel for "unset".
const NoBufferIdx BufferIdx = -1

// idGenerator hands out monotonically increasing ids starting at 0, mirroring
// the model's next_id counter. It is only ever touched from within
// UpdatePublish transformers, so it needs no synchronization of its own.
type idGenerator struct {
	next int32
}

func (g *idGenerator) take() int32 {
	id := g.next
	g.next++
	return id
}
