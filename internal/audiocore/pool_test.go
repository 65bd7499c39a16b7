package audiocore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindUnusedOrCreateNewBufferCreatesFirstSlot(t *testing.T) {
	m := NewModel()

	m, idx, created := findUnusedOrCreateNewBuffer(m, 2)
	assert.True(t, created)
	assert.Equal(t, BufferIdx(0), idx)

	table, ok := m.BufferTable(2)
	require.True(t, ok)
	require.Len(t, table.Infos, 1)
	assert.False(t, table.Infos[0].InUse)
}

func TestFindUnusedOrCreateNewBufferReusesReleasedSlot(t *testing.T) {
	m := NewModel()
	m, idx0, _ := findUnusedOrCreateNewBuffer(m, 1)
	m = setInUse(m, 1, idx0)

	svc := subBufferService(m, 1, idx0)
	svc.Storage[0] = 1.5

	m = release(m, 1, idx0)

	m, idx1, created := findUnusedOrCreateNewBuffer(m, 1)
	assert.False(t, created, "should reuse the released slot rather than create a new one")
	assert.Equal(t, idx0, idx1)
	assert.Zero(t, svc.Storage[0], "reacquired storage must be zeroed")
}

func TestFindUnusedOrCreateNewBufferPerChannelCountIsolated(t *testing.T) {
	m := NewModel()
	m, monoIdx, _ := findUnusedOrCreateNewBuffer(m, 1)
	m = setInUse(m, 1, monoIdx)

	m, stereoIdx, created := findUnusedOrCreateNewBuffer(m, 2)
	assert.True(t, created, "channel count 2 has no slots yet, independent of channel count 1")
	assert.Equal(t, BufferIdx(0), stereoIdx)
}

func TestReleaseDoesNotZeroStorage(t *testing.T) {
	m := NewModel()
	m, idx, _ := findUnusedOrCreateNewBuffer(m, 1)
	m = setInUse(m, 1, idx)
	svc := subBufferService(m, 1, idx)
	svc.Storage[0] = 42

	m = release(m, 1, idx)
	assert.Equal(t, float32(42), svc.Storage[0], "release must not zero storage; only reacquisition does")
	assert.False(t, m.bufferPool[1].Infos[idx].InUse)
}

func TestPoolInUseCountTracksAcquisitions(t *testing.T) {
	m := NewModel()
	assert.Zero(t, poolInUseCount(m, 1))

	m, idx0, _ := findUnusedOrCreateNewBuffer(m, 1)
	m = setInUse(m, 1, idx0)
	m, idx1, _ := findUnusedOrCreateNewBuffer(m, 1)
	m = setInUse(m, 1, idx1)
	assert.Equal(t, 2, poolInUseCount(m, 1))

	m = release(m, 1, idx0)
	assert.Equal(t, 1, poolInUseCount(m, 1))
}

func TestSubBufferServiceUnknownSlotReturnsNil(t *testing.T) {
	m := NewModel()
	assert.Nil(t, subBufferService(m, 1, 0))

	m, idx, _ := findUnusedOrCreateNewBuffer(m, 1)
	assert.Nil(t, subBufferService(m, 1, idx+1))
}
