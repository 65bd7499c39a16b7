package audiocore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisherReadReturnsLatestPublishedSnapshot(t *testing.T) {
	p := NewPublisher()

	var id ChainID
	p.UpdatePublish(ParticipantUI, func(m Model) Model {
		var next Model
		next, id = CreateChain(m, 1, BufferSize, ChainOptions{AllocateNow: true}, nil)
		return next
	})

	snap := p.Read()
	chain, ok := snap.Chain(id)
	require.True(t, ok)
	assert.True(t, chain.IsReady())
}

func TestPublisherAudioParticipantCannotUpdatePublish(t *testing.T) {
	p := NewPublisher()
	assert.Panics(t, func() {
		p.UpdatePublish(ParticipantAudio, func(m Model) Model { return m })
	})
}

func TestPublisherSerializesConcurrentUpdaters(t *testing.T) {
	p := NewPublisher()
	const n = 50

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			p.UpdatePublish(ParticipantUI, func(m Model) Model {
				next, _ := CreateChain(m, 1, BufferSize, ChainOptions{AllocateNow: true}, nil)
				return next
			})
		}()
		go func() {
			defer wg.Done()
			p.UpdatePublish(ParticipantAllocator, func(m Model) Model { return m })
		}()
	}
	wg.Wait()

	snap := p.Read()
	assert.Len(t, snap.Chains(), n, "every UI update adds exactly one chain; none should be lost to a racing writer")
}
