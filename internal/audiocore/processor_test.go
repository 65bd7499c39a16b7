package audiocore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessCopiesAllFramesUnaligned(t *testing.T) {
	src := make([]float32, 100)
	for i := range src {
		src[i] = float32(i)
	}
	dst := make([]float32, 100)

	cfg := ProcessorConfig{ChunkSize: 16}
	produced := Process(cfg, len(src), func(start, want int) int {
		n := copy(dst[start:start+want], src[start:start+want])
		return n
	}, func(start, n int) bool { return true })

	assert.Equal(t, 100, produced)
	assert.Equal(t, src, dst)
}

func TestProcessHonorsInputAlignment(t *testing.T) {
	const alignment = 10
	cfg := ProcessorConfig{ChunkSize: 32, InputRegionAlignment: alignment}

	var gotStarts, gotWants []int
	Process(cfg, 25, func(start, want int) int {
		gotStarts = append(gotStarts, start)
		gotWants = append(gotWants, want)
		return want
	}, func(start, n int) bool { return true })

	for i, start := range gotStarts {
		end := start + gotWants[i]
		assert.Equal(t, start/alignment, (end-1)/alignment, "chunk [%d,%d) crosses an alignment boundary", start, end)
	}
}

func TestProcessStopsOnShortPull(t *testing.T) {
	cfg := ProcessorConfig{ChunkSize: 10}
	calls := 0
	produced := Process(cfg, 100, func(start, want int) int {
		calls++
		if calls == 3 {
			return 4 // short: end of input mid-chunk
		}
		return want
	}, func(start, n int) bool { return true })

	assert.Equal(t, 24, produced) // two full 10-frame chunks + one short 4-frame chunk
	assert.Equal(t, 3, calls)
}

func TestProcessStopsOnPushFailure(t *testing.T) {
	cfg := ProcessorConfig{ChunkSize: 10}
	pushes := 0
	produced := Process(cfg, 100, func(start, want int) int {
		return want
	}, func(start, n int) bool {
		pushes++
		return pushes < 3
	})

	assert.Equal(t, 20, produced)
	assert.Equal(t, 3, pushes)
}

func TestProcessZeroChunkSizeProducesNothing(t *testing.T) {
	produced := Process(ProcessorConfig{}, 100, func(start, want int) int {
		t.Fatal("pull should never be called")
		return 0
	}, func(start, n int) bool { return true })
	assert.Zero(t, produced)
}

func TestClampToAlignment(t *testing.T) {
	assert.Equal(t, 5, clampToAlignment(5, 10, 10))
	assert.Equal(t, 10, clampToAlignment(10, 10, 10))
	assert.Equal(t, 8, clampToAlignment(2, 10, 10))
	assert.Equal(t, 3, clampToAlignment(0, 3, 0))
}
