package audiocore

// processor.go implements §4.3.2: a generic chunked read/write pump used by
// ScaryReadChunked/ScaryWriteChunked in chain.go, which supply an
// InputStartXform translating the pump's linear position into an absolute
// chain position. The catch buffer has no bulk read or copy built on this
// pump. The per-quantum
// record/playback path does not need this pump: the catch buffer's
// invariant (Q divides BufferSize, 2P is a multiple of BufferSize) keeps
// every per-quantum access within a single sub-buffer, so it goes straight
// through the single-region scary accessors in chain.go.
//
// This replaces the teacher's source/analyzer oriented ProcessorChain
// (internal/audiocore/processor.go in the retrieval pack, which pipelines
// AudioProcessor stages over AudioData) with the spec's notion of a
// processor: a pull/push pump over a single chain's storage. The
// struct-based pump style and the chunk-size/alignment bookkeeping are
// grounded on that file and on chunk_buffer_v2.go's target-size
// accumulation logic.

// ProcessorConfig carries the pump's compile-time-in-the-original parameters
// as runtime configuration.
type ProcessorConfig struct {
	// InputRegionAlignment, if non-zero, means a chunk handed to PullInput
	// never spans a multiple of this alignment.
	InputRegionAlignment int
	// OutputRegionAlignment, if non-zero, applies the same constraint to
	// PushOutput.
	OutputRegionAlignment int
	// ChunkSize upper-bounds chunk granularity.
	ChunkSize int
	// FixedChunkSize requires every non-final chunk to be exactly ChunkSize.
	FixedChunkSize bool
	// InputStartXform optionally translates a linear input position (frames
	// since the pump's logical start) into an absolute read position -
	// the chunked chain accessors use this to offset by the span's start.
	InputStartXform func(linearStart int) int
}

// PullInput is called with the next candidate chunk's [start, start+want)
// span (already alignment-clamped) and must read up to want frames,
// returning how many it actually produced. It may produce fewer than want
// only at end of input.
type PullInput func(start, want int) (produced int)

// PushOutput is called with the next candidate output span's
// [start, start+n) and must consume exactly n frames, returning false if it
// could not (short write), which terminates the pump.
type PushOutput func(start, n int) (ok bool)

// clampToAlignment shrinks [start, start+n) so it does not cross the next
// multiple of alignment after start, when alignment is non-zero.
func clampToAlignment(start, n, alignment int) int {
	if alignment <= 0 || n <= 0 {
		return n
	}
	nextBoundary := ((start / alignment) + 1) * alignment
	if start+n > nextBoundary {
		return nextBoundary - start
	}
	return n
}

// Process runs the generic pump over [0, totalFrames) of logical input
// position, pulling through pull and pushing through push, honoring cfg.
// It returns the number of frames actually produced into the output.
func Process(cfg ProcessorConfig, totalFrames int, pull PullInput, push PushOutput) int {
	if cfg.ChunkSize <= 0 {
		return 0
	}

	produced := 0
	inPos := 0

	for inPos < totalFrames {
		remaining := totalFrames - inPos
		want := cfg.ChunkSize
		if want > remaining {
			want = remaining
		}
		if cfg.FixedChunkSize && want < cfg.ChunkSize && remaining >= cfg.ChunkSize {
			want = cfg.ChunkSize
		}

		readStart := inPos
		if cfg.InputStartXform != nil {
			readStart = cfg.InputStartXform(inPos)
		}
		want = clampToAlignment(readStart, want, cfg.InputRegionAlignment)
		if want <= 0 {
			break
		}

		got := pull(readStart, want)
		if got <= 0 {
			break
		}

		outStart := produced
		outWant := clampToAlignment(outStart, got, cfg.OutputRegionAlignment)
		if outWant <= 0 {
			break
		}
		if !push(outStart, outWant) {
			break
		}

		produced += outWant
		inPos += outWant

		if got < want {
			// Input exhausted mid-chunk: final, possibly short, chunk done.
			break
		}
		if outWant < got {
			// Output accepted less than input produced: stop, per spec
			// ("terminate when... output returned short").
			break
		}
	}

	return produced
}
