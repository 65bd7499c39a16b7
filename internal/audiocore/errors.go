package audiocore

import (
	"github.com/fenwick-audio/adrian/internal/errors"
)

// ComponentAudioCore identifies this package in error telemetry and in the
// errors package's component registry.
const ComponentAudioCore = "audiocore"

// Sentinel errors for audiocore's external operations. Internal model
// transformers (pool.go, chain.go, catchbuffer.go) mostly degrade to silent
// no-ops on bad input per the spec's edge-case table - out-of-range frame
// indices, unknown ids - since those are expected, frequent conditions on
// the UI thread, not exceptional ones. These sentinels cover the cases the
// spec calls out as real errors: a region access that breaks the
// single-sub-buffer precondition, and a host misconfiguration caught at
// service construction time.
var (
	// ErrRegionCrossesSubBuffer is returned when a "scary" single-region
	// read/write's span does not lie within one sub-buffer.
	ErrRegionCrossesSubBuffer = errors.New(errors.NewStd("audiocore: region crosses a sub-buffer boundary")).
					Component(ComponentAudioCore).
					Category(errors.CategoryValidation).
					Context("operation", "scary_region_access").
					Build()

	// ErrCatchBufferCapacityMisaligned is returned when a catch buffer is
	// created or reconfigured with a capacity P that is not a multiple of
	// BufferSize, violating the ring-correctness invariant of §4.5.
	ErrCatchBufferCapacityMisaligned = errors.New(errors.NewStd("audiocore: catch buffer capacity is not a multiple of BufferSize")).
						Component(ComponentAudioCore).
						Category(errors.CategoryValidation).
						Context("resource", "catch_buffer").
						Build()

	// ErrQuantumMisaligned is returned when the configured DSP quantum does
	// not evenly divide BufferSize, violating the same invariant from the
	// other side.
	ErrQuantumMisaligned = errors.New(errors.NewStd("audiocore: DSP quantum does not divide BufferSize")).
				Component(ComponentAudioCore).
				Category(errors.CategoryValidation).
				Context("resource", "dsp_quantum").
				Build()

	// ErrUnknownChain is returned by service-level operations addressing a
	// chain id absent from the current snapshot.
	ErrUnknownChain = errors.New(errors.NewStd("audiocore: unknown chain")).
			Component(ComponentAudioCore).
			Category(errors.CategoryNotFound).
			Context("resource", "chain").
			Build()

	// ErrUnknownCatchBuffer is returned by service-level operations
	// addressing a catch buffer id absent from the current snapshot.
	ErrUnknownCatchBuffer = errors.New(errors.NewStd("audiocore: unknown catch buffer")).
				Component(ComponentAudioCore).
				Category(errors.CategoryNotFound).
				Context("resource", "catch_buffer").
				Build()
)
