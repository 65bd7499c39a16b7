// Package audiocore implements the real-time audio buffer management core:
// pooled sub-buffer allocation shared across chains of identical channel
// count, background incremental allocation so the audio and UI paths never
// block on memory, lock-free publication of an immutable model snapshot
// observed by three cooperating participants, and a gated record /
// partitioned-playback ring buffer (the "catch buffer") with a
// concurrently inspectable mipmap.
//
// # Participants
//
// Three participants share one Service:
//
//   - audio: invoked once per DSP quantum of Q frames at hard real-time
//     priority. Never allocates, never locks, never blocks.
//   - ui: runs at interactive cadence, owns every mutation of the published
//     model (create/resize/destroy) and may block briefly.
//   - allocator: a single background goroutine that advances loading chains
//     one sub-buffer at a time.
//
// # Data flow
//
// The UI mutates the model through copy-on-write transformers passed to the
// snapshot Publisher's UpdatePublish. The audio participant only calls Read
// and mutates per-entity real-time state through atomics held inside shared
// sub-buffer and catch-buffer service handles - it never calls
// UpdatePublish.
//
// # Thread-safety
//
//   - Publisher.Read is wait-free and safe from any goroutine.
//   - Publisher.UpdatePublish serializes UI and allocator callers through an
//     internal mutex; the audio goroutine never calls it.
//   - Chain's scary_read/scary_write family is explicitly unsynchronized:
//     callers establish mutual exclusion externally (the catch buffer's
//     ring partitioning is the one protocol this package ships).
//   - SubBufferService.storage is likewise unsynchronized; the mipmap
//     staging exchange between audio and UI is mediated by a lock-free
//     two-player beach-ball token, never a mutex.
package audiocore
