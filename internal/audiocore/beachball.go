package audiocore

import "sync/atomic"

// orientation tracks which participant currently holds the beach-ball -
// i.e. whose turn it is to stage or consume mipmap bookkeeping.
type orientation int32

const (
	orientedToAudio orientation = iota // audio may stage; UI must skip
	orientedToUI                       // UI may consume; audio must skip
)

// beachBall is the lock-free, opportunistic two-player coordination token
// described in the design notes: exactly one of {audio, ui} may access the
// mipmap staging buffers at a time, and whichever side does not currently
// hold the ball simply skips its work for this tick rather than waiting.
// This is a deliberate design decision (see the package's design notes):
// strict ping-pong would force the audio thread to block on the UI thread,
// violating the "audio never blocks" rule, so the transfer is opportunistic.
type beachBall struct {
	state atomic.Int32
}

func newBeachBall() *beachBall {
	b := &beachBall{}
	b.state.Store(int32(orientedToAudio))
	return b
}

// tryAudioTurn reports whether the audio side may stage this tick; if so it
// atomically hands the ball to the UI side.
func (b *beachBall) tryAudioTurn() bool {
	return b.state.CompareAndSwap(int32(orientedToAudio), int32(orientedToUI))
}

// tryUITurn reports whether the UI side may consume this tick; if so it
// atomically hands the ball back to the audio side.
func (b *beachBall) tryUITurn() bool {
	return b.state.CompareAndSwap(int32(orientedToUI), int32(orientedToAudio))
}
