package async

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTap_ForwardsToSubscriberAndRealTaker(t *testing.T) {
	src := NewChannel[int]()
	tapped := Tap(src, nil)

	takerDone := make(chan struct{})
	tapDone := make(chan struct{})
	var takerGot, tapGot int

	src.Take(func(e Envelope[int]) { takerGot = e.Value; close(takerDone) })
	tapped.Take(func(e Envelope[int]) { tapGot = e.Value; close(tapDone) })

	src.Put(9, nil)

	recvStep(t, takerDone)
	recvStep(t, tapDone)
	require.Equal(t, 9, takerGot)
	require.Equal(t, 9, tapGot)
}

func TestTap_DoesNotPileUpWhenNoRealTaker(t *testing.T) {
	src := NewChannel[int]()
	tapped := Tap(src, nil)

	tapDone := make(chan struct{})
	tapped.Take(func(Envelope[int]) { close(tapDone) })

	src.Put(1, nil)
	recvStep(t, tapDone)

	require.Equal(t, 0, src.Backlog())
}

func TestTap_WithTapBufferBoundsImplicitChannelDepth(t *testing.T) {
	src := NewChannel[int]()
	tapped := Tap(src, nil, WithTapBuffer(1))

	src.Put(1, nil) // fills the tap buffer's single slot.
	src.Put(2, nil) // no taker parked on tapped: this one is dropped.

	done := make(chan struct{})
	var got int
	tapped.Take(func(e Envelope[int]) { got = e.Value; close(done) })
	recvStep(t, done)
	require.Equal(t, 1, got)
	require.Equal(t, 0, tapped.Backlog())
}

func TestTap_Detach(t *testing.T) {
	src := NewChannel[int]()
	tapped := Tap(src, nil)
	tapped.End()

	gotTap := false
	tapped.Take(func(e Envelope[int]) {
		if !e.IsEnd() {
			gotTap = true
		}
	})

	src.Put(1, nil)
	require.Never(t, func() bool { return gotTap }, recvTimeout, recvTick)
}
