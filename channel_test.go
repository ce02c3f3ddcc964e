package async

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// recvStep waits up to a generous timeout for got to be signalled, matching
// the teacher's recvStep-style helper for timing-sensitive assertions (no
// bare sleep-and-assert).
func recvStep(t *testing.T, got <-chan struct{}) {
	t.Helper()
	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for callback")
	}
}

func TestChannel_Rendezvous_TakeThenPut(t *testing.T) {
	c := NewChannel[int]()
	done := make(chan struct{})

	var gotValue int
	c.Take(func(e Envelope[int]) {
		gotValue = e.Value
		close(done)
	})
	c.Put(7, nil)

	recvStep(t, done)
	require.Equal(t, 7, gotValue)
}

func TestChannel_Rendezvous_PutThenTake(t *testing.T) {
	c := NewChannel[string]()
	ackDone := make(chan struct{})
	takeDone := make(chan struct{})

	c.Put("hello", func(e Envelope[string]) {
		require.Equal(t, "hello", e.Value)
		close(ackDone)
	})
	c.Take(func(e Envelope[string]) {
		require.Equal(t, "hello", e.Value)
		close(takeDone)
	})

	recvStep(t, ackDone)
	recvStep(t, takeDone)
}

func TestChannel_Backlog_CanRead_CanWrite(t *testing.T) {
	c := NewChannel[int]()
	require.Equal(t, 0, c.Backlog())
	require.False(t, c.CanRead())
	require.True(t, c.CanWrite())

	c.Put(1, nil)
	// give the scheduler a moment to run the put's synchronous bookkeeping;
	// Put's queue mutation is synchronous, only the ack/cb dispatch defers.
	require.Eventually(t, func() bool { return c.Backlog() == 1 }, time.Second, time.Millisecond)
	require.True(t, c.CanRead())
	require.False(t, c.CanWrite())
}

func TestChannel_End_SatisfiesParkedWaiters(t *testing.T) {
	c := NewChannel[int]()
	done := make(chan struct{})

	c.Take(func(e Envelope[int]) {
		require.True(t, e.IsEnd())
		close(done)
	})
	c.End()

	recvStep(t, done)
}

func TestChannel_End_Idempotent(t *testing.T) {
	c := NewChannel[int]()
	count := 0
	c.td.chain(func() { count++ })
	c.End()
	c.End()
	c.End()
	require.Equal(t, 1, count)
}

func TestChannel_Fill_TakeYieldsConstant(t *testing.T) {
	c := NewChannel[int]()
	c.Fill(42)

	done := make(chan struct{})
	var got int
	c.Take(func(e Envelope[int]) {
		got = e.Value
		close(done)
	})
	recvStep(t, done)
	require.Equal(t, 42, got)
}

func TestChannel_Fill_PutFails(t *testing.T) {
	c := NewChannel[int]()
	c.Fill(1)

	done := make(chan struct{})
	var gotErr error
	c.Put(99, func(e Envelope[int]) {
		gotErr = e.Err
		close(done)
	})
	recvStep(t, done)
	require.ErrorIs(t, gotErr, ErrFilled)
}

func TestChannel_Fill_ParkedWaiterSatisfiedImmediately(t *testing.T) {
	c := NewChannel[int]()
	done := make(chan struct{})
	var got int
	c.Take(func(e Envelope[int]) {
		got = e.Value
		close(done)
	})
	c.Fill(5)
	recvStep(t, done)
	require.Equal(t, 5, got)
}

func TestChannel_Fill_Idempotent(t *testing.T) {
	c := NewChannel[int]()
	c.Fill(1)
	c.Fill(2)

	done := make(chan struct{})
	var got int
	c.Take(func(e Envelope[int]) {
		got = e.Value
		close(done)
	})
	recvStep(t, done)
	require.Equal(t, 1, got)
}

func TestChannel_AckInvokedExactlyOnce(t *testing.T) {
	c := NewChannel[int]()
	acks := 0
	done := make(chan struct{})

	c.Take(func(Envelope[int]) {})
	c.Put(1, func(Envelope[int]) {
		acks++
		close(done)
	})
	recvStep(t, done)
	require.Equal(t, 1, acks)
}

func TestChannel_FanInOrder_PreservedWithinChannel(t *testing.T) {
	c := NewChannel[int]()
	var order []int
	done := make(chan struct{})

	for i := 0; i < 3; i++ {
		c.Put(i, nil)
	}

	n := 0
	var step func()
	step = func() {
		c.Take(func(e Envelope[int]) {
			order = append(order, e.Value)
			n++
			if n == 3 {
				close(done)
				return
			}
			step()
		})
	}
	step()

	recvStep(t, done)
	require.Equal(t, []int{0, 1, 2}, order)
}
