package async

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFanout_NoDistributionBeforeStart(t *testing.T) {
	src := NewChannel[int]()
	dst := NewChannel[int]()
	f := NewFanout(src)
	f.Connect(dst)

	src.Put(1, nil)

	gotDst := false
	dst.Take(func(Envelope[int]) { gotDst = true })
	require.Never(t, func() bool { return gotDst }, recvTimeout, recvTick)
}

func TestFanout_DistributesAfterStart(t *testing.T) {
	src := NewChannel[int]()
	dst := NewChannel[int]()
	f := NewFanout(src)
	f.Connect(dst)
	f.Start(context.Background())

	done := make(chan struct{})
	var got int
	dst.Take(func(e Envelope[int]) { got = e.Value; close(done) })

	src.Put(5, nil)
	recvStep(t, done)
	require.Equal(t, 5, got)
}

func TestFanout_EndStopsLoopAndEndsConnections(t *testing.T) {
	src := NewChannel[int]()
	dst := NewChannel[int]()
	f := NewFanout(src)
	f.Connect(dst)
	f.Start(context.Background())

	done := make(chan struct{})
	dst.Take(func(e Envelope[int]) {
		require.True(t, e.IsEnd())
		close(done)
	})

	src.End()
	recvStep(t, done)
}

func TestFanout_ContextCancelStopsLoopAndEndsConnections(t *testing.T) {
	src := NewChannel[int]()
	dst := NewChannel[int]()
	f := NewFanout(src)
	f.Connect(dst)

	ctx, cancel := context.WithCancel(context.Background())
	f.Start(ctx)

	valueDone := make(chan struct{})
	var got int
	dst.Take(func(e Envelope[int]) { got = e.Value; close(valueDone) })

	// Cancellation before the in-flight Take resolves only takes effect on
	// the loop's next iteration, not by aborting the pending Take.
	cancel()
	src.Put(2, nil)
	recvStep(t, valueDone)
	require.Equal(t, 2, got)

	endDone := make(chan struct{})
	dst.Take(func(e Envelope[int]) {
		require.True(t, e.IsEnd())
		close(endDone)
	})
	recvStep(t, endDone)
}

func TestFanout_Disconnect(t *testing.T) {
	src := NewChannel[int]()
	dst1 := NewChannel[int]()
	dst2 := NewChannel[int]()
	f := NewFanout(src)
	f.Connect(dst1, dst2)
	f.Disconnect(dst1)
	f.Start(context.Background())

	done := make(chan struct{})
	var got int
	dst2.Take(func(e Envelope[int]) { got = e.Value; close(done) })

	got1 := false
	dst1.Take(func(Envelope[int]) { got1 = true })

	src.Put(3, nil)
	recvStep(t, done)
	require.Equal(t, 3, got)
	require.Never(t, func() bool { return got1 }, recvTimeout, recvTick)
}
