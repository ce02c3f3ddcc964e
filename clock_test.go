package async

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClock_TicksMonotonically(t *testing.T) {
	cl := NewClock(10 * time.Millisecond)
	defer cl.Stop()

	var got []int
	done := make(chan struct{})

	var step func()
	step = func() {
		cl.Chan().Take(func(e Envelope[int]) {
			got = append(got, e.Value)
			if len(got) == 3 {
				close(done)
				return
			}
			step()
		})
	}
	step()
	cl.Start()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ticks")
	}
	require.Equal(t, []int{1, 2, 3}, got)
}

func TestClock_StopHaltsTicking(t *testing.T) {
	cl := NewClock(10 * time.Millisecond)
	cl.Start()
	time.Sleep(25 * time.Millisecond)
	cl.Stop()

	var count int
	cl.Chan().Take(func(Envelope[int]) { count++ })
	time.Sleep(50 * time.Millisecond)
	require.LessOrEqual(t, count, 1)
}

func TestClock_StartTwiceIsNoop(t *testing.T) {
	cl := NewClock(time.Hour)
	cl.Start()
	cl.Start()
	cl.Stop()
}
