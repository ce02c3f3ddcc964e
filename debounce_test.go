package async

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDebounce_TwoPutsWithinWindowDeliverLatest(t *testing.T) {
	c := Debounce[int](30 * time.Millisecond)

	done := make(chan struct{})
	var got int
	c.Take(func(e Envelope[int]) {
		got = e.Value
		close(done)
	})

	c.Put(1, nil)
	time.Sleep(10 * time.Millisecond)
	c.Put(2, nil)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for debounced delivery")
	}
	require.Equal(t, 2, got)
}

func TestDebounce_OnlyOneDeliveryPerQuiescentWindow(t *testing.T) {
	c := Debounce[int](20 * time.Millisecond)

	var count int
	c.Process(func(e Envelope[int], loop func()) {
		if e.Err == nil && !e.IsEnd() {
			count++
		}
		loop()
	})

	c.Put(1, nil)
	c.Put(2, nil)
	c.Put(3, nil)

	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 1, count)
}
