package async

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduler_Defer_RunsAfterCallerReturns(t *testing.T) {
	s := NewScheduler()
	ran := false
	done := make(chan struct{})
	s.Defer(func() {
		ran = true
		close(done)
	})
	require.False(t, ran)
	recvStep(t, done)
	require.True(t, ran)
}

func TestScheduler_Defer_FIFOOrderSameTick(t *testing.T) {
	s := NewScheduler()
	var mu sync.Mutex
	var order []int
	done := make(chan struct{})

	s.Defer(func() {
		mu.Lock()
		order = append(order, 1)
		mu.Unlock()
		// Scheduling from within a running continuation enqueues onto the
		// same queue rather than recursing.
		s.Defer(func() {
			mu.Lock()
			order = append(order, 3)
			mu.Unlock()
			close(done)
		})
	})
	s.Defer(func() {
		mu.Lock()
		order = append(order, 2)
		mu.Unlock()
	})

	recvStep(t, done)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{1, 2, 3}, order)
}

func TestScheduler_Defer_ManyConcurrentCallersDrainExactlyOnce(t *testing.T) {
	s := NewScheduler()
	const n = 200
	var counter int
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			s.Defer(func() {
				mu.Lock()
				counter++
				mu.Unlock()
			})
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return counter == n
	}, 2*time.Second, 5*time.Millisecond)
}
