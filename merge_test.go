package async

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMerge_InterleavesSourcesWithProvenance(t *testing.T) {
	a := NewChannel[int]()
	b := NewChannel[int]()
	m := Merge(a, b)

	var got []ChannelValue[int]
	done := make(chan struct{})

	var collect func()
	collect = func() {
		m.Out().Take(func(e Envelope[ChannelValue[int]]) {
			got = append(got, e.Value)
			if len(got) == 3 {
				close(done)
				return
			}
			collect()
		})
	}
	collect()

	a.Put(1, nil)
	b.Put(2, nil)
	a.End()

	recvStep(t, done)

	require.Len(t, got, 3)
	require.Same(t, a, got[0].Channel)
	require.Equal(t, 1, got[0].Value)
	require.Same(t, b, got[1].Channel)
	require.Equal(t, 2, got[1].Value)
	require.Same(t, a, got[2].Channel)
	require.True(t, got[2].End)
}

func TestMerge_Add_AttachesDynamically(t *testing.T) {
	a := NewChannel[int]()
	m := Merge(a)

	done := make(chan struct{})
	var got ChannelValue[int]
	m.Out().Take(func(e Envelope[ChannelValue[int]]) {
		got = e.Value
		close(done)
	})

	c := NewChannel[int]()
	m.Add(c)
	c.Put(42, nil)

	recvStep(t, done)
	require.Equal(t, 42, got.Value)
	require.Same(t, c, got.Channel)
}

// TestMerge_StickyErrorSourceStopsReadingAfterOneError verifies that a
// source which returns the same error envelope on every future Take (such
// as a Fill-with-error channel) is read from exactly once, not re-Taken in
// an unbounded tight loop.
func TestMerge_StickyErrorSourceStopsReadingAfterOneError(t *testing.T) {
	errSrc, deliver := NewResolver[int]()
	wantErr := errors.New("boom")
	deliver(wantErr, 0)

	ok := NewChannel[int]()
	m := Merge(errSrc, ok)

	done := make(chan struct{})
	var got []ChannelValue[int]
	var collect func()
	collect = func() {
		m.Out().Take(func(e Envelope[ChannelValue[int]]) {
			got = append(got, e.Value)
			if len(got) == 2 {
				close(done)
				return
			}
			collect()
		})
	}
	collect()

	ok.Put(7, nil)

	recvStep(t, done)
	require.Len(t, got, 2)

	// Give a buggy re-Take loop a chance to flood the output before
	// asserting nothing more ever arrives.
	time.Sleep(30 * time.Millisecond)
	require.Len(t, got, 2)

	var errCount, valCount int
	for _, cv := range got {
		switch {
		case cv.Err != nil:
			errCount++
			require.ErrorIs(t, cv.Err, wantErr)
		default:
			valCount++
			require.Equal(t, 7, cv.Value)
		}
	}
	require.Equal(t, 1, errCount)
	require.Equal(t, 1, valCount)
}
