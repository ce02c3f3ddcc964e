// Package streamio adapts async.Channel[[]byte] to the standard io.Reader
// and io.Writer interfaces, per SPEC_FULL.md §4.9. Behavior is undefined
// under multiple concurrent readers or writers on the same channel; for
// multi-consumer fan-out use async.Tap or async.NewFanout instead.
package streamio

import (
	"io"
	"sync"

	"github.com/ygrebnov/async"
)

// channelReader exposes a channel of byte chunks as an io.Reader, pulling a
// new chunk via Take whenever its internal buffer is exhausted.
type channelReader struct {
	c *async.Channel[[]byte]

	mu   sync.Mutex
	buf  []byte
	done bool
	err  error
}

// NewReader returns an io.Reader whose reads pull chunks from c via Take.
// The end sentinel is surfaced as io.EOF; an error envelope is surfaced as
// that error.
func NewReader(c *async.Channel[[]byte]) io.Reader {
	return &channelReader{c: c}
}

func (r *channelReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	for len(r.buf) == 0 && !r.done {
		r.mu.Unlock()
		r.pull()
		r.mu.Lock()
	}
	if len(r.buf) == 0 {
		err := r.err
		r.mu.Unlock()
		if err != nil {
			return 0, err
		}
		return 0, io.EOF
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	r.mu.Unlock()
	return n, nil
}

// pull blocks until the channel yields its next take result.
func (r *channelReader) pull() {
	result := make(chan struct{})
	var chunk []byte
	var end bool
	var err error

	r.c.Take(func(e async.Envelope[[]byte]) {
		chunk, end, err = e.Value, e.IsEnd(), e.Err
		close(result)
	})
	<-result

	r.mu.Lock()
	switch {
	case err != nil:
		r.done, r.err = true, err
	case end:
		r.done = true
	default:
		r.buf = append(r.buf, chunk...)
	}
	r.mu.Unlock()
}
