package streamio

import (
	"io"

	"github.com/ygrebnov/async"
)

// channelWriter exposes a channel of byte chunks as an io.Writer: each
// Write call blocks until the chunk has been Put (and thus consumed or
// buffered per the channel's own put semantics).
type channelWriter struct {
	c *async.Channel[[]byte]
}

// NewWriter returns an io.Writer whose writes call Put(chunk, ack) on c,
// blocking until ack fires. A filled or otherwise-refusing channel surfaces
// its ack error from Write.
func NewWriter(c *async.Channel[[]byte]) io.Writer {
	return &channelWriter{c: c}
}

func (w *channelWriter) Write(p []byte) (int, error) {
	chunk := append([]byte(nil), p...)
	done := make(chan error, 1)
	w.c.Put(chunk, func(e async.Envelope[[]byte]) { done <- e.Err })
	if err := <-done; err != nil {
		return 0, err
	}
	return len(p), nil
}
