package async

import "sync"

// Merger fans multiple channels of the same element type into a single
// output channel of ChannelValue, tagging each delivered item with the
// source channel it came from. Sources are read independently: a per-source
// reader chains its next Take only after the previous ChannelValue has been
// accepted onto the output, which gives natural backpressure without
// serializing unrelated sources against each other.
type Merger[V any] struct {
	out *Channel[ChannelValue[V]]

	mu sync.Mutex
}

// Merge constructs a Merger already reading from every channel in chans.
func Merge[V any](chans ...*Channel[V]) *Merger[V] {
	m := &Merger[V]{out: NewChannel[ChannelValue[V]]()}
	for _, c := range chans {
		m.Add(c)
	}
	return m
}

// Out returns the merged output channel.
func (m *Merger[V]) Out() *Channel[ChannelValue[V]] { return m.out }

// Add attaches another source channel to the merge, taking effect
// immediately.
func (m *Merger[V]) Add(c *Channel[V]) {
	var read func()
	read = func() {
		c.Take(func(e Envelope[V]) {
			cv := ChannelValue[V]{Channel: c}
			switch {
			case e.Err != nil:
				cv.Err = e.Err
			case e.IsEnd():
				cv.End = true
			default:
				cv.Value = e.Value
			}
			// A sticky-error source (e.g. Fill-with-error) returns the same
			// error envelope on every future Take; stop reading from this
			// source once it reports either terminal condition.
			terminal := e.Err != nil || e.IsEnd()
			m.out.Put(cv, func(Envelope[ChannelValue[V]]) {
				if !terminal {
					read()
				}
			})
		})
	}
	read()
}
