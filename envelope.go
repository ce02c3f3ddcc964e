package async

// Envelope is the typed replacement for the source library's convention of
// using a null value to mark end-of-stream. Exactly one of the following
// holds at a time: Err is non-nil (an error occurred), End is true (the
// source is finished, the spec's null sentinel), or Value holds a delivered
// item.
type Envelope[V any] struct {
	Value V
	End   bool
	Err   error
}

// IsEnd reports whether this envelope is the end-of-stream sentinel.
func (e Envelope[V]) IsEnd() bool { return e.Err == nil && e.End }

// value constructs a delivered-value envelope.
func value[V any](v V) Envelope[V] { return Envelope[V]{Value: v} }

// end constructs an end-of-stream envelope.
func end[V any]() Envelope[V] { return Envelope[V]{End: true} }

// errEnvelope constructs an error envelope.
func errEnvelope[V any](err error) Envelope[V] { return Envelope[V]{Err: err} }

// TakeFunc is invoked with the result of a take: a value, the end sentinel,
// or an error forwarded unchanged from upstream.
type TakeFunc[V any] func(Envelope[V])

// AckFunc is the producer-supplied completion callback for Put. It is
// invoked exactly once per spec.md's testable property 2: with a delivered
// envelope on success, an end envelope on drop, or an error envelope
// ("filled") when the channel refuses the value.
type AckFunc[V any] func(Envelope[V])

// ChannelValue is the transport envelope used by Merge to preserve
// provenance: which channel an item or error came from.
type ChannelValue[V any] struct {
	Channel *Channel[V]
	Err     error
	Value   V
	End     bool
}
