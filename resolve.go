package async

import (
	"context"
	"reflect"
	"sync"
)

// resolvable is satisfied by every *Channel[V] regardless of V, letting
// Resolve detect a channel argument without reflecting into the generic
// instantiation.
type resolvable interface {
	takeAny(func(v any, isEnd bool, err error))
}

// takeAny adapts Take to a non-generic callback so Resolve can await a
// channel without knowing its element type.
func (c *Channel[V]) takeAny(cb func(v any, isEnd bool, err error)) {
	c.Take(func(e Envelope[V]) {
		switch {
		case e.Err != nil:
			cb(nil, false, e.Err)
		case e.IsEnd():
			cb(nil, true, nil)
		default:
			cb(e.Value, false, nil)
		}
	})
}

// Resolve awaits thing: a channel is taken once, a slice or map has every
// element resolved concurrently and reassembled in its original shape, and
// anything else is returned unchanged. When recursive is true, a resolved
// channel's own value is resolved again if it is itself a channel.
//
// Each call uses its own outstanding-count bookkeeping scoped to that call's
// slice or map, adapted from the teacher's reorderer: unlike a package-level
// counter, nothing here can be shared or leaked across overlapping Resolve
// calls (see SPEC_FULL.md §9 on the resolveObject bug this avoids).
func Resolve(ctx context.Context, thing any, recursive bool) (any, error) {
	return resolveValue(ctx, thing, recursive)
}

func resolveValue(ctx context.Context, thing any, recursive bool) (any, error) {
	if r, ok := thing.(resolvable); ok {
		return awaitChannel(ctx, r, recursive)
	}

	rv := reflect.ValueOf(thing)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return resolveSlice(ctx, rv, recursive)
	case reflect.Map:
		return resolveMap(ctx, rv, recursive)
	default:
		return thing, nil
	}
}

func awaitChannel(ctx context.Context, r resolvable, recursive bool) (any, error) {
	type result struct {
		v   any
		end bool
		err error
	}
	resCh := make(chan result, 1)
	r.takeAny(func(v any, isEnd bool, err error) { resCh <- result{v, isEnd, err} })

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resCh:
		if res.err != nil {
			return nil, res.err
		}
		if res.end {
			return nil, nil
		}
		if recursive {
			if _, ok := res.v.(resolvable); ok {
				return resolveValue(ctx, res.v, recursive)
			}
		}
		return res.v, nil
	}
}

func resolveSlice(ctx context.Context, rv reflect.Value, recursive bool) (any, error) {
	n := rv.Len()
	out := make([]any, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			v, err := resolveValue(ctx, rv.Index(i).Interface(), recursive)
			out[i], errs[i] = v, err
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func resolveMap(ctx context.Context, rv reflect.Value, recursive bool) (any, error) {
	keys := rv.MapKeys()
	out := make(map[any]any, len(keys))
	errs := make([]error, len(keys))

	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(len(keys))
	for idx, k := range keys {
		idx, k := idx, k
		go func() {
			defer wg.Done()
			v, err := resolveValue(ctx, rv.MapIndex(k).Interface(), recursive)
			mu.Lock()
			out[k.Interface()] = v
			mu.Unlock()
			errs[idx] = err
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
