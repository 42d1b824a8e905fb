package canonical

import "sync"

// Resolvable is the deferred-value contract the deconstructor recognizes.
// Host engines with their own future/promise types satisfy it by invoking fn
// once the value becomes available. Implementations must invoke fn
// immediately when the value is already available at registration time.
type Resolvable interface {
	WhenResolved(fn func(value any))
}

// Lazy is a value that is not yet available. Continuations registered with
// WhenResolved run when Resolve is called; deconstruction of a deferred
// value yields a Lazy rather than a blocking wait.
type Lazy struct {
	mu      sync.Mutex
	done    bool
	value   any
	waiters []func(any)
}

var _ Resolvable = (*Lazy)(nil)

// NewLazy creates an unresolved Lazy.
func NewLazy() *Lazy {
	return &Lazy{}
}

// ResolvedLazy creates a Lazy that already holds v.
func ResolvedLazy(v any) *Lazy {
	return &Lazy{done: true, value: v}
}

// Resolve supplies the value and runs pending continuations. The first call
// wins; later calls are ignored.
func (l *Lazy) Resolve(v any) {
	l.mu.Lock()
	if l.done {
		l.mu.Unlock()
		return
	}
	l.done = true
	l.value = v
	waiters := l.waiters
	l.waiters = nil
	l.mu.Unlock()

	// Continuations run outside the lock so they can register further
	// continuations on this Lazy.
	for _, fn := range waiters {
		fn(v)
	}
}

// WhenResolved registers a continuation. If the value is already available
// the continuation runs immediately on the calling goroutine.
func (l *Lazy) WhenResolved(fn func(value any)) {
	l.mu.Lock()
	if l.done {
		v := l.value
		l.mu.Unlock()
		fn(v)
		return
	}
	l.waiters = append(l.waiters, fn)
	l.mu.Unlock()
}

// AndThen derives a new Lazy resolved with fn's result once this one
// resolves. If fn returns a Lazy itself, the derived Lazy resolves with that
// inner value, keeping chains flat.
func (l *Lazy) AndThen(fn func(value any) any) *Lazy {
	out := NewLazy()
	l.WhenResolved(func(v any) {
		resolveInto(out, fn(v))
	})
	return out
}

// Peek reports the current value without blocking. ok is false while the
// Lazy is unresolved.
func (l *Lazy) Peek() (value any, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.done
}

// resolveInto resolves out with v, flattening one level of laziness: when v
// is itself deferred, out settles with v's eventual value instead of the
// handle.
func resolveInto(out *Lazy, v any) {
	if inner, ok := v.(*Lazy); ok {
		inner.WhenResolved(out.Resolve)
		return
	}
	out.Resolve(v)
}
