package canonical

import (
	"reflect"
	"sync"
)

// Deconstructor reduces engine-produced resolved values to the canonical
// form to persist. The host engine hands back values wrapped in envelopes
// that are meaningless outside a live query execution (typed object
// wrappers, connection objects, lazy handles) and those must be unwrapped
// to plain data before reaching the sanitizer.
type Deconstructor struct {
	san *Sanitizer
}

// NewDeconstructor creates a Deconstructor that sanitizes through san.
func NewDeconstructor(san *Sanitizer) *Deconstructor {
	if san == nil {
		san = NewSanitizer(0)
	}
	return &Deconstructor{san: san}
}

// Sanitizer exposes the sanitizer for callers that need a direct re-clean.
func (d *Deconstructor) Sanitizer() *Sanitizer {
	return d.san
}

// Deconstruct converts a raw resolved value to canonical form. When the raw
// value (or any list element) is deferred, the result is a *Lazy that
// resolves to the canonical form; deferred-ness propagates outward instead
// of blocking.
func (d *Deconstructor) Deconstruct(v any) any {
	if v == nil {
		return nil
	}

	if r, ok := v.(Resolvable); ok {
		out := NewLazy()
		r.WhenResolved(func(inner any) {
			resolveInto(out, d.Deconstruct(inner))
		})
		return out
	}

	// Connection wrappers reduce to their node sequence: the materialized
	// accessor first, then the edge accessor, else the wrapper itself when
	// it already is a sequence.
	if ns, ok := v.(NodeSource); ok {
		return d.deconstructList(ns.Nodes())
	}
	if es, ok := v.(EdgeSource); ok {
		return d.deconstructList(es.EdgeNodes())
	}

	if w, ok := v.(Wrapper); ok {
		return d.san.Clean(w.Unwrap())
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return d.deconstructList(toAnySlice(rv))
	}

	return d.san.Clean(v)
}

// deconstructList handles list-shaped raw values.
func (d *Deconstructor) deconstructList(items []any) any {
	if len(items) == 0 {
		return []any{}
	}

	if allWrapped(items) {
		unwrapped := make([]any, len(items))
		for i, item := range items {
			unwrapped[i] = item.(Wrapper).Unwrap()
		}
		return d.san.Clean(unwrapped)
	}

	if anyDeferred(items) {
		return d.awaitAll(items)
	}

	return d.san.Clean(items)
}

// awaitAll produces a Lazy that waits for every deferred element, then
// deconstructs the fully materialized list.
func (d *Deconstructor) awaitAll(items []any) *Lazy {
	out := NewLazy()
	materialized := make([]any, len(items))

	var mu sync.Mutex
	remaining := 0
	for _, item := range items {
		if _, ok := item.(Resolvable); ok {
			remaining++
		}
	}

	// Copy plain elements first so a continuation firing synchronously
	// during registration still sees the complete list.
	for i, item := range items {
		if _, ok := item.(Resolvable); !ok {
			materialized[i] = item
		}
	}

	for i, item := range items {
		r, ok := item.(Resolvable)
		if !ok {
			continue
		}
		idx := i
		r.WhenResolved(func(value any) {
			mu.Lock()
			materialized[idx] = value
			remaining--
			done := remaining == 0
			mu.Unlock()

			if done {
				resolveInto(out, d.Deconstruct(materialized))
			}
		})
	}

	return out
}

// allWrapped reports whether every element is a domain-object wrapper.
func allWrapped(items []any) bool {
	for _, item := range items {
		if _, ok := item.(Wrapper); !ok {
			return false
		}
	}
	return true
}

// anyDeferred reports whether any element is still deferred.
func anyDeferred(items []any) bool {
	for _, item := range items {
		if _, ok := item.(Resolvable); ok {
			return true
		}
	}
	return false
}

// toAnySlice converts a reflected slice or array to []any.
func toAnySlice(rv reflect.Value) []any {
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
