package canonical

import (
	"fmt"
	"reflect"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/goliatone/go-graphql-field-cache/internal/strcase"
)

// DefaultMaxDepth bounds sanitizer recursion when no depth is configured.
const DefaultMaxDepth = 10

// Sanitizer converts arbitrary resolved values into canonical, store-safe
// form: primitives, ordered lists, and string-keyed mappings. Cleaning is
// total: it terminates on cyclic graphs, never panics, and never emits a
// callable or handle.
type Sanitizer struct {
	maxDepth int
}

// NewSanitizer creates a Sanitizer with the given recursion bound. A depth
// of zero or less falls back to DefaultMaxDepth.
func NewSanitizer(maxDepth int) *Sanitizer {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Sanitizer{maxDepth: maxDepth}
}

// MaxDepth reports the configured recursion bound.
func (s *Sanitizer) MaxDepth() int {
	return s.maxDepth
}

// Clean reduces v to canonical form. A nil result means the value was
// dropped entirely.
func (s *Sanitizer) Clean(v any) any {
	return s.clean(v, s.maxDepth, map[uintptr]struct{}{})
}

// clean is the recursive worker. depth counts retained levels; visited
// tracks the identities of reference values on the current recursion stack
// only, so sibling branches never see stale cycle markers.
func (s *Sanitizer) clean(v any, depth int, visited map[uintptr]struct{}) any {
	if depth <= 0 {
		return nil
	}

	shape := Probe(v)
	switch shape {
	case ShapeNil, ShapeHandle, ShapeDeferred:
		// Deferred values are the deconstructor's concern; one reaching the
		// sanitizer is dropped like any other unpersistable handle.
		return nil
	}

	if id, ok := identity(v); ok {
		if _, seen := visited[id]; seen {
			return nil
		}
		visited[id] = struct{}{}
		defer delete(visited, id)
	}

	switch shape {
	case ShapeScalar:
		return v

	case ShapeList:
		return s.cleanList(v, depth, visited)

	case ShapeMap:
		return s.cleanMap(v, depth, visited)

	case ShapeDangerous:
		return s.summarize(v)

	case ShapeEntity:
		return s.cleanEntity(v, depth, visited)

	case ShapeMapper:
		return s.clean(v.(Mapper).CacheMap(), depth-1, visited)

	case ShapeLister:
		return s.clean(v.(Lister).CacheList(), depth-1, visited)

	case ShapeRepresenter:
		return s.clean(v.(Representer).CacheRepresentation(), depth-1, visited)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		return s.clean(rv.Elem().Interface(), depth, visited)
	}

	// The trial serialization recurses through the whole reachable graph,
	// so it must never see an unvetted reference cycle.
	if cycleFree(v) && roundTrips(v) {
		return v
	}

	return s.summarize(v)
}

// cleanList maps clean over the elements with one less depth, dropping
// elements that clean to nil. An empty input produces an empty output list.
func (s *Sanitizer) cleanList(v any, depth int, visited map[uintptr]struct{}) []any {
	rv := reflect.ValueOf(v)
	out := make([]any, 0, rv.Len())

	for i := 0; i < rv.Len(); i++ {
		cleaned := s.clean(rv.Index(i).Interface(), depth-1, visited)
		if cleaned != nil {
			out = append(out, cleaned)
		}
	}
	return out
}

// cleanMap maps clean over the entry values with one less depth, preserving
// keys and dropping entries whose cleaned value is nil.
func (s *Sanitizer) cleanMap(v any, depth int, visited map[uintptr]struct{}) map[string]any {
	rv := reflect.ValueOf(v)
	out := make(map[string]any, rv.Len())

	iter := rv.MapRange()
	for iter.Next() {
		cleaned := s.clean(iter.Value().Interface(), depth-1, visited)
		if cleaned != nil {
			out[iter.Key().String()] = cleaned
		}
	}
	return out
}

// cleanEntity converts an identity-bearing record to a mapping of its
// attributes, with id and class injected.
func (s *Sanitizer) cleanEntity(v any, depth int, visited map[uintptr]struct{}) map[string]any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	rt := rv.Type()

	out := make(map[string]any, rt.NumField()+2)
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		fv := rv.Field(i)
		if !fv.CanInterface() {
			continue
		}

		cleaned := s.clean(fv.Interface(), depth-1, visited)
		if cleaned != nil {
			out[strcase.ToSnake(field.Name)] = cleaned
		}
	}

	if name, ok := hasIdentityField(v); ok {
		out["id"] = fmt.Sprintf("%v", rv.FieldByName(name).Interface())
	}
	out["class"] = typeName(v)

	return out
}

// summarize builds the opaque fallback record for values that could not be
// fully reduced: {class, id?, name?, timestamp?}. When none of the optional
// fields are obtainable the whole value is dropped.
func (s *Sanitizer) summarize(v any) any {
	out := map[string]any{"class": typeName(v)}
	populated := false

	if name, ok := hasIdentityField(v); ok {
		rv := reflect.ValueOf(v)
		for rv.Kind() == reflect.Ptr {
			rv = rv.Elem()
		}
		out["id"] = fmt.Sprintf("%v", rv.FieldByName(name).Interface())
		populated = true
	}

	if label, ok := stringField(v, "Name", "Title"); ok {
		out["name"] = label
		populated = true
	}

	if ts, key, ok := timestampField(v); ok {
		out[key] = ts.UTC().Format(time.RFC3339)
		populated = true
	}

	if !populated {
		return nil
	}
	return out
}

// identity returns a cycle-detection identity for reference values. Value
// types cannot participate in cycles and report ok=false.
func identity(v any) (uintptr, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice:
		if !rv.IsNil() {
			return rv.Pointer(), true
		}
	}
	return 0, false
}

// cycleFree reports whether the value's reachable graph contains no
// reference cycles. The serializer has no cycle detection of its own, so
// only cycle-free graphs may be handed to roundTrips.
func cycleFree(v any) bool {
	return cycleFreeValue(reflect.ValueOf(v), map[uintptr]struct{}{})
}

// cycleFreeValue walks rv with a stack-scoped seen set, mirroring the
// serializer's traversal: exported struct fields, map values, and list
// elements. Shared acyclic references are fine; a revisit on the current
// path is a cycle. Slices sharing a backing array can report a false cycle,
// which degrades to the summary fallback rather than a crash.
func cycleFreeValue(rv reflect.Value, seen map[uintptr]struct{}) bool {
	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return cycleFreeValue(rv.Elem(), seen)

	case reflect.Ptr:
		if rv.IsNil() {
			return true
		}
		id := rv.Pointer()
		if _, ok := seen[id]; ok {
			return false
		}
		seen[id] = struct{}{}
		ok := cycleFreeValue(rv.Elem(), seen)
		delete(seen, id)
		return ok

	case reflect.Map:
		if rv.IsNil() {
			return true
		}
		id := rv.Pointer()
		if _, ok := seen[id]; ok {
			return false
		}
		seen[id] = struct{}{}
		iter := rv.MapRange()
		for iter.Next() {
			if !cycleFreeValue(iter.Value(), seen) {
				delete(seen, id)
				return false
			}
		}
		delete(seen, id)
		return true

	case reflect.Slice:
		if rv.IsNil() {
			return true
		}
		id := rv.Pointer()
		if _, ok := seen[id]; ok {
			return false
		}
		seen[id] = struct{}{}
		for i := 0; i < rv.Len(); i++ {
			if !cycleFreeValue(rv.Index(i), seen) {
				delete(seen, id)
				return false
			}
		}
		delete(seen, id)
		return true

	case reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if !cycleFreeValue(rv.Index(i), seen) {
				return false
			}
		}
		return true

	case reflect.Struct:
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			// Unexported fields never reach the serializer.
			if !rt.Field(i).IsExported() {
				continue
			}
			if !cycleFreeValue(rv.Field(i), seen) {
				return false
			}
		}
		return true
	}

	return true
}

// roundTrips reports whether the value survives a trial round-trip through
// the store's native serialization. Callers must establish the graph is
// cycle-free first.
func roundTrips(v any) bool {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return false
	}
	var decoded any
	return msgpack.Unmarshal(data, &decoded) == nil
}

// stringField probes for the first present string field among names.
func stringField(v any, names ...string) (string, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return "", false
	}

	for _, name := range names {
		field := rv.FieldByName(name)
		if field.IsValid() && field.Kind() == reflect.String && field.CanInterface() {
			return field.String(), true
		}
	}
	return "", false
}

// timestampField probes for UpdatedAt then CreatedAt, skipping zero times.
func timestampField(v any) (time.Time, string, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return time.Time{}, "", false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return time.Time{}, "", false
	}

	for _, candidate := range []struct {
		field string
		key   string
	}{
		{"UpdatedAt", "updated_at"},
		{"CreatedAt", "created_at"},
	} {
		field := rv.FieldByName(candidate.field)
		if !field.IsValid() || !field.CanInterface() {
			continue
		}
		if ts, ok := field.Interface().(time.Time); ok && !ts.IsZero() {
			return ts, candidate.key, true
		}
	}
	return time.Time{}, "", false
}

// typeName returns the snake_case name of the value's concrete type.
func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	return strcase.ToSnake(name)
}
