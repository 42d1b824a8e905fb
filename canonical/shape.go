package canonical

import (
	"net"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/goliatone/go-graphql-field-cache/internal/strcase"
)

// Shape is the closed set of semantic value shapes the sanitizer dispatches
// on. Each value is probed once; the cleaning algorithm then switches on the
// tag instead of scattering capability checks through the recursion.
type Shape int

const (
	// ShapeNil is the absence value.
	ShapeNil Shape = iota
	// ShapeScalar covers the safe primitive kinds.
	ShapeScalar
	// ShapeList covers slices and arrays.
	ShapeList
	// ShapeMap covers string-keyed maps.
	ShapeMap
	// ShapeHandle covers callables and runtime handles (functions,
	// channels, locks, files, sockets). Handles are always dropped.
	ShapeHandle
	// ShapeDeferred covers not-yet-available values.
	ShapeDeferred
	// ShapeDangerous covers records whose type name flags them as unsafe to
	// persist structurally (query builders, relations, transactions, ...).
	ShapeDangerous
	// ShapeEntity covers records exposing an identity field.
	ShapeEntity
	// ShapeMapper covers values exposing a map conversion.
	ShapeMapper
	// ShapeLister covers values exposing a list conversion.
	ShapeLister
	// ShapeRepresenter covers values exposing an external representation.
	ShapeRepresenter
	// ShapeOpaque is everything else.
	ShapeOpaque
)

// Mapper is the generic map-conversion capability.
type Mapper interface {
	CacheMap() map[string]any
}

// Lister is the generic list-conversion capability.
type Lister interface {
	CacheList() []any
}

// Representer exposes a plain external representation of a value. The
// representation is cleaned recursively, so it need not be canonical itself.
type Representer interface {
	CacheRepresentation() any
}

// Wrapper is the engine-envelope contract: a typed object wrapper exposing
// its underlying domain object.
type Wrapper interface {
	Unwrap() any
}

// NodeSource is a paginated-connection wrapper exposing its materialized
// node sequence.
type NodeSource interface {
	Nodes() []any
}

// EdgeSource is a paginated-connection wrapper exposing its nodes through
// edges.
type EdgeSource interface {
	EdgeNodes() []any
}

// dangerousTokens flags record types that must never be persisted
// structurally. Matching is per snake_case token of the type name, so
// "Profile" does not trip on "file" but "QueryBuilder" trips on both tokens.
var dangerousTokens = map[string]struct{}{
	"query":      {},
	"builder":    {},
	"relation":   {},
	"conn":       {},
	"connection": {},
	"tx":         {},
	"stmt":       {},
	"rows":       {},
	"driver":     {},
	"mutex":      {},
	"lock":       {},
	"thread":     {},
	"socket":     {},
	"file":       {},
}

// Probe determines the semantic shape of a value.
func Probe(v any) Shape {
	if v == nil {
		return ShapeNil
	}

	if _, ok := v.(Resolvable); ok {
		return ShapeDeferred
	}

	if isHandle(v) {
		return ShapeHandle
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return ShapeList
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return ShapeMap
		}
		return ShapeOpaque
	case reflect.Ptr:
		if rv.IsNil() {
			return ShapeNil
		}
	}

	if isBasicKind(rv.Kind()) {
		return ShapeScalar
	}

	if hasDangerousName(v) {
		return ShapeDangerous
	}

	if _, ok := hasIdentityField(v); ok {
		return ShapeEntity
	}

	if _, ok := v.(Mapper); ok {
		return ShapeMapper
	}
	if _, ok := v.(Lister); ok {
		return ShapeLister
	}
	if _, ok := v.(Representer); ok {
		return ShapeRepresenter
	}

	return ShapeOpaque
}

// isHandle reports whether the value is a callable or runtime handle that
// must never reach the store.
func isHandle(v any) bool {
	switch v.(type) {
	case *os.File, net.Conn, sync.Locker:
		return true
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	return false
}

// hasDangerousName checks the concrete type name against the dangerous
// token set.
func hasDangerousName(v any) bool {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}

	name := t.Name()
	if name == "" {
		name = t.String()
	}
	for _, token := range strings.Split(strcase.ToSnake(name), "_") {
		if _, ok := dangerousTokens[token]; ok {
			return true
		}
	}
	return false
}

// hasIdentityField probes a record for an entity-style identity field.
func hasIdentityField(v any) (string, bool) {
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

	for _, fieldName := range []string{"ID", "Id"} {
		field := rv.FieldByName(fieldName)
		if field.IsValid() && field.CanInterface() {
			return fieldName, true
		}
	}
	return "", false
}

// isBasicKind checks if a kind represents a safe primitive type.
func isBasicKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}
