package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/goliatone/go-graphql-field-cache/internal/strcase"
)

// KeySeparator defines the delimiter used between cache key clauses.
const KeySeparator = ":"

// KeyBuilder produces a stable cache key for one field resolution. It is
// responsible for producing identical keys for identical resolutions across
// calls, and distinct keys for differing arguments or object identities.
type KeyBuilder interface {
	Build(res Resolution) string
}

// defaultKeyBuilder implements KeyBuilder using reflection-based argument
// serialization. The key format is five clauses joined by ":":
//
//	namespace:parentType:field:argumentsClause:objectClause
//
// Absent arguments and absent parent objects still contribute empty clauses,
// so a bare root field yields "graphql:Query:things::".
type defaultKeyBuilder struct {
	namespace string
}

// NewDefaultKeyBuilder creates the default key builder. An empty namespace
// falls back to DefaultNamespace.
func NewDefaultKeyBuilder(namespace string) KeyBuilder {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &defaultKeyBuilder{namespace: namespace}
}

// Build constructs the cache key for a resolution. It never fails: objects
// without any identity attribute resolve to a runtime identity token, making
// caching degrade to unique-per-instance keys rather than erroring.
func (b *defaultKeyBuilder) Build(res Resolution) string {
	args := b.argumentsClause(res.Args)
	object := b.objectClause(res)

	// Over-length clauses get digested one at a time, arguments first; the
	// digest keeps determinism while staying under backend key limits.
	key := b.join(res, args, object)
	if len(key) > MaxKeyLength && args != "" {
		args = fmt.Sprintf("args~%016x", xxhash.Sum64String(args))
		key = b.join(res, args, object)
	}
	if len(key) > MaxKeyLength && object != "" {
		object = fmt.Sprintf("obj~%016x", xxhash.Sum64String(object))
		key = b.join(res, args, object)
	}

	return key
}

func (b *defaultKeyBuilder) join(res Resolution, args, object string) string {
	return strings.Join([]string{
		b.namespace,
		res.ParentType,
		res.Field,
		args,
		object,
	}, KeySeparator)
}

// argumentsClause flattens the ordered argument mapping into alternating
// name/value tokens: [k1, v1, k2, v2, ...] joined with the key separator.
func (b *defaultKeyBuilder) argumentsClause(args []Arg) string {
	if len(args) == 0 {
		return ""
	}

	tokens := make([]string, 0, len(args)*2)
	for _, arg := range args {
		tokens = append(tokens, safeToken(arg.Name), safeToken(b.serializeValue(arg.Value)))
	}
	return strings.Join(tokens, KeySeparator)
}

// safeToken replaces tokens carrying control characters with a stable digest
// so that assembled keys always pass ValidateKey, whatever the argument or
// identity values contain.
func safeToken(s string) string {
	clean := true
	for _, r := range s {
		if unicode.IsControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	return fmt.Sprintf("tok~%016x", xxhash.Sum64String(s))
}

// objectClause renders "<class>:<identity>" for the parent object, or the
// empty string when the field has no parent.
func (b *defaultKeyBuilder) objectClause(res Resolution) string {
	if res.Object == nil {
		return ""
	}
	return className(res.Object) + KeySeparator + safeToken(b.objectIdentity(res))
}

// objectIdentity resolves the identity portion of the object clause.
// Resolution order: directive attribute, directive derive function,
// directive literal, CacheFingerprint, ID field, runtime identity.
func (b *defaultKeyBuilder) objectIdentity(res Resolution) string {
	d := res.Directive

	if d.KeyAttribute != "" {
		if v, ok := fieldValue(res.Object, d.KeyAttribute); ok {
			return b.serializeValue(v)
		}
		// Missing attribute falls through to the identity probes below.
	} else if d.KeyFunc != nil {
		return b.serializeValue(d.KeyFunc(res.Object, res))
	} else if d.KeyLiteral != nil {
		return b.serializeValue(d.KeyLiteral)
	}

	if fp, ok := res.Object.(Fingerprinter); ok {
		return fp.CacheFingerprint()
	}

	if id, ok := extractID(res.Object); ok {
		return id
	}

	return runtimeIdentity(res.Object)
}

// extractID probes an object for a plain identity field using reflection.
func extractID(obj any) (string, bool) {
	v := reflect.ValueOf(obj)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return "", false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return "", false
	}

	for _, fieldName := range []string{"ID", "Id"} {
		field := v.FieldByName(fieldName)
		if field.IsValid() && field.CanInterface() {
			return fmt.Sprintf("%v", field.Interface()), true
		}
	}
	return "", false
}

// fieldValue reads a named exported field off a struct or struct pointer.
func fieldValue(obj any, name string) (any, bool) {
	v := reflect.ValueOf(obj)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, false
	}

	field := v.FieldByName(name)
	if !field.IsValid() || !field.CanInterface() {
		return nil, false
	}
	return field.Interface(), true
}

// runtimeIdentity is the last-resort identifier for objects lacking identity
// attributes. Reference kinds use their address, value kinds hash their
// serialized form, and anything unserializable gets a one-off token.
func runtimeIdentity(obj any) string {
	rv := reflect.ValueOf(obj)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		if !rv.IsNil() {
			return fmt.Sprintf("0x%x", rv.Pointer())
		}
	}

	if data, err := json.Marshal(obj); err == nil {
		return fmt.Sprintf("%016x", xxhash.Sum64(data))
	}
	return uuid.NewString()
}

// className returns a store-safe name for the object's concrete type.
func className(obj any) string {
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	return strcase.ToSnake(name)
}

// serializeValue handles individual argument serialization based on type.
// It produces stable tokens across runs for every Go type it can reach.
func (b *defaultKeyBuilder) serializeValue(v any) string {
	if v == nil {
		return "nil"
	}

	rv := reflect.ValueOf(v)
	rt := reflect.TypeOf(v)

	// Function pointers use %p formatting; stable within a process only.
	if rt.Kind() == reflect.Func {
		return fmt.Sprintf("func:%p", v)
	}

	if rt.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return "nil"
		}
		return b.serializeValue(rv.Elem().Interface())
	}

	if rt.Kind() == reflect.Slice || rt.Kind() == reflect.Array {
		if rt.Kind() == reflect.Slice && rv.IsNil() {
			return "slice:nil"
		}
		return b.serializeSequence(rv)
	}

	if rt.Kind() == reflect.Map {
		if rv.IsNil() {
			return "map:nil"
		}
		return b.serializeMap(rv)
	}

	if rt.Kind() == reflect.Struct {
		return b.serializeStruct(rv, rt)
	}

	switch rt.Kind() {
	case reflect.Chan:
		return fmt.Sprintf("chan:%p", v)
	case reflect.Interface:
		if rv.IsNil() {
			return "interface:nil"
		}
		return b.serializeValue(rv.Elem().Interface())
	}

	if isBasicKind(rt.Kind()) {
		return fmt.Sprintf("%v", v)
	}

	return b.jsonFallback(v)
}

// serializeSequence handles slices and arrays recursively.
func (b *defaultKeyBuilder) serializeSequence(rv reflect.Value) string {
	length := rv.Len()
	parts := make([]string, length)

	for i := 0; i < length; i++ {
		parts[i] = b.serializeValue(rv.Index(i).Interface())
	}

	return fmt.Sprintf("seq[%d]:{%s}", length, strings.Join(parts, ","))
}

// serializeMap handles maps with sorted keys for determinism.
func (b *defaultKeyBuilder) serializeMap(rv reflect.Value) string {
	keys := rv.MapKeys()

	type entry struct {
		key string
		val reflect.Value
	}
	entries := make([]entry, len(keys))
	for i, k := range keys {
		entries[i] = entry{key: b.serializeValue(k.Interface()), val: rv.MapIndex(k)}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	pairs := make([]string, len(entries))
	for i, e := range entries {
		pairs[i] = fmt.Sprintf("%s=%s", e.key, b.serializeValue(e.val.Interface()))
	}

	return fmt.Sprintf("map[%d]:{%s}", len(pairs), strings.Join(pairs, ","))
}

// serializeStruct handles struct serialization with field names.
func (b *defaultKeyBuilder) serializeStruct(rv reflect.Value, rt reflect.Type) string {
	numFields := rv.NumField()
	parts := make([]string, 0, numFields)

	for i := 0; i < numFields; i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		fieldValue := rv.Field(i)
		if !fieldValue.CanInterface() {
			continue
		}

		parts = append(parts, fmt.Sprintf("%s:%s", field.Name, b.serializeValue(fieldValue.Interface())))
	}

	return fmt.Sprintf("struct:{%s}", strings.Join(parts, ","))
}

// isBasicKind checks if a kind represents a basic Go type.
func isBasicKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	default:
		return false
	}
}

// jsonFallback provides JSON serialization as a last resort.
func (b *defaultKeyBuilder) jsonFallback(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// If JSON marshaling fails, use type information rather than panic.
		return fmt.Sprintf("fallback:%s", reflect.TypeOf(v).String())
	}
	return fmt.Sprintf("json:%s", string(data))
}
