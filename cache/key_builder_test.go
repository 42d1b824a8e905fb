package cache

import (
	"strings"
	"testing"
	"time"
)

type testUser struct {
	ID    string
	Email string
}

type versionedRecord struct {
	stamp string
}

func (v *versionedRecord) CacheFingerprint() string {
	return v.stamp
}

type bareValue struct {
	Label string
}

func TestBuild_BareRootField(t *testing.T) {
	builder := NewDefaultKeyBuilder("graphql")

	key := builder.Build(Resolution{ParentType: "T", Field: "f"})
	if key != "graphql:T:f::" {
		t.Errorf("expected 'graphql:T:f::' but got: %q", key)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	builder := NewDefaultKeyBuilder("graphql")

	res := Resolution{
		Object:     &testUser{ID: "42", Email: "a@b.co"},
		ParentType: "User",
		Field:      "posts",
		Args: []Arg{
			{Name: "first", Value: 10},
			{Name: "after", Value: "cursor-1"},
		},
	}

	first := builder.Build(res)
	second := builder.Build(res)
	if first != second {
		t.Errorf("expected identical keys but got %q and %q", first, second)
	}
}

func TestBuild_DifferentArgumentsDiffer(t *testing.T) {
	builder := NewDefaultKeyBuilder("graphql")

	base := Resolution{ParentType: "User", Field: "posts", Args: []Arg{{Name: "first", Value: 10}}}
	other := Resolution{ParentType: "User", Field: "posts", Args: []Arg{{Name: "first", Value: 20}}}

	if builder.Build(base) == builder.Build(other) {
		t.Error("expected differing argument values to produce differing keys")
	}
}

func TestBuild_DifferentObjectIdentitiesDiffer(t *testing.T) {
	builder := NewDefaultKeyBuilder("graphql")

	a := Resolution{Object: &testUser{ID: "1"}, ParentType: "User", Field: "name"}
	b := Resolution{Object: &testUser{ID: "2"}, ParentType: "User", Field: "name"}

	if builder.Build(a) == builder.Build(b) {
		t.Error("expected differing object identities to produce differing keys")
	}
}

func TestBuild_ArgumentsClauseOrder(t *testing.T) {
	builder := NewDefaultKeyBuilder("graphql")

	res := Resolution{
		ParentType: "Query",
		Field:      "search",
		Args: []Arg{
			{Name: "term", Value: "go"},
			{Name: "limit", Value: 5},
		},
	}

	key := builder.Build(res)
	if key != "graphql:Query:search:term:go:limit:5:" {
		t.Errorf("unexpected key: %q", key)
	}
}

func TestBuild_ObjectClauseUsesIDField(t *testing.T) {
	builder := NewDefaultKeyBuilder("graphql")

	key := builder.Build(Resolution{
		Object:     &testUser{ID: "42"},
		ParentType: "User",
		Field:      "email",
	})
	if key != "graphql:User:email::test_user:42" {
		t.Errorf("unexpected key: %q", key)
	}
}

func TestBuild_DirectiveKeyAttribute(t *testing.T) {
	builder := NewDefaultKeyBuilder("graphql")

	key := builder.Build(Resolution{
		Object:     &testUser{ID: "42", Email: "a@b.co"},
		ParentType: "User",
		Field:      "email",
		Directive:  Directive{Enabled: true, KeyAttribute: "Email"},
	})
	if !strings.HasSuffix(key, ":test_user:a@b.co") {
		t.Errorf("expected key to use the Email attribute, got: %q", key)
	}
}

func TestBuild_DirectiveKeyFunc(t *testing.T) {
	builder := NewDefaultKeyBuilder("graphql")

	key := builder.Build(Resolution{
		Object:     &testUser{ID: "42"},
		ParentType: "User",
		Field:      "email",
		Directive: Directive{
			Enabled: true,
			KeyFunc: func(object any, res Resolution) any {
				return "derived-" + res.Field
			},
		},
	})
	if !strings.HasSuffix(key, ":test_user:derived-email") {
		t.Errorf("expected key to use the derive function, got: %q", key)
	}
}

func TestBuild_DirectiveKeyLiteral(t *testing.T) {
	builder := NewDefaultKeyBuilder("graphql")

	key := builder.Build(Resolution{
		Object:     &testUser{ID: "42"},
		ParentType: "User",
		Field:      "email",
		Directive:  Directive{Enabled: true, KeyLiteral: "fixed"},
	})
	if !strings.HasSuffix(key, ":test_user:fixed") {
		t.Errorf("expected key to use the literal, got: %q", key)
	}
}

func TestBuild_FingerprintBeatsID(t *testing.T) {
	builder := NewDefaultKeyBuilder("graphql")

	key := builder.Build(Resolution{
		Object:     &versionedRecord{stamp: "records/9-20240131094512"},
		ParentType: "Record",
		Field:      "body",
	})
	if !strings.HasSuffix(key, ":versioned_record:records/9-20240131094512") {
		t.Errorf("expected fingerprint identity, got: %q", key)
	}
}

func TestBuild_RuntimeIdentityFallback(t *testing.T) {
	builder := NewDefaultKeyBuilder("graphql")

	obj := &bareValue{Label: "x"}
	res := Resolution{Object: obj, ParentType: "Bare", Field: "label"}

	first := builder.Build(res)
	second := builder.Build(res)
	if first != second {
		t.Errorf("expected a stable fallback identity, got %q and %q", first, second)
	}

	other := builder.Build(Resolution{Object: &bareValue{Label: "x"}, ParentType: "Bare", Field: "label"})
	if first == other {
		t.Error("expected distinct instances to fall back to distinct identities")
	}
}

func TestBuild_MissingKeyAttributeFallsThrough(t *testing.T) {
	builder := NewDefaultKeyBuilder("graphql")

	key := builder.Build(Resolution{
		Object:     &testUser{ID: "42"},
		ParentType: "User",
		Field:      "email",
		Directive:  Directive{Enabled: true, KeyAttribute: "Nope"},
	})
	if !strings.HasSuffix(key, ":test_user:42") {
		t.Errorf("expected fallback to the ID field, got: %q", key)
	}
}

func TestBuild_LongArgumentsDigested(t *testing.T) {
	builder := NewDefaultKeyBuilder("graphql")

	res := Resolution{
		ParentType: "Query",
		Field:      "search",
		Args:       []Arg{{Name: "blob", Value: strings.Repeat("x", 2*MaxKeyLength)}},
	}

	key := builder.Build(res)
	if len(key) > MaxKeyLength {
		t.Errorf("expected digested key under %d chars, got %d", MaxKeyLength, len(key))
	}
	if !strings.Contains(key, "args~") {
		t.Errorf("expected digest marker in key: %q", key)
	}

	if key != builder.Build(res) {
		t.Error("expected digested keys to stay deterministic")
	}
}

func TestBuild_ControlCharactersInArgumentsDigested(t *testing.T) {
	builder := NewDefaultKeyBuilder("graphql")

	res := Resolution{
		ParentType: "Query",
		Field:      "search",
		Args:       []Arg{{Name: "term", Value: "line1\nline2"}},
	}

	key := builder.Build(res)
	if err := ValidateKey(key); err != nil {
		t.Errorf("expected built key to pass validation but got: %v (key %q)", err, key)
	}
	if key != builder.Build(res) {
		t.Error("expected digested tokens to stay deterministic")
	}

	other := builder.Build(Resolution{
		ParentType: "Query",
		Field:      "search",
		Args:       []Arg{{Name: "term", Value: "line1\nline3"}},
	})
	if key == other {
		t.Error("expected differing hostile values to produce differing keys")
	}
}

func TestBuild_ControlCharactersInIdentityDigested(t *testing.T) {
	builder := NewDefaultKeyBuilder("graphql")

	key := builder.Build(Resolution{
		Object:     &testUser{ID: "42"},
		ParentType: "User",
		Field:      "email",
		Directive:  Directive{Enabled: true, KeyLiteral: "a\rb"},
	})
	if err := ValidateKey(key); err != nil {
		t.Errorf("expected built key to pass validation but got: %v (key %q)", err, key)
	}
}

func TestBuild_LongObjectClauseDigested(t *testing.T) {
	builder := NewDefaultKeyBuilder("graphql")

	res := Resolution{
		Object:     &testUser{ID: "42"},
		ParentType: "User",
		Field:      "email",
		Directive:  Directive{Enabled: true, KeyLiteral: strings.Repeat("x", 2*MaxKeyLength)},
	}

	key := builder.Build(res)
	if len(key) > MaxKeyLength {
		t.Errorf("expected digested key under %d chars, got %d", MaxKeyLength, len(key))
	}
	if !strings.Contains(key, "obj~") {
		t.Errorf("expected object digest marker in key: %q", key)
	}
	if key != builder.Build(res) {
		t.Error("expected digested keys to stay deterministic")
	}
}

func TestBuild_DefaultNamespace(t *testing.T) {
	builder := NewDefaultKeyBuilder("")

	key := builder.Build(Resolution{ParentType: "T", Field: "f"})
	if !strings.HasPrefix(key, DefaultNamespace+":") {
		t.Errorf("expected default namespace prefix, got: %q", key)
	}
}

func TestSerializeValue_Stability(t *testing.T) {
	builder := NewDefaultKeyBuilder("graphql").(*defaultKeyBuilder)

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, "nil"},
		{"string", "hello", "hello"},
		{"int", 42, "42"},
		{"bool", true, "true"},
		{"nil slice", []string(nil), "slice:nil"},
		{"slice", []int{1, 2}, "seq[2]:{1,2}"},
		{"nil map", map[string]int(nil), "map:nil"},
		{"map", map[string]int{"b": 2, "a": 1}, "map[2]:{a=1,b=2}"},
		{"struct", testUser{ID: "1", Email: "e"}, "struct:{ID:1,Email:e}"},
		{"pointer", &testUser{ID: "1", Email: "e"}, "struct:{ID:1,Email:e}"},
		{"duration", 5 * time.Second, "5s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := builder.serializeValue(tt.value)
			if got != tt.want {
				t.Errorf("serializeValue(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
