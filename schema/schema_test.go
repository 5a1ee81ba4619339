package schema

import (
	"strings"
	"testing"
)

func TestCompileRejectsUnknownType(t *testing.T) {
	_, err := Compile(Definition{
		Props: map[string]Prop{"title": {Type: "varchar"}},
	})
	if err == nil || !strings.Contains(err.Error(), "unknown type") {
		t.Fatalf("expected unknown type error, got %v", err)
	}
}

func TestCompileRejectsRefOnNonStringProp(t *testing.T) {
	_, err := Compile(Definition{
		Props: map[string]Prop{"count": {Type: TypeNumber, Ref: "User"}},
	})
	if err == nil || !strings.Contains(err.Error(), "ref requires") {
		t.Fatalf("expected ref type error, got %v", err)
	}
}

func TestCompileRejectsMistypedDefault(t *testing.T) {
	_, err := Compile(Definition{
		Props: map[string]Prop{"title": {Type: TypeString, Default: 42}},
	})
	if err == nil || !strings.Contains(err.Error(), "default") {
		t.Fatalf("expected default type error, got %v", err)
	}
}

func TestCompileRejectsVirtualShadowingProp(t *testing.T) {
	_, err := Compile(Definition{
		Props: map[string]Prop{"title": {Type: TypeString}},
		Virtuals: map[string]Virtual{
			"title": {Get: func(Accessor) interface{} { return nil }},
		},
	})
	if err == nil || !strings.Contains(err.Error(), "shadows") {
		t.Fatalf("expected shadowing error, got %v", err)
	}
}

func TestCompiledSchemaIsImmutable(t *testing.T) {
	def := Definition{
		Props: map[string]Prop{"title": {Type: TypeString}},
	}
	s, err := Compile(def)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	// Mutating the definition after compilation must not leak into the
	// compiled schema.
	def.Props["sneaky"] = Prop{Type: TypeBool}
	if _, ok := s.Prop("sneaky"); ok {
		t.Error("definition mutation leaked into compiled schema")
	}
}

func TestPropNamesAreSorted(t *testing.T) {
	s := MustCompile(Definition{
		Props: map[string]Prop{
			"zeta":  {Type: TypeString},
			"alpha": {Type: TypeString},
			"mid":   {Type: TypeString},
		},
	})
	names := s.PropNames()
	want := []string{"alpha", "mid", "zeta"}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("PropNames()[%d] = %q, want %q", i, names[i], name)
		}
	}
}

func TestCheckValue(t *testing.T) {
	cases := []struct {
		name  string
		typ   FieldType
		value interface{}
		ok    bool
	}{
		{"string ok", TypeString, "hello", true},
		{"string vs number", TypeString, 42, false},
		{"number int", TypeNumber, 42, true},
		{"number float", TypeNumber, 4.2, true},
		{"number vs string", TypeNumber, "42", false},
		{"bool ok", TypeBool, true, true},
		{"bool vs number", TypeBool, 1, false},
		{"object ok", TypeObject, map[string]interface{}{"a": 1}, true},
		{"object vs slice", TypeObject, []interface{}{1}, false},
		{"array generic", TypeArray, []interface{}{"a"}, true},
		{"array strings", TypeArray, []string{"a"}, true},
		{"array vs string", TypeArray, "a", false},
		{"date rfc3339", TypeDate, "2024-01-02T00:00:00Z", true},
		{"date garbage", TypeDate, "yesterday", false},
		{"nil always ok", TypeString, nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reason := CheckValue(tc.typ, tc.value)
			if tc.ok && reason != "" {
				t.Errorf("expected ok, got %q", reason)
			}
			if !tc.ok && reason == "" {
				t.Error("expected a mismatch reason, got none")
			}
		})
	}
}
