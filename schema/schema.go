// Package schema compiles schema definitions into the immutable
// descriptors the model registry hands out. A definition declares typed
// properties plus optional virtual computed properties and instance/static
// method extensions; compilation validates the declaration once so that
// per-document validation only ever checks values against known types.
package schema

import (
	"fmt"
	"sort"
	"time"
)

// FieldType enumerates the value types a property may declare.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeNumber FieldType = "number"
	TypeBool   FieldType = "bool"
	TypeObject FieldType = "object"
	TypeArray  FieldType = "array"
	TypeDate   FieldType = "date"
)

// knownTypes guards against typos in hand-written and file-loaded definitions.
var knownTypes = map[FieldType]bool{
	TypeString: true,
	TypeNumber: true,
	TypeBool:   true,
	TypeObject: true,
	TypeArray:  true,
	TypeDate:   true,
}

// Prop declares one property of a schema.
type Prop struct {
	Type     FieldType   `yaml:"type"`
	Default  interface{} `yaml:"default,omitempty"`
	Required bool        `yaml:"required,omitempty"`
	Index    bool        `yaml:"index,omitempty"`
	// Hidden excludes the property from default field selection on search
	// requests; it can still be selected explicitly.
	Hidden bool `yaml:"hidden,omitempty"`
	// Ref names the model a string (or array-of-string) property refers
	// to. Populate resolves reference values through this model.
	Ref string `yaml:"ref,omitempty"`
}

// Accessor is the view of a document that virtuals and methods operate
// on. The core's Document type implements it.
type Accessor interface {
	ID() string
	Get(field string) interface{}
	Set(field string, value interface{})
}

// Virtual is a computed property: a getter and an optional setter.
type Virtual struct {
	Get func(doc Accessor) interface{}
	Set func(doc Accessor, value interface{})
}

// Method is an instance method extension invoked through a document.
type Method func(doc Accessor, args ...interface{}) (interface{}, error)

// Static is a model-level method extension.
type Static func(args ...interface{}) (interface{}, error)

// Definition is the user-supplied declaration a Schema is compiled from.
type Definition struct {
	Props    map[string]Prop    `yaml:"props"`
	Virtuals map[string]Virtual `yaml:"-"`
	Methods  map[string]Method  `yaml:"-"`
	Statics  map[string]Static  `yaml:"-"`
}

// Schema is a compiled, immutable descriptor. Compile copies every map
// out of the definition, so later mutation of the definition has no
// effect on registered models.
type Schema struct {
	props    map[string]Prop
	virtuals map[string]Virtual
	methods  map[string]Method
	statics  map[string]Static
}

// Compile validates a definition and freezes it into a Schema.
func Compile(def Definition) (*Schema, error) {
	s := &Schema{
		props:    make(map[string]Prop, len(def.Props)),
		virtuals: make(map[string]Virtual, len(def.Virtuals)),
		methods:  make(map[string]Method, len(def.Methods)),
		statics:  make(map[string]Static, len(def.Statics)),
	}

	for name, prop := range def.Props {
		if name == "" {
			return nil, fmt.Errorf("schema property with empty name")
		}
		if !knownTypes[prop.Type] {
			return nil, fmt.Errorf("property %s: unknown type %q", name, prop.Type)
		}
		if prop.Ref != "" && prop.Type != TypeString && prop.Type != TypeArray {
			return nil, fmt.Errorf("property %s: ref requires string or array type, got %s", name, prop.Type)
		}
		if prop.Default != nil {
			if reason := CheckValue(prop.Type, prop.Default); reason != "" {
				return nil, fmt.Errorf("property %s: default %s", name, reason)
			}
		}
		s.props[name] = prop
	}

	for name, v := range def.Virtuals {
		if v.Get == nil {
			return nil, fmt.Errorf("virtual %s: getter is required", name)
		}
		if _, clash := s.props[name]; clash {
			return nil, fmt.Errorf("virtual %s shadows a declared property", name)
		}
		s.virtuals[name] = v
	}
	for name, m := range def.Methods {
		if m == nil {
			return nil, fmt.Errorf("method %s is nil", name)
		}
		s.methods[name] = m
	}
	for name, st := range def.Statics {
		if st == nil {
			return nil, fmt.Errorf("static %s is nil", name)
		}
		s.statics[name] = st
	}

	return s, nil
}

// MustCompile is Compile for definitions known-good at init time.
func MustCompile(def Definition) *Schema {
	s, err := Compile(def)
	if err != nil {
		panic(err)
	}
	return s
}

// Prop returns the declared property and whether it exists.
func (s *Schema) Prop(name string) (Prop, bool) {
	p, ok := s.props[name]
	return p, ok
}

// PropNames returns the declared property names in sorted order.
func (s *Schema) PropNames() []string {
	names := make([]string, 0, len(s.props))
	for name := range s.props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Virtual returns the named virtual and whether it exists.
func (s *Schema) Virtual(name string) (Virtual, bool) {
	v, ok := s.virtuals[name]
	return v, ok
}

// Method returns the named instance method and whether it exists.
func (s *Schema) Method(name string) (Method, bool) {
	m, ok := s.methods[name]
	return m, ok
}

// Static returns the named static method and whether it exists.
func (s *Schema) Static(name string) (Static, bool) {
	st, ok := s.statics[name]
	return st, ok
}

// Definition reconstructs a props-only definition, used when writing a
// schema back to a file. Virtuals and methods are code and do not round-trip.
func (s *Schema) Definition() Definition {
	props := make(map[string]Prop, len(s.props))
	for name, p := range s.props {
		props[name] = p
	}
	return Definition{Props: props}
}

// CheckValue reports why a value does not satisfy the declared type, or
// "" when it does. Numeric checks accept every Go numeric kind as well as
// the float64 that JSON decoding produces.
func CheckValue(t FieldType, v interface{}) string {
	if v == nil {
		return ""
	}
	switch t {
	case TypeString:
		if _, ok := v.(string); !ok {
			return fmt.Sprintf("value %v (%T) is not a string", v, v)
		}
	case TypeNumber:
		if !isNumber(v) {
			return fmt.Sprintf("value %v (%T) is not a number", v, v)
		}
	case TypeBool:
		if _, ok := v.(bool); !ok {
			return fmt.Sprintf("value %v (%T) is not a bool", v, v)
		}
	case TypeObject:
		if _, ok := v.(map[string]interface{}); !ok {
			return fmt.Sprintf("value %v (%T) is not an object", v, v)
		}
	case TypeArray:
		switch v.(type) {
		case []interface{}, []string:
		default:
			return fmt.Sprintf("value %v (%T) is not an array", v, v)
		}
	case TypeDate:
		switch d := v.(type) {
		case time.Time:
		case string:
			if _, err := time.Parse(time.RFC3339, d); err != nil {
				return fmt.Sprintf("value %q is not an RFC3339 date", d)
			}
		default:
			return fmt.Sprintf("value %v (%T) is not a date", v, v)
		}
	}
	return ""
}

func isNumber(v interface{}) bool {
	switch v.(type) {
	case float64, float32,
		int, int64, int32, int16, int8,
		uint, uint64, uint32, uint16, uint8:
		return true
	}
	return false
}
