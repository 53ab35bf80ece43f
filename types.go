package adtree

import (
	"fmt"
	"strings"
)

//go:generate go tool stringer -type=Kind -trimprefix=Kind
//go:generate go tool stringer -type=PrimitiveKind

// Kind is the closed set of descriptor shapes.
type Kind int

const (
	KindPrimitive Kind = iota
	KindVector
	KindEnum
)

// PrimitiveKind selects the leaf representation of a Primitive descriptor.
type PrimitiveKind int

const (
	Text     PrimitiveKind = iota // Scalar holds a string.
	Bool                          // Scalar holds a bool.
	Unsigned                      // Scalar holds the decimal text of a non-negative integer.
)

// ParsePrimitiveKind accepts the lower-case names used in schema files.
func ParsePrimitiveKind(s string) (PrimitiveKind, error) {
	switch strings.ToLower(s) {
	case "text", "string":
		return Text, nil
	case "bool", "boolean":
		return Bool, nil
	case "unsigned", "usize", "uint":
		return Unsigned, nil
	}
	return 0, fmt.Errorf("adtree: unknown primitive kind %q", s)
}

func (k PrimitiveKind) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(k.String())), nil
}

func (k *PrimitiveKind) UnmarshalText(b []byte) error {
	v, err := ParsePrimitiveKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(k.String())), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "primitive":
		*k = KindPrimitive
	case "vector":
		*k = KindVector
	case "enum":
		*k = KindEnum
	default:
		return fmt.Errorf("adtree: unknown descriptor kind %q", b)
	}
	return nil
}

// TypeRef points at a descriptor either by registry name or inline.
// By-name references are resolved lazily, which is what makes
// self-referential schemas possible.
type TypeRef struct {
	Name   string          `json:"name,omitempty"`
	Inline *TypeDescriptor `json:"inline,omitempty"`
}

// Ref references a registered descriptor by name.
func Ref(name string) TypeRef { return TypeRef{Name: name} }

// Inline embeds a descriptor directly.
func Inline(d *TypeDescriptor) TypeRef { return TypeRef{Inline: d} }

// IsZero reports whether the reference points nowhere.
func (r TypeRef) IsZero() bool { return r.Name == "" && r.Inline == nil }

// String returns the referenced name, or the inline descriptor's name.
func (r TypeRef) String() string {
	if r.Inline != nil {
		return r.Inline.Name
	}
	return r.Name
}

// TypeDescriptor describes a primitive, vector or enum shape.
type TypeDescriptor struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name"`

	// Primitive
	Primitive PrimitiveKind `json:"primitive,omitempty"`
	Default   any           `json:"default,omitempty"`
	// Renderer is a hint for UI collaborators; the core never reads it.
	Renderer string `json:"renderer,omitempty"`

	// Vector
	Item TypeRef `json:"item"`

	// Enum
	Variants []VariantDescriptor `json:"variants,omitempty"`
}

// VariantDescriptor is one named alternative of an enum.
type VariantDescriptor struct {
	Name   string    `json:"name"`
	Fields []TypeRef `json:"fields,omitempty"`
}

// IsUnit reports whether the variant carries no fields.
func (v VariantDescriptor) IsUnit() bool { return len(v.Fields) == 0 }

// Primitive declares a leaf type with the zero default of its kind.
func Primitive(name string, kind PrimitiveKind) *TypeDescriptor {
	return &TypeDescriptor{Kind: KindPrimitive, Name: name, Primitive: kind, Default: zeroScalar(kind)}
}

// WithDefault returns a copy of a primitive descriptor with another default.
func (d *TypeDescriptor) WithDefault(v any) *TypeDescriptor {
	cp := *d
	cp.Default = v
	return &cp
}

// WithRenderer returns a copy of the descriptor carrying a renderer hint.
func (d *TypeDescriptor) WithRenderer(r string) *TypeDescriptor {
	cp := *d
	cp.Renderer = r
	return &cp
}

// Vector declares a homogeneous sequence. The name is derived from the item.
func Vector(item TypeRef) *TypeDescriptor {
	return &TypeDescriptor{Kind: KindVector, Name: "Vec<" + item.String() + ">", Item: item}
}

// Enum declares a tagged union; the first variant is the default.
func Enum(name string, variants ...VariantDescriptor) *TypeDescriptor {
	return &TypeDescriptor{Kind: KindEnum, Name: name, Variants: variants}
}

// Variant declares an enum alternative with positional fields.
func Variant(name string, fields ...TypeRef) VariantDescriptor {
	return VariantDescriptor{Name: name, Fields: fields}
}

// Option variant names. The codec flattens Some and maps None to null.
const (
	OptionNone = "None"
	OptionSome = "Some"
)

// OptionName is the registry name Option derives from its base.
func OptionName(base string) string { return "Option<" + base + ">" }

// Option builds the two-variant enum None | Some(base).
func Option(base TypeRef) *TypeDescriptor {
	return Enum(OptionName(base.String()),
		Variant(OptionNone),
		Variant(OptionSome, base),
	)
}

// IsOption reports whether the descriptor has exactly the Option shape.
func (d *TypeDescriptor) IsOption() bool {
	if d == nil || d.Kind != KindEnum || len(d.Variants) != 2 {
		return false
	}
	none, some := d.Variants[0], d.Variants[1]
	return none.Name == OptionNone && none.IsUnit() && some.Name == OptionSome && len(some.Fields) == 1
}

// Variant looks up a variant by exact, case-sensitive name.
func (d *TypeDescriptor) Variant(name string) (VariantDescriptor, bool) {
	for _, v := range d.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return VariantDescriptor{}, false
}

// VariantNames lists the discriminants in declaration order.
func (d *TypeDescriptor) VariantNames() []string {
	out := make([]string, len(d.Variants))
	for i, v := range d.Variants {
		out[i] = v.Name
	}
	return out
}

func zeroScalar(kind PrimitiveKind) any {
	switch kind {
	case Bool:
		return false
	case Unsigned:
		return "0"
	default:
		return ""
	}
}
