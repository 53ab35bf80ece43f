// Package schemafile reads type descriptors from YAML documents.
//
// A file holds one or more YAML documents, each with a "types" list:
//
//	types:
//	  - name: usize
//	    primitive: unsigned
//	  - name: Emotion
//	    enum: [Sadness, Happiness]
//	  - name: BardPredicate
//	    enum:
//	      - InHalfBeat
//	      - PrimaryEmotion: [Emotion]
//	      - EmotionLevel: [Emotion, usize]
//	  - name: Tree
//	    enum:
//	      - Sequence: [{vec: Tree}]
//	      - Note: [{option: String}]
//
// Type references are either a registered name or an inline {vec: T} or
// {option: T}, which nest.
package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reoring/adtree"
)

// Document is one YAML document of a schema file.
type Document struct {
	Types []TypeDecl `yaml:"types"`
}

// TypeDecl declares one named type. Exactly one of Primitive, Vector, Option
// and Enum must be set.
type TypeDecl struct {
	Name      string        `yaml:"name"`
	Primitive string        `yaml:"primitive,omitempty"`
	Default   any           `yaml:"default,omitempty"`
	Renderer  string        `yaml:"renderer,omitempty"`
	Vector    *RefDecl      `yaml:"vector,omitempty"`
	Option    *RefDecl      `yaml:"option,omitempty"`
	Enum      []VariantDecl `yaml:"enum,omitempty"`
}

// RefDecl is a type reference as written in YAML.
type RefDecl struct {
	Ref adtree.TypeRef
}

// VariantDecl is one enum alternative: a bare name or a single-entry
// mapping from the name to its field list.
type VariantDecl struct {
	Name   string
	Fields []RefDecl
}

func (r *RefDecl) UnmarshalYAML(n *yaml.Node) error {
	ref, err := parseRef(n)
	if err != nil {
		return err
	}
	r.Ref = ref
	return nil
}

func (r RefDecl) MarshalYAML() (any, error) {
	return refYAML(r.Ref), nil
}

func (v *VariantDecl) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		v.Name = n.Value
		return nil
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return posErr(n, "variant must be a name or a single-entry mapping")
		}
		v.Name = n.Content[0].Value
		body := n.Content[1]
		switch body.Kind {
		case yaml.SequenceNode:
			return body.Decode(&v.Fields)
		case yaml.ScalarNode:
			if body.Tag == "!!null" {
				return nil
			}
		}
		var one RefDecl
		if err := body.Decode(&one); err != nil {
			return err
		}
		v.Fields = []RefDecl{one}
		return nil
	}
	return posErr(n, "variant must be a name or a single-entry mapping")
}

func (v VariantDecl) MarshalYAML() (any, error) {
	if len(v.Fields) == 0 {
		return v.Name, nil
	}
	return map[string]any{v.Name: v.Fields}, nil
}

func parseRef(n *yaml.Node) (adtree.TypeRef, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if strings.TrimSpace(n.Value) == "" {
			return adtree.TypeRef{}, posErr(n, "empty type reference")
		}
		return adtree.Ref(n.Value), nil
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return adtree.TypeRef{}, posErr(n, "inline type must have exactly one of vec, option")
		}
		inner, err := parseRef(n.Content[1])
		if err != nil {
			return adtree.TypeRef{}, err
		}
		switch n.Content[0].Value {
		case "vec", "vector":
			return adtree.Inline(adtree.Vector(inner)), nil
		case "option":
			return adtree.Inline(adtree.Option(inner)), nil
		}
		return adtree.TypeRef{}, posErr(n, "unknown inline type "+strconv.Quote(n.Content[0].Value))
	}
	return adtree.TypeRef{}, posErr(n, "type reference must be a name or {vec: T} / {option: T}")
}

func refYAML(r adtree.TypeRef) any {
	if r.Inline == nil {
		return r.Name
	}
	d := r.Inline
	if d.IsOption() {
		return map[string]any{"option": refYAML(d.Variants[1].Fields[0])}
	}
	if d.Kind == adtree.KindVector {
		return map[string]any{"vec": refYAML(d.Item)}
	}
	return d.Name
}

func posErr(n *yaml.Node, msg string) error {
	return fmt.Errorf("line %d: %s", n.Line, msg)
}

// Parse decodes every document in data and returns the declared
// descriptors in file order. Unknown keys are rejected.
func Parse(data []byte) ([]*adtree.TypeDescriptor, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var out []*adtree.TypeDescriptor
	for {
		var doc Document
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("schemafile: %w", err)
		}
		for i, td := range doc.Types {
			d, err := td.Descriptor()
			if err != nil {
				return nil, fmt.Errorf("schemafile: types[%d]: %w", i, err)
			}
			out = append(out, d)
		}
	}
	return out, nil
}

// Descriptor converts the declaration into a TypeDescriptor.
func (td TypeDecl) Descriptor() (*adtree.TypeDescriptor, error) {
	set := 0
	for _, b := range []bool{td.Primitive != "", td.Vector != nil, td.Option != nil, td.Enum != nil} {
		if b {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("type %q must declare exactly one of primitive, vector, option, enum", td.Name)
	}
	if td.Default != nil && td.Primitive == "" {
		return nil, fmt.Errorf("type %q: only primitives take a default", td.Name)
	}
	var d *adtree.TypeDescriptor
	switch {
	case td.Primitive != "":
		if td.Name == "" {
			return nil, errors.New("primitive without a name")
		}
		kind, err := adtree.ParsePrimitiveKind(td.Primitive)
		if err != nil {
			return nil, err
		}
		d = adtree.Primitive(td.Name, kind)
		if td.Default != nil {
			v, err := primitiveDefault(kind, td.Default)
			if err != nil {
				return nil, fmt.Errorf("type %q: %w", td.Name, err)
			}
			d = d.WithDefault(v)
		}
	case td.Vector != nil:
		d = adtree.Vector(td.Vector.Ref)
	case td.Option != nil:
		d = adtree.Option(td.Option.Ref)
	default:
		if td.Name == "" {
			return nil, errors.New("enum without a name")
		}
		vs := make([]adtree.VariantDescriptor, len(td.Enum))
		for i, vd := range td.Enum {
			var fields []adtree.TypeRef
			for _, f := range vd.Fields {
				fields = append(fields, f.Ref)
			}
			vs[i] = adtree.Variant(vd.Name, fields...)
		}
		d = adtree.Enum(td.Name, vs...)
	}
	if td.Name != "" && td.Name != d.Name {
		cp := *d
		cp.Name = td.Name
		d = &cp
	}
	if td.Renderer != "" {
		d = d.WithRenderer(td.Renderer)
	}
	return d, nil
}

func primitiveDefault(kind adtree.PrimitiveKind, v any) (any, error) {
	switch kind {
	case adtree.Bool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case adtree.Unsigned:
		switch t := v.(type) {
		case int:
			if t >= 0 {
				return strconv.Itoa(t), nil
			}
		case uint64:
			return strconv.FormatUint(t, 10), nil
		case string:
			if n, err := strconv.ParseUint(strings.TrimSpace(t), 10, 64); err == nil {
				return strconv.FormatUint(n, 10), nil
			}
		}
	default:
		switch t := v.(type) {
		case string:
			return t, nil
		case int, bool, float64:
			return fmt.Sprint(t), nil
		}
	}
	return nil, fmt.Errorf("default %v does not fit %s", v, kind)
}

// Decls converts descriptors back into declarations, the inverse of Parse
// for every descriptor Parse can produce.
func Decls(ds []*adtree.TypeDescriptor) []TypeDecl {
	out := make([]TypeDecl, 0, len(ds))
	for _, d := range ds {
		td := TypeDecl{Name: d.Name, Renderer: d.Renderer}
		switch {
		case d.Kind == adtree.KindPrimitive:
			b, _ := d.Primitive.MarshalText()
			td.Primitive = string(b)
			if d.Default != nil && d.Default != adtree.Primitive("", d.Primitive).Default {
				td.Default = d.Default
			}
		case d.Kind == adtree.KindVector:
			td.Vector = &RefDecl{Ref: d.Item}
		case d.IsOption():
			td.Option = &RefDecl{Ref: d.Variants[1].Fields[0]}
		default:
			td.Enum = make([]VariantDecl, len(d.Variants))
			for i, v := range d.Variants {
				vd := VariantDecl{Name: v.Name}
				for _, f := range v.Fields {
					vd.Fields = append(vd.Fields, RefDecl{Ref: f})
				}
				td.Enum[i] = vd
			}
		}
		out = append(out, td)
	}
	return out
}

// Marshal writes descriptors as a single schema document.
func Marshal(ds []*adtree.TypeDescriptor) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(Document{Types: Decls(ds)}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RegisterAll adds ds to reg in order.
func RegisterAll(reg *adtree.Registry, ds []*adtree.TypeDescriptor) error {
	for _, d := range ds {
		if err := reg.Register(d); err != nil {
			return fmt.Errorf("schemafile: register %s: %w", d.Name, err)
		}
	}
	return nil
}

// LoadFile parses the schema file at path and registers its types.
func LoadFile(reg *adtree.Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("schemafile: %w", err)
	}
	ds, err := Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return RegisterAll(reg, ds)
}
