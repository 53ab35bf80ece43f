package jsonschema

import (
	"fmt"
	"strconv"

	"github.com/reoring/adtree"
)

// Export describes the algebraic JSON encoding of ref. Every named type
// reachable from ref lands in $defs and is referenced by pointer, so
// recursive schemas stay finite; inline types are expanded in place.
//
// The schema admits every document codec.Hydrate accepts, including the
// lenient forms the codec never writes: {"Unit": null} for a unit variant
// and null for any enum with a unit None variant.
func Export(reg *adtree.Registry, ref adtree.TypeRef) (*Schema, error) {
	x := &exporter{reg: reg, defs: map[string]*Schema{}}
	body, err := x.ref(ref)
	if err != nil {
		return nil, err
	}
	body.Schema = Draft
	body.Title = ref.String()
	body.Defs = x.defs
	return body, nil
}

type exporter struct {
	reg  *adtree.Registry
	defs map[string]*Schema
}

func (x *exporter) ref(ref adtree.TypeRef) (*Schema, error) {
	if ref.Inline != nil {
		return x.describe(ref.Inline)
	}
	if _, ok := x.defs[ref.Name]; !ok {
		d, err := x.reg.Resolve(ref.Name)
		if err != nil {
			return nil, err
		}
		// Reserve the slot first so self references terminate.
		x.defs[ref.Name] = &Schema{}
		s, err := x.describe(d)
		if err != nil {
			return nil, err
		}
		x.defs[ref.Name] = s
	}
	return &Schema{Ref: "#/$defs/" + ref.Name}, nil
}

func (x *exporter) describe(d *adtree.TypeDescriptor) (*Schema, error) {
	switch d.Kind {
	case adtree.KindPrimitive:
		return primitive(d), nil
	case adtree.KindVector:
		items, err := x.ref(d.Item)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "array", Items: items}, nil
	case adtree.KindEnum:
		return x.enum(d)
	}
	return nil, fmt.Errorf("jsonschema: %s has kind %s", d.Name, d.Kind)
}

func primitive(d *adtree.TypeDescriptor) *Schema {
	switch d.Primitive {
	case adtree.Bool:
		return &Schema{Type: "boolean", Default: d.Default}
	case adtree.Unsigned:
		zero := 0
		s := &Schema{Type: "integer", Minimum: &zero}
		if txt, ok := d.Default.(string); ok {
			if n, err := strconv.ParseUint(txt, 10, 64); err == nil {
				s.Default = n
			}
		}
		return s
	default:
		return &Schema{Type: "string", Default: d.Default}
	}
}

func (x *exporter) enum(d *adtree.TypeDescriptor) (*Schema, error) {
	if d.IsOption() {
		inner, err := x.ref(d.Variants[1].Fields[0])
		if err != nil {
			return nil, err
		}
		return &Schema{OneOf: []*Schema{{Type: "null"}, inner}}, nil
	}
	var units []any
	var tagged, unitObjs []*Schema
	nullable := false
	for _, v := range d.Variants {
		switch len(v.Fields) {
		case 0:
			units = append(units, v.Name)
			unitObjs = append(unitObjs, single(v.Name, &Schema{Type: "null"}))
			if v.Name == adtree.OptionNone {
				nullable = true
			}
		case 1:
			body, err := x.ref(v.Fields[0])
			if err != nil {
				return nil, err
			}
			tagged = append(tagged, single(v.Name, body))
		default:
			items := make([]*Schema, len(v.Fields))
			for i, f := range v.Fields {
				s, err := x.ref(f)
				if err != nil {
					return nil, err
				}
				items[i] = s
			}
			n := len(items)
			tagged = append(tagged, single(v.Name, &Schema{Type: "array", PrefixItems: items, MinItems: &n, MaxItems: &n}))
		}
	}
	var alts []*Schema
	if nullable {
		alts = append(alts, &Schema{Type: "null"})
	}
	if len(units) > 0 {
		alts = append(alts, &Schema{Type: "string", Enum: units})
	}
	alts = append(alts, tagged...)
	alts = append(alts, unitObjs...)
	if len(alts) == 1 {
		return alts[0], nil
	}
	return &Schema{OneOf: alts}, nil
}

func single(name string, body *Schema) *Schema {
	return &Schema{
		Type:                 "object",
		Properties:           map[string]*Schema{name: body},
		Required:             []string{name},
		AdditionalProperties: false,
	}
}
