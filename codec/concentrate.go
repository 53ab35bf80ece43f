// Package codec converts editable trees to and from the algebraic JSON
// encoding, where enums follow the externally tagged convention:
//
//	unit variant          "Me"
//	one field             {"Singing": "Origin"}
//	two or more fields    {"EmotionLevel": ["Sadness", 3]}
//	Option Some(x)        x            (flattened, no wrapper)
//	Option None           null
//
// Unsigned integers are kept as decimal text inside the tree and written as
// JSON numbers. Concentrate and Hydrate are inverses for every tree built by
// the updaters in package adtree.
package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/adtree"
)

// Concentrate serializes n, which must conform to ref, into a JSON-ready
// value built from map[string]any, []any, string, bool and uint64.
func Concentrate(reg *adtree.Registry, n adtree.Node, ref adtree.TypeRef) (any, error) {
	return concentrate(reg, n, ref, nil)
}

func concentrate(reg *adtree.Registry, n adtree.Node, ref adtree.TypeRef, p adtree.Path) (any, error) {
	d, err := reg.ResolveRef(ref)
	if err != nil {
		return nil, err
	}
	switch d.Kind {
	case adtree.KindPrimitive:
		s, ok := n.(*adtree.Scalar)
		if !ok {
			return nil, mismatch(p, d, n)
		}
		if d.Primitive == adtree.Unsigned {
			return unsignedOut(s.Value, p)
		}
		return s.Value, nil
	case adtree.KindVector:
		v, ok := n.(*adtree.VectorNode)
		if !ok {
			return nil, mismatch(p, d, n)
		}
		out := make([]any, len(v.Items))
		for i, it := range v.Items {
			c, err := concentrate(reg, it, d.Item, p.Child(i))
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case adtree.KindEnum:
		e, ok := n.(*adtree.EnumNode)
		if !ok {
			return nil, mismatch(p, d, n)
		}
		return concentrateEnum(reg, d, e, p)
	}
	return nil, adtree.NewIssue(p, adtree.CodeInvalidSchema, fmt.Sprintf("%s has kind %s", d.Name, d.Kind))
}

func concentrateEnum(reg *adtree.Registry, d *adtree.TypeDescriptor, e *adtree.EnumNode, p adtree.Path) (any, error) {
	decl, ok := d.Variant(e.Variant.Name)
	if !ok {
		return nil, adtree.NewIssue(p, adtree.CodeUnknownVariant, d.Name+"::"+e.Variant.Name, "name", e.Variant.Name)
	}
	if len(e.Fields) != len(decl.Fields) {
		return nil, adtree.NewIssue(p, adtree.CodeInvalidType, fmt.Sprintf("%s takes %d fields, node has %d", decl.Name, len(decl.Fields), len(e.Fields)))
	}
	switch len(decl.Fields) {
	case 0:
		return decl.Name, nil
	case 1:
		inner, err := concentrate(reg, e.Fields[0], decl.Fields[0], p.Child(0))
		if err != nil {
			return nil, err
		}
		// Some(x) is written as x itself, the way Rust's serde writes
		// Option<T>. Only the exact Option shape is flattened, matching
		// Hydrate; a "Some" variant of any other enum stays tagged.
		if d.IsOption() {
			return inner, nil
		}
		return map[string]any{decl.Name: inner}, nil
	default:
		arr := make([]any, len(decl.Fields))
		for i, f := range decl.Fields {
			c, err := concentrate(reg, e.Fields[i], f, p.Child(i))
			if err != nil {
				return nil, err
			}
			arr[i] = c
		}
		return map[string]any{decl.Name: arr}, nil
	}
}

// unsignedOut parses the decimal text held by an unsigned scalar.
// Surrounding whitespace is ignored and leading zeros are normalised away.
func unsignedOut(v any, p adtree.Path) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, adtree.NewIssue(p, adtree.CodeInvalidType, fmt.Sprintf("unsigned scalar holds %T", v))
	}
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		iss := adtree.NewIssue(p, adtree.CodeInvalidValue, strconv.Quote(s)+" is not an unsigned integer")
		iss[0].Cause = err
		return nil, iss
	}
	return n, nil
}

func mismatch(p adtree.Path, d *adtree.TypeDescriptor, n adtree.Node) error {
	got := "nil"
	if n != nil {
		got = n.Kind().String()
	}
	return adtree.NewIssue(p, adtree.CodeInvalidType, fmt.Sprintf("%s expects a %s node, got %s", d.Name, d.Kind, got))
}
