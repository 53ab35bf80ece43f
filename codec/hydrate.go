package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/reoring/adtree"
	eng "github.com/reoring/adtree/internal/engine"
)

// Hydrate rebuilds a tree of type ref from a decoded JSON value. Numbers may
// arrive as json.Number (see Unmarshal) or as Go numeric types. Error paths
// are JSON Pointers into v.
func Hydrate(reg *adtree.Registry, v any, ref adtree.TypeRef) (adtree.Node, error) {
	return hydrate(reg, v, ref, "")
}

func hydrate(reg *adtree.Registry, v any, ref adtree.TypeRef, ptr string) (adtree.Node, error) {
	d, err := reg.ResolveRef(ref)
	if err != nil {
		return nil, err
	}
	switch d.Kind {
	case adtree.KindPrimitive:
		return hydrateScalar(d, v, ptr)
	case adtree.KindVector:
		arr, ok := v.([]any)
		if !ok {
			return nil, wrongJSON(ptr, d, "array", v)
		}
		out := &adtree.VectorNode{ItemType: d.Item}
		if len(arr) > 0 {
			out.Items = make([]adtree.Node, len(arr))
			for i, el := range arr {
				n, err := hydrate(reg, el, d.Item, ptr+"/"+strconv.Itoa(i))
				if err != nil {
					return nil, err
				}
				out.Items[i] = n
			}
		}
		return out, nil
	case adtree.KindEnum:
		return hydrateEnum(reg, d, v, ptr)
	}
	return nil, adtree.IssueAtPointer(pointer(ptr), adtree.CodeInvalidSchema, fmt.Sprintf("%s has kind %s", d.Name, d.Kind))
}

func hydrateScalar(d *adtree.TypeDescriptor, v any, ptr string) (adtree.Node, error) {
	switch d.Primitive {
	case adtree.Bool:
		b, ok := v.(bool)
		if !ok {
			return nil, wrongJSON(ptr, d, "boolean", v)
		}
		return adtree.NewScalar(b), nil
	case adtree.Unsigned:
		s, err := unsignedIn(v)
		if err != nil {
			iss := adtree.IssueAtPointer(pointer(ptr), adtree.CodeInvalidValue, err.Error())
			iss[0].Cause = err
			return nil, iss
		}
		return adtree.NewScalar(s), nil
	default:
		s, ok := v.(string)
		if !ok {
			return nil, wrongJSON(ptr, d, "string", v)
		}
		return adtree.NewScalar(s), nil
	}
}

// unsignedIn returns the canonical decimal text of a non-negative integer.
func unsignedIn(v any) (string, error) {
	switch t := v.(type) {
	case json.Number:
		n, err := strconv.ParseUint(string(t), 10, 64)
		if err != nil {
			return "", fmt.Errorf("%s is not an unsigned integer", t)
		}
		return strconv.FormatUint(n, 10), nil
	case uint64:
		return strconv.FormatUint(t, 10), nil
	case uint:
		return strconv.FormatUint(uint64(t), 10), nil
	case int:
		if t >= 0 {
			return strconv.Itoa(t), nil
		}
	case int64:
		if t >= 0 {
			return strconv.FormatInt(t, 10), nil
		}
	case float64:
		if t >= 0 && t == math.Trunc(t) && t < math.MaxUint64 {
			return strconv.FormatUint(uint64(t), 10), nil
		}
	}
	return "", fmt.Errorf("%v (%T) is not an unsigned integer", v, v)
}

func hydrateEnum(reg *adtree.Registry, d *adtree.TypeDescriptor, v any, ptr string) (adtree.Node, error) {
	if v == nil {
		none, ok := d.Variant(adtree.OptionNone)
		if !ok {
			return nil, adtree.IssueAtPointer(pointer(ptr), adtree.CodeUnknownVariant, d.Name+" has no None variant for null", "name", adtree.OptionNone)
		}
		return reg.DefaultVariant(none)
	}
	if d.IsOption() {
		some := d.Variants[1]
		inner, err := hydrate(reg, v, some.Fields[0], ptr)
		if err != nil {
			return nil, err
		}
		return adtree.NewEnum(some, inner), nil
	}
	switch t := v.(type) {
	case string:
		vd, err := lookupVariant(d, t, ptr)
		if err != nil {
			return nil, err
		}
		if !vd.IsUnit() {
			return nil, adtree.IssueAtPointer(pointer(ptr), adtree.CodeInvalidType, fmt.Sprintf("%s::%s takes %d fields, got a bare name", d.Name, t, len(vd.Fields)))
		}
		return adtree.NewEnum(vd), nil
	case map[string]any:
		if len(t) != 1 {
			return nil, adtree.IssueAtPointer(pointer(ptr), adtree.CodeInvalidType, fmt.Sprintf("%s expects a single-entry object, got %d entries", d.Name, len(t)))
		}
		for name, body := range t {
			return hydrateTagged(reg, d, name, body, ptr)
		}
	}
	return nil, wrongJSON(ptr, d, "string or single-entry object", v)
}

func hydrateTagged(reg *adtree.Registry, d *adtree.TypeDescriptor, name string, body any, ptr string) (adtree.Node, error) {
	vd, err := lookupVariant(d, name, ptr)
	if err != nil {
		return nil, err
	}
	at := ptr + "/" + eng.EscapePointerToken(name)
	switch len(vd.Fields) {
	case 0:
		if body != nil {
			return nil, adtree.IssueAtPointer(pointer(at), adtree.CodeInvalidType, d.Name+"::"+name+" is a unit variant")
		}
		return adtree.NewEnum(vd), nil
	case 1:
		f, err := hydrate(reg, body, vd.Fields[0], at)
		if err != nil {
			return nil, err
		}
		return adtree.NewEnum(vd, f), nil
	default:
		arr, ok := body.([]any)
		if !ok || len(arr) != len(vd.Fields) {
			return nil, adtree.IssueAtPointer(pointer(at), adtree.CodeInvalidType, fmt.Sprintf("%s::%s expects an array of %d fields", d.Name, name, len(vd.Fields)))
		}
		fields := make([]adtree.Node, len(arr))
		for i, el := range arr {
			n, err := hydrate(reg, el, vd.Fields[i], at+"/"+strconv.Itoa(i))
			if err != nil {
				return nil, err
			}
			fields[i] = n
		}
		return adtree.NewEnum(vd, fields...), nil
	}
}

func lookupVariant(d *adtree.TypeDescriptor, name, ptr string) (adtree.VariantDescriptor, error) {
	vd, ok := d.Variant(name)
	if !ok {
		return vd, adtree.IssueAtPointer(pointer(ptr), adtree.CodeUnknownVariant, d.Name+"::"+name, "name", name)
	}
	return vd, nil
}

func wrongJSON(ptr string, d *adtree.TypeDescriptor, want string, got any) error {
	return adtree.IssueAtPointer(pointer(ptr), adtree.CodeInvalidType, fmt.Sprintf("%s expects %s, got %s", d.Name, want, jsonKind(got)))
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case json.Number, float64, int, int64, uint64, uint:
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

func pointer(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
