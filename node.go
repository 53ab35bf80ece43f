package adtree

import "fmt"

// Node is an editable value conforming to some TypeDescriptor. The set of
// implementations is closed: *Scalar, *VectorNode and *EnumNode.
//
// Nodes are immutable once constructed. Updates build new nodes along the
// edited path and share everything else with the previous tree.
type Node interface {
	Kind() Kind
	isNode()
}

// Scalar matches a Primitive. Value is a string (Text and Unsigned) or a bool.
type Scalar struct {
	Value any
}

// VectorNode matches a Vector descriptor.
type VectorNode struct {
	Items    []Node
	ItemType TypeRef
}

// EnumNode matches an Enum descriptor. len(Fields) always equals
// len(Variant.Fields).
type EnumNode struct {
	Variant VariantDescriptor
	Fields  []Node
}

func (*Scalar) Kind() Kind     { return KindPrimitive }
func (*VectorNode) Kind() Kind { return KindVector }
func (*EnumNode) Kind() Kind   { return KindEnum }

func (*Scalar) isNode()     {}
func (*VectorNode) isNode() {}
func (*EnumNode) isNode()   {}

// NewScalar wraps a leaf value.
func NewScalar(v any) *Scalar { return &Scalar{Value: v} }

// NewVector builds a vector node from items.
func NewVector(itemType TypeRef, items ...Node) *VectorNode {
	return &VectorNode{Items: items, ItemType: itemType}
}

// NewEnum builds an enum node; it panics when the field count does not match
// the variant, which is always a programming error.
func NewEnum(v VariantDescriptor, fields ...Node) *EnumNode {
	if len(fields) != len(v.Fields) {
		panic(fmt.Sprintf("adtree: variant %s takes %d fields, got %d", v.Name, len(v.Fields), len(fields)))
	}
	if len(fields) == 0 {
		fields = nil
	}
	return &EnumNode{Variant: v, Fields: fields}
}

// Children returns the container's child slice (nil for scalars). Callers
// must not modify it.
func Children(n Node) []Node {
	switch t := n.(type) {
	case *VectorNode:
		return t.Items
	case *EnumNode:
		return t.Fields
	}
	return nil
}

// Equal reports structural equality. Variants compare by name and field
// references; vectors also compare their item reference.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case *Scalar:
		y, ok := b.(*Scalar)
		return ok && x.Value == y.Value
	case *VectorNode:
		y, ok := b.(*VectorNode)
		if !ok || !sameRef(x.ItemType, y.ItemType) || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !Equal(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	case *EnumNode:
		y, ok := b.(*EnumNode)
		if !ok || !sameVariant(x.Variant, y.Variant) || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if !Equal(x.Fields[i], y.Fields[i]) {
				return false
			}
		}
		return true
	}
	return a == nil && b == nil
}

func sameVariant(a, b VariantDescriptor) bool {
	if a.Name != b.Name || len(a.Fields) != len(b.Fields) {
		return false
	}
	for i := range a.Fields {
		if !sameRef(a.Fields[i], b.Fields[i]) {
			return false
		}
	}
	return true
}

// sameRef compares references by name; inline descriptors compare by their
// derived name, which is unique per shape (Vec<T>, Option<T>).
func sameRef(a, b TypeRef) bool {
	return a.String() == b.String()
}

// Conforms checks n against the descriptor ref points to: field counts match
// the current variant, every vector item conforms to the item type, and
// scalar values have the Go type of their primitive kind.
func (r *Registry) Conforms(n Node, ref TypeRef) error {
	return r.conforms(n, ref, nil)
}

func (r *Registry) conforms(n Node, ref TypeRef, p Path) error {
	d, err := r.ResolveRef(ref)
	if err != nil {
		return err
	}
	switch d.Kind {
	case KindPrimitive:
		s, ok := n.(*Scalar)
		if !ok {
			return NewIssue(p, CodeInvalidType, "expected scalar for "+d.Name)
		}
		if !scalarFits(d.Primitive, s.Value) {
			return NewIssue(p, CodeInvalidType, fmt.Sprintf("%T does not fit %s", s.Value, d.Name))
		}
	case KindVector:
		v, ok := n.(*VectorNode)
		if !ok {
			return NewIssue(p, CodeInvalidType, "expected vector for "+d.Name)
		}
		for i, it := range v.Items {
			if err := r.conforms(it, d.Item, p.Child(i)); err != nil {
				return err
			}
		}
	case KindEnum:
		e, ok := n.(*EnumNode)
		if !ok {
			return NewIssue(p, CodeInvalidType, "expected enum for "+d.Name)
		}
		decl, ok := d.Variant(e.Variant.Name)
		if !ok {
			return NewIssue(p, CodeUnknownVariant, d.Name+"::"+e.Variant.Name, "name", e.Variant.Name)
		}
		if len(e.Fields) != len(decl.Fields) {
			return NewIssue(p, CodeInvalidType, fmt.Sprintf("%s takes %d fields, got %d", decl.Name, len(decl.Fields), len(e.Fields)))
		}
		for i, f := range e.Fields {
			if err := r.conforms(f, decl.Fields[i], p.Child(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func scalarFits(kind PrimitiveKind, v any) bool {
	switch v.(type) {
	case bool:
		return kind == Bool
	case string:
		return kind != Bool
	}
	return false
}
