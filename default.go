package adtree

// DefaultOf builds the minimal valid tree for ref:
//
//   - Primitive: a Scalar holding the declared default
//   - Vector: an empty VectorNode carrying the declared item reference
//   - Enum: the first variant, each field defaulted recursively
//
// Each call returns a fresh tree. On a validated registry the only error is
// unknown_type; an unvalidated one whose first variants loop back to an
// enum already being defaulted yields invalid_schema instead of recursing
// forever.
func (r *Registry) DefaultOf(ref TypeRef) (Node, error) {
	return r.defaultOf(ref, nil)
}

// DefaultVariant builds an EnumNode of variant v with every field defaulted.
func (r *Registry) DefaultVariant(v VariantDescriptor) (*EnumNode, error) {
	return r.defaultVariant(v, nil)
}

// visiting holds the enums whose default is under construction on the
// current call stack.
func (r *Registry) defaultOf(ref TypeRef, visiting map[string]bool) (Node, error) {
	d, err := r.ResolveRef(ref)
	if err != nil {
		return nil, err
	}
	switch d.Kind {
	case KindVector:
		return &VectorNode{ItemType: d.Item}, nil
	case KindEnum:
		if len(d.Variants) == 0 {
			return nil, IssueAtPointer("/", CodeInvalidSchema, d.Name+" has no variants", "name", d.Name)
		}
		if visiting[d.Name] {
			return nil, IssueAtPointer("/", CodeInvalidSchema, d.Name+" has no finite default", "name", d.Name)
		}
		if visiting == nil {
			visiting = map[string]bool{}
		}
		visiting[d.Name] = true
		defer delete(visiting, d.Name)
		return r.defaultVariant(d.Variants[0], visiting)
	default:
		v := d.Default
		if v == nil {
			v = zeroScalar(d.Primitive)
		}
		return &Scalar{Value: v}, nil
	}
}

func (r *Registry) defaultVariant(v VariantDescriptor, visiting map[string]bool) (*EnumNode, error) {
	var fields []Node
	if len(v.Fields) > 0 {
		fields = make([]Node, len(v.Fields))
		for i, f := range v.Fields {
			n, err := r.defaultOf(f, visiting)
			if err != nil {
				return nil, err
			}
			fields[i] = n
		}
	}
	return &EnumNode{Variant: v, Fields: fields}, nil
}
