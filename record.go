package adtree

import "fmt"

// NodeRecord is the generic structural form of a Node. Unlike the algebraic
// codec it needs no registry to read back: every enum record carries its
// full variant descriptor and every vector its item reference.
type NodeRecord struct {
	Kind    Kind               `json:"kind"`
	Value   any                `json:"value"`
	Item    *TypeRef           `json:"item,omitempty"`
	Items   []NodeRecord       `json:"items,omitempty"`
	Variant *VariantDescriptor `json:"variant,omitempty"`
	Fields  []NodeRecord       `json:"fields,omitempty"`
}

// ToRecord converts a tree into its structural record.
func ToRecord(n Node) NodeRecord {
	switch t := n.(type) {
	case *Scalar:
		return NodeRecord{Kind: KindPrimitive, Value: t.Value}
	case *VectorNode:
		item := t.ItemType
		rec := NodeRecord{Kind: KindVector, Item: &item}
		if len(t.Items) > 0 {
			rec.Items = make([]NodeRecord, len(t.Items))
			for i, it := range t.Items {
				rec.Items[i] = ToRecord(it)
			}
		}
		return rec
	case *EnumNode:
		v := t.Variant
		rec := NodeRecord{Kind: KindEnum, Variant: &v}
		if len(t.Fields) > 0 {
			rec.Fields = make([]NodeRecord, len(t.Fields))
			for i, f := range t.Fields {
				rec.Fields[i] = ToRecord(f)
			}
		}
		return rec
	}
	panic(fmt.Sprintf("adtree: unknown node %T", n))
}

// FromRecord rebuilds a tree from its structural record.
func FromRecord(rec NodeRecord) (Node, error) {
	return fromRecord(rec, nil)
}

func fromRecord(rec NodeRecord, p Path) (Node, error) {
	switch rec.Kind {
	case KindPrimitive:
		switch rec.Value.(type) {
		case string, bool:
			return &Scalar{Value: rec.Value}, nil
		}
		return nil, NewIssue(p, CodeInvalidType, fmt.Sprintf("scalar record holds %T", rec.Value))
	case KindVector:
		if rec.Item == nil {
			return nil, NewIssue(p, CodeInvalidType, "vector record without item type")
		}
		v := &VectorNode{ItemType: *rec.Item}
		if len(rec.Items) > 0 {
			v.Items = make([]Node, len(rec.Items))
			for i, it := range rec.Items {
				n, err := fromRecord(it, p.Child(i))
				if err != nil {
					return nil, err
				}
				v.Items[i] = n
			}
		}
		return v, nil
	case KindEnum:
		if rec.Variant == nil {
			return nil, NewIssue(p, CodeInvalidType, "enum record without variant")
		}
		if len(rec.Fields) != len(rec.Variant.Fields) {
			return nil, NewIssue(p, CodeInvalidType, fmt.Sprintf("%s takes %d fields, record has %d", rec.Variant.Name, len(rec.Variant.Fields), len(rec.Fields)))
		}
		e := &EnumNode{Variant: *rec.Variant}
		if len(rec.Fields) > 0 {
			e.Fields = make([]Node, len(rec.Fields))
			for i, f := range rec.Fields {
				n, err := fromRecord(f, p.Child(i))
				if err != nil {
					return nil, err
				}
				e.Fields[i] = n
			}
		}
		return e, nil
	}
	return nil, NewIssue(p, CodeInvalidType, fmt.Sprintf("record kind %s", rec.Kind))
}
