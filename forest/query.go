package forest

import (
	"github.com/reoring/adtree"
	"github.com/reoring/adtree/codec"
)

// CurrentVariant returns the variant of the enum at path.
func (f *Forest) CurrentVariant(name string, p adtree.Path) (adtree.VariantDescriptor, error) {
	n, err := f.resolve(name, p)
	if err != nil {
		return adtree.VariantDescriptor{}, err
	}
	e, ok := n.(*adtree.EnumNode)
	if !ok {
		return adtree.VariantDescriptor{}, adtree.NewIssue(p, adtree.CodePathFault, "not an enum")
	}
	return e.Variant, nil
}

// FieldValue returns the node at path.
func (f *Forest) FieldValue(name string, p adtree.Path) (adtree.Node, error) {
	return f.resolve(name, p)
}

// VectorChildPaths lists the item paths of the vector at path.
func (f *Forest) VectorChildPaths(name string, p adtree.Path) ([]adtree.Path, error) {
	root, err := f.Tree(name)
	if err != nil {
		return nil, err
	}
	return adtree.ChildPaths(root, p)
}

// ToJSON renders the named tree in the algebraic JSON encoding.
func (f *Forest) ToJSON(reg *adtree.Registry, name string) ([]byte, error) {
	root, err := f.Tree(name)
	if err != nil {
		return nil, err
	}
	return codec.ToJSON(reg, root, f.root)
}

func (f *Forest) resolve(name string, p adtree.Path) (adtree.Node, error) {
	root, err := f.Tree(name)
	if err != nil {
		return nil, err
	}
	return adtree.Resolve(root, p)
}
