package adtree

import "fmt"

// The updaters below never touch their input. Each copies the containers
// along the path (O(len(path)) allocations), applies one change at the end and
// splices the copies back together. Everything off the path is shared with
// the old tree, which stays valid. On error nothing has been spliced and the
// caller keeps the old root.

// SetValue replaces the scalar at path. The parent (path minus its last step)
// must be a container and the target must be a Scalar.
func SetValue(root Node, path Path, value any) (Node, error) {
	if path.IsRoot() {
		return nil, NewIssue(path, CodePathFault, "a value needs a parent container")
	}
	leaf := path.Leaf()
	return rebuild(root, path.Parent(), func(parent Node, at Path) (Node, error) {
		kids, ok := container(parent)
		if !ok {
			return nil, NewIssue(at, CodePathFault, "parent is not a container")
		}
		if leaf < 0 || leaf >= len(kids) {
			return nil, NewIssue(path, CodePathFault, fmt.Sprintf("index %d outside %d children", leaf, len(kids)), "index", leaf, "len", len(kids))
		}
		if _, ok := kids[leaf].(*Scalar); !ok {
			return nil, NewIssue(path, CodePathFault, "target is not a scalar")
		}
		return withChild(parent, leaf, &Scalar{Value: value}), nil
	})
}

// InsertItem appends DefaultOf(ItemType) to the vector at path.
func InsertItem(r *Registry, root Node, path Path) (Node, error) {
	return rebuild(root, path, func(n Node, at Path) (Node, error) {
		v, ok := n.(*VectorNode)
		if !ok {
			return nil, NewIssue(at, CodePathFault, "not a vector")
		}
		item, err := r.DefaultOf(v.ItemType)
		if err != nil {
			return nil, err
		}
		items := make([]Node, len(v.Items), len(v.Items)+1)
		copy(items, v.Items)
		return &VectorNode{Items: append(items, item), ItemType: v.ItemType}, nil
	})
}

// RemoveItem deletes item index from the vector at path; later items shift
// down by one.
func RemoveItem(root Node, path Path, index int) (Node, error) {
	return rebuild(root, path, func(n Node, at Path) (Node, error) {
		v, ok := n.(*VectorNode)
		if !ok {
			return nil, NewIssue(at, CodePathFault, "not a vector")
		}
		if index < 0 || index >= len(v.Items) {
			return nil, NewIssue(at, CodeIndexFault, fmt.Sprintf("index %d outside %d items", index, len(v.Items)), "index", index, "len", len(v.Items))
		}
		var items []Node
		if len(v.Items) > 1 {
			items = make([]Node, 0, len(v.Items)-1)
			items = append(items, v.Items[:index]...)
			items = append(items, v.Items[index+1:]...)
		}
		return &VectorNode{Items: items, ItemType: v.ItemType}, nil
	})
}

// SetVariant switches the enum at path to variant. The field list is rebuilt
// from defaults; nothing of the previous variant is kept, even when field
// types line up.
func SetVariant(r *Registry, root Node, path Path, variant VariantDescriptor) (Node, error) {
	return rebuild(root, path, func(n Node, at Path) (Node, error) {
		if _, ok := n.(*EnumNode); !ok {
			return nil, NewIssue(at, CodePathFault, "not an enum")
		}
		return r.DefaultVariant(variant)
	})
}

// Replace swaps the subtree at path for n.
func Replace(root Node, path Path, n Node) (Node, error) {
	return rebuild(root, path, func(Node, Path) (Node, error) { return n, nil })
}

func rebuild(root Node, path Path, leaf func(Node, Path) (Node, error)) (Node, error) {
	return rebuildAt(root, path, 0, leaf)
}

func rebuildAt(n Node, path Path, depth int, leaf func(Node, Path) (Node, error)) (Node, error) {
	if depth == len(path) {
		return leaf(n, path)
	}
	idx := path[depth]
	child, err := step(n, idx, path[:depth])
	if err != nil {
		return nil, err
	}
	nc, err := rebuildAt(child, path, depth+1, leaf)
	if err != nil {
		return nil, err
	}
	return withChild(n, idx, nc), nil
}

// withChild shallow-copies container n with child idx replaced.
func withChild(n Node, idx int, child Node) Node {
	switch t := n.(type) {
	case *VectorNode:
		items := make([]Node, len(t.Items))
		copy(items, t.Items)
		items[idx] = child
		return &VectorNode{Items: items, ItemType: t.ItemType}
	case *EnumNode:
		fields := make([]Node, len(t.Fields))
		copy(fields, t.Fields)
		fields[idx] = child
		return &EnumNode{Variant: t.Variant, Fields: fields}
	}
	panic("adtree: withChild on a scalar")
}
