package adtree

import (
	"fmt"
	"strconv"
	"strings"
)

// Path is a walk from a root through successive fields[i] (enum) or items[i]
// (vector) selections. The empty path denotes the root.
type Path []int

// Child returns a new path extended by i. The receiver is never aliased.
func (p Path) Child(i int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}

// Parent drops the last step. The parent of the root is the root.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return p
	}
	return p[:len(p)-1:len(p)-1]
}

// Leaf returns the last step, or -1 for the root.
func (p Path) Leaf() int {
	if len(p) == 0 {
		return -1
	}
	return p[len(p)-1]
}

// IsRoot reports whether the path is empty.
func (p Path) IsRoot() bool { return len(p) == 0 }

// String renders the path as a pointer: "/" for the root, "/0/2" otherwise.
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, i := range p {
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}

// ParsePath accepts the String form ("/", "/0/2") and also bare
// comma- or slash-separated indices ("0,2", "0/2"). Empty input is the root.
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "/" {
		return Path{}, nil
	}
	s = strings.TrimPrefix(s, "/")
	sep := "/"
	if strings.Contains(s, ",") {
		sep = ","
	}
	parts := strings.Split(s, sep)
	out := make(Path, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("adtree: invalid path step %q in %q", part, s)
		}
		out = append(out, n)
	}
	return out, nil
}

// Resolve walks path from root. Stepping into a scalar or past the end of a
// field/item list is a path_fault; there is no empty placeholder.
func Resolve(root Node, path Path) (Node, error) {
	cur := root
	for depth, idx := range path {
		next, err := step(cur, idx, path[:depth])
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func step(n Node, idx int, at Path) (Node, error) {
	kids, ok := container(n)
	if !ok {
		return nil, NewIssue(at, CodePathFault, "cannot step into a scalar")
	}
	if idx < 0 || idx >= len(kids) {
		return nil, NewIssue(at.Child(idx), CodePathFault, fmt.Sprintf("index %d outside %d children", idx, len(kids)), "index", idx, "len", len(kids))
	}
	return kids[idx], nil
}

func container(n Node) ([]Node, bool) {
	switch t := n.(type) {
	case *VectorNode:
		return t.Items, true
	case *EnumNode:
		return t.Fields, true
	}
	return nil, false
}

// ChildPaths lists the paths of the direct children of the vector at path.
func ChildPaths(root Node, path Path) ([]Path, error) {
	n, err := Resolve(root, path)
	if err != nil {
		return nil, err
	}
	v, ok := n.(*VectorNode)
	if !ok {
		return nil, NewIssue(path, CodePathFault, "not a vector")
	}
	out := make([]Path, len(v.Items))
	for i := range v.Items {
		out[i] = path.Child(i)
	}
	return out, nil
}

// TypeAt returns the descriptor governing the node at path, walking the
// schema alongside the tree: enum field i takes the current variant's field
// type, vector items take the item type.
func (r *Registry) TypeAt(rootRef TypeRef, root Node, path Path) (*TypeDescriptor, error) {
	d, err := r.ResolveRef(rootRef)
	if err != nil {
		return nil, err
	}
	cur := root
	for depth, idx := range path {
		next, err := step(cur, idx, path[:depth])
		if err != nil {
			return nil, err
		}
		var ref TypeRef
		switch t := cur.(type) {
		case *EnumNode:
			ref = t.Variant.Fields[idx]
		case *VectorNode:
			if d.Kind == KindVector {
				ref = d.Item
			} else {
				ref = t.ItemType
			}
		}
		if d, err = r.ResolveRef(ref); err != nil {
			return nil, err
		}
		cur = next
	}
	return d, nil
}
