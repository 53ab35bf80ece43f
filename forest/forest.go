// Package forest holds a set of named trees that share one root type and
// applies editing commands to them.
//
// A Forest is a persistent value: Apply never modifies its input and returns
// a new Forest that shares every untouched tree (and every untouched subtree,
// through the path-copying updaters of package adtree) with the old one. Old
// forests stay valid, so callers may keep them for undo or diffing.
package forest

import (
	"sort"

	"github.com/reoring/adtree"
)

// Forest maps tree names to roots. The zero value is not usable; call New.
type Forest struct {
	root  adtree.TypeRef
	trees map[string]adtree.Node
}

// New returns an empty forest whose trees are all of type root.
func New(root adtree.TypeRef) *Forest {
	return &Forest{root: root, trees: map[string]adtree.Node{}}
}

// Root returns the type every tree in the forest conforms to.
func (f *Forest) Root() adtree.TypeRef { return f.root }

// Len returns the number of trees.
func (f *Forest) Len() int { return len(f.trees) }

// Names returns the tree names in lexical order.
func (f *Forest) Names() []string {
	out := make([]string, 0, len(f.trees))
	for name := range f.trees {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Has reports whether a tree called name exists.
func (f *Forest) Has(name string) bool {
	_, ok := f.trees[name]
	return ok
}

// Tree returns the root node of the named tree, or unknown_tree.
func (f *Forest) Tree(name string) (adtree.Node, error) {
	n, ok := f.trees[name]
	if !ok {
		return nil, unknownTree(name)
	}
	return n, nil
}

func (f *Forest) with(name string, n adtree.Node) *Forest {
	trees := make(map[string]adtree.Node, len(f.trees)+1)
	for k, v := range f.trees {
		trees[k] = v
	}
	trees[name] = n
	return &Forest{root: f.root, trees: trees}
}

func (f *Forest) without(name string) *Forest {
	trees := make(map[string]adtree.Node, len(f.trees))
	for k, v := range f.trees {
		if k != name {
			trees[k] = v
		}
	}
	return &Forest{root: f.root, trees: trees}
}

func unknownTree(name string) error {
	return adtree.IssueAtPointer("/", adtree.CodeUnknownTree, name, "name", name)
}
