package forest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/adtree"
	"github.com/reoring/adtree/codec"
)

// Command is the closed set of edits Apply understands.
type Command interface {
	// Op is a stable snake_case identifier, used in logs and on the CLI.
	Op() string
	// TreeName names the tree the command addresses.
	TreeName() string
	isCommand()
}

// CreateTree adds a tree holding DefaultOf(root type).
type CreateTree struct{ Name string }

// DeleteTree drops a tree.
type DeleteTree struct{ Name string }

// SetValue replaces the scalar at Path. Value must be a bool for Bool
// primitives and a string otherwise.
type SetValue struct {
	Tree  string
	Path  adtree.Path
	Value any
}

// InsertItem appends a default item to the vector at Path.
type InsertItem struct {
	Tree string
	Path adtree.Path
}

// RemoveItem deletes item Index of the vector at Path.
type RemoveItem struct {
	Tree  string
	Path  adtree.Path
	Index int
}

// SetVariant switches the enum at Path to the variant named Variant,
// resetting its fields to defaults.
type SetVariant struct {
	Tree    string
	Path    adtree.Path
	Variant string
}

// LoadFromJSON replaces (or creates) a tree from its algebraic JSON form.
type LoadFromJSON struct {
	Tree string
	JSON []byte
}

func (CreateTree) Op() string   { return "create_tree" }
func (DeleteTree) Op() string   { return "delete_tree" }
func (SetValue) Op() string     { return "set_value" }
func (InsertItem) Op() string   { return "insert_item" }
func (RemoveItem) Op() string   { return "remove_item" }
func (SetVariant) Op() string   { return "set_variant" }
func (LoadFromJSON) Op() string { return "load_from_json" }

func (c CreateTree) TreeName() string   { return c.Name }
func (c DeleteTree) TreeName() string   { return c.Name }
func (c SetValue) TreeName() string     { return c.Tree }
func (c InsertItem) TreeName() string   { return c.Tree }
func (c RemoveItem) TreeName() string   { return c.Tree }
func (c SetVariant) TreeName() string   { return c.Tree }
func (c LoadFromJSON) TreeName() string { return c.Tree }

func (CreateTree) isCommand()   {}
func (DeleteTree) isCommand()   {}
func (SetValue) isCommand()     {}
func (InsertItem) isCommand()   {}
func (RemoveItem) isCommand()   {}
func (SetVariant) isCommand()   {}
func (LoadFromJSON) isCommand() {}

// Apply runs one command against f and returns the resulting forest. On
// error it returns f itself together with the error, so callers can keep
// using the returned forest either way. opt only affects LoadFromJSON.
func Apply(reg *adtree.Registry, f *Forest, cmd Command, opt codec.ParseOpt) (*Forest, error) {
	next, err := apply(reg, f, cmd, opt)
	if err != nil {
		return f, err
	}
	return next, nil
}

func apply(reg *adtree.Registry, f *Forest, cmd Command, opt codec.ParseOpt) (*Forest, error) {
	switch c := cmd.(type) {
	case CreateTree:
		if c.Name == "" {
			return nil, adtree.IssueAtPointer("/", adtree.CodeInvalidValue, "tree name must not be empty")
		}
		if f.Has(c.Name) {
			return nil, adtree.IssueAtPointer("/", adtree.CodeTreeExists, c.Name, "name", c.Name)
		}
		n, err := reg.DefaultOf(f.root)
		if err != nil {
			return nil, err
		}
		return f.with(c.Name, n), nil

	case DeleteTree:
		if !f.Has(c.Name) {
			return nil, unknownTree(c.Name)
		}
		return f.without(c.Name), nil

	case SetValue:
		root, err := f.Tree(c.Tree)
		if err != nil {
			return nil, err
		}
		if err := checkValue(reg, f.root, root, c.Path, c.Value); err != nil {
			return nil, err
		}
		return f.update(c.Tree, func() (adtree.Node, error) { return adtree.SetValue(root, c.Path, c.Value) })

	case InsertItem:
		root, err := f.Tree(c.Tree)
		if err != nil {
			return nil, err
		}
		return f.update(c.Tree, func() (adtree.Node, error) { return adtree.InsertItem(reg, root, c.Path) })

	case RemoveItem:
		root, err := f.Tree(c.Tree)
		if err != nil {
			return nil, err
		}
		return f.update(c.Tree, func() (adtree.Node, error) { return adtree.RemoveItem(root, c.Path, c.Index) })

	case SetVariant:
		root, err := f.Tree(c.Tree)
		if err != nil {
			return nil, err
		}
		d, err := reg.TypeAt(f.root, root, c.Path)
		if err != nil {
			return nil, err
		}
		if d.Kind != adtree.KindEnum {
			return nil, adtree.NewIssue(c.Path, adtree.CodePathFault, d.Name+" is not an enum")
		}
		v, ok := d.Variant(c.Variant)
		if !ok {
			return nil, adtree.NewIssue(c.Path, adtree.CodeUnknownVariant, d.Name+"::"+c.Variant, "name", c.Variant)
		}
		return f.update(c.Tree, func() (adtree.Node, error) { return adtree.SetVariant(reg, root, c.Path, v) })

	case LoadFromJSON:
		n, err := codec.FromJSON(reg, c.JSON, f.root, opt)
		if err != nil {
			return nil, err
		}
		return f.with(c.Tree, n), nil
	}
	return nil, fmt.Errorf("forest: unsupported command %T", cmd)
}

func (f *Forest) update(name string, fn func() (adtree.Node, error)) (*Forest, error) {
	n, err := fn()
	if err != nil {
		return nil, err
	}
	return f.with(name, n), nil
}

// checkValue rejects values whose Go type does not match the primitive at
// path, and unsigned text that is not a uint64 in decimal.
func checkValue(reg *adtree.Registry, rootRef adtree.TypeRef, root adtree.Node, p adtree.Path, v any) error {
	if p.IsRoot() {
		return nil
	}
	d, err := reg.TypeAt(rootRef, root, p)
	if err != nil || d.Kind != adtree.KindPrimitive {
		// adtree.SetValue reports the fault with the right path.
		return nil
	}
	switch t := v.(type) {
	case bool:
		if d.Primitive == adtree.Bool {
			return nil
		}
	case string:
		switch d.Primitive {
		case adtree.Bool:
		case adtree.Unsigned:
			if _, err := strconv.ParseUint(strings.TrimSpace(t), 10, 64); err != nil {
				iss := adtree.NewIssue(p, adtree.CodeInvalidValue, strconv.Quote(t)+" is not an unsigned integer")
				iss[0].Cause = err
				return iss
			}
			return nil
		default:
			return nil
		}
	}
	return adtree.NewIssue(p, adtree.CodeInvalidType, fmt.Sprintf("%T does not fit %s", v, d.Name))
}
