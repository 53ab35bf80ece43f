package adtree

import (
	"errors"
	"fmt"
)

// ErrSealed is returned by Register once the registry has been sealed.
var ErrSealed = errors.New("adtree: registry is sealed")

// Registry holds named TypeDescriptors. It is built once at startup, then
// sealed and shared read-only by every tree operation.
type Registry struct {
	types  map[string]*TypeDescriptor
	order  []string
	sealed bool
}

// NewRegistry returns an empty, unsealed registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*TypeDescriptor)}
}

// Register stores d under d.Name. Registering the same name again replaces
// the previous descriptor (last write wins) but keeps its original position
// in Names.
func (r *Registry) Register(d *TypeDescriptor) error {
	if r.sealed {
		return ErrSealed
	}
	if d == nil {
		return errors.New("adtree: nil descriptor")
	}
	if d.Name == "" {
		return fmt.Errorf("adtree: %s descriptor without a name", d.Kind)
	}
	if _, ok := r.types[d.Name]; !ok {
		r.order = append(r.order, d.Name)
	}
	r.types[d.Name] = d
	return nil
}

// MustRegister is Register for static schema tables.
func (r *Registry) MustRegister(ds ...*TypeDescriptor) {
	for _, d := range ds {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
}

// Seal makes the registry read-only.
func (r *Registry) Seal() { r.sealed = true }

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool { return r.sealed }

// Resolve returns the descriptor registered under name (exact,
// case-sensitive match).
func (r *Registry) Resolve(name string) (*TypeDescriptor, error) {
	if d, ok := r.types[name]; ok {
		return d, nil
	}
	return nil, IssueAtPointer("/", CodeUnknownType, name, "name", name)
}

// ResolveRef follows a reference: inline descriptors are returned as is,
// by-name references go through Resolve.
func (r *Registry) ResolveRef(ref TypeRef) (*TypeDescriptor, error) {
	if ref.Inline != nil {
		return ref.Inline, nil
	}
	return r.Resolve(ref.Name)
}

// Names lists registered names in first-registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int { return len(r.types) }

// Validate checks the whole schema: every by-name reference resolves, every
// enum has at least one variant with unique names, and every descriptor has
// a finite default (no cycle through first variants).
func (r *Registry) Validate() error {
	var iss Issues
	for _, name := range r.order {
		d := r.types[name]
		iss = append(iss, r.validateDesc(d, name)...)
	}
	if len(iss) > 0 {
		return iss
	}
	for _, name := range r.order {
		if err := r.checkFiniteDefault(Ref(name), map[string]bool{}); err != nil {
			iss = AppendIssues(iss, IssueAtPointer("/", CodeInvalidSchema, err.Error(), "name", name)...)
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

func (r *Registry) validateDesc(d *TypeDescriptor, owner string) Issues {
	var iss Issues
	checkRef := func(ref TypeRef, where string) {
		switch {
		case ref.Inline != nil:
			iss = append(iss, r.validateDesc(ref.Inline, owner)...)
		case ref.Name == "":
			iss = AppendIssues(iss, IssueAtPointer("/", CodeInvalidSchema, owner+": empty type reference in "+where, "name", owner)...)
		default:
			if _, ok := r.types[ref.Name]; !ok {
				iss = AppendIssues(iss, IssueAtPointer("/", CodeUnknownType, owner+": "+where+" references "+ref.Name, "name", ref.Name)...)
			}
		}
	}
	switch d.Kind {
	case KindPrimitive:
	case KindVector:
		checkRef(d.Item, d.Name)
	case KindEnum:
		if len(d.Variants) == 0 {
			iss = AppendIssues(iss, IssueAtPointer("/", CodeInvalidSchema, d.Name+" has no variants", "name", owner)...)
		}
		seen := make(map[string]bool, len(d.Variants))
		for _, v := range d.Variants {
			if seen[v.Name] {
				iss = AppendIssues(iss, IssueAtPointer("/", CodeInvalidSchema, d.Name+": duplicate variant "+v.Name, "name", owner)...)
			}
			seen[v.Name] = true
			for _, f := range v.Fields {
				checkRef(f, d.Name+"::"+v.Name)
			}
		}
	default:
		iss = AppendIssues(iss, IssueAtPointer("/", CodeInvalidSchema, fmt.Sprintf("%s has kind %s", d.Name, d.Kind), "name", owner)...)
	}
	return iss
}

// checkFiniteDefault walks the same route DefaultOf takes. Vectors stop the
// walk because their default is empty.
func (r *Registry) checkFiniteDefault(ref TypeRef, visiting map[string]bool) error {
	d, err := r.ResolveRef(ref)
	if err != nil {
		return err
	}
	if d.Kind != KindEnum || len(d.Variants) == 0 {
		return nil
	}
	if ref.Inline == nil {
		if visiting[d.Name] {
			return fmt.Errorf("default of %s is infinite", d.Name)
		}
		visiting[d.Name] = true
		defer delete(visiting, d.Name)
	}
	for _, f := range d.Variants[0].Fields {
		if err := r.checkFiniteDefault(f, visiting); err != nil {
			return err
		}
	}
	return nil
}
