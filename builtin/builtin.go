// Package builtin ships the schemas the editor knows without any schema
// file: common primitives and the Aetolia behaviour-tree vocabulary.
package builtin

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/reoring/adtree"
	"github.com/reoring/adtree/schemafile"
)

// RootType is the root of behaviour-tree documents.
const RootType = "UnpoweredTreeDef"

// Schema set names accepted by Register.
const (
	Common  = "common"
	Aetolia = "aetolia"
)

//go:embed schemas/*.yaml
var files embed.FS

// Sets lists the embedded schema sets in dependency order.
func Sets() []string { return []string{Common, Aetolia} }

// Source returns the YAML text of a schema set.
func Source(set string) ([]byte, error) {
	b, err := fs.ReadFile(files, "schemas/"+set+".yaml")
	if err != nil {
		return nil, fmt.Errorf("builtin: unknown schema set %q", set)
	}
	return b, nil
}

// Register parses the named sets (all of them when none are given) and adds
// their types to reg.
func Register(reg *adtree.Registry, sets ...string) error {
	if len(sets) == 0 {
		sets = Sets()
	}
	for _, set := range sets {
		src, err := Source(set)
		if err != nil {
			return err
		}
		ds, err := schemafile.Parse(src)
		if err != nil {
			return fmt.Errorf("builtin %s: %w", set, err)
		}
		if err := schemafile.RegisterAll(reg, ds); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a validated, sealed registry holding every built-in
// type.
func NewRegistry() (*adtree.Registry, error) {
	reg := adtree.NewRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	reg.Seal()
	return reg, nil
}
