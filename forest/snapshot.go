package forest

import (
	"fmt"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/adtree"
)

// snapshotVersion is bumped whenever the record layout changes.
const snapshotVersion = 1

type snapshot struct {
	Version int                          `json:"version"`
	Root    adtree.TypeRef               `json:"root"`
	Trees   map[string]adtree.NodeRecord `json:"trees"`
}

// MarshalJSON writes the structural snapshot of every tree. Unlike the
// algebraic encoding it embeds variant and item descriptors, so the result
// reloads without a registry.
func (f *Forest) MarshalJSON() ([]byte, error) {
	s := snapshot{Version: snapshotVersion, Root: f.root, Trees: make(map[string]adtree.NodeRecord, len(f.trees))}
	for name, n := range f.trees {
		s.Trees[name] = adtree.ToRecord(n)
	}
	return gojson.Marshal(s)
}

// UnmarshalJSON replaces f with the forest held in a structural snapshot.
func (f *Forest) UnmarshalJSON(data []byte) error {
	var s snapshot
	if err := gojson.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("forest: decode snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return fmt.Errorf("forest: snapshot version %d, want %d", s.Version, snapshotVersion)
	}
	trees := make(map[string]adtree.Node, len(s.Trees))
	for name, rec := range s.Trees {
		n, err := adtree.FromRecord(rec)
		if err != nil {
			return fmt.Errorf("forest: tree %q: %w", name, err)
		}
		trees[name] = n
	}
	f.root = s.Root
	f.trees = trees
	return nil
}

// Decode is UnmarshalJSON on a fresh Forest.
func Decode(data []byte) (*Forest, error) {
	f := &Forest{}
	if err := f.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return f, nil
}
