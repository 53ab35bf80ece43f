package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/reoring/adtree"
	"github.com/reoring/adtree/forest"
)

// DefaultKey is the entry a Snapshotter uses when Key is empty.
const DefaultKey = "forest"

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Snapshotter saves the whole forest under a single key and reloads it
// verbatim. Compressed and plain entries are told apart by the zstd frame
// magic, so Compress can be toggled between runs.
type Snapshotter struct {
	KV       KV
	Key      string
	Compress bool
}

func (s *Snapshotter) key() string {
	if s.Key == "" {
		return DefaultKey
	}
	return s.Key
}

// Save writes the structural snapshot of f.
func (s *Snapshotter) Save(ctx context.Context, f *forest.Forest) error {
	data, err := f.MarshalJSON()
	if err != nil {
		return fmt.Errorf("store: encode forest: %w", err)
	}
	if s.Compress {
		if data, err = compress(data); err != nil {
			return fmt.Errorf("store: compress forest: %w", err)
		}
	}
	return s.KV.Put(ctx, s.key(), data)
}

// Load reads the saved forest. When nothing has been saved yet it returns an
// empty forest of type root.
func (s *Snapshotter) Load(ctx context.Context, root adtree.TypeRef) (*forest.Forest, error) {
	data, err := s.KV.Get(ctx, s.key())
	if errors.Is(err, ErrNotFound) {
		return forest.New(root), nil
	}
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, zstdMagic) {
		if data, err = decompress(data); err != nil {
			return nil, fmt.Errorf("store: decompress forest: %w", err)
		}
	}
	f, err := forest.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if f.Root().String() != root.String() {
		return nil, fmt.Errorf("store: saved forest holds %s trees, want %s", f.Root(), root)
	}
	return f, nil
}

// Clear removes the saved forest.
func (s *Snapshotter) Clear(ctx context.Context) error {
	return s.KV.Delete(ctx, s.key())
}

func compress(b []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(b, make([]byte, 0, len(b)/2)), nil
}

func decompress(b []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(b, nil)
}
