// Package editor wires the core packages into a running editing session:
// commands are applied in order, the new forest replaces the old one, the
// result is persisted and everything is logged.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/reoring/adtree"
	"github.com/reoring/adtree/builtin"
	"github.com/reoring/adtree/codec"
	"github.com/reoring/adtree/config"
	"github.com/reoring/adtree/forest"
	"github.com/reoring/adtree/i18n"
	"github.com/reoring/adtree/internal/logx"
	"github.com/reoring/adtree/schemafile"
	"github.com/reoring/adtree/store"
)

// Session owns the current forest. Dispatch is serialized, so concurrent
// callers observe a single total order of commands; forests handed out by
// Forest are never modified afterwards.
type Session struct {
	mu     sync.Mutex
	reg    *adtree.Registry
	forest *forest.Forest
	snap   *store.Snapshotter
	opt    codec.ParseOpt
	log    *slog.Logger
}

// Options configures New. Snapshotter may be nil to keep the forest in
// memory only; Logger may be nil to discard logs.
type Options struct {
	Snapshotter *store.Snapshotter
	ParseOpt    codec.ParseOpt
	Logger      *slog.Logger
}

// New starts a session over f.
func New(reg *adtree.Registry, f *forest.Forest, opts Options) *Session {
	lg := opts.Logger
	if lg == nil {
		lg = logx.Discard()
	}
	return &Session{reg: reg, forest: f, snap: opts.Snapshotter, opt: opts.ParseOpt, log: lg}
}

// BuildRegistry registers the configured built-in sets and schema files,
// validates the result and seals it. The root type must resolve.
func BuildRegistry(cfg config.Config) (*adtree.Registry, error) {
	reg := adtree.NewRegistry()
	if len(cfg.Builtin) > 0 {
		if err := builtin.Register(reg, cfg.Builtin...); err != nil {
			return nil, err
		}
	}
	for _, p := range cfg.SchemaFiles {
		if err := schemafile.LoadFile(reg, p); err != nil {
			return nil, err
		}
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("editor: schema: %w", err)
	}
	if _, err := reg.Resolve(cfg.RootType); err != nil {
		return nil, fmt.Errorf("editor: root type: %w", err)
	}
	reg.Seal()
	return reg, nil
}

// Open builds the registry, opens the store and reloads the last saved
// forest as described by cfg.
func Open(ctx context.Context, cfg config.Config, lg *slog.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}
	i18n.SetLanguage(cfg.Language)
	reg, err := BuildRegistry(cfg)
	if err != nil {
		return nil, err
	}
	var kv store.KV = store.NewMemKV()
	if cfg.Store.Dir != "" {
		fkv, err := store.NewFileKV(cfg.Store.Dir)
		if err != nil {
			return nil, err
		}
		kv = fkv
	}
	snap := &store.Snapshotter{KV: kv, Key: cfg.Store.Key, Compress: cfg.Store.Compress}
	f, err := snap.Load(ctx, adtree.Ref(cfg.RootType))
	if err != nil {
		return nil, err
	}
	if lg == nil {
		lg = logx.Discard()
	}
	lg.Debug("session opened", "root", cfg.RootType, "types", reg.Len(), "trees", f.Len(), "store", cfg.Store.Dir)
	return New(reg, f, Options{Snapshotter: snap, ParseOpt: cfg.ParseOpt(), Logger: lg}), nil
}

// Registry returns the sealed type registry.
func (s *Session) Registry() *adtree.Registry { return s.reg }

// Forest returns the current forest.
func (s *Session) Forest() *forest.Forest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forest
}

// Dispatch applies cmd and persists the result. A rejected command leaves
// the session unchanged. When persisting fails the new forest is still
// kept in memory and the storage error is returned.
func (s *Session) Dispatch(ctx context.Context, cmd forest.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lg := s.log.With("op", cmd.Op(), "tree", cmd.TreeName())
	next, err := forest.Apply(s.reg, s.forest, cmd, s.opt)
	if err != nil {
		lg.Warn("command rejected", "err", err)
		return err
	}
	s.forest = next
	lg.Debug("command applied", "trees", next.Len())

	if s.snap == nil {
		return nil
	}
	if err := s.snap.Save(ctx, next); err != nil {
		lg.Error("persist forest", "err", err)
		return fmt.Errorf("editor: persist: %w", err)
	}
	return nil
}

// DispatchAll applies cmds in order and stops at the first error.
func (s *Session) DispatchAll(ctx context.Context, cmds ...forest.Command) error {
	for _, c := range cmds {
		if err := s.Dispatch(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// ToJSON renders a tree of the current forest.
func (s *Session) ToJSON(name string) ([]byte, error) {
	return s.Forest().ToJSON(s.reg, name)
}
