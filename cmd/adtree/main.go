package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/reoring/adtree"
	"github.com/reoring/adtree/codec"
	"github.com/reoring/adtree/config"
	"github.com/reoring/adtree/editor"
	"github.com/reoring/adtree/forest"
	"github.com/reoring/adtree/internal/logx"
	"github.com/reoring/adtree/jsonschema"
	"github.com/reoring/adtree/schemafile"
)

func main() {
	var (
		cfgPath  string
		verbose  bool
		veryVerb bool
		quiet    bool
	)
	flag.StringVar(&cfgPath, "config", "", "config file (.yaml or .toml)")
	flag.BoolVar(&verbose, "v", false, "log at info level")
	flag.BoolVar(&veryVerb, "vv", false, "log at debug level")
	flag.BoolVar(&quiet, "q", false, "log errors only")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if cfgPath != "" {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			fatalf("%v", err)
		}
	}
	base, err := logx.ParseLevel(cfg.Log.Level)
	if err != nil {
		fatalf("%v", err)
	}
	lg, err := logx.New(logx.LevelFromFlags(veryVerb, verbose, quiet, base), cfg.Log.Format, os.Stderr)
	if err != nil {
		fatalf("%v", err)
	}

	sub, args := flag.Arg(0), flag.Args()[1:]
	if sub == "config" {
		configCmd(cfg, args)
		return
	}

	ctx := context.Background()
	s, err := editor.Open(ctx, cfg, lg)
	if err != nil {
		fatalf("%v", err)
	}
	cli := &app{s: s, cfg: cfg, out: os.Stdout}

	var runErr error
	switch sub {
	case "new":
		runErr = cli.dispatch(ctx, args, 1, func(a []string) (forest.Command, error) {
			return forest.CreateTree{Name: a[0]}, nil
		})
	case "rm":
		runErr = cli.dispatch(ctx, args, 1, func(a []string) (forest.Command, error) {
			return forest.DeleteTree{Name: a[0]}, nil
		})
	case "add":
		runErr = cli.dispatch(ctx, args, 2, func(a []string) (forest.Command, error) {
			p, err := adtree.ParsePath(a[1])
			return forest.InsertItem{Tree: a[0], Path: p}, err
		})
	case "del":
		runErr = cli.dispatch(ctx, args, 3, func(a []string) (forest.Command, error) {
			p, err := adtree.ParsePath(a[1])
			if err != nil {
				return nil, err
			}
			i, err := strconv.Atoi(a[2])
			if err != nil {
				return nil, fmt.Errorf("index %q: %w", a[2], err)
			}
			return forest.RemoveItem{Tree: a[0], Path: p, Index: i}, nil
		})
	case "variant":
		runErr = cli.dispatch(ctx, args, 3, func(a []string) (forest.Command, error) {
			p, err := adtree.ParsePath(a[1])
			return forest.SetVariant{Tree: a[0], Path: p, Variant: a[2]}, err
		})
	case "set":
		runErr = cli.dispatch(ctx, args, 3, cli.setValue)
	case "load":
		runErr = cli.dispatch(ctx, args, 2, func(a []string) (forest.Command, error) {
			data, err := readInput(a[1])
			return forest.LoadFromJSON{Tree: a[0], JSON: data}, err
		})
	case "ls":
		for _, name := range s.Forest().Names() {
			fmt.Fprintln(cli.out, name)
		}
	case "show":
		runErr = cli.show(args)
	case "get":
		runErr = cli.get(args)
	case "dump":
		runErr = cli.dump(args)
	case "types":
		runErr = cli.types(args)
	case "jsonschema":
		runErr = cli.jsonSchema(args)
	default:
		usage()
		os.Exit(2)
	}
	if runErr != nil {
		report(runErr)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `adtree: edit forests of algebraic data type trees

Usage:
  adtree [-config file] [-v|-vv|-q] <command> [args]

Commands:
  new NAME                 create a tree holding the root type's default
  rm NAME                  delete a tree
  ls                       list trees
  show [-compact] NAME     print a tree as JSON
  get NAME PATH            print the variant or value at PATH
  set NAME PATH VALUE      set a scalar
  add NAME PATH            append a default item to the vector at PATH
  del NAME PATH INDEX      remove item INDEX of the vector at PATH
  variant NAME PATH V      switch the enum at PATH to variant V
  load NAME FILE|-         create or replace a tree from JSON
  dump NAME                print the raw node structure
  types [-yaml]            list registered types
  jsonschema [-type T]     print the JSON Schema of a type
  config [-toml]           print the effective configuration

Paths look like /0/2 or 0,2; / is the root.`)
}

type app struct {
	s   *editor.Session
	cfg config.Config
	out io.Writer
}

func (a *app) dispatch(ctx context.Context, args []string, n int, build func([]string) (forest.Command, error)) error {
	if len(args) != n {
		usage()
		os.Exit(2)
	}
	cmd, err := build(args)
	if err != nil {
		return err
	}
	return a.s.Dispatch(ctx, cmd)
}

// setValue reads VALUE according to the primitive at PATH: bools go through
// strconv.ParseBool, everything else is kept as text.
func (a *app) setValue(args []string) (forest.Command, error) {
	p, err := adtree.ParsePath(args[1])
	if err != nil {
		return nil, err
	}
	f := a.s.Forest()
	root, err := f.Tree(args[0])
	if err != nil {
		return nil, err
	}
	d, err := a.s.Registry().TypeAt(f.Root(), root, p)
	if err != nil {
		return nil, err
	}
	var v any = args[2]
	if d.Kind == adtree.KindPrimitive && d.Primitive == adtree.Bool {
		b, err := strconv.ParseBool(args[2])
		if err != nil {
			return nil, fmt.Errorf("value %q is not a bool", args[2])
		}
		v = b
	}
	return forest.SetValue{Tree: args[0], Path: p, Value: v}, nil
}

func (a *app) show(args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	compact := fs.Bool("compact", false, "single-line output")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	f := a.s.Forest()
	root, err := f.Tree(fs.Arg(0))
	if err != nil {
		return err
	}
	v, err := codec.Concentrate(a.s.Registry(), root, f.Root())
	if err != nil {
		return err
	}
	var out []byte
	if *compact {
		out, err = codec.Marshal(v)
	} else {
		out, err = codec.MarshalIndent(v)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, string(out))
	return nil
}

func (a *app) get(args []string) error {
	if len(args) != 2 {
		usage()
		os.Exit(2)
	}
	p, err := adtree.ParsePath(args[1])
	if err != nil {
		return err
	}
	f := a.s.Forest()
	n, err := f.FieldValue(args[0], p)
	if err != nil {
		return err
	}
	switch n := n.(type) {
	case *adtree.Scalar:
		fmt.Fprintln(a.out, n.Value)
	case *adtree.EnumNode:
		fmt.Fprintln(a.out, n.Variant.Name)
	case *adtree.VectorNode:
		paths, err := f.VectorChildPaths(args[0], p)
		if err != nil {
			return err
		}
		for _, cp := range paths {
			fmt.Fprintln(a.out, cp)
		}
	}
	return nil
}

func (a *app) dump(args []string) error {
	if len(args) != 1 {
		usage()
		os.Exit(2)
	}
	n, err := a.s.Forest().Tree(args[0])
	if err != nil {
		return err
	}
	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
	cfg.Fdump(a.out, n)
	return nil
}

func (a *app) types(args []string) error {
	fs := flag.NewFlagSet("types", flag.ExitOnError)
	asYAML := fs.Bool("yaml", false, "print the registry as a schema file")
	_ = fs.Parse(args)
	reg := a.s.Registry()
	if !*asYAML {
		for _, name := range reg.Names() {
			d, _ := reg.Resolve(name)
			fmt.Fprintf(a.out, "%s\t%s\n", name, d.Kind)
		}
		return nil
	}
	ds := make([]*adtree.TypeDescriptor, 0, reg.Len())
	for _, name := range reg.Names() {
		d, _ := reg.Resolve(name)
		ds = append(ds, d)
	}
	out, err := schemafile.Marshal(ds)
	if err != nil {
		return err
	}
	_, err = a.out.Write(out)
	return err
}

func (a *app) jsonSchema(args []string) error {
	fs := flag.NewFlagSet("jsonschema", flag.ExitOnError)
	typ := fs.String("type", a.cfg.RootType, "type to export")
	_ = fs.Parse(args)
	sch, err := jsonschema.Export(a.s.Registry(), adtree.Ref(*typ))
	if err != nil {
		return err
	}
	out, err := codec.MarshalIndent(sch)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, string(out))
	return nil
}

func configCmd(cfg config.Config, args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	asTOML := fs.Bool("toml", false, "print TOML instead of YAML")
	_ = fs.Parse(args)
	name := "adtree.yaml"
	if *asTOML {
		name = "adtree.toml"
	}
	out, err := config.Marshal(cfg, name)
	if err != nil {
		fatalf("%v", err)
	}
	os.Stdout.Write(out)
}

func readInput(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(name)
}

// report prints one line per issue so multi-issue failures stay readable.
func report(err error) {
	iss, ok := adtree.AsIssues(err)
	if !ok {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	for _, it := range iss {
		line := fmt.Sprintf("%s at %s", it.Code, it.Path)
		if it.Message != "" {
			line += ": " + it.Message
		}
		if it.Hint != "" {
			line += " (" + it.Hint + ")"
		}
		fmt.Fprintln(os.Stderr, strings.TrimSpace(line))
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
