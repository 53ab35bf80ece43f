package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/adtree"
	eng "github.com/reoring/adtree/internal/engine"
	srcgojson "github.com/reoring/adtree/source/gojson"
	srcjson "github.com/reoring/adtree/source/json"
)

// ParseOpt controls how JSON text is tokenized before hydration.
type ParseOpt struct {
	// Driver selects the tokenizer: "go-json" (default) or "encoding/json".
	Driver string
	// MaxDepth limits object/array nesting. Zero means unlimited.
	MaxDepth int
	// MaxBytes limits the input size. Zero means unlimited.
	MaxBytes int64
	// AllowDuplicateKeys accepts repeated object keys, keeping the last one.
	AllowDuplicateKeys bool
}

// DefaultParseOpt rejects duplicate keys and caps nesting at 512 levels.
func DefaultParseOpt() ParseOpt {
	return ParseOpt{Driver: srcgojson.Name, MaxDepth: 512}
}

// Drivers lists the accepted ParseOpt.Driver values.
func Drivers() []string { return []string{srcgojson.Name, srcjson.Name} }

func tokenSource(data []byte, driver string) (eng.TokenSource, error) {
	switch driver {
	case "", srcgojson.Name:
		return srcgojson.NewBytes(data), nil
	case srcjson.Name:
		return srcjson.NewBytes(data), nil
	}
	return nil, fmt.Errorf("codec: unknown JSON driver %q", driver)
}

// Unmarshal decodes exactly one JSON document into a generic value with
// numbers kept as json.Number. Failures are reported as Issues.
func Unmarshal(data []byte, opt ParseOpt) (any, error) {
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, adtree.IssueAtPointer("/", adtree.CodeTruncated, fmt.Sprintf("input is %d bytes, limit %d", len(data), opt.MaxBytes))
	}
	src, err := tokenSource(data, opt.Driver)
	if err != nil {
		return nil, err
	}
	dup := eng.DupError
	if opt.AllowDuplicateKeys {
		dup = eng.DupIgnore
	}
	src = eng.WrapWithEnforcement(src, eng.EnforceOptions{OnDuplicate: dup, MaxDepth: opt.MaxDepth, MaxBytes: opt.MaxBytes})
	v, err := eng.DecodeDocument(src)
	if err != nil {
		return nil, toIssues(err)
	}
	return v, nil
}

func toIssues(err error) adtree.Issues {
	if iss, ok := adtree.AsIssues(err); ok {
		return iss
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		iss := adtree.IssueAtPointer(ie.Path, ie.Code, ie.Message)
		iss[0].Offset = ie.Offset
		return iss
	}
	hint := err.Error()
	if errors.Is(err, io.ErrUnexpectedEOF) {
		hint = "unexpected end of input"
	}
	iss := adtree.IssueAtPointer("/", adtree.CodeParseError, hint)
	iss[0].Cause = err
	return iss
}

// Marshal writes a concentrated value as compact JSON.
func Marshal(v any) ([]byte, error) {
	return gojson.Marshal(v)
}

// MarshalIndent writes a concentrated value as indented JSON.
func MarshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := gojson.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ToJSON concentrates n and renders it as compact JSON.
func ToJSON(reg *adtree.Registry, n adtree.Node, ref adtree.TypeRef) ([]byte, error) {
	v, err := Concentrate(reg, n, ref)
	if err != nil {
		return nil, err
	}
	return Marshal(v)
}

// FromJSON parses data and hydrates it as a tree of type ref.
func FromJSON(reg *adtree.Registry, data []byte, ref adtree.TypeRef, opt ParseOpt) (adtree.Node, error) {
	v, err := Unmarshal(data, opt)
	if err != nil {
		return nil, err
	}
	return Hydrate(reg, v, ref)
}
