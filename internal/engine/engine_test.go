package engine_test

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eng "github.com/reoring/adtree/internal/engine"
	srcgojson "github.com/reoring/adtree/source/gojson"
	srcjson "github.com/reoring/adtree/source/json"
)

var drivers = map[string]func([]byte) eng.TokenSource{
	"encoding/json": srcjson.NewBytes,
	"go-json":       srcgojson.NewBytes,
}

func TestDecodeDocument(t *testing.T) {
	for name, open := range drivers {
		t.Run(name, func(t *testing.T) {
			v, err := eng.DecodeDocument(open([]byte(`{"Sequence":[{"Leaf":1},"Idle",null,true]}`)))
			require.NoError(t, err)
			assert.Equal(t, map[string]any{
				"Sequence": []any{map[string]any{"Leaf": json.Number("1")}, "Idle", nil, true},
			}, v)
		})
	}
}

func TestDecodeDocument_Failures(t *testing.T) {
	for name, open := range drivers {
		t.Run(name, func(t *testing.T) {
			_, err := eng.DecodeDocument(open([]byte(``)))
			assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

			_, err = eng.DecodeDocument(open([]byte(`1 2`)))
			assert.Error(t, err)

			_, err = eng.DecodeDocument(open([]byte(`[1,`)))
			assert.Error(t, err)
		})
	}
}

func TestDecodeDocument_TrailingData(t *testing.T) {
	_, err := eng.DecodeDocument(srcjson.NewBytes([]byte(`1 2`)))
	assert.ErrorIs(t, err, eng.ErrTrailingData)
}

func TestDecodeDocument_Malformed(t *testing.T) {
	docs := []string{
		`[1,]`, `[1 2]`, `{"a" 1}`, `{"a":1,}`, `[,1]`, `{,}`, `tru`, `01`,
		`{"Selector":[{"Sequence":[]} {"Sequence":[]}]}`,
		`{"Sequence" []}`, `{"Sequence":[,]}`,
	}
	for name, open := range drivers {
		for _, doc := range docs {
			t.Run(name+"/"+doc, func(t *testing.T) {
				v, err := eng.DecodeDocument(open([]byte(doc)))
				assert.Error(t, err, "decoded %#v", v)
			})
		}
	}
}

func TestGoJSONReader_ValidatesToo(t *testing.T) {
	_, err := eng.DecodeDocument(srcgojson.NewReader(strings.NewReader(`[1,]`)))
	assert.Error(t, err)

	v, err := eng.DecodeDocument(srcgojson.NewReader(strings.NewReader(` [1] `)))
	require.NoError(t, err)
	assert.Equal(t, []any{json.Number("1")}, v)
}

func enforced(open func([]byte) eng.TokenSource, doc string, opt eng.EnforceOptions) error {
	_, err := eng.DecodeDocument(eng.WrapWithEnforcement(open([]byte(doc)), opt))
	return err
}

func TestEnforcement(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		opt  eng.EnforceOptions
		code string
		path string
	}{
		{"duplicate", `{"a":1,"a":2}`, eng.EnforceOptions{OnDuplicate: eng.DupError}, "duplicate_key", "/a"},
		{"nested duplicate", `[{"x":{"k/y":1,"k/y":2}}]`, eng.EnforceOptions{OnDuplicate: eng.DupError}, "duplicate_key", "/0/x/k~1y"},
		{"depth", `[[[1]]]`, eng.EnforceOptions{MaxDepth: 2}, "parse_error", "/0/0"},
	}
	for drv, open := range drivers {
		for _, tc := range cases {
			t.Run(drv+"/"+tc.name, func(t *testing.T) {
				err := enforced(open, tc.doc, tc.opt)
				var ie eng.IssueError
				require.True(t, errors.As(err, &ie), "%v", err)
				assert.Equal(t, tc.code, ie.Code)
				assert.Equal(t, tc.path, ie.Path)
			})
		}
	}
}

func TestEnforcement_AllowsSiblingKeys(t *testing.T) {
	for name, open := range drivers {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, enforced(open, `[{"a":1},{"a":2}]`, eng.EnforceOptions{OnDuplicate: eng.DupError, MaxDepth: 2}))
		})
	}
}

func TestEscapePointerToken(t *testing.T) {
	assert.Equal(t, "a~1b~0c", eng.EscapePointerToken("a/b~c"))
}
