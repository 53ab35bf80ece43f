package adtree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/adtree/i18n"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeUnknownType    = "unknown_type"
	CodeUnknownVariant = "unknown_variant"
	CodePathFault      = "path_fault"
	CodeIndexFault     = "index_fault"
	CodeParseError     = "parse_error"
	CodeInvalidType    = "invalid_type"
	CodeInvalidValue   = "invalid_value"
	CodeInvalidSchema  = "invalid_schema"
	CodeDuplicateKey   = "duplicate_key"
	CodeTruncated      = "truncated"
	// Forest-level codes
	CodeUnknownTree = "unknown_tree"
	CodeTreeExists  = "tree_exists"
)

// Issue represents a single failure of a core operation.
type Issue struct {
	Path    string // Tree path (for example: /0/2) or JSON Pointer for codec input.
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, offending names, etc.
	Cause   error  // Optional: underlying error.
	Offset  int64  // Byte offset in JSON input (-1 when unknown or not applicable).
	// Params carries structured parameters (e.g., {"index":3, "len":2}) for
	// i18n and logging.
	Params map[string]any
}

// Issues is a collection of issues that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. path_fault at /0/1
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Hint != "" {
			fmt.Fprintf(b, " (%s)", it.Hint)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the causes so errors.Is/As can see through Issues.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// HasCode reports whether err carries an Issue with the given code.
func HasCode(err error, code string) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// NewIssue builds a single-issue error at path p. The message is looked up
// through i18n; kv are alternating param keys and values.
func NewIssue(p Path, code, hint string, kv ...any) Issues {
	return Issues{issueAt(p.String(), code, hint, kv...)}
}

// IssueAtPointer is NewIssue for callers that track JSON Pointers instead of
// tree paths.
func IssueAtPointer(ptr, code, hint string, kv ...any) Issues {
	return Issues{issueAt(ptr, code, hint, kv...)}
}

func issueAt(ptr, code, hint string, kv ...any) Issue {
	var params map[string]any
	var data map[string]string
	if len(kv) > 1 {
		params = make(map[string]any, len(kv)/2)
		data = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			k := fmt.Sprint(kv[i])
			params[k] = kv[i+1]
			data[k] = fmt.Sprint(kv[i+1])
		}
	}
	return Issue{Path: ptr, Code: code, Message: i18n.T(code, data), Hint: hint, Offset: -1, Params: params}
}
