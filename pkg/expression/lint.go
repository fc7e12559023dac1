// Package expression provides advisory syntax checking for the opaque
// condition payloads carried by flow definitions and connections. The
// stores persist and return those payloads verbatim; this lint never
// blocks a write, it only produces warnings for the API response.
package expression

import (
	"encoding/json"
	"fmt"

	"github.com/expr-lang/expr"
)

// LintCondition inspects an opaque condition payload. When the payload is
// a JSON string it is compiled as an expression and a human-readable
// warning is returned on failure. Non-string payloads (structured trees)
// and empty payloads produce no warning.
func LintCondition(name string, raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var src string
	if err := json.Unmarshal(raw, &src); err != nil {
		// Structured payload, nothing to compile.
		return ""
	}
	if src == "" {
		return ""
	}

	if _, err := expr.Compile(src, expr.AllowUndefinedVariables()); err != nil {
		return fmt.Sprintf("%s does not compile as an expression: %v", name, err)
	}
	return ""
}
