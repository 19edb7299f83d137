package debugger

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/atlas-lang/atlas/internal/value"
)

// classify reports a variable's type name and whether it is one of the
// four shapes Evaluate can re-inject as a `let` binding: number, bool,
// null, string. Everything else (arrays, hashmaps, functions, externs)
// is inspectable but not splice-able into a synthesized snippet.
func classify(v value.Value) (typeName string, reinjectable bool) {
	switch v.(type) {
	case value.Number, value.Bool, value.Null, value.String:
		return v.TypeName(), true
	default:
		return v.TypeName(), false
	}
}

// literal renders v as Atlas source text, for splicing into a
// synthesized Evaluate snippet. Only called on reinjectable values.
func literal(v value.Value) string {
	switch x := v.(type) {
	case value.Number:
		return strconv.FormatFloat(float64(x), 'g', -1, 64)
	case value.Bool:
		if x {
			return "true"
		}
		return "false"
	case value.Null:
		return "null"
	case value.String:
		return strconv.Quote(string(x))
	default:
		return "null"
	}
}

// synthesizeSnippet builds the source text EvaluateSnippet parses: one
// `let` binding per reinjectable variable (in a stable order so repeated
// Evaluate calls produce deterministic diagnostics on parse failure),
// followed by the user's expression as a bare statement. Variables whose
// names are not legal identifiers (the `$localN` slot names) are left out.
func synthesizeSnippet(vars []Variable, values map[string]value.Value, expr string) string {
	var b strings.Builder
	for _, vr := range vars {
		valid := vr.Name != ""
		for idx, r := range vr.Name {
			if !(r == '_' || unicode.IsLetter(r) || (idx > 0 && unicode.IsDigit(r))) {
				valid = false
				break
			}
		}
		if !vr.Reinjectable || !valid {
			continue
		}
		fmt.Fprintf(&b, "let %s = %s;\n", vr.Name, literal(values[vr.Name]))
	}
	b.WriteString(expr)
	if !strings.HasSuffix(strings.TrimSpace(expr), ";") {
		b.WriteString(";")
	}
	return b.String()
}
