// Package provenance implements explain_value (spec.md §4.7): given a
// tuple and a key, force it if necessary and render the trace the
// evaluator recorded while doing so — the expression that produced the
// value, the free names it resolved and where, and the same explanation
// recursively for any other cell forced along the way.
package provenance

import (
	"fmt"
	"strings"

	"github.com/JoshDreamland/yamlet/eval"
	"github.com/JoshDreamland/yamlet/value"
)

// Explain forces t's entry at key (memoized as usual) and renders its
// provenance trace as a multi-line, indented report.
func Explain(e *eval.Evaluator, t *value.Tuple, key string) (string, error) {
	cell := t.Cell(key)
	if cell == nil {
		return "", fmt.Errorf("explain_value: key %q not found", key)
	}
	if _, err := e.Force(cell); err != nil {
		return "", err
	}
	tr := e.TraceFor(cell)
	if tr == nil {
		// A literal cell (never Deferred) has no trace to walk; report
		// its forced value directly.
		return fmt.Sprintf("%s = %s (literal)", key, e.Stringify(cell.Value)), nil
	}
	var b strings.Builder
	writeTrace(&b, tr, 0)
	return b.String(), nil
}

func writeTrace(b *strings.Builder, tr *eval.Trace, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s%s = %s  (%s)\n", indent, tr.Key, tr.Expr, tr.Pos)
	for _, r := range tr.Resolutions {
		fmt.Fprintf(b, "%s  resolves %s @ %s\n", indent, r.Name, r.Pos)
	}
	for _, c := range tr.Children {
		writeTrace(b, c, depth+1)
	}
}
