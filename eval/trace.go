package eval

import (
	"github.com/JoshDreamland/yamlet/token"
	"github.com/JoshDreamland/yamlet/value"
)

// Resolution records one free-name lookup that succeeded while forcing a
// cell, and the origin of the scope it resolved in (spec.md §4.7).
type Resolution struct {
	Name string
	Pos  token.Position
}

// Trace is the provenance record kept for one forced cell: its source
// expression, the free names it resolved and where, and the traces of
// any other cells forced transitively while evaluating it (spec.md
// §4.7). One Trace is produced per successful Force, keyed by the
// cell's own identity, so explain_value can walk the tree a value was
// built from.
type Trace struct {
	Key         string
	Pos         token.Position
	Expr        string
	Resolutions []Resolution
	Children    []*Trace
}

// pushTrace starts recording into t, nesting it under whichever trace is
// currently active (a cell's forcing that transitively forces another
// cell records the nested cell's trace as a child).
func (e *Evaluator) pushTrace(t *Trace) {
	if parent := e.currentTrace(); parent != nil {
		parent.Children = append(parent.Children, t)
	}
	e.traceStack = append(e.traceStack, t)
}

func (e *Evaluator) popTrace() {
	e.traceStack = e.traceStack[:len(e.traceStack)-1]
}

func (e *Evaluator) currentTrace() *Trace {
	if len(e.traceStack) == 0 {
		return nil
	}
	return e.traceStack[len(e.traceStack)-1]
}

// TraceFor returns the provenance trace recorded the last time cell was
// successfully forced, or nil if it has never forced cleanly.
func (e *Evaluator) TraceFor(cell *value.Cell) *Trace {
	return e.traces[cell]
}
