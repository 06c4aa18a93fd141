package provenance

import (
	"strings"
	"testing"

	"github.com/JoshDreamland/yamlet/ast"
	"github.com/JoshDreamland/yamlet/eval"
	"github.com/JoshDreamland/yamlet/token"
	"github.com/JoshDreamland/yamlet/value"
)

var noPos = token.Position{Filename: "test", Line: 1, Column: 1}

func TestExplainLiteralCell(t *testing.T) {
	tup := value.NewTuple(noPos)
	tup.OwnScope = value.NewScope(tup, nil, nil, noPos)
	tup.Set("x", value.NewLiteralCell("x", value.Int(42)))

	e := eval.NewEvaluator()
	out, err := Explain(e, tup, "x")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if !strings.Contains(out, "x = 42") || !strings.Contains(out, "(literal)") {
		t.Fatalf("Explain(literal) = %q", out)
	}
}

func TestExplainKeyNotFound(t *testing.T) {
	tup := value.NewTuple(noPos)
	tup.OwnScope = value.NewScope(tup, nil, nil, noPos)

	e := eval.NewEvaluator()
	if _, err := Explain(e, tup, "missing"); err == nil {
		t.Fatal("expected an error explaining a missing key")
	}
}

func TestExplainDeferredCellTracesResolutions(t *testing.T) {
	tup := value.NewTuple(noPos)
	scope := value.NewScope(tup, nil, nil, noPos)
	tup.OwnScope = scope
	tup.Set("base", value.NewLiteralCell("base", value.Int(10)))
	// derived: !expr base + 1
	expr := &ast.BinaryExpr{
		X:     &ast.Ident{NamePos: noPos, Name: "base"},
		OpPos: noPos,
		Op:    token.ADD,
		Y:     &ast.IntLit{ValuePos: noPos, Value: 1},
	}
	tup.Set("derived", value.NewDeferredCell("derived", expr, scope, noPos))

	e := eval.NewEvaluator()
	out, err := Explain(e, tup, "derived")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if !strings.Contains(out, "derived = base + 1") {
		t.Fatalf("Explain(derived) missing rendered expr: %q", out)
	}
	if !strings.Contains(out, "resolves base") {
		t.Fatalf("Explain(derived) missing resolution record: %q", out)
	}
}

func TestExplainNestedChildTrace(t *testing.T) {
	tup := value.NewTuple(noPos)
	scope := value.NewScope(tup, nil, nil, noPos)
	tup.OwnScope = scope
	tup.Set("inner", value.NewDeferredCell("inner", &ast.IntLit{ValuePos: noPos, Value: 5}, scope, noPos))
	// outer: !expr inner (forces inner transitively, nesting its trace)
	tup.Set("outer", value.NewDeferredCell("outer", &ast.Ident{NamePos: noPos, Name: "inner"}, scope, noPos))

	e := eval.NewEvaluator()
	out, err := Explain(e, tup, "outer")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if !strings.Contains(out, "inner = 5") {
		t.Fatalf("Explain(outer) missing nested child trace for inner: %q", out)
	}
}
