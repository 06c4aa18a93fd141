package parser

import (
	"testing"

	"github.com/JoshDreamland/yamlet/ast"
	"github.com/JoshDreamland/yamlet/token"
)

func parseOK(t *testing.T, src string) ast.Expr {
	t.Helper()
	x, errs := ParseExpr("test", token.Position{Filename: "test", Line: 1, Column: 1}, []byte(src))
	if err := errs.Err(); err != nil {
		t.Fatalf("ParseExpr(%q): %v", src, err)
	}
	return x
}

func TestParsePrecedence(t *testing.T) {
	// 1 + 2 * 3 should bind as 1 + (2 * 3).
	x := parseOK(t, "1 + 2 * 3")
	bin, ok := x.(*ast.BinaryExpr)
	if !ok || bin.Op != token.ADD {
		t.Fatalf("top-level node = %#v, want ADD BinaryExpr", x)
	}
	rhs, ok := bin.Y.(*ast.BinaryExpr)
	if !ok || rhs.Op != token.MUL {
		t.Fatalf("rhs = %#v, want MUL BinaryExpr", bin.Y)
	}
}

func TestParseJuxtapositionTighterThanArithmetic(t *testing.T) {
	// `a + b c` should parse as `a + (b c)`: composition binds tighter
	// than +/- (spec.md §4.1), so "b c" groups together before the "+".
	x := parseOK(t, "a + b c")
	bin, ok := x.(*ast.BinaryExpr)
	if !ok || bin.Op != token.ADD {
		t.Fatalf("top-level node = %#v, want ADD BinaryExpr", x)
	}
	comp, ok := bin.Y.(*ast.ComposeExpr)
	if !ok {
		t.Fatalf("bin.Y = %#v, want ComposeExpr (b c)", bin.Y)
	}
	if _, ok := comp.X.(*ast.Ident); !ok {
		t.Fatalf("compose.X = %#v, want Ident (b)", comp.X)
	}
	if _, ok := comp.Y.(*ast.Ident); !ok {
		t.Fatalf("compose.Y = %#v, want Ident (c)", comp.Y)
	}
}

func TestParsePostfixTighterThanComposition(t *testing.T) {
	// `a b.c` should parse as `a (b.c)`, attribute access binding before
	// juxtaposition.
	x := parseOK(t, "a b.c")
	comp, ok := x.(*ast.ComposeExpr)
	if !ok {
		t.Fatalf("top-level node = %#v, want ComposeExpr", x)
	}
	sel, ok := comp.Y.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "c" {
		t.Fatalf("compose.Y = %#v, want SelectorExpr(.c)", comp.Y)
	}
}

func TestParseConditionalChain(t *testing.T) {
	x := parseOK(t, `"a" if x == 1 else "b" if x == 2 else "c"`)
	outer, ok := x.(*ast.CondExpr)
	if !ok {
		t.Fatalf("top-level node = %#v, want CondExpr", x)
	}
	if _, ok := outer.Else.(*ast.CondExpr); !ok {
		t.Fatalf("outer.Else = %#v, want nested CondExpr", outer.Else)
	}
}

func TestParseLambdaExpr(t *testing.T) {
	x := parseOK(t, "lambda x, y: x + y")
	lam, ok := x.(*ast.LambdaExpr)
	if !ok {
		t.Fatalf("top-level node = %#v, want LambdaExpr", x)
	}
	if len(lam.Params) != 2 || lam.Params[0].Name != "x" || lam.Params[1].Name != "y" {
		t.Fatalf("lam.Params = %#v", lam.Params)
	}
}

func TestParseLambdaSource(t *testing.T) {
	lam, errs := ParseLambdaSource("test", token.Position{Filename: "test", Line: 1, Column: 1}, []byte("n: n + 1"))
	if err := errs.Err(); err != nil {
		t.Fatalf("ParseLambdaSource: %v", err)
	}
	if len(lam.Params) != 1 || lam.Params[0].Name != "n" {
		t.Fatalf("lam.Params = %#v", lam.Params)
	}
}

func TestParseFormatString(t *testing.T) {
	fe, errs := ParseFormatString("test", token.Position{Filename: "test", Line: 1, Column: 1}, "hi {name}{{literal}}")
	if err := errs.Err(); err != nil {
		t.Fatalf("ParseFormatString: %v", err)
	}
	if len(fe.Parts) != 3 {
		t.Fatalf("fe.Parts = %#v, want 3 parts", fe.Parts)
	}
	if fe.Parts[0].Literal != "hi " {
		t.Fatalf("fe.Parts[0] = %#v", fe.Parts[0])
	}
	id, ok := fe.Parts[1].Slot.(*ast.Ident)
	if !ok || id.Name != "name" {
		t.Fatalf("fe.Parts[1].Slot = %#v", fe.Parts[1].Slot)
	}
	if fe.Parts[2].Literal != "{literal}" {
		t.Fatalf("fe.Parts[2] = %#v, want literal brace escaping", fe.Parts[2])
	}
}

func TestParseErrorRecovery(t *testing.T) {
	_, errs := ParseExpr("test", token.Position{Filename: "test", Line: 1, Column: 1}, []byte("1 +"))
	if errs.Err() == nil {
		t.Fatal("expected a parse error for a dangling operator")
	}
}

func TestParseExtensionAndCompose(t *testing.T) {
	x := parseOK(t, `base{a: 1} child`)
	comp, ok := x.(*ast.ComposeExpr)
	if !ok {
		t.Fatalf("top-level = %#v, want ComposeExpr", x)
	}
	ext, ok := comp.X.(*ast.ExtensionExpr)
	if !ok {
		t.Fatalf("compose.X = %#v, want ExtensionExpr", comp.X)
	}
	if len(ext.Elts.Elts) != 1 || ext.Elts.Elts[0].Key != "a" {
		t.Fatalf("ext.Elts = %#v", ext.Elts)
	}
}
