package eval

import (
	"strconv"
	"strings"

	"github.com/JoshDreamland/yamlet/ast"
	"github.com/JoshDreamland/yamlet/value"
)

// stringifyParts evaluates a !fmt/string-literal's parts, rendering each
// slot with Stringify and concatenating with the literal runs (spec.md
// §4.6).
func (e *Evaluator) stringifyParts(parts []ast.FormatPart, scope *value.Scope) (string, error) {
	var b strings.Builder
	for _, p := range parts {
		if p.Slot == nil {
			b.WriteString(p.Literal)
			continue
		}
		v, err := e.Eval(p.Slot, scope)
		if err != nil {
			return "", err
		}
		b.WriteString(e.stringify(v, Terse, 0))
	}
	return b.String(), nil
}

// Stringify renders v as text, per the Evaluator's configured style
// (spec.md §4.6, §6.3). Terse style is what !fmt interpolation uses;
// Diagnostic additionally annotates tuples with their origin position,
// for use in error messages and explain_value output.
func (e *Evaluator) Stringify(v value.Value) string {
	return e.stringify(v, e.Style, 0)
}

func (e *Evaluator) stringify(v value.Value, style StringifyStyle, depth int) string {
	switch v.Kind {
	case value.KindNull:
		return "null"
	case value.KindString:
		return v.Str
	case value.KindInt:
		return strconv.FormatInt(v.Int, 10)
	case value.KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case value.KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case value.KindList:
		parts := make([]string, len(v.List))
		for i, el := range v.List {
			parts[i] = e.stringify(el, style, depth+1)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case value.KindTuple:
		return e.stringifyTuple(v.Tuple, style, depth)
	case value.KindLambda:
		return "<lambda>"
	default:
		return "<external>"
	}
}

// stringifyTuple renders a tuple's entries, forcing any that are still
// Unforced. An entry that is InProgress (the tuple is being rendered from
// inside the forcing of one of its own entries) is shown as <cycle>, and
// an entry whose forcing fails is shown as <error>.
func (e *Evaluator) stringifyTuple(t *value.Tuple, style StringifyStyle, depth int) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range t.Keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		c := t.Entries[k]
		switch c.State {
		case value.InProgress:
			b.WriteString("<cycle>")
		default:
			v, err := e.Force(c)
			if err != nil {
				b.WriteString("<error>")
			} else {
				b.WriteString(e.stringify(v, style, depth+1))
			}
		}
	}
	b.WriteByte('}')
	if style == Diagnostic {
		b.WriteByte('@')
		b.WriteString(t.Origin.String())
	}
	return b.String()
}

// renderExpr produces a compact, human-readable rendering of an
// expression AST for provenance traces and diagnostics. It is not meant
// to round-trip to source.
func renderExpr(e ast.Expr) string {
	switch x := e.(type) {
	case *ast.Ident:
		return x.Name
	case *ast.IntLit:
		return strconv.FormatInt(x.Value, 10)
	case *ast.FloatLit:
		return strconv.FormatFloat(x.Value, 'g', -1, 64)
	case *ast.StringLit:
		return strconv.Quote(x.Raw)
	case *ast.ListLit:
		parts := make([]string, len(x.Elts))
		for i, elt := range x.Elts {
			parts[i] = renderExpr(elt)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *ast.MapLit:
		parts := make([]string, len(x.Elts))
		for i, entry := range x.Elts {
			parts[i] = entry.Key + ": " + renderExpr(entry.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *ast.UnaryExpr:
		return x.Op.String() + renderExpr(x.X)
	case *ast.BinaryExpr:
		return renderExpr(x.X) + " " + x.Op.String() + " " + renderExpr(x.Y)
	case *ast.CondExpr:
		return renderExpr(x.Then) + " if " + renderExpr(x.Cond) + " else " + renderExpr(x.Else)
	case *ast.LambdaExpr:
		return "lambda ... : " + renderExpr(x.Body)
	case *ast.CallExpr:
		parts := make([]string, len(x.Args))
		for i, a := range x.Args {
			parts[i] = renderExpr(a)
		}
		return renderExpr(x.Fun) + "(" + strings.Join(parts, ", ") + ")"
	case *ast.IndexExpr:
		return renderExpr(x.X) + "[" + renderExpr(x.Index) + "]"
	case *ast.SelectorExpr:
		return renderExpr(x.X) + "." + x.Sel.Name
	case *ast.ExtensionExpr:
		return renderExpr(x.X) + " {...}"
	case *ast.ComposeExpr:
		return renderExpr(x.X) + " " + renderExpr(x.Y)
	case *ast.ParenExpr:
		return "(" + renderExpr(x.X) + ")"
	case *ast.FormatExpr:
		return "!fmt(...)"
	case *ast.ImportExpr:
		return "!import " + strconv.Quote(x.Path)
	case *ast.CompositeExpr:
		return "!composite(...)"
	case *ast.BadExpr:
		return "<bad>"
	default:
		return "<?>"
	}
}
