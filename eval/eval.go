// Package eval implements the Yamlet evaluator (spec.md §4.5): it walks
// expression ASTs against a scope, forces Deferred cells memoizing their
// results, detects forcing cycles, and drives the per-cell state machine
// described in spec.md §4.8. It also owns provenance recording
// (spec.md §4.7), since that recording happens as a side effect of
// forcing.
package eval

import (
	"math"

	"github.com/JoshDreamland/yamlet/ast"
	"github.com/JoshDreamland/yamlet/compose"
	"github.com/JoshDreamland/yamlet/errors"
	"github.com/JoshDreamland/yamlet/token"
	"github.com/JoshDreamland/yamlet/value"
)

// HostFunc is a function supplied by the loader's host environment. Host
// functions receive already-forced positional arguments (spec.md §4.5).
type HostFunc func(args []value.Value) (value.Value, error)

// Importer resolves and loads a !import path relative to fromFile,
// returning the imported file's top-level tuple (spec.md §4.8, §6.1).
// Implemented by package loader so that eval never needs to know about
// YAML decoding or the filesystem.
type Importer interface {
	Import(fromFile, path string) (value.Value, error)
}

// StringifyStyle selects how the formatter renders composite values
// (spec.md §6.3).
type StringifyStyle int

const (
	Terse StringifyStyle = iota
	Diagnostic
)

// DefaultMaxDepth is the recommended stack-depth guard of spec.md §5.
const DefaultMaxDepth = 512

// Evaluator walks expression ASTs against scopes, forcing and memoizing
// Deferred cells as it goes. One Evaluator is shared by every tuple a
// single Loader produces; per spec.md §5 it is not safe for concurrent
// use.
type Evaluator struct {
	Functions map[string]HostFunc
	Globals   map[string]value.Value
	Importer  Importer
	MaxDepth  int
	Style     StringifyStyle

	// forcing stack, for cycle-chain reporting and depth limiting.
	stack []*value.Cell
	// traceStack is the stack of in-progress provenance traces, mirroring
	// stack but tracking nesting between cells' Trace records rather than
	// cells themselves.
	traceStack []*Trace
	// traces records one Trace per cell that has ever been forced,
	// keyed by cell identity (spec.md §4.7).
	traces map[*value.Cell]*Trace
}

// NewEvaluator constructs an Evaluator with defaults filled in.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		Functions: map[string]HostFunc{},
		Globals:   map[string]value.Value{},
		MaxDepth:  DefaultMaxDepth,
		traces:    map[*value.Cell]*Trace{},
	}
}

// Force runs the per-cell state machine of spec.md §4.8: memoized if
// already Forced, CycleDetected if re-entered while InProgress, else
// evaluate-and-memoize.
func (e *Evaluator) Force(cell *value.Cell) (value.Value, error) {
	switch cell.State {
	case value.Forced:
		return cell.Value, nil
	case value.InProgress:
		return value.Value{}, errors.Newf(errors.CycleDetected, cell.Pos, "cycle detected forcing %q (chain: %s)", cell.Key, e.chainString(cell))
	}

	if len(e.stack) >= e.MaxDepth {
		return value.Value{}, errors.Newf(errors.DepthExceeded, cell.Pos, "evaluation depth exceeded %d while forcing %q", e.MaxDepth, cell.Key)
	}

	if cell.Expr == nil {
		// A cell with no expression and state != Forced can't occur in
		// practice (literal cells are born Forced), but guard it anyway.
		cell.State = value.Forced
		return cell.Value, nil
	}

	expr, ok := cell.Expr.(ast.Expr)
	if !ok {
		return value.Value{}, errors.Newf(errors.ParseError, cell.Pos, "cell %q holds a non-expression thunk", cell.Key)
	}

	cell.State = value.InProgress
	e.stack = append(e.stack, cell)
	trace := &Trace{Key: cell.Key, Pos: cell.Pos, Expr: renderExpr(expr)}
	e.pushTrace(trace)

	v, err := e.Eval(expr, cell.Scope)

	e.popTrace()
	e.stack = e.stack[:len(e.stack)-1]

	if err != nil {
		cell.State = value.Unforced
		return value.Value{}, err
	}
	cell.State = value.Forced
	cell.Value = v
	e.traces[cell] = trace
	return v, nil
}

func (e *Evaluator) chainString(cell *value.Cell) string {
	s := ""
	for _, c := range e.stack {
		if s != "" {
			s += " -> "
		}
		s += c.Key
	}
	if s != "" {
		s += " -> "
	}
	return s + cell.Key
}

// Eval evaluates expr in scope without touching any particular cell's
// memo state; Force is the entry point that wires evaluation to a cell.
func (e *Evaluator) Eval(expr ast.Expr, scope *value.Scope) (value.Value, error) {
	switch x := expr.(type) {
	case *ast.Ident:
		return e.evalIdent(x, scope)
	case *ast.IntLit:
		return value.Int(x.Value), nil
	case *ast.FloatLit:
		return value.Float(x.Value), nil
	case *ast.StringLit:
		s, err := e.stringifyParts(x.Parts, scope)
		return value.Str(s), err
	case *ast.ListLit:
		return e.evalList(x, scope)
	case *ast.MapLit:
		return e.evalMapLit(x, scope)
	case *ast.UnaryExpr:
		return e.evalUnary(x, scope)
	case *ast.BinaryExpr:
		return e.evalBinary(x, scope)
	case *ast.CondExpr:
		return e.evalCond(x, scope)
	case *ast.LambdaExpr:
		return value.LambdaVal(&value.Lambda{
			Params:   identNames(x.Params),
			Body:     x.Body,
			Captured: scope,
		}), nil
	case *ast.CallExpr:
		return e.evalCall(x, scope)
	case *ast.IndexExpr:
		return e.evalIndex(x, scope)
	case *ast.SelectorExpr:
		return e.evalSelector(x, scope)
	case *ast.ExtensionExpr:
		return e.evalExtension(x, scope)
	case *ast.ComposeExpr:
		return e.evalCompose(x, scope)
	case *ast.ParenExpr:
		return e.Eval(x.X, scope)
	case *ast.FormatExpr:
		s, err := e.stringifyParts(x.Parts, scope)
		return value.Str(s), err
	case *ast.ImportExpr:
		return e.evalImport(x, scope)
	case *ast.CompositeExpr:
		return e.evalComposite(x, scope)
	case *ast.BadExpr:
		return value.Value{}, errors.Newf(errors.ParseError, x.From, "cannot evaluate malformed expression")
	default:
		return value.Value{}, errors.Newf(errors.ParseError, expr.Pos(), "unsupported expression node %T", expr)
	}
}

func identNames(idents []*ast.Ident) []string {
	names := make([]string, len(idents))
	for i, id := range idents {
		names[i] = id.Name
	}
	return names
}

// evalIdent implements name resolution, spec.md §4.2.
func (e *Evaluator) evalIdent(id *ast.Ident, scope *value.Scope) (value.Value, error) {
	switch id.Name {
	case "true":
		return value.Bool(true), nil
	case "false":
		return value.Bool(false), nil
	case "null":
		return value.Null(), nil
	case "up":
		if scope.Up == nil {
			return value.Value{}, errors.Newf(errors.UndefinedName, id.NamePos, "up: no enclosing lexical scope")
		}
		if scope.Up.Locals == nil {
			return value.Value{}, errors.Newf(errors.UndefinedName, id.NamePos, "up: enclosing scope has no tuple")
		}
		e.recordResolution(id.Name, scope.Up.Origin)
		return value.TupleVal(scope.Up.Locals), nil
	case "super":
		if scope.Super == nil {
			return value.Value{}, errors.Newf(errors.UndefinedName, id.NamePos, "super: no composition predecessor")
		}
		e.recordResolution(id.Name, scope.Super.Origin)
		return value.TupleVal(scope.Super.Locals), nil
	}

	v, scopeOrigin, found, err := e.lookup(id.Name, scope)
	if err != nil {
		return value.Value{}, err
	}
	if !found {
		return value.Value{}, errors.Newf(errors.UndefinedName, id.NamePos, "undefined name %q", id.Name)
	}
	e.recordResolution(id.Name, scopeOrigin)
	return v, nil
}

// lookup implements spec.md §4.2 steps 2-5: locals, then super chain,
// then up (restarting at locals/super there), then the host environment.
func (e *Evaluator) lookup(name string, scope *value.Scope) (value.Value, token.Position, bool, error) {
	for s := scope; s != nil; s = s.Up {
		if v, pos, found, err := e.lookupLocalsAndSuper(name, s); found || err != nil {
			return v, pos, found, err
		}
	}
	if fn, ok := e.Functions[name]; ok {
		return value.LambdaVal(&value.Lambda{HostFn: fn}), token.NoPos, true, nil
	}
	if v, ok := e.Globals[name]; ok {
		return v, token.NoPos, true, nil
	}
	return value.Value{}, token.NoPos, false, nil
}

// lookupLocalsAndSuper searches s.Locals, then follows s.Super one hop at
// a time (spec.md §4.2 steps 2-3), without crossing s.Up.
func (e *Evaluator) lookupLocalsAndSuper(name string, s *value.Scope) (value.Value, token.Position, bool, error) {
	for cur := s; cur != nil; cur = cur.Super {
		if cur.Locals == nil {
			continue
		}
		if cell := cur.Locals.Cell(name); cell != nil {
			v, err := e.Force(cell)
			return v, cur.Origin, true, err
		}
	}
	return value.Value{}, token.NoPos, false, nil
}

func (e *Evaluator) recordResolution(name string, pos token.Position) {
	if t := e.currentTrace(); t != nil {
		t.Resolutions = append(t.Resolutions, Resolution{Name: name, Pos: pos})
	}
}

func (e *Evaluator) evalList(x *ast.ListLit, scope *value.Scope) (value.Value, error) {
	out := make([]value.Value, 0, len(x.Elts))
	for _, elt := range x.Elts {
		v, err := e.Eval(elt, scope)
		if err != nil {
			return value.Value{}, err
		}
		out = append(out, v)
	}
	return value.List(out), nil
}

// evalMapLit builds a fresh Tuple from a {k: v, ...} expression-language
// mapping literal (spec.md §4.1 primary #8). Its entries resolve free
// names against its own scope first, whose lexical parent is the scope
// the literal appears in; quoted keys are format-interpolated in that
// enclosing scope, not the new tuple's own scope (spec.md §4.1).
func (e *Evaluator) evalMapLit(x *ast.MapLit, scope *value.Scope) (value.Value, error) {
	tup := value.NewTuple(x.Pos())
	tupScope := value.NewScope(tup, scope, nil, x.Pos())
	tup.OwnScope = tupScope

	for _, entry := range x.Elts {
		key := entry.Key
		if entry.Quoted {
			s, err := e.stringifyParts(entry.KeyExpr.Parts, scope)
			if err != nil {
				return value.Value{}, err
			}
			key = s
		}
		cell := value.NewDeferredCell(key, entry.Value, tupScope, entry.KeyPos)
		tup.Set(key, cell)
	}
	return value.TupleVal(tup), nil
}

func (e *Evaluator) evalUnary(x *ast.UnaryExpr, scope *value.Scope) (value.Value, error) {
	v, err := e.Eval(x.X, scope)
	if err != nil {
		return value.Value{}, err
	}
	switch x.Op {
	case token.NOT:
		b, err := asBool(v, x.OpPos)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(!b), nil
	case token.SUB:
		switch v.Kind {
		case value.KindInt:
			return value.Int(-v.Int), nil
		case value.KindFloat:
			return value.Float(-v.Float), nil
		}
		return value.Value{}, errors.Newf(errors.TypeMismatch, x.OpPos, "unary -: expected number, got %s", v.Kind)
	}
	return value.Value{}, errors.Newf(errors.ParseError, x.OpPos, "unsupported unary operator")
}

func (e *Evaluator) evalCond(x *ast.CondExpr, scope *value.Scope) (value.Value, error) {
	c, err := e.Eval(x.Cond, scope)
	if err != nil {
		return value.Value{}, err
	}
	b, err := asBool(c, x.Cond.Pos())
	if err != nil {
		return value.Value{}, err
	}
	if b {
		return e.Eval(x.Then, scope)
	}
	return e.Eval(x.Else, scope)
}

func asBool(v value.Value, pos token.Position) (bool, error) {
	if v.Kind != value.KindBool {
		return false, errors.Newf(errors.TypeMismatch, pos, "expected bool, got %s", v.Kind)
	}
	return v.Bool, nil
}

func (e *Evaluator) evalIndex(x *ast.IndexExpr, scope *value.Scope) (value.Value, error) {
	xv, err := e.Eval(x.X, scope)
	if err != nil {
		return value.Value{}, err
	}
	iv, err := e.Eval(x.Index, scope)
	if err != nil {
		return value.Value{}, err
	}
	switch xv.Kind {
	case value.KindList:
		if iv.Kind != value.KindInt {
			return value.Value{}, errors.Newf(errors.TypeMismatch, x.Lbrack, "list index must be int, got %s", iv.Kind)
		}
		i := iv.Int
		if i < 0 || i >= int64(len(xv.List)) {
			return value.Value{}, errors.Newf(errors.IndexOutOfRange, x.Lbrack, "index %d out of range for list of length %d", i, len(xv.List))
		}
		return xv.List[i], nil
	case value.KindTuple:
		if iv.Kind != value.KindString {
			return value.Value{}, errors.Newf(errors.TypeMismatch, x.Lbrack, "tuple index must be string, got %s", iv.Kind)
		}
		return e.attr(xv.Tuple, iv.Str, x.Lbrack)
	}
	return value.Value{}, errors.Newf(errors.TypeMismatch, x.Lbrack, "cannot index %s", xv.Kind)
}

func (e *Evaluator) evalSelector(x *ast.SelectorExpr, scope *value.Scope) (value.Value, error) {
	xv, err := e.Eval(x.X, scope)
	if err != nil {
		return value.Value{}, err
	}
	if xv.Kind != value.KindTuple {
		return value.Value{}, errors.Newf(errors.TypeMismatch, x.Sel.NamePos, "attribute access on non-tuple %s", xv.Kind)
	}
	return e.attr(xv.Tuple, x.Sel.Name, x.Sel.NamePos)
}

// attr implements spec.md §4.5 attribute access: look up name in the
// tuple's own scope (its locals, then its super chain), not its up.
func (e *Evaluator) attr(t *value.Tuple, name string, pos token.Position) (value.Value, error) {
	v, _, found, err := e.lookupLocalsAndSuper(name, t.OwnScope)
	if err != nil {
		return value.Value{}, err
	}
	if !found {
		return value.Value{}, errors.Newf(errors.KeyNotFound, pos, "key %q not found", name)
	}
	return v, nil
}

func (e *Evaluator) evalExtension(x *ast.ExtensionExpr, scope *value.Scope) (value.Value, error) {
	xv, err := e.Eval(x.X, scope)
	if err != nil {
		return value.Value{}, err
	}
	xt, err := compose.RequireTuple(xv, x.Pos(), "extension")
	if err != nil {
		return value.Value{}, err
	}
	anonV, err := e.evalMapLit(x.Elts, scope)
	if err != nil {
		return value.Value{}, err
	}
	composed, err := compose.Compose(e.Force, xt, anonV.Tuple, x.Pos())
	if err != nil {
		return value.Value{}, err
	}
	return value.TupleVal(composed), nil
}

func (e *Evaluator) evalCompose(x *ast.ComposeExpr, scope *value.Scope) (value.Value, error) {
	xv, err := e.Eval(x.X, scope)
	if err != nil {
		return value.Value{}, err
	}
	yv, err := e.Eval(x.Y, scope)
	if err != nil {
		return value.Value{}, err
	}
	xt, err := compose.RequireTuple(xv, x.X.Pos(), "composition")
	if err != nil {
		return value.Value{}, err
	}
	yt, err := compose.RequireTuple(yv, x.Y.Pos(), "composition")
	if err != nil {
		return value.Value{}, err
	}
	composed, err := compose.Compose(e.Force, xt, yt, x.Pos())
	if err != nil {
		return value.Value{}, err
	}
	return value.TupleVal(composed), nil
}

func (e *Evaluator) evalImport(x *ast.ImportExpr, scope *value.Scope) (value.Value, error) {
	if e.Importer == nil {
		return value.Value{}, errors.Newf(errors.ImportError, x.PathPos, "no importer configured for %q", x.Path)
	}
	v, err := e.Importer.Import(x.PathPos.Filename, x.Path)
	if err != nil {
		return value.Value{}, errors.Wrap(errors.ImportError, x.PathPos, err, "importing %q", x.Path)
	}
	return v, nil
}

// evalComposite evaluates a !composite sequence (spec.md §4.3, §6.1): for
// each element, the first branch whose guard is truthy (or an
// unconditional/else branch) contributes its tuple; elements with no
// matching branch contribute the empty tuple. Elements compose
// left-to-right.
func (e *Evaluator) evalComposite(x *ast.CompositeExpr, scope *value.Scope) (value.Value, error) {
	acc := value.EmptyTuple(x.StartPos)
	for _, elt := range x.Elements {
		part, err := e.evalCompositeElement(elt, scope, x.StartPos)
		if err != nil {
			return value.Value{}, err
		}
		acc, err = compose.Compose(e.Force, acc, part, x.StartPos)
		if err != nil {
			return value.Value{}, err
		}
	}
	return value.TupleVal(acc), nil
}

func (e *Evaluator) evalCompositeElement(elt ast.CompositeElement, scope *value.Scope, origin token.Position) (*value.Tuple, error) {
	for _, br := range elt.Branches {
		matched := br.Guard == nil
		if !matched {
			gv, err := e.Eval(br.Guard, scope)
			if err != nil {
				return nil, err
			}
			b, err := asBool(gv, br.Guard.Pos())
			if err != nil {
				return nil, err
			}
			matched = b
		}
		if matched {
			bv, err := e.Eval(br.Body, scope)
			if err != nil {
				return nil, err
			}
			return compose.RequireTuple(bv, br.Body.Pos(), "composite element")
		}
	}
	return value.EmptyTuple(origin), nil
}

func (e *Evaluator) evalCall(x *ast.CallExpr, scope *value.Scope) (value.Value, error) {
	if id, ok := x.Fun.(*ast.Ident); ok && id.Name == "cond" {
		if len(x.Args) != 3 {
			return value.Value{}, errors.Newf(errors.ArityError, x.Lparen, "cond: expected 3 arguments, got %d", len(x.Args))
		}
		p, err := e.Eval(x.Args[0], scope)
		if err != nil {
			return value.Value{}, err
		}
		b, err := asBool(p, x.Args[0].Pos())
		if err != nil {
			return value.Value{}, err
		}
		if b {
			return e.Eval(x.Args[1], scope)
		}
		return e.Eval(x.Args[2], scope)
	}

	fv, err := e.Eval(x.Fun, scope)
	if err != nil {
		return value.Value{}, err
	}
	if fv.Kind != value.KindLambda {
		return value.Value{}, errors.Newf(errors.TypeMismatch, x.Lparen, "cannot call %s", fv.Kind)
	}
	args := make([]value.Value, 0, len(x.Args))
	for _, a := range x.Args {
		av, err := e.Eval(a, scope)
		if err != nil {
			return value.Value{}, err
		}
		args = append(args, av)
	}
	return e.apply(fv.Lam, args, x.Lparen)
}

// Apply invokes a Lambda directly, for host code (e.g. package loader)
// calling into a Yamlet function outside of any CallExpr.
func (e *Evaluator) Apply(l *value.Lambda, args []value.Value) (value.Value, error) {
	return e.apply(l, args, token.NoPos)
}

// apply invokes a Lambda or a host function. Lambda arguments get a
// fresh scope whose locals bind params to args, whose lexical parent is
// the captured scope, and whose super is nil (spec.md §4.5).
func (e *Evaluator) apply(l *value.Lambda, args []value.Value, pos token.Position) (value.Value, error) {
	if l.HostFn != nil {
		fn, ok := l.HostFn.(HostFunc)
		if !ok {
			return value.Value{}, errors.Newf(errors.TypeMismatch, pos, "malformed host function binding")
		}
		return fn(args)
	}
	if len(args) != len(l.Params) {
		return value.Value{}, errors.Newf(errors.ArityError, pos, "expected %d arguments, got %d", len(l.Params), len(args))
	}
	argTup := value.NewTuple(pos)
	argScope := value.NewScope(argTup, l.Captured, nil, pos)
	argTup.OwnScope = argScope
	for i, p := range l.Params {
		argTup.Set(p, value.NewLiteralCell(p, args[i]))
	}
	body, ok := l.Body.(ast.Expr)
	if !ok {
		return value.Value{}, errors.Newf(errors.ParseError, pos, "lambda body is not an expression")
	}
	return e.Eval(body, argScope)
}

func (e *Evaluator) evalBinary(x *ast.BinaryExpr, scope *value.Scope) (value.Value, error) {
	if x.Op == token.AND || x.Op == token.OR {
		return e.evalLogical(x, scope)
	}
	xv, err := e.Eval(x.X, scope)
	if err != nil {
		return value.Value{}, err
	}
	yv, err := e.Eval(x.Y, scope)
	if err != nil {
		return value.Value{}, err
	}
	switch x.Op {
	case token.ADD:
		return addValues(xv, yv, x.OpPos)
	case token.SUB, token.MUL, token.QUO, token.REM:
		return arith(x.Op, xv, yv, x.OpPos)
	case token.EQL:
		eq, err := valuesEqual(xv, yv, x.OpPos)
		return value.Bool(eq), err
	case token.NEQ:
		eq, err := valuesEqual(xv, yv, x.OpPos)
		return value.Bool(!eq), err
	case token.LSS, token.LEQ, token.GTR, token.GEQ:
		return compareValues(x.Op, xv, yv, x.OpPos)
	case token.IN:
		return inValues(xv, yv, x.OpPos)
	case token.IS:
		return isValues(xv, yv), nil
	}
	return value.Value{}, errors.Newf(errors.ParseError, x.OpPos, "unsupported binary operator %s", x.Op)
}

func (e *Evaluator) evalLogical(x *ast.BinaryExpr, scope *value.Scope) (value.Value, error) {
	xv, err := e.Eval(x.X, scope)
	if err != nil {
		return value.Value{}, err
	}
	xb, err := asBool(xv, x.X.Pos())
	if err != nil {
		return value.Value{}, err
	}
	if x.Op == token.OR && xb {
		return value.Bool(true), nil
	}
	if x.Op == token.AND && !xb {
		return value.Bool(false), nil
	}
	yv, err := e.Eval(x.Y, scope)
	if err != nil {
		return value.Value{}, err
	}
	return asBoolValue(yv, x.Y.Pos())
}

func asBoolValue(v value.Value, pos token.Position) (value.Value, error) {
	b, err := asBool(v, pos)
	if err != nil {
		return value.Value{}, err
	}
	return value.Bool(b), nil
}

func addValues(a, b value.Value, pos token.Position) (value.Value, error) {
	switch {
	case a.Kind == value.KindString && b.Kind == value.KindString:
		return value.Str(a.Str + b.Str), nil
	case a.Kind == value.KindList && b.Kind == value.KindList:
		out := make([]value.Value, 0, len(a.List)+len(b.List))
		out = append(out, a.List...)
		out = append(out, b.List...)
		return value.List(out), nil
	case isNumeric(a) && isNumeric(b):
		return arith(token.ADD, a, b, pos)
	}
	return value.Value{}, errors.Newf(errors.TypeMismatch, pos, "cannot add %s and %s", a.Kind, b.Kind)
}

func isNumeric(v value.Value) bool {
	return v.Kind == value.KindInt || v.Kind == value.KindFloat
}

func arith(op token.Token, a, b value.Value, pos token.Position) (value.Value, error) {
	if !isNumeric(a) || !isNumeric(b) {
		return value.Value{}, errors.Newf(errors.TypeMismatch, pos, "arithmetic on non-numbers %s, %s", a.Kind, b.Kind)
	}
	if a.Kind == value.KindInt && b.Kind == value.KindInt {
		x, y := a.Int, b.Int
		switch op {
		case token.ADD:
			return value.Int(x + y), nil
		case token.SUB:
			return value.Int(x - y), nil
		case token.MUL:
			return value.Int(x * y), nil
		case token.QUO:
			if y == 0 {
				return value.Value{}, errors.Newf(errors.ArithmeticError, pos, "division by zero")
			}
			return value.Int(x / y), nil
		case token.REM:
			if y == 0 {
				return value.Value{}, errors.Newf(errors.ArithmeticError, pos, "modulo by zero")
			}
			return value.Int(x % y), nil
		}
	}
	x, y := asFloat(a), asFloat(b)
	switch op {
	case token.ADD:
		return value.Float(x + y), nil
	case token.SUB:
		return value.Float(x - y), nil
	case token.MUL:
		return value.Float(x * y), nil
	case token.QUO:
		if y == 0 {
			return value.Value{}, errors.Newf(errors.ArithmeticError, pos, "division by zero")
		}
		return value.Float(x / y), nil
	case token.REM:
		if y == 0 {
			return value.Value{}, errors.Newf(errors.ArithmeticError, pos, "modulo by zero")
		}
		return value.Float(math.Mod(x, y)), nil
	}
	return value.Value{}, errors.Newf(errors.ParseError, pos, "unsupported arithmetic operator %s", op)
}

func asFloat(v value.Value) float64 {
	if v.Kind == value.KindInt {
		return float64(v.Int)
	}
	return v.Float
}

func valuesEqual(a, b value.Value, pos token.Position) (bool, error) {
	if isNumeric(a) && isNumeric(b) {
		return asFloat(a) == asFloat(b), nil
	}
	if a.Kind != b.Kind {
		return false, nil
	}
	switch a.Kind {
	case value.KindString:
		return a.Str == b.Str, nil
	case value.KindBool:
		return a.Bool == b.Bool, nil
	case value.KindNull:
		return true, nil
	case value.KindList:
		if len(a.List) != len(b.List) {
			return false, nil
		}
		for i := range a.List {
			eq, err := valuesEqual(a.List[i], b.List[i], pos)
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case value.KindTuple:
		return a.Tuple == b.Tuple, nil
	}
	return false, nil
}

func compareValues(op token.Token, a, b value.Value, pos token.Position) (value.Value, error) {
	var cmp int
	switch {
	case isNumeric(a) && isNumeric(b):
		x, y := asFloat(a), asFloat(b)
		switch {
		case x < y:
			cmp = -1
		case x > y:
			cmp = 1
		}
	case a.Kind == value.KindString && b.Kind == value.KindString:
		switch {
		case a.Str < b.Str:
			cmp = -1
		case a.Str > b.Str:
			cmp = 1
		}
	default:
		return value.Value{}, errors.Newf(errors.TypeMismatch, pos, "cannot compare %s and %s", a.Kind, b.Kind)
	}
	switch op {
	case token.LSS:
		return value.Bool(cmp < 0), nil
	case token.LEQ:
		return value.Bool(cmp <= 0), nil
	case token.GTR:
		return value.Bool(cmp > 0), nil
	case token.GEQ:
		return value.Bool(cmp >= 0), nil
	}
	return value.Value{}, errors.Newf(errors.ParseError, pos, "unsupported comparison %s", op)
}

// inValues implements `in`: membership in a list (by value equality) or
// in a tuple's key set (spec.md §4.5).
func inValues(needle, haystack value.Value, pos token.Position) (value.Value, error) {
	switch haystack.Kind {
	case value.KindList:
		for _, v := range haystack.List {
			eq, err := valuesEqual(needle, v, pos)
			if err != nil {
				return value.Value{}, err
			}
			if eq {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	case value.KindTuple:
		if needle.Kind != value.KindString {
			return value.Value{}, errors.Newf(errors.TypeMismatch, pos, "`in` tuple requires a string key, got %s", needle.Kind)
		}
		return value.Bool(haystack.Tuple.Cell(needle.Str) != nil), nil
	}
	return value.Value{}, errors.Newf(errors.TypeMismatch, pos, "`in` requires a list or tuple, got %s", haystack.Kind)
}

// isValues implements `is`: identity on booleans, null, and integer
// equality — deliberately pragmatic, per spec.md §4.5/§9's open question.
func isValues(a, b value.Value) value.Value {
	if a.Kind != b.Kind {
		return value.Bool(false)
	}
	switch a.Kind {
	case value.KindBool:
		return value.Bool(a.Bool == b.Bool)
	case value.KindNull:
		return value.Bool(true)
	case value.KindInt:
		return value.Bool(a.Int == b.Int)
	default:
		return value.Bool(false)
	}
}
