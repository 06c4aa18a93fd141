// Package value defines the Yamlet value model: the tagged Value variant,
// the Tuple composite type, the dynamically-scoped Scope chain, and the
// Cell memoization machinery behind a Deferred value (spec.md §3, §4.4).
//
// This package holds data only. Forcing a Cell — actually running the
// evaluator against its AST and scope — is implemented by package eval,
// which is the one package allowed to mutate a Cell's state; keeping that
// behavior out of this package avoids an import cycle (eval needs the ast
// package to walk expressions, and this package's Cell needs to hold an
// ast.Expr, so Cell stores it as an opaque interface{} rather than
// importing ast directly).
package value

import "github.com/JoshDreamland/yamlet/token"

// Kind tags the variant held by a Value (spec.md §3).
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindList
	KindTuple
	KindLambda
	KindExternal // reserved; inert (spec.md §9 open questions)
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindTuple:
		return "tuple"
	case KindLambda:
		return "lambda"
	case KindExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Value is the tagged variant every forced expression reduces to.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
	Bool  bool
	List  []Value
	Tuple *Tuple
	Lam   *Lambda
}

func Str(s string) Value     { return Value{Kind: KindString, Str: s} }
func Int(i int64) Value      { return Value{Kind: KindInt, Int: i} }
func Float(f float64) Value  { return Value{Kind: KindFloat, Float: f} }
func Bool(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func Null() Value            { return Value{Kind: KindNull} }
func List(vs []Value) Value  { return Value{Kind: KindList, List: vs} }
func TupleVal(t *Tuple) Value { return Value{Kind: KindTuple, Tuple: t} }
func LambdaVal(l *Lambda) Value { return Value{Kind: KindLambda, Lam: l} }
func External() Value        { return Value{Kind: KindExternal} }

// Lambda is a closure: an ordered parameter list, an opaque body AST
// (an ast.Expr, stored untyped for the reason given in the package
// doc), and the scope captured at the !lambda site.
type Lambda struct {
	Params   []string
	Body     interface{}
	Captured *Scope

	// HostFn is set instead of Body/Params/Captured when this Lambda
	// wraps a host-supplied function rather than a !lambda literal
	// (spec.md §4.5's "built-in/host functions").
	HostFn interface{}
}

// CellState is the per-cell state machine driving Deferred forcing
// (spec.md §4.8).
type CellState int

const (
	Unforced CellState = iota
	InProgress
	Forced
)

// Cell is the storage behind one tuple entry: either an already-forced
// literal Value, or a Deferred expression plus the scope it should be
// evaluated in (spec.md §3, §4.4).
//
// Key is the entry's key, kept on the cell so a CycleDetected error can
// report which key's forcing chain looped (spec.md §4.8); it is set by
// whatever constructs the owning Tuple.
type Cell struct {
	State CellState
	Key   string

	// Expr is an ast.Expr (opaque here; see package doc), nil if Value
	// was supplied as a literal and never needs forcing.
	Expr  interface{}
	Scope *Scope
	Pos   token.Position

	Value Value
	Err   error
}

// NewLiteralCell wraps an already-known Value: forcing it is a no-op.
func NewLiteralCell(key string, v Value) *Cell {
	return &Cell{State: Forced, Key: key, Value: v}
}

// NewDeferredCell wraps expr (an ast.Expr) to be evaluated in scope on
// first force.
func NewDeferredCell(key string, expr interface{}, scope *Scope, pos token.Position) *Cell {
	return &Cell{State: Unforced, Key: key, Expr: expr, Scope: scope, Pos: pos}
}

// Tuple is the central composite type (spec.md §3): an ordered mapping
// of key to Cell, its own scope, and its composition history.
type Tuple struct {
	Keys    []string
	Entries map[string]*Cell
	// OwnScope is the scope whose Locals is this Tuple: identifier
	// lookups inside this tuple's own entries resolve here.
	OwnScope *Scope
	// Supers records the predecessor tuples this tuple composited, in
	// order, for provenance; the actual super-chain linkage for name
	// resolution lives in OwnScope.Super (spec.md §4.3).
	Supers []*Tuple
	Origin token.Position
}

// NewTuple creates an empty tuple whose OwnScope is left for the caller
// to wire (a Tuple and its own Scope are constructed together because
// each needs to reference the other).
func NewTuple(origin token.Position) *Tuple {
	return &Tuple{Entries: make(map[string]*Cell), Origin: origin}
}

// Set inserts or overwrites the cell for key, recording first-appearance
// order in Keys.
func (t *Tuple) Set(key string, c *Cell) {
	if _, ok := t.Entries[key]; !ok {
		t.Keys = append(t.Keys, key)
	}
	t.Entries[key] = c
}

// Cell returns the cell stored at key, or nil if key is absent.
func (t *Tuple) Cell(key string) *Cell {
	return t.Entries[key]
}

// Empty reports whether the tuple has no entries.
func (t *Tuple) Empty() bool { return len(t.Keys) == 0 }

// EmptyTuple returns a fresh tuple with no entries and a bare own scope
// (no Up or Super link), suitable as the identity element of composition
// (spec.md §4.3).
func EmptyTuple(origin token.Position) *Tuple {
	tup := NewTuple(origin)
	tup.OwnScope = &Scope{Locals: tup, Origin: origin}
	return tup
}

// Scope is the name-resolution context described in spec.md §3/§4.2: a
// tuple's local bindings plus links to the lexical parent (Up) and the
// composition predecessor (Super).
type Scope struct {
	Locals *Tuple
	Up     *Scope
	Super  *Scope
	Origin token.Position
}

// NewScope creates a scope over locals with the given lexical parent and
// composition predecessor; either may be nil.
func NewScope(locals *Tuple, up, super *Scope, origin token.Position) *Scope {
	return &Scope{Locals: locals, Up: up, Super: super, Origin: origin}
}
