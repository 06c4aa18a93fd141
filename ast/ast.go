// Package ast defines the expression-language AST shared by !expr, !fmt
// slots, !lambda bodies, and !composite parts (spec.md §4.1).
package ast

import "github.com/JoshDreamland/yamlet/token"

// Node is any AST node: it knows where it started in the source.
type Node interface {
	Pos() token.Position
}

// Expr is any expression node.
type Expr interface {
	Node
	exprNode()
}

func (*BadExpr) exprNode()       {}
func (*Ident) exprNode()         {}
func (*IntLit) exprNode()        {}
func (*FloatLit) exprNode()      {}
func (*StringLit) exprNode()     {}
func (*ListLit) exprNode()       {}
func (*MapLit) exprNode()        {}
func (*UnaryExpr) exprNode()     {}
func (*BinaryExpr) exprNode()    {}
func (*CondExpr) exprNode()      {}
func (*LambdaExpr) exprNode()    {}
func (*CallExpr) exprNode()      {}
func (*IndexExpr) exprNode()     {}
func (*SelectorExpr) exprNode()  {}
func (*ExtensionExpr) exprNode() {}
func (*ComposeExpr) exprNode()   {}
func (*FormatExpr) exprNode()    {}
func (*ParenExpr) exprNode()     {}

// BadExpr is a placeholder for a span the parser could not make sense of.
// It lets the parser keep going and collect more diagnostics instead of
// aborting on the first syntax error.
type BadExpr struct {
	From token.Position
}

func (x *BadExpr) Pos() token.Position { return x.From }

// Ident is a bare name: an identifier, or one of the reserved names
// up, super, true, false, null (spec.md §4.2 step 1).
type Ident struct {
	NamePos token.Position
	Name    string
}

func (x *Ident) Pos() token.Position { return x.NamePos }

// IntLit is an integer literal.
type IntLit struct {
	ValuePos token.Position
	Value    int64
}

func (x *IntLit) Pos() token.Position { return x.ValuePos }

// FloatLit is a floating-point literal.
type FloatLit struct {
	ValuePos token.Position
	Value    float64
}

func (x *FloatLit) Pos() token.Position { return x.ValuePos }

// StringLit is a single- or double-quoted string literal. Its contents
// undergo the same {expr} interpolation as a !fmt string (spec.md §4.6),
// so Raw is parsed once into Parts at construction time.
type StringLit struct {
	ValuePos token.Position
	Raw      string // the literal's text with escapes not yet processed, pre-interpolation
	Parts    []FormatPart
}

func (x *StringLit) Pos() token.Position { return x.ValuePos }

// ListLit is a list literal: [a, b, ...].
type ListLit struct {
	Lbrack token.Position
	Elts   []Expr
}

func (x *ListLit) Pos() token.Position { return x.Lbrack }

// MapEntry is one key: value pair of a mapping-literal expression
// (spec.md §4.1 primaries). A bare-identifier Key is taken literally;
// a quoted Key is format-interpolated in the enclosing scope at
// construction time, so it also carries KeyExpr.
type MapEntry struct {
	KeyPos  token.Position
	Key     string // literal key, if Quoted is false
	Quoted  bool
	KeyExpr *StringLit // only set when Quoted
	Value   Expr
}

// MapLit is an expression-language mapping literal: { k: v, ... }. Unlike
// a YAML mapping, every entry requires a value and keys are never
// evaluated unless quoted.
type MapLit struct {
	Lbrace token.Position
	Elts   []MapEntry
}

func (x *MapLit) Pos() token.Position { return x.Lbrace }

// UnaryExpr is a unary operator applied to an operand: -x, not x.
type UnaryExpr struct {
	OpPos token.Position
	Op    token.Token
	X     Expr
}

func (x *UnaryExpr) Pos() token.Position { return x.OpPos }

// BinaryExpr covers arithmetic, comparison, and logical and/or/in/is
// operators (spec.md §4.1 grammar levels 3-5).
type BinaryExpr struct {
	X     Expr
	OpPos token.Position
	Op    token.Token
	Y     Expr
}

func (x *BinaryExpr) Pos() token.Position { return x.X.Pos() }

// CondExpr is the conditional expression `a if cond else b`.
type CondExpr struct {
	Then  Expr
	IfPos token.Position
	Cond  Expr
	Else  Expr
}

func (x *CondExpr) Pos() token.Position { return x.Then.Pos() }

// LambdaExpr is `lambda? params ':' body`.
type LambdaExpr struct {
	LambdaPos token.Position
	Params    []*Ident
	Body      Expr
}

func (x *LambdaExpr) Pos() token.Position { return x.LambdaPos }

// CallExpr is `f(args)`.
type CallExpr struct {
	Fun    Expr
	Lparen token.Position
	Args   []Expr
}

func (x *CallExpr) Pos() token.Position { return x.Fun.Pos() }

// IndexExpr is `x[i]`.
type IndexExpr struct {
	X      Expr
	Lbrack token.Position
	Index  Expr
}

func (x *IndexExpr) Pos() token.Position { return x.X.Pos() }

// SelectorExpr is `x.name`, attribute access.
type SelectorExpr struct {
	X   Expr
	Sel *Ident
}

func (x *SelectorExpr) Pos() token.Position { return x.X.Pos() }

// ExtensionExpr is `x { mapping-literal }`, sugar for
// compose(x, AnonymousTuple(mapping-literal)).
type ExtensionExpr struct {
	X     Expr
	Elts  *MapLit
}

func (x *ExtensionExpr) Pos() token.Position { return x.X.Pos() }

// ComposeExpr is juxtaposition composition: two primaries separated only
// by whitespace (spec.md §4.1 grammar level 6). Left-associative.
type ComposeExpr struct {
	X Expr
	Y Expr
}

func (x *ComposeExpr) Pos() token.Position { return x.X.Pos() }

// ParenExpr is a parenthesized expression, kept so diagnostics can point
// at the parens rather than silently vanishing.
type ParenExpr struct {
	Lparen token.Position
	X      Expr
	Rparen token.Position
}

func (x *ParenExpr) Pos() token.Position { return x.Lparen }

// FormatPart is one piece of a format string: either a literal run or a
// parsed expression slot.
type FormatPart struct {
	Literal string // valid when Slot == nil
	Slot    Expr   // valid when non-nil; Literal is ignored
}

// FormatExpr is the AST for a !fmt scalar: literal runs interleaved with
// {expression} slots (spec.md §4.6).
type FormatExpr struct {
	StartPos token.Position
	Parts    []FormatPart
}

func (x *FormatExpr) Pos() token.Position { return x.StartPos }

func (*ImportExpr) exprNode()    {}
func (*CompositeExpr) exprNode() {}

// ImportExpr is the AST behind a !import scalar: a path to resolve and
// load relative to the current file, deferred like any other value
// (spec.md §4.8, §6.1).
type ImportExpr struct {
	PathPos token.Position
	Path    string
}

func (x *ImportExpr) Pos() token.Position { return x.PathPos }

// CompositeBranch is one guarded (or unconditional) alternative inside a
// CompositeElement. Guard is nil for a plain element and for a trailing
// !else: both always match.
type CompositeBranch struct {
	Guard Expr
	Body  Expr
}

// CompositeElement is one item of a !composite sequence: either a single
// unconditional branch (a name or mapping), or an !if/!elif/.../!else
// chain of branches, only the first matching one of which contributes
// (spec.md §4.3, §6.1).
type CompositeElement struct {
	Branches []CompositeBranch
}

// CompositeExpr is the AST behind a !composite sequence: its elements are
// composed left-to-right, lazily, at force time (spec.md §4.3).
type CompositeExpr struct {
	StartPos token.Position
	Elements []CompositeElement
}

func (x *CompositeExpr) Pos() token.Position { return x.StartPos }
