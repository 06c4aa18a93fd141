// Package errors defines the Yamlet error taxonomy (spec.md §7). Every
// error carries a primary source position and, optionally, a key path
// into the tuple where it surfaced.
package errors

import (
	"fmt"
	"strings"

	"github.com/JoshDreamland/yamlet/token"
)

// Error is the common interface implemented by every Yamlet diagnostic.
// It mirrors cue/errors.Error's Position/Path/Error contract.
type Error interface {
	error
	// Position returns the primary position of the error.
	Position() token.Position
	// Path returns the key path into the tuple tree where the error
	// occurred, innermost last. It may be nil.
	Path() []string
}

// Kind classifies an Error per spec.md §7.
type Kind int

const (
	LexError Kind = iota
	ParseError
	YamlError
	UndefinedName
	TypeMismatch
	ArityError
	ArithmeticError
	IndexOutOfRange
	KeyNotFound
	CycleDetected
	ImportError
	DepthExceeded
)

var kindNames = map[Kind]string{
	LexError:        "LexError",
	ParseError:      "ParseError",
	YamlError:       "YamlError",
	UndefinedName:   "UndefinedName",
	TypeMismatch:    "TypeMismatch",
	ArityError:      "ArityError",
	ArithmeticError: "ArithmeticError",
	IndexOutOfRange: "IndexOutOfRange",
	KeyNotFound:     "KeyNotFound",
	CycleDetected:   "CycleDetected",
	ImportError:     "ImportError",
	DepthExceeded:   "DepthExceeded",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Error"
}

// baseError is the concrete type behind every Yamlet Error.
type baseError struct {
	kind Kind
	pos  token.Position
	path []string
	msg  string
	// cause is the underlying error passed to Wrap (e.g. the failure
	// behind an ImportError); nil for errors built with Newf.
	cause error
}

func (e *baseError) Error() string {
	var b strings.Builder
	b.WriteString(e.kind.String())
	b.WriteString(": ")
	b.WriteString(e.msg)
	if e.pos.IsValid() {
		fmt.Fprintf(&b, " (%s)", e.pos)
	}
	if len(e.path) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.path, "."))
	}
	if e.cause != nil {
		fmt.Fprintf(&b, ": %v", e.cause)
	}
	return b.String()
}

func (e *baseError) Position() token.Position { return e.pos }
func (e *baseError) Path() []string            { return e.path }
func (e *baseError) Unwrap() error             { return e.cause }
func (e *baseError) Kind() Kind                { return e.kind }

// Newf creates an Error of the given kind at pos with a formatted message.
func Newf(kind Kind, pos token.Position, format string, args ...interface{}) Error {
	return &baseError{kind: kind, pos: pos, msg: fmt.Sprintf(format, args...)}
}

// WithPath returns a copy of err with its key path set, for errors raised
// deep inside a composite where the caller knows the enclosing path.
func WithPath(err Error, path []string) Error {
	if be, ok := err.(*baseError); ok {
		cp := *be
		cp.path = path
		return &cp
	}
	return err
}

// Wrap attaches cause as the underlying reason for err.
func Wrap(kind Kind, pos token.Position, cause error, format string, args ...interface{}) Error {
	return &baseError{kind: kind, pos: pos, msg: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf reports the Kind of err, or false if err is not a Yamlet Error.
func KindOf(err error) (Kind, bool) {
	type kinder interface{ Kind() Kind }
	if k, ok := err.(kinder); ok {
		return k.Kind(), true
	}
	return 0, false
}

// List collects multiple diagnostics from a single parse or load, the way
// cue/errors.List batches lexer/parser errors instead of stopping at the
// first one.
type List []Error

func (l *List) Add(err Error) { *l = append(*l, err) }

// Extend appends every error in other to l, preserving order.
func (l *List) Extend(other List) {
	*l = append(*l, other...)
}

func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

func (l List) Error() string {
	switch len(l) {
	case 0:
		return ""
	case 1:
		return l[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (and %d more errors)", l[0].Error(), len(l)-1)
	return b.String()
}

func (l List) Position() token.Position {
	if len(l) == 0 {
		return token.NoPos
	}
	return l[0].Position()
}

func (l List) Path() []string {
	if len(l) == 0 {
		return nil
	}
	return l[0].Path()
}
