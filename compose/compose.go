// Package compose implements the tuple composition algebra (spec.md §4.3):
// the binary, left-associative compose(A, B) -> C operation extended to
// N-ary juxtaposition and extension.
//
// Deciding whether an overlapping key recurses into nested composition
// or is simply overridden requires knowing whether both sides are
// tuples, which in turn requires forcing that one key in both operands.
// Composition therefore takes a ForceFunc supplied by package eval (which
// owns the forcing state machine) rather than importing eval itself,
// keeping eval -> compose -> value a one-way chain. This is a shallow,
// per-overlapping-key force at the moment two tuples are composed, not a
// deep force of the whole tree — everything a key's forced value itself
// refers to remains as lazy as ever.
package compose

import (
	"github.com/JoshDreamland/yamlet/errors"
	"github.com/JoshDreamland/yamlet/token"
	"github.com/JoshDreamland/yamlet/value"
)

// ForceFunc forces a cell to its Value, running the evaluator's memoized
// state machine (spec.md §4.8).
type ForceFunc func(*value.Cell) (value.Value, error)

// Compose merges a and b into a new tuple per spec.md §4.3. Composing
// with an empty tuple is identity: the other operand is returned
// unchanged (no new tuple is allocated), satisfying the invariant
// compose(A, empty) == A literally, not just observably.
func Compose(force ForceFunc, a, b *value.Tuple, origin token.Position) (*value.Tuple, error) {
	if a.Empty() {
		return b, nil
	}
	if b.Empty() {
		return a, nil
	}

	c := value.NewTuple(origin)
	c.Supers = append(append([]*value.Tuple{}, a.Supers...), a, b)
	ownScope := &value.Scope{
		Locals: c,
		Up:     a.OwnScope.Up,
		Super:  a.OwnScope,
		Origin: origin,
	}
	c.OwnScope = ownScope

	seen := make(map[string]bool, len(a.Keys)+len(b.Keys))
	order := append(append([]string{}, a.Keys...), b.Keys...)

	for _, k := range order {
		if seen[k] {
			continue
		}
		seen[k] = true

		ac := a.Cell(k)
		bc := b.Cell(k)

		switch {
		case ac != nil && bc == nil:
			c.Set(k, rescope(ac, ownScope))

		case ac == nil && bc != nil:
			c.Set(k, rescope(bc, ownScope))

		default: // present in both
			av, err := force(ac)
			if err != nil {
				return nil, err
			}
			bv, err := force(bc)
			if err != nil {
				return nil, err
			}
			if bv.Kind == value.KindNull {
				// null override (spec.md §4.3): erase k unless a later
				// composite reintroduces it.
				continue
			}
			if av.Kind == value.KindTuple && bv.Kind == value.KindTuple {
				nested, err := Compose(force, av.Tuple, bv.Tuple, origin)
				if err != nil {
					return nil, err
				}
				c.Set(k, value.NewLiteralCell(k, value.TupleVal(nested)))
			} else {
				c.Set(k, rescope(bc, ownScope))
			}
		}
	}
	return c, nil
}

// ComposeAll left-folds Compose over tuples, realizing the N-ary
// extension compose(T1, ..., Tn) = compose(compose(T1, T2), ..., Tn).
func ComposeAll(force ForceFunc, origin token.Position, tuples ...*value.Tuple) (*value.Tuple, error) {
	if len(tuples) == 0 {
		return value.EmptyTuple(origin), nil
	}
	acc := tuples[0]
	for _, t := range tuples[1:] {
		var err error
		acc, err = Compose(force, acc, t, origin)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// rescope produces a fresh Deferred cell carrying the same expression (or
// literal value, for cells with no expression to re-evaluate) but a new
// scope, with its own, empty memo cell — spec.md §4.4's "re-scoping
// produces a fresh Deferred ... with its own memo cell".
func rescope(c *value.Cell, scope *value.Scope) *value.Cell {
	if c.Expr == nil {
		return value.NewLiteralCell(c.Key, c.Value)
	}
	return value.NewDeferredCell(c.Key, c.Expr, scope, c.Pos)
}

// RequireTuple raises TypeMismatch if v is not a tuple; used by callers
// (package eval) before invoking Compose, since compose itself assumes
// both operands are already tuples.
func RequireTuple(v value.Value, pos token.Position, context string) (*value.Tuple, error) {
	if v.Kind != value.KindTuple {
		return nil, errors.Newf(errors.TypeMismatch, pos, "%s: expected tuple, got %s", context, v.Kind)
	}
	return v.Tuple, nil
}
