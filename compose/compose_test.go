package compose

import (
	"testing"

	"github.com/JoshDreamland/yamlet/token"
	"github.com/JoshDreamland/yamlet/value"
)

var noPos = token.Position{Filename: "test"}

// literalTuple builds a tuple of literal (already-forced) cells, for
// compose tests that don't need lazy evaluation.
func literalTuple(entries map[string]value.Value, order []string) *value.Tuple {
	tup := value.NewTuple(noPos)
	tup.OwnScope = value.NewScope(tup, nil, nil, noPos)
	for _, k := range order {
		tup.Set(k, value.NewLiteralCell(k, entries[k]))
	}
	return tup
}

func noForce(c *value.Cell) (value.Value, error) { return c.Value, nil }

func TestComposeKeyUnion(t *testing.T) {
	a := literalTuple(map[string]value.Value{"x": value.Int(1), "y": value.Int(2)}, []string{"x", "y"})
	b := literalTuple(map[string]value.Value{"y": value.Int(20), "z": value.Int(3)}, []string{"y", "z"})

	c, err := Compose(noForce, a, b, noPos)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if got := c.Keys; len(got) != 3 || got[0] != "x" || got[1] != "y" || got[2] != "z" {
		t.Fatalf("c.Keys = %v, want [x y z]", got)
	}
	if v, err := noForce(c.Cell("x")); err != nil || v.Int != 1 {
		t.Fatalf("c.x = %v, %v", v, err)
	}
	if v, err := noForce(c.Cell("y")); err != nil || v.Int != 20 {
		t.Fatalf("c.y = %v, %v, want override 20", v, err)
	}
	if v, err := noForce(c.Cell("z")); err != nil || v.Int != 3 {
		t.Fatalf("c.z = %v, %v", v, err)
	}
}

func TestComposeRecursesIntoNestedTuples(t *testing.T) {
	innerA := literalTuple(map[string]value.Value{"p": value.Int(1)}, []string{"p"})
	innerB := literalTuple(map[string]value.Value{"q": value.Int(2)}, []string{"q"})
	a := literalTuple(map[string]value.Value{"nested": value.TupleVal(innerA)}, []string{"nested"})
	b := literalTuple(map[string]value.Value{"nested": value.TupleVal(innerB)}, []string{"nested"})

	c, err := Compose(noForce, a, b, noPos)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	nv, err := noForce(c.Cell("nested"))
	if err != nil {
		t.Fatalf("forcing nested: %v", err)
	}
	if nv.Kind != value.KindTuple {
		t.Fatalf("nested = %v, want tuple", nv)
	}
	if len(nv.Tuple.Keys) != 2 {
		t.Fatalf("nested.Keys = %v, want [p q]", nv.Tuple.Keys)
	}
}

func TestComposeNullErasesKey(t *testing.T) {
	a := literalTuple(map[string]value.Value{"x": value.Int(1)}, []string{"x"})
	b := literalTuple(map[string]value.Value{"x": value.Null()}, []string{"x"})

	c, err := Compose(noForce, a, b, noPos)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if c.Cell("x") != nil {
		t.Fatalf("expected x to be erased by a Null override, got %v", c.Cell("x"))
	}
}

func TestComposeWithEmptyIsIdentity(t *testing.T) {
	a := literalTuple(map[string]value.Value{"x": value.Int(1)}, []string{"x"})
	empty := value.EmptyTuple(noPos)

	c1, err := Compose(noForce, a, empty, noPos)
	if err != nil {
		t.Fatalf("Compose(a, empty): %v", err)
	}
	if c1 != a {
		t.Fatalf("Compose(a, empty) should return a unchanged (identity), got a different tuple")
	}

	c2, err := Compose(noForce, empty, a, noPos)
	if err != nil {
		t.Fatalf("Compose(empty, a): %v", err)
	}
	if c2 != a {
		t.Fatalf("Compose(empty, a) should return a unchanged (identity), got a different tuple")
	}
}

func TestRequireTupleRejectsNonTuple(t *testing.T) {
	if _, err := RequireTuple(value.Int(1), noPos, "test"); err == nil {
		t.Fatal("expected a TypeMismatch error for a non-tuple value")
	}
}
