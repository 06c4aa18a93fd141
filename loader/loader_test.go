package loader_test

import (
	"testing"

	"github.com/JoshDreamland/yamlet/errors"
	"github.com/JoshDreamland/yamlet/loader"
	"github.com/JoshDreamland/yamlet/value"
)

// mustGet forces key in doc and fails the test on error.
func mustGet(t *testing.T, doc *loader.Document, key string) value.Value {
	t.Helper()
	v, err := doc.Get(key)
	if err != nil {
		t.Fatalf("Get(%q): %v", key, err)
	}
	return v
}

// TestStringConcatWithInheritance covers spec.md §8 scenario 1: a key
// inherited unchanged from the composition's left operand is available
// to a format string contributed by the right operand.
func TestStringConcatWithInheritance(t *testing.T) {
	src := `
base:
  filler: cooool
  exclamation: beans
  greeting: "Hello, world!"
mixin:
  filler: awesome
  exclamation: sauce
  coolbeans: !fmt "{greeting} I say {filler} {exclamation}!"
childtuple: !expr base mixin
`
	doc := mustLoad(t, src)
	got := mustGet(t, doc, "childtuple").Tuple
	c := forceAttr(t, doc, got, "coolbeans")
	if c.Str != "Hello, world! I say awesome sauce!" {
		t.Fatalf("childtuple.coolbeans = %q", c.Str)
	}
}

// TestOrderSensitivity covers spec.md §8 scenario 2: swapping the
// composition operands flips which side's overlapping keys win.
func TestOrderSensitivity(t *testing.T) {
	src := `
base:
  filler: cooool
  exclamation: beans
  greeting: "Hello, world!"
mixin:
  filler: awesome
  exclamation: sauce
  coolbeans: !fmt "{greeting} I say {filler} {exclamation}!"
forward: !expr base mixin
backward: !expr mixin base
`
	doc := mustLoad(t, src)
	fwd := forceAttr(t, doc, mustGet(t, doc, "forward").Tuple, "coolbeans")
	bwd := forceAttr(t, doc, mustGet(t, doc, "backward").Tuple, "coolbeans")
	if fwd.Str != "Hello, world! I say awesome sauce!" {
		t.Fatalf("forward.coolbeans = %q", fwd.Str)
	}
	if bwd.Str != "Hello, world! I say cooool beans!" {
		t.Fatalf("backward.coolbeans = %q", bwd.Str)
	}
}

// TestConditionalComposite covers spec.md §8 scenario 3 verbatim: three
// !if/!else guarded parts plus one unconditional part compose into
// {a:10, b:{ba:11, bb:12}, c:13, d:14}.
func TestConditionalComposite(t *testing.T) {
	src := `
result: !composite
  - !if
      (1+1==2): {a: 10}
  - !else
      a: 99
  - !if
      ('shark'=='fish'): {b: {ba: 1, bb: 2}}
  - !else
      b: {ba: 11, bb: 12}
  - !if
      ('crab'=='crab'): {c: 13}
  - !else
      c: 999
  - {d: 14}
`
	doc := mustLoad(t, src)
	result := mustGet(t, doc, "result").Tuple

	a := forceAttr(t, doc, result, "a")
	if a.Int != 10 {
		t.Fatalf("a = %v", a)
	}
	c := forceAttr(t, doc, result, "c")
	if c.Int != 13 {
		t.Fatalf("c = %v", c)
	}
	d := forceAttr(t, doc, result, "d")
	if d.Int != 14 {
		t.Fatalf("d = %v", d)
	}
	b := forceAttr(t, doc, result, "b")
	if b.Kind != value.KindTuple {
		t.Fatalf("b is not a tuple: %v", b)
	}
	ba := forceAttr(t, doc, b.Tuple, "ba")
	bb := forceAttr(t, doc, b.Tuple, "bb")
	if ba.Int != 11 || bb.Int != 12 {
		t.Fatalf("b = {ba:%v, bb:%v}", ba, bb)
	}
}

// TestSuperUpNesting covers spec.md §8 scenario 4: nested tuples reach
// out through `up` to their lexical parent's keys.
func TestSuperUpNesting(t *testing.T) {
	src := `
tuple_A:
  fruit1: Apple
  fruit2: Banana
  tuple_B:
    fruit1: Cherry
    fruit2: Blueberry
    value: !fmt "{fruit1} {fruit2}"
    value2: !fmt "{up.fruit1} {up.fruit2} {fruit2} {fruit1}"
    value3: !fmt "{up.fruit1} {up.fruit2}  -vs-  {fruit1} {fruit2}"
tuple_C: !expr tuple_A
`
	doc := mustLoad(t, src)
	tupleC := mustGet(t, doc, "tuple_C").Tuple
	tupleB := forceAttr(t, doc, tupleC, "tuple_B")
	if tupleB.Kind != value.KindTuple {
		t.Fatalf("tuple_C.tuple_B is not a tuple: %v", tupleB)
	}
	value1 := forceAttr(t, doc, tupleB.Tuple, "value")
	value2 := forceAttr(t, doc, tupleB.Tuple, "value2")
	value3 := forceAttr(t, doc, tupleB.Tuple, "value3")

	if want := "Cherry Blueberry"; value1.Str != want {
		t.Fatalf("tuple_C.tuple_B.value = %q, want %q", value1.Str, want)
	}
	if want := "Apple Banana Blueberry Cherry"; value2.Str != want {
		t.Fatalf("tuple_C.tuple_B.value2 = %q, want %q", value2.Str, want)
	}
	if want := "Apple Banana  -vs-  Cherry Blueberry"; value3.Str != want {
		t.Fatalf("tuple_C.tuple_B.value3 = %q, want %q", value3.Str, want)
	}
}

// TestLambda covers spec.md §8 scenario 5.
func TestLambda(t *testing.T) {
	src := `
add_two_numbers: !lambda 'x,y: x+y'
name_that_shape: !lambda 'n: "triangle" if n==4 else ("square" if n==5 else ("pentagon" if n==6 else "{n}-gon"))'
`
	doc := mustLoad(t, src)
	sum := callLambda(t, doc, "add_two_numbers", value.Int(5), value.Int(7))
	if sum.Int != 12 {
		t.Fatalf("add_two_numbers(5,7) = %v", sum)
	}
	tri := callLambda(t, doc, "name_that_shape", value.Int(4))
	if tri.Str != "triangle" {
		t.Fatalf("name_that_shape(4) = %q", tri.Str)
	}
	gon := callLambda(t, doc, "name_that_shape", value.Int(14))
	if gon.Str != "14-gon" {
		t.Fatalf("name_that_shape(14) = %q", gon.Str)
	}
}

// TestCycleDetected covers spec.md §8 scenario 6: a genuine value cycle
// fails with CycleDetected, but unrelated keys in the same tuple remain
// accessible.
func TestCycleDetected(t *testing.T) {
	src := `
cyc:
  a: !expr b
  b: !expr a
  c: 42
`
	doc := mustLoad(t, src)
	cyc := mustGet(t, doc, "cyc").Tuple

	cell := cyc.Cell("a")
	_, err := doc.ForceCell(cell)
	if err == nil {
		t.Fatal("expected CycleDetected forcing cyc.a, got nil")
	}
	if k, ok := errors.KindOf(err); !ok || k != errors.CycleDetected {
		t.Fatalf("expected CycleDetected, got %v", err)
	}

	c := forceAttr(t, doc, cyc, "c")
	if c.Int != 42 {
		t.Fatalf("cyc.c = %v", c)
	}
}

func mustLoad(t *testing.T, src string) *loader.Document {
	t.Helper()
	l := loader.NewLoader(loader.Options{})
	doc, err := l.LoadString(src, "test.yamlet")
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	return doc
}

func forceAttr(t *testing.T, doc *loader.Document, tup *value.Tuple, key string) value.Value {
	t.Helper()
	cell := tup.Cell(key)
	if cell == nil {
		t.Fatalf("key %q not found", key)
	}
	v, err := doc.ForceCell(cell)
	if err != nil {
		t.Fatalf("forcing %q: %v", key, err)
	}
	return v
}

func callLambda(t *testing.T, doc *loader.Document, name string, args ...value.Value) value.Value {
	t.Helper()
	fn := mustGet(t, doc, name)
	if fn.Kind != value.KindLambda {
		t.Fatalf("%s is not a lambda: %v", name, fn)
	}
	v, err := doc.Apply(fn.Lam, args)
	if err != nil {
		t.Fatalf("calling %s: %v", name, err)
	}
	return v
}
