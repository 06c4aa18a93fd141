// Package loader implements the host boundary described in spec.md §6.3:
// constructing an Evaluator from host-supplied functions/globals/import
// resolution/depth-limit/stringify-style options, reading and decoding
// YAML documents, and the per-loader-instance import cache that lets
// import cycles through (so long as no concrete value depends on
// itself, caught by the evaluator's own per-cell cycle guard).
package loader

import (
	"os"
	"path/filepath"

	"github.com/JoshDreamland/yamlet/compose"
	"github.com/JoshDreamland/yamlet/errors"
	"github.com/JoshDreamland/yamlet/eval"
	"github.com/JoshDreamland/yamlet/internal/yamlsrc"
	"github.com/JoshDreamland/yamlet/provenance"
	"github.com/JoshDreamland/yamlet/token"
	"github.com/JoshDreamland/yamlet/value"
)

// Options configures a Loader (spec.md §6.3's new_loader options).
type Options struct {
	Functions      map[string]eval.HostFunc
	Globals        map[string]value.Value
	ImportResolver func(path string) (string, error)
	MaxDepth       int
	Style          eval.StringifyStyle
}

// Loader owns one Evaluator, one import cache, and the options it was
// constructed with; per spec.md §5 these are immutable after
// construction and there is exactly one logical evaluator per loader.
type Loader struct {
	opts  Options
	ev    *eval.Evaluator
	cache map[string]*cacheEntry
}

type cacheEntry struct {
	tuple   *value.Tuple
	err     error
	loading bool
}

// NewLoader constructs a Loader and wires it as its own Evaluator's
// Importer, so !import expressions route back through this loader's
// cache.
func NewLoader(opts Options) *Loader {
	ev := eval.NewEvaluator()
	if opts.Functions != nil {
		ev.Functions = opts.Functions
	}
	if opts.Globals != nil {
		ev.Globals = opts.Globals
	}
	if opts.MaxDepth > 0 {
		ev.MaxDepth = opts.MaxDepth
	}
	ev.Style = opts.Style

	l := &Loader{opts: opts, ev: ev, cache: map[string]*cacheEntry{}}
	ev.Importer = l
	return l
}

// LoadFile reads, decodes, and evaluates the document rooted at path,
// returning its top-level Document (spec.md §6.3 load_file).
func (l *Loader) LoadFile(path string) (*Document, error) {
	abs, err := l.resolvePath(path)
	if err != nil {
		return nil, err
	}
	t, err := l.loadAbs(abs)
	if err != nil {
		return nil, err
	}
	return &Document{Tuple: t, ev: l.ev}, nil
}

// LoadString decodes and evaluates text as a document whose logical
// filename (used for positions and relative !import resolution) is
// logicalPath (spec.md §6.3 load_string). It is not cached: the same
// logicalPath loaded twice via LoadString builds two independent trees.
func (l *Loader) LoadString(text, logicalPath string) (*Document, error) {
	t, err := l.build(logicalPath, []byte(text))
	if err != nil {
		return nil, err
	}
	return &Document{Tuple: t, ev: l.ev}, nil
}

func (l *Loader) resolvePath(path string) (string, error) {
	if l.opts.ImportResolver != nil {
		return l.opts.ImportResolver(path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Newf(errors.ImportError, token.NoPos, "resolving %q: %v", path, err)
	}
	return abs, nil
}

func (l *Loader) loadAbs(abs string) (*value.Tuple, error) {
	if e, ok := l.cache[abs]; ok {
		if e.loading {
			return nil, errors.Newf(errors.ImportError, token.Position{Filename: abs}, "import cycle: %q is still loading its own root value", abs)
		}
		return e.tuple, e.err
	}
	l.cache[abs] = &cacheEntry{loading: true}

	src, err := os.ReadFile(abs)
	if err != nil {
		ierr := errors.Newf(errors.ImportError, token.Position{Filename: abs}, "reading %q: %v", abs, err)
		l.cache[abs] = &cacheEntry{err: ierr}
		return nil, ierr
	}
	t, err := l.build(abs, src)
	l.cache[abs] = &cacheEntry{tuple: t, err: err}
	return t, err
}

func (l *Loader) build(filename string, src []byte) (*value.Tuple, error) {
	rootExpr, errs := yamlsrc.Decode(filename, src)
	if err := errs.Err(); err != nil {
		return nil, err
	}
	v, err := l.ev.Eval(rootExpr, nil)
	if err != nil {
		return nil, err
	}
	return compose.RequireTuple(v, token.Position{Filename: filename}, "document root")
}

// Import implements eval.Importer: it resolves a relative path against
// fromFile's directory, passes the result through the ImportResolver when
// one is configured, and loads it through this loader's cache (spec.md
// §4.8, §6.1).
func (l *Loader) Import(fromFile, path string) (value.Value, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(filepath.Dir(fromFile), path)
	}
	if l.opts.ImportResolver != nil {
		resolved, err := l.opts.ImportResolver(abs)
		if err != nil {
			return value.Value{}, err
		}
		abs = resolved
	}
	t, err := l.loadAbs(abs)
	if err != nil {
		return value.Value{}, err
	}
	return value.TupleVal(t), nil
}

// Document is a loaded, forceable configuration tree (spec.md §6.3's
// Tuple operations: indexing forces, keys()/items() force on iteration,
// explain_value renders a trace).
type Document struct {
	Tuple *value.Tuple
	ev    *eval.Evaluator
}

// Get forces and returns the value at key (spec.md §6.3 Tuple[key]).
func (d *Document) Get(key string) (value.Value, error) {
	cell := d.Tuple.Cell(key)
	if cell == nil {
		return value.Value{}, errors.Newf(errors.KeyNotFound, d.Tuple.Origin, "key %q not found", key)
	}
	return d.ev.Force(cell)
}

// ForceCell forces an arbitrary cell, such as one obtained from a nested
// tuple via Tuple.Cell, not just a top-level Document key.
func (d *Document) ForceCell(cell *value.Cell) (value.Value, error) {
	return d.ev.Force(cell)
}

// Apply calls a forced Lambda value with already-forced arguments.
func (d *Document) Apply(l *value.Lambda, args []value.Value) (value.Value, error) {
	return d.ev.Apply(l, args)
}

// Keys returns the tuple's keys in first-appearance order.
func (d *Document) Keys() []string {
	return d.Tuple.Keys
}

// Items forces every entry and returns the resulting key/value map
// (spec.md §6.3 Tuple.items()).
func (d *Document) Items() (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(d.Tuple.Keys))
	for _, k := range d.Tuple.Keys {
		v, err := d.Get(k)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// Explain renders the provenance trace for key (spec.md §4.7, §6.3
// explain_value).
func (d *Document) Explain(key string) (string, error) {
	return provenance.Explain(d.ev, d.Tuple, key)
}

// Stringify renders v using this document's configured stringify style
// (spec.md §4.6, §6.3).
func (d *Document) Stringify(v value.Value) string {
	return d.ev.Stringify(v)
}
