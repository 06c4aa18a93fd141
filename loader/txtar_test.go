package loader_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/JoshDreamland/yamlet/loader"
	"github.com/JoshDreamland/yamlet/internal/yamlettest"
)

// TestGoldenScenarios runs every *.txtar fixture under testdata/: each
// declares a root.yamlet (and any files it !imports) plus an "out" file
// holding the expected rendering of the loaded document's top-level
// keys, one per line.
func TestGoldenScenarios(t *testing.T) {
	tx := yamlettest.TxTarTest{Root: "testdata"}
	tx.Run(t, func(tc *yamlettest.Test) {
		l := loader.NewLoader(loader.Options{})
		doc, err := l.LoadFile(tc.File("root.yamlet"))
		if err != nil {
			tc.Fatalf("LoadFile: %v", err)
		}
		var b strings.Builder
		for _, k := range doc.Keys() {
			v, err := doc.Get(k)
			if err != nil {
				tc.Fatalf("Get(%q): %v", k, err)
			}
			fmt.Fprintf(&b, "%s: %s\n", k, doc.Stringify(v))
		}
		tc.Check(b.String())
	})
}
