// Package yamlettest runs golden-output scenario tests stored as txtar
// archives, modeled on cuelang.org/go/internal/cuetxtar's TxTarTest: each
// archive holds one or more Yamlet source files plus an "out" file
// recording the expected textual result. Set YAMLET_UPDATE=1 to rewrite
// the golden files with the actual output instead of failing the test.
package yamlettest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"
)

// UpdateGoldenFiles mirrors cuetest.UpdateGoldenFiles: when true, Test.Check
// rewrites the archive's "out" file on disk instead of failing.
var UpdateGoldenFiles = os.Getenv("YAMLET_UPDATE") != ""

// TxTarTest runs every *.txtar file under Root.
type TxTarTest struct {
	Root string
}

// Test represents one .txtar scenario: the files it declares (other than
// "out"), and the golden comparison helper.
type Test struct {
	*testing.T

	Archive *txtar.Archive
	// Dir is the directory containing the archive's declared files, a
	// temp directory populated fresh for each test so relative !import
	// paths resolve the way they would on disk.
	Dir string

	path string
	want string
	got  string
}

// File returns the absolute path of one of the archive's declared
// non-golden files, having already been written under t.Dir.
func (t *Test) File(name string) string {
	return filepath.Join(t.Dir, name)
}

// Check compares got against the archive's "out" file, failing the test
// (or rewriting the archive, under YAMLET_UPDATE) on mismatch.
func (t *Test) Check(got string) {
	t.Helper()
	t.got = got
	if got == t.want {
		return
	}
	if UpdateGoldenFiles {
		t.updateGolden(got)
		return
	}
	t.Errorf("result differs (-want +got):\n%s", cmp.Diff(t.want, got))
}

func (t *Test) updateGolden(got string) {
	for i, f := range t.Archive.Files {
		if f.Name == "out" {
			t.Archive.Files[i].Data = []byte(got)
			t.writeArchive()
			return
		}
	}
	t.Archive.Files = append(t.Archive.Files, txtar.File{Name: "out", Data: []byte(got)})
	t.writeArchive()
}

func (t *Test) writeArchive() {
	if err := os.WriteFile(t.path, txtar.Format(t.Archive), 0o644); err != nil {
		t.Fatal(err)
	}
}

// Run walks x.Root for *.txtar files and invokes f once per archive,
// inside a t.Run subtest named after the archive's path relative to
// Root.
func (x *TxTarTest) Run(t *testing.T, f func(tc *Test)) {
	t.Helper()
	err := filepath.WalkDir(x.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".txtar") {
			return nil
		}
		rel, _ := filepath.Rel(x.Root, path)
		name := strings.TrimSuffix(rel, ".txtar")

		t.Run(name, func(t *testing.T) {
			a, err := txtar.ParseFile(path)
			if err != nil {
				t.Fatalf("parsing txtar: %v", err)
			}
			dir := t.TempDir()
			var want string
			for _, file := range a.Files {
				if file.Name == "out" {
					want = string(file.Data)
					continue
				}
				full := filepath.Join(dir, file.Name)
				if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(full, file.Data, 0o644); err != nil {
					t.Fatal(err)
				}
			}
			tc := &Test{T: t, Archive: a, Dir: dir, path: path, want: want}
			f(tc)
		})
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
