package generator

import (
	"context"
	"errors"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

// copyFixture copies testdata/<name> into a fresh temporary directory.
func copyFixture(t *testing.T, name string) string {
	t.Helper()
	dst := filepath.Join(t.TempDir(), name)
	entries, err := os.ReadDir(filepath.Join("testdata", name))
	require.NoError(t, err)
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join("testdata", name, e.Name()))
		require.NoError(t, err)
		writeSource(t, dst, e.Name(), string(data))
	}
	return dst
}

func newTestGenerator(t *testing.T, mutate func(*Options)) *Generator {
	t.Helper()
	opts := DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	gen, err := New(opts, zaptest.NewLogger(t))
	require.NoError(t, err)
	return gen
}

func TestGenerateDirs(t *testing.T) {
	dir := copyFixture(t, "shapes")
	gen := newTestGenerator(t, nil)

	report, err := gen.GenerateDirs(context.Background(), []string{dir})
	require.NoError(t, err)
	require.NoError(t, report.Err())

	out := filepath.Join(dir, "shapes_enumcmp.go")
	assert.Equal(t, 1, report.Packages)
	assert.Equal(t, []string{out}, report.Written)
	assert.Empty(t, report.Removed)
	assert.Empty(t, report.Diagnostics)
	require.Len(t, report.Expansions, 1)
	assert.Equal(t, []string{"Point", "Circle", "Rect", "Square", "Framed", "Boxed"}, report.Expansions[0].Tags())

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	golden, err := os.ReadFile(filepath.Join("testdata", "golden", "shapes.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(golden), string(written))

	// a second run reads the same sources and yields identical output
	_, err = gen.GenerateDirs(context.Background(), []string{dir})
	require.NoError(t, err)
	again, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, written, again)
}

func TestGenerateDirsDiagnosticsSuppressOutput(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "union.go", "package mixed\n\n//enumcmp:generate\ntype U interface{ isU() }\n\ntype A struct{}\n\nfunc (A) isU() {}\n")
	writeSource(t, dir, "product.go", "package mixed\n\n//enumcmp:generate\ntype MyStruct struct{}\n")
	gen := newTestGenerator(t, nil)

	report, err := gen.GenerateDirs(context.Background(), []string{dir})
	require.NoError(t, err)

	require.Len(t, report.Diagnostics, 1)
	diag := report.Diagnostics[0]
	assert.Equal(t, CodeRequiresTaggedUnion, diag.Code)
	assert.Equal(t, filepath.Join(dir, "product.go"), diag.Pos.Filename)
	assert.Equal(t, 4, diag.Pos.Line)

	assert.Empty(t, report.Written)
	assert.NoFileExists(t, filepath.Join(dir, "union_enumcmp.go"))
	assert.NoFileExists(t, filepath.Join(dir, "product_enumcmp.go"))

	err = report.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRequiresTaggedUnion))
}

func TestGenerateDirsEmptyUnion(t *testing.T) {
	dir := copyFixture(t, "empty")
	stale := filepath.Join(dir, "empty_enumcmp.go")
	require.NoError(t, os.WriteFile(stale, []byte(Header+"\n\npackage empty\n"), 0o644))
	gen := newTestGenerator(t, nil)

	report, err := gen.GenerateDirs(context.Background(), []string{dir})
	require.NoError(t, err)
	require.NoError(t, report.Err())

	assert.Empty(t, report.Written)
	assert.Equal(t, []string{stale}, report.Removed)
	assert.NoFileExists(t, stale)
	for _, exp := range report.Expansions {
		assert.Empty(t, exp.Declarations)
		assert.Nil(t, exp.Diagnostic)
	}
}

func TestGenerateDirsDryRun(t *testing.T) {
	dir := copyFixture(t, "shapes")
	gen := newTestGenerator(t, func(o *Options) { o.DryRun = true })

	report, err := gen.GenerateDirs(context.Background(), []string{dir})
	require.NoError(t, err)

	require.Len(t, report.Files, 1)
	assert.Equal(t, filepath.Join(dir, "shapes_enumcmp.go"), report.Files[0].Path)
	assert.Contains(t, string(report.Files[0].Content), "func _ShapeIs(v Shape, tag _Shape) bool")
	assert.Empty(t, report.Written)
	assert.NoFileExists(t, report.Files[0].Path)
}

func TestInspect(t *testing.T) {
	dir := copyFixture(t, "notunion")
	gen := newTestGenerator(t, nil)

	report, err := gen.Inspect(context.Background(), []string{dir})
	require.NoError(t, err)

	assert.Len(t, report.Expansions, 4)
	assert.Len(t, report.Diagnostics, 4)
	assert.Empty(t, report.Written)
	assert.Empty(t, report.Files)

	for i := 1; i < len(report.Diagnostics); i++ {
		assert.Less(t, report.Diagnostics[i-1].Pos.Offset, report.Diagnostics[i].Pos.Offset)
	}
}

func TestGenerateDirsConcurrentPackages(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	fixtures := []string{"shapes", "generic", "empty"}
	var roots []string
	for _, name := range fixtures {
		src := copyFixture(t, name)
		dst := filepath.Join(root, name)
		require.NoError(t, os.Rename(src, dst))
		roots = append(roots, dst)
	}

	gen := newTestGenerator(t, func(o *Options) { o.Concurrency = 2 })
	report, err := gen.GenerateDirs(context.Background(), []string{root + "/..."})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Packages)
	assert.ElementsMatch(t, []string{
		filepath.Join(roots[0], "shapes_enumcmp.go"),
		filepath.Join(roots[1], "generic_enumcmp.go"),
	}, report.Written)

	// results are merged in directory order regardless of scheduling
	var names []string
	for _, exp := range report.Expansions {
		names = append(names, exp.Decl.Name)
	}
	assert.Equal(t, []string{"Empty", "Open", "Result", "Shape"}, names)
}

func TestGenerateDirsCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := copyFixture(t, "shapes")
	gen := newTestGenerator(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gen.GenerateDirs(ctx, []string{dir})
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(dir, "shapes_enumcmp.go"))
}

func TestGenerateDirsParseError(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "bad.go", "package bad\n\nfunc {\n")
	gen := newTestGenerator(t, nil)

	_, err := gen.GenerateDirs(context.Background(), []string{dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestExpand(t *testing.T) {
	gen := newTestGenerator(t, nil)

	exp, err := gen.Expand(fooDecl())
	require.NoError(t, err)
	assert.Nil(t, exp.Diagnostic)
	assert.Equal(t, []string{"foo", "bar", "fooBar"}, exp.Tags())
	require.Len(t, exp.Declarations, 2)

	exp, err = gen.Expand(Decl{Kind: KindProduct, Name: "S"})
	require.NoError(t, err)
	require.NotNil(t, exp.Diagnostic)
	assert.Empty(t, exp.Declarations)
	assert.Empty(t, exp.Variants)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults", func(*Options) {}, false},
		{"custom naming", func(o *Options) { o.Naming = Naming{Prefix: "Tag", FuncSuffix: "Matches"} }, false},
		{"empty prefix", func(o *Options) { o.Naming.Prefix = "" }, true},
		{"prefix starting with digit", func(o *Options) { o.Naming.Prefix = "1" }, true},
		{"suffix with dash", func(o *Options) { o.Naming.FuncSuffix = "-is" }, true},
		{"file suffix without .go", func(o *Options) { o.FileSuffix = "_gen.txt" }, true},
		{"negative concurrency", func(o *Options) { o.Concurrency = -1 }, true},
		{"empty exclude", func(o *Options) { o.Excludes = []string{""} }, true},
		{"malformed exclude", func(o *Options) { o.Excludes = []string{"[x"} }, true},
		{"valid exclude", func(o *Options) { o.Excludes = []string{"**/mocks/**"} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.FileSuffix = ""
	_, err := New(opts, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid options")
}

func TestReportErrNil(t *testing.T) {
	var r *Report
	assert.NoError(t, r.Err())
	assert.NoError(t, (&Report{}).Err())
}

// typeCheck type-checks the package in dir together with its rendered
// generated files, as the compiler would see them.
func typeCheck(t *testing.T, dir string, generated []GeneratedFile) {
	t.Helper()
	fset := token.NewFileSet()
	var files []*ast.File

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") || strings.HasSuffix(name, DefaultFileSuffix) {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, 0)
		require.NoError(t, err)
		files = append(files, f)
	}
	for _, g := range generated {
		f, err := parser.ParseFile(fset, g.Path, g.Content, 0)
		require.NoError(t, err, string(g.Content))
		files = append(files, f)
	}

	conf := types.Config{Importer: importer.Default()}
	_, err = conf.Check(filepath.Base(dir), fset, files, nil)
	require.NoError(t, err)
}

func TestGeneratedCodeTypeChecks(t *testing.T) {
	for _, fixture := range []string{"shapes", "generic"} {
		t.Run(fixture, func(t *testing.T) {
			dir := copyFixture(t, fixture)
			gen := newTestGenerator(t, func(o *Options) { o.DryRun = true })

			report, err := gen.GenerateDirs(context.Background(), []string{dir})
			require.NoError(t, err)
			require.NoError(t, report.Err())
			require.Len(t, report.Files, 1)

			typeCheck(t, dir, report.Files)
		})
	}
}

func TestGeneratedCodeTypeChecksMethodSets(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		wantTags []string
	}{
		{
			name: "value seal with pointer method",
			source: `package p

//enumcmp:generate
type Shape interface {
	isShape()
	Area() float64
}

type Square struct{ Side float64 }

func (Square) isShape()         {}
func (s *Square) Area() float64 { return s.Side * s.Side }
`,
			wantTags: []string{"Square"},
		},
		{
			name: "sealed type missing a method",
			source: `package p

//enumcmp:generate
type Shape interface {
	isShape()
	Area() float64
}

type Dot struct{}

type Tri struct{ A, B, C Dot }

func (Dot) isShape()       {}
func (Dot) Area() float64  { return 0 }
func (Tri) isShape()       {}
`,
			wantTags: []string{"Dot"},
		},
		{
			name: "seal from embedded interface and promoted methods",
			source: `package p

//enumcmp:generate
type Node interface {
	sealed
	Pos() int
}

type sealed interface{ isNode() }

type Leaf struct{}

type Wrapped struct{ *Leaf }

func (*Leaf) isNode()  {}
func (*Leaf) Pos() int { return 0 }
`,
			wantTags: []string{"Leaf", "Wrapped"},
		},
		{
			name: "generic variants with renamed and mismatched parameters",
			source: `package p

//enumcmp:generate
type Option[T comparable] interface{ isOption() }

type Some[V comparable] struct{ Value V }

type Any[V any] struct{ Value V }

type Nothing struct{}

func (Some[V]) isOption() {}
func (Any[V]) isOption()  {}
func (Nothing) isOption() {}
`,
			wantTags: []string{"Some", "Nothing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeSource(t, dir, "p.go", tt.source)
			gen := newTestGenerator(t, func(o *Options) { o.DryRun = true })

			report, err := gen.GenerateDirs(context.Background(), []string{dir})
			require.NoError(t, err)
			require.Len(t, report.Expansions, 1)
			assert.Equal(t, tt.wantTags, report.Expansions[0].Tags())

			typeCheck(t, dir, report.Files)
		})
	}
}
