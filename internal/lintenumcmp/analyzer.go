// Package lintenumcmp reports misplaced enumcmp:generate directives and
// tagged unions whose generated code is missing.
package lintenumcmp

import (
	"errors"
	"go/token"
	"go/types"

	"github.com/gork-labs/enumcmp/internal/generator"
	"golang.org/x/tools/go/analysis"
)

// Analyzer is the enumcmp directive linter.
var Analyzer = &analysis.Analyzer{
	Name: "lintenumcmp",
	Doc:  "checks that enumcmp:generate annotates tagged unions and that their generated code is present",
	Run:  run,
}

var (
	prefix     string
	funcSuffix string
)

func init() {
	Analyzer.Flags.StringVar(&prefix, "prefix", generator.DefaultNaming.Prefix, "shadow type name prefix used by enumcmp generate")
	Analyzer.Flags.StringVar(&funcSuffix, "func-suffix", generator.DefaultNaming.FuncSuffix, "comparison func suffix used by enumcmp generate")
}

func run(pass *analysis.Pass) (interface{}, error) {
	naming := generator.Naming{Prefix: prefix, FuncSuffix: funcSuffix}

	for _, decl := range generator.Collect(pass.Fset, pass.Files) {
		variants, err := generator.Analyze(decl)
		if err != nil {
			var diag *generator.Diagnostic
			if !errors.As(err, &diag) {
				return nil, err
			}
			pass.Report(analysis.Diagnostic{
				Pos:      tokenPos(pass, decl.Pos),
				Category: string(diag.Code),
				Message:  diag.Message,
			})
			continue
		}
		if len(variants) == 0 {
			continue
		}
		checkGenerated(pass, naming, decl, variants)
	}
	return nil, nil
}

// checkGenerated reports a union whose shadow type is missing, or whose
// constants and comparison func no longer match its variants.
func checkGenerated(pass *analysis.Pass, naming generator.Naming, decl generator.Decl, variants []generator.Variant) {
	scope := pass.Pkg.Scope()
	pos := tokenPos(pass, decl.Pos)

	shadow, ok := scope.Lookup(naming.ShadowName(decl.Name)).(*types.TypeName)
	if !ok {
		pass.Reportf(pos, "missing generated code for %s; run enumcmp generate", decl.Name)
		return
	}

	want := make(map[string]bool, len(variants))
	for _, v := range variants {
		want[naming.ConstName(decl.Name, v.Tag)] = true
	}
	stale := scope.Lookup(naming.FuncName(decl.Name)) == nil
	for _, name := range scope.Names() {
		c, ok := scope.Lookup(name).(*types.Const)
		if !ok || !types.Identical(c.Type(), shadow.Type()) {
			continue
		}
		if !want[name] {
			stale = true
		}
		delete(want, name)
	}
	if stale || len(want) > 0 {
		pass.Reportf(pos, "stale generated code for %s; run enumcmp generate", decl.Name)
	}
}

// tokenPos maps a resolved position back to the pass's file set.
func tokenPos(pass *analysis.Pass, pos token.Position) token.Pos {
	for _, file := range pass.Files {
		tf := pass.Fset.File(file.Pos())
		if tf != nil && tf.Name() == pos.Filename && pos.Offset <= tf.Size() {
			return tf.Pos(pos.Offset)
		}
	}
	return token.NoPos
}
