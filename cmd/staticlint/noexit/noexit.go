// Package noexit reports calls in package main that terminate the process
// without running deferred functions.
package noexit

import (
	"go/ast"
	"go/types"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer flags os.Exit and log.Fatal* in package main. The catalog's main
// defers App.Close, which flushes the zap logger, and an exit skips it.
var Analyzer = &analysis.Analyzer{
	Name:     "noexit",
	Doc:      "prohibits os.Exit and log.Fatal* in package main",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var forbidden = map[string]map[string]bool{
	"os":  {"Exit": true},
	"log": {"Fatal": true, "Fatalf": true, "Fatalln": true},
}

func run(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	inspect.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		call := n.(*ast.CallExpr)

		if isGoBuildCacheFile(pass.Fset.File(call.Pos()).Name()) {
			return
		}

		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return
		}

		fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
		if !ok || fn.Pkg() == nil {
			return
		}

		if forbidden[fn.Pkg().Path()][fn.Name()] {
			pass.Reportf(call.Pos(), "%s.%s skips deferred cleanup in package main", fn.Pkg().Name(), fn.Name())
		}
	})

	return nil, nil
}

func isGoBuildCacheFile(path string) bool {
	return strings.Contains(filepath.ToSlash(path), "/go-build/")
}
