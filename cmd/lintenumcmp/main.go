// Package main runs the lintenumcmp analyzer as a standalone vet tool.
package main

import (
	"github.com/gork-labs/enumcmp/internal/lintenumcmp"
	"golang.org/x/tools/go/analysis/singlechecker"
)

func main() {
	singlechecker.Main(lintenumcmp.Analyzer)
}
