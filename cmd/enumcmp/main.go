// Package main provides the enumcmp code generator.
package main

import (
	"os"

	"github.com/gork-labs/enumcmp/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
