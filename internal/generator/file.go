package generator

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strings"
)

// Header marks every generated file.
const Header = "// Code generated by enumcmp. DO NOT EDIT."

// FileGenerator renders and writes colocated generated files.
type FileGenerator struct {
	suffix string
}

// NewFileGenerator creates a file generator writing "<source>"+suffix files.
func NewFileGenerator(suffix string) *FileGenerator {
	if suffix == "" {
		suffix = DefaultFileSuffix
	}
	return &FileGenerator{suffix: suffix}
}

// OutputPath returns the generated companion of sourceFile.
func (g *FileGenerator) OutputPath(sourceFile string) string {
	return strings.TrimSuffix(sourceFile, ".go") + g.suffix
}

// Render produces a gofmt'ed Go file holding the declarations of every expansion.
func (g *FileGenerator) Render(pkgName string, expansions []Expansion) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n\n", Header)
	fmt.Fprintf(&buf, "package %s\n", pkgName)

	for _, exp := range expansions {
		for _, d := range exp.Declarations {
			buf.WriteString("\n")
			buf.WriteString(d.Source)
			buf.WriteString("\n")
		}
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return buf.Bytes(), fmt.Errorf("failed to format generated code: %w", err)
	}
	return formatted, nil
}

// WriteFile renders expansions for sourceFile into its companion file. When
// no expansion carries declarations, a previously generated companion is
// removed instead. It returns the path written or removed, or "" when there
// was nothing to do.
func (g *FileGenerator) WriteFile(sourceFile, pkgName string, expansions []Expansion) (string, error) {
	outputPath := g.OutputPath(sourceFile)

	if !hasDeclarations(expansions) {
		return g.removeStale(outputPath)
	}

	content, err := g.Render(pkgName, expansions)
	if err != nil {
		// Write unformatted code for debugging
		_ = writeFile(outputPath+".debug", content)
		return "", err
	}

	if err := writeFile(outputPath, content); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return outputPath, nil
}

// removeStale deletes outputPath if it is a file enumcmp generated.
func (g *FileGenerator) removeStale(outputPath string) (string, error) {
	content, err := os.ReadFile(outputPath) // #nosec G304
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", outputPath, err)
	}
	if !bytes.HasPrefix(content, []byte(Header)) {
		return "", nil
	}
	if err := os.Remove(outputPath); err != nil {
		return "", fmt.Errorf("failed to remove stale %s: %w", outputPath, err)
	}
	return outputPath, nil
}

func hasDeclarations(expansions []Expansion) bool {
	for _, exp := range expansions {
		if len(exp.Declarations) > 0 {
			return true
		}
	}
	return false
}

// writeFile writes content to a file, creating directories if necessary
func writeFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return os.WriteFile(path, content, 0o644)
}
