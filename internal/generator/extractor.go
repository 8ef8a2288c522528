package generator

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultFileSuffix is appended to a source file name, minus ".go", to name
// its generated companion.
const DefaultFileSuffix = "_enumcmp.go"

// Package is one parsed Go package and its annotated declarations.
type Package struct {
	Name  string
	Dir   string
	Files []*ast.File
	Decls []Decl
}

// Extractor turns Go source into structural declarations.
type Extractor struct {
	fileSet    *token.FileSet
	fileSuffix string
	excludes   []string
}

// NewExtractor creates a new extractor. Files ending in fileSuffix are
// treated as generated and skipped; directories matching any of the
// doublestar exclude patterns are skipped by Dirs.
func NewExtractor(fileSuffix string, excludes []string) *Extractor {
	if fileSuffix == "" {
		fileSuffix = DefaultFileSuffix
	}
	return &Extractor{
		fileSet:    token.NewFileSet(),
		fileSuffix: fileSuffix,
		excludes:   excludes,
	}
}

// FileSet returns the file set positions are resolved against.
func (e *Extractor) FileSet() *token.FileSet {
	return e.fileSet
}

// ValidateExcludes reports the first malformed exclude pattern.
func ValidateExcludes(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return nil
}

// Dirs expands roots into the directories to process. A root ending in
// "/..." is walked recursively, skipping hidden, vendor and testdata
// directories; any other root is used as is.
func (e *Extractor) Dirs(roots []string) ([]string, error) {
	var dirs []string
	seen := make(map[string]bool)
	add := func(dir string) {
		dir = filepath.Clean(dir)
		if seen[dir] || e.excluded(dir) {
			return
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}

	for _, root := range roots {
		if !strings.HasSuffix(root, "/...") && root != "..." {
			add(root)
			continue
		}
		base := strings.TrimSuffix(strings.TrimSuffix(root, "..."), "/")
		if base == "" {
			base = "."
		}
		err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			name := d.Name()
			if path != base && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			if e.excluded(path) {
				return filepath.SkipDir
			}
			hasGo, err := containsGoFiles(path)
			if err != nil {
				return err
			}
			if hasGo {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan directory %s: %w", base, err)
		}
	}
	return dirs, nil
}

func (e *Extractor) excluded(dir string) bool {
	path := filepath.ToSlash(filepath.Clean(dir))
	for _, pattern := range e.excludes {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

// containsGoFiles checks if a directory contains any .go files
func containsGoFiles(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".go") {
			return true, nil
		}
	}
	return false, nil
}

// ParseDirectory parses the non-test, non-generated Go files of dir and
// returns its packages sorted by name.
func (e *Extractor) ParseDirectory(dir string) ([]Package, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	byName := make(map[string]*Package)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") ||
			strings.HasSuffix(name, "_test.go") || strings.HasSuffix(name, e.fileSuffix) {
			continue
		}
		path := filepath.Join(dir, name)
		file, err := parser.ParseFile(e.fileSet, path, nil, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		pkg, ok := byName[file.Name.Name]
		if !ok {
			pkg = &Package{Name: file.Name.Name, Dir: dir}
			byName[file.Name.Name] = pkg
		}
		pkg.Files = append(pkg.Files, file)
	}

	pkgs := make([]Package, 0, len(byName))
	for _, pkg := range byName {
		pkg.Decls = Collect(e.fileSet, pkg.Files)
		pkgs = append(pkgs, *pkg)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Name < pkgs[j].Name })
	return pkgs, nil
}

// methodIndex resolves method sets of the package's named types, including
// methods promoted through embedded fields.
type methodIndex struct {
	// type name -> method name -> declared on a pointer receiver
	methods    map[string]map[string]bool
	structs    map[string]*ast.StructType
	interfaces map[string]*ast.InterfaceType
}

// maxEmbedDepth bounds the search through embedded fields.
const maxEmbedDepth = 8

func (ix *methodIndex) declare(typeName, method string, pointer bool) {
	if ix.methods[typeName] == nil {
		ix.methods[typeName] = make(map[string]bool)
	}
	ix.methods[typeName][method] = pointer
}

// has reports whether the method set of typeName, or of *typeName when
// pointer is set, contains method.
func (ix *methodIndex) has(typeName, method string, pointer bool) bool {
	return ix.lookup(typeName, method, pointer, 0)
}

func (ix *methodIndex) lookup(typeName, method string, pointer bool, depth int) bool {
	if depth > maxEmbedDepth {
		return false
	}
	if ptrRecv, ok := ix.methods[typeName][method]; ok {
		return pointer || !ptrRecv
	}
	st := ix.structs[typeName]
	if st == nil {
		return false
	}
	for _, field := range st.Fields.List {
		if len(field.Names) != 0 {
			continue
		}
		name, embeddedPtr := receiverType(field.Type)
		if name == "" {
			continue
		}
		if ix.lookup(name, method, pointer || embeddedPtr, depth+1) {
			return true
		}
	}
	return false
}

// interfaceMethods lists the methods of iface in order, following embedded
// interfaces of the same package. Interfaces embedded from other packages
// are not resolved.
func (ix *methodIndex) interfaceMethods(iface *ast.InterfaceType, depth int) []string {
	var names []string
	for _, field := range iface.Methods.List {
		if _, ok := field.Type.(*ast.FuncType); ok {
			for _, name := range field.Names {
				names = append(names, name.Name)
			}
			continue
		}
		ident, ok := field.Type.(*ast.Ident)
		if !ok || depth >= maxEmbedDepth {
			continue
		}
		if embedded := ix.interfaces[ident.Name]; embedded != nil {
			names = append(names, ix.interfaceMethods(embedded, depth+1)...)
		}
	}
	return names
}

type typeGroup struct {
	specs []*ast.TypeSpec
}

// Collect builds a Decl for every annotated declaration in files, which must
// belong to one package. Files are visited in the order given.
func Collect(fset *token.FileSet, files []*ast.File) []Decl {
	ix := &methodIndex{
		methods:    make(map[string]map[string]bool),
		structs:    make(map[string]*ast.StructType),
		interfaces: make(map[string]*ast.InterfaceType),
	}
	var groups []typeGroup

	for _, file := range files {
		for _, d := range file.Decls {
			switch node := d.(type) {
			case *ast.FuncDecl:
				if node.Recv == nil || len(node.Recv.List) == 0 {
					continue
				}
				name, pointer := receiverType(node.Recv.List[0].Type)
				if name == "" {
					continue
				}
				ix.declare(name, node.Name.Name, pointer)
			case *ast.GenDecl:
				if node.Tok != token.TYPE {
					continue
				}
				var g typeGroup
				for _, spec := range node.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok {
						continue
					}
					g.specs = append(g.specs, ts)
					if ts.Assign.IsValid() {
						continue
					}
					switch t := ts.Type.(type) {
					case *ast.StructType:
						ix.structs[ts.Name.Name] = t
					case *ast.InterfaceType:
						ix.interfaces[ts.Name.Name] = t
					}
				}
				groups = append(groups, g)
			}
		}
	}

	var decls []Decl
	for _, file := range files {
		pkgName := file.Name.Name
		for _, d := range file.Decls {
			switch node := d.(type) {
			case *ast.FuncDecl:
				if hasDirective(node.Doc) {
					decls = append(decls, newDecl(fset, pkgName, KindFunc, node.Name))
				}
			case *ast.GenDecl:
				annotated := hasDirective(node.Doc)
				for _, spec := range node.Specs {
					switch s := spec.(type) {
					case *ast.TypeSpec:
						if !annotated && !hasDirective(s.Doc) {
							continue
						}
						decl := newDecl(fset, pkgName, typeKind(s), s.Name)
						if decl.Kind == KindTaggedUnion {
							fillUnion(&decl, s, ix, groups)
						}
						decls = append(decls, decl)
					case *ast.ValueSpec:
						if (annotated || hasDirective(s.Doc)) && len(s.Names) > 0 {
							decls = append(decls, newDecl(fset, pkgName, KindValue, s.Names[0]))
						}
					}
				}
			}
		}
	}
	return decls
}

func newDecl(fset *token.FileSet, pkgName string, kind Kind, name *ast.Ident) Decl {
	pos := fset.Position(name.Pos())
	return Decl{
		Kind:    kind,
		Name:    name.Name,
		Package: pkgName,
		File:    pos.Filename,
		Pos:     pos,
	}
}

func typeKind(ts *ast.TypeSpec) Kind {
	if ts.Assign.IsValid() {
		return KindAlias
	}
	switch ts.Type.(type) {
	case *ast.InterfaceType:
		return KindTaggedUnion
	case *ast.StructType:
		return KindProduct
	default:
		return KindNamed
	}
}

// fillUnion records the interface's own methods and every same-package
// named type implementing the union. The seal method is the first
// unexported method of the interface.
//
// A type is a variant when its pointer method set covers every method of
// the interface; when its value method set does too, the value type is a
// variant as well. Generic variants must repeat the union's type parameter
// constraints so they can be instantiated with the union's parameters.
func fillUnion(decl *Decl, ts *ast.TypeSpec, ix *methodIndex, groups []typeGroup) {
	decl.TypeParams, decl.TypeArgs = typeParams(ts.TypeParams)
	unionConstraints := paramConstraints(ts.TypeParams)

	iface := ts.Type.(*ast.InterfaceType)
	for _, field := range iface.Methods.List {
		if _, ok := field.Type.(*ast.FuncType); !ok {
			continue
		}
		for _, name := range field.Names {
			decl.Members = append(decl.Members, Member{Kind: MemberMethod, Name: name.Name})
		}
	}

	required := ix.interfaceMethods(iface, 0)
	seal := ""
	for _, name := range required {
		if !token.IsExported(name) {
			seal = name
			break
		}
	}
	if seal == "" {
		return
	}

	for _, g := range groups {
		member := Member{Kind: MemberCase}
		for _, spec := range g.specs {
			name := spec.Name.Name
			if name == ts.Name.Name || spec.Assign.IsValid() || !ix.has(name, seal, true) {
				continue
			}
			valueOK, pointerOK := true, true
			for _, m := range required {
				valueOK = valueOK && ix.has(name, m, false)
				pointerOK = pointerOK && ix.has(name, m, true)
			}
			if !pointerOK {
				continue
			}
			args, ok := variantTypeArgs(unionConstraints, decl.TypeArgs, spec.TypeParams)
			if !ok {
				continue
			}
			member.Cases = append(member.Cases, Variant{
				Tag:             name,
				PayloadArity:    payloadArity(spec.Type),
				PointerReceiver: !valueOK,
				TypeArgs:        args,
			})
		}
		if len(member.Cases) > 0 {
			decl.Members = append(decl.Members, member)
		}
	}
}

// variantTypeArgs returns the type arguments instantiating a variant inside
// the comparison func. A non-generic variant needs none; a generic one is
// instantiated with the union's parameters when its constraints match them
// one to one. Any other variant cannot be named there.
func variantTypeArgs(unionConstraints []string, unionArgs string, list *ast.FieldList) (string, bool) {
	constraints := paramConstraints(list)
	if len(constraints) == 0 {
		return "", true
	}
	if len(constraints) != len(unionConstraints) {
		return "", false
	}
	for i := range constraints {
		if constraints[i] != unionConstraints[i] {
			return "", false
		}
	}
	return unionArgs, true
}

// paramConstraints returns the constraint of every type parameter in list.
func paramConstraints(list *ast.FieldList) []string {
	if list == nil {
		return nil
	}
	var out []string
	for _, field := range list.List {
		c := types.ExprString(field.Type)
		for range field.Names {
			out = append(out, c)
		}
	}
	return out
}

func payloadArity(expr ast.Expr) int {
	st, ok := expr.(*ast.StructType)
	if !ok {
		return 1
	}
	n := 0
	for _, field := range st.Fields.List {
		if len(field.Names) == 0 {
			n++
			continue
		}
		n += len(field.Names)
	}
	return n
}

// typeParams renders a type parameter list both as a declaration ("[K comparable, V any]")
// and as instantiation arguments ("[K, V]").
func typeParams(list *ast.FieldList) (string, string) {
	if list == nil || len(list.List) == 0 {
		return "", ""
	}
	var params, args []string
	for _, field := range list.List {
		var names []string
		for _, name := range field.Names {
			names = append(names, name.Name)
		}
		params = append(params, strings.Join(names, ", ")+" "+types.ExprString(field.Type))
		args = append(args, names...)
	}
	return "[" + strings.Join(params, ", ") + "]", "[" + strings.Join(args, ", ") + "]"
}

// receiverType returns the base type name of a method receiver and whether it is a pointer.
func receiverType(expr ast.Expr) (string, bool) {
	pointer := false
	if star, ok := expr.(*ast.StarExpr); ok {
		pointer = true
		expr = star.X
	}
	switch t := expr.(type) {
	case *ast.IndexExpr:
		expr = t.X
	case *ast.IndexListExpr:
		expr = t.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name, pointer
	}
	return "", false
}

func hasDirective(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, c := range doc.List {
		text := strings.TrimSpace(c.Text)
		if text == Directive || strings.HasPrefix(text, Directive+" ") {
			return true
		}
	}
	return false
}
