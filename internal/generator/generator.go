package generator

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options configures a Generator.
type Options struct {
	Naming      Naming
	FileSuffix  string        `validate:"required,endswith=.go"`
	Excludes    []string      `validate:"dive,required"`
	Concurrency int           `validate:"gte=0,lte=256"`
	Debounce    time.Duration `validate:"gte=0"`

	// DryRun renders files into the report instead of writing them.
	DryRun bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Naming:     DefaultNaming,
		FileSuffix: DefaultFileSuffix,
		Debounce:   100 * time.Millisecond,
	}
}

var (
	validatorInstance *validator.Validate
	validatorOnce     sync.Once
)

func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("identprefix", func(fl validator.FieldLevel) bool {
			return token.IsIdentifier(fl.Field().String() + "T")
		})
		_ = v.RegisterValidation("identsuffix", func(fl validator.FieldLevel) bool {
			return token.IsIdentifier("T" + fl.Field().String())
		})
		validatorInstance = v
	})
	return validatorInstance
}

// Validate checks the options, including that the naming scheme produces
// valid Go identifiers.
func (o Options) Validate() error {
	if err := getValidator().Struct(o); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	if err := ValidateExcludes(o.Excludes); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

// GeneratedFile is a rendered file, filled in dry runs.
type GeneratedFile struct {
	Path    string
	Content []byte
}

// Report summarizes one generation run.
type Report struct {
	Packages    int
	Expansions  []Expansion
	Written     []string
	Removed     []string
	Files       []GeneratedFile
	Diagnostics []*Diagnostic
}

// Err joins the diagnostics of the report, or returns nil when there are none.
func (r *Report) Err() error {
	if r == nil || len(r.Diagnostics) == 0 {
		return nil
	}
	errs := make([]error, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		errs[i] = d
	}
	return errors.Join(errs...)
}

func (r *Report) merge(o *Report) {
	r.Packages += o.Packages
	r.Expansions = append(r.Expansions, o.Expansions...)
	r.Written = append(r.Written, o.Written...)
	r.Removed = append(r.Removed, o.Removed...)
	r.Files = append(r.Files, o.Files...)
	r.Diagnostics = append(r.Diagnostics, o.Diagnostics...)
}

// Generator runs the extract, analyze, emit and write pipeline over Go packages.
type Generator struct {
	opts      Options
	extractor *Extractor
	emitter   *Emitter
	files     *FileGenerator
	logger    *zap.Logger
}

// New creates a new generator. A nil logger disables logging.
func New(opts Options, logger *zap.Logger) (*Generator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		opts:      opts,
		extractor: NewExtractor(opts.FileSuffix, opts.Excludes),
		emitter:   NewEmitter(opts.Naming),
		files:     NewFileGenerator(opts.FileSuffix),
		logger:    logger,
	}, nil
}

// Expand runs one expansion: analysis followed by emission.
func (g *Generator) Expand(d Decl) (Expansion, error) {
	exp := Expansion{Decl: d}

	variants, err := Analyze(d)
	if err != nil {
		var diag *Diagnostic
		if errors.As(err, &diag) {
			exp.Diagnostic = diag
			return exp, nil
		}
		return exp, err
	}
	exp.Variants = variants

	decls, err := g.emitter.Emit(d, variants)
	if err != nil {
		return exp, err
	}
	exp.Declarations = decls
	return exp, nil
}

type runMode int

const (
	modeInspect runMode = iota
	modeRender
	modeWrite
)

// Inspect expands every annotated declaration under roots without rendering
// or writing anything.
func (g *Generator) Inspect(ctx context.Context, roots []string) (*Report, error) {
	return g.run(ctx, roots, modeInspect)
}

// GenerateDirs expands every annotated declaration under roots and writes
// the colocated generated files. Packages are processed concurrently; a
// package with any diagnostic gets no output.
func (g *Generator) GenerateDirs(ctx context.Context, roots []string) (*Report, error) {
	if g.opts.DryRun {
		return g.run(ctx, roots, modeRender)
	}
	return g.run(ctx, roots, modeWrite)
}

func (g *Generator) run(ctx context.Context, roots []string, mode runMode) (*Report, error) {
	dirs, err := g.extractor.Dirs(roots)
	if err != nil {
		return nil, err
	}

	limit := g.opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	reports := make([]*Report, len(dirs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, dir := range dirs {
		i, dir := i, dir
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			r, err := g.processDir(dir, mode)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	report := &Report{}
	for _, r := range reports {
		report.merge(r)
	}
	sort.SliceStable(report.Diagnostics, func(i, j int) bool {
		a, b := report.Diagnostics[i].Pos, report.Diagnostics[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		return a.Offset < b.Offset
	})
	return report, nil
}

func (g *Generator) processDir(dir string, mode runMode) (*Report, error) {
	pkgs, err := g.extractor.ParseDirectory(dir)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, pkg := range pkgs {
		r, err := g.processPackage(pkg, mode)
		if err != nil {
			return nil, fmt.Errorf("package %s in %s: %w", pkg.Name, dir, err)
		}
		report.merge(r)
	}
	return report, nil
}

func (g *Generator) processPackage(pkg Package, mode runMode) (*Report, error) {
	report := &Report{Packages: 1}
	g.logger.Debug("Parsed package",
		zap.String("dir", pkg.Dir),
		zap.String("package", pkg.Name),
		zap.Int("annotated", len(pkg.Decls)))

	byFile := make(map[string][]Expansion)
	for _, d := range pkg.Decls {
		exp, err := g.Expand(d)
		if err != nil {
			return nil, err
		}
		report.Expansions = append(report.Expansions, exp)
		if exp.Diagnostic != nil {
			report.Diagnostics = append(report.Diagnostics, exp.Diagnostic)
			continue
		}
		byFile[d.File] = append(byFile[d.File], exp)
	}

	if mode == modeInspect {
		return report, nil
	}
	if len(report.Diagnostics) > 0 {
		g.logger.Debug("Skipping package with diagnostics",
			zap.String("package", pkg.Name),
			zap.Int("diagnostics", len(report.Diagnostics)))
		return report, nil
	}

	for _, file := range pkg.Files {
		source := g.extractor.FileSet().Position(file.Package).Filename
		expansions := byFile[source]

		if mode == modeRender {
			if !hasDeclarations(expansions) {
				continue
			}
			content, err := g.files.Render(pkg.Name, expansions)
			if err != nil {
				return nil, err
			}
			report.Files = append(report.Files, GeneratedFile{Path: g.files.OutputPath(source), Content: content})
			continue
		}

		path, err := g.files.WriteFile(source, pkg.Name, expansions)
		if err != nil {
			return nil, err
		}
		if path == "" {
			continue
		}
		if hasDeclarations(expansions) {
			report.Written = append(report.Written, path)
			g.logger.Info("Generated file",
				zap.String("path", filepath.ToSlash(path)),
				zap.Strings("unions", unionNames(expansions)))
		} else {
			report.Removed = append(report.Removed, path)
			g.logger.Info("Removed stale file", zap.String("path", filepath.ToSlash(path)))
		}
	}
	return report, nil
}

func unionNames(expansions []Expansion) []string {
	var names []string
	for _, exp := range expansions {
		if len(exp.Declarations) > 0 {
			names = append(names, exp.Decl.Name)
		}
	}
	return names
}
