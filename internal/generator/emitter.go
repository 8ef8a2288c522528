package generator

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Naming controls the identifiers of synthesized declarations.
type Naming struct {
	// Prefix is prepended to the union name to form the shadow type name.
	Prefix string `validate:"required,identprefix"`
	// FuncSuffix is appended to the shadow type name to form the comparison func name.
	FuncSuffix string `validate:"required,identsuffix"`
}

// DefaultNaming reserves the underscore prefix, which user code rarely uses
// for exported-looking type names.
var DefaultNaming = Naming{Prefix: "_", FuncSuffix: "Is"}

// ShadowName returns the shadow tag type name for union.
func (n Naming) ShadowName(union string) string {
	return n.Prefix + union
}

// FuncName returns the comparison func name for union.
func (n Naming) FuncName(union string) string {
	return n.ShadowName(union) + n.FuncSuffix
}

// ConstName returns the shadow constant for tag.
func (n Naming) ConstName(union, tag string) string {
	return n.ShadowName(union) + "_" + tag
}

// Emitter synthesizes the shadow tag type and comparison func of a tagged union.
type Emitter struct {
	naming Naming
}

// NewEmitter creates a new emitter. Empty naming fields fall back to DefaultNaming.
func NewEmitter(naming Naming) *Emitter {
	if naming.Prefix == "" {
		naming.Prefix = DefaultNaming.Prefix
	}
	if naming.FuncSuffix == "" {
		naming.FuncSuffix = DefaultNaming.FuncSuffix
	}
	return &Emitter{naming: naming}
}

// Naming returns the naming scheme used by the emitter.
func (e *Emitter) Naming() Naming {
	return e.naming
}

const shadowTemplate = `// {{.Shadow}} enumerates the variants of {{.Union}} without their payloads.
type {{.Shadow}} int

const (
{{- range $i, $v := .Variants}}
	{{$v.Const}}{{if eq $i 0}} {{$.Shadow}} = iota + 1{{end}}
{{- end}}
)`

const comparisonTemplate = `// {{.Func}} reports whether v holds the {{.Union}} variant named by tag.
func {{.Func}}{{.TypeParams}}(v {{.Union}}{{.TypeArgs}}, tag {{.Shadow}}) bool {
	switch v.(type) {
{{- range .Variants}}
	case {{.CaseTypes}}:
		return tag == {{.Const}}
{{- end}}
	default:
		return false
	}
}`

type templateVariant struct {
	Const     string
	CaseTypes string
}

type templateData struct {
	Union      string
	Shadow     string
	Func       string
	TypeParams string
	TypeArgs   string
	Variants   []templateVariant
}

// Emit returns the shadow type and comparison declarations for d, in that
// order, or nothing when variants is empty.
func (e *Emitter) Emit(d Decl, variants []Variant) ([]Declaration, error) {
	if len(variants) == 0 {
		return nil, nil
	}

	data := templateData{
		Union:      d.Name,
		Shadow:     e.naming.ShadowName(d.Name),
		Func:       e.naming.FuncName(d.Name),
		TypeParams: d.TypeParams,
		TypeArgs:   d.TypeArgs,
		Variants:   make([]templateVariant, len(variants)),
	}
	for i, v := range variants {
		data.Variants[i] = templateVariant{
			Const:     e.naming.ConstName(d.Name, v.Tag),
			CaseTypes: caseTypes(v),
		}
	}

	shadow, err := execute("shadow", shadowTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("failed to emit shadow type for %s: %w", d.Name, err)
	}
	comparison, err := execute("comparison", comparisonTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("failed to emit comparison for %s: %w", d.Name, err)
	}

	return []Declaration{
		{Kind: DeclShadowType, Name: data.Shadow, Source: shadow},
		{Kind: DeclComparison, Name: data.Func, Source: comparison},
	}, nil
}

// caseTypes lists the dynamic types a type switch must match for v.
func caseTypes(v Variant) string {
	typ := v.Tag + v.TypeArgs
	if v.PointerReceiver {
		return "*" + typ
	}
	return strings.Join([]string{typ, "*" + typ}, ", ")
}

func execute(name, text string, data templateData) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
