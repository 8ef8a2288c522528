package generator

import "go/token"

// Directive marks a declaration for expansion.
const Directive = "//enumcmp:generate"

// Kind is the declaration kind of an annotated declaration.
type Kind int

// Declaration kinds recognised by the extractor.
const (
	KindOther       Kind = iota
	KindTaggedUnion      // interface type (sealed interface)
	KindProduct          // struct type
	KindNamed            // defined type over a basic, pointer, slice, map, chan or func type
	KindAlias            // type alias
	KindFunc             // function or method
	KindValue            // var or const
)

func (k Kind) String() string {
	switch k {
	case KindTaggedUnion:
		return "tagged union"
	case KindProduct:
		return "struct"
	case KindNamed:
		return "defined type"
	case KindAlias:
		return "type alias"
	case KindFunc:
		return "func"
	case KindValue:
		return "value"
	default:
		return "declaration"
	}
}

// MemberKind distinguishes case members from other members of a tagged union.
type MemberKind int

// Member kinds.
const (
	MemberCase MemberKind = iota
	MemberMethod
)

// Decl is the structural view of one annotated declaration.
type Decl struct {
	Kind    Kind
	Name    string
	Package string
	File    string
	Pos     token.Position

	// TypeParams and TypeArgs hold the source text of a generic union's
	// type parameter list, e.g. "[T any]" and "[T]".
	TypeParams string
	TypeArgs   string

	Members []Member
}

// Member is one member of a tagged union: either a case declaration
// introducing one or more variants, or a method of the interface.
type Member struct {
	Kind  MemberKind
	Name  string
	Cases []Variant
}

// Variant is a single case of a tagged union.
type Variant struct {
	Tag          string
	PayloadArity int

	// PointerReceiver is set when the seal method is declared on *Tag,
	// so only the pointer type belongs to the union.
	PointerReceiver bool
	TypeArgs        string
}

// DeclKind identifies a synthesized declaration.
type DeclKind int

// Synthesized declaration kinds.
const (
	DeclShadowType DeclKind = iota
	DeclComparison
)

// Declaration is a synthesized Go declaration ready to be spliced into a file.
type Declaration struct {
	Kind   DeclKind
	Name   string
	Source string
}

// Expansion is the outcome of expanding one annotated declaration.
type Expansion struct {
	Decl         Decl
	Variants     []Variant
	Declarations []Declaration
	Diagnostic   *Diagnostic
}

// Tags returns the variant tags of the expansion in declaration order.
func (e Expansion) Tags() []string {
	tags := make([]string, 0, len(e.Variants))
	for _, v := range e.Variants {
		tags = append(tags, v.Tag)
	}
	return tags
}
