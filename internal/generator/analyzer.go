package generator

// Analyze validates that d is a tagged union and returns its variants in
// declaration order. Any other declaration kind yields a *Diagnostic.
//
// Case members that introduce no tags are skipped, as are the interface's
// methods. Tags are not deduplicated: Go already rejects two types with the
// same name in one package.
func Analyze(d Decl) ([]Variant, error) {
	if d.Kind != KindTaggedUnion {
		return nil, requiresTaggedUnion(d)
	}

	variants := []Variant{}
	for _, m := range d.Members {
		if m.Kind != MemberCase {
			continue
		}
		variants = append(variants, m.Cases...)
	}
	return variants, nil
}
