package shapes

// Label is not part of Shape: it has no isShape method.
type Label string

// Tri is sealed but lacks Area, so it does not implement Shape.
type Tri struct {
	A, B, C Point
	Name    string
}

func (Tri) isShape() {}
