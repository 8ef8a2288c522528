package shapes

// Square implements Shape only through its pointer: Area needs *Square.
type Square struct {
	Side float64
}

func (Square) isShape()         {}
func (s *Square) Area() float64 { return s.Side * s.Side }

// Framed embeds *Circle, so both Framed and *Framed carry the promoted methods.
type Framed struct {
	*Circle
	Width float64
}

// Boxed embeds Circle by value; only *Boxed gets the pointer methods of Circle.
type Boxed struct {
	Circle
}
