package shapes

//enumcmp:generate
type Shape interface {
	isShape()
	Area() float64
}

type (
	Point  struct{}
	Circle struct{ R float64 }
)

// Rect is an axis-aligned rectangle.
type Rect struct {
	W, H float64
}

func (Point) isShape()   {}
func (*Circle) isShape() {}
func (Rect) isShape()    {}

func (Point) Area() float64     { return 0 }
func (c *Circle) Area() float64 { return 3.14159 * c.R * c.R }
func (r Rect) Area() float64    { return r.W * r.H }
