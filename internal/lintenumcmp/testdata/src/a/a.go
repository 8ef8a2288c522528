package a

//enumcmp:generate
type Shape interface { // want "missing generated code for Shape; run enumcmp generate"
	isShape()
}

type Circle struct{ R float64 }

func (Circle) isShape() {}

//enumcmp:generate
type Empty interface {
	isEmpty()
}

//enumcmp:generate
type Config struct { // want "can only be applied to a tagged union .sealed interface., not struct Config"
	Name string
}

//enumcmp:generate
type Handler func() // want "not defined type Handler"

//enumcmp:generate
type Alias = Shape // want "not type alias Alias"

//enumcmp:generate
func Run() {} // want "not func Run"

//enumcmp:generate
var Default = Config{} // want "not value Default"
