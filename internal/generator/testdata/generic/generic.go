package generic

//enumcmp:generate
type Result[T any] interface {
	isResult()
}

// Ok names its parameter differently; it is instantiated as Ok[T].
type Ok[V any] struct {
	Value V
}

type Err[T any] struct {
	Err error
}

// None belongs to every instantiation of Result.
type None struct{}

// Pair cannot be instantiated from Result's single parameter.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Num constrains its parameter differently from Result.
type Num[N int | float64] struct {
	N N
}

func (Ok[V]) isResult()      {}
func (*Err[T]) isResult()    {}
func (None) isResult()       {}
func (Pair[A, B]) isResult() {}
func (Num[N]) isResult()     {}
