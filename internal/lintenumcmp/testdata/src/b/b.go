package b

//enumcmp:generate
type Token interface {
	isToken()
}

type (
	Ident  string
	Number struct{ Value int64 }
)

func (Ident) isToken()   {}
func (*Number) isToken() {}
