package c

//enumcmp:generate
type Token interface { // want "stale generated code for Token; run enumcmp generate"
	isToken()
}

type (
	Ident  string
	Number struct{ Value int64 }
)

// EOF was added after the generated code was written.
type EOF struct{}

func (Ident) isToken()   {}
func (*Number) isToken() {}
func (EOF) isToken()     {}

//enumcmp:generate
type Op interface { // want "stale generated code for Op; run enumcmp generate"
	isOp()
}

type Add struct{}

func (Add) isOp() {}
