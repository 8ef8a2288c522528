package empty

//enumcmp:generate
type Empty interface {
	isEmpty()
}

//enumcmp:generate
type Open interface {
	String() string
}
