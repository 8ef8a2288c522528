package notunion

//enumcmp:generate
type Config struct {
	Name string
}

//enumcmp:generate
type Handler func(string) error

//enumcmp:generate
func Run() {}

//enumcmp:generate
var Default = Config{}

type Alias = Config
