package dao

// Parameter filters List results by a named attribute.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter creates a filter; several values match any of them.
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}
