package types

// Service is an action service: a named group of methods callable from WFL as service.method(...).
type Service interface {
	Name() string
	Methods() Signatures
	Method(name string) (Executable, error)
}

// DefaultMethoder is implemented by services callable without a method name, e.g. shell("...").
type DefaultMethoder interface {
	DefaultMethod() string
}
