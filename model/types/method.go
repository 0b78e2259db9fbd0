package types

import (
	"context"
	"reflect"
)

type Signatures []Signature

func (s Signatures) Lookup(name string) *Signature {
	for i := range s {
		sig := &s[i]
		if sig.Name == name {
			return sig
		}
	}
	return nil
}

// Signature	method signature
type Signature struct {
	Name        string
	Description string
	Input       reflect.Type
	Output      reflect.Type
	// Default names the input field that receives a positional first argument.
	Default string
	// Effect marks methods with side effects outside of the variable space; those are refused in dry-run.
	Effect bool
}

// Executable is a function that can be executed
type Executable func(context context.Context, input, output interface{}) error
