package idgen

import "github.com/google/uuid"

// NewFunc generates run identifiers; tests may replace it.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new globally unique identifier.
func New() string { return NewFunc() }
