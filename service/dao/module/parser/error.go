package parser

import (
	"fmt"

	"github.com/viant/gxl/model/types"
)

// Error is a WFL syntax error with source coordinates.
type Error struct {
	File     string
	Line     int
	Column   int
	Expected string
	Found    string
	// Context is the offending source line.
	Context string
}

func (e *Error) Error() string {
	location := fmt.Sprintf("%d:%d", e.Line, e.Column)
	if e.File != "" {
		location = e.File + ":" + location
	}
	msg := fmt.Sprintf("%s: expected %s, found %s", location, e.Expected, e.Found)
	if e.Context != "" {
		msg += "\n    " + e.Context
	}
	return msg
}

// Is makes errors.Is(err, types.ErrParse) hold for syntax errors.
func (e *Error) Is(target error) bool {
	return target == types.ErrParse
}
