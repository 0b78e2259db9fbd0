package types

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies engine errors.
type Kind int

const (
	KindBug Kind = iota
	KindParse
	KindAssembleMiss
	KindNoVal
	KindOsCmd
	KindIo
	KindNet
	KindTpl
	KindCheck
	KindArgs
	KindDryRunNotSupported
	KindCancelled
)

var kindNames = map[Kind]string{
	KindBug:                "Bug",
	KindParse:              "Parse",
	KindAssembleMiss:       "AssembleMiss",
	KindNoVal:              "NoVal",
	KindOsCmd:              "OsCmd",
	KindIo:                 "Io",
	KindNet:                "Net",
	KindTpl:                "Tpl",
	KindCheck:              "Check",
	KindArgs:               "Args",
	KindDryRunNotSupported: "DryRunNotSupported",
	KindCancelled:          "Cancelled",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error represents an engine error of a given kind.
type Error struct {
	Kind    Kind
	Message string
	// Path is the flow path (module.flow) where the error surfaced.
	Path string
	// Action is the action name that failed, if any.
	Action string
	// Code is the exit code for OsCmd errors.
	Code int
	// Dir is the working directory of a failed command.
	Dir   string
	Cause error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		if msg == "" {
			msg = e.Cause.Error()
		} else {
			msg += ": " + e.Cause.Error()
		}
	}
	return e.Kind.String() + ": " + msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors of the same kind, so errors.Is(err, ErrNoVal) works for any NoVal error.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Cause == nil
}

// Trace returns the "at <path>/<action>" location, or empty when unknown.
func (e *Error) Trace() string {
	switch {
	case e.Path != "" && e.Action != "":
		return e.Path + "/" + e.Action
	case e.Path != "":
		return e.Path
	default:
		return e.Action
	}
}

// Sentinels per kind, for errors.Is.
var (
	ErrBug                = &Error{Kind: KindBug}
	ErrParse              = &Error{Kind: KindParse}
	ErrAssembleMiss       = &Error{Kind: KindAssembleMiss}
	ErrNoVal              = &Error{Kind: KindNoVal}
	ErrOsCmd              = &Error{Kind: KindOsCmd}
	ErrIo                 = &Error{Kind: KindIo}
	ErrNet                = &Error{Kind: KindNet}
	ErrTpl                = &Error{Kind: KindTpl}
	ErrCheck              = &Error{Kind: KindCheck}
	ErrArgs               = &Error{Kind: KindArgs}
	ErrDryRunNotSupported = &Error{Kind: KindDryRunNotSupported}
	ErrCancelled          = &Error{Kind: KindCancelled}
)

// KindOf returns the kind of err, KindBug when err is not an engine error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, ErrParse) {
		return KindParse
	}
	return KindBug
}

// WithLocation annotates the first engine error in the chain with path and action when not yet set.
func WithLocation(err error, path, action string) error {
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	if e.Path == "" {
		e.Path = path
	}
	if e.Action == "" {
		e.Action = action
	}
	return err
}

func NewMethodNotFoundError(name string) error {
	return &Error{Kind: KindArgs, Message: fmt.Sprintf("method %v not found", name)}
}

func NewInvalidInputError(in interface{}) error {
	return &Error{Kind: KindBug, Message: fmt.Sprintf("invalid input %T", in)}
}

func NewInvalidOutputError(in interface{}) error {
	return &Error{Kind: KindBug, Message: fmt.Sprintf("invalid output %T", in)}
}

func NewAssembleMissError(ref string) error {
	return &Error{Kind: KindAssembleMiss, Message: ref}
}

// NewCycleError reports a pre/post dependency cycle as an assembly miss with the cycle path.
func NewCycleError(path []string) error {
	return &Error{Kind: KindAssembleMiss, Message: "cycle " + strings.Join(path, " -> ")}
}

func NewNoValError(name string) error {
	return &Error{Kind: KindNoVal, Message: name}
}

// NewOsCmdError reports a command exit code outside of the expected set; cmd must already be masked.
func NewOsCmdError(cmd string, code int, dir string) error {
	message := fmt.Sprintf("%s exited with %d", cmd, code)
	if dir != "" {
		message += " in " + dir
	}
	return &Error{Kind: KindOsCmd, Message: message, Code: code, Dir: dir}
}

// NewParseError tags a syntax error with the Parse kind; the cause keeps its coordinates.
func NewParseError(cause error) error {
	return &Error{Kind: KindParse, Cause: cause}
}

func NewIoError(message string, cause error) error {
	return &Error{Kind: KindIo, Message: message, Cause: cause}
}

func NewNetError(message string, cause error) error {
	return &Error{Kind: KindNet, Message: message, Cause: cause}
}

func NewTplError(message string, cause error) error {
	return &Error{Kind: KindTpl, Message: message, Cause: cause}
}

func NewCheckError(message string) error {
	return &Error{Kind: KindCheck, Message: message}
}

func NewArgsError(format string, args ...interface{}) error {
	return &Error{Kind: KindArgs, Message: fmt.Sprintf(format, args...)}
}

func NewDryRunNotSupportedError(action string) error {
	return &Error{Kind: KindDryRunNotSupported, Message: action, Action: action}
}

func NewCancelledError(cause error) error {
	return &Error{Kind: KindCancelled, Message: "run cancelled", Cause: cause}
}

func NewBugError(format string, args ...interface{}) error {
	return &Error{Kind: KindBug, Message: fmt.Sprintf(format, args...)}
}
