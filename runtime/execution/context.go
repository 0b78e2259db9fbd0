package execution

import (
	"context"
	"reflect"

	"github.com/viant/gxl/model/task"
	"github.com/viant/gxl/model/value"
	"github.com/viant/gxl/model/vars"
)

// Context carries the run session and the variable space handed to an action.
type Context struct {
	context.Context
	session *Session
	vars    *vars.Space
	action  *task.Action
	args    value.Object
	source  value.Object
}

var SessionKey = KeyOf[*Session]()
var VarsKey = KeyOf[*vars.Space]()
var ActionKey = KeyOf[*task.Action]()
var ContextKey = KeyOf[*Context]()
var ArgsKey = KeyOf[value.Object]()

// WithVars returns a context whose actions observe space.
func (c *Context) WithVars(space *vars.Space) *Context {
	clone := *c
	clone.vars = space
	return &clone
}

// WithAction returns a context recording into action.
func (c *Context) WithAction(action *task.Action) *Context {
	clone := *c
	clone.action = action
	return &clone
}

// WithArgs returns a context exposing the expanded call arguments.
func (c *Context) WithArgs(args value.Object) *Context {
	clone := *c
	clone.args = args
	return &clone
}

// WithSource returns a context exposing the call arguments before expansion.
func (c *Context) WithSource(source value.Object) *Context {
	clone := *c
	clone.source = source
	return &clone
}

// WithContext rebinds the parent context.
func (c *Context) WithContext(ctx context.Context) *Context {
	clone := *c
	clone.Context = ctx
	return &clone
}

func (c *Context) Session() *Session { return c.session }

func (c *Context) Vars() *vars.Space { return c.vars }

func (c *Context) Value(key any) any {
	switch key {
	case SessionKey:
		return c.session
	case VarsKey:
		return c.vars
	case ActionKey:
		return c.action
	case ContextKey:
		return c
	case ArgsKey:
		return c.args
	}
	return c.Context.Value(key)
}

// Display returns the masked rendering of a call argument, falling back to fallback.
func Display(ctx context.Context, name, fallback string) string {
	if args := ContextValue[value.Object](ctx); args != nil {
		if v, ok := args.Get(name); ok {
			return v.Display()
		}
	}
	return fallback
}

// Source returns a call argument as written in the flow, before ${} expansion.
func Source(ctx context.Context, name string) (value.Value, bool) {
	c := ContextValue[*Context](ctx)
	if c == nil || c.source == nil {
		return value.Value{}, false
	}
	return c.source.Get(name)
}

// Secret reports whether a call argument carries a secret.
func Secret(ctx context.Context, name string) bool {
	if args := ContextValue[value.Object](ctx); args != nil {
		if v, ok := args.Get(name); ok {
			return v.IsSecret()
		}
	}
	return false
}

// ContextValue returns the value of the provided type from the context
func ContextValue[T any](ctx context.Context) T {
	key := KeyOf[T]()
	if value := ctx.Value(key); value != nil {
		return value.(T)
	}
	var t T
	return t
}

// KeyOf returns the reflect.Type of the provided type
func KeyOf[T any]() reflect.Type {
	var a T
	return reflect.TypeOf(a)
}

// NewContext creates an execution context for session and space.
func NewContext(ctx context.Context, session *Session, space *vars.Space) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Context{Context: ctx, session: session, vars: space}
}

// SessionOf returns the run session of an action context.
func SessionOf(ctx context.Context) *Session {
	return ContextValue[*Session](ctx)
}

// VarsOf returns the variable space of an action context.
func VarsOf(ctx context.Context) *vars.Space {
	return ContextValue[*vars.Space](ctx)
}
