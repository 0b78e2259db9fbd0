package sequencer

import (
	"strings"

	"github.com/viant/gxl/model/ast"
)

// Role identifies how the executor runs a unit.
type Role int

const (
	// RoleSetup exports env props.
	RoleSetup Role = iota
	// RoleModProp exports module props.
	RoleModProp
	// RoleFlow runs a flow body.
	RoleFlow
)

func (r Role) String() string {
	switch r {
	case RoleSetup:
		return "setup"
	case RoleModProp:
		return "modprop"
	}
	return "flow"
}

// Stage records why a flow unit was emitted.
type Stage string

const (
	StageEntry Stage = "entry"
	StagePre   Stage = "pre"
	StageMain  Stage = "main"
	StagePost  Stage = "post"
	StageExit  Stage = "exit"
)

// Unit is a linearized, executable item.
type Unit struct {
	Role   Role
	Stage  Stage
	Module *ast.Module
	Env    *ast.Env
	Flow   *ast.Flow
}

// Key identifies a unit for deduplication.
func (u *Unit) Key() string {
	return strings.ToUpper(u.Role.String() + ":" + u.Name())
}

// Name returns the env, module or flow path.
func (u *Unit) Name() string {
	switch u.Role {
	case RoleSetup:
		return u.Env.Path()
	case RoleModProp:
		return u.Module.Name
	}
	return u.Flow.Path()
}

// Props returns exported props of setup and modprop units.
func (u *Unit) Props() []*ast.Var {
	switch u.Role {
	case RoleSetup:
		return u.Env.Props
	case RoleModProp:
		return u.Module.Props
	}
	return nil
}

// Prefix returns the export prefix: the owning module name upper-cased.
func (u *Unit) Prefix() string {
	if u.Role == RoleSetup {
		return strings.ToUpper(u.Env.Module)
	}
	return strings.ToUpper(u.Module.Name)
}

func (u *Unit) String() string {
	if u.Role == RoleFlow {
		return string(u.Stage) + ":" + u.Name()
	}
	return u.Role.String() + ":" + u.Name()
}
