package vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/gxl/model/value"
)

func TestSpace_Lookup(t *testing.T) {
	space := New(value.Object{"HOME": value.String("/home/gx")})
	space.Set("x", value.String("global"))

	testCases := []struct {
		description string
		name        string
		expect      string
		found       bool
	}{
		{description: "inherited", name: "home", expect: "/home/gx", found: true},
		{description: "global", name: "X", expect: "global", found: true},
		{description: "missing", name: "y", found: false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			v, ok := space.Lookup(testCase.name)
			assert.EqualValues(t, testCase.found, ok)
			if ok {
				assert.EqualValues(t, testCase.expect, v.Raw())
			}
		})
	}
}

func TestSpace_NamedScope(t *testing.T) {
	space := New(nil)
	space.Set("X", value.String("outer"))
	prev := space.Enter("inner")
	space.Set("X", value.String("inner"))
	v, _ := space.Lookup("x")
	assert.EqualValues(t, "inner", v.Raw())
	space.Leave(prev)
	v, _ = space.Lookup("x")
	assert.EqualValues(t, "outer", v.Raw())
	dict, ok := space.Named("INNER")
	assert.True(t, ok)
	assert.EqualValues(t, "inner", dict["X"].Raw())
}

func TestSpace_CloneIsolation(t *testing.T) {
	space := New(nil)
	space.Set("A", value.String("1"))
	clone := space.Clone()
	clone.Set("A", value.String("2"))
	v, _ := space.Lookup("A")
	assert.EqualValues(t, "1", v.Raw())
	space.Adopt(clone)
	v, _ = space.Lookup("A")
	assert.EqualValues(t, "2", v.Raw())
}

func TestSpace_Isolated(t *testing.T) {
	space := New(value.Object{"OS": value.String("linux")})
	space.Set("X", value.String("outer"))
	isolated := space.Isolated()
	_, ok := isolated.Lookup("X")
	assert.False(t, ok)
	v, ok := isolated.Lookup("os")
	assert.True(t, ok)
	assert.EqualValues(t, "linux", v.Raw())
}

func TestSpace_Export(t *testing.T) {
	space := New(nil)
	space.Export("main", value.Object{"ROOT": value.String("/src")})
	v, ok := space.Lookup("MAIN_ROOT")
	assert.True(t, ok)
	assert.EqualValues(t, "/src", v.Raw())
	obj, ok := space.Lookup("main")
	assert.True(t, ok)
	root, ok := obj.Field("root")
	assert.True(t, ok)
	assert.EqualValues(t, "/src", root.Raw())
	assert.EqualValues(t, "/src", space.Environ()["MAIN_ROOT"])
}
