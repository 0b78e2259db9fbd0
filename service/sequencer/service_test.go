package sequencer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/gxl/model/ast"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/service/assembler"
	"github.com/viant/gxl/service/dao/module/parser"
)

func assemble(t *testing.T, source string) *ast.Space {
	t.Helper()
	file, err := parser.Parse("work.gxl", []byte(source))
	require.NoError(t, err)
	space, err := assembler.New().Assemble(file)
	require.NoError(t, err)
	return space
}

func names(units []*Unit) []string {
	ret := make([]string, len(units))
	for i, unit := range units {
		ret[i] = unit.String()
	}
	return ret
}

func TestService_Sequence(t *testing.T) {
	testCases := []struct {
		description string
		source      string
		envs        []string
		flows       []string
		expect      []string
	}{
		{
			description: "entry props pre main post exit",
			source: `mod main {
                entry e; exit x;
                flow e; flow x; flow a [e]; flow b [a]; flow c [b];
                flow f [a, b] -> [c] { echo("f"); }
            }`,
			flows:  []string{"f"},
			expect: []string{"entry:main.e", "modprop:main", "pre:main.a", "pre:main.b", "main:main.f", "post:main.c", "exit:main.x"},
		},
		{
			description: "split declaration",
			source: `mod main {
                flow b { echo("B"); } flow c { echo("C"); }
                flow a [b]; flow a -> [c] { echo("A"); }
            }`,
			flows:  []string{"a"},
			expect: []string{"modprop:main", "pre:main.b", "main:main.a", "post:main.c"},
		},
		{
			description: "env lookup order",
			source: `mod envs { env dev { a = 1; } env prod { a = 2; } }
                     mod main { env dev { a = 3; } flow run; }`,
			envs:   []string{"dev", "prod", "envs.dev"},
			flows:  []string{"run"},
			expect: []string{"setup:main.dev", "setup:envs.prod", "setup:envs.dev", "modprop:main", "main:main.run"},
		},
		{
			description: "pre in other module exports its props",
			source: `mod os { arch = "x"; flow info; }
                     mod main { flow run [os.info]; }`,
			flows:  []string{"main.run"},
			expect: []string{"modprop:main", "modprop:os", "pre:os.info", "main:main.run"},
		},
		{
			description: "multiple targets dedup",
			source:      `mod main { entry e; flow e; flow a [e]; flow b [e]; }`,
			flows:       []string{"a", "b"},
			expect:      []string{"entry:main.e", "modprop:main", "main:main.a", "main:main.b"},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			units, err := New().Sequence(assemble(t, testCase.source), testCase.envs, testCase.flows...)
			require.NoError(t, err)
			assert.EqualValues(t, testCase.expect, names(units))
		})
	}
}

func TestService_SequenceErrors(t *testing.T) {
	testCases := []struct {
		description string
		source      string
		envs        []string
		flows       []string
		kind        types.Kind
		contains    string
	}{
		{description: "pre cycle", source: `mod main { flow a [b]; flow b [c]; flow c [a]; }`, flows: []string{"a"}, kind: types.KindAssembleMiss, contains: "main.a -> main.b -> main.c -> main.a"},
		{description: "self", source: `mod main { flow a [a]; }`, flows: []string{"a"}, kind: types.KindAssembleMiss, contains: "cycle"},
		{description: "post cycle", source: `mod main { flow a -> [b]; flow b -> [a]; }`, flows: []string{"a"}, kind: types.KindAssembleMiss, contains: "cycle"},
		{description: "unknown flow", source: `mod main { flow a; }`, flows: []string{"zz"}, kind: types.KindAssembleMiss, contains: "main.zz"},
		{description: "unknown env", source: `mod main { flow a; }`, envs: []string{"qa"}, flows: []string{"a"}, kind: types.KindArgs, contains: "env qa not found"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			_, err := New().Sequence(assemble(t, testCase.source), testCase.envs, testCase.flows...)
			require.Error(t, err)
			assert.EqualValues(t, testCase.kind, types.KindOf(err))
			assert.Contains(t, err.Error(), testCase.contains)
		})
	}
}

func TestUnit_Prefix(t *testing.T) {
	space := assemble(t, `mod envs { env dev { a = 1; } } mod main { flow a; }`)
	units, err := New().Sequence(space, []string{"dev"}, "a")
	require.NoError(t, err)
	assert.EqualValues(t, "ENVS", units[0].Prefix())
	assert.EqualValues(t, "MAIN", units[1].Prefix())
	assert.Len(t, units[0].Props(), 1)
}
