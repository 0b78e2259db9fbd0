package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/gxl/model/ast"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/model/value"
)

func init() {
	color.NoColor = true
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestFormatError(t *testing.T) {
	located := types.WithLocation(types.NewOsCmdError("false", 1, ""), "main.build", "shell")
	testCases := []struct {
		description string
		err         error
		expect      string
	}{
		{description: "plain", err: errors.New("boom"), expect: "error: boom"},
		{description: "located", err: located, expect: "error: " + located.Error() + "\n  at main.build/shell"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			assert.EqualValues(t, testCase.expect, formatError(testCase.err))
		})
	}
}

func TestListFlows(t *testing.T) {
	usage := ast.Annotations{{Name: ast.AnnotationUsage, Args: []*ast.Arg{{Value: value.String("build the app")}, {Value: value.String("green")}}}}
	testCases := []struct {
		description string
		flows       []*ast.Flow
		expect      string
	}{
		{
			description: "usage only",
			flows:       []*ast.Flow{{Module: "main", Name: "test"}, {Module: "main", Name: "build", Annotations: usage}},
			expect:      "  main.build  build the app\n",
		},
		{
			description: "no usage",
			flows:       []*ast.Flow{{Module: "main", Name: "test"}, {Module: "lib", Name: "x"}},
			expect:      "  lib.x      \n  main.test  \n",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			buffer := &bytes.Buffer{}
			listFlows(buffer, testCase.flows)
			assert.EqualValues(t, testCase.expect, buffer.String())
		})
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "_gal"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_gal", "work.gxl"), []byte(`mod main { flow hello { echo("hello"); } }`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_gal", "broken.gxl"), []byte(`mod main { flow hello {`), 0o644))
	t.Setenv("CONF_PATH", filepath.Join(dir, "missing.toml"))
	t.Setenv("GAL_SEC_FILE_PATH", filepath.Join(dir, "sec_value.yml"))

	testCases := []struct {
		description string
		opts        *options
		flows       []string
		expect      string
		expectErr   bool
	}{
		{description: "run flow", opts: &options{conf: filepath.Join(dir, "_gal", "work.gxl")}, flows: []string{"hello"}, expect: "hello\n"},
		{description: "list", opts: &options{conf: filepath.Join(dir, "_gal", "work.gxl"), list: true}, expect: "  main.hello  \n"},
		{description: "missing flow", opts: &options{conf: filepath.Join(dir, "_gal", "work.gxl")}, flows: []string{"nope"}, expectErr: true},
		{description: "syntax error", opts: &options{conf: filepath.Join(dir, "_gal", "broken.gxl")}, flows: []string{"hello"}, expect: "error: Parse: ", expectErr: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			stdout := &bytes.Buffer{}
			err := run(context.Background(), testCase.opts, testCase.flows, testCase.flows, stdout)
			if testCase.expectErr {
				require.Error(t, err)
				assert.True(t, strings.HasPrefix(formatError(err), testCase.expect), formatError(err))
				return
			}
			require.NoError(t, err)
			assert.EqualValues(t, testCase.expect, stdout.String())
		})
	}
}
