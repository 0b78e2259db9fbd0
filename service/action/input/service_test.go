package input

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/model/value"
	"github.com/viant/gxl/model/vars"
	"github.com/viant/gxl/runtime/execution"
	"github.com/viant/gxl/service/action/shell/shelltest"
)

const samplePlist = `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>CFBundleVersion</key>
	<string>1.4.2</string>
</dict>
</plist>`

func TestService_File(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"notes.txt":  "hello\n",
		"conf.json":  `{"region":"us-east-1","replicas":3}`,
		"conf.yaml":  "image:\n  tag: v2\n",
		"vars.hcl":   "name = \"api\"\nport = 8080\nservice \"web\" {\n  public = true\n}\n",
		"info.plist": samplePlist,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	testCases := []struct {
		description string
		input       *FileInput
		expectRaw   string
		expectKind  types.Kind
		expectErr   bool
	}{
		{description: "text", input: &FileInput{Path: "notes.txt", Var: "notes"}, expectRaw: "hello\n"},
		{description: "json key", input: &FileInput{Path: "conf.json", Var: "r", Name: "region"}, expectRaw: "us-east-1"},
		{description: "json number", input: &FileInput{Path: "conf.json", Var: "r", Name: "replicas"}, expectRaw: "3"},
		{description: "yaml nested", input: &FileInput{Path: "conf.yaml", Var: "img", Name: "image"}, expectRaw: "{TAG:v2}"},
		{description: "hcl attribute", input: &FileInput{Path: "vars.hcl", Var: "port", Name: "port"}, expectRaw: "8080"},
		{description: "hcl block", input: &FileInput{Path: "vars.hcl", Var: "svc", Name: "service"}, expectRaw: "{WEB:{PUBLIC:true}}"},
		{description: "plist", input: &FileInput{Path: "info.plist", Var: "v", Name: "CFBundleVersion"}, expectRaw: "1.4.2"},
		{description: "raw", input: &FileInput{Path: "conf.json", Var: "raw", Raw: true}, expectRaw: files["conf.json"]},
		{description: "missing key", input: &FileInput{Path: "conf.json", Var: "r", Name: "zone"}, expectErr: true, expectKind: types.KindNoVal},
		{description: "missing file", input: &FileInput{Path: "absent.txt", Var: "r"}, expectErr: true, expectKind: types.KindIo},
		{description: "missing var", input: &FileInput{Path: "notes.txt"}, expectErr: true, expectKind: types.KindArgs},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			service := New(afs.New(), shelltest.New(nil))
			space := vars.New(nil)
			ctx := execution.NewContext(context.Background(), execution.NewSession(execution.WithWorkDir(dir)), space)
			err := service.file(ctx, testCase.input, &Output{})
			if testCase.expectErr {
				require.Error(t, err)
				assert.EqualValues(t, testCase.expectKind, types.KindOf(err))
				return
			}
			require.NoError(t, err)
			actual, ok := space.Lookup(testCase.input.Var)
			require.True(t, ok)
			assert.EqualValues(t, testCase.expectRaw, actual.Raw())
		})
	}
}

func TestService_Stdin(t *testing.T) {
	testCases := []struct {
		description string
		stdin       string
		input       *StdinInput
		expectRaw   string
		expectOut   interface{}
	}{
		{description: "line", stdin: "alice\nbob\n", input: &StdinInput{Var: "user"}, expectRaw: "alice", expectOut: "alice"},
		{description: "no newline", stdin: "tail", input: &StdinInput{Var: "user"}, expectRaw: "tail", expectOut: "tail"},
		{description: "secret", stdin: "p4ss\n", input: &StdinInput{Var: "pw", Secret: true}, expectRaw: "p4ss", expectOut: value.Mask},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			service := New(afs.New(), shelltest.New(nil))
			space := vars.New(nil)
			session := execution.NewSession(execution.WithStdin(strings.NewReader(testCase.stdin)))
			ctx := execution.NewContext(context.Background(), session, space)
			output := &Output{}
			require.NoError(t, service.stdin(ctx, testCase.input, output))
			actual, ok := space.Lookup(testCase.input.Var)
			require.True(t, ok)
			assert.EqualValues(t, testCase.expectRaw, actual.Raw())
			assert.EqualValues(t, testCase.input.Secret, actual.IsSecret())
			assert.EqualValues(t, testCase.expectOut, output.Value)
		})
	}
}

func TestService_Cmd(t *testing.T) {
	testCases := []struct {
		description string
		input       *CmdInput
		results     map[string]*shelltest.Result
		expectRaw   string
		expectKind  types.Kind
		expectErr   bool
	}{
		{description: "trimmed", input: &CmdInput{Cmd: "git rev-parse HEAD", Var: "sha"}, results: map[string]*shelltest.Result{"git": {Stdout: "  abc123\n"}}, expectRaw: "abc123"},
		{description: "failure", input: &CmdInput{Cmd: "false", Var: "x"}, expectErr: true, expectKind: types.KindOsCmd},
		{description: "missing var", input: &CmdInput{Cmd: "echo a"}, expectErr: true, expectKind: types.KindArgs},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			service := New(afs.New(), shelltest.New(testCase.results))
			space := vars.New(nil)
			ctx := execution.NewContext(context.Background(), execution.NewSession(), space)
			err := service.cmd(ctx, testCase.input, &Output{})
			if testCase.expectErr {
				require.Error(t, err)
				assert.EqualValues(t, testCase.expectKind, types.KindOf(err))
				return
			}
			require.NoError(t, err)
			actual, _ := space.Lookup(testCase.input.Var)
			assert.EqualValues(t, testCase.expectRaw, actual.Raw())
		})
	}
}
