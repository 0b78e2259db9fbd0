package gxl

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/service/action/shell/shelltest"
	"github.com/viant/gxl/service/dao/record/memory"
)

type project struct {
	dir    string
	stdout *bytes.Buffer
	runner *shelltest.Runner
	srv    *Service
}

func newProject(t *testing.T, source string, secrets string, opts ...Option) *project {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "_gal"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConf), []byte(source), 0o644))
	secretFile := filepath.Join(dir, "sec_value.yml")
	if secrets != "" {
		require.NoError(t, os.WriteFile(secretFile, []byte(secrets), 0o600))
	}
	ret := &project{dir: dir, stdout: &bytes.Buffer{}, runner: shelltest.New(nil)}
	options := append([]Option{
		WithStdout(ret.stdout),
		WithRunner(ret.runner),
		WithInherited(map[string]string{"HOME": dir}),
		WithSecretFile(secretFile),
		WithConfig(DefaultConfig()),
	}, opts...)
	srv, err := New(options...)
	require.NoError(t, err)
	ret.srv = srv
	return ret
}

func (p *project) run(envs []string, flows ...string) (*Request, error) {
	request := &Request{WorkDir: p.dir, Envs: envs, Flows: flows}
	_, err := p.srv.Run(context.Background(), request)
	return request, err
}

func TestService_Run(t *testing.T) {
	testCases := []struct {
		description string
		source      string
		secrets     string
		envs        []string
		flows       []string
		dryRun      bool
		expectOut   string
		expectCmds  []string
		expectKind  types.Kind
		expectErr   bool
	}{
		{
			description: "single shell flow",
			source:      `mod main { env default; flow hello { shell("echo hi"); } }`,
			envs:        []string{"default"},
			flows:       []string{"hello"},
			expectOut:   "hi\n",
			expectCmds:  []string{"echo hi"},
		},
		{
			description: "pre post ordering",
			source: `
mod main {
    flow b { echo("B"); }
    flow c { echo("C"); }
    flow a [b] -> [c] { echo("A"); }
}`,
			flows:     []string{"a"},
			expectOut: "B\nA\nC\n",
		},
		{
			description: "assemble miss",
			source:      `mod main { flow a [main.missing] { echo("A"); } }`,
			flows:       []string{"a"},
			expectErr:   true,
			expectKind:  types.KindAssembleMiss,
		},
		{
			description: "engine variables",
			source:      `mod main { flow info { echo("${GXL_CMD_ARG}|${GXL_OS_SYS}"); } }`,
			flows:       []string{"info"},
		},
		{
			description: "unknown env",
			source:      `mod main { flow a { echo("A"); } }`,
			envs:        []string{"prod"},
			flows:       []string{"a"},
			expectErr:   true,
			expectKind:  types.KindArgs,
		},
		{
			description: "dry run is side effect free",
			source: `
mod main {
    flow a { echo("A"); shell("rm -rf build"); }
}`,
			flows:      []string{"a"},
			dryRun:     true,
			expectErr:  true,
			expectKind: types.KindDryRunNotSupported,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			p := newProject(t, testCase.source, testCase.secrets)
			request := &Request{WorkDir: p.dir, Envs: testCase.envs, Flows: testCase.flows, DryRun: testCase.dryRun}
			job, err := p.srv.Run(context.Background(), request)
			require.NotNil(t, job)
			if testCase.expectOut != "" {
				assert.EqualValues(t, testCase.expectOut, p.stdout.String())
			}
			if len(testCase.expectCmds) > 0 {
				assert.EqualValues(t, testCase.expectCmds, p.runner.Commands())
			}
			if testCase.expectErr {
				require.Error(t, err)
				assert.EqualValues(t, testCase.expectKind, types.KindOf(err))
				assert.True(t, job.Failed())
				if testCase.dryRun {
					assert.Empty(t, p.runner.Commands())
					assert.Empty(t, p.stdout.String())
				}
				return
			}
			require.NoError(t, err)
			assert.False(t, job.Failed())
		})
	}
}

func TestService_RunSecretMasking(t *testing.T) {
	source := `
mod main {
    flow show {
        echo("pass=${SEC_DB_PASS}");
        X = "${SEC_DB_PASS}";
        shell("printenv X", quiet=true);
    }
}`
	p := newProject(t, source, "db_pass: \"s3cret\"\n")
	_, err := p.run(nil, "show")
	require.NoError(t, err)
	assert.EqualValues(t, "pass=***\n", p.stdout.String())
	require.Len(t, p.runner.Calls, 1)
	assert.EqualValues(t, "s3cret", p.runner.Calls[0].Env["X"])
}

func TestService_RunRecordsShellStdout(t *testing.T) {
	records := memory.New()
	p := newProject(t, `mod main { env default; flow hello { shell("echo hi"); } }`, "", WithRecordService(records))
	request, err := p.run([]string{"default"}, "hello")
	require.NoError(t, err)
	job, err := records.Load(context.Background(), request.ID)
	require.NoError(t, err)
	actions := job.Actions()
	require.Len(t, actions, 1)
	assert.EqualValues(t, "hi\n", actions[0].Stdout)
}

func TestService_RunTransactionRollback(t *testing.T) {
	source := `
mod main {
    flow rollback { echo("rolled back"); }
    @transaction(undo=rollback)
    flow release {
        tar(src="src", file="out/release.tar.gz");
        shell("false");
    }
}`
	p := newProject(t, source, "")
	require.NoError(t, os.MkdirAll(filepath.Join(p.dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(p.dir, "src", "a.txt"), []byte("a"), 0o644))

	request := &Request{WorkDir: p.dir, Flows: []string{"release"}}
	job, err := p.srv.Run(context.Background(), request)
	require.Error(t, err)
	assert.EqualValues(t, types.KindOsCmd, types.KindOf(err))
	assert.EqualValues(t, 1, strings.Count(p.stdout.String(), "rolled back"))

	release := job.Task("main.release")
	require.NotNil(t, release)
	require.Len(t, release.Actions, 2)
	assert.False(t, release.Actions[0].Failed())
	assert.True(t, release.Actions[1].Failed())
	require.NotNil(t, job.Job("rollback"))
	_, statErr := os.Stat(filepath.Join(p.dir, "out", "release.tar.gz"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestService_SubRunIsolation(t *testing.T) {
	testCases := []struct {
		description string
		isolate     string
		expectOut   string
		expectKind  types.Kind
		expectErr   bool
	}{
		{description: "isolated", isolate: "true", expectErr: true, expectKind: types.KindNoVal},
		{description: "shared", isolate: "false", expectOut: "X=outer\n"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			source := `
mod main {
    env e;
    flow inner { echo("X=${X}"); }
    flow outer {
        X = "outer";
        run(local=".", env="e", flow="inner", isolate=` + testCase.isolate + `);
    }
}`
			p := newProject(t, source, "")
			job, err := p.srv.Run(context.Background(), &Request{WorkDir: p.dir, Flows: []string{"outer"}})
			require.NotNil(t, job)
			require.Len(t, job.Jobs, 1)
			if testCase.expectErr {
				require.Error(t, err)
				assert.EqualValues(t, testCase.expectKind, types.KindOf(err))
				assert.True(t, job.Jobs[0].Failed())
				return
			}
			require.NoError(t, err)
			assert.EqualValues(t, testCase.expectOut, p.stdout.String())
		})
	}
}

func TestService_Flows(t *testing.T) {
	p := newProject(t, `mod main { @usage("build it", "green") flow build { echo("b"); } flow test { echo("t"); } }`, "")
	flows, err := p.srv.Flows(context.Background(), filepath.Join(p.dir, DefaultConf))
	require.NoError(t, err)
	require.Len(t, flows, 2)
	desp, color, ok := flows[0].Usage()
	assert.True(t, ok)
	assert.EqualValues(t, "build it", desp)
	assert.EqualValues(t, "green", color)
}

func TestProjectRoot(t *testing.T) {
	assert.EqualValues(t, "/work/app", ProjectRoot("/work/app/_gal/work.gxl"))
	assert.EqualValues(t, "/work/app", ProjectRoot("/work/app/build.gxl"))
}
