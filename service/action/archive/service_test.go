package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/model/vars"
	"github.com/viant/gxl/runtime/execution"
)

func TestService_PackUnpack(t *testing.T) {
	testCases := []struct {
		description string
		file        string
		expect      Compression
	}{
		{description: "gzip", file: "out/site.tar.gz", expect: Gzip},
		{description: "tgz", file: "out/site.tgz", expect: Gzip},
		{description: "bzip2", file: "out/site.tar.bz2", expect: Bzip2},
		{description: "xz", file: "out/site.tar.xz", expect: Xz},
		{description: "plain", file: "out/site.tar", expect: None},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.MkdirAll(filepath.Join(dir, "site", "css"), 0o755))
			require.NoError(t, os.WriteFile(filepath.Join(dir, "site", "index.html"), []byte("<html/>"), 0o644))
			require.NoError(t, os.WriteFile(filepath.Join(dir, "site", "css", "a.css"), []byte("body{}"), 0o644))
			assert.EqualValues(t, testCase.expect, CompressionOf(testCase.file))

			tarService, untarService := New(afs.New())
			ctx := execution.NewContext(context.Background(), execution.NewSession(execution.WithWorkDir(dir)), vars.New(nil))
			packed := &Output{}
			require.NoError(t, tarService.pack(ctx, &PackInput{Src: "site", File: testCase.file}, packed))
			assert.Contains(t, packed.Files, "site/index.html")

			unpacked := &Output{}
			require.NoError(t, untarService.unpack(ctx, &UnpackInput{File: testCase.file, Dst: "restored"}, unpacked))
			data, err := os.ReadFile(filepath.Join(dir, "restored", "site", "css", "a.css"))
			require.NoError(t, err)
			assert.EqualValues(t, "body{}", string(data))
		})
	}
}

func TestService_RollbackRemovesArtifacts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	session := execution.NewSession(execution.WithWorkDir(dir))
	ctx := execution.NewContext(context.Background(), session, vars.New(nil))
	tx := session.Transactions.Begin("build")

	tarService, _ := New(afs.New())
	require.NoError(t, tarService.pack(ctx, &PackInput{Src: "a.txt", File: "a.tgz"}, &Output{}))
	_, err := os.Stat(filepath.Join(dir, "a.tgz"))
	require.NoError(t, err)

	assert.Empty(t, session.Transactions.Rollback(context.Background(), tx))
	_, err = os.Stat(filepath.Join(dir, "a.tgz"))
	assert.True(t, os.IsNotExist(err))
}

func TestService_Errors(t *testing.T) {
	dir := t.TempDir()
	tarService, untarService := New(afs.New())
	ctx := execution.NewContext(context.Background(), execution.NewSession(execution.WithWorkDir(dir)), vars.New(nil))

	err := tarService.pack(ctx, &PackInput{Src: "missing", File: "x.tgz"}, &Output{})
	assert.EqualValues(t, types.KindIo, types.KindOf(err))
	err = untarService.unpack(ctx, &UnpackInput{File: "missing.tgz"}, &Output{})
	assert.EqualValues(t, types.KindIo, types.KindOf(err))
	err = tarService.pack(ctx, &PackInput{Src: "a"}, &Output{})
	assert.EqualValues(t, types.KindArgs, types.KindOf(err))
}
