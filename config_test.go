package gxl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	testCases := []struct {
		description string
		content     string
		missing     bool
		expect      *Config
		expectErr   bool
	}{
		{description: "missing file", missing: true, expect: &Config{TaskReport: DefaultConfig().TaskReport}},
		{
			description: "task report",
			content: `[task_report]
enabled = true
url = "http://localhost:8080/tasks"
parent_id = "build-42"
timeout = 5
`,
			expect: func() *Config {
				ret := DefaultConfig()
				ret.TaskReport.Enabled = true
				ret.TaskReport.URL = "http://localhost:8080/tasks"
				ret.TaskReport.ParentID = "build-42"
				ret.TaskReport.Timeout = 5
				return ret
			}(),
		},
		{description: "record dir", content: "[record]\ndir = \"/tmp/runs\"\n", expect: &Config{TaskReport: DefaultConfig().TaskReport, Record: RecordConfig{Dir: "/tmp/runs"}}},
		{description: "enabled without url", content: "[task_report]\nenabled = true\n", expectErr: true},
		{description: "invalid toml", content: "[task_report\n", expectErr: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			location := filepath.Join(t.TempDir(), "gxl.toml")
			if !testCase.missing {
				require.NoError(t, os.WriteFile(location, []byte(testCase.content), 0o644))
			}
			actual, err := LoadConfig(location)
			if testCase.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			actual.Source = ""
			assert.EqualValues(t, testCase.expect, actual)
		})
	}
}
