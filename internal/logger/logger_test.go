package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFilter(t *testing.T) {
	testCases := []struct {
		description string
		debug       int
		rules       string
		logger      string
		level       zapcore.Level
		expect      bool
	}{
		{description: "default error", debug: 0, logger: "executor", level: zapcore.WarnLevel, expect: false},
		{description: "debug verbosity", debug: 3, logger: "executor", level: zapcore.DebugLevel, expect: true},
		{description: "bare level", debug: 0, rules: "info", logger: "executor", level: zapcore.InfoLevel, expect: true},
		{description: "named rule", debug: 0, rules: "shell=debug", logger: "shell", level: zapcore.DebugLevel, expect: true},
		{description: "named rule child", debug: 0, rules: "shell=debug", logger: "shell.runner", level: zapcore.DebugLevel, expect: true},
		{description: "other logger", debug: 0, rules: "shell=debug", logger: "executor", level: zapcore.DebugLevel, expect: false},
		{description: "longest rule wins", debug: 3, rules: "gxl=error,gxl.shell=info", logger: "gxl.shell", level: zapcore.InfoLevel, expect: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			f, err := newFilter(Level(testCase.debug), testCase.rules)
			require.NoError(t, err)
			core, logs := observer.New(zapcore.DebugLevel)
			logger := zap.New(&filterCore{Core: core, filter: f}).Named(testCase.logger)
			logger.Check(testCase.level, "msg").Write()
			assert.EqualValues(t, testCase.expect, logs.Len() == 1)
		})
	}
}

func TestNewFilter_Invalid(t *testing.T) {
	_, err := newFilter(zapcore.InfoLevel, "shell=loud")
	assert.Error(t, err)
}
