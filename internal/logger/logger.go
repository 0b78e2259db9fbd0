package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config contains configuration for the logger
type Config struct {
	// Debug is the verbosity 0..3: error, warn, info, debug.
	Debug int
	// Rules is a comma separated list of level or name=level entries, e.g. "info,shell=debug".
	Rules string
	// Format is "json" or "human"
	Format string
	// File is an optional extra output path
	File string
}

// DefaultConfig returns a default configuration
func DefaultConfig() Config {
	return Config{Debug: 1, Format: "human"}
}

// Level maps a debug verbosity to a zap level.
func Level(debug int) zapcore.Level {
	switch {
	case debug <= 0:
		return zapcore.ErrorLevel
	case debug == 1:
		return zapcore.WarnLevel
	case debug == 2:
		return zapcore.InfoLevel
	}
	return zapcore.DebugLevel
}

// New builds a logger writing to stderr whose level is chosen per logger name.
func New(config Config) (*zap.SugaredLogger, error) {
	filter, err := newFilter(Level(config.Debug), config.Rules)
	if err != nil {
		return nil, err
	}
	var zapConfig zap.Config
	if config.Format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapConfig.EncoderConfig.StacktraceKey = ""
	}
	zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	zapConfig.OutputPaths = []string{"stderr"}
	if config.File != "" {
		zapConfig.OutputPaths = append(zapConfig.OutputPaths, config.File)
	}
	zapConfig.DisableCaller = true
	logger, err := zapConfig.Build(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return &filterCore{Core: core, filter: filter}
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Sugar(), nil
}

// Named returns a child logger, tolerating nil.
func Named(logger *zap.SugaredLogger, name string) *zap.SugaredLogger {
	if logger == nil {
		return zap.NewNop().Sugar()
	}
	return logger.Named(name)
}

type rule struct {
	name  string
	level zapcore.Level
}

type filter struct {
	level zapcore.Level
	rules []rule
}

// newFilter parses rules; a bare level overrides the default, name=level applies to a logger and its children.
func newFilter(level zapcore.Level, spec string) (*filter, error) {
	ret := &filter{level: level}
	for _, item := range strings.Split(spec, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, levelText, ok := strings.Cut(item, "=")
		if !ok {
			name, levelText = "", item
		}
		var parsed zapcore.Level
		if err := parsed.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(levelText)))); err != nil {
			return nil, fmt.Errorf("invalid log rule %q: %w", item, err)
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			ret.level = parsed
			continue
		}
		ret.rules = append(ret.rules, rule{name: name, level: parsed})
	}
	sort.SliceStable(ret.rules, func(i, j int) bool { return len(ret.rules[i].name) > len(ret.rules[j].name) })
	return ret, nil
}

func (f *filter) threshold(name string) zapcore.Level {
	name = strings.ToLower(name)
	for _, r := range f.rules {
		if name == r.name || strings.HasPrefix(name, r.name+".") {
			return r.level
		}
	}
	return f.level
}

func (f *filter) min() zapcore.Level {
	ret := f.level
	for _, r := range f.rules {
		if r.level < ret {
			ret = r.level
		}
	}
	return ret
}

type filterCore struct {
	zapcore.Core
	filter *filter
}

func (c *filterCore) Enabled(level zapcore.Level) bool {
	return level >= c.filter.min() && c.Core.Enabled(level)
}

func (c *filterCore) With(fields []zapcore.Field) zapcore.Core {
	return &filterCore{Core: c.Core.With(fields), filter: c.filter}
}

func (c *filterCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if entry.Level < c.filter.threshold(entry.LoggerName) {
		return checked
	}
	return c.Core.Check(entry, checked)
}
