// Package logger builds the zap logger used across the engine, with per logger name level rules.
package logger
