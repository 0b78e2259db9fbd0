// Package tracing wraps OpenTelemetry so the executor can emit one span per
// run unit and per action. Without Init the global no-op provider is used.
package tracing
