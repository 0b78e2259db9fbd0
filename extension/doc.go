// Package extension provides the action registry used by the executor to
// resolve WFL action calls such as shell("...") or read.file(path = "...")
// to service methods, and to bind call arguments to typed method inputs.
package extension
