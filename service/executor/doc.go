// Package executor runs a sequenced unit list under a variable space. It is the
// only component performing side effects: it exports env and module props,
// invokes actions through the extension registry, evaluates if/for nodes,
// substitutes @dryrun flows, drives @transaction rollbacks and records every
// step into a task.Job.
package executor
