// Package policy provides declarative per-action rules; currently the retry
// strategy applied by actions that talk to the network.
package policy
