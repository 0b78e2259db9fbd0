// Package idgen generates run identifiers; callers treat them as opaque strings.
package idgen
