// Package progress keeps aggregated run unit counters for a single run.
package progress
