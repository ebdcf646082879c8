// Package engine hosts an editing session: it owns the working data
// instance, the activation set, and the synthesized descriptor tree, and
// exposes the command layer that mutates data synchronously and coalesces the
// resulting rebuilds.
package engine
