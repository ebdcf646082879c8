// Package tui fills a form session interactively in the terminal: it walks
// the synthesized descriptor tree, prompts per field, and drives the engine's
// command layer for optional branches and array items.
package tui
