// Package synth exposes the descriptor tree produced by the synthesis engine:
// groups, sections, array-item groups, field descriptors, and activation
// placeholders. The tree is rebuilt wholesale on every data or activation
// change; consumers must never mutate it in place.
package synth
