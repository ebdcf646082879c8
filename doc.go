// Package formedit turns a JSON Schema plus a data instance into an
// addressable, validated, navigable editing session: nested objects become
// groups and sections, arrays-of-objects become reorderable item lists,
// optional branches stay hidden until activated, and every mutation flows
// through a command layer that coalesces rebuilds of the derived structures.
//
// The root package is a thin facade; the moving parts live in pkg/jsonschema
// (normalization), pkg/formpath (structural addressing), pkg/formdata (the
// data instance), pkg/synth (descriptor synthesis), pkg/engine (commands and
// rebuild scheduling), pkg/validation, and pkg/navigation.
package formedit
