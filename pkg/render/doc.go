// Package render defines the renderer contract and registry: a renderer
// turns an engine snapshot (descriptor tree, data, errors, outline) into a
// byte representation for a given output surface.
package render
