// Package template declares the template-engine seam used by template-backed
// renderers. The gotemplate subpackage provides the pongo2-based default.
package template
