// Package htmlform renders an engine snapshot into a standalone HTML
// document: the form body with inline validation chrome, a navigation
// outline, and breadcrumbs. Templates are pongo2 and can be overridden
// per-bundle or per-file.
package htmlform
