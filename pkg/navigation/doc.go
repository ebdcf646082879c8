// Package navigation mirrors the synthesized descriptor tree into a nested
// outline, tracks the active group via explicit jumps and scroll inference,
// derives breadcrumbs from the active structural path, and maps drag gestures
// between outline items onto array reorder commands.
package navigation
