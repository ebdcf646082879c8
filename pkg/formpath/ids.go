package formpath

import (
	"strconv"
	"strings"
)

const (
	groupIDPrefix   = "form-group-"
	sectionIDPrefix = "form-section-"
	rootGroupID     = "form-group-root"
	rootSectionID   = "form-section-root"
)

// GroupID derives the stable DOM-addressable identifier for an object group.
// Token boundaries become one hyphen, so property keys that themselves
// contain hyphens can collide with structurally distinct paths. The id format
// is fixed; callers treat ids as opaque.
func GroupID(p Path) string {
	if p.IsRoot() {
		return rootGroupID
	}
	return groupIDPrefix + hyphenate(p)
}

// SectionID derives the identifier for a title-only section.
func SectionID(p Path) string {
	if p.IsRoot() {
		return rootSectionID
	}
	return sectionIDPrefix + hyphenate(p)
}

// ItemID derives an array-item group id from its parent array group id and
// the item's current index. Identity across reorders is recomputed by index,
// never stored.
func ItemID(arrayGroupID string, index int) string {
	return arrayGroupID + "-" + strconv.Itoa(index)
}

func hyphenate(p Path) string {
	parts := make([]string, 0, len(p))
	for _, token := range p {
		if token.IsIndex() {
			parts = append(parts, strconv.Itoa(token.Index()))
			continue
		}
		parts = append(parts, token.Key())
	}
	return strings.Join(parts, "-")
}
