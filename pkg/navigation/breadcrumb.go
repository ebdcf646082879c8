package navigation

import (
	"strconv"

	"github.com/goliatone/go-formedit/pkg/formpath"
	"github.com/goliatone/go-formedit/pkg/jsonschema"
	"github.com/goliatone/go-formedit/pkg/schema"
	"github.com/goliatone/go-formedit/pkg/synth"
)

// Crumb is one clickable breadcrumb segment.
type Crumb struct {
	Label   string
	Path    formpath.Path
	GroupID string
}

// Breadcrumbs derives the crumb trail for a structural path from the schema
// tree alone. Key tokens emit one crumb labeled from the schema title (or the
// labeler fallback); an array-item token emits the item's ordinal crumb right
// after the array's own crumb, so each item contributes two crumbs total.
func Breadcrumbs(norm *jsonschema.Normalizer, root schema.Node, path formpath.Path, labeler func(string) string) []Crumb {
	if labeler == nil {
		labeler = synth.DefaultLabeler
	}
	node := root
	if norm != nil {
		node = norm.Deref(node)
	}
	prefix := formpath.Root()
	lastLabel := ""
	crumbs := make([]Crumb, 0, len(path))
	for _, token := range path {
		if !token.IsIndex() {
			key := token.Key()
			child, _ := node.Property(key)
			if norm != nil {
				child = norm.Deref(child)
			}
			label := child.Title
			if label == "" {
				label = labeler(key)
			}
			prefix = prefix.Child(key)
			crumbs = append(crumbs, Crumb{
				Label:   label,
				Path:    prefix,
				GroupID: formpath.GroupID(prefix),
			})
			lastLabel = label
			node = child
			continue
		}
		index := token.Index()
		prefix = prefix.Item(index)
		crumbs = append(crumbs, Crumb{
			Label:   lastLabel + " " + strconv.Itoa(index+1),
			Path:    prefix,
			GroupID: formpath.GroupID(prefix),
		})
		if node.Items != nil {
			item := *node.Items
			if norm != nil {
				item = norm.Deref(item)
			}
			node = item
		} else {
			node = schema.Node{}
		}
	}
	return crumbs
}

// FirstPrimaryDescendant resolves a crumb or section click to a landing
// group: the group itself when it owns primitive fields, otherwise the
// nearest descendant with primitives. Array children are skipped, since
// arrays require explicit item creation. Falls back to the group itself.
func FirstPrimaryDescendant(result *synth.Result, groupID string) string {
	group, ok := result.Group(groupID)
	if !ok {
		return groupID
	}
	if target := firstPrimary(group); target != "" {
		return target
	}
	return groupID
}

func firstPrimary(group *synth.Group) string {
	if group.Array {
		return ""
	}
	if len(group.Fields) > 0 {
		return group.ID
	}
	for _, child := range group.Children {
		if target := firstPrimary(child); target != "" {
			return target
		}
	}
	return ""
}
