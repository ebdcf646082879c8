package navigation

import (
	"github.com/goliatone/go-formedit/pkg/formpath"
	"github.com/goliatone/go-formedit/pkg/synth"
)

// EntryKind discriminates outline entries.
type EntryKind int

const (
	// KindGroup is an object group holding primitive fields.
	KindGroup EntryKind = iota
	// KindSection is a title-only section heading.
	KindSection
	// KindItem is one existing array item.
	KindItem
	// KindAddBranch is the "+ Add" affordance for an inactive optional branch.
	KindAddBranch
	// KindAddItem is the "+ Add item" affordance rendered under every array.
	KindAddItem
)

// Entry is one row of the flat, level-annotated outline. Group, section, and
// item entries carry the id of the group they mirror; affordance entries
// carry the path the command layer needs.
type Entry struct {
	Kind      EntryKind
	ID        string
	Path      formpath.Path
	Title     string
	Level     int
	ArrayPath formpath.Path
	ItemIndex int
}

// Node is one entry of the nested outline produced by Fold.
type Node struct {
	Entry    Entry
	Children []*Node
}

// Outline mirrors the descriptor tree into the flat outline list. One entry
// per group, one per section, one per array item, a "+ Add" entry per
// inactive optional branch, and a "+ Add item" entry per array.
func Outline(result *synth.Result) []Entry {
	if result == nil || result.Root == nil {
		return nil
	}
	placeholders := make(map[string][]synth.Placeholder)
	for _, placeholder := range result.Placeholders {
		placeholders[placeholder.ParentID] = append(placeholders[placeholder.ParentID], placeholder)
	}

	var entries []Entry
	var walk func(group *synth.Group, root bool)
	walk = func(group *synth.Group, root bool) {
		// The root group only earns an outline row when it holds fields of
		// its own; a purely structural root is just a container.
		if !root || len(group.Fields) > 0 {
			entries = append(entries, groupEntry(group))
		}
		for _, child := range group.Children {
			walk(child, false)
		}
		for _, placeholder := range placeholders[group.ID] {
			entries = append(entries, Entry{
				Kind:  KindAddBranch,
				Path:  placeholder.Path,
				Title: placeholder.Title,
				Level: placeholder.Level,
			})
		}
		if group.Array {
			entries = append(entries, Entry{
				Kind:      KindAddItem,
				ID:        group.ID,
				Path:      group.Path,
				Title:     group.Title,
				Level:     group.Level + 1,
				ArrayPath: group.Path,
			})
		}
	}
	walk(result.Root, true)
	return entries
}

func groupEntry(group *synth.Group) Entry {
	entry := Entry{
		ID:    group.ID,
		Path:  group.Path,
		Title: group.Title,
		Level: group.Level,
	}
	switch {
	case group.ArrayItem:
		entry.Kind = KindItem
		entry.ArrayPath = group.Path.Parent()
		entry.ItemIndex = group.ItemIndex
	case group.Section:
		entry.Kind = KindSection
	default:
		entry.Kind = KindGroup
	}
	return entry
}

// Fold nests the flat outline using each entry's level. Entries with a level
// deeper than the previous entry become its children; sibling and shallower
// entries close the open branches.
func Fold(entries []Entry) []*Node {
	var roots []*Node
	var stack []*Node
	for _, entry := range entries {
		node := &Node{Entry: entry}
		for len(stack) > 0 && stack[len(stack)-1].Entry.Level >= entry.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, node)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, node)
		}
		stack = append(stack, node)
	}
	return roots
}

// GroupOrder returns the ids of group-backed entries in document order, the
// scan order scroll tracking depends on.
func GroupOrder(entries []Entry) []string {
	var ids []string
	for _, entry := range entries {
		switch entry.Kind {
		case KindGroup, KindSection, KindItem:
			ids = append(ids, entry.ID)
		}
	}
	return ids
}
