package navigation

import (
	"github.com/goliatone/go-formedit/pkg/engine"
	"github.com/goliatone/go-formedit/pkg/formpath"
	"github.com/goliatone/go-formedit/pkg/synth"
)

// Navigator mirrors the engine's descriptor tree into the outline, owns the
// active-group tracker, and translates outline gestures into commands. It
// re-derives everything from each rebuild; nothing here is patched in place.
type Navigator struct {
	engine  *engine.Engine
	tracker *ActiveTracker
	labeler func(string) string

	entries []Entry
	result  *synth.Result

	// pending holds an activate-then-navigate target until the rebuild that
	// materializes it lands.
	pending formpath.Path
}

// NavigatorOption configures a Navigator.
type NavigatorOption func(*Navigator)

// WithNavigatorLabeler overrides the breadcrumb label fallback.
func WithNavigatorLabeler(labeler func(string) string) NavigatorOption {
	return func(n *Navigator) { n.labeler = labeler }
}

// NewNavigator wires a navigator to an engine and viewport. It subscribes to
// rebuilds and seeds itself from the engine's current tree.
func NewNavigator(eng *engine.Engine, viewport Viewport, trackerOptions []TrackerOption, options ...NavigatorOption) *Navigator {
	n := &Navigator{
		engine:  eng,
		tracker: NewActiveTracker(viewport, trackerOptions...),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(n)
	}
	eng.OnRebuild(n.refresh)
	n.refresh(eng.Result())
	return n
}

// Tracker exposes the active-group tracker for scroll event wiring.
func (n *Navigator) Tracker() *ActiveTracker { return n.tracker }

// Entries returns the current flat outline.
func (n *Navigator) Entries() []Entry { return n.entries }

// Tree returns the current nested outline.
func (n *Navigator) Tree() []*Node { return Fold(n.entries) }

// NavigateTo jumps to a group by id.
func (n *Navigator) NavigateTo(groupID string) {
	n.tracker.JumpTo(groupID)
}

// Breadcrumbs derives the crumb trail for the currently active group.
func (n *Navigator) Breadcrumbs() []Crumb {
	group, ok := n.result.Group(n.tracker.Active())
	if !ok {
		return nil
	}
	return Breadcrumbs(n.engine.Normalizer(), n.engine.RootSchema(), group.Path, n.labeler)
}

// ClickEntry handles an outline row activation: group-backed rows navigate,
// affordance rows issue the matching command and navigate once the branch
// materializes.
func (n *Navigator) ClickEntry(entry Entry) {
	switch entry.Kind {
	case KindGroup, KindSection, KindItem:
		n.NavigateTo(FirstPrimaryDescendant(n.result, entry.ID))
	case KindAddBranch:
		n.pending = entry.Path
		n.engine.ActivateOptional(entry.Path)
	case KindAddItem:
		index := n.engine.AddArrayItem(entry.ArrayPath)
		if index >= 0 {
			n.pending = entry.ArrayPath.Item(index)
			// With a synchronous scheduler the rebuild already landed.
			n.resolvePending()
		}
	}
}

// ClickCrumb navigates to a breadcrumb target, activating the branch first
// when it is not materialized yet.
func (n *Navigator) ClickCrumb(crumb Crumb) {
	if _, ok := n.result.Group(crumb.GroupID); ok {
		n.NavigateTo(FirstPrimaryDescendant(n.result, crumb.GroupID))
		return
	}
	if sectionID := formpath.SectionID(crumb.Path); sectionID != crumb.GroupID {
		if _, ok := n.result.Group(sectionID); ok {
			n.NavigateTo(FirstPrimaryDescendant(n.result, sectionID))
			return
		}
	}
	n.pending = crumb.Path
	n.engine.ActivateOptional(crumb.Path)
}

// DragReorder handles a drag gesture between two outline entries. Only drags
// between items of the same array reorder anything; everything else is a
// no-op.
func (n *Navigator) DragReorder(from, to Entry) bool {
	if from.Kind != KindItem || to.Kind != KindItem {
		return false
	}
	if !from.ArrayPath.Equal(to.ArrayPath) {
		return false
	}
	return n.engine.ReorderArrayItem(from.ArrayPath, from.ItemIndex, to.ItemIndex)
}

func (n *Navigator) refresh(result *synth.Result) {
	n.result = result
	n.entries = Outline(result)
	n.tracker.SetGroups(GroupOrder(n.entries))
	n.resolvePending()
}

func (n *Navigator) resolvePending() {
	if n.pending == nil {
		return
	}
	target := formpath.GroupID(n.pending)
	if _, ok := n.result.Group(target); !ok {
		// Structural-only branches materialize as sections.
		target = formpath.SectionID(n.pending)
		if _, ok := n.result.Group(target); !ok {
			return
		}
	}
	n.pending = nil
	n.NavigateTo(FirstPrimaryDescendant(n.result, target))
}
