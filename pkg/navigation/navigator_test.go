package navigation

import (
	"testing"

	"github.com/goliatone/go-formedit/pkg/engine"
	"github.com/goliatone/go-formedit/pkg/jsonschema"
)

func mountNavigator(t *testing.T, raw string, data any) (*Navigator, *engine.Engine, *fakeViewport) {
	t.Helper()
	payload, err := jsonschema.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	eng := engine.NewFromNormalizer(
		jsonschema.NewNormalizerFromPayload(payload),
		data,
		engine.WithScheduler(engine.Immediate{}),
	)
	t.Cleanup(eng.Destroy)
	viewport := &fakeViewport{offsets: map[string]float64{}}
	nav := NewNavigator(eng, viewport, nil)
	return nav, eng, viewport
}

func findEntry(t *testing.T, nav *Navigator, kind EntryKind, title string) Entry {
	t.Helper()
	for _, entry := range nav.Entries() {
		if entry.Kind == kind && entry.Title == title {
			return entry
		}
	}
	t.Fatalf("no %v entry titled %q in %+v", kind, title, nav.Entries())
	return Entry{}
}

func TestNavigator_SeedsFromCurrentTree(t *testing.T) {
	nav, _, _ := mountNavigator(t, catalogSchema, nil)

	if len(nav.Entries()) == 0 {
		t.Fatal("navigator must seed its outline at construction")
	}
	if len(nav.Tree()) == 0 {
		t.Fatal("folded tree empty")
	}
}

func TestClickEntry_AddBranchActivatesThenNavigates(t *testing.T) {
	nav, eng, viewport := mountNavigator(t, catalogSchema, nil)

	add := findEntry(t, nav, KindAddBranch, "Author")
	nav.ClickEntry(add)

	if _, ok := eng.Result().Group("form-group-author"); !ok {
		t.Fatal("branch not activated")
	}
	if len(viewport.jumps) != 1 || viewport.jumps[0] != "form-group-author" {
		t.Fatalf("expected jump to the new group, got %v", viewport.jumps)
	}
	if nav.Tracker().Active() != "form-group-author" {
		t.Fatalf("active after add: %q", nav.Tracker().Active())
	}
}

func TestClickEntry_AddItemAppendsAndNavigates(t *testing.T) {
	nav, eng, viewport := mountNavigator(t, catalogSchema, nil)

	add := findEntry(t, nav, KindAddItem, "Tiers")
	nav.ClickEntry(add)

	group, _ := eng.Result().Group("form-group-pricing-tiers")
	if len(group.Children) != 1 {
		t.Fatalf("expected 1 item, got %d", len(group.Children))
	}
	if len(viewport.jumps) != 1 || viewport.jumps[0] != "form-group-pricing-tiers-0" {
		t.Fatalf("expected jump to the new item, got %v", viewport.jumps)
	}
}

func TestClickEntry_GroupRowNavigatesDirectly(t *testing.T) {
	nav, _, viewport := mountNavigator(t, catalogSchema, nil)

	root := findEntry(t, nav, KindGroup, "Form")
	nav.ClickEntry(root)

	if len(viewport.jumps) != 1 || viewport.jumps[0] != "form-group-root" {
		t.Fatalf("jumps: %v", viewport.jumps)
	}
}

func TestDragReorder_OnlyWithinOneArray(t *testing.T) {
	data := map[string]any{
		"pricing": map[string]any{
			"tiers": []any{
				map[string]any{"amount": float64(1)},
				map[string]any{"amount": float64(2)},
			},
		},
	}
	nav, eng, _ := mountNavigator(t, catalogSchema, data)

	var items []Entry
	for _, entry := range nav.Entries() {
		if entry.Kind == KindItem {
			items = append(items, entry)
		}
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 item entries, got %d", len(items))
	}

	group := findEntry(t, nav, KindGroup, "Form")
	if nav.DragReorder(items[0], group) {
		t.Fatal("drop on a non-item row must be rejected")
	}

	foreign := items[1]
	foreign.ArrayPath = items[1].ArrayPath.Child("other")
	if nav.DragReorder(items[0], foreign) {
		t.Fatal("cross-array drop must be rejected")
	}

	if !nav.DragReorder(items[0], items[1]) {
		t.Fatal("in-array drop must reorder")
	}
	result := eng.Result()
	first, _ := result.Field("pricing.tiers[0].amount")
	if first.Path.String() != "pricing.tiers[0].amount" {
		t.Fatalf("descriptor missing after reorder: %+v", first)
	}
	value, _ := eng.Value(first.Path)
	if value != float64(2) {
		t.Fatalf("reorder not committed, got %v", value)
	}
}

func TestBreadcrumbs_ForActiveGroup(t *testing.T) {
	data := map[string]any{
		"pricing": map[string]any{
			"tiers": []any{map[string]any{"amount": float64(1)}},
		},
	}
	nav, _, _ := mountNavigator(t, catalogSchema, data)

	nav.Tracker().SetActive("form-group-pricing-tiers-0")
	crumbs := nav.Breadcrumbs()
	if len(crumbs) != 3 {
		t.Fatalf("expected 3 crumbs, got %+v", crumbs)
	}
	if crumbs[2].Label != "Tiers 1" {
		t.Fatalf("last crumb: %q", crumbs[2].Label)
	}

	nav.Tracker().SetActive("")
	if crumbs := nav.Breadcrumbs(); crumbs != nil {
		t.Fatalf("no active group must yield no crumbs, got %+v", crumbs)
	}
}
