package engine

import (
	"testing"

	"github.com/goliatone/go-formedit/pkg/formpath"
	"github.com/goliatone/go-formedit/pkg/jsonschema"
	"github.com/goliatone/go-formedit/pkg/schema"
	"github.com/goliatone/go-formedit/pkg/synth"
	"github.com/goliatone/go-formedit/pkg/validation"
)

const articleSchema = `{
  "type": "object",
  "required": ["title"],
  "properties": {
    "title": {"type": "string"},
    "views": {"type": "integer"},
    "author": {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "email": {"type": "string", "format": "email"}
      }
    },
    "tags": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {"label": {"type": "string"}}
      }
    }
  }
}`

func mount(t *testing.T, data any, options ...Option) *Engine {
	t.Helper()
	payload, err := jsonschema.Parse([]byte(articleSchema))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	options = append([]Option{WithScheduler(Immediate{})}, options...)
	eng := NewFromNormalizer(jsonschema.NewNormalizerFromPayload(payload), data, options...)
	t.Cleanup(eng.Destroy)
	return eng
}

func countRebuilds(eng *Engine) *int {
	count := new(int)
	eng.OnRebuild(func(*synth.Result) { *count++ })
	return count
}

func TestMount_SynthesizesInitialTree(t *testing.T) {
	eng := mount(t, nil)

	result := eng.Result()
	if result == nil || result.Root == nil {
		t.Fatal("mount must produce a descriptor tree")
	}
	if _, ok := result.Field("title"); !ok {
		t.Fatal("title field missing from initial tree")
	}
	if len(result.Placeholders) != 2 {
		t.Fatalf("expected author and tags placeholders, got %v", result.Placeholders)
	}
}

func TestSetValue_ValidatesImmediatelyAndRebuilds(t *testing.T) {
	eng := mount(t, map[string]any{"title": "Hello"})
	rebuilds := countRebuilds(eng)

	if msg := eng.SetValue(formpath.MustParse("title"), ""); msg != validation.MsgRequired {
		t.Fatalf("expected required message, got %q", msg)
	}
	if *rebuilds != 1 {
		t.Fatalf("expected 1 rebuild, got %d", *rebuilds)
	}

	if msg := eng.SetValue(formpath.MustParse("title"), "Fixed"); msg != "" {
		t.Fatalf("expected cleared message, got %q", msg)
	}
	got, _ := eng.Value(formpath.MustParse("title"))
	if got != "Fixed" {
		t.Fatalf("value not committed: %v", got)
	}
}

func TestActivateOptional_ObjectBranch(t *testing.T) {
	eng := mount(t, nil)
	rebuilds := countRebuilds(eng)
	author := formpath.MustParse("author")

	if !eng.ActivateOptional(author) {
		t.Fatal("first activation must succeed")
	}
	if _, ok := eng.Result().Group("form-group-author"); !ok {
		t.Fatal("activated branch missing from tree")
	}
	if *rebuilds != 1 {
		t.Fatalf("expected 1 rebuild, got %d", *rebuilds)
	}

	if eng.ActivateOptional(author) {
		t.Fatal("re-activation must be a no-op")
	}
	if *rebuilds != 1 {
		t.Fatalf("no-op re-activation scheduled a rebuild: %d", *rebuilds)
	}
}

func TestActivateOptional_ArrayGuaranteesOneItem(t *testing.T) {
	eng := mount(t, nil)
	tags := formpath.MustParse("tags")

	if !eng.ActivateOptional(tags) {
		t.Fatal("activation failed")
	}

	group, ok := eng.Result().Group("form-group-tags")
	if !ok {
		t.Fatal("array group missing")
	}
	if len(group.Children) != 1 {
		t.Fatalf("activated array must hold one item, got %d", len(group.Children))
	}
}

func TestAddArrayItem_ActivatesImplicitly(t *testing.T) {
	eng := mount(t, nil)
	tags := formpath.MustParse("tags")

	if index := eng.AddArrayItem(tags); index != 0 {
		t.Fatalf("expected index 0, got %d", index)
	}
	if index := eng.AddArrayItem(tags); index != 1 {
		t.Fatalf("expected index 1, got %d", index)
	}
	if !eng.Activation().Active(tags) {
		t.Fatal("adding must activate the branch")
	}

	group, _ := eng.Result().Group("form-group-tags")
	if len(group.Children) != 2 {
		t.Fatalf("expected 2 item groups, got %d", len(group.Children))
	}
}

func TestRemoveArrayItem_RenumbersTree(t *testing.T) {
	eng := mount(t, nil)
	tags := formpath.MustParse("tags")
	eng.AddArrayItem(tags)
	eng.AddArrayItem(tags)
	eng.SetValue(tags.Item(1).Child("label"), "keep")

	if !eng.RemoveArrayItem(tags, 0) {
		t.Fatal("remove failed")
	}
	if eng.RemoveArrayItem(tags, 7) {
		t.Fatal("out-of-range remove must report false")
	}

	got, _ := eng.Value(tags.Item(0).Child("label"))
	if got != "keep" {
		t.Fatalf("survivor not renumbered to index 0: %v", got)
	}
	group, _ := eng.Result().Group("form-group-tags")
	if len(group.Children) != 1 || group.Children[0].ID != "form-group-tags-0" {
		t.Fatalf("descriptors not renumbered: %+v", group.Children)
	}
}

func TestReorderArrayItem_EqualIndicesSkipRebuild(t *testing.T) {
	eng := mount(t, nil)
	tags := formpath.MustParse("tags")
	eng.AddArrayItem(tags)
	eng.AddArrayItem(tags)
	eng.SetValue(tags.Item(0).Child("label"), "first")
	eng.SetValue(tags.Item(1).Child("label"), "second")
	rebuilds := countRebuilds(eng)

	if eng.ReorderArrayItem(tags, 1, 1) {
		t.Fatal("equal indices must be a no-op")
	}
	if *rebuilds != 0 {
		t.Fatalf("no-op reorder scheduled a rebuild: %d", *rebuilds)
	}

	if !eng.ReorderArrayItem(tags, 0, 1) {
		t.Fatal("reorder failed")
	}
	if *rebuilds != 1 {
		t.Fatalf("expected 1 rebuild, got %d", *rebuilds)
	}
	got, _ := eng.Value(tags.Item(0).Child("label"))
	if got != "second" {
		t.Fatalf("order not committed: %v", got)
	}
}

func TestValidateAll_CountsAndMarkers(t *testing.T) {
	eng := mount(t, map[string]any{
		"title":  "",
		"author": map[string]any{"email": "bad"},
	})
	eng.ActivateOptional(formpath.MustParse("author"))

	refreshes := 0
	eng.OnMarkerRefresh(func() { refreshes++ })

	count := eng.ValidateAll()
	if count != 2 {
		t.Fatalf("expected 2 failures, got %d", count)
	}
	if refreshes != 1 {
		t.Fatalf("full pass must refresh markers once, got %d", refreshes)
	}
	if !eng.GroupHasError("form-group-author") {
		t.Fatal("author group marker missing")
	}
	if eng.GroupHasError("form-group-tags") {
		t.Fatal("unrelated group flagged")
	}
}

func TestValidateAll_RequiredEmptyArray(t *testing.T) {
	payload, err := jsonschema.Parse([]byte(`{
		"type": "object",
		"required": ["tags"],
		"properties": {
			"tags": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {"label": {"type": "string"}}
				}
			}
		}
	}`))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	eng := NewFromNormalizer(jsonschema.NewNormalizerFromPayload(payload), nil, WithScheduler(Immediate{}))
	t.Cleanup(eng.Destroy)

	if count := eng.ValidateAll(); count != 1 {
		t.Fatalf("expected 1 failure, got %d", count)
	}
	if msg := eng.Errors()["tags"]; msg != validation.MsgRequired {
		t.Fatalf("tags error: %q", msg)
	}
	if !eng.GroupHasError("form-group-tags") {
		t.Fatal("array group marker missing")
	}

	eng.AddArrayItem(formpath.MustParse("tags"))
	if count := eng.ValidateAll(); count != 0 {
		t.Fatalf("populated array still failing: %d", count)
	}
}

func TestResetAll_ClearsSession(t *testing.T) {
	eng := mount(t, nil)
	eng.ActivateOptional(formpath.MustParse("author"))
	eng.SetValue(formpath.MustParse("author.name"), "Ada")

	eng.ResetAll()

	if eng.Activation().Len() != 0 {
		t.Fatal("activation set must clear")
	}
	if _, ok := eng.Result().Group("form-group-author"); ok {
		t.Fatal("deactivated branch survived reset")
	}
	got, _ := eng.Value(formpath.MustParse("title"))
	if got != "" {
		t.Fatalf("instance not reset to defaults: %v", got)
	}
}

func TestSetRawData_FailureLeavesSessionUntouched(t *testing.T) {
	eng := mount(t, map[string]any{"title": "Keep"})
	rebuilds := countRebuilds(eng)

	if eng.SetRawData([]byte(`{"title": `)) {
		t.Fatal("malformed JSON must report false")
	}
	if eng.SetRawData([]byte(`"scalar"`)) {
		t.Fatal("non-object JSON must report false")
	}
	if *rebuilds != 0 {
		t.Fatalf("failed raw apply scheduled a rebuild: %d", *rebuilds)
	}
	got, _ := eng.Value(formpath.MustParse("title"))
	if got != "Keep" {
		t.Fatalf("prior instance touched: %v", got)
	}

	if !eng.SetRawData([]byte(`{"title":"Swapped"}`)) {
		t.Fatal("valid object must apply")
	}
	got, _ = eng.Value(formpath.MustParse("title"))
	if got != "Swapped" {
		t.Fatalf("raw apply not committed: %v", got)
	}
}

func TestUpdateSchema_CarriesData(t *testing.T) {
	eng := mount(t, map[string]any{"title": "Survivor"})

	next := schema.MustNewDocument(schema.SourceFromFile("inline.json"), []byte(`{
		"type": "object",
		"properties": {
			"title": {"type": "string"},
			"subtitle": {"type": "string"}
		}
	}`))
	if err := eng.UpdateSchema(next); err != nil {
		t.Fatalf("update schema: %v", err)
	}

	got, _ := eng.Value(formpath.MustParse("title"))
	if got != "Survivor" {
		t.Fatalf("data lost across schema swap: %v", got)
	}
	if _, ok := eng.Result().Field("subtitle"); !ok {
		t.Fatal("new schema field missing from tree")
	}
}

func TestDestroy_CommandsBecomeNoOps(t *testing.T) {
	removed := 0
	eng := mount(t, nil, WithOnRemove(func() { removed++ }))

	eng.Destroy()
	eng.Destroy()
	if removed != 1 {
		t.Fatalf("remove callback must fire once, got %d", removed)
	}

	if eng.ActivateOptional(formpath.MustParse("author")) {
		t.Fatal("commands after destroy must be no-ops")
	}
	if eng.AddArrayItem(formpath.MustParse("tags")) != -1 {
		t.Fatal("add after destroy must report -1")
	}
}

func TestOnChange_ReceivesSnapshots(t *testing.T) {
	var last any
	eng := mount(t, nil, WithOnChange(func(data any) { last = data }))

	eng.SetValue(formpath.MustParse("title"), "Hello")

	snapshot, ok := last.(map[string]any)
	if !ok {
		t.Fatalf("expected object snapshot, got %T", last)
	}
	if snapshot["title"] != "Hello" {
		t.Fatalf("snapshot stale: %v", snapshot["title"])
	}

	snapshot["title"] = "mutated"
	got, _ := eng.Value(formpath.MustParse("title"))
	if got != "Hello" {
		t.Fatal("snapshot aliases the live instance")
	}
}
