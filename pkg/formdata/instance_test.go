package formdata

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formedit/pkg/formpath"
	"github.com/goliatone/go-formedit/pkg/jsonschema"
)

const articleSchema = `{
  "type": "object",
  "required": ["title"],
  "properties": {
    "title": {"type": "string"},
    "views": {"type": "integer"},
    "published": {"type": "boolean", "default": true},
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

func mustNormalizer(t *testing.T, raw string) *jsonschema.Normalizer {
	t.Helper()
	payload, err := jsonschema.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	return jsonschema.NewNormalizerFromPayload(payload)
}

func TestBaseInstance_Defaults(t *testing.T) {
	norm := mustNormalizer(t, articleSchema)

	got := BaseInstance(norm, norm.Root())
	want := map[string]any{
		"title":     "",
		"views":     float64(0),
		"published": true,
		"author": map[string]any{
			"name":  "",
			"email": "",
		},
		"tags": []any{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("base instance mismatch (-want +got):\n%s", diff)
	}
}

func TestBaseInstance_Deterministic(t *testing.T) {
	norm := mustNormalizer(t, articleSchema)

	first := BaseInstance(norm, norm.Root())
	second := BaseInstance(norm, norm.Root())
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("base instances differ (-first +second):\n%s", diff)
	}
}

func TestDeepMerge_EmptyIncomingEqualsBase(t *testing.T) {
	norm := mustNormalizer(t, articleSchema)
	base := BaseInstance(norm, norm.Root())

	merged := DeepMerge(base, map[string]any{})
	if diff := cmp.Diff(base, merged); diff != "" {
		t.Fatalf("merge with empty changed base (-base +merged):\n%s", diff)
	}
}

func TestDeepMerge_PreservesBaseOnlyKeys(t *testing.T) {
	base := map[string]any{
		"title": "",
		"author": map[string]any{
			"name":  "",
			"email": "",
		},
	}
	incoming := map[string]any{
		"author": map[string]any{"name": "Ada"},
	}

	merged, ok := DeepMerge(base, incoming).(map[string]any)
	if !ok {
		t.Fatal("expected object result")
	}
	author := merged["author"].(map[string]any)
	if author["name"] != "Ada" {
		t.Fatalf("incoming scalar lost: %v", author["name"])
	}
	if _, present := author["email"]; !present {
		t.Fatal("base-only key dropped")
	}
	if _, present := merged["title"]; !present {
		t.Fatal("base-only top-level key dropped")
	}
}

func TestDeepMerge_DoesNotMutateArguments(t *testing.T) {
	base := map[string]any{"nested": map[string]any{"keep": "yes"}}
	incoming := map[string]any{"nested": map[string]any{"add": "new"}}

	DeepMerge(base, incoming)

	if _, leaked := base["nested"].(map[string]any)["add"]; leaked {
		t.Fatal("merge mutated base")
	}
	if _, leaked := incoming["nested"].(map[string]any)["keep"]; leaked {
		t.Fatal("merge mutated incoming")
	}
}

func TestSet_CreatesIntermediates(t *testing.T) {
	root := Set(map[string]any{}, formpath.MustParse("author.name"), "Ada")

	got, ok := Get(root, formpath.MustParse("author.name"))
	if !ok || got != "Ada" {
		t.Fatalf("expected Ada, got %v (present %v)", got, ok)
	}
}

func TestSet_GrowsLists(t *testing.T) {
	root := Set(map[string]any{}, formpath.MustParse("tags"), []any{})
	root = Set(root, formpath.MustParse("tags[2].label"), "deep")

	list, _ := Get(root, formpath.MustParse("tags"))
	typed, ok := list.([]any)
	if !ok || len(typed) != 3 {
		t.Fatalf("expected list of 3, got %v", list)
	}
	got, ok := Get(root, formpath.MustParse("tags[2].label"))
	if !ok || got != "deep" {
		t.Fatalf("expected deep at tags[2].label, got %v", got)
	}
}

func TestGet_MissingPathsReportFalse(t *testing.T) {
	root := map[string]any{"tags": []any{map[string]any{"label": "a"}}}

	cases := []string{"missing", "tags[4]", "tags[0].missing", "title.nested"}
	for _, raw := range cases {
		if _, ok := Get(root, formpath.MustParse(raw)); ok {
			t.Fatalf("expected %q to be absent", raw)
		}
	}
}

func TestMoveItem_PreservesMultiset(t *testing.T) {
	root := map[string]any{"tags": []any{"a", "b", "c", "d"}}
	path := formpath.MustParse("tags")

	moved := MoveItem(root, path, 0, 2)
	list, _ := Get(moved, path)
	if diff := cmp.Diff([]any{"b", "c", "a", "d"}, list); diff != "" {
		t.Fatalf("forward move mismatch (-want +got):\n%s", diff)
	}

	back := MoveItem(moved, path, 2, 0)
	list, _ = Get(back, path)
	if diff := cmp.Diff([]any{"a", "b", "c", "d"}, list); diff != "" {
		t.Fatalf("backward move mismatch (-want +got):\n%s", diff)
	}
}

func TestMoveItem_NoOps(t *testing.T) {
	root := map[string]any{"tags": []any{"a", "b"}}
	path := formpath.MustParse("tags")

	for _, tc := range []struct{ from, to int }{{1, 1}, {-1, 0}, {0, 5}} {
		next := MoveItem(root, path, tc.from, tc.to)
		list, _ := Get(next, path)
		if diff := cmp.Diff([]any{"a", "b"}, list); diff != "" {
			t.Fatalf("move %d->%d should be a no-op (-want +got):\n%s", tc.from, tc.to, diff)
		}
	}
}

func TestRemoveItem_Renumbers(t *testing.T) {
	root := map[string]any{"tags": []any{"a", "b", "c"}}
	path := formpath.MustParse("tags")

	next := RemoveItem(root, path, 1)
	list, _ := Get(next, path)
	if diff := cmp.Diff([]any{"a", "c"}, list); diff != "" {
		t.Fatalf("remove mismatch (-want +got):\n%s", diff)
	}
}

func TestModel_LoadMergesOverBase(t *testing.T) {
	norm := mustNormalizer(t, articleSchema)
	model := New(norm)

	model.Load(map[string]any{"title": "Hello"})

	got, _ := model.Get(formpath.MustParse("title"))
	if got != "Hello" {
		t.Fatalf("expected Hello, got %v", got)
	}
	if _, ok := model.Get(formpath.MustParse("author.email")); !ok {
		t.Fatal("structural key from base instance dropped on load")
	}
}

func TestModel_PushRemoveMove(t *testing.T) {
	norm := mustNormalizer(t, articleSchema)
	model := New(norm)
	tags := formpath.MustParse("tags")

	first := model.Push(tags)
	second := model.Push(tags)
	if first != 0 || second != 1 {
		t.Fatalf("unexpected indices %d, %d", first, second)
	}

	model.Set(tags.Item(0).Child("label"), "alpha")
	model.Set(tags.Item(1).Child("label"), "beta")

	if !model.Move(tags, 0, 1) {
		t.Fatal("move reported failure")
	}
	got, _ := model.Get(tags.Item(0).Child("label"))
	if got != "beta" {
		t.Fatalf("expected beta first after move, got %v", got)
	}

	if model.Move(tags, 1, 1) {
		t.Fatal("equal indices must be a no-op")
	}
	if !model.Remove(tags, 0) {
		t.Fatal("remove reported failure")
	}
	if model.Len(tags) != 1 {
		t.Fatalf("expected 1 item, got %d", model.Len(tags))
	}
	got, _ = model.Get(tags.Item(0).Child("label"))
	if got != "alpha" {
		t.Fatalf("expected alpha renumbered to index 0, got %v", got)
	}
}

func TestModel_ReplaceRawKeepsPriorOnFailure(t *testing.T) {
	norm := mustNormalizer(t, articleSchema)
	model := New(norm)
	model.Set(formpath.MustParse("title"), "Keep me")

	if model.ReplaceRaw([]byte(`{"title": `)) {
		t.Fatal("malformed JSON must report failure")
	}
	if model.ReplaceRaw([]byte(`[1,2,3]`)) {
		t.Fatal("non-object JSON must report failure")
	}

	got, _ := model.Get(formpath.MustParse("title"))
	if got != "Keep me" {
		t.Fatalf("prior instance was touched: %v", got)
	}

	if !model.ReplaceRaw([]byte(`{"title":"Swapped"}`)) {
		t.Fatal("valid object must be accepted")
	}
	got, _ = model.Get(formpath.MustParse("title"))
	if got != "Swapped" {
		t.Fatalf("expected Swapped, got %v", got)
	}
}
