package validation

import (
	"testing"

	"github.com/goliatone/go-formedit/pkg/formpath"
	"github.com/goliatone/go-formedit/pkg/schema"
	"github.com/goliatone/go-formedit/pkg/synth"
)

func fixtureResult() *synth.Result {
	name := synth.Field{
		Path:     formpath.MustParse("name"),
		GroupID:  "form-group-root",
		Schema:   schema.Node{Type: "string"},
		Label:    "Name",
		Required: true,
	}
	email := synth.Field{
		Path:    formpath.MustParse("author.email"),
		GroupID: "form-group-author",
		Schema:  schema.Node{Type: "string", Format: "email"},
		Label:   "Email",
	}
	root := &synth.Group{ID: "form-group-root", Fields: []synth.Field{name}}
	author := &synth.Group{ID: "form-group-author", Fields: []synth.Field{email}}
	root.Children = []*synth.Group{author}
	return &synth.Result{
		Root: root,
		Groups: map[string]*synth.Group{
			root.ID:   root,
			author.ID: author,
		},
		Fields: map[string]synth.Field{
			"name":         name,
			"author.email": email,
		},
	}
}

func TestValidateAll_RefreshesMarkersOnce(t *testing.T) {
	refreshes := 0
	runner := NewRunner(WithMarkerRefresh(func() { refreshes++ }))
	result := fixtureResult()

	count := runner.ValidateAll(result, map[string]any{
		"name":   "",
		"author": map[string]any{"email": "bad"},
	})

	if count != 2 {
		t.Fatalf("expected 2 failures, got %d", count)
	}
	if refreshes != 1 {
		t.Fatalf("markers must refresh exactly once per pass, got %d", refreshes)
	}

	msg, ok := runner.Error("name")
	if !ok || msg != MsgRequired {
		t.Fatalf("name error: %q (present %v)", msg, ok)
	}
	msg, _ = runner.Error("author.email")
	if msg != MsgInvalidEmail {
		t.Fatalf("email error: %q", msg)
	}
}

func TestValidateAll_ReplacesPriorMap(t *testing.T) {
	runner := NewRunner()
	result := fixtureResult()

	runner.ValidateAll(result, map[string]any{"name": ""})
	count := runner.ValidateAll(result, map[string]any{
		"name":   "Ada",
		"author": map[string]any{"email": "ada@example.com"},
	})

	if count != 0 {
		t.Fatalf("expected clean pass, got %d failures", count)
	}
	if errs := runner.Errors(); len(errs) != 0 {
		t.Fatalf("stale errors survived: %v", errs)
	}
}

func TestValidateField_UpdatesSingleEntry(t *testing.T) {
	refreshes := 0
	runner := NewRunner(WithMarkerRefresh(func() { refreshes++ }))
	result := fixtureResult()
	field := result.Fields["name"]

	if msg := runner.ValidateField(field, ""); msg != MsgRequired {
		t.Fatalf("expected required error, got %q", msg)
	}
	if refreshes != 1 {
		t.Fatalf("change validation must refresh markers, got %d", refreshes)
	}

	if msg := runner.ValidateField(field, "Ada"); msg != "" {
		t.Fatalf("expected cleared error, got %q", msg)
	}
	if _, ok := runner.Error("name"); ok {
		t.Fatal("entry must be removed once valid")
	}
}

func TestGroupHasError_DerivedPerGroup(t *testing.T) {
	runner := NewRunner()
	result := fixtureResult()

	runner.ValidateAll(result, map[string]any{
		"name":   "Ada",
		"author": map[string]any{"email": "bad"},
	})

	root, _ := result.Group("form-group-root")
	author, _ := result.Group("form-group-author")
	if runner.GroupHasError(root) {
		t.Fatal("root has no failing fields")
	}
	if !runner.GroupHasError(author) {
		t.Fatal("author owns the failing email field")
	}

	runner.ValidateField(result.Fields["author.email"], "ada@example.com")
	if runner.GroupHasError(author) {
		t.Fatal("marker must clear once the field recovers")
	}
}

func TestReset_ClearsWithoutRefreshing(t *testing.T) {
	refreshes := 0
	runner := NewRunner(WithMarkerRefresh(func() { refreshes++ }))
	runner.ValidateAll(fixtureResult(), map[string]any{"name": ""})
	before := refreshes

	runner.Reset()

	if refreshes != before {
		t.Fatal("reset must not trigger a marker refresh")
	}
	if len(runner.Errors()) != 0 {
		t.Fatal("reset must clear the error map")
	}
}
