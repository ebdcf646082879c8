package tui

import (
	"context"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-formedit/pkg/engine"
	"github.com/goliatone/go-formedit/pkg/jsonschema"
	"github.com/goliatone/go-formedit/pkg/validation"
)

const surveySchema = `{
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string"},
    "views": {"type": "integer"},
    "size": {"type": "string", "enum": ["small", "large"]},
    "active": {"type": "boolean"},
    "author": {
      "type": "object",
      "properties": {"email": {"type": "string", "format": "email"}}
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

// scriptDriver replays queued answers keyed by prompt message. Exhausted or
// unscripted confirms answer no, so walks always terminate.
type scriptDriver struct {
	t        *testing.T
	inputs   map[string][]string
	confirms map[string][]bool
	selects  map[string]int
	infos    []string
}

func (d *scriptDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	queue := d.inputs[cfg.Message]
	if len(queue) == 0 {
		d.t.Fatalf("unexpected input prompt %q", cfg.Message)
	}
	answer := queue[0]
	d.inputs[cfg.Message] = queue[1:]
	return answer, nil
}

func (d *scriptDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	queue := d.confirms[cfg.Message]
	if len(queue) == 0 {
		return false, nil
	}
	answer := queue[0]
	d.confirms[cfg.Message] = queue[1:]
	return answer, nil
}

func (d *scriptDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	index, ok := d.selects[cfg.Message]
	if !ok {
		d.t.Fatalf("unexpected select prompt %q", cfg.Message)
	}
	return index, nil
}

func (d *scriptDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	d.t.Fatalf("unexpected textarea prompt %q", cfg.Message)
	return "", nil
}

func (d *scriptDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func mountEngine(t *testing.T) *engine.Engine {
	t.Helper()
	payload, err := jsonschema.Parse([]byte(surveySchema))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	eng := engine.NewFromNormalizer(
		jsonschema.NewNormalizerFromPayload(payload),
		nil,
		engine.WithScheduler(engine.Immediate{}),
	)
	t.Cleanup(eng.Destroy)
	return eng
}

func runFiller(t *testing.T, driver *scriptDriver) map[string]any {
	t.Helper()
	eng := mountEngine(t)
	filler := New(WithDriver(driver))

	raw, err := filler.Run(context.Background(), eng)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return out
}

func TestRun_FillsFieldsBranchesAndItems(t *testing.T) {
	driver := &scriptDriver{
		t: t,
		inputs: map[string][]string{
			"Name *": {"", "My Article"},
			"Views":  {"12"},
			"Email":  {"ada@example.com"},
			"Label":  {"first"},
		},
		confirms: map[string][]bool{
			"Active":                    {true},
			"Add Author?":               {true},
			"Add Tags?":                 {true},
			"Add another item to Tags?": {false},
		},
		selects: map[string]int{"Size": 1},
	}

	out := runFiller(t, driver)

	if out["name"] != "My Article" {
		t.Fatalf("name: %v", out["name"])
	}
	if out["views"] != float64(12) {
		t.Fatalf("views: %v", out["views"])
	}
	if out["size"] != "large" {
		t.Fatalf("size: %v", out["size"])
	}
	if out["active"] != true {
		t.Fatalf("active: %v", out["active"])
	}

	author, _ := out["author"].(map[string]any)
	if author["email"] != "ada@example.com" {
		t.Fatalf("author: %v", out["author"])
	}

	tags, _ := out["tags"].([]any)
	if len(tags) != 1 {
		t.Fatalf("tags: %v", out["tags"])
	}
	item, _ := tags[0].(map[string]any)
	if item["label"] != "first" {
		t.Fatalf("tag item: %v", tags[0])
	}

	// The rejected empty name surfaced the shared rule message.
	if len(driver.infos) != 1 || driver.infos[0] != validation.MsgRequired {
		t.Fatalf("infos: %v", driver.infos)
	}
}

func TestRun_DeclinedBranchesStayInactive(t *testing.T) {
	driver := &scriptDriver{
		t: t,
		inputs: map[string][]string{
			"Name *": {"Bare"},
			"Views":  {""},
		},
		confirms: map[string][]bool{},
		selects:  map[string]int{"Size": 0},
	}

	out := runFiller(t, driver)

	if out["name"] != "Bare" {
		t.Fatalf("name: %v", out["name"])
	}
	author, _ := out["author"].(map[string]any)
	if author["email"] != "" {
		t.Fatalf("declined branch gained data: %v", out["author"])
	}
	tags, _ := out["tags"].([]any)
	if len(tags) != 0 {
		t.Fatalf("declined array gained items: %v", out["tags"])
	}
}
