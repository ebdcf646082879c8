package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formedit/pkg/engine"
	"github.com/goliatone/go-formedit/pkg/synth"
)

// Option configures a Filler.
type Option func(*Filler)

// WithDriver replaces the prompt driver. Used by tests to script a session.
func WithDriver(driver PromptDriver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// Filler walks the synthesized descriptor tree and prompts for every field,
// driving the engine's command layer for optional branches and array items.
// The engine should run with the Immediate scheduler so each command's
// rebuild lands before the next prompt.
type Filler struct {
	driver PromptDriver
}

// New constructs a Filler with the survey-backed driver by default.
func New(options ...Option) *Filler {
	f := &Filler{driver: newSurveyDriver()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	return f
}

// Name identifies the filler in renderer listings.
func (f *Filler) Name() string { return "tui" }

// ContentType reports the serialization of the Run output.
func (f *Filler) ContentType() string { return "application/json" }

// Run prompts through the whole form and returns the final data instance as
// JSON. Tree-changing answers (branch activation, item creation) restart the
// walk against the rebuilt tree; answered prompts are not repeated.
func (f *Filler) Run(ctx context.Context, eng *engine.Engine) ([]byte, error) {
	if eng == nil {
		return nil, errors.New("tui: engine is required")
	}
	asked := make(map[string]bool)
	for {
		changed, err := f.pass(ctx, eng, asked)
		if err != nil {
			return nil, err
		}
		if !changed {
			break
		}
	}
	return eng.EncodeData()
}

// pass walks the current tree once. It reports true when a command changed
// the tree, so the caller restarts against the fresh synthesis.
func (f *Filler) pass(ctx context.Context, eng *engine.Engine, asked map[string]bool) (bool, error) {
	result := eng.Result()
	if result == nil || result.Root == nil {
		return false, nil
	}

	var walkErr error
	changed := false
	var walk func(group *synth.Group) bool
	walk = func(group *synth.Group) bool {
		for _, field := range group.Fields {
			if field.Array {
				continue
			}
			key := "field:" + field.Path.String()
			if asked[key] {
				continue
			}
			asked[key] = true
			if err := f.promptField(ctx, eng, field); err != nil {
				walkErr = err
				return true
			}
		}
		for _, child := range group.Children {
			if walk(child) {
				return true
			}
		}
		for _, placeholder := range placeholdersFor(result, group.ID) {
			key := "branch:" + placeholder.Path.String()
			if asked[key] {
				continue
			}
			asked[key] = true
			yes, err := f.driver.Confirm(ctx, ConfirmConfig{
				Message: fmt.Sprintf("Add %s?", placeholder.Title),
			})
			if err != nil {
				walkErr = err
				return true
			}
			if yes && eng.ActivateOptional(placeholder.Path) {
				changed = true
				return true
			}
		}
		if group.Array {
			key := fmt.Sprintf("additem:%s:%d", group.ID, len(group.Children))
			if !asked[key] {
				asked[key] = true
				yes, err := f.driver.Confirm(ctx, ConfirmConfig{
					Message: fmt.Sprintf("Add another item to %s?", group.Title),
				})
				if err != nil {
					walkErr = err
					return true
				}
				if yes {
					if index := eng.AddArrayItem(group.Path); index >= 0 {
						changed = true
						return true
					}
				}
			}
		}
		return false
	}
	walk(result.Root)
	return changed, walkErr
}

// promptField asks for one field value, re-prompting while the engine's
// validator rejects the answer.
func (f *Filler) promptField(ctx context.Context, eng *engine.Engine, field synth.Field) error {
	for {
		value, err := f.askValue(ctx, eng, field)
		if err != nil {
			return err
		}
		msg := eng.SetValue(field.Path, value)
		if msg == "" {
			return nil
		}
		if err := f.driver.Info(ctx, msg); err != nil {
			return err
		}
	}
}

func (f *Filler) askValue(ctx context.Context, eng *engine.Engine, field synth.Field) (any, error) {
	node := field.Schema
	label := field.Label
	if field.Required {
		label += " *"
	}
	current, _ := eng.Value(field.Path)

	if len(node.Enum) > 0 {
		options := make([]string, 0, len(node.Enum))
		defaultIndex := 0
		for i, raw := range node.Enum {
			text := fmt.Sprintf("%v", raw)
			options = append(options, text)
			if text == fmt.Sprintf("%v", current) {
				defaultIndex = i
			}
		}
		index, err := f.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      options,
			DefaultIndex: defaultIndex,
			Help:         node.Description,
		})
		if err != nil {
			return nil, err
		}
		if index < 0 || index >= len(node.Enum) {
			return nil, nil
		}
		return node.Enum[index], nil
	}

	switch node.Type {
	case "boolean":
		checked, _ := current.(bool)
		return f.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: checked, Help: node.Description})
	case "integer", "number":
		text, err := f.driver.Input(ctx, InputConfig{
			Message: label,
			Default: numberDefault(current),
			Help:    node.Description,
		})
		if err != nil {
			return nil, err
		}
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return "", nil
		}
		if number, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return number, nil
		}
		// Non-numeric input flows into SetValue so the shared rule text
		// surfaces instead of an ad hoc prompt error.
		return trimmed, nil
	}

	if strings.EqualFold(node.Format, "textarea") || strings.EqualFold(node.Format, "multiline") {
		text, _ := current.(string)
		return f.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: text, Help: node.Description})
	}

	text, _ := current.(string)
	return f.driver.Input(ctx, InputConfig{Message: label, Default: text, Help: node.Description})
}

func numberDefault(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case float64:
		if typed == 0 {
			return ""
		}
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		if typed == 0 {
			return ""
		}
		return strconv.Itoa(typed)
	default:
		return fmt.Sprintf("%v", typed)
	}
}

func placeholdersFor(result *synth.Result, parentID string) []synth.Placeholder {
	var out []synth.Placeholder
	for _, placeholder := range result.Placeholders {
		if placeholder.ParentID == parentID {
			out = append(out, placeholder)
		}
	}
	return out
}
