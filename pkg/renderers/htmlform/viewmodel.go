package htmlform

import (
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formedit/pkg/formdata"
	"github.com/goliatone/go-formedit/pkg/navigation"
	"github.com/goliatone/go-formedit/pkg/render"
	"github.com/goliatone/go-formedit/pkg/synth"
)

// sanitizer strips all markup from schema-supplied titles and descriptions
// before they reach templates.
var sanitizer = bluemonday.StrictPolicy()

type groupVM struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Level     int       `json:"level"`
	Section   bool      `json:"section"`
	Array     bool      `json:"array"`
	ArrayItem bool      `json:"arrayItem"`
	ItemIndex int       `json:"itemIndex"`
	HasError  bool      `json:"hasError"`
	Fields    []fieldVM `json:"fields"`
}

type fieldVM struct {
	Path        string     `json:"path"`
	InputID     string     `json:"inputId"`
	Label       string     `json:"label"`
	Control     string     `json:"control"`
	Value       any        `json:"value"`
	Checked     bool       `json:"checked"`
	Required    bool       `json:"required"`
	Error       string     `json:"error"`
	Description string     `json:"description"`
	Options     []optionVM `json:"options"`
}

type optionVM struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

type outlineVM struct {
	Kind   string `json:"kind"`
	ID     string `json:"id"`
	Path   string `json:"path"`
	Title  string `json:"title"`
	Level  int    `json:"level"`
	Active bool   `json:"active"`
}

type crumbVM struct {
	Label   string `json:"label"`
	GroupID string `json:"groupId"`
}

type themeVM struct {
	Name         string `json:"name"`
	Variant      string `json:"variant"`
	CSSVarsStyle string `json:"cssVarsStyle"`
	Stylesheet   string `json:"stylesheet"`
}

func buildContext(view render.View, options render.Options) map[string]any {
	groups := make([]groupVM, 0)
	if view.Result != nil {
		view.Result.Walk(func(group *synth.Group) {
			if group == view.Result.Root && len(group.Fields) == 0 {
				return
			}
			groups = append(groups, buildGroup(view, group))
		})
	}

	outline := make([]outlineVM, 0, len(view.Outline))
	for _, entry := range view.Outline {
		outline = append(outline, outlineVM{
			Kind:   entryKind(entry.Kind),
			ID:     entry.ID,
			Path:   entry.Path.String(),
			Title:  sanitize(entry.Title),
			Level:  entry.Level,
			Active: entry.ID != "" && entry.ID == view.ActiveGroup,
		})
	}

	crumbs := make([]crumbVM, 0, len(view.Breadcrumbs))
	for _, crumb := range view.Breadcrumbs {
		crumbs = append(crumbs, crumbVM{Label: sanitize(crumb.Label), GroupID: crumb.GroupID})
	}

	method := strings.ToUpper(strings.TrimSpace(options.Method))
	if method == "" {
		method = "POST"
	}
	browserMethod := method
	methodOverride := ""
	if method != "GET" && method != "POST" {
		browserMethod = "POST"
		methodOverride = method
	}

	ctx := map[string]any{
		"title":          sanitize(view.Title),
		"groups":         groups,
		"outline":        outline,
		"breadcrumbs":    crumbs,
		"action":         options.Action,
		"method":         browserMethod,
		"methodOverride": methodOverride,
		"theme":          buildTheme(options.Theme),
	}
	for key, value := range options.Extra {
		ctx[key] = value
	}
	return ctx
}

func buildGroup(view render.View, group *synth.Group) groupVM {
	vm := groupVM{
		ID:        group.ID,
		Title:     sanitize(group.Title),
		Level:     group.Level,
		Section:   group.Section,
		Array:     group.Array,
		ArrayItem: group.ArrayItem,
		ItemIndex: group.ItemIndex,
	}
	for _, field := range group.Fields {
		if field.Array {
			// Array composites render through their item groups, not as a
			// single control.
			continue
		}
		fieldVM := buildField(view, field)
		if fieldVM.Error != "" {
			vm.HasError = true
		}
		vm.Fields = append(vm.Fields, fieldVM)
	}
	return vm
}

func buildField(view render.View, field synth.Field) fieldVM {
	key := field.Path.String()
	value, _ := formdata.Get(view.Data, field.Path)
	vm := fieldVM{
		Path:        key,
		InputID:     "form-field-" + strings.NewReplacer(".", "-", "[", "-", "]", "").Replace(key),
		Label:       sanitize(field.Label),
		Value:       value,
		Required:    field.Required,
		Error:       view.Errors[key],
		Description: sanitize(field.Schema.Description),
	}
	vm.Control = controlFor(field)
	if vm.Control == "checkbox" {
		checked, _ := value.(bool)
		vm.Checked = checked
	}
	if vm.Control == "select" {
		current := fmt.Sprintf("%v", value)
		for _, raw := range field.Schema.Enum {
			text := fmt.Sprintf("%v", raw)
			vm.Options = append(vm.Options, optionVM{Value: text, Selected: text == current})
		}
	}
	return vm
}

func controlFor(field synth.Field) string {
	node := field.Schema
	if len(node.Enum) > 0 {
		return "select"
	}
	switch node.Type {
	case "boolean":
		return "checkbox"
	case "integer", "number":
		return "number"
	}
	switch strings.ToLower(node.Format) {
	case "email":
		return "email"
	case "uri", "url":
		return "url"
	case "textarea", "multiline":
		return "textarea"
	}
	return "text"
}

func entryKind(kind navigation.EntryKind) string {
	switch kind {
	case navigation.KindSection:
		return "section"
	case navigation.KindItem:
		return "item"
	case navigation.KindAddBranch:
		return "add-branch"
	case navigation.KindAddItem:
		return "add-item"
	default:
		return "group"
	}
}

func buildTheme(cfg *theme.RendererConfig) themeVM {
	if cfg == nil {
		return themeVM{}
	}
	vm := themeVM{
		Name:         cfg.Theme,
		Variant:      cfg.Variant,
		CSSVarsStyle: cssVarsStyle(cfg.CSSVars),
	}
	if cfg.AssetURL != nil {
		vm.Stylesheet = cfg.AssetURL("formedit.stylesheet")
	}
	return vm
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var out strings.Builder
	for _, key := range keys {
		out.WriteString(key)
		out.WriteString(": ")
		out.WriteString(vars[key])
		out.WriteString("; ")
	}
	return strings.TrimSpace(out.String())
}

func sanitize(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(sanitizer.Sanitize(text))
}
