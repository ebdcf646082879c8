package synth

import (
	"strconv"

	"github.com/goliatone/go-formedit/pkg/formdata"
	"github.com/goliatone/go-formedit/pkg/formpath"
	"github.com/goliatone/go-formedit/pkg/jsonschema"
	"github.com/goliatone/go-formedit/pkg/schema"
)

// MaxDepth caps recursion so pathological or self-referential schemas
// terminate by truncating the offending branch.
const MaxDepth = 50

// Options configures a Synthesizer.
type Options struct {
	// Labeler converts property names into display labels when a schema node
	// carries no title. Defaults to DefaultLabeler.
	Labeler func(string) string
}

// Synthesizer walks a (schema, data, activation) triple and produces the
// descriptor tree the navigation and rendering layers consume. Synthesis is a
// pure read: it never mutates the data instance or the activation set.
type Synthesizer struct {
	norm    *jsonschema.Normalizer
	labeler func(string) string
}

// New constructs a Synthesizer bound to a schema normalizer.
func New(norm *jsonschema.Normalizer, options Options) *Synthesizer {
	labeler := options.Labeler
	if labeler == nil {
		labeler = DefaultLabeler
	}
	return &Synthesizer{norm: norm, labeler: labeler}
}

// Synthesize rebuilds the full descriptor tree from the current schema, data
// instance, and activation state. The previous tree is never patched; callers
// swap results wholesale.
func (s *Synthesizer) Synthesize(root schema.Node, data any, activation Activation) *Result {
	result := &Result{
		Groups: make(map[string]*Group),
		Fields: make(map[string]Field),
	}
	if activation == nil {
		activation = ActivationFunc(func(formpath.Path) bool { return false })
	}

	w := &walker{s: s, data: data, activation: activation, result: result}
	effective := root
	if s.norm != nil {
		effective = s.norm.Deref(effective)
	}
	title := effective.Title
	if title == "" {
		title = "Form"
	}
	result.Root = w.object(effective, formpath.Root(), title, "", 0, 0, map[string]struct{}{})
	return result
}

type walker struct {
	s          *Synthesizer
	data       any
	activation Activation
	result     *Result
}

// object synthesizes the group (or title-only section) for one object schema
// node. It returns nil when the node contributes nothing renderable.
func (w *walker) object(node schema.Node, path formpath.Path, title, idOverride string, level, depth int, seen map[string]struct{}) *Group {
	if depth >= MaxDepth {
		return nil
	}
	if !node.IsObject() {
		return nil
	}

	type structuralChild struct {
		name  string
		node  schema.Node
		array bool
	}

	var primitives []string
	var structural []structuralChild
	effectiveChildren := make(map[string]schema.Node, len(node.Properties))

	for _, name := range node.PropertyNames() {
		child := node.Properties[name]
		effective := child
		if w.s.norm != nil {
			effective = w.s.norm.Deref(effective)
		}
		effectiveChildren[name] = effective
		switch {
		case effective.IsArrayOfObjects():
			structural = append(structural, structuralChild{name: name, node: effective, array: true})
		case effective.IsObject():
			structural = append(structural, structuralChild{name: name, node: effective})
		case effective.IsPrimitive():
			primitives = append(primitives, name)
		default:
			// Un-typed node with no recognizable shape renders nothing.
		}
	}

	if len(primitives) == 0 && len(structural) == 0 {
		return nil
	}

	group := &Group{
		Path:    path,
		Title:   title,
		Level:   level,
		Section: len(primitives) == 0,
	}
	switch {
	case idOverride != "":
		group.ID = idOverride
	case group.Section:
		group.ID = formpath.SectionID(path)
	default:
		group.ID = formpath.GroupID(path)
	}

	for _, name := range primitives {
		child := effectiveChildren[name]
		fieldPath := path.Child(name)
		field := Field{
			Path:     fieldPath,
			GroupID:  group.ID,
			Schema:   child,
			Label:    w.label(name, child),
			Required: node.IsRequired(name),
		}
		group.Fields = append(group.Fields, field)
		w.result.Fields[fieldPath.String()] = field
	}

	for _, child := range structural {
		childPath := path.Child(child.name)
		childTitle := w.label(child.name, child.node)
		optional := !node.IsRequired(child.name)

		if optional && !w.activation.Active(childPath) {
			w.result.Placeholders = append(w.result.Placeholders, Placeholder{
				Path:     childPath,
				ParentID: group.ID,
				Title:    childTitle,
				Level:    level + 1,
				Array:    child.array,
			})
			continue
		}

		if child.array {
			if arrayGroup := w.array(child.node, childPath, childTitle, !optional, level+1, depth+1, seen); arrayGroup != nil {
				group.Children = append(group.Children, arrayGroup)
			}
			continue
		}

		ref := child.node.Ref
		if ref != "" {
			if _, cyclic := seen[ref]; cyclic {
				continue
			}
			seen[ref] = struct{}{}
		}
		childGroup := w.object(child.node, childPath, childTitle, "", level+1, depth+1, seen)
		if ref != "" {
			delete(seen, ref)
		}
		if childGroup != nil {
			group.Children = append(group.Children, childGroup)
		}
	}

	if len(group.Fields) == 0 && len(group.Children) == 0 && !w.hasPlaceholderChild(group.ID) {
		return nil
	}

	w.result.Groups[group.ID] = group
	return group
}

// array synthesizes the parent group for an array-of-objects node plus one
// item group per existing data item. Item identity is recomputed from the
// current index on every rebuild, so removals renumber contiguously.
func (w *walker) array(node schema.Node, path formpath.Path, title string, required bool, level, depth int, seen map[string]struct{}) *Group {
	if depth >= MaxDepth || node.Items == nil {
		return nil
	}

	group := &Group{
		ID:    formpath.GroupID(path),
		Path:  path,
		Title: title,
		Level: level,
		Array: true,
	}

	field := Field{
		Path:     path,
		GroupID:  group.ID,
		Schema:   node,
		Label:    title,
		Required: required,
		Array:    true,
	}
	w.result.Fields[path.String()] = field
	group.Fields = append(group.Fields, field)

	itemSchema := *node.Items
	if w.s.norm != nil {
		itemSchema = w.s.norm.Deref(itemSchema)
	}

	items, _ := formdata.Get(w.data, path)
	list, _ := items.([]any)
	for idx := range list {
		ref := itemSchema.Ref
		if ref != "" {
			if _, cyclic := seen[ref]; cyclic {
				break
			}
			seen[ref] = struct{}{}
		}
		itemPath := path.Item(idx)
		itemTitle := w.itemTitle(itemSchema, title, idx)
		itemGroup := w.object(itemSchema, itemPath, itemTitle, formpath.ItemID(group.ID, idx), level+1, depth+1, seen)
		if ref != "" {
			delete(seen, ref)
		}
		if itemGroup == nil {
			continue
		}
		itemGroup.ArrayItem = true
		itemGroup.ItemIndex = idx
		group.Children = append(group.Children, itemGroup)
	}

	w.result.Groups[group.ID] = group
	return group
}

func (w *walker) label(name string, node schema.Node) string {
	if node.Title != "" {
		return node.Title
	}
	return w.s.labeler(name)
}

func (w *walker) itemTitle(itemSchema schema.Node, arrayTitle string, index int) string {
	base := itemSchema.Title
	if base == "" {
		base = arrayTitle
	}
	return base + " " + strconv.Itoa(index+1)
}

func (w *walker) hasPlaceholderChild(groupID string) bool {
	for _, placeholder := range w.result.Placeholders {
		if placeholder.ParentID == groupID {
			return true
		}
	}
	return false
}
