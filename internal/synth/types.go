package synth

import (
	"github.com/goliatone/go-formedit/pkg/formpath"
	"github.com/goliatone/go-formedit/pkg/schema"
)

// Group is one addressable synthesized unit: an object group holding primitive
// fields, a title-only section, an array group, or an array-item group.
// Groups are created during synthesis and discarded wholesale on every
// rebuild; identity across rebuilds is the ID, never the pointer.
type Group struct {
	ID        string
	Path      formpath.Path
	Title     string
	Level     int
	Section   bool
	Array     bool
	ArrayItem bool
	ItemIndex int
	Fields    []Field
	Children  []*Group
}

// Field describes a single rendered control: one per primitive leaf and one
// per array-of-objects node (rendered as a composite, not a single input).
type Field struct {
	Path     formpath.Path
	GroupID  string
	Schema   schema.Node
	Label    string
	Required bool
	Array    bool
}

// Placeholder marks an optional structural branch that is not activated. The
// branch's groups and fields do not exist until activation materializes them.
type Placeholder struct {
	Path     formpath.Path
	ParentID string
	Title    string
	Level    int
	Array    bool
}

// Activation reports whether an optional structural path is materialized.
type Activation interface {
	Active(path formpath.Path) bool
}

// ActivationFunc adapts a function to the Activation interface.
type ActivationFunc func(path formpath.Path) bool

// Active implements Activation.
func (f ActivationFunc) Active(path formpath.Path) bool { return f(path) }

// Result is the full descriptor tree for one rebuild. Consumers treat it as
// immutable; the next rebuild replaces it entirely.
type Result struct {
	Root         *Group
	Groups       map[string]*Group
	Fields       map[string]Field
	Placeholders []Placeholder
}

// Group looks up a group descriptor by id.
func (r *Result) Group(id string) (*Group, bool) {
	if r == nil || r.Groups == nil {
		return nil, false
	}
	group, ok := r.Groups[id]
	return group, ok
}

// Field looks up a field descriptor by its serialized path.
func (r *Result) Field(path string) (Field, bool) {
	if r == nil || r.Fields == nil {
		return Field{}, false
	}
	field, ok := r.Fields[path]
	return field, ok
}

// Walk visits every group depth-first starting at the root.
func (r *Result) Walk(visit func(*Group)) {
	if r == nil || r.Root == nil {
		return
	}
	var walk func(*Group)
	walk = func(group *Group) {
		visit(group)
		for _, child := range group.Children {
			walk(child)
		}
	}
	walk(r.Root)
}
