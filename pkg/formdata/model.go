package formdata

import (
	"github.com/goliatone/go-formedit/pkg/formpath"
	"github.com/goliatone/go-formedit/pkg/jsonschema"
	"github.com/goliatone/go-formedit/pkg/schema"
)

// Model owns the working data instance. Every other engine component reads
// the instance and mutates it only through this API, so there is exactly one
// mutable source of truth per engine.
type Model struct {
	norm *jsonschema.Normalizer
	root schema.Node
	data any
}

// New builds a Model seeded with the schema's base instance.
func New(norm *jsonschema.Normalizer) *Model {
	root := schema.Node{}
	if norm != nil {
		root = norm.Root()
	}
	return &Model{norm: norm, root: root, data: BaseInstance(norm, root)}
}

// RootSchema returns the normalized root schema node.
func (m *Model) RootSchema() schema.Node { return m.root }

// Normalizer exposes the schema normalizer for components that deref lazily.
func (m *Model) Normalizer() *jsonschema.Normalizer { return m.norm }

// Data returns the live instance. Callers outside the engine should use
// Snapshot instead.
func (m *Model) Data() any { return m.data }

// Snapshot returns a deep copy of the instance safe to hand across the mount
// boundary.
func (m *Model) Snapshot() any { return cloneValue(m.data) }

// Load merges incoming data over a fresh base instance so partial or foreign
// payloads never drop required structural keys.
func (m *Model) Load(incoming any) {
	m.data = DeepMerge(BaseInstance(m.norm, m.root), incoming)
}

// Reset reinitializes the instance from schema defaults.
func (m *Model) Reset() {
	m.data = BaseInstance(m.norm, m.root)
}

// ReplaceRaw swaps the instance for parsed raw-mode JSON. On parse failure it
// reports false and leaves the prior instance untouched.
func (m *Model) ReplaceRaw(raw []byte) bool {
	parsed, ok := DecodeRaw(raw)
	if !ok {
		return false
	}
	m.Load(parsed)
	return true
}

// Get reads the value at path.
func (m *Model) Get(path formpath.Path) (any, bool) {
	return Get(m.data, path)
}

// Set writes the value at path, creating intermediate containers.
func (m *Model) Set(path formpath.Path, value any) {
	m.data = Set(m.data, path, value)
}

// SchemaAt resolves the schema node governing path.
func (m *Model) SchemaAt(path formpath.Path) (schema.Node, bool) {
	return SchemaAt(m.norm, m.root, path)
}

// BaseItem builds a default item instance for the array at arrayPath using
// the same base-instance synthesis as the initial form data.
func (m *Model) BaseItem(arrayPath formpath.Path) any {
	node, ok := m.SchemaAt(arrayPath)
	if !ok || node.Items == nil {
		return map[string]any{}
	}
	item := *node.Items
	if m.norm != nil {
		item = m.norm.Deref(item)
	}
	return BaseInstance(m.norm, item)
}

// Push appends a default item to the array at arrayPath and returns its index.
func (m *Model) Push(arrayPath formpath.Path) int {
	item := m.BaseItem(arrayPath)
	m.data = PushItem(m.data, arrayPath, item)
	list, _ := Get(m.data, arrayPath)
	typed, _ := list.([]any)
	return len(typed) - 1
}

// Remove deletes the item at index; out-of-range indices report false.
func (m *Model) Remove(arrayPath formpath.Path, index int) bool {
	list, ok := Get(m.data, arrayPath)
	if !ok {
		return false
	}
	typed, ok := list.([]any)
	if !ok || index < 0 || index >= len(typed) {
		return false
	}
	m.data = RemoveItem(m.data, arrayPath, index)
	return true
}

// Move reorders the array item at from to position to; equal or out-of-range
// indices report false without touching the instance.
func (m *Model) Move(arrayPath formpath.Path, from, to int) bool {
	list, ok := Get(m.data, arrayPath)
	if !ok {
		return false
	}
	typed, ok := list.([]any)
	if !ok || from == to || from < 0 || to < 0 || from >= len(typed) || to >= len(typed) {
		return false
	}
	m.data = MoveItem(m.data, arrayPath, from, to)
	return true
}

// Len returns the current length of the array at arrayPath, zero when absent.
func (m *Model) Len(arrayPath formpath.Path) int {
	list, ok := Get(m.data, arrayPath)
	if !ok {
		return 0
	}
	typed, _ := list.([]any)
	return len(typed)
}
