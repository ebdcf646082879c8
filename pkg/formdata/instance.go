package formdata

import (
	gojson "github.com/goccy/go-json"

	"github.com/goliatone/go-formedit/pkg/formpath"
	"github.com/goliatone/go-formedit/pkg/jsonschema"
	"github.com/goliatone/go-formedit/pkg/schema"
)

// baseInstanceMaxDepth bounds default synthesis on self-referential schemas.
const baseInstanceMaxDepth = 50

// BaseInstance produces the default data value for a schema node: "" for
// strings, 0 for numbers and integers, false for booleans, an empty slice for
// arrays, and recursive defaults for objects. A node's own default wins when
// present. Deterministic and side-effect free.
func BaseInstance(norm *jsonschema.Normalizer, node schema.Node) any {
	return baseInstance(norm, node, map[string]struct{}{}, 0)
}

func baseInstance(norm *jsonschema.Normalizer, node schema.Node, seen map[string]struct{}, depth int) any {
	if depth > baseInstanceMaxDepth {
		return nil
	}
	if norm != nil && node.Ref != "" {
		if _, cyclic := seen[node.Ref]; cyclic {
			return map[string]any{}
		}
		seen[node.Ref] = struct{}{}
		defer delete(seen, node.Ref)
		node = norm.Deref(node)
	}
	if node.Default != nil {
		return cloneValue(node.Default)
	}

	switch node.Type {
	case "string":
		return ""
	case "number", "integer":
		return float64(0)
	case "boolean":
		return false
	case "array":
		return []any{}
	default:
		if !node.IsObject() {
			return nil
		}
		out := make(map[string]any, len(node.Properties))
		for _, name := range node.PropertyNames() {
			out[name] = baseInstance(norm, node.Properties[name], seen, depth+1)
		}
		return out
	}
}

// DeepMerge overlays incoming onto base: scalars and arrays from incoming win
// outright, plain objects merge recursively, and keys present only in base are
// preserved. Neither argument is mutated.
func DeepMerge(base, incoming any) any {
	baseMap, baseOK := base.(map[string]any)
	incomingMap, incomingOK := incoming.(map[string]any)
	if !baseOK || !incomingOK {
		if incoming == nil {
			return cloneValue(base)
		}
		return cloneValue(incoming)
	}

	out := make(map[string]any, len(baseMap)+len(incomingMap))
	for key, value := range baseMap {
		out[key] = cloneValue(value)
	}
	for key, value := range incomingMap {
		if existing, ok := out[key]; ok {
			out[key] = DeepMerge(existing, value)
			continue
		}
		out[key] = cloneValue(value)
	}
	return out
}

// Get navigates a structural path, returning the value and a presence flag.
// Missing paths report false instead of panicking.
func Get(instance any, path formpath.Path) (any, bool) {
	current := instance
	for _, token := range path {
		if token.IsIndex() {
			list, ok := current.([]any)
			if !ok || token.Index() >= len(list) {
				return nil, false
			}
			current = list[token.Index()]
			continue
		}
		object, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = object[token.Key()]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Set writes value at path, creating intermediate objects and growing arrays
// as needed. It returns the (possibly replaced) root instance.
func Set(instance any, path formpath.Path, value any) any {
	if len(path) == 0 {
		return value
	}

	root := instance
	if _, ok := root.(map[string]any); !ok {
		if _, isList := root.([]any); !isList {
			root = map[string]any{}
		}
	}

	container := root
	for i, token := range path[:len(path)-1] {
		next := path[i+1]
		if token.IsIndex() {
			list, ok := container.([]any)
			if !ok {
				return root
			}
			list = growList(list, token.Index())
			if !containerMatches(list[token.Index()], next) {
				list[token.Index()] = emptyContainer(next)
			}
			// Growing may have reallocated; write the slice back upstream.
			root = Set(root, formpath.New(path[:i]...), list)
			container = list[token.Index()]
			continue
		}
		object, ok := container.(map[string]any)
		if !ok {
			return root
		}
		if !containerMatches(object[token.Key()], next) {
			object[token.Key()] = emptyContainer(next)
		}
		container = object[token.Key()]
	}

	last := path[len(path)-1]
	if last.IsIndex() {
		list, ok := container.([]any)
		if !ok {
			list = nil
		}
		list = growList(list, last.Index())
		list[last.Index()] = value
		return Set(root, path.Parent(), list)
	}
	object, ok := container.(map[string]any)
	if !ok {
		return root
	}
	object[last.Key()] = value
	return root
}

// PushItem appends item to the array at arrayPath, creating the array when
// absent, and returns the root instance.
func PushItem(instance any, arrayPath formpath.Path, item any) any {
	list, _ := Get(instance, arrayPath)
	typed, _ := list.([]any)
	return Set(instance, arrayPath, append(typed, item))
}

// RemoveItem deletes the item at index from the array at arrayPath. An
// out-of-range index is a no-op.
func RemoveItem(instance any, arrayPath formpath.Path, index int) any {
	list, ok := Get(instance, arrayPath)
	if !ok {
		return instance
	}
	typed, ok := list.([]any)
	if !ok || index < 0 || index >= len(typed) {
		return instance
	}
	next := make([]any, 0, len(typed)-1)
	next = append(next, typed[:index]...)
	next = append(next, typed[index+1:]...)
	return Set(instance, arrayPath, next)
}

// MoveItem moves the item at from to position to, shifting the items between
// them by exactly one slot. Equal or out-of-range indices are no-ops.
func MoveItem(instance any, arrayPath formpath.Path, from, to int) any {
	list, ok := Get(instance, arrayPath)
	if !ok {
		return instance
	}
	typed, ok := list.([]any)
	if !ok || from == to || from < 0 || to < 0 || from >= len(typed) || to >= len(typed) {
		return instance
	}
	next := make([]any, len(typed))
	copy(next, typed)
	moved := next[from]
	if from < to {
		copy(next[from:], next[from+1:to+1])
	} else {
		copy(next[to+1:], next[to:from])
	}
	next[to] = moved
	return Set(instance, arrayPath, next)
}

// SchemaAt walks the schema tree in parallel with the path structure: object
// keys through properties, array indices through items. Returns false when
// the path has no governing schema.
func SchemaAt(norm *jsonschema.Normalizer, root schema.Node, path formpath.Path) (schema.Node, bool) {
	current := root
	if norm != nil {
		current = norm.Deref(current)
	}
	for _, token := range path {
		if token.IsIndex() {
			if current.Items == nil {
				return schema.Node{}, false
			}
			current = *current.Items
		} else {
			child, ok := current.Property(token.Key())
			if !ok {
				return schema.Node{}, false
			}
			current = child
		}
		if norm != nil {
			current = norm.Deref(current)
		}
	}
	return current, true
}

// DecodeRaw parses raw-mode JSON input. Failure is reported as a boolean so
// the caller can keep the prior instance untouched.
func DecodeRaw(raw []byte) (any, bool) {
	var out any
	if err := gojson.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	if _, ok := out.(map[string]any); !ok {
		return nil, false
	}
	return out, true
}

// Encode serializes an instance for host callbacks and snapshots.
func Encode(instance any) ([]byte, error) {
	return gojson.Marshal(instance)
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, item := range typed {
			out[idx] = cloneValue(item)
		}
		return out
	default:
		return typed
	}
}

func growList(list []any, index int) []any {
	for len(list) <= index {
		list = append(list, nil)
	}
	return list
}

func containerMatches(value any, next formpath.Token) bool {
	if next.IsIndex() {
		_, ok := value.([]any)
		return ok
	}
	_, ok := value.(map[string]any)
	return ok
}

func emptyContainer(next formpath.Token) any {
	if next.IsIndex() {
		return []any{}
	}
	return map[string]any{}
}
