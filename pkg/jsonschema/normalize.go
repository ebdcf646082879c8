package jsonschema

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formedit/pkg/schema"
)

// Normalizer converts raw schema fragments into canonical nodes and resolves
// in-document $ref pointers lazily. Normalization never fails: malformed
// keywords are dropped and unresolvable refs leave the fragment unchanged, so
// a broken branch degrades to an empty render instead of an error.
//
// Resolution is memoized by pointer string; resolving the same fragment twice
// yields structurally equal nodes.
type Normalizer struct {
	payload Payload
	memo    map[string]schema.Node
}

// NewNormalizer parses the document payload and constructs a Normalizer.
func NewNormalizer(doc schema.Document) (*Normalizer, error) {
	payload, err := Parse(doc.Raw())
	if err != nil {
		return nil, err
	}
	return NewNormalizerFromPayload(payload), nil
}

// NewNormalizerFromPayload wraps an already parsed payload.
func NewNormalizerFromPayload(payload Payload) *Normalizer {
	if payload.Data == nil {
		payload.Data = map[string]any{}
	}
	return &Normalizer{payload: payload, memo: make(map[string]schema.Node)}
}

// NewNormalizerFromMap wraps a raw schema object that has no captured key
// order. Property iteration falls back to sorted names.
func NewNormalizerFromMap(data map[string]any) *Normalizer {
	return NewNormalizerFromPayload(Payload{Data: data})
}

// Root returns the normalized root schema node.
func (n *Normalizer) Root() schema.Node {
	return n.Normalize(n.payload.Data, "#")
}

// Normalize converts a raw fragment into a canonical node. The fragment's own
// $ref is recorded but not followed; allOf members are merged by shallow
// property union. pointer locates the fragment in the source document and may
// be empty when unknown.
func (n *Normalizer) Normalize(raw any, pointer string) schema.Node {
	if pointer != "" {
		if cached, ok := n.memo[pointer]; ok {
			return cached
		}
	}
	node := n.normalize(raw, pointer, map[string]struct{}{})
	if pointer != "" {
		n.memo[pointer] = node
	}
	return node
}

// Deref resolves a node's $ref one level, returning the effective node. The
// result keeps the originating ref string so callers can track identity for
// cycle protection. Unresolvable refs return the node unchanged.
func (n *Normalizer) Deref(node schema.Node) schema.Node {
	if node.Ref == "" {
		return node
	}
	target, ok := n.ResolvePointer(node.Ref)
	if !ok {
		return node
	}
	resolved := n.Normalize(target, node.Ref)
	// Local annotations on the referencing site win over the target's.
	if node.Title != "" {
		resolved.Title = node.Title
	}
	if node.Description != "" {
		resolved.Description = node.Description
	}
	if node.Default != nil {
		resolved.Default = node.Default
	}
	resolved.Ref = node.Ref
	return resolved
}

// ResolvePointer walks an in-document JSON pointer ("#/$defs/address") and
// returns the raw fragment it addresses.
func (n *Normalizer) ResolvePointer(ref string) (any, bool) {
	trimmed := strings.TrimSpace(ref)
	trimmed = strings.TrimPrefix(trimmed, "#")
	if trimmed == "" {
		return n.payload.Data, true
	}
	if !strings.HasPrefix(trimmed, "/") {
		return nil, false
	}

	var current any = n.payload.Data
	for _, part := range strings.Split(trimmed, "/")[1:] {
		segment := unescapePointerSegment(part)
		switch typed := current.(type) {
		case map[string]any:
			value, ok := typed[segment]
			if !ok {
				return nil, false
			}
			current = value
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(typed) {
				return nil, false
			}
			current = typed[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

func (n *Normalizer) normalize(raw any, pointer string, seen map[string]struct{}) schema.Node {
	payload, ok := raw.(map[string]any)
	if !ok {
		return schema.Node{}
	}

	out := schema.Node{
		Ref:         strings.TrimSpace(readString(payload, "$ref")),
		Type:        strings.TrimSpace(readString(payload, "type")),
		Title:       strings.TrimSpace(readString(payload, "title")),
		Description: strings.TrimSpace(readString(payload, "description")),
		Format:      strings.TrimSpace(readString(payload, "format")),
		Default:     payload["default"],
		Pattern:     readString(payload, "pattern"),
		Extensions:  extractExtensions(payload),
	}

	if list, ok := payload["enum"].([]any); ok && len(list) > 0 {
		out.Enum = append([]any(nil), list...)
	}
	if list, ok := payload["required"].([]any); ok {
		for _, item := range list {
			if str, ok := item.(string); ok && strings.TrimSpace(str) != "" {
				out.Required = append(out.Required, str)
			}
		}
	}
	if value, ok := toFloat(payload["minimum"]); ok {
		out.Minimum = &value
	}
	if value, ok := toFloat(payload["maximum"]); ok {
		out.Maximum = &value
	}
	if value, ok := toInt(payload["minLength"]); ok {
		out.MinLength = &value
	}
	if value, ok := toInt(payload["maxLength"]); ok {
		out.MaxLength = &value
	}

	if props, ok := payload["properties"].(map[string]any); ok && len(props) > 0 {
		out.Properties = make(map[string]schema.Node, len(props))
		for key, child := range props {
			childPointer := ""
			if pointer != "" {
				childPointer = joinPointer(joinPointer(pointer, "properties"), key)
			}
			out.Properties[key] = n.normalize(child, childPointer, seen)
		}
		out.Order = n.propertyOrder(pointer, props)
	}

	if items, ok := payload["items"].(map[string]any); ok {
		itemsPointer := ""
		if pointer != "" {
			itemsPointer = joinPointer(pointer, "items")
		}
		converted := n.normalize(items, itemsPointer, seen)
		out.Items = &converted
	}

	if members, ok := payload["allOf"].([]any); ok {
		for idx, member := range members {
			n.mergeAllOfMember(&out, member, pointer, idx, seen)
		}
	}

	return out
}

// mergeAllOfMember folds one allOf entry into the target node by shallow
// property union. Refs inside allOf resolve eagerly since the union cannot be
// deferred; the seen set stops self-referential chains.
func (n *Normalizer) mergeAllOfMember(target *schema.Node, member any, pointer string, idx int, seen map[string]struct{}) {
	payload, ok := member.(map[string]any)
	if !ok {
		return
	}
	memberPointer := ""
	if pointer != "" {
		memberPointer = joinPointer(joinPointer(pointer, "allOf"), strconv.Itoa(idx))
	}

	if ref := strings.TrimSpace(readString(payload, "$ref")); ref != "" {
		if _, cyclic := seen[ref]; cyclic {
			return
		}
		resolved, ok := n.ResolvePointer(ref)
		if !ok {
			return
		}
		seen[ref] = struct{}{}
		defer delete(seen, ref)
		payload, ok = resolved.(map[string]any)
		if !ok {
			return
		}
		memberPointer = ref
	}

	node := n.normalize(payload, memberPointer, seen)

	if len(node.Properties) > 0 && target.Properties == nil {
		target.Properties = make(map[string]schema.Node, len(node.Properties))
	}
	for _, name := range node.PropertyNames() {
		if _, exists := target.Properties[name]; exists {
			continue
		}
		target.Properties[name] = node.Properties[name]
		target.Order = append(target.Order, name)
	}
	for _, name := range node.Required {
		if !target.IsRequired(name) {
			target.Required = append(target.Required, name)
		}
	}
	if target.Type == "" {
		target.Type = node.Type
	}
	if target.Title == "" {
		target.Title = node.Title
	}
	if target.Description == "" {
		target.Description = node.Description
	}
	if target.Items == nil {
		target.Items = node.Items
	}
}

func (n *Normalizer) propertyOrder(pointer string, props map[string]any) []string {
	if pointer == "" || n.payload.Order == nil {
		return nil
	}
	ordered, ok := n.payload.Order[joinPointer(pointer, "properties")]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(ordered))
	for _, name := range ordered {
		if _, present := props[name]; present {
			out = append(out, name)
		}
	}
	return out
}

func readString(payload map[string]any, key string) string {
	value, _ := payload[key].(string)
	return value
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

func isVendorExtension(key string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(key)), "x-")
}

func extractExtensions(payload map[string]any) map[string]any {
	var extensions map[string]any
	for key, value := range payload {
		if !isVendorExtension(key) {
			continue
		}
		if extensions == nil {
			extensions = make(map[string]any)
		}
		extensions[key] = value
	}
	return extensions
}
