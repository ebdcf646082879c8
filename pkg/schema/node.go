package schema

import "sort"

// Node is the canonical schema fragment consumed by the synthesis engine. A
// Node may carry an unresolved Ref; callers deref lazily through a normalizer
// so untouched branches never pay resolution cost.
type Node struct {
	Ref         string            `json:"$ref,omitempty"`
	Type        string            `json:"type,omitempty"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Format      string            `json:"format,omitempty"`
	Default     any               `json:"default,omitempty"`
	Enum        []any             `json:"enum,omitempty"`
	Required    []string          `json:"required,omitempty"`
	Properties  map[string]Node   `json:"properties,omitempty"`
	Order       []string          `json:"order,omitempty"`
	Items       *Node             `json:"items,omitempty"`
	Minimum     *float64          `json:"minimum,omitempty"`
	Maximum     *float64          `json:"maximum,omitempty"`
	MinLength   *int              `json:"minLength,omitempty"`
	MaxLength   *int              `json:"maxLength,omitempty"`
	Pattern     string            `json:"pattern,omitempty"`
	Extensions  map[string]any    `json:"extensions,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// IsZero reports whether the node carries no schema information at all.
// Synthesis renders nothing for zero nodes instead of failing.
func (n Node) IsZero() bool {
	return n.Ref == "" && n.Type == "" && len(n.Properties) == 0 && n.Items == nil &&
		len(n.Enum) == 0 && n.Default == nil
}

// IsObject reports whether the node describes an object. Untyped nodes with
// properties are treated as objects, matching common schema authoring.
func (n Node) IsObject() bool {
	if n.Type == "object" {
		return true
	}
	return n.Type == "" && len(n.Properties) > 0
}

// IsArray reports whether the node describes an array.
func (n Node) IsArray() bool {
	return n.Type == "array"
}

// IsArrayOfObjects reports whether the node is an array whose items are
// objects (typed object, properties present, or a $ref-backed item schema).
func (n Node) IsArrayOfObjects() bool {
	if !n.IsArray() || n.Items == nil {
		return false
	}
	item := *n.Items
	return item.Type == "object" || len(item.Properties) > 0 || item.Ref != ""
}

// IsPrimitive reports whether the node renders as a single input control.
// Arrays of scalars count as primitive composites; arrays of objects do not.
func (n Node) IsPrimitive() bool {
	switch n.Type {
	case "string", "number", "integer", "boolean":
		return true
	case "array":
		return !n.IsArrayOfObjects()
	default:
		return n.Type == "" && len(n.Enum) > 0
	}
}

// IsRequired reports whether name is listed in the node's required set.
func (n Node) IsRequired(name string) bool {
	for _, item := range n.Required {
		if item == name {
			return true
		}
	}
	return false
}

// PropertyNames returns property names in document order when the source
// order was captured, otherwise sorted for determinism.
func (n Node) PropertyNames() []string {
	if len(n.Properties) == 0 {
		return nil
	}
	if len(n.Order) > 0 {
		names := make([]string, 0, len(n.Properties))
		seen := make(map[string]struct{}, len(n.Properties))
		for _, name := range n.Order {
			if _, ok := n.Properties[name]; !ok {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
		var rest []string
		for name := range n.Properties {
			if _, ok := seen[name]; !ok {
				rest = append(rest, name)
			}
		}
		sort.Strings(rest)
		return append(names, rest...)
	}
	names := make([]string, 0, len(n.Properties))
	for name := range n.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Property returns the child schema for name along with a presence flag.
func (n Node) Property(name string) (Node, bool) {
	if n.Properties == nil {
		return Node{}, false
	}
	child, ok := n.Properties[name]
	return child, ok
}
