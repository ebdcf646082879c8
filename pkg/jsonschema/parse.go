package jsonschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Payload is a parsed schema document plus the per-object key order captured
// from the source text. Keys of Order are JSON pointers to objects; values are
// that object's member names in document order.
type Payload struct {
	Data  map[string]any
	Order map[string][]string
}

// Parse decodes a raw JSON or YAML schema document. JSON documents keep their
// object key order; YAML documents keep mapping order via the yaml.v3 node
// API.
func Parse(raw []byte) (Payload, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Payload{}, errors.New("jsonschema: raw schema is empty")
	}
	if trimmed[0] == '{' {
		return parseJSON(trimmed)
	}
	return parseYAML(trimmed)
}

func parseJSON(raw []byte) (Payload, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	order := make(map[string][]string)
	value, err := decodeJSONValue(decoder, "#", order)
	if err != nil {
		return Payload{}, fmt.Errorf("jsonschema: parse schema: %w", err)
	}
	payload, ok := value.(map[string]any)
	if !ok {
		return Payload{}, errors.New("jsonschema: schema root must be an object")
	}
	return Payload{Data: payload, Order: order}, nil
}

func decodeJSONValue(decoder *json.Decoder, pointer string, order map[string][]string) (any, error) {
	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}
	return decodeJSONToken(decoder, token, pointer, order)
}

func decodeJSONToken(decoder *json.Decoder, token json.Token, pointer string, order map[string][]string) (any, error) {
	switch typed := token.(type) {
	case json.Delim:
		switch typed {
		case '{':
			object := make(map[string]any)
			var keys []string
			for decoder.More() {
				keyToken, err := decoder.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyToken.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyToken)
				}
				child, err := decodeJSONValue(decoder, joinPointer(pointer, key), order)
				if err != nil {
					return nil, err
				}
				object[key] = child
				keys = append(keys, key)
			}
			if _, err := decoder.Token(); err != nil {
				return nil, err
			}
			if len(keys) > 0 {
				order[pointer] = keys
			}
			return object, nil
		case '[':
			var list []any
			idx := 0
			for decoder.More() {
				child, err := decodeJSONValue(decoder, joinPointer(pointer, strconv.Itoa(idx)), order)
				if err != nil {
					return nil, err
				}
				list = append(list, child)
				idx++
			}
			if _, err := decoder.Token(); err != nil {
				return nil, err
			}
			return list, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", typed)
	case json.Number:
		if value, err := typed.Int64(); err == nil && !strings.ContainsAny(typed.String(), ".eE") {
			return float64(value), nil
		}
		value, err := typed.Float64()
		if err != nil {
			return nil, err
		}
		return value, nil
	default:
		return typed, nil
	}
}

func parseYAML(raw []byte) (Payload, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Payload{}, fmt.Errorf("jsonschema: parse yaml schema: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	order := make(map[string][]string)
	value, err := decodeYAMLNode(root, "#", order)
	if err != nil {
		return Payload{}, err
	}
	payload, ok := value.(map[string]any)
	if !ok {
		return Payload{}, errors.New("jsonschema: schema root must be a mapping")
	}
	return Payload{Data: payload, Order: order}, nil
}

func decodeYAMLNode(node *yaml.Node, pointer string, order map[string][]string) (any, error) {
	switch node.Kind {
	case yaml.MappingNode:
		object := make(map[string]any, len(node.Content)/2)
		var keys []string
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			valueNode := node.Content[i+1]
			key := keyNode.Value
			child, err := decodeYAMLNode(valueNode, joinPointer(pointer, key), order)
			if err != nil {
				return nil, err
			}
			object[key] = child
			keys = append(keys, key)
		}
		if len(keys) > 0 {
			order[pointer] = keys
		}
		return object, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(node.Content))
		for idx, item := range node.Content {
			child, err := decodeYAMLNode(item, joinPointer(pointer, strconv.Itoa(idx)), order)
			if err != nil {
				return nil, err
			}
			list = append(list, child)
		}
		return list, nil
	case yaml.ScalarNode:
		var value any
		if err := node.Decode(&value); err != nil {
			return nil, fmt.Errorf("jsonschema: decode yaml scalar: %w", err)
		}
		switch typed := value.(type) {
		case int:
			return float64(typed), nil
		case int64:
			return float64(typed), nil
		default:
			return value, nil
		}
	case yaml.AliasNode:
		if node.Alias != nil {
			return decodeYAMLNode(node.Alias, pointer, order)
		}
		return nil, nil
	default:
		return nil, nil
	}
}

func joinPointer(pointer, segment string) string {
	if pointer == "" {
		pointer = "#"
	}
	return pointer + "/" + escapePointerSegment(segment)
}

func escapePointerSegment(value string) string {
	replacer := strings.NewReplacer("~", "~0", "/", "~1")
	return replacer.Replace(value)
}

func unescapePointerSegment(value string) string {
	replacer := strings.NewReplacer("~1", "/", "~0", "~")
	return replacer.Replace(value)
}
