package openapi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formedit/pkg/schema"
)

// Operation pairs an operation id with the JSON Schema of its request body,
// decoded to the plain object form the normalizer consumes.
type Operation struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	Description string
	Request     map[string]any
}

// Options configures document parsing.
type Options struct {
	// ResolveReferences validates the document and eagerly resolves $refs.
	ResolveReferences bool
	// AllowPartialDocuments accepts documents without paths or operations.
	AllowPartialDocuments bool
}

// Parser extracts editable request-body schemas from OpenAPI documents.
type Parser struct {
	options Options
}

// New constructs a Parser.
func New(options Options) *Parser {
	return &Parser{options: options}
}

// Operations parses the document and returns every operation carrying a
// request body, keyed by operationId (or "method:path" when absent).
func (p *Parser) Operations(ctx context.Context, doc schema.Document) (map[string]Operation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: p.options.ResolveReferences,
	}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if p.options.ResolveReferences {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		if !p.options.AllowPartialDocuments {
			return nil, errors.New("openapi: document does not contain any paths")
		}
	}

	operations := make(map[string]Operation)
	if spec.Paths != nil {
		for path, item := range spec.Paths.Map() {
			if item == nil {
				continue
			}
			for method, op := range map[string]*openapi3.Operation{
				"GET": item.Get, "PUT": item.Put, "POST": item.Post,
				"DELETE": item.Delete, "PATCH": item.Patch,
			} {
				p.collect(operations, method, path, op)
			}
		}
	}
	if len(operations) == 0 && !p.options.AllowPartialDocuments {
		return nil, errors.New("openapi: no operations with request bodies extracted")
	}
	return operations, nil
}

// RequestSchema returns the request-body schema for one operation id.
func (p *Parser) RequestSchema(ctx context.Context, doc schema.Document, operationID string) (map[string]any, error) {
	operations, err := p.Operations(ctx, doc)
	if err != nil {
		return nil, err
	}
	op, ok := operations[operationID]
	if !ok {
		return nil, fmt.Errorf("openapi: unknown operation %q", operationID)
	}
	return op.Request, nil
}

func (p *Parser) collect(target map[string]Operation, method, path string, operation *openapi3.Operation) {
	if operation == nil {
		return
	}
	request := requestSchema(operation.RequestBody)
	if request == nil {
		return
	}
	id := operation.OperationID
	if id == "" {
		id = strings.ToLower(method) + ":" + path
	}
	target[id] = Operation{
		ID:          id,
		Method:      method,
		Path:        path,
		Summary:     operation.Summary,
		Description: operation.Description,
		Request:     request,
	}
}

// Media types eligible to back a form, in preference order.
var formMediaTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

func requestSchema(body *openapi3.RequestBodyRef) map[string]any {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range formMediaTypes {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return convertSchema(mt.Schema)
		}
	}
	for _, mt := range content {
		if mt.Schema != nil {
			return convertSchema(mt.Schema)
		}
	}
	return nil
}

// convertSchema lowers a resolved openapi3 schema into the plain JSON Schema
// object form. Unresolved refs survive as $ref fragments for the normalizer's
// tolerant handling.
func convertSchema(ref *openapi3.SchemaRef) map[string]any {
	if ref == nil {
		return nil
	}
	if ref.Value == nil {
		if ref.Ref == "" {
			return nil
		}
		return map[string]any{"$ref": ref.Ref}
	}
	src := ref.Value
	out := map[string]any{}
	if t := firstType(src.Type); t != "" {
		out["type"] = t
	}
	if src.Title != "" {
		out["title"] = src.Title
	}
	if src.Description != "" {
		out["description"] = src.Description
	}
	if src.Format != "" {
		out["format"] = src.Format
	}
	if src.Default != nil {
		out["default"] = src.Default
	}
	if len(src.Enum) > 0 {
		out["enum"] = append([]any(nil), src.Enum...)
	}
	if len(src.Required) > 0 {
		required := make([]any, 0, len(src.Required))
		for _, name := range src.Required {
			required = append(required, name)
		}
		out["required"] = required
	}
	if len(src.Properties) > 0 {
		properties := make(map[string]any, len(src.Properties))
		for name, property := range src.Properties {
			if converted := convertSchema(property); converted != nil {
				properties[name] = converted
			}
		}
		out["properties"] = properties
	}
	if src.Items != nil {
		if items := convertSchema(src.Items); items != nil {
			out["items"] = items
		}
	}
	if src.Min != nil {
		out["minimum"] = *src.Min
	}
	if src.Max != nil {
		out["maximum"] = *src.Max
	}
	if src.MinLength != 0 {
		out["minLength"] = float64(src.MinLength)
	}
	if src.MaxLength != nil {
		out["maxLength"] = float64(*src.MaxLength)
	}
	if src.Pattern != "" {
		out["pattern"] = src.Pattern
	}
	if len(src.AllOf) > 0 {
		members := make([]any, 0, len(src.AllOf))
		for _, member := range src.AllOf {
			if converted := convertSchema(member); converted != nil {
				members = append(members, converted)
			}
		}
		if len(members) > 0 {
			out["allOf"] = members
		}
	}
	return out
}

func firstType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
