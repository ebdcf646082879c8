// Package openapi extracts editable request-body schemas from OpenAPI
// documents, so a form session can be mounted directly on an API operation.
package openapi
