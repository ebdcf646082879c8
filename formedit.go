package formedit

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formedit/internal/schemaloader"
	"github.com/goliatone/go-formedit/pkg/engine"
	"github.com/goliatone/go-formedit/pkg/navigation"
	"github.com/goliatone/go-formedit/pkg/openapi"
	"github.com/goliatone/go-formedit/pkg/render"
	"github.com/goliatone/go-formedit/pkg/renderers/htmlform"
	"github.com/goliatone/go-formedit/pkg/schema"
)

// Engine re-exports the session engine for single-import consumers.
type Engine = engine.Engine

// Option re-exports engine configuration options.
type Option = engine.Option

// View re-exports the renderer input snapshot.
type View = render.View

// NewLoader constructs a document loader for file, fs.FS, and URL sources.
func NewLoader(options schema.LoaderOptions) schema.Loader {
	return schemaloader.New(options)
}

// Mount builds an engine for a raw schema document and initial data.
func Mount(doc schema.Document, data any, options ...engine.Option) (*engine.Engine, error) {
	return engine.New(doc, data, options...)
}

// MountFile loads a schema document from disk and mounts an engine on it.
func MountFile(ctx context.Context, path string, data any, options ...engine.Option) (*engine.Engine, error) {
	loader := schemaloader.New(schema.LoaderOptions{})
	doc, err := loader.Load(ctx, schema.SourceFromFile(path))
	if err != nil {
		return nil, fmt.Errorf("formedit: load schema: %w", err)
	}
	return engine.New(doc, data, options...)
}

// MountOperation extracts the request-body schema of an OpenAPI operation and
// mounts an engine on it.
func MountOperation(ctx context.Context, doc schema.Document, operationID string, data any, options ...engine.Option) (*engine.Engine, error) {
	parser := openapi.New(openapi.Options{ResolveReferences: true})
	raw, err := parser.RequestSchema(ctx, doc, operationID)
	if err != nil {
		return nil, err
	}
	return engine.NewFromMap(raw, data, options...), nil
}

// DefaultRegistry returns a registry with the built-in HTML renderer
// registered.
func DefaultRegistry() (*render.Registry, error) {
	registry := render.NewRegistry()
	html, err := htmlform.New()
	if err != nil {
		return nil, err
	}
	if err := registry.Register(html); err != nil {
		return nil, err
	}
	return registry, nil
}

// RenderHTML renders the engine's current state with the built-in HTML
// renderer. The navigator is optional; without it the output has no outline
// or breadcrumbs.
func RenderHTML(ctx context.Context, eng *engine.Engine, nav *navigation.Navigator, options render.Options) ([]byte, error) {
	renderer, err := htmlform.New()
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, render.Snapshot(eng, nav), options)
}
