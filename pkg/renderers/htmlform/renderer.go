package htmlform

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-formedit/pkg/render"
	rendertemplate "github.com/goliatone/go-formedit/pkg/render/template"
	gotemplate "github.com/goliatone/go-formedit/pkg/render/template/gotemplate"
)

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// Renderer produces a static HTML rendering of an engine snapshot: the form
// body, the navigation outline, and breadcrumbs, with error chrome inline.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("htmlform: configure template renderer: %w", err)
		}
		renderer = engine
	}
	return &Renderer{templates: renderer}, nil
}

// Name identifies the renderer in a registry.
func (r *Renderer) Name() string { return "htmlform" }

// ContentType reports the MIME type of the rendered output.
func (r *Renderer) ContentType() string { return "text/html; charset=utf-8" }

// Render produces the HTML document for one engine snapshot.
func (r *Renderer) Render(ctx context.Context, view render.View, options render.Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.templates == nil {
		return nil, fmt.Errorf("htmlform: template renderer is nil")
	}
	result, err := r.templates.RenderTemplate("templates/form.tpl", buildContext(view, options))
	if err != nil {
		return nil, fmt.Errorf("htmlform: render template: %w", err)
	}
	return []byte(result), nil
}
