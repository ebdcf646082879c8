package render

import (
	"context"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formedit/pkg/engine"
	"github.com/goliatone/go-formedit/pkg/navigation"
	"github.com/goliatone/go-formedit/pkg/synth"
)

// View is one immutable engine snapshot handed to a renderer: the descriptor
// tree, the data it was synthesized against, current validation errors, and
// the derived outline.
type View struct {
	Title       string
	Result      *synth.Result
	Data        any
	Errors      map[string]string
	Outline     []navigation.Entry
	Breadcrumbs []navigation.Crumb
	ActiveGroup string
}

// Snapshot captures a renderable view from a live session.
func Snapshot(eng *engine.Engine, nav *navigation.Navigator) View {
	view := View{
		Result: eng.Result(),
		Data:   eng.Data(),
		Errors: eng.Errors(),
	}
	if nav != nil {
		view.Outline = nav.Entries()
		view.Breadcrumbs = nav.Breadcrumbs()
		view.ActiveGroup = nav.Tracker().Active()
	}
	return view
}

// Options carries per-request render configuration.
type Options struct {
	// Method overrides the form submission method. Renderers translate
	// non-browser verbs into POST plus a hidden _method input.
	Method string
	// Action is the form submission target.
	Action string
	// Theme supplies theme tokens, partial overrides, and asset resolution.
	Theme *theme.RendererConfig
	// Extra passes renderer-specific values through to templates.
	Extra map[string]any
}

// Renderer converts a View into a byte representation (HTML, text, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view View, options Options) ([]byte, error)
}
