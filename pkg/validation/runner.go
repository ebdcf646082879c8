package validation

import (
	"github.com/goliatone/go-formedit/pkg/formdata"
	"github.com/goliatone/go-formedit/pkg/synth"
)

// Runner maintains the path→error map for the current descriptor tree and
// derives group-level error state from it. The map is recomputed on every
// validation pass and never persisted.
type Runner struct {
	errors  map[string]string
	markers func()
}

// Option configures a Runner.
type Option func(*Runner)

// WithMarkerRefresh registers the callback invoked when group error markers
// must be refreshed downstream.
func WithMarkerRefresh(refresh func()) Option {
	return func(r *Runner) {
		r.markers = refresh
	}
}

// NewRunner constructs an empty Runner.
func NewRunner(options ...Option) *Runner {
	r := &Runner{errors: make(map[string]string)}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// ValidateAll evaluates every known field descriptor against the data
// instance, replaces the error map, and refreshes group markers exactly once
// at the end regardless of field count. It returns the number of failing
// fields.
func (r *Runner) ValidateAll(result *synth.Result, data any) int {
	next := make(map[string]string)
	if result != nil {
		for key, field := range result.Fields {
			value, _ := formdata.Get(data, field.Path)
			if msg := FieldError(value, field.Schema, field.Required); msg != "" {
				next[key] = msg
			}
		}
	}
	r.errors = next
	r.refresh()
	return len(next)
}

// ValidateField evaluates a single field (change/blur path), updates the map
// entry, and refreshes markers immediately.
func (r *Runner) ValidateField(field synth.Field, value any) string {
	msg := FieldError(value, field.Schema, field.Required)
	key := field.Path.String()
	if msg == "" {
		delete(r.errors, key)
	} else {
		r.errors[key] = msg
	}
	r.refresh()
	return msg
}

// Error returns the current message for a serialized field path.
func (r *Runner) Error(path string) (string, bool) {
	msg, ok := r.errors[path]
	return msg, ok
}

// Errors returns a copy of the current path→message map.
func (r *Runner) Errors() map[string]string {
	out := make(map[string]string, len(r.errors))
	for key, value := range r.errors {
		out[key] = value
	}
	return out
}

// GroupHasError derives group-level error state: true iff at least one field
// owned by the group currently has an entry in the error map. Never stored.
func (r *Runner) GroupHasError(group *synth.Group) bool {
	if group == nil {
		return false
	}
	for _, field := range group.Fields {
		if _, ok := r.errors[field.Path.String()]; ok {
			return true
		}
	}
	return false
}

// Reset clears all recorded errors without refreshing markers.
func (r *Runner) Reset() {
	r.errors = make(map[string]string)
}

func (r *Runner) refresh() {
	if r.markers != nil {
		r.markers()
	}
}
