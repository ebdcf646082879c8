package engine

import (
	"sort"

	"github.com/goliatone/go-formedit/pkg/formpath"
)

// ActivationSet tracks which optional structural branches are currently
// materialized. Within a session the set only grows, through explicit
// activation or implicit array-item creation, until Reset clears it.
type ActivationSet struct {
	paths map[string]formpath.Path
}

// NewActivationSet constructs an empty set.
func NewActivationSet() *ActivationSet {
	return &ActivationSet{paths: make(map[string]formpath.Path)}
}

// Activate adds a path to the set, reporting whether it was newly added.
func (s *ActivationSet) Activate(path formpath.Path) bool {
	key := path.String()
	if _, ok := s.paths[key]; ok {
		return false
	}
	s.paths[key] = path
	return true
}

// Active implements synth.Activation.
func (s *ActivationSet) Active(path formpath.Path) bool {
	_, ok := s.paths[path.String()]
	return ok
}

// Reset clears the entire set. There is no per-path deactivation.
func (s *ActivationSet) Reset() {
	s.paths = make(map[string]formpath.Path)
}

// Len returns the number of activated paths.
func (s *ActivationSet) Len() int { return len(s.paths) }

// Paths returns the activated paths sorted by their serialized form.
func (s *ActivationSet) Paths() []formpath.Path {
	keys := make([]string, 0, len(s.paths))
	for key := range s.paths {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]formpath.Path, 0, len(keys))
	for _, key := range keys {
		out = append(out, s.paths[key])
	}
	return out
}
