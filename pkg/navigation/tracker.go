package navigation

import (
	"time"
)

// Scrollspy geometry and timing defaults. The threshold line sits a fixed
// header offset below the visible-area top, pulled up slightly so a group
// activates just before its heading reaches the line.
const (
	DefaultHeaderOffset = 64.0
	DefaultEarlyMargin  = 16.0
	// DefaultSuppression covers the settle time of a programmatic scroll so
	// scrollspy does not override an explicit jump mid-animation.
	DefaultSuppression = 1200 * time.Millisecond
)

// Viewport abstracts the scroll container the tracker observes. Offsets are
// document coordinates; GroupOffset reports false for groups not currently
// rendered.
type Viewport interface {
	ScrollTop() float64
	GroupOffset(id string) (float64, bool)
	ScrollTo(id string)
}

// TrackerOption configures an ActiveTracker.
type TrackerOption func(*ActiveTracker)

// WithClock injects the time source, for deterministic suppression tests.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *ActiveTracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithHeaderOffset overrides the fixed header offset.
func WithHeaderOffset(offset float64) TrackerOption {
	return func(t *ActiveTracker) { t.headerOffset = offset }
}

// WithEarlyMargin overrides the early-trigger margin.
func WithEarlyMargin(margin float64) TrackerOption {
	return func(t *ActiveTracker) { t.earlyMargin = margin }
}

// WithSuppression overrides the programmatic-scroll suppression window.
func WithSuppression(window time.Duration) TrackerOption {
	return func(t *ActiveTracker) { t.suppression = window }
}

// WithOnActive registers the callback invoked whenever the active group
// changes, by any of the three activation routes.
func WithOnActive(onActive func(groupID string)) TrackerOption {
	return func(t *ActiveTracker) { t.onActive = onActive }
}

// ActiveTracker maintains the single active group. Exactly one group is
// active at a time; it changes through explicit jumps, pointer interaction,
// or scroll inference.
type ActiveTracker struct {
	viewport      Viewport
	now           func() time.Time
	headerOffset  float64
	earlyMargin   float64
	suppression   time.Duration
	onActive      func(string)
	groups        []string
	active        string
	suppressUntil time.Time
}

// NewActiveTracker constructs a tracker over the given viewport.
func NewActiveTracker(viewport Viewport, options ...TrackerOption) *ActiveTracker {
	t := &ActiveTracker{
		viewport:     viewport,
		now:          time.Now,
		headerOffset: DefaultHeaderOffset,
		earlyMargin:  DefaultEarlyMargin,
		suppression:  DefaultSuppression,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(t)
	}
	return t
}

// SetGroups replaces the document-ordered group id list after a rebuild. The
// active group is kept when it survived the rebuild, otherwise cleared.
func (t *ActiveTracker) SetGroups(ids []string) {
	t.groups = ids
	if t.active == "" {
		return
	}
	for _, id := range ids {
		if id == t.active {
			return
		}
	}
	t.setActive("")
}

// Active returns the currently active group id, "" when none.
func (t *ActiveTracker) Active() string { return t.active }

// SetActive marks a group active from pointer interaction. No scrolling, no
// suppression.
func (t *ActiveTracker) SetActive(groupID string) {
	t.setActive(groupID)
}

// JumpTo performs an explicit navigation: scrolls the viewport to the group,
// marks it active, and suppresses scroll inference while the programmatic
// scroll settles.
func (t *ActiveTracker) JumpTo(groupID string) {
	if t.viewport != nil {
		t.viewport.ScrollTo(groupID)
	}
	t.suppressUntil = t.now().Add(t.suppression)
	t.setActive(groupID)
}

// OnScroll runs scroll inference: among groups whose start offset is at or
// above the threshold line, the one with the largest qualifying offset wins;
// ties resolve to the later group in document order. Inside the suppression
// window the call is ignored.
func (t *ActiveTracker) OnScroll() {
	if t.viewport == nil || t.now().Before(t.suppressUntil) {
		return
	}
	threshold := t.viewport.ScrollTop() + t.headerOffset + t.earlyMargin
	best := ""
	bestOffset := 0.0
	found := false
	for _, id := range t.groups {
		offset, ok := t.viewport.GroupOffset(id)
		if !ok || offset > threshold {
			continue
		}
		if !found || offset >= bestOffset {
			best = id
			bestOffset = offset
			found = true
		}
	}
	if found {
		t.setActive(best)
	}
}

func (t *ActiveTracker) setActive(groupID string) {
	if t.active == groupID {
		return
	}
	t.active = groupID
	if t.onActive != nil {
		t.onActive(groupID)
	}
}
