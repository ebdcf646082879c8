package engine

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-formedit/pkg/formdata"
	"github.com/goliatone/go-formedit/pkg/formpath"
	"github.com/goliatone/go-formedit/pkg/jsonschema"
	"github.com/goliatone/go-formedit/pkg/schema"
	"github.com/goliatone/go-formedit/pkg/synth"
	"github.com/goliatone/go-formedit/pkg/validation"
)

// Logger receives diagnostic events from the engine. Implementations must be
// cheap; the engine calls it on the hot rebuild path.
type Logger interface {
	Debugf(format string, args ...any)
}

// LoggerFunc adapts a function to the Logger interface.
type LoggerFunc func(format string, args ...any)

// Debugf implements Logger.
func (f LoggerFunc) Debugf(format string, args ...any) { f(format, args...) }

// Option configures an Engine.
type Option func(*Engine)

// WithScheduler replaces the rebuild scheduler. Defaults to a Coalescing
// scheduler at DefaultRebuildInterval.
func WithScheduler(scheduler Scheduler) Option {
	return func(e *Engine) {
		if scheduler != nil {
			e.scheduler = scheduler
		}
	}
}

// WithLabeler replaces the property-name→label function used during
// synthesis.
func WithLabeler(labeler func(string) string) Option {
	return func(e *Engine) {
		e.labeler = labeler
	}
}

// WithLogger attaches a diagnostic logger.
func WithLogger(logger Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithOnChange registers the callback invoked with a data snapshot after
// every committed mutation.
func WithOnChange(onChange func(data any)) Option {
	return func(e *Engine) {
		e.onChange = onChange
	}
}

// WithOnRemove registers the callback invoked once when the engine is
// destroyed.
func WithOnRemove(onRemove func()) Option {
	return func(e *Engine) {
		e.onRemove = onRemove
	}
}

// WithNavigator registers the callback that receives NavigateTo requests.
func WithNavigator(navigate func(groupID string)) Option {
	return func(e *Engine) {
		e.navigate = navigate
	}
}

// Engine owns the full editing session: the data model, the activation set,
// the synthesized descriptor tree, and validation state. Commands mutate the
// model synchronously and request one coalesced rebuild; the rebuild replaces
// the descriptor tree wholesale before validation or navigation read it.
type Engine struct {
	mu          sync.Mutex
	norm        *jsonschema.Normalizer
	model       *formdata.Model
	activation  *ActivationSet
	synthesizer *synth.Synthesizer
	runner      *validation.Runner
	scheduler   Scheduler
	labeler     func(string) string
	logger      Logger

	result    *synth.Result
	observers []func(*synth.Result)
	markers   []func()

	onChange func(any)
	onRemove func()
	navigate func(groupID string)

	destroyed bool
}

// New mounts an engine for a raw schema document. The initial descriptor tree
// and validation pass run synchronously before New returns.
func New(doc schema.Document, data any, options ...Option) (*Engine, error) {
	norm, err := jsonschema.NewNormalizer(doc)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	return NewFromNormalizer(norm, data, options...), nil
}

// NewFromMap mounts an engine for an already-decoded schema object.
func NewFromMap(raw map[string]any, data any, options ...Option) *Engine {
	return NewFromNormalizer(jsonschema.NewNormalizerFromMap(raw), data, options...)
}

// NewFromNormalizer mounts an engine on a prepared normalizer.
func NewFromNormalizer(norm *jsonschema.Normalizer, data any, options ...Option) *Engine {
	e := &Engine{
		norm:       norm,
		activation: NewActivationSet(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if e.scheduler == nil {
		e.scheduler = NewCoalescing(DefaultRebuildInterval)
	}
	e.model = formdata.New(norm)
	if data != nil {
		e.model.Load(data)
	}
	e.synthesizer = synth.New(norm, synth.Options{Labeler: e.labeler})
	e.runner = validation.NewRunner(validation.WithMarkerRefresh(e.refreshMarkers))
	e.rebuild()
	return e
}

// Result returns the current descriptor tree. The tree is replaced, never
// mutated, so callers may hold it across calls.
func (e *Engine) Result() *synth.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result
}

// Data returns a snapshot of the current data instance.
func (e *Engine) Data() any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model.Snapshot()
}

// Activation exposes the activation set for synthesis-adjacent consumers.
func (e *Engine) Activation() *ActivationSet { return e.activation }

// Normalizer exposes the schema normalizer for consumers that deref lazily.
func (e *Engine) Normalizer() *jsonschema.Normalizer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.norm
}

// RootSchema returns the normalized root schema node.
func (e *Engine) RootSchema() schema.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model.RootSchema()
}

// Errors returns a copy of the current field-path→message map.
func (e *Engine) Errors() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runner.Errors()
}

// GroupHasError reports whether any field owned by the group currently fails
// validation. Derived on demand, never stored on the group.
func (e *Engine) GroupHasError(groupID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	group, ok := e.result.Group(groupID)
	if !ok {
		return false
	}
	return e.runner.GroupHasError(group)
}

// ValidateAll runs a full validation pass against the current tree and
// returns the number of failing fields. Group markers refresh exactly once.
func (e *Engine) ValidateAll() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runner.ValidateAll(e.result, e.model.Data())
}

// SetValue writes a field value, revalidates that field immediately, and
// schedules a rebuild. It returns the field's validation message, "" when
// valid.
func (e *Engine) SetValue(path formpath.Path, value any) string {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return ""
	}
	e.model.Set(path, value)
	msg := ""
	if field, ok := e.result.Field(path.String()); ok {
		msg = e.runner.ValidateField(field, value)
	}
	snapshot := e.model.Snapshot()
	e.mu.Unlock()

	e.notifyChange(snapshot)
	e.requestRebuild()
	return msg
}

// Value reads the current value at path.
func (e *Engine) Value(path formpath.Path) (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model.Get(path)
}

// ActivateOptional materializes an optional structural branch. When the
// branch is array-typed the command also guarantees at least one item so the
// activated branch is never empty. Re-activating an active path is a no-op
// and schedules nothing.
func (e *Engine) ActivateOptional(path formpath.Path) bool {
	e.mu.Lock()
	if e.destroyed || !e.activation.Activate(path) {
		e.mu.Unlock()
		return false
	}
	if node, ok := e.model.SchemaAt(path); ok && node.IsArray() && e.model.Len(path) == 0 {
		e.model.Push(path)
	}
	snapshot := e.model.Snapshot()
	e.mu.Unlock()

	e.debugf("activate %s", path)
	e.notifyChange(snapshot)
	e.requestRebuild()
	return true
}

// AddArrayItem appends a default item to the array at arrayPath and returns
// its index. Adding to an inactive optional array activates it implicitly.
func (e *Engine) AddArrayItem(arrayPath formpath.Path) int {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return -1
	}
	e.activation.Activate(arrayPath)
	index := e.model.Push(arrayPath)
	snapshot := e.model.Snapshot()
	e.mu.Unlock()

	e.debugf("add item %s[%d]", arrayPath, index)
	e.notifyChange(snapshot)
	e.requestRebuild()
	return index
}

// RemoveArrayItem deletes the item at index. Out-of-range indices are no-ops.
func (e *Engine) RemoveArrayItem(arrayPath formpath.Path, index int) bool {
	e.mu.Lock()
	if e.destroyed || !e.model.Remove(arrayPath, index) {
		e.mu.Unlock()
		return false
	}
	snapshot := e.model.Snapshot()
	e.mu.Unlock()

	e.debugf("remove item %s[%d]", arrayPath, index)
	e.notifyChange(snapshot)
	e.requestRebuild()
	return true
}

// ReorderArrayItem moves the item at from to position to. Equal or
// out-of-range indices are no-ops and schedule no rebuild.
func (e *Engine) ReorderArrayItem(arrayPath formpath.Path, from, to int) bool {
	e.mu.Lock()
	if e.destroyed || !e.model.Move(arrayPath, from, to) {
		e.mu.Unlock()
		return false
	}
	snapshot := e.model.Snapshot()
	e.mu.Unlock()

	e.debugf("reorder %s %d->%d", arrayPath, from, to)
	e.notifyChange(snapshot)
	e.requestRebuild()
	return true
}

// ResetAll clears the activation set, reinitializes the instance from schema
// defaults, and rebuilds.
func (e *Engine) ResetAll() {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.activation.Reset()
	e.model.Reset()
	e.runner.Reset()
	snapshot := e.model.Snapshot()
	e.mu.Unlock()

	e.debugf("reset")
	e.notifyChange(snapshot)
	e.requestRebuild()
}

// UpdateData replaces the instance with next merged over a fresh base.
func (e *Engine) UpdateData(next any) {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.model.Load(next)
	snapshot := e.model.Snapshot()
	e.mu.Unlock()

	e.notifyChange(snapshot)
	e.requestRebuild()
}

// UpdateSchema swaps the schema document and re-synthesizes everything. The
// current data instance is carried over and merged against the new schema's
// base instance; the activation set survives (paths the new schema no longer
// gates are simply ignored).
func (e *Engine) UpdateSchema(doc schema.Document) error {
	norm, err := jsonschema.NewNormalizer(doc)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return nil
	}
	data := e.model.Snapshot()
	e.norm = norm
	e.model = formdata.New(norm)
	e.model.Load(data)
	e.synthesizer = synth.New(norm, synth.Options{Labeler: e.labeler})
	e.mu.Unlock()

	e.requestRebuild()
	return nil
}

// SetRawData parses raw-mode JSON and replaces the instance on success. On
// parse failure it reports false and leaves the session untouched.
func (e *Engine) SetRawData(raw []byte) bool {
	e.mu.Lock()
	if e.destroyed || !e.model.ReplaceRaw(raw) {
		e.mu.Unlock()
		return false
	}
	snapshot := e.model.Snapshot()
	e.mu.Unlock()

	e.notifyChange(snapshot)
	e.requestRebuild()
	return true
}

// EncodeData serializes the current instance as JSON for raw-mode display.
func (e *Engine) EncodeData() ([]byte, error) {
	e.mu.Lock()
	snapshot := e.model.Snapshot()
	e.mu.Unlock()
	return formdata.Encode(snapshot)
}

// NavigateTo forwards a jump request to the registered navigator.
func (e *Engine) NavigateTo(groupID string) {
	e.mu.Lock()
	navigate := e.navigate
	destroyed := e.destroyed
	e.mu.Unlock()
	if destroyed || navigate == nil {
		return
	}
	navigate(groupID)
}

// OnRebuild registers an observer invoked with the fresh descriptor tree
// after every completed rebuild.
func (e *Engine) OnRebuild(observer func(*synth.Result)) {
	if observer == nil {
		return
	}
	e.mu.Lock()
	e.observers = append(e.observers, observer)
	e.mu.Unlock()
}

// OnMarkerRefresh registers an observer invoked whenever group error markers
// must be re-read.
func (e *Engine) OnMarkerRefresh(observer func()) {
	if observer == nil {
		return
	}
	e.mu.Lock()
	e.markers = append(e.markers, observer)
	e.mu.Unlock()
}

// Destroy stops the scheduler and fires the remove callback once. Commands
// issued after Destroy are no-ops.
func (e *Engine) Destroy() {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.destroyed = true
	onRemove := e.onRemove
	e.mu.Unlock()

	e.scheduler.Stop()
	if onRemove != nil {
		onRemove()
	}
}

func (e *Engine) requestRebuild() {
	e.scheduler.Schedule(e.rebuild)
}

// rebuild synthesizes a fresh descriptor tree, swaps it in, and revalidates
// against it. Observers see the new tree only after the swap and validation
// complete.
func (e *Engine) rebuild() {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	result := e.synthesizer.Synthesize(e.model.RootSchema(), e.model.Data(), e.activation)
	e.result = result
	e.runner.ValidateAll(result, e.model.Data())
	observers := make([]func(*synth.Result), len(e.observers))
	copy(observers, e.observers)
	e.mu.Unlock()

	for _, observer := range observers {
		observer(result)
	}
}

// refreshMarkers runs with e.mu held; marker observers must not call back
// into the engine.
func (e *Engine) refreshMarkers() {
	for _, observer := range e.markers {
		observer()
	}
}

func (e *Engine) notifyChange(snapshot any) {
	if e.onChange != nil {
		e.onChange(snapshot)
	}
}

func (e *Engine) debugf(format string, args ...any) {
	if e.logger != nil {
		e.logger.Debugf(format, args...)
	}
}
