package synth

import internalsynth "github.com/goliatone/go-formedit/internal/synth"

// MaxDepth re-exports the synthesis recursion cap.
const MaxDepth = internalsynth.MaxDepth

// Group re-exports the internal group descriptor.
type Group = internalsynth.Group

// Field re-exports the internal field descriptor.
type Field = internalsynth.Field

// Placeholder re-exports the activation-affordance descriptor.
type Placeholder = internalsynth.Placeholder

// Activation re-exports the activation lookup interface.
type Activation = internalsynth.Activation

// ActivationFunc re-exports the function adapter for Activation.
type ActivationFunc = internalsynth.ActivationFunc

// Result re-exports the synthesis output container.
type Result = internalsynth.Result

// Options re-exports synthesizer configuration.
type Options = internalsynth.Options

// Synthesizer re-exports the descriptor tree builder.
type Synthesizer = internalsynth.Synthesizer

// New constructs a Synthesizer.
var New = internalsynth.New

// DefaultLabeler converts property names into display labels.
var DefaultLabeler = internalsynth.DefaultLabeler
