package slices

import "github.com/signalsfoundry/tacsim/entity"

// NewBeamCommandSlice returns a CommandSlice specialized for beam preference
// commands, applying entity.MergeBeamPrefs' repeated-field rule for
// AcceptProjectorIDs. defaults is the entity's own preference state, captured
// at construction, that a backward-time replay resets to.
func NewBeamCommandSlice(defaults entity.BeamPrefs) *CommandSlice[entity.BeamCommand, entity.BeamPrefs] {
	return NewCommandSlice(
		defaults,
		func(c entity.BeamCommand) entity.BeamPrefs { return c.Prefs },
		entity.MergeBeamPrefs,
	)
}

// NewGateCommandSlice returns a CommandSlice specialized for gate preference
// commands. Gate prefs carry no repeated fields, so merging is a plain
// scalar overwrite of incoming onto cached. defaults is the entity's own
// preference state, captured at construction, that a backward-time replay
// resets to.
func NewGateCommandSlice(defaults entity.GatePrefs) *CommandSlice[entity.GateCommand, entity.GatePrefs] {
	return NewCommandSlice(
		defaults,
		func(c entity.GateCommand) entity.GatePrefs { return c.Prefs },
		func(_, incoming entity.GatePrefs) entity.GatePrefs { return incoming },
	)
}
