package slices

// MergeFunc folds an incoming command's preferences onto the cached,
// cumulative preferences, applying repeated-field semantics (empty leaves
// the cached value alone, non-empty replaces it wholesale).
type MergeFunc[P any] func(cached, incoming P) P

// CommandSlice is a sparse time-ordered list of preference edits. Unlike
// StateSlice, a command's prefs are not a full snapshot — Current() is the
// cumulative merge of every command from the start of the slice up to the
// query time, recomputed by replaying commands from the slice's defaults
// whenever the query time moves backward, or an out-of-order insertion
// landed behind the query cursor (sparse commands can't be "un-merged"
// incrementally).
type CommandSlice[C Timed, P any] struct {
	commands []C
	prefsOf  func(C) P
	merge    MergeFunc[P]
	defaults P

	current     P
	hasCurrent  bool
	lastQueryAt float64

	// earliestInsert tracks the earliest command time inserted since the
	// last Update call, so an out-of-order insertion (one at or before
	// lastQueryAt) still gets picked up by the next incremental replay
	// instead of silently being skipped.
	earliestInsert    float64
	hasEarliestInsert bool

	hasChanged bool
	dirty      bool

	limitPoints int
	limitTime   float64
}

// NewCommandSlice returns an empty slice with the given entity-specific
// default preferences — the cache backward replay resets to, since sparse
// commands carry only deltas and have no "before the first command" value
// of their own. prefsOf extracts a command's preference payload; merge
// folds it onto the cumulative cache.
func NewCommandSlice[C Timed, P any](defaults P, prefsOf func(C) P, merge MergeFunc[P]) *CommandSlice[C, P] {
	return &CommandSlice[C, P]{defaults: defaults, prefsOf: prefsOf, merge: merge, dirty: true}
}

// Insert adds a command, maintaining time order; a command at an existing
// time replaces it.
func (s *CommandSlice[C, P]) Insert(cmd C) {
	idx := lowerBound(s.commands, cmd.TimeSec())
	if idx < len(s.commands) && s.commands[idx].TimeSec() == cmd.TimeSec() {
		s.commands[idx] = cmd
	} else {
		s.commands = append(s.commands, cmd)
		copy(s.commands[idx+1:], s.commands[idx:])
		s.commands[idx] = cmd
	}
	if !s.hasEarliestInsert || cmd.TimeSec() < s.earliestInsert {
		s.earliestInsert = cmd.TimeSec()
		s.hasEarliestInsert = true
	}
	s.dirty = true
	s.hasChanged = true
}

func (s *CommandSlice[C, P]) NumItems() int { return len(s.commands) }

func (s *CommandSlice[C, P]) FirstTime() float64 {
	if len(s.commands) == 0 {
		return 0
	}
	return s.commands[0].TimeSec()
}

func (s *CommandSlice[C, P]) LastTime() float64 {
	if len(s.commands) == 0 {
		return 0
	}
	return s.commands[len(s.commands)-1].TimeSec()
}

// DeltaTime returns the gap in seconds between t and the latest retained
// command strictly before t, or -1 if there is no such command.
func (s *CommandSlice[C, P]) DeltaTime(t float64) float64 {
	idx := lowerBound(s.commands, t)
	if idx == 0 {
		return -1
	}
	return t - s.commands[idx-1].TimeSec()
}

// Update recomputes Current() as of time t. Unlike StateSlice, Current() is
// never "absent": with no commands at or before t, it reports the entity's
// captured defaults directly. A full replay from those defaults is required
// whenever the query moves backward, there is no cached current yet, or a
// command was inserted at or before lastQueryAt since the last Update (an
// out-of-order insertion that an incremental continuation would silently
// miss) — commands only carry deltas, so cumulative state can't be
// un-merged back to an earlier point. Otherwise (the common case: moving
// forward or holding, no out-of-order insert) the merge continues
// incrementally from the cached cumulative state.
func (s *CommandSlice[C, P]) Update(t float64) {
	if len(s.commands) == 0 {
		s.current = s.defaults
		s.hasCurrent = true
		s.dirty = false
		s.hasEarliestInsert = false
		return
	}

	needsFullReplay := !s.hasCurrent || t < s.lastQueryAt ||
		(s.hasEarliestInsert && s.earliestInsert <= s.lastQueryAt)

	startIdx := upperBound(s.commands, s.lastQueryAt)
	if needsFullReplay {
		s.current = s.defaults
		startIdx = 0
	}
	s.hasCurrent = true

	endIdx := upperBound(s.commands, t)
	for i := startIdx; i < endIdx; i++ {
		s.current = s.merge(s.current, s.prefsOf(s.commands[i]))
	}
	s.lastQueryAt = t
	s.hasEarliestInsert = false
	s.dirty = false
}

func (s *CommandSlice[C, P]) Current() (P, bool) { return s.current, s.hasCurrent }

func (s *CommandSlice[C, P]) HasChanged() bool { return s.hasChanged }
func (s *CommandSlice[C, P]) IsDirty() bool    { return s.dirty }
func (s *CommandSlice[C, P]) ClearChanged()    { s.hasChanged = false }

func (s *CommandSlice[C, P]) Visit(fn func(C)) {
	for _, c := range s.commands {
		fn(c)
	}
}

// Flush discards every command and resets cumulative state to defaults.
func (s *CommandSlice[C, P]) Flush() {
	s.commands = nil
	s.current = s.defaults
	s.hasCurrent = true
	s.lastQueryAt = 0
	s.hasEarliestInsert = false
	s.dirty = true
}

func (s *CommandSlice[C, P]) SetLimits(points int, seconds float64) {
	s.limitPoints = points
	s.limitTime = seconds
}

func (s *CommandSlice[C, P]) LimitByPrefs() {
	if s.limitTime > 0 {
		s.commands = LimitByTime(s.commands, s.limitTime)
	}
	if s.limitPoints > 0 {
		s.commands = LimitByPoints(s.commands, s.limitPoints)
	}
}
