package slices

// InterpolateFunc computes a synthetic sample of type T at time t, strictly
// between prev and next. Call sites pass a method value off one of the
// Interpolator implementations, e.g. linear.Platform, matching the
// generic's concrete T.
type InterpolateFunc[T Timed] func(t float64, prev, next T) T

// StateSlice is a time-ordered cache of samples of type T, interpolating
// between the two bracketing samples on Update and limiting its retained
// history by point count and/or time span.
type StateSlice[T Timed] struct {
	updates []T

	current      T
	hasCurrent   bool
	interpolated bool

	hasChanged bool
	dirty      bool

	limitPoints int
	limitTime   float64
}

// NewStateSlice returns an empty slice.
func NewStateSlice[T Timed]() *StateSlice[T] {
	return &StateSlice[T]{dirty: true}
}

// Insert adds a sample, maintaining time order. A sample with the same time
// as an existing one replaces it (matching "insert" semantics for repeated
// ingestion of a re-sent update).
func (s *StateSlice[T]) Insert(sample T) {
	idx := lowerBound(s.updates, sample.TimeSec())
	if idx < len(s.updates) && s.updates[idx].TimeSec() == sample.TimeSec() {
		s.updates[idx] = sample
	} else {
		s.updates = append(s.updates, sample)
		copy(s.updates[idx+1:], s.updates[idx:])
		s.updates[idx] = sample
	}
	s.dirty = true
	s.hasChanged = true
}

// NumItems reports the number of retained samples.
func (s *StateSlice[T]) NumItems() int { return len(s.updates) }

// FirstTime returns the time of the earliest retained sample, or 0 if empty.
func (s *StateSlice[T]) FirstTime() float64 {
	if len(s.updates) == 0 {
		return 0
	}
	return s.updates[0].TimeSec()
}

// LastTime returns the time of the latest retained sample, or 0 if empty.
func (s *StateSlice[T]) LastTime() float64 {
	if len(s.updates) == 0 {
		return 0
	}
	return s.updates[len(s.updates)-1].TimeSec()
}

// DeltaTime returns the gap in seconds between t and the latest retained
// sample strictly before t, or -1 if there is no such sample.
func (s *StateSlice[T]) DeltaTime(t float64) float64 {
	idx := lowerBound(s.updates, t)
	if idx == 0 {
		return -1
	}
	return t - s.updates[idx-1].TimeSec()
}

// Update recomputes Current() for time t, using interp to synthesize a
// value when t falls strictly between two retained samples. Before the
// first sample, there is no current sample at all (hasCurrent is cleared) —
// matching "current() returns nullptr when the requested time precedes all
// samples". At or after the last sample, Current is held at the last
// sample, uninterpolated. t < 0 is the "no current value" static-sample
// convention: it returns the slice to its pre-update state without clearing
// retained history.
func (s *StateSlice[T]) Update(t float64, interp InterpolateFunc[T]) {
	if len(s.updates) == 0 {
		s.hasCurrent = false
		s.dirty = false
		return
	}
	if t < 0 {
		s.hasCurrent = false
		s.interpolated = false
		s.dirty = false
		return
	}

	idx := upperBound(s.updates, t)
	switch {
	case idx == 0:
		var zero T
		s.current = zero
		s.hasCurrent = false
		s.interpolated = false
		s.dirty = false
		return
	case idx == len(s.updates):
		s.current = s.updates[len(s.updates)-1]
		s.interpolated = false
	default:
		prev, next := s.updates[idx-1], s.updates[idx]
		if prev.TimeSec() == t {
			s.current = prev
			s.interpolated = false
		} else if next.TimeSec() == t {
			s.current = next
			s.interpolated = false
		} else if interp != nil {
			s.current = interp(t, prev, next)
			s.interpolated = true
		} else {
			s.current = prev
			s.interpolated = false
		}
	}
	s.hasCurrent = true
	s.dirty = false
}

// Current returns the most recently computed sample and whether one exists.
func (s *StateSlice[T]) Current() (T, bool) { return s.current, s.hasCurrent }

// IsInterpolated reports whether Current() was synthesized rather than
// copied verbatim from a retained sample.
func (s *StateSlice[T]) IsInterpolated() bool { return s.interpolated }

// InterpolationBounds returns the two retained samples Current() was
// computed between, when IsInterpolated() is true.
func (s *StateSlice[T]) InterpolationBounds(t float64) (prev, next T, ok bool) {
	idx := upperBound(s.updates, t)
	if idx == 0 || idx == len(s.updates) {
		return prev, next, false
	}
	return s.updates[idx-1], s.updates[idx], true
}

// HasChanged reports whether new data has arrived since the last
// ClearChanged call.
func (s *StateSlice[T]) HasChanged() bool { return s.hasChanged }

// IsDirty reports whether Update must run again before Current() reflects
// the latest insertions.
func (s *StateSlice[T]) IsDirty() bool { return s.dirty }

// ClearChanged resets the HasChanged flag.
func (s *StateSlice[T]) ClearChanged() { s.hasChanged = false }

// Visit calls fn for every retained sample in time order.
func (s *StateSlice[T]) Visit(fn func(T)) {
	for _, u := range s.updates {
		fn(u)
	}
}

// Flush discards every retained sample and clears current state.
func (s *StateSlice[T]) Flush() {
	s.updates = nil
	var zero T
	s.current = zero
	s.hasCurrent = false
	s.interpolated = false
	s.dirty = true
}

// SetLimits configures the retention caps applied by LimitByPrefs. A
// non-positive value disables that cap.
func (s *StateSlice[T]) SetLimits(points int, seconds float64) {
	s.limitPoints = points
	s.limitTime = seconds
}

// LimitByPrefs applies LimitByTime then LimitByPoints using the slice's
// configured caps, the more restrictive of the two winning in combination
// (time limiting runs first so a subsequent point cap can only shrink
// further, never re-admit time-evicted samples).
func (s *StateSlice[T]) LimitByPrefs() {
	if s.limitTime > 0 {
		s.updates = LimitByTime(s.updates, s.limitTime)
	}
	if s.limitPoints > 0 {
		s.updates = LimitByPoints(s.updates, s.limitPoints)
	}
}
