package timeline

// TimeObserver is notified whenever the authoritative time changes.
type TimeObserver interface {
	// OnSetTime fires whenever the current time changes. isJump is true iff
	// the transition was non-continuous (loop wrap, explicit SetTime,
	// direction flip at a bound).
	OnSetTime(t Timestamp, isJump bool)
	// OnTimeLoop fires when the clock wraps from end to start (or start to
	// end in reverse) under loop policy.
	OnTimeLoop()
	// AdjustTime is called before a proposed time change is finalized. The
	// observer may narrow newTime forward; see Broadcaster.adjustTime for
	// the smallest-change-wins acceptance rule.
	AdjustTime(oldTime Timestamp, newTime *Timestamp)
}

// ModeObserver is notified of clock configuration changes that are not a
// plain time-value update.
type ModeObserver interface {
	OnModeChange(m Mode)
	OnDirectionChange(d Direction)
	OnScaleChange(scale float64)
	OnBoundsChange(start, end Timestamp)
	OnCanLoopChange(canLoop bool)
	OnUserEditableChanged(editable bool)
}

// LockObserver is implemented by observers that care about
// VisualizationClock's data/local lock state. Lock observers are kept in
// their own list, filled by VisualizationClock.RegisterLockObserver; a mode
// observer that also implements LockObserver receives OnLockChanged only if
// it was registered there as well.
type LockObserver interface {
	OnLockChanged(locked bool)
}

// Broadcaster holds the ordered time-observer and mode-observer lists for a
// single Clock and guarantees registration-order delivery. Removal during
// dispatch is legal: it takes effect on the next dispatch, never the one in
// progress, and a single Broadcaster never re-enters a dispatch of the same
// list (observer callbacks run synchronously on the calling goroutine).
type Broadcaster struct {
	timeObservers []TimeObserver
	modeObservers []ModeObserver

	dispatching       bool
	pendingTimeAdd    []TimeObserver
	pendingTimeRemove []TimeObserver
	pendingModeAdd    []ModeObserver
	pendingModeRemove []ModeObserver
}

// RegisterTimeObserver adds o to the time-observer list (idempotent: a
// duplicate registration is a no-op). If called during an in-progress
// dispatch, the registration is deferred until dispatch completes.
func (b *Broadcaster) RegisterTimeObserver(o TimeObserver) {
	if o == nil || b.hasTimeObserver(o) {
		return
	}
	if b.dispatching {
		b.pendingTimeAdd = append(b.pendingTimeAdd, o)
		return
	}
	b.timeObservers = append(b.timeObservers, o)
}

// RemoveTimeObserver removes o from the time-observer list. Safe to call
// during dispatch and safe to call on an observer that was never
// registered (idempotent).
func (b *Broadcaster) RemoveTimeObserver(o TimeObserver) {
	if b.dispatching {
		b.pendingTimeRemove = append(b.pendingTimeRemove, o)
		return
	}
	b.timeObservers = removeObserver(b.timeObservers, o)
}

// RegisterModeObserver adds o to the mode-observer list (idempotent).
func (b *Broadcaster) RegisterModeObserver(o ModeObserver) {
	if o == nil || b.hasModeObserver(o) {
		return
	}
	if b.dispatching {
		b.pendingModeAdd = append(b.pendingModeAdd, o)
		return
	}
	b.modeObservers = append(b.modeObservers, o)
}

// RemoveModeObserver removes o from the mode-observer list. Idempotent and
// safe during dispatch.
func (b *Broadcaster) RemoveModeObserver(o ModeObserver) {
	if b.dispatching {
		b.pendingModeRemove = append(b.pendingModeRemove, o)
		return
	}
	b.modeObservers = removeObserver(b.modeObservers, o)
}

func (b *Broadcaster) hasTimeObserver(o TimeObserver) bool {
	for _, existing := range b.timeObservers {
		if existing == o {
			return true
		}
	}
	return false
}

func (b *Broadcaster) hasModeObserver(o ModeObserver) bool {
	for _, existing := range b.modeObservers {
		if existing == o {
			return true
		}
	}
	return false
}

func removeObserver[T comparable](list []T, target T) []T {
	out := list[:0:0]
	for _, existing := range list {
		if existing != target {
			out = append(out, existing)
		}
	}
	return out
}

// withDispatch runs fn with pending-mutation deferral engaged, then flushes
// whatever add/remove calls arrived during fn.
func (b *Broadcaster) withDispatch(fn func()) {
	wasDispatching := b.dispatching
	b.dispatching = true
	fn()
	if wasDispatching {
		// Nested dispatch (should not happen in single-threaded use): let the
		// outermost call flush.
		return
	}
	b.dispatching = false
	b.flushPending()
}

func (b *Broadcaster) flushPending() {
	for _, o := range b.pendingTimeAdd {
		b.RegisterTimeObserver(o)
	}
	for _, o := range b.pendingTimeRemove {
		b.RemoveTimeObserver(o)
	}
	for _, o := range b.pendingModeAdd {
		b.RegisterModeObserver(o)
	}
	for _, o := range b.pendingModeRemove {
		b.RemoveModeObserver(o)
	}
	b.pendingTimeAdd = nil
	b.pendingTimeRemove = nil
	b.pendingModeAdd = nil
	b.pendingModeRemove = nil
}

func (b *Broadcaster) notifySetTime(t Timestamp, isJump bool) {
	b.withDispatch(func() {
		for _, o := range b.timeObservers {
			o.OnSetTime(t, isJump)
		}
	})
}

func (b *Broadcaster) notifyTimeLoop() {
	b.withDispatch(func() {
		for _, o := range b.timeObservers {
			o.OnTimeLoop()
		}
	})
}

// adjustTime applies the smallest-change-wins rule: each observer, in
// registration order, may propose a smaller value for newTime. A proposal
// is accepted only if oldTime < proposed < currentProposed; an accepted
// proposal is visible to subsequent observers in the same dispatch.
func (b *Broadcaster) adjustTime(oldTime Timestamp, newTime *Timestamp) {
	b.withDispatch(func() {
		for _, o := range b.timeObservers {
			proposed := *newTime
			o.AdjustTime(oldTime, &proposed)
			if proposed.After(oldTime) && proposed.Before(*newTime) {
				*newTime = proposed
			}
		}
	})
}

func (b *Broadcaster) notifyModeChange(m Mode) {
	b.withDispatch(func() {
		for _, o := range b.modeObservers {
			o.OnModeChange(m)
		}
	})
}

func (b *Broadcaster) notifyDirectionChange(d Direction) {
	b.withDispatch(func() {
		for _, o := range b.modeObservers {
			o.OnDirectionChange(d)
		}
	})
}

func (b *Broadcaster) notifyScaleChange(scale float64) {
	b.withDispatch(func() {
		for _, o := range b.modeObservers {
			o.OnScaleChange(scale)
		}
	})
}

func (b *Broadcaster) notifyBoundsChange(start, end Timestamp) {
	b.withDispatch(func() {
		for _, o := range b.modeObservers {
			o.OnBoundsChange(start, end)
		}
	})
}

func (b *Broadcaster) notifyCanLoopChange(canLoop bool) {
	b.withDispatch(func() {
		for _, o := range b.modeObservers {
			o.OnCanLoopChange(canLoop)
		}
	})
}

func (b *Broadcaster) notifyUserEditableChanged(editable bool) {
	b.withDispatch(func() {
		for _, o := range b.modeObservers {
			o.OnUserEditableChanged(editable)
		}
	})
}
