package timeline

// VisualizationClock is a presentation-layer proxy over an authoritative
// Clock (the "data clock") that can optionally lock onto it, or run its own
// independent local Clock instead. Locking makes VisualizationClock a
// pass-through: every accessor and mutator reads/writes the data clock, and
// data-clock notifications are forwarded to the proxy's own observers.
// Unlocking detaches it onto a private local Clock that starts synced to
// wherever the data clock last was, after which the two evolve
// independently until re-locked.
type VisualizationClock struct {
	Broadcaster

	data  *Clock
	local *Clock

	locked bool

	lockObservers []LockObserver
}

// NewVisualizationClock returns a proxy locked onto dataClock. Both the data
// clock and the proxy's own local clock are attached from construction, so
// that unlocking and relocking never needs to attach/detach observers
// mid-flight; which one is currently forwarded is decided per-notification
// by active().
func NewVisualizationClock(dataClock *Clock, refYear int) *VisualizationClock {
	v := &VisualizationClock{
		data:   dataClock,
		local:  NewClock(refYear, nil),
		locked: true,
	}
	v.attach(dataClock)
	v.attach(v.local)
	return v
}

// active returns whichever clock is currently authoritative for this proxy.
func (v *VisualizationClock) active() *Clock {
	if v.locked {
		return v.data
	}
	return v.local
}

func (v *VisualizationClock) attach(c *Clock) {
	c.RegisterTimeObserver(vizTimeForwarder{v: v, source: c})
	c.RegisterModeObserver(vizModeForwarder{v: v, source: c})
}

func (v *VisualizationClock) detach(c *Clock) {
	c.RemoveTimeObserver(vizTimeForwarder{v: v, source: c})
	c.RemoveModeObserver(vizModeForwarder{v: v, source: c})
}

// vizTimeForwarder relays its source Clock's time notifications onward to
// the proxy's own observers, but only while source is the active one; this
// keeps the detached local/data clock's background ticking from leaking
// notifications to observers who should only hear about the active clock.
type vizTimeForwarder struct {
	v      *VisualizationClock
	source *Clock
}

func (f vizTimeForwarder) OnSetTime(t Timestamp, isJump bool) {
	if f.v.active() != f.source {
		return
	}
	f.v.notifySetTime(t, isJump)
}
func (f vizTimeForwarder) OnTimeLoop() {
	if f.v.active() != f.source {
		return
	}
	f.v.notifyTimeLoop()
}
func (f vizTimeForwarder) AdjustTime(oldTime Timestamp, newTime *Timestamp) {
	// Downstream adjustment belongs to the wrapped clock's own observer
	// dispatch; the proxy does not additionally narrow it.
}

type vizModeForwarder struct {
	v      *VisualizationClock
	source *Clock
}

func (f vizModeForwarder) OnModeChange(m Mode) {
	if f.v.active() != f.source {
		return
	}
	f.v.notifyModeChange(m)
}
func (f vizModeForwarder) OnDirectionChange(d Direction) {
	if f.v.active() != f.source {
		return
	}
	f.v.notifyDirectionChange(d)
}
func (f vizModeForwarder) OnScaleChange(scale float64) {
	if f.v.active() != f.source {
		return
	}
	f.v.notifyScaleChange(scale)
}
func (f vizModeForwarder) OnBoundsChange(start, end Timestamp) {
	if f.v.active() != f.source {
		return
	}
	f.v.notifyBoundsChange(start, end)
}
func (f vizModeForwarder) OnCanLoopChange(canLoop bool) {
	if f.v.active() != f.source {
		return
	}
	f.v.notifyCanLoopChange(canLoop)
}
func (f vizModeForwarder) OnUserEditableChanged(editable bool) {
	if f.v.active() != f.source {
		return
	}
	f.v.notifyUserEditableChanged(editable)
}

// SetLockedToDataClock switches between pass-through (locked) and
// independent local playback (unlocked). Locking re-syncs the local clock's
// state into the data clock is not performed; unlocking instead syncs the
// local clock to the data clock's current time so the transition is
// seamless from the viewer's perspective.
func (v *VisualizationClock) SetLockedToDataClock(locked bool) {
	if locked == v.locked {
		return
	}
	if !locked {
		// Detaching: seed the local clock from the data clock's current state.
		v.local.SetModeWithStart(v.data.Mode(), v.data.CurrentTime())
		v.local.SetStartTime(v.data.StartTime())
		v.local.SetEndTime(v.data.EndTime())
		v.local.SetTime(v.data.CurrentTime())
	}
	v.locked = locked
	v.notifyLockChanged(locked)
}

// IsLockedToDataClock reports the current lock state.
func (v *VisualizationClock) IsLockedToDataClock() bool { return v.locked }

func (v *VisualizationClock) notifyLockChanged(locked bool) {
	for _, o := range v.lockObservers {
		o.OnLockChanged(locked)
	}
}

// RegisterLockObserver adds o to be notified of lock-state changes.
func (v *VisualizationClock) RegisterLockObserver(o LockObserver) {
	for _, existing := range v.lockObservers {
		if existing == o {
			return
		}
	}
	v.lockObservers = append(v.lockObservers, o)
}

// RemoveLockObserver removes o (idempotent).
func (v *VisualizationClock) RemoveLockObserver(o LockObserver) {
	out := v.lockObservers[:0:0]
	for _, existing := range v.lockObservers {
		if existing != o {
			out = append(out, existing)
		}
	}
	v.lockObservers = out
}

// --- Pass-through accessors/mutators: all operate on the active clock. ---

func (v *VisualizationClock) Mode() Mode             { return v.active().Mode() }
func (v *VisualizationClock) CurrentTime() Timestamp { return v.active().CurrentTime() }
func (v *VisualizationClock) StartTime() Timestamp   { return v.active().StartTime() }
func (v *VisualizationClock) EndTime() Timestamp     { return v.active().EndTime() }
func (v *VisualizationClock) TimeScale() float64     { return v.active().TimeScale() }
func (v *VisualizationClock) TimeDirection() Direction {
	return v.active().TimeDirection()
}
func (v *VisualizationClock) CanLoop() bool        { return v.active().CanLoop() }
func (v *VisualizationClock) IsUserEditable() bool { return v.active().IsUserEditable() }

func (v *VisualizationClock) SetTime(t Timestamp)          { v.active().SetTime(t) }
func (v *VisualizationClock) SetTimeScale(scale float64)   { v.active().SetTimeScale(scale) }
func (v *VisualizationClock) SetStartTime(t Timestamp)     { v.active().SetStartTime(t) }
func (v *VisualizationClock) SetEndTime(t Timestamp)       { v.active().SetEndTime(t) }
func (v *VisualizationClock) SetCanLoop(can bool)          { v.active().SetCanLoop(can) }
func (v *VisualizationClock) PlayForward()                 { v.active().PlayForward() }
func (v *VisualizationClock) PlayReverse()                 { v.active().PlayReverse() }
func (v *VisualizationClock) Stop()                        { v.active().Stop() }
func (v *VisualizationClock) StepForward()                 { v.active().StepForward() }
func (v *VisualizationClock) StepBackward()                { v.active().StepBackward() }
func (v *VisualizationClock) IncreaseScale()                { v.active().IncreaseScale() }
func (v *VisualizationClock) DecreaseScale()                { v.active().DecreaseScale() }

// Idle advances the local clock while unlocked and does nothing while
// locked. The data clock is advanced by its own owner; a proxy never drives
// the data clock's idle loop, only the frame coordinator does.
func (v *VisualizationClock) Idle() {
	if !v.locked {
		v.local.Idle()
	}
}
