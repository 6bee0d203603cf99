package timeline

import (
	"math"
	"time"
)

// FreewheelThreshold is the minimum delta, in seconds, below which an
// explicit SetTime() while in Freewheel mode is ignored.
const FreewheelThreshold = 0.1

// scaleLadder is the fixed set of scale values increaseScale/decreaseScale
// step through.
var scaleLadder = []float64{0, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 50, 100}

// Clock is the authoritative simulation-time state machine: mode/direction,
// wall-clock-backed advancement, bounds, loop policy, and derived
// editability.
type Clock struct {
	Broadcaster

	refYear int
	wall    *wallClock

	currentTime Timestamp
	startTime   Timestamp
	endTime     Timestamp

	canLoop          bool
	mode             Mode
	direction        Direction
	isPlaying        bool
	controlsDisabled bool

	realScale float64
	stepScale float64
}

// NewClock constructs a Clock in ModeStep, stopped, at MinTimeStamp, with an
// unbounded end time, loop enabled, and a default step scale of 0.1 second.
// A nil nowFn defaults to the real wall clock (time.Now).
func NewClock(refYear int, nowFn func() time.Time) *Clock {
	c := &Clock{
		refYear:     refYear,
		wall:        newWallClock(nowFn),
		currentTime: MinTimeStamp,
		startTime:   MinTimeStamp,
		endTime:     InfiniteTimeStamp,
		canLoop:     true,
		mode:        ModeStep,
		direction:   Stop,
		realScale:   1.0,
		stepScale:   0.1,
	}
	return c
}

// --- Accessors ---

func (c *Clock) Mode() Mode                { return c.mode }
func (c *Clock) IsLiveMode() bool          { return IsLiveMode(c.mode) }
func (c *Clock) CurrentTime() Timestamp    { return c.currentTime }
func (c *Clock) StartTime() Timestamp      { return c.startTime }
func (c *Clock) EndTime() Timestamp        { return c.endTime }
func (c *Clock) IsPlaying() bool           { return c.isPlaying }
func (c *Clock) ControlsDisabled() bool    { return c.controlsDisabled }

// RealTime reports whether the clock is in one of the real-time-like modes
// (Realtime, Freewheel, Simulation), i.e. whether TimeScale() returns
// realScale rather than stepScale.
func (c *Clock) RealTime() bool {
	return c.mode == ModeRealtime || c.mode == ModeFreewheel || c.mode == ModeSimulation
}

// TimeScale returns the active scale for the current mode.
func (c *Clock) TimeScale() float64 {
	if c.RealTime() {
		return c.realScale
	}
	return c.stepScale
}

// CanLoop reports whether the clock is permitted to loop. Freewheel never
// loops regardless of the stored flag.
func (c *Clock) CanLoop() bool {
	if c.mode == ModeFreewheel {
		return false
	}
	return c.canLoop
}

// TimeDirection returns Stop whenever the clock isn't playing, else the
// stored direction.
func (c *Clock) TimeDirection() Direction {
	if !c.isPlaying {
		return Stop
	}
	return c.direction
}

// IsUserEditable reports whether a user may freely retime the clock: the
// controls must be enabled, the end time must be bounded, and the mode must
// not be a live mode.
func (c *Clock) IsUserEditable() bool {
	return !c.controlsDisabled && !c.endTime.IsInfinite() && !IsLiveMode(c.mode)
}

// withUserEditableScope captures IsUserEditable() before running fn and
// fires OnUserEditableChanged exactly once if fn's mutations flipped it.
// Every mutator that can affect editability (SetMode, SetEndTime,
// SetControlsDisabled) must be wrapped in this helper rather than comparing
// state ad hoc.
func (c *Clock) withUserEditableScope(fn func()) {
	was := c.IsUserEditable()
	fn()
	now := c.IsUserEditable()
	if was != now {
		c.notifyUserEditableChanged(now)
	}
}

// --- Mutators ---

// SetControlsDisabled enables or disables user controls outright.
func (c *Clock) SetControlsDisabled(disabled bool) {
	c.withUserEditableScope(func() {
		c.controlsDisabled = disabled
	})
}

// SetTimeScale sets the scale for the active mode. Negative scales are
// refused silently; zero is legal ("paused in place").
func (c *Clock) SetTimeScale(scale float64) {
	if scale < 0 || math.IsNaN(scale) {
		return
	}
	old := c.TimeScale()
	if old == scale {
		return
	}
	if c.RealTime() {
		c.realScale = scale
	} else {
		c.stepScale = scale
	}
	c.restartWallClock(c.currentTime)
	c.notifyScaleChange(scale)
}

// SetStartTime moves the lower bound and re-clamps the current time if
// needed. In Simulation mode the start time is pinned to MinTimeStamp.
func (c *Clock) SetStartTime(t Timestamp) {
	if t.Equal(c.startTime) {
		return
	}
	if c.mode == ModeSimulation {
		c.startTime = MinTimeStamp
	} else {
		c.startTime = t
	}
	c.notifyBoundsChange(c.startTime, c.endTime)
	if clamped := c.clamp(c.currentTime); !clamped.Equal(c.currentTime) {
		c.SetTime(clamped)
	}
}

// SetEndTime moves the upper bound and re-clamps the current time if
// needed. In Simulation mode the end time is pinned to InfiniteTimeStamp.
func (c *Clock) SetEndTime(t Timestamp) {
	if t.Equal(c.endTime) {
		return
	}
	c.withUserEditableScope(func() {
		if c.mode == ModeSimulation {
			c.endTime = InfiniteTimeStamp
		} else {
			c.endTime = t
		}
		c.notifyBoundsChange(c.startTime, c.endTime)
		if clamped := c.clamp(c.currentTime); !clamped.Equal(c.currentTime) {
			c.SetTime(clamped)
		}
	})
}

// SetCanLoop toggles loop policy (no-op and no notification if unchanged).
func (c *Clock) SetCanLoop(can bool) {
	if can == c.canLoop {
		return
	}
	c.canLoop = can
	c.notifyCanLoopChange(can)
}

// SetMode transitions to newMode, reusing the current time as liveStart.
func (c *Clock) SetMode(newMode Mode) {
	c.SetModeWithStart(newMode, c.currentTime)
}

// SetModeWithStart transitions to newMode; liveStart seeds Freewheel's and
// Simulation's initial current/bounds. Freewheel is permitted to re-enter
// itself (to rebase liveStart); every other mode no-ops on a same-mode call.
func (c *Clock) SetModeWithStart(newMode Mode, liveStart Timestamp) {
	oldMode := c.mode
	if newMode == oldMode && newMode != ModeFreewheel {
		return
	}
	oldScale := c.TimeScale()

	c.withUserEditableScope(func() {
		c.mode = newMode

		if IsLiveMode(oldMode) && !IsLiveMode(newMode) {
			c.SetCanLoop(true)
			c.direction = Forward
			c.Stop()
		}

		switch newMode {
		case ModeFreewheel:
			c.SetStartTime(liveStart)
			c.SetEndTime(liveStart)
			c.SetTime(liveStart)
			c.realScale = 1.0
			c.PlayForward()
		case ModeSimulation:
			c.SetStartTime(MinTimeStamp)
			c.SetEndTime(InfiniteTimeStamp)
			c.SetTime(liveStart)
			c.realScale = 0.0
			c.PlayForward()
		}

		if oldMode == ModeSimulation {
			c.realScale = 1.0
		}

		c.notifyModeChange(newMode)
		if c.TimeScale() != oldScale {
			c.notifyScaleChange(c.TimeScale())
		}

		if newMode == ModeRealtime {
			c.restartWallClock(c.currentTime)
		}
	})
}

// SetTime jumps to t (clamped to bounds, except Freewheel's upper clamp
// bypass), always flagged as a jump.
func (c *Clock) SetTime(t Timestamp) {
	c.setTimeThresholded(t, true)
}

func (c *Clock) setTimeThresholded(t Timestamp, isJump bool) {
	if c.mode == ModeFreewheel && t.kind == kindNormal && c.currentTime.kind == kindNormal &&
		math.Abs(t.Sub(c.currentTime)) < FreewheelThreshold {
		return
	}
	c.restartWallClock(t)
	c.setTimeNoThreshold(t, isJump)
}

func (c *Clock) setTimeNoThreshold(t Timestamp, isJump bool) {
	newTime := c.clamp(t)
	if !newTime.Equal(c.currentTime) {
		c.currentTime = newTime
		c.notifySetTime(newTime, isJump)
	}
}

// clamp bounds val to [startTime, endTime], except Freewheel's upper bound
// is not enforced (Freewheel extends its end time instead of clamping).
func (c *Clock) clamp(val Timestamp) Timestamp {
	if val.Before(c.startTime) {
		return c.startTime
	}
	if val.After(c.endTime) && c.mode != ModeFreewheel {
		return c.endTime
	}
	return val
}

func (c *Clock) restartWallClock(sync Timestamp) {
	c.wall.stop()
	c.wall.reset()
	c.wall.setScale(c.TimeScale())
	c.wall.start(sync.SecondsSinceRefYear(c.refYear))
}

// --- Controls ---

func (c *Clock) DecreaseScale() { c.SetTimeScale(nextScale(false, c.TimeScale())) }
func (c *Clock) IncreaseScale() { c.SetTimeScale(nextScale(true, c.TimeScale())) }

// StepBackward is refused in live mode.
func (c *Clock) StepBackward() {
	if c.IsLiveMode() {
		return
	}
	c.Stop()
	c.subtractFromTime(c.TimeScale())
}

// StepForward is refused in live mode.
func (c *Clock) StepForward() {
	if c.IsLiveMode() {
		return
	}
	c.Stop()
	c.addToTime(c.TimeScale())
}

// PlayReverse is refused in Freewheel (freewheel is forward-only).
func (c *Clock) PlayReverse() {
	if c.mode == ModeFreewheel {
		return
	}
	if !c.isPlaying || c.direction != Reverse {
		c.isPlaying = true
		c.direction = Reverse
		c.restartWallClock(c.currentTime)
		c.notifyDirectionChange(Reverse)
	}
}

// PlayForward starts/continues forward playback.
func (c *Clock) PlayForward() {
	if !c.isPlaying || c.direction != Forward {
		c.isPlaying = true
		c.direction = Forward
		c.restartWallClock(c.currentTime)
		c.notifyDirectionChange(Forward)
	}
}

// Stop halts playback. Freewheel can only be stopped by leaving the mode.
func (c *Clock) Stop() {
	if c.mode == ModeFreewheel || (!c.isPlaying && c.direction == Stop) {
		return
	}
	c.isPlaying = false
	c.direction = Stop
	c.notifyDirectionChange(Stop)
}

// Idle is the per-frame advance step. It is a no-op when not playing.
func (c *Clock) Idle() {
	if !c.isPlaying {
		return
	}

	if c.direction == Forward {
		if c.mode == ModeStep {
			c.addToTime(c.stepScale)
			return
		}
		c.idleForwardRealtime()
		return
	}

	// Reverse: only reachable for Step/Realtime (Freewheel/Simulation force
	// Forward on entry and refuse PlayReverse).
	if c.mode == ModeStep {
		c.subtractFromTime(c.stepScale)
	} else {
		c.subtractFromTime(c.wall.getDeltaTime() * c.realScale)
	}
}

func (c *Clock) idleForwardRealtime() {
	jumped := false
	newTime := NewTimestamp(c.refYear, c.wall.getTime())
	c.adjustTime(c.currentTime, &newTime)
	c.currentTime = newTime

	switch c.mode {
	case ModeFreewheel:
		if c.currentTime.After(c.endTime) {
			c.SetEndTime(c.currentTime)
		}
	default: // ModeRealtime, ModeSimulation
		if c.currentTime.After(c.endTime) {
			if c.CanLoop() {
				c.currentTime = c.startTime
				c.restartWallClock(c.currentTime)
				jumped = true
			} else {
				c.currentTime = c.endTime
				c.Stop()
			}
		}
	}
	c.notifySetTime(c.currentTime, jumped)
	if jumped {
		c.notifyTimeLoop()
	}
}

// addToTime advances currentTime forward by howMuch seconds, looping or
// clamping+stopping at endTime as appropriate. It is not used in Freewheel,
// which computes its own absolute time each idle tick.
func (c *Clock) addToTime(howMuch float64) {
	if howMuch <= 0 {
		return
	}
	var newTime Timestamp
	jump := false
	if !c.currentTime.Before(c.endTime) {
		if c.CanLoop() {
			newTime = c.startTime
			jump = true
		} else {
			c.Stop()
			return
		}
	} else {
		newTime = c.currentTime.Add(howMuch)
		if newTime.After(c.endTime) {
			newTime = c.endTime
		}
		c.adjustTime(c.currentTime, &newTime)
	}
	c.setTimeNoThreshold(newTime, jump)
	if jump {
		c.notifyTimeLoop()
	}
}

func (c *Clock) subtractFromTime(howMuch float64) {
	if howMuch < 0 {
		return
	}
	var newTime Timestamp
	jump := false
	if !c.currentTime.After(c.startTime) {
		if c.CanLoop() {
			newTime = c.endTime
			jump = true
		} else {
			c.Stop()
			return
		}
	} else {
		newTime = c.currentTime.Add(-howMuch)
		if newTime.Before(c.startTime) {
			newTime = c.startTime
		}
	}
	c.setTimeThresholded(newTime, jump)
	if jump {
		c.notifyTimeLoop()
	}
}

func nextScale(up bool, value float64) float64 {
	idx := -1
	for i, v := range scaleLadder {
		if v == value {
			idx = i
			break
		}
	}
	if idx < 0 {
		// value isn't on the ladder (custom scale): snap to the nearest rung
		// in the requested direction.
		for i, v := range scaleLadder {
			if up && v > value {
				return v
			}
			if !up && v < value {
				idx = i
			}
		}
		if !up && idx >= 0 {
			return scaleLadder[idx]
		}
		if up {
			return scaleLadder[len(scaleLadder)-1]
		}
		return scaleLadder[0]
	}
	if up {
		if idx == len(scaleLadder)-1 {
			return value
		}
		return scaleLadder[idx+1]
	}
	if idx == 0 {
		return value
	}
	return scaleLadder[idx-1]
}
