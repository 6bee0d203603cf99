package slices

import "github.com/signalsfoundry/tacsim/entity"

// LobSlice is an accumulating line-of-bearing slice: unlike StateSlice, its
// "current" view is every retained point up to the query time, not a single
// interpolated sample — a LOB group draws a fan of rays, not one pointer.
// Every inserted point is retained; the sliding time window and record-count
// cap are applied non-destructively at query time, relative to the query
// time t rather than to the newest inserted point, so Current() reflects
// the window as of whatever time Update was last called with — including
// after moving backward to an earlier t.
type LobSlice struct {
	points []entity.LobGroupPoint

	maxPoints  int
	maxSeconds float64

	currentTime float64
	hasChanged  bool
}

// NewLobSlice returns an empty slice with no retention caps (unlimited).
func NewLobSlice() *LobSlice {
	return &LobSlice{}
}

// SetMaxPoints caps the number of retained records (a record is the set of
// points sharing one insertion time, e.g. a fan of rays); 0 disables the
// cap. The cap is applied at query time, not by discarding data here.
func (s *LobSlice) SetMaxPoints(n int) { s.maxPoints = n }

// SetMaxSeconds caps the query-time window by time span; 0 disables the
// cap. The cap is applied at query time, not by discarding data here.
func (s *LobSlice) SetMaxSeconds(secs float64) { s.maxSeconds = secs }

// Insert adds a point in time order. Retention caps are not applied here —
// every point stays retained so that moving the query time backward can
// still see it.
func (s *LobSlice) Insert(p entity.LobGroupPoint) {
	idx := lowerBound(s.points, p.TimeSec())
	s.points = append(s.points, p)
	copy(s.points[idx+1:], s.points[idx:])
	s.points[idx] = p
	s.hasChanged = true
}

// Update sets the query time; Current() then reports every retained point
// at or before t, windowed by the configured caps relative to t.
func (s *LobSlice) Update(t float64) {
	s.currentTime = t
}

// DeltaTime returns the gap in seconds between t and the latest retained
// point strictly before t, or -1 if there is no such point.
func (s *LobSlice) DeltaTime(t float64) float64 {
	idx := lowerBound(s.points, t)
	if idx == 0 {
		return -1
	}
	return t - s.points[idx-1].TimeSec()
}

// Current returns every retained point with time in the window
// [currentTime - maxSeconds, currentTime] (or all points at or before
// currentTime, if maxSeconds is unset), further limited to the most recent
// maxPoints records (a record being a distinct insertion time) if set.
func (s *LobSlice) Current() []entity.LobGroupPoint {
	visible := s.points[:upperBound(s.points, s.currentTime)]

	start := 0
	if s.maxSeconds > 0 {
		start = lowerBound(visible, s.currentTime-s.maxSeconds)
	}
	windowed := limitRecordsByCount(visible[start:], s.maxPoints)

	return append([]entity.LobGroupPoint(nil), windowed...)
}

// limitRecordsByCount returns the suffix of points containing at most the
// last maxRecords distinct timestamps ("records"), counting each shared
// insertion time once regardless of how many points it carries. maxRecords
// <= 0 disables the cap.
func limitRecordsByCount(points []entity.LobGroupPoint, maxRecords int) []entity.LobGroupPoint {
	if maxRecords <= 0 || len(points) == 0 {
		return points
	}
	distinct := 0
	var last float64
	start := 0
	for i := len(points) - 1; i >= 0; i-- {
		t := points[i].TimeSec()
		if i == len(points)-1 || t != last {
			distinct++
			last = t
		}
		if distinct > maxRecords {
			start = i + 1
			break
		}
		start = i
	}
	return points[start:]
}

func (s *LobSlice) NumItems() int { return len(s.points) }

func (s *LobSlice) HasChanged() bool { return s.hasChanged }
func (s *LobSlice) ClearChanged()    { s.hasChanged = false }

// Flush discards every retained point.
func (s *LobSlice) Flush() {
	s.points = nil
	s.currentTime = 0
}
