// Package timeline implements the authoritative simulation clock: its
// mode/direction state machine, wall-clock-backed time advancement, and the
// observer broadcaster that downstream components (principally the data
// store) subscribe to.
package timeline

import (
	"fmt"
	"time"
)

// timestampKind distinguishes the two sentinel values from ordinary
// timestamps so comparisons never depend on float overflow behavior.
type timestampKind int

const (
	kindNormal timestampKind = iota
	kindMin
	kindInfinite
)

// Timestamp is an absolute instant, expressed as a reference year plus
// seconds elapsed since the start of that year. It supports ordering,
// subtraction (in seconds), and addition of a duration in seconds.
type Timestamp struct {
	refYear int
	seconds float64
	kind    timestampKind
}

// MinTimeStamp is the earliest representable instant.
var MinTimeStamp = Timestamp{kind: kindMin}

// InfiniteTimeStamp is the unbounded sentinel used for open-ended end times.
var InfiniteTimeStamp = Timestamp{kind: kindInfinite}

// NewTimestamp builds an ordinary timestamp from a reference year and the
// number of seconds elapsed since Jan 1 of that year.
func NewTimestamp(refYear int, seconds float64) Timestamp {
	return Timestamp{refYear: refYear, seconds: seconds, kind: kindNormal}
}

// FromSeconds is an alias of NewTimestamp kept for readability at call
// sites that are explicitly converting a raw "seconds since ref year" value.
func FromSeconds(refYear int, seconds float64) Timestamp {
	return NewTimestamp(refYear, seconds)
}

// ReferenceYear returns the timestamp's reference year. Sentinels return 0.
func (t Timestamp) ReferenceYear() int {
	if t.kind != kindNormal {
		return 0
	}
	return t.refYear
}

// IsMin reports whether t is MinTimeStamp.
func (t Timestamp) IsMin() bool { return t.kind == kindMin }

// IsInfinite reports whether t is InfiniteTimeStamp.
func (t Timestamp) IsInfinite() bool { return t.kind == kindInfinite }

// absolute converts a normal timestamp to a wall-clock instant for
// cross-reference-year comparisons. Sentinels never reach this path because
// Before/After/Equal special-case them first.
func (t Timestamp) absolute() time.Time {
	return time.Date(t.refYear, time.January, 1, 0, 0, 0, 0, time.UTC).Add(
		time.Duration(t.seconds * float64(time.Second)))
}

// Before reports whether t occurs strictly before other.
func (t Timestamp) Before(other Timestamp) bool {
	if t.kind == kindMin {
		return other.kind != kindMin
	}
	if other.kind == kindInfinite {
		return t.kind != kindInfinite
	}
	if t.kind == kindInfinite || other.kind == kindMin {
		return false
	}
	return t.absolute().Before(other.absolute())
}

// After reports whether t occurs strictly after other.
func (t Timestamp) After(other Timestamp) bool { return other.Before(t) }

// Equal reports whether t and other represent the same instant.
func (t Timestamp) Equal(other Timestamp) bool {
	if t.kind != kindNormal || other.kind != kindNormal {
		return t.kind == other.kind
	}
	if t.refYear == other.refYear {
		return t.seconds == other.seconds
	}
	return t.absolute().Equal(other.absolute())
}

// Less is an alias for Before, useful when Timestamp is used as a sort key.
func (t Timestamp) Less(other Timestamp) bool { return t.Before(other) }

// Sub returns the number of seconds elapsed from other to t (t - other).
// Both operands must be normal timestamps; subtracting a sentinel panics,
// since no finite duration represents it.
func (t Timestamp) Sub(other Timestamp) float64 {
	if t.kind != kindNormal || other.kind != kindNormal {
		panic("timeline: Sub of a sentinel timestamp is undefined")
	}
	return t.absolute().Sub(other.absolute()).Seconds()
}

// Add returns t shifted forward by the given number of seconds (negative
// shifts it backward). Sentinels are returned unchanged.
func (t Timestamp) Add(secs float64) Timestamp {
	if t.kind != kindNormal {
		return t
	}
	return Timestamp{refYear: t.refYear, seconds: t.seconds + secs, kind: kindNormal}
}

// SecondsSinceRefYear converts t to seconds elapsed since Jan 1 of the given
// reference year, enabling comparisons/arithmetic across differing
// reference years. Sentinels return +/-Inf-like large magnitudes instead of
// panicking, since callers use this primarily for wall-clock anchoring.
func (t Timestamp) SecondsSinceRefYear(refYear int) float64 {
	switch t.kind {
	case kindMin:
		return -1e18
	case kindInfinite:
		return 1e18
	}
	anchor := time.Date(refYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	return t.absolute().Sub(anchor).Seconds()
}

func (t Timestamp) String() string {
	switch t.kind {
	case kindMin:
		return "MIN_TIME_STAMP"
	case kindInfinite:
		return "INFINITE_TIME_STAMP"
	default:
		return fmt.Sprintf("%d+%.3fs", t.refYear, t.seconds)
	}
}
