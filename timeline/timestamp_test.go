package timeline

import "testing"

func TestTimestampSentinelOrdering(t *testing.T) {
	normal := NewTimestamp(2024, 0)
	if !MinTimeStamp.Before(normal) {
		t.Fatal("MinTimeStamp must be before any normal timestamp")
	}
	if !normal.Before(InfiniteTimeStamp) {
		t.Fatal("any normal timestamp must be before InfiniteTimeStamp")
	}
	if !MinTimeStamp.Before(InfiniteTimeStamp) {
		t.Fatal("MinTimeStamp must be before InfiniteTimeStamp")
	}
	if InfiniteTimeStamp.Before(InfiniteTimeStamp) {
		t.Fatal("a sentinel is never before itself")
	}
}

func TestTimestampCrossReferenceYearComparison(t *testing.T) {
	a := NewTimestamp(2024, 86400*365) // one year of seconds into 2024
	b := NewTimestamp(2025, 0)         // start of 2025
	if !a.Equal(b) && a.Before(b) == a.After(b) {
		t.Fatalf("expected a consistent ordering across reference years")
	}
}

func TestTimestampAddAndSub(t *testing.T) {
	a := NewTimestamp(2024, 10)
	b := a.Add(5)
	if b.Sub(a) != 5 {
		t.Fatalf("expected Add(5) then Sub to round-trip to 5, got %v", b.Sub(a))
	}
}

func TestTimestampSubOfSentinelPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Sub of a sentinel to panic")
		}
	}()
	_ = MinTimeStamp.Sub(NewTimestamp(2024, 0))
}
