package slices

import (
	"reflect"
	"testing"

	"github.com/signalsfoundry/tacsim/entity"
)

func TestBeamCommandSliceCumulativeMerge(t *testing.T) {
	s := NewBeamCommandSlice(entity.BeamPrefs{})
	s.Insert(entity.BeamCommand{Time: 0, Prefs: entity.BeamPrefs{
		Common:             entity.CommonPrefs{Name: "beam-1"},
		AcceptProjectorIDs: []entity.ObjectId{1, 2},
	}})
	s.Insert(entity.BeamCommand{Time: 10, Prefs: entity.BeamPrefs{
		Common: entity.CommonPrefs{Name: "beam-1-renamed"},
		// AcceptProjectorIDs left empty: must not clobber the cached value.
	}})

	s.Update(20)
	cur, ok := s.Current()
	if !ok {
		t.Fatal("expected current prefs")
	}
	if cur.Common.Name != "beam-1-renamed" {
		t.Fatalf("expected scalar field overwritten, got %q", cur.Common.Name)
	}
	if !reflect.DeepEqual(cur.AcceptProjectorIDs, []entity.ObjectId{1, 2}) {
		t.Fatalf("expected repeated field preserved from earlier command, got %v", cur.AcceptProjectorIDs)
	}
}

func TestBeamCommandSliceRepeatedFieldReplacement(t *testing.T) {
	s := NewBeamCommandSlice(entity.BeamPrefs{})
	s.Insert(entity.BeamCommand{Time: 0, Prefs: entity.BeamPrefs{AcceptProjectorIDs: []entity.ObjectId{1, 2}}})
	s.Insert(entity.BeamCommand{Time: 10, Prefs: entity.BeamPrefs{AcceptProjectorIDs: []entity.ObjectId{9}}})

	s.Update(20)
	cur, _ := s.Current()
	if !reflect.DeepEqual(cur.AcceptProjectorIDs, []entity.ObjectId{9}) {
		t.Fatalf("expected non-empty repeated field to replace wholesale, got %v", cur.AcceptProjectorIDs)
	}
}

func TestBeamCommandSliceBackwardJumpReplays(t *testing.T) {
	s := NewBeamCommandSlice(entity.BeamPrefs{})
	s.Insert(entity.BeamCommand{Time: 0, Prefs: entity.BeamPrefs{Common: entity.CommonPrefs{Name: "a"}}})
	s.Insert(entity.BeamCommand{Time: 10, Prefs: entity.BeamPrefs{Common: entity.CommonPrefs{Name: "b"}}})
	s.Insert(entity.BeamCommand{Time: 20, Prefs: entity.BeamPrefs{Common: entity.CommonPrefs{Name: "c"}}})

	s.Update(25)
	cur, _ := s.Current()
	if cur.Common.Name != "c" {
		t.Fatalf("expected 'c' at t=25, got %q", cur.Common.Name)
	}

	// Jump backward: must replay from the start, not keep the stale merge.
	s.Update(5)
	cur, _ = s.Current()
	if cur.Common.Name != "a" {
		t.Fatalf("expected replay to 'a' at t=5, got %q", cur.Common.Name)
	}
}

func TestGateCommandSliceScalarOverwrite(t *testing.T) {
	s := NewGateCommandSlice(entity.GatePrefs{})
	s.Insert(entity.GateCommand{Time: 0, Prefs: entity.GatePrefs{FillPattern: "solid"}})
	s.Insert(entity.GateCommand{Time: 5, Prefs: entity.GatePrefs{FillPattern: "hatch"}})

	s.Update(100)
	cur, ok := s.Current()
	if !ok || cur.FillPattern != "hatch" {
		t.Fatalf("expected latest scalar to win, got %+v ok=%v", cur, ok)
	}
}

func TestBeamCommandSliceBackwardJumpBeforeFirstCommandRestoresDefaults(t *testing.T) {
	defaults := entity.BeamPrefs{Common: entity.CommonPrefs{Name: "factory-default"}}
	s := NewBeamCommandSlice(defaults)
	s.Insert(entity.BeamCommand{Time: 10, Prefs: entity.BeamPrefs{Common: entity.CommonPrefs{Name: "renamed"}}})

	s.Update(20)
	cur, ok := s.Current()
	if !ok || cur.Common.Name != "renamed" {
		t.Fatalf("expected 'renamed' at t=20, got %+v ok=%v", cur, ok)
	}

	// Before the first command, the cache must hold the entity's own captured
	// defaults, not a generic zero value.
	s.Update(5)
	cur, ok = s.Current()
	if !ok {
		t.Fatal("expected current to hold the captured defaults, not be absent")
	}
	if cur.Common.Name != "factory-default" {
		t.Fatalf("expected captured default name, got %q", cur.Common.Name)
	}
}

func TestCommandSliceOutOfOrderInsertNotSkipped(t *testing.T) {
	s := NewGateCommandSlice(entity.GatePrefs{FillPattern: "none"})
	s.Insert(entity.GateCommand{Time: 10, Prefs: entity.GatePrefs{FillPattern: "solid"}})
	s.Update(10)
	cur, _ := s.Current()
	if cur.FillPattern != "solid" {
		t.Fatalf("expected 'solid' at t=10, got %q", cur.FillPattern)
	}

	// Move forward first so lastQueryAt advances past t=10.
	s.Update(20)

	// Now insert a command at a time at-or-before the last query time — this
	// must not be silently skipped by the next incremental Update.
	s.Insert(entity.GateCommand{Time: 15, Prefs: entity.GatePrefs{FillPattern: "hatch"}})

	s.Update(25)
	cur, ok := s.Current()
	if !ok || cur.FillPattern != "hatch" {
		t.Fatalf("expected out-of-order insert at t=15 to be picked up by t=25, got %+v ok=%v", cur, ok)
	}
}
