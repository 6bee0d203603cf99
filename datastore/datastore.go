// Package datastore owns the per-entity data slices and advances them in
// lockstep with the authoritative clock: on every clock tick it re-runs
// Update(t) across every live slice, the "frame coordinator" role described
// for the time-machine subsystem.
package datastore

import (
	"sync"

	"github.com/signalsfoundry/tacsim/entity"
	"github.com/signalsfoundry/tacsim/slices"
	"github.com/signalsfoundry/tacsim/timeline"
)

// updatable is satisfied by every slice kind the DataStore drives each tick.
type updatable interface {
	update(t float64)
}

// platformSlice adapts slices.StateSlice[entity.PlatformUpdate] to
// updatable, pinning the interpolation strategy the entity was registered
// with (CreateEntity always uses the linear interpolator).
type platformSlice struct {
	s      *slices.StateSlice[entity.PlatformUpdate]
	interp slices.InterpolateFunc[entity.PlatformUpdate]
}

func (p *platformSlice) update(t float64) { p.s.Update(t, p.interp) }

type beamSlice struct {
	s      *slices.StateSlice[entity.BeamUpdate]
	interp slices.InterpolateFunc[entity.BeamUpdate]
	cmds   *slices.CommandSlice[entity.BeamCommand, entity.BeamPrefs]
}

func (b *beamSlice) update(t float64) {
	b.s.Update(t, b.interp)
	b.cmds.Update(t)
}

type gateSlice struct {
	s      *slices.StateSlice[entity.GateUpdate]
	interp slices.InterpolateFunc[entity.GateUpdate]
	cmds   *slices.CommandSlice[entity.GateCommand, entity.GatePrefs]
}

func (g *gateSlice) update(t float64) {
	g.s.Update(t, g.interp)
	g.cmds.Update(t)
}

type lobSlice struct {
	s *slices.LobSlice
}

func (l *lobSlice) update(t float64) { l.s.Update(t) }

// Entity is the aggregate view of one entity's slices, handed back by
// Platform/Beam/Gate/Lob and used by callers to read current samples.
type Entity struct {
	ID       entity.ObjectId
	Platform *slices.StateSlice[entity.PlatformUpdate]
	Beam     *slices.StateSlice[entity.BeamUpdate]
	BeamCmds *slices.CommandSlice[entity.BeamCommand, entity.BeamPrefs]
	Gate     *slices.StateSlice[entity.GateUpdate]
	GateCmds *slices.CommandSlice[entity.GateCommand, entity.GatePrefs]
	Lob      *slices.LobSlice
}

// DataStore owns every entity's slices and keeps them synced to a Clock's
// current time. It implements timeline.TimeObserver; once registered on a
// Clock, callers never need to call Update directly, only react to the
// Clock they share.
type DataStore struct {
	mu       sync.Mutex
	entities map[entity.ObjectId]*Entity
	drivers  map[entity.ObjectId][]updatable

	lastTime float64
}

// New returns an empty DataStore.
func New() *DataStore {
	return &DataStore{
		entities: make(map[entity.ObjectId]*Entity),
		drivers:  make(map[entity.ObjectId][]updatable),
	}
}

// CreateEntity allocates the slice set for id, defaulting to a linear
// interpolator for continuous samples. A second call for the same id is a
// no-op and returns the existing entity.
func (ds *DataStore) CreateEntity(id entity.ObjectId) *Entity {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if e, ok := ds.entities[id]; ok {
		return e
	}

	var linear slices.LinearInterpolator
	plat := slices.NewStateSlice[entity.PlatformUpdate]()
	beam := slices.NewStateSlice[entity.BeamUpdate]()
	beamCmds := slices.NewBeamCommandSlice(entity.BeamPrefs{})
	gate := slices.NewStateSlice[entity.GateUpdate]()
	gateCmds := slices.NewGateCommandSlice(entity.GatePrefs{})
	lob := slices.NewLobSlice()

	e := &Entity{
		ID:       id,
		Platform: plat,
		Beam:     beam,
		BeamCmds: beamCmds,
		Gate:     gate,
		GateCmds: gateCmds,
		Lob:      lob,
	}
	ds.entities[id] = e
	ds.drivers[id] = []updatable{
		&platformSlice{s: plat, interp: linear.Platform},
		&beamSlice{s: beam, interp: linear.Beam, cmds: beamCmds},
		&gateSlice{s: gate, interp: linear.Gate, cmds: gateCmds},
		&lobSlice{s: lob},
	}
	return e
}

// RemoveEntity discards id and every slice it owned.
func (ds *DataStore) RemoveEntity(id entity.ObjectId) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.entities, id)
	delete(ds.drivers, id)
}

// Entity returns id's slice set, or nil if it was never created.
func (ds *DataStore) Entity(id entity.ObjectId) *Entity {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.entities[id]
}

// InsertPlatformSample adds a platform position sample for id, creating the
// entity if needed. It satisfies the sink interface core.MotionModel feeds
// propagated positions into.
func (ds *DataStore) InsertPlatformSample(id entity.ObjectId, sample entity.PlatformUpdate) {
	e := ds.CreateEntity(id)
	e.Platform.Insert(sample)
}

// InsertBeamSample adds a beam pointing sample (azimuth/elevation/range) for
// id, creating the entity if needed. It satisfies the sink interface
// core.BeamSample output feeds into.
func (ds *DataStore) InsertBeamSample(id entity.ObjectId, sample entity.BeamUpdate) {
	e := ds.CreateEntity(id)
	e.Beam.Insert(sample)
}

// Update re-evaluates every entity's slices at time t. CreateEntity does not
// run an update, so an entity created after the most recent clock tick has
// no current samples until the next Update — callers that add entities
// mid-frame should call Update again before reading.
func (ds *DataStore) Update(t float64) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.lastTime = t
	for _, entityDrivers := range ds.drivers {
		for _, u := range entityDrivers {
			u.update(t)
		}
	}
}

// OnSetTime implements timeline.TimeObserver: every authoritative time
// change drives a full slice update. isJump carries no special handling
// here — both continuous ticks and discontinuous jumps resolve to the same
// Update(t) call, the data slices have no notion of "jump" beyond the
// backward-time-jump replay already implemented by CommandSlice.
func (ds *DataStore) OnSetTime(t timeline.Timestamp, isJump bool) {
	ds.Update(t.SecondsSinceRefYear(t.ReferenceYear()))
}

// OnTimeLoop implements timeline.TimeObserver; slices don't distinguish a
// loop wrap from any other backward jump, so no action is needed beyond the
// OnSetTime that always accompanies a loop.
func (ds *DataStore) OnTimeLoop() {}

// AdjustTime implements timeline.TimeObserver; the data store never narrows
// a proposed time.
func (ds *DataStore) AdjustTime(oldTime timeline.Timestamp, newTime *timeline.Timestamp) {}

// LastTime returns the time of the most recent Update call.
func (ds *DataStore) LastTime() float64 { return ds.lastTime }

// EntityCount returns the number of entities currently tracked.
func (ds *DataStore) EntityCount() int {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return len(ds.entities)
}
