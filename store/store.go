// Package store owns the ECS world holding galaxy entities.
//
// All methods must be called from the render goroutine. Producers on other
// goroutines go through ingest.Queue instead.
package store

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pwng/components"
)

var (
	// ErrEmptyDataSet is reported when a pass needs entities and there are none.
	ErrEmptyDataSet = errors.New("empty data set")
	// ErrNoEntity is returned when an operation targets a dead entity.
	ErrNoEntity = errors.New("entity not alive")
)

// Store wraps the ark world with typed accessors for galaxy components.
type Store struct {
	world *ecs.World

	starMapper *ecs.Map3[
		components.SystemPosition,
		components.Radius,
		components.StarData,
	]
	objectMapper *ecs.Map2[
		components.SystemPosition,
		components.Radius,
	]

	sysMap    *ecs.Map[components.SystemPosition]
	localMap  *ecs.Map[components.LocalPosition]
	radiusMap *ecs.Map[components.Radius]
	starMap   *ecs.Map[components.StarData]
	nameMap   *ecs.Map[components.Name]

	positioned *ecs.Filter1[components.SystemPosition]
	stars      *ecs.Filter2[components.SystemPosition, components.StarData]
	named      *ecs.Filter1[components.Name]

	count int
}

// New creates an empty store.
func New() *Store {
	world := ecs.NewWorld()
	return &Store{
		world: world,
		starMapper: ecs.NewMap3[
			components.SystemPosition,
			components.Radius,
			components.StarData,
		](world),
		objectMapper: ecs.NewMap2[
			components.SystemPosition,
			components.Radius,
		](world),
		sysMap:     ecs.NewMap[components.SystemPosition](world),
		localMap:   ecs.NewMap[components.LocalPosition](world),
		radiusMap:  ecs.NewMap[components.Radius](world),
		starMap:    ecs.NewMap[components.StarData](world),
		nameMap:    ecs.NewMap[components.Name](world),
		positioned: ecs.NewFilter1[components.SystemPosition](world),
		stars:      ecs.NewFilter2[components.SystemPosition, components.StarData](world),
		named:      ecs.NewFilter1[components.Name](world),
	}
}

// Len returns the number of live entities.
func (s *Store) Len() int {
	return s.count
}

// AddStar creates a star entity.
func (s *Store) AddStar(pos components.SystemPosition, radius float64, star components.StarData) ecs.Entity {
	r := components.Radius{R: radius}
	s.count++
	return s.starMapper.NewEntity(&pos, &r, &star)
}

// AddObject creates a positioned entity without star data (planets, ships).
func (s *Store) AddObject(pos components.SystemPosition, radius float64) ecs.Entity {
	r := components.Radius{R: radius}
	s.count++
	return s.objectMapper.NewEntity(&pos, &r)
}

// Alive reports whether e refers to a live entity.
func (s *Store) Alive(e ecs.Entity) bool {
	return s.world.Alive(e)
}

// Remove destroys an entity.
func (s *Store) Remove(e ecs.Entity) error {
	if !s.world.Alive(e) {
		return fmt.Errorf("removing entity: %w", ErrNoEntity)
	}
	s.world.RemoveEntity(e)
	s.count--
	return nil
}

// SetSystemPosition moves an entity in the galaxy frame.
func (s *Store) SetSystemPosition(e ecs.Entity, pos components.SystemPosition) error {
	if !s.world.Alive(e) || !s.sysMap.Has(e) {
		return fmt.Errorf("setting system position: %w", ErrNoEntity)
	}
	*s.sysMap.Get(e) = pos
	return nil
}

// SetLocalPosition sets or replaces the local offset of an entity.
func (s *Store) SetLocalPosition(e ecs.Entity, pos components.LocalPosition) error {
	if !s.world.Alive(e) {
		return fmt.Errorf("setting local position: %w", ErrNoEntity)
	}
	if s.localMap.Has(e) {
		*s.localMap.Get(e) = pos
		return nil
	}
	s.localMap.Add(e, &pos)
	return nil
}

// SetName attaches a hookable name to an entity.
func (s *Store) SetName(e ecs.Entity, name string) error {
	if !s.world.Alive(e) {
		return fmt.Errorf("setting name: %w", ErrNoEntity)
	}
	if s.nameMap.Has(e) {
		s.nameMap.Get(e).Name = name
		return nil
	}
	s.nameMap.Add(e, &components.Name{Name: name})
	return nil
}

// Position returns the system position and local offset of an entity.
// The local offset is zero when the entity has none.
func (s *Store) Position(e ecs.Entity) (components.SystemPosition, components.LocalPosition, bool) {
	if !s.world.Alive(e) || !s.sysMap.Has(e) {
		return components.SystemPosition{}, components.LocalPosition{}, false
	}
	sys := *s.sysMap.Get(e)
	var local components.LocalPosition
	if s.localMap.Has(e) {
		local = *s.localMap.Get(e)
	}
	return sys, local, true
}

// Radius returns the physical radius of an entity.
func (s *Store) Radius(e ecs.Entity) (float64, bool) {
	if !s.world.Alive(e) || !s.radiusMap.Has(e) {
		return 0, false
	}
	return s.radiusMap.Get(e).R, true
}

// Star returns the star data of an entity.
func (s *Store) Star(e ecs.Entity) (components.StarData, bool) {
	if !s.world.Alive(e) || !s.starMap.Has(e) {
		return components.StarData{}, false
	}
	return *s.starMap.Get(e), true
}

// Name returns the hook name of an entity.
func (s *Store) Name(e ecs.Entity) (string, bool) {
	if !s.world.Alive(e) || !s.nameMap.Has(e) {
		return "", false
	}
	return s.nameMap.Get(e).Name, true
}

// EachPositioned calls fn for every entity with a system position.
// local is nil when the entity has no local offset.
// fn must not add or remove entities or components.
func (s *Store) EachPositioned(fn func(e ecs.Entity, sys components.SystemPosition, local *components.LocalPosition)) {
	query := s.positioned.Query()
	for query.Next() {
		e := query.Entity()
		sys := query.Get()
		var local *components.LocalPosition
		if s.localMap.Has(e) {
			local = s.localMap.Get(e)
		}
		fn(e, *sys, local)
	}
}

// EachStar calls fn for every entity with star data.
func (s *Store) EachStar(fn func(sys components.SystemPosition, star components.StarData)) {
	query := s.stars.Query()
	for query.Next() {
		sys, star := query.Get()
		fn(*sys, *star)
	}
}

// Named returns the named entities ordered by name.
func (s *Store) Named() []ecs.Entity {
	type entry struct {
		e    ecs.Entity
		name string
	}
	var entries []entry
	query := s.named.Query()
	for query.Next() {
		entries = append(entries, entry{query.Entity(), query.Get().Name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	out := make([]ecs.Entity, len(entries))
	for i, en := range entries {
		out[i] = en.e
	}
	return out
}
