// Package ingest carries entity changes from producer goroutines to the
// render goroutine.
//
// Producers Push changes keyed by their own uint64 IDs. The render
// goroutine Drains the queue once per frame and applies the changes to a
// store.Store, mapping producer IDs to ECS entities.
package ingest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pwng/components"
	"github.com/pthm-cable/pwng/store"
)

// ErrUnknownID is returned for changes that reference an ID never added
// or already removed.
var ErrUnknownID = errors.New("unknown entity id")

// ErrDuplicateID is returned when an add reuses a live ID.
var ErrDuplicateID = errors.New("duplicate entity id")

// Kind identifies a change.
type Kind uint8

const (
	KindAddStar Kind = iota
	KindAddObject
	KindSetLocalPosition
	KindSetName
	KindRemove
	KindBulkDone
)

var kindNames = [...]string{
	KindAddStar:          "add_star",
	KindAddObject:        "add_object",
	KindSetLocalPosition: "set_local_position",
	KindSetName:          "set_name",
	KindRemove:           "remove",
	KindBulkDone:         "bulk_done",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Change is one entity mutation.
type Change struct {
	Kind   Kind
	ID     uint64
	System components.SystemPosition
	Local  components.LocalPosition
	Radius float64
	Star   components.StarData
	Name   string
}

// AddStar creates a star.
func AddStar(id uint64, pos components.SystemPosition, radius float64, star components.StarData) Change {
	return Change{Kind: KindAddStar, ID: id, System: pos, Radius: radius, Star: star}
}

// AddObject creates a non-star object such as a planet or ship.
func AddObject(id uint64, pos components.SystemPosition, radius float64) Change {
	return Change{Kind: KindAddObject, ID: id, System: pos, Radius: radius}
}

// SetLocalPosition moves an entity within its system.
func SetLocalPosition(id uint64, local components.LocalPosition) Change {
	return Change{Kind: KindSetLocalPosition, ID: id, Local: local}
}

// SetName labels an entity, making it a camera hook candidate.
func SetName(id uint64, name string) Change {
	return Change{Kind: KindSetName, ID: id, Name: name}
}

// Remove deletes an entity.
func Remove(id uint64) Change {
	return Change{Kind: KindRemove, ID: id}
}

// BulkDone marks the end of the initial load.
func BulkDone() Change {
	return Change{Kind: KindBulkDone}
}

// DrainResult summarizes one Drain.
type DrainResult struct {
	Applied  int
	Failed   int
	BulkDone bool  // A BulkDone change was seen
	Err      error // First failure, if any
}

// Queue is a mutex-guarded change buffer. Push is safe from any
// goroutine; Drain and Entity must only be called from the render
// goroutine.
type Queue struct {
	mu      sync.Mutex
	pending []Change

	// Render goroutine only
	spare []Change
	ids   map[uint64]ecs.Entity
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{ids: make(map[uint64]ecs.Entity)}
}

// Push appends changes.
func (q *Queue) Push(changes ...Change) {
	q.mu.Lock()
	q.pending = append(q.pending, changes...)
	q.mu.Unlock()
}

// Len returns the number of pending changes.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain applies every pending change to st in push order.
func (q *Queue) Drain(st *store.Store) DrainResult {
	q.mu.Lock()
	batch := q.pending
	q.pending = q.spare[:0]
	q.mu.Unlock()

	var res DrainResult
	for i := range batch {
		c := &batch[i]
		if c.Kind == KindBulkDone {
			res.BulkDone = true
			continue
		}
		if err := q.apply(st, c); err != nil {
			res.Failed++
			if res.Err == nil {
				res.Err = fmt.Errorf("%s %d: %w", c.Kind, c.ID, err)
			}
			continue
		}
		res.Applied++
	}

	clear(batch)
	q.spare = batch[:0]
	return res
}

func (q *Queue) apply(st *store.Store, c *Change) error {
	switch c.Kind {
	case KindAddStar, KindAddObject:
		if e, ok := q.ids[c.ID]; ok && st.Alive(e) {
			return ErrDuplicateID
		}
		var e ecs.Entity
		if c.Kind == KindAddStar {
			e = st.AddStar(c.System, c.Radius, c.Star)
		} else {
			e = st.AddObject(c.System, c.Radius)
		}
		q.ids[c.ID] = e
		return nil
	}

	e, ok := q.ids[c.ID]
	if !ok {
		return ErrUnknownID
	}
	switch c.Kind {
	case KindSetLocalPosition:
		return st.SetLocalPosition(e, c.Local)
	case KindSetName:
		return st.SetName(e, c.Name)
	case KindRemove:
		delete(q.ids, c.ID)
		return st.Remove(e)
	}
	return fmt.Errorf("unhandled change kind %s", c.Kind)
}

// Entity returns the entity created for a producer ID.
func (q *Queue) Entity(id uint64) (ecs.Entity, bool) {
	e, ok := q.ids[id]
	return e, ok
}
