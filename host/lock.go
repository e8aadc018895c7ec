package host

import (
	"sync"
	"sync/atomic"
)

// RuntimeLock is the single exclusivity lock required before touching
// managed object handles. Acquire returns a guard whose Release is safe
// to call on every exit path, exactly once taking effect.
type RuntimeLock struct {
	mu sync.Mutex

	guards   sync.Map // uint64 -> *Guard
	nextID   atomic.Uint64
	acquires atomic.Int64
}

// NewRuntimeLock creates an unlocked RuntimeLock.
func NewRuntimeLock() *RuntimeLock {
	return &RuntimeLock{}
}

// Guard is a scoped acquisition of the lock.
type Guard struct {
	l    *RuntimeLock
	id   uint64
	once sync.Once
}

// Acquire blocks until the lock is held and returns its guard.
func (l *RuntimeLock) Acquire() *Guard {
	l.mu.Lock()
	l.acquires.Add(1)
	g := &Guard{l: l, id: l.nextID.Add(1)}
	l.guards.Store(g.id, g)
	return g
}

// Release releases the lock. Additional calls are no-ops.
func (g *Guard) Release() {
	g.once.Do(func() {
		g.l.guards.Delete(g.id)
		g.l.mu.Unlock()
	})
}

// ID identifies the guard; generated code threads it between the
// acquire and release host calls.
func (g *Guard) ID() uint64 {
	return g.id
}

// ReleaseID releases the guard with the given id. Unknown ids are
// ignored, matching Release's idempotence.
func (l *RuntimeLock) ReleaseID(id uint64) {
	if v, ok := l.guards.Load(id); ok {
		v.(*Guard).Release()
	}
}

// Acquisitions reports how many times the lock has been taken. Used to
// assert lock discipline in tests.
func (l *RuntimeLock) Acquisitions() int64 {
	return l.acquires.Load()
}
