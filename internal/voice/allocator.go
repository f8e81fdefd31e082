package voice

import "sync/atomic"

// Allocator maps note events onto pool slots with a single rotating cursor.
//
// It is blind round-robin: every note-on advances the cursor and overwrites
// whatever occupies the next slot, held or not. There is no priority, no
// oldest-release stealing and no "pool full" condition.
//
// An Allocator is driven from one goroutine only. Cursor may be read from
// any goroutine.
type Allocator struct {
	pool   *Pool
	next   int
	cursor atomic.Int32
}

// NewAllocator returns an allocator over pool with the cursor at slot 0.
func NewAllocator(pool *Pool) *Allocator {
	return &Allocator{pool: pool}
}

// Cursor returns the slot the last note-on landed in.
func (a *Allocator) Cursor() int { return int(a.cursor.Load()) }

// NoteOn starts note on the next slot. Velocity 0 is ignored entirely.
func (a *Allocator) NoteOn(note, velocity uint8) {
	if velocity == 0 {
		return
	}
	a.next = (a.next + 1) % a.pool.Len()
	a.cursor.Store(int32(a.next)) //nolint:gosec // bounded by the pool size
	a.pool.voices[a.next].strike(note)
}

// NoteOff releases every slot holding note. Unmatched notes are a no-op.
func (a *Allocator) NoteOff(note uint8) {
	for _, v := range a.pool.voices {
		if v.Note() == note {
			v.release()
		}
	}
}

// ReleaseAll releases every slot.
func (a *Allocator) ReleaseAll() {
	for _, v := range a.pool.voices {
		v.release()
	}
}
