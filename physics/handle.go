package physics

import "fmt"

// BodyHandle is a generational reference into the world's body arena.
// The zero value is the nil handle; a handle whose body was removed goes stale
// and resolves to nothing instead of to whatever body reuses the slot.
type BodyHandle struct {
	index      uint32
	generation uint32
}

// IsNil reports whether h is the zero handle
func (h BodyHandle) IsNil() bool {
	return h.generation == 0
}

func (h BodyHandle) String() string {
	if h.IsNil() {
		return "body(nil)"
	}
	return fmt.Sprintf("body(%d#%d)", h.index, h.generation)
}

type slot struct {
	generation uint32
	body       *Body
}

// arena is a dense slot array with a free list
type arena struct {
	slots []slot
	free  []uint32
	live  int
}

func (a *arena) insert(b *Body) BodyHandle {
	var index uint32
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, slot{})
		index = uint32(len(a.slots) - 1)
	}
	s := &a.slots[index]
	s.generation++
	s.body = b
	a.live++
	return BodyHandle{index: index, generation: s.generation}
}

func (a *arena) get(h BodyHandle) *Body {
	if h.IsNil() || int(h.index) >= len(a.slots) {
		return nil
	}
	s := a.slots[h.index]
	if s.generation != h.generation {
		return nil
	}
	return s.body
}

func (a *arena) remove(h BodyHandle) *Body {
	b := a.get(h)
	if b == nil {
		return nil
	}
	s := &a.slots[h.index]
	s.body = nil
	// Bump the generation now so the released handle is stale even before reuse
	s.generation++
	a.free = append(a.free, h.index)
	a.live--
	return b
}

// each visits live bodies in slot order
func (a *arena) each(fn func(*Body)) {
	for i := range a.slots {
		if b := a.slots[i].body; b != nil {
			fn(b)
		}
	}
}
