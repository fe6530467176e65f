package workplane

// History is a stack of applied planes. It always holds at least one entry.
type History struct {
	states []Plane
}

// NewHistory creates a history whose floor entry is initial
func NewHistory(initial Plane) *History {
	return &History{states: []Plane{initial}}
}

// Push records a newly applied plane
func (h *History) Push(p Plane) {
	h.states = append(h.states, p)
}

// Previous discards the most recent plane and returns the one below it.
// With a single entry it returns false and leaves the history unchanged.
func (h *History) Previous() (Plane, bool) {
	if len(h.states) <= 1 {
		return Plane{}, false
	}
	h.states = h.states[:len(h.states)-1]
	return h.states[len(h.states)-1], true
}

// Current returns the most recent plane. It panics on an empty history,
// which NewHistory makes impossible.
func (h *History) Current() Plane {
	if len(h.states) == 0 {
		panic("workplane: empty history")
	}
	return h.states[len(h.states)-1]
}

// First returns the floor entry
func (h *History) First() Plane {
	if len(h.states) == 0 {
		panic("workplane: empty history")
	}
	return h.states[0]
}

// Len returns the number of recorded planes
func (h *History) Len() int {
	return len(h.states)
}

// Truncate drops every entry above the first n and returns the new top.
// n is clamped to [1, Len()].
func (h *History) Truncate(n int) Plane {
	if n < 1 {
		n = 1
	}
	if n < len(h.states) {
		h.states = h.states[:n]
	}
	return h.Current()
}

// Planes returns a copy of the recorded planes, oldest first
func (h *History) Planes() []Plane {
	out := make([]Plane, len(h.states))
	copy(out, h.states)
	return out
}
