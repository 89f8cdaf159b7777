// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

// Window is a fixed-capacity ring buffer of recent valid distances in
// centimeters. When full, pushing evicts the oldest value.
type Window struct {
	values []float64
	head   int // index of the oldest value
	n      int
}

// NewWindow returns an empty window holding at most size values.
func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{values: make([]float64, size)}
}

// Push appends v, evicting the oldest value when the window is full.
func (w *Window) Push(v float64) {
	if w.n < len(w.values) {
		w.values[(w.head+w.n)%len(w.values)] = v
		w.n++
		return
	}
	w.values[w.head] = v
	w.head = (w.head + 1) % len(w.values)
}

// Len returns the number of values held.
func (w *Window) Len() int { return w.n }

// Cap returns the window capacity.
func (w *Window) Cap() int { return len(w.values) }

// Full reports whether the window holds Cap() values.
func (w *Window) Full() bool { return w.n == len(w.values) }

// Oldest returns the value that arrived first. ok is false when empty.
func (w *Window) Oldest() (v float64, ok bool) {
	if w.n == 0 {
		return 0, false
	}
	return w.values[w.head], true
}

// Newest returns the most recently pushed value. ok is false when empty.
func (w *Window) Newest() (v float64, ok bool) {
	if w.n == 0 {
		return 0, false
	}
	return w.values[(w.head+w.n-1)%len(w.values)], true
}

// Values returns a copy of the contents in arrival order.
func (w *Window) Values() []float64 {
	out := make([]float64, w.n)
	for i := range out {
		out[i] = w.values[(w.head+i)%len(w.values)]
	}
	return out
}

// Clear empties the window.
func (w *Window) Clear() {
	w.head = 0
	w.n = 0
}
