// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowNeverExceedsCapacity(t *testing.T) {
	for _, size := range []int{1, 2, 5, 10, 99} {
		t.Run(fmt.Sprintf("WindowOf%d", size), func(t *testing.T) {
			w := NewWindow(size)
			assert.Equal(t, 0, w.Len())

			for i := 0; i < size*5; i++ {
				w.Push(float64(i))
				assert.LessOrEqual(t, w.Len(), size)
			}
			assert.True(t, w.Full())
			assert.Equal(t, size, w.Cap())
		})
	}
}

func TestWindowKeepsArrivalOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	w := NewWindow(5)
	var model []float64

	for i := 0; i < 500; i++ {
		v := 2 + rng.Float64()*398
		w.Push(v)
		model = append(model, v)
		if len(model) > 5 {
			model = model[1:]
		}
		if rng.Intn(40) == 0 {
			w.Clear()
			model = nil
		}

		require.Equal(t, len(model), w.Len())
		if len(model) == 0 {
			assert.Empty(t, w.Values())
			continue
		}
		assert.Equal(t, model, w.Values())

		oldest, ok := w.Oldest()
		require.True(t, ok)
		assert.Equal(t, model[0], oldest)
		newest, ok := w.Newest()
		require.True(t, ok)
		assert.Equal(t, model[len(model)-1], newest)
	}
}

func TestWindowEmptyAccessors(t *testing.T) {
	w := NewWindow(3)
	_, ok := w.Oldest()
	assert.False(t, ok)
	_, ok = w.Newest()
	assert.False(t, ok)

	w.Push(10)
	w.Clear()
	assert.Equal(t, 0, w.Len())
	assert.False(t, w.Full())
	_, ok = w.Newest()
	assert.False(t, ok)
}
