// SPDX-License-Identifier: MIT

package acg

// cached holds a derived value together with a dirty bit. Get recomputes
// only when dirty; every mutation path calls MarkDirty.
type cached[T any] struct {
	dirty   bool
	val     T
	compute func() T
}

func newCached[T any](compute func() T) *cached[T] {
	return &cached[T]{dirty: true, compute: compute}
}

// Get returns the current value, recomputing it if needed.
func (c *cached[T]) Get() T {
	if c.dirty {
		c.val = c.compute()
		c.dirty = false
	}

	return c.val
}

// MarkDirty schedules recomputation on the next Get.
func (c *cached[T]) MarkDirty() { c.dirty = true }
