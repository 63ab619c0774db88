package entity

import "fmt"

// defaultPoolFill is how many instances a pool grows by when it runs dry
// and no batch size was given at registration.
const defaultPoolFill = 10

// Factory produces a fresh instance of a concrete class, reset to defaults.
type Factory func() Entity

// ClassInfo describes one registered class: its name, its place in the
// single-inheritance forest, and the instance pool for recycling. A class
// registered without a factory is abstract and can never be instantiated.
// Descriptors are immutable identity and live for the process lifetime.
type ClassInfo struct {
	name     string
	parent   *ClassInfo
	factory  Factory
	poolFill int

	pool      []Entity
	inUse     int
	allocated int
}

// NewClass builds a class descriptor. parent is nil only for root classes;
// factory is nil for abstract classes. poolFill sets the refill batch size,
// with a small default when zero.
func NewClass(name string, parent *ClassInfo, factory Factory, poolFill int) *ClassInfo {
	if poolFill <= 0 {
		poolFill = defaultPoolFill
	}
	return &ClassInfo{
		name:     name,
		parent:   parent,
		factory:  factory,
		poolFill: poolFill,
	}
}

// Name returns the class name.
func (c *ClassInfo) Name() string { return c.name }

// Parent returns the parent class descriptor, or nil for a root class.
func (c *ClassInfo) Parent() *ClassInfo { return c.parent }

// IsConcrete reports whether this class can produce instances.
func (c *ClassInfo) IsConcrete() bool { return c.factory != nil }

// DerivesFrom reports whether this class is the named class or has it
// anywhere up its parent chain.
func (c *ClassInfo) DerivesFrom(name string) bool {
	for ci := c; ci != nil; ci = ci.parent {
		if ci.name == name {
			return true
		}
	}
	return false
}

// NewInstance hands out an instance from the pool, refilling it by the
// batch size first when it has run dry. Ownership transfers to the caller;
// return it with Release when done. Calling this on an abstract class is a
// programming error and returns an error.
//
// Pools are not safe for concurrent use: content loading is single-threaded
// by design, and callers needing more must synchronize externally.
func (c *ClassInfo) NewInstance() (Entity, error) {
	if !c.IsConcrete() {
		return nil, fmt.Errorf("entity: class %s is abstract and cannot be instantiated", c.name)
	}
	if len(c.pool) == 0 {
		c.fill(c.poolFill)
	}
	e := c.pool[len(c.pool)-1]
	c.pool = c.pool[:len(c.pool)-1]
	c.inUse++
	return e, nil
}

// Release resets an instance and returns it to the pool for reuse. The
// instance must have come from this class's pool; there is no runtime check
// that it did. Returns the number of instances still out in use.
func (c *ClassInfo) Release(e Entity) int {
	e.Reset()
	c.pool = append(c.pool, e)
	c.inUse--
	return c.inUse
}

// FillPool pre-allocates n instances, or one batch when n is zero.
func (c *ClassInfo) FillPool(n int) {
	if !c.IsConcrete() {
		return
	}
	if n <= 0 {
		n = c.poolFill
	}
	c.fill(n)
}

// PoolStats returns the free, in-use, and total-ever-allocated instance
// counts, for diagnostics.
func (c *ClassInfo) PoolStats() (free, inUse, allocated int) {
	return len(c.pool), c.inUse, c.allocated
}

func (c *ClassInfo) fill(n int) {
	for i := 0; i < n; i++ {
		c.pool = append(c.pool, c.factory())
		c.allocated++
	}
}
