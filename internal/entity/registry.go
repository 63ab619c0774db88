package entity

import (
	"fmt"
	"sort"
	"sync"
)

// RootClass is the abstract ancestor of every content class. Concrete
// trees hang their own descriptors off it and register the lot at start-up.
var RootClass = NewClass("Entity", nil, nil, 0)

// The class registry is global and append-only: classes are registered once
// at program start-up (see presets.RegisterClasses) and never removed.
// Lookup is a linear scan; the registry is small and built exactly once.
var (
	mu      sync.RWMutex
	classes []*ClassInfo
)

// Register adds a class descriptor to the registry.
// Panics if a class with the same name is already registered.
func Register(c *ClassInfo) *ClassInfo {
	mu.Lock()
	defer mu.Unlock()

	for _, existing := range classes {
		if existing.name == c.name {
			panic(fmt.Sprintf("entity: class %q already registered", c.name))
		}
	}
	classes = append(classes, c)
	return c
}

// ClassByName finds a registered class descriptor by its name.
func ClassByName(name string) (*ClassInfo, bool) {
	mu.RLock()
	defer mu.RUnlock()

	for _, c := range classes {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// ClassNames returns the names of every registered class, sorted.
func ClassNames() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(classes))
	for _, c := range classes {
		names = append(names, c.name)
	}
	sort.Strings(names)
	return names
}

// Classes returns a snapshot of every registered class descriptor.
func Classes() []*ClassInfo {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]*ClassInfo, len(classes))
	copy(out, classes)
	return out
}
