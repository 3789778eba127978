// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// Graph maps entrypoints to their dependencies.
// Both are identified by DepID, i.e. by file name.
//
// It is safe for concurrent use. Adding dependencies of different
// entrypoints never blocks each other.
// Once frozen, it can only be read or drained.
type Graph struct {
	mu      sync.RWMutex
	entries map[string]*depSet
	// order of entrypoints, in seeding order.
	order []DepID

	frozen atomic.Bool
}

type depSet struct {
	mu   sync.Mutex
	deps map[string]DepID
}

// Entry is an entrypoint and its dependencies.
type Entry struct {
	Entrypoint string   `json:"path"`
	Deps       []string `json:"deps"`
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		entries: make(map[string]*depSet),
	}
}

// NewGraphFromEntries creates a frozen graph from entries,
// e.g. entries loaded from a state file.
func NewGraphFromEntries(entries []Entry) *Graph {
	g := NewGraph()
	for _, e := range entries {
		g.Seed(e.Entrypoint)
		for _, d := range e.Deps {
			g.Add(e.Entrypoint, d)
		}
	}
	g.Freeze()
	return g
}

// Seed adds an empty entry for each entrypoint.
// Entrypoints are inserted concurrently; if two entrypoints have the same
// file name, the one given first is kept.
func (g *Graph) Seed(entrypoints ...string) {
	g.checkMutable("seed")
	var wg sync.WaitGroup
	for _, ep := range entrypoints {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := NewDepID(ep).Key()
			g.mu.Lock()
			defer g.mu.Unlock()
			if _, ok := g.entries[key]; ok {
				return
			}
			g.entries[key] = &depSet{deps: make(map[string]DepID)}
		}()
	}
	wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	seen := make(map[string]bool, len(g.order))
	for _, id := range g.order {
		seen[id.Key()] = true
	}
	for _, ep := range entrypoints {
		id := NewDepID(ep)
		if seen[id.Key()] {
			continue
		}
		seen[id.Key()] = true
		g.order = append(g.order, id)
	}
}

func (g *Graph) lookup(entrypoint string) *depSet {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.entries[NewDepID(entrypoint).Key()]
}

func (g *Graph) checkMutable(op string) {
	if g.frozen.Load() {
		panic(fmt.Sprintf("scandeps: %s on frozen graph", op))
	}
}

// Add adds dep to the dependencies of entrypoint.
// It does nothing if entrypoint was not seeded, or if a dependency
// with the same file name was already added.
func (g *Graph) Add(entrypoint, dep string) {
	g.checkMutable("add")
	s := g.lookup(entrypoint)
	if s == nil {
		return
	}
	id := NewDepID(dep)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deps[id.Key()]; ok {
		return
	}
	s.deps[id.Key()] = id
}

// Has reports whether entrypoint has a dependency with the same
// file name as dep.
func (g *Graph) Has(entrypoint, dep string) bool {
	s := g.lookup(entrypoint)
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.deps[NewDepID(dep).Key()]
	return ok
}

// Deps returns the dependencies of entrypoint, sorted.
// It panics if entrypoint was not seeded.
func (g *Graph) Deps(entrypoint string) []string {
	s := g.lookup(entrypoint)
	if s == nil {
		panic(fmt.Sprintf("scandeps: no entry for %s in graph", entrypoint))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted()
}

func (s *depSet) sorted() []string {
	deps := make([]string, 0, len(s.deps))
	for _, id := range s.deps {
		deps = append(deps, id.String())
	}
	sort.Strings(deps)
	return deps
}

// Entrypoints returns entrypoints in seeding order.
func (g *Graph) Entrypoints() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	eps := make([]string, 0, len(g.order))
	for _, id := range g.order {
		eps = append(eps, id.String())
	}
	return eps
}

// Len returns the number of entrypoints.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.order)
}

// Freeze makes g read only.
func (g *Graph) Freeze() {
	g.frozen.Store(true)
}

// Frozen reports whether g is frozen.
func (g *Graph) Frozen() bool {
	return g.frozen.Load()
}

// Entries returns all entries in seeding order without modifying g.
func (g *Graph) Entries() []Entry {
	g.mu.RLock()
	defer g.mu.RUnlock()
	entries := make([]Entry, 0, len(g.order))
	for _, id := range g.order {
		s := g.entries[id.Key()]
		s.mu.Lock()
		entries = append(entries, Entry{Entrypoint: id.String(), Deps: s.sorted()})
		s.mu.Unlock()
	}
	return entries
}

// Drain returns all entries in seeding order, and empties g.
// It panics if g is not frozen.
func (g *Graph) Drain() []Entry {
	if !g.frozen.Load() {
		panic("scandeps: drain on graph that is not frozen")
	}
	entries := g.Entries()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entries = make(map[string]*depSet)
	g.order = nil
	return entries
}
