// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scheduler orders section generation by dependency. A cycle or an
// unknown dependency in the section graph is a configuration error and fails
// at construction, before any generation starts.
package scheduler

import (
	"fmt"
	"sort"

	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// priority fixes the tiebreak between equally-ready sections so generation
// order is deterministic. Sections not listed sort after listed ones, by
// name.
var priority = map[string]int{
	"methods":      0,
	"results":      1,
	"introduction": 2,
	"discussion":   3,
	"conclusion":   4,
	"abstract":     5,
}

// Scheduler computes a valid generation order over a fixed SectionSpec set
// and answers ready-set queries during execution.
type Scheduler struct {
	specs map[string]types.SectionSpec
	order []string
}

// New validates the dependency graph and precomputes the topological order.
// It fails on duplicate section names, dependencies naming unknown sections,
// and cycles.
func New(specs []types.SectionSpec) (*Scheduler, error) {
	byName := make(map[string]types.SectionSpec, len(specs))
	for _, s := range specs {
		if _, ok := byName[s.Name]; ok {
			return nil, fmt.Errorf("duplicate section %q", s.Name)
		}
		byName[s.Name] = s
	}
	for _, s := range specs {
		for _, dep := range s.DependsOn {
			if _, ok := byName[dep]; !ok {
				return nil, fmt.Errorf("section %q depends on unknown section %q", s.Name, dep)
			}
		}
	}

	sched := &Scheduler{specs: byName}
	order, err := sched.topoSort()
	if err != nil {
		return nil, err
	}
	sched.order = order
	return sched, nil
}

// Order returns the full generation order: a topological sort with the fixed
// priority tiebreak applied at every step.
func (s *Scheduler) Order() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Specs returns the section specs keyed by name.
func (s *Scheduler) Specs() map[string]types.SectionSpec {
	return s.specs
}

// Ready returns the sections that are eligible to start now: not yet started
// and with every dependency terminal. The statuses map is the caller's view
// of current section states; absent sections count as pending. The result is
// sorted by the fixed priority.
func (s *Scheduler) Ready(statuses map[string]types.SectionStatus) []string {
	var ready []string
	for name, spec := range s.specs {
		if statuses[name] != "" && statuses[name] != types.StatusPending {
			continue
		}
		if s.depsResolved(spec, statuses) {
			ready = append(ready, name)
		}
	}
	sortByPriority(ready)
	return ready
}

// Blocked returns the sections that can never start because a dependency is
// non-terminal and no longer in flight. Used to detect stuck runs after the
// worker pool drains.
func (s *Scheduler) Blocked(statuses map[string]types.SectionStatus) []string {
	var blocked []string
	for name, spec := range s.specs {
		if statuses[name].Terminal() {
			continue
		}
		if !s.depsResolved(spec, statuses) {
			blocked = append(blocked, name)
		}
	}
	sortByPriority(blocked)
	return blocked
}

func (s *Scheduler) depsResolved(spec types.SectionSpec, statuses map[string]types.SectionStatus) bool {
	for _, dep := range spec.DependsOn {
		if !statuses[dep].Terminal() {
			return false
		}
	}
	return true
}

// topoSort is Kahn's algorithm with the priority tiebreak on the frontier.
// A non-empty remainder means the graph has a cycle.
func (s *Scheduler) topoSort() ([]string, error) {
	indegree := make(map[string]int, len(s.specs))
	dependents := make(map[string][]string)
	for name, spec := range s.specs {
		indegree[name] = len(spec.DependsOn)
		for _, dep := range spec.DependsOn {
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var frontier []string
	for name, d := range indegree {
		if d == 0 {
			frontier = append(frontier, name)
		}
	}

	var order []string
	for len(frontier) > 0 {
		sortByPriority(frontier)
		next := frontier[0]
		frontier = frontier[1:]
		order = append(order, next)
		for _, dep := range dependents[next] {
			indegree[dep]--
			if indegree[dep] == 0 {
				frontier = append(frontier, dep)
			}
		}
	}

	if len(order) != len(s.specs) {
		var stuck []string
		for name, d := range indegree {
			if d > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("dependency cycle among sections %v", stuck)
	}
	return order, nil
}

func sortByPriority(names []string) {
	sort.Slice(names, func(i, j int) bool {
		pi, iok := priority[names[i]]
		pj, jok := priority[names[j]]
		switch {
		case iok && jok:
			return pi < pj
		case iok:
			return true
		case jok:
			return false
		default:
			return names[i] < names[j]
		}
	})
}

// DefaultSpecs returns the fixed section graph for a standard paper:
// introduction, methods, and results are independent; discussion waits on
// methods and results; conclusion on discussion; abstract on everything
// else.
func DefaultSpecs(models types.ModelsConfig) []types.SectionSpec {
	chain := func(name string) types.ModelChain {
		if c, ok := models.Sections[name]; ok {
			return c
		}
		return models.Default
	}
	return []types.SectionSpec{
		{Name: "introduction", Models: chain("introduction")},
		{Name: "methods", Models: chain("methods")},
		{Name: "results", Models: chain("results")},
		{Name: "discussion", DependsOn: []string{"methods", "results"}, Models: chain("discussion")},
		{Name: "conclusion", DependsOn: []string{"discussion"}, Models: chain("conclusion")},
		{Name: "abstract", DependsOn: []string{"introduction", "methods", "results", "discussion", "conclusion"}, Models: chain("abstract")},
	}
}
