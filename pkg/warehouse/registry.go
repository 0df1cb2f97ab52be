package warehouse

import (
	"cmp"
	"slices"
)

// maskWidth is the number of distinct interest types the bitmask filter
// can cover. Above it the registry falls back to set lookups.
const maskWidth = 64

// collectorState is the per-dispatch bookkeeping for one collector.
type collectorState struct {
	c        Collector
	name     string
	interest Interest

	// cap and count implement per-collector truncation.
	cap       int
	count     int
	truncated bool

	// errs is this collector's slice of the dispatch error log.
	errs []CollectorError

	// quarantined stops all further calls after a timeout overrun.
	quarantined bool

	// ignoreMask/ignoreSet encode IgnoreInside; exactly one is active,
	// depending on whether the type universe fits the mask width.
	ignoreMask uint64
	ignoreSet  map[string]struct{}

	// worker is the dedicated call goroutine, present only when a
	// timeout is configured.
	worker *worker
}

// registry owns the collector list and, once frozen, the routing table.
type registry struct {
	states map[string]*collectorState
	frozen bool

	// routes maps a token type to the collectors subscribed to it,
	// sorted by collector name.
	routes map[string][]*collectorState

	// bits assigns one bit per type over the *sorted* type universe, so
	// the mapping is identical across processes and registration orders.
	// Empty when the universe exceeds maskWidth.
	bits    map[string]uint64
	useMask bool

	// ignoreTypes is the union of every collector's IgnoreInside set.
	ignoreTypes map[string]struct{}
}

func newRegistry() *registry {
	return &registry{
		states: make(map[string]*collectorState),
	}
}

// register adds or replaces a collector by name. Valid only before the
// registry is frozen.
func (r *registry) register(c Collector, limits Limits) error {
	if r.frozen {
		return ErrRegistryFrozen
	}
	name := c.Name()
	r.states[name] = &collectorState{
		c:    c,
		name: name,
		cap:  limits.ItemCap(name),
	}
	return nil
}

// freeze reads every collector's Interest once and compiles the routing
// table and interest filters. Determinism: bit assignment runs over the
// sorted union of type names, and per-type dispatch lists are sorted by
// collector name, so identical documents produce identical results on
// every node no matter the registration order.
func (r *registry) freeze() {
	if r.frozen {
		return
	}
	r.frozen = true

	r.routes = make(map[string][]*collectorState)
	r.ignoreTypes = make(map[string]struct{})

	universe := make(map[string]struct{})
	for _, st := range r.states {
		st.interest = st.c.Interest()
		for _, t := range st.interest.Types {
			universe[t] = struct{}{}
		}
		for _, t := range st.interest.IgnoreInside {
			universe[t] = struct{}{}
			r.ignoreTypes[t] = struct{}{}
		}
	}

	types := make([]string, 0, len(universe))
	for t := range universe {
		types = append(types, t)
	}
	slices.Sort(types)

	r.useMask = len(types) <= maskWidth
	if r.useMask {
		r.bits = make(map[string]uint64, len(types))
		for i, t := range types {
			r.bits[t] = 1 << uint(i)
		}
	}

	for _, st := range r.states {
		if r.useMask {
			for _, t := range st.interest.IgnoreInside {
				st.ignoreMask |= r.bits[t]
			}
		} else {
			st.ignoreSet = make(map[string]struct{}, len(st.interest.IgnoreInside))
			for _, t := range st.interest.IgnoreInside {
				st.ignoreSet[t] = struct{}{}
			}
		}
		for _, t := range st.interest.Types {
			r.routes[t] = append(r.routes[t], st)
		}
	}

	for t := range r.routes {
		slices.SortFunc(r.routes[t], func(a, b *collectorState) int {
			return cmp.Compare(a.name, b.name)
		})
	}
}

// sortedStates returns all collector states ordered by name.
func (r *registry) sortedStates() []*collectorState {
	out := make([]*collectorState, 0, len(r.states))
	for _, st := range r.states {
		out = append(out, st)
	}
	slices.SortFunc(out, func(a, b *collectorState) int {
		return cmp.Compare(a.name, b.name)
	})
	return out
}

// clear drops the collector list and routing table. FinalizeAll calls it
// to break warehouse/collector reference cycles deterministically.
func (r *registry) clear() {
	r.states = nil
	r.routes = nil
	r.bits = nil
	r.ignoreTypes = nil
}
