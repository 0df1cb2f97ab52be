package warehouse

import (
	"context"
	"fmt"

	"github.com/poutila/tokenwarehouse/pkg/token"
)

// cancelCheckInterval is how often the dispatch loop polls the context.
const cancelCheckInterval = 1024

// DispatchAll walks the token stream exactly once, routing each token to
// the collectors interested in it. One-shot: a second call, or a call made
// while a dispatch is running (including from inside a collector's own
// OnToken), returns a ReentrancyError.
//
// Dispatch is single-threaded and synchronous: tokens are visited in
// document order, opens before their nested tokens before their closes.
// Each collector call runs under a panic boundary and, when a timeout is
// configured, a wall-clock watchdog. Failures are recorded in the error
// log and dispatch continues, unless strict mode is enabled.
func (w *Warehouse) DispatchAll(ctx context.Context) error {
	if !w.state.CompareAndSwap(int32(StateIdle), int32(StateDispatching)) {
		return &ReentrancyError{State: State(w.state.Load())}
	}

	w.reg.freeze()
	w.startWorkers()

	// Nesting counters per ignore-inside type. The bitmask mirrors the
	// counters so the common skip check is a single AND.
	depths := make(map[string]int, len(w.reg.ignoreTypes))
	var activeMask uint64

	for i, v := range w.views {
		if i%cancelCheckInterval == 0 {
			select {
			case <-ctx.Done():
				w.state.Store(int32(StateDispatched))
				return fmt.Errorf("dispatch cancelled at token %d: %w", i, ctx.Err())
			default:
			}
		}

		_, isIgnoreType := w.reg.ignoreTypes[v.Type]

		// The opening token of an ignored region counts as inside it:
		// the whole subtree, root included, is suppressed.
		if isIgnoreType && v.Nesting == 1 {
			depths[v.Type]++
			if w.reg.useMask {
				activeMask |= w.reg.bits[v.Type]
			}
		}

		for _, st := range w.reg.routes[v.Type] {
			if st.quarantined {
				continue
			}
			if st.inIgnoredRegion(activeMask, depths, w.reg.useMask) {
				continue
			}
			if st.count >= st.cap {
				// Cap reached: drop for this collector only; the rest
				// of the document still reaches everyone else.
				st.truncated = true
				continue
			}

			if err := w.invoke(st, i, v); err != nil {
				w.state.Store(int32(StateDispatched))
				return err
			}
		}

		if isIgnoreType && v.Nesting == -1 && depths[v.Type] > 0 {
			depths[v.Type]--
			if w.reg.useMask && depths[v.Type] == 0 {
				activeMask &^= w.reg.bits[v.Type]
			}
		}
	}

	w.state.Store(int32(StateDispatched))
	return nil
}

// invoke runs ShouldProcess+OnToken for one collector under the isolation
// boundary. The returned error is non-nil only in strict mode.
func (w *Warehouse) invoke(st *collectorState, index int, v token.View) error {
	processed, cerr := w.runGuarded(st, index, func() (bool, error) {
		if !st.c.ShouldProcess(index, v, w) {
			return false, nil
		}
		return true, st.c.OnToken(index, v, w)
	})

	if processed {
		st.count++
		if st.count >= st.cap {
			// At the cap the result is already partial from the
			// caller's point of view; anything matching later is
			// dropped.
			st.truncated = true
		}
	}

	if cerr != nil {
		w.record(st, *cerr)
		if w.limits.StrictCollectorErrors {
			return fmt.Errorf("strict mode: %w", cerr)
		}
	}
	return nil
}

// record appends one isolated failure to the collector's and the global
// error log.
func (w *Warehouse) record(st *collectorState, cerr CollectorError) {
	st.errs = append(st.errs, cerr)
	w.errLog = append(w.errLog, cerr)
	w.logger.Warn("collector failure isolated",
		"collector", cerr.Collector,
		"kind", string(cerr.Kind),
		"token", cerr.TokenIndex,
		"err", cerr.Err,
	)
}

// FinalizeAll drains every collector's result, keyed by collector name,
// then clears the collector list and routing table so no reference cycle
// outlives the instance. Like DispatchAll it is one-shot.
func (w *Warehouse) FinalizeAll() (map[string]Result, error) {
	if !w.state.CompareAndSwap(int32(StateDispatched), int32(StateFinalized)) {
		switch State(w.state.Load()) {
		case StateFinalized:
			return nil, ErrFinalized
		default:
			return nil, ErrNotDispatched
		}
	}

	results := make(map[string]Result, len(w.reg.states))

	for _, st := range w.reg.sortedStates() {
		res := Result{
			Collector: st.name,
			Count:     st.count,
			Truncated: st.truncated,
		}

		if !st.quarantined {
			payload, cerr := w.finalizeGuarded(st)
			if cerr != nil {
				w.record(st, *cerr)
			} else {
				res.Payload = payload
			}
		}

		res.Errors = st.errs
		results[st.name] = res
	}

	w.stopWorkers()
	w.reg.clear()
	w.views = nil

	return results, nil
}

// inIgnoredRegion reports whether the collector is currently suppressed by
// one of its ignore-inside types.
func (st *collectorState) inIgnoredRegion(activeMask uint64, depths map[string]int, useMask bool) bool {
	if useMask {
		return activeMask&st.ignoreMask != 0
	}
	for t := range st.ignoreSet {
		if depths[t] > 0 {
			return true
		}
	}
	return false
}
