package warehouse

import (
	"fmt"
	"time"
)

// The watchdog bounds each collector call by wall-clock time.
//
// Go offers no preemptive abort of a running call, so the mechanism is a
// dedicated worker goroutine per collector with a synchronous handoff: the
// dispatcher sends the call and waits for the result or the deadline,
// whichever comes first. On a deadline the collector is quarantined: it
// receives no further calls, its result carries the timeout error, and the
// abandoned call may still run to completion on its worker without ever
// being able to block dispatch again. This is the documented replacement
// for a signal-based per-call interrupt; with a zero timeout the worker
// indirection is skipped entirely and calls run inline.

// callOutcome is what a guarded call produced.
type callOutcome struct {
	processed bool
	err       error
	panicked  bool
	panicVal  any
}

// callRequest is one synchronous handoff to a worker.
type callRequest struct {
	fn  func() (bool, error)
	out chan callOutcome
}

// worker runs collector calls on a dedicated goroutine.
type worker struct {
	in chan callRequest
}

func startWorker() *worker {
	wk := &worker{in: make(chan callRequest)}
	go wk.loop()
	return wk
}

func (wk *worker) loop() {
	for req := range wk.in {
		req.out <- runSafe(req.fn)
	}
}

func (wk *worker) stop() {
	close(wk.in)
}

// runSafe executes fn under a panic boundary.
func runSafe(fn func() (bool, error)) (out callOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = callOutcome{panicked: true, panicVal: r}
		}
	}()
	processed, err := fn()
	return callOutcome{processed: processed, err: err}
}

// startWorkers spins up one worker per collector when a timeout is
// configured. Without a timeout collectors run inline on the dispatch
// goroutine.
func (w *Warehouse) startWorkers() {
	if w.limits.CollectorTimeout <= 0 {
		return
	}
	for _, st := range w.reg.states {
		st.worker = startWorker()
	}
}

// stopWorkers closes every worker channel. A worker still stuck in an
// abandoned call drains out on its own once (if ever) that call returns.
func (w *Warehouse) stopWorkers() {
	for _, st := range w.reg.states {
		if st.worker != nil {
			st.worker.stop()
			st.worker = nil
		}
	}
}

// runGuarded executes one collector call under the panic boundary and,
// when configured, the wall-clock watchdog. A non-nil CollectorError means
// the failure was isolated; dispatch decides whether it is fatal.
func (w *Warehouse) runGuarded(st *collectorState, tokenIndex int, fn func() (bool, error)) (bool, *CollectorError) {
	var out callOutcome

	if st.worker == nil {
		out = runSafe(fn)
	} else {
		req := callRequest{fn: fn, out: make(chan callOutcome, 1)}
		st.worker.in <- req

		timer := time.NewTimer(w.limits.CollectorTimeout)
		select {
		case out = <-req.out:
			timer.Stop()
		case <-timer.C:
			st.quarantined = true
			w.logger.Warn("collector quarantined after timeout",
				"collector", st.name,
				"token", tokenIndex,
				"budget", w.limits.CollectorTimeout,
			)
			return false, &CollectorError{
				Collector:  st.name,
				TokenIndex: tokenIndex,
				Kind:       ErrorKindTimeout,
				Err:        fmt.Errorf("call exceeded %s budget", w.limits.CollectorTimeout),
			}
		}
	}

	if out.panicked {
		return false, &CollectorError{
			Collector:  st.name,
			TokenIndex: tokenIndex,
			Kind:       ErrorKindPanic,
			Err:        fmt.Errorf("panic: %v", out.panicVal),
		}
	}
	if out.err != nil {
		return out.processed, &CollectorError{
			Collector:  st.name,
			TokenIndex: tokenIndex,
			Kind:       ErrorKindError,
			Err:        out.err,
		}
	}
	return out.processed, nil
}

// finalizeGuarded drains one collector under the same isolation boundary.
// The token index -1 marks a Finalize-phase failure in the error log.
func (w *Warehouse) finalizeGuarded(st *collectorState) (any, *CollectorError) {
	var payload any

	processedFn := func() (bool, error) {
		p, err := st.c.Finalize(w)
		payload = p
		return true, err
	}

	_, cerr := w.runGuarded(st, -1, processedFn)
	if cerr != nil {
		return nil, cerr
	}
	return payload, nil
}
