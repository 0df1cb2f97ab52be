package warehouse

import "github.com/poutila/tokenwarehouse/pkg/token"

// Interest declares a collector's subscription.
type Interest struct {
	// Types lists the token types the collector wants to see.
	Types []string

	// IgnoreInside lists token types whose subtree suppresses dispatch to
	// this collector (e.g. skip a link collector inside fenced code).
	// The opening and closing tokens of the region count as inside it.
	IgnoreInside []string
}

// Collector is a pluggable extractor fed from the single dispatch pass.
//
// Contract: OnToken and Finalize must not block. No network calls, no file
// I/O, no sleeping. Expensive or I/O-bound follow-up work belongs after
// FinalizeAll returns, in an external rate-limited worker. The runtime
// watchdog enforces a wall-clock budget per call; a collector that
// overruns it is quarantined for the rest of the dispatch.
type Collector interface {
	// Name identifies the collector; it keys the result map and the
	// per-collector item caps. Dispatch order among collectors matched to
	// the same token is sorted by name, never registration order.
	Name() string

	// Interest declares the subscription. It is read once, when the
	// registry is frozen at the start of dispatch.
	Interest() Interest

	// ShouldProcess lets a collector skip a token without consuming item
	// budget. It runs under the same isolation boundary as OnToken.
	ShouldProcess(index int, view token.View, w *Warehouse) bool

	// OnToken handles one matched token. A returned error is recorded in
	// the dispatch error log; dispatch continues.
	OnToken(index int, view token.View, w *Warehouse) error

	// Finalize returns the collector's domain-specific payload after the
	// pass completes.
	Finalize(w *Warehouse) (any, error)
}

// Result is one collector's drained output.
type Result struct {
	// Collector is the producing collector's name.
	Collector string `json:"collector"`

	// Count is the number of tokens the collector accepted.
	Count int `json:"count"`

	// Truncated is true when the item count reached the cap; later
	// matching tokens were dropped for this collector.
	Truncated bool `json:"truncated"`

	// Payload is the domain-specific result from Finalize. It is nil when
	// the collector was quarantined or Finalize failed.
	Payload any `json:"payload,omitempty"`

	// Errors lists the isolated failures recorded for this collector.
	Errors []CollectorError `json:"errors,omitempty"`
}
