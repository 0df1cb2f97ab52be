// Package warehouse implements a single-pass, multi-consumer dispatch
// engine over a canonicalized document token stream.
//
// A Warehouse is constructed once per parsed document. Collectors register
// before the first dispatch, DispatchAll walks the stream exactly once,
// and FinalizeAll drains every collector's result and breaks the
// warehouse/collector reference cycle. Instances are never reused and
// never shared across concurrent callers.
package warehouse

import (
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/poutila/tokenwarehouse/pkg/token"
	"github.com/poutila/tokenwarehouse/pkg/urlnorm"
)

// State is the warehouse lifecycle state.
type State int32

const (
	// StateIdle accepts registrations; dispatch has not started.
	StateIdle State = iota

	// StateDispatching is the single pass over the token stream.
	StateDispatching

	// StateDispatched means the pass completed; results await draining.
	StateDispatched

	// StateFinalized means results were drained and references cleared.
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDispatching:
		return "dispatching"
	case StateDispatched:
		return "dispatched"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Warehouse owns the canonicalized token stream, its index tables, and the
// collector registry for exactly one parsed document.
type Warehouse struct {
	limits Limits
	policy urlnorm.Policy

	views []token.View
	idx   *indexTables
	lines *token.LineCache

	reg   *registry
	state atomic.Int32

	// errLog accumulates every isolated collector failure in dispatch
	// order. Appended only by the dispatch goroutine.
	errLog []CollectorError

	logger *log.Logger
}

// Option configures a Warehouse at construction.
type Option func(*Warehouse)

// WithLimits overrides the default security limits. Zero-valued caps are
// filled with defaults so a partial Limits still fails closed.
func WithLimits(l Limits) Option {
	return func(w *Warehouse) { w.limits = l.withDefaults() }
}

// WithPolicy sets the URL policy exposed to collectors.
func WithPolicy(p urlnorm.Policy) Option {
	return func(w *Warehouse) { w.policy = p }
}

// WithSource provides the raw document text, enabling the line text cache
// and byte-size accounting against the real source.
func WithSource(content []byte) Option {
	return func(w *Warehouse) { w.lines = token.NewLineCache(content) }
}

// WithLogger sets the logger used for quarantine and error-log reporting.
// The default discards everything; the library never writes to stdout.
func WithLogger(logger *log.Logger) Option {
	return func(w *Warehouse) { w.logger = logger }
}

// New builds a warehouse from a raw node stream.
//
// The stream is flattened and canonicalized first (the trust boundary: no
// raw node is touched afterwards), then the resource guard runs, and only
// then are the index tables built. Oversized or over-deep documents fail
// here with ErrResourceLimit before any index work.
func New(nodes []token.Node, opts ...Option) (*Warehouse, error) {
	w := newShell(opts...)

	views := token.Flatten(nodes, w.limits.MaxTokens)
	return w.init(views)
}

// NewFromViews builds a warehouse from an already-canonicalized stream.
// Intended for token sources that run the trust boundary upstream, and
// for tests.
func NewFromViews(views []token.View, opts ...Option) (*Warehouse, error) {
	w := newShell(opts...)
	return w.init(views)
}

func newShell(opts ...Option) *Warehouse {
	w := &Warehouse{
		limits: DefaultLimits(),
		policy: urlnorm.DefaultPolicy(),
		reg:    newRegistry(),
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Warehouse) init(views []token.View) (*Warehouse, error) {
	byteSize, maxDepth := measure(views)
	// Prefer the real source size when available.
	if w.lines.Size() > 0 {
		byteSize = w.lines.Size()
	}

	if err := w.limits.check(len(views), byteSize, maxDepth); err != nil {
		return nil, err
	}

	w.views = views
	w.idx = buildIndexes(views)
	return w, nil
}

// Register adds a collector. Valid only before the first DispatchAll;
// registering a collector with an existing name replaces it.
func (w *Warehouse) Register(c Collector) error {
	if State(w.state.Load()) != StateIdle {
		return ErrRegistryFrozen
	}
	return w.reg.register(c, w.limits)
}

// State returns the current lifecycle state.
func (w *Warehouse) State() State {
	return State(w.state.Load())
}

// Len returns the number of canonicalized tokens.
func (w *Warehouse) Len() int { return len(w.views) }

// View returns the canonicalized token at index i.
func (w *Warehouse) View(i int) (token.View, bool) {
	if i < 0 || i >= len(w.views) {
		return token.View{}, false
	}
	return w.views[i], true
}

// Positions returns the token positions of the given type, in document
// order.
func (w *Warehouse) Positions(tokenType string) []int {
	src := w.idx.byType[tokenType]
	out := make([]int, len(src))
	copy(out, src)
	return out
}

// PairOf returns the partner of a paired token: the close for an open, the
// open for a close. Unpaired tokens return (0, false).
func (w *Warehouse) PairOf(i int) (int, bool) {
	if i < 0 || i >= len(w.views) {
		return 0, false
	}
	if j := w.idx.pairClose[i]; j >= 0 {
		return j, true
	}
	if j := w.idx.pairOpen[i]; j >= 0 {
		return j, true
	}
	return 0, false
}

// ParentOf returns the enclosing opening token, or (0, false) at top level.
func (w *Warehouse) ParentOf(i int) (int, bool) {
	if i < 0 || i >= len(w.views) {
		return 0, false
	}
	if p := w.idx.parents[i]; p >= 0 {
		return p, true
	}
	return 0, false
}

// LineText returns the source text of a 0-based line, when a source was
// attached with WithSource.
func (w *Warehouse) LineText(line int) (string, bool) {
	return w.lines.Text(line)
}

// Limits returns the active security limits.
func (w *Warehouse) Limits() Limits { return w.limits }

// Policy returns the URL policy collectors must use.
func (w *Warehouse) Policy() urlnorm.Policy { return w.policy }

// ErrorLog returns the isolated collector failures recorded so far, in
// dispatch order.
func (w *Warehouse) ErrorLog() []CollectorError {
	out := make([]CollectorError, len(w.errLog))
	copy(out, w.errLog)
	return out
}
