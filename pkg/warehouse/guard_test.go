package warehouse

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poutila/tokenwarehouse/pkg/token"
)

func TestNewFromViews_TokenLimit(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxTokens = 10

	views := make([]token.View, 11)
	for i := range views {
		views[i] = tv("text", 0)
	}

	_, err := NewFromViews(views, WithLimits(limits))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResourceLimit)

	var lee *LimitExceededError
	require.ErrorAs(t, err, &lee)
	assert.Equal(t, "tokens", lee.Limit)
	assert.Equal(t, 11, lee.Actual)
}

func TestNewFromViews_ByteLimit(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxBytes = 64

	views := []token.View{{Type: "text", Content: strings.Repeat("x", 100)}}

	_, err := NewFromViews(views, WithLimits(limits))
	require.Error(t, err)

	var lee *LimitExceededError
	require.ErrorAs(t, err, &lee)
	assert.Equal(t, "bytes", lee.Limit)
}

func TestNewFromViews_NestingLimit(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxNesting = 5

	var views []token.View
	for i := 0; i < 6; i++ {
		views = append(views, tv("blockquote_open", 1))
	}
	for i := 0; i < 6; i++ {
		views = append(views, tv("blockquote_close", -1))
	}

	_, err := NewFromViews(views, WithLimits(limits))
	require.Error(t, err)

	var lee *LimitExceededError
	require.ErrorAs(t, err, &lee)
	assert.Equal(t, "nesting", lee.Limit)
	assert.Equal(t, 6, lee.Actual)
}

func TestNewFromViews_WithinLimits(t *testing.T) {
	w, err := NewFromViews(headingViews(1, 0, "Title"))
	require.NoError(t, err)
	assert.Equal(t, 3, w.Len())
	assert.Equal(t, StateIdle, w.State())
}

func TestNew_FlattenRespectsTokenCap(t *testing.T) {
	// New flattens raw nodes with the cap as traversal bound, so an
	// over-limit stream is rejected without unbounded work.
	limits := DefaultLimits()
	limits.MaxTokens = 3

	nodes := []token.Node{
		rawNode{typ: "text"}, rawNode{typ: "text"},
		rawNode{typ: "text"}, rawNode{typ: "text"},
	}

	_, err := New(nodes, WithLimits(limits))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrResourceLimit))
}

func TestMeasure_UnclosedOpens(t *testing.T) {
	views := []token.View{
		tv("a_open", 1), tv("b_open", 1), tv("c_open", 1),
	}
	_, depth := measure(views)
	assert.Equal(t, 3, depth)
}

func TestDefaultLimits_TieredItemCaps(t *testing.T) {
	l := DefaultLimits()

	assert.Equal(t, DefaultMaxItems, l.ItemCap("links"))
	assert.Equal(t, DefaultMaxImages, l.ItemCap("images"))
	assert.Equal(t, DefaultMaxTables, l.ItemCap("tables"))
	assert.Equal(t, DefaultMaxItems, l.ItemCap("headings"), "unlisted collectors use the fallback cap")
}

// rawNode is a minimal token.Node for constructor tests.
type rawNode struct {
	typ string
}

func (r rawNode) Type() string              { return r.typ }
func (r rawNode) Nesting() int              { return 0 }
func (r rawNode) Tag() string               { return "" }
func (r rawNode) Map() (int, int, bool)     { return 0, 0, false }
func (r rawNode) Info() string              { return "" }
func (r rawNode) Content() string           { return "" }
func (r rawNode) AttrGet(string) string     { return "" }
func (r rawNode) Children() []token.Node    { return nil }
