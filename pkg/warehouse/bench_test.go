package warehouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/poutila/tokenwarehouse/pkg/token"
)

// benchDispatch runs a full construct+dispatch+finalize cycle over n link
// tokens. Comparing ns/op between sizes bounds the scaling factor; a
// quadratic collector pattern shows up immediately here.
func benchDispatch(b *testing.B, n int) {
	b.Helper()

	doc := linkDoc(n)
	limits := DefaultLimits()
	limits.CollectorTimeout = 0 // inline calls, no watchdog overhead

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w, err := NewFromViews(doc, WithLimits(limits))
		require.NoError(b, err)

		links := &stubCollector{name: "links", interest: Interest{Types: []string{"link_open"}}}
		sects := &stubCollector{
			name:     "sections",
			interest: Interest{Types: []string{"link_open"}},
			onToken: func(_ int, v token.View, w *Warehouse) error {
				w.SectionOf(v.MapStart)
				return nil
			},
		}
		require.NoError(b, w.Register(links))
		require.NoError(b, w.Register(sects))

		require.NoError(b, w.DispatchAll(context.Background()))
		_, err = w.FinalizeAll()
		require.NoError(b, err)
	}
}

func BenchmarkDispatch1000(b *testing.B) { benchDispatch(b, 1000) }
func BenchmarkDispatch2000(b *testing.B) { benchDispatch(b, 2000) }
func BenchmarkDispatch8000(b *testing.B) { benchDispatch(b, 8000) }
