package warehouse

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poutila/tokenwarehouse/pkg/token"
)

func TestBuildIndexes_PairsAndParents(t *testing.T) {
	views := []token.View{
		tv("paragraph_open", 1),  // 0
		tv("inline", 0),          // 1
		tv("link_open", 1),       // 2
		tv("text", 0),            // 3
		tv("link_close", -1),     // 4
		tv("paragraph_close", -1), // 5
	}

	idx := buildIndexes(views)

	assert.Equal(t, 5, idx.pairClose[0])
	assert.Equal(t, 0, idx.pairOpen[5])
	assert.Equal(t, 4, idx.pairClose[2])
	assert.Equal(t, 2, idx.pairOpen[4])

	assert.Equal(t, -1, idx.parents[0])
	assert.Equal(t, 0, idx.parents[1])
	assert.Equal(t, 0, idx.parents[2])
	assert.Equal(t, 2, idx.parents[3])
	// Closers belong to the pair's parent.
	assert.Equal(t, 0, idx.parents[4])
	assert.Equal(t, -1, idx.parents[5])
}

func TestBuildIndexes_ByType(t *testing.T) {
	views := []token.View{
		tv("text", 0), tv("link_open", 1), tv("text", 0), tv("link_close", -1),
	}
	idx := buildIndexes(views)

	assert.Equal(t, []int{0, 2}, idx.byType["text"])
	assert.Equal(t, []int{1}, idx.byType["link_open"])
	assert.Empty(t, idx.byType["image"])
}

func TestBuildIndexes_SectionsWithPreamble(t *testing.T) {
	var views []token.View
	views = append(views, tvm("paragraph_open", 1, 0, 2))
	views = append(views, tv("paragraph_close", -1))
	views = append(views, headingViews(1, 3, "First")...)
	views = append(views, headingViews(2, 7, "Second")...)
	views = append(views, tvm("paragraph_open", 1, 8, 12))
	views = append(views, tv("paragraph_close", -1))

	idx := buildIndexes(views)

	require.Len(t, idx.sections, 3)
	assert.Equal(t, -1, idx.sections[0].HeadingIndex)
	assert.Equal(t, 0, idx.sections[0].StartLine)
	assert.Equal(t, 3, idx.sections[0].EndLine)

	assert.Equal(t, "First", idx.sections[1].Title)
	assert.Equal(t, 1, idx.sections[1].Level)
	assert.Equal(t, 3, idx.sections[1].StartLine)
	assert.Equal(t, 7, idx.sections[1].EndLine)

	assert.Equal(t, "Second", idx.sections[2].Title)
	assert.Equal(t, 2, idx.sections[2].Level)
	assert.Equal(t, 12, idx.sections[2].EndLine)
}

func TestBuildIndexes_NoHeadingsSingleSyntheticSection(t *testing.T) {
	views := []token.View{tvm("paragraph_open", 1, 0, 4), tv("paragraph_close", -1)}
	idx := buildIndexes(views)

	require.Len(t, idx.sections, 1)
	assert.Equal(t, -1, idx.sections[0].HeadingIndex)
	assert.Equal(t, 0, idx.sections[0].StartLine)
	assert.Equal(t, 4, idx.sections[0].EndLine)
}

func TestBuildIndexes_ClampedHeadingStartsSectionAtZero(t *testing.T) {
	// A heading whose raw map was (-100, -50) canonicalizes to (0, 0);
	// the resulting section must start at line 0.
	v := token.View{Type: "heading_open", Nesting: 1, Tag: "h1", HasMap: true}
	v.MapStart, v.MapEnd = 0, 0

	idx := buildIndexes([]token.View{v, tv("inline", 0), tv("heading_close", -1)})

	require.NotEmpty(t, idx.sections)
	assert.Equal(t, 0, idx.sections[0].StartLine)
	assert.GreaterOrEqual(t, idx.sections[0].EndLine, idx.sections[0].StartLine)
}

func TestBuildIndexes_Fences(t *testing.T) {
	views := []token.View{
		{Type: "fence", Info: "go", HasMap: true, MapStart: 2, MapEnd: 6},
		{Type: "code_block", HasMap: true, MapStart: 8, MapEnd: 10},
	}
	idx := buildIndexes(views)

	require.Len(t, idx.fences, 2)
	assert.Equal(t, "go", idx.fences[0].Info)
	assert.Equal(t, 2, idx.fences[0].StartLine)
	assert.Equal(t, 8, idx.fences[1].StartLine)
}

func TestBuildIndexes_HeadingLevel(t *testing.T) {
	assert.Equal(t, 1, headingLevel("h1"))
	assert.Equal(t, 6, headingLevel("h6"))
	assert.Equal(t, 0, headingLevel("h7"))
	assert.Equal(t, 0, headingLevel("div"))
	assert.Equal(t, 0, headingLevel(""))
}

func TestSections_MonotonicityProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("sections are sorted, non-overlapping and start at 0", prop.ForAll(
		func(starts []int) bool {
			var views []token.View
			for _, s := range starts {
				views = append(views,
					token.View{Type: "heading_open", Nesting: 1, Tag: "h2", HasMap: true, MapStart: clamp(s), MapEnd: clamp(s)},
					tv("inline", 0),
					tv("heading_close", -1),
				)
			}
			idx := buildIndexes(views)
			secs := idx.sections

			if len(secs) == 0 || secs[0].StartLine != 0 {
				return false
			}
			for i := range secs {
				if secs[i].StartLine > secs[i].EndLine {
					return false
				}
				if i > 0 && secs[i].StartLine < secs[i-1].EndLine {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(-50, 500)),
	))

	properties.TestingRun(t)
}

func clamp(s int) int {
	if s < 0 {
		return 0
	}
	if s > token.MaxLine {
		return token.MaxLine
	}
	return s
}
