package collectors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poutila/tokenwarehouse/pkg/token"
	"github.com/poutila/tokenwarehouse/pkg/urlnorm"
	"github.com/poutila/tokenwarehouse/pkg/warehouse"
)

// run dispatches the views against the given collectors and drains results.
func run(t *testing.T, views []token.View, cs ...warehouse.Collector) map[string]warehouse.Result {
	t.Helper()

	w, err := warehouse.NewFromViews(views)
	require.NoError(t, err)
	for _, c := range cs {
		require.NoError(t, w.Register(c))
	}
	require.NoError(t, w.DispatchAll(context.Background()))

	results, err := w.FinalizeAll()
	require.NoError(t, err)
	return results
}

func heading(level, line int, title string) []token.View {
	tag := "h1"
	if level == 2 {
		tag = "h2"
	}
	return []token.View{
		{Type: "heading_open", Nesting: 1, Tag: tag, HasMap: true, MapStart: line, MapEnd: line + 1},
		{Type: "inline", Content: title, HasMap: true, MapStart: line, MapEnd: line + 1},
		{Type: "heading_close", Nesting: -1, Tag: tag},
	}
}

func TestLinks_CollectsWithVerdicts(t *testing.T) {
	var views []token.View
	views = append(views, heading(1, 0, "Doc")...)
	views = append(views,
		token.View{Type: "link_open", Nesting: 1, HRef: "https://example.com/a", HasMap: true, MapStart: 2, MapEnd: 3},
		token.View{Type: "link_close", Nesting: -1},
		token.View{Type: "link_open", Nesting: 1, HRef: "javascript:alert(1)", HasMap: true, MapStart: 4, MapEnd: 5},
		token.View{Type: "link_close", Nesting: -1},
	)

	results := run(t, views, NewLinks(urlnorm.DefaultPolicy()))

	res := results["links"]
	assert.Equal(t, 2, res.Count)
	assert.False(t, res.Truncated)

	links, ok := res.Payload.([]Link)
	require.True(t, ok)
	require.Len(t, links, 2)

	assert.True(t, links[0].Allowed)
	assert.Equal(t, "https", links[0].Scheme)
	assert.Equal(t, 2, links[0].Line)
	assert.Equal(t, 0, links[0].Section, "links after the heading belong to its section")

	assert.False(t, links[1].Allowed)
	assert.Equal(t, "javascript", links[1].Scheme)
}

func TestLinks_InvalidURLUnsafeNotFatal(t *testing.T) {
	views := []token.View{
		{Type: "link_open", Nesting: 1, HRef: "http://example.com/\x00"},
		{Type: "link_close", Nesting: -1},
	}

	results := run(t, views, NewLinks(urlnorm.DefaultPolicy()))

	res := results["links"]
	assert.Empty(t, res.Errors)

	links := res.Payload.([]Link)
	require.Len(t, links, 1)
	assert.False(t, links[0].Allowed)
	assert.Empty(t, links[0].Normalized)
}

func TestLinks_IgnoredInsideFence(t *testing.T) {
	views := []token.View{
		{Type: "link_open", Nesting: 1, HRef: "https://kept.example"},
		{Type: "link_close", Nesting: -1},
		// A pathological stream could nest tokens under a fence; the
		// region suppression must hold regardless.
		{Type: "fence", Nesting: 1, Info: "go"},
		{Type: "link_open", Nesting: 1, HRef: "https://dropped.example"},
		{Type: "link_close", Nesting: -1},
		{Type: "fence", Nesting: -1},
	}

	results := run(t, views, NewLinks(urlnorm.DefaultPolicy()))

	links := results["links"].Payload.([]Link)
	require.Len(t, links, 1)
	assert.Equal(t, "https://kept.example", links[0].HRef)
}

func TestImages_Collects(t *testing.T) {
	views := []token.View{
		{Type: "image", HRef: "https://example.com/pic.png", Content: "a picture", HasMap: true, MapStart: 0, MapEnd: 1},
	}

	results := run(t, views, NewImages(urlnorm.DefaultPolicy()))

	images := results["images"].Payload.([]Image)
	require.Len(t, images, 1)
	assert.Equal(t, "https://example.com/pic.png", images[0].Src)
	assert.Equal(t, "a picture", images[0].Alt)
	assert.True(t, images[0].Allowed)
}

func TestHeadings_Outline(t *testing.T) {
	var views []token.View
	views = append(views, heading(1, 0, "Title")...)
	views = append(views, heading(2, 4, "Part")...)

	results := run(t, views, NewHeadings())

	hs := results["headings"].Payload.([]Heading)
	require.Len(t, hs, 2)
	assert.Equal(t, Heading{Level: 1, Text: "Title", Line: 0, Section: 0}, hs[0])
	assert.Equal(t, Heading{Level: 2, Text: "Part", Line: 4, Section: 1}, hs[1])
}

func TestTables_Shape(t *testing.T) {
	views := []token.View{
		{Type: "table_open", Nesting: 1, HasMap: true, MapStart: 0, MapEnd: 4},
		{Type: "tr_open", Nesting: 1},
		{Type: "th_open", Nesting: 1}, {Type: "th_close", Nesting: -1},
		{Type: "th_open", Nesting: 1}, {Type: "th_close", Nesting: -1},
		{Type: "th_open", Nesting: 1}, {Type: "th_close", Nesting: -1},
		{Type: "tr_close", Nesting: -1},
		{Type: "tr_open", Nesting: 1},
		{Type: "td_open", Nesting: 1}, {Type: "td_close", Nesting: -1},
		{Type: "td_open", Nesting: 1}, {Type: "td_close", Nesting: -1},
		{Type: "tr_close", Nesting: -1},
		{Type: "table_close", Nesting: -1},
	}

	results := run(t, views, NewTables())

	tables := results["tables"].Payload.([]Table)
	require.Len(t, tables, 1)
	assert.Equal(t, 2, tables[0].Rows)
	assert.Equal(t, 3, tables[0].Columns)
}

func TestRawHTML_FlaggedByDefault(t *testing.T) {
	views := []token.View{
		{Type: "html_block", Content: "<script>alert(1)</script><div>x</div>"},
		{Type: "html_inline", Content: "<b>hi</b>"},
	}

	results := run(t, views, NewRawHTML(false))

	snippets := results["raw_html"].Payload.([]HTMLSnippet)
	require.Len(t, snippets, 2)

	assert.False(t, snippets[0].Allowed)
	assert.Equal(t, []string{"script", "div"}, snippets[0].Tags)
	assert.False(t, snippets[0].Inline)

	assert.True(t, snippets[1].Inline)
	assert.Equal(t, []string{"b"}, snippets[1].Tags)
}

func TestRawHTML_AllowFlag(t *testing.T) {
	views := []token.View{{Type: "html_inline", Content: "<em>ok</em>"}}

	results := run(t, views, NewRawHTML(true))

	snippets := results["raw_html"].Payload.([]HTMLSnippet)
	require.Len(t, snippets, 1)
	assert.True(t, snippets[0].Allowed)
}

func TestCodeBlocks_LanguageResolution(t *testing.T) {
	views := []token.View{
		{Type: "fence", Info: "golang", Content: "package main\n", HasMap: true, MapStart: 0, MapEnd: 2},
		{Type: "code_block", Content: "#!/bin/bash\necho hi\n", HasMap: true, MapStart: 4, MapEnd: 6},
	}

	results := run(t, views, NewCodeBlocks())

	blocks := results["code_blocks"].Payload.([]CodeBlock)
	require.Len(t, blocks, 2)

	assert.Equal(t, "go", blocks[0].Language, "fence hint wins")
	assert.Equal(t, 1, blocks[0].Lines)

	assert.Equal(t, "shell", blocks[1].Language, "shebang detection for hintless blocks")
	assert.Equal(t, 2, blocks[1].Lines)
}

func TestDefaults_AllRegisterable(t *testing.T) {
	w, err := warehouse.NewFromViews(heading(1, 0, "x"))
	require.NoError(t, err)

	for _, c := range Defaults(urlnorm.DefaultPolicy(), warehouse.DefaultLimits()) {
		require.NoError(t, w.Register(c))
	}
	require.NoError(t, w.DispatchAll(context.Background()))

	results, err := w.FinalizeAll()
	require.NoError(t, err)
	assert.Len(t, results, 6)
}
