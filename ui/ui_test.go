package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/meghashyamc/localsearch/services/controller"
	"github.com/meghashyamc/localsearch/services/search"
	"github.com/stretchr/testify/require"
)

const noResultsNotice = "No results found."

func scorePtr(score float64) *float64 {
	return &score
}

var resultsPaneTestCases = []struct {
	name        string
	pane        Pane
	contains    []string
	notContains []string
}{
	{
		name:     "EmptyIdle",
		pane:     Pane{},
		contains: []string{noResultsNotice},
	},
	{
		name:        "EmptyWhileLoading",
		pane:        Pane{Loading: true},
		notContains: []string{noResultsNotice, "<li"},
	},
	{
		name:        "EmptyAfterFailure",
		pane:        Pane{Failed: true},
		notContains: []string{noResultsNotice, "<li"},
	},
	{
		name: "SingleResult",
		pane: Pane{Results: []search.Result{
			{Title: "A", Description: "d", Requirements: "r", Score: scorePtr(0.5)},
		}},
		contains: []string{
			`<strong class="result-title">A</strong>`,
			`<p class="result-description">d</p>`,
			`<strong>Requirements:</strong> r`,
			"Relevance Score: 0.50",
		},
		notContains: []string{noResultsNotice},
	},
	{
		name: "StaleResultsWithFailure",
		pane: Pane{Failed: true, Results: []search.Result{
			{Title: "stale", Score: scorePtr(3)},
		}},
		contains: []string{"stale", "Relevance Score: 3.00"},
	},
	{
		name:     "MissingScore",
		pane:     Pane{Results: []search.Result{{Title: "A"}}},
		contains: []string{"Relevance Score: n/a"},
	},
	{
		name:        "EscapesMarkup",
		pane:        Pane{Results: []search.Result{{Title: "<script>alert(1)</script>", Score: scorePtr(1)}}},
		contains:    []string{"&lt;script&gt;alert(1)&lt;/script&gt;"},
		notContains: []string{"<script>"},
	},
}

func TestRenderResults(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	for _, testCase := range resultsPaneTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			html, err := renderer.ResultsHTML(testCase.pane)
			assert.NoError(err)

			for _, expected := range testCase.contains {
				assert.Contains(html, expected)
			}
			for _, unexpected := range testCase.notContains {
				assert.NotContains(html, unexpected)
			}
		})
	}
}

func TestRenderResultsKeepsOrder(t *testing.T) {
	assert := require.New(t)
	renderer, err := NewRenderer()
	assert.NoError(err)

	html, err := renderer.ResultsHTML(Pane{Results: []search.Result{
		{Title: "third-ranked", Score: scorePtr(0.1)},
		{Title: "first-ranked", Score: scorePtr(0.9)},
		{Title: "third-ranked", Score: scorePtr(0.1)},
	}})
	assert.NoError(err)

	assert.Equal(3, strings.Count(html, "<li"))
	assert.Less(strings.Index(html, "third-ranked"), strings.Index(html, "first-ranked"), "server order is kept")
}

func TestRenderResultsIsDeterministic(t *testing.T) {
	assert := require.New(t)
	renderer, err := NewRenderer()
	assert.NoError(err)

	pane := Pane{Results: []search.Result{
		{Title: "A", Description: "d", Requirements: "r", Score: scorePtr(0.5)},
		{Title: "B", Score: scorePtr(0.25)},
	}}

	first, err := renderer.ResultsHTML(pane)
	assert.NoError(err)
	second, err := renderer.ResultsHTML(pane)
	assert.NoError(err)

	assert.Equal(first, second)
}

func TestRenderPage(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	t.Run("Idle", func(t *testing.T) {
		assert := require.New(t)
		var buf bytes.Buffer
		assert.NoError(renderer.RenderPage(&buf, NewPage(controller.Snapshot{Phase: "idle"})))

		html := buf.String()
		assert.Contains(html, "<h1>"+Title+"</h1>")
		assert.Contains(html, `name="query"`)
		assert.Contains(html, noResultsNotice)
		assert.NotContains(html, "Loading...")
		assert.NotContains(html, "http-equiv=\"refresh\"")
	})

	t.Run("Loading", func(t *testing.T) {
		assert := require.New(t)
		var buf bytes.Buffer
		assert.NoError(renderer.RenderPage(&buf, NewPage(controller.Snapshot{Query: "go & rust", Phase: "loading", Loading: true})))

		html := buf.String()
		assert.Contains(html, "Loading...")
		assert.Contains(html, `http-equiv="refresh"`)
		assert.Contains(html, `value="go &amp; rust"`)
		assert.NotContains(html, noResultsNotice)
	})

	t.Run("Failed", func(t *testing.T) {
		assert := require.New(t)
		var buf bytes.Buffer
		assert.NoError(renderer.RenderPage(&buf, NewPage(controller.Snapshot{Phase: "failed", Error: "Failed to fetch search results (status 500)"})))

		html := buf.String()
		assert.Contains(html, `<p class="error">Failed to fetch search results (status 500)</p>`)
		assert.NotContains(html, noResultsNotice)
		assert.NotContains(html, "Loading...")
	})
}

func TestStaticFiles(t *testing.T) {
	assert := require.New(t)
	static, err := StaticFiles()
	assert.NoError(err)

	file, err := static.Open("style.css")
	assert.NoError(err)
	assert.NoError(file.Close())
}
