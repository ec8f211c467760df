package tui

import (
	"strings"

	"github.com/meghashyamc/localsearch/ui"
)

const noResultsNotice = "No results found."

// RenderResults draws the results pane as text. The output depends only on pane.
func RenderResults(pane ui.Pane) string {
	if len(pane.Results) == 0 {
		if pane.ShowEmptyNotice() {
			return noticeStyle.Render(noResultsNotice)
		}
		return ""
	}

	var b strings.Builder
	for i, result := range pane.Results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(resultTitleStyle.Render(result.Title))
		b.WriteString("\n")
		b.WriteString(result.Description)
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Requirements:"))
		b.WriteString(" ")
		b.WriteString(result.Requirements)
		b.WriteString("\n")
		b.WriteString(scoreStyle.Render("Relevance Score: " + result.FormatScore()))
	}

	return b.String()
}
