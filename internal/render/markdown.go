package render

import (
	"fmt"
	"strings"

	"modelrank/domain/selection"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown renders a comparison table as a markdown report suitable for
// notebooks, READMEs or the HTML endpoint.
func Markdown(label string, table *selection.Table) string {
	var b strings.Builder

	title := label
	if title == "" {
		title = "Model comparison"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Criterion: **%s**, n = %d, %d candidate(s) ranked.\n\n",
		strings.ToUpper(string(table.Criterion)), table.NumObservations, len(table.Rows))

	b.WriteString("| Rank | Model | k | logLik | " + strings.ToUpper(string(table.Criterion)) + " | Delta | Weight | Cum. weight | Evidence ratio |\n")
	b.WriteString("|------|-------|---|--------|-----|-------|--------|-------------|----------------|\n")
	for _, row := range table.Rows {
		fmt.Fprintf(&b, "| %d | %s | %d | %.2f | %.2f | %.2f | %.3f | %.3f | %.1f |\n",
			row.Rank, row.Name, row.NumParameters, row.LogLikelihood,
			row.Value, row.Delta, row.Weight, row.CumulativeWeight, row.EvidenceRatio)
	}

	if len(table.Excluded) > 0 {
		b.WriteString("\n## Excluded candidates\n\n")
		for _, ex := range table.Excluded {
			fmt.Fprintf(&b, "- %s (%s)\n", ex.Name, ex.Reason)
		}
	}

	if len(table.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range table.Warnings {
			fmt.Fprintf(&b, "- `%s`: %s\n", w.Code, w.Message)
		}
	}

	fmt.Fprintf(&b, "\nFingerprint: `%s`\n", table.Fingerprint)

	return b.String()
}

// HTML converts a markdown report to HTML
func HTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer)
}
