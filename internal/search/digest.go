package search

import (
	"fmt"
	"strings"

	"github.com/hpungsan/studio/internal/extract"
)

// snippetCap bounds how much of each snippet makes it into a digest.
const snippetCap = 240

// Digest renders per-query results as numbered, URL-annotated text the
// coordinator can append verbatim to a specialist reply. Queries render
// as labeled sections in input order; a query with no hits gets an
// explicit no-results line instead of being dropped.
func Digest(queries []string, perQuery [][]Result) string {
	var b strings.Builder
	multi := len(queries) > 1

	for i, query := range queries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if multi {
			fmt.Fprintf(&b, "Results for %q:\n", query)
		}

		var results []Result
		if i < len(perQuery) {
			results = perQuery[i]
		}
		if len(results) == 0 {
			b.WriteString("No results found.")
			continue
		}

		for n, r := range results {
			if n > 0 {
				b.WriteByte('\n')
			}
			title := r.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Fprintf(&b, "%d. %s (%s)", n+1, title, r.URL)
			if r.Date != "" {
				fmt.Fprintf(&b, " [%s]", r.Date)
			}
			if snippet := extract.Truncate(r.Snippet, snippetCap); snippet != "" {
				fmt.Fprintf(&b, "\n   %s", snippet)
			}
		}
	}

	return b.String()
}
