package hooks

import (
	"context"
	"strings"

	"github.com/hpungsan/studio/internal/search"
)

// fallbackTopic is used when a response needs backing evidence but no
// user text is available to derive a query from.
const fallbackTopic = "consumer product market viability"

// Searcher is the evidence capability as the enforcer sees it.
type Searcher interface {
	Search(ctx context.Context, req search.Request) ([][]search.Result, error)
}

// Enforcer guarantees an evidence-role response is backed by a real
// lookup. If the specialist already called the evidence tool the
// response passes through untouched; otherwise the enforcer performs
// exactly one fallback search and appends either a results digest or an
// explicit failure note. The output is never silent about evidence.
type Enforcer struct {
	searcher   Searcher
	maxResults int
}

// NewEnforcer builds an enforcer over the given capability. maxResults
// bounds the fallback call; 0 means the capability default.
func NewEnforcer(searcher Searcher, maxResults int) *Enforcer {
	return &Enforcer{searcher: searcher, maxResults: maxResults}
}

// Enforce post-processes one response. userText is the most recent
// user-supplied text for the turn and seeds the fallback query; it may
// be empty.
func (e *Enforcer) Enforce(ctx context.Context, resp Response, userText string) Response {
	if resp.UsedTool(EvidenceToolName) {
		return resp
	}

	query := strings.TrimSpace(userText)
	if query == "" {
		query = fallbackTopic
	}

	perQuery, err := e.searcher.Search(ctx, search.Request{
		Queries:    []string{query},
		MaxResults: e.maxResults,
	})
	if err != nil {
		resp.Content = appendSection(resp.Content, "Evidence lookup failed: "+err.Error())
		return resp
	}

	digest := search.Digest([]string{query}, perQuery)
	resp.Content = appendSection(resp.Content, digest)
	return resp
}

// appendSection joins body and addition with a blank line, tolerating an
// empty body.
func appendSection(body, addition string) string {
	body = strings.TrimRight(body, " \t\n")
	if body == "" {
		return addition
	}
	return body + "\n\n" + addition
}
