// Package hooks holds the post-response guarantees bound to specialist
// replies: the evidence enforcer, which makes sure research-style
// answers are backed by a real lookup, and the media binder, which makes
// sure visual answers carry a real generated image URL. Both rewrite the
// response text; neither ever fails the turn.
package hooks

// EvidenceToolName is the lookup tool specialists are instructed to
// call. The enforcer keys its skip check on this name.
const EvidenceToolName = "perplexity_search"

// Response is one specialist reply as seen by the hooks: the text plus
// the names of tools the model actually invoked while producing it.
type Response struct {
	Role      string
	Content   string
	ToolsUsed []string
}

// UsedTool reports whether the named tool was invoked for this response.
func (r Response) UsedTool(name string) bool {
	for _, t := range r.ToolsUsed {
		if t == name {
			return true
		}
	}
	return false
}
