package hooks

import (
	"context"
	"strings"

	"github.com/hpungsan/studio/internal/extract"
	"github.com/hpungsan/studio/internal/media"
)

// promptCap bounds the normalized prompt echoed into the rewritten
// response and sent to the capability when derived from a text prefix.
const promptCap = 220

// fallbackAlt is the embed alt text when the source carries no nickname.
const fallbackAlt = "generated concept image"

// Generator is the media capability as the binder sees it.
type Generator interface {
	Generate(ctx context.Context, req media.Request) (*media.Response, error)
}

// RecordFunc persists one {prompt, url} pair into the owning session's
// image list. The binder treats persistence failures like capability
// failures: noted in the response, never fatal.
type RecordFunc func(prompt, url string) error

// Binder guarantees a visual-role response carries a real generated
// image in a fixed textual shape. Already-bound responses pass through
// unchanged, which makes a second application a no-op.
type Binder struct {
	generator Generator
	record    RecordFunc
}

// NewBinder builds a binder. record may be nil when no store is bound.
func NewBinder(generator Generator, record RecordFunc) *Binder {
	return &Binder{generator: generator, record: record}
}

// Bind post-processes one response, invoking the capability at most
// once.
func (b *Binder) Bind(ctx context.Context, resp Response) Response {
	content := strings.TrimSpace(resp.Content)
	if content == "" || extract.HasImageURL(content) {
		return resp
	}

	if b.generator == nil {
		resp.Content = appendSection(content, "Image generation failed: no media capability is configured.")
		return resp
	}

	prompt, ok := extract.PromptLine(content)
	if !ok {
		prompt = extract.Truncate(extract.StripMarkdown(strings.Join(extract.SplitLines(content), " ")), promptCap)
	}

	gen, err := b.generator.Generate(ctx, media.Request{Prompt: prompt})
	if err != nil {
		resp.Content = appendSection(content, "Image generation failed: "+err.Error())
		return resp
	}
	if len(gen.URLs) == 0 {
		resp.Content = appendSection(content, "Image generation failed: the provider returned no image URL.")
		return resp
	}
	url := gen.URLs[0]

	resp.Content = reassemble(content, prompt, url)

	if b.record != nil {
		if err := b.record(prompt, url); err != nil {
			resp.Content = appendSection(resp.Content, "Image was generated but could not be recorded: "+err.Error())
		}
	}
	return resp
}

// reassemble rewrites the response into the fixed shape: description
// line, prompt line, URL line, markdown embed. Prompt and URL artifacts
// from earlier drafts are dropped so the shape stays canonical.
func reassemble(content, prompt, url string) string {
	description := extract.FirstContentLine(content)
	if description == "" {
		description = fallbackAlt
	}

	alt := fallbackAlt
	if nickname, ok := extract.Nickname(content); ok {
		alt = nickname
	}

	var b strings.Builder
	b.WriteString(description)
	b.WriteString("\nPrompt used: ")
	b.WriteString(extract.Truncate(extract.StripMarkdown(prompt), promptCap))
	b.WriteString("\nImage URL: ")
	b.WriteString(url)
	b.WriteString("\n![")
	b.WriteString(alt)
	b.WriteString("](")
	b.WriteString(url)
	b.WriteString(")")
	return b.String()
}
