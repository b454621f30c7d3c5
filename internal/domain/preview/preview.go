// Package preview renders the active editor buffer for the preview pane.
//
// HTML files are sanitized and their <title> extracted; Markdown is
// rendered with GitHub flavoured extensions and then sanitized; anything
// else is shown escaped inside a <pre> block.
package preview

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/GriffinCanCode/WebIDE/backend/internal/domain/workspace"
)

// Kind says how a preview was produced.
type Kind string

const (
	KindHTML     Kind = "html"
	KindMarkdown Kind = "markdown"
	KindText     Kind = "text"
)

// Preview is a rendered, sanitized view of one file.
type Preview struct {
	Path  string `json:"path"`
	Kind  Kind   `json:"kind"`
	Title string `json:"title"`
	HTML  string `json:"html"`
}

// Renderer turns file content into previews. It is safe for concurrent use.
type Renderer struct {
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

// NewRenderer creates a renderer with the UGC sanitizing policy.
func NewRenderer() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre", "span")

	return &Renderer{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Typographer),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		policy: policy,
	}
}

// Render previews content as the file at path.
func (r *Renderer) Render(path, content string) (*Preview, error) {
	switch workspace.LanguageOf(path) {
	case workspace.LanguageHTML:
		return r.renderHTML(path, content)
	case workspace.LanguageMarkdown:
		return r.renderMarkdown(path, content)
	}
	return r.renderText(path, content), nil
}

func (r *Renderer) renderHTML(path, content string) (*Preview, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = workspace.DisplayName(path)
	}

	body, err := doc.Find("body").First().Html()
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", path, err)
	}

	return &Preview{
		Path:  path,
		Kind:  KindHTML,
		Title: title,
		HTML:  r.policy.Sanitize(body),
	}, nil
}

func (r *Renderer) renderMarkdown(path, content string) (*Preview, error) {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(content), &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", path, err)
	}
	out := r.policy.SanitizeBytes(buf.Bytes())

	title := workspace.DisplayName(path)
	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(out)); err == nil {
		if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
			title = h1
		}
	}

	return &Preview{
		Path:  path,
		Kind:  KindMarkdown,
		Title: title,
		HTML:  string(out),
	}, nil
}

func (r *Renderer) renderText(path, content string) *Preview {
	lang := workspace.LanguageOf(path)
	return &Preview{
		Path:  path,
		Kind:  KindText,
		Title: workspace.DisplayName(path),
		HTML:  fmt.Sprintf(`<pre><code class="language-%s">%s</code></pre>`, lang, html.EscapeString(content)),
	}
}
