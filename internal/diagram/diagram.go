// ABOUTME: Extracts mermaid diagram source from rendered assistant replies
// ABOUTME: Markdown is rendered with goldmark and the HTML is queried with soup

package diagram

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/anaskhan96/soup"
	"github.com/yuin/goldmark"

	"github.com/2389/coven-chat/internal/store"
)

// codeClass marks a code block holding mermaid syntax.
const codeClass = "language-mermaid"

// FromHTML returns the trimmed text of the first <pre><code class="language-mermaid">
// block in markup.
func FromHTML(markup string) (string, bool) {
	doc := soup.HTMLParse(markup)
	if doc.Error != nil {
		return "", false
	}

	for _, pre := range doc.FindAll("pre") {
		code := pre.Find("code", "class", codeClass)
		if code.Error != nil {
			continue
		}
		return strings.TrimSpace(code.FullText()), true
	}
	return "", false
}

// FromMarkdown renders md and extracts the first mermaid block from it.
func FromMarkdown(md string) (string, bool, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", false, fmt.Errorf("failed to render markdown: %w", err)
	}
	text, ok := FromHTML(buf.String())
	return text, ok, nil
}

// Update stores the diagram found in markup. Markup without a diagram leaves
// the stored one untouched.
func Update(st *store.Store, markup string) bool {
	text, ok := FromHTML(markup)
	if !ok {
		return false
	}
	st.SetDiagramContent(text)
	return true
}

// UpdateFromMarkdown is Update for a raw markdown reply.
func UpdateFromMarkdown(st *store.Store, md string) (bool, error) {
	text, ok, err := FromMarkdown(md)
	if err != nil || !ok {
		return false, err
	}
	st.SetDiagramContent(text)
	return true, nil
}
