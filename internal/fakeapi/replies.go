// ABOUTME: Canned reply and metadata generation for the fake backend
// ABOUTME: Replies echo the input with markdown so renderers have something to chew on

package fakeapi

import (
	"fmt"
	"net/url"
	"strings"
)

func plainReply(input, template string, docs []string) string {
	if strings.Contains(template, "mermaid") || strings.Contains(strings.ToLower(input), "diagram") {
		return "Here is the diagram:\n\n```mermaid\ngraph TD\n  A[" + input + "] --> B[Answer]\n```\n"
	}

	lower := strings.ToLower(input)
	if strings.Contains(lower, "markdown") || strings.Contains(lower, "list") {
		return "Here is a **markdown** response:\n\n- First item\n- Second item with `code`\n- Third item\n"
	}

	reply := fmt.Sprintf("Echo: **%s**\n\nI received your message and am responding with some *formatted* text.", input)
	if len(docs) > 0 {
		reply += "\n\nSearched documents: " + strings.Join(docs, ", ")
	}
	return reply
}

func searchReply(input string, confluence bool) string {
	where := "the web"
	if confluence {
		where = "Confluence"
	}
	return fmt.Sprintf("Searching %s for **%s**: the top results are listed as sources [1][2].", where, input)
}

func attachmentReply(input string) string {
	return fmt.Sprintf("According to the attached document, the answer to **%s** is in section 2.", input)
}

func imageReply(input string) string {
	return fmt.Sprintf("![%s](https://images.example.com/%s.png)", input, url.PathEscape(input))
}

// defaultMetadata mirrors the backend's open search metadata body.
func defaultMetadata(input string) any {
	q := url.QueryEscape(input)
	return map[string]any{
		"organic": []map[string]any{
			{"title": "Result for " + input, "link": "https://search.example.com/1?q=" + q, "snippet": "First hit.", "position": 1},
			{"title": "More on " + input, "link": "https://search.example.com/2?q=" + q, "snippet": "Second hit.", "position": 2},
		},
		"relatedSearches": []map[string]any{
			{"query": input + " examples"},
			{"query": input + " explained"},
		},
		"images": map[string]any{
			"images": []map[string]any{
				{"title": input, "imageUrl": "https://images.example.com/" + url.PathEscape(input) + ".png", "link": "https://images.example.com", "position": 1},
			},
		},
		"news": map[string]any{
			"images": []map[string]any{
				{"title": "News about " + input, "link": "https://news.example.com/" + q, "source": "Example News", "date": "1 day ago", "position": 1},
			},
		},
	}
}
