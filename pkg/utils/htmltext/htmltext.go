package htmltext

import (
	"strings"

	"golang.org/x/net/html"
)

// Strip removes all markup from an HTML fragment and returns its visible
// text with whitespace collapsed. Script and style contents are dropped.
func Strip(raw string) string {
	node, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		// html.Parse is tolerant of malformed markup; an error here means
		// the reader failed, so fall back to the input as-is.
		return normalize(raw)
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)

	return normalize(b.String())
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
