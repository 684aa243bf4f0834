package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// nodeText collects the text nodes under the selection in document order,
// trims each one, drops the empty ones and joins the rest with sep.
func nodeText(sel *goquery.Selection, sep string) string {
	var parts []string
	for _, n := range sel.Nodes {
		parts = appendText(parts, n)
	}
	return strings.Join(parts, sep)
}

func appendText(parts []string, n *html.Node) []string {
	switch n.Type {
	case html.TextNode:
		if s := strings.TrimSpace(n.Data); s != "" {
			parts = append(parts, s)
		}
		return parts
	case html.CommentNode, html.DoctypeNode:
		return parts
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		parts = appendText(parts, c)
	}
	return parts
}

// hiddenStyle reports whether an inline style hides the element.
func hiddenStyle(style string) bool {
	return strings.Contains(compactStyle(style), "display:none")
}

func blockStyle(style string) bool {
	return strings.Contains(compactStyle(style), "display:block")
}

func compactStyle(style string) string {
	return strings.ToLower(strings.Join(strings.Fields(style), ""))
}
