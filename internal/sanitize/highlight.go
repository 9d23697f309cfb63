package sanitize

import (
	"html"
	"regexp"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Highlight wraps every case-insensitive occurrence of any whitespace-
// separated query token in a <mark> element, touching only text nodes —
// never tag names or attribute values. All tokens are folded into one
// alternation pattern so distinct tokens are marked in a single
// left-to-right pass. Returns the input unchanged when the query is empty.
// The input is expected to be already-sanitized markup.
func Highlight(safeHTML, query string) string {
	re := tokenPattern(query)
	if re == nil {
		return safeHTML
	}

	container := &xhtml.Node{Type: xhtml.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := xhtml.ParseFragment(strings.NewReader(safeHTML), container)
	if err != nil {
		return safeHTML
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	// Collect first, then mutate: wrapping splices new nodes into the tree
	// and would otherwise re-walk freshly created text.
	for _, tn := range textNodes(container) {
		wrapMatches(tn, re)
	}
	return renderChildren(container)
}

// HighlightText is the plain-text path for fields like titles: the entire
// text is escaped first, then token matches are wrapped. Markup in the
// input is never honored.
func HighlightText(text, query string) string {
	re := tokenPattern(query)
	if re == nil {
		return html.EscapeString(text)
	}

	var b strings.Builder
	last := 0
	for _, m := range re.FindAllStringIndex(text, -1) {
		b.WriteString(html.EscapeString(text[last:m[0]]))
		b.WriteString("<mark>")
		b.WriteString(html.EscapeString(text[m[0]:m[1]]))
		b.WriteString("</mark>")
		last = m[1]
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}

// tokenPattern builds a case-insensitive alternation of the escaped query
// tokens, or nil for an empty query.
func tokenPattern(query string) *regexp.Regexp {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return nil
	}
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(quoted, "|"))
}

func textNodes(n *xhtml.Node) []*xhtml.Node {
	var out []*xhtml.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xhtml.TextNode {
			out = append(out, c)
		} else {
			out = append(out, textNodes(c)...)
		}
	}
	return out
}

// wrapMatches splits a text node around its matches, replacing it with a
// sequence of plain text and <mark> nodes.
func wrapMatches(tn *xhtml.Node, re *regexp.Regexp) {
	matches := re.FindAllStringIndex(tn.Data, -1)
	if len(matches) == 0 {
		return
	}

	parent := tn.Parent
	last := 0
	for _, m := range matches {
		if m[0] > last {
			parent.InsertBefore(textNode(tn.Data[last:m[0]]), tn)
		}
		mark := &xhtml.Node{Type: xhtml.ElementNode, Data: "mark", DataAtom: atom.Mark}
		mark.AppendChild(textNode(tn.Data[m[0]:m[1]]))
		parent.InsertBefore(mark, tn)
		last = m[1]
	}
	if last < len(tn.Data) {
		parent.InsertBefore(textNode(tn.Data[last:]), tn)
	}
	parent.RemoveChild(tn)
}

func textNode(s string) *xhtml.Node {
	return &xhtml.Node{Type: xhtml.TextNode, Data: s}
}
