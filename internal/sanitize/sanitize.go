// Package sanitize reduces stored sheet text to a safe markup subset and
// overlays query highlighting. Cell values arrive in three shapes: plain
// text with newlines, real HTML, and HTML that was entity-encoded somewhere
// along the export chain. The pipeline for anything destined for HTML
// display is: DecodeEntities, NormalizeMultiline, Sanitize, Highlight.
//
// Sanitization is a total function. Unsafe input is degraded, never
// rejected: disallowed elements are unwrapped so their inner text survives,
// unsafe attributes are dropped, comments are removed.
package sanitize

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// allowedTags is the element allow-list. Everything else is unwrapped.
var allowedTags = map[string]bool{
	"p": true, "br": true, "b": true, "i": true,
	"em": true, "strong": true, "a": true, "span": true,
}

var (
	// tagMarker detects apparent markup: "<" followed by a letter.
	tagMarker = regexp.MustCompile(`<[A-Za-z]`)
	// classToken restricts class values to safe identifier characters.
	classToken = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// DecodeEntities reverses entity-encoded markup so sanitization sees real
// tags instead of escaped text.
func DecodeEntities(raw string) string {
	return html.UnescapeString(raw)
}

// NormalizeMultiline converts line breaks in apparently-plain text into
// explicit <br> markup. Text that already looks like markup passes through
// unchanged.
func NormalizeMultiline(text string) string {
	if tagMarker.MatchString(text) {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.ReplaceAll(text, "\n", "<br>")
}

// Sanitize parses the input as an HTML fragment and filters it against the
// allow-list. Disallowed elements are unwrapped (children promoted in
// place and themselves sanitized), all attributes are stripped except a
// token-filtered class, and links keep only an absolute http/https href,
// with target and rel forced. Idempotent: sanitizing sanitized output is a
// no-op.
func Sanitize(input string) string {
	container := &xhtml.Node{Type: xhtml.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := xhtml.ParseFragment(strings.NewReader(input), container)
	if err != nil {
		return html.EscapeString(input)
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	sanitizeChildren(container)
	return renderChildren(container)
}

// sanitizeChildren filters parent's children depth-first. Scanning resumes
// at promoted children after an unwrap so they are sanitized too.
func sanitizeChildren(parent *xhtml.Node) {
	c := parent.FirstChild
	for c != nil {
		switch c.Type {
		case xhtml.TextNode:
			c = c.NextSibling
		case xhtml.ElementNode:
			name := strings.ToLower(c.Data)
			href := ""
			if name == "a" {
				href = safeHref(c)
			}
			if allowedTags[name] && (name != "a" || href != "") {
				applyAttrs(c, name, href)
				sanitizeChildren(c)
				c = c.NextSibling
			} else {
				c = unwrap(parent, c)
			}
		default:
			// Comments, doctypes, raw nodes.
			next := c.NextSibling
			parent.RemoveChild(c)
			c = next
		}
	}
}

// unwrap promotes c's children into parent at c's position and discards c.
// Returns the node scanning should continue from: the first promoted child,
// or c's former successor when c was empty.
func unwrap(parent, c *xhtml.Node) *xhtml.Node {
	first := c.FirstChild
	for c.FirstChild != nil {
		gc := c.FirstChild
		c.RemoveChild(gc)
		parent.InsertBefore(gc, c)
	}
	next := c.NextSibling
	parent.RemoveChild(c)
	if first != nil {
		return first
	}
	return next
}

// applyAttrs rebuilds the attribute list from scratch: a filtered class,
// and for links the validated href plus forced target and rel, whatever
// was originally supplied.
func applyAttrs(n *xhtml.Node, name, href string) {
	var attrs []xhtml.Attribute
	if cls := filterClass(attrVal(n, "class")); cls != "" {
		attrs = append(attrs, xhtml.Attribute{Key: "class", Val: cls})
	}
	if name == "a" {
		attrs = append(attrs,
			xhtml.Attribute{Key: "href", Val: href},
			xhtml.Attribute{Key: "target", Val: "_blank"},
			xhtml.Attribute{Key: "rel", Val: "noopener noreferrer"},
		)
	}
	n.Attr = attrs
}

// safeHref returns the link's href when it parses as an absolute http or
// https URL, "" otherwise. Relative URLs fail the absoluteness check and
// the link is unwrapped like any disallowed element.
func safeHref(n *xhtml.Node) string {
	raw := strings.TrimSpace(attrVal(n, "href"))
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return raw
}

func attrVal(n *xhtml.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// filterClass keeps only whitespace-delimited tokens made of safe
// identifier characters, max 64 each.
func filterClass(val string) string {
	var kept []string
	for _, tok := range strings.Fields(val) {
		if classToken.MatchString(tok) {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

func renderChildren(container *xhtml.Node) string {
	var b strings.Builder
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		// Render only fails on a broken writer; strings.Builder never is.
		_ = xhtml.Render(&b, c)
	}
	return b.String()
}
