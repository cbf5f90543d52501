// Package htmltext provides small helpers for walking parsed HTML nodes
// in document order and reading their text, shared by the row extractor
// and the detail-page parser.
package htmltext

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Text returns the concatenated text content of node and its descendants,
// in document order.
func Text(node *html.Node) string {
	var buf bytes.Buffer
	textRecursive(node, &buf)
	return buf.String()
}

func textRecursive(node *html.Node, buf *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buf.WriteString(node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		textRecursive(child, buf)
	}
}

// Collapsed returns Text with all whitespace runs collapsed to single
// spaces and the ends trimmed.
func Collapsed(node *html.Node) string {
	return strings.Join(strings.Fields(Text(node)), " ")
}

// Attr returns the value of the named attribute on node, or "".
func Attr(node *html.Node, key string) string {
	if node == nil {
		return ""
	}
	for _, a := range node.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasClass reports whether node's class attribute contains name as one of
// its space-separated values.
func HasClass(node *html.Node, name string) bool {
	for _, c := range strings.Fields(Attr(node, "class")) {
		if c == name {
			return true
		}
	}
	return false
}

// IsElement reports whether node is an element with the given tag name.
func IsElement(node *html.Node, tag string) bool {
	return node != nil && node.Type == html.ElementNode && node.Data == tag
}

// Next returns the node following n in document order (pre-order), or nil
// at the end of the document.
func Next(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for ; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}

// Prev returns the node preceding n in document order, or nil at the
// start of the document.
func Prev(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	if n.PrevSibling == nil {
		return n.Parent
	}
	n = n.PrevSibling
	for n.LastChild != nil {
		n = n.LastChild
	}
	return n
}

// Ancestor returns the nearest ancestor of n (including n itself) with
// the given tag name, or nil.
func Ancestor(n *html.Node, tag string) *html.Node {
	for ; n != nil; n = n.Parent {
		if IsElement(n, tag) {
			return n
		}
	}
	return nil
}
