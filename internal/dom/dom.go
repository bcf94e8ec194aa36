// Package dom holds the small set of node tree operations the formset
// packages need on top of golang.org/x/net/html: attribute access, scoped
// queries, structural mutation and fragment parsing.
package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Matcher reports whether a node should be selected.
type Matcher func(*html.Node) bool

// IsElement reports whether n is an element node.
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// Attr returns the value of key on n.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether n carries key.
func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

// SetAttr sets key on n, replacing any existing value.
func SetAttr(n *html.Node, key, val string) {
	if n == nil {
		return
	}
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr drops key from n.
func RemoveAttr(n *html.Node, key string) {
	if n == nil {
		return
	}
	out := n.Attr[:0]
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			continue
		}
		out = append(out, attr)
	}
	n.Attr = out
}

// WithAttr matches elements carrying key.
func WithAttr(key string) Matcher {
	return func(n *html.Node) bool {
		return IsElement(n) && HasAttr(n, key)
	}
}

// AttrEquals matches elements where key equals val.
func AttrEquals(key, val string) Matcher {
	return func(n *html.Node) bool {
		if !IsElement(n) {
			return false
		}
		got, ok := Attr(n, key)
		return ok && got == val
	}
}

// Walk visits the descendants of root in document order. Returning false
// from fn skips the children of the visited node.
func Walk(root *html.Node, fn func(*html.Node) bool) {
	if root == nil {
		return
	}
	for c := root.FirstChild; c != nil; {
		next := c.NextSibling
		if fn(c) {
			Walk(c, fn)
		}
		c = next
	}
}

// FindAll returns the descendants of root matching m in document order.
func FindAll(root *html.Node, m Matcher) []*html.Node {
	var out []*html.Node
	Walk(root, func(n *html.Node) bool {
		if m(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Find returns the first descendant of root matching m.
func Find(root *html.Node, m Matcher) *html.Node {
	var found *html.Node
	Walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if m(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// ByID returns the element whose id attribute equals id.
func ByID(root *html.Node, id string) *html.Node {
	if id == "" {
		return nil
	}
	return Find(root, AttrEquals("id", id))
}

// Closest returns n or its nearest ancestor matching m.
func Closest(n *html.Node, m Matcher) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if m(cur) {
			return cur
		}
	}
	return nil
}

// Ancestors returns the ancestors of n matching m, nearest first.
func Ancestors(n *html.Node, m Matcher) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if m(cur) {
			out = append(out, cur)
		}
	}
	return out
}

// Contains reports whether n is root or one of its descendants.
func Contains(root, n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == root {
			return true
		}
	}
	return false
}

// NextElement returns the next element sibling of n.
func NextElement(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for cur := n.NextSibling; cur != nil; cur = cur.NextSibling {
		if IsElement(cur) {
			return cur
		}
	}
	return nil
}

// PrevElement returns the previous element sibling of n.
func PrevElement(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for cur := n.PrevSibling; cur != nil; cur = cur.PrevSibling {
		if IsElement(cur) {
			return cur
		}
	}
	return nil
}

// Detach removes n from its parent. Detached nodes may be reinserted.
func Detach(n *html.Node) {
	if n == nil || n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// InsertAfter inserts n as the next sibling of ref.
func InsertAfter(ref, n *html.Node) {
	if ref == nil || ref.Parent == nil || n == nil {
		return
	}
	Detach(n)
	if ref.NextSibling == nil {
		ref.Parent.AppendChild(n)
		return
	}
	ref.Parent.InsertBefore(n, ref.NextSibling)
}

// NewElement builds a detached element with the given attributes.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(tag)),
		Data:     tag,
		Attr:     attrs,
	}
}

// ErrNoElement is returned when fragment markup contains no element.
var ErrNoElement = errors.New("dom: markup contains no element")

// ParseFragment parses markup as the inner HTML of context and returns the
// first element it produced. A nil context parses in a body context.
func ParseFragment(markup string, context *html.Node) (*html.Node, error) {
	if !IsElement(context) {
		context = NewElement("body")
	}
	nodes, err := html.ParseFragment(strings.NewReader(strings.TrimSpace(markup)), context)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	for _, n := range nodes {
		if IsElement(n) {
			Detach(n)
			return n, nil
		}
	}
	return nil, ErrNoElement
}

// InnerHTML renders the children of n. Raw text children (script, style,
// textarea) are returned verbatim.
func InnerHTML(n *html.Node) (string, error) {
	if n == nil {
		return "", nil
	}
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && rawText(n) {
			buf.WriteString(c.Data)
			continue
		}
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("dom: render inner html: %w", err)
		}
	}
	return buf.String(), nil
}

// Render writes n as HTML.
func Render(w io.Writer, n *html.Node) error {
	return html.Render(w, n)
}

// RenderString renders n to a string.
func RenderString(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func rawText(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Textarea, atom.Xmp, atom.Iframe, atom.Noembed, atom.Noframes, atom.Plaintext:
		return true
	}
	return false
}
