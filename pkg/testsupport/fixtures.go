package testsupport

import (
	"os"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

// ParseDocument parses markup into a document node, failing the test on
// error.
func ParseDocument(t *testing.T, markup string) *html.Node {
	t.Helper()

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return doc
}

// LoadDocument reads an HTML fixture from disk.
func LoadDocument(t *testing.T, path string) *html.Node {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return ParseDocument(t, string(data))
}

// Names returns the name attribute of every named element below root in
// document order.
func Names(root *html.Node) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				for _, attr := range c.Attr {
					if attr.Key == "name" {
						out = append(out, attr.Val)
						break
					}
				}
			}
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}
