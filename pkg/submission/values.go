package submission

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-formset/internal/dom"
)

// Values collects the name/value pairs a browser would submit for the
// controls below root. Disabled controls, unchecked boxes, buttons and
// template content are skipped; a single select without a selected option
// submits its first option.
func Values(root *html.Node) url.Values {
	out := url.Values{}
	dom.Walk(root, func(n *html.Node) bool {
		if !dom.IsElement(n) {
			return true
		}
		if n.DataAtom == atom.Template {
			return false
		}
		name, ok := dom.Attr(n, "name")
		if !ok || name == "" || dom.HasAttr(n, "disabled") {
			return true
		}
		switch n.DataAtom {
		case atom.Input:
			kind, _ := dom.Attr(n, "type")
			switch strings.ToLower(kind) {
			case "checkbox", "radio":
				if !dom.HasAttr(n, "checked") {
					return true
				}
				value, ok := dom.Attr(n, "value")
				if !ok {
					value = "on"
				}
				out.Add(name, value)
			case "submit", "button", "reset", "image", "file":
			default:
				value, _ := dom.Attr(n, "value")
				out.Add(name, value)
			}
		case atom.Select:
			options := dom.FindAll(n, func(c *html.Node) bool { return c.DataAtom == atom.Option })
			selected := 0
			for _, opt := range options {
				if dom.HasAttr(opt, "selected") {
					out.Add(name, optionValue(opt))
					selected++
				}
			}
			if selected == 0 && len(options) > 0 && !dom.HasAttr(n, "multiple") {
				out.Add(name, optionValue(options[0]))
			}
		case atom.Textarea:
			out.Add(name, strings.TrimPrefix(text(n), "\n"))
		}
		return true
	})
	return out
}

func optionValue(opt *html.Node) string {
	if value, ok := dom.Attr(opt, "value"); ok {
		return value
	}
	return strings.TrimSpace(text(opt))
}

func text(n *html.Node) string {
	var b strings.Builder
	dom.Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}
