package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Hide sets display: none on n, keeping other inline declarations.
func Hide(n *html.Node) {
	setDisplay(n, "none")
}

// Show removes an inline display declaration from n.
func Show(n *html.Node) {
	setDisplay(n, "")
}

// IsHidden reports whether n carries an inline display: none.
func IsHidden(n *html.Node) bool {
	style, _ := Attr(n, "style")
	for _, decl := range strings.Split(style, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(prop), "display") && strings.EqualFold(strings.TrimSpace(val), "none") {
			return true
		}
	}
	return false
}

func setDisplay(n *html.Node, value string) {
	if !IsElement(n) {
		return
	}
	style, _ := Attr(n, "style")

	var decls []string
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		prop, _, _ := strings.Cut(decl, ":")
		if strings.EqualFold(strings.TrimSpace(prop), "display") {
			continue
		}
		decls = append(decls, decl)
	}
	if value != "" {
		decls = append(decls, "display: "+value)
	}

	if len(decls) == 0 {
		RemoveAttr(n, "style")
		return
	}
	SetAttr(n, "style", strings.Join(decls, "; "))
}
