package formset

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formset/internal/dom"
	"github.com/goliatone/go-formset/pkg/indexer"
)

// Group is a container of repeatable entries.
type Group struct {
	node *html.Node
	fs   *Formset
}

// Node returns the group element.
func (g *Group) Node() *html.Node {
	return g.node
}

// Type returns the entry type named by the group attribute.
func (g *Group) Type() string {
	return g.fs.groupType(g.node)
}

// Entries returns the group's entries in document order, deleted-in-place
// entries included.
func (g *Group) Entries() []*Entry {
	nodes := g.fs.indexer.Entries(g.node)
	entries := make([]*Entry, 0, len(nodes))
	for _, n := range nodes {
		entries = append(entries, &Entry{node: n, group: g})
	}
	return entries
}

// Len returns the number of entries.
func (g *Group) Len() int {
	return len(g.fs.indexer.Entries(g.node))
}

// Max returns the maximum number of entries. A missing or invalid max
// attribute falls back to the hard maximum; larger values are clamped to it.
func (g *Group) Max() int {
	limit := g.fs.cfg.hardMax
	raw, ok := dom.Attr(g.node, g.fs.cfg.attrs.Max)
	if !ok {
		return limit
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 0 {
		g.fs.cfg.logger.Warn("ignoring invalid max entries attribute",
			"group", g.Type(), "attribute", g.fs.cfg.attrs.Max, "value", raw)
		return limit
	}
	if value > limit {
		return limit
	}
	return value
}

// ConfirmMessage returns the deletion confirmation message, if any.
func (g *Group) ConfirmMessage() string {
	msg, _ := dom.Attr(g.node, g.fs.cfg.attrs.Confirm)
	return strings.TrimSpace(msg)
}

// Parent returns the nearest enclosing group, or nil at the top level.
func (g *Group) Parent() *Group {
	ancestors := dom.Ancestors(g.node, g.fs.indexer.IsGroup)
	if len(ancestors) == 0 {
		return nil
	}
	return g.fs.wrapGroup(ancestors[0])
}

// Depth returns the number of enclosing groups.
func (g *Group) Depth() int {
	return len(dom.Ancestors(g.node, g.fs.indexer.IsGroup))
}

// AddButton returns the element linked to the group by the add attribute:
// the group's next sibling, or an element inside that sibling.
func (g *Group) AddButton() *html.Node {
	next := dom.NextElement(g.node)
	if next == nil {
		return nil
	}
	if dom.HasAttr(next, g.fs.cfg.attrs.Add) {
		return next
	}
	return dom.Find(next, dom.WithAttr(g.fs.cfg.attrs.Add))
}

// TemplateSelector returns the template selector configured on the add
// button, falling back to the group type.
func (g *Group) TemplateSelector() string {
	if btn := g.AddButton(); btn != nil {
		if sel, _ := dom.Attr(btn, g.fs.cfg.attrs.Add); strings.TrimSpace(sel) != "" {
			return strings.TrimSpace(sel)
		}
	}
	return g.Type()
}

// Path returns the Locate path of the group, e.g. "addresses[2].phones".
func (g *Group) Path() string {
	chain := g.fs.indexer.Chain(g.node)
	parts := make([]string, 0, len(chain))
	for i, n := range chain {
		kind := g.fs.groupType(n)
		if i == len(chain)-1 {
			parts = append(parts, kind)
			break
		}
		pos := 0
		for j, entry := range g.fs.indexer.Entries(n) {
			if dom.Contains(entry, chain[i+1]) {
				pos = j + 1
				break
			}
		}
		parts = append(parts, fmt.Sprintf("%s[%d]", kind, pos))
	}
	return strings.Join(parts, ".")
}

// Entry is one repeatable instance inside a group.
type Entry struct {
	node  *html.Node
	group *Group
}

// Node returns the entry element.
func (e *Entry) Node() *html.Node {
	return e.node
}

// Group returns the owning group.
func (e *Entry) Group() *Group {
	return e.group
}

// IsNew reports whether the entry was added this session.
func (e *Entry) IsNew() bool {
	return dom.HasAttr(e.node, e.group.fs.cfg.attrs.New)
}

// IsDeleted reports whether a persisted entry has been flagged for deletion.
func (e *Entry) IsDeleted() bool {
	for _, name := range e.Names() {
		parsed, err := e.group.fs.cfg.codec.Parse(name)
		if err == nil && parsed.IsDeletionFlag() {
			return true
		}
	}
	return false
}

// Position returns the 1-based position among the group's entries, or 0
// once the entry has been detached.
func (e *Entry) Position() int {
	for i, n := range e.group.fs.indexer.Entries(e.group.node) {
		if n == e.node {
			return i + 1
		}
	}
	return 0
}

// Ordinal returns the ordinal embedded in the entry's field names.
func (e *Entry) Ordinal() int {
	pos := e.Position()
	if pos == 0 {
		return -1
	}
	return e.group.fs.cfg.base + pos - 1
}

// Fields returns the named elements below the entry.
func (e *Entry) Fields() []*html.Node {
	return e.group.fs.indexer.Fields(e.node)
}

// Names returns the field names below the entry in document order.
func (e *Entry) Names() []string {
	fields := e.Fields()
	names := make([]string, 0, len(fields))
	for _, field := range fields {
		name, _ := dom.Attr(field, indexer.NameAttr)
		names = append(names, name)
	}
	return names
}

// Groups returns the groups nested directly in the entry.
func (e *Entry) Groups() []*Group {
	var out []*Group
	dom.Walk(e.node, func(n *html.Node) bool {
		if e.group.fs.indexer.IsGroup(n) {
			out = append(out, e.group.fs.wrapGroup(n))
			return false
		}
		return true
	})
	return out
}
