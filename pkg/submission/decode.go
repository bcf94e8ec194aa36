package submission

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/goliatone/go-formset/pkg/fieldname"
)

// Payload is a decoded submission.
type Payload struct {
	Groups []Group `json:"groups"`
	// Fields holds the values whose names carry no ordinal.
	Fields url.Values `json:"fields,omitempty"`
}

// Group is the set of submitted entries sharing a label at one level.
type Group struct {
	Label   string  `json:"label"`
	Entries []Entry `json:"entries"`
}

// Entry is one submitted entry. Deleted entries only carry their flag.
type Entry struct {
	Ordinal int        `json:"ordinal"`
	Deleted bool       `json:"deleted,omitempty"`
	Values  url.Values `json:"values,omitempty"`
	Groups  []Group    `json:"groups,omitempty"`
}

// Group returns the top level group with label.
func (p Payload) Group(label string) (Group, bool) {
	return findGroup(p.Groups, label)
}

// Group returns the nested group with label.
func (e Entry) Group(label string) (Group, bool) {
	return findGroup(e.Groups, label)
}

// Value returns the first value submitted for leaf.
func (e Entry) Value(leaf string) string {
	return e.Values.Get(leaf)
}

// Live returns the entries not flagged for deletion.
func (g Group) Live() []Entry {
	out := make([]Entry, 0, len(g.Entries))
	for _, e := range g.Entries {
		if !e.Deleted {
			out = append(out, e)
		}
	}
	return out
}

// Deleted returns the ordinals flagged for deletion.
func (g Group) Deleted() []int {
	var out []int
	for _, e := range g.Entries {
		if e.Deleted {
			out = append(out, e.Ordinal)
		}
	}
	return out
}

func findGroup(groups []Group, label string) (Group, bool) {
	for _, g := range groups {
		if g.Label == label {
			return g, true
		}
	}
	return Group{}, false
}

// Decode rebuilds the group tree encoded in the names of values. Groups are
// ordered by label and entries by ordinal. A name without an ordinal lands
// in Payload.Fields; any other malformed name is an error.
func Decode(values url.Values, codec fieldname.Codec) (Payload, error) {
	root := &node{}
	fields := url.Values{}

	for _, key := range sortedKeys(values) {
		name, err := codec.Parse(key)
		if err != nil {
			if errors.Is(err, fieldname.ErrMalformedName) && !hasOrdinal(codec, key) {
				fields[key] = append([]string(nil), values[key]...)
				continue
			}
			return Payload{}, fmt.Errorf("submission: decode %q: %w", key, err)
		}

		cur := root
		var entry *entryNode
		for _, seg := range name.Segments {
			entry = cur.group(seg.Label).entry(seg.Ordinal)
			cur = &entry.children
		}
		if name.IsDeletionFlag() {
			if truthy(values[key]) {
				entry.deleted = true
			}
			continue
		}
		if entry.values == nil {
			entry.values = url.Values{}
		}
		entry.values[name.Leaf] = append(entry.values[name.Leaf], values[key]...)
	}

	payload := Payload{Groups: root.build()}
	if len(fields) > 0 {
		payload.Fields = fields
	}
	return payload, nil
}

// hasOrdinal reports whether name has a canonical ordinal between
// separators, telling a plain field apart from a broken entry name.
func hasOrdinal(codec fieldname.Codec, name string) bool {
	sep := codec.Separator
	if sep == "" {
		sep = fieldname.DefaultSeparator
	}
	parts := strings.Split(name, sep)
	for _, part := range parts[1:max(1, len(parts)-1)] {
		if part != "" && strings.Trim(part, "0123456789") == "" {
			return true
		}
	}
	return false
}

func truthy(values []string) bool {
	for _, v := range values {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "on", "yes":
			return true
		}
	}
	return false
}

func sortedKeys(values url.Values) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

type node struct {
	groups map[string]*groupNode
}

type groupNode struct {
	entries map[int]*entryNode
}

type entryNode struct {
	deleted  bool
	values   url.Values
	children node
}

func (n *node) group(label string) *groupNode {
	if n.groups == nil {
		n.groups = make(map[string]*groupNode)
	}
	g, ok := n.groups[label]
	if !ok {
		g = &groupNode{entries: make(map[int]*entryNode)}
		n.groups[label] = g
	}
	return g
}

func (g *groupNode) entry(ordinal int) *entryNode {
	e, ok := g.entries[ordinal]
	if !ok {
		e = &entryNode{}
		g.entries[ordinal] = e
	}
	return e
}

func (n *node) build() []Group {
	if len(n.groups) == 0 {
		return nil
	}
	labels := make([]string, 0, len(n.groups))
	for label := range n.groups {
		labels = append(labels, label)
	}
	slices.Sort(labels)

	out := make([]Group, 0, len(labels))
	for _, label := range labels {
		g := n.groups[label]
		ordinals := make([]int, 0, len(g.entries))
		for ordinal := range g.entries {
			ordinals = append(ordinals, ordinal)
		}
		slices.Sort(ordinals)

		group := Group{Label: label, Entries: make([]Entry, 0, len(ordinals))}
		for _, ordinal := range ordinals {
			e := g.entries[ordinal]
			entry := Entry{Ordinal: ordinal, Deleted: e.deleted, Groups: e.children.build()}
			if !e.deleted {
				entry.Values = e.values
			}
			group.Entries = append(group.Entries, entry)
		}
		out = append(out, group)
	}
	return out
}
