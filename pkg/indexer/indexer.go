// Package indexer rewrites the ordinals embedded in field names so they match
// the position of every repeatable entry among its siblings.
package indexer

import (
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-formset/internal/dom"
	"github.com/goliatone/go-formset/pkg/fieldname"
)

const (
	DefaultGroupAttr = "data-forms"
	DefaultEntryAttr = "data-form"
	NameAttr         = "name"
)

// Option configures an Indexer.
type Option func(*Indexer)

// WithCodec overrides the field name codec.
func WithCodec(codec fieldname.Codec) Option {
	return func(ix *Indexer) {
		ix.codec = codec
	}
}

// WithOrdinalBase sets the ordinal assigned to the first entry of a group.
func WithOrdinalBase(base int) Option {
	return func(ix *Indexer) {
		if base >= 0 {
			ix.base = base
		}
	}
}

// WithAttributes overrides the attributes marking groups and entries.
func WithAttributes(group, entry string) Option {
	return func(ix *Indexer) {
		if group != "" {
			ix.groupAttr = group
		}
		if entry != "" {
			ix.entryAttr = entry
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// Indexer renumbers field names below a chain of nested groups.
type Indexer struct {
	codec     fieldname.Codec
	base      int
	groupAttr string
	entryAttr string
	logger    *slog.Logger
}

// New constructs an Indexer. Ordinals start at 1 unless overridden.
func New(options ...Option) *Indexer {
	ix := &Indexer{
		codec:     fieldname.DefaultCodec(),
		base:      1,
		groupAttr: DefaultGroupAttr,
		entryAttr: DefaultEntryAttr,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(ix)
	}
	return ix
}

// Codec returns the configured name codec.
func (ix *Indexer) Codec() fieldname.Codec {
	return ix.codec
}

// Base returns the ordinal of the first entry in a group.
func (ix *Indexer) Base() int {
	return ix.base
}

// IsGroup reports whether n is a repeatable group container.
func (ix *Indexer) IsGroup(n *html.Node) bool {
	return dom.IsElement(n) && dom.HasAttr(n, ix.groupAttr)
}

// Chain returns group and its enclosing groups, outermost first.
func (ix *Indexer) Chain(group *html.Node) []*html.Node {
	if !ix.IsGroup(group) {
		return nil
	}
	ancestors := dom.Ancestors(group, ix.IsGroup)
	chain := make([]*html.Node, 0, len(ancestors)+1)
	for i := len(ancestors) - 1; i >= 0; i-- {
		chain = append(chain, ancestors[i])
	}
	return append(chain, group)
}

// Entries returns the entries owned by group in document order. Entries of
// nested groups are not included.
func (ix *Indexer) Entries(group *html.Node) []*html.Node {
	kind, ok := dom.Attr(group, ix.groupAttr)
	if !ok {
		return nil
	}
	var entries []*html.Node
	dom.Walk(group, func(n *html.Node) bool {
		if !dom.IsElement(n) || n.DataAtom == atom.Template {
			return false
		}
		if typ, ok := dom.Attr(n, ix.entryAttr); ok && typ == kind {
			entries = append(entries, n)
			return false
		}
		return !ix.IsGroup(n)
	})
	return entries
}

// Fields returns every named element below entry, nested groups included.
// <template> content is inert and skipped.
func (ix *Indexer) Fields(entry *html.Node) []*html.Node {
	var fields []*html.Node
	dom.Walk(entry, func(n *html.Node) bool {
		if !dom.IsElement(n) || n.DataAtom == atom.Template {
			return false
		}
		if dom.HasAttr(n, NameAttr) {
			fields = append(fields, n)
		}
		return true
	})
	return fields
}

// Renumber walks chain from the outermost group inwards and rewrites the
// ordinal slot of each depth for every field below each entry. Names are
// computed before any attribute is written, so a malformed name leaves the
// tree untouched.
func (ix *Indexer) Renumber(chain []*html.Node) error {
	pending := make(map[*html.Node]string)
	var order []*html.Node

	for depth, group := range chain {
		if !ix.IsGroup(group) {
			return fmt.Errorf("indexer: chain element %d is not a group", depth)
		}
		for pos, entry := range ix.Entries(group) {
			ordinal := ix.base + pos
			for _, field := range ix.Fields(entry) {
				current, seen := pending[field]
				if !seen {
					current, _ = dom.Attr(field, NameAttr)
					order = append(order, field)
				}
				tokens, err := ix.codec.Tokens(current)
				if err != nil {
					return fmt.Errorf("indexer: depth %d entry %d: %w", depth, ordinal, err)
				}
				next, err := ix.codec.Compose(tokens, depth, ordinal)
				if err != nil {
					return fmt.Errorf("indexer: field %q at depth %d: %w", current, depth, err)
				}
				pending[field] = next
			}
		}
	}

	changed := 0
	for _, field := range order {
		next := pending[field]
		if current, _ := dom.Attr(field, NameAttr); current == next {
			continue
		}
		dom.SetAttr(field, NameAttr, next)
		changed++
	}
	ix.logger.Debug("renumbered field names", "depth", len(chain), "fields", len(order), "changed", changed)
	return nil
}
