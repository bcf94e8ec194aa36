package formset

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formset/internal/dom"
	"github.com/goliatone/go-formset/pkg/fieldname"
	"github.com/goliatone/go-formset/pkg/indexer"
	"github.com/goliatone/go-formset/pkg/submission"
	"github.com/goliatone/go-formset/pkg/templates"
)

// Add resolves the group's template through its add button selector and
// appends a new entry built from it.
func (f *Formset) Add(ctx context.Context, g *Group) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrNotGroup
	}
	if err := f.checkCapacity(g); err != nil {
		return nil, err
	}

	selector := g.TemplateSelector()
	if selector == "" {
		return nil, fmt.Errorf("%w: group has no type or add button selector", ErrTemplateNotFound)
	}

	ordinal := f.cfg.base + g.Len()
	lookupCtx := templates.WithEntry(ctx, templates.Entry{
		Group:   g.Type(),
		Ordinal: ordinal,
		Depth:   g.Depth(),
		Prefix:  f.entryPrefix(g, ordinal),
	})
	markup, err := f.cfg.templates.Lookup(lookupCtx, selector)
	if err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			return nil, fmt.Errorf("%w: group %q selector %q: %v", ErrTemplateNotFound, g.Type(), selector, err)
		}
		return nil, fmt.Errorf("formset: resolve template for %q: %w", g.Type(), err)
	}
	return f.AddMarkup(ctx, g, markup)
}

// AddMarkup builds a new entry from markup and appends it to g. The entry is
// marked new, every name in the ancestor chain is renumbered and
// EventEntryAdded fires. When the group is full ErrMaxEntries is returned
// and nothing changes.
func (f *Formset) AddMarkup(ctx context.Context, g *Group, markup string) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrNotGroup
	}
	if err := f.checkCapacity(g); err != nil {
		return nil, err
	}
	if strings.TrimSpace(markup) == "" {
		return nil, fmt.Errorf("%w: group %q", ErrEmptyTemplate, g.Type())
	}

	node, err := dom.ParseFragment(markup, g.node)
	if err != nil {
		if errors.Is(err, dom.ErrNoElement) {
			return nil, fmt.Errorf("%w: group %q", ErrEmptyTemplate, g.Type())
		}
		return nil, fmt.Errorf("formset: parse template for %q: %w", g.Type(), err)
	}

	if kind, ok := dom.Attr(node, f.cfg.attrs.Entry); !ok || kind != g.Type() {
		dom.SetAttr(node, f.cfg.attrs.Entry, g.Type())
	}
	dom.SetAttr(node, f.cfg.attrs.New, "")

	g.node.AppendChild(node)
	if err := f.Renumber(g); err != nil {
		dom.Detach(node)
		return nil, err
	}
	f.cfg.transition.Show(node)

	entry := &Entry{node: node, group: g}
	f.cfg.logger.Debug("entry added", "group", g.Type(), "depth", g.Depth(), "ordinal", entry.Ordinal())
	f.emit(Event{Type: EventEntryAdded, Group: g, Entry: entry})
	return entry, nil
}

// Remove removes e from g. New entries are detached and the chain is
// renumbered. Persisted entries stay in the tree, hidden, with their named
// fields replaced by a single deletion flag so the server can act on it.
// When g carries a confirmation message, persisted entries are only removed
// once the Confirmer approves. The boolean reports whether the entry was
// removed.
func (f *Formset) Remove(ctx context.Context, g *Group, e *Entry) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if g == nil {
		return false, ErrNotGroup
	}
	if e == nil || e.group == nil || e.group.node != g.node || e.Position() == 0 {
		return false, ErrNotEntry
	}
	if !e.IsNew() && e.IsDeleted() {
		return false, nil
	}

	if msg := g.ConfirmMessage(); msg != "" && !e.IsNew() {
		if f.cfg.confirmer == nil {
			return false, ErrConfirmationRequired
		}
		ok, err := f.cfg.confirmer.Confirm(ctx, msg)
		if err != nil {
			return false, fmt.Errorf("formset: confirm removal: %w", err)
		}
		if !ok {
			f.cfg.logger.Debug("entry removal declined", "group", g.Type(), "ordinal", e.Ordinal())
			return false, nil
		}
	}

	buttons := dom.FindAll(e.node, dom.WithAttr(f.cfg.attrs.Remove))
	for _, btn := range buttons {
		dom.Hide(btn)
	}

	result := make(chan error, 1)
	var once sync.Once
	f.cfg.transition.Hide(e.node, func() {
		once.Do(func() {
			err := f.finishRemoval(g, e)
			if err != nil {
				for _, btn := range buttons {
					dom.Show(btn)
				}
				f.cfg.logger.Error("entry removal failed", "group", g.Type(), "error", err)
			}
			result <- err
		})
	})

	select {
	case err := <-result:
		return err == nil, err
	default:
		return true, nil
	}
}

func (f *Formset) finishRemoval(g *Group, e *Entry) error {
	ordinal := e.Ordinal()
	if e.IsNew() {
		parent, next := e.node.Parent, e.node.NextSibling
		dom.Detach(e.node)
		if err := f.Renumber(g); err != nil {
			if next != nil && next.Parent == parent {
				parent.InsertBefore(e.node, next)
			} else {
				parent.AppendChild(e.node)
			}
			return err
		}
	} else {
		if err := f.flagDeleted(g, e); err != nil {
			return err
		}
		dom.Hide(e.node)
	}
	f.cfg.logger.Debug("entry removed", "group", g.Type(), "ordinal", ordinal, "destroyed", e.node.Parent == nil)
	f.emit(Event{Type: EventEntryRemoved, Group: g, Entry: e})
	return nil
}

func (f *Formset) flagDeleted(g *Group, e *Entry) error {
	fields := e.Fields()
	if len(fields) == 0 {
		return nil
	}
	first := fields[0]
	name, _ := dom.Attr(first, indexer.NameAttr)
	hidden, err := submission.DeletionFlag(f.cfg.codec, name, g.Depth())
	if err != nil {
		return fmt.Errorf("formset: deletion flag for %q: %w", g.Type(), err)
	}

	flag := dom.NewElement("input",
		html.Attribute{Key: "type", Val: "hidden"},
		html.Attribute{Key: indexer.NameAttr, Val: hidden.Name},
		html.Attribute{Key: "value", Val: hidden.Value},
	)
	dom.InsertAfter(first, flag)
	for _, field := range fields {
		dom.Detach(field)
	}
	return nil
}

// Click dispatches a click on node according to the button roles declared
// by the add and remove attributes. Nodes without a role are ignored.
func (f *Formset) Click(ctx context.Context, node *html.Node) error {
	if btn := dom.Closest(node, dom.WithAttr(f.cfg.attrs.Add)); btn != nil {
		g := f.groupForAddButton(btn)
		if g == nil {
			return fmt.Errorf("%w: no group precedes add button", ErrGroupNotFound)
		}
		_, err := f.Add(ctx, g)
		return err
	}

	if btn := dom.Closest(node, dom.WithAttr(f.cfg.attrs.Remove)); btn != nil {
		g, e := f.entryForNode(btn)
		if e == nil {
			return fmt.Errorf("%w: remove button outside an entry", ErrNotEntry)
		}
		_, err := f.Remove(ctx, g, e)
		return err
	}
	return nil
}

func (f *Formset) checkCapacity(g *Group) error {
	if limit := g.Max(); g.Len() >= limit {
		f.cfg.logger.Debug("group is full", "group", g.Type(), "max", limit)
		return fmt.Errorf("%w: group %q holds %d of %d", ErrMaxEntries, g.Type(), g.Len(), limit)
	}
	return nil
}

// groupForAddButton finds the group whose next sibling is the button or one
// of the button's ancestors. The nearest match wins, which keeps nested add
// buttons bound to their own group.
func (f *Formset) groupForAddButton(btn *html.Node) *Group {
	for cur := btn; cur != nil && cur != f.root; cur = cur.Parent {
		if prev := dom.PrevElement(cur); f.indexer.IsGroup(prev) {
			return f.wrapGroup(prev)
		}
	}
	return nil
}

func (f *Formset) entryForNode(n *html.Node) (*Group, *Entry) {
	for cur := n; cur != nil; cur = cur.Parent {
		kind, ok := dom.Attr(cur, f.cfg.attrs.Entry)
		if !ok {
			continue
		}
		owner := dom.Closest(cur.Parent, f.indexer.IsGroup)
		if owner == nil || f.groupType(owner) != kind {
			continue
		}
		g := f.wrapGroup(owner)
		return g, &Entry{node: cur, group: g}
	}
	return nil, nil
}

// entryPrefix guesses the name prefix of the entry about to be added at
// ordinal, using the enclosing entry's names and the group type as label.
func (f *Formset) entryPrefix(g *Group, ordinal int) string {
	sep := f.cfg.codec.Separator
	if sep == "" {
		sep = fieldname.DefaultSeparator
	}
	label := g.Type() + sep + fmt.Sprint(ordinal) + sep

	parent := g.Parent()
	if parent == nil {
		return label
	}
	_, outer := f.entryForNode(g.node.Parent)
	if outer == nil {
		return label
	}
	for _, name := range outer.Names() {
		parsed, err := f.cfg.codec.Parse(name)
		if err != nil || parsed.Depth() < parent.Depth()+1 {
			continue
		}
		root, err := f.cfg.codec.Root(parsed, parent.Depth())
		if err == nil {
			return root + label
		}
	}
	return label
}
