package formset

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formset/internal/dom"
	"github.com/goliatone/go-formset/pkg/fieldname"
	"github.com/goliatone/go-formset/pkg/indexer"
	"github.com/goliatone/go-formset/pkg/templates"
)

// Formset manages every repeatable group below a root node. The node tree is
// the only state: groups and entries are looked up live on each call, so
// callers may edit the tree between calls. A Formset is not safe for
// concurrent use.
type Formset struct {
	root      *html.Node
	cfg       config
	indexer   *indexer.Indexer
	listeners map[string][]Listener
}

// New attaches a Formset to root.
func New(root *html.Node, options ...Option) (*Formset, error) {
	if root == nil {
		return nil, ErrNilRoot
	}

	cfg := config{
		attrs:      DefaultAttributes(),
		codec:      fieldname.DefaultCodec(),
		base:       1,
		hardMax:    HardMaxEntries,
		transition: Instant{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templates == nil {
		cfg.templates = templates.Document(root)
	}

	listeners := cfg.listeners
	if listeners == nil {
		listeners = make(map[string][]Listener)
	}

	f := &Formset{
		root: root,
		cfg:  cfg,
		indexer: indexer.New(
			indexer.WithCodec(cfg.codec),
			indexer.WithOrdinalBase(cfg.base),
			indexer.WithAttributes(cfg.attrs.Group, cfg.attrs.Entry),
			indexer.WithLogger(cfg.logger),
		),
		listeners: listeners,
	}
	cfg.logger.Debug("formset attached", "groups", len(f.Groups()))
	return f, nil
}

// Root returns the node the Formset was attached to.
func (f *Formset) Root() *html.Node {
	return f.root
}

// Attributes returns the effective attribute names.
func (f *Formset) Attributes() Attributes {
	return f.cfg.attrs
}

// Codec returns the field name codec.
func (f *Formset) Codec() fieldname.Codec {
	return f.cfg.codec
}

// Groups returns every group below the root in document order, so outer
// groups precede the groups nested in their entries. Groups inside
// <template> content are inert and skipped.
func (f *Formset) Groups() []*Group {
	var nodes []*html.Node
	if f.indexer.IsGroup(f.root) {
		nodes = append(nodes, f.root)
	}
	nodes = append(nodes, dom.FindAll(f.root, f.indexer.IsGroup)...)

	groups := make([]*Group, 0, len(nodes))
	for _, n := range nodes {
		if n != f.root && dom.Closest(n.Parent, isTemplate) != nil {
			continue
		}
		groups = append(groups, f.wrapGroup(n))
	}
	return groups
}

func isTemplate(n *html.Node) bool {
	return dom.IsElement(n) && n.Data == "template"
}

// Group returns the first group of the given type.
func (f *Formset) Group(kind string) (*Group, error) {
	for _, g := range f.Groups() {
		if g.Type() == kind {
			return g, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrGroupNotFound, kind)
}

// GroupOf wraps a group node.
func (f *Formset) GroupOf(n *html.Node) (*Group, error) {
	if !f.indexer.IsGroup(n) || !dom.Contains(f.root, n) {
		return nil, ErrNotGroup
	}
	return f.wrapGroup(n), nil
}

// Locate resolves a dotted group path. Each step names a group type and may
// pick the entry (1-based position) to descend into:
//
//	addresses[2].phones
func (f *Formset) Locate(path string) (*Group, error) {
	steps := strings.Split(strings.TrimSpace(path), ".")
	scope := f.root
	var group *Group

	for i, step := range steps {
		kind, pos, err := parseStep(step)
		if err != nil {
			return nil, fmt.Errorf("formset: locate %q: %w", path, err)
		}

		var found *html.Node
		if f.groupType(scope) == kind && group == nil {
			found = scope
		} else {
			found = dom.Find(scope, func(n *html.Node) bool {
				return f.indexer.IsGroup(n) && f.groupType(n) == kind && dom.Closest(n, isTemplate) == nil
			})
		}
		if found == nil {
			return nil, fmt.Errorf("%w: %q in %q", ErrGroupNotFound, kind, path)
		}
		group = f.wrapGroup(found)

		if pos == 0 {
			if i < len(steps)-1 {
				pos = 1
			} else {
				break
			}
		}
		entries := group.Entries()
		if pos > len(entries) {
			return nil, fmt.Errorf("%w: %s[%d] has %d entries", ErrEntryNotFound, kind, pos, len(entries))
		}
		scope = entries[pos-1].node
	}
	return group, nil
}

func parseStep(step string) (string, int, error) {
	step = strings.TrimSpace(step)
	kind, rest, hasIndex := strings.Cut(step, "[")
	if kind == "" {
		return "", 0, fmt.Errorf("empty group name in %q", step)
	}
	if !hasIndex {
		return kind, 0, nil
	}
	raw, ok := strings.CutSuffix(rest, "]")
	if !ok {
		return "", 0, fmt.Errorf("unterminated index in %q", step)
	}
	pos, err := strconv.Atoi(raw)
	if err != nil || pos < 1 {
		return "", 0, fmt.Errorf("invalid index in %q", step)
	}
	return kind, pos, nil
}

// Renumber rewrites the names below g and every group enclosing it.
func (f *Formset) Renumber(g *Group) error {
	if g == nil {
		return ErrNotGroup
	}
	if err := f.indexer.Renumber(f.indexer.Chain(g.node)); err != nil {
		return fmt.Errorf("formset: renumber %q: %w", g.Type(), err)
	}
	return nil
}

// Normalize renumbers every group, outermost first. Use it once on freshly
// rendered markup whose names were not produced by this package.
func (f *Formset) Normalize() error {
	for _, g := range f.Groups() {
		if err := f.Renumber(g); err != nil {
			return err
		}
	}
	return nil
}

func (f *Formset) wrapGroup(n *html.Node) *Group {
	return &Group{node: n, fs: f}
}

func (f *Formset) groupType(n *html.Node) string {
	kind, _ := dom.Attr(n, f.cfg.attrs.Group)
	return kind
}
