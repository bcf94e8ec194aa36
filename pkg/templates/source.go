// Package templates supplies the markup used to create new repeatable
// entries. Sources resolve a selector (usually the value of an add button's
// data-addbtn attribute) to entry markup; the formset package only clones and
// inserts what they return.
package templates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formset/internal/dom"
)

var (
	// ErrNotFound signals that a source has no template for the selector.
	// Chain moves on to the next source when it sees it.
	ErrNotFound = errors.New("templates: template not found")
)

// Source resolves a selector to entry markup.
type Source interface {
	Lookup(ctx context.Context, selector string) (string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, selector string) (string, error)

// Lookup implements Source.
func (fn SourceFunc) Lookup(ctx context.Context, selector string) (string, error) {
	return fn(ctx, selector)
}

type documentSource struct {
	root *html.Node
}

// Document resolves "#id" selectors against a live node tree. The inner HTML
// of the matched element is returned, so <template> and
// <script type="text/template"> holders both work.
func Document(root *html.Node) Source {
	return documentSource{root: root}
}

func (s documentSource) Lookup(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, ok := strings.CutPrefix(strings.TrimSpace(selector), "#")
	if !ok || id == "" {
		return "", fmt.Errorf("%w: %q (document source only resolves #id)", ErrNotFound, selector)
	}
	holder := dom.ByID(s.root, id)
	if holder == nil {
		return "", fmt.Errorf("%w: %q", ErrNotFound, selector)
	}
	markup, err := dom.InnerHTML(holder)
	if err != nil {
		return "", fmt.Errorf("templates: read %q: %w", selector, err)
	}
	return markup, nil
}

type staticSource map[string]string

// Static serves templates from an in-memory map keyed by selector or group
// type. A leading "#" on the selector is ignored when the exact key is
// missing.
func Static(templates map[string]string) Source {
	clone := make(staticSource, len(templates))
	for key, markup := range templates {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			clone[trimmed] = markup
		}
	}
	return clone
}

func (s staticSource) Lookup(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := strings.TrimSpace(selector)
	if markup, ok := s[key]; ok {
		return markup, nil
	}
	if markup, ok := s[strings.TrimPrefix(key, "#")]; ok {
		return markup, nil
	}
	return "", fmt.Errorf("%w: %q", ErrNotFound, selector)
}

type chain []Source

// Chain tries each source in order and returns the first hit. Errors other
// than ErrNotFound stop the search.
func Chain(sources ...Source) Source {
	out := make(chain, 0, len(sources))
	for _, src := range sources {
		if src != nil {
			out = append(out, src)
		}
	}
	return out
}

func (c chain) Lookup(ctx context.Context, selector string) (string, error) {
	for _, src := range c {
		markup, err := src.Lookup(ctx, selector)
		if err == nil {
			return markup, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %q", ErrNotFound, selector)
}
