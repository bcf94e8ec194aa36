package formset

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formset/pkg/fieldname"
	"github.com/goliatone/go-formset/pkg/formset"
)

// Formset aliases formset.Formset so callers can stay on the root package.
type Formset = formset.Formset

// Group aliases formset.Group.
type Group = formset.Group

// Entry aliases formset.Entry.
type Entry = formset.Entry

// Event aliases formset.Event.
type Event = formset.Event

// Option aliases formset.Option.
type Option = formset.Option

// Attributes aliases formset.Attributes.
type Attributes = formset.Attributes

// Codec aliases fieldname.Codec.
type Codec = fieldname.Codec

const (
	// EventEntryAdded fires after an entry is added.
	EventEntryAdded = formset.EventEntryAdded
	// EventEntryRemoved fires after an entry is destroyed or flagged.
	EventEntryRemoved = formset.EventEntryRemoved
)

// New attaches a Formset to an already parsed tree.
func New(root *html.Node, options ...Option) (*Formset, error) {
	return formset.New(root, options...)
}

// Parse reads an HTML document and attaches a Formset to it.
func Parse(r io.Reader, options ...Option) (*Formset, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("formset: parse document: %w", err)
	}
	return formset.New(doc, options...)
}

// ParseFile is Parse for a file on disk.
func ParseFile(path string, options ...Option) (*Formset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("formset: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, options...)
}

// Render writes the document the Formset is attached to.
func Render(w io.Writer, fs *Formset) error {
	if fs == nil {
		return formset.ErrNilRoot
	}
	if err := html.Render(w, fs.Root()); err != nil {
		return fmt.Errorf("formset: render: %w", err)
	}
	return nil
}

// WithAttributes forwards to formset.WithAttributes.
func WithAttributes(attrs Attributes) Option {
	return formset.WithAttributes(attrs)
}

// WithCodec forwards to formset.WithCodec.
func WithCodec(codec Codec) Option {
	return formset.WithCodec(codec)
}

// WithOrdinalBase forwards to formset.WithOrdinalBase.
func WithOrdinalBase(base int) Option {
	return formset.WithOrdinalBase(base)
}

// WithHardMax forwards to formset.WithHardMax.
func WithHardMax(limit int) Option {
	return formset.WithHardMax(limit)
}

// WithTemplates forwards to formset.WithTemplates.
func WithTemplates(source formset.TemplateSource) Option {
	return formset.WithTemplates(source)
}

// WithConfirmer forwards to formset.WithConfirmer.
func WithConfirmer(confirmer formset.Confirmer) Option {
	return formset.WithConfirmer(confirmer)
}

// WithTransition forwards to formset.WithTransition.
func WithTransition(transition formset.Transition) Option {
	return formset.WithTransition(transition)
}

// WithLogger forwards to formset.WithLogger.
func WithLogger(logger *slog.Logger) Option {
	return formset.WithLogger(logger)
}

// WithListener forwards to formset.WithListener.
func WithListener(event string, fn func(Event)) Option {
	return formset.WithListener(event, fn)
}
