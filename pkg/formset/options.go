package formset

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-formset/pkg/fieldname"
)

// HardMaxEntries caps every group regardless of its data-maxforms value.
const HardMaxEntries = 1000

// Attributes names the data attributes forming the declarative surface.
type Attributes struct {
	Group   string `json:"group" yaml:"group"`
	Entry   string `json:"entry" yaml:"entry"`
	Add     string `json:"add" yaml:"add"`
	Remove  string `json:"remove" yaml:"remove"`
	Max     string `json:"max" yaml:"max"`
	Confirm string `json:"confirm" yaml:"confirm"`
	New     string `json:"new" yaml:"new"`
}

// DefaultAttributes returns the attribute names used by the browser widget.
func DefaultAttributes() Attributes {
	return Attributes{
		Group:   "data-forms",
		Entry:   "data-form",
		Add:     "data-addbtn",
		Remove:  "data-delbtn",
		Max:     "data-maxforms",
		Confirm: "data-delmsg",
		New:     "data-new",
	}
}

func (a Attributes) merge(override Attributes) Attributes {
	if override.Group != "" {
		a.Group = override.Group
	}
	if override.Entry != "" {
		a.Entry = override.Entry
	}
	if override.Add != "" {
		a.Add = override.Add
	}
	if override.Remove != "" {
		a.Remove = override.Remove
	}
	if override.Max != "" {
		a.Max = override.Max
	}
	if override.Confirm != "" {
		a.Confirm = override.Confirm
	}
	if override.New != "" {
		a.New = override.New
	}
	return a
}

// TemplateSource resolves an add button selector to entry markup.
type TemplateSource interface {
	Lookup(ctx context.Context, selector string) (string, error)
}

// Confirmer gates the removal of persisted entries when a group carries a
// confirmation message.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// Option customises a Formset.
type Option func(*config)

type config struct {
	attrs      Attributes
	codec      fieldname.Codec
	base       int
	hardMax    int
	templates  TemplateSource
	confirmer  Confirmer
	transition Transition
	logger     *slog.Logger
	listeners  map[string][]Listener
}

// WithAttributes overrides attribute names; empty fields keep the defaults.
func WithAttributes(attrs Attributes) Option {
	return func(cfg *config) {
		cfg.attrs = cfg.attrs.merge(attrs)
	}
}

// WithCodec overrides the field name codec.
func WithCodec(codec fieldname.Codec) Option {
	return func(cfg *config) {
		cfg.codec = codec
	}
}

// WithOrdinalBase sets the ordinal of the first entry in a group (1 by
// default).
func WithOrdinalBase(base int) Option {
	return func(cfg *config) {
		if base >= 0 {
			cfg.base = base
		}
	}
}

// WithHardMax overrides HardMaxEntries.
func WithHardMax(limit int) Option {
	return func(cfg *config) {
		if limit > 0 {
			cfg.hardMax = limit
		}
	}
}

// WithTemplates sets the source used to resolve add button selectors. The
// default resolves "#id" selectors against the document itself.
func WithTemplates(source TemplateSource) Option {
	return func(cfg *config) {
		if source != nil {
			cfg.templates = source
		}
	}
}

// WithConfirmer sets the prompt used when a group has a confirmation message.
func WithConfirmer(confirmer Confirmer) Option {
	return func(cfg *config) {
		if confirmer != nil {
			cfg.confirmer = confirmer
		}
	}
}

// WithTransition sets the show/hide effect runner.
func WithTransition(transition Transition) Option {
	return func(cfg *config) {
		if transition != nil {
			cfg.transition = transition
		}
	}
}

// WithLogger sets the structured logger. Output is discarded by default.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithListener subscribes fn to event at construction time.
func WithListener(event string, fn Listener) Option {
	return func(cfg *config) {
		if fn == nil {
			return
		}
		if cfg.listeners == nil {
			cfg.listeners = make(map[string][]Listener)
		}
		cfg.listeners[event] = append(cfg.listeners[event], fn)
	}
}
