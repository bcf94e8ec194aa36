package openapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formset/internal/dom"
	"github.com/goliatone/go-formset/pkg/fieldname"
	"github.com/goliatone/go-formset/pkg/formset"
)

var (
	// ErrSchemaNotFound is returned when the document has no component
	// schema with the requested name.
	ErrSchemaNotFound = errors.New("openapi: schema not found")
	// ErrNotObject is returned when the schema has no properties to render.
	ErrNotObject = errors.New("openapi: schema is not an object")
)

// Option customises template generation.
type Option func(*config)

type config struct {
	codec       fieldname.Codec
	attrs       formset.Attributes
	placeholder int
	prefix      string
	removeLabel string
	addLabel    string
}

// WithCodec sets the codec used to join names.
func WithCodec(codec fieldname.Codec) Option {
	return func(cfg *config) {
		cfg.codec = codec
	}
}

// WithAttributes overrides the data attributes written into the markup.
func WithAttributes(attrs formset.Attributes) Option {
	return func(cfg *config) {
		cfg.attrs = formset.DefaultAttributes()
		if attrs.Group != "" {
			cfg.attrs.Group = attrs.Group
		}
		if attrs.Entry != "" {
			cfg.attrs.Entry = attrs.Entry
		}
		if attrs.Add != "" {
			cfg.attrs.Add = attrs.Add
		}
		if attrs.Remove != "" {
			cfg.attrs.Remove = attrs.Remove
		}
		if attrs.Max != "" {
			cfg.attrs.Max = attrs.Max
		}
	}
}

// WithPlaceholder sets the ordinal written into generated names (0 by
// default). Any value works since names are renumbered on insertion.
func WithPlaceholder(ordinal int) Option {
	return func(cfg *config) {
		if ordinal >= 0 {
			cfg.placeholder = ordinal
		}
	}
}

// WithPrefix prepends the name root of an enclosing entry, for example
// "orders-1-" when the group lives inside an order entry.
func WithPrefix(prefix string) Option {
	return func(cfg *config) {
		cfg.prefix = prefix
	}
}

// WithRemoveButton sets the remove button label. An empty label omits the
// button.
func WithRemoveButton(label string) Option {
	return func(cfg *config) {
		cfg.removeLabel = label
	}
}

// WithAddLabel sets the label prefix of nested add buttons ("Add" by
// default).
func WithAddLabel(label string) Option {
	return func(cfg *config) {
		if strings.TrimSpace(label) != "" {
			cfg.addLabel = label
		}
	}
}

// Load parses an OpenAPI document. Local references are resolved.
func Load(ctx context.Context, data []byte) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	return doc, nil
}

// EntryTemplate renders the entry template for group from the component
// schema schemaName.
func EntryTemplate(ctx context.Context, data []byte, schemaName, group string, options ...Option) (string, error) {
	set, err := Templates(ctx, data, schemaName, group, options...)
	if err != nil {
		return "", err
	}
	return set[group], nil
}

// Templates renders the entry template for group plus one template per
// nested array of objects, keyed by the nested group type. The result plugs
// into templates.Static. When two nested arrays share a property name the
// first one wins.
func Templates(ctx context.Context, data []byte, schemaName, group string, options ...Option) (map[string]string, error) {
	doc, err := Load(ctx, data)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc, schemaName, group, options...)
}

// FromDocument is Templates for an already loaded document.
func FromDocument(doc *openapi3.T, schemaName, group string, options ...Option) (map[string]string, error) {
	group = strings.TrimSpace(group)
	if group == "" {
		return nil, errors.New("openapi: group type is required")
	}
	if doc == nil || doc.Components == nil {
		return nil, fmt.Errorf("%w: %q (document has no components)", ErrSchemaNotFound, schemaName)
	}
	ref, ok := doc.Components.Schemas[schemaName]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("%w: %q", ErrSchemaNotFound, schemaName)
	}

	cfg := config{
		codec:       fieldname.DefaultCodec(),
		attrs:       formset.DefaultAttributes(),
		removeLabel: "Remove",
		addLabel:    "Add",
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.codec.Separator == "" {
		cfg.codec.Separator = fieldname.DefaultSeparator
	}

	b := &builder{cfg: cfg, out: make(map[string]string)}
	if err := b.entry(ref.Value, group, cfg.prefix); err != nil {
		return nil, fmt.Errorf("openapi: schema %q: %w", schemaName, err)
	}
	return b.out, nil
}

type builder struct {
	cfg config
	out map[string]string
}

func (b *builder) entry(schema *openapi3.Schema, group, parentPrefix string) error {
	if len(schema.Properties) == 0 {
		return fmt.Errorf("%w: group %q", ErrNotObject, group)
	}
	if _, done := b.out[group]; done {
		return nil
	}
	b.out[group] = ""

	sep := b.cfg.codec.Separator
	prefix := parentPrefix + group + sep + strconv.Itoa(b.cfg.placeholder) + sep

	root := dom.NewElement("div", html.Attribute{Key: b.cfg.attrs.Entry, Val: group})
	if err := b.properties(root, schema, prefix); err != nil {
		return err
	}
	if b.cfg.removeLabel != "" {
		btn := dom.NewElement("button",
			html.Attribute{Key: "type", Val: "button"},
			html.Attribute{Key: b.cfg.attrs.Remove},
		)
		btn.AppendChild(text(b.cfg.removeLabel))
		root.AppendChild(btn)
	}

	markup, err := dom.RenderString(root)
	if err != nil {
		return err
	}
	b.out[group] = markup
	return nil
}

func (b *builder) properties(parent *html.Node, schema *openapi3.Schema, prefix string) error {
	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	for _, name := range slices.Sorted(maps.Keys(schema.Properties)) {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		prop := ref.Value
		switch {
		case prop.Type.Is(openapi3.TypeArray) && prop.Items != nil && prop.Items.Value != nil && prop.Items.Value.Type.Is(openapi3.TypeObject):
			if err := b.nested(parent, name, prop, prefix); err != nil {
				return err
			}
		case prop.Type.Is(openapi3.TypeObject) && len(prop.Properties) > 0:
			set := dom.NewElement("fieldset")
			legend := dom.NewElement("legend")
			legend.AppendChild(text(title(name, prop)))
			set.AppendChild(legend)
			if err := b.properties(set, prop, prefix+name+b.cfg.codec.Separator); err != nil {
				return err
			}
			parent.AppendChild(set)
		default:
			parent.AppendChild(field(prefix+name, name, prop, required[name]))
		}
	}
	return nil
}

func (b *builder) nested(parent *html.Node, name string, prop *openapi3.Schema, prefix string) error {
	set := dom.NewElement("fieldset")
	legend := dom.NewElement("legend")
	legend.AppendChild(text(title(name, prop)))
	set.AppendChild(legend)

	container := dom.NewElement("div", html.Attribute{Key: b.cfg.attrs.Group, Val: name})
	if prop.MaxItems != nil {
		dom.SetAttr(container, b.cfg.attrs.Max, strconv.FormatUint(*prop.MaxItems, 10))
	}
	set.AppendChild(container)

	add := dom.NewElement("button",
		html.Attribute{Key: "type", Val: "button"},
		html.Attribute{Key: b.cfg.attrs.Add, Val: name},
	)
	add.AppendChild(text(b.cfg.addLabel + " " + strings.ToLower(title(name, prop))))
	set.AppendChild(add)
	parent.AppendChild(set)

	return b.entry(prop.Items.Value, name, prefix)
}

func field(fullName, name string, prop *openapi3.Schema, required bool) *html.Node {
	if prop.ReadOnly {
		return input(fullName, "hidden", prop, false)
	}

	label := dom.NewElement("label")
	label.AppendChild(text(title(name, prop)))

	var control *html.Node
	switch {
	case len(prop.Enum) > 0:
		control = choice(fullName, prop.Enum, prop.Default, required)
	case prop.Type.Is(openapi3.TypeArray) && prop.Items != nil && prop.Items.Value != nil && len(prop.Items.Value.Enum) > 0:
		control = choice(fullName, prop.Items.Value.Enum, nil, true)
		dom.SetAttr(control, "multiple", "")
	case prop.Type.Is(openapi3.TypeBoolean):
		control = input(fullName, "checkbox", prop, false)
		dom.SetAttr(control, "value", "true")
		if v, ok := prop.Default.(bool); ok && v {
			dom.SetAttr(control, "checked", "")
		}
	case prop.Type.Is(openapi3.TypeInteger), prop.Type.Is(openapi3.TypeNumber):
		control = input(fullName, "number", prop, required)
		if prop.Type.Is(openapi3.TypeInteger) {
			dom.SetAttr(control, "step", "1")
		} else {
			dom.SetAttr(control, "step", "any")
		}
		if prop.Min != nil {
			dom.SetAttr(control, "min", strconv.FormatFloat(*prop.Min, 'f', -1, 64))
		}
		if prop.Max != nil {
			dom.SetAttr(control, "max", strconv.FormatFloat(*prop.Max, 'f', -1, 64))
		}
	default:
		control = input(fullName, inputType(prop.Format), prop, required)
		if prop.MaxLength != nil {
			dom.SetAttr(control, "maxlength", strconv.FormatUint(*prop.MaxLength, 10))
		}
		if prop.Pattern != "" {
			dom.SetAttr(control, "pattern", prop.Pattern)
		}
	}

	label.AppendChild(control)
	return label
}

func input(name, kind string, prop *openapi3.Schema, required bool) *html.Node {
	n := dom.NewElement("input",
		html.Attribute{Key: "type", Val: kind},
		html.Attribute{Key: "name", Val: name},
	)
	if prop.Default != nil && kind != "checkbox" {
		dom.SetAttr(n, "value", fmt.Sprint(prop.Default))
	}
	if required {
		dom.SetAttr(n, "required", "")
	}
	return n
}

func choice(name string, values []any, selected any, required bool) *html.Node {
	sel := dom.NewElement("select", html.Attribute{Key: "name", Val: name})
	if required {
		dom.SetAttr(sel, "required", "")
	} else {
		sel.AppendChild(dom.NewElement("option", html.Attribute{Key: "value"}))
	}
	for _, value := range values {
		raw := fmt.Sprint(value)
		opt := dom.NewElement("option", html.Attribute{Key: "value", Val: raw})
		if selected != nil && fmt.Sprint(selected) == raw {
			dom.SetAttr(opt, "selected", "")
		}
		opt.AppendChild(text(raw))
		sel.AppendChild(opt)
	}
	return sel
}

func inputType(format string) string {
	switch format {
	case "email":
		return "email"
	case "date":
		return "date"
	case "date-time":
		return "datetime-local"
	case "uri", "url":
		return "url"
	case "password":
		return "password"
	default:
		return "text"
	}
}

func title(name string, prop *openapi3.Schema) string {
	if t := strings.TrimSpace(prop.Title); t != "" {
		return t
	}
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
