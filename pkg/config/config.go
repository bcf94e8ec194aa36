// Package config loads formset settings from JSON or YAML files and turns
// them into formset options.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formset/pkg/fieldname"
	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/templates"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Config describes how a formset reads the document. Zero values keep the
// package defaults.
type Config struct {
	Separator   string             `json:"separator" yaml:"separator"`
	Marker      string             `json:"marker" yaml:"marker"`
	OrdinalBase *int               `json:"ordinalBase" yaml:"ordinalBase"`
	HardMax     int                `json:"hardMax" yaml:"hardMax"`
	Attributes  formset.Attributes `json:"attributes" yaml:"attributes"`

	// Templates maps selectors or group types to pongo2 entry templates.
	Templates map[string]string `json:"templates" yaml:"templates"`
	// TemplateDir is resolved against the filesystem passed to Options.
	TemplateDir       string `json:"templateDir" yaml:"templateDir"`
	TemplateExtension string `json:"templateExtension" yaml:"templateExtension"`
	Sanitize          bool   `json:"sanitize" yaml:"sanitize"`

	// Source records where the configuration was read from.
	Source string `json:"-" yaml:"-"`
}

// Load reads and validates the file at name.
func Load(fsys fs.FS, name string) (Config, error) {
	if fsys == nil {
		return Config{}, fmt.Errorf("config: nil filesystem for %s", name)
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", name, err)
	}
	return Parse(data, name)
}

// Parse decodes data as JSON, falling back to YAML, and validates it.
func Parse(data []byte, source string) (Config, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Config{}, fmt.Errorf("%w: file %s is empty", ErrInvalid, source)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		cfg = Config{}
		if yamlErr := yaml.Unmarshal(data, &cfg); yamlErr != nil {
			return Config{}, fmt.Errorf("config: parse %s: invalid JSON or YAML: %w", source, yamlErr)
		}
	}
	cfg.Source = source

	if err := cfg.normalise(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalise() error {
	c.Separator = strings.TrimSpace(c.Separator)
	c.Marker = strings.TrimSpace(c.Marker)
	c.TemplateDir = strings.TrimSpace(c.TemplateDir)
	c.TemplateExtension = strings.TrimSpace(c.TemplateExtension)

	codec := c.Codec()
	if strings.IndexFunc(codec.Separator, unicode.IsDigit) >= 0 || strings.IndexFunc(codec.Marker, unicode.IsDigit) >= 0 {
		return fmt.Errorf("%w: %s: separator and marker must not contain digits", ErrInvalid, c.Source)
	}
	if strings.Contains(codec.Separator, codec.Marker) || strings.Contains(codec.Marker, codec.Separator) {
		return fmt.Errorf("%w: %s: separator %q and marker %q overlap", ErrInvalid, c.Source, codec.Separator, codec.Marker)
	}
	if c.OrdinalBase != nil && *c.OrdinalBase < 0 {
		return fmt.Errorf("%w: %s: ordinalBase must not be negative", ErrInvalid, c.Source)
	}
	if c.HardMax < 0 {
		return fmt.Errorf("%w: %s: hardMax must not be negative", ErrInvalid, c.Source)
	}

	attrs := formset.DefaultAttributes()
	if c.Attributes.Group != "" {
		attrs.Group = c.Attributes.Group
	}
	if c.Attributes.Entry != "" {
		attrs.Entry = c.Attributes.Entry
	}
	if attrs.Group == attrs.Entry {
		return fmt.Errorf("%w: %s: group and entry attributes are both %q", ErrInvalid, c.Source, attrs.Group)
	}

	if len(c.Templates) > 0 {
		cleaned := make(map[string]string, len(c.Templates))
		for key, body := range c.Templates {
			name := strings.TrimSpace(key)
			if name == "" {
				return fmt.Errorf("%w: %s: template with an empty selector", ErrInvalid, c.Source)
			}
			if _, exists := cleaned[name]; exists {
				return fmt.Errorf("%w: %s: duplicate template %q", ErrInvalid, c.Source, name)
			}
			if strings.TrimSpace(body) == "" {
				return fmt.Errorf("%w: %s: template %q is empty", ErrInvalid, c.Source, name)
			}
			cleaned[name] = body
		}
		c.Templates = cleaned
	}
	return nil
}

// Codec returns the field name codec described by the configuration.
func (c Config) Codec() fieldname.Codec {
	codec := fieldname.DefaultCodec()
	if c.Separator != "" {
		codec.Separator = c.Separator
	}
	if c.Marker != "" {
		codec.Marker = c.Marker
	}
	return codec
}

// Options converts the configuration into formset options. fsys resolves
// TemplateDir; root lets "#id" selectors fall back to templates embedded in
// the document.
func (c Config) Options(fsys fs.FS, root *html.Node) ([]formset.Option, error) {
	opts := []formset.Option{
		formset.WithCodec(c.Codec()),
		formset.WithAttributes(c.Attributes),
	}
	if c.OrdinalBase != nil {
		opts = append(opts, formset.WithOrdinalBase(*c.OrdinalBase))
	}
	if c.HardMax > 0 {
		opts = append(opts, formset.WithHardMax(c.HardMax))
	}

	source, err := c.TemplateSource(fsys, root)
	if err != nil {
		return nil, err
	}
	if source != nil {
		opts = append(opts, formset.WithTemplates(source))
	}
	return opts, nil
}

// TemplateSource builds the template lookup chain: configured templates
// first, then the document. It returns nil when nothing is configured so
// the formset default applies.
func (c Config) TemplateSource(fsys fs.FS, root *html.Node) (templates.Source, error) {
	if len(c.Templates) == 0 && c.TemplateDir == "" {
		if c.Sanitize && root != nil {
			return templates.Sanitized(templates.Document(root), nil), nil
		}
		return nil, nil
	}

	var engineOpts []templates.EngineOption
	for name, body := range c.Templates {
		engineOpts = append(engineOpts, templates.WithTemplate(name, body))
	}
	if c.TemplateExtension != "" {
		engineOpts = append(engineOpts, templates.WithExtension(c.TemplateExtension))
	}
	if c.TemplateDir != "" {
		if fsys == nil {
			return nil, fmt.Errorf("%w: %s: templateDir %q needs a filesystem", ErrInvalid, c.Source, c.TemplateDir)
		}
		dir := path.Clean(c.TemplateDir)
		sub, err := fs.Sub(fsys, dir)
		if err != nil {
			return nil, fmt.Errorf("config: template dir %s: %w", dir, err)
		}
		engineOpts = append(engineOpts, templates.WithFS(sub))
	}

	engine, err := templates.NewEngine(engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", c.Source, err)
	}

	var source templates.Source = engine
	if root != nil {
		source = templates.Chain(engine, templates.Document(root))
	}
	if c.Sanitize {
		source = templates.Sanitized(source, nil)
	}
	return source, nil
}
