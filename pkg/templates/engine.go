package templates

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// EngineOption configures an Engine.
type EngineOption func(*engineConfig)

type engineConfig struct {
	files     fs.FS
	extension string
	inline    map[string]string
	globals   map[string]any
	filters   map[string]Filter
}

// WithFS loads entry templates from files. The selector maps to
// "<name><extension>" with any leading "#" removed.
func WithFS(files fs.FS) EngineOption {
	return func(cfg *engineConfig) {
		cfg.files = files
	}
}

// WithExtension overrides the template file extension (".tmpl" by default).
func WithExtension(ext string) EngineOption {
	return func(cfg *engineConfig) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithTemplate registers an inline template under name.
func WithTemplate(name, content string) EngineOption {
	return func(cfg *engineConfig) {
		name = strings.TrimPrefix(strings.TrimSpace(name), "#")
		if name == "" {
			return
		}
		if cfg.inline == nil {
			cfg.inline = make(map[string]string)
		}
		cfg.inline[name] = content
	}
}

// WithGlobals seeds values visible to every template.
func WithGlobals(data map[string]any) EngineOption {
	return func(cfg *engineConfig) {
		if len(data) == 0 {
			return
		}
		if cfg.globals == nil {
			cfg.globals = make(map[string]any, len(data))
		}
		for key, value := range data {
			if key = strings.TrimSpace(key); key != "" {
				cfg.globals[key] = value
			}
		}
	}
}

// WithFilter makes fn available to every template as name. Filters must be
// known before inline templates compile, so they are registered by
// NewEngine.
func WithFilter(name string, fn Filter) EngineOption {
	return func(cfg *engineConfig) {
		name = strings.TrimSpace(name)
		if name == "" || fn == nil {
			return
		}
		if cfg.filters == nil {
			cfg.filters = make(map[string]Filter)
		}
		cfg.filters[name] = fn
	}
}

// Engine renders entry templates with pongo2. Each render receives the
// entry being created as "entry" (group, ordinal, depth, prefix) alongside
// any globals.
type Engine struct {
	mu sync.RWMutex

	set       *pongo2.TemplateSet
	files     fs.FS
	extension string
	compiled  map[string]*pongo2.Template
}

var _ Source = (*Engine)(nil)

// NewEngine compiles inline templates eagerly; file templates are compiled
// on first use and cached.
func NewEngine(options ...EngineOption) (*Engine, error) {
	cfg := engineConfig{extension: ".tmpl"}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	for name, fn := range cfg.filters {
		if err := registerFilter(name, fn); err != nil {
			return nil, err
		}
	}

	var loaders []pongo2.TemplateLoader
	if cfg.files != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.files))
	}

	engine := &Engine{
		set:       pongo2.NewSet("formset", loaders...),
		files:     cfg.files,
		extension: cfg.extension,
		compiled:  make(map[string]*pongo2.Template),
	}
	if len(cfg.globals) > 0 {
		if engine.set.Globals == nil {
			engine.set.Globals = make(pongo2.Context)
		}
		engine.set.Globals.Update(pongo2.Context(cfg.globals))
	}

	for name, content := range cfg.inline {
		tmpl, err := engine.set.FromString(content)
		if err != nil {
			return nil, fmt.Errorf("templates: compile %q: %w", name, err)
		}
		engine.compiled[name] = tmpl
	}
	return engine, nil
}

// Lookup renders the template named by selector for the entry stored on ctx.
func (e *Engine) Lookup(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := strings.TrimPrefix(strings.TrimSpace(selector), "#")
	if name == "" {
		return "", fmt.Errorf("%w: empty selector", ErrNotFound)
	}

	tmpl, err := e.template(name)
	if err != nil {
		return "", err
	}

	data := pongo2.Context{}
	if entry, ok := EntryFromContext(ctx); ok {
		data["entry"] = map[string]any{
			"group":   entry.Group,
			"ordinal": entry.Ordinal,
			"depth":   entry.Depth,
			"prefix":  entry.Prefix,
		}
	}

	e.mu.RLock()
	out, err := tmpl.Execute(data)
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("templates: execute %q: %w", name, err)
	}
	return out, nil
}

// Filter is a pongo2 filter body working on plain Go values.
type Filter func(input any, param any) (any, error)

// pongo2 filters are process wide; names registered here may be replaced by
// later engines, other names are left alone.
var ownFilters sync.Map

func registerFilter(name string, fn Filter) error {
	wrapped := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}
	if pongo2.FilterExists(name) {
		if _, ours := ownFilters.Load(name); !ours {
			return fmt.Errorf("templates: filter %q already exists", name)
		}
		return pongo2.ReplaceFilter(name, wrapped)
	}
	if err := pongo2.RegisterFilter(name, wrapped); err != nil {
		return err
	}
	ownFilters.Store(name, struct{}{})
	return nil
}
