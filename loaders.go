package formset

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-formset/pkg/config"
	"github.com/goliatone/go-formset/pkg/openapi"
	"github.com/goliatone/go-formset/pkg/templates"
)

// LoadConfig reads a JSON or YAML configuration file from fsys.
func LoadConfig(fsys fs.FS, path string) (config.Config, error) {
	return config.Load(fsys, path)
}

// NewTemplateEngine constructs the pongo2 backed template source.
func NewTemplateEngine(options ...templates.EngineOption) (*templates.Engine, error) {
	return templates.NewEngine(options...)
}

// OpenAPITemplates renders entry templates for group from an OpenAPI
// component schema and returns them as a template source.
func OpenAPITemplates(ctx context.Context, data []byte, schemaName, group string, options ...openapi.Option) (templates.Source, error) {
	set, err := openapi.Templates(ctx, data, schemaName, group, options...)
	if err != nil {
		return nil, err
	}
	return templates.Static(set), nil
}
