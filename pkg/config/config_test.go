package config_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formset/internal/dom"
	"github.com/goliatone/go-formset/pkg/config"
	"github.com/goliatone/go-formset/pkg/fieldname"
	"github.com/goliatone/go-formset/pkg/formset"
)

const yamlConfig = `
separator: "_"
ordinalBase: 0
hardMax: 20
attributes:
  group: data-repeat
  entry: data-item
templates:
  "#item-tpl": |
    <li><input name="{{ entry.prefix }}name"></li>
`

const jsonConfig = `{
  "separator": "_",
  "ordinalBase": 0,
  "hardMax": 20,
  "attributes": {"group": "data-repeat", "entry": "data-item"},
  "templates": {"#item-tpl": "<li><input name=\"{{ entry.prefix }}name\"></li>\n"}
}`

func TestParseAcceptsJSONAndYAML(t *testing.T) {
	fromYAML, err := config.Parse([]byte(yamlConfig), "formset.yaml")
	if err != nil {
		t.Fatalf("Parse yaml: %v", err)
	}
	fromJSON, err := config.Parse([]byte(jsonConfig), "formset.json")
	if err != nil {
		t.Fatalf("Parse json: %v", err)
	}

	fromYAML.Source, fromJSON.Source = "", ""
	if diff := cmp.Diff(fromJSON, fromYAML); diff != "" {
		t.Fatalf("config mismatch (-json +yaml):\n%s", diff)
	}
	if fromYAML.OrdinalBase == nil || *fromYAML.OrdinalBase != 0 {
		t.Fatalf("ordinalBase should be an explicit zero")
	}
	want := fieldname.Codec{Separator: "_", Marker: fieldname.DefaultMarker}
	if diff := cmp.Diff(want, fromYAML.Codec()); diff != "" {
		t.Fatalf("codec mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: "  \n"},
		{name: "digit separator", data: `separator: "1"`},
		{name: "overlapping marker", data: "separator: \"--\"\nmarker: \"-\""},
		{name: "negative base", data: "ordinalBase: -1"},
		{name: "negative max", data: "hardMax: -5"},
		{name: "same attributes", data: "attributes:\n  group: data-x\n  entry: data-x"},
		{name: "empty template", data: "templates:\n  addr: \"  \""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := config.Parse([]byte(tt.data), tt.name); !errors.Is(err, config.ErrInvalid) {
				t.Fatalf("Parse error = %v, want ErrInvalid", err)
			}
		})
	}

	if _, err := config.Parse([]byte("separator: [unclosed"), "broken.yaml"); err == nil {
		t.Fatalf("expected a parse error for malformed YAML")
	}
}

func TestLoadReportsMissingFile(t *testing.T) {
	_, err := config.Load(fstest.MapFS{}, "missing.yaml")
	if err == nil || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("Load error = %v", err)
	}
}

func TestOptionsDriveFormset(t *testing.T) {
	files := fstest.MapFS{
		"formset.yaml": {Data: []byte(yamlConfig)},
	}
	cfg, err := config.Load(files, "formset.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	doc, err := html.Parse(strings.NewReader(`
<ul id="items" data-repeat="item"><li data-item="item"><input name="item_0_name"></li></ul>
<button id="more" data-addbtn="#item-tpl">more</button>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	opts, err := cfg.Options(files, doc)
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	fs, err := formset.New(doc, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := fs.Click(context.Background(), dom.ByID(doc, "more")); err != nil {
		t.Fatalf("Click: %v", err)
	}
	g, err := fs.Group("item")
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	var got []string
	for _, e := range g.Entries() {
		got = append(got, e.Names()...)
	}
	if diff := cmp.Diff([]string{"item_0_name", "item_1_name"}, got); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if g.Max() != 20 {
		t.Fatalf("Max = %d, want 20", g.Max())
	}
}

func TestTemplateDirAndSanitize(t *testing.T) {
	files := fstest.MapFS{
		"formset.json": {Data: []byte(`{"templateDir": "tpl", "sanitize": true}`)},
		"tpl/addr.tmpl": {Data: []byte(`<div data-form="addr" onclick="steal()"><input name="{{ entry.prefix }}street"><script>alert(1)</script></div>`)},
	}
	cfg, err := config.Load(files, "formset.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	source, err := cfg.TemplateSource(files, nil)
	if err != nil {
		t.Fatalf("TemplateSource: %v", err)
	}
	doc, err := html.Parse(strings.NewReader(`<div data-forms="addr"></div>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	fs, err := formset.New(doc, formset.WithTemplates(source))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g, err := fs.Group("addr")
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	entry, err := fs.Add(context.Background(), g)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	out, err := dom.RenderString(entry.Node())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, banned := range []string{"onclick", "script", "alert"} {
		if strings.Contains(out, banned) {
			t.Fatalf("sanitised entry still contains %q: %s", banned, out)
		}
	}
	if diff := cmp.Diff([]string{"addr-1-street"}, entry.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplateDirNeedsFilesystem(t *testing.T) {
	cfg, err := config.Parse([]byte(`templateDir: tpl`), "inline")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := cfg.Options(nil, nil); !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("Options error = %v, want ErrInvalid", err)
	}
}
