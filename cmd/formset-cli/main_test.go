package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formset/internal/dom"
	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/submission"
	"github.com/goliatone/go-formset/pkg/testsupport"
)

const fixture = "../../testdata/addresses.html"

func runCLI(t *testing.T, opts options) string {
	t.Helper()

	var out bytes.Buffer
	opts.stdout = &out
	opts.stderr = io.Discard
	opts.readFile = os.ReadFile
	if err := run(context.Background(), opts); err != nil {
		t.Fatalf("run %s: %v", opts.command, err)
	}
	return out.String()
}

func TestAddNestedEntry(t *testing.T) {
	out := runCLI(t, options{in: fixture, command: "add", args: []string{"addresses[2].phones"}})

	names := testsupport.Names(testsupport.ParseDocument(t, out))
	if !contains(names, "addresses-2-phones-1-number") {
		t.Fatalf("added phone missing from %v", names)
	}
}

func TestRemovePersistedEntryWithHiddenFields(t *testing.T) {
	out := runCLI(t, options{
		in:      fixture,
		command: "remove",
		args:    []string{"addresses", "1"},
		yes:     true,
		hidden:  []submission.HiddenField{submission.Hidden("_csrf", "fresh"), submission.Hidden("version", 3)},
	})

	doc := testsupport.ParseDocument(t, out)
	values := submission.Values(doc)
	if got := values.Get("addresses-1-__deleted"); got != "1" {
		t.Fatalf("deletion flag = %q, want 1", got)
	}
	if got := values.Get("addresses-1-street"); got != "" {
		t.Fatalf("removed entry still submits street %q", got)
	}
	if diff := cmp.Diff([]string{"fresh", "3"}, []string{values.Get("_csrf"), values.Get("version")}); diff != "" {
		t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveRejectsBadPosition(t *testing.T) {
	err := run(context.Background(), options{
		in:       fixture,
		command:  "remove",
		args:     []string{"addresses", "9"},
		yes:      true,
		stdout:   io.Discard,
		stderr:   io.Discard,
		readFile: os.ReadFile,
	})
	if !errors.Is(err, formset.ErrEntryNotFound) {
		t.Fatalf("error = %v, want ErrEntryNotFound", err)
	}
}

func TestInspectJSON(t *testing.T) {
	out := runCLI(t, options{in: fixture, command: "inspect", format: "json"})

	var groups []formset.GroupInfo
	if err := json.Unmarshal([]byte(out), &groups); err != nil {
		t.Fatalf("decode inspect output: %v\n%s", err, out)
	}
	paths := make([]string, 0, len(groups))
	for _, g := range groups {
		paths = append(paths, g.Path)
	}
	want := []string{"addresses", "addresses[1].phones", "addresses[2].phones"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
	if groups[0].Max != 3 || len(groups[0].Entries) != 2 {
		t.Fatalf("unexpected addresses snapshot: %+v", groups[0])
	}
}

func TestValuesYAML(t *testing.T) {
	out := runCLI(t, options{in: fixture, command: "values"})

	for _, want := range []string{"label: addresses", "label: phones", "1 Main St", "555-0100"} {
		if !strings.Contains(out, want) {
			t.Fatalf("values output missing %q:\n%s", want, out)
		}
	}
}

func TestOpenAPITemplateForBareGroup(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "tags.html")
	spec := filepath.Join(dir, "api.json")
	writeFile(t, page, `<form><div data-forms="tags"></div></form>`)
	writeFile(t, spec, `{"openapi":"3.0.3","info":{"title":"t","version":"1"},"paths":{},
"components":{"schemas":{"Tag":{"type":"object","properties":{"label":{"type":"string"}}}}}}`)

	out := runCLI(t, options{in: page, openapi: spec, schema: "Tag", command: "add", args: []string{"tags"}})

	names := testsupport.Names(testsupport.ParseDocument(t, out))
	if diff := cmp.Diff([]string{"tags-1-label"}, names); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigFileSetsOrdinalBase(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	cfg := filepath.Join(dir, "formset.yaml")
	out := filepath.Join(dir, "out.html")
	writeFile(t, page, `<form><div data-forms="tags"><div data-form="tags"><input name="tags-1-label"></div></div></form>`)
	writeFile(t, cfg, "ordinalBase: 0\n")

	runCLI(t, options{in: page, out: out, config: cfg, command: "renumber"})

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	names := testsupport.Names(testsupport.ParseDocument(t, string(data)))
	if diff := cmp.Diff([]string{"tags-0-label"}, names); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-yes", "-hidden", "_csrf=abc", "-format", "json", "remove", "addresses", "2"}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if !opts.yes || opts.format != "json" || opts.command != "remove" {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if diff := cmp.Diff([]string{"addresses", "2"}, opts.args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]submission.HiddenField{{Name: "_csrf", Value: "abc"}}, opts.hidden); diff != "" {
		t.Fatalf("hidden mismatch (-want +got):\n%s", diff)
	}

	for _, args := range [][]string{
		{},
		{"-hidden", "novalue", "inspect"},
		{"-openapi", "api.json", "add", "tags"},
	} {
		if _, err := parseFlags(args, io.Discard); err == nil {
			t.Fatalf("parseFlags(%q) should fail", args)
		}
	}
}

func TestSplitPath(t *testing.T) {
	group, prefix := splitPath("addresses[2].phones", "-")
	if diff := cmp.Diff([]string{"phones", "addresses-0-"}, []string{group, prefix}); diff != "" {
		t.Fatalf("splitPath mismatch (-want +got):\n%s", diff)
	}
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func TestRepeatedHiddenFlagsLastValueWins(t *testing.T) {
	out := runCLI(t, options{
		in:      fixture,
		command: "renumber",
		hidden: []submission.HiddenField{
			submission.Hidden("zeta", 1),
			submission.Hidden("_csrf", "first"),
			submission.Hidden("_csrf", "second"),
			submission.Hidden("alpha", 2),
		},
	})

	doc := testsupport.ParseDocument(t, out)
	values := submission.Values(doc)
	if diff := cmp.Diff([]string{"second"}, values["_csrf"]); diff != "" {
		t.Fatalf("_csrf mismatch (-want +got):\n%s", diff)
	}
	form := dom.Find(doc, func(n *html.Node) bool { return dom.IsElement(n) && n.Data == "form" })
	names := testsupport.Names(form)
	if diff := cmp.Diff([]string{"alpha", "zeta"}, names[len(names)-2:]); diff != "" {
		t.Fatalf("injected order mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveFromStdinNeedsYes(t *testing.T) {
	stdin, err := os.Open(fixture)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer stdin.Close()

	err = run(context.Background(), options{
		command:  "remove",
		args:     []string{"addresses", "1"},
		stdin:    stdin,
		stdout:   io.Discard,
		stderr:   io.Discard,
		readFile: os.ReadFile,
	})
	if !errors.Is(err, formset.ErrConfirmationRequired) {
		t.Fatalf("error = %v, want ErrConfirmationRequired", err)
	}
	if !strings.Contains(err.Error(), "-yes") {
		t.Fatalf("error should point at -yes: %v", err)
	}
}
