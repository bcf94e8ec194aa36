package formset_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	formset "github.com/goliatone/go-formset"
	"github.com/goliatone/go-formset/pkg/confirm"
	"github.com/goliatone/go-formset/pkg/submission"
	"github.com/goliatone/go-formset/pkg/testsupport"
)

func TestParseFileAddRemoveRender(t *testing.T) {
	var events []string
	fs, err := formset.ParseFile("testdata/addresses.html",
		formset.WithConfirmer(confirm.Always(true)),
		formset.WithListener(formset.EventEntryAdded, func(evt formset.Event) { events = append(events, evt.Type+":"+evt.Group.Type()) }),
		formset.WithListener(formset.EventEntryRemoved, func(evt formset.Event) { events = append(events, evt.Type+":"+evt.Group.Type()) }),
	)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	ctx := context.Background()

	phones, err := fs.Locate("addresses[2].phones")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if _, err := fs.Add(ctx, phones); err != nil {
		t.Fatalf("Add phone: %v", err)
	}
	addresses, err := fs.Group("addresses")
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	if _, err := fs.Add(ctx, addresses); err != nil {
		t.Fatalf("Add address: %v", err)
	}
	if _, err := fs.Add(ctx, addresses); err == nil {
		t.Fatalf("fourth address should exceed data-maxforms")
	}
	if _, err := fs.Remove(ctx, addresses, addresses.Entries()[0]); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	var buf bytes.Buffer
	if err := formset.Render(&buf, fs); err != nil {
		t.Fatalf("Render: %v", err)
	}
	doc := testsupport.ParseDocument(t, buf.String())
	got, err := submission.Decode(submission.Values(doc), formset.Codec{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	group, ok := got.Group("addresses")
	if !ok {
		t.Fatalf("addresses missing from submission")
	}
	if diff := cmp.Diff([]int{1}, group.Deleted()); diff != "" {
		t.Fatalf("deleted mismatch (-want +got):\n%s", diff)
	}
	live := group.Live()
	if len(live) != 2 {
		t.Fatalf("live entries = %d, want 2", len(live))
	}
	if diff := cmp.Diff([]string{"18", "2 Side St"}, []string{live[0].Value("id"), live[0].Value("street")}); diff != "" {
		t.Fatalf("second address mismatch (-want +got):\n%s", diff)
	}
	if ph, ok := live[0].Group("phones"); !ok || len(ph.Entries) != 1 || ph.Entries[0].Ordinal != 1 {
		t.Fatalf("added phone should be submitted as addresses-2-phones-1: %+v", ph)
	}
	if live[1].Ordinal != 3 {
		t.Fatalf("added address ordinal = %d, want 3", live[1].Ordinal)
	}

	want := []string{
		formset.EventEntryAdded + ":phones",
		formset.EventEntryAdded + ":addresses",
		formset.EventEntryRemoved + ":addresses",
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsNilFormset(t *testing.T) {
	if err := formset.Render(&bytes.Buffer{}, nil); err == nil {
		t.Fatalf("Render(nil) should fail")
	}
}

func TestConfigAndOpenAPIHelpers(t *testing.T) {
	files := fstest.MapFS{
		"formset.yaml": {Data: []byte("ordinalBase: 0\n")},
	}
	cfg, err := formset.LoadConfig(files, "formset.yaml")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	spec := []byte(`{"openapi":"3.0.3","info":{"title":"t","version":"1"},"paths":{},
"components":{"schemas":{"Tag":{"type":"object","properties":{"label":{"type":"string"}}}}}}`)
	source, err := formset.OpenAPITemplates(context.Background(), spec, "Tag", "tags")
	if err != nil {
		t.Fatalf("OpenAPITemplates: %v", err)
	}

	fs, err := formset.Parse(strings.NewReader(`<div data-forms="tags"></div>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	opts, err := cfg.Options(nil, fs.Root())
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	fs, err = formset.New(fs.Root(), append(opts, formset.WithTemplates(source))...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tags, err := fs.Group("tags")
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	entry, err := fs.Add(context.Background(), tags)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if diff := cmp.Diff([]string{"tags-0-label"}, entry.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}
