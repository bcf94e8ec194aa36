package fieldname_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formset/pkg/fieldname"
)

func TestParseNameTokens(t *testing.T) {
	cases := []struct {
		name string
		want []string
	}{
		{name: "addr-0-street", want: []string{"addr-", "0", "-street"}},
		{name: "addresses-0-phones-1-number", want: []string{"addresses-", "0", "-phones-", "1", "-number"}},
		{name: "sections-1.phones-2-number", want: []string{"sections-", "1", ".phones-", "2", "-number"}},
		{name: "myform.sections-3-title", want: []string{"myform.sections-", "3", "-title"}},
		{name: "addr-0-first-name", want: []string{"addr-", "0", "-first-name"}},
		{name: "items-125-__deleted", want: []string{"items-", "125", "-__deleted"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := fieldname.ParseName(tc.name)
			if err != nil {
				t.Fatalf("parse %q: %v", tc.name, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
			}
			if joined := strings.Join(got, ""); joined != tc.name {
				t.Fatalf("joined tokens = %q, want %q", joined, tc.name)
			}
		})
	}
}

func TestComposeNameRoundTrip(t *testing.T) {
	names := []string{
		"addr-0-street",
		"addresses-4-phones-12-number",
		"sections-1.phones-2-number",
		"a-0-b.c-1-x",
		"addr-0-first-name",
	}

	for _, name := range names {
		parsed, err := fieldname.Parse(name)
		if err != nil {
			t.Fatalf("parse %q: %v", name, err)
		}
		tokens, err := fieldname.ParseName(name)
		if err != nil {
			t.Fatalf("tokens %q: %v", name, err)
		}
		for depth, seg := range parsed.Segments {
			got, err := fieldname.ComposeName(tokens, depth, seg.Ordinal)
			if err != nil {
				t.Fatalf("compose %q depth %d: %v", name, depth, err)
			}
			if got != name {
				t.Fatalf("compose %q depth %d = %q", name, depth, got)
			}
		}
		if formatted := parsed.String(); formatted != name {
			t.Fatalf("format(parse(%q)) = %q", name, formatted)
		}
	}
}

func TestComposeNameReplacesSingleSlot(t *testing.T) {
	tokens, err := fieldname.ParseName("addresses-0-phones-1-number")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	outer, err := fieldname.ComposeName(tokens, 0, 5)
	if err != nil {
		t.Fatalf("compose outer: %v", err)
	}
	if outer != "addresses-5-phones-1-number" {
		t.Fatalf("outer = %q", outer)
	}

	inner, err := fieldname.ComposeName(tokens, 1, 7)
	if err != nil {
		t.Fatalf("compose inner: %v", err)
	}
	if inner != "addresses-0-phones-7-number" {
		t.Fatalf("inner = %q", inner)
	}

	if tokens[1] != "0" || tokens[3] != "1" {
		t.Fatalf("compose mutated input tokens: %v", tokens)
	}
}

func TestComposeNameErrors(t *testing.T) {
	tokens, err := fieldname.ParseName("addr-0-street")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := fieldname.ComposeName(tokens, 1, 1); !errors.Is(err, fieldname.ErrDepthOutOfRange) {
		t.Fatalf("expected ErrDepthOutOfRange, got %v", err)
	}
	if _, err := fieldname.ComposeName(tokens, -1, 1); !errors.Is(err, fieldname.ErrDepthOutOfRange) {
		t.Fatalf("expected ErrDepthOutOfRange for negative depth, got %v", err)
	}
	if _, err := fieldname.ComposeName(tokens, 0, -3); !errors.Is(err, fieldname.ErrInvalidOrdinal) {
		t.Fatalf("expected ErrInvalidOrdinal, got %v", err)
	}
}

func TestParseMalformedNames(t *testing.T) {
	names := []string{
		"",
		"street",
		"addr-street",
		"addr-0",
		"addr-0-",
		"-0-street",
		"addr-00-street",
		"addr--0-street",
		"addr-x-street",
		"a-1.b-x",
	}

	for _, name := range names {
		if _, err := fieldname.ParseName(name); !errors.Is(err, fieldname.ErrMalformedName) {
			t.Fatalf("ParseName(%q) error = %v, want ErrMalformedName", name, err)
		}
	}
}

func TestParseStructuredName(t *testing.T) {
	got, err := fieldname.Parse("sections-1.phones-2-number")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := fieldname.Name{
		Segments: []fieldname.Segment{
			{Label: "sections", Ordinal: 1},
			{Label: "phones", Ordinal: 2, Inline: true},
		},
		Leaf: "number",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("name mismatch (-want +got):\n%s", diff)
	}
	if got.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", got.Depth())
	}
}

func TestNameWithOrdinal(t *testing.T) {
	name, err := fieldname.Parse("addresses-0-phones-1-number")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	updated, err := name.WithOrdinal(0, 3)
	if err != nil {
		t.Fatalf("with ordinal: %v", err)
	}
	if updated.String() != "addresses-3-phones-1-number" {
		t.Fatalf("updated = %q", updated.String())
	}
	if name.String() != "addresses-0-phones-1-number" {
		t.Fatalf("original mutated: %q", name.String())
	}
	if _, err := name.WithOrdinal(2, 1); !errors.Is(err, fieldname.ErrDepthOutOfRange) {
		t.Fatalf("expected ErrDepthOutOfRange, got %v", err)
	}
}

func TestDeletionFlag(t *testing.T) {
	codec := fieldname.DefaultCodec()

	cases := []struct {
		name  string
		depth int
		want  string
	}{
		{name: "addr-2-street", depth: 0, want: "addr-2-__deleted"},
		{name: "addresses-1-phones-3-number", depth: 1, want: "addresses-1-phones-3-__deleted"},
		{name: "addresses-1-phones-3-number", depth: 0, want: "addresses-1-__deleted"},
		{name: "sections-1.phones-2-number", depth: 1, want: "sections-1.phones-2-__deleted"},
	}
	for _, tc := range cases {
		got, err := codec.DeletionFlag(tc.name, tc.depth)
		if err != nil {
			t.Fatalf("deletion flag %q: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("DeletionFlag(%q, %d) = %q, want %q", tc.name, tc.depth, got, tc.want)
		}
		parsed, err := codec.Parse(got)
		if err != nil {
			t.Fatalf("flag %q does not parse: %v", got, err)
		}
		if !parsed.IsDeletionFlag() {
			t.Fatalf("flag %q not recognised as deletion flag", got)
		}
	}
}

func TestCustomSeparator(t *testing.T) {
	codec := fieldname.Codec{Separator: "--", Marker: ":"}

	tokens, err := codec.Tokens("items--4--name")
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	if diff := cmp.Diff([]string{"items--", "4", "--name"}, tokens); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}

	name, err := codec.Compose(tokens, 0, 1)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if name != "items--1--name" {
		t.Fatalf("name = %q", name)
	}
}
