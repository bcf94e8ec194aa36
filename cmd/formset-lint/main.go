package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formset/internal/dom"
	"github.com/goliatone/go-formset/pkg/config"
	"github.com/goliatone/go-formset/pkg/fieldname"
	"github.com/goliatone/go-formset/pkg/formset"
)

type violation struct {
	file     string
	location string
	message  string
}

func main() {
	configPath := flag.String("config", "", "JSON or YAML configuration file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-config file] [paths...]\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(flag.CommandLine.Output(), "\nLint HTML documents for formset names and attributes that cannot be renumbered.\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{"testdata/addresses.html"}
	}

	cfg := config.Config{}
	if *configPath != "" {
		dir, name := filepath.Split(*configPath)
		if dir == "" {
			dir = "."
		}
		loaded, err := config.Load(os.DirFS(dir), name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	violations, err := lintFiles(cfg, paths)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if report(os.Stderr, violations) > 0 {
		os.Exit(1)
	}
}

func lintFiles(cfg config.Config, paths []string) ([]violation, error) {
	var violations []violation
	for _, path := range paths {
		linted, err := lintFile(cfg, path)
		if err != nil {
			return nil, fmt.Errorf("lint %s: %w", path, err)
		}
		violations = append(violations, linted...)
	}
	return violations, nil
}

func report(w io.Writer, violations []violation) int {
	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].file == violations[j].file {
			if violations[i].location == violations[j].location {
				return violations[i].message < violations[j].message
			}
			return violations[i].location < violations[j].location
		}
		return violations[i].file < violations[j].file
	})
	for _, v := range violations {
		fmt.Fprintf(w, "%s: %s -> %s\n", v.file, v.location, v.message)
	}
	return len(violations)
}

func lintFile(cfg config.Config, path string) ([]violation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return lintDocument(cfg, path, doc)
}

func lintDocument(cfg config.Config, file string, doc *html.Node) ([]violation, error) {
	base := 1
	if cfg.OrdinalBase != nil {
		base = *cfg.OrdinalBase
	}
	opts := []formset.Option{
		formset.WithCodec(cfg.Codec()),
		formset.WithAttributes(cfg.Attributes),
		formset.WithOrdinalBase(base),
	}
	if cfg.HardMax > 0 {
		opts = append(opts, formset.WithHardMax(cfg.HardMax))
	}
	fset, err := formset.New(doc, opts...)
	if err != nil {
		return nil, err
	}
	attrs := fset.Attributes()

	var result []violation
	for _, g := range fset.Groups() {
		result = append(result, lintGroup(file, g, fset.Codec(), attrs, base)...)
	}

	for _, btn := range dom.FindAll(doc, dom.WithAttr(attrs.Add)) {
		selector, _ := dom.Attr(btn, attrs.Add)
		selector = strings.TrimSpace(selector)
		if !strings.HasPrefix(selector, "#") {
			continue
		}
		if dom.ByID(doc, strings.TrimPrefix(selector, "#")) == nil {
			result = append(result, violation{
				file:     file,
				location: "add button " + selector,
				message:  "template selector does not match any element id",
			})
		}
	}
	return result, nil
}

func lintGroup(file string, g *formset.Group, codec fieldname.Codec, attrs formset.Attributes, base int) []violation {
	var result []violation
	location := g.Path()
	add := func(loc, format string, args ...any) {
		result = append(result, violation{file: file, location: loc, message: fmt.Sprintf(format, args...)})
	}

	if raw, ok := dom.Attr(g.Node(), attrs.Max); ok {
		if value, err := strconv.Atoi(strings.TrimSpace(raw)); err != nil || value < 0 {
			add(location, "%s=%q is not a non-negative integer", attrs.Max, raw)
		}
	}
	entries := g.Entries()
	if limit := g.Max(); len(entries) > limit {
		add(location, "%d entries exceed the maximum of %d", len(entries), limit)
	}

	depth := g.Depth()
	for i, e := range entries {
		entryLoc := fmt.Sprintf("%s[%d]", location, i+1)
		want := base + i
		for _, name := range e.Names() {
			parsed, err := codec.Parse(name)
			if err != nil {
				add(entryLoc, "%v", err)
				continue
			}
			if len(parsed.Segments) <= depth {
				add(entryLoc, "%q has no ordinal at depth %d", name, depth)
				continue
			}
			seg := parsed.Segments[depth]
			if seg.Label != g.Type() {
				add(entryLoc, "%q uses label %q, group type is %q", name, seg.Label, g.Type())
			}
			if seg.Ordinal != want {
				add(entryLoc, "%q has ordinal %d, position expects %d", name, seg.Ordinal, want)
			}
		}
	}
	return result
}
