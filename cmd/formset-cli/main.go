package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formset/internal/dom"
	"github.com/goliatone/go-formset/pkg/config"
	"github.com/goliatone/go-formset/pkg/confirm"
	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/openapi"
	"github.com/goliatone/go-formset/pkg/submission"
	"github.com/goliatone/go-formset/pkg/templates"
)

const usage = `Usage: %s [flags] <command> [args]

Commands:
  add <group path>               append an entry to the group
  remove <group path> <position> remove the entry at a 1-based position
  renumber [group path]          rewrite names of one group or of every group
  inspect                        print groups and entries
  values                         print the decoded submission

Group paths look like "addresses" or "addresses[2].phones".

Flags:
`

type options struct {
	in       string
	out      string
	config   string
	openapi  string
	schema   string
	format   string
	yes      bool
	verbose  bool
	hidden   []submission.HiddenField
	command  string
	args     []string
	stdin    *os.File
	stdout   io.Writer
	stderr   io.Writer
	readFile func(string) ([]byte, error)
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	opts.stdin = os.Stdin
	opts.stdout = os.Stdout

	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "formset-cli: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	opts := options{stderr: stderr, readFile: os.ReadFile}
	set := flag.NewFlagSet("formset-cli", flag.ContinueOnError)
	set.SetOutput(stderr)
	set.Usage = func() {
		fmt.Fprintf(set.Output(), usage, filepath.Base(os.Args[0]))
		set.PrintDefaults()
	}

	set.StringVar(&opts.in, "in", "", "input HTML document (stdin if empty)")
	set.StringVar(&opts.out, "out", "", "output file (stdout if empty)")
	set.StringVar(&opts.config, "config", "", "JSON or YAML configuration file")
	set.StringVar(&opts.openapi, "openapi", "", "OpenAPI document used to generate entry templates")
	set.StringVar(&opts.schema, "schema", "", "component schema rendered for the target group")
	set.StringVar(&opts.format, "format", "yaml", "inspect/values output format: yaml or json")
	set.BoolVar(&opts.yes, "yes", false, "confirm deletions without prompting")
	set.BoolVar(&opts.verbose, "v", false, "enable debug logging")
	set.Func("hidden", "hidden field name=value added to the first form (repeatable, last value wins)", func(raw string) error {
		name, value, ok := strings.Cut(raw, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return fmt.Errorf("expected name=value, got %q", raw)
		}
		opts.hidden = append(opts.hidden, submission.Hidden(name, value))
		return nil
	})

	if err := set.Parse(args); err != nil {
		return options{}, err
	}
	rest := set.Args()
	if len(rest) == 0 {
		set.Usage()
		return options{}, errors.New("missing command")
	}
	opts.command, opts.args = rest[0], rest[1:]
	if opts.openapi != "" && opts.schema == "" {
		return options{}, errors.New("-openapi requires -schema")
	}
	return opts, nil
}

func run(ctx context.Context, opts options) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(opts.stderr, &slog.HandlerOptions{Level: level}))

	doc, err := readDocument(opts)
	if err != nil {
		return err
	}

	fsOpts, err := buildOptions(ctx, opts, doc, logger)
	if err != nil {
		return err
	}
	fset, err := formset.New(doc, fsOpts...)
	if err != nil {
		return err
	}
	fset.On(formset.EventEntryAdded, func(evt formset.Event) {
		logger.Info("entry added", "group", evt.Group.Path(), "ordinal", evt.Entry.Ordinal())
	})
	fset.On(formset.EventEntryRemoved, func(evt formset.Event) {
		logger.Info("entry removed", "group", evt.Group.Path(), "new", evt.Entry.IsNew())
	})

	switch opts.command {
	case "add":
		g, err := locate(fset, opts.args, 1)
		if err != nil {
			return err
		}
		if _, err := fset.Add(ctx, g); err != nil {
			return err
		}
	case "remove":
		g, err := locate(fset, opts.args, 2)
		if err != nil {
			return err
		}
		pos, err := strconv.Atoi(opts.args[1])
		entries := g.Entries()
		if err != nil || pos < 1 || pos > len(entries) {
			return fmt.Errorf("%w: position %q in %s (%d entries)", formset.ErrEntryNotFound, opts.args[1], g.Path(), len(entries))
		}
		removed, err := fset.Remove(ctx, g, entries[pos-1])
		if errors.Is(err, formset.ErrConfirmationRequired) && opts.in == "" {
			return fmt.Errorf("%w: the document is read from stdin, pass -yes to confirm", err)
		}
		if err != nil {
			return err
		}
		if !removed {
			logger.Info("entry kept", "group", g.Path(), "position", pos)
		}
	case "renumber":
		if len(opts.args) == 0 {
			if err := fset.Normalize(); err != nil {
				return err
			}
			break
		}
		g, err := locate(fset, opts.args, 1)
		if err != nil {
			return err
		}
		if err := fset.Renumber(g); err != nil {
			return err
		}
	case "inspect":
		return encode(opts.stdout, opts.format, fset.Describe())
	case "values":
		payload, err := submission.Decode(submission.Values(doc), fset.Codec())
		if err != nil {
			return err
		}
		return encode(opts.stdout, opts.format, payload)
	default:
		return fmt.Errorf("unknown command %q", opts.command)
	}

	if len(opts.hidden) > 0 {
		target := dom.Find(doc, func(n *html.Node) bool { return dom.IsElement(n) && n.Data == "form" })
		if target == nil {
			target = dom.Find(doc, func(n *html.Node) bool { return dom.IsElement(n) && n.Data == "body" })
		}
		merged := submission.MergeHiddenFields(nil, opts.hidden...)
		submission.Inject(target, submission.SortedHiddenFields(merged)...)
	}
	return writeDocument(opts, doc)
}

func buildOptions(ctx context.Context, opts options, doc *html.Node, logger *slog.Logger) ([]formset.Option, error) {
	fsOpts := []formset.Option{formset.WithLogger(logger)}

	cfg := config.Config{}
	var configured templates.Source
	if opts.config != "" {
		dir, name := filepath.Split(opts.config)
		if dir == "" {
			dir = "."
		}
		files := os.DirFS(dir)
		loaded, err := config.Load(files, name)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		cfgOpts, err := cfg.Options(files, doc)
		if err != nil {
			return nil, err
		}
		fsOpts = append(fsOpts, cfgOpts...)
		if configured, err = cfg.TemplateSource(files, doc); err != nil {
			return nil, err
		}
	}

	if opts.openapi != "" {
		data, err := opts.readFile(opts.openapi)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", opts.openapi, err)
		}
		if len(opts.args) == 0 {
			return nil, errors.New("-openapi needs a group path argument")
		}
		codec := cfg.Codec()
		group, prefix := splitPath(opts.args[0], codec.Separator)
		set, err := openapi.Templates(ctx, data, opts.schema, group,
			openapi.WithCodec(codec), openapi.WithAttributes(cfg.Attributes), openapi.WithPrefix(prefix))
		if err != nil {
			return nil, err
		}
		if configured == nil {
			configured = templates.Document(doc)
		}
		fsOpts = append(fsOpts, formset.WithTemplates(templates.Chain(templates.Static(set), configured)))
	}

	if opts.yes {
		fsOpts = append(fsOpts, formset.WithConfirmer(confirm.Always(true)))
	} else if opts.in != "" && opts.stdin != nil {
		// stdin is free for prompting only when the document comes from -in.
		fsOpts = append(fsOpts, formset.WithConfirmer(confirm.Survey(confirm.WithStdio(opts.stdin, os.Stderr, opts.stderr))))
	}
	return fsOpts, nil
}

func locate(fset *formset.Formset, args []string, want int) (*formset.Group, error) {
	if len(args) < want {
		return nil, fmt.Errorf("expected %d argument(s), got %d", want, len(args))
	}
	return fset.Locate(args[0])
}

// splitPath returns the group type named by the last step of path and a
// name prefix with placeholder ordinals for every enclosing step.
func splitPath(path, sep string) (string, string) {
	steps := strings.Split(path, ".")
	var prefix strings.Builder
	for i, step := range steps {
		label, _, _ := strings.Cut(strings.TrimSpace(step), "[")
		if i == len(steps)-1 {
			return label, prefix.String()
		}
		prefix.WriteString(label + sep + "0" + sep)
	}
	return "", ""
}

func readDocument(opts options) (*html.Node, error) {
	var r io.Reader
	switch {
	case opts.in != "":
		f, err := os.Open(opts.in)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	case opts.stdin != nil:
		r = opts.stdin
	default:
		return nil, errors.New("no input document")
	}
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func writeDocument(opts options, doc *html.Node) error {
	if opts.out == "" {
		return html.Render(opts.stdout, doc)
	}
	f, err := os.Create(opts.out)
	if err != nil {
		return err
	}
	if err := html.Render(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encode(w io.Writer, format string, value any) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
