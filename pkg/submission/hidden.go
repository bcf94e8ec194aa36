package submission

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formset/internal/dom"
	"github.com/goliatone/go-formset/pkg/fieldname"
)

// HiddenField is a hidden input emitted alongside the entries.
type HiddenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// DeletionFlag returns the flag that marks the entry owning name, at depth,
// as deleted.
func DeletionFlag(codec fieldname.Codec, name string, depth int) (HiddenField, error) {
	flag, err := codec.DeletionFlag(name, depth)
	if err != nil {
		return HiddenField{}, err
	}
	return HiddenField{Name: flag, Value: "1"}, nil
}

// MergeHiddenFields returns a copy of base with the provided fields applied.
// Empty names are ignored; later fields win on name collisions.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		if name := strings.TrimSpace(field.Name); name != "" {
			out[name] = field.Value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields returns fields ordered by name.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		if strings.TrimSpace(name) != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{Name: strings.TrimSpace(name), Value: fields[name]})
	}
	return result
}

// Inject appends fields to parent as hidden inputs. An existing input with
// the same name has its value replaced instead.
func Inject(parent *html.Node, fields ...HiddenField) {
	if !dom.IsElement(parent) {
		return
	}
	for _, field := range fields {
		if field.Name == "" {
			continue
		}
		if existing := dom.Find(parent, dom.AttrEquals("name", field.Name)); existing != nil && existing.Data == "input" {
			dom.SetAttr(existing, "value", field.Value)
			continue
		}
		parent.AppendChild(dom.NewElement("input",
			html.Attribute{Key: "type", Val: "hidden"},
			html.Attribute{Key: "name", Val: field.Name},
			html.Attribute{Key: "value", Val: field.Value},
		))
	}
}
