package templates

import "context"

// Entry describes the entry a template is being resolved for. The formset
// package stores it on the lookup context so rendering sources can use it.
type Entry struct {
	Group   string `json:"group"`
	Ordinal int    `json:"ordinal"`
	Depth   int    `json:"depth"`
	Prefix  string `json:"prefix"`
}

type entryKey struct{}

// WithEntry returns a context carrying entry.
func WithEntry(ctx context.Context, entry Entry) context.Context {
	return context.WithValue(ctx, entryKey{}, entry)
}

// EntryFromContext extracts the entry stored by WithEntry.
func EntryFromContext(ctx context.Context) (Entry, bool) {
	entry, ok := ctx.Value(entryKey{}).(Entry)
	return entry, ok
}
