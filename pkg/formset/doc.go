// Package formset manages repeatable sub-forms inside an HTML node tree.
//
// A group element (data-forms="addresses") holds entries
// (data-form="addresses"). Field names below an entry carry one ordinal per
// enclosing group, so "addresses-2-phones-1-number" is the number of the
// first phone of the second address. Adding or removing an entry rewrites
// those ordinals at every level so they stay contiguous and match document
// order.
//
// Entries added through the package are marked new and are destroyed when
// removed. Entries that came with the document are persisted: removing one
// hides it and replaces its fields with a single "<root>__deleted" flag so
// the server can delete the record.
package formset
