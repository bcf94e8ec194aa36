// Package submission reads what a formset document submits: it collects the
// successful controls of a node tree and decodes flat field names back into
// nested groups and entries, including the entries flagged for deletion.
package submission
