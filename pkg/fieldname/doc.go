// Package fieldname parses and formats the structured input names carried by
// repeatable form entries. A name is a sequence of (label, ordinal) segments
// closed by a leaf, joined with a separator:
//
//	addresses-0-phones-1-number
//
// Nested server-side forms may also emit the inner label inline after the
// ordinal, separated by a marker character:
//
//	sections-1.phones-2-number
//
// Both layouts tokenize to alternating literal/ordinal tokens where the token
// at index 2*depth+1 holds the ordinal for nesting depth `depth`. Joining the
// tokens reproduces the original name, so callers can swap a single ordinal
// without disturbing any other byte of the name. The structured Name type is
// the preferred representation; strings are only parsed and formatted at the
// boundary.
package fieldname
