package fieldname

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultSeparator joins labels, ordinals and the leaf.
	DefaultSeparator = "-"
	// DefaultMarker introduces a nested label inline after an ordinal.
	DefaultMarker = "."
	// DeletedLeaf is the leaf used by deletion flag fields.
	DeletedLeaf = "__deleted"

	// ordinals longer than this are rejected to keep strconv.Atoi in range.
	maxOrdinalDigits = 9
)

var (
	// ErrMalformedName is returned when a name does not follow the
	// label/ordinal/leaf layout.
	ErrMalformedName = errors.New("fieldname: malformed name")
	// ErrDepthOutOfRange is returned when a depth has no ordinal slot.
	ErrDepthOutOfRange = errors.New("fieldname: depth out of range")
	// ErrInvalidOrdinal is returned for negative ordinals.
	ErrInvalidOrdinal = errors.New("fieldname: invalid ordinal")
)

// Codec splits and joins names using a separator and an inline marker. The
// zero value behaves like DefaultCodec.
type Codec struct {
	Separator string
	Marker    string
}

// DefaultCodec returns the codec used by the package level helpers.
func DefaultCodec() Codec {
	return Codec{Separator: DefaultSeparator, Marker: DefaultMarker}
}

func (c Codec) normalized() Codec {
	if c.Separator == "" {
		c.Separator = DefaultSeparator
	}
	if c.Marker == "" {
		c.Marker = DefaultMarker
	}
	return c
}

// Tokens splits name into alternating literal and ordinal tokens. Literal
// tokens keep their separators, so strings.Join(tokens, "") == name.
func (c Codec) Tokens(name string) ([]string, error) {
	c = c.normalized()
	if name == "" {
		return nil, malformed(name, "empty name")
	}

	parts := strings.Split(name, c.Separator)
	if len(parts) < 3 {
		return nil, malformed(name, "expected label, ordinal and leaf")
	}
	if parts[0] == "" {
		return nil, malformed(name, "empty leading label")
	}

	tokens := make([]string, 0, len(parts))
	literal := parts[0] + c.Separator
	labelled := true

	for _, part := range parts[1 : len(parts)-1] {
		if labelled {
			if digits, rest, ok := c.splitOrdinal(part); ok {
				tokens = append(tokens, literal, digits)
				if rest == "" {
					literal = c.Separator
					labelled = false
				} else {
					literal = rest + c.Separator
				}
				continue
			}
		}
		if part == "" {
			return nil, malformed(name, "empty segment")
		}
		literal += part + c.Separator
		labelled = true
	}

	leaf := parts[len(parts)-1]
	if leaf == "" {
		return nil, malformed(name, "empty leaf")
	}
	if len(tokens) == 0 {
		return nil, malformed(name, "no ordinal segment")
	}
	if strings.HasPrefix(literal, c.Marker) {
		return nil, malformed(name, "inline label without ordinal")
	}
	return append(tokens, literal+leaf), nil
}

// Compose overwrites the ordinal token at depth and joins the tokens back
// into a name. The input slice is left untouched.
func (c Codec) Compose(tokens []string, depth, ordinal int) (string, error) {
	idx := 2*depth + 1
	if depth < 0 || idx > len(tokens)-2 {
		return "", fmt.Errorf("%w: depth %d, name has %d ordinal(s)", ErrDepthOutOfRange, depth, len(tokens)/2)
	}
	if ordinal < 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidOrdinal, ordinal)
	}
	out := append([]string(nil), tokens...)
	out[idx] = strconv.Itoa(ordinal)
	return strings.Join(out, ""), nil
}

// Parse converts name into its structured form.
func (c Codec) Parse(name string) (Name, error) {
	c = c.normalized()
	tokens, err := c.Tokens(name)
	if err != nil {
		return Name{}, err
	}

	segments := make([]Segment, 0, len(tokens)/2)
	for i := 0; i+1 < len(tokens); i += 2 {
		literal := tokens[i]
		inline := false
		if i > 0 {
			if strings.HasPrefix(literal, c.Marker) {
				inline = true
				literal = strings.TrimPrefix(literal, c.Marker)
			} else {
				literal = strings.TrimPrefix(literal, c.Separator)
			}
		}
		ordinal, err := strconv.Atoi(tokens[i+1])
		if err != nil {
			return Name{}, malformed(name, err.Error())
		}
		segments = append(segments, Segment{
			Label:   strings.TrimSuffix(literal, c.Separator),
			Ordinal: ordinal,
			Inline:  inline,
		})
	}

	return Name{
		Segments: segments,
		Leaf:     strings.TrimPrefix(tokens[len(tokens)-1], c.Separator),
	}, nil
}

// Format serialises n. Format(Parse(s)) == s for every accepted s.
func (c Codec) Format(n Name) string {
	c = c.normalized()
	var b strings.Builder
	c.writeSegments(&b, n.Segments)
	b.WriteString(c.Separator)
	b.WriteString(n.Leaf)
	return b.String()
}

// Root returns the name prefix up to and including the ordinal at depth,
// followed by the separator (for example "addresses-2-" at depth 0).
func (c Codec) Root(n Name, depth int) (string, error) {
	c = c.normalized()
	if depth < 0 || depth >= len(n.Segments) {
		return "", fmt.Errorf("%w: depth %d, name has %d ordinal(s)", ErrDepthOutOfRange, depth, len(n.Segments))
	}
	var b strings.Builder
	c.writeSegments(&b, n.Segments[:depth+1])
	b.WriteString(c.Separator)
	return b.String(), nil
}

// DeletionFlag returns the flag name marking the entry at depth as deleted,
// derived from any field name inside that entry.
func (c Codec) DeletionFlag(name string, depth int) (string, error) {
	parsed, err := c.Parse(name)
	if err != nil {
		return "", err
	}
	root, err := c.Root(parsed, depth)
	if err != nil {
		return "", err
	}
	return root + DeletedLeaf, nil
}

func (c Codec) writeSegments(b *strings.Builder, segments []Segment) {
	for i, seg := range segments {
		if i > 0 {
			if seg.Inline {
				b.WriteString(c.Marker)
			} else {
				b.WriteString(c.Separator)
			}
		}
		b.WriteString(seg.Label)
		b.WriteString(c.Separator)
		b.WriteString(strconv.Itoa(seg.Ordinal))
	}
}

// splitOrdinal reports whether part starts with a canonical ordinal. An
// inline label after the marker is returned as rest, marker included.
func (c Codec) splitOrdinal(part string) (digits, rest string, ok bool) {
	digits = part
	if idx := strings.Index(part, c.Marker); idx >= 0 {
		digits, rest = part[:idx], part[idx:]
		if len(rest) == len(c.Marker) {
			return "", "", false
		}
	}
	if !canonicalOrdinal(digits) {
		return "", "", false
	}
	return digits, rest, true
}

func canonicalOrdinal(s string) bool {
	if s == "" || len(s) > maxOrdinalDigits {
		return false
	}
	if len(s) > 1 && s[0] == '0' {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func malformed(name, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrMalformedName, name, reason)
}

// ParseName tokenizes name with the default codec.
func ParseName(name string) ([]string, error) {
	return DefaultCodec().Tokens(name)
}

// ComposeName replaces the ordinal at depth using the default codec.
func ComposeName(tokens []string, depth, ordinal int) (string, error) {
	return DefaultCodec().Compose(tokens, depth, ordinal)
}

// Parse parses name with the default codec.
func Parse(name string) (Name, error) {
	return DefaultCodec().Parse(name)
}
