package fieldname

import "fmt"

// Segment is one (label, ordinal) step of a name. Inline segments were
// joined to the previous ordinal with the marker instead of the separator.
type Segment struct {
	Label   string `json:"label"`
	Ordinal int    `json:"ordinal"`
	Inline  bool   `json:"inline,omitempty"`
}

// Name is the structured form of a field name.
type Name struct {
	Segments []Segment `json:"segments"`
	Leaf     string    `json:"leaf"`
}

// Depth reports how many ordinal slots the name carries.
func (n Name) Depth() int {
	return len(n.Segments)
}

// WithOrdinal returns a copy of n with the ordinal at depth replaced.
func (n Name) WithOrdinal(depth, ordinal int) (Name, error) {
	if depth < 0 || depth >= len(n.Segments) {
		return Name{}, fmt.Errorf("%w: depth %d, name has %d ordinal(s)", ErrDepthOutOfRange, depth, len(n.Segments))
	}
	if ordinal < 0 {
		return Name{}, fmt.Errorf("%w: %d", ErrInvalidOrdinal, ordinal)
	}
	out := Name{
		Segments: append([]Segment(nil), n.Segments...),
		Leaf:     n.Leaf,
	}
	out.Segments[depth].Ordinal = ordinal
	return out, nil
}

// IsDeletionFlag reports whether the leaf marks a deleted entry.
func (n Name) IsDeletionFlag() bool {
	return n.Leaf == DeletedLeaf
}

// String formats n with the default codec.
func (n Name) String() string {
	return DefaultCodec().Format(n)
}

// Root returns the prefix through the ordinal at depth, formatted with the
// default codec.
func (n Name) Root(depth int) (string, error) {
	return DefaultCodec().Root(n, depth)
}
