package formset

// GroupInfo is a read-only snapshot of a group.
type GroupInfo struct {
	Type    string      `json:"type" yaml:"type"`
	Path    string      `json:"path" yaml:"path"`
	Depth   int         `json:"depth" yaml:"depth"`
	Max     int         `json:"max" yaml:"max"`
	Entries []EntryInfo `json:"entries" yaml:"entries"`
}

// EntryInfo is a read-only snapshot of an entry.
type EntryInfo struct {
	Ordinal int      `json:"ordinal" yaml:"ordinal"`
	New     bool     `json:"new,omitempty" yaml:"new,omitempty"`
	Deleted bool     `json:"deleted,omitempty" yaml:"deleted,omitempty"`
	Fields  []string `json:"fields" yaml:"fields"`
}

// Entries returns the entries of g.
func (f *Formset) Entries(g *Group) ([]*Entry, error) {
	if g == nil || g.fs != f {
		return nil, ErrNotGroup
	}
	return g.Entries(), nil
}

// Describe snapshots every group in document order.
func (f *Formset) Describe() []GroupInfo {
	groups := f.Groups()
	out := make([]GroupInfo, 0, len(groups))
	for _, g := range groups {
		info := GroupInfo{
			Type:  g.Type(),
			Path:  g.Path(),
			Depth: g.Depth(),
			Max:   g.Max(),
		}
		for _, e := range g.Entries() {
			info.Entries = append(info.Entries, EntryInfo{
				Ordinal: e.Ordinal(),
				New:     e.IsNew(),
				Deleted: e.IsDeleted(),
				Fields:  e.Names(),
			})
		}
		out = append(out, info)
	}
	return out
}
