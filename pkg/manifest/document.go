package manifest

import (
	"sort"
	"strings"

	"github.com/arthur-debert/appsync/pkg/types"
)

// Document is an in-memory manifest that remembers every source line, so
// saving reproduces untouched regions byte for byte. Only groups that were
// mutated are re-rendered.
type Document struct {
	preamble []string
	groups   []*group
	modified bool
	// eol joins lines; "\r\n" when every line of the parsed file used it
	eol string
}

type group struct {
	name string
	// lead holds the comment lines directly above the header
	lead    []string
	header  string
	intro   []string
	entries []*entry
	trailer []string
	dirty   bool
	created bool
}

type entry struct {
	key         string
	source      string
	description string
	// before holds the lines between the previous entry (or the intro) and
	// this one; non-blank lines travel with the entry when a group is resorted.
	before []string
	// lines is the entry's original text, nil once the entry was changed.
	lines []string
}

// NewDocument returns an empty manifest
func NewDocument() *Document {
	return &Document{eol: "\n"}
}

// Modified reports whether the document changed since it was parsed
func (d *Document) Modified() bool {
	return d.modified
}

// Bytes renders the document
func (d *Document) Bytes() []byte {
	var out []string
	if !(d.modified && allBlank(d.preamble)) {
		out = append(out, d.preamble...)
	}
	for _, g := range d.groups {
		if g.created && len(out) > 0 && !isBlank(out[len(out)-1]) {
			out = append(out, "")
		}
		if g.dirty {
			out = append(out, g.render()...)
		} else {
			out = append(out, g.raw()...)
		}
	}
	eol := d.eol
	if eol == "" {
		eol = "\n"
	}
	return []byte(strings.Join(out, eol))
}

func (g *group) raw() []string {
	out := append([]string(nil), g.lead...)
	out = append(out, g.header)
	out = append(out, g.intro...)
	for _, e := range g.entries {
		out = append(out, e.before...)
		out = append(out, e.lines...)
	}
	return append(out, g.trailer...)
}

func (g *group) render() []string {
	g.sort()
	out := append([]string(nil), g.lead...)
	out = append(out, g.header)
	out = append(out, g.intro...)
	for _, e := range g.entries {
		out = append(out, nonBlank(e.before)...)
		if e.lines != nil {
			out = append(out, e.lines...)
		} else {
			out = append(out, formatEntry(e.key, e.source, e.description))
		}
	}
	return append(out, g.trailer...)
}

func (g *group) sort() {
	sort.SliceStable(g.entries, func(i, j int) bool {
		fi, fj := types.Fold(g.entries[i].key), types.Fold(g.entries[j].key)
		if fi != fj {
			return fi < fj
		}
		return g.entries[i].key < g.entries[j].key
	})
}

func (g *group) indexOf(folded string) int {
	for i, e := range g.entries {
		if types.Fold(e.key) == folded {
			return i
		}
	}
	return -1
}

func (g *group) record(e *entry) types.AppRecord {
	return types.AppRecord{
		Group:       g.name,
		Key:         e.key,
		Source:      e.source,
		Description: e.description,
	}
}

// GroupNames returns group names in document order
func (d *Document) GroupNames() []string {
	names := make([]string, 0, len(d.groups))
	for _, g := range d.groups {
		names = append(names, g.name)
	}
	return names
}

// Records returns every record in document order
func (d *Document) Records() []types.AppRecord {
	var out []types.AppRecord
	for _, g := range d.groups {
		for _, e := range g.entries {
			out = append(out, g.record(e))
		}
	}
	return out
}

// Groups returns the records grouped, in document and stored order
func (d *Document) Groups() []types.Group {
	out := make([]types.Group, 0, len(d.groups))
	for _, g := range d.groups {
		tg := types.Group{Name: g.name, Apps: make([]types.AppRecord, 0, len(g.entries))}
		for _, e := range g.entries {
			tg.Apps = append(tg.Apps, g.record(e))
		}
		out = append(out, tg)
	}
	return out
}

func (d *Document) findGroup(name string) *group {
	folded := types.Fold(name)
	for _, g := range d.groups {
		if types.Fold(g.name) == folded {
			return g
		}
	}
	return nil
}

// find locates a record by folded key across all groups
func (d *Document) find(key string) (*group, *entry) {
	folded := types.Fold(key)
	for _, g := range d.groups {
		if i := g.indexOf(folded); i >= 0 {
			return g, g.entries[i]
		}
	}
	return nil, nil
}

func (d *Document) ensureGroup(name string) *group {
	if g := d.findGroup(name); g != nil {
		return g
	}
	g := &group{
		name:    name,
		header:  formatHeader(name),
		trailer: []string{""},
		dirty:   true,
		created: true,
	}
	d.groups = append(d.groups, g)
	d.modified = true
	return g
}

// removeEntry deletes the record with the given folded key from g, deleting
// the group when it becomes empty. It reports whether a record was removed
// and whether the group went away with it.
func (d *Document) removeEntry(g *group, key string) (removed, groupDeleted bool) {
	i := g.indexOf(types.Fold(key))
	if i < 0 {
		return false, false
	}
	g.entries = append(g.entries[:i], g.entries[i+1:]...)
	g.dirty = true
	d.modified = true

	if len(g.entries) == 0 {
		d.deleteGroup(g)
		return true, true
	}
	return true, false
}

// deleteGroup drops g. Comments above its header and after its last entry
// belong to the surrounding document and are handed to the group before it,
// or to the preamble.
func (d *Document) deleteGroup(g *group) {
	gi := -1
	for i, other := range d.groups {
		if other == g {
			gi = i
			break
		}
	}
	if gi < 0 {
		return
	}
	d.groups = append(d.groups[:gi], d.groups[gi+1:]...)

	var kept []string
	kept = append(kept, g.lead...)
	if !allBlank(g.trailer) {
		kept = append(kept, g.trailer...)
	}
	if len(kept) == 0 {
		return
	}

	switch {
	case gi > 0:
		prev := d.groups[gi-1]
		prev.trailer = append(prev.trailer, kept...)
	case gi < len(d.groups):
		next := d.groups[gi]
		next.lead = append(kept, next.lead...)
	default:
		d.preamble = append(d.preamble, kept...)
	}
}

// upsert writes key into g. It reports whether anything changed.
func (d *Document) upsert(g *group, key, source, description string) bool {
	if i := g.indexOf(types.Fold(key)); i >= 0 {
		e := g.entries[i]
		if e.source == source && e.description == description {
			return false
		}
		e.source = source
		e.description = description
		e.lines = nil
	} else {
		g.entries = append(g.entries, &entry{key: key, source: source, description: description})
	}
	g.dirty = true
	d.modified = true
	return true
}
