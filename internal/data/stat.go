package data

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Stat group ids used by the trade site's stat catalogue.
const (
	GroupExplicit   = "explicit"
	GroupImplicit   = "implicit"
	GroupCrafted    = "crafted"
	GroupEnchant    = "enchant"
	GroupDesecrated = "desecrated"
	GroupPseudo     = "pseudo"
	GroupRune       = "rune"
)

// StatTemplate is one modifier phrase of the catalogue. Text carries `#`
// numeric placeholders and may hold several phrasings joined by "\n".
type StatTemplate struct {
	ID     string      `json:"id"`
	Text   string      `json:"text"`
	Type   string      `json:"type"`
	Option *StatOption `json:"option,omitempty"`
}

// StatOption lists the fixed choices a selectable-text stat substitutes for `#`.
type StatOption struct {
	Options []StatOptionEntry `json:"options"`
}

type StatOptionEntry struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// HasOptions reports whether the template is a selectable-text stat.
func (s *StatTemplate) HasOptions() bool {
	return s.Option != nil && len(s.Option.Options) > 0
}

// CanonicalID returns the stat identity shared across groups
// ("explicit.stat_123" -> "stat_123").
func (s *StatTemplate) CanonicalID() string {
	return CanonicalID(s.ID)
}

// CanonicalID strips the group prefix from a template id.
func CanonicalID(id string) string {
	if _, after, ok := strings.Cut(id, "."); ok {
		return after
	}
	return id
}

// GroupOf returns the group prefix of a template id, or "" if it has none.
func GroupOf(id string) string {
	if before, _, ok := strings.Cut(id, "."); ok {
		return before
	}
	return ""
}

// StatGroup is one modifier class of the catalogue. Entry order matters:
// the matcher tries templates in declared order and the first hit wins.
type StatGroup struct {
	ID      string         `json:"id"`
	Label   string         `json:"label"`
	Entries []StatTemplate `json:"entries"`

	byID map[string]int
}

// Entry returns the template with the given full id, or nil.
func (g *StatGroup) Entry(id string) *StatTemplate {
	if g == nil {
		return nil
	}
	if g.byID != nil {
		if i, ok := g.byID[id]; ok {
			return &g.Entries[i]
		}
		return nil
	}
	for i := range g.Entries {
		if g.Entries[i].ID == id {
			return &g.Entries[i]
		}
	}
	return nil
}

// EntryByCanonical returns the template whose id is "<group>.<canonical>".
func (g *StatGroup) EntryByCanonical(canonical string) *StatTemplate {
	if g == nil {
		return nil
	}
	return g.Entry(g.ID + "." + canonical)
}

func (g *StatGroup) index() {
	g.byID = make(map[string]int, len(g.Entries))
	for i := range g.Entries {
		if _, dup := g.byID[g.Entries[i].ID]; !dup {
			g.byID[g.Entries[i].ID] = i
		}
	}
}

// Dictionary is a loaded stat catalogue for one (game, locale).
// It is never modified after NewDictionary returns.
type Dictionary struct {
	groups []StatGroup
	byID   map[string]int
}

// NewDictionary indexes groups. When a group id repeats, the first one wins.
func NewDictionary(groups []StatGroup) *Dictionary {
	d := &Dictionary{
		groups: groups,
		byID:   make(map[string]int, len(groups)),
	}
	for i := range d.groups {
		d.groups[i].index()
		if _, dup := d.byID[d.groups[i].ID]; !dup {
			d.byID[d.groups[i].ID] = i
		}
	}
	return d
}

// Group returns the group with the given id, or nil.
func (d *Dictionary) Group(id string) *StatGroup {
	if d == nil {
		return nil
	}
	if i, ok := d.byID[id]; ok {
		return &d.groups[i]
	}
	return nil
}

// Template resolves a full template id ("implicit.stat_1") to its entry.
func (d *Dictionary) Template(id string) *StatTemplate {
	return d.Group(GroupOf(id)).Entry(id)
}

// Groups returns the groups in file order.
func (d *Dictionary) Groups() []StatGroup {
	if d == nil {
		return nil
	}
	return d.groups
}

// Count returns the total number of templates across all groups.
func (d *Dictionary) Count() int {
	if d == nil {
		return 0
	}
	n := 0
	for i := range d.groups {
		n += len(d.groups[i].Entries)
	}
	return n
}

// Empty reports whether no template is loaded.
func (d *Dictionary) Empty() bool {
	return d.Count() == 0
}

// ParseDictionary decodes a stat catalogue JSON document. Property names
// match case-insensitively.
func ParseDictionary(raw []byte) (*Dictionary, error) {
	var groups []StatGroup
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, fmt.Errorf("parse stat dictionary: %w", err)
	}
	return NewDictionary(groups), nil
}

// LoadDictionary reads a stat catalogue. A missing file yields an empty
// dictionary and no error.
func LoadDictionary(fsys FS, path string) (*Dictionary, error) {
	if !fsys.Exists(path) {
		return NewDictionary(nil), nil
	}
	raw, err := fsys.ReadFile(path)
	if err != nil {
		if isNotExist(err) {
			return NewDictionary(nil), nil
		}
		return nil, fmt.Errorf("read stat dictionary %s: %w", path, err)
	}
	d, err := ParseDictionary(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
