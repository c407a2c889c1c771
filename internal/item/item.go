package item

import (
	"github.com/ppptrade/tradekit/internal/data"
)

// Requirement is one "Level/Str/Dex/Int" entry of an item's requirements.
type Requirement struct {
	Kind  RequirementKind `json:"kind"`
	Value int             `json:"value"`
}

// ItemStat is a modifier line resolved against the stat dictionary.
// Value is nil when the template has no numeric placeholder; OptionID is set
// only for selectable-text stats. Stat points into the immutable dictionary.
type ItemStat struct {
	Stat     *data.StatTemplate `json:"stat"`
	Value    *int               `json:"value,omitempty"`
	OptionID *int               `json:"option_id,omitempty"`
}

// CanonicalID is the stat's identity across modifier groups.
func (s ItemStat) CanonicalID() string {
	if s.Stat == nil {
		return ""
	}
	return s.Stat.CanonicalID()
}

// ItemBase holds the fields both games' items share.
type ItemBase struct {
	Game         Game          `json:"game"`
	Rarity       Rarity        `json:"rarity"`
	ItemName     string        `json:"item_name"`
	ItemBaseName string        `json:"item_base_name"`
	ItemType     ItemType      `json:"item_type"`
	ItemLevel    int           `json:"item_level"`
	Requirements []Requirement `json:"requirements"`
	Stats        []ItemStat    `json:"stats"`
	GemLevel     *int          `json:"gem_level,omitempty"`
	Foulborn     bool          `json:"foulborn,omitempty"`
	Unidentified bool          `json:"unidentified,omitempty"`
	Corrupted    bool          `json:"corrupted,omitempty"`
}

// Item is the parse result of either game.
type Item interface {
	Base() *ItemBase
}

func (b *ItemBase) Base() *ItemBase { return b }

// Requirement returns the value of the first requirement of kind k.
func (b *ItemBase) Requirement(k RequirementKind) (int, bool) {
	for _, r := range b.Requirements {
		if r.Kind == k {
			return r.Value, true
		}
	}
	return 0, false
}

// Stat returns the first stat with the given canonical id.
func (b *ItemBase) Stat(canonicalID string) (ItemStat, bool) {
	for _, s := range b.Stats {
		if s.CanonicalID() == canonicalID {
			return s, true
		}
	}
	return ItemStat{}, false
}

// Poe1Item is a game A item.
type Poe1Item struct {
	ItemBase
	Link int `json:"link"` // size of the largest linked socket group
}

// Poe2Item is a game B item.
type Poe2Item struct {
	ItemBase
	RuneSockets int    `json:"rune_sockets"`
	GrantsSkill string `json:"grants_skill,omitempty"`
	Spirit      int    `json:"spirit,omitempty"`
}

// IntPtr returns a pointer to a copy of v.
func IntPtr(v int) *int {
	return &v
}
