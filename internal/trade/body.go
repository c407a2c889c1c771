package trade

import (
	"errors"

	"github.com/ppptrade/tradekit/internal/item"
)

// ErrUniqueNamesUnavailable is returned when a unique item's names cannot be
// translated for the international site.
var ErrUniqueNamesUnavailable = errors.New("unique item name lists missing or incomplete")

// SearchBody is the JSON document posted to the trade search endpoint.
type SearchBody struct {
	Query Query `json:"query"`
	Sort  Sort  `json:"sort"`
}

type Sort struct {
	Price string `json:"price"`
}

type Query struct {
	Status  OptionValue `json:"status"`
	Name    string      `json:"name,omitempty"`
	Type    string      `json:"type,omitempty"`
	Stats   []StatGroup `json:"stats,omitempty"`
	Filters Filters     `json:"filters"`
}

type OptionValue struct {
	Option any `json:"option"`
}

type StatGroup struct {
	Type    string       `json:"type"`
	Filters []StatClause `json:"filters"`
}

type StatClause struct {
	ID       string      `json:"id"`
	Disabled bool        `json:"disabled"`
	Value    *ValueRange `json:"value,omitempty"`
}

// ValueRange bounds a filter. Option is used by selectable-text stats.
type ValueRange struct {
	Min    *int `json:"min,omitempty"`
	Max    *int `json:"max,omitempty"`
	Option *int `json:"option,omitempty"`
}

type Filters struct {
	Type      *FilterGroup `json:"type_filters,omitempty"`
	Misc      *FilterGroup `json:"misc_filters,omitempty"`
	Socket    *FilterGroup `json:"socket_filters,omitempty"`
	Equipment *FilterGroup `json:"equipment_filters,omitempty"`
	Trade     *FilterGroup `json:"trade_filters,omitempty"`
}

type FilterGroup struct {
	Disabled bool           `json:"disabled"`
	Filters  map[string]any `json:"filters"`
}

func newGroup() *FilterGroup {
	return &FilterGroup{Filters: make(map[string]any)}
}

var categories = map[item.ItemType]string{
	item.Helmet:       "armour.helmet",
	item.OneHandAxe:   "weapon.oneaxe",
	item.OneHandMace:  "weapon.onemace",
	item.OneHandSword: "weapon.onesword",
	item.Bow:          "weapon.bow",
	item.Claw:         "weapon.claw",
	item.Dagger:       "weapon.basedagger",
	item.RuneDagger:   "weapon.runedagger",
	item.Sceptre:      "weapon.sceptre",
	item.Staff:        "weapon.staff",
	item.TwoHandAxe:   "weapon.twoaxe",
	item.TwoHandMace:  "weapon.twomace",
	item.TwoHandSword: "weapon.twosword",
	item.Wand:         "weapon.wand",
	item.FishingRod:   "weapon.rod",
	item.Spear:        "weapon.spear",
	item.Flail:        "weapon.flail",
	item.Quarterstaff: "weapon.warstaff",
	item.Crossbow:     "weapon.crossbow",
	item.BodyArmour:   "armour.chest",
	item.Boots:        "armour.boots",
	item.Gloves:       "armour.gloves",
	item.Shield:       "armour.shield",
	item.Buckler:      "armour.buckler",
	item.Focus:        "armour.focus",
	item.Quiver:       "armour.quiver",
	item.Amulet:       "accessory.amulet",
	item.Belt:         "accessory.belt",
	item.Ring:         "accessory.ring",
	item.Jewel:        "jewel.base",
	item.AbyssJewel:   "jewel.abyss",
	item.Flask:        "flask",
	item.Charm:        "azmeri.charm",
	item.Waystone:     "map.waystone",
	item.Tablet:       "map.tablet",
}

var rarities = map[item.Rarity]string{
	item.Normal: "normal",
	item.Magic:  "magic",
	item.Rare:   "rare",
	item.Unique: "unique",
}

// Category returns the trade category of t, or "" when it has none.
func Category(t item.ItemType) string {
	return categories[t]
}

// BuildSearchBody builds the trade search document for it. names may be
// nil when req.Server needs no translation.
func BuildSearchBody(req SearchRequest, it item.Item, names *NameMapper) (*SearchBody, error) {
	b := it.Base()
	translate := req.Server == International && names != nil

	var name, base string
	switch {
	case b.Rarity == item.Unique:
		name, base = b.ItemName, b.ItemBaseName
		if translate {
			var ok bool
			name, base, ok = names.Unique(b.ItemName, b.ItemBaseName)
			if !ok {
				return nil, ErrUniqueNamesUnavailable
			}
		}
	case req.FilterItemBase:
		base = b.ItemBaseName
		if translate {
			// an untranslatable base is left out of the query
			base, _ = names.Base(b.ItemBaseName)
		}
	}

	q := Query{
		Status: OptionValue{Option: req.TradeType},
		Name:   name,
		Type:   base,
		Stats:  statGroups(req.Stats),
	}

	typ := newGroup()
	if req.FilterRarity {
		if r, ok := rarities[b.Rarity]; ok {
			typ.Filters["rarity"] = OptionValue{Option: r}
		}
	}
	if c := Category(b.ItemType); c != "" {
		typ.Filters["category"] = OptionValue{Option: c}
	}
	q.Filters.Type = typ

	misc := newGroup()
	switch req.Corrupted {
	case Yes:
		misc.Filters["corrupted"] = OptionValue{Option: "true"}
	case No:
		misc.Filters["corrupted"] = OptionValue{Option: "false"}
	}
	if b.Game == item.Poe1 {
		switch req.Foulborn {
		case Yes:
			misc.Filters["foulborn_item"] = OptionValue{Option: "true"}
		case No:
			misc.Filters["foulborn_item"] = OptionValue{Option: "false"}
		}
	}
	if req.FilterItemLevel && (req.ItemLevelMin != nil || req.ItemLevelMax != nil) {
		misc.Filters["ilvl"] = ValueRange{Min: req.ItemLevelMin, Max: req.ItemLevelMax}
	}
	q.Filters.Misc = misc

	if b.Game == item.Poe1 && req.FilterLink && (req.LinkMin != nil || req.LinkMax != nil) {
		sock := newGroup()
		sock.Filters["links"] = ValueRange{Min: req.LinkMin, Max: req.LinkMax}
		q.Filters.Socket = sock
	}
	if b.Game == item.Poe2 && req.RuneSockets != nil {
		eq := newGroup()
		eq.Filters["rune_sockets"] = ValueRange{Min: req.RuneSockets}
		q.Filters.Equipment = eq
	}

	collapse := "false"
	if req.CollapseByAccount {
		collapse = "true"
	}
	tr := newGroup()
	tr.Filters["sale_type"] = OptionValue{Option: "priced"}
	tr.Filters["collapse"] = OptionValue{Option: collapse}
	q.Filters.Trade = tr

	return &SearchBody{Query: q, Sort: Sort{Price: "asc"}}, nil
}

func statGroups(filters []StatFilter) []StatGroup {
	if len(filters) == 0 {
		return nil
	}
	clauses := make([]StatClause, 0, len(filters))
	for _, f := range filters {
		c := StatClause{ID: f.ID, Disabled: f.Disabled}
		if f.Min != nil || f.Max != nil || f.OptionID != nil {
			c.Value = &ValueRange{Min: f.Min, Max: f.Max, Option: f.OptionID}
		}
		clauses = append(clauses, c)
	}
	return []StatGroup{{Type: "and", Filters: clauses}}
}
