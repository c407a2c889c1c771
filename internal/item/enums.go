package item

import (
	"fmt"
	"strings"
)

// Game identifies which client produced the clipboard text.
type Game int

const (
	GameUnknown Game = iota
	Poe1             // game A: links, foulborn, gems
	Poe2             // game B: rune sockets, spirit, granted skills
)

var gameNames = map[Game]string{Poe1: "POE1", Poe2: "POE2"}

func (g Game) String() string {
	if s, ok := gameNames[g]; ok {
		return s
	}
	return "UNKNOWN"
}

// ParseGame accepts "POE1"/"POE2" in any case.
func ParseGame(s string) (Game, error) {
	for g, name := range gameNames {
		if strings.EqualFold(s, name) {
			return g, nil
		}
	}
	return GameUnknown, fmt.Errorf("unknown game %q", s)
}

func (g Game) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *Game) UnmarshalText(b []byte) error {
	v, err := ParseGame(string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// Rarity is the item's quality tier.
type Rarity int

const (
	Normal Rarity = iota
	Magic
	Rare
	Unique
	Currency
	DivinationCard
	Gem
)

var rarityNames = [...]string{
	Normal:         "normal",
	Magic:          "magic",
	Rare:           "rare",
	Unique:         "unique",
	Currency:       "currency",
	DivinationCard: "divination_card",
	Gem:            "gem",
}

func (r Rarity) String() string {
	if r >= 0 && int(r) < len(rarityNames) {
		return rarityNames[r]
	}
	return fmt.Sprintf("rarity(%d)", int(r))
}

// ParseRarity maps the snake_case name used in locale tables.
func ParseRarity(s string) (Rarity, bool) {
	for i, name := range rarityNames {
		if name == s {
			return Rarity(i), true
		}
	}
	return Normal, false
}

func (r Rarity) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Rarity) UnmarshalText(b []byte) error {
	v, ok := ParseRarity(string(b))
	if !ok {
		return fmt.Errorf("unknown rarity %q", b)
	}
	*r = v
	return nil
}

// ItemType is the item class, shared by both games.
type ItemType int

const (
	Other ItemType = iota
	Claw
	Dagger
	Wand
	OneHandSword
	OneHandAxe
	OneHandMace
	Sceptre
	Spear
	Flail
	RuneDagger
	Bow
	Staff
	TwoHandSword
	TwoHandAxe
	TwoHandMace
	Quarterstaff
	WarStaff
	FishingRod
	Crossbow
	Trap
	Quiver
	Shield
	Buckler
	Focus
	Helmet
	BodyArmour
	Gloves
	Boots
	Belt
	Amulet
	Ring
	Map
	Contract
	Blueprint
	StackableCurrency
	DivinationCardType
	Jewel
	AbyssJewel
	Flask
	Corpse
	ActiveGem
	SupportGem
	Socketable
	Tablet
	Charm
	Waystone
	VaultKey
	UncutSkillGem
	UncutSpiritGem
	UncutSupportGem
)

var itemTypeNames = [...]string{
	Other:              "other",
	Claw:               "claw",
	Dagger:             "dagger",
	Wand:               "wand",
	OneHandSword:       "one_hand_sword",
	OneHandAxe:         "one_hand_axe",
	OneHandMace:        "one_hand_mace",
	Sceptre:            "sceptre",
	Spear:              "spear",
	Flail:              "flail",
	RuneDagger:         "rune_dagger",
	Bow:                "bow",
	Staff:              "staff",
	TwoHandSword:       "two_hand_sword",
	TwoHandAxe:         "two_hand_axe",
	TwoHandMace:        "two_hand_mace",
	Quarterstaff:       "quarterstaff",
	WarStaff:           "war_staff",
	FishingRod:         "fishing_rod",
	Crossbow:           "crossbow",
	Trap:               "trap",
	Quiver:             "quiver",
	Shield:             "shield",
	Buckler:            "buckler",
	Focus:              "focus",
	Helmet:             "helmet",
	BodyArmour:         "body_armour",
	Gloves:             "gloves",
	Boots:              "boots",
	Belt:               "belt",
	Amulet:             "amulet",
	Ring:               "ring",
	Map:                "map",
	Contract:           "contract",
	Blueprint:          "blueprint",
	StackableCurrency:  "stackable_currency",
	DivinationCardType: "divination_card",
	Jewel:              "jewel",
	AbyssJewel:         "abyss_jewel",
	Flask:              "flask",
	Corpse:             "corpse",
	ActiveGem:          "active_gem",
	SupportGem:         "support_gem",
	Socketable:         "socketable",
	Tablet:             "tablet",
	Charm:              "charm",
	Waystone:           "waystone",
	VaultKey:           "vault_key",
	UncutSkillGem:      "uncut_skill_gem",
	UncutSpiritGem:     "uncut_spirit_gem",
	UncutSupportGem:    "uncut_support_gem",
}

func (t ItemType) String() string {
	if t >= 0 && int(t) < len(itemTypeNames) {
		return itemTypeNames[t]
	}
	return fmt.Sprintf("item_type(%d)", int(t))
}

// ParseItemType maps the snake_case name used in locale tables.
func ParseItemType(s string) (ItemType, bool) {
	for i, name := range itemTypeNames {
		if name == s {
			return ItemType(i), true
		}
	}
	return Other, false
}

func (t ItemType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *ItemType) UnmarshalText(b []byte) error {
	v, ok := ParseItemType(string(b))
	if !ok {
		return fmt.Errorf("unknown item type %q", b)
	}
	*t = v
	return nil
}

// Genre buckets item types whose local stats have global counterparts.
type Genre int

const (
	GenreNone Genre = iota
	GenreWeapon
	GenreArmour
)

func (g Genre) String() string {
	switch g {
	case GenreWeapon:
		return "weapon"
	case GenreArmour:
		return "armour"
	}
	return "none"
}

var genres = map[ItemType]Genre{
	Claw:         GenreWeapon,
	Dagger:       GenreWeapon,
	Wand:         GenreWeapon,
	OneHandSword: GenreWeapon,
	OneHandAxe:   GenreWeapon,
	OneHandMace:  GenreWeapon,
	Sceptre:      GenreWeapon,
	Spear:        GenreWeapon,
	Flail:        GenreWeapon,
	RuneDagger:   GenreWeapon,
	Bow:          GenreWeapon,
	Staff:        GenreWeapon,
	TwoHandSword: GenreWeapon,
	TwoHandAxe:   GenreWeapon,
	TwoHandMace:  GenreWeapon,
	Quarterstaff: GenreWeapon,
	WarStaff:     GenreWeapon,
	FishingRod:   GenreWeapon,
	Crossbow:     GenreWeapon,
	Trap:         GenreWeapon,

	Helmet:     GenreArmour,
	BodyArmour: GenreArmour,
	Gloves:     GenreArmour,
	Boots:      GenreArmour,
}

// Genre returns the local/global bucket of t.
func (t ItemType) Genre() Genre {
	return genres[t]
}

// IsStaff covers both staff classes the staff-only stat phrasing applies to.
func (t ItemType) IsStaff() bool {
	return t == Staff || t == WarStaff
}

// RequirementKind names an attribute or level requirement.
type RequirementKind int

const (
	ReqLevel RequirementKind = iota
	ReqStr
	ReqDex
	ReqInt
)

func (k RequirementKind) String() string {
	switch k {
	case ReqLevel:
		return "level"
	case ReqStr:
		return "str"
	case ReqDex:
		return "dex"
	case ReqInt:
		return "int"
	}
	return fmt.Sprintf("requirement(%d)", int(k))
}

func (k RequirementKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
