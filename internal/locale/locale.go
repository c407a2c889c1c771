package locale

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppptrade/tradekit/internal/data"
	"github.com/ppptrade/tradekit/internal/item"
)

//go:embed tables/*.yaml
var builtin embed.FS

// Magic-item name splitting strategies.
const (
	MagicNameConnective = "connective"
	MagicNameParticle   = "particle"
)

// Keywords are the section headers and line markers of one client language.
// Header keywords include their trailing ": " exactly as the client prints.
type Keywords struct {
	Rarity       string `yaml:"rarity"`
	ItemClass    string `yaml:"item_class"`
	Requirements string `yaml:"requirements"`
	Sockets      string `yaml:"sockets"`
	ItemLevel    string `yaml:"item_level"`
	GrantsSkill  string `yaml:"grants_skill"`
	Spirit       string `yaml:"spirit"`
	GemLevel     string `yaml:"gem_level"`
	Separator    string `yaml:"separator"`
	Implicit     string `yaml:"implicit"`
	Crafted      string `yaml:"crafted"`
	Enchant      string `yaml:"enchant"`
	Rune         string `yaml:"rune"`
	Desecrated   string `yaml:"desecrated"`
	Augmented    string `yaml:"augmented"`
	Local        string `yaml:"local"`
	Foulborn     string `yaml:"foulborn"`
	Unidentified string `yaml:"unidentified"`
	Corrupted    string `yaml:"corrupted"`
}

// RequirementKeywords label the entries of the requirements section.
type RequirementKeywords struct {
	Level string `yaml:"level"`
	Str   string `yaml:"str"`
	Dex   string `yaml:"dex"`
	Int   string `yaml:"int"`
}

// MagicName configures how a magic item's single name line is split.
type MagicName struct {
	Strategy   string   `yaml:"strategy"`
	Connective string   `yaml:"connective"`
	Particles  []string `yaml:"particles"`
}

// Words are the phrase fragments the special-case stat handlers rewrite.
type Words struct {
	Increased    string `yaml:"increased"`
	Decreased    string `yaml:"decreased"`
	Article      string `yaml:"article"`       // " an " in "fire an additional Projectile"
	StaffSuffix  string `yaml:"staff_suffix"`  // qualifier staff-only templates carry
	ChancePhrase string `yaml:"chance_phrase"` // dropped from the line at 100% chance
}

// PseudoTarget is one pseudo stat a trigger contributes to.
type PseudoTarget struct {
	ID    string  `yaml:"id"`
	Ratio float64 `yaml:"ratio"`
}

// PseudoRule maps a trigger stat (canonical id) to its pseudo targets.
type PseudoRule struct {
	Trigger string         `yaml:"trigger"`
	Targets []PseudoTarget `yaml:"targets"`
}

// GameRules is the locale-independent stat data of one game.
type GameRules struct {
	SpecialCases map[string]string            `yaml:"special_cases"` // canonical id -> case name
	LocalGlobal  map[string]map[string]string `yaml:"local_global"`  // genre -> local -> global
	Pseudo       []PseudoRule                 `yaml:"pseudo"`
}

// Config is everything a parser needs to know about one (game, locale).
// Values are read-only once loaded.
type Config struct {
	Name        string
	Game        item.Game
	Locale      string
	Detect      string
	Keywords    Keywords
	Requirement RequirementKeywords
	Rarities    map[string]item.Rarity
	ItemTypes   map[string]item.ItemType
	MagicName   MagicName
	Words       Words
	Rules       GameRules
	Data        data.Source
}

// Rarity resolves a rarity keyword, reporting false on a miss.
func (c *Config) Rarity(s string) (item.Rarity, bool) {
	r, ok := c.Rarities[s]
	return r, ok
}

// ItemType resolves an item-class keyword, reporting false on a miss.
func (c *Config) ItemType(s string) (item.ItemType, bool) {
	t, ok := c.ItemTypes[s]
	return t, ok
}

// GlobalFor returns the global canonical id a local stat maps to.
func (c *Config) GlobalFor(g item.Genre, canonical string) (string, bool) {
	m := c.Rules.LocalGlobal[g.String()]
	if m == nil {
		return "", false
	}
	id, ok := m[canonical]
	return id, ok
}

type localeFile struct {
	Game        string              `yaml:"game"`
	Locale      string              `yaml:"locale"`
	Detect      string              `yaml:"detect"`
	Keywords    Keywords            `yaml:"keywords"`
	Requirement RequirementKeywords `yaml:"requirement"`
	Rarities    map[string]string   `yaml:"rarities"`
	ItemTypes   map[string]string   `yaml:"item_types"`
	MagicName   MagicName           `yaml:"magic_name"`
	Words       Words               `yaml:"words"`
	Data        struct {
		Dir       string `yaml:"dir"`
		Stats     string `yaml:"stats"`
		BaseNames string `yaml:"base_names"`
	} `yaml:"data"`
}

type gameFile struct {
	Game  string    `yaml:"game"`
	Rules GameRules `yaml:",inline"`
}

// Set holds every loaded locale by name ("poe2_zh_tw").
type Set struct {
	configs map[string]*Config
}

// Get returns the config for name, or nil.
func (s *Set) Get(name string) *Config {
	return s.configs[name]
}

// Find returns the config for a game and locale code.
func (s *Set) Find(g item.Game, loc string) *Config {
	return s.Get(Name(g, loc))
}

// All returns the configs ordered by name.
func (s *Set) All() []*Config {
	out := make([]*Config, 0, len(s.configs))
	for _, c := range s.configs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Count returns the number of loaded locales.
func (s *Set) Count() int {
	return len(s.configs)
}

// Merge returns a set with other's configs replacing same-named ones in s.
func (s *Set) Merge(other *Set) *Set {
	out := &Set{configs: make(map[string]*Config, len(s.configs)+len(other.configs))}
	for k, v := range s.configs {
		out.configs[k] = v
	}
	for k, v := range other.configs {
		out.configs[k] = v
	}
	return out
}

// Name builds the canonical config name for a game and locale code.
func Name(g item.Game, loc string) string {
	return strings.ToLower(g.String()) + "_" + loc
}

// Builtin loads the tables compiled into the binary.
func Builtin() (*Set, error) {
	sub, err := fs.Sub(builtin, "tables")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load reads game rule files (<game>.yaml) and locale files
// (<game>_<locale>.yaml) from the root of fsys.
func Load(fsys fs.FS) (*Set, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read locale tables: %w", err)
	}

	rules := make(map[item.Game]GameRules)
	var localeNames []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		base := strings.TrimSuffix(e.Name(), ".yaml")
		if strings.Contains(base, "_") {
			localeNames = append(localeNames, e.Name())
			continue
		}
		raw, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		var gf gameFile
		if err := yaml.Unmarshal(raw, &gf); err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
		}
		g, err := item.ParseGame(gf.Game)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		rules[g] = gf.Rules
	}

	set := &Set{configs: make(map[string]*Config, len(localeNames))}
	for _, name := range localeNames {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		cfg, err := parseLocale(raw, rules)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		set.configs[cfg.Name] = cfg
	}
	return set, nil
}

func parseLocale(raw []byte, rules map[item.Game]GameRules) (*Config, error) {
	var lf localeFile
	if err := yaml.Unmarshal(raw, &lf); err != nil {
		return nil, fmt.Errorf("parse locale: %w", err)
	}
	g, err := item.ParseGame(lf.Game)
	if err != nil {
		return nil, err
	}
	if lf.Locale == "" {
		return nil, fmt.Errorf("locale code missing")
	}
	if lf.Keywords.Rarity == "" || lf.Keywords.Separator == "" {
		return nil, fmt.Errorf("rarity and separator keywords are required")
	}

	cfg := &Config{
		Name:        Name(g, lf.Locale),
		Game:        g,
		Locale:      lf.Locale,
		Detect:      lf.Detect,
		Keywords:    lf.Keywords,
		Requirement: lf.Requirement,
		Rarities:    make(map[string]item.Rarity, len(lf.Rarities)),
		ItemTypes:   make(map[string]item.ItemType, len(lf.ItemTypes)),
		MagicName:   lf.MagicName,
		Words:       lf.Words,
		Rules:       rules[g],
		Data: data.Source{
			Dir:           lf.Data.Dir,
			StatsFile:     lf.Data.Stats,
			BaseNamesFile: lf.Data.BaseNames,
			CacheKey:      "parser:" + Name(g, lf.Locale),
		},
	}
	if cfg.Detect == "" {
		cfg.Detect = lf.Keywords.Rarity
	}

	for k, v := range lf.Rarities {
		r, ok := item.ParseRarity(v)
		if !ok {
			return nil, fmt.Errorf("rarity %q: unknown value %q", k, v)
		}
		cfg.Rarities[k] = r
	}
	for k, v := range lf.ItemTypes {
		t, ok := item.ParseItemType(v)
		if !ok {
			return nil, fmt.Errorf("item type %q: unknown value %q", k, v)
		}
		cfg.ItemTypes[k] = t
	}

	switch cfg.MagicName.Strategy {
	case MagicNameConnective:
		if cfg.MagicName.Connective == "" {
			return nil, fmt.Errorf("connective strategy needs a connective")
		}
	case MagicNameParticle:
		if len(cfg.MagicName.Particles) == 0 {
			return nil, fmt.Errorf("particle strategy needs particles")
		}
	case "":
		cfg.MagicName.Strategy = MagicNameParticle
	default:
		return nil, fmt.Errorf("unknown magic name strategy %q", cfg.MagicName.Strategy)
	}
	return cfg, nil
}
