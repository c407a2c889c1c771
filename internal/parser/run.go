package parser

import (
	"strings"

	"go.uber.org/zap"

	"github.com/ppptrade/tradekit/internal/item"
)

type state int

const (
	stateUnknown state = iota
	stateRarity
	stateItemName
	stateItemBase
	stateItemType
	stateRequirement
	stateItemLevel
	stateRuneStat
	stateGrantsSkill
	stateStat
	stateSpirit
	stateSockets
	stateGemLevel
)

var stateNames = [...]string{
	stateUnknown:     "unknown",
	stateRarity:      "rarity",
	stateItemName:    "item_name",
	stateItemBase:    "item_base",
	stateItemType:    "item_type",
	stateRequirement: "requirement",
	stateItemLevel:   "item_level",
	stateRuneStat:    "rune_stat",
	stateGrantsSkill: "grants_skill",
	stateStat:        "stat",
	stateSpirit:      "spirit",
	stateSockets:     "sockets",
	stateGemLevel:    "gem_level",
}

func (s state) String() string { return stateNames[s] }

// run is one parse in progress. The cursor only moves backwards through
// rewind, which always precedes a state change, so every line is visited a
// bounded number of times.
type run struct {
	p        *LineParser
	lines    []string
	i        int
	state    state
	rarityAt int

	base        item.ItemBase
	names       []string
	statLines   []string
	link        int
	runeSockets int
	grantsSkill string
	spirit      int
}

func newRun(p *LineParser, lines []string, rarityAt int) *run {
	return &run{
		p:        p,
		lines:    lines,
		rarityAt: rarityAt,
		base: item.ItemBase{
			Game:         p.cfg.Game,
			Requirements: []item.Requirement{},
		},
	}
}

func (r *run) game() item.Game { return r.p.cfg.Game }

// rewind makes the driving loop revisit the current line in the next state.
func (r *run) rewind(next state) {
	r.i--
	r.state = next
}

func (r *run) walk() error {
	for r.i = 0; r.i < len(r.lines); r.i++ {
		line := r.lines[r.i]
		r.flags(line)
		if err := r.step(line); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) step(line string) error {
	kw := r.p.cfg.Keywords
	switch r.state {
	case stateUnknown:
		r.dispatch(line)
	case stateRarity:
		r.base.Rarity = r.rarity(line)
		r.state = stateItemName
	case stateItemName:
		r.itemName(line)
	case stateItemBase:
		if line == kw.Separator || line == "" {
			// single-line name (magic, gem, card): the section is over
			r.rewind(stateUnknown)
			return nil
		}
		r.names = append(r.names, strings.TrimSpace(line))
		r.state = stateUnknown
	case stateItemType:
		r.base.ItemType = r.itemType(line)
		r.state = stateUnknown
	case stateRequirement:
		if err := r.requirements(line); err != nil {
			return err
		}
		r.state = stateUnknown
	case stateItemLevel:
		v, err := intField("item level", line, kw.ItemLevel)
		if err != nil {
			return err
		}
		r.base.ItemLevel = v
		if r.game() == item.Poe2 {
			r.state = stateRuneStat
		} else {
			r.state = stateStat
		}
	case stateRuneStat:
		r.probe(line, func(first string) bool { return hasKeyword(first, kw.Rune, strings.Contains) }, nil, stateGrantsSkill)
	case stateGrantsSkill:
		r.probe(line, func(first string) bool { return hasKeyword(first, kw.GrantsSkill, strings.HasPrefix) },
			func(first string) { r.grantsSkill = strings.TrimSpace(first[len(kw.GrantsSkill):]) }, stateStat)
	case stateStat:
		if line != kw.Separator {
			r.rewind(stateUnknown)
			return nil
		}
		r.statBlocks()
		r.state = stateUnknown
	case stateSpirit:
		v, err := intField("spirit", line, kw.Spirit)
		if err != nil {
			return err
		}
		r.spirit = v
		r.state = stateUnknown
	case stateSockets:
		sockets := strings.TrimSpace(line[len(kw.Sockets):])
		if r.game() == item.Poe2 {
			r.runeSockets = RuneSocketCount(sockets)
		} else {
			r.link = LinkCount(sockets)
		}
		r.state = stateUnknown
	case stateGemLevel:
		v, err := intField("gem level", line, kw.GemLevel)
		if err != nil {
			return err
		}
		r.base.GemLevel = item.IntPtr(v)
		r.state = stateUnknown
	}
	return nil
}

// dispatch recognizes a section header and rewinds so the header line is
// consumed by its section's state. Anything else is skipped.
func (r *run) dispatch(line string) {
	kw := r.p.cfg.Keywords
	switch {
	case r.i == r.rarityAt:
		r.rewind(stateRarity)
	case hasKeyword(line, kw.ItemClass, strings.HasPrefix):
		r.rewind(stateItemType)
	case hasKeyword(line, kw.Requirements, strings.HasPrefix):
		r.rewind(stateRequirement)
	case hasKeyword(line, kw.ItemLevel, strings.HasPrefix):
		r.rewind(stateItemLevel)
	case hasKeyword(line, kw.Spirit, strings.HasPrefix):
		r.rewind(stateSpirit)
	case hasKeyword(line, kw.Sockets, strings.HasPrefix):
		r.rewind(stateSockets)
	case r.base.Rarity == item.Gem && hasKeyword(line, kw.GemLevel, strings.HasPrefix):
		r.rewind(stateGemLevel)
	}
}

// probe handles an optional "----"-delimited section that may sit between
// the item level and the stat blocks. On a separator it peeks at the next
// line: if it belongs to the section the block is consumed (take sees its
// first line), otherwise the cursor goes back so the separator is seen
// again in the next state.
func (r *run) probe(line string, belongs func(string) bool, take func(string), next state) {
	if line != r.p.cfg.Keywords.Separator {
		r.state = stateUnknown
		return
	}
	r.i++
	if r.i < len(r.lines) && !belongs(r.lines[r.i]) {
		r.i -= 2
	} else {
		if r.i < len(r.lines) && take != nil {
			take(r.lines[r.i])
		}
		r.skipBlock()
		r.i--
	}
	r.state = next
}

// statBlocks collects the stat lines following a separator. A block whose
// first line is implicit or enchant marked, or a granted-skill block, is
// followed by another stat block; chaining repeats until a plain block.
func (r *run) statBlocks() {
	kw := r.p.cfg.Keywords
	for {
		r.i++
		if r.i >= len(r.lines) {
			return
		}
		first := r.lines[r.i]
		if r.isFlag(first) {
			r.flags(first)
			return
		}

		more, skip := false, false
		switch {
		case hasKeyword(first, kw.Implicit, strings.Contains), hasKeyword(first, kw.Enchant, strings.Contains):
			more = true
		case hasKeyword(first, kw.GrantsSkill, strings.HasPrefix):
			r.grantsSkill = strings.TrimSpace(first[len(kw.GrantsSkill):])
			more, skip = true, true
		}

		for r.i < len(r.lines) && r.lines[r.i] != kw.Separator {
			l := r.lines[r.i]
			switch {
			case r.isFlag(l):
				r.flags(l)
			case !skip && strings.TrimSpace(l) != "":
				r.statLines = append(r.statLines, l)
			}
			r.i++
		}
		if !more || r.i >= len(r.lines) {
			return
		}
	}
}

func (r *run) skipBlock() {
	for r.i < len(r.lines) && r.lines[r.i] != r.p.cfg.Keywords.Separator {
		r.i++
	}
}

func (r *run) isFlag(line string) bool {
	kw := r.p.cfg.Keywords
	t := strings.TrimSpace(line)
	return (kw.Unidentified != "" && t == kw.Unidentified) || (kw.Corrupted != "" && t == kw.Corrupted)
}

func (r *run) flags(line string) {
	kw := r.p.cfg.Keywords
	switch strings.TrimSpace(line) {
	case "":
	case kw.Unidentified:
		r.base.Unidentified = true
	case kw.Corrupted:
		r.base.Corrupted = true
	}
}

func (r *run) rarity(line string) item.Rarity {
	s := strings.TrimSpace(strings.TrimPrefix(line, r.p.cfg.Keywords.Rarity))
	v, ok := r.p.cfg.Rarity(s)
	if !ok {
		r.p.log.Debug("unknown rarity keyword, using normal", zap.String("rarity", s))
	}
	return v
}

func (r *run) itemType(line string) item.ItemType {
	s := strings.TrimSpace(strings.TrimPrefix(line, r.p.cfg.Keywords.ItemClass))
	v, ok := r.p.cfg.ItemType(s)
	if !ok {
		r.p.log.Debug("unknown item class keyword, using other", zap.String("item_class", s))
	}
	return v
}

func (r *run) itemName(line string) {
	kw := r.p.cfg.Keywords
	name := strings.TrimSpace(line)
	if kw.Foulborn != "" && strings.HasPrefix(name, kw.Foulborn) {
		r.base.Foulborn = true
		name = strings.TrimSpace(name[len(kw.Foulborn):])
	}
	r.names = append(r.names, name)
	if r.base.Rarity == item.Currency {
		r.state = stateUnknown
		return
	}
	r.state = stateItemBase
}

// finish assembles the item once every line has been consumed.
func (r *run) finish() item.Item {
	r.resolveNames()

	dict := r.p.store.Dictionary(r.p.cfg.Data)
	r.base.Stats = r.p.resolver.Resolve(dict, r.statLines, r.base.ItemType)

	if r.game() == item.Poe2 {
		return &item.Poe2Item{
			ItemBase:    r.base,
			RuneSockets: r.runeSockets,
			GrantsSkill: r.grantsSkill,
			Spirit:      r.spirit,
		}
	}
	return &item.Poe1Item{ItemBase: r.base, Link: r.link}
}

func hasKeyword(line, kw string, fn func(string, string) bool) bool {
	return kw != "" && fn(line, kw)
}
