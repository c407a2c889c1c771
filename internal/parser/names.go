package parser

import (
	"strings"

	"github.com/ppptrade/tradekit/internal/data"
	"github.com/ppptrade/tradekit/internal/item"
	"github.com/ppptrade/tradekit/internal/locale"
)

// resolveNames fills ItemName and ItemBaseName from the lines following the
// rarity header.
func (r *run) resolveNames() {
	if len(r.names) == 0 {
		return
	}
	b := &r.base
	first := r.names[0]

	switch {
	case b.Rarity == item.Magic:
		b.ItemName, b.ItemBaseName = r.splitMagic(first)
	case len(r.names) == 1:
		b.ItemName, b.ItemBaseName = first, first
	case r.game() == item.Poe2 && (b.Rarity == item.Rare || b.Rarity == item.Unique) && !b.Unidentified:
		b.ItemName, b.ItemBaseName = first+" "+r.names[1], r.names[1]
	case r.game() == item.Poe2:
		b.ItemName, b.ItemBaseName = first, first
	default:
		b.ItemName, b.ItemBaseName = first, r.names[1]
	}
}

func (r *run) splitMagic(name string) (string, string) {
	mn := r.p.cfg.MagicName
	var base string
	switch mn.Strategy {
	case locale.MagicNameConnective:
		base = SplitConnective(name, mn.Connective, r.p.store.BaseNames(r.p.cfg.Data))
	default:
		base = SplitParticle(name, mn.Particles)
	}
	if base == name && r.base.ItemType == item.Flask && mn.Connective != "" {
		base = flaskBase(name, mn.Connective)
	}
	return name, base
}

// SplitConnective finds the base name inside a magic item name such as
// "Flaming Iron Sword of the Whale": everything from the last connective on
// is dropped, then words are peeled off the front until the rest is a known
// base name. Without a match the whole name is the base.
func SplitConnective(name, connective string, bases *data.BaseNames) string {
	rest := name
	if i := strings.LastIndex(name, connective); i > 0 {
		rest = strings.TrimSpace(name[:i])
	}
	for {
		if bases.Contains(rest) {
			return rest
		}
		sp := strings.IndexByte(rest, ' ')
		if sp < 0 {
			return name
		}
		rest = strings.TrimSpace(rest[sp+1:])
	}
}

// SplitParticle returns what follows the rightmost possessive particle, or
// the whole name when there is none.
func SplitParticle(name string, particles []string) string {
	at, width := -1, 0
	for _, p := range particles {
		if p == "" {
			continue
		}
		if i := strings.LastIndex(name, p); i > at {
			at, width = i, len(p)
		}
	}
	if at < 0 || at+width >= len(name) {
		return name
	}
	return name[at+width:]
}

// flaskBase handles flasks missing from the base list: the first word is
// the prefix and the connective starts the suffix.
func flaskBase(name, connective string) string {
	i := strings.Index(name, connective)
	if i < 0 {
		return name
	}
	words := strings.Fields(name[:i])
	if len(words) < 2 {
		return name
	}
	return strings.Join(words[1:], " ")
}
