// Package resolve turns the stat lines of one item into its final stat list:
// template matching per modifier group, deduplication, pseudo aggregation
// and local/global remapping.
package resolve

import (
	"strings"

	"go.uber.org/zap"

	"github.com/ppptrade/tradekit/internal/data"
	"github.com/ppptrade/tradekit/internal/item"
	"github.com/ppptrade/tradekit/internal/locale"
	"github.com/ppptrade/tradekit/internal/match"
)

// Resolver resolves stat lines for one locale.
type Resolver struct {
	cfg     *locale.Config
	matcher *match.Matcher
	log     *zap.Logger
}

func New(cfg *locale.Config, m *match.Matcher, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{cfg: cfg, matcher: m, log: log}
}

// Classify returns the stat group a line belongs to, judged by the
// qualifier marker it carries. Unmarked lines are explicit.
func Classify(line string, kw locale.Keywords) string {
	t := strings.TrimSpace(line)
	switch {
	case hasMarker(t, kw.Implicit):
		return data.GroupImplicit
	case hasMarker(t, kw.Crafted):
		return data.GroupCrafted
	case hasMarker(t, kw.Enchant):
		return data.GroupEnchant
	case hasMarker(t, kw.Desecrated):
		return data.GroupDesecrated
	case hasMarker(t, kw.Rune):
		return data.GroupRune
	}
	return data.GroupExplicit
}

func hasMarker(line, marker string) bool {
	return marker != "" && strings.HasSuffix(line, marker)
}

// Resolve matches every line and runs the stat pipeline. Lines that match
// no template are dropped. The result is never nil.
func (r *Resolver) Resolve(dict *data.Dictionary, lines []string, typ item.ItemType) []item.ItemStat {
	stats := make([]item.ItemStat, 0, len(lines))
	if dict == nil || dict.Empty() {
		return stats
	}

	ctx := match.Context{ItemType: typ}
	for _, line := range lines {
		gid := Classify(line, r.cfg.Keywords)
		res, ok := r.matcher.FindInGroup(dict.Group(gid), line, ctx)
		if !ok {
			r.log.Debug("stat line matched no template",
				zap.String("locale", r.cfg.Name),
				zap.String("group", gid),
				zap.String("line", line))
			continue
		}
		stats = append(stats, item.ItemStat{Stat: res.Stat, Value: res.Value, OptionID: res.OptionID})
	}

	stats = Dedup(stats)
	stats = append(Aggregate(stats, r.cfg.Rules.Pseudo, dict.Group(data.GroupPseudo)), stats...)
	stats = Remap(stats, r.cfg.Rules.LocalGlobal[typ.Genre().String()], dict)
	return Dedup(stats)
}

// Dedup keeps the first stat of every canonical id, preserving order.
func Dedup(stats []item.ItemStat) []item.ItemStat {
	seen := make(map[string]bool, len(stats))
	out := make([]item.ItemStat, 0, len(stats))
	for _, s := range stats {
		id := s.CanonicalID()
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, s)
	}
	return out
}
