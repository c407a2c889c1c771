package resolve

import (
	"github.com/ppptrade/tradekit/internal/data"
	"github.com/ppptrade/tradekit/internal/item"
)

// Remap replaces local stats with their global counterpart from table
// (local canonical id -> global canonical id). The replacement template is
// looked up in the stat's own group; stats without a mapping, or whose
// target is missing from the dictionary, pass through unchanged.
func Remap(stats []item.ItemStat, table map[string]string, dict *data.Dictionary) []item.ItemStat {
	if len(table) == 0 || dict == nil {
		return stats
	}
	out := make([]item.ItemStat, 0, len(stats))
	for _, s := range stats {
		if s.Stat == nil {
			out = append(out, s)
			continue
		}
		global, ok := table[s.CanonicalID()]
		if !ok {
			out = append(out, s)
			continue
		}
		gid := data.GroupOf(s.Stat.ID)
		target := dict.Group(gid).Entry(gid + "." + global)
		if target == nil {
			out = append(out, s)
			continue
		}
		out = append(out, item.ItemStat{Stat: target, Value: s.Value, OptionID: s.OptionID})
	}
	return out
}
