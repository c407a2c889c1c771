package resolve

import (
	"github.com/ppptrade/tradekit/internal/data"
	"github.com/ppptrade/tradekit/internal/item"
	"github.com/ppptrade/tradekit/internal/locale"
)

// Aggregate derives pseudo stats from the triggering stats in stats. Each
// contribution is value*ratio truncated toward zero; targets appear in
// first-seen order. A target is emitted once triggered even if no trigger
// carried a value. Targets missing from the pseudo group are skipped.
func Aggregate(stats []item.ItemStat, rules []locale.PseudoRule, pseudo *data.StatGroup) []item.ItemStat {
	if len(rules) == 0 || pseudo == nil {
		return nil
	}
	byTrigger := make(map[string][]locale.PseudoTarget, len(rules))
	for _, r := range rules {
		byTrigger[r.Trigger] = append(byTrigger[r.Trigger], r.Targets...)
	}

	var order []string
	sums := make(map[string]int)
	for _, s := range stats {
		targets, ok := byTrigger[s.CanonicalID()]
		if !ok {
			continue
		}
		for _, t := range targets {
			if _, seen := sums[t.ID]; !seen {
				order = append(order, t.ID)
				sums[t.ID] = 0
			}
			if s.Value != nil {
				sums[t.ID] += int(float64(*s.Value) * t.Ratio)
			}
		}
	}

	out := make([]item.ItemStat, 0, len(order))
	for _, id := range order {
		tpl := pseudo.Entry(id)
		if tpl == nil {
			continue
		}
		out = append(out, item.ItemStat{Stat: tpl, Value: item.IntPtr(sums[id])})
	}
	return out
}
