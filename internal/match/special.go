package match

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppptrade/tradekit/internal/data"
	"github.com/ppptrade/tradekit/internal/item"
)

// SpecialCase names a stat whose client phrasing needs bespoke matching.
type SpecialCase int

const (
	None SpecialCase = iota
	// IncreasedDecreased: the client flips "increased" to "decreased" for
	// negative rolls; the value is negated.
	IncreasedDecreased
	// AdditionalProjectile: "an additional Projectile" becomes a count.
	AdditionalProjectile
	// StaffOnly: the template carries a staff qualifier the line lacks;
	// only applies to staves.
	StaffOnly
	// ChanceVanishes: at 100% the client drops the chance phrase entirely.
	ChanceVanishes
	// Scripted: resolved by a registered ScriptFunc.
	Scripted
)

var specialNames = map[string]SpecialCase{
	"increased_decreased":   IncreasedDecreased,
	"additional_projectile": AdditionalProjectile,
	"staff_only":            StaffOnly,
	"chance_vanishes":       ChanceVanishes,
}

func (s SpecialCase) String() string {
	if s == Scripted {
		return "scripted"
	}
	for name, v := range specialNames {
		if v == s {
			return name
		}
	}
	return "none"
}

// ParseSpecialCase maps a locale table name to its case.
func ParseSpecialCase(name string) (SpecialCase, bool) {
	s, ok := specialNames[name]
	return s, ok
}

func parseSpecialCases(table map[string]string) (map[string]SpecialCase, error) {
	out := make(map[string]SpecialCase, len(table))
	for id, name := range table {
		sc, ok := ParseSpecialCase(name)
		if !ok {
			return nil, fmt.Errorf("stat %s: unknown special case %q", id, name)
		}
		out[id] = sc
	}
	return out, nil
}

type specialFunc func(m *Matcher, t *data.StatTemplate, text string, ctx Context) (Result, bool)

var specialFuncs = map[SpecialCase]specialFunc{
	IncreasedDecreased:   resolveIncreasedDecreased,
	AdditionalProjectile: resolveAdditionalProjectile,
	StaffOnly:            resolveStaffOnly,
	ChanceVanishes:       resolveChanceVanishes,
	Scripted:             resolveScripted,
}

func (m *Matcher) resolveSpecial(sc SpecialCase, t *data.StatTemplate, text string, ctx Context) (Result, bool) {
	fn, ok := specialFuncs[sc]
	if !ok {
		return Result{}, false
	}
	return fn(m, t, text, ctx)
}

// withText returns a shallow copy of t with different text; options are shared.
func withText(t *data.StatTemplate, text string) *data.StatTemplate {
	c := *t
	c.Text = text
	return &c
}

func resolveIncreasedDecreased(m *Matcher, t *data.StatTemplate, text string, _ Context) (Result, bool) {
	if v, opt, ok := m.Match(t, text); ok {
		return Result{Stat: t, Value: v, OptionID: opt}, true
	}
	inc, dec := m.words.Increased, m.words.Decreased
	tpl := m.fold(t.Text)
	if inc == "" || dec == "" || !strings.Contains(tpl, inc) {
		return Result{}, false
	}
	v, opt, ok := m.Match(withText(t, strings.ReplaceAll(tpl, inc, dec)), text)
	if !ok {
		return Result{}, false
	}
	if v != nil {
		v = item.IntPtr(-*v)
	}
	return Result{Stat: t, Value: v, OptionID: opt}, true
}

func resolveAdditionalProjectile(m *Matcher, t *data.StatTemplate, text string, _ Context) (Result, bool) {
	article := m.words.Article
	tpl := m.fold(t.Text)
	if article == "" || !strings.Contains(tpl, article) {
		if v, opt, ok := m.Match(t, text); ok {
			return Result{Stat: t, Value: v, OptionID: opt}, true
		}
		return Result{}, false
	}
	// the singular phrasing is a count of one
	if _, opt, ok := m.Match(t, text); ok {
		return Result{Stat: t, Value: item.IntPtr(1), OptionID: opt}, true
	}
	token := strings.TrimSpace(article)
	for _, phrasing := range strings.Split(tpl, "\n") {
		if !strings.Contains(phrasing, article) {
			continue
		}
		parts := strings.SplitN(phrasing, article, 2)
		numbered := strings.Replace(regexp.QuoteMeta(article), regexp.QuoteMeta(token), `(\d+)`, 1)
		// "Projectile" -> "Projectiles"
		re := m.compile("^" + regexp.QuoteMeta(parts[0]) + numbered + regexp.QuoteMeta(parts[1]) + "s?$")
		if re == nil {
			continue
		}
		sub := re.FindStringSubmatch(text)
		if sub == nil {
			continue
		}
		n, err := strconv.Atoi(sub[1])
		if err != nil {
			continue
		}
		return Result{Stat: t, Value: item.IntPtr(n)}, true
	}
	return Result{}, false
}

func resolveStaffOnly(m *Matcher, t *data.StatTemplate, text string, ctx Context) (Result, bool) {
	if !ctx.ItemType.IsStaff() || m.words.StaffSuffix == "" {
		return Result{}, false
	}
	v, opt, ok := m.Match(t, StripQualifiers(text)+m.words.StaffSuffix)
	if !ok {
		return Result{}, false
	}
	return Result{Stat: t, Value: v, OptionID: opt}, true
}

func resolveChanceVanishes(m *Matcher, t *data.StatTemplate, text string, _ Context) (Result, bool) {
	if v, opt, ok := m.Match(t, text); ok {
		return Result{Stat: t, Value: v, OptionID: opt}, true
	}
	phrase := m.words.ChancePhrase
	tpl := m.fold(t.Text)
	if phrase == "" || !strings.Contains(tpl, phrase) {
		return Result{}, false
	}
	if _, opt, ok := m.Match(withText(t, strings.ReplaceAll(tpl, phrase, "")), text); ok {
		return Result{Stat: t, Value: item.IntPtr(100), OptionID: opt}, true
	}
	return Result{}, false
}

func resolveScripted(m *Matcher, t *data.StatTemplate, text string, ctx Context) (Result, bool) {
	fn := m.scripts[t.CanonicalID()]
	if fn == nil {
		return Result{}, false
	}
	ok, v := fn(m.fold(t.Text), text, ctx.ItemType)
	if !ok {
		return Result{}, false
	}
	return Result{Stat: t, Value: v}, true
}
