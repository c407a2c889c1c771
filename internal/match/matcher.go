package match

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ppptrade/tradekit/internal/data"
	"github.com/ppptrade/tradekit/internal/item"
	"github.com/ppptrade/tradekit/internal/locale"
)

const (
	signedCapture   = `([+-][\d.]+)`
	unsignedCapture = `([+-]?[\d.]+)`
)

var qualifierRe = regexp.MustCompile(`\(.*?\)`)

// StripQualifiers removes every parenthetical ("(implicit)", "(augmented)",
// "(local)") from a stat line and trims it.
func StripQualifiers(line string) string {
	return strings.TrimSpace(qualifierRe.ReplaceAllString(line, ""))
}

// Context is what a special case may inspect about the item being parsed.
type Context struct {
	ItemType item.ItemType
}

// Result is a resolved stat line.
type Result struct {
	Stat     *data.StatTemplate
	Value    *int
	OptionID *int
}

// ScriptFunc resolves a scripted special case. It reports whether the line
// matched and the value to record (nil for none).
type ScriptFunc func(templateText, line string, typ item.ItemType) (bool, *int)

// Matcher resolves stat lines against stat templates for one locale.
// Scripts must be registered before the matcher is shared between goroutines.
type Matcher struct {
	words   locale.Words
	local   string
	special map[string]SpecialCase
	scripts map[string]ScriptFunc

	patterns sync.Map // pattern source -> *regexp.Regexp (nil if invalid)
	folded   sync.Map // template text -> Fold(text)
	log      *zap.Logger
}

// New builds a matcher from a locale's words and special-case table.
func New(cfg *locale.Config, log *zap.Logger) (*Matcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	special, err := parseSpecialCases(cfg.Rules.SpecialCases)
	if err != nil {
		return nil, err
	}
	return &Matcher{
		words:   cfg.Words,
		local:   cfg.Keywords.Local,
		special: special,
		scripts: make(map[string]ScriptFunc),
		log:     log,
	}, nil
}

// RegisterScript routes the stat with the given canonical id through fn,
// replacing any built-in special case for it.
func (m *Matcher) RegisterScript(canonical string, fn ScriptFunc) {
	m.scripts[canonical] = fn
	m.special[canonical] = Scripted
}

// SpecialCaseFor returns the special case registered for a canonical id.
func (m *Matcher) SpecialCaseFor(canonical string) SpecialCase {
	return m.special[canonical]
}

// FindInGroup returns the first template of g, in declared order, that
// matches line. Qualifiers are stripped first; when nothing matches, the
// locale's local qualifier is appended and the group is tried again.
func (m *Matcher) FindInGroup(g *data.StatGroup, line string, ctx Context) (Result, bool) {
	if g == nil {
		return Result{}, false
	}
	text := StripQualifiers(line)
	if text == "" {
		return Result{}, false
	}
	if r, ok := m.scan(g, text, ctx); ok {
		return r, true
	}
	if m.local == "" {
		return Result{}, false
	}
	return m.scan(g, text+" "+m.local, ctx)
}

func (m *Matcher) scan(g *data.StatGroup, text string, ctx Context) (Result, bool) {
	for i := range g.Entries {
		t := &g.Entries[i]
		if r, ok := m.Resolve(t, text, ctx); ok {
			return r, true
		}
	}
	return Result{}, false
}

// Resolve matches text against a single template, routing through the
// template's special case when it has one. A special case that declines
// means no match for this template.
func (m *Matcher) Resolve(t *data.StatTemplate, text string, ctx Context) (Result, bool) {
	if sc := m.special[t.CanonicalID()]; sc != None {
		return m.resolveSpecial(sc, t, text, ctx)
	}
	value, option, ok := m.Match(t, text)
	if !ok {
		return Result{}, false
	}
	return Result{Stat: t, Value: value, OptionID: option}, true
}

// Match is plain template matching: every phrasing of t (and, for
// selectable-text stats, every option substituted for `#`) is compiled into
// an anchored pattern and tried in order.
func (m *Matcher) Match(t *data.StatTemplate, text string) (value *int, optionID *int, ok bool) {
	if !t.HasOptions() {
		value, ok = m.matchText(t.Text, text)
		return value, nil, ok
	}
	for _, o := range t.Option.Options {
		if value, ok = m.matchText(strings.ReplaceAll(t.Text, "#", o.Text), text); ok {
			return value, item.IntPtr(o.ID), true
		}
	}
	return nil, nil, false
}

func (m *Matcher) matchText(templateText, text string) (*int, bool) {
	for _, phrasing := range strings.Split(m.fold(templateText), "\n") {
		re := m.compile(Pattern(phrasing))
		if re == nil {
			continue
		}
		sub := re.FindStringSubmatch(text)
		if sub == nil {
			continue
		}
		value, err := extract(sub[1:])
		if err != nil {
			// "[\d.]+" also accepts strings like "1.2.3"
			continue
		}
		return value, true
	}
	return nil, false
}

func (m *Matcher) fold(text string) string {
	if v, ok := m.folded.Load(text); ok {
		return v.(string)
	}
	f := Fold(text)
	m.folded.Store(text, f)
	return f
}

// Pattern converts one template phrasing into an anchored regular
// expression: "+#" captures a signed number, any other "#" an optionally
// signed one.
func Pattern(phrasing string) string {
	q := regexp.QuoteMeta(phrasing)
	q = strings.ReplaceAll(q, `\+#`, signedCapture)
	q = strings.ReplaceAll(q, "#", unsignedCapture)
	return "^" + q + "$"
}

func (m *Matcher) compile(pattern string) *regexp.Regexp {
	if v, ok := m.patterns.Load(pattern); ok {
		return v.(*regexp.Regexp)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		m.log.Debug("stat pattern does not compile", zap.String("pattern", pattern), zap.Error(err))
		re = nil
	}
	v, _ := m.patterns.LoadOrStore(pattern, re)
	return v.(*regexp.Regexp)
}

// extract turns the captured numbers into the stat value: none -> nil, a
// min/max pair -> their mean, otherwise the first capture. Decimals are
// truncated toward zero.
func extract(groups []string) (*int, error) {
	switch len(groups) {
	case 0:
		return nil, nil
	case 2:
		lo, err := strconv.ParseFloat(groups[0], 64)
		if err != nil {
			return nil, err
		}
		hi, err := strconv.ParseFloat(groups[1], 64)
		if err != nil {
			return nil, err
		}
		return item.IntPtr(int((lo + hi) / 2)), nil
	default:
		v, err := strconv.ParseFloat(groups[0], 64)
		if err != nil {
			return nil, err
		}
		return item.IntPtr(int(v)), nil
	}
}
