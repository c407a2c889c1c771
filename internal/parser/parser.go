// Package parser turns the text the game client copies to the clipboard into
// an item.Item. One LineParser serves one (game, locale); its behavior comes
// entirely from the locale.Config it is built with.
package parser

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/ppptrade/tradekit/internal/data"
	"github.com/ppptrade/tradekit/internal/item"
	"github.com/ppptrade/tradekit/internal/locale"
	"github.com/ppptrade/tradekit/internal/match"
	"github.com/ppptrade/tradekit/internal/resolve"
)

// ErrMalformedField is wrapped by errors for numeric fields that do not parse.
var ErrMalformedField = errors.New("malformed field")

// Parser recognizes and parses one client's item text.
type Parser interface {
	// IsMatch is a cheap check that text looks like this parser's input.
	IsMatch(text string, game item.Game) bool
	// Parse returns (nil, nil) when text is not an item.
	Parse(text string) (item.Item, error)
}

// LineParser is the line-oriented state machine parser.
type LineParser struct {
	cfg      *locale.Config
	store    *data.Store
	matcher  *match.Matcher
	resolver *resolve.Resolver
	log      *zap.Logger
}

// New builds a parser for cfg. Reference data is read through store on first
// use; m must have been built for the same locale.
func New(cfg *locale.Config, store *data.Store, m *match.Matcher, log *zap.Logger) *LineParser {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("parser", cfg.Name))
	return &LineParser{
		cfg:      cfg,
		store:    store,
		matcher:  m,
		resolver: resolve.New(cfg, m, log),
		log:      log,
	}
}

// Name returns the locale name, e.g. "poe2_zh_tw".
func (p *LineParser) Name() string { return p.cfg.Name }

// Config returns the locale the parser was built for.
func (p *LineParser) Config() *locale.Config { return p.cfg }

// Matcher returns the template matcher so scripted special cases can be
// registered on it.
func (p *LineParser) Matcher() *match.Matcher { return p.matcher }

func (p *LineParser) IsMatch(text string, game item.Game) bool {
	return game == p.cfg.Game && strings.Contains(Normalize(text), p.cfg.Detect)
}

func (p *LineParser) Parse(text string) (item.Item, error) {
	lines := splitLines(Normalize(text))
	rarityAt := -1
	for i, l := range lines {
		if strings.HasPrefix(l, p.cfg.Keywords.Rarity) {
			rarityAt = i
			break
		}
	}
	if rarityAt < 0 {
		return nil, nil
	}

	r := newRun(p, lines, rarityAt)
	if err := r.walk(); err != nil {
		return nil, err
	}
	return r.finish(), nil
}

// Normalize folds full-width punctuation to ASCII, composes to NFC and
// unifies line endings.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return match.Fold(text)
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return lines
}
