package parser

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ppptrade/tradekit/internal/data"
	"github.com/ppptrade/tradekit/internal/item"
	"github.com/ppptrade/tradekit/internal/locale"
	"github.com/ppptrade/tradekit/internal/match"
)

// Selector picks the parser for a clipboard text.
type Selector struct {
	parsers []Parser
}

func NewSelector(parsers ...Parser) *Selector {
	return &Selector{parsers: parsers}
}

// Register appends p; earlier parsers win.
func (s *Selector) Register(p Parser) {
	s.parsers = append(s.parsers, p)
}

// Select returns the first parser accepting text for game, or nil.
func (s *Selector) Select(text string, game item.Game) Parser {
	for _, p := range s.parsers {
		if p.IsMatch(text, game) {
			return p
		}
	}
	return nil
}

// Parse selects and parses. (nil, nil) means text is not an item.
func (s *Selector) Parse(text string, game item.Game) (item.Item, error) {
	p := s.Select(text, game)
	if p == nil {
		return nil, nil
	}
	return p.Parse(text)
}

// Build creates one LineParser per locale in set, ordered by name, all
// sharing store.
func Build(set *locale.Set, store *data.Store, log *zap.Logger) (*Selector, []*LineParser, error) {
	configs := set.All()
	s := &Selector{parsers: make([]Parser, 0, len(configs))}
	lps := make([]*LineParser, 0, len(configs))
	for _, cfg := range configs {
		m, err := match.New(cfg, log)
		if err != nil {
			return nil, nil, fmt.Errorf("locale %s: %w", cfg.Name, err)
		}
		lp := New(cfg, store, m, log)
		s.Register(lp)
		lps = append(lps, lp)
	}
	return s, lps, nil
}
