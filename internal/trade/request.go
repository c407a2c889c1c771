package trade

import (
	"fmt"
	"strings"

	"github.com/ppptrade/tradekit/internal/item"
)

// Server selects which trade site the query is for. The international
// site only knows English names.
type Server int

const (
	International Server = iota
	Taiwan
)

func (s Server) String() string {
	if s == Taiwan {
		return "taiwan"
	}
	return "international"
}

// ParseServer accepts "international" / "intl" and "taiwan" / "tw".
func ParseServer(s string) (Server, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "international", "intl", "":
		return International, nil
	case "taiwan", "tw":
		return Taiwan, nil
	}
	return International, fmt.Errorf("unknown trade server %q", s)
}

// Option is a yes/no/any filter.
type Option int

const (
	Any Option = iota
	Yes
	No
)

// StatFilter is one stat line of the query. Nil bounds are open.
type StatFilter struct {
	ID       string
	Disabled bool
	Min      *int
	Max      *int
	OptionID *int // selectable-text stats
}

// SearchRequest holds everything the user can adjust before searching.
type SearchRequest struct {
	Server            Server
	TradeType         string // "available", "online", "any"
	Corrupted         Option
	CollapseByAccount bool
	Foulborn          Option // game A only

	FilterItemLevel bool
	ItemLevelMin    *int
	ItemLevelMax    *int

	FilterRarity   bool
	FilterItemBase bool

	FilterLink bool // game A only
	LinkMin    *int
	LinkMax    *int

	RuneSockets *int // game B only

	Stats []StatFilter
}

// DefaultTradeType lists items from sellers that are online.
const DefaultTradeType = "online"

// NewRequest prefills a request from a parsed item: the item level and
// link count become lower bounds, every non-pseudo stat with a value
// becomes an enabled filter with its value as minimum, and pseudo stats
// are added disabled.
func NewRequest(it item.Item, server Server) SearchRequest {
	b := it.Base()
	req := SearchRequest{
		Server:          server,
		TradeType:       DefaultTradeType,
		Corrupted:       No,
		FilterItemLevel: b.ItemLevel > 0,
		FilterRarity:    true,
		FilterItemBase:  b.Rarity != item.Magic && b.Rarity != item.Rare,
	}
	if b.Corrupted {
		req.Corrupted = Yes
	}
	if b.ItemLevel > 0 {
		req.ItemLevelMin = item.IntPtr(b.ItemLevel)
	}
	switch v := it.(type) {
	case *item.Poe1Item:
		if b.Foulborn {
			req.Foulborn = Yes
		}
		if v.Link > 0 {
			req.FilterLink = true
			req.LinkMin = item.IntPtr(v.Link)
		}
	case *item.Poe2Item:
		if v.RuneSockets > 0 {
			req.RuneSockets = item.IntPtr(v.RuneSockets)
		}
	}
	for _, s := range b.Stats {
		if s.Stat == nil {
			continue
		}
		f := StatFilter{ID: s.Stat.ID, Disabled: s.Stat.Type == "pseudo"}
		if s.Value != nil {
			f.Min = item.IntPtr(*s.Value)
		}
		if s.OptionID != nil {
			f.Min = nil
			f.OptionID = item.IntPtr(*s.OptionID)
		}
		req.Stats = append(req.Stats, f)
	}
	return req
}
