package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/ppptrade/tradekit/internal/item"
	"github.com/ppptrade/tradekit/internal/match"
)

// intField parses the integer after keyword on line, ignoring qualifiers
// such as "(augmented)" or "(Max)".
func intField(field, line, keyword string) (int, error) {
	return atoi(field, line, strings.TrimPrefix(line, keyword))
}

func atoi(field, line, s string) (int, error) {
	v, err := strconv.Atoi(match.StripQualifiers(s))
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", field, line, ErrMalformedField)
	}
	return v, nil
}

type reqKeyword struct {
	kind item.RequirementKind
	word string
}

func (r *run) requirementKeywords() []reqKeyword {
	rk := r.p.cfg.Requirement
	return []reqKeyword{
		{item.ReqLevel, rk.Level},
		{item.ReqInt, rk.Int},
		{item.ReqDex, rk.Dex},
		{item.ReqStr, rk.Str},
	}
}

// requirements reads the requirement section. Game B prints it on the
// header line as a comma separated list; game A prints one "Kw: value" line
// per entry in a block after the header.
func (r *run) requirements(header string) error {
	kws := r.requirementKeywords()
	if r.game() == item.Poe2 {
		list := strings.TrimPrefix(header, r.p.cfg.Keywords.Requirements)
		for _, part := range strings.Split(list, ",") {
			part = strings.TrimSpace(match.StripQualifiers(part))
			if part == "" {
				continue
			}
			for _, k := range kws {
				if k.word == "" || !strings.Contains(part, k.word) {
					continue
				}
				v, err := atoi("requirement", header, strings.ReplaceAll(part, k.word, ""))
				if err != nil {
					return err
				}
				r.base.Requirements = append(r.base.Requirements, item.Requirement{Kind: k.kind, Value: v})
				break
			}
		}
		return nil
	}

	sep := r.p.cfg.Keywords.Separator
	for r.i++; r.i < len(r.lines) && r.lines[r.i] != sep; r.i++ {
		line := r.lines[r.i]
		matched := false
		for _, k := range kws {
			if k.word == "" || !strings.HasPrefix(line, k.word) {
				continue
			}
			v, err := atoi("requirement", line, line[len(k.word):])
			if err != nil {
				return err
			}
			r.base.Requirements = append(r.base.Requirements, item.Requirement{Kind: k.kind, Value: v})
			matched = true
			break
		}
		if !matched && strings.TrimSpace(line) != "" {
			r.p.log.Debug("unknown requirement line", zap.String("line", line))
		}
	}
	return nil
}

// LinkCount returns the size of the largest linked socket group of a game A
// sockets value ("R-G-B W"): letters of a space separated group are counted,
// link connectors ignored, and one is added to the largest count.
func LinkCount(sockets string) int {
	best := 0
	for _, group := range strings.Fields(sockets) {
		n := 0
		for _, c := range group {
			if unicode.IsLetter(c) {
				n++
			}
		}
		if n > best {
			best = n
		}
	}
	if best == 0 {
		return 0
	}
	return best + 1
}

// RuneSocketCount counts the rune sockets ("S") of a game B sockets value.
func RuneSocketCount(sockets string) int {
	return strings.Count(sockets, "S")
}
