package trade

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppptrade/tradekit/internal/cache"
	"github.com/ppptrade/tradekit/internal/data"
)

// Reference files for zh_tw -> en name mapping, parallel by line/index.
const (
	baseNamesTw   = "items_tw.txt"
	baseNamesEn   = "items_en.txt"
	uniqueNamesTw = "unique_item_names_tw.json"
	uniqueNamesEn = "unique_item_names_eng.json"
	uniqueBasesTw = "unique_item_bases_tw.json"
	uniqueBasesEn = "unique_item_bases_eng.json"
)

var errListMissing = errors.New("name list missing")

// NameMapper translates zh_tw item names to the English names the
// international trade site expects.
type NameMapper struct {
	store *data.Store
	dir   string
	log   *zap.Logger
}

// NewNameMapper maps names using the lists under dir ("poe", "poe2").
func NewNameMapper(store *data.Store, dir string, log *zap.Logger) *NameMapper {
	if log == nil {
		log = zap.NewNop()
	}
	return &NameMapper{store: store, dir: dir, log: log}
}

// Base maps a base item name. ok is false when the lists are missing or
// the name is unknown.
func (n *NameMapper) Base(tw string) (string, bool) {
	m, err := cache.GetOrLoad(n.store.Cache(), n.key("base"), n.store.TTL(), func() (map[string]string, error) {
		twList, ok := n.store.NameList(n.dir, baseNamesTw, n.key("base:tw"))
		if !ok {
			return nil, errListMissing
		}
		enList, ok := n.store.NameList(n.dir, baseNamesEn, n.key("base:en"))
		if !ok {
			return nil, errListMissing
		}
		return n.pair(twList, enList, baseNamesTw), nil
	})
	if err != nil {
		return "", false
	}
	return lookup(m, tw)
}

// Unique maps a unique item's name and base. ok is false when any of the
// four lists is missing or either name is unknown.
func (n *NameMapper) Unique(name, base string) (string, string, bool) {
	names, err := cache.GetOrLoad(n.store.Cache(), n.key("unique:name"), n.store.TTL(), func() (map[string]string, error) {
		return n.jsonPair(uniqueNamesTw, uniqueNamesEn)
	})
	if err != nil {
		return "", "", false
	}
	bases, err := cache.GetOrLoad(n.store.Cache(), n.key("unique:base"), n.store.TTL(), func() (map[string]string, error) {
		return n.jsonPair(uniqueBasesTw, uniqueBasesEn)
	})
	if err != nil {
		return "", "", false
	}
	en, ok := lookup(names, name)
	if !ok {
		return "", "", false
	}
	enBase, ok := lookup(bases, base)
	if !ok {
		return "", "", false
	}
	return en, enBase, true
}

func (n *NameMapper) key(kind string) string {
	return "trade:" + n.dir + ":tw2en:" + kind
}

func (n *NameMapper) jsonPair(twFile, enFile string) (map[string]string, error) {
	twList, err := n.readJSONList(twFile)
	if err != nil {
		return nil, err
	}
	enList, err := n.readJSONList(enFile)
	if err != nil {
		return nil, err
	}
	return n.pair(twList, enList, twFile), nil
}

func (n *NameMapper) readJSONList(file string) ([]string, error) {
	raw, ok := n.store.ReadFile(n.dir, file)
	if !ok {
		return nil, errListMissing
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		n.log.Warn("name list unusable", zap.String("file", file), zap.Error(err))
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}
	return list, nil
}

// pair zips two parallel lists. Lists of different length cannot be
// aligned, so the mapping degrades to identity (an empty map).
func (n *NameMapper) pair(tw, en []string, file string) map[string]string {
	m := make(map[string]string, len(tw))
	if len(tw) != len(en) {
		n.log.Warn("name lists differ in length, names are not translated",
			zap.String("dir", n.dir), zap.String("file", file),
			zap.Int("tw", len(tw)), zap.Int("en", len(en)))
		return m
	}
	for i := range tw {
		if _, dup := m[tw[i]]; !dup {
			m[tw[i]] = en[i]
		}
	}
	return m
}

// lookup maps s; an empty table (identity mapping) returns s itself.
func lookup(m map[string]string, s string) (string, bool) {
	if len(m) == 0 {
		return s, true
	}
	v, ok := m[s]
	return v, ok
}
