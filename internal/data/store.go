package data

import (
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/ppptrade/tradekit/internal/cache"
)

// Source names the reference files of one (game, locale) pair.
type Source struct {
	Dir           string // game data folder, e.g. "poe2"
	StatsFile     string // e.g. "stats_tw.json"
	BaseNamesFile string // e.g. "items_tw.txt"; empty = no list
	CacheKey      string // prefix for cache keys, e.g. "parser:poe2:zh_tw"
}

func (s Source) statsPath() string     { return path.Join(s.Dir, s.StatsFile) }
func (s Source) baseNamesPath() string { return path.Join(s.Dir, s.BaseNamesFile) }

// Store loads reference data on first use and memoizes it in a cache.
// Stat dictionaries and base-name sets are kept for the life of the cache;
// name lists and maps derived from them expire after ttl. Load failures
// degrade to empty data so a parse can still return the item's other fields.
type Store struct {
	fs    FS
	cache cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

// NewStore creates a store. ttl applies to name lists; 0 uses the cache's
// default lifetime.
func NewStore(fsys FS, c cache.Cache, ttl time.Duration, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{fs: fsys, cache: c, ttl: ttl, log: log}
}

// Dictionary returns the stat catalogue for src, never nil.
func (s *Store) Dictionary(src Source) *Dictionary {
	key := src.CacheKey + ":stats"
	d, err := cache.GetOrLoad(s.cache, key, cache.Forever, func() (*Dictionary, error) {
		d, err := LoadDictionary(s.fs, src.statsPath())
		if err != nil {
			s.log.Warn("stat dictionary unusable, continuing without stats",
				zap.String("file", src.statsPath()), zap.Error(err))
			return NewDictionary(nil), nil
		}
		if d.Empty() {
			s.log.Debug("stat dictionary empty or missing", zap.String("file", src.statsPath()))
		} else {
			s.log.Debug("loaded stat dictionary",
				zap.String("file", src.statsPath()),
				zap.Int("groups", len(d.Groups())),
				zap.Int("templates", d.Count()))
		}
		return d, nil
	})
	if err != nil || d == nil {
		return NewDictionary(nil)
	}
	return d
}

// BaseNames returns the base-name set for src, never nil.
func (s *Store) BaseNames(src Source) *BaseNames {
	if src.BaseNamesFile == "" {
		return NewBaseNames(nil)
	}
	key := src.CacheKey + ":item_base"
	b, err := cache.GetOrLoad(s.cache, key, cache.Forever, func() (*BaseNames, error) {
		b, err := LoadBaseNames(s.fs, src.baseNamesPath())
		if err != nil {
			s.log.Warn("base name list unusable", zap.String("file", src.baseNamesPath()), zap.Error(err))
			return NewBaseNames(nil), nil
		}
		return b, nil
	})
	if err != nil || b == nil {
		return NewBaseNames(nil)
	}
	return b
}

// NameList reads an auxiliary name list (one entry per line) under dir,
// memoized under key. ok is false when the file is missing or unreadable.
func (s *Store) NameList(dir, file, key string) ([]string, bool) {
	p := path.Join(dir, file)
	if !s.fs.Exists(p) {
		return nil, false
	}
	names, err := cache.GetOrLoad(s.cache, key, s.ttl, func() ([]string, error) {
		raw, err := s.fs.ReadFile(p)
		if err != nil {
			return nil, err
		}
		return ReadNameList(raw)
	})
	if err != nil {
		s.log.Warn("name list unusable", zap.String("file", p), zap.Error(err))
		return nil, false
	}
	return names, true
}

// ReadFile exposes raw access for loaders outside this package.
func (s *Store) ReadFile(dir, file string) ([]byte, bool) {
	p := path.Join(dir, file)
	if !s.fs.Exists(p) {
		return nil, false
	}
	raw, err := s.fs.ReadFile(p)
	if err != nil {
		s.log.Warn("read reference file", zap.String("file", p), zap.Error(err))
		return nil, false
	}
	return raw, true
}

// TTL is the lifetime of name lists and maps derived from them.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Cache returns the cache the store memoizes into.
func (s *Store) Cache() cache.Cache {
	return s.cache
}
