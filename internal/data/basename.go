package data

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/traditionalchinese"
)

// commentPrefix marks section headers in the base-name lists.
const commentPrefix = "###"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BaseNames is the set of known base item names for one (game, locale).
type BaseNames struct {
	names map[string]struct{}
	order []string
}

// NewBaseNames builds a set from names, trimming each and skipping blanks
// and comment lines.
func NewBaseNames(names []string) *BaseNames {
	b := &BaseNames{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || strings.HasPrefix(n, commentPrefix) {
			continue
		}
		if _, dup := b.names[n]; dup {
			continue
		}
		b.names[n] = struct{}{}
		b.order = append(b.order, n)
	}
	return b
}

// Contains reports whether name is a known base.
func (b *BaseNames) Contains(name string) bool {
	if b == nil {
		return false
	}
	_, ok := b.names[name]
	return ok
}

// Count returns the number of distinct names.
func (b *BaseNames) Count() int {
	if b == nil {
		return 0
	}
	return len(b.names)
}

// List returns the names in file order, duplicates and comments removed.
func (b *BaseNames) List() []string {
	if b == nil {
		return nil
	}
	return b.order
}

// ReadNameList decodes a newline separated name list. Files that are not
// valid UTF-8 are taken to be Big5, the encoding of older zh-TW exports.
func ReadNameList(raw []byte) ([]string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		dec, err := traditionalchinese.Big5.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("decode big5: %w", err)
		}
		raw = dec
	}
	text := strings.ReplaceAll(string(raw), "\r", "")
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}
		out = append(out, line)
	}
	return out, nil
}

// LoadBaseNames reads a base-name list. A missing file yields an empty set.
func LoadBaseNames(fsys FS, path string) (*BaseNames, error) {
	if !fsys.Exists(path) {
		return NewBaseNames(nil), nil
	}
	raw, err := fsys.ReadFile(path)
	if err != nil {
		if isNotExist(err) {
			return NewBaseNames(nil), nil
		}
		return nil, fmt.Errorf("read base names %s: %w", path, err)
	}
	names, err := ReadNameList(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewBaseNames(names), nil
}
