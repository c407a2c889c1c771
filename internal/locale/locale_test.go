package locale

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppptrade/tradekit/internal/item"
)

func TestBuiltin(t *testing.T) {
	set, err := Builtin()
	require.NoError(t, err)
	require.Equal(t, 4, set.Count())

	names := make([]string, 0, 4)
	for _, c := range set.All() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"poe1_en", "poe1_zh_tw", "poe2_en", "poe2_zh_tw"}, names)

	tw := set.Find(item.Poe2, "zh_tw")
	require.NotNil(t, tw)
	assert.Equal(t, "稀有度: ", tw.Detect)
	assert.Equal(t, "(部分)", tw.Keywords.Local)
	assert.Equal(t, MagicNameParticle, tw.MagicName.Strategy)
	assert.Equal(t, []string{"之", "的"}, tw.MagicName.Particles)
	assert.Equal(t, "parser:poe2_zh_tw", tw.Data.CacheKey)
	assert.Equal(t, "stats_tw.json", tw.Data.StatsFile)

	r, ok := tw.Rarity("傳奇")
	assert.True(t, ok)
	assert.Equal(t, item.Unique, r)

	typ, ok := tw.ItemType("細杖")
	assert.True(t, ok)
	assert.Equal(t, item.Quarterstaff, typ)

	_, ok = tw.ItemType("不存在")
	assert.False(t, ok)

	assert.Equal(t, "increased_decreased", tw.Rules.SpecialCases["stat_3639275092"])
	require.Len(t, tw.Rules.Pseudo, 4)
	assert.Equal(t, 3.0, tw.Rules.Pseudo[3].Targets[3].Ratio)

	global, ok := tw.GlobalFor(item.GenreWeapon, "stat_210067635")
	assert.True(t, ok)
	assert.Equal(t, "stat_681332047", global)
	_, ok = tw.GlobalFor(item.GenreNone, "stat_210067635")
	assert.False(t, ok)

	en := set.Find(item.Poe1, "en")
	require.NotNil(t, en)
	assert.Equal(t, "Item Class: ", en.Detect)
	assert.Equal(t, " of ", en.MagicName.Connective)
	assert.Equal(t, "staff_only", en.Rules.SpecialCases["stat_1001829678"])
	g, ok := en.Rarity("Gem")
	assert.True(t, ok)
	assert.Equal(t, item.Gem, g)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		fs   fstest.MapFS
	}{
		{
			name: "unknown game",
			fs:   fstest.MapFS{"x_en.yaml": {Data: []byte("game: D2\nlocale: en\nkeywords: {rarity: a, separator: b}\n")}},
		},
		{
			name: "unknown rarity value",
			fs: fstest.MapFS{"poe1_en.yaml": {Data: []byte(
				"game: POE1\nlocale: en\nkeywords: {rarity: a, separator: b}\nrarities: {X: legendary}\n")}},
		},
		{
			name: "missing separator",
			fs:   fstest.MapFS{"poe1_en.yaml": {Data: []byte("game: POE1\nlocale: en\nkeywords: {rarity: a}\n")}},
		},
		{
			name: "connective without token",
			fs: fstest.MapFS{"poe1_en.yaml": {Data: []byte(
				"game: POE1\nlocale: en\nkeywords: {rarity: a, separator: b}\nmagic_name: {strategy: connective}\n")}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.fs)
			assert.Error(t, err)
		})
	}
}

func TestMerge(t *testing.T) {
	base, err := Builtin()
	require.NoError(t, err)

	override, err := Load(fstest.MapFS{
		"poe1_en.yaml": {Data: []byte("game: POE1\nlocale: en\nkeywords: {rarity: 'Seltenheit: ', separator: '--'}\n")},
	})
	require.NoError(t, err)

	merged := base.Merge(override)
	assert.Equal(t, 4, merged.Count())
	c := merged.Find(item.Poe1, "en")
	require.NotNil(t, c)
	assert.Equal(t, "Seltenheit: ", c.Detect, "detect falls back to the rarity keyword")
	assert.Equal(t, MagicNameParticle, c.MagicName.Strategy)
	assert.Empty(t, c.Rules.Pseudo, "override dir has no game rule file")
}
