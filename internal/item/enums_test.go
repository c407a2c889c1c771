package item

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppptrade/tradekit/internal/data"
)

func TestParseGame(t *testing.T) {
	g, err := ParseGame("poe2")
	require.NoError(t, err)
	assert.Equal(t, Poe2, g)

	_, err = ParseGame("diablo")
	assert.Error(t, err)
}

func TestItemTypeNames(t *testing.T) {
	for i := range itemTypeNames {
		typ := ItemType(i)
		require.NotEmpty(t, typ.String(), "item type %d has no name", i)
		back, ok := ParseItemType(typ.String())
		require.True(t, ok)
		assert.Equal(t, typ, back)
	}

	v, ok := ParseItemType("spaceship")
	assert.False(t, ok)
	assert.Equal(t, Other, v)
}

func TestGenre(t *testing.T) {
	tests := []struct {
		typ  ItemType
		want Genre
	}{
		{Claw, GenreWeapon},
		{FishingRod, GenreWeapon},
		{WarStaff, GenreWeapon},
		{Helmet, GenreArmour},
		{Boots, GenreArmour},
		{Shield, GenreNone},
		{Ring, GenreNone},
		{Other, GenreNone},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.Genre())
		})
	}
}

func TestItemJSON(t *testing.T) {
	tpl := &data.StatTemplate{ID: "explicit.stat_1", Text: "+# to Armour"}
	it := &Poe1Item{
		ItemBase: ItemBase{
			Game:         Poe1,
			Rarity:       DivinationCard,
			ItemType:     BodyArmour,
			Requirements: []Requirement{{Kind: ReqStr, Value: 10}},
			Stats:        []ItemStat{{Stat: tpl, Value: IntPtr(15)}},
		},
		Link: 4,
	}

	raw, err := json.Marshal(it)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "POE1", m["game"])
	assert.Equal(t, "divination_card", m["rarity"])
	assert.Equal(t, "body_armour", m["item_type"])
	assert.Equal(t, float64(4), m["link"])

	var i Item = it
	v, ok := i.Base().Requirement(ReqStr)
	assert.True(t, ok)
	assert.Equal(t, 10, v)

	s, ok := i.Base().Stat("stat_1")
	require.True(t, ok)
	assert.Equal(t, 15, *s.Value)
}
