package trade

import (
	"encoding/json"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppptrade/tradekit/internal/cache"
	"github.com/ppptrade/tradekit/internal/data"
	"github.com/ppptrade/tradekit/internal/item"
)

func testStore(files fstest.MapFS) *data.Store {
	return data.NewStore(data.FromFS(files), cache.NewMemory(0), 0, nil)
}

func nameFS() fstest.MapFS {
	return fstest.MapFS{
		"poe/items_tw.txt":                {Data: []byte("### 戒指\n鐵戒指\n金戒指\n")},
		"poe/items_en.txt":                {Data: []byte("### rings\nIron Ring\nGold Ring\n")},
		"poe/unique_item_names_tw.json":   {Data: []byte(`["猶豫之謎","龍牙迴旋"]`)},
		"poe/unique_item_names_eng.json":  {Data: []byte(`["Doedre's Tenure","Dragonfang's Flight"]`)},
		"poe/unique_item_bases_tw.json":   {Data: []byte(`["絲絨手套","翠玉護身符"]`)},
		"poe/unique_item_bases_eng.json":  {Data: []byte(`["Velvet Gloves","Jade Amulet"]`)},
		"poe2/items_tw.txt":               {Data: []byte("鐵戒指\n金戒指\n")},
		"poe2/items_en.txt":               {Data: []byte("Iron Ring\n")},
		"poe2/unique_item_names_tw.json":  {Data: []byte(`not json`)},
		"poe2/unique_item_names_eng.json": {Data: []byte(`[]`)},
		"poe2/unique_item_bases_tw.json":  {Data: []byte(`[]`)},
		"poe2/unique_item_bases_eng.json": {Data: []byte(`[]`)},
	}
}

func TestNameMapper_Base(t *testing.T) {
	n := NewNameMapper(testStore(nameFS()), "poe", nil)

	en, ok := n.Base("金戒指")
	require.True(t, ok)
	assert.Equal(t, "Gold Ring", en)

	_, ok = n.Base("不存在")
	assert.False(t, ok)
}

func TestNameMapper_BaseLengthMismatch(t *testing.T) {
	n := NewNameMapper(testStore(nameFS()), "poe2", nil)
	en, ok := n.Base("金戒指")
	require.True(t, ok)
	assert.Equal(t, "金戒指", en, "lists that cannot be aligned map names to themselves")
}

func TestNameMapper_Missing(t *testing.T) {
	n := NewNameMapper(testStore(fstest.MapFS{}), "poe", nil)
	_, ok := n.Base("鐵戒指")
	assert.False(t, ok)
	_, _, ok = n.Unique("猶豫之謎", "絲絨手套")
	assert.False(t, ok)
}

func TestNameMapper_Unique(t *testing.T) {
	n := NewNameMapper(testStore(nameFS()), "poe", nil)
	name, base, ok := n.Unique("猶豫之謎", "絲絨手套")
	require.True(t, ok)
	assert.Equal(t, "Doedre's Tenure", name)
	assert.Equal(t, "Velvet Gloves", base)

	_, _, ok = n.Unique("猶豫之謎", "不存在")
	assert.False(t, ok)

	bad := NewNameMapper(testStore(nameFS()), "poe2", nil)
	_, _, ok = bad.Unique("x", "y")
	assert.False(t, ok, "undecodable list")
}

func tpl(id string) *data.StatTemplate {
	typ := id[:len(id)-len(data.CanonicalID(id))-1]
	return &data.StatTemplate{ID: id, Text: id, Type: typ}
}

func poe1Rare() *item.Poe1Item {
	return &item.Poe1Item{
		ItemBase: item.ItemBase{
			Game:         item.Poe1,
			Rarity:       item.Rare,
			ItemName:     "末日迴圈 鐵戒指",
			ItemBaseName: "鐵戒指",
			ItemType:     item.Ring,
			ItemLevel:    75,
			Corrupted:    true,
			Stats: []item.ItemStat{
				{Stat: tpl("pseudo.pseudo_total_life"), Value: item.IntPtr(40)},
				{Stat: tpl("explicit.stat_3299347043"), Value: item.IntPtr(40)},
				{Stat: tpl("explicit.stat_2223678961"), OptionID: item.IntPtr(2)},
				{Stat: tpl("explicit.stat_flag")},
			},
		},
		Link: 0,
	}
}

func TestNewRequest(t *testing.T) {
	req := NewRequest(poe1Rare(), International)
	assert.Equal(t, DefaultTradeType, req.TradeType)
	assert.Equal(t, Yes, req.Corrupted)
	assert.True(t, req.FilterItemLevel)
	require.NotNil(t, req.ItemLevelMin)
	assert.Equal(t, 75, *req.ItemLevelMin)
	assert.False(t, req.FilterItemBase)
	assert.False(t, req.FilterLink)

	require.Len(t, req.Stats, 4)
	assert.True(t, req.Stats[0].Disabled, "pseudo stats start disabled")
	assert.False(t, req.Stats[1].Disabled)
	assert.Equal(t, 40, *req.Stats[1].Min)
	assert.Nil(t, req.Stats[2].Min)
	assert.Equal(t, 2, *req.Stats[2].OptionID)
	assert.Nil(t, req.Stats[3].Min)
}

func TestBuildSearchBody_Rare(t *testing.T) {
	it := poe1Rare()
	req := NewRequest(it, Taiwan)
	req.CollapseByAccount = true

	body, err := BuildSearchBody(req, it, nil)
	require.NoError(t, err)

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))

	q := got["query"].(map[string]any)
	assert.Equal(t, "online", q["status"].(map[string]any)["option"])
	assert.NotContains(t, q, "name")
	assert.NotContains(t, q, "type", "rare items do not filter on base by default")

	stats := q["stats"].([]any)[0].(map[string]any)
	assert.Equal(t, "and", stats["type"])
	filters := stats["filters"].([]any)
	require.Len(t, filters, 4)
	life := filters[1].(map[string]any)
	assert.Equal(t, "explicit.stat_3299347043", life["id"])
	assert.Equal(t, map[string]any{"min": float64(40)}, life["value"])
	assert.Equal(t, map[string]any{"option": float64(2)}, filters[2].(map[string]any)["value"])
	assert.NotContains(t, filters[3].(map[string]any), "value")

	f := q["filters"].(map[string]any)
	typ := f["type_filters"].(map[string]any)["filters"].(map[string]any)
	assert.Equal(t, "rare", typ["rarity"].(map[string]any)["option"])
	assert.Equal(t, "accessory.ring", typ["category"].(map[string]any)["option"])

	misc := f["misc_filters"].(map[string]any)["filters"].(map[string]any)
	assert.Equal(t, "true", misc["corrupted"].(map[string]any)["option"])
	assert.Equal(t, map[string]any{"min": float64(75)}, misc["ilvl"])
	assert.NotContains(t, misc, "foulborn_item")

	assert.NotContains(t, f, "socket_filters")
	trade := f["trade_filters"].(map[string]any)["filters"].(map[string]any)
	assert.Equal(t, "priced", trade["sale_type"].(map[string]any)["option"])
	assert.Equal(t, "true", trade["collapse"].(map[string]any)["option"])

	assert.Equal(t, "asc", got["sort"].(map[string]any)["price"])
}

func TestBuildSearchBody_BaseTranslation(t *testing.T) {
	names := NewNameMapper(testStore(nameFS()), "poe", nil)
	it := &item.Poe1Item{
		ItemBase: item.ItemBase{Game: item.Poe1, Rarity: item.Normal, ItemName: "鐵戒指", ItemBaseName: "鐵戒指", ItemType: item.Ring},
		Link:     5,
	}
	req := NewRequest(it, International)
	require.True(t, req.FilterItemBase)
	req.Foulborn = No

	body, err := BuildSearchBody(req, it, names)
	require.NoError(t, err)
	assert.Equal(t, "Iron Ring", body.Query.Type)
	assert.Empty(t, body.Query.Name)
	assert.Nil(t, body.Query.Stats)
	require.NotNil(t, body.Query.Filters.Socket)
	assert.Equal(t, ValueRange{Min: item.IntPtr(5)}, body.Query.Filters.Socket.Filters["links"])
	assert.Equal(t, OptionValue{Option: "false"}, body.Query.Filters.Misc.Filters["foulborn_item"])
	assert.NotContains(t, body.Query.Filters.Misc.Filters, "ilvl")

	req.Server = Taiwan
	body, err = BuildSearchBody(req, it, names)
	require.NoError(t, err)
	assert.Equal(t, "鐵戒指", body.Query.Type)
}

func TestBuildSearchBody_Unique(t *testing.T) {
	names := NewNameMapper(testStore(nameFS()), "poe", nil)
	it := &item.Poe1Item{ItemBase: item.ItemBase{
		Game: item.Poe1, Rarity: item.Unique, ItemName: "猶豫之謎", ItemBaseName: "絲絨手套", ItemType: item.Gloves,
	}}
	body, err := BuildSearchBody(NewRequest(it, International), it, names)
	require.NoError(t, err)
	assert.Equal(t, "Doedre's Tenure", body.Query.Name)
	assert.Equal(t, "Velvet Gloves", body.Query.Type)
	assert.Equal(t, OptionValue{Option: "armour.gloves"}, body.Query.Filters.Type.Filters["category"])

	it.ItemName = "不存在"
	_, err = BuildSearchBody(NewRequest(it, International), it, names)
	assert.ErrorIs(t, err, ErrUniqueNamesUnavailable)
}

func TestBuildSearchBody_Poe2RuneSockets(t *testing.T) {
	it := &item.Poe2Item{
		ItemBase:    item.ItemBase{Game: item.Poe2, Rarity: item.Magic, ItemType: item.Quarterstaff, ItemLevel: 80},
		RuneSockets: 2,
	}
	req := NewRequest(it, Taiwan)
	req.Corrupted = Any
	req.Foulborn = Yes
	body, err := BuildSearchBody(req, it, nil)
	require.NoError(t, err)
	require.NotNil(t, body.Query.Filters.Equipment)
	assert.Equal(t, ValueRange{Min: item.IntPtr(2)}, body.Query.Filters.Equipment.Filters["rune_sockets"])
	assert.Nil(t, body.Query.Filters.Socket)
	assert.NotContains(t, body.Query.Filters.Misc.Filters, "corrupted")
	assert.NotContains(t, body.Query.Filters.Misc.Filters, "foulborn_item", "game A only")
}

func TestParseServer(t *testing.T) {
	s, err := ParseServer("TW")
	require.NoError(t, err)
	assert.Equal(t, Taiwan, s)
	s, err = ParseServer("")
	require.NoError(t, err)
	assert.Equal(t, International, s)
	_, err = ParseServer("mars")
	assert.Error(t, err)
}
