package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppptrade/tradekit/internal/data"
)

func TestLinkCount(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"R-G-B", 4},
		{"R-G-B W", 4},
		{"R G B", 2},
		{"R-G-B-G-R-W", 7},
		{"", 0},
		{"   ", 0},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			assert.Equal(t, c.want, LinkCount(c.in))
		})
	}
}

func TestRuneSocketCount(t *testing.T) {
	assert.Equal(t, 3, RuneSocketCount("S S S"))
	assert.Equal(t, 1, RuneSocketCount("S"))
	assert.Equal(t, 0, RuneSocketCount(""))
}

func TestIntField(t *testing.T) {
	v, err := intField("item level", "Item Level: 84", "Item Level: ")
	require.NoError(t, err)
	assert.Equal(t, 84, v)

	v, err = intField("gem level", "Level: 20 (Max)", "Level: ")
	require.NoError(t, err)
	assert.Equal(t, 20, v)

	_, err = intField("item level", "Item Level: lots", "Item Level: ")
	assert.ErrorIs(t, err, ErrMalformedField)
}

func TestSplitConnective(t *testing.T) {
	bases := data.NewBaseNames([]string{"Astral Plate", "Iron Ring", "Iron Sword"})
	cases := []struct {
		name string
		want string
	}{
		{"Flaming Iron Sword of the Whale", "Iron Sword"},
		{"Glowing Astral Plate", "Astral Plate"},
		{"Iron Ring of Ice", "Iron Ring"},
		{"Astral Plate", "Astral Plate"},
		{"Unknown Thing of Fire", "Unknown Thing of Fire"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, SplitConnective(c.name, " of ", bases))
		})
	}
}

func TestSplitParticle(t *testing.T) {
	particles := []string{"之", "的"}
	assert.Equal(t, "鐵戒指", SplitParticle("燃燒的鐵戒指", particles))
	assert.Equal(t, "鐵戒指", SplitParticle("巨鯨之燃燒的鐵戒指", particles), "rightmost particle wins")
	assert.Equal(t, "鐵戒指", SplitParticle("鐵戒指", particles))
	assert.Equal(t, "燃燒的", SplitParticle("燃燒的", particles), "nothing follows the particle")
}

func TestFlaskBase(t *testing.T) {
	assert.Equal(t, "Quicksilver Flask", flaskBase("Experimenter's Quicksilver Flask of Adrenaline", " of "))
	assert.Equal(t, "Flask of Adrenaline", flaskBase("Flask of Adrenaline", " of "))
	assert.Equal(t, "Seething Divine Life Flask", flaskBase("Seething Divine Life Flask", " of "))
}
