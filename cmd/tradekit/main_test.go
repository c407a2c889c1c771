package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ppptrade/tradekit/internal/config"
	"github.com/ppptrade/tradekit/internal/persist"
	"github.com/ppptrade/tradekit/internal/watch"
)

const stats = `[
  {"id": "explicit", "label": "Explicit", "entries": [
    {"id": "explicit.stat_4220027924", "text": "+#% to Cold Resistance", "type": "explicit"}
  ]},
  {"id": "pseudo", "label": "Pseudo", "entries": [
    {"id": "pseudo.pseudo_total_cold_resistance", "text": "+#% total to Cold Resistance", "type": "pseudo"}
  ]}
]`

const ring = `Item Class: Rings
Rarity: Unique
Blackheart
Iron Ring
--------
Item Level: 70
--------
+30% to Cold Resistance
`

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "datas", "poe2")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "stats_en.json"), []byte(stats), 0o644))

	cfg := `
[game]
name = "POE2"
locale = "en"

[data]
dir = "` + filepath.ToSlash(filepath.Join(dir, "datas")) + `"
scripts_dir = "` + filepath.ToSlash(filepath.Join(dir, "scripts")) + `"

[trade]
server = "taiwan"

[logging]
level = "error"
`
	p := filepath.Join(dir, "tradekit.toml")
	require.NoError(t, os.WriteFile(p, []byte(cfg), 0o644))
	return p
}

func TestRun_Stdin(t *testing.T) {
	cfg := setup(t)
	var out bytes.Buffer
	require.NoError(t, run([]string{"-config", cfg, "-query"}, strings.NewReader(ring), &out))

	var got struct {
		Item struct {
			Game         string `json:"game"`
			Rarity       string `json:"rarity"`
			ItemName     string `json:"item_name"`
			ItemBaseName string `json:"item_base_name"`
			ItemLevel    int    `json:"item_level"`
			Stats        []struct {
				Stat struct {
					ID string `json:"id"`
				} `json:"stat"`
				Value *int `json:"value"`
			} `json:"stats"`
		} `json:"item"`
		Query struct {
			Query struct {
				Name string `json:"name"`
				Type string `json:"type"`
			} `json:"query"`
		} `json:"query"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "POE2", got.Item.Game)
	assert.Equal(t, "unique", got.Item.Rarity)
	assert.Equal(t, "Blackheart Iron Ring", got.Item.ItemName)
	assert.Equal(t, "Iron Ring", got.Item.ItemBaseName)
	assert.Equal(t, 70, got.Item.ItemLevel)
	require.Len(t, got.Item.Stats, 2)
	assert.Equal(t, "pseudo.pseudo_total_cold_resistance", got.Item.Stats[0].Stat.ID)
	assert.Equal(t, "explicit.stat_4220027924", got.Item.Stats[1].Stat.ID)
	require.NotNil(t, got.Item.Stats[1].Value)
	assert.Equal(t, 30, *got.Item.Stats[1].Value)

	assert.Equal(t, "Blackheart Iron Ring", got.Query.Query.Name, "taiwan server keeps client names")
	assert.Equal(t, "Iron Ring", got.Query.Query.Type)
}

func TestRun_NotAnItem(t *testing.T) {
	cfg := setup(t)
	var out bytes.Buffer
	require.NoError(t, run([]string{"-config", cfg}, strings.NewReader("hello world"), &out))
	assert.Empty(t, out.String())
}

func TestRun_File(t *testing.T) {
	cfg := setup(t)
	p := filepath.Join(t.TempDir(), "item.txt")
	require.NoError(t, os.WriteFile(p, []byte(ring), 0o644))

	var out bytes.Buffer
	require.NoError(t, run([]string{"-config", cfg, "-file", p}, strings.NewReader(""), &out))
	assert.Contains(t, out.String(), `"item_name": "Blackheart Iron Ring"`)
	assert.NotContains(t, out.String(), `"query"`)
}

func TestRun_Errors(t *testing.T) {
	cfg := setup(t)
	var out bytes.Buffer
	assert.Error(t, run([]string{"-config", cfg, "-recent", "5"}, strings.NewReader(""), &out), "history disabled")
	assert.Error(t, run([]string{"-config", cfg, "-watch"}, strings.NewReader(""), &out), "no watch file")
	assert.Error(t, run([]string{"-config", filepath.Join(t.TempDir(), "none.toml")}, strings.NewReader(""), &out))
	assert.Error(t, run([]string{"-bogus"}, strings.NewReader(""), &out))
}

type fakeHistory struct {
	rows    []persist.HistoryRow
	seenErr error
}

func (f *fakeHistory) Seen(_ context.Context, fingerprint string) (bool, error) {
	if f.seenErr != nil {
		return false, f.seenErr
	}
	for _, r := range f.rows {
		if r.Fingerprint == fingerprint {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeHistory) Record(_ context.Context, row persist.HistoryRow) error {
	f.rows = append(f.rows, row)
	return nil
}

func newTestApp(t *testing.T, h historyStore) (*app, *bytes.Buffer) {
	t.Helper()
	cfg, err := config.Load(setup(t))
	require.NoError(t, err)
	a, err := newApp(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.close)

	var out bytes.Buffer
	a.history = h
	a.out = json.NewEncoder(&out)
	return a, &out
}

func TestProcess_RecordsOncePerFingerprint(t *testing.T) {
	h := &fakeHistory{}
	a, out := newTestApp(t, h)
	ctx := context.Background()
	fp := watch.Fingerprint(ring)

	require.NoError(t, a.process(ctx, ring, fp))
	require.NoError(t, a.process(ctx, ring, fp))
	require.Len(t, h.rows, 1)
	assert.Equal(t, fp, h.rows[0].Fingerprint)
	assert.Equal(t, "en", h.rows[0].Locale)
	assert.Equal(t, "Blackheart Iron Ring", h.rows[0].ItemName)
	assert.Equal(t, 2, strings.Count(out.String(), `"item_name"`), "every parse is still printed")

	require.NoError(t, a.process(ctx, ring+"\n", watch.Fingerprint(ring+"\n")))
	assert.Len(t, h.rows, 2)
}

func TestProcess_HistoryLookupFails(t *testing.T) {
	h := &fakeHistory{seenErr: errors.New("connection refused")}
	a, out := newTestApp(t, h)

	require.NoError(t, a.process(context.Background(), ring, "fp"), "history errors do not fail the parse")
	assert.Empty(t, h.rows)
	assert.Contains(t, out.String(), `"item_name":"Blackheart Iron Ring"`)
}

func TestConfigPath(t *testing.T) {
	t.Setenv("TRADEKIT_CONFIG", "/etc/tradekit.toml")
	assert.Equal(t, "a.toml", configPath("a.toml"))
	assert.Equal(t, "/etc/tradekit.toml", configPath(""))
}
