package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppptrade/tradekit/internal/data"
	"github.com/ppptrade/tradekit/internal/item"
	"github.com/ppptrade/tradekit/internal/locale"
	"github.com/ppptrade/tradekit/internal/match"
)

func writeScript(t *testing.T, dir, sub, name, src string) {
	t.Helper()
	p := filepath.Join(dir, sub)
	require.NoError(t, os.MkdirAll(p, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(p, name), []byte(src), 0o644))
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()
	writeScript(t, dir, "core", "util.lua", `
function starts_with(s, prefix)
  return string.sub(s, 1, string.len(prefix)) == prefix
end
`)
	writeScript(t, dir, "stat", "staff.lua", `
register_special("stat_staff", function(tpl, line, typ)
  if typ ~= "staff" then
    return false
  end
  if starts_with(line, "Gain ") then
    return true, 7
  end
  return false
end)

register_special("stat_flag", function(tpl, line, typ)
  return line == tpl
end)

register_special("stat_broken", function(tpl, line, typ)
  error("boom")
end)
`)
	writeScript(t, dir, "stat", "README.txt", "not a script")

	e, err := NewEngine(dir, nil)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestNewEngine_Specials(t *testing.T) {
	e := newTestEngine(t)
	assert.Equal(t, []string{"stat_broken", "stat_flag", "stat_staff"}, e.Specials())
}

func TestNewEngine_MissingDir(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "nope"), nil)
	require.NoError(t, err)
	defer e.Close()
	assert.Empty(t, e.Specials())
}

func TestNewEngine_BadScript(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "stat", "bad.lua", "register_special(")
	_, err := NewEngine(dir, nil)
	assert.Error(t, err)
}

func TestFunc(t *testing.T) {
	e := newTestEngine(t)

	ok, v := e.Func("stat_staff")("Gain # Power", "Gain 3 Power", item.Staff)
	assert.True(t, ok)
	require.NotNil(t, v)
	assert.Equal(t, 7, *v)

	ok, v = e.Func("stat_staff")("Gain # Power", "Gain 3 Power", item.Ring)
	assert.False(t, ok)
	assert.Nil(t, v)

	ok, v = e.Func("stat_flag")("Cannot be Frozen", "Cannot be Frozen", item.Ring)
	assert.True(t, ok)
	assert.Nil(t, v, "no second result means no value")

	ok, _ = e.Func("stat_broken")("x", "x", item.Ring)
	assert.False(t, ok, "lua errors decline")

	ok, _ = e.Func("stat_missing")("x", "x", item.Ring)
	assert.False(t, ok)
}

func TestInstall(t *testing.T) {
	e := newTestEngine(t)
	m, err := match.New(&locale.Config{}, nil)
	require.NoError(t, err)
	e.Install(m)

	assert.Equal(t, match.Scripted, m.SpecialCaseFor("stat_staff"))

	tpl := &data.StatTemplate{ID: "explicit.stat_staff", Text: "Gain # Power", Type: "explicit"}
	r, ok := m.Resolve(tpl, "Gain 3 Power", match.Context{ItemType: item.Staff})
	require.True(t, ok)
	require.NotNil(t, r.Value)
	assert.Equal(t, 7, *r.Value)
	assert.Same(t, tpl, r.Stat)

	_, ok = m.Resolve(tpl, "Gain 3 Power", match.Context{ItemType: item.Ring})
	assert.False(t, ok)
}
