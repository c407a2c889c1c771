package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/ppptrade/tradekit/internal/item"
	"github.com/ppptrade/tradekit/internal/match"
)

// Engine wraps a single gopher-lua VM holding scripted stat special cases.
// Scripts call register_special(canonical_id, fn) while loading; fn is
// later called as fn(template_text, line, item_type) and returns
// matched, value.
type Engine struct {
	mu       sync.Mutex // the VM is not goroutine-safe
	vm       *lua.LState
	specials map[string]*lua.LFunction
	log      *zap.Logger
}

// NewEngine creates a Lua engine and loads every script under
// <scriptsDir>/core and <scriptsDir>/stat. Missing directories are skipped.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState()

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, specials: make(map[string]*lua.LFunction), log: log}
	vm.SetGlobal("register_special", vm.NewFunction(e.registerSpecial))

	// helpers first, then the stat scripts using them
	for _, sub := range []string{"core", "stat"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory, in name order.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// registerSpecial is the Lua-facing register_special(canonical_id, fn).
func (e *Engine) registerSpecial(L *lua.LState) int {
	id := L.CheckString(1)
	fn := L.CheckFunction(2)
	if _, dup := e.specials[id]; dup {
		e.log.Warn("lua special case registered twice, last one wins", zap.String("stat", id))
	}
	e.specials[id] = fn
	return 0
}

// Specials returns the canonical ids with a scripted special case, sorted.
func (e *Engine) Specials() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.specials))
	for id := range e.specials {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Install registers every scripted special case with m.
func (e *Engine) Install(m *match.Matcher) {
	for _, id := range e.Specials() {
		m.RegisterScript(id, e.Func(id))
	}
}

// Func returns a match.ScriptFunc calling the script registered for id.
// A missing script, a Lua error or a non-boolean first result all decline.
func (e *Engine) Func(id string) match.ScriptFunc {
	return func(templateText, line string, typ item.ItemType) (bool, *int) {
		return e.call(id, templateText, line, typ)
	}
}

func (e *Engine) call(id, templateText, line string, typ item.ItemType) (bool, *int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fn, ok := e.specials[id]
	if !ok {
		return false, nil
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    2,
		Protect: true,
	}, lua.LString(templateText), lua.LString(line), lua.LString(typ.String())); err != nil {
		e.log.Error("lua special case error", zap.String("stat", id), zap.Error(err))
		return false, nil
	}

	matched := e.vm.Get(-2)
	value := e.vm.Get(-1)
	e.vm.Pop(2)

	if matched != lua.LTrue {
		return false, nil
	}
	n, ok := value.(lua.LNumber)
	if !ok {
		return true, nil
	}
	return true, item.IntPtr(int(n))
}

// Close releases the VM.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vm.Close()
}
