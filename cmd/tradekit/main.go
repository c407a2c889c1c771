package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppptrade/tradekit/internal/cache"
	"github.com/ppptrade/tradekit/internal/config"
	"github.com/ppptrade/tradekit/internal/data"
	"github.com/ppptrade/tradekit/internal/item"
	"github.com/ppptrade/tradekit/internal/locale"
	"github.com/ppptrade/tradekit/internal/parser"
	"github.com/ppptrade/tradekit/internal/persist"
	"github.com/ppptrade/tradekit/internal/scripting"
	"github.com/ppptrade/tradekit/internal/trade"
	"github.com/ppptrade/tradekit/internal/watch"
)

const defaultConfigPath = "config/tradekit.toml"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	file       string
	watch      bool
	query      bool
	recent     int
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("tradekit", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "config file (default $TRADEKIT_CONFIG or "+defaultConfigPath+")")
	fs.StringVar(&o.file, "file", "", "item text file, - for stdin; with -watch, the file to poll")
	fs.BoolVar(&o.watch, "watch", false, "poll the clipboard file and parse every new text")
	fs.BoolVar(&o.query, "query", false, "also print the trade search body")
	fs.IntVar(&o.recent, "recent", 0, "print the last N parsed items from history and exit")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	return o, nil
}

func configPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if p := os.Getenv("TRADEKIT_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}
	return ""
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	// 1. Load config
	cfg, err := config.Load(configPath(opts.configPath))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Optional parse history
	var history *persist.HistoryRepo
	if cfg.History.Enabled {
		dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		db, err := persist.NewDB(dbCtx, cfg.History, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		err = db.Migrate(dbCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		history = persist.NewHistoryRepo(db)
	}
	if opts.recent > 0 {
		if history == nil {
			return errors.New("-recent needs [history] enabled = true")
		}
		return printRecent(ctx, history, opts.recent, stdout)
	}

	// 4. Reference data, locales, parsers
	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.close()
	if history != nil { // a nil *HistoryRepo must not become a non-nil interface
		a.history = history
	}
	a.query = opts.query
	a.out = json.NewEncoder(stdout)
	a.out.SetIndent("", "  ")

	// 5. One-shot or watch mode
	if opts.watch {
		path := opts.file
		if path == "" {
			path = cfg.Watch.File
		}
		if path == "" || path == "-" {
			return errors.New("watch mode needs a file: -file or [watch] file")
		}
		w := watch.New(watch.FileSource{Path: path}, cfg.Watch.Interval, a.handle, log)
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		log.Info("watcher stopped")
		return nil
	}

	text, err := readInput(opts.file, stdin)
	if err != nil {
		return err
	}
	return a.process(ctx, text, watch.Fingerprint(text))
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

// historyStore is the part of persist.HistoryRepo the app writes through.
type historyStore interface {
	Seen(ctx context.Context, fingerprint string) (bool, error)
	Record(ctx context.Context, row persist.HistoryRow) error
}

type app struct {
	game     item.Game
	selector *parser.Selector
	names    *trade.NameMapper
	server   trade.Server
	engine   *scripting.Engine
	history  historyStore
	query    bool
	out      *json.Encoder
	log      *zap.Logger
}

func newApp(cfg *config.Config, log *zap.Logger) (*app, error) {
	set, err := locale.Builtin()
	if err != nil {
		return nil, fmt.Errorf("load locale tables: %w", err)
	}
	if cfg.Data.TablesDir != "" {
		extra, err := locale.Load(os.DirFS(cfg.Data.TablesDir))
		if err != nil {
			return nil, fmt.Errorf("load locale tables %s: %w", cfg.Data.TablesDir, err)
		}
		set = set.Merge(extra)
	}
	log.Info("locale tables loaded", zap.Int("locales", set.Count()))

	server, err := trade.ParseServer(cfg.Trade.Server)
	if err != nil {
		return nil, err
	}

	// dictionaries and base names never expire; cache_ttl bounds the name maps
	store := data.NewStore(data.DirFS{Root: cfg.Data.Dir}, cache.NewMemory(0), cfg.Data.CacheTTL, log)
	sel, parsers, err := parser.Build(set, store, log)
	if err != nil {
		return nil, fmt.Errorf("build parsers: %w", err)
	}

	engine, err := scripting.NewEngine(cfg.Data.ScriptsDir, log)
	if err != nil {
		return nil, fmt.Errorf("scripting: %w", err)
	}
	for _, p := range parsers {
		engine.Install(p.Matcher())
	}
	if n := len(engine.Specials()); n > 0 {
		log.Info("lua special cases installed", zap.Int("stats", n))
	}

	a := &app{
		game:     cfg.GameID(),
		selector: sel,
		server:   server,
		engine:   engine,
		log:      log,
	}
	if lc := set.Find(a.game, cfg.Game.Locale); lc != nil {
		a.names = trade.NewNameMapper(store, lc.Data.Dir, log)
	} else {
		log.Warn("configured locale has no table, names are not translated",
			zap.String("game", a.game.String()), zap.String("locale", cfg.Game.Locale))
	}
	return a, nil
}

func (a *app) close() {
	a.engine.Close()
}

type result struct {
	Item  item.Item         `json:"item"`
	Query *trade.SearchBody `json:"query,omitempty"`
}

// handle is the watcher callback; failures are logged and watching goes on.
func (a *app) handle(ctx context.Context, text, fingerprint string) {
	if err := a.process(ctx, text, fingerprint); err != nil {
		a.log.Warn("parse failed", zap.String("fingerprint", fingerprint), zap.Error(err))
	}
}

func (a *app) process(ctx context.Context, text, fingerprint string) error {
	p := a.selector.Select(text, a.game)
	if p == nil {
		a.log.Info("clipboard text is not an item", zap.String("game", a.game.String()))
		return nil
	}
	it, err := p.Parse(text)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if it == nil {
		a.log.Info("clipboard text is not an item", zap.String("game", a.game.String()))
		return nil
	}

	res := result{Item: it}
	if a.query {
		body, err := trade.BuildSearchBody(trade.NewRequest(it, a.server), it, a.names)
		if err != nil {
			return fmt.Errorf("trade query: %w", err)
		}
		res.Query = body
	}
	if err := a.out.Encode(res); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	if a.history != nil {
		a.record(ctx, p, it, fingerprint)
	}
	return nil
}

// record stores a parsed item once per fingerprint. History failures never
// fail the parse.
func (a *app) record(ctx context.Context, p parser.Parser, it item.Item, fingerprint string) {
	seen, err := a.history.Seen(ctx, fingerprint)
	if err != nil {
		a.log.Warn("history lookup failed", zap.Error(err))
		return
	}
	if seen {
		a.log.Debug("item already in history", zap.String("fingerprint", fingerprint))
		return
	}
	loc := ""
	if lp, ok := p.(*parser.LineParser); ok {
		loc = lp.Config().Locale
	}
	if err := a.history.Record(ctx, persist.NewHistoryRow(it, loc, fingerprint)); err != nil {
		a.log.Warn("history record failed", zap.Error(err))
	}
}

func printRecent(ctx context.Context, repo *persist.HistoryRepo, n int, out io.Writer) error {
	rows, err := repo.Recent(ctx, n)
	if err != nil {
		return err
	}
	for _, r := range rows {
		fmt.Fprintf(out, "%s  %-5s %-9s %-28s %s (ilvl %d, %d stats)\n",
			r.ParsedAt.Local().Format("2006-01-02 15:04:05"), r.Game, r.Rarity, r.ItemName, r.ItemBase,
			r.ItemLevel, len(r.Stats))
	}
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	// stdout carries the JSON results
	zapCfg.OutputPaths = []string{"stderr"}

	return zapCfg.Build()
}
