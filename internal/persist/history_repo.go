package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ppptrade/tradekit/internal/item"
)

// StatRow is the stored form of one resolved stat.
type StatRow struct {
	ID       string `json:"id"`
	Value    *int   `json:"value,omitempty"`
	OptionID *int   `json:"option_id,omitempty"`
}

// HistoryRow is one parsed clipboard item.
type HistoryRow struct {
	ID          int64
	Fingerprint string
	Game        string
	Locale      string
	Rarity      string
	ItemName    string
	ItemBase    string
	ItemType    string
	ItemLevel   int
	Stats       []StatRow
	ParsedAt    time.Time
}

// NewHistoryRow flattens a parsed item for storage.
func NewHistoryRow(it item.Item, locale, fingerprint string) HistoryRow {
	b := it.Base()
	row := HistoryRow{
		Fingerprint: fingerprint,
		Game:        b.Game.String(),
		Locale:      locale,
		Rarity:      b.Rarity.String(),
		ItemName:    b.ItemName,
		ItemBase:    b.ItemBaseName,
		ItemType:    b.ItemType.String(),
		ItemLevel:   b.ItemLevel,
		Stats:       make([]StatRow, 0, len(b.Stats)),
	}
	for _, s := range b.Stats {
		if s.Stat == nil {
			continue
		}
		row.Stats = append(row.Stats, StatRow{ID: s.Stat.ID, Value: s.Value, OptionID: s.OptionID})
	}
	return row
}

type HistoryRepo struct {
	db *DB
}

func NewHistoryRepo(db *DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// Record inserts one row.
func (r *HistoryRepo) Record(ctx context.Context, row HistoryRow) error {
	return r.RecordBatch(ctx, []HistoryRow{row})
}

// RecordBatch inserts rows in a single transaction.
func (r *HistoryRepo) RecordBatch(ctx context.Context, rows []HistoryRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("history begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, row := range rows {
		stats, err := json.Marshal(row.Stats)
		if err != nil {
			return fmt.Errorf("history stats: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO parse_history (fingerprint, game, locale, rarity, item_name, item_base, item_type, item_level, stats)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			row.Fingerprint, row.Game, row.Locale, row.Rarity, row.ItemName, row.ItemBase,
			row.ItemType, row.ItemLevel, stats,
		); err != nil {
			return fmt.Errorf("history insert: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("history commit: %w", err)
	}
	return nil
}

// Recent returns the latest n rows, newest first.
func (r *HistoryRepo) Recent(ctx context.Context, n int) ([]HistoryRow, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, fingerprint, game, locale, rarity, item_name, item_base, item_type, item_level, stats, parsed_at
		 FROM parse_history ORDER BY parsed_at DESC, id DESC LIMIT $1`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("history query: %w", err)
	}
	defer rows.Close()

	var out []HistoryRow
	for rows.Next() {
		var (
			row   HistoryRow
			stats []byte
		)
		if err := rows.Scan(
			&row.ID, &row.Fingerprint, &row.Game, &row.Locale, &row.Rarity,
			&row.ItemName, &row.ItemBase, &row.ItemType, &row.ItemLevel, &stats, &row.ParsedAt,
		); err != nil {
			return nil, fmt.Errorf("history scan: %w", err)
		}
		if err := json.Unmarshal(stats, &row.Stats); err != nil {
			return nil, fmt.Errorf("history stats of row %d: %w", row.ID, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Seen reports whether a fingerprint was recorded before.
func (r *HistoryRepo) Seen(ctx context.Context, fingerprint string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM parse_history WHERE fingerprint = $1)`, fingerprint,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("history lookup: %w", err)
	}
	return exists, nil
}
