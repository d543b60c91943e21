package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"worksim/internal/domain"
	"worksim/internal/logger"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnknownTable = errors.New("unknown table")
)

// AppendResult counts what happened to each record of one Append call.
// Skipped records already existed; failed ones broke a constraint.
type AppendResult struct {
	Table    string `json:"table"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
}

// Repo is the SQLite store.
type Repo struct {
	DB  *sql.DB
	Log zerolog.Logger
}

func New(db *sql.DB) Repo {
	return Repo{DB: db, Log: logger.Logger}
}

// KnownTable reports whether table is one of the generated tables or the
// provenance log.
func KnownTable(table string) bool {
	if table == domain.ProvenanceTable {
		return true
	}
	for _, t := range domain.Tables {
		if t == table {
			return true
		}
	}
	return false
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c != '_' && (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// insertSQL builds the insert-or-skip statement for table. placeholder maps
// a 1-based argument position to its driver syntax.
func insertSQL(table string, columns []string, placeholder func(int) string) (string, error) {
	if !KnownTable(table) {
		return "", fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("append %s: no columns", table)
	}
	marks := make([]string, len(columns))
	for i, c := range columns {
		if !isIdent(c) {
			return "", fmt.Errorf("append %s: bad column %q", table, c)
		}
		marks[i] = placeholder(i + 1)
	}
	return fmt.Sprintf(`INSERT INTO %s(%s) VALUES (%s) ON CONFLICT DO NOTHING`,
		table, strings.Join(columns, ","), strings.Join(marks, ",")), nil
}

// Append inserts rows into table inside one transaction. Rows that collide
// with existing keys are skipped; rows rejected by other constraints are
// logged and counted without aborting the batch.
func (r Repo) Append(ctx context.Context, table string, columns []string, rows [][]any) (AppendResult, error) {
	res := AppendResult{Table: table}
	query, err := insertSQL(table, columns, func(int) string { return "?" })
	if err != nil {
		return res, err
	}
	if len(rows) == 0 {
		return res, nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin %s: %w", table, err)
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return res, fmt.Errorf("prepare %s: %w", table, err)
	}
	defer stmt.Close()

	for i, row := range rows {
		out, err := stmt.ExecContext(ctx, row...)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.Failed++
			r.Log.Debug().Err(err).Str("table", table).Int("row", i).Msg("record rejected")
			continue
		}
		if n, _ := out.RowsAffected(); n == 0 {
			res.Skipped++
		} else {
			res.Inserted++
		}
	}
	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("commit %s: %w", table, err)
	}
	return res, nil
}

// TableCounts returns the row count of every known table.
func (r Repo) TableCounts(ctx context.Context) (map[string]int, error) {
	return tableCounts(ctx, func(ctx context.Context, query string) (int, error) {
		var n int
		err := r.DB.QueryRowContext(ctx, query).Scan(&n)
		return n, err
	})
}

// Page returns up to limit rows of table in insertion order.
func (r Repo) Page(ctx context.Context, table string, limit, offset int) ([]map[string]any, error) {
	if !KnownTable(table) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	rows, err := r.DB.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s ORDER BY rowid LIMIT ? OFFSET ?`, table), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	res := []map[string]any{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				vals[i] = string(b)
			}
			rec[c] = vals[i]
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// LatestProvenance returns the provenance rows of the most recent batch.
func (r Repo) LatestProvenance(ctx context.Context) ([]domain.Provenance, error) {
	rows, err := r.DB.QueryContext(ctx, latestProvenanceSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Provenance
	for rows.Next() {
		var p domain.Provenance
		var ts string
		if err := rows.Scan(&p.BatchID, &p.EntityType, &p.SourceStrategy, &p.RowCount, &ts); err != nil {
			return nil, err
		}
		if p.Timestamp, err = time.Parse(domain.TimestampLayout, ts); err != nil {
			return nil, fmt.Errorf("provenance timestamp %q: %w", ts, err)
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sortProvenance(res)
}

// Consistency runs the stored-data checks.
func (r Repo) Consistency(ctx context.Context) ([]Check, error) {
	return runChecks(ctx, func(ctx context.Context, query string) (int, error) {
		var n int
		err := r.DB.QueryRowContext(ctx, query).Scan(&n)
		return n, err
	})
}

const latestProvenanceSQL = `SELECT batch_id, entity_type, source_strategy, row_count, timestamp FROM _meta_provenance
WHERE batch_id = (SELECT batch_id FROM _meta_provenance ORDER BY timestamp DESC, batch_id DESC LIMIT 1)`

func tableCounts(ctx context.Context, count func(context.Context, string) (int, error)) (map[string]int, error) {
	res := make(map[string]int, len(domain.Tables)+1)
	for _, table := range append(append([]string{}, domain.Tables...), domain.ProvenanceTable) {
		n, err := count(ctx, `SELECT COUNT(*) FROM `+table)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		res[table] = n
	}
	return res, nil
}

// sortProvenance orders one batch by append order.
func sortProvenance(ps []domain.Provenance) ([]domain.Provenance, error) {
	if len(ps) == 0 {
		return nil, ErrNotFound
	}
	order := make(map[string]int, len(domain.Tables))
	for i, t := range domain.Tables {
		order[t] = i
	}
	sort.SliceStable(ps, func(i, j int) bool { return order[ps[i].EntityType] < order[ps[j].EntityType] })
	return ps, nil
}
