// internal/db/queries.go
package db

import (
	"context"
	"database/sql"
	"time"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// ThemeSnapshot is one immutable saved copy of a validated theme document.
type ThemeSnapshot struct {
	ID              string
	ThemeID         string
	UserID          string
	Name            string
	Version         string
	Document        string
	WcagLevel       string
	PerformanceTier string
	EstimatedSize   int64
	CreatedAt       time.Time
}

const snapshotColumns = `id, theme_id, user_id, name, version, document, wcag_level, performance_tier, estimated_size, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(row rowScanner) (ThemeSnapshot, error) {
	var i ThemeSnapshot
	err := row.Scan(
		&i.ID,
		&i.ThemeID,
		&i.UserID,
		&i.Name,
		&i.Version,
		&i.Document,
		&i.WcagLevel,
		&i.PerformanceTier,
		&i.EstimatedSize,
		&i.CreatedAt,
	)
	return i, err
}

const insertSnapshot = `
INSERT INTO theme_snapshots (` + snapshotColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + snapshotColumns

type InsertSnapshotParams struct {
	ID              string
	ThemeID         string
	UserID          string
	Name            string
	Version         string
	Document        string
	WcagLevel       string
	PerformanceTier string
	EstimatedSize   int64
	CreatedAt       time.Time
}

func (q *Queries) InsertSnapshot(ctx context.Context, arg InsertSnapshotParams) (ThemeSnapshot, error) {
	row := q.db.QueryRowContext(ctx, insertSnapshot,
		arg.ID,
		arg.ThemeID,
		arg.UserID,
		arg.Name,
		arg.Version,
		arg.Document,
		arg.WcagLevel,
		arg.PerformanceTier,
		arg.EstimatedSize,
		arg.CreatedAt.UTC(),
	)
	return scanSnapshot(row)
}

const getSnapshot = `
SELECT ` + snapshotColumns + `
FROM theme_snapshots
WHERE id = ? AND user_id = ?`

type GetSnapshotParams struct {
	ID     string
	UserID string
}

func (q *Queries) GetSnapshot(ctx context.Context, arg GetSnapshotParams) (ThemeSnapshot, error) {
	row := q.db.QueryRowContext(ctx, getSnapshot, arg.ID, arg.UserID)
	return scanSnapshot(row)
}

const listSnapshots = `
SELECT ` + snapshotColumns + `
FROM theme_snapshots
WHERE user_id = ?1
  AND (?2 IS NULL OR theme_id = ?2)
ORDER BY created_at DESC, rowid DESC
LIMIT ?3`

type ListSnapshotsParams struct {
	UserID  string
	ThemeID sql.NullString
	Limit   int64
}

func (q *Queries) ListSnapshots(ctx context.Context, arg ListSnapshotsParams) ([]ThemeSnapshot, error) {
	rows, err := q.db.QueryContext(ctx, listSnapshots, arg.UserID, arg.ThemeID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ThemeSnapshot{}
	for rows.Next() {
		i, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const latestSnapshot = `
SELECT ` + snapshotColumns + `
FROM theme_snapshots
WHERE user_id = ? AND theme_id = ?
ORDER BY created_at DESC, rowid DESC
LIMIT 1`

type LatestSnapshotParams struct {
	UserID  string
	ThemeID string
}

func (q *Queries) LatestSnapshot(ctx context.Context, arg LatestSnapshotParams) (ThemeSnapshot, error) {
	row := q.db.QueryRowContext(ctx, latestSnapshot, arg.UserID, arg.ThemeID)
	return scanSnapshot(row)
}

const deleteSnapshot = `
DELETE FROM theme_snapshots
WHERE id = ? AND user_id = ?`

type DeleteSnapshotParams struct {
	ID     string
	UserID string
}

func (q *Queries) DeleteSnapshot(ctx context.Context, arg DeleteSnapshotParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteSnapshot, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateSnapshotName = `
UPDATE theme_snapshots
SET name = ?, document = ?
WHERE id = ? AND user_id = ?
RETURNING ` + snapshotColumns

type UpdateSnapshotNameParams struct {
	Name     string
	Document string
	ID       string
	UserID   string
}

func (q *Queries) UpdateSnapshotName(ctx context.Context, arg UpdateSnapshotNameParams) (ThemeSnapshot, error) {
	row := q.db.QueryRowContext(ctx, updateSnapshotName, arg.Name, arg.Document, arg.ID, arg.UserID)
	return scanSnapshot(row)
}

// pruneSnapshots keeps the newest ?1 snapshots of every theme.
const pruneSnapshots = `
DELETE FROM theme_snapshots
WHERE id IN (
    SELECT id FROM (
        SELECT id, ROW_NUMBER() OVER (
            PARTITION BY theme_id
            ORDER BY created_at DESC, rowid DESC
        ) AS position
        FROM theme_snapshots
    )
    WHERE position > ?1
)`

func (q *Queries) PruneSnapshots(ctx context.Context, keepPerTheme int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, pruneSnapshots, keepPerTheme)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
