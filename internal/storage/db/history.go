package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"hcf/internal/domain"
)

// RecordAction appends a history row. Records without an ID get a new UUID.
func (d *DB) RecordAction(rec domain.HistoryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.At.IsZero() {
		rec.At = time.Now()
	}

	var fileID sql.NullInt64
	if rec.FileID != nil {
		fileID = sql.NullInt64{Int64: int64(*rec.FileID), Valid: true}
	}

	_, err := d.Exec(`
		INSERT INTO install_history (id, game_dir, content_id, name, action, file_id, file_name, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.GameDir, rec.ContentID, rec.Name, rec.Action, fileID,
		nullString(rec.FileName), nullString(rec.Error), rec.At.UTC())
	if err != nil {
		return fmt.Errorf("recording %s of %d: %w", rec.Action, rec.ContentID, err)
	}
	return nil
}

// HistoryFilter narrows ListHistory. Zero values match everything.
type HistoryFilter struct {
	GameDir   string
	ContentID int
	Limit     int
}

// ListHistory returns history rows, newest first.
func (d *DB) ListHistory(f HistoryFilter) ([]domain.HistoryRecord, error) {
	var (
		where []string
		args  []any
	)
	if f.GameDir != "" {
		where = append(where, "game_dir = ?")
		args = append(args, f.GameDir)
	}
	if f.ContentID != 0 {
		where = append(where, "content_id = ?")
		args = append(args, f.ContentID)
	}

	query := "SELECT id, game_dir, content_id, name, action, file_id, file_name, error, created_at FROM install_history"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := d.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var out []domain.HistoryRecord
	for rows.Next() {
		var (
			rec      domain.HistoryRecord
			fileID   sql.NullInt64
			fileName sql.NullString
			errText  sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.GameDir, &rec.ContentID, &rec.Name, &rec.Action,
			&fileID, &fileName, &errText, &rec.At); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		if fileID.Valid {
			rec.FileID = domain.IntPtr(int(fileID.Int64))
		}
		rec.FileName = fileName.String
		rec.Error = errText.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
