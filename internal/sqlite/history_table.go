package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/relink/pkg/types"
)

// LogRelinkOperation appends one record to the relink log. Records are never
// updated or deleted. affected may be nil when the count is unknown.
func (s *Store) LogRelinkOperation(ctx context.Context, pattern, replacement string, affected *int) (types.RelinkOperationRecord, error) {
	opID, err := uuid.NewV7()
	if err != nil {
		return types.RelinkOperationRecord{}, fmt.Errorf("generating operation UUID v7: %w", err)
	}

	var rec types.RelinkOperationRecord
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var count sql.NullInt64
		if affected != nil {
			count = sql.NullInt64{Int64: int64(*affected), Valid: true}
		}

		res, err := tx.ExecContext(ctx,
			"INSERT INTO relink_history (operation_id, old_path_regex, new_path, affected_nodes) VALUES (?, ?, ?, ?)",
			opID.String(), pattern, replacement, count)
		if err != nil {
			return fmt.Errorf("inserting history entry: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading history id: %w", err)
		}

		row := tx.QueryRowContext(ctx, selectHistory+" WHERE id = ?", id)
		rec, err = scanHistory(row)
		return err
	})
	if err != nil {
		return types.RelinkOperationRecord{}, err
	}

	s.logger.Debug("relink operation logged",
		zap.Int64("id", rec.ID),
		zap.String("operation_id", rec.OperationID),
		zap.String("pattern", pattern))
	return rec, nil
}

// RelinkHistory returns every relink record in insertion order.
func (s *Store) RelinkHistory(ctx context.Context) ([]types.RelinkOperationRecord, error) {
	var out []types.RelinkOperationRecord
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, selectHistory+" ORDER BY id")
		if err != nil {
			return fmt.Errorf("listing history: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := scanHistory(rows)
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

const selectHistory = "SELECT id, operation_id, timestamp, old_path_regex, new_path, affected_nodes FROM relink_history"

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistory(row rowScanner) (types.RelinkOperationRecord, error) {
	var rec types.RelinkOperationRecord
	var ts string
	var count sql.NullInt64
	if err := row.Scan(&rec.ID, &rec.OperationID, &ts, &rec.Pattern, &rec.Replacement, &count); err != nil {
		return rec, fmt.Errorf("scanning history entry: %w", err)
	}
	t, err := parseTimestamp(ts)
	if err != nil {
		return rec, err
	}
	rec.Timestamp = t
	if count.Valid {
		n := int(count.Int64)
		rec.AffectedCount = &n
	}
	return rec, nil
}

func zapVersion(version string) zap.Field {
	return zap.String("version", version)
}
