package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lqor/igorforce/internal/domain/models"
)

// RecordRepository persists schema-less records. The data payload is stored
// as JSON text and never validated against the field catalog.
type RecordRepository struct{}

// NewRecordRepository creates a new RecordRepository
func NewRecordRepository() *RecordRepository {
	return &RecordRepository{}
}

// Insert writes a new record
func (r *RecordRepository) Insert(ctx context.Context, q DBTX, rec *models.Record) error {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("failed to serialize record data: %w", err)
	}
	_, err = q.ExecContext(ctx,
		"INSERT INTO records (id, object_id, data) VALUES (?, ?, ?)",
		rec.ID, rec.ObjectID, string(data))
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// GetByID returns the record with the given id, or nil when absent
func (r *RecordRepository) GetByID(ctx context.Context, q DBTX, id string) (*models.Record, error) {
	row := q.QueryRowContext(ctx, "SELECT id, object_id, data FROM records WHERE id = ?", id)

	var rec models.Record
	var data string
	err := row.Scan(&rec.ID, &rec.ObjectID, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &rec.Data); err != nil {
		return nil, fmt.Errorf("failed to decode record data: %w", err)
	}
	return &rec, nil
}

// ListByObject returns all records of an object
func (r *RecordRepository) ListByObject(ctx context.Context, q DBTX, objectID string) ([]models.Record, error) {
	rows, err := q.QueryContext(ctx, "SELECT id, object_id, data FROM records WHERE object_id = ?", objectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := make([]models.Record, 0)
	for rows.Next() {
		var rec models.Record
		var data string
		if err := rows.Scan(&rec.ID, &rec.ObjectID, &data); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &rec.Data); err != nil {
			return nil, fmt.Errorf("failed to decode record data: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpdateData replaces the data payload of a record wholesale.
// Returns the number of rows touched so callers can detect a missing id.
func (r *RecordRepository) UpdateData(ctx context.Context, q DBTX, id string, data map[string]any) (int64, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize record data: %w", err)
	}
	res, err := q.ExecContext(ctx, "UPDATE records SET data = ? WHERE id = ?", string(payload), id)
	if err != nil {
		return 0, fmt.Errorf("failed to update record: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes a record. Returns the number of rows touched.
func (r *RecordRepository) Delete(ctx context.Context, q DBTX, id string) (int64, error) {
	res, err := q.ExecContext(ctx, "DELETE FROM records WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete record: %w", err)
	}
	return res.RowsAffected()
}

// DeleteByObject removes every record of an object
func (r *RecordRepository) DeleteByObject(ctx context.Context, q DBTX, objectID string) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM records WHERE object_id = ?", objectID); err != nil {
		return fmt.Errorf("failed to delete records for object: %w", err)
	}
	return nil
}
