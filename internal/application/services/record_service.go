package services

import (
	"context"
	"database/sql"
	"sync"

	"github.com/lqor/igorforce/internal/domain/models"
	"github.com/lqor/igorforce/internal/infrastructure/database"
	"github.com/lqor/igorforce/internal/infrastructure/persistence"
	"github.com/lqor/igorforce/pkg/errors"
	"github.com/lqor/igorforce/pkg/utils"
)

// RecordService owns schema-less record storage. Writes are deliberately
// permissive: data keys are never checked against the field catalog, and a
// renamed or deleted field silently orphans the values stored under it.
type RecordService struct {
	mu      sync.RWMutex
	db      *sql.DB
	records *persistence.RecordRepository
}

// NewRecordService creates a new RecordService
func NewRecordService(conn *database.Connection) *RecordService {
	return &RecordService{
		db:      conn.DB(),
		records: persistence.NewRecordRepository(),
	}
}

// CreateRecord inserts a record unconditionally: no schema validation of
// the data payload is performed.
func (s *RecordService) CreateRecord(ctx context.Context, objectID string, data map[string]any) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data == nil {
		data = map[string]any{}
	}
	rec := &models.Record{
		ID:       utils.GenerateID(),
		ObjectID: objectID,
		Data:     data,
	}
	if err := s.records.Insert(ctx, s.db, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// GetRecord returns a record by id
func (s *RecordService) GetRecord(ctx context.Context, id string) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.records.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.NewNotFoundError("Record", id)
	}
	return rec, nil
}

// ListRecordsByObject returns all records of an object. A deleted object
// yields an empty list.
func (s *RecordService) ListRecordsByObject(ctx context.Context, objectID string) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records.ListByObject(ctx, s.db, objectID)
}

// ListByLookup returns the records of an object whose data value under
// fieldName equals lookupValue exactly. Only string values can match;
// lookups are not indexed as first-class foreign keys, so this scans the
// object's records.
func (s *RecordService) ListByLookup(ctx context.Context, objectID, fieldName, lookupValue string) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.records.ListByObject(ctx, s.db, objectID)
	if err != nil {
		return nil, err
	}

	matched := make([]models.Record, 0)
	for _, rec := range records {
		if v, ok := rec.Data[fieldName].(string); ok && v == lookupValue {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

// UpdateRecord replaces the record's data payload wholesale (not a merge)
func (s *RecordService) UpdateRecord(ctx context.Context, id string, data map[string]any) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data == nil {
		data = map[string]any{}
	}
	rows, err := s.records.UpdateData(ctx, s.db, id, data)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, errors.NewNotFoundError("Record", id)
	}
	return s.records.GetByID(ctx, s.db, id)
}

// DeleteRecord removes a record. Records own nothing, so there is no cascade.
func (s *RecordService) DeleteRecord(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.records.Delete(ctx, s.db, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NewNotFoundError("Record", id)
	}
	return nil
}
