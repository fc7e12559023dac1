package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/lqor/igorforce/internal/domain/models"
	"github.com/lqor/igorforce/internal/infrastructure/database"
	"github.com/lqor/igorforce/internal/infrastructure/persistence"
	"github.com/lqor/igorforce/pkg/constants"
	"github.com/lqor/igorforce/pkg/errors"
	"github.com/lqor/igorforce/pkg/utils"
)

// CatalogService owns the object and field catalog: creation and deletion of
// object types, field CRUD with append-order numbering, and the cascade that
// removes an object's fields and records atomically.
type CatalogService struct {
	mu      sync.RWMutex
	db      *sql.DB
	tm      *persistence.TransactionManager
	objects *persistence.ObjectRepository
	fields  *persistence.FieldRepository
	records *persistence.RecordRepository
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(conn *database.Connection) *CatalogService {
	return &CatalogService{
		db:      conn.DB(),
		tm:      persistence.NewTransactionManager(conn),
		objects: persistence.NewObjectRepository(),
		fields:  persistence.NewFieldRepository(),
		records: persistence.NewRecordRepository(),
	}
}

// CreateObjectInput carries the arguments for creating a custom object
type CreateObjectInput struct {
	Name        string  `json:"name"`
	Label       string  `json:"label"`
	PluralLabel string  `json:"plural_label"`
	Icon        *string `json:"icon,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CreateObject creates a custom object and, atomically with it, its
// mandatory Name field. The stored API name is derived from the supplied
// name (whitespace runs to underscores, custom suffix appended).
func (s *CatalogService) CreateObject(ctx context.Context, input CreateObjectInput) (*models.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.Name == "" {
		return nil, errors.NewValidationError("name", "Object name is required")
	}
	if input.Label == "" {
		return nil, errors.NewValidationError("label", "Object label is required")
	}
	if input.PluralLabel == "" {
		return nil, errors.NewValidationError("plural_label", "Object plural label is required")
	}

	apiName := utils.DeriveAPIName(input.Name)
	icon := constants.DefaultObjectIcon
	if input.Icon != nil && *input.Icon != "" {
		icon = *input.Icon
	}

	obj := &models.Object{
		ID:          utils.GenerateID(),
		Name:        apiName,
		Label:       input.Label,
		PluralLabel: input.PluralLabel,
		IsCustom:    true,
		Icon:        icon,
		Description: input.Description,
	}
	nameField := &models.Field{
		ID:          utils.GenerateID(),
		ObjectID:    obj.ID,
		APIName:     constants.NameFieldAPIName,
		Label:       constants.NameFieldLabel,
		Type:        constants.FieldTypeText,
		Required:    true,
		IsNameField: true,
		IsCustom:    false,
		SortOrder:   0,
	}

	err := s.tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		existing, err := s.objects.GetByName(ctx, tx, apiName)
		if err != nil {
			return err
		}
		if existing != nil {
			return errors.NewConflictError("Object", "name", apiName)
		}
		if err := s.objects.Insert(ctx, tx, obj); err != nil {
			return err
		}
		return s.fields.Insert(ctx, tx, nameField)
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// GetObject returns an object by id
func (s *CatalogService) GetObject(ctx context.Context, id string) (*models.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, err := s.objects.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.NewNotFoundError("Object", id)
	}
	return obj, nil
}

// GetObjectByName returns an object by its API name
func (s *CatalogService) GetObjectByName(ctx context.Context, name string) (*models.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, err := s.objects.GetByName(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.NewNotFoundError("Object", name)
	}
	return obj, nil
}

// ListObjects returns all object definitions
func (s *CatalogService) ListObjects(ctx context.Context) ([]models.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects.List(ctx, s.db)
}

// DeleteObject removes a custom object together with all of its fields and
// records in one transaction. Standard objects cannot be deleted.
func (s *CatalogService) DeleteObject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		obj, err := s.objects.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if obj == nil {
			return errors.NewNotFoundError("Object", id)
		}
		if !obj.IsCustom {
			return errors.NewPermissionError("delete", fmt.Sprintf("standard object '%s'", obj.Name))
		}
		if err := s.fields.DeleteByObject(ctx, tx, id); err != nil {
			return err
		}
		if err := s.records.DeleteByObject(ctx, tx, id); err != nil {
			return err
		}
		return s.objects.Delete(ctx, tx, id)
	})
}

// CreateFieldInput carries the arguments for creating a field
type CreateFieldInput struct {
	ObjectID       string              `json:"object_id"`
	Name           string              `json:"name"`
	Label          string              `json:"label"`
	Type           constants.FieldType `json:"type"`
	Required       bool                `json:"required"`
	DefaultValue   *string             `json:"default_value,omitempty"`
	PicklistValues []string            `json:"picklist_values,omitempty"`
	LookupObject   *string             `json:"lookup_object,omitempty"`
	IsCustom       *bool               `json:"is_custom,omitempty"`
}

// CreateField appends a field to an object. The sort order is the current
// field count for the object, assigned inside the same transaction as the
// insert so concurrent creations never collide. Custom fields (the default)
// get a derived API name; standard fields keep the literal name.
func (s *CatalogService) CreateField(ctx context.Context, input CreateFieldInput) (*models.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.Name == "" {
		return nil, errors.NewValidationError("name", "Field name is required")
	}
	if !constants.IsValidFieldType(input.Type) {
		return nil, errors.NewValidationError("type", fmt.Sprintf("unknown field type '%s'", input.Type))
	}

	isCustom := true
	if input.IsCustom != nil {
		isCustom = *input.IsCustom
	}
	apiName := input.Name
	if isCustom {
		apiName = utils.DeriveAPIName(input.Name)
	}

	field := &models.Field{
		ID:             utils.GenerateID(),
		ObjectID:       input.ObjectID,
		APIName:        apiName,
		Label:          input.Label,
		Type:           input.Type,
		Required:       input.Required,
		DefaultValue:   input.DefaultValue,
		PicklistValues: input.PicklistValues,
		LookupObject:   input.LookupObject,
		IsNameField:    false,
		IsCustom:       isCustom,
	}

	err := s.tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		obj, err := s.objects.GetByID(ctx, tx, input.ObjectID)
		if err != nil {
			return err
		}
		if obj == nil {
			return errors.NewNotFoundError("Object", input.ObjectID)
		}
		count, err := s.fields.CountByObject(ctx, tx, input.ObjectID)
		if err != nil {
			return err
		}
		field.SortOrder = count
		return s.fields.Insert(ctx, tx, field)
	})
	if err != nil {
		return nil, err
	}
	return field, nil
}

// GetField returns a field by id
func (s *CatalogService) GetField(ctx context.Context, id string) (*models.Field, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	field, err := s.fields.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if field == nil {
		return nil, errors.NewNotFoundError("Field", id)
	}
	return field, nil
}

// UpdateField applies a partial update to a field. Nil members of the
// update leave the stored values untouched.
func (s *CatalogService) UpdateField(ctx context.Context, id string, update models.FieldUpdate) (*models.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var field *models.Field
	err := s.tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		existing, err := s.fields.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return errors.NewNotFoundError("Field", id)
		}

		if update.Label != nil {
			existing.Label = *update.Label
		}
		if update.Required != nil {
			existing.Required = *update.Required
		}
		if update.PicklistValues != nil {
			existing.PicklistValues = update.PicklistValues
		}
		if update.DefaultValue != nil {
			existing.DefaultValue = update.DefaultValue
		}

		field = existing
		return s.fields.Update(ctx, tx, existing)
	})
	if err != nil {
		return nil, err
	}
	return field, nil
}

// DeleteField removes a field. The Name field of an object can never be
// deleted.
func (s *CatalogService) DeleteField(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		field, err := s.fields.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if field == nil {
			return errors.NewNotFoundError("Field", id)
		}
		if field.IsNameField {
			return errors.NewInvariantViolationError("cannot delete the Name field")
		}
		return s.fields.Delete(ctx, tx, id)
	})
}

// ListFieldsByObject returns an object's fields in sort order. A missing or
// deleted object yields an empty list, not an error.
func (s *CatalogService) ListFieldsByObject(ctx context.Context, objectID string) ([]models.Field, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fields.ListByObject(ctx, s.db, objectID)
}

// ListFieldsByObjectName resolves the object by API name first; a missing
// object yields an empty list.
func (s *CatalogService) ListFieldsByObjectName(ctx context.Context, objectName string) ([]models.Field, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, err := s.objects.GetByName(ctx, s.db, objectName)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return []models.Field{}, nil
	}
	return s.fields.ListByObject(ctx, s.db, obj.ID)
}

// ListLookupsTo finds every lookup field across all objects that targets
// the given object name, used to discover inverse relationships.
func (s *CatalogService) ListLookupsTo(ctx context.Context, targetObjectName string) ([]models.LookupFieldRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fields.ListLookupsTo(ctx, s.db, targetObjectName)
}
