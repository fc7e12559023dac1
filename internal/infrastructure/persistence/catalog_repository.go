package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lqor/igorforce/internal/domain/models"
	"github.com/lqor/igorforce/pkg/constants"
)

const objectColumns = "id, name, label, plural_label, is_custom, icon, description"

const fieldColumns = "id, object_id, api_name, label, type, is_required, default_value, picklist_values, lookup_object, is_name_field, is_custom, sort_order"

// ObjectRepository persists object definitions.
type ObjectRepository struct{}

// NewObjectRepository creates a new ObjectRepository
func NewObjectRepository() *ObjectRepository {
	return &ObjectRepository{}
}

// Insert writes a new object definition
func (r *ObjectRepository) Insert(ctx context.Context, q DBTX, obj *models.Object) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO objects (id, name, label, plural_label, is_custom, icon, description) VALUES (?, ?, ?, ?, ?, ?, ?)",
		obj.ID, obj.Name, obj.Label, obj.PluralLabel, obj.IsCustom, obj.Icon, nullableString(obj.Description))
	if err != nil {
		return fmt.Errorf("failed to insert object: %w", err)
	}
	return nil
}

// GetByID returns the object with the given id, or nil when absent
func (r *ObjectRepository) GetByID(ctx context.Context, q DBTX, id string) (*models.Object, error) {
	row := q.QueryRowContext(ctx, "SELECT "+objectColumns+" FROM objects WHERE id = ?", id)
	return scanObject(row)
}

// GetByName returns the object with the given API name, or nil when absent
func (r *ObjectRepository) GetByName(ctx context.Context, q DBTX, name string) (*models.Object, error) {
	row := q.QueryRowContext(ctx, "SELECT "+objectColumns+" FROM objects WHERE name = ?", name)
	return scanObject(row)
}

// List returns all object definitions ordered by name
func (r *ObjectRepository) List(ctx context.Context, q DBTX) ([]models.Object, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+objectColumns+" FROM objects ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query objects: %w", err)
	}
	defer rows.Close()

	objects := make([]models.Object, 0)
	for rows.Next() {
		var obj models.Object
		var description sql.NullString
		if err := rows.Scan(&obj.ID, &obj.Name, &obj.Label, &obj.PluralLabel, &obj.IsCustom, &obj.Icon, &description); err != nil {
			return nil, fmt.Errorf("failed to scan object: %w", err)
		}
		obj.Description = stringPtr(description)
		objects = append(objects, obj)
	}
	return objects, rows.Err()
}

// Count returns the number of object definitions
func (r *ObjectRepository) Count(ctx context.Context, q DBTX) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM objects").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count objects: %w", err)
	}
	return n, nil
}

// Delete removes the object row itself (cascades are the service's concern)
func (r *ObjectRepository) Delete(ctx context.Context, q DBTX, id string) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM objects WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func scanObject(row *sql.Row) (*models.Object, error) {
	var obj models.Object
	var description sql.NullString
	err := row.Scan(&obj.ID, &obj.Name, &obj.Label, &obj.PluralLabel, &obj.IsCustom, &obj.Icon, &description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan object: %w", err)
	}
	obj.Description = stringPtr(description)
	return &obj, nil
}

// FieldRepository persists field definitions.
type FieldRepository struct{}

// NewFieldRepository creates a new FieldRepository
func NewFieldRepository() *FieldRepository {
	return &FieldRepository{}
}

// Insert writes a new field definition
func (r *FieldRepository) Insert(ctx context.Context, q DBTX, field *models.Field) error {
	picklist, err := nullableJSON(field.PicklistValues)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		"INSERT INTO fields (id, object_id, api_name, label, type, is_required, default_value, picklist_values, lookup_object, is_name_field, is_custom, sort_order) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		field.ID, field.ObjectID, field.APIName, field.Label, string(field.Type), field.Required,
		nullableString(field.DefaultValue), picklist, nullableString(field.LookupObject),
		field.IsNameField, field.IsCustom, field.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to insert field: %w", err)
	}
	return nil
}

// GetByID returns the field with the given id, or nil when absent
func (r *FieldRepository) GetByID(ctx context.Context, q DBTX, id string) (*models.Field, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+fieldColumns+" FROM fields WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query field: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	field, err := scanField(rows)
	if err != nil {
		return nil, err
	}
	return field, nil
}

// ListByObject returns the fields owned by an object, ordered by sort order
func (r *FieldRepository) ListByObject(ctx context.Context, q DBTX, objectID string) ([]models.Field, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+fieldColumns+" FROM fields WHERE object_id = ? ORDER BY sort_order", objectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fields: %w", err)
	}
	defer rows.Close()

	fields := make([]models.Field, 0)
	for rows.Next() {
		field, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		fields = append(fields, *field)
	}
	return fields, rows.Err()
}

// CountByObject returns the number of fields owned by an object
func (r *FieldRepository) CountByObject(ctx context.Context, q DBTX, objectID string) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM fields WHERE object_id = ?", objectID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count fields: %w", err)
	}
	return n, nil
}

// Update rewrites the mutable attributes of a field
func (r *FieldRepository) Update(ctx context.Context, q DBTX, field *models.Field) error {
	picklist, err := nullableJSON(field.PicklistValues)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		"UPDATE fields SET label = ?, is_required = ?, default_value = ?, picklist_values = ? WHERE id = ?",
		field.Label, field.Required, nullableString(field.DefaultValue), picklist, field.ID)
	if err != nil {
		return fmt.Errorf("failed to update field: %w", err)
	}
	return nil
}

// Delete removes a single field
func (r *FieldRepository) Delete(ctx context.Context, q DBTX, id string) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM fields WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete field: %w", err)
	}
	return nil
}

// DeleteByObject removes every field owned by an object
func (r *FieldRepository) DeleteByObject(ctx context.Context, q DBTX, objectID string) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM fields WHERE object_id = ?", objectID); err != nil {
		return fmt.Errorf("failed to delete fields for object: %w", err)
	}
	return nil
}

// ListLookupsTo returns every lookup field across all objects whose target
// is the given object name, joined with the owning object for display.
func (r *FieldRepository) ListLookupsTo(ctx context.Context, q DBTX, targetObjectName string) ([]models.LookupFieldRef, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT f.id, f.object_id, f.api_name, f.label, f.type, f.is_required, f.default_value, f.picklist_values, f.lookup_object, f.is_name_field, f.is_custom, f.sort_order, o.name, o.label "+
			"FROM fields f JOIN objects o ON o.id = f.object_id "+
			"WHERE f.type = ? AND f.lookup_object = ? ORDER BY o.name, f.sort_order",
		string(constants.FieldTypeLookup), targetObjectName)
	if err != nil {
		return nil, fmt.Errorf("failed to query lookup fields: %w", err)
	}
	defer rows.Close()

	refs := make([]models.LookupFieldRef, 0)
	for rows.Next() {
		var ref models.LookupFieldRef
		var defaultValue, picklist, lookupObject sql.NullString
		var fieldType string
		if err := rows.Scan(&ref.Field.ID, &ref.Field.ObjectID, &ref.Field.APIName, &ref.Field.Label,
			&fieldType, &ref.Field.Required, &defaultValue, &picklist, &lookupObject,
			&ref.Field.IsNameField, &ref.Field.IsCustom, &ref.Field.SortOrder,
			&ref.ObjectName, &ref.ObjectLabel); err != nil {
			return nil, fmt.Errorf("failed to scan lookup field: %w", err)
		}
		ref.Field.Type = constants.FieldType(fieldType)
		ref.Field.DefaultValue = stringPtr(defaultValue)
		ref.Field.LookupObject = stringPtr(lookupObject)
		values, err := stringSlice(picklist)
		if err != nil {
			return nil, err
		}
		ref.Field.PicklistValues = values
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func scanField(rows *sql.Rows) (*models.Field, error) {
	var field models.Field
	var fieldType string
	var defaultValue, picklist, lookupObject sql.NullString
	err := rows.Scan(&field.ID, &field.ObjectID, &field.APIName, &field.Label, &fieldType,
		&field.Required, &defaultValue, &picklist, &lookupObject,
		&field.IsNameField, &field.IsCustom, &field.SortOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to scan field: %w", err)
	}
	field.Type = constants.FieldType(fieldType)
	field.DefaultValue = stringPtr(defaultValue)
	field.LookupObject = stringPtr(lookupObject)
	values, err := stringSlice(picklist)
	if err != nil {
		return nil, err
	}
	field.PicklistValues = values
	return &field, nil
}
