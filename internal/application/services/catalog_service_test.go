package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lqor/igorforce/internal/domain/models"
	"github.com/lqor/igorforce/internal/infrastructure/persistence"
	"github.com/lqor/igorforce/pkg/constants"
	"github.com/lqor/igorforce/pkg/errors"
	"github.com/lqor/igorforce/pkg/utils"
)

func TestCatalogService_CreateObject(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	obj, err := svc.Catalog.CreateObject(ctx, CreateObjectInput{
		Name:        "Project",
		Label:       "Project",
		PluralLabel: "Projects",
	})
	require.NoError(t, err)

	assert.Equal(t, "Project__c", obj.Name)
	assert.True(t, obj.IsCustom)
	assert.Equal(t, constants.DefaultObjectIcon, obj.Icon)

	// Creation also provisions the mandatory Name field
	fields, err := svc.Catalog.ListFieldsByObject(ctx, obj.ID)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "Name", fields[0].APIName)
	assert.Equal(t, constants.FieldTypeText, fields[0].Type)
	assert.True(t, fields[0].Required)
	assert.True(t, fields[0].IsNameField)
	assert.Equal(t, 0, fields[0].SortOrder)
}

func TestCatalogService_CreateObject_DerivesAPIName(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	obj, err := svc.Catalog.CreateObject(ctx, CreateObjectInput{
		Name:        "Sales  Order Line",
		Label:       "Sales Order Line",
		PluralLabel: "Sales Order Lines",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sales_Order_Line__c", obj.Name)
}

func TestCatalogService_CreateObject_DuplicateName(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	input := CreateObjectInput{Name: "Project", Label: "Project", PluralLabel: "Projects"}
	_, err := svc.Catalog.CreateObject(ctx, input)
	require.NoError(t, err)

	_, err = svc.Catalog.CreateObject(ctx, input)
	assert.True(t, errors.IsConflict(err))

	// Only one object plus nothing half-written
	objs, err := svc.Catalog.ListObjects(ctx)
	require.NoError(t, err)
	assert.Len(t, objs, 1)
}

func TestCatalogService_CreateObject_Validation(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	_, err := svc.Catalog.CreateObject(ctx, CreateObjectInput{Label: "X", PluralLabel: "Xs"})
	assert.True(t, errors.IsValidation(err))

	_, err = svc.Catalog.CreateObject(ctx, CreateObjectInput{Name: "X", PluralLabel: "Xs"})
	assert.True(t, errors.IsValidation(err))
}

func TestCatalogService_DeleteObject_Cascades(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	obj, err := svc.Catalog.CreateObject(ctx, CreateObjectInput{
		Name: "Project", Label: "Project", PluralLabel: "Projects",
	})
	require.NoError(t, err)

	_, err = svc.Catalog.CreateField(ctx, CreateFieldInput{
		ObjectID: obj.ID, Name: "Budget", Label: "Budget", Type: constants.FieldTypeCurrency,
	})
	require.NoError(t, err)

	rec, err := svc.Records.CreateRecord(ctx, obj.ID, map[string]any{"Name": "Apollo"})
	require.NoError(t, err)

	require.NoError(t, svc.Catalog.DeleteObject(ctx, obj.ID))

	_, err = svc.Catalog.GetObject(ctx, obj.ID)
	assert.True(t, errors.IsNotFound(err))

	fields, err := svc.Catalog.ListFieldsByObject(ctx, obj.ID)
	require.NoError(t, err)
	assert.Empty(t, fields)

	_, err = svc.Records.GetRecord(ctx, rec.ID)
	assert.True(t, errors.IsNotFound(err))
}

func TestCatalogService_DeleteObject_StandardRejected(t *testing.T) {
	conn, svc := newTestServicesWithConn(t)
	ctx := context.Background()

	// Standard objects come from seeding, not the service path
	std := &models.Object{
		ID: utils.GenerateID(), Name: "Account", Label: "Account",
		PluralLabel: "Accounts", IsCustom: false, Icon: "Building2",
	}
	require.NoError(t, persistence.NewObjectRepository().Insert(ctx, conn.DB(), std))

	err := svc.Catalog.DeleteObject(ctx, std.ID)
	assert.True(t, errors.IsPermission(err))

	// Still there
	_, err = svc.Catalog.GetObject(ctx, std.ID)
	assert.NoError(t, err)
}

func TestCatalogService_CreateField_SortOrderAndDerivedName(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	obj, err := svc.Catalog.CreateObject(ctx, CreateObjectInput{
		Name: "Project", Label: "Project", PluralLabel: "Projects",
	})
	require.NoError(t, err)

	field, err := svc.Catalog.CreateField(ctx, CreateFieldInput{
		ObjectID: obj.ID, Name: "Due Date", Label: "Due Date", Type: constants.FieldTypeDate,
	})
	require.NoError(t, err)
	assert.Equal(t, "Due_Date__c", field.APIName)
	// Name field occupies slot 0
	assert.Equal(t, 1, field.SortOrder)

	second, err := svc.Catalog.CreateField(ctx, CreateFieldInput{
		ObjectID: obj.ID, Name: "Budget", Label: "Budget", Type: constants.FieldTypeCurrency,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.SortOrder)
}

func TestCatalogService_CreateField_UnknownType(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	obj, err := svc.Catalog.CreateObject(ctx, CreateObjectInput{
		Name: "Project", Label: "Project", PluralLabel: "Projects",
	})
	require.NoError(t, err)

	_, err = svc.Catalog.CreateField(ctx, CreateFieldInput{
		ObjectID: obj.ID, Name: "Weird", Label: "Weird", Type: "geolocation",
	})
	assert.True(t, errors.IsValidation(err))
}

func TestCatalogService_CreateField_MissingObject(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	_, err := svc.Catalog.CreateField(ctx, CreateFieldInput{
		ObjectID: "nope", Name: "X", Label: "X", Type: constants.FieldTypeText,
	})
	assert.True(t, errors.IsNotFound(err))
}

func TestCatalogService_UpdateField_Partial(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	obj, err := svc.Catalog.CreateObject(ctx, CreateObjectInput{
		Name: "Project", Label: "Project", PluralLabel: "Projects",
	})
	require.NoError(t, err)

	field, err := svc.Catalog.CreateField(ctx, CreateFieldInput{
		ObjectID: obj.ID, Name: "Stage", Label: "Stage", Type: constants.FieldTypePicklist,
		PicklistValues: []string{"Open", "Closed"},
	})
	require.NoError(t, err)

	required := true
	updated, err := svc.Catalog.UpdateField(ctx, field.ID, models.FieldUpdate{Required: &required})
	require.NoError(t, err)
	assert.True(t, updated.Required)
	// Untouched members survive
	assert.Equal(t, "Stage", updated.Label)
	assert.Equal(t, []string{"Open", "Closed"}, updated.PicklistValues)
}

func TestCatalogService_DeleteField_NameFieldProtected(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	obj, err := svc.Catalog.CreateObject(ctx, CreateObjectInput{
		Name: "Project", Label: "Project", PluralLabel: "Projects",
	})
	require.NoError(t, err)

	fields, err := svc.Catalog.ListFieldsByObject(ctx, obj.ID)
	require.NoError(t, err)
	require.Len(t, fields, 1)

	err = svc.Catalog.DeleteField(ctx, fields[0].ID)
	assert.True(t, errors.IsInvariantViolation(err))
}

func TestCatalogService_ListLookupsTo(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	target, err := svc.Catalog.CreateObject(ctx, CreateObjectInput{
		Name: "Project", Label: "Project", PluralLabel: "Projects",
	})
	require.NoError(t, err)

	source, err := svc.Catalog.CreateObject(ctx, CreateObjectInput{
		Name: "Task", Label: "Task", PluralLabel: "Tasks",
	})
	require.NoError(t, err)

	_, err = svc.Catalog.CreateField(ctx, CreateFieldInput{
		ObjectID: source.ID, Name: "Project", Label: "Project",
		Type: constants.FieldTypeLookup, LookupObject: strPtr(target.Name),
	})
	require.NoError(t, err)

	refs, err := svc.Catalog.ListLookupsTo(ctx, target.Name)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, source.Name, refs[0].ObjectName)
	assert.Equal(t, "Project__c", refs[0].Field.APIName)
}
