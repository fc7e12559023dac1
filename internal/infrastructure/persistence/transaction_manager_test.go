package persistence

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lqor/igorforce/internal/domain/models"
	"github.com/lqor/igorforce/internal/infrastructure/database"
	"github.com/lqor/igorforce/pkg/utils"
)

func newTestConn(t *testing.T) *database.Connection {
	t.Helper()
	conn, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func testObject(name string) *models.Object {
	return &models.Object{
		ID:          utils.GenerateID(),
		Name:        name,
		Label:       name,
		PluralLabel: name + "s",
		IsCustom:    true,
		Icon:        "Box",
	}
}

func TestWithTransaction_Commit(t *testing.T) {
	conn := newTestConn(t)
	tm := NewTransactionManager(conn)
	objects := NewObjectRepository()
	ctx := context.Background()

	err := tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		return objects.Insert(ctx, tx, testObject("Project__c"))
	})
	require.NoError(t, err)

	obj, err := objects.GetByName(ctx, conn.DB(), "Project__c")
	require.NoError(t, err)
	assert.NotNil(t, obj)
}

func TestWithTransaction_RollbackOnError(t *testing.T) {
	conn := newTestConn(t)
	tm := NewTransactionManager(conn)
	objects := NewObjectRepository()
	ctx := context.Background()

	boom := errors.New("boom")
	err := tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := objects.Insert(ctx, tx, testObject("Project__c")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	obj, err := objects.GetByName(ctx, conn.DB(), "Project__c")
	require.NoError(t, err)
	assert.Nil(t, obj)
}

func TestWithTransaction_RollbackOnPanic(t *testing.T) {
	conn := newTestConn(t)
	tm := NewTransactionManager(conn)
	objects := NewObjectRepository()
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = tm.WithTransaction(ctx, func(tx *sql.Tx) error {
			if err := objects.Insert(ctx, tx, testObject("Project__c")); err != nil {
				return err
			}
			panic("boom")
		})
	})

	obj, err := objects.GetByName(ctx, conn.DB(), "Project__c")
	require.NoError(t, err)
	assert.Nil(t, obj)
}
