package services

import (
	"path/filepath"
	"testing"

	"github.com/lqor/igorforce/internal/infrastructure/database"
)

// newTestServices opens a throwaway database in the test's temp dir and
// wires the full service manager onto it.
func newTestServices(t *testing.T) *ServiceManager {
	_, svc := newTestServicesWithConn(t)
	return svc
}

func newTestServicesWithConn(t *testing.T) (*database.Connection, *ServiceManager) {
	t.Helper()

	conn, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return conn, NewServiceManager(conn)
}

func strPtr(s string) *string { return &s }
