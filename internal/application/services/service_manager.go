package services

import (
	"github.com/lqor/igorforce/internal/infrastructure/database"
)

// ServiceManager bundles the application services behind a single handle
type ServiceManager struct {
	Catalog *CatalogService
	Records *RecordService
	Flows   *FlowService
	Auth    *AuthService
}

// NewServiceManager wires every service onto the shared connection
func NewServiceManager(conn *database.Connection) *ServiceManager {
	return &ServiceManager{
		Catalog: NewCatalogService(conn),
		Records: NewRecordService(conn),
		Flows:   NewFlowService(conn),
		Auth:    NewAuthService(conn),
	}
}
