package bootstrap

import (
	"context"
	"log"
	"os"

	"github.com/lqor/igorforce/internal/application/services"
)

// InitializeSystemData provisions the initial admin account. Credentials
// come from ADMIN_EMAIL and ADMIN_PASSWORD, with development defaults.
func InitializeSystemData(authSvc *services.AuthService) error {
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@example.com"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	user, err := authSvc.EnsureUser(context.Background(), "System Administrator", email, password)
	if err != nil {
		return err
	}
	log.Printf("Admin user ready: %s", user.Email)
	return nil
}
