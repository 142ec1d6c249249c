// seed-admin creates or updates the first admin user.
//
// Usage:
//
//	ADMIN_USERNAME=admin ADMIN_PASSWORD=... DB_DRIVER=mysql DB_USER=... go run ./cmd/seed-admin
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/rodmar/rodmar_backend/config"
	"bitbucket.org/rodmar/rodmar_backend/models"
	"bitbucket.org/rodmar/rodmar_backend/utils"
)

const (
	defaultUsername = "admin"
	adminName       = "RodMar Admin"
)

func main() {
	ctx := context.Background()
	username := strings.TrimSpace(os.Getenv("ADMIN_USERNAME"))
	if username == "" {
		username = defaultUsername
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if len(password) < 8 {
		fmt.Fprintln(os.Stderr, "ADMIN_PASSWORD must be set to at least 8 characters")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	existing, err := models.GetUserByUsername(ctx, username)
	if errors.Is(err, utils.ErrorRecordNotFound) {
		if _, err := models.CreateUser(ctx, &models.NewUser{
			Username: username,
			Name:     adminName,
			Password: password,
			Role:     models.UserRoleAdmin,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created admin user: username=%q\n", username)
		return
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
		os.Exit(1)
	}

	// Update existing user: ensure password and admin role
	hashed, err := utils.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", existing.ID).Updates(map[string]any{
		"password":  string(hashed),
		"is_active": true,
		"role":      models.UserRoleAdmin,
	}).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to update admin user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Updated admin user: username=%q\n", username)
}
