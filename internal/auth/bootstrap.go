package auth

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"menuboard/internal/model"
	"menuboard/internal/store"
)

// DefaultAdminPassword is used when no admin password is configured.
const DefaultAdminPassword = "admin123"

// EnsureDefaultAdmin creates the initial admin account if the user
// collection is empty. Existing accounts are never touched; later user
// management happens through other flows.
func EnsureDefaultAdmin(s *store.Store, username, password string, log *slog.Logger) error {
	users, err := s.AdminUsers.List()
	if err != nil {
		return fmt.Errorf("list admin users: %w", err)
	}
	if len(users) > 0 {
		log.Debug("admin users already exist, skipping default admin creation")
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	user := model.AdminUser{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.AdminUsers.Insert(user); err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}

	log.Info("default admin user created", "username", username)
	if password == DefaultAdminPassword {
		log.Warn("default admin password is in use, change it before exposing the service")
	}
	return nil
}
