package services

import (
	"context"
	"fmt"

	"github.com/mentornest/backend/internal/models"
	"go.uber.org/zap"
)

// SeedUserRepository is used to create the first administrator
type SeedUserRepository interface {
	// Method ExistsByRole checks if at least one user has the given role.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByRole(ctx context.Context, role models.Role) (bool, error)
	// Method ExistsByEmail checks if a user with such email exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Method Create inserts a new user into the database.
	//
	// If some error occurs during user creation, the error will be returned.
	Create(ctx context.Context, user *models.User) error
}

// SeedAdmin creates an administrator from the given credentials when none exists yet
func SeedAdmin(ctx context.Context, userRepo SeedUserRepository, name, email, password string, logger *zap.Logger) error {
	exists, err := userRepo.ExistsByRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	if exists {
		logger.Debug("admin user already present, seeding skipped")
		return nil
	}

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return fmt.Errorf("admin email and password are required")
	}

	taken, err := userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("cannot seed admin: email already exists")
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		return err
	}

	logger.Info("admin user seeded", zap.Int("user_id", admin.ID), zap.String("email", email))
	return nil
}
