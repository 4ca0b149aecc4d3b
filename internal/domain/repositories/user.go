package repositories

import (
	"context"

	"depot/internal/domain/models"
)

// UserRepository reads the user directory. Depot does not own user lifecycle;
// this is a lookup surface for approver resolution.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	ListActiveByRoles(ctx context.Context, roles []string) ([]*models.User, error)
}
