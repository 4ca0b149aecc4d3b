package directory

import (
	"context"
	"log/slog"

	"depot/internal/domain/repositories"
	frSvc "depot/internal/domain/services/filerequest"
	"depot/internal/permissions"
)

// Directory resolves users together with their authorization profile. Roles
// come from the user store; the permissions they grant come from the embedded
// policy registry.
type Directory struct {
	users    repositories.UserRepository
	registry *permissions.Registry
	logger   *slog.Logger
}

// New creates a directory backed by the user repository and policy registry.
func New(users repositories.UserRepository, registry *permissions.Registry, logger *slog.Logger) *Directory {
	return &Directory{
		users:    users,
		registry: registry,
		logger:   logger,
	}
}

var _ frSvc.ApproverDirectory = (*Directory)(nil)

// FindUserWithPermissions resolves a user and attaches the permission set
// their role grants. Returns domain.ErrNotFound (wrapped) for unknown users.
func (d *Directory) FindUserWithPermissions(ctx context.Context, userID string) (*frSvc.DirectoryUser, error) {
	user, err := d.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &frSvc.DirectoryUser{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		IsActive:    user.IsActive,
		Permissions: d.registry.PermissionsForRole(user.Role),
	}, nil
}

// ListUsersWithPermission lists the active users whose role grants perm.
func (d *Directory) ListUsersWithPermission(ctx context.Context, perm string) ([]*frSvc.DirectoryUser, error) {
	roles := d.registry.RolesWithPermission(perm)
	if len(roles) == 0 {
		return nil, nil
	}

	users, err := d.users.ListActiveByRoles(ctx, roles)
	if err != nil {
		return nil, err
	}

	out := make([]*frSvc.DirectoryUser, 0, len(users))
	for _, u := range users {
		out = append(out, &frSvc.DirectoryUser{
			ID:          u.ID,
			DisplayName: u.DisplayName,
			Role:        u.Role,
			IsActive:    u.IsActive,
			Permissions: d.registry.PermissionsForRole(u.Role),
		})
	}
	return out, nil
}
