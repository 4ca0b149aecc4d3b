package permissions

import (
	"sort"
	"testing"
)

func TestNewRegistry(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	for _, role := range []string{"admin", "manager", "member", "auditor"} {
		if len(registry.PermissionsForRole(role)) == 0 {
			t.Errorf("role %s has no permissions", role)
		}
	}
}

func TestRoleHasPermission(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	tests := []struct {
		role string
		perm string
		want bool
	}{
		{"admin", ApproveMove, true},
		{"admin", ApproveDelete, true},
		{"manager", ApproveMove, true},
		{"manager", ApproveDelete, false},
		{"member", ApproveMove, false},
		{"member", FileWrite, true},
		{"auditor", FileWrite, false},
		{"auditor", FileRead, true},
		{"unknown-role", FileRead, false},
	}

	for _, tt := range tests {
		if got := registry.RoleHasPermission(tt.role, tt.perm); got != tt.want {
			t.Errorf("RoleHasPermission(%s, %s) = %v, want %v", tt.role, tt.perm, got, tt.want)
		}
	}
}

func TestRolesWithPermission(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	moveRoles := registry.RolesWithPermission(ApproveMove)
	sort.Strings(moveRoles)
	if len(moveRoles) != 2 || moveRoles[0] != "admin" || moveRoles[1] != "manager" {
		t.Errorf("RolesWithPermission(%s) = %v, want [admin manager]", ApproveMove, moveRoles)
	}

	deleteRoles := registry.RolesWithPermission(ApproveDelete)
	if len(deleteRoles) != 1 || deleteRoles[0] != "admin" {
		t.Errorf("RolesWithPermission(%s) = %v, want [admin]", ApproveDelete, deleteRoles)
	}
}

func TestPermissionsForRoleReturnsCopy(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	perms := registry.PermissionsForRole("member")
	if len(perms) == 0 {
		t.Fatal("member has no permissions")
	}
	perms[0] = "tampered"

	if registry.PermissionsForRole("member")[0] == "tampered" {
		t.Error("PermissionsForRole must return a copy")
	}
}
