// Package registry holds the setup-time reconciliation routines: role
// seeding and idempotent service registration.
package registry

import (
	"context"
	"fmt"

	"github.com/fieldstack/auth-service/internal/models"
	"github.com/fieldstack/auth-service/internal/repository"
)

// DeclaredServices is the explicit, versioned list of operation code
// names. Gated routes reference these names; the registration routine
// reconciles the services table against this list.
var DeclaredServices = []string{
	"authenticate_user_with_otp",
	"authenticate_admin_user",
	"verify_otp",
	"user_logout",
	"user_change_password",
	"forgot_password",
	"reset_password",
}

// Service code names referenced from route registration. Declared as
// constants so a rename cannot silently detach a gate from its entry.
const (
	ServiceChangePassword = "user_change_password"
	ServiceLogout         = "user_logout"
)

// SeedRoles creates any missing roles from the seeded set. Existing roles
// are left untouched.
func SeedRoles(ctx context.Context, store repository.Store) error {
	for _, name := range models.SeededRoles {
		if _, err := store.Roles().GetOrCreate(ctx, name); err != nil {
			return fmt.Errorf("failed to seed role %s: %w", name, err)
		}
	}
	return nil
}

// RegisterServices reconciles the services table against the declared
// operation list: every entry is first marked inactive, then each declared
// name is created or re-activated. Operations removed from the list stay
// in the table as inactive rows, so role bindings survive a re-register.
func RegisterServices(ctx context.Context, store repository.Store, codeNames []string) error {
	seen := make(map[string]bool, len(codeNames))
	for _, name := range codeNames {
		if seen[name] {
			return fmt.Errorf("duplicate service code name: %s", name)
		}
		seen[name] = true
	}

	return store.Atomically(ctx, func(tx repository.Store) error {
		if err := tx.Services().DeactivateAll(ctx); err != nil {
			return err
		}
		for _, name := range codeNames {
			if err := tx.Services().UpsertActive(ctx, name); err != nil {
				return err
			}
		}
		return nil
	})
}

// GrantService binds a service to a role by name, for operational use
// from the CLI.
func GrantService(ctx context.Context, store repository.Store, roleName, codeName string) error {
	role, err := store.Roles().FindByName(ctx, roleName)
	if err != nil {
		return fmt.Errorf("failed to resolve role %s: %w", roleName, err)
	}
	svc, err := store.Services().FindByCodeName(ctx, codeName)
	if err != nil {
		return fmt.Errorf("failed to resolve service %s: %w", codeName, err)
	}
	return store.Roles().GrantService(ctx, role.ID, svc.ID)
}
