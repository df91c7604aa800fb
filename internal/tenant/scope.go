// Package tenant resolves the caller's visibility scope. Every
// tenant-owned record carries its owning admin email; a superadmin sees
// all records, everyone else only their own. The scope is resolved once
// per request and passed to every store call.
package tenant

import (
	"context"
	"errors"
	"strings"

	"societyhub/internal/model"
	"societyhub/internal/repository"
)

var ErrEmailRequired = errors.New("admin email is required")

type Resolver struct {
	admins repository.AdminRepository
}

func NewResolver(admins repository.AdminRepository) *Resolver {
	return &Resolver{admins: admins}
}

// Resolve builds the scope for the given caller email. An email with no
// matching admin record still resolves to a restricted scope, so an
// unknown caller can never widen visibility.
func (r *Resolver) Resolve(ctx context.Context, email string) (repository.TenantScope, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return repository.TenantScope{}, ErrEmailRequired
	}

	admin, err := r.admins.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.TenantScope{Email: email}, nil
		}
		return repository.TenantScope{}, err
	}

	return repository.TenantScope{
		Email:      email,
		Superadmin: admin.Role == model.AdminRoleSuperadmin,
	}, nil
}
