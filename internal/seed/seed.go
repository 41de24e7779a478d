// Package seed creates the built-in roles and the bootstrap administrator.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"backoffice/internal/auth"
	"backoffice/internal/config"
	"backoffice/internal/model"
	"backoffice/internal/rbac"
	"backoffice/internal/repository"
)

// AdminRole is the seeded role granted to the bootstrap administrator.
const AdminRole = "Admin"

// Result reports what a run created.
type Result struct {
	RolesCreated []string
	AdminCreated bool
}

// Seeder applies the seed idempotently: existing roles and users are left untouched.
type Seeder struct {
	roles  repository.RoleRepository
	users  repository.UserRepository
	hasher *auth.PasswordHasher
	log    *zap.Logger
}

func New(roles repository.RoleRepository, users repository.UserRepository, hasher *auth.PasswordHasher, log *zap.Logger) *Seeder {
	return &Seeder{roles: roles, users: users, hasher: hasher, log: log.With(zap.String("component", "seed"))}
}

// Run creates missing roles from defs and, when admin carries an email and
// password, the administrator account.
func (s *Seeder) Run(ctx context.Context, defs []rbac.SeedRole, admin config.SeedConfig) (*Result, error) {
	res := &Result{}
	ids := make(map[string]string, len(defs))

	for _, d := range defs {
		existing, err := s.roles.FindByName(ctx, d.Name)
		switch {
		case err == nil:
			ids[d.Name] = existing.ID
			continue
		case !errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("find role %s: %w", d.Name, err)
		}

		r, err := s.roles.Create(ctx, &model.Role{Name: d.Name, Permissions: d.Permissions})
		if err != nil {
			return nil, fmt.Errorf("create role %s: %w", d.Name, err)
		}
		ids[d.Name] = r.ID
		res.RolesCreated = append(res.RolesCreated, d.Name)
		s.log.Info("role created", zap.String("role", d.Name), zap.Int("permissions", len(d.Permissions)))
	}

	email := strings.ToLower(strings.TrimSpace(admin.AdminEmail))
	if email == "" || admin.AdminPassword == "" {
		s.log.Info("admin seed skipped", zap.String("reason", "SEED_ADMIN_EMAIL or SEED_ADMIN_PASSWORD unset"))
		return res, nil
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return res, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("find admin: %w", err)
	}

	roleID, ok := ids[AdminRole]
	if !ok {
		return nil, fmt.Errorf("seed has no %s role", AdminRole)
	}
	hash, err := s.hasher.Hash(admin.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	if _, err := s.users.Create(ctx, &model.User{
		Name:         admin.AdminName,
		Email:        email,
		Status:       model.UserActive,
		RoleID:       roleID,
		PasswordHash: hash,
	}); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	res.AdminCreated = true
	s.log.Info("admin created", zap.String("email", email))
	return res, nil
}
