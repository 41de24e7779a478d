package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"backoffice/internal/auth"
	"backoffice/internal/model"
	"backoffice/internal/rbac"
	"backoffice/internal/repository"
	"backoffice/internal/validation"
)

// RoleInput is the create/update payload for a role.
type RoleInput struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Permissions []string `json:"permissions"`
}

// RoleService manages roles and exposes the permission taxonomy.
type RoleService interface {
	Permissions() []rbac.GroupPermissions
	Create(ctx context.Context, in RoleInput) (*model.Role, error)
	Get(ctx context.Context, id string) (*model.Role, error)
	List(ctx context.Context) ([]model.Role, error)
	Update(ctx context.Context, id string, in RoleInput) (*model.Role, error)
	// Delete fails with ErrInUse while any user holds the role.
	Delete(ctx context.Context, id string) error
}

type roleService struct {
	repo  repository.RoleRepository
	users repository.UserRepository
}

func NewRoleService(repo repository.RoleRepository, users repository.UserRepository) RoleService {
	return &roleService{repo: repo, users: users}
}

func (s *roleService) Permissions() []rbac.GroupPermissions {
	return rbac.Grouped()
}

func (s *roleService) validate(in *RoleInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return err
	}
	perms, err := rbac.Normalize(in.Permissions)
	if err != nil {
		return validation.Field("permissions", err.Error())
	}
	in.Permissions = perms
	return nil
}

func (s *roleService) Create(ctx context.Context, in RoleInput) (*model.Role, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}
	now := nowFunc()
	r, err := s.repo.Create(ctx, &model.Role{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Permissions: in.Permissions,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, translate(err, "role name")
	}
	return r, nil
}

func (s *roleService) Get(ctx context.Context, id string) (*model.Role, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "role")
	}
	return r, nil
}

func (s *roleService) List(ctx context.Context) ([]model.Role, error) {
	return s.repo.List(ctx)
}

func (s *roleService) Update(ctx context.Context, id string, in RoleInput) (*model.Role, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "role")
	}
	r.Name, r.Permissions = in.Name, in.Permissions
	r.UpdatedAt = nowFunc()
	out, err := s.repo.Update(ctx, r)
	if err != nil {
		return nil, translate(err, "role name")
	}
	return out, nil
}

func (s *roleService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return translate(err, "role")
	}
	n, err := s.users.CountByRole(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("role %w by %d user(s)", ErrInUse, n)
	}
	return translate(s.repo.Delete(ctx, id), "role")
}

// UserInput is the create/update payload for a user. Password is required on
// create and optional on update.
type UserInput struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Phone    string `json:"phone" validate:"max=50"`
	Status   string `json:"status" validate:"omitempty,oneof=active inactive"`
	RoleID   string `json:"role_id" validate:"required,uuid"`
	Password string `json:"password" validate:"omitempty,min=8,max=72"`
}

// UserService manages back-office users.
type UserService interface {
	Create(ctx context.Context, in UserInput) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context, f UserFilter, limit, offset int) (*ListResult[model.User], error)
	Update(ctx context.Context, id string, in UserInput) (*model.User, error)
	// Delete removes user id on behalf of actorID; users cannot delete themselves.
	Delete(ctx context.Context, actorID, id string) error
	Export(ctx context.Context, f UserFilter) ([]model.User, error)
	SetImage(ctx context.Context, id string, r io.Reader, filename string, size int64) (*model.User, error)
}

type userService struct {
	repo   repository.UserRepository
	roles  repository.RoleRepository
	hasher *auth.PasswordHasher
	media  MediaService
	log    *zap.Logger
}

func NewUserService(repo repository.UserRepository, roles repository.RoleRepository, hasher *auth.PasswordHasher, media MediaService, log *zap.Logger) UserService {
	return &userService{repo: repo, roles: roles, hasher: hasher, media: media, log: log}
}

func (s *userService) validate(ctx context.Context, in *UserInput, creating bool) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Status == "" {
		in.Status = model.UserActive
	}
	if err := validation.Struct(in); err != nil {
		return err
	}
	if creating && in.Password == "" {
		return validation.Field("password", "is required")
	}
	if _, err := s.roles.FindByID(ctx, in.RoleID); err != nil {
		if isNotFound(err) {
			return validation.Field("role_id", "must reference an existing role")
		}
		return err
	}
	return nil
}

func (s *userService) withURL(ctx context.Context, u *model.User) *model.User {
	if u != nil {
		u.ImageURL = s.media.URL(ctx, u.ImageKey)
	}
	return u
}

func (s *userService) Create(ctx context.Context, in UserInput) (*model.User, error) {
	if err := s.validate(ctx, &in, true); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := nowFunc()
	u, err := s.repo.Create(ctx, &model.User{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Status:       in.Status,
		RoleID:       in.RoleID,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, translate(err, "user email")
	}
	return u, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "user")
	}
	return s.withURL(ctx, u), nil
}

func (s *userService) List(ctx context.Context, f UserFilter, limit, offset int) (*ListResult[model.User], error) {
	res, err := s.repo.List(ctx, f, pageQuery(limit, offset))
	if err != nil {
		return nil, err
	}
	for i := range res.Items {
		s.withURL(ctx, &res.Items[i])
	}
	return &ListResult[model.User]{Items: res.Items, Total: res.Total}, nil
}

func (s *userService) Update(ctx context.Context, id string, in UserInput) (*model.User, error) {
	if err := s.validate(ctx, &in, false); err != nil {
		return nil, err
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "user")
	}
	if in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	u.Name, u.Email, u.Phone, u.Status, u.RoleID = in.Name, in.Email, in.Phone, in.Status, in.RoleID
	u.UpdatedAt = nowFunc()
	out, err := s.repo.Update(ctx, u)
	if err != nil {
		return nil, translate(err, "user email")
	}
	return s.withURL(ctx, out), nil
}

func (s *userService) Delete(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return fmt.Errorf("%w: cannot delete your own account", ErrInvalidInput)
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return translate(err, "user")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err, "user")
	}
	if err := s.media.Delete(ctx, u.ImageKey); err != nil {
		s.log.Warn("orphaned object", zap.String("key", u.ImageKey), zap.Error(err))
	}
	return nil
}

func (s *userService) Export(ctx context.Context, f UserFilter) ([]model.User, error) {
	res, err := s.repo.List(ctx, f, everything)
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (s *userService) SetImage(ctx context.Context, id string, r io.Reader, filename string, size int64) (*model.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "user")
	}
	var out *model.User
	err = replaceImage(ctx, s.media, s.log, u.ImageKey, "users", r, filename, size, func(key string) error {
		u.ImageKey = key
		u.UpdatedAt = nowFunc()
		updated, err := s.repo.Update(ctx, u)
		if err != nil {
			return translate(err, "user")
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.withURL(ctx, out), nil
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// AuthService authenticates users and resolves request principals.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// Authenticate validates a bearer token and loads the caller's current permissions.
	Authenticate(ctx context.Context, token string) (*model.Principal, error)
	// IssueFor mints a token for an existing active user without a password.
	IssueFor(ctx context.Context, email string) (*LoginResult, error)
}

type authService struct {
	users  repository.UserRepository
	roles  repository.RoleRepository
	tokens *auth.TokenManager
	hasher *auth.PasswordHasher
}

func NewAuthService(users repository.UserRepository, roles repository.RoleRepository, tokens *auth.TokenManager, hasher *auth.PasswordHasher) AuthService {
	return &authService{users: users, roles: roles, tokens: tokens, hasher: hasher}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Compare(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, u)
}

func (s *authService) IssueFor(ctx context.Context, email string) (*LoginResult, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, translate(err, "user")
	}
	return s.issue(ctx, u)
}

func (s *authService) issue(ctx context.Context, u *model.User) (*LoginResult, error) {
	if u.Status != model.UserActive {
		return nil, ErrInactiveUser
	}
	token, exp, err := s.tokens.Issue(u.ID, u.Email, u.RoleID)
	if err != nil {
		return nil, err
	}
	now := nowFunc()
	if err := s.users.TouchLogin(ctx, u.ID, now); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	u.LastLoginAt = &now
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.Principal, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if isNotFound(err) {
			return nil, auth.ErrInvalidToken
		}
		return nil, err
	}
	if u.Status != model.UserActive {
		return nil, ErrInactiveUser
	}
	role, err := s.roles.FindByID(ctx, u.RoleID)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.New("user role missing")
		}
		return nil, err
	}
	return &model.Principal{
		UserID:      u.ID,
		Name:        u.Name,
		Email:       u.Email,
		RoleID:      role.ID,
		RoleName:    role.Name,
		Permissions: role.Permissions,
	}, nil
}
