package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/model"
	"backoffice/internal/repository"
)

var (
	roleCols = []string{"id", "name", "permissions", "created_at", "updated_at"}
	userCols = []string{"id", "name", "email", "phone", "image_key", "status", "role_id", "role", "password_hash", "last_login_at", "created_at", "updated_at"}
)

func TestRolePostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewRolePostgres(db)
	now := time.Now().UTC()
	role := &model.Role{ID: "r-1", Name: "Editor", Permissions: []string{"products-view", "products-edit"}, CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery("INSERT INTO roles").
		WithArgs(role.ID, role.Name, `["products-view","products-edit"]`, now, now).
		WillReturnRows(sqlmock.NewRows(roleCols).
			AddRow(role.ID, role.Name, []byte(`["products-view","products-edit"]`), now, now))

	out, err := repo.Create(context.Background(), role)

	require.NoError(t, err)
	assert.Equal(t, []string{"products-view", "products-edit"}, out.Permissions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRolePostgres_List_EmptyPermissions(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewRolePostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM roles ORDER BY").
		WillReturnRows(sqlmock.NewRows(roleCols).AddRow("r-1", "Nobody", []byte(`[]`), time.Now(), time.Now()))

	roles, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.NotNil(t, roles[0].Permissions)
	assert.Empty(t, roles[0].Permissions)
}

func TestRolePostgres_Delete_Referenced(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewRolePostgres(db)

	mock.ExpectExec("DELETE FROM roles WHERE id = ?").
		WithArgs("r-1").
		WillReturnError(pgForeignKey())

	assert.ErrorIs(t, repo.Delete(context.Background(), "r-1"), repository.ErrReferenced)
}

func TestUserPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	now := time.Now().UTC()
	u := &model.User{ID: "u-1", Name: "Ana", Email: "ana@example.com", Status: model.UserActive,
		RoleID: "r-1", PasswordHash: "hash", CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Name, u.Email, u.Phone, u.ImageKey, u.Status, u.RoleID, u.PasswordHash, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM users u JOIN roles r (.+) WHERE u.id = \\$1").
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-1", "Ana", "ana@example.com", "", "", model.UserActive, "r-1", "Admin", "hash", nil, now, now))

	out, err := repo.Create(context.Background(), u)

	require.NoError(t, err)
	assert.Equal(t, "Admin", out.RoleName)
	assert.Nil(t, out.LastLoginAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_Create_DuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)

	mock.ExpectExec("INSERT INTO users").WillReturnError(pgUnique("users_email_lower_key"))

	_, err = repo.Create(context.Background(), &model.User{ID: "u-1"})

	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	last := time.Now().UTC()

	mock.ExpectQuery("WHERE lower\\(u.email\\) = lower\\(\\$1\\)").
		WithArgs("ANA@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-1", "Ana", "ana@example.com", "", "", model.UserActive, "r-1", "Admin", "hash", last, last, last))

	u, err := repo.FindByEmail(context.Background(), "ANA@example.com")

	require.NoError(t, err)
	assert.Equal(t, "hash", u.PasswordHash)
	require.NotNil(t, u.LastLoginAt)
}

func TestUserPostgres_CountByRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users WHERE role_id = \\$1").
		WithArgs("r-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := repo.CountByRole(context.Background(), "r-1")

	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestUserPostgres_TouchLogin(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	at := time.Now().UTC()

	mock.ExpectExec("UPDATE users SET last_login_at = \\$2 WHERE id = \\$1").
		WithArgs("u-1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.TouchLogin(context.Background(), "u-1", at))
	assert.NoError(t, mock.ExpectationsWereMet())
}
