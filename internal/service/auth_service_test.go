package service

import (
	"context"
	"testing"

	"storepos/internal/config"
	"storepos/internal/dto"
	"storepos/internal/model"
	"storepos/internal/permission"
	"storepos/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cloned := *u
	r.users[u.ID] = &cloned
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *u
	return &cloned, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username && u.Active {
			cloned := *u
			return &cloned, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.Active {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) ListAll(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	cloned := *u
	r.users[u.ID] = &cloned
	return nil
}

func (r *stubUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Active = false
	return nil
}

func (r *stubUserRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Active = true
	return nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

func newAuthFixture(t *testing.T) (*stubUserRepo, AuthService) {
	t.Helper()
	repo := newStubUserRepo()
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
	}
	return repo, NewAuthService(repo, cfg)
}

func (r *stubUserRepo) seed(t *testing.T, username, password, role string) uuid.UUID {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	id := uuid.New()
	r.users[id] = &model.User{
		ID: id, Username: username, Name: username,
		PasswordHash: string(hash), Role: role, Active: true,
	}
	return id
}

func TestLogin(t *testing.T) {
	repo, svc := newAuthFixture(t)
	repo.seed(t, "ana", "hunter2", "cashier")

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "ana", Password: "hunter2"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, "cashier", resp.User.Role)
}

func TestLoginBadCredentials(t *testing.T) {
	repo, svc := newAuthFixture(t)
	repo.seed(t, "ana", "hunter2", "cashier")
	ctx := context.Background()

	_, err := svc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "wrong"})
	assert.EqualError(t, err, "invalid credentials")

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "nobody", Password: "hunter2"})
	assert.EqualError(t, err, "invalid credentials")
}

func TestLoginInactiveUser(t *testing.T) {
	repo, svc := newAuthFixture(t)
	id := repo.seed(t, "ana", "hunter2", "cashier")
	repo.users[id].Active = false

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "ana", Password: "hunter2"})
	assert.EqualError(t, err, "invalid credentials")
}

func TestRefreshRoundTrip(t *testing.T) {
	repo, svc := newAuthFixture(t)
	repo.seed(t, "ana", "hunter2", "manager")
	ctx := context.Background()

	login, err := svc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "hunter2"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, "ana", refreshed.User.Username)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	_, svc := newAuthFixture(t)

	_, err := svc.Refresh(context.Background(), "not-a-token")
	assert.EqualError(t, err, "refresh token invalid or expired")
}

func TestRefreshDeactivatedUser(t *testing.T) {
	repo, svc := newAuthFixture(t)
	id := repo.seed(t, "ana", "hunter2", "manager")
	ctx := context.Background()

	login, err := svc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "hunter2"})
	require.NoError(t, err)

	repo.users[id].Active = false
	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.EqualError(t, err, "user not found or inactive")
}

func TestCreateUser(t *testing.T) {
	repo, svc := newAuthFixture(t)

	resp, err := svc.CreateUser(context.Background(), permission.RoleAdmin, dto.CreateUserRequest{
		Username: "marta", Name: "Marta", Password: "s3cret", Role: "warehouse",
	})
	require.NoError(t, err)
	assert.Equal(t, "warehouse", resp.Role)
	assert.True(t, resp.Active)

	stored := repo.users[uuid.MustParse(resp.ID)]
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret")))
}

func TestCreateUserUnknownRole(t *testing.T) {
	_, svc := newAuthFixture(t)

	_, err := svc.CreateUser(context.Background(), permission.RoleAdmin, dto.CreateUserRequest{
		Username: "marta", Name: "Marta", Password: "s3cret", Role: "superadmin",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUserManagementIsAdminOnly(t *testing.T) {
	repo, svc := newAuthFixture(t)
	id := repo.seed(t, "ana", "hunter2", "cashier")
	ctx := context.Background()

	for _, role := range []permission.Role{permission.RoleManager, permission.RoleCashier, permission.RoleWarehouse} {
		_, err := svc.CreateUser(ctx, role, dto.CreateUserRequest{
			Username: "x", Name: "x", Password: "x", Role: "cashier",
		})
		assert.ErrorIs(t, err, ErrPermissionDenied, "CreateUser as %s", role)

		_, err = svc.ListUsers(ctx, role, false)
		assert.ErrorIs(t, err, ErrPermissionDenied, "ListUsers as %s", role)

		assert.ErrorIs(t, svc.DeactivateUser(ctx, role, id), ErrPermissionDenied, "DeactivateUser as %s", role)
	}
}

func TestUpdateUser(t *testing.T) {
	repo, svc := newAuthFixture(t)
	id := repo.seed(t, "ana", "hunter2", "cashier")
	ctx := context.Background()

	resp, err := svc.UpdateUser(ctx, permission.RoleAdmin, id, dto.UpdateUserRequest{Role: "manager"})
	require.NoError(t, err)
	assert.Equal(t, "manager", resp.Role)

	_, err = svc.UpdateUser(ctx, permission.RoleAdmin, id, dto.UpdateUserRequest{Role: "wizard"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateUser(ctx, permission.RoleAdmin, uuid.New(), dto.UpdateUserRequest{Name: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeactivateReactivateUser(t *testing.T) {
	repo, svc := newAuthFixture(t)
	id := repo.seed(t, "ana", "hunter2", "cashier")
	ctx := context.Background()

	require.NoError(t, svc.DeactivateUser(ctx, permission.RoleAdmin, id))
	assert.False(t, repo.users[id].Active)

	require.NoError(t, svc.ReactivateUser(ctx, permission.RoleAdmin, id))
	assert.True(t, repo.users[id].Active)
}
