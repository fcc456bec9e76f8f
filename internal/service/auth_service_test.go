package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ciprianbratila/ortho-orders/internal/config"
	"github.com/ciprianbratila/ortho-orders/internal/dto"
	"github.com/ciprianbratila/ortho-orders/internal/model"
	"github.com/ciprianbratila/ortho-orders/internal/repository"
	"github.com/ciprianbratila/ortho-orders/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubUserRepo is an in-memory UserRepository for testing.
type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo(users ...*model.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username && u.Active {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (r *stubUserRepo) ListAll(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if u, ok := r.users[id]; ok {
		u.Active = false
	}
	return nil
}

func (r *stubUserRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	if u, ok := r.users[id]; ok {
		u.Active = true
	}
	return nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

// stubGroupRepo holds a fixed set of groups.
type stubGroupRepo struct {
	groups map[uuid.UUID]*model.UserGroup
	users  map[uuid.UUID]int64
}

func newStubGroupRepo(groups ...*model.UserGroup) *stubGroupRepo {
	r := &stubGroupRepo{
		groups: make(map[uuid.UUID]*model.UserGroup),
		users:  make(map[uuid.UUID]int64),
	}
	for _, g := range groups {
		r.groups[g.ID] = g
	}
	return r
}

func (r *stubGroupRepo) Create(_ context.Context, g *model.UserGroup) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	r.groups[g.ID] = g
	return nil
}

func (r *stubGroupRepo) FindByID(_ context.Context, id uuid.UUID) (*model.UserGroup, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return g, nil
}

func (r *stubGroupRepo) FindByName(_ context.Context, name string) (*model.UserGroup, error) {
	for _, g := range r.groups {
		if g.Name == name {
			return g, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubGroupRepo) List(_ context.Context) ([]model.UserGroup, error) {
	out := make([]model.UserGroup, 0, len(r.groups))
	for _, g := range r.groups {
		out = append(out, *g)
	}
	return out, nil
}

func (r *stubGroupRepo) Update(_ context.Context, g *model.UserGroup) error {
	r.groups[g.ID] = g
	return nil
}

func (r *stubGroupRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.groups, id)
	return nil
}

func (r *stubGroupRepo) CountUsers(_ context.Context, id uuid.UUID) (int64, error) {
	return r.users[id], nil
}

var _ repository.GroupRepository = (*stubGroupRepo)(nil)

// ── Fixtures ──────────────────────────────────────────────────────────────────

func authConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 8, JWTRefreshHours: 24}
}

func productionGroup() *model.UserGroup {
	return &model.UserGroup{
		ID:      uuid.New(),
		Name:    "Production",
		Modules: []string{model.ModuleOrders, model.ModuleProducts, model.ModuleMaterials},
	}
}

func labUser(group *model.UserGroup, password string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &model.User{
		ID:           uuid.New(),
		Username:     "dtechnician",
		FirstName:    "Dan",
		LastName:     "Tehnician",
		PasswordHash: string(hash),
		GroupID:      group.ID,
		Active:       true,
		Group:        group,
	}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestLoginIssuesTokenWithModules(t *testing.T) {
	group := productionGroup()
	user := labUser(group, "s3cret")
	svc := service.NewAuthService(newStubUserRepo(user), newStubGroupRepo(group), authConfig())

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "dtechnician", Password: "s3cret"})
	require.NoError(t, err)

	assert.Equal(t, "bearer", resp.TokenType)
	assert.ElementsMatch(t, group.Modules, resp.Modules)
	assert.Equal(t, "dtechnician", resp.User.Username)

	token, err := jwt.Parse(resp.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, user.ID.String(), claims["user_id"])
}

func TestLoginRejectsBadPassword(t *testing.T) {
	group := productionGroup()
	user := labUser(group, "s3cret")
	svc := service.NewAuthService(newStubUserRepo(user), newStubGroupRepo(group), authConfig())

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "dtechnician", Password: "wrong"})
	assert.EqualError(t, err, "invalid credentials")

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "nobody", Password: "s3cret"})
	assert.EqualError(t, err, "invalid credentials")
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	group := productionGroup()
	user := labUser(group, "s3cret")
	user.Active = false
	svc := service.NewAuthService(newStubUserRepo(user), newStubGroupRepo(group), authConfig())

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "dtechnician", Password: "s3cret"})
	assert.Error(t, err)
}

func TestRefreshReturnsNewTokens(t *testing.T) {
	group := productionGroup()
	user := labUser(group, "s3cret")
	svc := service.NewAuthService(newStubUserRepo(user), newStubGroupRepo(group), authConfig())

	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "dtechnician", Password: "s3cret"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), refreshed.User.ID)

	_, err = svc.Refresh(context.Background(), "not-a-token")
	assert.Error(t, err)
}

func TestCreateUserRequiresExistingGroup(t *testing.T) {
	group := productionGroup()
	svc := service.NewAuthService(newStubUserRepo(), newStubGroupRepo(group), authConfig())

	resp, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username:  "newtech",
		FirstName: "New",
		LastName:  "Tech",
		Password:  "changeme1",
		GroupID:   group.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "newtech", resp.Username)

	_, err = svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username:  "orphan",
		FirstName: "No",
		LastName:  "Group",
		Password:  "changeme1",
		GroupID:   uuid.NewString(),
	})
	assert.Error(t, err)
}

func TestGroupDeleteRefusedWhileInUse(t *testing.T) {
	group := productionGroup()
	repo := newStubGroupRepo(group)
	repo.users[group.ID] = 2
	svc := service.NewGroupService(repo)

	err := svc.Delete(context.Background(), group.ID)
	require.Error(t, err)

	repo.users[group.ID] = 0
	assert.NoError(t, svc.Delete(context.Background(), group.ID))
}
