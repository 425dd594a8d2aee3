package service

import (
	"context"
	"testing"
	"time"

	"deskhive/internal/domain"
	"deskhive/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type authFixture struct {
	svc       AuthService
	users     *repository.MemoryUsersRepository
	companies *repository.MemoryCompaniesRepository
	sessions  *repository.MemorySessionsRepository
	companyID string
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := repository.NewMemoryUsersRepository()
	companies := repository.NewMemoryCompaniesRepository()
	sessions := repository.NewMemorySessionsRepository()

	companyID := "00000000-0000-0000-0000-00000000c001"
	companies.SeedCompany(&domain.Company{
		CompanyID:      companyID,
		Name:           "Acme",
		InvitationCode: "ACME-2026",
	})
	companies.SeedDomain(&domain.EmailDomain{
		DomainID:  "d-1",
		CompanyID: companyID,
		Domain:    "@acme.com",
		IsActive:  true,
	})

	return &authFixture{
		svc:       NewAuthService(users, companies, sessions, "test-secret", time.Hour, zap.NewNop()),
		users:     users,
		companies: companies,
		sessions:  sessions,
		companyID: companyID,
	}
}

func (f *authFixture) register(t *testing.T, email string) string {
	t.Helper()
	resp, err := f.svc.Register(context.Background(), RegisterRequest{
		InvitationCode: "ACME-2026",
		Email:          email,
		Password:       "correct-horse",
	})
	require.NoError(t, err)
	return resp.UserID
}

func TestRegister_InvitationAndDomain(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	userID := f.register(t, "alice@acme.com")
	user, err := f.users.GetUser(ctx, f.companyID, userID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, user.Role)
	require.True(t, user.IsActive)

	// Wrong invitation code.
	_, err = f.svc.Register(ctx, RegisterRequest{
		InvitationCode: "NOPE",
		Email:          "bob@acme.com",
		Password:       "correct-horse",
	})
	require.ErrorIs(t, err, domain.ErrNotFound)

	// Email domain outside the company's allow-list.
	_, err = f.svc.Register(ctx, RegisterRequest{
		InvitationCode: "ACME-2026",
		Email:          "carol@gmail.com",
		Password:       "correct-horse",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not allowed")

	// Case-insensitive domain match.
	_, err = f.svc.Register(ctx, RegisterRequest{
		InvitationCode: "ACME-2026",
		Email:          "Dana@ACME.COM",
		Password:       "correct-horse",
	})
	require.NoError(t, err)
}

func TestLogin_Authenticate_Logout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	userID := f.register(t, "alice@acme.com")

	_, err := f.svc.Login(ctx, LoginRequest{Email: "alice@acme.com", Password: "wrong"})
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	resp, err := f.svc.Login(ctx, LoginRequest{Email: "Alice@Acme.com", Password: "correct-horse"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, userID, resp.UserID)
	require.Equal(t, f.companyID, resp.CompanyID)

	actor, sessionID, err := f.svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	require.Equal(t, userID, actor.UserID)
	require.Equal(t, f.companyID, actor.CompanyID)
	require.False(t, actor.IsAdmin())

	require.NoError(t, f.svc.Logout(ctx, sessionID))

	// Token dies with its session, well before JWT expiry.
	_, _, err = f.svc.Authenticate(ctx, resp.Token)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthenticate_GarbageToken(t *testing.T) {
	f := newAuthFixture(t)
	_, _, err := f.svc.Authenticate(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthenticate_DeactivatedUserLosesAccess(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "alice@acme.com")

	resp, err := f.svc.Login(ctx, LoginRequest{Email: "alice@acme.com", Password: "correct-horse"})
	require.NoError(t, err)

	f.users.Deactivate(resp.UserID)

	_, _, err = f.svc.Authenticate(ctx, resp.Token)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}
