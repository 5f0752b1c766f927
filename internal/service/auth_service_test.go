package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/raptorhall/tutoring-api/internal/models"
	appErrors "github.com/raptorhall/tutoring-api/pkg/errors"
)

type authRepoStub struct {
	byEmail map[string]*models.Sponsor
	byID    map[string]*models.Sponsor

	updatedID   string
	updatedHash string
	updateErr   error
}

func (s *authRepoStub) FindByEmail(ctx context.Context, email string) (*models.Sponsor, error) {
	if sponsor, ok := s.byEmail[email]; ok {
		return sponsor, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) FindByID(ctx context.Context, id string) (*models.Sponsor, error) {
	if sponsor, ok := s.byID[id]; ok {
		return sponsor, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	s.updatedID = id
	s.updatedHash = passwordHash
	return s.updateErr
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newAuthTestService(repo authSponsorRepository) *AuthService {
	return NewAuthService(repo, nil, nil, AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "tutoring-api-test",
	})
}

func TestAuthLogin(t *testing.T) {
	repo := &authRepoStub{byEmail: map[string]*models.Sponsor{
		"ada@school.test": {
			ID:           "sponsor-1",
			Email:        "ada@school.test",
			PasswordHash: hashPassword(t, "hunter22"),
			FullName:     "Ada Hartley",
			Subject:      models.SubjectCS,
			LunchPeriod:  models.LunchA,
			Active:       true,
		},
	}}
	svc := newAuthTestService(repo)

	result, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ada@school.test",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.InDelta(t, 3600, result.ExpiresIn, 1)
	assert.Equal(t, "sponsor-1", result.Sponsor.ID)
	assert.Equal(t, models.SubjectCS, result.Sponsor.Subject)

	// The issued token must round-trip through validation.
	claims, err := svc.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "sponsor-1", claims.SponsorID)
	assert.Equal(t, models.SubjectCS, claims.Subject)
	assert.Equal(t, "tutoring-api-test", claims.Issuer)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	repo := &authRepoStub{byEmail: map[string]*models.Sponsor{
		"ada@school.test": {
			ID:           "sponsor-1",
			Email:        "ada@school.test",
			PasswordHash: hashPassword(t, "hunter22"),
			Active:       true,
		},
	}}
	svc := newAuthTestService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ada@school.test",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestAuthLoginUnknownEmail(t *testing.T) {
	svc := newAuthTestService(&authRepoStub{})

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@school.test",
		Password: "whatever",
	})
	require.Error(t, err)
	// Unknown account and bad password are indistinguishable to the caller.
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestAuthLoginInactiveSponsor(t *testing.T) {
	repo := &authRepoStub{byEmail: map[string]*models.Sponsor{
		"ira@school.test": {
			ID:           "sponsor-2",
			Email:        "ira@school.test",
			PasswordHash: hashPassword(t, "hunter22"),
			Active:       false,
		},
	}}
	svc := newAuthTestService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ira@school.test",
		Password: "hunter22",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInactiveAccount))
}

func TestAuthChangePassword(t *testing.T) {
	repo := &authRepoStub{byID: map[string]*models.Sponsor{
		"sponsor-1": {
			ID:           "sponsor-1",
			PasswordHash: hashPassword(t, "old-pass"),
			Active:       true,
		},
	}}
	svc := newAuthTestService(repo)

	err := svc.ChangePassword(context.Background(), "sponsor-1", models.ChangePasswordRequest{
		OldPassword: "old-pass",
		NewPassword: "new-pass-123",
	})
	require.NoError(t, err)
	assert.Equal(t, "sponsor-1", repo.updatedID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.updatedHash), []byte("new-pass-123")))
}

func TestAuthChangePasswordWrongOld(t *testing.T) {
	repo := &authRepoStub{byID: map[string]*models.Sponsor{
		"sponsor-1": {
			ID:           "sponsor-1",
			PasswordHash: hashPassword(t, "old-pass"),
		},
	}}
	svc := newAuthTestService(repo)

	err := svc.ChangePassword(context.Background(), "sponsor-1", models.ChangePasswordRequest{
		OldPassword: "not-it",
		NewPassword: "new-pass-123",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))
	assert.Empty(t, repo.updatedID)
}

func TestAuthValidateTokenRejectsTampering(t *testing.T) {
	repo := &authRepoStub{byEmail: map[string]*models.Sponsor{
		"ada@school.test": {
			ID:           "sponsor-1",
			Email:        "ada@school.test",
			PasswordHash: hashPassword(t, "hunter22"),
			Active:       true,
		},
	}}
	svc := newAuthTestService(repo)

	result, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ada@school.test",
		Password: "hunter22",
	})
	require.NoError(t, err)

	other := NewAuthService(repo, nil, nil, AuthConfig{
		TokenSecret: "different-secret",
		TokenExpiry: time.Hour,
	})
	_, err = other.ValidateToken(result.AccessToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	_, err = svc.ValidateToken("not.a.token")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}
