package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pizza-nz/food-ordering/internal/models"
	"github.com/pizza-nz/food-ordering/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestAuth(t *testing.T) (*AuthService, *testutil.Store) {
	t.Helper()
	store := testutil.NewStore()
	return NewAuthService(store.Users(), JWTConfig{Secret: testSecret, ExpiresIn: 60}), store
}

func signUp(t *testing.T, auth *AuthService, nickname string, role models.Role) *models.User {
	t.Helper()
	user, err := auth.SignUp(context.Background(), models.SignUpRequest{
		Nickname: nickname,
		Password: "password123",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func bearer(t *testing.T, auth *AuthService, nickname string) string {
	t.Helper()
	token, err := auth.IssueToken(nickname)
	require.NoError(t, err)
	return BearerScheme + " " + token
}

func TestAuthService_SignUpAndSignIn(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()

	user := signUp(t, auth, "chef01", models.RoleCustomer)
	assert.Equal(t, "chef01", user.Nickname)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NotEqual(t, "password123", user.PasswordHash)

	token, err := auth.SignIn(ctx, models.SignInRequest{Nickname: "chef01", Password: "password123"})
	require.NoError(t, err)

	resolved, err := auth.Authenticate(ctx, BearerScheme+" "+token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	_, err = auth.SignUp(ctx, models.SignUpRequest{Nickname: "chef01", Password: "otherpass1"})
	assert.Equal(t, KindDuplicateIdentity, KindOf(err))
}

func TestAuthService_SignUpDefaultsToCustomer(t *testing.T) {
	auth, _ := newTestAuth(t)

	user := signUp(t, auth, "guest1", "")

	assert.Equal(t, models.RoleCustomer, user.Role)
}

func TestAuthService_SignUpValidation(t *testing.T) {
	tests := []struct {
		name string
		req  models.SignUpRequest
	}{
		{"short nickname", models.SignUpRequest{Nickname: "ab", Password: "password123"}},
		{"long nickname", models.SignUpRequest{Nickname: "abcdefghijklmnop", Password: "password123"}},
		{"non alphanumeric nickname", models.SignUpRequest{Nickname: "chef-01", Password: "password123"}},
		{"short password", models.SignUpRequest{Nickname: "chef01", Password: "short"}},
		{"long password", models.SignUpRequest{Nickname: "chef01", Password: "abcdefghijklmnopqrstu"}},
		{"unknown role", models.SignUpRequest{Nickname: "chef01", Password: "password123", Role: "ADMIN"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth, store := newTestAuth(t)

			_, err := auth.SignUp(context.Background(), tt.req)

			assert.Equal(t, KindInvalidInput, KindOf(err))
			_, lookupErr := store.Users().GetByNickname(context.Background(), tt.req.Nickname)
			assert.Error(t, lookupErr)
		})
	}
}

func TestAuthService_SignInFailures(t *testing.T) {
	auth, _ := newTestAuth(t)
	signUp(t, auth, "chef01", models.RoleCustomer)

	_, err := auth.SignIn(context.Background(), models.SignInRequest{Nickname: "chef01", Password: "wrongpass1"})
	assert.Equal(t, KindInvalidLogin, KindOf(err))

	_, err = auth.SignIn(context.Background(), models.SignInRequest{Nickname: "nobody1", Password: "password123"})
	assert.Equal(t, KindInvalidLogin, KindOf(err))
}

func TestAuthService_Authenticate(t *testing.T) {
	auth, _ := newTestAuth(t)
	signUp(t, auth, "chef01", models.RoleCustomer)

	expired := NewAuthService(nil, JWTConfig{Secret: testSecret, ExpiresIn: 60})
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.IssueToken("chef01")
	require.NoError(t, err)

	forged := NewAuthService(nil, JWTConfig{Secret: "other-secret", ExpiresIn: 60})
	forgedToken, err := forged.IssueToken("chef01")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Nickname: "chef01"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name       string
		credential string
		kind       Kind
	}{
		{"missing", "", KindMissingCredential},
		{"blank", "   ", KindMissingCredential},
		{"wrong scheme", "Basic abc", KindMalformedCredential},
		{"no token", "Bearer", KindMalformedCredential},
		{"extra parts", "Bearer a b", KindMalformedCredential},
		{"garbage token", "Bearer not-a-jwt", KindInvalidCredential},
		{"wrong secret", "Bearer " + forgedToken, KindInvalidCredential},
		{"unsigned token", "Bearer " + noneToken, KindInvalidCredential},
		{"expired", "Bearer " + expiredToken, KindExpiredCredential},
		{"unknown user", bearer(t, auth, "ghost1"), KindUnknownUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := auth.Authenticate(context.Background(), tt.credential)

			assert.Nil(t, user)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestAuthService_Authorize(t *testing.T) {
	auth, _ := newTestAuth(t)
	signUp(t, auth, "owner1", models.RoleProprietor)
	signUp(t, auth, "diner1", models.RoleCustomer)
	ctx := context.Background()

	user, err := auth.Authorize(ctx, bearer(t, auth, "owner1"), models.RoleProprietor)
	require.NoError(t, err)
	assert.Equal(t, models.RoleProprietor, user.Role)

	_, err = auth.Authorize(ctx, bearer(t, auth, "diner1"), models.RoleProprietor)
	require.Error(t, err)
	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, KindForbiddenRole, svcErr.Kind)
	assert.Contains(t, svcErr.Message, string(models.RoleProprietor))

	_, err = auth.Authorize(ctx, "", models.RoleCustomer)
	assert.Equal(t, KindMissingCredential, KindOf(err))
}
