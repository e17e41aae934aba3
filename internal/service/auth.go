package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/pizza-nz/food-ordering/internal/db/repository"
	"github.com/pizza-nz/food-ordering/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// BearerScheme is the only credential scheme accepted
const BearerScheme = "Bearer"

// JWTConfig holds configuration for JWT token generation
type JWTConfig struct {
	Secret    string
	ExpiresIn int // minutes
}

// UserStore is the user persistence used by AuthService
type UserStore interface {
	GetByNickname(ctx context.Context, nickname string) (*models.User, error)
	Create(ctx context.Context, user models.User) (*models.User, error)
}

// AuthService handles authentication and authorization
type AuthService struct {
	users     UserStore
	jwtConfig JWTConfig
	validate  *validator.Validate
	now       func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(users UserStore, jwtConfig JWTConfig) *AuthService {
	return &AuthService{
		users:     users,
		jwtConfig: jwtConfig,
		validate:  newValidator(),
		now:       time.Now,
	}
}

// Claims represents JWT claims
type Claims struct {
	Nickname string `json:"nickname"`
	jwt.RegisteredClaims
}

// SignUp registers a new user. The role defaults to CUSTOMER.
func (s *AuthService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, newError(KindInvalidInput, "%s", describe(err))
	}

	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internalError("hash password", err)
	}

	user := models.User{
		Nickname:     req.Nickname,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}

	createdUser, err := s.users.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, newError(KindDuplicateIdentity, "nickname %q is already taken", req.Nickname)
	}
	if err != nil {
		return nil, internalError("create user", err)
	}

	return createdUser, nil
}

// SignIn checks a nickname and password and returns a signed token
func (s *AuthService) SignIn(ctx context.Context, req models.SignInRequest) (string, error) {
	if err := s.validate.Struct(req); err != nil {
		return "", newError(KindInvalidInput, "%s", describe(err))
	}

	user, err := s.users.GetByNickname(ctx, req.Nickname)
	if errors.Is(err, sql.ErrNoRows) {
		return "", newError(KindInvalidLogin, "nickname or password is incorrect")
	}
	if err != nil {
		return "", internalError("get user", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password))
	if err != nil {
		return "", newError(KindInvalidLogin, "nickname or password is incorrect")
	}

	token, err := s.IssueToken(user.Nickname)
	if err != nil {
		return "", internalError("generate token", err)
	}

	return token, nil
}

// IssueToken signs a token carrying nickname
func (s *AuthService) IssueToken(nickname string) (string, error) {
	now := s.now()
	expirationTime := now.Add(time.Duration(s.jwtConfig.ExpiresIn) * time.Minute)

	claims := &Claims{
		Nickname: nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtConfig.Secret))
}

// Authenticate resolves a raw "Bearer <token>" credential to its user
func (s *AuthService) Authenticate(ctx context.Context, credential string) (*models.User, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, newError(KindMissingCredential, "credential is required")
	}

	parts := strings.Fields(credential)
	if len(parts) != 2 || parts[0] != BearerScheme {
		return nil, newError(KindMalformedCredential, "credential must use the %s scheme", BearerScheme)
	}

	claims, err := s.parseToken(parts[1])
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByNickname(ctx, claims.Nickname)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newError(KindUnknownUser, "user %q does not exist", claims.Nickname)
	}
	if err != nil {
		return nil, internalError("get user", err)
	}

	return user, nil
}

// Authorize authenticates credential and requires the user to hold role
func (s *AuthService) Authorize(ctx context.Context, credential string, role models.Role) (*models.User, error) {
	user, err := s.Authenticate(ctx, credential)
	if err != nil {
		return nil, err
	}

	if user.Role != role {
		return nil, newError(KindForbiddenRole, "%s role is required", role)
	}

	return user, nil
}

func (s *AuthService) parseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	})

	if errors.Is(err, jwt.ErrSignatureInvalid) {
		return nil, newError(KindInvalidCredential, "credential is invalid")
	}
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, newError(KindExpiredCredential, "credential has expired")
	}
	if err != nil || !token.Valid {
		return nil, newError(KindInvalidCredential, "credential is invalid")
	}
	if claims.Nickname == "" {
		return nil, newError(KindInvalidCredential, "credential has no subject")
	}

	return claims, nil
}
