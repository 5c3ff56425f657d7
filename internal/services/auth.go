package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/apierr"
	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/repos"
	"github.com/refera/refera-backend/internal/requestdata"
	"github.com/refera/refera-backend/internal/types"
	"github.com/refera/refera-backend/internal/utils"
)

type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*types.User, string, error)
	Login(ctx context.Context, email, password string) (*types.User, string, error)
	Logout(ctx context.Context, rd *requestdata.RequestData) error
	InvalidateOtherSessions(ctx context.Context, userID uuid.UUID) error
	Verify(ctx context.Context, tokenString string) (*requestdata.RequestData, error)
	TokenTTL() time.Duration
}

type authService struct {
	db        *gorm.DB
	log       *logger.Logger
	userRepo  repos.UserRepo
	tokenRepo repos.RevokedTokenRepo
	avatars   AvatarService

	// Optional cache in front of the revoked-token table.
	cache *redis.Client

	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	tokenRepo repos.RevokedTokenRepo,
	avatars AvatarService,
	cache *redis.Client,
	jwtSecret string,
	tokenTTL time.Duration,
) (AuthService, error) {
	if jwtSecret == "" {
		return nil, fmt.Errorf("jwt secret must not be empty")
	}
	return &authService{
		db:        db,
		log:       log.With("service", "AuthService"),
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		avatars:   avatars,
		cache:     cache,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}, nil
}

func (as *authService) TokenTTL() time.Duration { return as.tokenTTL }

func (as *authService) Signup(ctx context.Context, name, email, password string) (*types.User, string, error) {
	email = utils.NormalizeEmail(email)
	if err := utils.ValidateEmail(email); err != nil {
		return nil, "", apierr.New(400, "invalid_email", err)
	}
	if err := utils.ValidatePassword(password); err != nil {
		return nil, "", apierr.New(400, "invalid_password", err)
	}
	if name == "" {
		return nil, "", apierr.New(400, "invalid_input", fmt.Errorf("name must not be empty"))
	}

	exists, err := as.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, "", apierr.New(400, "duplicate_field", fmt.Errorf("email already registered"))
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &types.User{
		ID:       uuid.New(),
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     types.RoleUser,
	}
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := as.userRepo.Create(ctx, tx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		if as.avatars != nil {
			if err := as.avatars.CreateUserAvatar(ctx, tx, user); err != nil {
				return fmt.Errorf("failed to create user avatar: %w", err)
			}
		}
		return nil
	}); err != nil {
		return nil, "", err
	}

	token, err := as.generateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*types.User, string, error) {
	email = utils.NormalizeEmail(email)
	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apierr.New(401, "invalid_credentials", fmt.Errorf("unknown email or wrong password"))
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if err := utils.CheckPassword(user.Password, password); err != nil {
		return nil, "", apierr.New(401, "invalid_credentials", fmt.Errorf("unknown email or wrong password"))
	}

	token, err := as.generateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout blacklists the presented token until it would have expired anyway.
func (as *authService) Logout(ctx context.Context, rd *requestdata.RequestData) error {
	if rd == nil || rd.TokenString == "" {
		return apierr.New(401, "invalid_token", fmt.Errorf("no session to log out"))
	}
	expiresAt := time.Unix(rd.TokenIAT, 0).Add(as.tokenTTL)
	if _, err := as.tokenRepo.Add(ctx, nil, &types.RevokedToken{
		ID:        uuid.New(),
		UserID:    rd.UserID,
		Token:     rd.TokenString,
		IssuedAt:  rd.TokenIAT,
		ExpiresAt: expiresAt,
	}); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	if as.cache != nil {
		if err := as.cache.Set(ctx, revokedCacheKey(rd.TokenString), "1", time.Until(expiresAt)).Err(); err != nil {
			as.log.Warn("failed to cache revoked token", "error", err)
		}
	}
	return nil
}

// InvalidateOtherSessions rejects every token issued before now, across
// devices. The caller is expected to hand out a fresh token afterwards.
func (as *authService) InvalidateOtherSessions(ctx context.Context, userID uuid.UUID) error {
	if err := as.userRepo.InvalidateSessions(ctx, nil, userID, time.Now()); err != nil {
		return fmt.Errorf("failed to invalidate sessions: %w", err)
	}
	return nil
}

// Verify parses and validates a token and resolves it to request data. It
// fails on bad signatures, expiry, blacklisted tokens, tokens issued before
// the user's session cutoff, and deleted users.
func (as *authService) Verify(ctx context.Context, tokenString string) (*requestdata.RequestData, error) {
	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return as.jwtSecret, nil
	}); err != nil {
		return nil, apierr.Translate(err)
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, apierr.New(401, "invalid_token", fmt.Errorf("token subject is not a user id"))
	}
	iatFloat, _ := claims["iat"].(float64)
	iat := int64(iatFloat)

	revoked, err := as.isRevoked(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apierr.New(401, "invalid_token", fmt.Errorf("token has been revoked"))
	}

	user, err := as.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.New(401, "invalid_token", fmt.Errorf("user no longer exists"))
		}
		return nil, fmt.Errorf("failed to load token user: %w", err)
	}
	if !user.AllowedSession(iat) {
		return nil, apierr.New(401, "invalid_token", fmt.Errorf("session has been invalidated"))
	}

	return &requestdata.RequestData{
		TokenString: tokenString,
		TokenIAT:    iat,
		UserID:      user.ID,
		Role:        user.Role,
	}, nil
}

func (as *authService) isRevoked(ctx context.Context, tokenString string) (bool, error) {
	if as.cache != nil {
		n, err := as.cache.Exists(ctx, revokedCacheKey(tokenString)).Result()
		if err == nil && n > 0 {
			return true, nil
		}
		if err != nil {
			as.log.Warn("revoked-token cache lookup failed, falling back to postgres", "error", err)
		}
	}
	revoked, err := as.tokenRepo.IsRevoked(ctx, nil, tokenString)
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return revoked, nil
}

func (as *authService) generateToken(user *types.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": user.ID.String(),
		"iat": now.Unix(),
		"exp": now.Add(as.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(as.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func revokedCacheKey(token string) string { return "revoked:" + token }
