// Package service implements the business rules. AuthService resolves
// request principals from API secrets or bearer tokens, handles login and
// provisions users.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/boddenberg/office-admin-go/internal/domain"
	"github.com/boddenberg/office-admin-go/internal/infra/observability"
	"github.com/boddenberg/office-admin-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var authTracer = otel.Tracer("service/auth")

const (
	defaultBcryptCost = 12
	principalCache    = "principal"
)

// AuthConfig holds the authentication settings.
type AuthConfig struct {
	Mode                    domain.AuthMode
	JWTSecret               string
	AccessTTL               time.Duration
	AllowPlaintextPasswords bool
	BcryptCost              int // zero means 12
}

// AuthService orchestrates authentication flows.
type AuthService struct {
	store     port.UserStore
	cache     port.Cache[domain.User]
	group     singleflight.Group
	cfg       AuthConfig
	jwtSecret []byte
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewAuthService creates a new auth service. Principals resolved from a
// secret or token are cached; SetUserActive evicts them, and any other
// change is seen after at most the cache TTL.
func NewAuthService(store port.UserStore, cache port.Cache[domain.User], cfg AuthConfig, metrics *observability.Metrics, logger *zap.Logger) *AuthService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = defaultBcryptCost
	}
	return &AuthService{
		store:     store,
		cache:     cache,
		cfg:       cfg,
		jwtSecret: []byte(cfg.JWTSecret),
		metrics:   metrics,
		logger:    logger,
	}
}

// Mode returns the configured auth mode.
func (s *AuthService) Mode() domain.AuthMode {
	return s.cfg.Mode
}

// ============================================================
// Principal resolution (auth middleware)
// ============================================================

// AuthenticateSecret resolves the user owning an X-API-Key secret.
func (s *AuthService) AuthenticateSecret(ctx context.Context, secret string) (*domain.User, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.AuthenticateSecret")
	defer span.End()

	if secret == "" {
		s.metrics.IncrAuthFailure("missing_credentials")
		return nil, &domain.ErrUnauthorized{}
	}

	u, err := s.principal(ctx, "secret:"+hashToken(secret), func(ctx context.Context) (*domain.User, error) {
		return s.store.GetUserBySecret(ctx, secret)
	})
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.metrics.IncrAuthFailure("invalid_secret")
		s.logger.Warn("auth: unknown api key")
		return nil, &domain.ErrUnauthorized{}
	}
	return s.checkActive(u)
}

// AuthenticateBearer resolves the user named by a "Bearer <jwt>" header.
func (s *AuthService) AuthenticateBearer(ctx context.Context, header string) (*domain.User, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.AuthenticateBearer")
	defer span.End()

	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		s.metrics.IncrAuthFailure("missing_credentials")
		return nil, &domain.ErrUnauthorized{}
	}

	claims, err := s.ValidateAccessToken(strings.TrimSpace(raw))
	if err != nil {
		s.metrics.IncrAuthFailure("invalid_token")
		s.logger.Warn("auth: rejected bearer token", zap.Error(err))
		return nil, err
	}

	u, err := s.principal(ctx, "user:"+claims.Sub, func(ctx context.Context) (*domain.User, error) {
		return s.store.GetUserByID(ctx, claims.Sub)
	})
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.metrics.IncrAuthFailure("unknown_subject")
		s.logger.Warn("auth: token subject not found", zap.String("user_id", claims.Sub))
		return nil, &domain.ErrUnauthorized{}
	}
	return s.checkActive(u)
}

// principal reads through the cache. Concurrent misses for the same key
// share one store lookup. Absent users are not cached.
func (s *AuthService) principal(ctx context.Context, key string, lookup func(context.Context) (*domain.User, error)) (*domain.User, error) {
	if u, ok := s.cache.Get(ctx, key); ok {
		s.metrics.IncrCacheHit(principalCache)
		return &u, nil
	}
	s.metrics.IncrCacheMiss(principalCache)

	v, err, _ := s.group.Do(key, func() (any, error) {
		u, err := lookup(ctx)
		if err != nil || u == nil {
			return nil, err
		}
		s.cache.Set(ctx, key, *u)
		return *u, nil
	})
	if err != nil {
		return nil, fmt.Errorf("resolve principal: %w", err)
	}
	u, ok := v.(domain.User)
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *AuthService) checkActive(u *domain.User) (*domain.User, error) {
	if !u.IsActive {
		s.metrics.IncrAuthFailure("inactive")
		s.logger.Warn("auth: inactive user", zap.String("user_id", u.ID))
		return nil, &domain.ErrForbidden{Action: "usuário inativo"}
	}
	return u, nil
}

// ============================================================
// Login: POST /login
// ============================================================

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()
	defer func(start time.Time) { s.metrics.RecordOperation("auth.login", time.Since(start)) }(time.Now())

	u, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil || !s.checkPassword(u, req.Password) {
		s.metrics.IncrAuthFailure("invalid_credentials")
		s.logger.Warn("login: invalid credentials", zap.String("username", req.Username))
		return nil, &domain.ErrUnauthorized{Message: domain.MsgInvalidCredential}
	}
	if _, err := s.checkActive(u); err != nil {
		return nil, err
	}

	resp := &domain.LoginResponse{Message: "Logged in succesfully"}
	if s.cfg.Mode.AcceptsAPIKey() {
		resp.XAPIKey = u.Secret
	}
	if s.cfg.Mode.AcceptsBearer() {
		token, err := s.signAccessToken(u.ID)
		if err != nil {
			return nil, fmt.Errorf("sign access token: %w", err)
		}
		resp.Token = token
	}

	s.logger.Info("user logged in", zap.String("user_id", u.ID), zap.String("mode", string(s.cfg.Mode)))
	return resp, nil
}

// ============================================================
// Users: CLI provisioning
// ============================================================

// CreateUser provisions an active user with a fresh secret and a bcrypt
// password hash.
func (s *AuthService) CreateUser(ctx context.Context, req *domain.NewUserRequest) (*domain.User, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.CreateUser")
	defer span.End()

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		return nil, &domain.ErrValidation{Field: "username", Message: "username é obrigatório"}
	}
	if req.Password == "" {
		return nil, &domain.ErrValidation{Field: "password", Message: "password é obrigatório"}
	}

	existing, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if existing != nil {
		return nil, &domain.ErrConflict{Message: domain.MsgUserExists}
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &domain.User{
		ID:          domain.NewID(),
		Username:    req.Username,
		Password:    hash,
		Secret:      domain.NewID(),
		IsActive:    true,
		IsSuperuser: req.IsSuperuser,
		IsStaff:     req.IsStaff,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		var conflict *domain.ErrConflict
		if errors.As(err, &conflict) {
			return nil, conflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user created",
		zap.String("user_id", u.ID),
		zap.String("username", u.Username),
		zap.Bool("superuser", u.IsSuperuser),
	)
	return u, nil
}

// EnsureSuperuser creates a superuser unless the username is taken. It
// reports whether a user was created.
func (s *AuthService) EnsureSuperuser(ctx context.Context, username, password string) (bool, error) {
	existing, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return false, fmt.Errorf("get user: %w", err)
	}
	if existing != nil {
		return false, nil
	}
	_, err = s.CreateUser(ctx, &domain.NewUserRequest{
		Username:    username,
		Password:    password,
		IsSuperuser: true,
		IsStaff:     true,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// SetUserActive activates or deactivates a user and evicts its cached
// principal entries.
func (s *AuthService) SetUserActive(ctx context.Context, username string, active bool) (*domain.User, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.SetUserActive")
	defer span.End()

	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, &domain.ErrNotFound{Resource: "user", ID: username, Message: domain.MsgUserNotFound}
	}
	if err := s.store.SetUserActive(ctx, u.ID, active); err != nil {
		return nil, fmt.Errorf("set user active: %w", err)
	}

	s.cache.Delete(ctx, "user:"+u.ID)
	s.cache.Delete(ctx, "secret:"+hashToken(u.Secret))

	u.IsActive = active
	s.logger.Info("user active flag changed", zap.String("user_id", u.ID), zap.Bool("active", active))
	return u, nil
}

// ListUsers returns every user, newest first.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.ListUsers")
	defer span.End()

	return s.store.ListUsers(ctx)
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
